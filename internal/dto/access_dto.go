package dto

// AccessibleModulesResponse lists the modules the current user may view.
type AccessibleModulesResponse struct {
	Role    string   `json:"role"`
	Modules []string `json:"modules"`
}

// ModulePermissionsResponse lists the actions allow-listed for the current
// user within one module.
type ModulePermissionsResponse struct {
	Module  string   `json:"module"`
	Actions []string `json:"actions"`
}
