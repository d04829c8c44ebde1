// Package rbac implements the back office's two authorization mechanisms:
// hierarchical role checks (HasRole, rank-based) and per-action allow-lists
// (HasPermission, exact membership). The two are deliberately independent;
// callers must pick the one that matches their gate.
package rbac

import "errors"

// ErrForbidden is returned by the Require helpers when a check fails.
var ErrForbidden = errors.New("forbidden")

// HasRole reports whether the user's role ranks at least as high as required.
func HasRole(user *User, required Role) bool {
	if user == nil {
		return false
	}
	return user.Role.Rank() >= required.Rank()
}

// HasPermission reports whether the user's role is on the exact allow-list
// for the module/action pair. Unknown modules and actions deny.
func HasPermission(user *User, module Module, action Action) bool {
	if user == nil {
		return false
	}
	actions, ok := permissionTable[module]
	if !ok {
		return false
	}
	allowed, ok := actions[action]
	if !ok {
		return false
	}
	for _, role := range allowed {
		if role == user.Role {
			return true
		}
	}
	return false
}

// RequireRole fails with ErrForbidden unless HasRole holds.
func RequireRole(user *User, required Role) error {
	if !HasRole(user, required) {
		return ErrForbidden
	}
	return nil
}

// RequirePermission fails with ErrForbidden unless HasPermission holds.
func RequirePermission(user *User, module Module, action Action) error {
	if !HasPermission(user, module, action) {
		return ErrForbidden
	}
	return nil
}

// AccessibleModules returns every module the user may view, in display order.
func AccessibleModules(user *User) []Module {
	modules := make([]Module, 0, len(moduleOrder))
	for _, module := range moduleOrder {
		if HasPermission(user, module, ActionView) {
			modules = append(modules, module)
		}
	}
	return modules
}

// ModulePermissions returns every action in the module allow-listed for the
// user's role, in display order.
func ModulePermissions(user *User, module Module) []Action {
	actions := make([]Action, 0, len(actionOrder))
	for _, action := range actionOrder {
		if _, defined := permissionTable[module][action]; !defined {
			continue
		}
		if HasPermission(user, module, action) {
			actions = append(actions, action)
		}
	}
	return actions
}
