package rbac

import "strings"

// Module is a functional area of the back office used as the unit of
// permission grouping.
type Module string

const (
	ModuleFinance      Module = "finance"
	ModuleMarketing    Module = "marketing"
	ModuleReservations Module = "reservations"
	ModuleLogistics    Module = "logistics"
	ModuleAIAgent      Module = "ai_agent"
	ModuleSettings     Module = "settings"
	ModuleUsers        Module = "users"
	ModuleActivityLog  Module = "activity_log"
)

// Action names an operation within a module.
type Action string

const (
	ActionView     Action = "view"
	ActionEdit     Action = "edit"
	ActionExport   Action = "export"
	ActionApprove  Action = "approve"
	ActionManage   Action = "manage"
	ActionRollback Action = "rollback"
	ActionCleanup  Action = "cleanup"
)

// moduleOrder fixes the iteration order for AccessibleModules.
var moduleOrder = []Module{
	ModuleFinance,
	ModuleMarketing,
	ModuleReservations,
	ModuleLogistics,
	ModuleAIAgent,
	ModuleSettings,
	ModuleUsers,
	ModuleActivityLog,
}

// actionOrder fixes the iteration order for ModulePermissions.
var actionOrder = []Action{
	ActionView,
	ActionEdit,
	ActionExport,
	ActionApprove,
	ActionManage,
	ActionRollback,
	ActionCleanup,
}

// permissionTable is the exact allow-list per module and action. Membership
// is checked verbatim; a manager is never granted an admin-only action just
// because manager outranks staff. Every module defines at least view.
var permissionTable = map[Module]map[Action][]Role{
	ModuleFinance: {
		ActionView:   {RoleAdmin, RoleManager, RoleGuest},
		ActionEdit:   {RoleAdmin, RoleManager},
		ActionExport: {RoleAdmin, RoleManager},
	},
	ModuleMarketing: {
		ActionView:   {RoleAdmin, RoleManager, RoleStaff, RoleGuest},
		ActionEdit:   {RoleAdmin, RoleManager},
		ActionExport: {RoleAdmin, RoleManager},
	},
	ModuleReservations: {
		ActionView:   {RoleAdmin, RoleManager, RoleStaff, RoleGuest},
		ActionEdit:   {RoleAdmin, RoleManager, RoleStaff},
		ActionExport: {RoleAdmin, RoleManager},
	},
	ModuleLogistics: {
		ActionView:   {RoleAdmin, RoleManager, RoleStaff, RoleGuest},
		ActionEdit:   {RoleAdmin, RoleManager, RoleStaff},
		ActionExport: {RoleAdmin, RoleManager},
	},
	ModuleAIAgent: {
		ActionView:    {RoleAdmin, RoleManager, RoleStaff},
		ActionApprove: {RoleAdmin, RoleManager},
	},
	ModuleSettings: {
		ActionView: {RoleAdmin, RoleManager},
		ActionEdit: {RoleAdmin},
	},
	ModuleUsers: {
		ActionView:   {RoleAdmin},
		ActionManage: {RoleAdmin},
	},
	ModuleActivityLog: {
		ActionView:     {RoleAdmin, RoleManager},
		ActionRollback: {RoleAdmin, RoleManager},
		ActionCleanup:  {RoleAdmin},
	},
}

// ParseModule resolves a raw module name. Unknown modules are rejected rather
// than silently denied downstream.
func ParseModule(raw string) (Module, bool) {
	module := Module(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := permissionTable[module]
	return module, ok
}

// Modules lists every module in the permission table in display order.
func Modules() []Module {
	return append([]Module(nil), moduleOrder...)
}
