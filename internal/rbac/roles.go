package rbac

import "strings"

// Role identifies an operator's access level. Roles form a total order used
// by HasRole; per-action permissions use exact allow-lists instead and never
// fall back to rank comparison.
type Role string

const (
	RoleGuest   Role = "guest"
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

var roleRanks = map[Role]int{
	RoleGuest:   0,
	RoleStaff:   1,
	RoleManager: 2,
	RoleAdmin:   3,
}

// Rank returns the role's position in the total order. Unknown roles rank 0.
func (r Role) Rank() int {
	if rank, ok := roleRanks[r]; ok {
		return rank
	}
	return 0
}

// ParseRole normalizes a raw role string. Unknown values map to guest so an
// unrecognized role never gains access it was not granted.
func ParseRole(raw string) Role {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := roleRanks[role]; ok {
		return role
	}
	return RoleGuest
}

// Roles lists the known roles in ascending rank order.
func Roles() []Role {
	return []Role{RoleGuest, RoleStaff, RoleManager, RoleAdmin}
}

// User is the caller-supplied identity checked by the RBAC helpers.
type User struct {
	ID   uint
	Role Role
}
