package auth

import "github.com/d9705996/hrportal/internal/model"

// roleLevel orders the employee-side roles. VENDOR is deliberately absent:
// it never satisfies a minimum-role check and vendor routes match it by
// equality instead.
var roleLevel = map[string]int{
	model.RoleEmployee:   1,
	model.RoleHR:         2,
	model.RoleAdmin:      3,
	model.RoleSuperAdmin: 4,
}

// HasRole reports whether role meets or exceeds the required role under the
// fixed hierarchy EMPLOYEE < HR < ADMIN < SUPERADMIN.
func HasRole(role, required string) bool {
	have, ok := roleLevel[role]
	if !ok {
		return false
	}
	want, ok := roleLevel[required]
	if !ok {
		return false
	}
	return have >= want
}

// ValidRole reports whether s is one of the known role values.
func ValidRole(s string) bool {
	if s == model.RoleVendor {
		return true
	}
	_, ok := roleLevel[s]
	return ok
}
