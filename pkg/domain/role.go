package domain

// Role is a user's permission level within a tenant.
type Role string

const (
	RoleSuperAdmin Role = "super-admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleEditor     Role = "editor"
	RoleUser       Role = "user"
)

// AllRoles lists every role from highest to lowest rank.
var AllRoles = []Role{RoleSuperAdmin, RoleAdmin, RoleManager, RoleEditor, RoleUser}

// ParseRole returns the Role for s or ErrInvalidRole.
func ParseRole(s string) (Role, error) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", ErrInvalidRole
}

// Rank orders roles for permission checks. Editor and user share the lowest
// rank; unknown roles rank below everything.
func (r Role) Rank() int {
	switch r {
	case RoleSuperAdmin:
		return 3
	case RoleAdmin:
		return 2
	case RoleManager:
		return 1
	case RoleEditor, RoleUser:
		return 0
	default:
		return -1
	}
}

// Privileged reports whether the role may reassign other users' roles.
func (r Role) Privileged() bool {
	return r.Rank() > 0
}

// AllowedRoles returns the roles an actor with the given role may assign,
// highest first. Editors, users and unknown roles may assign nothing.
func AllowedRoles(acting Role) []Role {
	if !acting.Privileged() {
		return nil
	}
	allowed := make([]Role, 0, len(AllRoles))
	for _, r := range AllRoles {
		if r.Rank() <= acting.Rank() {
			allowed = append(allowed, r)
		}
	}
	return allowed
}

// CanAssign reports whether acting may give target to another user.
func CanAssign(acting, target Role) bool {
	for _, r := range AllowedRoles(acting) {
		if r == target {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether r is one of roles.
func (r Role) HasAnyRole(roles ...Role) bool {
	for _, candidate := range roles {
		if candidate == r {
			return true
		}
	}
	return false
}
