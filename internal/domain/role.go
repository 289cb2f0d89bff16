package domain

import "strings"

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

// Roles lists every known role from least to most privileged.
var Roles = []Role{RoleEmployee, RoleManager, RoleAdmin}

// ParseRole normalises a role string from a token or login response.
// Matching is case-insensitive and a "ROLE_" prefix is ignored.
func ParseRole(s string) (Role, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "ROLE_")
	for _, r := range Roles {
		if string(r) == v {
			return r, true
		}
	}
	return "", false
}

// Rank returns the privilege level of r, or -1 for an unknown role.
func (r Role) Rank() int {
	switch r {
	case RoleEmployee:
		return 0
	case RoleManager:
		return 1
	case RoleAdmin:
		return 2
	default:
		return -1
	}
}

func (r Role) Valid() bool {
	return r.Rank() >= 0
}

// Satisfies reports whether r grants at least the privileges of required.
// Higher roles satisfy lower requirements; an unknown role satisfies nothing.
func (r Role) Satisfies(required Role) bool {
	if !r.Valid() || !required.Valid() {
		return false
	}
	return r.Rank() >= required.Rank()
}

func (r Role) String() string {
	return string(r)
}
