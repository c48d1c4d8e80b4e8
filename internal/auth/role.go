package auth

import "fmt"

// Role is the platform role carried by a session
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleVendor  Role = "vendor"
	RoleStudent Role = "student"
	RoleRider   Role = "rider"
)

// Selectable reports whether a user may pick r after signup
func (r Role) Selectable() bool {
	return r == RoleStudent || r == RoleRider
}

// ParseSelectableRole validates a role chosen on the select-role step
func ParseSelectableRole(s string) (Role, error) {
	r := Role(s)
	if !r.Selectable() {
		return "", fmt.Errorf("invalid role %q, must be one of: %s, %s", s, RoleStudent, RoleRider)
	}
	return r, nil
}
