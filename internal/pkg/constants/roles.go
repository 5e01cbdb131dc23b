package constants

import "slices"

// Session roles. Anonymous desk sessions start as User.
const (
	User  = "user"
	Staff = "staff"
)

var validRoles = []string{User, Staff}

// IsValidRole reports whether role may be carried by a session principal.
func IsValidRole(role string) bool {
	return slices.Contains(validRoles, role)
}
