// Package session holds the two persisted fields of a signed in student or admin: the API token and the role.
//
// The client reads the store on every outgoing request, so the token sent is always the most recently persisted one.
// Stores are safe for concurrent use.
package session

import "fmt"

// Role is used for UI routing decisions only - the backend enforces access.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// ParseRole maps a persisted role value to a Role. Unknown values are treated as non-admin.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	if s == "" {
		return ""
	}
	return RoleUser
}

// ValidRoles lists the login sub-paths accepted by the backend
var ValidRoles = map[Role]bool{
	RoleUser:  true,
	RoleAdmin: true,
}

// Store persists the session token and role.
type Store interface {
	// Token returns the current token or "" when signed out
	Token() string
	Role() Role
	Set(token string, role Role) error
	// Clear removes both the token and the role
	Clear() error
}

func validateSet(token string, role Role) error {
	if token == "" {
		return fmt.Errorf("session token cannot be empty")
	}
	if !ValidRoles[role] {
		return fmt.Errorf("invalid role %q", role)
	}
	return nil
}
