package models

import "strings"

// SessionState is the authentication-presence state of the client.
type SessionState int

const (
	// SessionUnknown is the state before the stored token has been probed.
	SessionUnknown SessionState = iota
	// SessionAuthenticated means a token is stored.
	SessionAuthenticated
	// SessionUnauthenticated means no token is stored.
	SessionUnauthenticated
)

// String returns the display name for a session state.
func (s SessionState) String() string {
	switch s {
	case SessionUnknown:
		return "Unknown"
	case SessionAuthenticated:
		return "Authenticated"
	case SessionUnauthenticated:
		return "Unauthenticated"
	default:
		return "Invalid"
	}
}

// Role is the role reported by the service at login.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
	RoleNone  Role = ""
)

// ParseRole normalizes a role string from the service.
func ParseRole(s string) Role {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ADMIN", "ROLE_ADMIN":
		return RoleAdmin
	case "":
		return RoleNone
	default:
		return RoleUser
	}
}

// IsAdmin reports whether the role grants the full dashboard.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
