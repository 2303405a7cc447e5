package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Label returns the display label for the role.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleUser:
		return "User"
	default:
		return string(r)
	}
}

// ParseRole maps free-form input to a Role. Matching is case-insensitive.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Principal is the authenticated identity held by the session.
// Role is fixed for the lifetime of a session; a different role needs a new login.
type Principal struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
}

// IsAdmin returns true if the principal holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// StateKind enumerates the session states.
type StateKind int

const (
	Unauthenticated StateKind = iota
	Authenticating
	Authenticated
)

func (k StateKind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State is the tri-state wrapper around Principal.
// Principal is non-nil only when Kind is Authenticated.
type State struct {
	Kind      StateKind
	Principal *Principal
}

// UnauthenticatedState returns the empty session state.
func UnauthenticatedState() State { return State{Kind: Unauthenticated} }

// AuthenticatingState returns the in-flight state.
func AuthenticatingState() State { return State{Kind: Authenticating} }

// AuthenticatedState returns a state holding a copy of p.
func AuthenticatedState(p Principal) State {
	return State{Kind: Authenticated, Principal: &p}
}

// IsAuthenticated returns true if the state holds a principal.
func (s State) IsAuthenticated() bool {
	return s.Kind == Authenticated && s.Principal != nil
}

// Record is the persisted form of an authenticated session.
// ExpiresAt is zero when the session does not expire.
type Record struct {
	Principal
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Expired reports whether the record has an expiry that lies before now.
func (r Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}
