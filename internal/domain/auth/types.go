package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role represents a portal user's role as reported by the backend.
// Keep string form for easy persistence and cookies.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	RoleInsurer  Role = "insurer"
)

// DefaultRole is used when the backend omits the role.
const DefaultRole = RoleCustomer

// ParseRole case-folds a raw role string. Empty input yields DefaultRole.
// Unrecognised values are preserved so that route lookups fall back to an empty table.
func ParseRole(raw string) Role {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return DefaultRole
	}
	return Role(v)
}

// Known reports whether r is one of the roles the portal ships views for.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleCustomer, RoleInsurer:
		return true
	default:
		return false
	}
}

// Segment returns the capitalised path segment the backend uses for role-specific
// user endpoints (e.g. "Insurer"). Unknown roles map to "Customer".
func (r Role) Segment() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleInsurer:
		return "Insurer"
	default:
		return "Customer"
	}
}

// User is the authenticated principal returned by the backend.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Merge returns u with every non-empty field of other applied on top.
// ID and Role are only filled in when u lacks them.
func (u User) Merge(other User) User {
	out := u
	if out.ID == "" {
		out.ID = other.ID
	}
	if out.Role == "" {
		out.Role = other.Role
	}
	if other.Name != "" {
		out.Name = other.Name
	}
	if other.Email != "" {
		out.Email = other.Email
	}
	if !other.CreatedAt.IsZero() {
		out.CreatedAt = other.CreatedAt
	}
	return out
}

// DisplayName returns the best human-readable label for the user.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier carried by the browser cookie.
type Session struct {
	ID              string    `json:"id"`
	User            User      `json:"user"`
	Role            Role      `json:"role"`
	EnrichAttempted bool      `json:"enrich_attempted"`
	CreatedAt       time.Time `json:"created_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// NeedsEnrichment is true when the user has an id but no display name and
// no enrichment fetch has been attempted yet.
func (s Session) NeedsEnrichment() bool {
	return s.User.ID != "" && s.User.Name == "" && !s.EnrichAttempted
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
