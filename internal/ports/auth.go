package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/payassure/payassure-web/internal/domain/auth"
)

// LoginInput carries the credentials submitted on the login form.
type LoginInput struct {
	Email    string
	Password string
}

// ResetInput carries the fields submitted on the reset-password form.
type ResetInput struct {
	Email       string
	OTP         string
	NewPassword string
}

// Backend is the external PayAssure service that owns credentials, OTPs and user records.
type Backend interface {
	// Login verifies credentials and returns the authenticated user.
	Login(ctx context.Context, in LoginInput) (domainauth.User, error)

	// ForgotPassword asks the backend to email an OTP and returns its success message, if any.
	ForgotPassword(ctx context.Context, email string) (string, error)

	// ResetPassword sets a new password using an OTP and returns the success message, if any.
	ResetPassword(ctx context.Context, in ResetInput) (string, error)

	// FetchUser loads the full user record for a role-specific id.
	FetchUser(ctx context.Context, role domainauth.Role, id string) (domainauth.User, error)
}

// BackendObserver records the outcome of backend calls.
type BackendObserver interface {
	ObserveBackendCall(operation, outcome string, took time.Duration)
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper maps the backend's raw role string to an application role.
type RoleMapper interface {
	Map(raw string) domainauth.Role
}

// ConditionalSessionStore can overwrite a session only while it still exists.
// Stores implementing it let background updates avoid resurrecting a logged-out session.
type ConditionalSessionStore interface {
	SessionStore
	SaveIfExists(ctx context.Context, sess domainauth.Session) (bool, error)
}
