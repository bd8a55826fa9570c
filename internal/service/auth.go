package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/payassure/payassure-web/internal/domain/auth"
	apperrors "github.com/payassure/payassure-web/internal/errors"
	"github.com/payassure/payassure-web/internal/ports"
)

const defaultSessionTTL = 8 * time.Hour

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Backend  ports.Backend
	Sessions ports.SessionStore
	Settings AuthSettings
}

// AuthSettings holds optional tuning for AuthService.
type AuthSettings struct {
	Roles      ports.RoleMapper // nil: domainauth.ParseRole
	SessionTTL time.Duration    // zero: 8h
	Now        func() time.Time // nil: time.Now
}

// AuthService orchestrates credential login, password recovery and session persistence.
// Credential checks and OTP handling happen in the backend.
type AuthService struct {
	backend  ports.Backend
	sessions ports.SessionStore
	roles    ports.RoleMapper
	ttl      time.Duration
	now      func() time.Time
}

// ErrSessionExpired is returned when a stored session is past its expiry.
var ErrSessionExpired = apperrors.Unauthorized("session expired")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Backend == nil {
		panic("auth service: backend is required")
	}
	if opts.Sessions == nil {
		panic("auth service: session store is required")
	}
	ttl := opts.Settings.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	now := opts.Settings.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		backend:  opts.Backend,
		sessions: opts.Sessions,
		roles:    opts.Settings.Roles,
		ttl:      ttl,
		now:      now,
	}
}

// LoginResult contains the session created by a successful login.
type LoginResult struct {
	Session domainauth.Session
}

// Login verifies credentials with the backend and persists a new session for the returned user.
// Backend rejections are returned unchanged so callers can surface the backend's message.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*LoginResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" {
		return nil, apperrors.ValidationField("email", "email is required")
	}
	if in.Password == "" {
		return nil, apperrors.ValidationField("password", "password is required")
	}

	user, err := s.backend.Login(ctx, in)
	if err != nil {
		return nil, err
	}

	role := s.mapRole(user.Role)
	if user.Role == "" {
		user.Role = string(role)
	}

	now := s.now()
	session := domainauth.Session{
		ID:        generateSessionID(),
		User:      user,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	return &LoginResult{Session: session}, nil
}

// ForgotPassword asks the backend to send an OTP and returns the backend's message, if any.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", apperrors.ValidationField("email", "email is required")
	}
	return s.backend.ForgotPassword(ctx, email)
}

// ResetPassword completes an OTP reset and returns the backend's message, if any.
func (s *AuthService) ResetPassword(ctx context.Context, in ports.ResetInput) (string, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.OTP = strings.TrimSpace(in.OTP)
	switch {
	case in.Email == "":
		return "", apperrors.ValidationField("email", "email is required")
	case in.OTP == "":
		return "", apperrors.ValidationField("otp", "otp is required")
	case in.NewPassword == "":
		return "", apperrors.ValidationField("newPassword", "new password is required")
	}
	return s.backend.ResetPassword(ctx, in)
}

// GetSession retrieves a session by ID.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Expired(s.now()) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// Logout removes a session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

func (s *AuthService) mapRole(raw string) domainauth.Role {
	if s.roles != nil {
		return s.roles.Map(raw)
	}
	return domainauth.ParseRole(raw)
}

// generateSessionID creates a random, URL-safe session identifier.
func generateSessionID() string {
	return uuid.New().String()
}
