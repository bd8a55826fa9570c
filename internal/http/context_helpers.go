package httpx

import (
	"context"

	domainauth "github.com/payassure/payassure-web/internal/domain/auth"
	"github.com/payassure/payassure-web/internal/domain/theme"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
type sessionKey struct{}

// themeKey carries the request's theme mode.
type themeKey struct{}

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext returns the session placed by the auth middleware, or nil.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	if s, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && s != nil {
		return s
	}
	return nil
}

// IsAuthenticated reports whether the request context carries a session.
func IsAuthenticated(ctx context.Context) bool {
	return GetSessionFromContext(ctx) != nil
}

// SetThemeInContext returns a child context carrying mode.
func SetThemeInContext(ctx context.Context, mode theme.Mode) context.Context {
	return context.WithValue(ctx, themeKey{}, mode)
}

// ThemeFromContext returns the request's theme mode, defaulting to light.
func ThemeFromContext(ctx context.Context) theme.Mode {
	if m, ok := ctx.Value(themeKey{}).(theme.Mode); ok && m != "" {
		return m
	}
	return theme.Light
}
