package httpx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/payassure/payassure-web/internal/domain/auth"
	"github.com/payassure/payassure-web/internal/domain/theme"
)

func TestSessionContext(t *testing.T) {
	assert.Nil(t, GetSessionFromContext(context.Background()))
	assert.False(t, IsAuthenticated(context.Background()))

	sess := &domainauth.Session{ID: "abc", Role: domainauth.RoleCustomer}
	ctx := SetSessionInContext(context.Background(), sess)
	assert.Same(t, sess, GetSessionFromContext(ctx))
	assert.True(t, IsAuthenticated(ctx))

	// A nil session leaves the context untouched.
	assert.Equal(t, context.Background(), SetSessionInContext(context.Background(), nil))
}

func TestThemeContext(t *testing.T) {
	assert.Equal(t, theme.Light, ThemeFromContext(context.Background()))
	assert.Equal(t, theme.Dark, ThemeFromContext(SetThemeInContext(context.Background(), theme.Dark)))
	assert.Equal(t, theme.Light, ThemeFromContext(SetThemeInContext(context.Background(), "")))
}
