package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/payassure/payassure-web/internal/domain/auth"
	"github.com/payassure/payassure-web/internal/ports"
)

func TestStubBackend_Defaults(t *testing.T) {
	b := &StubBackend{}
	ctx := context.Background()

	u, err := b.Login(ctx, ports.LoginInput{Email: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)

	u, err = b.FetchUser(ctx, domainauth.RoleInsurer, "42")
	require.NoError(t, err)
	assert.Equal(t, "42", u.ID)

	assert.Equal(t, 1, b.Calls("Login"))
	assert.Equal(t, 1, b.Calls("FetchUser"))
	assert.Equal(t, 2, b.TotalCalls())
}

func TestStubBackend_CustomFuncs(t *testing.T) {
	boom := errors.New("boom")
	b := &StubBackend{
		ForgotPasswordFunc: func(context.Context, string) (string, error) { return "", boom },
	}
	_, err := b.ForgotPassword(context.Background(), "a@b.com")
	assert.ErrorIs(t, err, boom)
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.Error(t, store.Save(ctx, domainauth.Session{}))

	ok, err := store.SaveIfExists(ctx, domainauth.Session{ID: "s"})
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "s"}))
	got, err := store.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "s", got.ID)

	require.NoError(t, store.Delete(ctx, "s"))
	_, err = store.Get(ctx, "s")
	assert.Equal(t, ErrNotFound, err)
	assert.Equal(t, 0, store.Len())
}
