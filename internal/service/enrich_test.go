package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/payassure/payassure-web/internal/domain/auth"
	"github.com/payassure/payassure-web/internal/mocks"
	mockauth "github.com/payassure/payassure-web/internal/mocks/auth"
)

func seedSession(t *testing.T, store *mockauth.MemorySessionStore, user domainauth.User) domainauth.Session {
	t.Helper()
	sess := domainauth.Session{
		ID:        "sess-1",
		User:      user,
		Role:      domainauth.ParseRole(user.Role),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Save(context.Background(), sess))
	return sess
}

func TestEnrich_MergesFetchedUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	be := mocks.NewMockBackend(ctrl)
	store := mockauth.NewMemorySessionStore()
	seedSession(t, store, domainauth.User{ID: "42", Role: "insurer"})

	be.EXPECT().
		FetchUser(gomock.Any(), domainauth.RoleInsurer, "42").
		Return(domainauth.User{ID: "42", Name: "Jane", Email: "jane@example.com", Role: "admin"}, nil).
		Times(1)

	svc := NewEnrichmentService(EnrichmentServiceOptions{Backend: be, Sessions: store})

	got, err := svc.Enrich(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, domainauth.User{ID: "42", Name: "Jane", Email: "jane@example.com", Role: "insurer"}, got.User)
	assert.True(t, got.EnrichAttempted)

	stored, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", stored.User.Name)

	// Already enriched: no further backend calls.
	_, err = svc.Enrich(context.Background(), "sess-1")
	require.NoError(t, err)
}

func TestEnrich_FailureKeepsIDAndRoleAndNeverRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	be := mocks.NewMockBackend(ctrl)
	store := mockauth.NewMemorySessionStore()
	seedSession(t, store, domainauth.User{ID: "42", Role: "insurer"})

	be.EXPECT().
		FetchUser(gomock.Any(), domainauth.RoleInsurer, "42").
		Return(domainauth.User{}, errors.New("boom")).
		Times(1)

	svc := NewEnrichmentService(EnrichmentServiceOptions{Backend: be, Sessions: store})

	got, err := svc.Enrich(context.Background(), "sess-1")
	require.Error(t, err)
	assert.Equal(t, domainauth.User{ID: "42", Role: "insurer"}, got.User)

	stored, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, domainauth.User{ID: "42", Role: "insurer"}, stored.User)
	assert.True(t, stored.EnrichAttempted)
	assert.False(t, stored.NeedsEnrichment())

	started, err := svc.Trigger(stored)
	require.NoError(t, err)
	assert.False(t, started)
	_, err = svc.Enrich(context.Background(), "sess-1")
	require.NoError(t, err)
}

func TestEnrich_ResultWithoutNameDoesNotLoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	be := mocks.NewMockBackend(ctrl)
	store := mockauth.NewMemorySessionStore()
	seedSession(t, store, domainauth.User{ID: "42", Role: "customer"})

	be.EXPECT().FetchUser(gomock.Any(), domainauth.RoleCustomer, "42").
		Return(domainauth.User{ID: "42", Email: "x@y.z"}, nil).Times(1)

	svc := NewEnrichmentService(EnrichmentServiceOptions{Backend: be, Sessions: store})
	for range 3 {
		_, err := svc.Enrich(context.Background(), "sess-1")
		require.NoError(t, err)
	}
}

func TestEnrich_DiscardsResultAfterLogout(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	seedSession(t, store, domainauth.User{ID: "42", Role: "insurer"})

	be := &mockauth.StubBackend{
		FetchUserFunc: func(ctx context.Context, _ domainauth.Role, id string) (domainauth.User, error) {
			// Logout lands while the fetch is outstanding.
			require.NoError(t, store.Delete(ctx, "sess-1"))
			return domainauth.User{ID: id, Name: "Jane"}, nil
		},
	}
	svc := NewEnrichmentService(EnrichmentServiceOptions{Backend: be, Sessions: store})

	_, err := svc.Enrich(context.Background(), "sess-1")
	require.ErrorIs(t, err, ErrSessionGone)

	_, err = store.Get(context.Background(), "sess-1")
	assert.Error(t, err, "logged-out session must not be resurrected")
}

func TestEnrich_NonConditionalStoreFallback(t *testing.T) {
	var mu sync.Mutex
	saved := map[string]domainauth.Session{
		"sess-1": {ID: "sess-1", User: domainauth.User{ID: "9", Role: "admin"}, Role: domainauth.RoleAdmin, ExpiresAt: time.Now().Add(time.Hour)},
	}
	store := &mockSessionStore{
		getFunc: func(_ context.Context, id string) (domainauth.Session, error) {
			mu.Lock()
			defer mu.Unlock()
			s, ok := saved[id]
			if !ok {
				return domainauth.Session{}, mockauth.ErrNotFound
			}
			return s, nil
		},
		saveFunc: func(_ context.Context, s domainauth.Session) error {
			mu.Lock()
			defer mu.Unlock()
			saved[s.ID] = s
			return nil
		},
	}
	be := &mockauth.StubBackend{
		FetchUserFunc: func(_ context.Context, role domainauth.Role, id string) (domainauth.User, error) {
			assert.Equal(t, domainauth.RoleAdmin, role)
			return domainauth.User{ID: id, Name: "Ada"}, nil
		},
	}

	svc := NewEnrichmentService(EnrichmentServiceOptions{Backend: be, Sessions: store})
	got, err := svc.Enrich(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.User.Name)
}

func TestEnrich_TimeoutBoundsFetch(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	seedSession(t, store, domainauth.User{ID: "42", Role: "insurer"})

	be := &mockauth.StubBackend{
		FetchUserFunc: func(ctx context.Context, _ domainauth.Role, _ string) (domainauth.User, error) {
			<-ctx.Done()
			return domainauth.User{}, ctx.Err()
		},
	}
	svc := NewEnrichmentService(EnrichmentServiceOptions{
		Backend:  be,
		Sessions: store,
		Settings: EnrichmentSettings{Timeout: 20 * time.Millisecond},
	})

	_, err := svc.Enrich(context.Background(), "sess-1")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTrigger_SingleFetchUnderConcurrency(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	sess := seedSession(t, store, domainauth.User{ID: "42", Role: "insurer"})

	release := make(chan struct{})
	be := &mockauth.StubBackend{
		FetchUserFunc: func(_ context.Context, _ domainauth.Role, id string) (domainauth.User, error) {
			<-release
			return domainauth.User{ID: id, Name: "Jane"}, nil
		},
	}
	svc := NewEnrichmentService(EnrichmentServiceOptions{Backend: be, Sessions: store})

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Trigger(sess)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.True(t, svc.Pending(sess.ID))
	close(release)

	require.NoError(t, svc.Shutdown(context.Background()))
	assert.Equal(t, 1, be.Calls("FetchUser"))
	assert.False(t, svc.Pending(sess.ID))

	stored, err := store.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", stored.User.Name)
}

func TestTrigger_SkipsSessionsThatNeedNothing(t *testing.T) {
	svc := NewEnrichmentService(EnrichmentServiceOptions{Backend: &mockauth.StubBackend{}, Sessions: mockauth.NewMemorySessionStore()})

	started, err := svc.Trigger(domainauth.Session{ID: "a", User: domainauth.User{ID: "1", Name: "Named"}})
	require.NoError(t, err)
	assert.False(t, started)

	started, err = svc.Trigger(domainauth.Session{ID: "b"})
	require.NoError(t, err)
	assert.False(t, started)
}

func TestShutdown_RejectsNewWorkAndCancelsOnDeadline(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	sess := seedSession(t, store, domainauth.User{ID: "42", Role: "insurer"})

	be := &mockauth.StubBackend{
		FetchUserFunc: func(ctx context.Context, _ domainauth.Role, _ string) (domainauth.User, error) {
			<-ctx.Done()
			return domainauth.User{}, ctx.Err()
		},
	}
	svc := NewEnrichmentService(EnrichmentServiceOptions{
		Backend:  be,
		Sessions: store,
		Settings: EnrichmentSettings{Timeout: time.Minute},
	})

	started, err := svc.Trigger(sess)
	require.NoError(t, err)
	require.True(t, started)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, svc.Shutdown(ctx), context.DeadlineExceeded)

	_, err = svc.Trigger(domainauth.Session{ID: "other", User: domainauth.User{ID: "1"}})
	assert.ErrorIs(t, err, ErrEnricherClosed)
}
