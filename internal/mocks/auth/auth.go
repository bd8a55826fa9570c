package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/payassure/payassure-web/internal/domain/auth"
	apperrors "github.com/payassure/payassure-web/internal/errors"
	"github.com/payassure/payassure-web/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.Backend                 = (*StubBackend)(nil)
	_ ports.ConditionalSessionStore = (*MemorySessionStore)(nil)
)

// StubBackend answers backend calls through optional funcs and counts every call.
type StubBackend struct {
	LoginFunc          func(ctx context.Context, in ports.LoginInput) (domainauth.User, error)
	ForgotPasswordFunc func(ctx context.Context, email string) (string, error)
	ResetPasswordFunc  func(ctx context.Context, in ports.ResetInput) (string, error)
	FetchUserFunc      func(ctx context.Context, role domainauth.Role, id string) (domainauth.User, error)

	mu    sync.Mutex
	calls map[string]int
}

func (s *StubBackend) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[op]++
}

// Calls returns how many times op ("Login", "ForgotPassword", ...) was invoked.
func (s *StubBackend) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// TotalCalls returns the number of backend calls of any kind.
func (s *StubBackend) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *StubBackend) Login(ctx context.Context, in ports.LoginInput) (domainauth.User, error) {
	s.record("Login")
	if s.LoginFunc != nil {
		return s.LoginFunc(ctx, in)
	}
	return domainauth.User{ID: "mock-user-1", Email: in.Email, Role: string(domainauth.RoleCustomer)}, nil
}

func (s *StubBackend) ForgotPassword(ctx context.Context, email string) (string, error) {
	s.record("ForgotPassword")
	if s.ForgotPasswordFunc != nil {
		return s.ForgotPasswordFunc(ctx, email)
	}
	return "", nil
}

func (s *StubBackend) ResetPassword(ctx context.Context, in ports.ResetInput) (string, error) {
	s.record("ResetPassword")
	if s.ResetPasswordFunc != nil {
		return s.ResetPasswordFunc(ctx, in)
	}
	return "", nil
}

func (s *StubBackend) FetchUser(ctx context.Context, role domainauth.Role, id string) (domainauth.User, error) {
	s.record("FetchUser")
	if s.FetchUserFunc != nil {
		return s.FetchUserFunc(ctx, role, id)
	}
	return domainauth.User{ID: id, Role: string(role)}, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) SaveIfExists(_ context.Context, sess domainauth.Session) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sess.ID]; !ok {
		return false, nil
	}
	m.sessions[sess.ID] = sess
	return true, nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok || id == "" {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports how many sessions are stored.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ErrNotFound is returned by mocks when an entity is not present.
var ErrNotFound error = apperrors.NotFound("not found")
