// Package memory provides an in-process session store for single-instance deployments.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	domainauth "github.com/payassure/payassure-web/internal/domain/auth"
	apperrors "github.com/payassure/payassure-web/internal/errors"
)

const defaultSize = 10000

// ErrNotFound is returned when a session is not present or has expired.
var ErrNotFound error = apperrors.NotFound("session not found")

// SessionStore keeps sessions in a size-bounded LRU whose entries expire after ttl.
// Sessions are also checked against their own ExpiresAt on read.
type SessionStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, domainauth.Session]
	now   func() time.Time
}

// NewSessionStore creates a store holding at most size sessions for at most ttl each.
func NewSessionStore(size int, ttl time.Duration) *SessionStore {
	if size <= 0 {
		size = defaultSize
	}
	return &SessionStore{
		cache: expirable.NewLRU[string, domainauth.Session](size, nil, ttl),
		now:   time.Now,
	}
}

func (s *SessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if sess.Expired(s.now()) {
		return errors.New("session is expired")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(sess.ID, sess)
	return nil
}

// SaveIfExists overwrites the session only when it is still stored.
func (s *SessionStore) SaveIfExists(_ context.Context, sess domainauth.Session) (bool, error) {
	if sess.ID == "" {
		return false, errors.New("session ID cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cache.Contains(sess.ID) {
		return false, nil
	}
	s.cache.Add(sess.ID, sess)
	return true, nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.cache.Get(id)
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	if sess.Expired(s.now()) {
		s.cache.Remove(id)
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(id)
	return nil
}

// Len reports the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
