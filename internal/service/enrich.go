package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/payassure/payassure-web/internal/domain/auth"
	"github.com/payassure/payassure-web/internal/ports"
)

const defaultEnrichTimeout = 10 * time.Second

// ErrSessionGone is returned when a session was deleted while it was being enriched.
var ErrSessionGone = errors.New("session no longer exists")

// ErrEnricherClosed is returned by Trigger after Shutdown.
var ErrEnricherClosed = errors.New("enrichment service is shut down")

// EnrichmentServiceOptions groups dependencies for EnrichmentService.
type EnrichmentServiceOptions struct {
	Backend  ports.Backend
	Sessions ports.SessionStore
	Settings EnrichmentSettings
}

// EnrichmentSettings holds optional tuning for EnrichmentService.
type EnrichmentSettings struct {
	Timeout time.Duration // per fetch; zero: 10s
	Logger  *slog.Logger
}

// EnrichmentService fills in missing user details for sessions whose login response
// carried only an id and role. Each session is fetched at most once: the attempt flag
// is persisted before the backend call and concurrent triggers share one flight.
type EnrichmentService struct {
	backend  ports.Backend
	sessions ports.SessionStore
	timeout  time.Duration
	logger   *slog.Logger

	group singleflight.Group
	wg    sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	inflight map[string]struct{}

	baseCtx context.Context
	cancel  context.CancelFunc
}

// NewEnrichmentService constructs an EnrichmentService.
func NewEnrichmentService(opts EnrichmentServiceOptions) *EnrichmentService {
	if opts.Backend == nil {
		panic("enrichment service: backend is required")
	}
	if opts.Sessions == nil {
		panic("enrichment service: session store is required")
	}
	timeout := opts.Settings.Timeout
	if timeout <= 0 {
		timeout = defaultEnrichTimeout
	}
	logger := opts.Settings.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &EnrichmentService{
		backend:  opts.Backend,
		sessions: opts.Sessions,
		timeout:  timeout,
		logger:   logger.With("component", "enrichment"),
		inflight: make(map[string]struct{}),
		baseCtx:  ctx,
		cancel:   cancel,
	}
}

// Trigger starts enrichment for sess in the background when it needs it.
// It reports whether a background run was started or is already running.
func (s *EnrichmentService) Trigger(sess domainauth.Session) (bool, error) {
	if !sess.NeedsEnrichment() {
		return false, nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrEnricherClosed
	}
	if _, running := s.inflight[sess.ID]; running {
		s.mu.Unlock()
		return true, nil
	}
	s.inflight[sess.ID] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.clearInflight(sess.ID)
		if _, err := s.Enrich(s.baseCtx, sess.ID); err != nil && !errors.Is(err, ErrSessionGone) {
			s.logger.Warn("user enrichment failed", "user_id", sess.User.ID, "role", sess.Role, "error", err)
		}
	}()
	return true, nil
}

// Pending reports whether a background run for sessionID has not finished yet.
func (s *EnrichmentService) Pending(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[sessionID]
	return ok
}

func (s *EnrichmentService) clearInflight(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}

// Enrich fetches and merges the full user record for sessionID, once.
// On fetch failure the session keeps its {id, role} user and the error is returned.
// If the session is deleted before the result arrives, the result is dropped and
// ErrSessionGone is returned.
func (s *EnrichmentService) Enrich(ctx context.Context, sessionID string) (domainauth.Session, error) {
	v, err, _ := s.group.Do(sessionID, func() (any, error) {
		return s.enrich(ctx, sessionID)
	})
	sess, _ := v.(domainauth.Session)
	return sess, err
}

func (s *EnrichmentService) enrich(ctx context.Context, sessionID string) (domainauth.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("%w: %w", ErrSessionGone, err)
	}
	if !sess.NeedsEnrichment() {
		return sess, nil
	}

	sess.EnrichAttempted = true
	ok, err := s.saveIfExists(ctx, sess)
	if err != nil {
		return sess, fmt.Errorf("mark enrichment attempted: %w", err)
	}
	if !ok {
		return domainauth.Session{}, ErrSessionGone
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	user, fetchErr := s.backend.FetchUser(fetchCtx, sess.Role, sess.User.ID)
	if fetchErr != nil {
		return sess, fmt.Errorf("fetch user: %w", fetchErr)
	}

	// Re-read so a logout during the fetch wins over the result.
	current, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domainauth.Session{}, ErrSessionGone
	}
	current.User = current.User.Merge(user)
	current.EnrichAttempted = true

	ok, err = s.saveIfExists(ctx, current)
	if err != nil {
		return current, fmt.Errorf("save enriched session: %w", err)
	}
	if !ok {
		return domainauth.Session{}, ErrSessionGone
	}
	return current, nil
}

func (s *EnrichmentService) saveIfExists(ctx context.Context, sess domainauth.Session) (bool, error) {
	if cs, ok := s.sessions.(ports.ConditionalSessionStore); ok {
		return cs.SaveIfExists(ctx, sess)
	}
	if _, err := s.sessions.Get(ctx, sess.ID); err != nil {
		return false, nil
	}
	return true, s.sessions.Save(ctx, sess)
}

// Shutdown stops accepting new work and waits for running fetches.
// When ctx ends first, outstanding fetches are canceled.
func (s *EnrichmentService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return ctx.Err()
	}
}
