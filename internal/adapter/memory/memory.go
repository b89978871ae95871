// Package memory implements in-process stores for single-instance
// deployments and for testing.
package memory

import (
	"context"
	"sync"
	"time"

	"gatechat/internal/domain"
)

// Store holds sessions and rate counters in process memory.
type Store struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	counters map[string]*counter
}

type counter struct {
	count       int
	windowStart time.Time
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		sessions: make(map[string]domain.Session),
		counters: make(map[string]*counter),
	}
}

// Ensure interfaces are met.
var _ domain.SessionStore = (*Store)(nil)
var _ domain.RateCounterStore = (*Store)(nil)

// --- SessionStore ---

// Get retrieves a session by token. Returns (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	// Copy so callers can mutate before Put without racing other readers.
	out := sess
	return &out, nil
}

// Put creates or replaces a session record.
func (s *Store) Put(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = *session
	return nil
}

// Delete removes a session record.
func (s *Store) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// DeleteExpired removes all sessions past their expiry.
func (s *Store) DeleteExpired(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for token, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, token)
		}
	}
	return nil
}

// --- RateCounterStore ---

// Increment bumps the fixed-window counter for key, starting a fresh
// window whenever the previous one has elapsed.
func (s *Store) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	c, ok := s.counters[key]
	if !ok || now.Sub(c.windowStart) >= window {
		s.counters[key] = &counter{count: 1, windowStart: now}
		return 1, nil
	}
	c.count++
	return c.count, nil
}
