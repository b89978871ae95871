// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// Session tracks whether a given browser has authenticated, and since when.
// A session exists only after a successful login; expiry slides forward
// with activity, so LastActivity + TTL is the single source of truth and
// ExpiresAt is kept in step with it on every authorized request.
type Session struct {
	Token         string
	Authenticated bool
	LoginTime     time.Time
	LastActivity  time.Time
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

// Expired reports whether the session's validity window has passed.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore defines the port for session persistence operations.
// Get returns (nil, nil) when no record exists; expiry is the caller's
// concern, so stores return records past their ExpiresAt unchanged.
type SessionStore interface {
	Get(ctx context.Context, token string) (*Session, error)
	Put(ctx context.Context, session *Session) error
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}

// RateCounterStore defines the port for fixed-window request counters.
type RateCounterStore interface {
	// Increment adds one to the counter for key and returns the resulting
	// count. The counter resets entirely once window has elapsed since the
	// window began; it never decays gradually.
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
}
