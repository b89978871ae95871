package app

import (
	"context"
	"time"

	"gatechat/internal/domain"
)

// Bucket is a fixed-window rate-limit policy. The window resets entirely
// once its duration elapses, so requests straddling a boundary may burst
// up to twice Max.
type Bucket struct {
	Name    string
	Window  time.Duration
	Max     int
	Message string
}

// The three independently configured buckets.
var (
	BucketGeneral = Bucket{
		Name:    "general",
		Window:  15 * time.Minute,
		Max:     100,
		Message: "Too many requests from this IP, please try again later.",
	}
	BucketLogin = Bucket{
		Name:    "login",
		Window:  15 * time.Minute,
		Max:     5,
		Message: "Too many login attempts, please try again later.",
	}
	BucketChat = Bucket{
		Name:    "chat",
		Window:  time.Minute,
		Max:     10,
		Message: "Too many chat requests, please slow down.",
	}
)

// RateLimiter throttles requests per client identity using fixed-window
// counters held in an injected store.
type RateLimiter struct {
	counters domain.RateCounterStore
}

// NewRateLimiter creates a RateLimiter over the given counter store.
func NewRateLimiter(counters domain.RateCounterStore) *RateLimiter {
	return &RateLimiter{counters: counters}
}

// Allow records one request for clientID against the bucket and reports
// whether it fits within the current window.
func (l *RateLimiter) Allow(ctx context.Context, b Bucket, clientID string) (bool, error) {
	n, err := l.counters.Increment(ctx, b.Name+":"+clientID, b.Window)
	if err != nil {
		return false, err
	}
	return n <= b.Max, nil
}
