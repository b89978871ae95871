// Package redis implements the session store and rate counters on Redis,
// so multiple server instances can share authentication state and
// throttling windows.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gatechat/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Expired records are kept around briefly so a stale cookie still maps to
// a "session expired" answer instead of "no such session".
const expiredGrace = time.Hour

// Store implements domain.SessionStore and domain.RateCounterStore on a
// Redis server.
type Store struct {
	client    *redis.Client
	keyPrefix string
}

var _ domain.SessionStore = (*Store)(nil)
var _ domain.RateCounterStore = (*Store)(nil)

// New connects to Redis at addr and pings it.
func New(addr, keyPrefix string) (*Store, error) {
	cl := redis.NewClient(&redis.Options{Addr: addr})
	if err := cl.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if keyPrefix == "" {
		keyPrefix = "gatechat:"
	}
	return &Store{client: cl, keyPrefix: keyPrefix}, nil
}

// Close closes the Redis client.
func (s *Store) Close() error { return s.client.Close() }

func (s *Store) sessionKey(token string) string { return s.keyPrefix + "session:" + token }
func (s *Store) counterKey(key string) string   { return s.keyPrefix + "rate:" + key }

// --- SessionStore ---

// Get retrieves a session by token.
func (s *Store) Get(ctx context.Context, token string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, s.sessionKey(token)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// Put stores a session with a TTL slightly past its expiry.
func (s *Store) Put(ctx context.Context, sess *domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ttl := time.Until(sess.ExpiresAt) + expiredGrace
	if ttl <= 0 {
		ttl = expiredGrace
	}
	return s.client.Set(ctx, s.sessionKey(sess.Token), raw, ttl).Err()
}

// Delete removes a session record.
func (s *Store) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.sessionKey(token)).Err()
}

// DeleteExpired is a no-op: key TTLs already reap expired sessions.
func (s *Store) DeleteExpired(ctx context.Context) error { return nil }

// --- RateCounterStore ---

// Increment bumps a fixed-window counter. The key's TTL is set when the
// counter is first created, which is exactly a window that resets in full
// when it elapses.
func (s *Store) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	k := s.counterKey(key)
	n, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := s.client.Expire(ctx, k, window).Err(); err != nil {
			return 0, err
		}
	}
	return int(n), nil
}
