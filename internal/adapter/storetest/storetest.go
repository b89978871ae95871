// Package storetest holds conformance suites shared by the session store
// and rate counter implementations.
package storetest

import (
	"context"
	"testing"
	"time"

	"gatechat/internal/domain"
)

// RunSessionStoreTests exercises the SessionStore contract against a
// fresh store per subtest.
func RunSessionStoreTests(t *testing.T, newStore func(t *testing.T) domain.SessionStore) {
	t.Helper()
	ctx := context.Background()

	sample := func(token string, expiresAt time.Time) *domain.Session {
		now := time.Now().UTC().Truncate(time.Millisecond)
		return &domain.Session{
			Token:         token,
			Authenticated: true,
			LoginTime:     now,
			LastActivity:  now,
			ExpiresAt:     expiresAt.UTC().Truncate(time.Millisecond),
			CreatedAt:     now,
		}
	}

	t.Run("get missing", func(t *testing.T) {
		store := newStore(t)
		got, err := store.Get(ctx, "no-such-token")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil session, got %+v", got)
		}
	})

	t.Run("put then get", func(t *testing.T) {
		store := newStore(t)
		want := sample("tok-1", time.Now().Add(time.Hour))
		if err := store.Put(ctx, want); err != nil {
			t.Fatalf("Put: %v", err)
		}

		got, err := store.Get(ctx, "tok-1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got == nil {
			t.Fatal("expected session, got nil")
		}
		if got.Token != want.Token || !got.Authenticated {
			t.Fatalf("got %+v, want %+v", got, want)
		}
		if !got.ExpiresAt.Equal(want.ExpiresAt) {
			t.Fatalf("ExpiresAt = %v, want %v", got.ExpiresAt, want.ExpiresAt)
		}
	})

	t.Run("put overwrites", func(t *testing.T) {
		store := newStore(t)
		sess := sample("tok-2", time.Now().Add(time.Hour))
		if err := store.Put(ctx, sess); err != nil {
			t.Fatalf("Put: %v", err)
		}

		sess.LastActivity = sess.LastActivity.Add(time.Minute)
		sess.ExpiresAt = sess.ExpiresAt.Add(time.Minute)
		if err := store.Put(ctx, sess); err != nil {
			t.Fatalf("Put overwrite: %v", err)
		}

		got, err := store.Get(ctx, "tok-2")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got == nil || !got.ExpiresAt.Equal(sess.ExpiresAt) {
			t.Fatalf("overwrite not visible: got %+v", got)
		}
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)
		if err := store.Put(ctx, sample("tok-3", time.Now().Add(time.Hour))); err != nil {
			t.Fatalf("Put: %v", err)
		}
		if err := store.Delete(ctx, "tok-3"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		got, err := store.Get(ctx, "tok-3")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil after delete, got %+v", got)
		}
	})

	t.Run("delete missing is not an error", func(t *testing.T) {
		store := newStore(t)
		if err := store.Delete(ctx, "never-existed"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
	})

	t.Run("delete expired keeps live sessions", func(t *testing.T) {
		store := newStore(t)
		if err := store.Put(ctx, sample("live", time.Now().Add(time.Hour))); err != nil {
			t.Fatalf("Put: %v", err)
		}
		if err := store.Put(ctx, sample("dead", time.Now().Add(-time.Hour))); err != nil {
			t.Fatalf("Put: %v", err)
		}

		if err := store.DeleteExpired(ctx); err != nil {
			t.Fatalf("DeleteExpired: %v", err)
		}

		live, err := store.Get(ctx, "live")
		if err != nil {
			t.Fatalf("Get live: %v", err)
		}
		if live == nil {
			t.Fatal("live session was swept")
		}
	})
}

// RunRateCounterTests exercises the fixed-window counter contract.
func RunRateCounterTests(t *testing.T, newStore func(t *testing.T) domain.RateCounterStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("counts within a window", func(t *testing.T) {
		store := newStore(t)
		for want := 1; want <= 5; want++ {
			n, err := store.Increment(ctx, "k1", time.Minute)
			if err != nil {
				t.Fatalf("Increment: %v", err)
			}
			if n != want {
				t.Fatalf("count = %d, want %d", n, want)
			}
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		store := newStore(t)
		if _, err := store.Increment(ctx, "a", time.Minute); err != nil {
			t.Fatalf("Increment: %v", err)
		}
		n, err := store.Increment(ctx, "b", time.Minute)
		if err != nil {
			t.Fatalf("Increment: %v", err)
		}
		if n != 1 {
			t.Fatalf("count = %d, want 1", n)
		}
	})

	t.Run("window reset", func(t *testing.T) {
		store := newStore(t)
		window := 50 * time.Millisecond
		for i := 0; i < 3; i++ {
			if _, err := store.Increment(ctx, "r", window); err != nil {
				t.Fatalf("Increment: %v", err)
			}
		}
		time.Sleep(window + 20*time.Millisecond)

		n, err := store.Increment(ctx, "r", window)
		if err != nil {
			t.Fatalf("Increment: %v", err)
		}
		if n != 1 {
			t.Fatalf("count after window elapsed = %d, want 1", n)
		}
	})
}
