package app

import (
	"context"
	"errors"
	"testing"
	"time"
)

type mockCounterStore struct {
	incrementFn func(ctx context.Context, key string, window time.Duration) (int, error)
}

func (m *mockCounterStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	if m.incrementFn != nil {
		return m.incrementFn(ctx, key, window)
	}
	return 1, nil
}

func TestRateLimiter_AllowUpToMax(t *testing.T) {
	ctx := context.Background()

	counts := map[string]int{}
	limiter := NewRateLimiter(&mockCounterStore{
		incrementFn: func(ctx context.Context, key string, window time.Duration) (int, error) {
			counts[key]++
			return counts[key], nil
		},
	})

	for i := 1; i <= BucketLogin.Max; i++ {
		ok, err := limiter.Allow(ctx, BucketLogin, "1.2.3.4")
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !ok {
			t.Fatalf("attempt %d denied, want allowed", i)
		}
	}

	ok, err := limiter.Allow(ctx, BucketLogin, "1.2.3.4")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Fatalf("attempt %d allowed, want denied", BucketLogin.Max+1)
	}
}

func TestRateLimiter_BucketsAndClientsIsolated(t *testing.T) {
	ctx := context.Background()

	var keys []string
	limiter := NewRateLimiter(&mockCounterStore{
		incrementFn: func(ctx context.Context, key string, window time.Duration) (int, error) {
			keys = append(keys, key)
			return 1, nil
		},
	})

	_, _ = limiter.Allow(ctx, BucketLogin, "1.2.3.4")
	_, _ = limiter.Allow(ctx, BucketChat, "1.2.3.4")
	_, _ = limiter.Allow(ctx, BucketLogin, "5.6.7.8")

	want := []string{"login:1.2.3.4", "chat:1.2.3.4", "login:5.6.7.8"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestRateLimiter_StoreErrorDenies(t *testing.T) {
	ctx := context.Background()

	boom := errors.New("store down")
	limiter := NewRateLimiter(&mockCounterStore{
		incrementFn: func(ctx context.Context, key string, window time.Duration) (int, error) {
			return 0, boom
		},
	})

	ok, err := limiter.Allow(ctx, BucketGeneral, "1.2.3.4")
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if ok {
		t.Fatal("errored check reported allowed")
	}
}

func TestBucketConfiguration(t *testing.T) {
	tests := []struct {
		bucket Bucket
		window time.Duration
		max    int
	}{
		{BucketGeneral, 15 * time.Minute, 100},
		{BucketLogin, 15 * time.Minute, 5},
		{BucketChat, time.Minute, 10},
	}
	for _, tc := range tests {
		t.Run(tc.bucket.Name, func(t *testing.T) {
			if tc.bucket.Window != tc.window {
				t.Fatalf("window = %v, want %v", tc.bucket.Window, tc.window)
			}
			if tc.bucket.Max != tc.max {
				t.Fatalf("max = %d, want %d", tc.bucket.Max, tc.max)
			}
		})
	}
}
