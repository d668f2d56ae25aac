package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSlidingWindowAllow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	limiter := SlidingWindow{Client: client, Prefix: "test:", Now: func() time.Time { return now }}

	ctx := context.Background()
	window := 2 * time.Second
	limit := 2

	for i := 0; i < limit; i++ {
		d, err := limiter.Allow(ctx, "key", window, limit)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !d.Allowed {
			t.Fatalf("expected request %d to be allowed", i)
		}
		if d.Remaining != limit-(i+1) {
			t.Fatalf("unexpected remaining: %d", d.Remaining)
		}
	}

	d, err := limiter.Allow(ctx, "key", window, limit)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if d.Allowed {
		t.Fatal("expected third request to be rejected")
	}
	if d.Remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", d.Remaining)
	}
	if !d.ResetAt.Equal(now.Add(window)) {
		t.Fatalf("unexpected reset %s", d.ResetAt)
	}

	// events older than the window drop out of the set
	now = now.Add(3 * window)
	d, err = limiter.Allow(ctx, "key", window, limit)
	if err != nil {
		t.Fatalf("allow after window: %v", err)
	}
	if !d.Allowed {
		t.Fatal("expected request after window to be allowed")
	}
}

func TestSlidingWindowKeysAreIndependent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	limiter := SlidingWindow{Client: client, Prefix: "test:"}
	ctx := context.Background()

	if d, _ := limiter.Allow(ctx, "session:a", time.Minute, 1); !d.Allowed {
		t.Fatal("first key should be allowed")
	}
	if d, _ := limiter.Allow(ctx, "session:b", time.Minute, 1); !d.Allowed {
		t.Fatal("second key should have its own budget")
	}
}
