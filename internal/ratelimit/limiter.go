package ratelimit

import (
	"context"
	"fmt"
	"time"

	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Decision is the outcome of a single rate limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter counts events per key within a window.
type Limiter interface {
	Allow(ctx context.Context, key string, window time.Duration, limit int) (Decision, error)
}

// StoreLimiter is a fixed-window limiter over a ulule limiter store. It backs
// single-instance deployments running without Redis.
type StoreLimiter struct {
	Store limiter.Store
}

// NewMemoryLimiter returns a StoreLimiter on an in-process store.
func NewMemoryLimiter(prefix string) StoreLimiter {
	return StoreLimiter{Store: memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          prefix,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	})}
}

// Allow registers an event for key.
func (l StoreLimiter) Allow(ctx context.Context, key string, window time.Duration, limit int) (Decision, error) {
	if l.Store == nil || limit <= 0 || window <= 0 {
		return Decision{Allowed: true, Remaining: limit, ResetAt: time.Now().Add(window)}, nil
	}
	lim := limiter.New(l.Store, limiter.Rate{Period: window, Limit: int64(limit)})
	res, err := lim.Get(ctx, key)
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit store: %w", err)
	}
	return Decision{
		Allowed:   !res.Reached,
		Remaining: int(res.Remaining),
		ResetAt:   time.Unix(res.Reset, 0),
	}, nil
}
