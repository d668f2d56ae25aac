package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoCallback is returned when WithLock is called without a function.
var ErrNoCallback = errors.New("lock: callback not provided")

// Locker runs fn while holding an exclusive lock on key.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

type localKey struct {
	sem  chan struct{}
	refs int
}

// Local is an in-process Locker. Keys are released from memory once no caller
// holds or waits for them.
type Local struct {
	mu   sync.Mutex
	keys map[string]*localKey
}

// NewLocal constructs an in-process locker.
func NewLocal() *Local {
	return &Local{keys: make(map[string]*localKey)}
}

// WithLock blocks until key is free or ctx is done. ttl is ignored: the lock is
// held exactly as long as fn runs.
func (l *Local) WithLock(ctx context.Context, key string, _ time.Duration, fn func(context.Context) error) error {
	if fn == nil {
		return ErrNoCallback
	}
	k := l.acquireRef(key)
	defer l.releaseRef(key, k)

	select {
	case k.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-k.sem }()
	return fn(ctx)
}

// Len reports how many keys are currently held or awaited.
func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}

func (l *Local) acquireRef(key string) *localKey {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.keys == nil {
		l.keys = make(map[string]*localKey)
	}
	k, ok := l.keys[key]
	if !ok {
		k = &localKey{sem: make(chan struct{}, 1)}
		l.keys[key] = k
	}
	k.refs++
	return k
}

func (l *Local) releaseRef(key string, k *localKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k.refs--
	if k.refs == 0 {
		delete(l.keys, key)
	}
}
