package session

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/invoice-generator/internal/invoice"
	"github.com/noah-isme/invoice-generator/internal/resilience"
)

func TestGuardedStoreOpensWhenBackendFails(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	store := Guarded{
		Store:   NewRedisStore(client, time.Hour),
		Breaker: resilience.NewBreaker(2, 0.5, time.Minute),
	}
	ctx := context.Background()
	doc := invoice.New(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC))

	require.NoError(t, store.Save(ctx, "s1", doc))
	loaded, ok, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, doc.IssueDate, loaded.IssueDate)

	mr.SetError("server unavailable")
	_, _, err = store.Load(ctx, "s1")
	require.Error(t, err)
	require.False(t, errors.Is(err, resilience.ErrOpenCircuit))
	require.Error(t, store.Save(ctx, "s1", doc))

	_, _, err = store.Load(ctx, "s1")
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
	require.ErrorIs(t, store.Delete(ctx, "s1"), resilience.ErrOpenCircuit)

	mr.SetError("")
	require.NoError(t, store.Ping(ctx), "ping bypasses the breaker")
}

func TestGuardedStoreMissingSessionIsNotAFailure(t *testing.T) {
	store := Guarded{
		Store:   NewMemoryStore(time.Hour),
		Breaker: resilience.NewBreaker(1, 0.5, time.Minute),
	}
	for i := 0; i < 3; i++ {
		_, ok, err := store.Load(context.Background(), "missing")
		require.NoError(t, err)
		require.False(t, ok)
	}
	require.Equal(t, resilience.Closed, store.Breaker.State())
}
