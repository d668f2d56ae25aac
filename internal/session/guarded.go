package session

import (
	"context"

	"github.com/noah-isme/invoice-generator/internal/invoice"
	"github.com/noah-isme/invoice-generator/internal/resilience"
)

// Guarded puts a circuit breaker in front of a Store. While the breaker is
// open calls fail fast with resilience.ErrOpenCircuit instead of waiting on an
// unreachable backend. Ping always reaches the backend so readiness probes
// report its real state.
type Guarded struct {
	Store   Store
	Breaker *resilience.Breaker
}

// Load implements Store.
func (g Guarded) Load(ctx context.Context, id string) (*invoice.Document, bool, error) {
	var (
		doc   *invoice.Document
		found bool
	)
	err := g.Breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		doc, found, err = g.Store.Load(ctx, id)
		return err
	})
	return doc, found, err
}

// Save implements Store.
func (g Guarded) Save(ctx context.Context, id string, doc *invoice.Document) error {
	return g.Breaker.Do(ctx, func(ctx context.Context) error {
		return g.Store.Save(ctx, id, doc)
	})
}

// Delete implements Store.
func (g Guarded) Delete(ctx context.Context, id string) error {
	return g.Breaker.Do(ctx, func(ctx context.Context) error {
		return g.Store.Delete(ctx, id)
	})
}

// Ping implements Store.
func (g Guarded) Ping(ctx context.Context) error {
	return g.Store.Ping(ctx)
}
