package common

import (
	"context"
	"sync/atomic"
)

type ctxKey string

const (
	sessionIDKey   ctxKey = "session/id"
	sessionSlotKey ctxKey = "session/slot"
)

// WithSessionID stores the editing session identifier on the context. If an
// outer middleware opened a slot with WithSessionSlot, the id is recorded
// there too.
func WithSessionID(ctx context.Context, id string) context.Context {
	if slot, ok := ctx.Value(sessionSlotKey).(*atomic.Value); ok {
		slot.Store(id)
	}
	return context.WithValue(ctx, sessionIDKey, id)
}

// WithSessionSlot lets middleware running outside the session middleware see
// the session id once the request has been handled.
func WithSessionSlot(ctx context.Context) context.Context {
	if _, ok := ctx.Value(sessionSlotKey).(*atomic.Value); ok {
		return ctx
	}
	return context.WithValue(ctx, sessionSlotKey, new(atomic.Value))
}

// SessionID extracts the editing session identifier from the context if present.
func SessionID(ctx context.Context) (string, bool) {
	if id, ok := ctx.Value(sessionIDKey).(string); ok && id != "" {
		return id, true
	}
	if slot, ok := ctx.Value(sessionSlotKey).(*atomic.Value); ok {
		id, _ := slot.Load().(string)
		return id, id != ""
	}
	return "", false
}
