package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionID(t *testing.T) {
	_, ok := SessionID(context.Background())
	require.False(t, ok)

	ctx := WithSessionID(context.Background(), "s1")
	id, ok := SessionID(ctx)
	require.True(t, ok)
	require.Equal(t, "s1", id)

	_, ok = SessionID(WithSessionID(context.Background(), ""))
	require.False(t, ok)
}

func TestSessionSlotExposesInnerID(t *testing.T) {
	outer := WithSessionSlot(context.Background())
	require.Equal(t, outer, WithSessionSlot(outer), "slot is opened once")

	_, ok := SessionID(outer)
	require.False(t, ok)

	_ = WithSessionID(outer, "inner")
	id, ok := SessionID(outer)
	require.True(t, ok)
	require.Equal(t, "inner", id)
}
