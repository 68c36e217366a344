package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreInvalidation(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := &MemoryStore{invalidatedTokens: map[string]time.Time{}, now: func() time.Time { return now }}

	ok, err := s.IsTokenInvalidated(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.InvalidateToken(ctx, "a", time.Minute))
	ok, err = s.IsTokenInvalidated(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, err = s.IsTokenInvalidated(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.InvalidateToken(ctx, "b", time.Minute))
	assert.NotContains(t, s.invalidatedTokens, "a")
}

func TestMemoryStoreKeepsLongerExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore().(*MemoryStore)

	require.NoError(t, s.InvalidateToken(ctx, "a", time.Hour))
	require.NoError(t, s.InvalidateToken(ctx, "a", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	ok, err := s.IsTokenInvalidated(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
}
