package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_, found, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	got, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), got)

	ok, err := c.Contains(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Delete(ctx, "k"))
	ok, err = c.Contains(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_EmptyValueIsFound(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "empty", []byte{}, 0))
	got, found, err := c.Get(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, got)
}

func TestMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newMemoryCache(func() time.Time { return now })

	require.NoError(t, c.Set(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "forever", []byte("2"), 0))

	now = now.Add(2 * time.Minute)

	_, found, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestMemoryCache_FlushAll(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.FlushAll(ctx))

	for _, k := range []string{"a", "b"} {
		ok, err := c.Contains(ctx, k)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}
