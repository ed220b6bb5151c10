package lru

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c, err := New(2)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))

	// touch a so b becomes the eviction candidate
	_, found, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)

	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))

	ok, err := c.Contains(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Contains(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_PerEntryTTL(t *testing.T) {
	ctx := context.Background()
	c, err := New(0)
	require.NoError(t, err)

	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "long", []byte("2"), time.Hour))

	now = now.Add(time.Minute)

	ok, err := c.Contains(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	_, found, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, found)

	got, found, err := c.Get(ctx, "long")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("2"), got)
}

func TestLRU_ExpiredReadKeepsConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	c, err := New(0)
	require.NoError(t, err)

	start := time.Now()
	c.now = func() time.Time { return start }
	require.NoError(t, c.Set(ctx, "k", []byte("old"), time.Second))

	// a writer replaces the entry while the reader is checking expiry
	c.now = func() time.Time {
		require.NoError(t, c.Set(ctx, "k", []byte("new"), 0))
		return start.Add(time.Minute)
	}
	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	c.now = func() time.Time { return start.Add(time.Minute) }
	got, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("new"), got)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	c, err := New(10)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))

	require.NoError(t, c.Delete(ctx, "a"))
	ok, err := c.Contains(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.FlushAll(ctx))
	assert.Equal(t, 0, c.Len())
}
