// Package lru provides a bounded in-process backend meant to be shared by
// several caches in one process. Least recently used entries are evicted once
// the configured size is reached.
package lru

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultSize = 1024

type entry struct {
	value     []byte
	expiresAt time.Time
}

type Cache struct {
	items *lru.Cache[string, entry]
	now   func() time.Time
}

// New creates a backend holding at most size entries; size <= 0 selects
// DefaultSize.
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	items, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru backend: %w", err)
	}
	return &Cache{items: items, now: time.Now}, nil
}

// Get reports an expired entry as a miss and leaves it in place; it is
// reclaimed by eviction or replaced by the next Set. Removing it here could
// drop a value written concurrently.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	e, ok := c.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.items.Add(key, e)
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.items.Remove(key)
	return nil
}

func (c *Cache) Contains(ctx context.Context, key string) (bool, error) {
	e, ok := c.items.Peek(key)
	if !ok {
		return false, nil
	}
	return e.expiresAt.IsZero() || !c.now().After(e.expiresAt), nil
}

func (c *Cache) FlushAll(ctx context.Context) error {
	c.items.Purge()
	return nil
}

// Len reports the number of stored entries, including expired ones not yet
// reclaimed.
func (c *Cache) Len() int {
	return c.items.Len()
}

func (c *Cache) Close() error {
	return nil
}
