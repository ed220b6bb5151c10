package memory

import (
	"context"
	"sync"
	"time"

	"github.com/nulzo/cachekit/internal/core/ports"
)

type item struct {
	value     []byte
	expiresAt time.Time
}

func (i item) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// MemoryCache is a process-local map backend.
type MemoryCache struct {
	items map[string]item
	mu    sync.RWMutex
	now   func() time.Time
}

func NewMemoryCache() ports.Backend {
	return newMemoryCache(time.Now)
}

func newMemoryCache(now func() time.Time) *MemoryCache {
	return &MemoryCache{
		items: make(map[string]item),
		now:   now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || item.expired(c.now()) {
		return nil, false, nil
	}
	return item.value, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	it := item{value: append([]byte(nil), value...)}
	if ttl > 0 {
		it.expiresAt = c.now().Add(ttl)
	}
	c.items[key] = it
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *MemoryCache) Contains(ctx context.Context, key string) (bool, error) {
	_, found, err := c.Get(ctx, key)
	return found, err
}

func (c *MemoryCache) FlushAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]item)
	return nil
}

func (c *MemoryCache) Close() error {
	return nil
}
