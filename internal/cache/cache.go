// Package cache provides named, TTL-aware cache regions over a storage
// backend and the manager that resolves them by name.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/nulzo/cachekit/internal/core/domain"
	"github.com/nulzo/cachekit/internal/core/ports"
)

// Cache is one named region. Keys are namespaced with the cache name before
// they reach the backend, so caches sharing a backend never read each other's
// entries. FlushAll is not namespaced: it clears the whole backend.
type Cache struct {
	name    string
	ttl     time.Duration
	backend ports.Backend
}

// New creates a cache region. ttl == 0 disables expiration.
func New(name string, backend ports.Backend, ttl time.Duration) (*Cache, error) {
	if name == "" {
		return nil, errors.New("cache name is required")
	}
	if backend == nil {
		return nil, fmt.Errorf("cache %q: backend is required", name)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("cache %q: ttl must not be negative", name)
	}
	return &Cache{name: name, ttl: ttl, backend: backend}, nil
}

func (c *Cache) Name() string           { return c.name }
func (c *Cache) TTL() time.Duration     { return c.ttl }
func (c *Cache) Backend() ports.Backend { return c.backend }

// Get decodes the entry stored under key into dest, which must be a pointer.
// found is false only when the key is absent; a stored null, zero or empty
// value is reported as found.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, found, err := c.backend.Get(ctx, c.namespaced(key))
	if err != nil {
		return false, domain.BackendError("get", c.name, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, domain.BackendError("decode", c.name, err)
	}
	return true, nil
}

// Set stores value under the cache's configured TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

// SetWithTTL stores value with an explicit TTL.
func (c *Cache) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return domain.BackendError("encode", c.name, err)
	}
	return domain.BackendError("set", c.name, c.backend.Set(ctx, c.namespaced(key), data, ttl))
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return domain.BackendError("delete", c.name, c.backend.Delete(ctx, c.namespaced(key)))
}

func (c *Cache) Contains(ctx context.Context, key string) (bool, error) {
	ok, err := c.backend.Contains(ctx, c.namespaced(key))
	if err != nil {
		return false, domain.BackendError("contains", c.name, err)
	}
	return ok, nil
}

// FlushAll clears every entry of the underlying backend.
func (c *Cache) FlushAll(ctx context.Context) error {
	return domain.BackendError("flush", c.name, c.backend.FlushAll(ctx))
}

func (c *Cache) namespaced(key string) string {
	return c.name + ":" + key
}
