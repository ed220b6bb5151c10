// Package memcached provides a backend over one or more memcached servers.
package memcached

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// memcached reads expirations above 30 days as absolute unix timestamps.
const relativeExpiryLimit = 30 * 24 * time.Hour

type Config struct {
	Servers []string
	Timeout time.Duration
}

type Cache struct {
	client *memcache.Client
	now    func() time.Time
}

// New creates a client for the configured servers and checks they answer.
func New(cfg Config) (*Cache, error) {
	if len(cfg.Servers) == 0 {
		return nil, errors.New("memcached: at least one server is required")
	}
	client := memcache.New(cfg.Servers...)
	if cfg.Timeout > 0 {
		client.Timeout = cfg.Timeout
	}
	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("failed to reach memcached: %w", err)
	}
	return &Cache{client: client, now: time.Now}, nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	it, err := c.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return it.Value, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: expiration(ttl, c.now()),
	})
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	err := c.client.Delete(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}

func (c *Cache) Contains(ctx context.Context, key string) (bool, error) {
	_, found, err := c.Get(ctx, key)
	return found, err
}

// FlushAll invalidates every item on every configured server.
func (c *Cache) FlushAll(ctx context.Context) error {
	return c.client.FlushAll()
}

// Close is a no-op: idle connections are reaped by the client.
func (c *Cache) Close() error {
	return nil
}

func expiration(ttl time.Duration, now time.Time) int32 {
	switch {
	case ttl <= 0:
		return 0
	case ttl > relativeExpiryLimit:
		return int32(now.Add(ttl).Unix())
	case ttl < time.Second:
		return 1
	default:
		return int32(ttl / time.Second)
	}
}
