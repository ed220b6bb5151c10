package gateway

import (
	"context"

	"github.com/nulzo/cachekit/internal/adapters/cache/lru"
	"github.com/nulzo/cachekit/internal/adapters/cache/memcached"
	"github.com/nulzo/cachekit/internal/adapters/cache/memory"
	"github.com/nulzo/cachekit/internal/adapters/cache/redis"
	"github.com/nulzo/cachekit/internal/config"
	"github.com/nulzo/cachekit/internal/core/ports"
	"github.com/nulzo/cachekit/internal/registry"
)

func init() {
	registry.Register("memory", newMemory)
	registry.Register("lru", newLRU)
	registry.Register("redis", newRedis)
	registry.Register("memcached", newMemcached)
}

func newMemory(_ context.Context, _ config.BackendConfig) (ports.Backend, error) {
	return memory.NewMemoryCache(), nil
}

func newLRU(_ context.Context, cfg config.BackendConfig) (ports.Backend, error) {
	b, err := lru.New(cfg.Size)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func newRedis(ctx context.Context, cfg config.BackendConfig) (ports.Backend, error) {
	b, err := redis.New(ctx, redis.Config{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		Prefix:      cfg.Redis.Prefix,
		DialTimeout: cfg.Redis.DialTimeout,
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func newMemcached(_ context.Context, cfg config.BackendConfig) (ports.Backend, error) {
	b, err := memcached.New(memcached.Config{
		Servers: cfg.Memcached.Servers,
		Timeout: cfg.Memcached.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}
