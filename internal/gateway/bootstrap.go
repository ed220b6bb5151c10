package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/nulzo/cachekit/internal/cache"
	"github.com/nulzo/cachekit/internal/cli"
	"github.com/nulzo/cachekit/internal/config"
	"github.com/nulzo/cachekit/internal/core/ports"
	"github.com/nulzo/cachekit/internal/expression"
	"github.com/nulzo/cachekit/internal/interceptor"
	"github.com/nulzo/cachekit/internal/keygen"
	"github.com/nulzo/cachekit/internal/registry"
	"go.uber.org/zap"
)

const backendInitTimeout = 5 * time.Second

// Gateway bundles everything a caching call site needs at runtime.
type Gateway struct {
	Manager     *cache.Manager
	Interceptor *interceptor.Interceptor
	Sites       *interceptor.Registry
	Failures    *Failures
}

// Bootstrap builds backends, caches and call sites from configuration.
// Entries that fail to initialize are logged and skipped so one unreachable
// backend does not take the process down; only an unknown key generator is
// fatal.
func Bootstrap(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Gateway, error) {
	keys, err := keygen.New(cfg.KeyGenerator)
	if err != nil {
		return nil, err
	}

	backends := bootstrapBackends(ctx, cfg.Backends, log)
	manager := cache.NewManager()
	used := make(map[string]bool, len(backends))
	for _, cc := range cfg.Caches {
		backend, ok := backends[cc.Backend]
		if !ok {
			log.Warn(fmt.Sprintf("%s %s", cli.WarningSign(), cli.Style("Skipping cache without a usable backend", cli.Yellow)),
				zap.String("cache", cc.Name),
				zap.String("backend", cc.Backend),
			)
			continue
		}
		c, err := cache.New(cc.Name, backend, cc.TTLDuration())
		if err != nil {
			log.Error("Failed to create cache", zap.String("cache", cc.Name), zap.Error(err))
			continue
		}
		manager.AddCache(c)
		used[cc.Backend] = true
	}
	for name, backend := range backends {
		if !used[name] {
			log.Warn("Backend not referenced by any cache", zap.String("backend", name))
			_ = backend.Close()
		}
	}

	if len(manager.Names()) == 0 {
		log.Warn("No caches were registered. Every cached call will fail with an unknown cache error.")
	}

	failures := NewFailures()
	evaluator := expression.New()
	in := interceptor.New(manager, keys,
		interceptor.WithLogger(log.Named("interceptor")),
		interceptor.WithEvaluator(evaluator),
		interceptor.WithReporter(failures),
	)

	sites := interceptor.NewRegistry(manager, evaluator)
	for _, sc := range cfg.CallSites {
		meta, err := sc.Metadata()
		if err == nil {
			err = sites.Register(meta)
		}
		if err != nil {
			log.Warn(fmt.Sprintf("%s %s", cli.WarningSign(), cli.Style("Skipping call site", cli.Yellow)),
				zap.String("site", sc.Site),
				zap.Error(err),
			)
		}
	}

	log.Info(fmt.Sprintf("%s caches ready", cli.CheckMark()),
		zap.Strings("caches", manager.Names()),
		zap.Strings("sites", sites.Sites()),
		zap.String("key_generator", cfg.KeyGenerator),
	)

	return &Gateway{Manager: manager, Interceptor: in, Sites: sites, Failures: failures}, nil
}

func bootstrapBackends(ctx context.Context, cfgs []config.BackendConfig, log *zap.Logger) map[string]ports.Backend {
	backends := make(map[string]ports.Backend, len(cfgs))
	for _, bCfg := range cfgs {
		factory, err := registry.Get(bCfg.Type)
		if err != nil {
			log.Error("Unknown backend type", zap.String("backend", bCfg.Name), zap.String("type", bCfg.Type))
			continue
		}

		initCtx, cancel := context.WithTimeout(ctx, backendInitTimeout)
		backend, err := factory(initCtx, bCfg)
		cancel()
		if err != nil {
			log.Error(fmt.Sprintf("%s Backend unavailable, skipping", cli.CrossMark()),
				zap.String("backend", bCfg.Name),
				zap.String("type", bCfg.Type),
				zap.Error(err),
			)
			continue
		}

		backends[bCfg.Name] = backend
		log.Debug("Backend initialized", zap.String("backend", bCfg.Name), zap.String("type", bCfg.Type))
	}
	return backends
}

// Close releases every backend.
func (g *Gateway) Close() error {
	return g.Manager.Close()
}
