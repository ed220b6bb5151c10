package interceptor

import (
	"fmt"
	"slices"
	"sync"

	"github.com/nulzo/cachekit/internal/cache"
	"github.com/nulzo/cachekit/internal/core/domain"
)

// Compiler checks key expression syntax ahead of the first call.
type Compiler interface {
	Compile(expression string) error
}

// Registry associates call-site ids with their caching metadata. Sites are
// registered during startup and only looked up afterwards.
type Registry struct {
	mu       sync.RWMutex
	sites    map[string]*domain.CacheMetadata
	manager  *cache.Manager
	compiler Compiler
}

// NewRegistry creates a registry that checks cache names against manager and
// key expressions with compiler. Either may be nil to skip the check.
func NewRegistry(manager *cache.Manager, compiler Compiler) *Registry {
	return &Registry{
		sites:    make(map[string]*domain.CacheMetadata),
		manager:  manager,
		compiler: compiler,
	}
}

// Register validates meta and stores an immutable copy under meta.Site.
func (r *Registry) Register(meta domain.CacheMetadata) error {
	if err := meta.Validate(); err != nil {
		return err
	}
	if r.manager != nil {
		for _, name := range meta.CacheNames {
			if _, err := r.manager.GetCache(name); err != nil {
				return err
			}
		}
	}
	if r.compiler != nil && meta.HasKeyExpression() && !meta.FlushesAll() {
		if err := r.compiler.Compile(meta.KeyExpression); err != nil {
			return err
		}
	}

	stored := meta
	stored.CacheNames = slices.Clone(meta.CacheNames)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sites[meta.Site]; exists {
		return domain.InvalidMetadataError(fmt.Sprintf("site %s already registered", meta.Site), nil)
	}
	r.sites[meta.Site] = &stored
	return nil
}

// Lookup returns a copy of the metadata registered for site.
func (r *Registry) Lookup(site string) (*domain.CacheMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.sites[site]
	if !ok {
		return nil, domain.InvalidMetadataError(fmt.Sprintf("no cache metadata for site %s", site), nil)
	}
	out := *meta
	out.CacheNames = slices.Clone(meta.CacheNames)
	return &out, nil
}

// Sites lists the registered call sites.
func (r *Registry) Sites() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sites := make([]string, 0, len(r.sites))
	for s := range r.sites {
		sites = append(sites, s)
	}
	slices.Sort(sites)
	return sites
}
