package cache

import (
	"errors"
	"slices"
	"sync"

	"github.com/nulzo/cachekit/internal/core/domain"
	"github.com/nulzo/cachekit/internal/core/ports"
)

// Manager resolves logical cache names to Cache instances. Caches are added
// during startup; GetCache is the steady-state operation.
type Manager struct {
	mu     sync.RWMutex
	caches map[string]*Cache
}

// NewManager creates a manager holding the given caches.
func NewManager(caches ...*Cache) *Manager {
	m := &Manager{caches: make(map[string]*Cache, len(caches))}
	for _, c := range caches {
		m.AddCache(c)
	}
	return m
}

// AddCache registers c under its name, replacing any previous cache with
// the same name.
func (m *Manager) AddCache(c *Cache) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches[c.Name()] = c
}

// GetCache returns the cache registered under name.
func (m *Manager) GetCache(name string) (*Cache, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.caches[name]
	if !ok {
		return nil, domain.UnknownCacheError(name)
	}
	return c, nil
}

// Names returns the registered cache names in lexical order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.caches))
	for name := range m.caches {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Close closes every distinct backend once.
func (m *Manager) Close() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[ports.Backend]struct{})
	var errs []error
	for _, c := range m.caches {
		b := c.Backend()
		if _, done := seen[b]; done {
			continue
		}
		seen[b] = struct{}{}
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
