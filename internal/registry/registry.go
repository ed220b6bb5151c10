package registry

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/nulzo/cachekit/internal/config"
	"github.com/nulzo/cachekit/internal/core/ports"
)

// Factory is a function that creates a storage backend given its configuration.
type Factory func(ctx context.Context, cfg config.BackendConfig) (ports.Backend, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a backend factory available to the system.
// 'type' is the key (e.g., "memory", "redis").
func Register(backendType string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[backendType]; exists {
		panic(fmt.Sprintf("backend factory %s already registered", backendType))
	}
	factories[backendType] = f
}

// Get retrieves a factory to create a backend of a specific type.
func Get(backendType string) (Factory, error) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := factories[backendType]
	if !ok {
		return nil, fmt.Errorf("backend factory not found for type: %s", backendType)
	}
	return f, nil
}

// Types lists the registered backend types.
func Types() []string {
	mu.RLock()
	defer mu.RUnlock()
	types := make([]string, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
