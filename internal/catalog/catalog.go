// Package catalog is a small product service whose reads and writes are
// cached through interceptor call sites.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nulzo/cachekit/internal/core/domain"
	"github.com/nulzo/cachekit/internal/interceptor"
)

const (
	FindSite = "catalog.Find"
	SaveSite = "catalog.Save"
)

var (
	ErrNotFound       = errors.New("product not found")
	ErrInvalidProduct = errors.New("invalid product")
)

type Product struct {
	SKU   string  `json:"sku" validate:"required"`
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
}

// Store is the system of record behind the cache.
type Store struct {
	mu       sync.RWMutex
	products map[string]Product
	loads    atomic.Int64
}

func NewStore(seed ...Product) *Store {
	s := &Store{products: make(map[string]Product, len(seed))}
	for _, p := range seed {
		s.products[p.SKU] = p
	}
	return s
}

func (s *Store) Load(_ context.Context, sku string) (*Product, error) {
	s.loads.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[sku]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *Store) Put(_ context.Context, p Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.SKU] = p
	return &p, nil
}

// Loads reports how many times the store was read.
func (s *Store) Loads() int64 {
	return s.loads.Load()
}

// Service exposes the store through cached call sites.
type Service struct {
	find func(context.Context, string) (*Product, error)
	save func(context.Context, Product) (*Product, error)
}

// NewService wires Find and Save to the metadata registered for FindSite and
// SaveSite. Find binds its argument as "sku", Save as "product".
func NewService(in *interceptor.Interceptor, sites *interceptor.Registry, store *Store) (*Service, error) {
	findMeta, err := sites.Lookup(FindSite)
	if err != nil {
		return nil, err
	}
	saveMeta, err := sites.Lookup(SaveSite)
	if err != nil {
		return nil, err
	}
	if findMeta.Mode != domain.ModeCacheable {
		return nil, domain.InvalidMetadataError(FindSite+" must be cacheable", nil)
	}
	if saveMeta.Mode == domain.ModeCacheable {
		return nil, domain.InvalidMetadataError(SaveSite+" must evict or update", nil)
	}

	return &Service{
		find: interceptor.Wrap1(in, findMeta, "sku", store.Load),
		save: interceptor.Wrap1(in, saveMeta, "product", store.Put),
	}, nil
}

func (s *Service) Find(ctx context.Context, sku string) (*Product, error) {
	return s.find(ctx, sku)
}

func (s *Service) Save(ctx context.Context, p Product) (*Product, error) {
	if err := domain.Validator().Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	return s.save(ctx, p)
}
