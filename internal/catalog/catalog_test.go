package catalog

import (
	"context"
	"testing"

	"github.com/nulzo/cachekit/internal/config"
	"github.com/nulzo/cachekit/internal/core/domain"
	"github.com/nulzo/cachekit/internal/gateway"
	"github.com/nulzo/cachekit/internal/interceptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var seed = []Product{
	{SKU: "ABC", Name: "Anvil", Price: 10},
	{SKU: "XYZ", Name: "Xylophone", Price: 25},
}

func newCatalog(t *testing.T, save config.CallSiteConfig) (*Service, *Store) {
	t.Helper()

	save.Site = SaveSite
	cfg := &config.Config{
		Backends: []config.BackendConfig{{Name: "local", Type: "memory"}},
		Caches:   []config.CacheConfig{{Name: "products", Backend: "local", TTL: 60}},
		CallSites: []config.CallSiteConfig{
			{Site: FindSite, Mode: "cacheable", CacheNames: []string{"products"}, Key: "sku"},
			save,
		},
	}
	require.NoError(t, cfg.Validate())

	gw, err := gateway.Bootstrap(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Close() })

	store := NewStore(seed...)
	svc, err := NewService(gw.Interceptor, gw.Sites, store)
	require.NoError(t, err)
	return svc, store
}

func TestFind_ReadThrough(t *testing.T) {
	svc, store := newCatalog(t, config.CallSiteConfig{Mode: "update", CacheNames: []string{"products"}, Key: "result.sku"})
	ctx := context.Background()

	first, err := svc.Find(ctx, "ABC")
	require.NoError(t, err)
	second, err := svc.Find(ctx, "ABC")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), store.Loads())

	other, err := svc.Find(ctx, "XYZ")
	require.NoError(t, err)
	assert.Equal(t, "Xylophone", other.Name)
	assert.Equal(t, int64(2), store.Loads())
}

func TestFind_NotFoundIsNotCached(t *testing.T) {
	svc, store := newCatalog(t, config.CallSiteConfig{Mode: "update", CacheNames: []string{"products"}, Key: "result.sku"})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Find(ctx, "NOPE")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.False(t, domain.IsCacheError(err))
	}
	assert.Equal(t, int64(2), store.Loads())
}

func TestSave_EvictsKey(t *testing.T) {
	svc, store := newCatalog(t, config.CallSiteConfig{Mode: "evict", CacheNames: []string{"products"}, Key: "product.sku"})
	ctx := context.Background()

	_, err := svc.Find(ctx, "ABC")
	require.NoError(t, err)
	_, err = svc.Find(ctx, "XYZ")
	require.NoError(t, err)

	_, err = svc.Save(ctx, Product{SKU: "ABC", Name: "Anvil", Price: 12})
	require.NoError(t, err)

	fresh, err := svc.Find(ctx, "ABC")
	require.NoError(t, err)
	assert.Equal(t, 12.0, fresh.Price)
	assert.Equal(t, int64(3), store.Loads())

	// the neighbouring entry survives
	_, err = svc.Find(ctx, "XYZ")
	require.NoError(t, err)
	assert.Equal(t, int64(3), store.Loads())
}

func TestSave_EvictsAllEntries(t *testing.T) {
	svc, store := newCatalog(t, config.CallSiteConfig{Mode: "evict", CacheNames: []string{"products"}, AllEntries: true})
	ctx := context.Background()

	_, _ = svc.Find(ctx, "ABC")
	_, _ = svc.Find(ctx, "XYZ")
	require.Equal(t, int64(2), store.Loads())

	_, err := svc.Save(ctx, Product{SKU: "ABC", Name: "Anvil", Price: 12})
	require.NoError(t, err)

	_, _ = svc.Find(ctx, "XYZ")
	assert.Equal(t, int64(3), store.Loads())
}

func TestSave_UpdatesFromResult(t *testing.T) {
	svc, store := newCatalog(t, config.CallSiteConfig{Mode: "update", CacheNames: []string{"products"}, Key: "result.sku"})
	ctx := context.Background()

	_, err := svc.Find(ctx, "ABC")
	require.NoError(t, err)

	saved, err := svc.Save(ctx, Product{SKU: "ABC", Name: "Anvil", Price: 20})
	require.NoError(t, err)
	assert.Equal(t, 20.0, saved.Price)

	cached, err := svc.Find(ctx, "ABC")
	require.NoError(t, err)
	assert.Equal(t, 20.0, cached.Price)
	assert.Equal(t, int64(1), store.Loads())
}

func TestSave_InvalidProductSkipsCache(t *testing.T) {
	svc, _ := newCatalog(t, config.CallSiteConfig{Mode: "update", CacheNames: []string{"products"}, Key: "result.sku"})

	_, err := svc.Save(context.Background(), Product{SKU: "ABC", Price: -1})
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestNewService_RequiresSites(t *testing.T) {
	sites := interceptor.NewRegistry(nil, nil)
	_, err := NewService(nil, sites, NewStore())
	assert.ErrorIs(t, err, domain.ErrInvalidMetadata)

	require.NoError(t, sites.Register(domain.CacheMetadata{Site: FindSite, Mode: domain.ModeEvict, CacheNames: []string{"products"}}))
	require.NoError(t, sites.Register(domain.CacheMetadata{Site: SaveSite, Mode: domain.ModeEvict, CacheNames: []string{"products"}}))
	_, err = NewService(nil, sites, NewStore())
	assert.ErrorIs(t, err, domain.ErrInvalidMetadata)
}
