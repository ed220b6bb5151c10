package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/nulzo/cachekit/internal/catalog"
	"github.com/nulzo/cachekit/internal/config"
	"github.com/nulzo/cachekit/internal/gateway"
	"github.com/nulzo/cachekit/internal/server/middleware"
	"github.com/nulzo/cachekit/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	handler http.Handler
	store   *catalog.Store
}

func newFixture(t *testing.T, rateLimit config.RateLimitConfig) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{Server: config.ServerConfig{Env: "test"}, RateLimit: rateLimit}
	cfg.Backends = []config.BackendConfig{{Name: "local", Type: "memory"}}
	cfg.Caches = []config.CacheConfig{{Name: "products", Backend: "local", TTL: 60}}
	cfg.CallSites = []config.CallSiteConfig{
		{Site: catalog.FindSite, Mode: "cacheable", CacheNames: []string{"products"}, Key: "sku"},
		{Site: catalog.SaveSite, Mode: "update", CacheNames: []string{"products"}, Key: "result.sku"},
	}

	gw, err := gateway.Bootstrap(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Close() })

	store := catalog.NewStore(catalog.Product{SKU: "ABC", Name: "Anvil", Price: 10})
	svc, err := catalog.NewService(gw.Interceptor, gw.Sites, store)
	require.NoError(t, err)

	return &fixture{handler: New(cfg, zap.NewNop(), gw, svc).Handler(), store: store}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t, config.RateLimitConfig{})

	rec := f.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[api.HealthResponse](t, rec)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, []string{"products"}, body.Caches)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestProducts_ReadThroughAndEntry(t *testing.T) {
	f := newFixture(t, config.RateLimitConfig{})

	for i := 0; i < 2; i++ {
		rec := f.do(t, http.MethodGet, "/v1/products/ABC", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Anvil", decode[catalog.Product](t, rec).Name)
	}
	assert.Equal(t, int64(1), f.store.Loads())

	rec := f.do(t, http.MethodGet, "/v1/caches/products/entries/ABC", "")
	require.Equal(t, http.StatusOK, rec.Code)
	entry := decode[api.EntryResponse](t, rec)
	assert.JSONEq(t, `{"sku":"ABC","name":"Anvil","price":10}`, string(entry.Value))
}

func TestProducts_PutUpdatesCache(t *testing.T) {
	f := newFixture(t, config.RateLimitConfig{})

	rec := f.do(t, http.MethodPut, "/v1/products/ABC", `{"name":"Anvil","price":12.5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/products/ABC", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12.5, decode[catalog.Product](t, rec).Price)
	assert.Zero(t, f.store.Loads())
}

func TestProducts_Errors(t *testing.T) {
	f := newFixture(t, config.RateLimitConfig{})

	rec := f.do(t, http.MethodGet, "/v1/products/NOPE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	problem := decode[map[string]any](t, rec)
	assert.Equal(t, "/v1/products/NOPE", problem["instance"])
	assert.NotEmpty(t, problem["request_id"])

	rec = f.do(t, http.MethodPut, "/v1/products/ABC", `{"price":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	problem = decode[map[string]any](t, rec)
	assert.Equal(t, "Validation Error", problem["title"])
	assert.Contains(t, problem["errors"], "name")
}

func TestCaches_ListFlushAndEvict(t *testing.T) {
	f := newFixture(t, config.RateLimitConfig{})
	f.do(t, http.MethodGet, "/v1/products/ABC", "")

	rec := f.do(t, http.MethodGet, "/v1/caches", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[api.CachesResponse](t, rec)
	require.Len(t, list.Data, 1)
	assert.Equal(t, api.CacheInfo{Name: "products", TTL: 60, Backend: "local"}, list.Data[0])
	require.Len(t, list.Sites, 2)
	assert.Equal(t, catalog.FindSite, list.Sites[0].Site)

	rec = f.do(t, http.MethodDelete, "/v1/caches/products/entries/ABC", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, "/v1/caches/products/entries/ABC", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	f.do(t, http.MethodGet, "/v1/products/ABC", "")
	rec = f.do(t, http.MethodDelete, "/v1/caches/products", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, "/v1/caches/products/entries/ABC", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCaches_UnknownCache(t *testing.T) {
	f := newFixture(t, config.RateLimitConfig{})

	rec := f.do(t, http.MethodDelete, "/v1/caches/users", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	problem := decode[map[string]any](t, rec)
	assert.Equal(t, "unknown_cache", problem["kind"])
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1})

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/v1/caches", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(t, http.MethodGet, "/v1/caches", "").Code)

	// health is not limited
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health", "").Code)
}
