package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/nulzo/cachekit/internal/gateway"
	"github.com/nulzo/cachekit/pkg/api"
)

type CacheHandler struct {
	gw       *gateway.Gateway
	backends map[string]string
}

// NewCacheHandler serves the admin view of gw. backends maps each cache name
// to the name of the backend it was configured on.
func NewCacheHandler(gw *gateway.Gateway, backends map[string]string) *CacheHandler {
	return &CacheHandler{gw: gw, backends: backends}
}

// List returns every cache, call site and absorbed failure counter.
//
// GET /v1/caches
func (h *CacheHandler) List(c *gin.Context) {
	resp := api.CachesResponse{
		Object:   "list",
		Data:     []api.CacheInfo{},
		Sites:    []api.CallSite{},
		Failures: h.gw.Failures.Snapshot(),
	}

	for _, name := range h.gw.Manager.Names() {
		cache, err := h.gw.Manager.GetCache(name)
		if err != nil {
			continue
		}
		resp.Data = append(resp.Data, api.CacheInfo{
			Name:    name,
			TTL:     int64(cache.TTL().Seconds()),
			Backend: h.backends[name],
		})
	}

	for _, site := range h.gw.Sites.Sites() {
		meta, err := h.gw.Sites.Lookup(site)
		if err != nil {
			continue
		}
		resp.Sites = append(resp.Sites, api.CallSite{
			Site:       meta.Site,
			Mode:       string(meta.Mode),
			CacheNames: meta.CacheNames,
			Key:        meta.KeyExpression,
			AllEntries: meta.AllEntries,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// Flush removes every entry of one cache.
//
// DELETE /v1/caches/:name
func (h *CacheHandler) Flush(c *gin.Context) {
	cache, err := h.gw.Manager.GetCache(c.Param("name"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := cache.FlushAll(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetEntry returns the stored value of one key.
//
// GET /v1/caches/:name/entries/:key
func (h *CacheHandler) GetEntry(c *gin.Context) {
	name, key := c.Param("name"), c.Param("key")

	cache, err := h.gw.Manager.GetCache(name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var value json.RawMessage
	found, err := cache.Get(c.Request.Context(), key, &value)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !found {
		_ = c.Error(api.NotFound("no entry for key " + key + " in cache " + name))
		return
	}

	c.JSON(http.StatusOK, api.EntryResponse{Cache: name, Key: key, Value: value})
}

// DeleteEntry evicts one key.
//
// DELETE /v1/caches/:name/entries/:key
func (h *CacheHandler) DeleteEntry(c *gin.Context) {
	cache, err := h.gw.Manager.GetCache(c.Param("name"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := cache.Delete(c.Request.Context(), c.Param("key")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
