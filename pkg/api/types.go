package api

import "github.com/goccy/go-json"

type CacheInfo struct {
	Name    string `json:"name"`
	TTL     int64  `json:"ttl_seconds"`
	Backend string `json:"backend"`
}

type CallSite struct {
	Site       string   `json:"site"`
	Mode       string   `json:"mode"`
	CacheNames []string `json:"cache_names"`
	Key        string   `json:"key,omitempty"`
	AllEntries bool     `json:"all_entries,omitempty"`
}

type CachesResponse struct {
	Object   string                      `json:"object"`
	Data     []CacheInfo                 `json:"data"`
	Sites    []CallSite                  `json:"sites"`
	Failures map[string]map[string]int64 `json:"failures"`
}

// EntryResponse carries a cached value exactly as it was stored.
type EntryResponse struct {
	Cache string          `json:"cache"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type ProductRequest struct {
	Name  string  `json:"name" binding:"required"`
	Price float64 `json:"price" binding:"gte=0"`
}

type HealthResponse struct {
	Status string   `json:"status"`
	Caches []string `json:"caches"`
}
