package gateway

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/nulzo/cachekit/internal/core/domain"
)

// Failures counts cache failures that were absorbed by the interceptor,
// per call site and per error kind.
type Failures struct {
	mu     sync.Mutex
	counts map[string]map[string]int64
}

func NewFailures() *Failures {
	return &Failures{counts: make(map[string]map[string]int64)}
}

func (f *Failures) Report(_ context.Context, site string, err error) {
	kind := "unknown"
	var cacheErr *domain.Error
	if errors.As(err, &cacheErr) {
		kind = string(cacheErr.Kind)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	bySite, ok := f.counts[site]
	if !ok {
		bySite = make(map[string]int64)
		f.counts[site] = bySite
	}
	bySite[kind]++
}

// Snapshot returns a copy of the counters keyed by site, then error kind.
func (f *Failures) Snapshot() map[string]map[string]int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]map[string]int64, len(f.counts))
	for site, kinds := range f.counts {
		out[site] = maps.Clone(kinds)
	}
	return out
}
