package services

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rocjay1/burnrate/internal/models"
)

const summaryKey = "disposable-income-summary"

// InsightsCache memoises the disposable income summary between signal mutations.
// Every Invalidate bumps a generation counter so a summary computed from data
// read before the mutation is never stored.
type InsightsCache struct {
	c *cache.Cache

	mu         sync.Mutex
	generation uint64
}

// NewInsightsCache creates a cache whose entries expire after ttl.
func NewInsightsCache(ttl time.Duration) *InsightsCache {
	return &InsightsCache{c: cache.New(ttl, 2*ttl)}
}

// Get returns the cached summary, if any.
func (ic *InsightsCache) Get() (models.DisposableIncomeSummary, bool) {
	v, ok := ic.c.Get(summaryKey)
	if !ok {
		return models.DisposableIncomeSummary{}, false
	}
	summary, ok := v.(models.DisposableIncomeSummary)
	return summary, ok
}

// Generation returns the current invalidation generation. Capture it before
// reading the signals a summary is computed from.
func (ic *InsightsCache) Generation() uint64 {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.generation
}

// SetIfGeneration stores summary only if no Invalidate happened since gen was
// captured. It reports whether the summary was stored.
func (ic *InsightsCache) SetIfGeneration(gen uint64, summary models.DisposableIncomeSummary) bool {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	if gen != ic.generation {
		return false
	}
	ic.c.Set(summaryKey, summary, cache.DefaultExpiration)
	return true
}

// Invalidate drops the cached summary.
func (ic *InsightsCache) Invalidate() {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.generation++
	ic.c.Delete(summaryKey)
}
