package store

import (
	"context"
	"sync"
	"time"

	"partnerdesk/internal/vat/metrics"
	"partnerdesk/internal/vat/models"
	"partnerdesk/pkg/platform/sentinel"
	"partnerdesk/pkg/requestcontext"
)

type cachedResult struct {
	result   models.VerificationResult
	storedAt time.Time
}

// InMemoryCache caches verification results in process with TTL expiration.
type InMemoryCache struct {
	mu       sync.RWMutex
	results  map[string]cachedResult
	cacheTTL time.Duration
	metrics  *metrics.Metrics
}

// NewInMemoryCache creates a new in-memory cache with the specified TTL.
func NewInMemoryCache(cacheTTL time.Duration, m *metrics.Metrics) *InMemoryCache {
	return &InMemoryCache{
		results:  make(map[string]cachedResult),
		cacheTTL: cacheTTL,
		metrics:  m,
	}
}

// Save stores a copy of result keyed by country and VAT number.
// A nil result is a no-op.
func (c *InMemoryCache) Save(ctx context.Context, result *models.VerificationResult) error {
	if result == nil {
		return nil
	}
	stored := *result
	if result.Company != nil {
		company := *result.Company
		stored.Company = &company
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[models.CacheKey(result.CountryCode, result.VATNumber)] = cachedResult{
		result:   stored,
		storedAt: requestcontext.Now(ctx),
	}
	return nil
}

// Find returns sentinel.ErrNotFound when nothing fresh is cached.
func (c *InMemoryCache) Find(ctx context.Context, country, vatNumber string) (*models.VerificationResult, error) {
	now := requestcontext.Now(ctx)
	c.mu.RLock()
	cached, ok := c.results[models.CacheKey(country, vatNumber)]
	c.mu.RUnlock()

	if !ok || now.Sub(cached.storedAt) >= c.cacheTTL {
		c.metrics.RecordCacheMiss("memory")
		return nil, sentinel.ErrNotFound
	}
	c.metrics.RecordCacheHit("memory")
	out := cached.result
	if out.Company != nil {
		company := *out.Company
		out.Company = &company
	}
	return &out, nil
}

// Purge drops expired entries.
func (c *InMemoryCache) Purge(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, v := range c.results {
		if now.Sub(v.storedAt) >= c.cacheTTL {
			delete(c.results, k)
			removed++
		}
	}
	return removed
}
