package backtest

import (
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/baccarat-tracker/internal/metrics"
)

// CacheKey identifies a replay of one ledger revision under one config
type CacheKey struct {
	Revision uint64
	Config   BacktestConfig
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	c := k.Config
	return fmt.Sprintf("%d:%d:%d:%d:%s:%s", k.Revision, c.FromShoe, c.ToShoe, c.Warmup,
		c.MinConfidence.String(), c.CommissionRate.String())
}

// ResultCache keeps recent replay metrics in memory
type ResultCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewResultCache creates a new result cache
func NewResultCache(ttl time.Duration, maxSize int) *ResultCache {
	return &ResultCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves cached metrics
func (rc *ResultCache) Get(key CacheKey) (Metrics, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if result, found := rc.cache.Get(key.String()); found {
		if m, ok := result.(Metrics); ok {
			rc.hitCount++
			rc.updateMetrics()
			return m, true
		}
	}

	rc.missCount++
	rc.updateMetrics()
	return Metrics{}, false
}

// Set stores metrics in cache
func (rc *ResultCache) Set(key CacheKey, m Metrics) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.cache.ItemCount() >= rc.maxSize {
		rc.cache.DeleteExpired()
	}
	if rc.cache.ItemCount() >= rc.maxSize {
		rc.cache.Flush()
	}
	rc.cache.Set(key.String(), m, rc.ttl)
}

// Invalidate drops every entry; called when the ledger changes.
func (rc *ResultCache) Invalidate() {
	rc.cache.Flush()
}

// Stats returns cache statistics
func (rc *ResultCache) Stats() (hits, misses uint64, ratio float64) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.statsLocked()
}

func (rc *ResultCache) statsLocked() (hits, misses uint64, ratio float64) {
	hits = rc.hitCount
	misses = rc.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (rc *ResultCache) updateMetrics() {
	_, _, ratio := rc.statsLocked()
	metrics.UpdateBacktestCacheHitRatio(ratio)
}

// ItemCount returns the number of items in cache
func (rc *ResultCache) ItemCount() int {
	return rc.cache.ItemCount()
}
