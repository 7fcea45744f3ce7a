package ml

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/chase-predictor/internal/models"
)

// CacheKey identifies a prediction by model version and feature row
type CacheKey struct {
	ModelVersion string
	Row          models.FeatureRow
}

// String returns string representation of cache key. Text fields are
// quoted so a separator inside a team or city name cannot shift fields.
func (k CacheKey) String() string {
	var b strings.Builder
	b.WriteString(strconv.Quote(k.ModelVersion))
	for _, c := range k.Row.Categorical() {
		b.WriteByte('|')
		b.WriteString(strconv.Quote(c))
	}
	for _, v := range k.Row.Numeric() {
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}

// PredictionCache provides in-memory caching for model probabilities
type PredictionCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// NewPredictionCache creates a new prediction cache
func NewPredictionCache(ttl time.Duration, maxSize int) *PredictionCache {
	return &PredictionCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves cached probabilities
func (pc *PredictionCache) Get(key CacheKey) ([2]float64, bool) {
	if result, found := pc.cache.Get(key.String()); found {
		if proba, ok := result.([2]float64); ok {
			pc.hitCount.Add(1)
			pc.updateMetrics()
			return proba, true
		}
	}

	pc.missCount.Add(1)
	pc.updateMetrics()
	return [2]float64{}, false
}

// Set stores probabilities. When the cache is full, expired items are
// purged first and the value is dropped if there is still no room.
func (pc *PredictionCache) Set(key CacheKey, proba [2]float64) {
	if pc.maxSize > 0 && pc.cache.ItemCount() >= pc.maxSize {
		pc.cache.DeleteExpired()
		if pc.cache.ItemCount() >= pc.maxSize {
			return
		}
	}
	pc.cache.Set(key.String(), proba, pc.ttl)
}

// Clear flushes the entire cache
func (pc *PredictionCache) Clear() {
	pc.cache.Flush()
	pc.hitCount.Store(0)
	pc.missCount.Store(0)
}

// Stats returns cache statistics
func (pc *PredictionCache) Stats() (hits, misses uint64, ratio float64) {
	hits = pc.hitCount.Load()
	misses = pc.missCount.Load()
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (pc *PredictionCache) updateMetrics() {
	_, _, ratio := pc.Stats()
	MLCacheHitRatio.Set(ratio)
}

// ItemCount returns the number of items in cache
func (pc *PredictionCache) ItemCount() int {
	return pc.cache.ItemCount()
}

// String summarises the cache for logs
func (pc *PredictionCache) String() string {
	hits, misses, ratio := pc.Stats()
	return fmt.Sprintf("items=%d hits=%d misses=%d ratio=%.2f", pc.ItemCount(), hits, misses, ratio)
}
