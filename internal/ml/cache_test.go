package ml

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/chase-predictor/internal/models"
)

func testKey(version string, runsLeft float64) CacheKey {
	return CacheKey{
		ModelVersion: version,
		Row: models.FeatureRow{
			BattingTeam: "Mumbai Indians",
			BowlingTeam: "Chennai Super Kings",
			City:        "Mumbai",
			RunsLeft:    runsLeft,
			BallsLeft:   45,
			WicketsLeft: 7,
			Target:      180,
		},
	}
}

// TestCacheKeyString tests cache key string representation
func TestCacheKeyString(t *testing.T) {
	keyStr := testKey("v1", 80).String()
	assert.Contains(t, keyStr, "v1")
	assert.Contains(t, keyStr, "Mumbai Indians")
	assert.Contains(t, keyStr, "|80|")

	assert.NotEqual(t, keyStr, testKey("v2", 80).String())
	assert.NotEqual(t, keyStr, testKey("v1", 81).String())
}

func TestCacheKeySeparatorInNames(t *testing.T) {
	a := testKey("v1", 80)
	a.Row.BattingTeam, a.Row.BowlingTeam = "A|B", "C"
	b := testKey("v1", 80)
	b.Row.BattingTeam, b.Row.BowlingTeam = "A", "B|C"

	assert.NotEqual(t, a.String(), b.String())

	cache := NewPredictionCache(time.Hour, 100)
	cache.Set(a, [2]float64{0.9, 0.1})
	_, found := cache.Get(b)
	assert.False(t, found)
}

func TestPredictionCacheGetSet(t *testing.T) {
	cache := NewPredictionCache(time.Hour, 100)
	defer cache.Clear()

	key := testKey("v1", 80)

	_, ok := cache.Get(key)
	assert.False(t, ok)

	cache.Set(key, [2]float64{0.3, 0.7})
	proba, ok := cache.Get(key)
	assert.True(t, ok)
	assert.Equal(t, [2]float64{0.3, 0.7}, proba)

	hits, misses, ratio := cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.InDelta(t, 0.5, ratio, 1e-9)
}

func TestPredictionCacheMaxSize(t *testing.T) {
	cache := NewPredictionCache(time.Hour, 2)
	defer cache.Clear()

	cache.Set(testKey("v1", 1), [2]float64{0.5, 0.5})
	cache.Set(testKey("v1", 2), [2]float64{0.5, 0.5})
	cache.Set(testKey("v1", 3), [2]float64{0.5, 0.5})

	assert.Equal(t, 2, cache.ItemCount())
	_, ok := cache.Get(testKey("v1", 3))
	assert.False(t, ok)
}

func TestPredictionCacheExpiry(t *testing.T) {
	cache := NewPredictionCache(10*time.Millisecond, 10)
	defer cache.Clear()

	key := testKey("v1", 80)
	cache.Set(key, [2]float64{0.4, 0.6})
	time.Sleep(30 * time.Millisecond)

	_, ok := cache.Get(key)
	assert.False(t, ok)
}

func TestPredictionCacheClear(t *testing.T) {
	cache := NewPredictionCache(time.Hour, 10)
	cache.Set(testKey("v1", 80), [2]float64{0.4, 0.6})
	cache.Get(testKey("v1", 80))

	cache.Clear()

	assert.Equal(t, 0, cache.ItemCount())
	hits, misses, _ := cache.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}
