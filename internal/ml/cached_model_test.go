package ml

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedModel(t *testing.T) {
	p, rows, err := fittedPipeline(200)
	require.NoError(t, err)
	m := NewModel(p, ModelInfo{})

	cache := NewPredictionCache(time.Minute, 100)
	cm := NewCachedModel(m, cache, nil)
	assert.Same(t, m, cm.Model())

	first, err := cm.PredictProba(rows[0].Row)
	require.NoError(t, err)
	second, err := cm.PredictProba(rows[0].Row)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.ItemCount())
	hits, _, _ := cache.Stats()
	assert.Equal(t, uint64(1), hits)
}

func TestCachedModelWithoutCache(t *testing.T) {
	p, rows, err := fittedPipeline(200)
	require.NoError(t, err)

	cm := NewCachedModel(NewModel(p, ModelInfo{}), nil, nil)
	proba, err := cm.PredictProba(rows[0].Row)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, proba[0]+proba[1], 1e-12)

	_, err = NewCachedModel(nil, nil, nil).PredictProba(rows[0].Row)
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}

func TestCachedModelReportsHitsAndVersion(t *testing.T) {
	p, rows, err := fittedPipeline(200)
	require.NoError(t, err)
	m := NewModel(p, ModelInfo{Version: "v7"})
	cm := NewCachedModel(m, NewPredictionCache(time.Minute, 100), nil)

	_, hit, err := cm.PredictProbaCached(rows[1].Row)
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = cm.PredictProbaCached(rows[1].Row)
	require.NoError(t, err)
	assert.True(t, hit)

	version, ok := cm.ModelVersion()
	assert.True(t, ok)
	assert.Equal(t, "v7", version)

	_, ok = NewCachedModel(nil, nil, nil).ModelVersion()
	assert.False(t, ok)
}
