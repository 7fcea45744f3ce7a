package ml

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/chase-predictor/internal/models"
)

// CachedModel wraps a Model with prediction caching and metrics
type CachedModel struct {
	model  *Model
	cache  *PredictionCache
	logger *logrus.Logger
}

// NewCachedModel creates a cached model; a nil cache disables caching
func NewCachedModel(model *Model, cache *PredictionCache, logger *logrus.Logger) *CachedModel {
	return &CachedModel{
		model:  model,
		cache:  cache,
		logger: logger,
	}
}

// Model returns the wrapped model
func (c *CachedModel) Model() *Model {
	return c.model
}

// PredictProba returns [loss, win] probabilities, consulting the cache first
func (c *CachedModel) PredictProba(row models.FeatureRow) ([2]float64, error) {
	proba, _, err := c.PredictProbaCached(row)
	return proba, err
}

// PredictProbaCached is PredictProba that also reports whether the cache answered
func (c *CachedModel) PredictProbaCached(row models.FeatureRow) ([2]float64, bool, error) {
	if c.model == nil {
		return [2]float64{}, false, ErrModelNotLoaded
	}

	key := CacheKey{ModelVersion: c.model.Version(), Row: row}
	if c.cache != nil {
		if proba, ok := c.cache.Get(key); ok {
			if c.logger != nil {
				c.logger.WithField("model_version", key.ModelVersion).Debug("Cache hit for prediction")
			}
			MLPredictionsTotal.WithLabelValues(outcome(proba), "true").Inc()
			return proba, true, nil
		}
	}

	start := time.Now()
	proba, err := c.model.PredictProba(row)
	MLPredictionLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		MLPredictionErrorsTotal.Inc()
		return proba, false, err
	}

	if c.cache != nil {
		c.cache.Set(key, proba)
	}
	MLPredictionsTotal.WithLabelValues(outcome(proba), "false").Inc()
	return proba, false, nil
}

func outcome(proba [2]float64) string {
	if proba[1] > proba[0] {
		return "win"
	}
	return "loss"
}

// ModelVersion reports the wrapped model's version and whether one is loaded
func (c *CachedModel) ModelVersion() (string, bool) {
	if c.model == nil {
		return "", false
	}
	return c.model.Version(), true
}
