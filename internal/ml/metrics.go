package ml

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MLPredictionsTotal tracks predictions by favoured outcome
	MLPredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ml_predictions_total",
			Help: "Total number of win-probability predictions made",
		},
		[]string{"outcome", "cache_hit"},
	)

	// MLPredictionErrorsTotal tracks failed predictions
	MLPredictionErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ml_prediction_errors_total",
			Help: "Total number of predictions the model rejected",
		},
	)

	// MLPredictionLatency tracks model evaluation latency
	MLPredictionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ml_prediction_latency_seconds",
			Help:    "Model evaluation latency in seconds",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		},
	)

	// MLCacheHitRatio tracks cache hit ratio
	MLCacheHitRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ml_cache_hit_ratio",
			Help: "Prediction cache hit ratio",
		},
	)

	// MLTrainingJobsTotal tracks training runs
	MLTrainingJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ml_training_jobs_total",
			Help: "Total number of training runs",
		},
		[]string{"status"},
	)

	// MLTrainingDuration tracks training wall time
	MLTrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ml_training_duration_seconds",
			Help:    "Training run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// MLTrainingRows tracks the size of the last training frame
	MLTrainingRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ml_training_rows",
			Help: "Rows in the most recent training frame",
		},
	)

	// MLValidationAccuracy tracks hold-out accuracy of the last run
	MLValidationAccuracy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ml_validation_accuracy",
			Help: "Hold-out accuracy of the most recent training run",
		},
	)
)
