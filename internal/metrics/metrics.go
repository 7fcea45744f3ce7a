// Package metrics provides the centralized Prometheus registry for the chase predictor.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chase_predictor",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chase_predictor",
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter",
	})
	PredictionRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chase_predictor",
		Name:      "prediction_requests_total",
		Help:      "Total number of prediction requests by result",
	}, []string{"result"})
	ScheduledRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chase_predictor",
		Name:      "scheduled_runs_total",
		Help:      "Total number of scheduled training runs",
	}, []string{"status"})
)

// Gauge metrics
var (
	HTTPRequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "chase_predictor",
		Name:      "http_requests_in_flight",
		Help:      "Number of HTTP requests currently being served",
	})
	ModelInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "chase_predictor",
		Name:      "model_info",
		Help:      "Currently served model, value is always 1",
	}, []string{"name", "version"})
)

// Histogram metrics
var (
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chase_predictor",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"method", "path"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(HTTPRequestsTotal)
		registry.MustRegister(RateLimitedTotal)
		registry.MustRegister(PredictionRequestsTotal)
		registry.MustRegister(ScheduledRunsTotal)

		registry.MustRegister(HTTPRequestsInFlight)
		registry.MustRegister(ModelInfo)

		registry.MustRegister(HTTPRequestDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler. It merges the service registry
// with the default one, where the model metrics and process collectors live.
func Handler() http.Handler {
	gatherers := prometheus.Gatherers{GetRegistry(), prometheus.DefaultGatherer}
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records a served HTTP request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRateLimited records a request rejected by the rate limiter.
func RecordRateLimited() {
	RateLimitedTotal.Inc()
}

// RecordPrediction records the result of a prediction request: ok,
// invalid or error.
func RecordPrediction(result string) {
	PredictionRequestsTotal.WithLabelValues(result).Inc()
}

// RecordScheduledRun records the status of a scheduled training run.
func RecordScheduledRun(status string) {
	ScheduledRunsTotal.WithLabelValues(status).Inc()
}

// SetModelInfo publishes the model currently being served.
func SetModelInfo(name, version string) {
	ModelInfo.Reset()
	ModelInfo.WithLabelValues(name, version).Set(1)
}
