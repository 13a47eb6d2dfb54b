// Package telemetry exposes Prometheus metrics for the NLP pipeline and the
// HTTP surface. All collectors are registered with the default registry at
// package initialization and served through Handler.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	completionRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "completion_requests_total",
			Help: "Chat completion requests by model and outcome",
		},
		[]string{"model", "outcome"},
	)

	completionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "completion_duration_seconds",
			Help:    "Chat completion latency",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	embeddingRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_requests_total",
			Help: "Embedding requests by outcome",
		},
		[]string{"outcome"},
	)

	indexSearches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "icd10_index_searches_total",
			Help: "Nearest-neighbor searches against the ICD-10 index",
		},
	)

	indexSearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "icd10_index_search_duration_seconds",
			Help:    "ICD-10 index search latency, lock wait included",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	analyzeBranches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyze_branches_total",
			Help: "Analyze pipeline branch results",
		},
		[]string{"branch", "outcome"},
	)

	httpRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	httpRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)
)

func init() {
	prometheus.MustRegister(
		completionRequests,
		completionDuration,
		embeddingRequests,
		indexSearches,
		indexSearchDuration,
		analyzeBranches,
		httpRequestTotals,
		httpRequestDuration,
		httpRequestInFlight,
	)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordCompletion tracks one chat completion round trip.
func RecordCompletion(model string, err error, elapsed time.Duration) {
	completionRequests.WithLabelValues(model, outcome(err)).Inc()
	completionDuration.WithLabelValues(model).Observe(elapsed.Seconds())
}

// RecordEmbedding tracks one embedding round trip.
func RecordEmbedding(err error) {
	embeddingRequests.WithLabelValues(outcome(err)).Inc()
}

// RecordIndexSearch tracks one serialized index search.
func RecordIndexSearch(elapsed time.Duration) {
	indexSearches.Inc()
	indexSearchDuration.Observe(elapsed.Seconds())
}

// RecordBranch tracks the outcome of one analyze pipeline branch:
// "ok", "skipped" or "failed".
func RecordBranch(branch, result string) {
	analyzeBranches.WithLabelValues(branch, result).Inc()
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
