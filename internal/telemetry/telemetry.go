// Package telemetry exposes Prometheus collectors for the scraper process.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// requestsTotal tracks network requests issued by fetch workers.
	requestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_requests_total",
		Help: "The total number of network requests issued.",
	})
	// cacheHitsTotal tracks fetches satisfied from the request cache.
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_cache_hits_total",
		Help: "The total number of fetches served from the request cache.",
	})
	// retriesTotal tracks retry attempts scheduled by the retry policy.
	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_retries_total",
		Help: "The total number of fetch retries scheduled.",
	})
	// errorsTotal tracks terminal fetch failures, labeled by class.
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scraper_errors_total",
		Help: "The total number of terminal fetch failures by class.",
	}, []string{"kind"})
	// fetchDurationSeconds observes per-attempt fetch latency.
	fetchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scraper_fetch_duration_seconds",
		Help:    "Histogram of fetch attempt latencies.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
)

// ObserveRequest records one issued network request and its latency.
func ObserveRequest(duration time.Duration) {
	requestsTotal.Inc()
	fetchDurationSeconds.Observe(duration.Seconds())
}

// ObserveCacheHit records a fetch served from cache.
func ObserveCacheHit() {
	cacheHitsTotal.Inc()
}

// ObserveRetry records a scheduled retry.
func ObserveRetry() {
	retriesTotal.Inc()
}

// ObserveError records a terminal failure of the given class.
func ObserveError(kind string) {
	errorsTotal.WithLabelValues(kind).Inc()
}

// Handler returns an http.Handler exposing the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
