// Package metrics declares the Prometheus collectors exported at /metrics.
//
// HTTP metrics:
//   - http_requests_total{method, route, status}
//   - http_request_duration_seconds{method, route}
//
// Recommendation metrics:
//   - recommendation_runs_total{strategy, outcome}
//   - recommendation_run_duration_seconds{strategy}
//   - recommendation_tracks_resolved{strategy}
//   - recommendation_detail_failures_total{strategy}
//   - genre_fallback_total{outcome}
//
// Spotify metrics:
//   - spotify_requests_total{operation, outcome}
//   - circuit_breaker_state{name} (0=closed, 1=half-open, 2=open)
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)
)

var (
	RecommendationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_runs_total",
			Help: "Recommendation runs by strategy and outcome (success, error)",
		},
		[]string{"strategy", "outcome"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_run_duration_seconds",
			Help:    "End-to-end duration of a recommendation run",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 40},
		},
		[]string{"strategy"},
	)

	TracksResolved = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_tracks_resolved",
			Help:    "Recommended tracks whose details resolved, per run",
			Buckets: []float64{0, 1, 5, 10, 15, 20, 50, 100},
		},
		[]string{"strategy"},
	)

	DetailFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_detail_failures_total",
			Help: "Track detail lookups that failed and were dropped",
		},
		[]string{"strategy"},
	)

	GenreFallback = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genre_fallback_total",
			Help: "Last.fm genre fallback lookups by outcome (hit, empty, error)",
		},
		[]string{"outcome"},
	)
)

var (
	SpotifyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotify_requests_total",
			Help: "Spotify Web API calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// Handler serves the default registry in Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Outcome returns "success" for a nil error and "error" otherwise.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordRun observes one finished recommendation run.
func RecordRun(strategy string, d time.Duration, resolved, failed int, err error) {
	RecommendationRuns.WithLabelValues(strategy, Outcome(err)).Inc()
	RecommendationDuration.WithLabelValues(strategy).Observe(d.Seconds())
	if err != nil {
		return
	}
	TracksResolved.WithLabelValues(strategy).Observe(float64(resolved))
	if failed > 0 {
		DetailFailures.WithLabelValues(strategy).Add(float64(failed))
	}
}
