package observability

import (
	"net/http"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, status code, and host
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nugetcatalog_http_requests_total",
			Help: "Total number of HTTP requests by method and status",
		},
		[]string{"method", "status_code", "source"},
	)

	// HTTPRequestDuration tracks HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nugetcatalog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to 16s
		},
		[]string{"method", "source"},
	)

	// CacheHitsTotal counts cache hits by store
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nugetcatalog_cache_hits_total",
			Help: "Total number of cache hits by store",
		},
		[]string{"store"}, // memory, file, redis, image
	)

	// CacheMissesTotal counts cache misses by store
	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nugetcatalog_cache_misses_total",
			Help: "Total number of cache misses by store",
		},
		[]string{"store"},
	)

	// PipelineRunsTotal counts pipeline runs by execution mode and outcome
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nugetcatalog_pipeline_runs_total",
			Help: "Total number of catalog pipeline runs",
		},
		[]string{"mode", "status"}, // blocking|detached, persisted|persist_failed
	)

	// PipelineRunDuration tracks full pipeline duration in seconds
	PipelineRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nugetcatalog_pipeline_run_duration_seconds",
			Help:    "Catalog pipeline duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
		},
		[]string{"mode"},
	)

	// StageUnitsTotal counts fan-out units by stage and outcome
	StageUnitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nugetcatalog_stage_units_total",
			Help: "Fan-out units by stage and outcome",
		},
		[]string{"stage", "outcome"}, // outcome: present, absent, failed
	)

	// CatalogPackages tracks the size of the last persisted catalog
	CatalogPackages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nugetcatalog_catalog_packages",
			Help: "Number of packages in the last persisted catalog",
		},
	)

	// ErrorsReportedTotal counts errors handed to the Reporter
	ErrorsReportedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nugetcatalog_errors_reported_total",
			Help: "Total number of reported errors by component",
		},
		[]string{"component"},
	)

	// CircuitBreakerState tracks circuit breaker state by host
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nugetcatalog_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"host"},
	)

	// RateLimitRequestsTotal counts rate limited requests
	RateLimitRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nugetcatalog_rate_limit_requests_total",
			Help: "Total number of rate limited requests",
		},
		[]string{"source", "allowed"},
	)
)

// MetricsHandler returns an HTTP handler for Prometheus metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer starts an HTTP server exposing Prometheus metrics.
// It blocks until the server stops.
func StartMetricsServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler())
	return http.ListenAndServe(addr, mux)
}

// GetCounterValue retrieves the current value of a counter metric with the given labels
// This is primarily intended for testing
func GetCounterValue(counter *prometheus.CounterVec, labels ...string) (float64, error) {
	metric, err := counter.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0, err
	}

	var pb dto.Metric
	if err := metric.Write(&pb); err != nil {
		return 0, err
	}

	if pb.Counter != nil {
		return pb.Counter.GetValue(), nil
	}

	return 0, nil
}
