// Package metrics provides Prometheus metrics collection for MetaGate.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for MetaGate.
type Collector struct {
	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Deployment metrics
	DeploymentsTotal *prometheus.CounterVec
	DeployDuration   *prometheus.HistogramVec
	StagingFailures  prometheus.Counter

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a new metrics collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "metagate",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "metagate",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"method", "path", "status"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "metagate",
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),

		DeploymentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "metagate",
				Name:      "deployments_total",
				Help:      "Total number of deployment attempts by outcome",
			},
			[]string{"status"},
		),
		DeployDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "metagate",
				Name:      "deploy_duration_seconds",
				Help:      "Deployment tool run duration in seconds",
				Buckets:   []float64{1, 2.5, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"status"},
		),
		StagingFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "metagate",
				Name:      "staging_failures_total",
				Help:      "Total number of staging directory failures",
			},
		),

		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "metagate",
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "metagate",
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "metagate",
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}

// NormalizePath reduces label cardinality. Known routes pass through; the
// static catch-all collapses to one label so arbitrary request paths never
// become label values.
func NormalizePath(path string) string {
	switch path {
	case "/health", "/create-metadata", "/deployments", "/version":
		return path
	}
	return "static"
}
