// Package metrics exposes Prometheus metrics for the catalog.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks HTTP traffic, package lookups and enrichment failures.
//
// Every method is safe on a nil *Metrics so callers in tests can skip it.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	PackageLookups     *prometheus.CounterVec
	EnrichmentFailures *prometheus.CounterVec
	StatsRefreshes     *prometheus.CounterVec
}

// New creates a Metrics instance registered on its own registry, together
// with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pydigger_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pydigger_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
		PackageLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pydigger_package_lookups_total",
			Help: "Package detail lookups by outcome (found, redirect, not_found)",
		}, []string{"result"}),
		EnrichmentFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pydigger_enrichment_failures_total",
			Help: "Degraded page enrichments (stats cache, raw dump)",
		}, []string{"kind"}),
		StatsRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pydigger_stats_refreshes_total",
			Help: "Stats cache refreshes by result",
		}, []string{"result"}),
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

// IncrementPackageLookup records a detail page lookup outcome.
func (m *Metrics) IncrementPackageLookup(result string) {
	if m == nil {
		return
	}
	m.PackageLookups.WithLabelValues(result).Inc()
}

// IncrementEnrichmentFailure records a degraded enrichment.
func (m *Metrics) IncrementEnrichmentFailure(kind string) {
	if m == nil {
		return
	}
	m.EnrichmentFailures.WithLabelValues(kind).Inc()
}

// IncrementStatsRefresh records a stats refresh attempt.
func (m *Metrics) IncrementStatsRefresh(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.StatsRefreshes.WithLabelValues(result).Inc()
}
