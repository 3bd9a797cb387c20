// Package metrics exposes t5gmcp counters for Prometheus scraping.
//
// All methods are safe on a nil *Metrics so callers that run without a
// metrics endpoint (stdio transport, tests) need no special casing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/t5g-dashboard/t5gmcp/internal/casedata"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	toolCalls     *prometheus.CounterVec
	merges        *prometheus.CounterVec
	mergedCards   *prometheus.GaugeVec
	degraded      *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		fetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "t5gmcp_dashboard_fetch_total",
				Help: "Dashboard API requests by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "t5gmcp_dashboard_fetch_duration_seconds",
				Help:    "Dashboard API request latency by source",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "t5gmcp_tool_calls_total",
				Help: "MCP tool calls by tool and outcome",
			},
			[]string{"tool", "outcome"},
		),
		merges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "t5gmcp_merges_total",
				Help: "Enrichment runs by output shape",
			},
			[]string{"shape"},
		),
		mergedCards: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "t5gmcp_last_merge_cards",
				Help: "Card counts from the most recent enrichment run",
			},
			[]string{"kind"},
		),
		degraded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "t5gmcp_degraded_sources_total",
				Help: "Auxiliary sources that had an unusable shape",
			},
			[]string{"source"},
		),
	}

	registry.MustRegister(
		m.fetchTotal,
		m.fetchDuration,
		m.toolCalls,
		m.merges,
		m.mergedCards,
		m.degraded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFetch records one dashboard request.
func (m *Metrics) ObserveFetch(source string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(source, outcome(err)).Inc()
	m.fetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveToolCall records one MCP tool invocation.
func (m *Metrics) ObserveToolCall(tool string, failed bool) {
	if m == nil {
		return
	}
	result := "ok"
	if failed {
		result = "error"
	}
	m.toolCalls.WithLabelValues(tool, result).Inc()
}

// ObserveMerge records the outcome of an enrichment run.
func (m *Metrics) ObserveMerge(stats casedata.Stats) {
	if m == nil {
		return
	}
	m.merges.WithLabelValues(string(stats.Shape)).Inc()
	m.mergedCards.WithLabelValues("total").Set(float64(stats.Cards))
	m.mergedCards.WithLabelValues("with_case").Set(float64(stats.WithCase))
	m.mergedCards.WithLabelValues("escalated").Set(float64(stats.Escalated))
	m.mergedCards.WithLabelValues("with_issues").Set(float64(stats.WithIssues))
	m.mergedCards.WithLabelValues("with_bugs").Set(float64(stats.WithBugs))
	m.mergedCards.WithLabelValues("with_details").Set(float64(stats.WithDetails))
}

// ObserveDegraded records an auxiliary source the normalizer could not use.
func (m *Metrics) ObserveDegraded(source string) {
	if m == nil {
		return
	}
	m.degraded.WithLabelValues(source).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
