// Package metrics exposes Prometheus instrumentation for report generation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsNamespace is the namespace for all metrics.
const MetricsNamespace = "diderot"

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	GenerationRequests *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	HeadlinesProcessed *prometheus.CounterVec
	ReportLookups      *prometheus.CounterVec
	ReportRuns         *prometheus.CounterVec
	ReportRunDuration  prometheus.Histogram
	FeedFetches        *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		GenerationRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "generation_requests_total",
				Help:      "Text generation calls by pipeline stage and outcome",
			},
			[]string{"stage", "outcome"},
		),
		GenerationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: MetricsNamespace,
				Name:      "generation_duration_seconds",
				Help:      "Latency of text generation calls",
				Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
			},
			[]string{"stage"},
		),
		HeadlinesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "headlines_processed_total",
				Help:      "Headline reports assembled, by outcome",
			},
			[]string{"outcome"},
		),
		ReportLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "report_lookups_total",
				Help:      "Daily report requests by cache state",
			},
			[]string{"state"},
		),
		ReportRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "report_runs_total",
				Help:      "Daily report generation runs by outcome",
			},
			[]string{"outcome"},
		),
		ReportRunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: MetricsNamespace,
				Name:      "report_run_duration_seconds",
				Help:      "Duration of a full daily report generation",
				Buckets:   prometheus.ExponentialBuckets(5, 2, 10),
			},
		),
		FeedFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "feed_fetches_total",
				Help:      "Headline feed fetches by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveGeneration records one text generation call.
func (m *Metrics) ObserveGeneration(stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.GenerationRequests.WithLabelValues(stage, outcome(err)).Inc()
	m.GenerationDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// HeadlineProcessed records an assembled headline report.
func (m *Metrics) HeadlineProcessed(degraded bool) {
	if m == nil {
		return
	}
	label := "ok"
	if degraded {
		label = "degraded"
	}
	m.HeadlinesProcessed.WithLabelValues(label).Inc()
}

// ReportLookup records a daily report request in the given cache state.
func (m *Metrics) ReportLookup(state string) {
	if m == nil {
		return
	}
	m.ReportLookups.WithLabelValues(state).Inc()
}

// ReportRun records a finished generation run.
func (m *Metrics) ReportRun(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.ReportRuns.WithLabelValues(outcome(err)).Inc()
	m.ReportRunDuration.Observe(d.Seconds())
}

// FeedFetch records a headline feed fetch.
func (m *Metrics) FeedFetch(err error) {
	if m == nil {
		return
	}
	m.FeedFetches.WithLabelValues(outcome(err)).Inc()
}
