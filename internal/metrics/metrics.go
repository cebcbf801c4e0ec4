// Package metrics defines the Prometheus collectors for analysis runs and exposes
// an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels for RunsTotal.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the collectors, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal          *prometheus.CounterVec
	RunDuration        prometheus.Histogram
	DocumentsAnalyzed  prometheus.Counter
	VocabularySize     prometheus.Gauge
	MatrixTerms        prometheus.Gauge
	QueryTermsTotal    *prometheus.CounterVec
	HTTPRequestsTotal  *prometheus.CounterVec
	HTTPRequestLatency *prometheus.HistogramVec
}

// New creates and registers all collectors plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tango_runs_total",
				Help: "Analysis runs by result (ok, error).",
			},
			[]string{"result"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tango_run_duration_seconds",
				Help:    "Time to analyze one batch.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),
		DocumentsAnalyzed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tango_documents_analyzed_total",
				Help: "Documents analyzed across all runs.",
			},
		),
		VocabularySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tango_vocabulary_terms",
				Help: "Selected vocabulary terms of the last run.",
			},
		),
		MatrixTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tango_tfidf_terms",
				Help: "Distinct terms in the TF-IDF matrix of the last run.",
			},
		),
		QueryTermsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tango_query_terms_total",
				Help: "Scored query terms by outcome (found, not_found).",
			},
			[]string{"outcome"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tango_http_requests_total",
				Help: "HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tango_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RunsTotal,
		m.RunDuration,
		m.DocumentsAnalyzed,
		m.VocabularySize,
		m.MatrixTerms,
		m.QueryTermsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestLatency,
	)
	return m
}

// ObserveRun records a finished analysis.
func (m *Metrics) ObserveRun(elapsed time.Duration, documents, vocabulary, matrixTerms, found, notFound int) {
	m.RunsTotal.WithLabelValues(ResultOK).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
	m.DocumentsAnalyzed.Add(float64(documents))
	m.VocabularySize.Set(float64(vocabulary))
	m.MatrixTerms.Set(float64(matrixTerms))
	m.QueryTermsTotal.WithLabelValues("found").Add(float64(found))
	m.QueryTermsTotal.WithLabelValues("not_found").Add(float64(notFound))
}

// ObserveFailure records a failed analysis.
func (m *Metrics) ObserveFailure() {
	m.RunsTotal.WithLabelValues(ResultError).Inc()
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the scrape handler for the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
