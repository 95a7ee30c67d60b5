// Package metrics defines the Prometheus metric collectors used by the
// conversion pipelines and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for a conversion run. Collectors
// are registered on a private registry so multiple runs (and tests) can
// coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	RecordsDecoded   prometheus.Counter
	PostingsDecoded  prometheus.Counter
	BytesRead        prometheus.Counter
	DocumentsWritten prometheus.Counter
	TermsWritten     prometheus.Counter
	StageDuration    *prometheus.HistogramVec
	ConversionsTotal *prometheus.CounterVec
}

// New creates and registers all conversion metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RecordsDecoded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ciffbridge_records_decoded_total",
				Help: "Total postings records decoded from the input stream.",
			},
		),
		PostingsDecoded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ciffbridge_postings_decoded_total",
				Help: "Total individual postings decoded across all terms.",
			},
		),
		BytesRead: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ciffbridge_input_bytes_total",
				Help: "Total payload bytes consumed from the postings stream.",
			},
		),
		DocumentsWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ciffbridge_documents_written_total",
				Help: "Total document length entries written to the sizes artifact.",
			},
		),
		TermsWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ciffbridge_terms_written_total",
				Help: "Total lexicon entries written.",
			},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ciffbridge_stage_duration_seconds",
				Help:    "Wall-clock duration of each conversion stage.",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300, 1200},
			},
			[]string{"stage"},
		),
		ConversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ciffbridge_conversions_total",
				Help: "Completed conversions by tool and status.",
			},
			[]string{"tool", "status"},
		),
	}

	m.registry.MustRegister(
		m.RecordsDecoded,
		m.PostingsDecoded,
		m.BytesRead,
		m.DocumentsWritten,
		m.TermsWritten,
		m.StageDuration,
		m.ConversionsTotal,
	)
	return m
}

// Handler returns an HTTP handler serving this run's metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
