// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "receiptsplit"

// Metrics groups the service collectors. A nil *Metrics is valid and records
// nothing, which keeps tests and tools free of registry setup.
type Metrics struct {
	allocations    *prometheus.CounterVec
	reconcileCents prometheus.Histogram
	extractions    *prometheus.CounterVec
	lineItems      prometheus.Histogram
	ocrDuration    prometheus.Histogram
	events         *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		allocations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Allocations computed, by whether items were scaled to an inferred discount.",
		}, []string{"scaled"}),
		reconcileCents: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_cents",
			Help:      "Absolute cents moved by reconciliation per allocation.",
			Buckets:   []float64{0, 1, 2, 5, 10, 50, 100},
		}),
		extractions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Receipt scans, by outcome.",
		}, []string{"outcome"}),
		lineItems: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extracted_line_items",
			Help:      "Line items found per extracted receipt.",
			Buckets:   []float64{0, 1, 5, 10, 20, 50},
		}),
		ocrDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ocr_duration_seconds",
			Help:      "Document analysis latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events published, by type and outcome.",
		}, []string{"event", "outcome"}),
	}
}

// ObserveAllocation records one allocation and the pennies reconciliation moved.
func (m *Metrics) ObserveAllocation(scaled bool, reconciledCents int64) {
	if m == nil {
		return
	}
	m.allocations.WithLabelValues(strconv.FormatBool(scaled)).Inc()
	if reconciledCents < 0 {
		reconciledCents = -reconciledCents
	}
	m.reconcileCents.Observe(float64(reconciledCents))
}

// ObserveExtraction records a scan outcome and its duration.
func (m *Metrics) ObserveExtraction(err error, lineItems int, took time.Duration) {
	if m == nil {
		return
	}
	m.ocrDuration.Observe(took.Seconds())
	if err != nil {
		m.extractions.WithLabelValues("error").Inc()
		return
	}
	m.extractions.WithLabelValues("ok").Inc()
	m.lineItems.Observe(float64(lineItems))
}

// ObserveEvent records a publish attempt.
func (m *Metrics) ObserveEvent(event string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.events.WithLabelValues(event, outcome).Inc()
}
