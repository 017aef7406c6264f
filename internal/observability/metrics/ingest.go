// Package metrics provides custom Prometheus metrics for various components of the NoiseWatch application.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics contains all Prometheus metrics related to noise data ingestion.
type IngestMetrics struct {
	ReadingsIngested prometheus.Counter
	ReadingErrors    prometheus.Counter
	AlertsCreated    prometheus.Counter
	AlertsHandled    prometheus.Counter
	NoiseLevel       prometheus.Histogram
	registry         *prometheus.Registry
}

// NewIngestMetrics creates a new instance of IngestMetrics.
// It requires a Prometheus registry to register the metrics.
// It returns an error if metric registration fails.
func NewIngestMetrics(registry *prometheus.Registry) (*IngestMetrics, error) {
	m := &IngestMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize ingest metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register ingest metrics: %w", err)
	}
	return m, nil
}

// initMetrics initializes all metrics for IngestMetrics.
func (m *IngestMetrics) initMetrics() error {
	m.ReadingsIngested = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "noise_readings_ingested_total",
		Help: "Total number of noise readings stored",
	})

	m.ReadingErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "noise_reading_errors_total",
		Help: "Total number of readings that failed to store",
	})

	m.AlertsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "noise_alerts_created_total",
		Help: "Total number of threshold exceedance alerts created",
	})

	m.AlertsHandled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "noise_alerts_handled_total",
		Help: "Total number of alerts marked as handled",
	})

	m.NoiseLevel = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "noise_level_decibels",
		Help:    "Distribution of ingested noise levels in decibels",
		Buckets: prometheus.LinearBuckets(30, 10, 9),
	})

	return nil
}

// IncrementReadingsIngested increments the count of stored noise readings.
func (m *IngestMetrics) IncrementReadingsIngested() {
	m.ReadingsIngested.Inc()
}

// IncrementReadingErrors increments the count of failed reading writes.
func (m *IngestMetrics) IncrementReadingErrors() {
	m.ReadingErrors.Inc()
}

// IncrementAlertsCreated increments the count of created alerts.
func (m *IngestMetrics) IncrementAlertsCreated() {
	m.AlertsCreated.Inc()
}

// IncrementAlertsHandled increments the count of handled alerts.
func (m *IngestMetrics) IncrementAlertsHandled() {
	m.AlertsHandled.Inc()
}

// ObserveNoiseLevel records an ingested noise level.
func (m *IngestMetrics) ObserveNoiseLevel(decibels float64) {
	m.NoiseLevel.Observe(decibels)
}

// Describe implements the prometheus.Collector interface.
func (m *IngestMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.ReadingsIngested.Describe(ch)
	m.ReadingErrors.Describe(ch)
	m.AlertsCreated.Describe(ch)
	m.AlertsHandled.Describe(ch)
	m.NoiseLevel.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *IngestMetrics) Collect(ch chan<- prometheus.Metric) {
	m.ReadingsIngested.Collect(ch)
	m.ReadingErrors.Collect(ch)
	m.AlertsCreated.Collect(ch)
	m.AlertsHandled.Collect(ch)
	m.NoiseLevel.Collect(ch)
}
