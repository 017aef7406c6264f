// Package ingest stores incoming noise readings and raises threshold alerts.
package ingest

import (
	"log/slog"
	"time"

	"github.com/noisewatch/noisewatch-go/internal/datastore"
	"github.com/noisewatch/noisewatch-go/internal/errors"
	"github.com/noisewatch/noisewatch-go/internal/logging"
	"github.com/noisewatch/noisewatch-go/internal/observability/metrics"
	"github.com/noisewatch/noisewatch-go/internal/threshold"
)

// Service persists noise readings and creates alerts when a reading
// exceeds the applicable threshold of its monitoring point.
type Service struct {
	ds      datastore.Interface
	logger  *slog.Logger
	metrics *metrics.IngestMetrics
}

// NewService creates an ingest service. The metrics collector may be nil,
// in which case no metrics are recorded.
func NewService(ds datastore.Interface, ingestMetrics *metrics.IngestMetrics) *Service {
	return &Service{
		ds:      ds,
		logger:  logging.ForService("ingest"),
		metrics: ingestMetrics,
	}
}

// Record validates and stores a reading, then evaluates it against the
// monitoring point's thresholds. A reading that exceeds the active
// threshold produces a pending alert carrying the noise level and the
// threshold value in force at that moment.
//
// Alert creation is best effort: a failed alert write is logged but does
// not fail the ingest, and a reading for an unknown point is stored
// without any alert evaluation.
func (s *Service) Record(pointID uint, noiseLevel float64, dataType string, at time.Time) (*datastore.NoiseReading, error) {
	if pointID == 0 {
		return nil, errors.Newf("point ID is required").
			Component("ingest").
			Category(errors.CategoryValidation).
			Build()
	}
	if at.IsZero() {
		at = time.Now()
	}
	if dataType == "" {
		dataType = "realtime"
	}

	reading := &datastore.NoiseReading{
		PointID:         pointID,
		NoiseLevel:      noiseLevel,
		MeasurementTime: at,
		DataType:        dataType,
	}
	if err := s.ds.SaveReading(reading); err != nil {
		if s.metrics != nil {
			s.metrics.IncrementReadingErrors()
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncrementReadingsIngested()
		s.metrics.ObserveNoiseLevel(noiseLevel)
	}

	s.evaluateAlert(reading)
	return reading, nil
}

// evaluateAlert checks a stored reading against its point's thresholds
// and creates an alert on exceedance.
func (s *Service) evaluateAlert(reading *datastore.NoiseReading) {
	point, err := s.ds.GetPoint(reading.PointID)
	if err != nil {
		if !errors.IsNotFound(err) {
			s.logger.Error("threshold lookup failed",
				"point_id", reading.PointID, "error", err)
		}
		return
	}

	result := threshold.Evaluate(&point, reading.MeasurementTime, reading.NoiseLevel)
	if !result.Exceeded {
		return
	}

	alert := &datastore.Alert{
		PointID:        reading.PointID,
		NoiseLevel:     reading.NoiseLevel,
		ThresholdValue: result.Threshold,
		AlertTime:      reading.MeasurementTime,
		Status:         datastore.AlertStatusPending,
	}
	if err := s.ds.SaveAlert(alert); err != nil {
		s.logger.Error("failed to create alert",
			"point_id", reading.PointID,
			"noise_level", reading.NoiseLevel,
			"threshold", result.Threshold,
			"error", err)
		return
	}
	if s.metrics != nil {
		s.metrics.IncrementAlertsCreated()
	}
	s.logger.Info("noise threshold exceeded",
		"point_id", reading.PointID,
		"noise_level", reading.NoiseLevel,
		"threshold", result.Threshold)
}
