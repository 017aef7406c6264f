// readings.go: persistence and paginated history queries for noise readings
package datastore

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SaveReading inserts a new noise reading. MeasurementTime defaults to now
// when unset.
func (ds *DataStore) SaveReading(reading *NoiseReading) error {
	if reading.MeasurementTime.IsZero() {
		reading.MeasurementTime = time.Now()
	}
	if reading.DataType == "" {
		reading.DataType = "realtime"
	}

	if err := ds.DB.Create(reading).Error; err != nil {
		return fmt.Errorf("saving reading: %w", err)
	}
	return nil
}

// applyReadingFilters appends the shared filter predicate to a readings query.
// The history endpoints compare raw timestamps, the aggregation endpoints
// compare calendar dates; byDate selects between the two.
func (ds *DataStore) applyReadingFilters(query *gorm.DB, filters *ReadingFilters, column string, byDate bool) *gorm.DB {
	if filters == nil {
		return query
	}

	timeColumn := column
	if byDate {
		timeColumn = ds.dateExpr(column)
	}

	if filters.PointID != 0 {
		query = query.Where("noise_readings.point_id = ?", filters.PointID)
	}
	if filters.StartDate != "" {
		query = query.Where(timeColumn+" >= ?", filters.StartDate)
	}
	if filters.EndDate != "" {
		query = query.Where(timeColumn+" <= ?", filters.EndDate)
	}
	return query
}

// SearchReadings retrieves readings joined with their point's name and
// location, newest first, with offset pagination.
func (ds *DataStore) SearchReadings(filters *ReadingFilters, limit, offset int) ([]ReadingWithPoint, error) {
	var readings []ReadingWithPoint

	query := ds.DB.Table("noise_readings").
		Select("noise_readings.*, monitoring_points.name AS point_name, monitoring_points.location").
		Joins("JOIN monitoring_points ON noise_readings.point_id = monitoring_points.id")

	query = ds.applyReadingFilters(query, filters, "noise_readings.measurement_time", false)

	err := query.Order("noise_readings.measurement_time DESC").
		Limit(limit).
		Offset(offset).
		Scan(&readings).Error
	if err != nil {
		return nil, fmt.Errorf("searching readings: %w", err)
	}
	return readings, nil
}

// CountReadings returns the total number of readings matching the same
// predicate SearchReadings uses, for page count derivation.
func (ds *DataStore) CountReadings(filters *ReadingFilters) (int64, error) {
	var count int64

	query := ds.DB.Table("noise_readings").
		Joins("JOIN monitoring_points ON noise_readings.point_id = monitoring_points.id")

	query = ds.applyReadingFilters(query, filters, "noise_readings.measurement_time", false)

	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting readings: %w", err)
	}
	return count, nil
}

// RealtimeReadings returns readings within the trailing window joined with
// their point's thresholds, newest first. This backs the dashboard's polling
// feed.
func (ds *DataStore) RealtimeReadings(window time.Duration) ([]ReadingWithPoint, error) {
	var readings []ReadingWithPoint

	since := time.Now().Add(-window)

	err := ds.DB.Table("noise_readings").
		Select("noise_readings.*, monitoring_points.name AS point_name, monitoring_points.location, "+
			"monitoring_points.threshold_day, monitoring_points.threshold_night").
		Joins("JOIN monitoring_points ON noise_readings.point_id = monitoring_points.id").
		Where("noise_readings.measurement_time >= ?", since).
		Order("noise_readings.measurement_time DESC").
		Scan(&readings).Error
	if err != nil {
		return nil, fmt.Errorf("fetching realtime readings: %w", err)
	}
	return readings, nil
}
