// analytics.go: aggregation queries backing the statistics and analysis endpoints
package datastore

import (
	"fmt"
)

// Trend analysis granularities.
const (
	GranularityHour  = "hour"
	GranularityDay   = "day"
	GranularityWeek  = "week"
	GranularityMonth = "month"
)

// ValidGranularity reports whether the given trend granularity is supported.
func ValidGranularity(granularity string) bool {
	switch granularity {
	case GranularityHour, GranularityDay, GranularityWeek, GranularityMonth:
		return true
	default:
		return false
	}
}

// dateExpr returns the database-specific SQL fragment that truncates the
// given timestamp column to its wall-clock calendar date. SQLite stores
// timestamps with their zone offset and date() normalizes those to UTC, so
// the 'localtime' modifier is needed to stay on the measurement's calendar
// day. MySQL stores DATETIME values already rebased to the connection's
// loc=Local, so plain DATE() is the wall-clock date.
func (ds *DataStore) dateExpr(column string) string {
	if ds.DB.Dialector.Name() == "mysql" {
		return "DATE(" + column + ")"
	}
	return "date(" + column + ", 'localtime')"
}

// trendBucketExpr returns the database-specific SQL fragment that truncates
// measurement_time to the requested wall-clock calendar bucket. The SQLite
// branches carry the same 'localtime' modifier as dateExpr.
func (ds *DataStore) trendBucketExpr(granularity string) string {
	switch ds.DB.Dialector.Name() {
	case "mysql":
		switch granularity {
		case GranularityHour:
			return "DATE_FORMAT(measurement_time, '%Y-%m-%d %H:00')"
		case GranularityWeek:
			return "DATE_FORMAT(measurement_time, '%Y-%u')"
		case GranularityMonth:
			return "DATE_FORMAT(measurement_time, '%Y-%m')"
		default:
			return "DATE(measurement_time)"
		}
	default:
		switch granularity {
		case GranularityHour:
			return "strftime('%Y-%m-%d %H:00', measurement_time, 'localtime')"
		case GranularityWeek:
			return "strftime('%Y-%W', measurement_time, 'localtime')"
		case GranularityMonth:
			return "strftime('%Y-%m', measurement_time, 'localtime')"
		default:
			return "date(measurement_time, 'localtime')"
		}
	}
}

// distributionBucketExpr returns the database-specific SQL fragment mapping a
// noise level to the lower bound of its 10 dB bin. Noise levels are
// non-negative so integer truncation matches floor division.
func (ds *DataStore) distributionBucketExpr() string {
	switch ds.DB.Dialector.Name() {
	case "mysql":
		return "FLOOR(noise_level / 10) * 10"
	default:
		return "CAST(noise_level / 10 AS INTEGER) * 10"
	}
}

// currentDateExpr returns the database-specific SQL fragment for today's date.
func (ds *DataStore) currentDateExpr() string {
	switch ds.DB.Dialector.Name() {
	case "mysql":
		return "CURDATE()"
	default:
		return "date('now', 'localtime')"
	}
}

// PointStatistics returns count, average, min and max noise level grouped by
// point over the matching readings.
func (ds *DataStore) PointStatistics(filters *ReadingFilters) ([]PointStats, error) {
	var stats []PointStats

	query := ds.DB.Table("noise_readings").
		Select("point_id, COUNT(*) AS total_count, AVG(noise_level) AS avg_level, " +
			"MIN(noise_level) AS min_level, MAX(noise_level) AS max_level")

	query = ds.applyReadingFilters(query, filters, "measurement_time", true)

	if err := query.Group("point_id").Scan(&stats).Error; err != nil {
		return nil, fmt.Errorf("querying point statistics: %w", err)
	}
	return stats, nil
}

// TrendAnalysis buckets matching readings by calendar granularity and returns
// avg/min/max per bucket, oldest bucket first.
func (ds *DataStore) TrendAnalysis(filters *ReadingFilters, granularity string) ([]TrendBucket, error) {
	var buckets []TrendBucket

	bucket := ds.trendBucketExpr(granularity)

	query := ds.DB.Table("noise_readings").
		Select(bucket + " AS time_group, AVG(noise_level) AS avg_level, " +
			"MIN(noise_level) AS min_level, MAX(noise_level) AS max_level")

	query = ds.applyReadingFilters(query, filters, "measurement_time", true)

	err := query.Group("time_group").
		Order("time_group").
		Scan(&buckets).Error
	if err != nil {
		return nil, fmt.Errorf("querying trend analysis: %w", err)
	}
	return buckets, nil
}

// DistributionAnalysis counts matching readings per fixed-width 10 dB bin,
// lowest bin first. The top bin has no upper cap.
func (ds *DataStore) DistributionAnalysis(filters *ReadingFilters) ([]DistributionBin, error) {
	var bins []DistributionBin

	bucket := ds.distributionBucketExpr()

	query := ds.DB.Table("noise_readings").
		Select(bucket + " AS noise_range, COUNT(*) AS count")

	query = ds.applyReadingFilters(query, filters, "measurement_time", true)

	err := query.Group("noise_range").
		Order("noise_range").
		Scan(&bins).Error
	if err != nil {
		return nil, fmt.Errorf("querying distribution analysis: %w", err)
	}
	return bins, nil
}

// ComparisonAnalysis returns the same per-point aggregates as PointStatistics
// joined with the point name for display, one row per point.
func (ds *DataStore) ComparisonAnalysis(filters *ReadingFilters) ([]PointStats, error) {
	var stats []PointStats

	query := ds.DB.Table("noise_readings").
		Select("noise_readings.point_id, monitoring_points.name AS point_name, " +
			"COUNT(*) AS total_count, AVG(noise_level) AS avg_level, " +
			"MIN(noise_level) AS min_level, MAX(noise_level) AS max_level").
		Joins("JOIN monitoring_points ON noise_readings.point_id = monitoring_points.id")

	query = ds.applyReadingFilters(query, filters, "noise_readings.measurement_time", true)

	err := query.Group("noise_readings.point_id, monitoring_points.name").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("querying comparison analysis: %w", err)
	}
	return stats, nil
}

// AlertStatistics returns today's alert counters plus avg/max offending noise
// level. Explicit date filters narrow the scope further, they do not replace
// the daily window. That matches the dashboard's historical behavior and is
// kept deliberately.
func (ds *DataStore) AlertStatistics(filters *ReadingFilters) (AlertStats, error) {
	var stats AlertStats

	query := ds.DB.Table("alerts").
		Select("COUNT(*) AS total_alerts, " +
			"COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending_alerts, " +
			"COALESCE(SUM(CASE WHEN status = 'handled' THEN 1 ELSE 0 END), 0) AS handled_alerts, " +
			"AVG(noise_level) AS avg_noise_level, MAX(noise_level) AS max_noise_level").
		Where(ds.dateExpr("alert_time") + " = " + ds.currentDateExpr())

	if filters != nil {
		if filters.PointID != 0 {
			query = query.Where("point_id = ?", filters.PointID)
		}
		if filters.StartDate != "" {
			query = query.Where("alert_time >= ?", filters.StartDate)
		}
		if filters.EndDate != "" {
			query = query.Where("alert_time <= ?", filters.EndDate)
		}
	}

	if err := query.Scan(&stats).Error; err != nil {
		return AlertStats{}, fmt.Errorf("querying alert statistics: %w", err)
	}
	return stats, nil
}
