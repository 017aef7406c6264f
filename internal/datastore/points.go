// points.go: CRUD operations for monitoring points
package datastore

import (
	"fmt"

	"github.com/noisewatch/noisewatch-go/internal/errors"
	"gorm.io/gorm"
)

// GetAllPoints retrieves all monitoring points, newest first.
func (ds *DataStore) GetAllPoints() ([]MonitoringPoint, error) {
	var points []MonitoringPoint
	if err := ds.DB.Order("created_at DESC").Find(&points).Error; err != nil {
		return nil, fmt.Errorf("getting all points: %w", err)
	}
	return points, nil
}

// GetPoint retrieves a monitoring point by its ID.
func (ds *DataStore) GetPoint(id uint) (MonitoringPoint, error) {
	var point MonitoringPoint
	if err := ds.DB.First(&point, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MonitoringPoint{}, errors.Newf("point %d not found", id).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Build()
		}
		return MonitoringPoint{}, fmt.Errorf("getting point %d: %w", id, err)
	}
	return point, nil
}

// SavePoint inserts a new monitoring point. Status and thresholds fall back
// to their defaults when unset.
func (ds *DataStore) SavePoint(point *MonitoringPoint) error {
	if point.Status == "" {
		point.Status = PointStatusActive
	}
	if point.ThresholdDay == 0 {
		point.ThresholdDay = 55.0
	}
	if point.ThresholdNight == 0 {
		point.ThresholdNight = 45.0
	}

	if err := ds.DB.Create(point).Error; err != nil {
		return fmt.Errorf("saving point: %w", err)
	}
	return nil
}

// UpdatePoint performs a full-record update of an existing point.
func (ds *DataStore) UpdatePoint(point *MonitoringPoint) error {
	result := ds.DB.Model(&MonitoringPoint{}).
		Where("id = ?", point.ID).
		Updates(map[string]any{
			"name":            point.Name,
			"location":        point.Location,
			"latitude":        point.Latitude,
			"longitude":       point.Longitude,
			"threshold_day":   point.ThresholdDay,
			"threshold_night": point.ThresholdNight,
			"status":          point.Status,
		})
	if result.Error != nil {
		return fmt.Errorf("updating point %d: %w", point.ID, result.Error)
	}
	// MySQL reports rows changed, not rows matched, so an update that writes
	// the values already stored affects zero rows. Confirm absence before
	// calling it not found.
	if result.RowsAffected == 0 {
		if exists, err := ds.rowExists(&MonitoringPoint{}, point.ID); err != nil {
			return fmt.Errorf("updating point %d: %w", point.ID, err)
		} else if !exists {
			return errors.Newf("point %d not found", point.ID).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Build()
		}
	}
	return nil
}

// DeletePoint removes a monitoring point together with its readings and
// alerts in one transaction. The dependent rows go first so the cascade does
// not rely on the backend honoring foreign key constraints.
func (ds *DataStore) DeletePoint(id uint) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("point_id = ?", id).Delete(&NoiseReading{}).Error; err != nil {
			return fmt.Errorf("deleting readings for point %d: %w", id, err)
		}
		if err := tx.Where("point_id = ?", id).Delete(&Alert{}).Error; err != nil {
			return fmt.Errorf("deleting alerts for point %d: %w", id, err)
		}

		result := tx.Delete(&MonitoringPoint{}, id)
		if result.Error != nil {
			return fmt.Errorf("deleting point %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.Newf("point %d not found", id).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Build()
		}
		return nil
	})
}
