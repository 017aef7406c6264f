// alerts.go: alert persistence and lifecycle operations
package datastore

import (
	"fmt"
	"time"

	"github.com/noisewatch/noisewatch-go/internal/errors"
	"gorm.io/gorm"
)

// SaveAlert inserts a new alert row. Status defaults to pending and the alert
// time to now.
func (ds *DataStore) SaveAlert(alert *Alert) error {
	if alert.Status == "" {
		alert.Status = AlertStatusPending
	}
	if alert.AlertTime.IsZero() {
		alert.AlertTime = time.Now()
	}

	if err := ds.DB.Create(alert).Error; err != nil {
		return fmt.Errorf("saving alert: %w", err)
	}
	return nil
}

// alertContextQuery builds the alerts listing joined with point display fields
// and the handler's name.
func (ds *DataStore) alertContextQuery() *gorm.DB {
	return ds.DB.Table("alerts").
		Select("alerts.*, monitoring_points.name AS point_name, monitoring_points.location, " +
			"users.name AS handler_name").
		Joins("JOIN monitoring_points ON alerts.point_id = monitoring_points.id").
		Joins("LEFT JOIN users ON alerts.handled_by = users.id")
}

// SearchAlerts retrieves alerts newest first, optionally filtered by status,
// joined with point name/location and handler name.
func (ds *DataStore) SearchAlerts(status string, limit, offset int) ([]AlertWithContext, error) {
	var alerts []AlertWithContext

	query := ds.alertContextQuery()
	if status != "" {
		query = query.Where("alerts.status = ?", status)
	}

	err := query.Order("alerts.alert_time DESC").
		Limit(limit).
		Offset(offset).
		Scan(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("searching alerts: %w", err)
	}
	return alerts, nil
}

// CountAlerts returns the number of alerts matching the status filter.
func (ds *DataStore) CountAlerts(status string) (int64, error) {
	var count int64

	query := ds.DB.Table("alerts")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting alerts: %w", err)
	}
	return count, nil
}

// GetAlert retrieves a single alert with its point and handler context.
func (ds *DataStore) GetAlert(id uint) (AlertWithContext, error) {
	var alert AlertWithContext

	result := ds.alertContextQuery().
		Where("alerts.id = ?", id).
		Limit(1).
		Scan(&alert)
	if result.Error != nil {
		return AlertWithContext{}, fmt.Errorf("getting alert %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return AlertWithContext{}, errors.Newf("alert %d not found", id).Component("datastore").Category(errors.CategoryNotFound).Build()
	}
	return alert, nil
}

// HandleAlert marks an alert handled by the given user, recording the handler
// and time. Re-handling an already handled alert overwrites the handler, the
// transition is one-way but not locked to the first actor.
func (ds *DataStore) HandleAlert(id, userID uint) error {
	now := time.Now()

	result := ds.DB.Model(&Alert{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     AlertStatusHandled,
			"handled_by": userID,
			"handled_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("handling alert %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.Newf("alert %d not found", id).Component("datastore").Category(errors.CategoryNotFound).Build()
	}
	return nil
}
