// model.go this code defines the data model for the application
package datastore

import "time"

// Point statuses.
const (
	PointStatusActive   = "active"
	PointStatusInactive = "inactive"
)

// Alert statuses. An alert starts pending and is closed exactly once.
const (
	AlertStatusPending = "pending"
	AlertStatusHandled = "handled"
)

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// MonitoringPoint represents a fixed measurement location with its own
// day and night noise thresholds.
type MonitoringPoint struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"type:varchar(100);not null" json:"name"`
	Location       string `gorm:"type:varchar(200)" json:"location"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Status         string  `gorm:"type:varchar(20);default:active;index:idx_points_status" json:"status"`
	ThresholdDay   float64 `gorm:"default:55.0" json:"threshold_day"`
	ThresholdNight float64 `gorm:"default:45.0" json:"threshold_night"`
	CreatedAt      time.Time `json:"created_at"`

	Readings []NoiseReading `gorm:"foreignKey:PointID;constraint:OnDelete:CASCADE" json:"-"`
	Alerts   []Alert        `gorm:"foreignKey:PointID;constraint:OnDelete:CASCADE" json:"-"`
}

// NoiseReading represents a single timestamped noise level measurement at a point.
// Readings are immutable once written.
type NoiseReading struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PointID         uint      `gorm:"index:idx_readings_point_time;not null" json:"point_id"`
	NoiseLevel      float64   `gorm:"not null" json:"noise_level"`
	MeasurementTime time.Time `gorm:"index:idx_readings_point_time" json:"measurement_time"`
	DataType        string    `gorm:"type:varchar(20);default:realtime" json:"data_type"`
}

// Alert represents an exceedance record. NoiseLevel and ThresholdValue are
// copied from the triggering reading so the alert reflects conditions at
// alert time even if the point's thresholds later change.
type Alert struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	PointID        uint       `gorm:"index" json:"point_id"`
	NoiseLevel     float64    `json:"noise_level"`
	ThresholdValue float64    `json:"threshold_value"`
	AlertTime      time.Time  `gorm:"index:idx_alerts_time" json:"alert_time"`
	Status         string     `gorm:"type:varchar(20);default:pending;index:idx_alerts_status" json:"status"`
	HandledBy      *uint      `json:"handled_by"`
	HandledAt      *time.Time `json:"handled_at"`
}

// User represents a dashboard account. The password hash is never serialized.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Username  string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Password  string     `gorm:"type:varchar(255);not null" json:"-"`
	Name      string     `gorm:"type:varchar(100);not null" json:"name"`
	Role      string     `gorm:"type:varchar(20);default:user" json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}

// ReadingWithPoint is a reading joined with its point's display fields,
// returned by the history and realtime queries.
type ReadingWithPoint struct {
	NoiseReading
	PointName      string  `json:"point_name"`
	Location       string  `json:"location"`
	ThresholdDay   float64 `json:"threshold_day,omitempty"`
	ThresholdNight float64 `json:"threshold_night,omitempty"`
}

// AlertWithContext is an alert joined with point and handler display fields.
type AlertWithContext struct {
	Alert
	PointName   string `json:"point_name"`
	Location    string `json:"location"`
	HandlerName string `json:"handler_name,omitempty"`
}

// PointStats holds per-point aggregate values over matching readings.
type PointStats struct {
	PointID    uint    `json:"point_id"`
	PointName  string  `json:"point_name,omitempty"`
	TotalCount int64   `json:"total_count"`
	AvgLevel   float64 `json:"avg_level"`
	MinLevel   float64 `json:"min_level"`
	MaxLevel   float64 `json:"max_level"`
}

// TrendBucket holds aggregate values for one calendar bucket.
type TrendBucket struct {
	TimeGroup string  `json:"time_group"`
	AvgLevel  float64 `json:"avg_level"`
	MinLevel  float64 `json:"min_level"`
	MaxLevel  float64 `json:"max_level"`
}

// DistributionBin holds the reading count for one 10 dB noise range.
// NoiseRange is the inclusive lower bound of the bin.
type DistributionBin struct {
	NoiseRange int   `json:"noise_range"`
	Count      int64 `json:"count"`
}

// AlertStats holds the aggregate alert counters for the dashboard.
type AlertStats struct {
	TotalAlerts   int64    `json:"total_alerts"`
	PendingAlerts int64    `json:"pending_alerts"`
	HandledAlerts int64    `json:"handled_alerts"`
	AvgNoiseLevel *float64 `json:"avg_noise_level"`
	MaxNoiseLevel *float64 `json:"max_noise_level"`
}
