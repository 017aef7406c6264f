package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noisewatch/noisewatch-go/internal/datastore"
	"github.com/noisewatch/noisewatch-go/internal/errors"
)

func setupService(t *testing.T) (*Service, *datastore.DataStore) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&datastore.User{}, &datastore.MonitoringPoint{},
		&datastore.NoiseReading{}, &datastore.Alert{})
	require.NoError(t, err)

	ds := &datastore.DataStore{DB: db}
	return NewService(ds, nil), ds
}

func seedPoint(t *testing.T, ds *datastore.DataStore, day, night float64) datastore.MonitoringPoint {
	t.Helper()

	point := datastore.MonitoringPoint{
		Name:           "Central Plaza",
		Location:       "Main street 1",
		Latitude:       30.66,
		Longitude:      104.06,
		Status:         datastore.PointStatusActive,
		ThresholdDay:   day,
		ThresholdNight: night,
	}
	require.NoError(t, ds.DB.Create(&point).Error)
	return point
}

func countAlerts(t *testing.T, ds *datastore.DataStore) int64 {
	t.Helper()

	var n int64
	require.NoError(t, ds.DB.Model(&datastore.Alert{}).Count(&n).Error)
	return n
}

func TestRecordStoresReading(t *testing.T) {
	t.Parallel()
	svc, ds := setupService(t)
	point := seedPoint(t, ds, 55, 45)

	at := time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)
	reading, err := svc.Record(point.ID, 48.5, "realtime", at)
	require.NoError(t, err)
	assert.NotZero(t, reading.ID)
	assert.Equal(t, point.ID, reading.PointID)
	assert.InDelta(t, 48.5, reading.NoiseLevel, 0.001)
	assert.Equal(t, int64(0), countAlerts(t, ds), "reading below threshold should not alert")
}

func TestRecordRequiresPoint(t *testing.T) {
	t.Parallel()
	svc, _ := setupService(t)

	_, err := svc.Record(0, 50, "realtime", time.Now())
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestRecordCreatesAlertOnExceedance(t *testing.T) {
	t.Parallel()
	svc, ds := setupService(t)
	point := seedPoint(t, ds, 55, 45)

	at := time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)
	_, err := svc.Record(point.ID, 60, "realtime", at)
	require.NoError(t, err)

	var alert datastore.Alert
	require.NoError(t, ds.DB.First(&alert).Error)
	assert.Equal(t, point.ID, alert.PointID)
	assert.InDelta(t, 60.0, alert.NoiseLevel, 0.001)
	assert.InDelta(t, 55.0, alert.ThresholdValue, 0.001)
	assert.Equal(t, datastore.AlertStatusPending, alert.Status)
	assert.True(t, alert.AlertTime.Equal(at))
}

func TestRecordUsesNightThresholdAfterHours(t *testing.T) {
	t.Parallel()
	svc, ds := setupService(t)
	point := seedPoint(t, ds, 55, 45)

	at := time.Date(2026, 3, 10, 23, 0, 0, 0, time.Local)
	_, err := svc.Record(point.ID, 50, "realtime", at)
	require.NoError(t, err)

	var alert datastore.Alert
	require.NoError(t, ds.DB.First(&alert).Error)
	assert.InDelta(t, 45.0, alert.ThresholdValue, 0.001)
}

func TestRecordAtThresholdDoesNotAlert(t *testing.T) {
	t.Parallel()
	svc, ds := setupService(t)
	point := seedPoint(t, ds, 55, 45)

	at := time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)
	_, err := svc.Record(point.ID, 55, "realtime", at)
	require.NoError(t, err)
	assert.Equal(t, int64(0), countAlerts(t, ds))
}

func TestRecordUnknownPointKeepsReading(t *testing.T) {
	t.Parallel()
	svc, ds := setupService(t)

	reading, err := svc.Record(999, 90, "realtime", time.Now())
	require.NoError(t, err)
	assert.NotZero(t, reading.ID)

	var stored int64
	require.NoError(t, ds.DB.Model(&datastore.NoiseReading{}).Count(&stored).Error)
	assert.Equal(t, int64(1), stored)
	assert.Equal(t, int64(0), countAlerts(t, ds))
}

func TestRecordDefaultsDataTypeAndTime(t *testing.T) {
	t.Parallel()
	svc, ds := setupService(t)
	point := seedPoint(t, ds, 55, 45)

	before := time.Now()
	reading, err := svc.Record(point.ID, 40, "", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "realtime", reading.DataType)
	assert.False(t, reading.MeasurementTime.Before(before))

	var stored datastore.NoiseReading
	require.NoError(t, ds.DB.First(&stored, reading.ID).Error)
	assert.Equal(t, "realtime", stored.DataType)
}
