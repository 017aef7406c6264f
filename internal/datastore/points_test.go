// points_test.go: Tests for monitoring point CRUD
package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noisewatch/noisewatch-go/internal/errors"
)

func TestSavePointDefaults(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)

	point := MonitoringPoint{Name: "Plaza", Location: "Main square", Latitude: 30.66, Longitude: 104.06}
	require.NoError(t, ds.SavePoint(&point))

	stored, err := ds.GetPoint(point.ID)
	require.NoError(t, err)
	assert.Equal(t, PointStatusActive, stored.Status)
	assert.Equal(t, 55.0, stored.ThresholdDay)
	assert.Equal(t, 45.0, stored.ThresholdNight)
}

func TestUpdatePoint(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)
	point := seedPoint(t, ds, "Plaza", 55, 45)

	point.Name = "Plaza East"
	point.ThresholdDay = 60
	point.Status = PointStatusInactive
	require.NoError(t, ds.UpdatePoint(&point))

	stored, err := ds.GetPoint(point.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plaza East", stored.Name)
	assert.Equal(t, 60.0, stored.ThresholdDay)
	assert.Equal(t, PointStatusInactive, stored.Status)
}

func TestUpdatePointIdenticalValues(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)
	point := seedPoint(t, ds, "Plaza", 55, 45)

	// a retried PUT that rewrites the stored values is still a success,
	// even on backends that report rows changed instead of rows matched
	require.NoError(t, ds.UpdatePoint(&point))

	stored, err := ds.GetPoint(point.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plaza", stored.Name)
	assert.Equal(t, 55.0, stored.ThresholdDay)
}

func TestUpdatePointNotFound(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)

	missing := MonitoringPoint{ID: 999, Name: "Ghost"}
	err := ds.UpdatePoint(&missing)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestDeletePointCascades(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)
	point := seedPoint(t, ds, "Plaza", 55, 45)
	other := seedPoint(t, ds, "Station", 65, 55)

	reading := NoiseReading{PointID: point.ID, NoiseLevel: 62, MeasurementTime: time.Now()}
	require.NoError(t, ds.SaveReading(&reading))
	alert := Alert{PointID: point.ID, NoiseLevel: 62, ThresholdValue: 55}
	require.NoError(t, ds.SaveAlert(&alert))

	keptReading := NoiseReading{PointID: other.ID, NoiseLevel: 50, MeasurementTime: time.Now()}
	require.NoError(t, ds.SaveReading(&keptReading))

	require.NoError(t, ds.DeletePoint(point.ID))

	_, err := ds.GetPoint(point.ID)
	assert.True(t, errors.IsNotFound(err))

	var readingCount, alertCount int64
	require.NoError(t, ds.DB.Model(&NoiseReading{}).Count(&readingCount).Error)
	require.NoError(t, ds.DB.Model(&Alert{}).Count(&alertCount).Error)
	assert.Equal(t, int64(1), readingCount, "other point's readings survive")
	assert.Equal(t, int64(0), alertCount)
}

func TestDeletePointNotFound(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)

	err := ds.DeletePoint(404)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
