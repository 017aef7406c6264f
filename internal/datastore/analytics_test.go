// analytics_test.go: Tests for the aggregation queries
package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReadings(t *testing.T, ds *DataStore, pointID uint, levels []float64, at time.Time) {
	t.Helper()
	for i, level := range levels {
		reading := NoiseReading{
			PointID:         pointID,
			NoiseLevel:      level,
			MeasurementTime: at.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, ds.SaveReading(&reading))
	}
}

func TestPointStatistics(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)
	pointA := seedPoint(t, ds, "A", 55, 45)
	pointB := seedPoint(t, ds, "B", 55, 45)

	at := time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)
	seedReadings(t, ds, pointA.ID, []float64{40, 50, 60}, at)
	seedReadings(t, ds, pointB.ID, []float64{70}, at)

	stats, err := ds.PointStatistics(&ReadingFilters{})
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byPoint := map[uint]PointStats{}
	for _, s := range stats {
		byPoint[s.PointID] = s
	}

	a := byPoint[pointA.ID]
	assert.Equal(t, int64(3), a.TotalCount)
	assert.InDelta(t, 50.0, a.AvgLevel, 0.001)
	assert.Equal(t, 40.0, a.MinLevel)
	assert.Equal(t, 60.0, a.MaxLevel)

	b := byPoint[pointB.ID]
	assert.Equal(t, int64(1), b.TotalCount)
	assert.Equal(t, 70.0, b.MaxLevel)
}

func TestTrendAnalysisDayBuckets(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)
	point := seedPoint(t, ds, "A", 55, 45)

	seedReadings(t, ds, point.ID, []float64{40, 60}, time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local))
	seedReadings(t, ds, point.ID, []float64{50}, time.Date(2026, 3, 11, 9, 0, 0, 0, time.Local))

	buckets, err := ds.TrendAnalysis(&ReadingFilters{}, GranularityDay)
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	// ascending bucket order
	assert.Equal(t, "2026-03-10", buckets[0].TimeGroup)
	assert.InDelta(t, 50.0, buckets[0].AvgLevel, 0.001)
	assert.Equal(t, 40.0, buckets[0].MinLevel)
	assert.Equal(t, 60.0, buckets[0].MaxLevel)
	assert.Equal(t, "2026-03-11", buckets[1].TimeGroup)
}

func TestTrendAnalysisHourBuckets(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)
	point := seedPoint(t, ds, "A", 55, 45)

	seedReadings(t, ds, point.ID, []float64{42}, time.Date(2026, 3, 10, 9, 15, 0, 0, time.Local))
	seedReadings(t, ds, point.ID, []float64{48}, time.Date(2026, 3, 10, 10, 45, 0, 0, time.Local))

	buckets, err := ds.TrendAnalysis(&ReadingFilters{}, GranularityHour)
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, "2026-03-10 09:00", buckets[0].TimeGroup)
	assert.Equal(t, "2026-03-10 10:00", buckets[1].TimeGroup)
}

func TestDistributionAnalysisBuckets(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)
	point := seedPoint(t, ds, "A", 55, 45)

	at := time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)
	// 47.3 and 40.0 both belong to the [40,50) bin, 50.0 starts the next bin
	seedReadings(t, ds, point.ID, []float64{47.3, 40.0, 50.0, 82.1}, at)

	bins, err := ds.DistributionAnalysis(&ReadingFilters{})
	require.NoError(t, err)
	require.Len(t, bins, 3)

	assert.Equal(t, 40, bins[0].NoiseRange)
	assert.Equal(t, int64(2), bins[0].Count)
	assert.Equal(t, 50, bins[1].NoiseRange)
	assert.Equal(t, int64(1), bins[1].Count)
	assert.Equal(t, 80, bins[2].NoiseRange)
	assert.Equal(t, int64(1), bins[2].Count)
}

func TestComparisonAnalysisIncludesPointName(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)
	pointA := seedPoint(t, ds, "Plaza", 55, 45)
	pointB := seedPoint(t, ds, "Station", 65, 55)

	at := time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)
	seedReadings(t, ds, pointA.ID, []float64{40, 42}, at)
	seedReadings(t, ds, pointB.ID, []float64{70}, at)

	stats, err := ds.ComparisonAnalysis(&ReadingFilters{})
	require.NoError(t, err)
	require.Len(t, stats, 2)

	names := map[uint]string{}
	for _, s := range stats {
		names[s.PointID] = s.PointName
	}
	assert.Equal(t, "Plaza", names[pointA.ID])
	assert.Equal(t, "Station", names[pointB.ID])
}

func TestAlertStatisticsScopedToToday(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)
	point := seedPoint(t, ds, "Plaza", 55, 45)

	today := Alert{PointID: point.ID, NoiseLevel: 62, ThresholdValue: 55, AlertTime: time.Now()}
	handled := Alert{PointID: point.ID, NoiseLevel: 70, ThresholdValue: 55, AlertTime: time.Now(), Status: AlertStatusHandled}
	yesterday := Alert{PointID: point.ID, NoiseLevel: 90, ThresholdValue: 55, AlertTime: time.Now().Add(-48 * time.Hour)}
	require.NoError(t, ds.SaveAlert(&today))
	require.NoError(t, ds.SaveAlert(&handled))
	require.NoError(t, ds.SaveAlert(&yesterday))

	stats, err := ds.AlertStatistics(&ReadingFilters{})
	require.NoError(t, err)

	// the two-day-old alert is outside the daily scope
	assert.Equal(t, int64(2), stats.TotalAlerts)
	assert.Equal(t, int64(1), stats.PendingAlerts)
	assert.Equal(t, int64(1), stats.HandledAlerts)
	require.NotNil(t, stats.MaxNoiseLevel)
	assert.Equal(t, 70.0, *stats.MaxNoiseLevel)
}

func TestTrendAnalysisHourBucketsKeepWallClock(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)
	point := seedPoint(t, ds, "A", 55, 45)

	// stored with an explicit zone offset, the bucket label must still be
	// the measurement's local wall-clock hour, not the UTC-normalized one
	at := time.Date(2026, 3, 10, 9, 15, 0, 0, time.FixedZone("UTC+8", 8*3600))
	seedReadings(t, ds, point.ID, []float64{42}, at)

	buckets, err := ds.TrendAnalysis(&ReadingFilters{}, GranularityHour)
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, at.In(time.Local).Format("2006-01-02 15:00"), buckets[0].TimeGroup)
}

func TestPointStatisticsDateFilterUsesWallClockDate(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)
	point := seedPoint(t, ds, "A", 55, 45)

	// half past midnight local, a UTC-normalized date() would push this
	// reading onto the previous day in any zone east of UTC
	seedReadings(t, ds, point.ID, []float64{50}, time.Date(2026, 3, 10, 0, 30, 0, 0, time.Local))

	stats, err := ds.PointStatistics(&ReadingFilters{StartDate: "2026-03-10", EndDate: "2026-03-10"})
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(1), stats[0].TotalCount)
}

func TestAlertStatisticsOffsetZoneStillToday(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)
	point := seedPoint(t, ds, "Plaza", 55, 45)

	// the same instant expressed in another zone still counts as today
	at := time.Now().In(time.FixedZone("UTC+12", 12*3600))
	alert := Alert{PointID: point.ID, NoiseLevel: 62, ThresholdValue: 55, AlertTime: at}
	require.NoError(t, ds.SaveAlert(&alert))

	stats, err := ds.AlertStatistics(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalAlerts)
}

func TestAlertStatisticsEmpty(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)

	stats, err := ds.AlertStatistics(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalAlerts)
	assert.Equal(t, int64(0), stats.PendingAlerts)
	assert.Nil(t, stats.AvgNoiseLevel)
}

func TestValidGranularity(t *testing.T) {
	t.Parallel()
	assert.True(t, ValidGranularity(GranularityHour))
	assert.True(t, ValidGranularity(GranularityDay))
	assert.True(t, ValidGranularity(GranularityWeek))
	assert.True(t, ValidGranularity(GranularityMonth))
	assert.False(t, ValidGranularity("decade"))
}
