// Package threshold evaluates noise readings against a monitoring point's
// day and night limits.
package threshold

import (
	"time"

	"github.com/noisewatch/noisewatch-go/internal/datastore"
)

// Daytime spans 06:00 inclusive to 22:00 exclusive in local time. Readings
// outside that window are held to the stricter night threshold.
const (
	DayStartHour = 6
	DayEndHour   = 22
)

// Result reports the outcome of a threshold evaluation.
type Result struct {
	Threshold float64 // the effective day or night threshold applied
	Exceeded  bool    // true when the level is strictly above the threshold
}

// IsDaytime reports whether the given local time falls in the day window.
func IsDaytime(at time.Time) bool {
	hour := at.Hour()
	return hour >= DayStartHour && hour < DayEndHour
}

// Evaluate resolves the effective threshold for the reading time and compares
// the noise level against it. A reading exactly at the threshold is not an
// exceedance.
func Evaluate(point *datastore.MonitoringPoint, at time.Time, noiseLevel float64) Result {
	effective := point.ThresholdNight
	if IsDaytime(at) {
		effective = point.ThresholdDay
	}

	return Result{
		Threshold: effective,
		Exceeded:  noiseLevel > effective,
	}
}
