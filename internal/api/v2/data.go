package api

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/noisewatch/noisewatch-go/internal/datastore"
	"github.com/noisewatch/noisewatch-go/internal/errors"
)

// initDataRoutes registers the ingestion and query endpoints.
func (c *Controller) initDataRoutes() {
	c.Group.POST("/data", c.CreateReading)
	c.Group.GET("/data/realtime", c.RealtimeData)
	c.Group.GET("/data/history", c.HistoryData)
	c.Group.GET("/data/statistics", c.StatisticsData)
	c.Group.GET("/data/analysis", c.AnalysisData)
}

// createReadingRequest is the ingestion payload. Pointer fields distinguish
// absent values from zero, a noise level of 0 dB is valid input.
type createReadingRequest struct {
	PointID         *uint    `json:"point_id"`
	NoiseLevel      *float64 `json:"noise_level"`
	DataType        string   `json:"data_type"`
	MeasurementTime string   `json:"measurement_time"`
}

// CreateReading stores a noise reading and raises an alert on exceedance.
func (c *Controller) CreateReading(ctx echo.Context) error {
	var req createReadingRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "invalid request body", 400)
	}
	if req.PointID == nil || req.NoiseLevel == nil {
		err := errors.ValidationError("point_id and noise_level are required")
		return c.Error(ctx, err, "missing required fields")
	}

	at := time.Now()
	if req.MeasurementTime != "" {
		parsed, err := time.ParseInLocation("2006-01-02 15:04:05", req.MeasurementTime, time.Local)
		if err != nil {
			parsed, err = time.Parse(time.RFC3339, req.MeasurementTime)
		}
		if err != nil {
			valErr := errors.ValidationError("invalid measurement_time format")
			return c.Error(ctx, valErr, "invalid measurement_time")
		}
		at = parsed
	}

	reading, err := c.ingest.Record(*req.PointID, *req.NoiseLevel, req.DataType, at)
	if err != nil {
		return c.Error(ctx, err, "failed to store reading")
	}
	return c.Data(ctx, map[string]any{"id": reading.ID})
}

// RealtimeData returns the readings recorded within the recent lookback window.
func (c *Controller) RealtimeData(ctx echo.Context) error {
	window := time.Duration(c.Settings.Dashboard.RealtimeWindowMin) * time.Minute
	if minutes := queryInt(ctx, "window", 0); minutes > 0 {
		window = time.Duration(minutes) * time.Minute
	}

	readings, err := c.DS.RealtimeReadings(window)
	if err != nil {
		return c.Error(ctx, err, "failed to fetch realtime readings")
	}
	return c.Data(ctx, readings)
}

// HistoryData returns filtered readings, newest first, with pagination.
func (c *Controller) HistoryData(ctx echo.Context) error {
	filters := readingFilters(ctx)
	page, limit := c.pageWindow(ctx)

	readings, err := c.DS.SearchReadings(filters, limit, (page-1)*limit)
	if err != nil {
		return c.Error(ctx, err, "failed to fetch reading history")
	}
	total, err := c.DS.CountReadings(filters)
	if err != nil {
		return c.Error(ctx, err, "failed to count readings")
	}
	return c.Paginated(ctx, readings, page, limit, total)
}

// StatisticsData returns per-point aggregates over matching readings.
func (c *Controller) StatisticsData(ctx echo.Context) error {
	stats, err := c.DS.PointStatistics(readingFilters(ctx))
	if err != nil {
		return c.Error(ctx, err, "failed to compute statistics")
	}
	return c.Data(ctx, stats)
}

// AnalysisData dispatches on analysis_type: trend buckets readings by
// calendar granularity, distribution bins them into 10 dB ranges, and
// comparison (the default) aggregates per point with its display name.
func (c *Controller) AnalysisData(ctx echo.Context) error {
	filters := readingFilters(ctx)

	switch analysisType := ctx.QueryParam("analysis_type"); analysisType {
	case "trend":
		granularity := ctx.QueryParam("time_granularity")
		if granularity == "" {
			granularity = datastore.GranularityDay
		}
		if !datastore.ValidGranularity(granularity) {
			err := errors.ValidationError("time_granularity must be one of hour, day, week, month")
			return c.Error(ctx, err, "invalid time_granularity")
		}
		buckets, err := c.DS.TrendAnalysis(filters, granularity)
		if err != nil {
			return c.Error(ctx, err, "failed to compute trend analysis")
		}
		return c.Data(ctx, buckets)

	case "distribution":
		bins, err := c.DS.DistributionAnalysis(filters)
		if err != nil {
			return c.Error(ctx, err, "failed to compute distribution analysis")
		}
		return c.Data(ctx, bins)

	case "", "comparison":
		stats, err := c.DS.ComparisonAnalysis(filters)
		if err != nil {
			return c.Error(ctx, err, "failed to compute comparison analysis")
		}
		return c.Data(ctx, stats)

	default:
		err := errors.ValidationError("analysis_type must be one of trend, distribution, comparison")
		return c.Error(ctx, err, "invalid analysis_type")
	}
}

// readingFilters extracts the shared point/date query filters. Non-positive
// point_id values mean "no filter" rather than wrapping to a huge id.
func readingFilters(ctx echo.Context) *datastore.ReadingFilters {
	pointID := queryInt(ctx, "point_id", 0)
	if pointID < 0 {
		pointID = 0
	}
	return &datastore.ReadingFilters{
		PointID:   uint(pointID),
		StartDate: ctx.QueryParam("start_date"),
		EndDate:   ctx.QueryParam("end_date"),
	}
}

// pageWindow parses page and limit, falling back to the configured default
// and clamping the limit to the configured maximum. Non-numeric or
// non-positive values fall back rather than fail.
func (c *Controller) pageWindow(ctx echo.Context) (page, limit int) {
	page = queryInt(ctx, "page", 1)
	if page < 1 {
		page = 1
	}
	limit = queryInt(ctx, "limit", c.Settings.Dashboard.DefaultLimit)
	if limit < 1 {
		limit = c.Settings.Dashboard.DefaultLimit
	}
	if maxLimit := c.Settings.Dashboard.MaxLimit; maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// queryInt parses an integer query parameter, returning fallback when the
// parameter is absent or not numeric.
func queryInt(ctx echo.Context, name string, fallback int) int {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
