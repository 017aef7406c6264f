package api

import (
	"github.com/labstack/echo/v4"

	"github.com/noisewatch/noisewatch-go/internal/datastore"
	"github.com/noisewatch/noisewatch-go/internal/errors"
)

// initPointRoutes registers monitoring point CRUD. Reads are open so
// ingestion clients and the public dashboard can resolve points; writes
// require a session.
func (c *Controller) initPointRoutes() {
	c.Group.GET("/points", c.ListPoints)
	c.Group.GET("/points/:id", c.GetPoint)

	c.Group.POST("/points", c.CreatePoint, c.sessions.RequireAuth)
	c.Group.PUT("/points/:id", c.UpdatePoint, c.sessions.RequireAuth)
	c.Group.DELETE("/points/:id", c.DeletePoint, c.sessions.RequireAuth)
}

// pointRequest is the create/update payload. Threshold pointers
// distinguish "not provided" from an explicit zero.
type pointRequest struct {
	Name           string   `json:"name"`
	Location       string   `json:"location"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	Status         string   `json:"status"`
	ThresholdDay   *float64 `json:"threshold_day"`
	ThresholdNight *float64 `json:"threshold_night"`
}

// validate checks required fields and value ranges.
func (r *pointRequest) validate() error {
	switch {
	case r.Name == "":
		return errors.ValidationError("name is required")
	case r.Location == "":
		return errors.ValidationError("location is required")
	case r.Latitude == nil || r.Longitude == nil:
		return errors.ValidationError("latitude and longitude are required")
	case *r.Latitude < -90 || *r.Latitude > 90:
		return errors.ValidationError("latitude must be between -90 and 90")
	case *r.Longitude < -180 || *r.Longitude > 180:
		return errors.ValidationError("longitude must be between -180 and 180")
	}
	if r.Status != "" && r.Status != datastore.PointStatusActive && r.Status != datastore.PointStatusInactive {
		return errors.ValidationError("status must be active or inactive")
	}
	if r.ThresholdDay != nil && r.ThresholdNight != nil && *r.ThresholdNight > *r.ThresholdDay {
		return errors.ValidationError("threshold_night must not exceed threshold_day")
	}
	return nil
}

// apply copies the request onto a point record, filling threshold defaults.
func (r *pointRequest) apply(point *datastore.MonitoringPoint) {
	point.Name = r.Name
	point.Location = r.Location
	point.Latitude = *r.Latitude
	point.Longitude = *r.Longitude
	if r.Status != "" {
		point.Status = r.Status
	}
	if r.ThresholdDay != nil {
		point.ThresholdDay = *r.ThresholdDay
	}
	if r.ThresholdNight != nil {
		point.ThresholdNight = *r.ThresholdNight
	}
}

// ListPoints returns all monitoring points, newest first.
func (c *Controller) ListPoints(ctx echo.Context) error {
	points, err := c.DS.GetAllPoints()
	if err != nil {
		return c.Error(ctx, err, "failed to fetch monitoring points")
	}
	return c.Data(ctx, points)
}

// GetPoint returns a single monitoring point.
func (c *Controller) GetPoint(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return c.Error(ctx, err, "invalid point id")
	}

	point, err := c.DS.GetPoint(id)
	if err != nil {
		return c.Error(ctx, err, "failed to fetch monitoring point")
	}
	return c.Data(ctx, point)
}

// CreatePoint adds a monitoring point. Thresholds default to 55/45 dB
// when omitted.
func (c *Controller) CreatePoint(ctx echo.Context) error {
	var req pointRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "invalid request body", 400)
	}
	if err := req.validate(); err != nil {
		return c.Error(ctx, err, "invalid point")
	}

	point := datastore.MonitoringPoint{
		Status:         datastore.PointStatusActive,
		ThresholdDay:   55.0,
		ThresholdNight: 45.0,
	}
	req.apply(&point)

	if err := c.DS.SavePoint(&point); err != nil {
		return c.Error(ctx, err, "failed to create monitoring point")
	}
	c.apiLogger.Info("monitoring point created", "point_id", point.ID, "name", point.Name)
	return c.Data(ctx, point)
}

// UpdatePoint replaces a monitoring point's mutable fields.
func (c *Controller) UpdatePoint(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return c.Error(ctx, err, "invalid point id")
	}

	var req pointRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "invalid request body", 400)
	}
	if err := req.validate(); err != nil {
		return c.Error(ctx, err, "invalid point")
	}

	point, err := c.DS.GetPoint(id)
	if err != nil {
		return c.Error(ctx, err, "failed to fetch monitoring point")
	}
	req.apply(&point)

	if err := c.DS.UpdatePoint(&point); err != nil {
		return c.Error(ctx, err, "failed to update monitoring point")
	}
	return c.Data(ctx, point)
}

// DeletePoint removes a monitoring point together with its readings and
// alerts.
func (c *Controller) DeletePoint(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return c.Error(ctx, err, "invalid point id")
	}

	if err := c.DS.DeletePoint(id); err != nil {
		return c.Error(ctx, err, "failed to delete monitoring point")
	}
	c.apiLogger.Info("monitoring point deleted", "point_id", id)
	return c.Data(ctx, map[string]any{"id": id})
}
