package api

import (
	"github.com/labstack/echo/v4"

	"github.com/noisewatch/noisewatch-go/internal/errors"
)

// initAlertRoutes registers the alert lifecycle endpoints. All of them
// require an authenticated session.
func (c *Controller) initAlertRoutes() {
	group := c.Group.Group("/alerts", c.sessions.RequireAuth)
	group.GET("", c.ListAlerts)
	group.GET("/statistics", c.AlertStatistics)
	group.GET("/:id", c.GetAlert)
	group.PUT("/:id/handle", c.HandleAlert)
}

// ListAlerts returns alerts joined with point and handler names, newest
// first, optionally filtered by status.
func (c *Controller) ListAlerts(ctx echo.Context) error {
	status := ctx.QueryParam("status")
	page, limit := c.pageWindow(ctx)

	alerts, err := c.DS.SearchAlerts(status, limit, (page-1)*limit)
	if err != nil {
		return c.Error(ctx, err, "failed to fetch alerts")
	}
	total, err := c.DS.CountAlerts(status)
	if err != nil {
		return c.Error(ctx, err, "failed to count alerts")
	}
	return c.Paginated(ctx, alerts, page, limit, total)
}

// AlertStatistics returns the aggregate alert counters, scoped to the
// current day unless date filters narrow it further. Results are cached
// briefly since the dashboard polls this endpoint.
func (c *Controller) AlertStatistics(ctx echo.Context) error {
	filters := readingFilters(ctx)

	cacheKey := "alert-stats:" + ctx.QueryString()
	if cached, found := c.statsCache.Get(cacheKey); found {
		return c.Data(ctx, cached)
	}

	stats, err := c.DS.AlertStatistics(filters)
	if err != nil {
		return c.Error(ctx, err, "failed to compute alert statistics")
	}
	c.statsCache.SetDefault(cacheKey, stats)
	return c.Data(ctx, stats)
}

// GetAlert returns a single alert with its point and handler context.
func (c *Controller) GetAlert(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return c.Error(ctx, err, "invalid alert id")
	}

	alert, err := c.DS.GetAlert(id)
	if err != nil {
		return c.Error(ctx, err, "failed to fetch alert")
	}
	return c.Data(ctx, alert)
}

// HandleAlert marks an alert as handled by the session user. Re-handling
// an already handled alert overwrites the previous handler.
func (c *Controller) HandleAlert(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return c.Error(ctx, err, "invalid alert id")
	}

	user, ok := currentUser(ctx)
	if !ok {
		authErr := errors.Newf("no session user").
			Component("api").
			Category(errors.CategoryAuth).
			Build()
		return c.Error(ctx, authErr, "authentication required")
	}

	if err := c.DS.HandleAlert(id, user.ID); err != nil {
		return c.Error(ctx, err, "failed to handle alert")
	}
	if c.metrics != nil {
		c.metrics.Ingest.IncrementAlertsHandled()
	}
	c.apiLogger.Info("alert handled", "alert_id", id, "user_id", user.ID, "username", user.Username)
	return c.Data(ctx, map[string]any{"id": id, "status": "handled"})
}
