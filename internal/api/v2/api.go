// Package api implements the HTTP API for the NoiseWatch dashboard.
package api

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"

	"github.com/noisewatch/noisewatch-go/internal/conf"
	"github.com/noisewatch/noisewatch-go/internal/datastore"
	"github.com/noisewatch/noisewatch-go/internal/errors"
	"github.com/noisewatch/noisewatch-go/internal/ingest"
	"github.com/noisewatch/noisewatch-go/internal/logging"
	"github.com/noisewatch/noisewatch-go/internal/observability"
	"github.com/noisewatch/noisewatch-go/internal/security"
)

// Controller manages the API routes and handlers.
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	DS       datastore.Interface
	Settings *conf.Settings

	ingest     *ingest.Service
	sessions   *security.SessionManager
	statsCache *cache.Cache
	apiLogger  *slog.Logger
	metrics    *observability.Metrics
	startTime  time.Time
}

// New creates a new API controller and registers all routes under /api/v2.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings,
	ingestService *ingest.Service, sessions *security.SessionManager,
	metrics *observability.Metrics) *Controller {

	ttl := time.Duration(settings.Dashboard.StatsCacheTTL) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	c := &Controller{
		Echo:       e,
		DS:         ds,
		Settings:   settings,
		ingest:     ingestService,
		sessions:   sessions,
		statsCache: cache.New(ttl, 2*ttl),
		apiLogger:  logging.ForService("api"),
		metrics:    metrics,
		startTime:  time.Now(),
	}

	c.Group = e.Group("/api/v2")
	if metrics != nil {
		c.Group.Use(c.metricsMiddleware)
	}
	c.initRoutes()
	return c
}

// initRoutes registers all API endpoints.
func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.HealthCheck)

	routeInitializers := []struct {
		name string
		fn   func()
	}{
		{"data routes", c.initDataRoutes},
		{"alert routes", c.initAlertRoutes},
		{"point routes", c.initPointRoutes},
		{"auth routes", c.initAuthRoutes},
		{"user routes", c.initUserRoutes},
	}

	for _, initializer := range routeInitializers {
		initializer.fn()
		c.apiLogger.Debug("initialized " + initializer.name)
	}

	if c.metrics != nil {
		c.Echo.GET("/metrics", echo.WrapHandler(c.metrics.Handler()))
	}
}

// HealthCheck reports service and database status.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	response := map[string]any{
		"status":     "healthy",
		"version":    c.Settings.Version,
		"build_date": c.Settings.BuildDate,
		"timestamp":  time.Now().Format(time.RFC3339),
		"uptime":     time.Since(c.startTime).String(),
	}

	dbStatus := "connected"
	if _, err := c.DS.CountUsers(); err != nil {
		dbStatus = "disconnected"
		response["status"] = "degraded"
		if c.Settings.WebServer.Debug {
			response["database_error"] = err.Error()
		}
	}
	response["database_status"] = dbStatus

	return ctx.JSON(http.StatusOK, response)
}

// ErrorResponse is the envelope returned for all failed requests.
type ErrorResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// generateCorrelationID creates a short random identifier for error tracking.
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// statusForError maps an error's category to an HTTP status code.
func statusForError(err error) int {
	switch {
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.IsCategory(err, errors.CategoryAuth):
		return http.StatusUnauthorized
	case errors.IsCategory(err, errors.CategoryForbidden):
		return http.StatusForbidden
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsCategory(err, errors.CategoryConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HandleError logs the error and returns the error envelope with the given
// message and status code. Internal details are only exposed in debug mode.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	resp := &ErrorResponse{
		Success:       false,
		Message:       message,
		Code:          code,
		CorrelationID: generateCorrelationID(),
	}
	if err != nil && code < http.StatusInternalServerError {
		resp.Message = err.Error()
	}
	if err != nil && code >= http.StatusInternalServerError && c.Settings.WebServer.Debug {
		resp.Message = err.Error()
	}

	var errorStr string
	if err != nil {
		errorStr = err.Error()
	} else {
		errorStr = message
	}
	c.apiLogger.Error("API error",
		"correlation_id", resp.CorrelationID,
		"message", message,
		"error", errorStr,
		"code", code,
		"path", ctx.Request().URL.Path,
		"method", ctx.Request().Method,
		"ip", ctx.RealIP(),
	)

	return ctx.JSON(code, resp)
}

// Error maps a service error to its HTTP status and returns the envelope.
func (c *Controller) Error(ctx echo.Context, err error, message string) error {
	return c.HandleError(ctx, err, message, statusForError(err))
}

// Data wraps a successful response payload in the standard envelope.
func (c *Controller) Data(ctx echo.Context, data any) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

// Pagination describes the page window of a paginated listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"total_count"`
}

// Paginated wraps a page of rows together with its pagination window.
func (c *Controller) Paginated(ctx echo.Context, data any, page, limit int, total int64) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"data":       data,
		"pagination": Pagination{Page: page, Limit: limit, TotalCount: total},
	})
}

// pathID parses the numeric :id path parameter.
func pathID(ctx echo.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.ValidationError("invalid id")
	}
	return uint(id), nil
}

// currentUser returns the session identity set by the auth middleware.
func currentUser(ctx echo.Context) (*security.SessionUser, bool) {
	user, ok := ctx.Get("user").(*security.SessionUser)
	return user, ok
}
