package api

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// metricsMiddleware records request counts and latencies per route.
func (c *Controller) metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		err := next(ctx)

		status := ctx.Response().Status
		if err != nil {
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
			}
		}

		// Use the route pattern, not the raw URL, to bound label cardinality.
		c.metrics.HTTP.RecordHTTPRequest(
			ctx.Request().Method,
			ctx.Path(),
			strconv.Itoa(status),
			time.Since(start).Seconds(),
		)
		return err
	}
}
