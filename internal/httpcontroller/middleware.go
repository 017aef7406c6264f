package httpcontroller

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// configureMiddleware sets up middleware for the server.
func (s *Server) configureMiddleware() {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(s.LoggingMiddleware())
	s.Echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 6,
		Skipper: func(c echo.Context) bool {
			// Compressing the metrics scrape confuses some collectors.
			return c.Path() == "/metrics"
		},
	}))
	if s.Settings.Security.RedirectToHTTPS {
		s.Echo.Use(middleware.HTTPSRedirect())
	}
}
