// Package httpcontroller assembles the echo server hosting the dashboard API.
package httpcontroller

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	api "github.com/noisewatch/noisewatch-go/internal/api/v2"
	"github.com/noisewatch/noisewatch-go/internal/conf"
	"github.com/noisewatch/noisewatch-go/internal/datastore"
	"github.com/noisewatch/noisewatch-go/internal/ingest"
	"github.com/noisewatch/noisewatch-go/internal/logging"
	"github.com/noisewatch/noisewatch-go/internal/observability"
	"github.com/noisewatch/noisewatch-go/internal/security"
)

// Server encapsulates the echo server and its wiring.
type Server struct {
	Echo     *echo.Echo
	DS       datastore.Interface
	Settings *conf.Settings
	Sessions *security.SessionManager
	Ingest   *ingest.Service
	Metrics  *observability.Metrics
	APIV2    *api.Controller

	webLogger      *slog.Logger
	webLoggerClose func() error
}

// New initializes the HTTP server with the given settings and datastore.
func New(settings *conf.Settings, dataStore datastore.Interface, metrics *observability.Metrics) *Server {
	s := &Server{
		Echo:     echo.New(),
		DS:       dataStore,
		Settings: settings,
		Sessions: security.NewSessionManager(settings),
		Metrics:  metrics,
	}

	if metrics != nil {
		s.Ingest = ingest.NewService(dataStore, metrics.Ingest)
	} else {
		s.Ingest = ingest.NewService(dataStore, nil)
	}

	s.Echo.IPExtractor = echo.ExtractIPFromXFFHeader()
	s.initializeServer()
	return s
}

// Start begins listening on the configured port. Server errors other
// than a clean close are fatal.
func (s *Server) Start() {
	errChan := make(chan error)

	go func() {
		if err := s.Echo.Start(":" + s.Settings.WebServer.Port); err != nil {
			errChan <- err
		}
	}()

	go handleServerError(errChan)

	fmt.Printf("HTTP server started on port %s\n", s.Settings.WebServer.Port)
}

// Shutdown closes the server and the web log file.
func (s *Server) Shutdown() error {
	if s.webLoggerClose != nil {
		if err := s.webLoggerClose(); err != nil {
			log.Printf("Error closing web log file: %v", err)
		}
	}
	return s.Echo.Close()
}

// initializeServer wires middleware, loggers and the API controller.
func (s *Server) initializeServer() {
	s.Echo.HideBanner = true
	s.initLogger()
	s.configureMiddleware()

	s.APIV2 = api.New(s.Echo, s.DS, s.Settings, s.Ingest, s.Sessions, s.Metrics)
}

// initLogger sets up the structured request log file.
func (s *Server) initLogger() {
	if !s.Settings.Main.Log.Enabled {
		return
	}

	logPath := s.Settings.Main.Log.Path
	if logPath == "" {
		logPath = "logs/web.log"
	}
	webLogger, closeFunc, err := logging.NewFileLogger(logPath, "web", slog.LevelInfo)
	if err != nil {
		log.Printf("Warning: failed to initialize web structured logger: %v", err)
		return
	}
	s.webLogger = webLogger
	s.webLoggerClose = closeFunc

	// Rely on the logging middleware, drop echo's own output.
	s.Echo.Logger.SetOutput(io.Discard)
	s.Echo.Logger.SetLevel(99)
}

// LoggingMiddleware logs completed requests with timing information.
func (s *Server) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if s.webLogger == nil {
				return next(ctx)
			}

			start := time.Now()
			err := next(ctx)

			req := ctx.Request()
			res := ctx.Response()
			attrs := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"query", req.URL.RawQuery,
				"status", res.Status,
				"ip", ctx.RealIP(),
				"user_agent", req.UserAgent(),
				"latency_ms", time.Since(start).Milliseconds(),
				"bytes_out", res.Size,
			}

			switch {
			case err != nil:
				attrs = append(attrs, "error", err.Error())
				s.webLogger.Error("HTTP Request", attrs...)
			case res.Status >= 400:
				s.webLogger.Warn("HTTP Request", attrs...)
			default:
				s.webLogger.Info("HTTP Request", attrs...)
			}
			return err
		}
	}
}

// handleServerError terminates the process on unrecoverable server errors.
func handleServerError(errChan chan error) {
	for err := range errChan {
		log.Fatalf("HTTP server error: %v", err)
	}
}
