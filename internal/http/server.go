// Package http exposes the conversion pipeline over a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/KazuakiWatanabe/agentic-bizflow/internal/logging"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/orchestrator"
)

// Converter turns process text into a validated business definition.
// Satisfied by *orchestrator.Orchestrator.
type Converter interface {
	Convert(ctx context.Context, input string) (*orchestrator.Result, error)
}

// Server provides the HTTP endpoints for bizflowd.
type Server struct {
	echo      *echo.Echo
	converter Converter
	logger    *logging.Logger
	metrics   *HTTPMetrics
	config    *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
}

// requestIDPattern matches ids safe to attach as log correlation
// fields. Inbound X-Request-ID headers are untrusted, so anything
// else is still logged verbatim but not propagated into the context.
var requestIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,128}$`)

// NewServer creates a new HTTP server around a converter.
func NewServer(converter Converter, logger *logging.Logger, cfg *Config) (*Server, error) {
	if converter == nil {
		return nil, fmt.Errorf("converter cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8080,
		}
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	metrics := NewHTTPMetrics(logger)

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.AllowOrigins,
		AllowCredentials: true,
		// The wildcard default still has to work for credentialed
		// browser requests, so reflect the caller's origin.
		UnsafeWildcardOriginWithAllowCredentials: true,
	}))
	e.Use(metrics.MetricsMiddleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			if requestIDPattern.MatchString(requestID) {
				ctx := logging.WithRequestID(c.Request().Context(), requestID)
				c.SetRequest(c.Request().WithContext(ctx))
			}

			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", requestID),
			)

			return err
		}
	})

	s := &Server{
		echo:      e,
		converter: converter,
		logger:    logger,
		metrics:   metrics,
		config:    cfg,
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	// Health check
	s.echo.GET("/health", s.handleHealth)

	// Conversion API
	api := s.echo.Group("/api")
	api.POST("/convert", s.handleConvert)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleConvert converts free-form process text into a business
// definition. Unknown body fields are rejected so typos in field
// names fail loudly instead of being silently dropped.
func (s *Server) handleConvert(c echo.Context) error {
	var req ConvertRequest
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.logger.Warn("invalid convert request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if dec.More() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}

	ctx := c.Request().Context()
	result, err := s.converter.Convert(ctx, text)
	if err != nil {
		var validationErr *orchestrator.ValidationError
		if errors.As(err, &validationErr) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "validation failed")
		}
		s.logger.ErrorContext(ctx, "conversion failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	// Only the syntactic presence of a Bearer token is recorded;
	// verification is a deployment concern.
	if bearerTokenPresent(c.Request().Header.Get(echo.HeaderAuthorization)) {
		result.Meta.TokenPresent = true
	}

	return c.JSON(http.StatusOK, ConvertResponse{
		Definition: result.Definition,
		AgentLogs:  result.AgentLogs,
		Meta:       result.Meta,
	})
}

// bearerTokenPresent reports whether the Authorization header carries
// a non-empty token under a case-insensitive Bearer scheme.
func bearerTokenPresent(header string) bool {
	normalized := strings.TrimSpace(header)
	const scheme = "bearer "
	if len(normalized) < len(scheme) || !strings.EqualFold(normalized[:len(scheme)], scheme) {
		return false
	}
	return strings.TrimSpace(normalized[len(scheme):]) != ""
}

// Echo exposes the underlying router so the daemon can attach extra
// endpoints such as /metrics.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
