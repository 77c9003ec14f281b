package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type Server struct {
	echo *echo.Echo
	port string

	webhookHandler http.Handler
	registry       *prometheus.Registry
	httpMetrics    *HTTPMetrics

	healthChecks []HealthCheck
	clock        clockwork.Clock
	startTime    time.Time
}

// NewServer wires the EventSub webhook, metrics and health routes. A nil
// registry disables /metrics and request metrics.
func NewServer(port string, webhookHandler http.Handler, registry *prometheus.Registry, healthChecks []HealthCheck, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:           e,
		port:           port,
		webhookHandler: webhookHandler,
		registry:       registry,
		healthChecks:   healthChecks,
		clock:          clock,
		startTime:      clock.Now(),
	}
	if registry != nil {
		srv.httpMetrics = NewHTTPMetrics(registry)
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.port)
	if err := s.echo.Start(":" + s.port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP exposes the router for tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
