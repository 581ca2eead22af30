// Package api exposes the proxy's HTTP surface: a single-source listing
// endpoint, a multi-source aggregation endpoint and a liveness probe.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/bakkerme/reddit-proxy/internal/aggregator"
	"github.com/bakkerme/reddit-proxy/internal/config"
)

type Server struct {
	aggregator *aggregator.Aggregator
	defaults   config.DefaultsConfig
	logger     *slog.Logger
	echo       *echo.Echo
}

func NewServer(logger *slog.Logger, agg *aggregator.Aggregator, defaults config.DefaultsConfig) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	server := &Server{
		aggregator: agg,
		defaults:   defaults,
		logger:     logger,
		echo:       e,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	// The proxy exists partly to sidestep browser CORS restrictions, so the
	// API itself is wide open.
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType},
	}))

	s.echo.GET("/health", s.handleHealth)

	api := s.echo.Group("/api")
	api.POST("/source/multiple", s.handleMultipleSources)
	api.GET("/source/:source", s.handleSingleSource)
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler returns the underlying handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
