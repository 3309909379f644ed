// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

// Package server exposes the aggregation gateway over HTTP: one tool route
// per upstream endpoint, composite report routes, a liveness probe, and the
// Prometheus exposition endpoint. Routes are registered through huma so the
// OpenAPI document doubles as the tool listing.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/aggregate"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/insights"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/metrics"
	inserr "github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/errors"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Config holds HTTP server configuration.
type Config struct {
	ListenAddr   string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// ShutdownTimeout bounds the drain of in-flight requests once the
	// serve context is cancelled.
	ShutdownTimeout time.Duration
	RateLimit       RateLimitConfig

	// MetricsPath is where the Prometheus exposition handler is mounted.
	MetricsPath string
	// DisableMetrics leaves the exposition endpoint unregistered. Request
	// counters are still collected.
	DisableMetrics bool
}

// ApplyDefaults fills in zero-value timeouts and the metrics path.
func (c *Config) ApplyDefaults() {
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 60 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.MetricsPath == "" {
		c.MetricsPath = "/metrics"
	}
}

// Validate checks the configuration. Call ApplyDefaults first.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return inserr.New(inserr.CodeServerConfigInvalid, "listen address is required")
	}
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			return inserr.New(inserr.CodeServerConfigInvalid,
				"wildcard CORS origin is not allowed; list explicit origins")
		}
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		return inserr.Errorf(inserr.CodeServerConfigInvalid,
			"metrics path must start with a slash, got %q", c.MetricsPath)
	}
	return c.RateLimit.Validate()
}

// Deps are the collaborators the route handlers call into.
type Deps struct {
	Client  *insights.Client
	Service *aggregate.Service
	Metrics *metrics.Metrics
}

// Server wraps a chi router with a huma API and an HTTP server.
type Server struct {
	router    chi.Router
	api       huma.API
	cfg       Config
	deps      Deps
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Server with all routes registered. The returned server owns
// a background cleanup goroutine for the per-IP rate limiter; call Close (or
// run Start to completion) to stop it.
func New(cfg Config, deps Deps) (*Server, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Client == nil {
		return nil, inserr.New(inserr.CodeServerConfigInvalid, "insights client is required")
	}
	if deps.Service == nil {
		return nil, inserr.New(inserr.CodeServerConfigInvalid, "aggregation service is required")
	}
	if deps.Metrics == nil {
		return nil, inserr.New(inserr.CodeServerConfigInvalid, "metrics bundle is required")
	}

	done := make(chan struct{})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(countRequests(deps.Metrics))
	r.Use(rateLimitMiddleware(cfg.RateLimit, done))
	r.Use(corsMiddleware(cfg.CORSOrigins))

	humaConfig := huma.DefaultConfig("Braiins Insights Gateway", "0.1.0")
	humaConfig.Info.Description = "Aggregated Bitcoin network and mining statistics from the Braiins Insights API"
	api := humachi.New(r, humaConfig)

	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Liveness check",
		Tags:        []string{"system"},
	}, func(_ context.Context, _ *struct{}) (*healthOutput, error) {
		out := &healthOutput{}
		out.Body.Status = "ok"
		return out, nil
	})

	if !cfg.DisableMetrics {
		r.Method(http.MethodGet, cfg.MetricsPath, deps.Metrics.Handler())
	}

	s := &Server{
		router: r,
		api:    api,
		cfg:    cfg,
		deps:   deps,
		done:   done,
	}
	s.registerToolRoutes()
	s.registerReportRoutes()

	return s, nil
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// API returns the huma API for registering additional operations.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops the server's background goroutines. It does not interrupt a
// running Start; cancel Start's context for that.
func (s *Server) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// Start runs the HTTP server and blocks until the context is cancelled,
// then performs graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	defer func() { _ = s.Close() }()

	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return inserr.Wrap(err, inserr.CodeServerStartFailure, "listening on "+s.cfg.ListenAddr)
	}

	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return inserr.Wrap(err, inserr.CodeServerStartFailure, "shutting down")
	}

	return <-errCh
}

type healthOutput struct {
	Body struct {
		Status string `json:"status" example:"ok" doc:"Liveness status"`
	}
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	// go-chi/cors treats an empty origin list as a wildcard, so skip the
	// middleware entirely when no origins are configured.
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
}
