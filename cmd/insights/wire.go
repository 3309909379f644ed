// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package main

import (
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/aggregate"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/cache"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/config"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/insights"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/metrics"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/ratelimit"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/server"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/transport"
	inserr "github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/errors"
)

// App holds the client-side subsystems shared by all commands.
type App struct {
	Client  *insights.Client
	Service *aggregate.Service
	Metrics *metrics.Metrics
}

// wireApp builds the upstream client stack from config. blocking selects
// whether endpoint calls wait for a rate limit slot (one-shot commands) or
// fail fast with a throttled error (the gateway, which maps throttling to
// a 429 response).
func wireApp(cfg *config.Config, blocking bool) (*App, error) {
	// 1. HTTP transport to the upstream API.
	tr, err := transport.New(transport.Config{
		BaseURL:   cfg.Upstream.BaseURL,
		Timeout:   cfg.Upstream.Timeout,
		UserAgent: cfg.Upstream.UserAgent,
		APIKey:    cfg.Upstream.APIKey,
	})
	if err != nil {
		return nil, inserr.Wrap(err, inserr.CodeCLISetupFailure, "creating transport")
	}

	// 2. Response cache. A nil cache disables caching entirely.
	var store *cache.Cache
	if cfg.Cache.Enabled {
		store, err = cache.New(cfg.Cache.MaxEntries)
		if err != nil {
			return nil, inserr.Wrap(err, inserr.CodeCLISetupFailure, "creating cache")
		}
	}

	// 3. Outbound token bucket.
	limiter, err := ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSecond)
	if err != nil {
		return nil, inserr.Wrap(err, inserr.CodeCLISetupFailure, "creating rate limiter")
	}

	// 4. Metrics bundle with its own registry.
	m := metrics.New()

	// 5. Typed endpoint client.
	client, err := insights.New(insights.Options{
		Transport:    tr,
		Cache:        store,
		Limiter:      limiter,
		Metrics:      m,
		TTLOverrides: cfg.Cache.TTLOverrides,
		Blocking:     blocking,
	})
	if err != nil {
		return nil, inserr.Wrap(err, inserr.CodeCLISetupFailure, "creating insights client")
	}

	// 6. Aggregation service for the composite reports.
	runner, err := aggregate.New(aggregate.Options{
		Timeout: cfg.Aggregate.Timeout,
		Metrics: m,
	})
	if err != nil {
		return nil, inserr.Wrap(err, inserr.CodeCLISetupFailure, "creating aggregate runner")
	}
	svc, err := aggregate.NewService(client, runner)
	if err != nil {
		return nil, inserr.Wrap(err, inserr.CodeCLISetupFailure, "creating aggregation service")
	}

	return &App{
		Client:  client,
		Service: svc,
		Metrics: m,
	}, nil
}

// wireServer builds the HTTP gateway on top of an already wired App.
func wireServer(cfg *config.Config, app *App) (*server.Server, error) {
	srv, err := server.New(server.Config{
		ListenAddr:      cfg.Server.Listen,
		CORSOrigins:     cfg.Server.CORSOrigins,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RateLimit: server.RateLimitConfig{
			RequestsPerSecond: cfg.Server.RateLimitRPS,
			Burst:             cfg.Server.RateLimitBurst,
		},
		MetricsPath:    cfg.Metrics.Path,
		DisableMetrics: !cfg.Metrics.Enabled,
	}, server.Deps{
		Client:  app.Client,
		Service: app.Service,
		Metrics: app.Metrics,
	})
	if err != nil {
		return nil, inserr.Wrap(err, inserr.CodeCLISetupFailure, "creating server")
	}
	return srv, nil
}
