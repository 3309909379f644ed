// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/aggregate"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/insights"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/metrics"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/ratelimit"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/server"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/transport"
	inserr "github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/errors"
)

func main() {
	spec, err := generateSpec()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	outPath := "api/openapi/spec.json"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, spec, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing spec: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OpenAPI spec written to %s\n", outPath)
}

// generateSpec builds a gateway with all routes registered and extracts the
// OpenAPI spec that huma generates from the Go type annotations. The wired
// client never performs a request; the upstream address is a placeholder.
func generateSpec() ([]byte, error) {
	tr, err := transport.New(transport.Config{
		BaseURL: "http://127.0.0.1:0",
		Timeout: time.Second,
	})
	if err != nil {
		return nil, inserr.Wrap(err, inserr.CodeCLISetupFailure, "creating transport")
	}

	limiter, err := ratelimit.New(1, 1)
	if err != nil {
		return nil, inserr.Wrap(err, inserr.CodeCLISetupFailure, "creating rate limiter")
	}

	m := metrics.New()

	client, err := insights.New(insights.Options{
		Transport: tr,
		Limiter:   limiter,
		Metrics:   m,
	})
	if err != nil {
		return nil, inserr.Wrap(err, inserr.CodeCLISetupFailure, "creating insights client")
	}

	runner, err := aggregate.New(aggregate.Options{Timeout: time.Second, Metrics: m})
	if err != nil {
		return nil, inserr.Wrap(err, inserr.CodeCLISetupFailure, "creating aggregate runner")
	}
	svc, err := aggregate.NewService(client, runner)
	if err != nil {
		return nil, inserr.Wrap(err, inserr.CodeCLISetupFailure, "creating aggregation service")
	}

	srv, err := server.New(server.Config{
		ListenAddr: "127.0.0.1:0",
	}, server.Deps{
		Client:  client,
		Service: svc,
		Metrics: m,
	})
	if err != nil {
		return nil, inserr.Wrap(err, inserr.CodeCLISetupFailure, "creating server")
	}
	defer func() { _ = srv.Close() }()

	return json.MarshalIndent(srv.API().OpenAPI(), "", "  ")
}
