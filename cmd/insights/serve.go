// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the aggregation gateway",
		Long:  "Load configuration, wire the upstream client stack, and serve the HTTP API until interrupted.",
		RunE:  runServe,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg, cmd)

	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}

	// The gateway fails fast on upstream throttling so callers see a 429
	// instead of a stalled request.
	app, err := wireApp(cfg, false)
	if err != nil {
		return err
	}
	srv, err := wireServer(cfg, app)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting gateway",
		"listen", cfg.Server.Listen,
		"upstream", cfg.Upstream.BaseURL,
		"cache", cfg.Cache.Enabled,
	)
	return srv.Start(ctx)
}
