// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root insights command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "insights",
		Short:         "insights - Bitcoin network statistics from Braiins Insights",
		Long:          "Fetch, aggregate and serve Bitcoin network and mining statistics from the Braiins Insights API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	// Global flags. Each overrides the matching config key after the file
	// and environment are read.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("base-url", "", "override the upstream API base URL")
	root.PersistentFlags().Duration("timeout", 0, "override the upstream request timeout")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.Flags().String("write-config", "", "write the effective config to the given path and exit")
	root.Flags().Bool("force", false, "overwrite an existing file with --write-config")

	root.AddCommand(
		newServeCmd(),
		newReportCmd(),
		newHealthCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	return root
}

// runRoot handles --write-config; without it the root command just prints
// help.
func runRoot(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("write-config")
	if path == "" {
		return cmd.Help()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")
	if err := cfg.WriteFile(path, force); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
	return err
}

// loadConfig reads the config file named by --config and applies the global
// flag overrides on top. When --config is unset the default location is
// tried, seeded with the commented template on first run.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = discoverConfig()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	config.WarnInsecurePermissions(path)

	if baseURL, _ := cmd.Flags().GetString("base-url"); baseURL != "" {
		cfg.Upstream.BaseURL = baseURL
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		cfg.Upstream.Timeout = timeout
	}
	return cfg, nil
}

// discoverConfig returns the default config path, writing the commented
// template there on first run. Empty means run on built-in defaults alone.
func discoverConfig() string {
	path, err := config.DefaultConfigPath()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return config.BootstrapConfig()
}

// setupLogging installs the process-wide slog handler from config.
// --verbose forces debug level regardless of the configured one.
func setupLogging(cfg *config.Config, cmd *cobra.Command) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Logging.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
