// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package main

import (
	"fmt"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/aggregate"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/render"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a one-shot network overview",
		Long:  "Fetch hashrate, difficulty, mempool and price in one concurrent pass and print the combined report.",
		RunE:  runReport,
	}

	cmd.Flags().String("currency", "", "fiat currency for the price section (default USD)")
	cmd.Flags().Bool("history", false, "include the 30-day hashrate history")

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg, cmd)

	// One-shot commands wait out the rate limiter instead of failing.
	app, err := wireApp(cfg, true)
	if err != nil {
		return err
	}

	currency, _ := cmd.Flags().GetString("currency")
	includeHistory, _ := cmd.Flags().GetBool("history")

	overview, err := app.Service.NetworkOverview(cmd.Context(), aggregate.OverviewOptions{
		Currency:       currency,
		IncludeHistory: includeHistory,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), styleMarkdown(render.Overview(overview)))
	return err
}
