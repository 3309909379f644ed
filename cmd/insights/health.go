// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/aggregate"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/health"
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Score current network health",
		Long:  "Evaluate hashrate stability, mempool pressure and block production into a 0-100 score with alerts.",
		RunE:  runHealth,
	}

	cmd.Flags().Bool("history", false, "include the 30-day hashrate history in the evaluation")

	return cmd
}

func runHealth(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg, cmd)

	app, err := wireApp(cfg, true)
	if err != nil {
		return err
	}

	includeHistory, _ := cmd.Flags().GetBool("history")
	snap, err := app.Service.NetworkHealth(cmd.Context(), aggregate.HealthOptions{
		IncludeHistory: includeHistory,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	bd := snap.Breakdown
	fmt.Fprintf(w, "%s  score %d/100\n\n", stateStyle(bd.State).Render(strings.ToUpper(bd.State)), bd.Score)
	for _, c := range bd.Components {
		fmt.Fprintf(w, "  %-18s %3d/%-3d %s\n", c.Name, c.Score, c.Max, c.Detail)
	}

	if len(bd.Alerts) > 0 {
		fmt.Fprintln(w)
		for _, a := range bd.Alerts {
			label := "[" + a.Severity + "]"
			if a.Severity == health.SeverityCritical {
				label = criticalStyle.Render(label)
			} else {
				label = degradedStyle.Render(label)
			}
			fmt.Fprintf(w, "  %s %s: %s\n", label, a.Component, a.Message)
		}
	}

	if len(snap.Report.Failed) > 0 {
		fmt.Fprintln(w)
		for _, name := range slices.Sorted(maps.Keys(snap.Report.Failed)) {
			fmt.Fprintf(w, "  %s\n", dimStyle.Render("unavailable: "+name+" ("+snap.Report.Failed[name]+")"))
		}
	}

	return nil
}
