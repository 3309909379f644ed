// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package render

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/aggregate"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/health"
)

// Overview renders a network overview report. Sections for sources that
// failed to arrive are skipped and listed under Unavailable Sources.
func Overview(o *aggregate.Overview) string {
	var b strings.Builder
	b.WriteString("# Bitcoin Network Overview\n\n")
	if o.Hashrate != nil {
		section(&b, HashrateStats(o.Hashrate))
	}
	if o.Difficulty != nil {
		section(&b, DifficultyStats(o.Difficulty))
	}
	if o.Mempool != nil {
		section(&b, MempoolStats(o.Mempool))
	}
	if o.Price != nil {
		section(&b, PriceStats(o.Price))
	}
	if o.History != nil {
		section(&b, HashrateHistory(o.History))
	}
	section(&b, missingSources(o.Report.Failed))
	b.WriteString(reportFooter(o.Report))
	return b.String()
}

// Dashboard renders a mining economics dashboard.
func Dashboard(d *aggregate.Dashboard) string {
	var b strings.Builder
	b.WriteString("# Mining Dashboard\n\n")
	if d.Hashprice != nil {
		section(&b, Hashprice(d.Hashprice))
	}
	if d.Pools != nil {
		section(&b, PoolsStats(d.Pools))
	}
	if d.Blocks != nil {
		section(&b, Blocks(d.Blocks))
	}
	if d.Fees != nil {
		section(&b, FeesPrediction(d.Fees))
	}
	section(&b, missingSources(d.Report.Failed))
	b.WriteString(reportFooter(d.Report))
	return b.String()
}

// Health renders a scored health snapshot with its component breakdown
// and any active alerts.
func Health(s *aggregate.HealthSnapshot) string {
	bd := s.Breakdown

	var b strings.Builder
	b.WriteString("# Network Health\n\n")
	fmt.Fprintf(&b, "%s **%d/100** (%s)\n\n", stateEmoji(bd.State), bd.Score, bd.State)

	rows := make([][]string, 0, len(bd.Components))
	for _, c := range bd.Components {
		rows = append(rows, []string{
			c.Name,
			fmt.Sprintf("%d", c.Score),
			fmt.Sprintf("%d", c.Max),
			c.Detail,
		})
	}
	b.WriteString(table([]string{"Component", "Score", "Max", "Detail"}, rows))

	if len(bd.Alerts) > 0 {
		b.WriteString("\n## Alerts\n\n")
		for _, a := range bd.Alerts {
			fmt.Fprintf(&b, "- %s **%s**: %s\n", severityEmoji(a.Severity), a.Component, a.Message)
		}
	}

	b.WriteString("\n")
	section(&b, missingSources(s.Report.Failed))
	b.WriteString(reportFooter(s.Report))
	return b.String()
}

// section appends a rendered block followed by a blank separator line.
// Empty blocks are dropped so skipped sources leave no gap behind.
func section(b *strings.Builder, block string) {
	if block == "" {
		return
	}
	b.WriteString(block)
	b.WriteString("\n")
}

func missingSources(failed map[string]string) string {
	if len(failed) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Unavailable Sources\n\n")
	for _, name := range slices.Sorted(maps.Keys(failed)) {
		fmt.Fprintf(&b, "- ⚠️ **%s**: %s\n", name, failed[name])
	}
	return b.String()
}

func reportFooter(r *aggregate.Report) string {
	return fmt.Sprintf("Generated %s in %s.\n",
		r.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"),
		r.Duration.Round(time.Millisecond))
}

func stateEmoji(state string) string {
	switch state {
	case health.StateHealthy:
		return "🟢"
	case health.StateDegraded:
		return "🟡"
	default:
		return "🔴"
	}
}

func severityEmoji(severity string) string {
	if severity == health.SeverityCritical {
		return "🚨"
	}
	return "⚠️"
}
