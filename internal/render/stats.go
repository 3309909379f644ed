// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package render

import (
	"fmt"
	"strings"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/insights"
)

// HashrateStats renders the network hashrate snapshot.
func HashrateStats(h *insights.HashrateStats) string {
	deviation := 0.0
	if h.AverageHashrate30 > 0 {
		deviation = (h.CurrentHashrate - h.AverageHashrate30) / h.AverageHashrate30 * 100
	}

	var b strings.Builder
	b.WriteString("## Network Hashrate\n\n")
	fmt.Fprintf(&b, "- **Current:** %s\n", formatUnitHashrate(h.CurrentHashrate, h.Unit))
	fmt.Fprintf(&b, "- **30-day average:** %s\n", formatUnitHashrate(h.AverageHashrate30, h.Unit))
	fmt.Fprintf(&b, "- **Deviation:** %s\n", formatPercent(deviation))
	fmt.Fprintf(&b, "- **Updated:** %s\n", formatTimestamp(h.Timestamp))
	return b.String()
}

// DifficultyStats renders the current difficulty epoch.
func DifficultyStats(d *insights.DifficultyStats) string {
	var b strings.Builder
	b.WriteString("## Network Difficulty\n\n")
	fmt.Fprintf(&b, "- **Difficulty:** %s\n", formatDifficulty(d.Difficulty))
	fmt.Fprintf(&b, "- **Blocks to retarget:** %s\n", formatInt(int64(d.BlocksToRetarget)))
	fmt.Fprintf(&b, "- **Estimated change:** %s\n", formatPercent(d.EstimatedChangePercent))
	if d.RetargetDate != "" {
		fmt.Fprintf(&b, "- **Retarget date:** %s\n", d.RetargetDate)
	}
	return b.String()
}

// MempoolStats renders the mempool congestion snapshot.
func MempoolStats(m *insights.MempoolStats) string {
	var b strings.Builder
	b.WriteString("## Mempool\n\n")
	fmt.Fprintf(&b, "- **Pending transactions:** %s\n", formatInt(int64(m.TxCount)))
	fmt.Fprintf(&b, "- **Average fee rate:** %.1f sat/vB\n", m.AvgFeeRate)
	fmt.Fprintf(&b, "- **Total size:** %s\n", formatBytes(m.TotalVsize, "vB"))
	fmt.Fprintf(&b, "- **Updated:** %s\n", formatTimestamp(m.Timestamp))
	return b.String()
}

// PriceStats renders the spot price snapshot.
func PriceStats(p *insights.PriceStats) string {
	var b strings.Builder
	b.WriteString("## Bitcoin Price\n\n")
	fmt.Fprintf(&b, "- **Price:** %s\n", formatMoney(p.Price, p.Currency))
	fmt.Fprintf(&b, "- **24h change:** %s %s\n", trendArrow(p.Change24hPercent), formatPercent(p.Change24hPercent))
	fmt.Fprintf(&b, "- **Updated:** %s\n", formatTimestamp(p.Timestamp))
	return b.String()
}

// Blocks renders one page of recent blocks as a table.
func Blocks(p *insights.BlocksPage) string {
	rows := make([][]string, 0, len(p.Blocks))
	for _, blk := range p.Blocks {
		rows = append(rows, []string{
			formatInt(blk.Height),
			formatTimestamp(blk.Timestamp),
			formatInt(int64(blk.TxCount)),
			formatBytes(blk.SizeBytes, "B"),
			blk.Pool,
		})
	}

	var b strings.Builder
	b.WriteString("## Recent Blocks\n\n")
	b.WriteString(table([]string{"Height", "Mined", "Txs", "Size", "Pool"}, rows))
	fmt.Fprintf(&b, "\nPage %d, %s blocks total.\n", p.Page, formatInt(p.Total))
	return b.String()
}

// Halving renders the countdown to the next subsidy halving.
func Halving(h *insights.Halving) string {
	var b strings.Builder
	b.WriteString("## Next Halving\n\n")
	fmt.Fprintf(&b, "- **Blocks remaining:** %s\n", formatInt(h.BlocksRemaining))
	fmt.Fprintf(&b, "- **Estimated date:** %s\n", h.EstimatedDate)
	fmt.Fprintf(&b, "- **Current reward:** %.8g BTC\n", h.CurrentReward)
	fmt.Fprintf(&b, "- **Next reward:** %.8g BTC\n", h.NextReward)
	return b.String()
}

// PoolsStats renders the mining pool distribution as a table.
func PoolsStats(p *insights.PoolsStats) string {
	rows := make([][]string, 0, len(p.Pools))
	for _, pool := range p.Pools {
		rows = append(rows, []string{
			pool.Name,
			fmt.Sprintf("%.1f%%", pool.SharePercent),
			formatInt(int64(pool.Blocks24h)),
		})
	}

	var b strings.Builder
	b.WriteString("## Mining Pools\n\n")
	b.WriteString(table([]string{"Pool", "Share", "Blocks (24h)"}, rows))
	if p.WindowDays > 0 {
		fmt.Fprintf(&b, "\nShare window: %d days.\n", p.WindowDays)
	}
	return b.String()
}

// HashrateHistory renders a daily hashrate series with summary statistics.
func HashrateHistory(h *insights.HashrateHistory) string {
	var b strings.Builder
	b.WriteString("## Hashrate History\n\n")
	if len(h.Samples) == 0 {
		b.WriteString("No samples in the requested window.\n")
		return b.String()
	}

	minV, maxV := h.Samples[0].Hashrate, h.Samples[0].Hashrate
	var sum float64
	for _, s := range h.Samples {
		sum += s.Hashrate
		if s.Hashrate < minV {
			minV = s.Hashrate
		}
		if s.Hashrate > maxV {
			maxV = s.Hashrate
		}
	}

	first, last := h.Samples[0], h.Samples[len(h.Samples)-1]
	fmt.Fprintf(&b, "- **Window:** %s to %s (%d samples)\n", first.Date, last.Date, len(h.Samples))
	fmt.Fprintf(&b, "- **Average:** %s\n", formatUnitHashrate(sum/float64(len(h.Samples)), h.Unit))
	fmt.Fprintf(&b, "- **Range:** %s to %s\n", formatUnitHashrate(minV, h.Unit), formatUnitHashrate(maxV, h.Unit))

	rows := make([][]string, 0, len(h.Samples))
	for _, s := range h.Samples {
		rows = append(rows, []string{s.Date, formatUnitHashrate(s.Hashrate, h.Unit)})
	}
	b.WriteString("\n")
	b.WriteString(table([]string{"Date", "Hashrate"}, rows))
	return b.String()
}

// DifficultyHistory renders past retargets as a table.
func DifficultyHistory(d *insights.DifficultyHistory) string {
	rows := make([][]string, 0, len(d.Adjustments))
	for _, adj := range d.Adjustments {
		rows = append(rows, []string{
			adj.Date,
			formatDifficulty(adj.Difficulty),
			formatPercent(adj.ChangePercent),
			formatInt(adj.Height),
		})
	}

	var b strings.Builder
	b.WriteString("## Difficulty History\n\n")
	b.WriteString(table([]string{"Date", "Difficulty", "Change", "Height"}, rows))
	return b.String()
}

// Hashprice renders expected revenue per unit of hashrate.
func Hashprice(h *insights.Hashprice) string {
	var b strings.Builder
	b.WriteString("## Hashprice\n\n")
	fmt.Fprintf(&b, "- **Per TH/s per day:** %s\n", formatMoney(h.PerTHDay, h.Currency))
	fmt.Fprintf(&b, "- **Per PH/s per day:** %s\n", formatMoney(h.PerPHDay, h.Currency))
	fmt.Fprintf(&b, "- **Updated:** %s\n", formatTimestamp(h.Timestamp))
	return b.String()
}

// FeesPrediction renders fee estimates per confirmation target.
func FeesPrediction(f *insights.FeesPrediction) string {
	unit := f.Unit
	if unit == "" {
		unit = "sat/vB"
	}
	rows := [][]string{
		{"Fast", fmt.Sprintf("%.1f %s", f.Fast, unit)},
		{"Medium", fmt.Sprintf("%.1f %s", f.Medium, unit)},
		{"Slow", fmt.Sprintf("%.1f %s", f.Slow, unit)},
	}

	var b strings.Builder
	b.WriteString("## Fee Prediction\n\n")
	b.WriteString(table([]string{"Priority", "Fee rate"}, rows))
	return b.String()
}

// Profitability renders the calculator's daily economics.
func Profitability(p *insights.Profitability) string {
	var b strings.Builder
	b.WriteString("## Mining Profitability\n\n")
	fmt.Fprintf(&b, "- **Daily revenue:** %s\n", formatMoney(p.DailyRevenueUSD, "USD"))
	fmt.Fprintf(&b, "- **Daily cost:** %s\n", formatMoney(p.DailyCostUSD, "USD"))
	fmt.Fprintf(&b, "- **Daily profit:** %s\n", formatMoney(p.DailyProfitUSD, "USD"))
	fmt.Fprintf(&b, "- **Break-even electricity:** %.3f USD/kWh\n", p.BreakEvenUSDKWh)
	return b.String()
}

// HardwareStats renders miner spec sheets as a table.
func HardwareStats(h *insights.HardwareStats) string {
	rows := make([][]string, 0, len(h.Hardware))
	for _, m := range h.Hardware {
		rows = append(rows, []string{
			m.Model,
			formatHashrate(m.HashrateTH),
			fmt.Sprintf("%.0f W", m.PowerW),
			fmt.Sprintf("%.1f J/TH", m.EfficiencyJTH),
		})
	}

	var b strings.Builder
	b.WriteString("## Mining Hardware\n\n")
	b.WriteString(table([]string{"Model", "Hashrate", "Power", "Efficiency"}, rows))
	if len(h.Missing) > 0 {
		fmt.Fprintf(&b, "\nNot recognized: %s.\n", strings.Join(h.Missing, ", "))
	}
	return b.String()
}
