// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

// Package render turns payloads and aggregation reports into markdown. All
// formatters are pure string builders; they know nothing about transport,
// caching, or how the markdown is delivered.
package render

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer groups large numbers with thousands separators.
var printer = message.NewPrinter(language.English)

// formatInt renders n with thousands separators.
func formatInt(n int64) string {
	return printer.Sprintf("%d", n)
}

// formatMoney renders an amount with grouping and two decimals, followed by
// the currency code.
func formatMoney(amount float64, currency string) string {
	return printer.Sprintf("%.2f %s", amount, currency)
}

// formatPercent renders a signed percentage with two decimals.
func formatPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

// formatHashrate scales a TH/s value into the most readable unit.
func formatHashrate(th float64) string {
	switch {
	case th >= 1e6:
		return fmt.Sprintf("%.2f EH/s", th/1e6)
	case th >= 1e3:
		return fmt.Sprintf("%.2f PH/s", th/1e3)
	default:
		return fmt.Sprintf("%.2f TH/s", th)
	}
}

// formatUnitHashrate renders a hashrate already expressed in the upstream's
// unit, e.g. "748.50 EH/s".
func formatUnitHashrate(v float64, unit string) string {
	if unit == "" {
		unit = "EH/s"
	}
	return fmt.Sprintf("%.2f %s", v, unit)
}

// formatDifficulty renders the raw difficulty with a magnitude suffix.
func formatDifficulty(v float64) string {
	switch {
	case v >= 1e15:
		return fmt.Sprintf("%.2f P", v/1e15)
	case v >= 1e12:
		return fmt.Sprintf("%.2f T", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%.2f G", v/1e9)
	default:
		return printer.Sprintf("%.0f", v)
	}
}

// formatBytes renders a byte (or vbyte) quantity with a binary-free
// magnitude suffix.
func formatBytes(n int64, unit string) string {
	v := float64(n)
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2f G%s", v/1e9, unit)
	case v >= 1e6:
		return fmt.Sprintf("%.2f M%s", v/1e6, unit)
	case v >= 1e3:
		return fmt.Sprintf("%.2f k%s", v/1e3, unit)
	default:
		return fmt.Sprintf("%d %s", n, unit)
	}
}

// formatTimestamp renders a unix timestamp in UTC, or "n/a" when zero.
func formatTimestamp(ts int64) string {
	if ts == 0 {
		return "n/a"
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04 UTC")
}

// trendArrow marks a 24h change direction.
func trendArrow(change float64) string {
	switch {
	case change > 0:
		return "▲"
	case change < 0:
		return "▼"
	default:
		return "■"
	}
}

// table renders a fixed-width markdown table. Every cell is padded to its
// column's widest entry so the raw text lines up.
func table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len([]rune(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len([]rune(cell)) > widths[i] {
				widths[i] = len([]rune(cell))
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(" ")
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[i]-len([]rune(cell))+1))
			b.WriteString("|")
		}
		b.WriteString("\n")
	}

	writeRow(headers)
	b.WriteString("|")
	for i := range headers {
		b.WriteString(strings.Repeat("-", widths[i]+2))
		b.WriteString("|")
	}
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}
