// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package main

import (
	"strings"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/health"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	healthyStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	degradedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	criticalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
)

// styleMarkdown colors the line classes the render package emits: the
// document title, section headings, and the generated-at footer. Table
// bodies pass through untouched so column alignment survives.
func styleMarkdown(md string) string {
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "# "):
			lines[i] = titleStyle.Render(strings.TrimPrefix(line, "# "))
		case strings.HasPrefix(line, "## "):
			lines[i] = headingStyle.Render(strings.TrimPrefix(line, "## "))
		case strings.HasPrefix(line, "Generated "):
			lines[i] = dimStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// stateStyle picks the color for a health state label.
func stateStyle(state string) lipgloss.Style {
	switch state {
	case health.StateHealthy:
		return healthyStyle
	case health.StateDegraded:
		return degradedStyle
	default:
		return criticalStyle
	}
}
