// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/aggregate"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/render"
	inserr "github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/errors"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// --- bubbletea messages ---

type (
	dashboardMsg    struct{ dashboard *aggregate.Dashboard }
	dashboardErrMsg struct{ err error }
	refreshTickMsg  struct{}
)

// watchModel is the bubbletea model for the live dashboard.
type watchModel struct {
	service  *aggregate.Service
	currency string
	interval time.Duration
	spinner  spinner.Model
	body     string
	fetchErr string
	updated  time.Time
	loading  bool
}

func newWatchModel(svc *aggregate.Service, currency string, interval time.Duration) watchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return watchModel{
		service:  svc,
		currency: currency,
		interval: interval,
		spinner:  sp,
		loading:  true,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchDashboardCmd(m.service, m.currency))
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, fetchDashboardCmd(m.service, m.currency))
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case dashboardMsg:
		m.loading = false
		m.fetchErr = ""
		m.body = styleMarkdown(render.Dashboard(msg.dashboard))
		m.updated = time.Now()
		return m, scheduleRefresh(m.interval)

	case dashboardErrMsg:
		m.loading = false
		m.fetchErr = msg.err.Error()
		return m, scheduleRefresh(m.interval)

	case refreshTickMsg:
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, fetchDashboardCmd(m.service, m.currency))
	}

	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("  Mining Dashboard  ") + "\n\n")

	switch {
	case m.fetchErr != "":
		b.WriteString(errorStyle.Render("fetch failed: "+m.fetchErr) + "\n")
		// Keep showing the last good data underneath the error.
		if m.body != "" {
			b.WriteString("\n" + m.body)
		}
	case m.body == "":
		b.WriteString(m.spinner.View() + " Loading dashboard…\n")
	default:
		b.WriteString(m.body)
	}

	b.WriteString("\n" + m.footer())
	return boxStyle.Render(b.String())
}

func (m watchModel) footer() string {
	parts := []string{"r to refresh", "q to quit"}
	if !m.updated.IsZero() {
		parts = append([]string{"updated " + m.updated.Format("15:04:05")}, parts...)
	}
	footer := dimStyle.Render(strings.Join(parts, "  "))
	if m.loading && m.body != "" {
		footer = m.spinner.View() + " " + footer
	}
	return footer
}

// --- tea.Cmd factories ---

func fetchDashboardCmd(svc *aggregate.Service, currency string) tea.Cmd {
	return func() tea.Msg {
		d, err := svc.MiningDashboard(context.Background(), aggregate.DashboardOptions{Currency: currency})
		if err != nil {
			return dashboardErrMsg{err: err}
		}
		return dashboardMsg{dashboard: d}
	}
}

func scheduleRefresh(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

// --- Cobra command ---

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live mining dashboard",
		Long:  "Show an auto-refreshing terminal dashboard with hashprice, pool distribution, recent blocks and fee estimates.",
		RunE:  runWatch,
	}

	cmd.Flags().String("currency", "", "fiat currency for the hashprice panel (default USD)")
	cmd.Flags().Duration("interval", 30*time.Second, "refresh interval")

	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	interval, _ := cmd.Flags().GetDuration("interval")
	if interval < time.Second {
		return inserr.Errorf(inserr.CodeCLIInputInvalid, "refresh interval must be at least 1s, got %s", interval)
	}

	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !isTerminal(f) {
		return inserr.New(inserr.CodeCLIInputInvalid, "insights watch requires an interactive terminal")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg, cmd)

	app, err := wireApp(cfg, true)
	if err != nil {
		return err
	}

	currency, _ := cmd.Flags().GetString("currency")
	m := newWatchModel(app.Service, currency, interval)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return inserr.Errorf(inserr.CodeCLISetupFailure, "watch error: %w", err)
	}
	return nil
}

// isTerminal reports whether f is a terminal file descriptor.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
