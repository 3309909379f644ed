// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package server

import (
	"context"
	"net/http"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/aggregate"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/render"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/health"
	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerReportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-network-overview",
		Method:      http.MethodGet,
		Path:        "/api/v1/reports/overview",
		Summary:     "Aggregated network overview",
		Tags:        []string{"reports"},
	}, s.handleOverviewReport)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-mining-dashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/reports/dashboard",
		Summary:     "Aggregated mining economics dashboard",
		Tags:        []string{"reports"},
	}, s.handleDashboardReport)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-network-health",
		Method:      http.MethodGet,
		Path:        "/api/v1/reports/health",
		Summary:     "Scored network health snapshot",
		Tags:        []string{"reports"},
	}, s.handleHealthReport)
}

// --- Request/Response types for huma ---

type overviewReportInput struct {
	Currency       string `query:"currency" doc:"3-letter currency code for the price section"`
	IncludeHistory bool   `query:"include_history" doc:"Include the trailing 30-day hashrate series"`
}
type overviewReportOutput struct {
	Body struct {
		Report   *aggregate.Report `json:"report" doc:"Raw aggregation outcome"`
		Markdown string            `json:"markdown" doc:"Rendered report"`
	}
}

type dashboardReportInput struct {
	Currency string `query:"currency" doc:"3-letter currency code for the hashprice section"`
}
type dashboardReportOutput struct {
	Body struct {
		Report   *aggregate.Report `json:"report" doc:"Raw aggregation outcome"`
		Markdown string            `json:"markdown" doc:"Rendered report"`
	}
}

type healthReportInput struct {
	IncludeHistory bool `query:"include_history" doc:"Feed the trailing 30-day series into the stability bonus"`
}
type healthReportOutput struct {
	Body struct {
		Report    *aggregate.Report `json:"report" doc:"Raw aggregation outcome"`
		Breakdown health.Breakdown  `json:"breakdown" doc:"Score, state, components, and alerts"`
		Markdown  string            `json:"markdown" doc:"Rendered report"`
	}
}

// --- Handlers ---

func (s *Server) handleOverviewReport(ctx context.Context, input *overviewReportInput) (*overviewReportOutput, error) {
	overview, err := s.deps.Service.NetworkOverview(ctx, aggregate.OverviewOptions{
		Currency:       input.Currency,
		IncludeHistory: input.IncludeHistory,
	})
	if err != nil {
		return nil, toolError(err)
	}
	out := &overviewReportOutput{}
	out.Body.Report = overview.Report
	out.Body.Markdown = render.Overview(overview)
	return out, nil
}

func (s *Server) handleDashboardReport(ctx context.Context, input *dashboardReportInput) (*dashboardReportOutput, error) {
	dashboard, err := s.deps.Service.MiningDashboard(ctx, aggregate.DashboardOptions{
		Currency: input.Currency,
	})
	if err != nil {
		return nil, toolError(err)
	}
	out := &dashboardReportOutput{}
	out.Body.Report = dashboard.Report
	out.Body.Markdown = render.Dashboard(dashboard)
	return out, nil
}

func (s *Server) handleHealthReport(ctx context.Context, input *healthReportInput) (*healthReportOutput, error) {
	snapshot, err := s.deps.Service.NetworkHealth(ctx, aggregate.HealthOptions{
		IncludeHistory: input.IncludeHistory,
	})
	if err != nil {
		return nil, toolError(err)
	}
	out := &healthReportOutput{}
	out.Body.Report = snapshot.Report
	out.Body.Breakdown = snapshot.Breakdown
	out.Body.Markdown = render.Health(snapshot)
	return out, nil
}
