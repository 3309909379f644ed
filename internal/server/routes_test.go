// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolRoutes_ServeUpstreamPayloads(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "hashrate stats", path: "/api/v1/tools/hashrate-stats", want: `"current_hashrate":748.5`},
		{name: "difficulty stats", path: "/api/v1/tools/difficulty-stats", want: `"blocks_to_retarget":1203`},
		{name: "mempool stats", path: "/api/v1/tools/mempool-stats", want: `"tx_count":3000`},
		{name: "price stats", path: "/api/v1/tools/price-stats", want: `"price":67342.5`},
		{name: "blocks", path: "/api/v1/tools/blocks", want: `"height":860001`},
		{name: "halving", path: "/api/v1/tools/halving", want: `"blocks_remaining":52500`},
		{name: "pools stats", path: "/api/v1/tools/pools-stats", want: `"name":"Braiins"`},
		{name: "hashrate history", path: "/api/v1/tools/hashrate-history", want: `"date":"2026-07-25"`},
		{name: "difficulty history", path: "/api/v1/tools/difficulty-history", want: `"height":860832`},
		{name: "hashprice", path: "/api/v1/tools/hashprice", want: `"per_th_day":0.092`},
		{name: "fees prediction", path: "/api/v1/tools/fees-prediction", want: `"fast":12`},
		{
			name: "profitability calculator",
			path: "/api/v1/tools/profitability-calculator?hashrate_th=200&power_w=3500&electricity_usd_kwh=0.07&pool_fee_percent=2.5",
			want: `"daily_profit_usd":6.64`,
		},
	}

	h := newTestHarness(t, server.Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.get(t, tt.path)

			require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestToolRoutes_QueryParamsPassThrough(t *testing.T) {
	h := newTestHarness(t, server.Config{})

	w := h.get(t, "/api/v1/tools/price-stats?currency=eur")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "currency=EUR", h.stub.query("/v1.0/price-stats"))
}

func TestToolRoutes_BlocksPaginationDefaults(t *testing.T) {
	h := newTestHarness(t, server.Config{})

	w := h.get(t, "/api/v1/tools/blocks")

	require.Equal(t, http.StatusOK, w.Code)
	upstream := h.stub.query("/v1.0/blocks")
	assert.Contains(t, upstream, "page=1")
	assert.Contains(t, upstream, "page_size=10")
}

func TestToolRoutes_InvalidParamsReturnBadRequest(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "zero page", path: "/api/v1/tools/blocks?page=0", want: "page must be at least 1"},
		{name: "oversized page size", path: "/api/v1/tools/blocks?page_size=500", want: "page_size must be between 1 and 100"},
		{name: "bad currency", path: "/api/v1/tools/price-stats?currency=DOLLARS", want: "3-letter code"},
		{name: "half-open history window", path: "/api/v1/tools/hashrate-history?from=2026-07-25", want: "provided together"},
		{name: "profitability without hashrate", path: "/api/v1/tools/profitability-calculator?power_w=3500", want: "hashrate_th must be positive"},
	}

	h := newTestHarness(t, server.Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.get(t, tt.path)

			assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", w.Body.String())
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestToolRoutes_UpstreamFailureMapsToBadGateway(t *testing.T) {
	h := newTestHarness(t, server.Config{})
	h.stub.fail("/v1.0/hashrate-stats")

	w := h.get(t, "/api/v1/tools/hashrate-stats")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "upstream returned status 502")
}

func TestToolRoutes_HardwareStatsPost(t *testing.T) {
	h := newTestHarness(t, server.Config{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tools/hardware-stats",
		strings.NewReader(`{"models": ["s19 xp", "S19 XP"]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	assert.Contains(t, w.Body.String(), `"model":"S19 XP"`)
}

func TestToolRoutes_HardwareStatsPost_NoModels(t *testing.T) {
	h := newTestHarness(t, server.Config{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tools/hardware-stats",
		strings.NewReader(`{"models": []}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least one hardware model")
}

func TestToolRoutes_UnknownToolIs404(t *testing.T) {
	h := newTestHarness(t, server.Config{})

	w := h.get(t, "/api/v1/tools/block-reward")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportRoutes_Overview(t *testing.T) {
	h := newTestHarness(t, server.Config{})

	w := h.get(t, "/api/v1/reports/overview")

	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	body := w.Body.String()
	assert.Contains(t, body, `"report"`)
	assert.Contains(t, body, "# Bitcoin Network Overview")
	assert.Contains(t, body, "## Network Hashrate")
	assert.NotContains(t, body, "Unavailable Sources")
}

func TestReportRoutes_OverviewDegradesWithoutMempool(t *testing.T) {
	h := newTestHarness(t, server.Config{})
	h.stub.fail("/v1.0/mempool-stats")

	w := h.get(t, "/api/v1/reports/overview")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Unavailable Sources")
	assert.Contains(t, body, "mempool")
}

func TestReportRoutes_OverviewAllCriticalDownIs503(t *testing.T) {
	h := newTestHarness(t, server.Config{})
	h.stub.fail("/v1.0/hashrate-stats")
	h.stub.fail("/v1.0/difficulty-stats")

	w := h.get(t, "/api/v1/reports/overview")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "critical sub-requests failed")
}

func TestReportRoutes_Dashboard(t *testing.T) {
	h := newTestHarness(t, server.Config{})

	w := h.get(t, "/api/v1/reports/dashboard")

	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	body := w.Body.String()
	assert.Contains(t, body, "# Mining Dashboard")
	assert.Contains(t, body, "## Hashprice")
}

func TestReportRoutes_Health(t *testing.T) {
	h := newTestHarness(t, server.Config{})

	w := h.get(t, "/api/v1/reports/health")

	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	body := w.Body.String()
	assert.Contains(t, body, `"score":100`)
	assert.Contains(t, body, `"state":"healthy"`)
	assert.Contains(t, body, "# Network Health")
}

func TestReportRoutes_HealthWithHistory(t *testing.T) {
	h := newTestHarness(t, server.Config{})

	w := h.get(t, "/api/v1/reports/health?include_history=true")

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, h.stub.query("/v2.0/hashrate-history"),
		"history endpoint should have been queried")
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHarness(t, server.Config{})

	// Drive one tool request and one plain request so both counter families
	// have samples to export.
	require.Equal(t, http.StatusOK, h.get(t, "/api/v1/tools/hashrate-stats").Code)
	require.Equal(t, http.StatusOK, h.get(t, "/health").Code)

	w := h.get(t, "/metrics")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "insights_http_requests_total")
	assert.Contains(t, body, "insights_upstream_requests_total")
	assert.Contains(t, body, "insights_cache_misses_total")
}
