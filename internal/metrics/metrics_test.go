// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package metrics_test

import (
	stderrors "errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/metrics"
	inserr "github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"throttled", inserr.Throttled(time.Second), "throttled"},
		{"timeout", inserr.NetworkTimeout(stderrors.New("deadline"), "/p"), "timeout"},
		{"network", inserr.Network(nil, "refused"), "network"},
		{"api", inserr.API(500, "/p"), "api"},
		{"validation", inserr.Validation(nil, "shape"), "validation"},
		{"plain", stderrors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, metrics.Outcome(tt.err))
		})
	}
}

func TestObserveUpstream_CountsByOutcome(t *testing.T) {
	m := metrics.New()

	m.ObserveUpstream("hashrate-stats", 20*time.Millisecond, nil)
	m.ObserveUpstream("hashrate-stats", 5*time.Millisecond, nil)
	m.ObserveUpstream("mempool-stats", time.Millisecond, inserr.API(502, "/v1.0/mempool-stats"))

	ok := testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("hashrate-stats", "ok"))
	assert.Equal(t, 2.0, ok)

	api := testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("mempool-stats", "api"))
	assert.Equal(t, 1.0, api)
}

func TestCacheCounters(t *testing.T) {
	m := metrics.New()

	m.CacheHits.Inc()
	m.CacheHits.Inc()
	m.CacheMisses.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMisses))
}

func TestSeparateInstancesDoNotCollide(t *testing.T) {
	a := metrics.New()
	b := metrics.New()

	a.CacheHits.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.CacheHits))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CacheHits))
}

func TestHandler_ServesExposition(t *testing.T) {
	m := metrics.New()
	m.ObserveUpstream("halving", 3*time.Millisecond, nil)
	m.LimiterTokens.Set(7)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "insights_upstream_requests_total")
	assert.Contains(t, string(body), "insights_ratelimit_tokens 7")
}
