// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package main

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// stubPayloads answers the upstream endpoints the commands exercise.
var stubPayloads = map[string]string{
	"/v1.0/hashrate-stats":   `{"current_hashrate": 748.5, "average_hashrate_30": 748.2, "unit": "EH/s", "timestamp": 1756000000}`,
	"/v1.0/difficulty-stats": `{"difficulty": 95000000000000, "blocks_to_retarget": 1203, "estimated_change_percent": -1.8, "retarget_date": "2026-09-01"}`,
	"/v1.0/mempool-stats":    `{"tx_count": 3000, "avg_fee_rate": 4, "total_vsize": 1500000, "timestamp": 1756000000}`,
	"/v1.0/price-stats":      `{"price": 67342.5, "currency": "USD", "change_24h_percent": 2.4, "timestamp": 1756000000}`,
	"/v1.0/blocks":           `{"blocks": [{"height": 860001, "hash": "00000000000000000001a7c0", "timestamp": 1756000000, "tx_count": 3021, "size_bytes": 1500000, "pool": "Braiins"}], "page": 1, "page_size": 5, "total": 860123}`,
	"/v1.0/pools-stats":      `{"pools": [{"name": "Braiins", "share_percent": 4.1, "blocks_24h": 6}], "window_days": 7}`,
	"/v2.0/hashrate-history": `{"samples": [{"date": "2026-07-25", "hashrate": 748.2}], "unit": "EH/s"}`,
	"/v2.0/hashprice":        `{"per_th_day": 0.092, "per_ph_day": 92.0, "currency": "USD", "timestamp": 1756000000}`,
	"/v2.0/fees-prediction":  `{"fast": 12, "medium": 8, "slow": 3, "unit": "sat/vB"}`,
}

// upstreamStub plays the Insights API for command tests. Paths can be
// marked down to exercise degraded and failed runs.
type upstreamStub struct {
	mu      sync.Mutex
	down    map[string]bool
	queries map[string]string
}

func newUpstreamStub() *upstreamStub {
	return &upstreamStub{
		down:    make(map[string]bool),
		queries: make(map[string]string),
	}
}

func (u *upstreamStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.queries[r.URL.Path] = r.URL.RawQuery
	down := u.down[r.URL.Path]
	u.mu.Unlock()

	if down {
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}
	payload, ok := stubPayloads[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(payload))
}

func (u *upstreamStub) fail(path string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.down[path] = true
}

func (u *upstreamStub) query(path string) string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.queries[path]
}

// startStubUpstream serves the canned payloads for the lifetime of one test.
func startStubUpstream(t *testing.T) (*upstreamStub, *httptest.Server) {
	t.Helper()
	stub := newUpstreamStub()
	backend := httptest.NewServer(stub)
	t.Cleanup(backend.Close)
	return stub, backend
}
