// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package insights_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/cache"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/insights"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/ratelimit"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/transport"
	inserr "github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hashratePayload = `{
	"current_hashrate": 748.5,
	"average_hashrate_30": 748.2,
	"unit": "EH/s",
	"timestamp": 1756000000
}`

// testEnv bundles a stub upstream with a fully wired client.
type testEnv struct {
	client   *insights.Client
	cache    *cache.Cache
	limiter  *ratelimit.Limiter
	requests *atomic.Int64
}

// newTestEnv starts a stub upstream serving handler and wires a client
// with a 16-entry cache and a generous rate limiter against it.
func newTestEnv(t *testing.T, handler http.HandlerFunc, mutate ...func(*insights.Options)) *testEnv {
	t.Helper()

	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	tr, err := transport.New(transport.Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)

	store, err := cache.New(16)
	require.NoError(t, err)

	limiter, err := ratelimit.New(100, 100)
	require.NoError(t, err)

	opts := insights.Options{
		Transport: tr,
		Cache:     store,
		Limiter:   limiter,
	}
	for _, m := range mutate {
		m(&opts)
	}

	client, err := insights.New(opts)
	require.NoError(t, err)

	return &testEnv{client: client, cache: store, limiter: limiter, requests: &requests}
}

func serveJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestNew_RequiresTransport(t *testing.T) {
	_, err := insights.New(insights.Options{})
	require.Error(t, err)
}

func TestNew_RejectsUnknownTTLOverride(t *testing.T) {
	tr, err := transport.New(transport.Config{BaseURL: "https://example.com", Timeout: time.Second})
	require.NoError(t, err)

	_, err = insights.New(insights.Options{
		Transport:    tr,
		TTLOverrides: map[string]time.Duration{"mempool-statz": time.Minute},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mempool-statz")
}

func TestNew_AppliesTTLOverride(t *testing.T) {
	tr, err := transport.New(transport.Config{BaseURL: "https://example.com", Timeout: time.Second})
	require.NoError(t, err)

	c, err := insights.New(insights.Options{
		Transport:    tr,
		TTLOverrides: map[string]time.Duration{insights.EndpointMempoolStats: 30 * time.Second},
	})
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, c.TTLFor(insights.EndpointMempoolStats))
	assert.Equal(t, 5*time.Minute, c.TTLFor(insights.EndpointHashrateStats), "untouched endpoints keep defaults")
}

// ---------------------------------------------------------------------------
// Pipeline: fetch, decode, cache
// ---------------------------------------------------------------------------

func TestHashrateStats_DecodesPayload(t *testing.T) {
	env := newTestEnv(t, serveJSON(hashratePayload))

	got, err := env.client.HashrateStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 748.5, got.CurrentHashrate)
	assert.Equal(t, 748.2, got.AverageHashrate30)
	assert.Equal(t, "EH/s", got.Unit)
	assert.Equal(t, int64(1756000000), got.Timestamp)
}

func TestRepeatCallIsServedFromCache(t *testing.T) {
	env := newTestEnv(t, serveJSON(hashratePayload))

	first, err := env.client.HashrateStats(context.Background())
	require.NoError(t, err)
	second, err := env.client.HashrateStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), env.requests.Load(), "second call must not reach the upstream")
}

func TestExpiredEntryTriggersRefetch(t *testing.T) {
	env := newTestEnv(t, serveJSON(hashratePayload))

	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	now := base
	env.cache.SetNowFunc(func() time.Time { return now })

	_, err := env.client.HashrateStats(context.Background())
	require.NoError(t, err)

	// Past the 5m hashrate TTL the entry is stale.
	now = base.Add(5*time.Minute + time.Second)
	_, err = env.client.HashrateStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), env.requests.Load())
}

func TestCacheHitSkipsRateLimiter(t *testing.T) {
	env := newTestEnv(t, serveJSON(hashratePayload))

	_, err := env.client.HashrateStats(context.Background())
	require.NoError(t, err)

	// Drain the bucket completely.
	for {
		if _, ok := env.limiter.TryAcquire(); !ok {
			break
		}
	}

	// The cached response must still be served.
	_, err = env.client.HashrateStats(context.Background())
	require.NoError(t, err)
}

func TestDistinctParamsCacheIndependently(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		_, _ = w.Write([]byte(`{"blocks":[],"page":` + page + `,"page_size":10,"total":860000}`))
	})

	p1, err := env.client.Blocks(context.Background(), 1, 10)
	require.NoError(t, err)
	p2, err := env.client.Blocks(context.Background(), 2, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, p1.Page)
	assert.Equal(t, 2, p2.Page)
	assert.Equal(t, int64(2), env.requests.Load())

	// Both pages are now cached.
	_, err = env.client.Blocks(context.Background(), 1, 10)
	require.NoError(t, err)
	_, err = env.client.Blocks(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), env.requests.Load())
}

func TestNilCacheDisablesCaching(t *testing.T) {
	env := newTestEnv(t, serveJSON(hashratePayload), func(o *insights.Options) {
		o.Cache = nil
	})

	_, err := env.client.HashrateStats(context.Background())
	require.NoError(t, err)
	_, err = env.client.HashrateStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), env.requests.Load())
}

func TestClearCacheForcesRefetch(t *testing.T) {
	env := newTestEnv(t, serveJSON(hashratePayload))

	_, err := env.client.HashrateStats(context.Background())
	require.NoError(t, err)

	env.client.ClearCache()

	_, err = env.client.HashrateStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), env.requests.Load())
}

func TestClearCacheLeavesLimiterAlone(t *testing.T) {
	env := newTestEnv(t, serveJSON(hashratePayload))

	before := env.limiter.Tokens()
	env.client.ClearCache()
	assert.InDelta(t, before, env.limiter.Tokens(), 1.0, "purging the cache must not refill or drain the bucket")
}

// ---------------------------------------------------------------------------
// Rate limiting
// ---------------------------------------------------------------------------

func TestExhaustedBucketYieldsThrottled(t *testing.T) {
	env := newTestEnv(t, serveJSON(hashratePayload), func(o *insights.Options) {
		limiter, err := ratelimit.New(1, 0.001)
		require.NoError(t, err)
		o.Limiter = limiter
		o.Cache = nil
	})

	_, err := env.client.HashrateStats(context.Background())
	require.NoError(t, err)

	_, err = env.client.HashrateStats(context.Background())
	require.Error(t, err)
	assert.True(t, inserr.IsThrottled(err))
	assert.True(t, inserr.IsNetwork(err), "throttling is a network-kind failure")

	retryAfter, ok := inserr.RetryAfterOf(err)
	require.True(t, ok)
	assert.Greater(t, retryAfter, time.Duration(0))

	assert.Equal(t, int64(1), env.requests.Load(), "denied call must not reach the upstream")
}

func TestBlockingModeWaitsForSlot(t *testing.T) {
	env := newTestEnv(t, serveJSON(hashratePayload), func(o *insights.Options) {
		limiter, err := ratelimit.New(1, 50) // 20ms per token
		require.NoError(t, err)
		o.Limiter = limiter
		o.Cache = nil
		o.Blocking = true
	})

	_, err := env.client.HashrateStats(context.Background())
	require.NoError(t, err)

	_, err = env.client.HashrateStats(context.Background())
	require.NoError(t, err, "blocking mode should wait out the refill instead of failing")
	assert.Equal(t, int64(2), env.requests.Load())
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func TestMissingRequiredFieldIsValidationError(t *testing.T) {
	payload := `{"current_hashrate": 748.5, "unit": "EH/s", "timestamp": 1756000000}`
	env := newTestEnv(t, serveJSON(payload))

	_, err := env.client.HashrateStats(context.Background())
	require.Error(t, err)
	assert.True(t, inserr.IsValidation(err))
	assert.Contains(t, err.Error(), "average_hashrate_30")
	assert.JSONEq(t, payload, inserr.RawPayloadOf(err), "validation errors carry the raw body")
}

func TestNullRequiredFieldIsValidationError(t *testing.T) {
	env := newTestEnv(t, serveJSON(`{
		"current_hashrate": null,
		"average_hashrate_30": 748.2,
		"unit": "EH/s",
		"timestamp": 1756000000
	}`))

	_, err := env.client.HashrateStats(context.Background())
	require.Error(t, err)
	assert.True(t, inserr.IsValidation(err))
	assert.Contains(t, err.Error(), "current_hashrate")
}

func TestWrongTypeIsValidationError(t *testing.T) {
	env := newTestEnv(t, serveJSON(`{
		"current_hashrate": "fast",
		"average_hashrate_30": 748.2,
		"unit": "EH/s",
		"timestamp": 1756000000
	}`))

	_, err := env.client.HashrateStats(context.Background())
	require.Error(t, err)
	assert.True(t, inserr.IsValidation(err))
}

func TestNonObjectPayloadIsValidationError(t *testing.T) {
	env := newTestEnv(t, serveJSON(`[1, 2, 3]`))

	_, err := env.client.HashrateStats(context.Background())
	require.Error(t, err)
	assert.True(t, inserr.IsValidation(err))
	assert.Contains(t, err.Error(), "JSON object")
}

func TestMalformedJSONIsValidationError(t *testing.T) {
	env := newTestEnv(t, serveJSON(`{"current_hashrate": `))

	_, err := env.client.HashrateStats(context.Background())
	require.Error(t, err)
	assert.True(t, inserr.IsValidation(err))
}

func TestInvalidPayloadIsNeverCached(t *testing.T) {
	var healthy atomic.Bool
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if healthy.Load() {
			_, _ = w.Write([]byte(hashratePayload))
			return
		}
		_, _ = w.Write([]byte(`{"unexpected": true}`))
	})

	_, err := env.client.HashrateStats(context.Background())
	require.Error(t, err)

	// Once the upstream recovers the client must fetch again rather than
	// serve the invalid body from cache.
	healthy.Store(true)
	got, err := env.client.HashrateStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 748.5, got.CurrentHashrate)
	assert.Equal(t, int64(2), env.requests.Load())
}

func TestUpstreamErrorIsNotCached(t *testing.T) {
	var healthy atomic.Bool
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if healthy.Load() {
			_, _ = w.Write([]byte(hashratePayload))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := env.client.HashrateStats(context.Background())
	require.Error(t, err)
	assert.True(t, inserr.IsAPI(err))
	assert.Equal(t, http.StatusBadGateway, inserr.StatusCodeOf(err))

	healthy.Store(true)
	_, err = env.client.HashrateStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), env.requests.Load())
}

// ---------------------------------------------------------------------------
// Request parameter validation (no upstream call)
// ---------------------------------------------------------------------------

func TestInvalidParametersNeverReachUpstream(t *testing.T) {
	env := newTestEnv(t, serveJSON(`{}`))
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"zero page", func() error { _, err := env.client.Blocks(ctx, 0, 10); return err }},
		{"oversized page_size", func() error { _, err := env.client.Blocks(ctx, 1, 500); return err }},
		{"negative pools limit", func() error { _, err := env.client.PoolsStats(ctx, -1); return err }},
		{"bad currency", func() error { _, err := env.client.PriceStats(ctx, "DOLLARS"); return err }},
		{"bad from date", func() error { _, err := env.client.HashrateHistory(ctx, "24-08-2026", "2026-08-24"); return err }},
		{"half-open range", func() error { _, err := env.client.HashrateHistory(ctx, "2026-08-01", ""); return err }},
		{"inverted range", func() error { _, err := env.client.HashrateHistory(ctx, "2026-08-24", "2026-08-01"); return err }},
		{"zero hashrate", func() error {
			_, err := env.client.ProfitabilityCalculator(ctx, insights.ProfitabilityParams{PowerW: 3000})
			return err
		}},
		{"fee at 100", func() error {
			_, err := env.client.ProfitabilityCalculator(ctx, insights.ProfitabilityParams{
				HashrateTH: 200, PowerW: 3000, PoolFeePercent: 100,
			})
			return err
		}},
		{"no hardware models", func() error { _, err := env.client.HardwareStats(ctx, []string{" ", ""}); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, inserr.HasCode(err, inserr.CodeUpstreamRequestInvalid), "got: %v", err)
		})
	}

	assert.Equal(t, int64(0), env.requests.Load(), "parameter errors must fail before any HTTP request")
}

// ---------------------------------------------------------------------------
// Endpoint specifics
// ---------------------------------------------------------------------------

func TestPriceStats_NormalizesCurrency(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "EUR", r.URL.Query().Get("currency"))
		_, _ = w.Write([]byte(`{"price":61000,"currency":"EUR","change_24h_percent":-1.2,"timestamp":1756000000}`))
	})

	got, err := env.client.PriceStats(context.Background(), "eur")
	require.NoError(t, err)
	assert.Equal(t, "EUR", got.Currency)
}

func TestHashrateHistory_PassesWindow(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-08-01", r.URL.Query().Get("from"))
		assert.Equal(t, "2026-08-24", r.URL.Query().Get("to"))
		_, _ = w.Write([]byte(`{"samples":[{"date":"2026-08-01","hashrate":740.1}],"unit":"EH/s"}`))
	})

	got, err := env.client.HashrateHistory(context.Background(), "2026-08-01", "2026-08-24")
	require.NoError(t, err)
	require.Len(t, got.Samples, 1)
	assert.Equal(t, 740.1, got.Samples[0].Hashrate)
}

func TestProfitabilityCalculator_SendsTuning(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "200", q.Get("hashrate_th"))
		assert.Equal(t, "3500", q.Get("power_w"))
		assert.Equal(t, "0.07", q.Get("electricity_usd_kwh"))
		assert.Equal(t, "2.5", q.Get("pool_fee_percent"))
		_, _ = w.Write([]byte(`{
			"daily_revenue_usd": 18.40,
			"daily_cost_usd": 5.88,
			"daily_profit_usd": 12.52,
			"break_even_usd_kwh": 0.219
		}`))
	})

	got, err := env.client.ProfitabilityCalculator(context.Background(), insights.ProfitabilityParams{
		HashrateTH:        200,
		PowerW:            3500,
		ElectricityUSDKWh: 0.07,
		PoolFeePercent:    2.5,
	})
	require.NoError(t, err)
	assert.Equal(t, 12.52, got.DailyProfitUSD)
}

func TestHardwareStats_NormalizesAndCaches(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Models []string `json:"models"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"S19 XP", "S21"}, body.Models, "models must be upper-cased, de-duplicated, and sorted")

		_, _ = w.Write([]byte(`{
			"hardware": [
				{"model": "S19 XP", "hashrate_th": 140, "power_w": 3010, "efficiency_j_th": 21.5},
				{"model": "S21", "hashrate_th": 200, "power_w": 3500, "efficiency_j_th": 17.5}
			]
		}`))
	})

	got, err := env.client.HardwareStats(context.Background(), []string{"s21", " s19 xp ", "S21"})
	require.NoError(t, err)
	require.Len(t, got.Hardware, 2)

	// Equivalent request in a different order and case shares the cache entry.
	_, err = env.client.HardwareStats(context.Background(), []string{"S19 XP", "s21"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), env.requests.Load())
}

func TestFeesPrediction_DecodesPayload(t *testing.T) {
	env := newTestEnv(t, serveJSON(`{"fast":22.5,"medium":11.0,"slow":4.2,"unit":"sat/vB"}`))

	got, err := env.client.FeesPrediction(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 22.5, got.Fast)
	assert.Equal(t, "sat/vB", got.Unit)
}

func TestHalving_DecodesPayload(t *testing.T) {
	env := newTestEnv(t, serveJSON(`{
		"blocks_remaining": 102345,
		"estimated_date": "2028-03-14",
		"current_reward": 3.125,
		"next_reward": 1.5625
	}`))

	got, err := env.client.Halving(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(102345), got.BlocksRemaining)
	assert.Equal(t, 1.5625, got.NextReward)
}

func TestCacheStats_TracksEffectiveness(t *testing.T) {
	env := newTestEnv(t, serveJSON(hashratePayload))

	_, _ = env.client.HashrateStats(context.Background())
	_, _ = env.client.HashrateStats(context.Background())

	stats := env.client.CacheStats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}
