// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package cache_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsNonPositiveSize(t *testing.T) {
	_, err := cache.New(0)
	require.Error(t, err)

	_, err = cache.New(-5)
	require.Error(t, err)
}

func TestGetSet_RoundTrip(t *testing.T) {
	c, err := cache.New(16)
	require.NoError(t, err)

	c.Set("hashrate-stats", 42, time.Minute)

	got, ok := c.Get("hashrate-stats")
	require.True(t, ok)
	assert.Equal(t, 42, got)
}

func TestGet_MissingKey(t *testing.T) {
	c, err := cache.New(16)
	require.NoError(t, err)

	_, ok := c.Get("nothing-here")
	assert.False(t, ok)
}

func TestGet_ExpiredEntryIsDropped(t *testing.T) {
	c, err := cache.New(16)
	require.NoError(t, err)

	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	now := base
	c.SetNowFunc(func() time.Time { return now })

	c.Set("mempool-stats", "payload", time.Minute)

	// One nanosecond before the deadline the entry is still served.
	now = base.Add(time.Minute - time.Nanosecond)
	_, ok := c.Get("mempool-stats")
	assert.True(t, ok)

	// At exactly the deadline the entry is expired.
	now = base.Add(time.Minute)
	_, ok = c.Get("mempool-stats")
	assert.False(t, ok)

	// The expired entry was removed, not just hidden.
	assert.Equal(t, 0, c.Len())
}

func TestSet_NonPositiveTTLIsNoOp(t *testing.T) {
	c, err := cache.New(16)
	require.NoError(t, err)

	c.Set("a", 1, 0)
	c.Set("b", 2, -time.Second)

	assert.Equal(t, 0, c.Len())
}

func TestSet_OverwriteResetsDeadline(t *testing.T) {
	c, err := cache.New(16)
	require.NoError(t, err)

	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	now := base
	c.SetNowFunc(func() time.Time { return now })

	c.Set("price-stats", "old", time.Minute)

	now = base.Add(50 * time.Second)
	c.Set("price-stats", "new", time.Minute)

	// Past the first deadline but within the second.
	now = base.Add(90 * time.Second)
	got, ok := c.Get("price-stats")
	require.True(t, ok)
	assert.Equal(t, "new", got)
}

func TestEviction_PrefersExpiredEntries(t *testing.T) {
	c, err := cache.New(2)
	require.NoError(t, err)

	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	now := base
	c.SetNowFunc(func() time.Time { return now })

	c.Set("short", 1, time.Second)
	c.Set("long", 2, time.Hour)

	// "short" has expired; inserting a third entry must evict it and keep "long".
	now = base.Add(2 * time.Second)
	c.Set("fresh", 3, time.Minute)

	_, ok := c.Get("long")
	assert.True(t, ok, "unexpired entry should survive eviction")
	_, ok = c.Get("fresh")
	assert.True(t, ok)
	_, ok = c.Get("short")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestEviction_DropsEntryClosestToDeadline(t *testing.T) {
	c, err := cache.New(2)
	require.NoError(t, err)

	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	c.SetNowFunc(func() time.Time { return base })

	c.Set("soon", 1, time.Minute)
	c.Set("later", 2, time.Hour)
	c.Set("fresh", 3, time.Hour)

	_, ok := c.Get("soon")
	assert.False(t, ok, "entry closest to expiry should be evicted first")
	_, ok = c.Get("later")
	assert.True(t, ok)
	_, ok = c.Get("fresh")
	assert.True(t, ok)
}

func TestEviction_OverwriteDoesNotEvict(t *testing.T) {
	c, err := cache.New(2)
	require.NoError(t, err)

	c.Set("a", 1, time.Hour)
	c.Set("b", 2, time.Hour)
	c.Set("a", 10, time.Hour)

	assert.Equal(t, 2, c.Len())
	got, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestPurge_ClearsEntriesKeepsCounters(t *testing.T) {
	c, err := cache.New(16)
	require.NoError(t, err)

	c.Set("a", 1, time.Hour)
	_, _ = c.Get("a")
	_, _ = c.Get("missing")

	c.Purge()

	assert.Equal(t, 0, c.Len())
	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestStats_CountsHitsAndMisses(t *testing.T) {
	c, err := cache.New(16)
	require.NoError(t, err)

	c.Set("a", 1, time.Hour)

	_, _ = c.Get("a")
	_, _ = c.Get("a")
	_, _ = c.Get("absent")

	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestStats_ExpiredReadCountsAsMiss(t *testing.T) {
	c, err := cache.New(16)
	require.NoError(t, err)

	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	now := base
	c.SetNowFunc(func() time.Time { return now })

	c.Set("a", 1, time.Second)
	now = base.Add(time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, uint64(1), c.Stats().Misses)
}

func TestKey_ParameterOrderDoesNotMatter(t *testing.T) {
	a := cache.Key("blocks", map[string]string{"page": "2", "page_size": "50"})
	b := cache.Key("blocks", map[string]string{"page_size": "50", "page": "2"})
	assert.Equal(t, a, b)
}

func TestKey_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		params   map[string]string
		want     string
	}{
		{"no params", "halving", nil, "halving"},
		{"empty params", "halving", map[string]string{}, "halving"},
		{"single param", "pools-stats", map[string]string{"limit": "10"}, "pools-stats?limit=10"},
		{
			"sorted params",
			"hashrate-history",
			map[string]string{"to": "2026-08-24", "from": "2026-08-01"},
			"hashrate-history?from=2026-08-01&to=2026-08-24",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cache.Key(tt.endpoint, tt.params))
		})
	}
}

func TestKey_DistinctParamsDistinctKeys(t *testing.T) {
	a := cache.Key("blocks", map[string]string{"page": "1"})
	b := cache.Key("blocks", map[string]string{"page": "2"})
	assert.NotEqual(t, a, b)
}

func TestConcurrentAccess(t *testing.T) {
	c, err := cache.New(64)
	require.NoError(t, err)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("key-%d", j%32)
				c.Set(key, n, time.Minute)
				_, _ = c.Get(key)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	assert.LessOrEqual(t, c.Len(), 64)
}
