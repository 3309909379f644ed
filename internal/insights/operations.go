// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package insights

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/cache"
	inserr "github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/errors"
)

const dayLayout = "2006-01-02"

// HashrateStats returns the network hashrate snapshot.
func (c *Client) HashrateStats(ctx context.Context) (*HashrateStats, error) {
	return getEndpoint[HashrateStats](ctx, c, epHashrateStats, nil)
}

// DifficultyStats returns the current difficulty epoch state.
func (c *Client) DifficultyStats(ctx context.Context) (*DifficultyStats, error) {
	return getEndpoint[DifficultyStats](ctx, c, epDifficultyStats, nil)
}

// MempoolStats returns the mempool congestion snapshot.
func (c *Client) MempoolStats(ctx context.Context) (*MempoolStats, error) {
	return getEndpoint[MempoolStats](ctx, c, epMempoolStats, nil)
}

// PriceStats returns the spot price. An empty currency selects the
// upstream default (USD).
func (c *Client) PriceStats(ctx context.Context, currency string) (*PriceStats, error) {
	cur, err := normalizeCurrency(currency)
	if err != nil {
		return nil, err
	}
	var params map[string]string
	if cur != "" {
		params = map[string]string{"currency": cur}
	}
	return getEndpoint[PriceStats](ctx, c, epPriceStats, params)
}

// Blocks returns one page of recently mined blocks. Pages start at 1;
// pageSize must be between 1 and 100.
func (c *Client) Blocks(ctx context.Context, page, pageSize int) (*BlocksPage, error) {
	if page < 1 {
		return nil, inserr.Errorf(inserr.CodeUpstreamRequestInvalid, "page must be at least 1, got %d", page)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, inserr.Errorf(inserr.CodeUpstreamRequestInvalid, "page_size must be between 1 and 100, got %d", pageSize)
	}
	params := map[string]string{
		"page":      strconv.Itoa(page),
		"page_size": strconv.Itoa(pageSize),
	}
	return getEndpoint[BlocksPage](ctx, c, epBlocks, params)
}

// Halving returns the countdown to the next subsidy halving.
func (c *Client) Halving(ctx context.Context) (*Halving, error) {
	return getEndpoint[Halving](ctx, c, epHalving, nil)
}

// PoolsStats returns the pool distribution. A limit of 0 selects the
// upstream default; otherwise it must be between 1 and 100.
func (c *Client) PoolsStats(ctx context.Context, limit int) (*PoolsStats, error) {
	var params map[string]string
	if limit != 0 {
		if limit < 1 || limit > 100 {
			return nil, inserr.Errorf(inserr.CodeUpstreamRequestInvalid, "limit must be between 1 and 100, got %d", limit)
		}
		params = map[string]string{"limit": strconv.Itoa(limit)}
	}
	return getEndpoint[PoolsStats](ctx, c, epPoolsStats, params)
}

// HashrateHistory returns the daily hashrate series for [from, to].
// Both bounds are YYYY-MM-DD dates; leaving both empty selects the
// upstream default window.
func (c *Client) HashrateHistory(ctx context.Context, from, to string) (*HashrateHistory, error) {
	var params map[string]string
	switch {
	case from == "" && to == "":
		// upstream default window
	case from == "" || to == "":
		return nil, inserr.New(inserr.CodeUpstreamRequestInvalid, "from and to must be provided together")
	default:
		fromDay, err := parseDay("from", from)
		if err != nil {
			return nil, err
		}
		toDay, err := parseDay("to", to)
		if err != nil {
			return nil, err
		}
		if toDay.Before(fromDay) {
			return nil, inserr.Errorf(inserr.CodeUpstreamRequestInvalid, "from %s is after to %s", from, to)
		}
		params = map[string]string{"from": from, "to": to}
	}
	return getEndpoint[HashrateHistory](ctx, c, epHashrateHistory, params)
}

// DifficultyHistory returns past retargets, most recent first. A limit of
// 0 selects the upstream default; otherwise it must be between 1 and 100.
func (c *Client) DifficultyHistory(ctx context.Context, limit int) (*DifficultyHistory, error) {
	var params map[string]string
	if limit != 0 {
		if limit < 1 || limit > 100 {
			return nil, inserr.Errorf(inserr.CodeUpstreamRequestInvalid, "limit must be between 1 and 100, got %d", limit)
		}
		params = map[string]string{"limit": strconv.Itoa(limit)}
	}
	return getEndpoint[DifficultyHistory](ctx, c, epDifficultyHistory, params)
}

// Hashprice returns expected revenue per unit of hashrate. An empty
// currency selects the upstream default (USD).
func (c *Client) Hashprice(ctx context.Context, currency string) (*Hashprice, error) {
	cur, err := normalizeCurrency(currency)
	if err != nil {
		return nil, err
	}
	var params map[string]string
	if cur != "" {
		params = map[string]string{"currency": cur}
	}
	return getEndpoint[Hashprice](ctx, c, epHashprice, params)
}

// FeesPrediction returns fee estimates per confirmation target.
func (c *Client) FeesPrediction(ctx context.Context) (*FeesPrediction, error) {
	return getEndpoint[FeesPrediction](ctx, c, epFeesPrediction, nil)
}

// ProfitabilityCalculator prices a mining setup.
func (c *Client) ProfitabilityCalculator(ctx context.Context, p ProfitabilityParams) (*Profitability, error) {
	if p.HashrateTH <= 0 {
		return nil, inserr.Errorf(inserr.CodeUpstreamRequestInvalid, "hashrate_th must be positive, got %g", p.HashrateTH)
	}
	if p.PowerW <= 0 {
		return nil, inserr.Errorf(inserr.CodeUpstreamRequestInvalid, "power_w must be positive, got %g", p.PowerW)
	}
	if p.ElectricityUSDKWh < 0 {
		return nil, inserr.Errorf(inserr.CodeUpstreamRequestInvalid, "electricity_usd_kwh must not be negative, got %g", p.ElectricityUSDKWh)
	}
	if p.PoolFeePercent < 0 || p.PoolFeePercent >= 100 {
		return nil, inserr.Errorf(inserr.CodeUpstreamRequestInvalid, "pool_fee_percent must be in [0, 100), got %g", p.PoolFeePercent)
	}

	params := map[string]string{
		"hashrate_th":         formatFloat(p.HashrateTH),
		"power_w":             formatFloat(p.PowerW),
		"electricity_usd_kwh": formatFloat(p.ElectricityUSDKWh),
		"pool_fee_percent":    formatFloat(p.PoolFeePercent),
	}
	return getEndpoint[Profitability](ctx, c, epProfitability, params)
}

// HardwareStats looks up spec sheets for miner models. Model names are
// trimmed, upper-cased, de-duplicated, and sorted, so equivalent requests
// share one cache entry.
func (c *Client) HardwareStats(ctx context.Context, models []string) (*HardwareStats, error) {
	normalized := normalizeModels(models)
	if len(normalized) == 0 {
		return nil, inserr.New(inserr.CodeUpstreamRequestInvalid, "at least one hardware model is required")
	}

	key := cache.Key(EndpointHardwareStats, map[string]string{"models": strings.Join(normalized, ",")})
	body := map[string][]string{"models": normalized}
	return postEndpoint[HardwareStats](ctx, c, epHardwareStats, key, body)
}

func parseDay(name, value string) (time.Time, error) {
	day, err := time.Parse(dayLayout, value)
	if err != nil {
		return time.Time{}, inserr.Errorf(inserr.CodeUpstreamRequestInvalid,
			"%s must be a YYYY-MM-DD date, got %q", name, value)
	}
	return day, nil
}

func normalizeCurrency(currency string) (string, error) {
	if currency == "" {
		return "", nil
	}
	cur := strings.ToUpper(strings.TrimSpace(currency))
	if len(cur) != 3 {
		return "", inserr.Errorf(inserr.CodeUpstreamRequestInvalid,
			"currency must be a 3-letter code, got %q", currency)
	}
	for _, r := range cur {
		if r < 'A' || r > 'Z' {
			return "", inserr.Errorf(inserr.CodeUpstreamRequestInvalid,
				"currency must be a 3-letter code, got %q", currency)
		}
	}
	return cur, nil
}

func normalizeModels(models []string) []string {
	seen := make(map[string]bool, len(models))
	out := make([]string, 0, len(models))
	for _, m := range models {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
