// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package insights

import "time"

// endpoint describes one upstream API operation: its cache identity, path,
// freshness window, and the top-level keys a payload must carry to be
// considered well-formed.
type endpoint struct {
	name     string
	path     string
	ttl      time.Duration
	required []string
}

// Endpoint names double as cache-key prefixes and metric labels.
const (
	EndpointHashrateStats     = "hashrate-stats"
	EndpointDifficultyStats   = "difficulty-stats"
	EndpointMempoolStats      = "mempool-stats"
	EndpointPriceStats        = "price-stats"
	EndpointBlocks            = "blocks"
	EndpointHalving           = "halving"
	EndpointPoolsStats        = "pools-stats"
	EndpointHashrateHistory   = "hashrate-history"
	EndpointDifficultyHistory = "difficulty-history"
	EndpointHashprice         = "hashprice"
	EndpointFeesPrediction    = "fees-prediction"
	EndpointProfitability     = "profitability-calculator"
	EndpointHardwareStats     = "hardware-stats"
)

var (
	epHashrateStats = endpoint{
		name:     EndpointHashrateStats,
		path:     "/v1.0/hashrate-stats",
		ttl:      5 * time.Minute,
		required: []string{"current_hashrate", "average_hashrate_30", "unit", "timestamp"},
	}
	epDifficultyStats = endpoint{
		name:     EndpointDifficultyStats,
		path:     "/v1.0/difficulty-stats",
		ttl:      30 * time.Minute,
		required: []string{"difficulty", "blocks_to_retarget", "estimated_change_percent", "retarget_date"},
	}
	epMempoolStats = endpoint{
		name:     EndpointMempoolStats,
		path:     "/v1.0/mempool-stats",
		ttl:      time.Minute,
		required: []string{"tx_count", "avg_fee_rate", "total_vsize", "timestamp"},
	}
	epPriceStats = endpoint{
		name:     EndpointPriceStats,
		path:     "/v1.0/price-stats",
		ttl:      2 * time.Minute,
		required: []string{"price", "currency", "change_24h_percent", "timestamp"},
	}
	epBlocks = endpoint{
		name:     EndpointBlocks,
		path:     "/v1.0/blocks",
		ttl:      2 * time.Minute,
		required: []string{"blocks", "page", "page_size", "total"},
	}
	epHalving = endpoint{
		name:     EndpointHalving,
		path:     "/v1.0/halving",
		ttl:      10 * time.Minute,
		required: []string{"blocks_remaining", "estimated_date", "current_reward", "next_reward"},
	}
	epPoolsStats = endpoint{
		name:     EndpointPoolsStats,
		path:     "/v1.0/pools-stats",
		ttl:      10 * time.Minute,
		required: []string{"pools"},
	}
	epHashrateHistory = endpoint{
		name:     EndpointHashrateHistory,
		path:     "/v2.0/hashrate-history",
		ttl:      30 * time.Minute,
		required: []string{"samples", "unit"},
	}
	epDifficultyHistory = endpoint{
		name:     EndpointDifficultyHistory,
		path:     "/v2.0/difficulty-history",
		ttl:      time.Hour,
		required: []string{"adjustments"},
	}
	epHashprice = endpoint{
		name:     EndpointHashprice,
		path:     "/v2.0/hashprice",
		ttl:      10 * time.Minute,
		required: []string{"per_th_day", "per_ph_day", "currency", "timestamp"},
	}
	epFeesPrediction = endpoint{
		name:     EndpointFeesPrediction,
		path:     "/v2.0/fees-prediction",
		ttl:      time.Minute,
		required: []string{"fast", "medium", "slow", "unit"},
	}
	epProfitability = endpoint{
		name:     EndpointProfitability,
		path:     "/v2.0/profitability-calculator",
		ttl:      10 * time.Minute,
		required: []string{"daily_revenue_usd", "daily_cost_usd", "daily_profit_usd", "break_even_usd_kwh"},
	}
	epHardwareStats = endpoint{
		name:     EndpointHardwareStats,
		path:     "/v2.0/hardware-stats",
		ttl:      24 * time.Hour,
		required: []string{"hardware"},
	}
)

// allEndpoints is the catalogue in display order.
var allEndpoints = []endpoint{
	epHashrateStats,
	epDifficultyStats,
	epMempoolStats,
	epPriceStats,
	epBlocks,
	epHalving,
	epPoolsStats,
	epHashrateHistory,
	epDifficultyHistory,
	epHashprice,
	epFeesPrediction,
	epProfitability,
	epHardwareStats,
}

// DefaultTTLs returns the built-in freshness window per endpoint.
func DefaultTTLs() map[string]time.Duration {
	ttls := make(map[string]time.Duration, len(allEndpoints))
	for _, ep := range allEndpoints {
		ttls[ep.name] = ep.ttl
	}
	return ttls
}
