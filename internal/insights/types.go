// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package insights

// HashrateStats is the network-wide hashrate snapshot.
type HashrateStats struct {
	CurrentHashrate   float64 `json:"current_hashrate"`
	AverageHashrate30 float64 `json:"average_hashrate_30"`
	Unit              string  `json:"unit"`
	Timestamp         int64   `json:"timestamp"`
}

// DifficultyStats describes the current difficulty epoch.
type DifficultyStats struct {
	Difficulty             float64 `json:"difficulty"`
	BlocksToRetarget       int     `json:"blocks_to_retarget"`
	EstimatedChangePercent float64 `json:"estimated_change_percent"`
	RetargetDate           string  `json:"retarget_date"`
	Epoch                  int64   `json:"epoch,omitempty"`
}

// MempoolStats is the mempool congestion snapshot.
type MempoolStats struct {
	TxCount    int     `json:"tx_count"`
	AvgFeeRate float64 `json:"avg_fee_rate"`
	TotalVsize int64   `json:"total_vsize"`
	Timestamp  int64   `json:"timestamp"`
}

// PriceStats is the spot price snapshot in one currency.
type PriceStats struct {
	Price            float64 `json:"price"`
	Currency         string  `json:"currency"`
	Change24hPercent float64 `json:"change_24h_percent"`
	Timestamp        int64   `json:"timestamp"`
}

// Block is one mined block in a blocks page.
type Block struct {
	Height    int64  `json:"height"`
	Hash      string `json:"hash"`
	Timestamp int64  `json:"timestamp"`
	TxCount   int    `json:"tx_count"`
	SizeBytes int64  `json:"size_bytes"`
	Pool      string `json:"pool,omitempty"`
}

// BlocksPage is one page of recently mined blocks.
type BlocksPage struct {
	Blocks   []Block `json:"blocks"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
	Total    int64   `json:"total"`
}

// Halving describes the countdown to the next subsidy halving.
type Halving struct {
	BlocksRemaining int64   `json:"blocks_remaining"`
	EstimatedDate   string  `json:"estimated_date"`
	CurrentReward   float64 `json:"current_reward"`
	NextReward      float64 `json:"next_reward"`
}

// PoolShare is one mining pool's slice of recent blocks.
type PoolShare struct {
	Name         string  `json:"name"`
	SharePercent float64 `json:"share_percent"`
	Blocks24h    int     `json:"blocks_24h"`
}

// PoolsStats is the pool distribution over a trailing window.
type PoolsStats struct {
	Pools      []PoolShare `json:"pools"`
	WindowDays int         `json:"window_days,omitempty"`
}

// HashrateSample is one point in a hashrate history series.
type HashrateSample struct {
	Date     string  `json:"date"`
	Hashrate float64 `json:"hashrate"`
}

// HashrateHistory is a daily hashrate series.
type HashrateHistory struct {
	Samples []HashrateSample `json:"samples"`
	Unit    string           `json:"unit"`
}

// DifficultyAdjustment is one historical retarget.
type DifficultyAdjustment struct {
	Date          string  `json:"date"`
	Difficulty    float64 `json:"difficulty"`
	ChangePercent float64 `json:"change_percent"`
	Height        int64   `json:"height"`
}

// DifficultyHistory lists past difficulty retargets, most recent first.
type DifficultyHistory struct {
	Adjustments []DifficultyAdjustment `json:"adjustments"`
}

// Hashprice is the expected revenue per unit of hashrate.
type Hashprice struct {
	PerTHDay  float64 `json:"per_th_day"`
	PerPHDay  float64 `json:"per_ph_day"`
	Currency  string  `json:"currency"`
	Timestamp int64   `json:"timestamp"`
}

// FeesPrediction holds fee-rate estimates per confirmation target.
type FeesPrediction struct {
	Fast   float64 `json:"fast"`
	Medium float64 `json:"medium"`
	Slow   float64 `json:"slow"`
	Unit   string  `json:"unit"`
}

// ProfitabilityParams tunes the profitability calculator.
type ProfitabilityParams struct {
	HashrateTH        float64
	PowerW            float64
	ElectricityUSDKWh float64
	PoolFeePercent    float64
}

// Profitability is the calculator's daily economics result.
type Profitability struct {
	DailyRevenueUSD float64 `json:"daily_revenue_usd"`
	DailyCostUSD    float64 `json:"daily_cost_usd"`
	DailyProfitUSD  float64 `json:"daily_profit_usd"`
	BreakEvenUSDKWh float64 `json:"break_even_usd_kwh"`
}

// HardwareModel is the spec sheet for one miner model.
type HardwareModel struct {
	Model         string  `json:"model"`
	HashrateTH    float64 `json:"hashrate_th"`
	PowerW        float64 `json:"power_w"`
	EfficiencyJTH float64 `json:"efficiency_j_th"`
}

// HardwareStats answers a hardware lookup. Models the upstream does not
// recognize come back in Missing.
type HardwareStats struct {
	Hardware []HardwareModel `json:"hardware"`
	Missing  []string        `json:"missing,omitempty"`
}
