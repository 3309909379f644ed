// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package aggregate

import (
	"context"
	"time"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/insights"
	inserr "github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/errors"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/health"
)

// Sub-request names used by the composite scenarios. Renderers key their
// missing-source annotations off these.
const (
	SubHashrate   = "hashrate"
	SubDifficulty = "difficulty"
	SubMempool    = "mempool"
	SubPrice      = "price"
	SubHistory    = "hashrate-history"
	SubHashprice  = "hashprice"
	SubPools      = "pools"
	SubBlocks     = "blocks"
	SubFees       = "fees"
)

// historyWindowDays is the trailing window requested for optional
// hashrate-history sub-requests.
const historyWindowDays = 30

// dashboardPoolLimit caps the pool table on the mining dashboard.
const dashboardPoolLimit = 10

// dashboardBlockPageSize is the number of recent blocks shown on the
// mining dashboard.
const dashboardBlockPageSize = 10

// Service runs the composite scenarios over an endpoint client.
type Service struct {
	client  *insights.Client
	runner  *Runner
	nowFunc func() time.Time
}

// NewService wires a scenario service over client and runner.
func NewService(client *insights.Client, runner *Runner) (*Service, error) {
	if client == nil {
		return nil, inserr.New(inserr.CodeAggregateRequestInvalid, "endpoint client must not be nil")
	}
	if runner == nil {
		return nil, inserr.New(inserr.CodeAggregateRequestInvalid, "runner must not be nil")
	}
	return &Service{client: client, runner: runner, nowFunc: time.Now}, nil
}

// SetNowFunc overrides the clock used to derive history windows (for testing).
func (s *Service) SetNowFunc(fn func() time.Time) {
	s.nowFunc = fn
}

// OverviewOptions tunes a NetworkOverview run.
type OverviewOptions struct {
	// Currency selects the fiat currency for the price sub-request.
	// Empty means USD.
	Currency string

	// IncludeHistory adds a trailing 30-day hashrate-history sub-request.
	IncludeHistory bool
}

// Overview re-exposes whatever arrived for a network overview. A nil field
// means that sub-request failed or was not included; Report.Failed carries
// the reason.
type Overview struct {
	Report     *Report
	Hashrate   *insights.HashrateStats
	Difficulty *insights.DifficultyStats
	Mempool    *insights.MempoolStats
	Price      *insights.PriceStats
	History    *insights.HashrateHistory
}

// NetworkOverview aggregates the network-wide statistics: hashrate and
// difficulty are critical, mempool and price degrade gracefully.
func (s *Service) NetworkOverview(ctx context.Context, opts OverviewOptions) (*Overview, error) {
	subs := []SubRequest{
		{Name: SubHashrate, Critical: true, Fetch: func(ctx context.Context) (any, error) {
			return s.client.HashrateStats(ctx)
		}},
		{Name: SubDifficulty, Critical: true, Fetch: func(ctx context.Context) (any, error) {
			return s.client.DifficultyStats(ctx)
		}},
		{Name: SubMempool, Fetch: func(ctx context.Context) (any, error) {
			return s.client.MempoolStats(ctx)
		}},
		{Name: SubPrice, Fetch: func(ctx context.Context) (any, error) {
			return s.client.PriceStats(ctx, opts.Currency)
		}},
	}
	if opts.IncludeHistory {
		subs = append(subs, s.historySub())
	}

	report, err := s.runner.Run(ctx, "network-overview", subs)
	if err != nil {
		return nil, err
	}

	return &Overview{
		Report:     report,
		Hashrate:   payload[insights.HashrateStats](report, SubHashrate),
		Difficulty: payload[insights.DifficultyStats](report, SubDifficulty),
		Mempool:    payload[insights.MempoolStats](report, SubMempool),
		Price:      payload[insights.PriceStats](report, SubPrice),
		History:    payload[insights.HashrateHistory](report, SubHistory),
	}, nil
}

// DashboardOptions tunes a MiningDashboard run.
type DashboardOptions struct {
	// Currency selects the fiat currency for the hashprice sub-request.
	// Empty means USD.
	Currency string
}

// Dashboard re-exposes whatever arrived for a mining dashboard.
type Dashboard struct {
	Report    *Report
	Hashprice *insights.Hashprice
	Pools     *insights.PoolsStats
	Blocks    *insights.BlocksPage
	Fees      *insights.FeesPrediction
}

// MiningDashboard aggregates the miner-economics view: hashprice is
// critical, pool distribution, recent blocks, and fee predictions degrade
// gracefully.
func (s *Service) MiningDashboard(ctx context.Context, opts DashboardOptions) (*Dashboard, error) {
	subs := []SubRequest{
		{Name: SubHashprice, Critical: true, Fetch: func(ctx context.Context) (any, error) {
			return s.client.Hashprice(ctx, opts.Currency)
		}},
		{Name: SubPools, Fetch: func(ctx context.Context) (any, error) {
			return s.client.PoolsStats(ctx, dashboardPoolLimit)
		}},
		{Name: SubBlocks, Fetch: func(ctx context.Context) (any, error) {
			return s.client.Blocks(ctx, 1, dashboardBlockPageSize)
		}},
		{Name: SubFees, Fetch: func(ctx context.Context) (any, error) {
			return s.client.FeesPrediction(ctx)
		}},
	}

	report, err := s.runner.Run(ctx, "mining-dashboard", subs)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Report:    report,
		Hashprice: payload[insights.Hashprice](report, SubHashprice),
		Pools:     payload[insights.PoolsStats](report, SubPools),
		Blocks:    payload[insights.BlocksPage](report, SubBlocks),
		Fees:      payload[insights.FeesPrediction](report, SubFees),
	}, nil
}

// HealthOptions tunes a NetworkHealth run.
type HealthOptions struct {
	// IncludeHistory adds a trailing 30-day hashrate-history sub-request,
	// which can earn the hashrate component a stability bonus.
	IncludeHistory bool
}

// HealthSnapshot pairs the aggregation report with the derived score.
type HealthSnapshot struct {
	Report    *Report
	Breakdown health.Breakdown
}

// NetworkHealth aggregates the scorer's inputs and evaluates them. Only
// hashrate is critical; missing samples reach the scorer as nil inputs.
func (s *Service) NetworkHealth(ctx context.Context, opts HealthOptions) (*HealthSnapshot, error) {
	subs := []SubRequest{
		{Name: SubHashrate, Critical: true, Fetch: func(ctx context.Context) (any, error) {
			return s.client.HashrateStats(ctx)
		}},
		{Name: SubMempool, Fetch: func(ctx context.Context) (any, error) {
			return s.client.MempoolStats(ctx)
		}},
		{Name: SubDifficulty, Fetch: func(ctx context.Context) (any, error) {
			return s.client.DifficultyStats(ctx)
		}},
	}
	if opts.IncludeHistory {
		subs = append(subs, s.historySub())
	}

	report, err := s.runner.Run(ctx, "network-health", subs)
	if err != nil {
		return nil, err
	}

	return &HealthSnapshot{
		Report:    report,
		Breakdown: health.Evaluate(healthInput(report)),
	}, nil
}

// historySub builds the optional trailing-window history sub-request.
func (s *Service) historySub() SubRequest {
	now := s.nowFunc().UTC()
	from := now.AddDate(0, 0, -historyWindowDays).Format("2006-01-02")
	to := now.Format("2006-01-02")

	return SubRequest{Name: SubHistory, Fetch: func(ctx context.Context) (any, error) {
		return s.client.HashrateHistory(ctx, from, to)
	}}
}

// healthInput converts whatever the report gathered into scorer inputs.
func healthInput(report *Report) health.Input {
	var in health.Input

	if h := payload[insights.HashrateStats](report, SubHashrate); h != nil {
		in.Hashrate = &health.HashrateSample{
			Current:   h.CurrentHashrate,
			Average30: h.AverageHashrate30,
		}
	}
	if m := payload[insights.MempoolStats](report, SubMempool); m != nil {
		in.Mempool = &health.MempoolSample{
			TxCount:    int64(m.TxCount),
			AvgFeeRate: m.AvgFeeRate,
		}
	}
	if d := payload[insights.DifficultyStats](report, SubDifficulty); d != nil {
		in.Difficulty = &health.DifficultySample{
			BlocksToRetarget:       d.BlocksToRetarget,
			EstimatedChangePercent: d.EstimatedChangePercent,
		}
	}
	if hist := payload[insights.HashrateHistory](report, SubHistory); hist != nil {
		in.History = make([]float64, 0, len(hist.Samples))
		for _, sample := range hist.Samples {
			in.History = append(in.History, sample.Hashrate)
		}
	}

	return in
}

// payload extracts a typed sub-request result from the report, or nil when
// the sub-request failed or was not part of the fan-out.
func payload[T any](report *Report, name string) *T {
	v, ok := report.Succeeded[name]
	if !ok {
		return nil
	}
	p, ok := v.(*T)
	if !ok {
		return nil
	}
	return p
}
