// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package server

import (
	"context"
	"net/http"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/insights"
	inserr "github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/errors"
	"github.com/danielgtaylor/huma/v2"
)

// toolError converts a client or aggregation error into a huma status error
// using the taxonomy's status mapping.
func toolError(err error) error {
	return huma.NewError(inserr.HTTPStatus(err), err.Error())
}

func (s *Server) registerToolRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-hashrate-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools/hashrate-stats",
		Summary:     "Network hashrate snapshot",
		Tags:        []string{"network"},
	}, s.handleHashrateStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-difficulty-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools/difficulty-stats",
		Summary:     "Current difficulty epoch",
		Tags:        []string{"network"},
	}, s.handleDifficultyStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-mempool-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools/mempool-stats",
		Summary:     "Mempool congestion snapshot",
		Tags:        []string{"network"},
	}, s.handleMempoolStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-price-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools/price-stats",
		Summary:     "Bitcoin spot price",
		Tags:        []string{"economics"},
	}, s.handlePriceStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-blocks",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools/blocks",
		Summary:     "Recently mined blocks",
		Tags:        []string{"mining"},
	}, s.handleBlocks)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-halving",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools/halving",
		Summary:     "Next halving countdown",
		Tags:        []string{"mining"},
	}, s.handleHalving)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-pools-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools/pools-stats",
		Summary:     "Mining pool distribution",
		Tags:        []string{"mining"},
	}, s.handlePoolsStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-hashrate-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools/hashrate-history",
		Summary:     "Daily hashrate series",
		Tags:        []string{"network"},
	}, s.handleHashrateHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-difficulty-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools/difficulty-history",
		Summary:     "Past difficulty retargets",
		Tags:        []string{"network"},
	}, s.handleDifficultyHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-hashprice",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools/hashprice",
		Summary:     "Revenue per unit of hashrate",
		Tags:        []string{"economics"},
	}, s.handleHashprice)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-fees-prediction",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools/fees-prediction",
		Summary:     "Fee estimates per confirmation target",
		Tags:        []string{"economics"},
	}, s.handleFeesPrediction)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-profitability",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools/profitability-calculator",
		Summary:     "Mining setup economics",
		Tags:        []string{"economics"},
	}, s.handleProfitability)

	huma.Register(s.api, huma.Operation{
		OperationID: "lookup-hardware-stats",
		Method:      http.MethodPost,
		Path:        "/api/v1/tools/hardware-stats",
		Summary:     "Miner model spec sheets",
		Tags:        []string{"mining"},
	}, s.handleHardwareStats)
}

// --- Request/Response types for huma ---

type hashrateStatsOutput struct {
	Body insights.HashrateStats
}

type difficultyStatsOutput struct {
	Body insights.DifficultyStats
}

type mempoolStatsOutput struct {
	Body insights.MempoolStats
}

type priceStatsInput struct {
	Currency string `query:"currency" doc:"3-letter currency code, defaults to USD"`
}
type priceStatsOutput struct {
	Body insights.PriceStats
}

type blocksInput struct {
	Page     int `query:"page" default:"1" doc:"Page number, starting at 1"`
	PageSize int `query:"page_size" default:"10" doc:"Blocks per page (1-100)"`
}
type blocksOutput struct {
	Body insights.BlocksPage
}

type halvingOutput struct {
	Body insights.Halving
}

type poolsStatsInput struct {
	Limit int `query:"limit" doc:"Number of pools to return (1-100), 0 for the upstream default"`
}
type poolsStatsOutput struct {
	Body insights.PoolsStats
}

type hashrateHistoryInput struct {
	From string `query:"from" doc:"Window start (YYYY-MM-DD)"`
	To   string `query:"to" doc:"Window end (YYYY-MM-DD)"`
}
type hashrateHistoryOutput struct {
	Body insights.HashrateHistory
}

type difficultyHistoryInput struct {
	Limit int `query:"limit" doc:"Number of retargets to return (1-100), 0 for the upstream default"`
}
type difficultyHistoryOutput struct {
	Body insights.DifficultyHistory
}

type hashpriceInput struct {
	Currency string `query:"currency" doc:"3-letter currency code, defaults to USD"`
}
type hashpriceOutput struct {
	Body insights.Hashprice
}

type feesPredictionOutput struct {
	Body insights.FeesPrediction
}

type profitabilityInput struct {
	HashrateTH        float64 `query:"hashrate_th" doc:"Fleet hashrate in TH/s"`
	PowerW            float64 `query:"power_w" doc:"Power draw in watts"`
	ElectricityUSDKWh float64 `query:"electricity_usd_kwh" doc:"Electricity price in USD/kWh"`
	PoolFeePercent    float64 `query:"pool_fee_percent" doc:"Pool fee percentage"`
}
type profitabilityOutput struct {
	Body insights.Profitability
}

type hardwareStatsInput struct {
	Body struct {
		Models []string `json:"models" doc:"Miner model names to look up"`
	}
}
type hardwareStatsOutput struct {
	Body insights.HardwareStats
}

// --- Handlers ---

func (s *Server) handleHashrateStats(ctx context.Context, _ *struct{}) (*hashrateStatsOutput, error) {
	stats, err := s.deps.Client.HashrateStats(ctx)
	if err != nil {
		return nil, toolError(err)
	}
	return &hashrateStatsOutput{Body: *stats}, nil
}

func (s *Server) handleDifficultyStats(ctx context.Context, _ *struct{}) (*difficultyStatsOutput, error) {
	stats, err := s.deps.Client.DifficultyStats(ctx)
	if err != nil {
		return nil, toolError(err)
	}
	return &difficultyStatsOutput{Body: *stats}, nil
}

func (s *Server) handleMempoolStats(ctx context.Context, _ *struct{}) (*mempoolStatsOutput, error) {
	stats, err := s.deps.Client.MempoolStats(ctx)
	if err != nil {
		return nil, toolError(err)
	}
	return &mempoolStatsOutput{Body: *stats}, nil
}

func (s *Server) handlePriceStats(ctx context.Context, input *priceStatsInput) (*priceStatsOutput, error) {
	stats, err := s.deps.Client.PriceStats(ctx, input.Currency)
	if err != nil {
		return nil, toolError(err)
	}
	return &priceStatsOutput{Body: *stats}, nil
}

func (s *Server) handleBlocks(ctx context.Context, input *blocksInput) (*blocksOutput, error) {
	page, err := s.deps.Client.Blocks(ctx, input.Page, input.PageSize)
	if err != nil {
		return nil, toolError(err)
	}
	return &blocksOutput{Body: *page}, nil
}

func (s *Server) handleHalving(ctx context.Context, _ *struct{}) (*halvingOutput, error) {
	halving, err := s.deps.Client.Halving(ctx)
	if err != nil {
		return nil, toolError(err)
	}
	return &halvingOutput{Body: *halving}, nil
}

func (s *Server) handlePoolsStats(ctx context.Context, input *poolsStatsInput) (*poolsStatsOutput, error) {
	pools, err := s.deps.Client.PoolsStats(ctx, input.Limit)
	if err != nil {
		return nil, toolError(err)
	}
	return &poolsStatsOutput{Body: *pools}, nil
}

func (s *Server) handleHashrateHistory(ctx context.Context, input *hashrateHistoryInput) (*hashrateHistoryOutput, error) {
	history, err := s.deps.Client.HashrateHistory(ctx, input.From, input.To)
	if err != nil {
		return nil, toolError(err)
	}
	return &hashrateHistoryOutput{Body: *history}, nil
}

func (s *Server) handleDifficultyHistory(ctx context.Context, input *difficultyHistoryInput) (*difficultyHistoryOutput, error) {
	history, err := s.deps.Client.DifficultyHistory(ctx, input.Limit)
	if err != nil {
		return nil, toolError(err)
	}
	return &difficultyHistoryOutput{Body: *history}, nil
}

func (s *Server) handleHashprice(ctx context.Context, input *hashpriceInput) (*hashpriceOutput, error) {
	hashprice, err := s.deps.Client.Hashprice(ctx, input.Currency)
	if err != nil {
		return nil, toolError(err)
	}
	return &hashpriceOutput{Body: *hashprice}, nil
}

func (s *Server) handleFeesPrediction(ctx context.Context, _ *struct{}) (*feesPredictionOutput, error) {
	fees, err := s.deps.Client.FeesPrediction(ctx)
	if err != nil {
		return nil, toolError(err)
	}
	return &feesPredictionOutput{Body: *fees}, nil
}

func (s *Server) handleProfitability(ctx context.Context, input *profitabilityInput) (*profitabilityOutput, error) {
	result, err := s.deps.Client.ProfitabilityCalculator(ctx, insights.ProfitabilityParams{
		HashrateTH:        input.HashrateTH,
		PowerW:            input.PowerW,
		ElectricityUSDKWh: input.ElectricityUSDKWh,
		PoolFeePercent:    input.PoolFeePercent,
	})
	if err != nil {
		return nil, toolError(err)
	}
	return &profitabilityOutput{Body: *result}, nil
}

func (s *Server) handleHardwareStats(ctx context.Context, input *hardwareStatsInput) (*hardwareStatsOutput, error) {
	stats, err := s.deps.Client.HardwareStats(ctx, input.Body.Models)
	if err != nil {
		return nil, toolError(err)
	}
	return &hardwareStatsOutput{Body: *stats}, nil
}
