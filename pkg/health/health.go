// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

// Package health derives a 0-100 network health score from Bitcoin network
// statistics. The scorer is a pure function over whatever samples are
// present: a missing sample lowers (or neutralises) its component instead of
// producing an error, so partially aggregated data still scores.
package health

import (
	"fmt"
	"math"
)

// Component maxima. They sum to 100.
const (
	MaxHashrate        = 40
	MaxMempool         = 30
	MaxBlockProduction = 30
)

// State constants returned in Breakdown.State.
const (
	StateHealthy  = "healthy"
	StateDegraded = "degraded"
	StateCritical = "critical"
)

// Thresholds that map a total score to a health state.
const (
	ThresholdHealthy  = 85
	ThresholdDegraded = 60
)

// Alert severities.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Component names used in breakdowns and alerts.
const (
	ComponentHashrate        = "hashrate"
	ComponentMempool         = "mempool"
	ComponentBlockProduction = "block_production"
)

// HashrateSample is the hashrate input: the current network hashrate and its
// trailing 30-day average, in the same unit.
type HashrateSample struct {
	Current   float64
	Average30 float64
}

// MempoolSample is the mempool input.
type MempoolSample struct {
	TxCount    int64
	AvgFeeRate float64
}

// DifficultySample is the block-production input: blocks remaining until the
// next retarget and the predicted difficulty change in percent.
type DifficultySample struct {
	BlocksToRetarget       int
	EstimatedChangePercent float64
}

// Input holds the samples fed into Evaluate. A nil sample (or empty History)
// means the data point did not arrive; Evaluate degrades instead of failing.
type Input struct {
	Hashrate   *HashrateSample
	Mempool    *MempoolSample
	Difficulty *DifficultySample

	// History is an optional window of recent daily hashrate values. A
	// stable window (mean absolute deviation under 2% of its mean) earns
	// the hashrate component a small bonus.
	History []float64
}

// Component is one scored dimension of the breakdown.
type Component struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Max    int    `json:"max"`
	Detail string `json:"detail"`
}

// Alert flags a threshold crossing in the raw samples. Alerts are derived
// independently of the score.
type Alert struct {
	Severity  string `json:"severity"`
	Component string `json:"component"`
	Message   string `json:"message"`
}

// Breakdown is the result of a health evaluation. All fields are
// point-in-time values safe to serialize to JSON.
type Breakdown struct {
	Score      int         `json:"score"`
	State      string      `json:"state"`
	Components []Component `json:"components"`
	Alerts     []Alert     `json:"alerts,omitempty"`
}

// Evaluate scores the supplied samples.
//
// The total is the sum of three components:
//
//	hashrate stability  (max 40)  deviation of current from 30-day average
//	mempool health      (max 30)  pending tx count and average fee rate
//	block production    (max 30)  retarget timing and predicted change
//
// Absent hashrate or mempool samples contribute 0; an absent difficulty
// sample contributes a neutral 15. Evaluate is pure: identical inputs yield
// identical breakdowns.
func Evaluate(in Input) Breakdown {
	hashrate := scoreHashrate(in.Hashrate, in.History)
	mempool := scoreMempool(in.Mempool)
	blocks := scoreBlockProduction(in.Difficulty)

	total := hashrate.Score + mempool.Score + blocks.Score

	return Breakdown{
		Score:      total,
		State:      stateFromScore(total),
		Components: []Component{hashrate, mempool, blocks},
		Alerts:     collectAlerts(in),
	}
}

func scoreHashrate(s *HashrateSample, history []float64) Component {
	c := Component{Name: ComponentHashrate, Max: MaxHashrate}

	if s == nil || s.Average30 <= 0 {
		c.Detail = "no hashrate sample"
		return c
	}

	deviation := math.Abs(s.Current-s.Average30) / s.Average30 * 100

	score := MaxHashrate - hashratePenalty(deviation)
	if historyIsStable(history) {
		score += 5
	}

	c.Score = clamp(score, 0, MaxHashrate)
	c.Detail = fmt.Sprintf("%.2f%% deviation from 30-day average", deviation)
	return c
}

// hashratePenalty applies the single largest matching bracket.
func hashratePenalty(deviation float64) int {
	switch {
	case deviation >= 15:
		return 25
	case deviation >= 10:
		return 15
	case deviation >= 5:
		return 10
	case deviation >= 2:
		return 5
	default:
		return 0
	}
}

// historyIsStable reports whether the window's mean absolute deviation stays
// under 2% of its mean. Windows shorter than two samples carry no signal.
func historyIsStable(history []float64) bool {
	if len(history) < 2 {
		return false
	}

	var sum float64
	for _, v := range history {
		sum += v
	}
	mean := sum / float64(len(history))
	if mean <= 0 {
		return false
	}

	var dev float64
	for _, v := range history {
		dev += math.Abs(v - mean)
	}
	dev /= float64(len(history))

	return dev/mean*100 < 2
}

func scoreMempool(s *MempoolSample) Component {
	c := Component{Name: ComponentMempool, Max: MaxMempool}

	if s == nil {
		c.Detail = "no mempool sample"
		return c
	}

	score := MaxMempool - txCountPenalty(s.TxCount) - feeRatePenalty(s.AvgFeeRate)
	c.Score = clamp(score, 0, MaxMempool)
	c.Detail = fmt.Sprintf("%d pending transactions, %.1f sat/vB average fee", s.TxCount, s.AvgFeeRate)
	return c
}

func txCountPenalty(txCount int64) int {
	switch {
	case txCount > 100_000:
		return 15
	case txCount > 50_000:
		return 10
	case txCount > 20_000:
		return 5
	case txCount > 10_000:
		return 2
	default:
		return 0
	}
}

func feeRatePenalty(feeRate float64) int {
	switch {
	case feeRate > 100:
		return 10
	case feeRate > 50:
		return 8
	case feeRate > 20:
		return 5
	case feeRate > 10:
		return 2
	default:
		return 0
	}
}

func scoreBlockProduction(s *DifficultySample) Component {
	c := Component{Name: ComponentBlockProduction, Max: MaxBlockProduction}

	if s == nil {
		// Neutral: no difficulty data is not evidence of slow blocks.
		c.Score = 15
		c.Detail = "no difficulty sample"
		return c
	}

	score := MaxBlockProduction
	change := math.Abs(s.EstimatedChangePercent)

	switch {
	case s.BlocksToRetarget >= 1900:
		// Epoch just reset: blocks have been arriving off-target.
		score -= 10
	case s.BlocksToRetarget <= 288:
		// Retarget imminent: a large predicted swing means production
		// drifted well off the 10-minute cadence.
		if change > 10 {
			score -= 10
		} else if change > 5 {
			score -= 5
		}
	}

	c.Score = clamp(score, 0, MaxBlockProduction)
	c.Detail = fmt.Sprintf("%d blocks to retarget, %+.1f%% predicted change", s.BlocksToRetarget, s.EstimatedChangePercent)
	return c
}

// collectAlerts inspects the raw samples against fixed thresholds. At most
// one alert is raised per metric, at the highest matching severity.
func collectAlerts(in Input) []Alert {
	var alerts []Alert

	if s := in.Hashrate; s != nil && s.Average30 > 0 {
		drop := (s.Average30 - s.Current) / s.Average30 * 100
		switch {
		case drop > 10:
			alerts = append(alerts, Alert{
				Severity:  SeverityCritical,
				Component: ComponentHashrate,
				Message:   fmt.Sprintf("hashrate %.1f%% below 30-day average", drop),
			})
		case drop >= 5:
			alerts = append(alerts, Alert{
				Severity:  SeverityWarning,
				Component: ComponentHashrate,
				Message:   fmt.Sprintf("hashrate %.1f%% below 30-day average", drop),
			})
		}
	}

	if s := in.Mempool; s != nil {
		switch {
		case s.TxCount > 100_000:
			alerts = append(alerts, Alert{
				Severity:  SeverityCritical,
				Component: ComponentMempool,
				Message:   fmt.Sprintf("mempool congestion: %d pending transactions", s.TxCount),
			})
		case s.TxCount > 50_000:
			alerts = append(alerts, Alert{
				Severity:  SeverityWarning,
				Component: ComponentMempool,
				Message:   fmt.Sprintf("mempool backlog: %d pending transactions", s.TxCount),
			})
		}

		switch {
		case s.AvgFeeRate > 100:
			alerts = append(alerts, Alert{
				Severity:  SeverityCritical,
				Component: ComponentMempool,
				Message:   fmt.Sprintf("average fee rate %.1f sat/vB", s.AvgFeeRate),
			})
		case s.AvgFeeRate > 50:
			alerts = append(alerts, Alert{
				Severity:  SeverityWarning,
				Component: ComponentMempool,
				Message:   fmt.Sprintf("average fee rate %.1f sat/vB", s.AvgFeeRate),
			})
		}
	}

	if s := in.Difficulty; s != nil && math.Abs(s.EstimatedChangePercent) > 15 {
		alerts = append(alerts, Alert{
			Severity:  SeverityWarning,
			Component: ComponentBlockProduction,
			Message:   fmt.Sprintf("predicted difficulty change %+.1f%%", s.EstimatedChangePercent),
		})
	}

	return alerts
}

// stateFromScore maps a total score to a named health state.
func stateFromScore(score int) string {
	switch {
	case score >= ThresholdHealthy:
		return StateHealthy
	case score >= ThresholdDegraded:
		return StateDegraded
	default:
		return StateCritical
	}
}

// clamp restricts v to the range [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
