// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

// Package aggregate fans a set of named sub-requests out concurrently and
// folds the outcomes into a single report. Sub-request failures are contained
// as report entries rather than propagated, so a composite view can render
// whatever data did arrive. The one hard failure is every critical
// sub-request failing at once.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/metrics"
	inserr "github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/errors"
	"github.com/google/uuid"
)

// SubRequest is one named unit of a fan-out. Fetch typically closes over an
// endpoint client call. A Critical sub-request participates in the
// all-critical-failed check; everything else degrades silently into the
// report's Failed map.
type SubRequest struct {
	Name     string
	Critical bool
	Fetch    func(ctx context.Context) (any, error)
}

// Report is the settled outcome of one fan-out. Every requested sub-request
// name appears in exactly one of Succeeded or Failed. Reports are immutable
// once returned.
type Report struct {
	ID          string            `json:"id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Succeeded   map[string]any    `json:"succeeded"`
	Failed      map[string]string `json:"failed,omitempty"`
	Duration    time.Duration     `json:"duration"`
}

// Options configures a Runner. Timeout bounds one whole Run call; Metrics
// may be nil to disable instrumentation.
type Options struct {
	Timeout time.Duration
	Metrics *metrics.Metrics
}

// Runner executes fan-outs. Safe for concurrent use.
type Runner struct {
	timeout time.Duration
	metrics *metrics.Metrics
}

// New returns a Runner that bounds each Run call by opts.Timeout.
func New(opts Options) (*Runner, error) {
	if opts.Timeout <= 0 {
		return nil, inserr.Errorf(inserr.CodeAggregateRequestInvalid,
			"aggregate timeout must be positive, got %s", opts.Timeout)
	}
	return &Runner{timeout: opts.Timeout, metrics: opts.Metrics}, nil
}

type settled struct {
	name     string
	critical bool
	value    any
	err      error
}

// Run launches every sub-request concurrently, waits for all of them to
// settle, and partitions the outcomes into a Report. A sub-request failure
// never fails the run; it becomes an entry in Report.Failed. If at least one
// sub-request is marked critical and every critical one failed, Run withholds
// the report and returns an aggregate.critical.all_failed error instead.
//
// The report name labels logs and metrics for this fan-out.
func (r *Runner) Run(ctx context.Context, name string, subs []SubRequest) (*Report, error) {
	if name == "" {
		return nil, inserr.New(inserr.CodeAggregateRequestInvalid, "report name must not be empty")
	}
	if len(subs) == 0 {
		return nil, inserr.New(inserr.CodeAggregateRequestInvalid,
			"at least one sub-request is required", inserr.Field("report", name))
	}
	seen := make(map[string]struct{}, len(subs))
	for _, sub := range subs {
		if sub.Name == "" {
			return nil, inserr.New(inserr.CodeAggregateRequestInvalid,
				"sub-request name must not be empty", inserr.Field("report", name))
		}
		if sub.Fetch == nil {
			return nil, inserr.Errorf(inserr.CodeAggregateRequestInvalid,
				"sub-request %q has no fetch function", sub.Name)
		}
		if _, dup := seen[sub.Name]; dup {
			return nil, inserr.Errorf(inserr.CodeAggregateRequestInvalid,
				"duplicate sub-request name %q", sub.Name)
		}
		seen[sub.Name] = struct{}{}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	slog.Debug("starting aggregation", "report", name, "subrequests", len(subs))
	start := time.Now()

	results := make(chan settled, len(subs))
	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(sub SubRequest) {
			defer wg.Done()
			results <- r.execute(ctx, sub)
		}(sub)
	}
	wg.Wait()
	close(results)

	report := &Report{
		ID:          uuid.New().String(),
		GeneratedAt: start,
		Succeeded:   make(map[string]any, len(subs)),
		Failed:      make(map[string]string),
		Duration:    time.Since(start),
	}

	var criticalTotal, criticalFailed int
	for res := range results {
		if res.critical {
			criticalTotal++
		}
		if res.err != nil {
			if res.critical {
				criticalFailed++
			}
			report.Failed[res.name] = res.err.Error()
			slog.Warn("sub-request failed",
				"report", name,
				"subrequest", res.name,
				"critical", res.critical,
				"error", res.err)
			continue
		}
		report.Succeeded[res.name] = res.value
	}

	if criticalTotal > 0 && criticalFailed == criticalTotal {
		r.observe(name, "failed")
		return nil, inserr.Errorf(inserr.CodeAggregateCriticalAllFailed,
			"all %d critical sub-requests failed", criticalTotal)
	}

	status := "ok"
	if len(report.Failed) > 0 {
		status = "partial"
	}
	r.observe(name, status)

	slog.Info("aggregation complete",
		"report", name,
		"succeeded", len(report.Succeeded),
		"failed", len(report.Failed),
		"duration", report.Duration)

	return report, nil
}

// execute runs one sub-request with panic recovery so a misbehaving fetch
// cannot take down its siblings.
func (r *Runner) execute(ctx context.Context, sub SubRequest) settled {
	res := settled{name: sub.Name, critical: sub.Critical}

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				stack := debug.Stack()
				slog.Error("sub-request panic recovered",
					"subrequest", sub.Name,
					"panic", rec,
					"stack", string(stack))
				res.err = fmt.Errorf("panic: %v", rec)
			}
		}()
		res.value, res.err = sub.Fetch(ctx)
	}()

	return res
}

func (r *Runner) observe(name, status string) {
	if r.metrics == nil {
		return
	}
	r.metrics.AggregateReports.WithLabelValues(name, status).Inc()
}
