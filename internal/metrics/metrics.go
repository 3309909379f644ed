// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

// Package metrics exposes Prometheus collectors for the upstream client,
// cache, rate limiter, aggregator, and tool server. Everything is registered
// on a private registry so multiple instances never collide.
package metrics

import (
	"net/http"
	"time"

	inserr "github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "insights"

// Metrics bundles all collectors recorded by this process.
type Metrics struct {
	registry *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	LimiterTokens    prometheus.Gauge
	LimiterDenied    prometheus.Counter
	AggregateReports *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
}

// New creates a Metrics bundle backed by a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: reg,
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Upstream API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Upstream API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Responses served from the TTL cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache lookups that fell through to the upstream API.",
		}),
		LimiterTokens: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ratelimit",
			Name:      "tokens",
			Help:      "Tokens remaining in the outbound rate limiter bucket.",
		}),
		LimiterDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratelimit",
			Name:      "denied_total",
			Help:      "Requests rejected because the outbound bucket was empty.",
		}),
		AggregateReports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "reports_total",
			Help:      "Aggregation runs by report name and completion status.",
		}, []string{"report", "status"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Tool server requests by path and status code.",
		}, []string{"path", "status"}),
	}

	reg.MustRegister(
		m.UpstreamRequests,
		m.UpstreamLatency,
		m.CacheHits,
		m.CacheMisses,
		m.LimiterTokens,
		m.LimiterDenied,
		m.AggregateReports,
		m.HTTPRequests,
	)

	return m
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveUpstream records one upstream request with its latency and outcome.
func (m *Metrics) ObserveUpstream(endpoint string, elapsed time.Duration, err error) {
	m.UpstreamRequests.WithLabelValues(endpoint, Outcome(err)).Inc()
	m.UpstreamLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// Outcome maps an upstream request error to its metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case inserr.IsThrottled(err):
		return "throttled"
	case inserr.IsTimeout(err):
		return "timeout"
	case inserr.IsNetwork(err):
		return "network"
	case inserr.IsAPI(err):
		return "api"
	case inserr.IsValidation(err):
		return "validation"
	default:
		return "error"
	}
}
