// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

// Package insights is the typed client for the Braiins Insights API.
// Every endpoint method runs the same pipeline: cache lookup, rate limit,
// transport, shape validation, cache store. Responses that fail validation
// are never cached.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/cache"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/metrics"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/ratelimit"
	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/transport"
	inserr "github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/errors"
)

// Options wires a Client's collaborators. Transport is required; a nil
// Cache disables caching, a nil Limiter disables traffic shaping, and a
// nil Metrics disables instrumentation.
type Options struct {
	Transport *transport.Client
	Cache     *cache.Cache
	Limiter   *ratelimit.Limiter
	Metrics   *metrics.Metrics
	// TTLOverrides replaces the built-in freshness window per endpoint name.
	TTLOverrides map[string]time.Duration
	// Blocking makes endpoint calls wait for a rate limit slot instead of
	// failing fast with a throttled error.
	Blocking bool
}

// Client is the typed Insights API client.
type Client struct {
	transport *transport.Client
	cache     *cache.Cache
	limiter   *ratelimit.Limiter
	metrics   *metrics.Metrics
	ttls      map[string]time.Duration
	blocking  bool
}

// New creates a Client from opts. Unknown TTL override names are rejected
// so a typo in the config table surfaces at startup, not as a silently
// ignored setting.
func New(opts Options) (*Client, error) {
	if opts.Transport == nil {
		return nil, inserr.New(inserr.CodeConfigValidateInvalidValue, "insights client requires a transport")
	}

	ttls := DefaultTTLs()
	for name, ttl := range opts.TTLOverrides {
		if _, known := ttls[name]; !known {
			return nil, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
				"ttl override for unknown endpoint %q", name)
		}
		if ttl <= 0 {
			return nil, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
				"ttl override for %s must be positive, got %s", name, ttl)
		}
		ttls[name] = ttl
	}

	return &Client{
		transport: opts.Transport,
		cache:     opts.Cache,
		limiter:   opts.Limiter,
		metrics:   opts.Metrics,
		ttls:      ttls,
		blocking:  opts.Blocking,
	}, nil
}

// TTLFor returns the effective freshness window for an endpoint name.
func (c *Client) TTLFor(name string) time.Duration {
	return c.ttls[name]
}

// CacheStats reports cache effectiveness, or a zero value when caching
// is disabled.
func (c *Client) CacheStats() cache.Stats {
	if c.cache == nil {
		return cache.Stats{}
	}
	return c.cache.Stats()
}

// ClearCache drops every cached response. Limiter state is untouched.
func (c *Client) ClearCache() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

func (c *Client) cacheGet(key string) (any, bool) {
	if c.cache == nil {
		return nil, false
	}
	v, ok := c.cache.Get(key)
	if c.metrics != nil {
		if ok {
			c.metrics.CacheHits.Inc()
		} else {
			c.metrics.CacheMisses.Inc()
		}
	}
	return v, ok
}

func (c *Client) cacheSet(key string, value any, ttl time.Duration) {
	if c.cache != nil {
		c.cache.Set(key, value, ttl)
	}
}

// acquire takes a rate limit slot. In non-blocking mode an empty bucket
// yields a throttled error carrying the wait until the next token.
func (c *Client) acquire(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}

	if c.blocking {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	} else {
		retryAfter, ok := c.limiter.TryAcquire()
		if !ok {
			slog.Debug("rate limit denied", "retry_after", retryAfter)
			if c.metrics != nil {
				c.metrics.LimiterDenied.Inc()
			}
			return inserr.Throttled(retryAfter)
		}
	}

	if c.metrics != nil {
		c.metrics.LimiterTokens.Set(c.limiter.Tokens())
	}
	return nil
}

func (c *Client) observe(name string, start time.Time, err error) {
	if c.metrics != nil {
		c.metrics.ObserveUpstream(name, time.Since(start), err)
	}
}

// getEndpoint runs the full GET pipeline for one endpoint.
func getEndpoint[T any](ctx context.Context, c *Client, ep endpoint, params map[string]string) (*T, error) {
	key := cache.Key(ep.name, params)
	if v, ok := c.cacheGet(key); ok {
		return v.(*T), nil
	}

	if err := c.acquire(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := c.transport.Get(ctx, ep.path, params)
	if err != nil {
		c.observe(ep.name, start, err)
		return nil, err
	}

	out, err := decodePayload[T](raw, ep)
	c.observe(ep.name, start, err)
	if err != nil {
		return nil, err
	}

	c.cacheSet(key, out, c.ttls[ep.name])
	return out, nil
}

// postEndpoint runs the POST pipeline. cacheKey must already encode the
// request body's identity.
func postEndpoint[T any](ctx context.Context, c *Client, ep endpoint, cacheKey string, body any) (*T, error) {
	if v, ok := c.cacheGet(cacheKey); ok {
		return v.(*T), nil
	}

	if err := c.acquire(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := c.transport.Post(ctx, ep.path, body)
	if err != nil {
		c.observe(ep.name, start, err)
		return nil, err
	}

	out, err := decodePayload[T](raw, ep)
	c.observe(ep.name, start, err)
	if err != nil {
		return nil, err
	}

	c.cacheSet(cacheKey, out, c.ttls[ep.name])
	return out, nil
}

// decodePayload validates and decodes one response body. Required keys
// must be present and non-null; a type mismatch anywhere in the payload
// fails the decode. The raw body travels with every validation error.
func decodePayload[T any](raw []byte, ep endpoint) (*T, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		if !json.Valid(raw) {
			return nil, inserr.Validation(raw, "response is not valid JSON", inserr.FieldEndpoint(ep.name))
		}
		return nil, inserr.Validation(raw, "response is not a JSON object", inserr.FieldEndpoint(ep.name))
	}

	var missing []string
	for _, k := range ep.required {
		v, ok := probe[k]
		if !ok || string(v) == "null" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		slog.Warn("upstream payload missing required fields",
			"endpoint", ep.name, "fields", strings.Join(missing, ","))
		return nil, inserr.Validation(raw,
			"missing required fields: "+strings.Join(missing, ", "),
			inserr.FieldEndpoint(ep.name))
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, inserr.Validation(raw,
				fmt.Sprintf("field %s: expected %s", typeErr.Field, typeErr.Type),
				inserr.FieldEndpoint(ep.name))
		}
		return nil, inserr.Validation(raw, "decoding response: "+err.Error(), inserr.FieldEndpoint(ep.name))
	}

	return &out, nil
}
