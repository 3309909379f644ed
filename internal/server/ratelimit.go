// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package server

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/internal/ratelimit"
	inserr "github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/errors"
)

// RateLimitConfig configures per-IP rate limiting on inbound requests.
// This is separate from the outbound limiter that paces upstream calls.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained request rate per IP. Zero disables limiting.
	RequestsPerSecond float64
	// Burst is the maximum burst size per IP.
	Burst int
	// MaxVisitors caps the number of unique IPs tracked concurrently. When
	// the visitor map exceeds it, the oldest entries are evicted during
	// cleanup. Zero selects the default of 10000.
	MaxVisitors int
}

// Validate checks the RateLimitConfig and applies defaults.
func (c *RateLimitConfig) Validate() error {
	if c.RequestsPerSecond > 0 && c.Burst <= 0 {
		return inserr.Errorf(inserr.CodeServerConfigInvalid,
			"rate limit burst must be positive when rate is set (got burst=%d, rate=%g)",
			c.Burst, c.RequestsPerSecond)
	}
	if c.RequestsPerSecond < 0 {
		return inserr.Errorf(inserr.CodeServerConfigInvalid,
			"rate limit requests per second must not be negative (got %g)",
			c.RequestsPerSecond)
	}
	if c.MaxVisitors < 0 {
		return inserr.Errorf(inserr.CodeServerConfigInvalid,
			"rate limit max visitors must not be negative (got %d)",
			c.MaxVisitors)
	}
	if c.MaxVisitors == 0 {
		c.MaxVisitors = 10000
	}
	return nil
}

// visitorSet tracks one token bucket per client IP.
type visitorSet struct {
	mu   sync.Mutex
	cfg  RateLimitConfig
	seen map[string]*visitor
}

type visitor struct {
	bucket   *ratelimit.Limiter
	lastSeen time.Time
}

// admit takes one token from ip's bucket, creating it on first contact.
// On denial it returns the Retry-After value in whole seconds.
func (s *visitorSet) admit(ip string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.seen[ip]
	if !ok {
		bucket, err := ratelimit.New(s.cfg.Burst, s.cfg.RequestsPerSecond)
		if err != nil {
			// Config was validated at construction; fail open rather than
			// refuse traffic on an impossible state.
			return 0, true
		}
		v = &visitor{bucket: bucket}
		s.seen[ip] = v
	}
	v.lastSeen = time.Now()

	retryAfter, ok := v.bucket.TryAcquire()
	if ok {
		return 0, true
	}
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs, false
}

// sweep drops buckets idle past the stale threshold, then enforces the
// visitor cap by evicting the least recently seen remainder.
func (s *visitorSet) sweep() {
	const staleThreshold = 10 * time.Minute

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	type aged struct {
		ip       string
		lastSeen time.Time
	}
	live := make([]aged, 0, len(s.seen))
	for ip, v := range s.seen {
		if now.Sub(v.lastSeen) > staleThreshold {
			delete(s.seen, ip)
			continue
		}
		live = append(live, aged{ip: ip, lastSeen: v.lastSeen})
	}

	if s.cfg.MaxVisitors <= 0 || len(live) <= s.cfg.MaxVisitors {
		return
	}
	slices.SortFunc(live, func(a, b aged) int {
		return a.lastSeen.Compare(b.lastSeen)
	})
	toEvict := len(live) - s.cfg.MaxVisitors
	for i := 0; i < toEvict; i++ {
		delete(s.seen, live[i].ip)
	}
	slog.Warn("rate limiter visitor map cap enforced",
		"evicted", toEvict, "max_visitors", s.cfg.MaxVisitors, "remaining", len(s.seen))
}

// rateLimitMiddleware returns middleware that enforces per-IP rate limits.
// Returns a pass-through middleware when cfg.RequestsPerSecond is zero.
// The done channel signals the cleanup goroutine to exit on shutdown.
func rateLimitMiddleware(cfg RateLimitConfig, done <-chan struct{}) func(http.Handler) http.Handler {
	if cfg.RequestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	set := &visitorSet{cfg: cfg, seen: make(map[string]*visitor)}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				set.sweep()
			case <-done:
				return
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Rate-limit by IP, not by connection, so ephemeral ports do
			// not get separate buckets.
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			retryAfter, ok := set.admit(ip)
			if !ok {
				slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.WriteHeader(http.StatusTooManyRequests)
				if _, err := w.Write([]byte(`{"error":"rate limit exceeded"}`)); err != nil {
					slog.Warn("failed to write rate limit response", "error", err)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
