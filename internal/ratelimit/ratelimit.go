// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

// Package ratelimit shapes outbound request traffic with a token bucket.
// The bucket starts full, drains one token per request, and refills
// continuously at a fixed rate up to its capacity.
package ratelimit

import (
	"context"
	"sync"
	"time"

	inserr "github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/errors"
)

// Limiter is a thread-safe token bucket.
type Limiter struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	rate       float64 // tokens per second
	lastRefill time.Time
	nowFunc    func() time.Time // for testing
}

// New creates a full bucket with the given capacity and refill rate.
// Returns an error if either is zero or negative.
func New(capacity int, refillPerSecond float64) (*Limiter, error) {
	if capacity <= 0 {
		return nil, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
			"rate limiter capacity must be positive, got %d", capacity)
	}
	if refillPerSecond <= 0 {
		return nil, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
			"rate limiter refill rate must be positive, got %g", refillPerSecond)
	}
	return &Limiter{
		tokens:     float64(capacity),
		capacity:   float64(capacity),
		rate:       refillPerSecond,
		lastRefill: time.Now(),
		nowFunc:    time.Now,
	}, nil
}

// refillLocked credits tokens for the time elapsed since the last refill.
// The caller MUST hold l.mu.
func (l *Limiter) refillLocked() {
	now := l.nowFunc()
	elapsed := now.Sub(l.lastRefill).Seconds()
	if elapsed > 0 {
		l.tokens += elapsed * l.rate
		if l.tokens > l.capacity {
			l.tokens = l.capacity
		}
	}
	l.lastRefill = now
}

// TryAcquire takes one token without blocking. When the bucket is empty it
// reports false along with the wait until a token becomes available.
func (l *Limiter) TryAcquire() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refillLocked()
	if l.tokens >= 1 {
		l.tokens--
		return 0, true
	}

	deficit := 1 - l.tokens
	retryAfter := time.Duration(deficit / l.rate * float64(time.Second))
	return retryAfter, false
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		retryAfter, ok := l.TryAcquire()
		if ok {
			return nil
		}

		timer := time.NewTimer(retryAfter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return inserr.Wrap(ctx.Err(), inserr.CodeUpstreamNetworkTimeout,
				"waiting for rate limit slot")
		case <-timer.C:
		}
	}
}

// Tokens returns the current token count after refill. Intended for
// metrics and tests; the value is stale the moment it is returned.
func (l *Limiter) Tokens() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refillLocked()
	return l.tokens
}

// SetNowFunc overrides the time source (for testing).
func (l *Limiter) SetNowFunc(fn func() time.Time) {
	l.mu.Lock()
	l.nowFunc = fn
	l.lastRefill = fn()
	l.mu.Unlock()
}
