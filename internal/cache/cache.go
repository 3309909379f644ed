// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

// Package cache provides a thread-safe TTL cache for upstream responses.
// Entries expire individually, are evicted lazily on access, and the cache
// holds at most a fixed number of entries.
package cache

import (
	"sort"
	"strings"
	"sync"
	"time"

	inserr "github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/errors"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a bounded TTL cache. A value stored with TTL d is served for
// strictly less than d; at or past the deadline the entry is treated as
// absent and dropped on the next access.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	maxEntries int
	hits       uint64
	misses     uint64
	nowFunc    func() time.Time // for testing
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Entries int    `json:"entries"`
}

// New creates a cache holding at most maxEntries values.
// Returns an error if maxEntries is zero or negative.
func New(maxEntries int) (*Cache, error) {
	if maxEntries <= 0 {
		return nil, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
			"cache max entries must be positive, got %d", maxEntries)
	}
	return &Cache{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		nowFunc:    time.Now,
	}, nil
}

// Get returns the value stored under key if present and not expired.
// An expired entry is removed and counted as a miss.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if !c.nowFunc().Before(e.expiresAt) {
		delete(c.entries, key)
		c.misses++
		return nil, false
	}
	c.hits++
	return e.value, true
}

// Set stores value under key for ttl. A non-positive ttl is a no-op.
// When the cache is full, expired entries are dropped first; if none are
// expired, the entry closest to its deadline makes room.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFunc()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked(now)
	}
	c.entries[key] = entry{value: value, expiresAt: now.Add(ttl)}
}

// evictLocked frees one slot. The caller MUST hold c.mu.
func (c *Cache) evictLocked(now time.Time) {
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			return
		}
		if !found || e.expiresAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.expiresAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}

// Delete removes the entry stored under key, if any.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Purge removes all entries. Hit and miss counters are preserved.
func (c *Cache) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of hit and miss counts and the entry count.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries)}
}

// SetNowFunc overrides the time source (for testing).
func (c *Cache) SetNowFunc(fn func() time.Time) {
	c.mu.Lock()
	c.nowFunc = fn
	c.mu.Unlock()
}

// Key builds a canonical cache key from an endpoint name and its query
// parameters. Parameter order does not matter: the same endpoint and
// parameters always produce the same key.
func Key(endpoint string, params map[string]string) string {
	if len(params) == 0 {
		return endpoint
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(endpoint)
	for i, name := range names {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(params[name])
	}
	return b.String()
}
