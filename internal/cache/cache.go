// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides in-memory and Redis-backed caching for the
// multilingual subsystem.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// SimpleCache is a thread-safe in-memory cache with TTL support.
type SimpleCache struct {
	data sync.Map
	ttl  time.Duration

	// Stats
	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// cacheEntry holds a cached value with its expiration time.
type cacheEntry struct {
	value     any
	expiresAt time.Time
}

// Stats holds cache statistics.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Sets    int64   `json:"sets"`
	Items   int     `json:"items"`
	HitRate float64 `json:"hit_rate"`
}

// New creates a new cache with the specified TTL.
func New(ttl time.Duration) *SimpleCache {
	return &SimpleCache{ttl: ttl}
}

// Get retrieves a value from the cache.
// Returns the value and true if found and not expired, nil and false otherwise.
func (c *SimpleCache) Get(key string) (any, bool) {
	val, ok := c.data.Load(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	entry := val.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.data.Delete(key)
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return entry.value, true
}

// Set stores a value in the cache with the default TTL.
func (c *SimpleCache) Set(key string, value any) {
	c.data.Store(key, &cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	})
	c.sets.Add(1)
}

// Delete removes a value from the cache.
func (c *SimpleCache) Delete(key string) {
	c.data.Delete(key)
}

// Clear removes all values from the cache.
func (c *SimpleCache) Clear() {
	c.data.Range(func(key, _ any) bool {
		c.data.Delete(key)
		return true
	})
}

// Stats returns cache statistics.
func (c *SimpleCache) Stats() Stats {
	items := 0
	c.data.Range(func(_, _ any) bool {
		items++
		return true
	})

	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Items:   items,
		HitRate: hitRate,
	}
}
