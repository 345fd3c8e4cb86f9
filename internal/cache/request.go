// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"sync"
)

type requestCacheKeyType struct{}

var requestCacheKey requestCacheKeyType

// RequestCache memoizes entity-language lookups for the lifetime of one
// request. Repeated reads of the same entity return a stable value even if
// another request mutates it concurrently; writes within the same request
// invalidate only the touched keys.
type RequestCache struct {
	mu        sync.Mutex
	languages map[string]int64 // entity key -> language id; 0 records "no language"
}

// NewRequestCache creates an empty per-request cache.
func NewRequestCache() *RequestCache {
	return &RequestCache{languages: make(map[string]int64)}
}

// EntityKey builds the cache key for an entity.
// Format: {type}:{id}
func EntityKey(entityType string, entityID int64) string {
	return fmt.Sprintf("%s:%d", entityType, entityID)
}

// GetLanguage returns the memoized language ID for an entity key.
// The second return reports whether the key was memoized at all;
// a memoized zero means the entity is known to have no language.
func (c *RequestCache) GetLanguage(key string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.languages[key]
	return id, ok
}

// SetLanguage memoizes the language ID for an entity key.
// Pass zero to record "no language".
func (c *RequestCache) SetLanguage(key string, languageID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.languages[key] = languageID
}

// Invalidate drops the memoized value for an entity key.
func (c *RequestCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.languages, key)
}

// WithRequestCache returns a context carrying a fresh RequestCache.
// The language middleware installs one per request.
func WithRequestCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestCacheKey, NewRequestCache())
}

// RequestCacheFrom extracts the RequestCache from the context.
// Returns nil when the context carries none (lookups then go straight to
// the store).
func RequestCacheFrom(ctx context.Context) *RequestCache {
	c, _ := ctx.Value(requestCacheKey).(*RequestCache)
	return c
}
