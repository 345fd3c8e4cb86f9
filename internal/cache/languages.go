// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/ocms-multilang/internal/store"
)

// redisLanguagesKey is the Redis key holding the full language list.
const redisLanguagesKey = "languages"

// LanguageCache provides cached access to the language registry.
// Languages are read-mostly; the whole table is loaded once and kept until
// Invalidate is called after a registry write.
type LanguageCache struct {
	cache       *SimpleCache
	queries     *store.Queries
	redis       *RedisCache // optional cross-process mirror
	mu          sync.RWMutex
	languages   []store.Language
	active      []store.Language
	bySlug      map[string]store.Language
	byID        map[int64]store.Language
	defaultLang *store.Language
	loaded      bool
}

// NewLanguageCache creates a new language cache. The Redis mirror is
// optional; pass nil to keep the cache process-local.
func NewLanguageCache(queries *store.Queries, redis *RedisCache) *LanguageCache {
	return &LanguageCache{
		cache:   New(time.Hour),
		queries: queries,
		redis:   redis,
		bySlug:  make(map[string]store.Language),
		byID:    make(map[int64]store.Language),
	}
}

// GetAll retrieves all languages ordered by position.
func (c *LanguageCache) GetAll(ctx context.Context) ([]store.Language, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]store.Language, len(c.languages))
	copy(result, c.languages)
	c.cache.hits.Add(1)
	return result, nil
}

// GetActive retrieves only active languages ordered by position.
func (c *LanguageCache) GetActive(ctx context.Context) ([]store.Language, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]store.Language, len(c.active))
	copy(result, c.active)
	c.cache.hits.Add(1)
	return result, nil
}

// GetBySlug retrieves a language by its slug. Returns nil when unknown.
func (c *LanguageCache) GetBySlug(ctx context.Context, slug string) (*store.Language, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if lang, ok := c.bySlug[slug]; ok {
		c.cache.hits.Add(1)
		return &lang, nil
	}
	c.cache.misses.Add(1)
	return nil, nil
}

// GetByID retrieves a language by its ID. Returns nil when unknown.
func (c *LanguageCache) GetByID(ctx context.Context, id int64) (*store.Language, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if lang, ok := c.byID[id]; ok {
		c.cache.hits.Add(1)
		return &lang, nil
	}
	c.cache.misses.Add(1)
	return nil, nil
}

// GetDefault retrieves the default language. Returns nil when none is flagged.
func (c *LanguageCache) GetDefault(ctx context.Context) (*store.Language, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.defaultLang == nil {
		c.cache.misses.Add(1)
		return nil, nil
	}
	lang := *c.defaultLang
	c.cache.hits.Add(1)
	return &lang, nil
}

// ensureLoaded loads the language table on first access.
func (c *LanguageCache) ensureLoaded(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.loadAll(ctx)
}

// loadAll loads all languages from the Redis mirror or the database.
func (c *LanguageCache) loadAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if c.loaded {
		return nil
	}

	var languages []store.Language
	fromRedis := false
	if c.redis != nil {
		ok, err := c.redis.GetJSON(ctx, redisLanguagesKey, &languages)
		if err != nil {
			slog.Warn("redis language cache read failed", "error", err)
		}
		fromRedis = ok && err == nil
	}

	if !fromRedis {
		var err error
		languages, err = c.queries.ListLanguages(ctx)
		if err != nil {
			return err
		}
		if c.redis != nil {
			if err := c.redis.SetJSON(ctx, redisLanguagesKey, languages); err != nil {
				slog.Warn("redis language cache write failed", "error", err)
			}
		}
	}

	c.index(languages)
	c.loaded = true
	c.cache.sets.Add(1)

	return nil
}

func (c *LanguageCache) index(languages []store.Language) {
	c.languages = languages
	c.bySlug = make(map[string]store.Language, len(languages))
	c.byID = make(map[int64]store.Language, len(languages))
	c.active = c.active[:0]
	c.defaultLang = nil

	for _, lang := range languages {
		c.bySlug[lang.Slug] = lang
		c.byID[lang.ID] = lang
		if lang.IsActive {
			c.active = append(c.active, lang)
		}
		if lang.IsDefault {
			langCopy := lang
			c.defaultLang = &langCopy
		}
	}
}

// Invalidate clears the cache, forcing a reload on next access.
// Called after every registry write.
func (c *LanguageCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.loaded = false
	c.languages = nil
	c.active = nil
	c.bySlug = make(map[string]store.Language)
	c.byID = make(map[int64]store.Language)
	c.defaultLang = nil
	c.mu.Unlock()

	if c.redis != nil {
		if err := c.redis.Delete(ctx, redisLanguagesKey); err != nil {
			slog.Warn("redis language cache invalidation failed", "error", err)
		}
	}
}

// Preload loads all languages into cache.
// Useful for warming up the cache on startup.
func (c *LanguageCache) Preload(ctx context.Context) error {
	return c.loadAll(ctx)
}

// Stats returns cache statistics.
func (c *LanguageCache) Stats() Stats {
	stats := c.cache.Stats()
	c.mu.RLock()
	stats.Items = len(c.languages)
	c.mu.RUnlock()
	return stats
}
