// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package registry manages the ordered set of configured languages and the
// designated default language.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/ocms-multilang/internal/cache"
	"github.com/olegiv/ocms-multilang/internal/model"
	"github.com/olegiv/ocms-multilang/internal/store"
	"github.com/olegiv/ocms-multilang/internal/util"
)

// Registry is the process-wide language registry service.
type Registry struct {
	db      *sql.DB
	queries *store.Queries
	cache   *cache.LanguageCache
	logger  *slog.Logger
}

// New creates a Registry over the given database and language cache.
func New(db *sql.DB, langCache *cache.LanguageCache, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		db:      db,
		queries: store.New(db),
		cache:   langCache,
		logger:  logger,
	}
}

// AddLanguageParams holds the fields for Add.
type AddLanguageParams struct {
	Slug       string
	Name       string
	NativeName string
	ShortName  string
	LocaleName string
	Locales    string
	Direction  string
	Position   *int64 // nil appends to the end
	IsActive   bool
}

// Add registers a new language. The first language ever registered becomes
// the default. Returns ErrDuplicateSlug when the slug is taken and
// ErrValidation for malformed input.
func (r *Registry) Add(ctx context.Context, arg AddLanguageParams) (store.Language, error) {
	if !util.IsValidLanguageSlug(arg.Slug) {
		return store.Language{}, fmt.Errorf("%w: invalid language slug %q", model.ErrValidation, arg.Slug)
	}
	if arg.Name == "" {
		return store.Language{}, fmt.Errorf("%w: language name is required", model.ErrValidation)
	}

	direction := arg.Direction
	if direction == "" {
		direction = model.DirectionLTR
	}
	if direction != model.DirectionLTR && direction != model.DirectionRTL {
		return store.Language{}, fmt.Errorf("%w: direction must be ltr or rtl", model.ErrValidation)
	}

	exists, err := r.queries.LanguageSlugExists(ctx, arg.Slug)
	if err != nil {
		return store.Language{}, fmt.Errorf("checking language slug: %w", err)
	}
	if exists != 0 {
		return store.Language{}, fmt.Errorf("%w: %q", model.ErrDuplicateSlug, arg.Slug)
	}

	position := int64(0)
	if arg.Position != nil {
		position = *arg.Position
	} else {
		// Append to the end of the configured order
		maxPos, err := r.queries.GetMaxLanguagePosition(ctx)
		if err == nil && maxPos != nil {
			switch v := maxPos.(type) {
			case int64:
				position = v + 1
			case int:
				position = int64(v) + 1
			case float64:
				position = int64(v) + 1
			}
		}
	}

	count, err := r.queries.CountLanguages(ctx)
	if err != nil {
		return store.Language{}, fmt.Errorf("counting languages: %w", err)
	}

	nativeName := arg.NativeName
	if nativeName == "" {
		nativeName = arg.Name
	}

	now := time.Now()
	lang, err := r.queries.CreateLanguage(ctx, store.CreateLanguageParams{
		Slug:       arg.Slug,
		Name:       arg.Name,
		NativeName: nativeName,
		ShortName:  arg.ShortName,
		LocaleName: arg.LocaleName,
		Locales:    arg.Locales,
		Direction:  direction,
		Position:   position,
		IsDefault:  count == 0, // the first language becomes the default
		IsActive:   arg.IsActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return store.Language{}, fmt.Errorf("creating language: %w", err)
	}

	r.cache.Invalidate(ctx)
	r.logger.Info("language created", "language_id", lang.ID, "slug", lang.Slug)
	return lang, nil
}

// Get resolves a language by numeric ID or slug.
// Returns ErrNotFound when neither matches.
func (r *Registry) Get(ctx context.Context, idOrSlug string) (store.Language, error) {
	if lang, err := r.cache.GetBySlug(ctx, idOrSlug); err != nil {
		return store.Language{}, err
	} else if lang != nil {
		return *lang, nil
	}

	var id int64
	if _, err := fmt.Sscanf(idOrSlug, "%d", &id); err == nil {
		return r.GetByID(ctx, id)
	}

	return store.Language{}, fmt.Errorf("%w: language %q", model.ErrNotFound, idOrSlug)
}

// GetByID resolves a language by ID. Returns ErrNotFound when unknown.
func (r *Registry) GetByID(ctx context.Context, id int64) (store.Language, error) {
	lang, err := r.cache.GetByID(ctx, id)
	if err != nil {
		return store.Language{}, err
	}
	if lang == nil {
		return store.Language{}, fmt.Errorf("%w: language id %d", model.ErrNotFound, id)
	}
	return *lang, nil
}

// GetBySlug resolves a language by slug. Returns ErrNotFound when unknown.
func (r *Registry) GetBySlug(ctx context.Context, slug string) (store.Language, error) {
	lang, err := r.cache.GetBySlug(ctx, slug)
	if err != nil {
		return store.Language{}, err
	}
	if lang == nil {
		return store.Language{}, fmt.Errorf("%w: language %q", model.ErrNotFound, slug)
	}
	return *lang, nil
}

// All returns the configured languages ordered by position, ties broken by
// ID. With activeOnly, inactive languages are excluded.
func (r *Registry) All(ctx context.Context, activeOnly bool) ([]store.Language, error) {
	if activeOnly {
		return r.cache.GetActive(ctx)
	}
	return r.cache.GetAll(ctx)
}

// Default returns the default language, or nil when none is configured.
func (r *Registry) Default(ctx context.Context) (*store.Language, error) {
	return r.cache.GetDefault(ctx)
}

// SetDefault flags the given language as the default, clearing the flag
// from any other. Returns ErrUnknownLanguage when the ID is not registered.
func (r *Registry) SetDefault(ctx context.Context, id int64) error {
	if _, err := r.queries.GetLanguage(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: language id %d", model.ErrUnknownLanguage, id)
		}
		return fmt.Errorf("fetching language: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := r.queries.WithTx(tx)
	if err := qtx.ClearDefaultLanguage(ctx); err != nil {
		return fmt.Errorf("clearing default flag: %w", err)
	}
	if err := qtx.SetDefaultLanguage(ctx, id); err != nil {
		return fmt.Errorf("setting default flag: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	r.cache.Invalidate(ctx)
	r.logger.Info("default language changed", "language_id", id)
	return nil
}

// Reorder rewrites the sort order so the languages appear in the given id
// sequence. Returns ErrValidation for an empty list or duplicate ids and
// ErrUnknownLanguage when any id is not registered; nothing is written on
// failure. Languages absent from the list keep their positions.
func (r *Registry) Reorder(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: empty language order", model.ErrValidation)
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: duplicate language id %d", model.ErrValidation, id)
		}
		seen[id] = true
		if _, err := r.queries.GetLanguage(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: language id %d", model.ErrUnknownLanguage, id)
			}
			return fmt.Errorf("fetching language: %w", err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := r.queries.WithTx(tx)
	now := time.Now()
	for pos, id := range ids {
		if err := qtx.UpdateLanguagePosition(ctx, id, int64(pos), now); err != nil {
			return fmt.Errorf("updating position of language %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	r.cache.Invalidate(ctx)
	r.logger.Info("languages reordered", "count", len(ids))
	return nil
}

// Update edits a language's attributes.
// Returns ErrUnknownLanguage when the ID is not registered and
// ErrDuplicateSlug when the new slug collides with another language.
func (r *Registry) Update(ctx context.Context, arg store.UpdateLanguageParams) (store.Language, error) {
	current, err := r.queries.GetLanguage(ctx, arg.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Language{}, fmt.Errorf("%w: language id %d", model.ErrUnknownLanguage, arg.ID)
		}
		return store.Language{}, fmt.Errorf("fetching language: %w", err)
	}

	if !util.IsValidLanguageSlug(arg.Slug) {
		return store.Language{}, fmt.Errorf("%w: invalid language slug %q", model.ErrValidation, arg.Slug)
	}
	if arg.Slug != current.Slug {
		exists, err := r.queries.LanguageSlugExists(ctx, arg.Slug)
		if err != nil {
			return store.Language{}, fmt.Errorf("checking language slug: %w", err)
		}
		if exists != 0 {
			return store.Language{}, fmt.Errorf("%w: %q", model.ErrDuplicateSlug, arg.Slug)
		}
	}

	arg.UpdatedAt = time.Now()
	lang, err := r.queries.UpdateLanguage(ctx, arg)
	if err != nil {
		return store.Language{}, fmt.Errorf("updating language: %w", err)
	}

	r.cache.Invalidate(ctx)
	r.logger.Info("language updated", "language_id", lang.ID, "slug", lang.Slug)
	return lang, nil
}

// Remove deletes a language from the registry. Translation group rows are
// left untouched; orphaned memberships resolve to no language.
// Returns ErrUnknownLanguage when the ID is not registered.
func (r *Registry) Remove(ctx context.Context, id int64) error {
	if _, err := r.queries.GetLanguage(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: language id %d", model.ErrUnknownLanguage, id)
		}
		return fmt.Errorf("fetching language: %w", err)
	}

	if err := r.queries.DeleteLanguage(ctx, id); err != nil {
		return fmt.Errorf("deleting language: %w", err)
	}

	r.cache.Invalidate(ctx)
	r.logger.Info("language removed", "language_id", id)
	return nil
}
