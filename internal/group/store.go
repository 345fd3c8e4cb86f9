// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package group maintains translation groups: sets of content entities,
// one per language, representing the same logical content.
//
// Two invariants hold at all times:
//
//  1. Within one group, each language appears at most once.
//  2. An entity belongs to exactly one group at a time.
//
// Every write runs in a single transaction; displaced or unlinked members
// are moved into fresh singleton groups, never left dangling.
package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/olegiv/ocms-multilang/internal/cache"
	"github.com/olegiv/ocms-multilang/internal/hook"
	"github.com/olegiv/ocms-multilang/internal/model"
	"github.com/olegiv/ocms-multilang/internal/registry"
	"github.com/olegiv/ocms-multilang/internal/store"
)

// Store is the translation group store service.
type Store struct {
	db       *sql.DB
	queries  *store.Queries
	registry *registry.Registry
	hooks    *hook.Registry
	logger   *slog.Logger
}

// New creates a group Store.
func New(db *sql.DB, reg *registry.Registry, hooks *hook.Registry, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:       db,
		queries:  store.New(db),
		registry: reg,
		hooks:    hooks,
		logger:   logger,
	}
}

// groupAllocator hands out fresh group IDs within one transaction.
type groupAllocator struct {
	qtx  *store.Queries
	next int64
}

func newGroupAllocator(ctx context.Context, qtx *store.Queries) (*groupAllocator, error) {
	max, err := qtx.MaxGroupID(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocating group id: %w", err)
	}
	return &groupAllocator{qtx: qtx, next: max + 1}, nil
}

func (a *groupAllocator) alloc() int64 {
	id := a.next
	a.next++
	return id
}

// LanguageOf returns the language assigned to an entity, or nil when the
// entity has none or its language was removed from the registry. Reads are
// memoized in the per-request cache when one is installed.
func (s *Store) LanguageOf(ctx context.Context, entityType string, entityID int64) (*store.Language, error) {
	key := cache.EntityKey(entityType, entityID)
	rc := cache.RequestCacheFrom(ctx)

	if rc != nil {
		if langID, ok := rc.GetLanguage(key); ok {
			return s.languageByID(ctx, langID)
		}
	}

	row, err := s.queries.GetTranslation(ctx, store.GetTranslationParams{
		EntityType: entityType,
		EntityID:   entityID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		if rc != nil {
			rc.SetLanguage(key, 0)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching entity language: %w", err)
	}

	if rc != nil {
		rc.SetLanguage(key, row.LanguageID)
	}
	return s.languageByID(ctx, row.LanguageID)
}

// languageByID resolves a memoized language ID, treating zero and orphaned
// IDs as "no language".
func (s *Store) languageByID(ctx context.Context, langID int64) (*store.Language, error) {
	if langID == 0 {
		return nil, nil
	}
	lang, err := s.registry.GetByID(ctx, langID)
	if errors.Is(err, model.ErrNotFound) {
		// Language deleted from the registry; membership row is orphaned.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lang, nil
}

// SetLanguage assigns a language to an entity. A new entity gets a fresh
// singleton group; an entity that already has a group keeps it, only the
// language changes. Changing the language never re-links the entity into a
// different group. Returns ErrUnknownLanguage for unregistered languages.
func (s *Store) SetLanguage(ctx context.Context, entityType string, entityID, languageID int64) error {
	if _, err := s.registry.GetByID(ctx, languageID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("%w: language id %d", model.ErrUnknownLanguage, languageID)
		}
		return err
	}

	var change *hook.LanguageChange

	err := s.inTx(ctx, func(qtx *store.Queries) error {
		existing, err := qtx.GetTranslation(ctx, store.GetTranslationParams{
			EntityType: entityType,
			EntityID:   entityID,
		})
		switch {
		case errors.Is(err, sql.ErrNoRows):
			alloc, err := newGroupAllocator(ctx, qtx)
			if err != nil {
				return err
			}
			groupID := alloc.alloc()
			if err := qtx.InsertTranslation(ctx, store.InsertTranslationParams{
				GroupID:    groupID,
				LanguageID: languageID,
				EntityType: entityType,
				EntityID:   entityID,
				CreatedAt:  time.Now(),
			}); err != nil {
				return fmt.Errorf("inserting group membership: %w", err)
			}
			change = &hook.LanguageChange{
				EntityType: entityType,
				EntityID:   entityID,
				LanguageID: languageID,
				GroupID:    groupID,
			}
			return nil

		case err != nil:
			return fmt.Errorf("fetching group membership: %w", err)

		case existing.LanguageID == languageID:
			// Re-assigning the same language is a no-op, not an error.
			return nil
		}

		// The target language slot in this group may be occupied by a
		// sibling; move that sibling to a fresh singleton group so the
		// one-member-per-language invariant holds.
		if err := s.displaceOccupant(ctx, qtx, existing.GroupID, languageID, entityType, entityID); err != nil {
			return err
		}

		if err := qtx.UpdateTranslationLanguage(ctx, store.UpdateTranslationLanguageParams{
			LanguageID: languageID,
			EntityType: entityType,
			EntityID:   entityID,
		}); err != nil {
			return fmt.Errorf("updating entity language: %w", err)
		}

		change = &hook.LanguageChange{
			EntityType: entityType,
			EntityID:   entityID,
			LanguageID: languageID,
			GroupID:    existing.GroupID,
		}
		return nil
	})
	if err != nil {
		return err
	}

	if rc := cache.RequestCacheFrom(ctx); rc != nil {
		rc.Invalidate(cache.EntityKey(entityType, entityID))
	}

	if change != nil {
		s.logger.Info("entity language set",
			"entity_type", entityType, "entity_id", entityID,
			"language_id", languageID, "group_id", change.GroupID,
		)
		s.hooks.Emit(ctx, hook.HookLanguageChanged, change)
	}
	return nil
}

// SetTranslations links entities as translations of the primary entity,
// all within the primary's group. Map keys are language IDs, values the
// entity to occupy that slot; model.UnlinkEntity removes the slot's member
// into a fresh singleton group. The primary must already have a language
// (ErrNoGroup otherwise). The whole call validates before writing: any
// unregistered language rejects the batch with ErrValidation.
func (s *Store) SetTranslations(ctx context.Context, entityType string, entityID int64, links map[int64]int64) error {
	// Validate every referenced language up front; no partial writes.
	langIDs := make([]int64, 0, len(links))
	for langID := range links {
		langIDs = append(langIDs, langID)
	}
	sort.Slice(langIDs, func(i, j int) bool { return langIDs[i] < langIDs[j] })

	for _, langID := range langIDs {
		if _, err := s.registry.GetByID(ctx, langID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return fmt.Errorf("%w: unregistered language id %d", model.ErrValidation, langID)
			}
			return err
		}
	}

	touched := []string{cache.EntityKey(entityType, entityID)}
	var groupID int64

	err := s.inTx(ctx, func(qtx *store.Queries) error {
		self, err := qtx.GetTranslation(ctx, store.GetTranslationParams{
			EntityType: entityType,
			EntityID:   entityID,
		})
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s %d", model.ErrNoGroup, entityType, entityID)
		}
		if err != nil {
			return fmt.Errorf("fetching group membership: %w", err)
		}
		groupID = self.GroupID

		for _, langID := range langIDs {
			target := links[langID]

			if target == model.UnlinkEntity {
				if err := s.unlinkSlot(ctx, qtx, groupID, langID, self); err != nil {
					return err
				}
				continue
			}

			if target == entityID {
				// The primary's own language is managed through SetLanguage.
				continue
			}
			touched = append(touched, cache.EntityKey(entityType, target))

			if err := s.linkSlot(ctx, qtx, groupID, langID, entityType, target); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if rc := cache.RequestCacheFrom(ctx); rc != nil {
		for _, key := range touched {
			rc.Invalidate(key)
		}
	}

	s.logger.Info("translations linked",
		"entity_type", entityType, "entity_id", entityID,
		"group_id", groupID, "links", len(links),
	)
	s.hooks.Emit(ctx, hook.HookTranslationsChanged, &hook.TranslationsChange{
		EntityType: entityType,
		EntityID:   entityID,
		GroupID:    groupID,
	})
	return nil
}

// unlinkSlot removes the member occupying (groupID, langID) into a fresh
// singleton group, keeping its language assignment. The primary entity is
// never unlinked from its own group.
func (s *Store) unlinkSlot(ctx context.Context, qtx *store.Queries, groupID, langID int64, self store.Translation) error {
	member, err := qtx.GetGroupMemberByLanguage(ctx, store.GetGroupMemberByLanguageParams{
		GroupID:    groupID,
		LanguageID: langID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetching group member: %w", err)
	}
	if member.EntityType == self.EntityType && member.EntityID == self.EntityID {
		return nil
	}

	alloc, err := newGroupAllocator(ctx, qtx)
	if err != nil {
		return err
	}
	if err := qtx.MoveTranslation(ctx, store.MoveTranslationParams{
		GroupID:    alloc.alloc(),
		LanguageID: member.LanguageID,
		EntityType: member.EntityType,
		EntityID:   member.EntityID,
	}); err != nil {
		return fmt.Errorf("unlinking group member: %w", err)
	}
	return nil
}

// linkSlot places target into the (groupID, langID) slot, displacing any
// current occupant and pulling target out of whatever group it was in.
func (s *Store) linkSlot(ctx context.Context, qtx *store.Queries, groupID, langID int64, entityType string, target int64) error {
	current, err := qtx.GetTranslation(ctx, store.GetTranslationParams{
		EntityType: entityType,
		EntityID:   target,
	})
	haveRow := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("fetching target membership: %w", err)
	}

	if haveRow && current.GroupID == groupID && current.LanguageID == langID {
		return nil
	}

	if err := s.displaceOccupant(ctx, qtx, groupID, langID, entityType, target); err != nil {
		return err
	}

	if haveRow {
		if err := qtx.MoveTranslation(ctx, store.MoveTranslationParams{
			GroupID:    groupID,
			LanguageID: langID,
			EntityType: entityType,
			EntityID:   target,
		}); err != nil {
			return fmt.Errorf("moving target into group: %w", err)
		}
		return nil
	}

	if err := qtx.InsertTranslation(ctx, store.InsertTranslationParams{
		GroupID:    groupID,
		LanguageID: langID,
		EntityType: entityType,
		EntityID:   target,
		CreatedAt:  time.Now(),
	}); err != nil {
		return fmt.Errorf("inserting group member: %w", err)
	}
	return nil
}

// displaceOccupant moves whoever occupies (groupID, langID) into a fresh
// singleton group, unless it is the entity being written itself.
func (s *Store) displaceOccupant(ctx context.Context, qtx *store.Queries, groupID, langID int64, entityType string, entityID int64) error {
	occupant, err := qtx.GetGroupMemberByLanguage(ctx, store.GetGroupMemberByLanguageParams{
		GroupID:    groupID,
		LanguageID: langID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetching slot occupant: %w", err)
	}
	if occupant.EntityType == entityType && occupant.EntityID == entityID {
		return nil
	}

	alloc, err := newGroupAllocator(ctx, qtx)
	if err != nil {
		return err
	}
	if err := qtx.MoveTranslation(ctx, store.MoveTranslationParams{
		GroupID:    alloc.alloc(),
		LanguageID: occupant.LanguageID,
		EntityType: occupant.EntityType,
		EntityID:   occupant.EntityID,
	}); err != nil {
		return fmt.Errorf("displacing slot occupant: %w", err)
	}
	return nil
}

// Translations returns the entity's translation set as a language-ID to
// entity-ID mapping. Members whose language was removed from the registry
// are skipped. Returns an empty map when the entity has no group.
func (s *Store) Translations(ctx context.Context, entityType string, entityID int64, includeSelf bool) (map[int64]int64, error) {
	rows, err := s.queries.GetRelatedTranslations(ctx, store.GetRelatedTranslationsParams{
		EntityType: entityType,
		EntityID:   entityID,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching group members: %w", err)
	}

	out := make(map[int64]int64, len(rows))
	for _, row := range rows {
		if row.LanguageSlug == "" {
			continue // orphaned membership
		}
		if !includeSelf && row.EntityID == entityID {
			continue
		}
		out[row.LanguageID] = row.EntityID
	}
	return out, nil
}

// TranslationsBySlug is Translations keyed by language slug, for callers
// that address languages by URL marker.
func (s *Store) TranslationsBySlug(ctx context.Context, entityType string, entityID int64, includeSelf bool) (map[string]int64, error) {
	rows, err := s.queries.GetRelatedTranslations(ctx, store.GetRelatedTranslationsParams{
		EntityType: entityType,
		EntityID:   entityID,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching group members: %w", err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		if row.LanguageSlug == "" {
			continue
		}
		if !includeSelf && row.EntityID == entityID {
			continue
		}
		out[row.LanguageSlug] = row.EntityID
	}
	return out, nil
}

// Translation looks up the entity's sister translation in the given
// language. When no member exists for that language, returns the entity
// itself if returnSelfIfMissing is set, otherwise reports absence.
func (s *Store) Translation(ctx context.Context, entityType string, entityID, languageID int64, returnSelfIfMissing bool) (int64, bool, error) {
	translations, err := s.Translations(ctx, entityType, entityID, true)
	if err != nil {
		return 0, false, err
	}
	if id, ok := translations[languageID]; ok {
		return id, true, nil
	}
	if returnSelfIfMissing {
		return entityID, true, nil
	}
	return 0, false, nil
}

// Unlink removes the entity's group membership row entirely. Used when the
// entity itself is deleted. Unlinking an entity without a row is a no-op.
func (s *Store) Unlink(ctx context.Context, entityType string, entityID int64) error {
	row, err := s.queries.GetTranslation(ctx, store.GetTranslationParams{
		EntityType: entityType,
		EntityID:   entityID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetching group membership: %w", err)
	}

	if err := s.queries.DeleteTranslation(ctx, store.DeleteTranslationParams{
		EntityType: entityType,
		EntityID:   entityID,
	}); err != nil {
		return fmt.Errorf("deleting group membership: %w", err)
	}

	if rc := cache.RequestCacheFrom(ctx); rc != nil {
		rc.Invalidate(cache.EntityKey(entityType, entityID))
	}

	s.logger.Info("entity unlinked",
		"entity_type", entityType, "entity_id", entityID, "group_id", row.GroupID,
	)
	s.hooks.Emit(ctx, hook.HookTranslationsChanged, &hook.TranslationsChange{
		EntityType: entityType,
		EntityID:   entityID,
		GroupID:    row.GroupID,
	})
	return nil
}

// inTx runs fn inside a transaction, committing on nil error.
func (s *Store) inTx(ctx context.Context, fn func(qtx *store.Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(s.queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
