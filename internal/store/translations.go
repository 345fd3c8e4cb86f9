// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const translationColumns = `group_id, language_id, entity_type, entity_id, created_at`

func scanTranslation(row interface{ Scan(...any) error }) (Translation, error) {
	var t Translation
	err := row.Scan(&t.GroupID, &t.LanguageID, &t.EntityType, &t.EntityID, &t.CreatedAt)
	return t, err
}

// GetTranslationParams identifies a group member by entity.
type GetTranslationParams struct {
	EntityType string
	EntityID   int64
}

// GetTranslation fetches the group membership row of an entity.
func (q *Queries) GetTranslation(ctx context.Context, arg GetTranslationParams) (Translation, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+translationColumns+` FROM translations WHERE entity_type = ? AND entity_id = ?`,
		arg.EntityType, arg.EntityID,
	)
	return scanTranslation(row)
}

// GetGroupMembers returns all rows of a translation group.
func (q *Queries) GetGroupMembers(ctx context.Context, groupID int64) ([]Translation, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+translationColumns+` FROM translations WHERE group_id = ? ORDER BY language_id ASC`,
		groupID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Translation
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetGroupMemberByLanguageParams identifies a group slot.
type GetGroupMemberByLanguageParams struct {
	GroupID    int64
	LanguageID int64
}

// GetGroupMemberByLanguage fetches the member occupying a (group, language) slot.
func (q *Queries) GetGroupMemberByLanguage(ctx context.Context, arg GetGroupMemberByLanguageParams) (Translation, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+translationColumns+` FROM translations WHERE group_id = ? AND language_id = ?`,
		arg.GroupID, arg.LanguageID,
	)
	return scanTranslation(row)
}

// GetRelatedTranslationsParams identifies the entity whose group is listed.
type GetRelatedTranslationsParams struct {
	EntityType string
	EntityID   int64
}

// GetRelatedTranslations returns every member of the entity's group joined
// with its language slug. Orphaned members (language deleted) come back
// with an empty slug. Returns no rows when the entity has no group.
func (q *Queries) GetRelatedTranslations(ctx context.Context, arg GetRelatedTranslationsParams) ([]TranslationWithLanguage, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT t.group_id, t.language_id, t.entity_type, t.entity_id, t.created_at,
		       COALESCE(l.slug, '') AS language_slug
		FROM translations t
		JOIN translations self ON self.group_id = t.group_id
		LEFT JOIN languages l ON l.id = t.language_id
		WHERE self.entity_type = ? AND self.entity_id = ?
		ORDER BY t.language_id ASC`,
		arg.EntityType, arg.EntityID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TranslationWithLanguage
	for rows.Next() {
		var t TranslationWithLanguage
		if err := rows.Scan(&t.GroupID, &t.LanguageID, &t.EntityType, &t.EntityID, &t.CreatedAt, &t.LanguageSlug); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MaxGroupID returns the highest group_id in use, or zero when no groups exist.
func (q *Queries) MaxGroupID(ctx context.Context) (int64, error) {
	var max int64
	err := q.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(group_id), 0) FROM translations`).Scan(&max)
	return max, err
}

// CountGroupMembers returns the number of members in a group.
func (q *Queries) CountGroupMembers(ctx context.Context, groupID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM translations WHERE group_id = ?`, groupID).Scan(&n)
	return n, err
}

// InsertTranslationParams holds the fields for InsertTranslation.
type InsertTranslationParams struct {
	GroupID    int64
	LanguageID int64
	EntityType string
	EntityID   int64
	CreatedAt  time.Time
}

// InsertTranslation creates a group membership row.
func (q *Queries) InsertTranslation(ctx context.Context, arg InsertTranslationParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO translations (group_id, language_id, entity_type, entity_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		arg.GroupID, arg.LanguageID, arg.EntityType, arg.EntityID, arg.CreatedAt,
	)
	return err
}

// UpdateTranslationLanguageParams holds the fields for UpdateTranslationLanguage.
type UpdateTranslationLanguageParams struct {
	LanguageID int64
	EntityType string
	EntityID   int64
}

// UpdateTranslationLanguage changes an entity's language in place, keeping
// its group membership.
func (q *Queries) UpdateTranslationLanguage(ctx context.Context, arg UpdateTranslationLanguageParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE translations SET language_id = ? WHERE entity_type = ? AND entity_id = ?`,
		arg.LanguageID, arg.EntityType, arg.EntityID,
	)
	return err
}

// MoveTranslationParams holds the fields for MoveTranslation.
type MoveTranslationParams struct {
	GroupID    int64
	LanguageID int64
	EntityType string
	EntityID   int64
}

// MoveTranslation reassigns an entity to a different group and language slot.
func (q *Queries) MoveTranslation(ctx context.Context, arg MoveTranslationParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE translations SET group_id = ?, language_id = ? WHERE entity_type = ? AND entity_id = ?`,
		arg.GroupID, arg.LanguageID, arg.EntityType, arg.EntityID,
	)
	return err
}

// DeleteTranslationParams identifies the row to delete.
type DeleteTranslationParams struct {
	EntityType string
	EntityID   int64
}

// DeleteTranslation removes an entity's group membership row entirely.
func (q *Queries) DeleteTranslation(ctx context.Context, arg DeleteTranslationParams) error {
	_, err := q.db.ExecContext(ctx, `
		DELETE FROM translations WHERE entity_type = ? AND entity_id = ?`,
		arg.EntityType, arg.EntityID,
	)
	return err
}
