// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const languageColumns = `id, slug, name, native_name, short_name, locale_name, locales, direction, position, is_default, is_active, created_at, updated_at`

func scanLanguage(row interface{ Scan(...any) error }) (Language, error) {
	var l Language
	err := row.Scan(
		&l.ID,
		&l.Slug,
		&l.Name,
		&l.NativeName,
		&l.ShortName,
		&l.LocaleName,
		&l.Locales,
		&l.Direction,
		&l.Position,
		&l.IsDefault,
		&l.IsActive,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

// CreateLanguageParams holds the fields for CreateLanguage.
type CreateLanguageParams struct {
	Slug       string
	Name       string
	NativeName string
	ShortName  string
	LocaleName string
	Locales    string
	Direction  string
	Position   int64
	IsDefault  bool
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateLanguage inserts a new language and returns the stored row.
func (q *Queries) CreateLanguage(ctx context.Context, arg CreateLanguageParams) (Language, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO languages (slug, name, native_name, short_name, locale_name, locales, direction, position, is_default, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+languageColumns,
		arg.Slug, arg.Name, arg.NativeName, arg.ShortName, arg.LocaleName, arg.Locales,
		arg.Direction, arg.Position, arg.IsDefault, arg.IsActive, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanLanguage(row)
}

// GetLanguage fetches a language by ID.
func (q *Queries) GetLanguage(ctx context.Context, id int64) (Language, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+languageColumns+` FROM languages WHERE id = ?`, id)
	return scanLanguage(row)
}

// GetLanguageBySlug fetches a language by its URL slug.
func (q *Queries) GetLanguageBySlug(ctx context.Context, slug string) (Language, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+languageColumns+` FROM languages WHERE slug = ?`, slug)
	return scanLanguage(row)
}

// GetDefaultLanguage fetches the language flagged as default.
func (q *Queries) GetDefaultLanguage(ctx context.Context) (Language, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+languageColumns+` FROM languages WHERE is_default = 1 LIMIT 1`)
	return scanLanguage(row)
}

func (q *Queries) listLanguages(ctx context.Context, query string, args ...any) ([]Language, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Language
	for rows.Next() {
		l, err := scanLanguage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListLanguages returns all languages ordered by position, ties broken by ID.
func (q *Queries) ListLanguages(ctx context.Context) ([]Language, error) {
	return q.listLanguages(ctx, `SELECT `+languageColumns+` FROM languages ORDER BY position ASC, id ASC`)
}

// ListActiveLanguages returns active languages ordered by position, ties broken by ID.
func (q *Queries) ListActiveLanguages(ctx context.Context) ([]Language, error) {
	return q.listLanguages(ctx, `SELECT `+languageColumns+` FROM languages WHERE is_active = 1 ORDER BY position ASC, id ASC`)
}

// CountLanguages returns the number of registered languages.
func (q *Queries) CountLanguages(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM languages`).Scan(&n)
	return n, err
}

// LanguageSlugExists returns a non-zero value if the slug is already registered.
func (q *Queries) LanguageSlugExists(ctx context.Context, slug string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM languages WHERE slug = ?`, slug).Scan(&n)
	return n, err
}

// GetMaxLanguagePosition returns the highest position value, or nil when
// no languages exist.
func (q *Queries) GetMaxLanguagePosition(ctx context.Context) (any, error) {
	var max any
	err := q.db.QueryRowContext(ctx, `SELECT MAX(position) FROM languages`).Scan(&max)
	return max, err
}

// UpdateLanguageParams holds the fields for UpdateLanguage.
type UpdateLanguageParams struct {
	ID         int64
	Slug       string
	Name       string
	NativeName string
	ShortName  string
	LocaleName string
	Locales    string
	Direction  string
	Position   int64
	IsActive   bool
	UpdatedAt  time.Time
}

// UpdateLanguage updates a language's editable fields and returns the stored row.
// The default flag is managed separately through SetDefaultLanguage.
func (q *Queries) UpdateLanguage(ctx context.Context, arg UpdateLanguageParams) (Language, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE languages
		SET slug = ?, name = ?, native_name = ?, short_name = ?, locale_name = ?, locales = ?, direction = ?, position = ?, is_active = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+languageColumns,
		arg.Slug, arg.Name, arg.NativeName, arg.ShortName, arg.LocaleName, arg.Locales,
		arg.Direction, arg.Position, arg.IsActive, arg.UpdatedAt, arg.ID,
	)
	return scanLanguage(row)
}

// UpdateLanguagePosition moves a language to the given sort position.
func (q *Queries) UpdateLanguagePosition(ctx context.Context, id, position int64, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE languages SET position = ?, updated_at = ? WHERE id = ?`,
		position, updatedAt, id,
	)
	return err
}

// ClearDefaultLanguage clears the default flag on all languages.
func (q *Queries) ClearDefaultLanguage(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, `UPDATE languages SET is_default = 0 WHERE is_default = 1`)
	return err
}

// SetDefaultLanguage sets the default flag on the given language.
func (q *Queries) SetDefaultLanguage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE languages SET is_default = 1 WHERE id = ?`, id)
	return err
}

// DeleteLanguage removes a language from the registry. Translation group
// rows referencing it are left in place and resolve to no language.
func (q *Queries) DeleteLanguage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM languages WHERE id = ?`, id)
	return err
}
