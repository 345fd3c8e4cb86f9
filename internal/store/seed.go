// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Default language seeded into an empty installation.
const (
	DefaultLanguageSlug   = "en"
	DefaultLanguageName   = "English"
	DefaultLanguageLocale = "en_US"
)

// Seed creates the default language when the languages table is empty.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	n, err := queries.CountLanguages(ctx)
	if err != nil {
		return fmt.Errorf("counting languages: %w", err)
	}
	if n > 0 {
		slog.Info("languages already configured, skipping seed", "count", n)
		return nil
	}

	now := time.Now()
	lang, err := queries.CreateLanguage(ctx, CreateLanguageParams{
		Slug:       DefaultLanguageSlug,
		Name:       DefaultLanguageName,
		NativeName: DefaultLanguageName,
		ShortName:  "EN",
		LocaleName: DefaultLanguageLocale,
		Locales:    "en,en-US,en-GB",
		Direction:  "ltr",
		Position:   0,
		IsDefault:  true,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return fmt.Errorf("creating default language: %w", err)
	}

	slog.Info("created default language", "id", lang.ID, "slug", lang.Slug)
	return nil
}
