// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"strings"
	"time"

	"github.com/olegiv/ocms-multilang/internal/model"
)

// Language represents a content language registered with the platform.
type Language struct {
	ID         int64     `json:"id"`
	Slug       string    `json:"slug"`        // URL marker: en, ru, de, fr
	Name       string    `json:"name"`        // English, Russian, German, French
	NativeName string    `json:"native_name"` // English, Русский, Deutsch, Français
	ShortName  string    `json:"short_name"`  // EN, RU, DE, FR
	LocaleName string    `json:"locale_name"` // message-catalog locale: en_US, ru_RU
	Locales    string    `json:"locales"`     // comma-separated codes matched against Accept-Language
	Direction  string    `json:"direction"`   // ltr, rtl
	Position   int64     `json:"position"`    // sort order in language switcher
	IsDefault  bool      `json:"is_default"`  // only one can be default
	IsActive   bool      `json:"is_active"`   // enabled for public resolution
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsRTL returns true if the language is right-to-left.
func (l *Language) IsRTL() bool {
	return l.Direction == model.DirectionRTL
}

// LocaleList returns the locale codes matched against Accept-Language.
// The slug itself always counts as a matchable code.
func (l *Language) LocaleList() []string {
	out := []string{l.Slug}
	for _, code := range strings.Split(l.Locales, ",") {
		code = strings.TrimSpace(code)
		if code != "" && !strings.EqualFold(code, l.Slug) {
			out = append(out, code)
		}
	}
	return out
}

// Translation is one member of a translation group: the entity identified
// by (EntityType, EntityID) carries language LanguageID within group GroupID.
type Translation struct {
	GroupID    int64     `json:"group_id"`
	LanguageID int64     `json:"language_id"`
	EntityType string    `json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TranslationWithLanguage joins a group member with its language slug for
// display and cache keying. LanguageSlug is empty for orphaned rows whose
// language was removed from the registry.
type TranslationWithLanguage struct {
	Translation
	LanguageSlug string `json:"language_slug"`
}
