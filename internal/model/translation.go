// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Entity types known to the translation group store. Any string is
// accepted; these are the ones the platform ships with.
const (
	EntityTypePage     = "page"
	EntityTypeCategory = "category"
	EntityTypeTag      = "tag"
)

// UnlinkEntity is the sentinel entity ID passed to SetTranslations to
// remove a language's member from a group instead of linking one.
const UnlinkEntity int64 = 0

// EntityRef identifies a content object managed by the platform.
type EntityRef struct {
	Type string `json:"entity_type"`
	ID   int64  `json:"entity_id"`
}

// TranslationLink is a single entry of an entity's translation set,
// shaped for JSON responses.
type TranslationLink struct {
	LanguageID   int64  `json:"language_id"`
	LanguageSlug string `json:"language_slug"`
	LanguageName string `json:"language_name"`
	NativeName   string `json:"native_name"`
	EntityID     int64  `json:"entity_id"`
	Exists       bool   `json:"exists"`
}
