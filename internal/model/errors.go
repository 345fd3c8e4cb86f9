// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "errors"

// Typed domain errors returned by the registry and translation group store.
// Callers match them with errors.Is.
var (
	// ErrUnknownLanguage is returned when an id or slug does not resolve
	// to a registered language.
	ErrUnknownLanguage = errors.New("unknown language")

	// ErrDuplicateSlug is returned when creating a language with a slug
	// that is already registered.
	ErrDuplicateSlug = errors.New("language slug already exists")

	// ErrNoGroup is returned when linking translations for an entity that
	// has no language assigned yet.
	ErrNoGroup = errors.New("entity has no translation group")

	// ErrValidation is returned when a batch operation references invalid
	// input; the whole operation is rejected with no partial writes.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned by lookups for entities that do not exist.
	ErrNotFound = errors.New("not found")
)
