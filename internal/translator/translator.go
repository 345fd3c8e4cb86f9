// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translator is the read/write facade over the registry, group
// store, resolver and URL rewriter. Consumers (rendering, admin UI,
// content sync) depend on this package only.
package translator

import (
	"context"
	"log/slog"

	"github.com/olegiv/ocms-multilang/internal/group"
	"github.com/olegiv/ocms-multilang/internal/registry"
	"github.com/olegiv/ocms-multilang/internal/resolver"
	"github.com/olegiv/ocms-multilang/internal/store"
	"github.com/olegiv/ocms-multilang/internal/urlrewrite"
)

// Translator composes the multilingual core behind one surface.
type Translator struct {
	registry *registry.Registry
	groups   *group.Store
	resolver *resolver.Resolver
	rewriter *urlrewrite.Rewriter
	logger   *slog.Logger
}

// New creates a Translator facade.
func New(reg *registry.Registry, groups *group.Store, res *resolver.Resolver, rw *urlrewrite.Rewriter, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{
		registry: reg,
		groups:   groups,
		resolver: res,
		rewriter: rw,
		logger:   logger,
	}
}

// Registry exposes the language registry for admin surfaces.
func (t *Translator) Registry() *registry.Registry {
	return t.registry
}

// Groups exposes the translation group store for admin surfaces.
func (t *Translator) Groups() *group.Store {
	return t.groups
}

// Resolver exposes the language resolver for the HTTP middleware.
func (t *Translator) Resolver() *resolver.Resolver {
	return t.resolver
}

// CurrentLanguage returns the language resolved for this request. When the
// request carries no resolution yet, the signals are evaluated and the
// outcome memoized.
func (t *Translator) CurrentLanguage(ctx context.Context, sig resolver.Signals) (*store.Language, error) {
	return t.resolver.ResolveRequest(ctx, sig)
}

// LanguageOf returns the language assigned to an entity, or nil.
func (t *Translator) LanguageOf(ctx context.Context, entityType string, entityID int64) (*store.Language, error) {
	return t.groups.LanguageOf(ctx, entityType, entityID)
}

// TranslationOf returns the entity's sister translation in the given
// language. A nil language defaults to the request's resolved language.
// The second return reports whether a translation exists.
func (t *Translator) TranslationOf(ctx context.Context, entityType string, entityID int64, lang *store.Language) (int64, bool, error) {
	lang = t.orCurrent(ctx, lang)
	if lang == nil {
		return 0, false, nil
	}
	return t.groups.Translation(ctx, entityType, entityID, lang.ID, false)
}

// LocalizedURL rewrites a URL to carry the marker of the given language
// under the configured scheme. A nil language defaults to the request's
// resolved language.
func (t *Translator) LocalizedURL(ctx context.Context, rawURL string, lang *store.Language) (string, error) {
	lang = t.orCurrent(ctx, lang)
	if lang == nil {
		return rawURL, nil
	}
	return t.rewriter.Inject(ctx, rawURL, lang)
}

// SetLanguage assigns a language to an entity.
func (t *Translator) SetLanguage(ctx context.Context, entityType string, entityID, languageID int64) error {
	return t.groups.SetLanguage(ctx, entityType, entityID, languageID)
}

// SetTranslations links entities into the primary entity's translation group.
func (t *Translator) SetTranslations(ctx context.Context, entityType string, entityID int64, links map[int64]int64) error {
	return t.groups.SetTranslations(ctx, entityType, entityID, links)
}

// Unlink removes an entity from the translation group store entirely.
func (t *Translator) Unlink(ctx context.Context, entityType string, entityID int64) error {
	return t.groups.Unlink(ctx, entityType, entityID)
}

// orCurrent substitutes the request's already-resolved language for nil.
func (t *Translator) orCurrent(ctx context.Context, lang *store.Language) *store.Language {
	if lang != nil {
		return lang
	}
	if res := resolver.ResolutionFrom(ctx); res != nil {
		return res.Language()
	}
	return nil
}
