// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package resolver picks exactly one language for a request from the
// competing signals: explicit parameter, URL marker, the language of the
// object being served, visitor preference, and the registry default.
package resolver

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/olegiv/ocms-multilang/internal/group"
	"github.com/olegiv/ocms-multilang/internal/model"
	"github.com/olegiv/ocms-multilang/internal/registry"
	"github.com/olegiv/ocms-multilang/internal/store"
	"github.com/olegiv/ocms-multilang/internal/urlrewrite"
)

// Signals carries the per-request inputs consulted during resolution.
type Signals struct {
	Param          string           // explicit GET/POST language parameter
	URL            string           // full request URL, parsed by the rewriter
	AcceptLanguage string           // Accept-Language header value
	Cookie         string           // stored language preference, if any
	IsHome         bool             // preference signals apply to the home page only
	Entity         *model.EntityRef // object being served, if known
}

// Options tunes the resolution behavior.
type Options struct {
	// PostOverride lets the served object's language override the
	// URL-derived one.
	PostOverride bool
	// BrowserDetect consults the preference cookie and Accept-Language
	// on the home page when no stronger signal matched.
	BrowserDetect bool
}

// Resolver implements the precedence chain. It is stateless; per-request
// memoization lives in the Resolution carried by the context.
type Resolver struct {
	registry *registry.Registry
	groups   *group.Store
	rewriter *urlrewrite.Rewriter
	opts     Options
	logger   *slog.Logger
}

// New creates a Resolver.
func New(reg *registry.Registry, groups *group.Store, rewriter *urlrewrite.Rewriter, opts Options, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		registry: reg,
		groups:   groups,
		rewriter: rewriter,
		opts:     opts,
		logger:   logger,
	}
}

// Resolve evaluates the precedence chain once and returns the winning
// language. Resolution is total: with a non-empty registry some language
// always comes back. Unrecognized tokens at any step count as absent and
// fall through, never as errors.
//
// Precedence: explicit parameter, URL marker, served object's language
// (when enabled), preference cookie and Accept-Language (home page only,
// when enabled), registry default.
func (r *Resolver) Resolve(ctx context.Context, sig Signals) (*store.Language, error) {
	// 1. Explicit request parameter. Registered languages win here even
	// when inactive, so editors can preview drafts in hidden languages.
	if sig.Param != "" {
		lang, err := r.registry.GetBySlug(ctx, sig.Param)
		if err == nil {
			return &lang, nil
		}
		if !errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
	}

	// 2. URL-embedded marker for the configured scheme. Marker-only
	// extraction here: under hide-default an unmarked URL must stay
	// unresolved so the preference step below remains reachable, with
	// the implicit default falling out of the final fallback instead.
	candidate, _, err := r.rewriter.ExtractMarker(ctx, sig.URL)
	if err != nil {
		return nil, err
	}

	// 3. Language of the object being served overrides the URL marker.
	if r.opts.PostOverride && sig.Entity != nil {
		objLang, err := r.groups.LanguageOf(ctx, sig.Entity.Type, sig.Entity.ID)
		if err != nil {
			return nil, err
		}
		if objLang != nil && objLang.IsActive {
			candidate = objLang
		}
	}

	if candidate != nil {
		return candidate, nil
	}

	// 4. Visitor preference, home page only.
	if r.opts.BrowserDetect && sig.IsHome {
		if sig.Cookie != "" {
			lang, err := r.registry.GetBySlug(ctx, sig.Cookie)
			if err == nil && lang.IsActive {
				return &lang, nil
			}
			if err != nil && !errors.Is(err, model.ErrNotFound) {
				return nil, err
			}
		}
		if sig.AcceptLanguage != "" {
			lang, err := r.matchAcceptLanguage(ctx, sig.AcceptLanguage)
			if err != nil {
				return nil, err
			}
			if lang != nil {
				return lang, nil
			}
		}
	}

	// 5. Registry default; first active language as a last resort.
	return r.fallback(ctx)
}

// ResolveRequest resolves once per request: when the context carries a
// Resolution that already holds a language, that value is returned
// unchanged. Otherwise the chain runs and the outcome is stored.
func (r *Resolver) ResolveRequest(ctx context.Context, sig Signals) (*store.Language, error) {
	res := ResolutionFrom(ctx)
	if res != nil {
		if lang := res.Language(); lang != nil {
			return lang, nil
		}
	}

	lang, err := r.Resolve(ctx, sig)
	if err != nil {
		return nil, err
	}
	if res != nil {
		res.Set(lang)
	}
	return lang, nil
}

// matchAcceptLanguage maps the Accept-Language header onto the active
// languages through their locale code lists.
func (r *Resolver) matchAcceptLanguage(ctx context.Context, header string) (*store.Language, error) {
	active, err := r.registry.All(ctx, true)
	if err != nil {
		return nil, err
	}

	var tags []language.Tag
	var owner []int
	for i, l := range active {
		for _, code := range l.LocaleList() {
			tag, err := language.Parse(code)
			if err != nil {
				continue
			}
			tags = append(tags, tag)
			owner = append(owner, i)
		}
	}
	if len(tags) == 0 {
		return nil, nil
	}

	desired, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(desired) == 0 {
		// A malformed header is an absent signal, not an error.
		return nil, nil
	}

	matcher := language.NewMatcher(tags)
	_, idx, conf := matcher.Match(desired...)
	if conf == language.No {
		return nil, nil
	}
	return &active[owner[idx]], nil
}

// fallback returns the registry default, or the first active language when
// no default is flagged. Returns nil only for an empty registry.
func (r *Resolver) fallback(ctx context.Context) (*store.Language, error) {
	def, err := r.registry.Default(ctx)
	if err != nil {
		return nil, err
	}
	if def != nil {
		return def, nil
	}

	active, err := r.registry.All(ctx, true)
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		return &active[0], nil
	}

	r.logger.Warn("language resolution fell through an empty registry")
	return nil, nil
}
