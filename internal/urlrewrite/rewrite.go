// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package urlrewrite embeds and extracts the language marker in URLs.
// Three schemes are supported: a subdomain (en.example.com/page), a path
// prefix (example.com/en/page), and a query argument (example.com/page?lang=en).
// Extract and Inject are symmetric: for a URL without a competing marker,
// extracting after injecting yields the original URL and language back.
package urlrewrite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/olegiv/ocms-multilang/internal/hook"
	"github.com/olegiv/ocms-multilang/internal/model"
	"github.com/olegiv/ocms-multilang/internal/registry"
	"github.com/olegiv/ocms-multilang/internal/store"
)

var (
	// domainMarker matches a language-slug subdomain. The grammar mirrors
	// util.IsValidLanguageSlug so every registrable slug is extractable.
	domainMarker = regexp.MustCompile(`^([a-z]{2,3}(?:-[a-z]{2})?)\.`)
	// pathMarker matches a language-slug path segment.
	pathMarker = regexp.MustCompile(`^([a-z]{2,3}(?:-[a-z]{2})?)(/|$)`)
)

// Options configures the rewriter.
type Options struct {
	Scheme      string // model.SchemeDomain, SchemePath or SchemeQuery
	BasePath    string // site base path stripped before the path marker, e.g. "/site"
	QueryParam  string // parameter name for the query scheme, e.g. "lang"
	HideDefault bool   // default language carries no marker
}

// Rewriter parses and synthesizes URLs carrying a language marker.
type Rewriter struct {
	registry *registry.Registry
	hooks    *hook.Registry
	opts     Options
	logger   *slog.Logger
}

// New creates a Rewriter. The hook registry may be nil when no URL
// post-processing is wired.
func New(reg *registry.Registry, hooks *hook.Registry, opts Options, logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.QueryParam == "" {
		opts.QueryParam = "lang"
	}
	opts.BasePath = strings.TrimSuffix(opts.BasePath, "/")
	return &Rewriter{
		registry: reg,
		hooks:    hooks,
		opts:     opts,
		logger:   logger,
	}
}

// Scheme returns the configured embedding scheme.
func (rw *Rewriter) Scheme() string {
	return rw.opts.Scheme
}

// Extract splits a URL into its language marker and the remainder.
// Unmatched or unparsable input yields (nil, url unchanged); with
// hide-default enabled an absent marker resolves to the default language.
// The returned language is always active; markers naming inactive or
// unregistered languages count as absent.
func (rw *Rewriter) Extract(ctx context.Context, rawURL string) (*store.Language, string, error) {
	lang, remainder, err := rw.extractMarker(ctx, rawURL)
	if err != nil {
		return nil, rawURL, err
	}

	if lang == nil && rw.opts.HideDefault {
		def, err := rw.registry.Default(ctx)
		if err != nil {
			return nil, rawURL, err
		}
		return def, remainder, nil
	}

	return lang, remainder, nil
}

// ExtractMarker parses the URL like Extract but never applies the
// hide-default fallback: an unmarked URL yields a nil language even when
// the default language carries no marker. The resolver uses this so an
// unmarked URL can still fall through to weaker signals.
func (rw *Rewriter) ExtractMarker(ctx context.Context, rawURL string) (*store.Language, string, error) {
	return rw.extractMarker(ctx, rawURL)
}

// extractMarker does the scheme-specific parsing without default-language
// fallback. The remainder equals the input when nothing matched.
func (rw *Rewriter) extractMarker(ctx context.Context, rawURL string) (*store.Language, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		// Malformed input never fails extraction; it just carries no marker.
		return nil, rawURL, nil
	}

	switch rw.opts.Scheme {
	case model.SchemeDomain:
		host := u.Hostname()
		m := domainMarker.FindStringSubmatch(host)
		if m == nil {
			return nil, rawURL, nil
		}
		lang, err := rw.activeBySlug(ctx, m[1])
		if err != nil || lang == nil {
			return nil, rawURL, err
		}
		stripped := strings.TrimPrefix(host, m[1]+".")
		if port := u.Port(); port != "" {
			u.Host = stripped + ":" + port
		} else {
			u.Host = stripped
		}
		return lang, u.String(), nil

	case model.SchemePath:
		p := u.Path
		if rw.opts.BasePath != "" {
			if !strings.HasPrefix(p, rw.opts.BasePath) {
				return nil, rawURL, nil
			}
			p = strings.TrimPrefix(p, rw.opts.BasePath)
		}
		trimmed := strings.TrimPrefix(p, "/")
		m := pathMarker.FindStringSubmatch(trimmed)
		if m == nil {
			return nil, rawURL, nil
		}
		lang, err := rw.activeBySlug(ctx, m[1])
		if err != nil || lang == nil {
			return nil, rawURL, err
		}
		rest := strings.TrimPrefix(trimmed, m[1])
		if rest == "" {
			rest = "/"
		}
		u.Path = rw.opts.BasePath + rest
		return lang, u.String(), nil

	case model.SchemeQuery:
		q := u.Query()
		token := q.Get(rw.opts.QueryParam)
		if token == "" {
			return nil, rawURL, nil
		}
		lang, err := rw.activeBySlug(ctx, token)
		if err != nil || lang == nil {
			return nil, rawURL, err
		}
		q.Del(rw.opts.QueryParam)
		u.RawQuery = q.Encode()
		return lang, u.String(), nil

	default:
		return nil, rawURL, fmt.Errorf("unknown url scheme %q", rw.opts.Scheme)
	}
}

// Inject embeds the language marker into a URL, replacing any marker that
// is already present. With hide-default enabled the default language gets
// no marker. The result passes through the url.localized filter chain.
func (rw *Rewriter) Inject(ctx context.Context, rawURL string, lang *store.Language) (string, error) {
	if lang == nil {
		return rawURL, nil
	}

	// Strip a competing marker first so injection is idempotent.
	existing, remainder, err := rw.extractMarker(ctx, rawURL)
	if err != nil {
		return rawURL, err
	}
	if existing == nil {
		remainder = rawURL
	}

	out := remainder
	if !(rw.opts.HideDefault && lang.IsDefault) {
		out, err = rw.injectMarker(remainder, lang)
		if err != nil {
			return rawURL, err
		}
	}

	return rw.filterURL(ctx, out), nil
}

func (rw *Rewriter) injectMarker(rawURL string, lang *store.Language) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, nil
	}

	switch rw.opts.Scheme {
	case model.SchemeDomain:
		host := u.Hostname()
		if host == "" {
			// Relative URL; nowhere to embed a subdomain marker.
			return rawURL, nil
		}
		if port := u.Port(); port != "" {
			u.Host = lang.Slug + "." + host + ":" + port
		} else {
			u.Host = lang.Slug + "." + host
		}
		return u.String(), nil

	case model.SchemePath:
		p := u.Path
		if rw.opts.BasePath != "" && strings.HasPrefix(p, rw.opts.BasePath) {
			p = strings.TrimPrefix(p, rw.opts.BasePath)
		}
		if p == "" {
			p = "/"
		}
		u.Path = rw.opts.BasePath + "/" + lang.Slug + strings.TrimSuffix(p, "/")
		if strings.HasSuffix(p, "/") && p != "/" {
			u.Path += "/"
		}
		return u.String(), nil

	case model.SchemeQuery:
		q := u.Query()
		q.Set(rw.opts.QueryParam, lang.Slug)
		u.RawQuery = q.Encode()
		return u.String(), nil

	default:
		return rawURL, fmt.Errorf("unknown url scheme %q", rw.opts.Scheme)
	}
}

// activeBySlug resolves a marker token to an active registered language.
func (rw *Rewriter) activeBySlug(ctx context.Context, slug string) (*store.Language, error) {
	lang, err := rw.registry.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !lang.IsActive {
		return nil, nil
	}
	return &lang, nil
}

// filterURL runs the url.localized filter chain over the produced URL.
func (rw *Rewriter) filterURL(ctx context.Context, u string) string {
	if rw.hooks == nil {
		return u
	}
	result, err := rw.hooks.Call(ctx, hook.HookURLLocalized, u)
	if err != nil {
		rw.logger.Warn("url filter failed", "url", u, "error", err)
		return u
	}
	if s, ok := result.(string); ok {
		return s
	}
	return u
}
