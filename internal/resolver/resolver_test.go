// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package resolver

import (
	"context"
	"testing"

	"github.com/olegiv/ocms-multilang/internal/cache"
	"github.com/olegiv/ocms-multilang/internal/group"
	"github.com/olegiv/ocms-multilang/internal/hook"
	"github.com/olegiv/ocms-multilang/internal/model"
	"github.com/olegiv/ocms-multilang/internal/registry"
	"github.com/olegiv/ocms-multilang/internal/store"
	"github.com/olegiv/ocms-multilang/internal/testutil"
	"github.com/olegiv/ocms-multilang/internal/urlrewrite"
)

type fixture struct {
	resolver *Resolver
	registry *registry.Registry
	groups   *group.Store
	langs    map[string]store.Language
}

// newFixture seeds en (default), fr, de active and es inactive, with a
// path-scheme rewriter.
func newFixture(t *testing.T, opts Options, hideDefault bool) (*fixture, func()) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	logger := testutil.TestLogger()

	reg := registry.New(db, cache.NewLanguageCache(store.New(db), nil), logger)
	groups := group.New(db, reg, hook.NewRegistry(logger), logger)
	rw := urlrewrite.New(reg, nil, urlrewrite.Options{
		Scheme:      model.SchemePath,
		HideDefault: hideDefault,
	}, logger)

	langs := make(map[string]store.Language)
	for _, l := range []struct {
		slug, name, locales string
		active              bool
	}{
		{"en", "English", "en-US,en-GB", true},
		{"fr", "French", "fr-FR", true},
		{"de", "German", "de-DE", true},
		{"es", "Spanish", "es-ES", false},
	} {
		lang, err := reg.Add(context.Background(), registry.AddLanguageParams{
			Slug:     l.slug,
			Name:     l.name,
			Locales:  l.locales,
			IsActive: l.active,
		})
		if err != nil {
			t.Fatalf("Add(%q): %v", l.slug, err)
		}
		langs[l.slug] = lang
	}

	return &fixture{
		resolver: New(reg, groups, rw, opts, logger),
		registry: reg,
		groups:   groups,
		langs:    langs,
	}, cleanup
}

func wantSlug(t *testing.T, lang *store.Language, slug string) {
	t.Helper()
	if lang == nil {
		t.Fatalf("resolved language = nil, want %q", slug)
	}
	if lang.Slug != slug {
		t.Errorf("resolved language = %q, want %q", lang.Slug, slug)
	}
}

func TestResolvePrecedence(t *testing.T) {
	f, cleanup := newFixture(t, Options{PostOverride: true, BrowserDetect: true}, true)
	defer cleanup()
	ctx := context.Background()

	// An entity in German to exercise the object-language step.
	de := f.langs["de"]
	if err := f.groups.SetLanguage(ctx, model.EntityTypePage, 7, de.ID); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}

	tests := []struct {
		name string
		sig  Signals
		want string
	}{
		{
			"parameter beats url marker",
			Signals{Param: "fr", URL: "/de/about"},
			"fr",
		},
		{
			"parameter resolves inactive languages",
			Signals{Param: "es", URL: "/de/about"},
			"es",
		},
		{
			"unknown parameter falls through to marker",
			Signals{Param: "xx", URL: "/de/about"},
			"de",
		},
		{
			"url marker",
			Signals{URL: "/fr/about"},
			"fr",
		},
		{
			"object language beats url marker",
			Signals{URL: "/fr/about", Entity: &model.EntityRef{Type: model.EntityTypePage, ID: 7}},
			"de",
		},
		{
			"parameter beats object language",
			Signals{Param: "fr", URL: "/about", Entity: &model.EntityRef{Type: model.EntityTypePage, ID: 7}},
			"fr",
		},
		{
			"unmarked url resolves to default",
			Signals{URL: "/about"},
			"en",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.resolver.Resolve(ctx, tt.sig)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			wantSlug(t, got, tt.want)
		})
	}
}

func TestResolvePostOverrideDisabled(t *testing.T) {
	f, cleanup := newFixture(t, Options{PostOverride: false}, true)
	defer cleanup()
	ctx := context.Background()

	de := f.langs["de"]
	if err := f.groups.SetLanguage(ctx, model.EntityTypePage, 7, de.ID); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}

	got, err := f.resolver.Resolve(ctx, Signals{
		URL:    "/fr/about",
		Entity: &model.EntityRef{Type: model.EntityTypePage, ID: 7},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	wantSlug(t, got, "fr")
}

func TestResolveInactiveObjectLanguageIgnored(t *testing.T) {
	f, cleanup := newFixture(t, Options{PostOverride: true}, true)
	defer cleanup()
	ctx := context.Background()

	es := f.langs["es"]
	if err := f.groups.SetLanguage(ctx, model.EntityTypePage, 7, es.ID); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}

	got, err := f.resolver.Resolve(ctx, Signals{
		URL:    "/fr/about",
		Entity: &model.EntityRef{Type: model.EntityTypePage, ID: 7},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	wantSlug(t, got, "fr")
}

func TestResolveBrowserPreference(t *testing.T) {
	f, cleanup := newFixture(t, Options{BrowserDetect: true}, false)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name string
		sig  Signals
		want string
	}{
		{
			"cookie on home page",
			Signals{URL: "/", IsHome: true, Cookie: "fr"},
			"fr",
		},
		{
			"cookie ignored off home page",
			Signals{URL: "/about", Cookie: "fr"},
			"en",
		},
		{
			"inactive cookie falls through",
			Signals{URL: "/", IsHome: true, Cookie: "es"},
			"en",
		},
		{
			"accept-language on home page",
			Signals{URL: "/", IsHome: true, AcceptLanguage: "fr-CA,fr;q=0.9,en;q=0.5"},
			"fr",
		},
		{
			"cookie beats accept-language",
			Signals{URL: "/", IsHome: true, Cookie: "de", AcceptLanguage: "fr-FR"},
			"de",
		},
		{
			"malformed accept-language falls through",
			Signals{URL: "/", IsHome: true, AcceptLanguage: ";;;"},
			"en",
		},
		{
			"no signal resolves to default",
			Signals{URL: "/"},
			"en",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.resolver.Resolve(ctx, tt.sig)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			wantSlug(t, got, tt.want)
		})
	}
}

// Hiding the default-language marker must not swallow the preference
// signals: an unmarked home-page URL still consults the cookie and
// Accept-Language before falling back to the default.
func TestResolveBrowserPreferenceWithHiddenDefault(t *testing.T) {
	f, cleanup := newFixture(t, Options{BrowserDetect: true}, true)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name string
		sig  Signals
		want string
	}{
		{
			"cookie on unmarked home page",
			Signals{URL: "/", IsHome: true, Cookie: "fr"},
			"fr",
		},
		{
			"accept-language on unmarked home page",
			Signals{URL: "/", IsHome: true, AcceptLanguage: "de-DE,de;q=0.9"},
			"de",
		},
		{
			"unmarked non-home page stays on default",
			Signals{URL: "/about", Cookie: "fr"},
			"en",
		},
		{
			"marker still beats the cookie",
			Signals{URL: "/de", IsHome: true, Cookie: "fr"},
			"de",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.resolver.Resolve(ctx, tt.sig)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			wantSlug(t, got, tt.want)
		})
	}
}

func TestResolveBrowserDetectDisabled(t *testing.T) {
	f, cleanup := newFixture(t, Options{BrowserDetect: false}, false)
	defer cleanup()
	ctx := context.Background()

	got, err := f.resolver.Resolve(ctx, Signals{
		URL:            "/",
		IsHome:         true,
		Cookie:         "fr",
		AcceptLanguage: "fr-FR",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	wantSlug(t, got, "en")
}

func TestResolveRequestMemoizes(t *testing.T) {
	f, cleanup := newFixture(t, Options{}, true)
	defer cleanup()
	ctx := WithResolution(context.Background())

	got, err := f.resolver.ResolveRequest(ctx, Signals{URL: "/fr/about"})
	if err != nil {
		t.Fatalf("ResolveRequest: %v", err)
	}
	wantSlug(t, got, "fr")

	// A later call with different signals returns the memoized outcome.
	got, err = f.resolver.ResolveRequest(ctx, Signals{URL: "/de/about"})
	if err != nil {
		t.Fatalf("repeat ResolveRequest: %v", err)
	}
	wantSlug(t, got, "fr")
}

func TestResolutionLock(t *testing.T) {
	f, cleanup := newFixture(t, Options{}, true)
	defer cleanup()

	ctx := WithResolution(context.Background())
	res := ResolutionFrom(ctx)
	if res == nil {
		t.Fatal("resolution not installed")
	}

	got, err := f.resolver.ResolveRequest(ctx, Signals{URL: "/fr/about"})
	if err != nil {
		t.Fatalf("ResolveRequest: %v", err)
	}
	wantSlug(t, got, "fr")

	res.Lock()
	if !res.Locked() {
		t.Fatal("resolution not locked")
	}

	de := f.langs["de"]
	if res.Set(&de) {
		t.Error("Set succeeded on a locked resolution")
	}
	wantSlug(t, res.Language(), "fr")
}
