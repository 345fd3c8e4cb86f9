// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-multilang/internal/cache"
	"github.com/olegiv/ocms-multilang/internal/group"
	"github.com/olegiv/ocms-multilang/internal/hook"
	"github.com/olegiv/ocms-multilang/internal/model"
	"github.com/olegiv/ocms-multilang/internal/registry"
	"github.com/olegiv/ocms-multilang/internal/resolver"
	"github.com/olegiv/ocms-multilang/internal/store"
	"github.com/olegiv/ocms-multilang/internal/testutil"
	"github.com/olegiv/ocms-multilang/internal/translator"
	"github.com/olegiv/ocms-multilang/internal/urlrewrite"
)

type apiFixture struct {
	router     chi.Router
	registry   *registry.Registry
	translator *translator.Translator
}

func newAPIFixture(t *testing.T) (*apiFixture, func()) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	logger := testutil.TestLogger()

	reg := registry.New(db, cache.NewLanguageCache(store.New(db), nil), logger)
	hooks := hook.NewRegistry(logger)
	groups := group.New(db, reg, hooks, logger)
	rw := urlrewrite.New(reg, hooks, urlrewrite.Options{
		Scheme:      model.SchemePath,
		HideDefault: true,
	}, logger)
	res := resolver.New(reg, groups, rw, resolver.Options{}, logger)
	tr := translator.New(reg, groups, res, rw, logger)

	r := chi.NewRouter()
	languages := NewLanguagesHandler(reg)
	translations := NewTranslationsHandler(tr)

	r.Route("/api", func(r chi.Router) {
		r.Route("/languages", func(r chi.Router) {
			r.Get("/", languages.List)
			r.Post("/", languages.Create)
			r.Put("/reorder", languages.Reorder)
			r.Get("/{idOrSlug}", languages.Get)
			r.Put("/{id}", languages.Update)
			r.Post("/{id}/default", languages.SetDefault)
			r.Delete("/{id}", languages.Delete)
		})
		r.Route("/entities/{type}/{id}", func(r chi.Router) {
			r.Get("/translations", translations.Get)
			r.Post("/translations", translations.SetTranslations)
			r.Delete("/translations", translations.Unlink)
			r.Put("/language", translations.SetLanguage)
		})
		r.Get("/urls/localize", translations.LocalizedURL)
	})

	return &apiFixture{router: r, registry: reg, translator: tr}, cleanup
}

func (f *apiFixture) do(t *testing.T, method, target string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func (f *apiFixture) addLanguage(t *testing.T, slug string) store.Language {
	t.Helper()
	lang, err := f.registry.Add(context.Background(), registry.AddLanguageParams{
		Slug:     slug,
		Name:     slug,
		IsActive: true,
	})
	require.NoError(t, err)
	return lang
}

func TestLanguagesAPI(t *testing.T) {
	f, cleanup := newAPIFixture(t)
	defer cleanup()

	// Create.
	rec, body := f.do(t, http.MethodPost, "/api/languages", map[string]any{
		"slug":      "en",
		"name":      "English",
		"is_active": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, true, body["success"])

	// Duplicate slug conflicts.
	rec, body = f.do(t, http.MethodPost, "/api/languages", map[string]any{
		"slug": "en",
		"name": "English again",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, false, body["success"])

	// Invalid slug is a validation error.
	rec, _ = f.do(t, http.MethodPost, "/api/languages", map[string]any{
		"slug": "not a slug",
		"name": "Broken",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// List.
	rec, body = f.do(t, http.MethodGet, "/api/languages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["total"])

	// Get by slug and by id.
	rec, body = f.do(t, http.MethodGet, "/api/languages/en", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lang := body["language"].(map[string]any)
	assert.Equal(t, "en", lang["slug"])

	rec, _ = f.do(t, http.MethodGet, "/api/languages/xx", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Update.
	rec, body = f.do(t, http.MethodPut, "/api/languages/1", map[string]any{
		"slug":      "en",
		"name":      "English (US)",
		"direction": "ltr",
		"is_active": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "English (US)", body["language"].(map[string]any)["name"])

	// Delete, then the language is gone.
	rec, _ = f.do(t, http.MethodDelete, "/api/languages/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = f.do(t, http.MethodGet, "/api/languages/en", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetDefaultAPI(t *testing.T) {
	f, cleanup := newAPIFixture(t)
	defer cleanup()

	f.addLanguage(t, "en")
	fr := f.addLanguage(t, "fr")

	rec, _ := f.do(t, http.MethodPost, fmt.Sprintf("/api/languages/%d/default", fr.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, body := f.do(t, http.MethodGet, "/api/languages/fr", nil)
	assert.Equal(t, true, body["language"].(map[string]any)["is_default"])

	rec, _ = f.do(t, http.MethodPost, "/api/languages/999/default", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReorderAPI(t *testing.T) {
	f, cleanup := newAPIFixture(t)
	defer cleanup()

	en := f.addLanguage(t, "en")
	fr := f.addLanguage(t, "fr")
	de := f.addLanguage(t, "de")

	rec, _ := f.do(t, http.MethodPut, "/api/languages/reorder", map[string]any{
		"ids": []int64{de.ID, fr.ID, en.ID},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	_, body := f.do(t, http.MethodGet, "/api/languages", nil)
	langs := body["languages"].([]any)
	require.Len(t, langs, 3)
	for i, want := range []string{"de", "fr", "en"} {
		assert.Equal(t, want, langs[i].(map[string]any)["slug"])
	}

	rec, _ = f.do(t, http.MethodPut, "/api/languages/reorder", map[string]any{
		"ids": []int64{en.ID, 999},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodPut, "/api/languages/reorder", map[string]any{
		"ids": []int64{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranslationsAPI(t *testing.T) {
	f, cleanup := newAPIFixture(t)
	defer cleanup()

	en := f.addLanguage(t, "en")
	fr := f.addLanguage(t, "fr")

	// Assign languages to two pages.
	rec, _ := f.do(t, http.MethodPut, "/api/entities/page/1/language", map[string]any{
		"language_id": en.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = f.do(t, http.MethodPut, "/api/entities/page/2/language", map[string]any{
		"language_id": fr.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Unknown language is a 404.
	rec, _ = f.do(t, http.MethodPut, "/api/entities/page/3/language", map[string]any{
		"language_id": 999,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Link page 2 as the French translation of page 1.
	rec, _ = f.do(t, http.MethodPost, "/api/entities/page/1/translations", map[string]any{
		"links": map[string]int64{fmt.Sprint(fr.ID): 2},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Linking without a language first is a 400.
	rec, _ = f.do(t, http.MethodPost, "/api/entities/page/9/translations", map[string]any{
		"links": map[string]int64{fmt.Sprint(fr.ID): 2},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Read the translation set back.
	rec, body := f.do(t, http.MethodGet, "/api/entities/page/1/translations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "en", body["language"].(map[string]any)["slug"])

	links := body["translations"].([]any)
	require.Len(t, links, 2)
	for _, raw := range links {
		link := raw.(map[string]any)
		switch link["language_slug"] {
		case "en":
			assert.EqualValues(t, 1, link["entity_id"])
			assert.Equal(t, true, link["exists"])
		case "fr":
			assert.EqualValues(t, 2, link["entity_id"])
			assert.Equal(t, true, link["exists"])
		}
	}

	// Unlink page 2; its slot empties.
	rec, _ = f.do(t, http.MethodDelete, "/api/entities/page/2/translations", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, body = f.do(t, http.MethodGet, "/api/entities/page/1/translations", nil)
	for _, raw := range body["translations"].([]any) {
		link := raw.(map[string]any)
		if link["language_slug"] == "fr" {
			assert.Equal(t, false, link["exists"])
		}
	}
}

func TestLocalizedURLAPI(t *testing.T) {
	f, cleanup := newAPIFixture(t)
	defer cleanup()

	f.addLanguage(t, "en")
	f.addLanguage(t, "fr")

	rec, body := f.do(t, http.MethodGet, "/api/urls/localize?url=/about&lang=fr", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/fr/about", body["url"])

	// Default language carries no marker.
	rec, body = f.do(t, http.MethodGet, "/api/urls/localize?url=/about&lang=en", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/about", body["url"])

	rec, _ = f.do(t, http.MethodGet, "/api/urls/localize?url=/about&lang=xx", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/urls/localize?lang=fr", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
