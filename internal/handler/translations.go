// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-multilang/internal/model"
	"github.com/olegiv/ocms-multilang/internal/translator"
)

// TranslationsHandler exposes translation group operations for entities.
type TranslationsHandler struct {
	translator *translator.Translator
}

// NewTranslationsHandler creates a new TranslationsHandler.
func NewTranslationsHandler(t *translator.Translator) *TranslationsHandler {
	return &TranslationsHandler{translator: t}
}

// entityFromRequest parses the {type}/{id} route parameters.
func entityFromRequest(r *http.Request) (string, int64, bool) {
	entityType := chi.URLParam(r, "type")
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if entityType == "" || err != nil {
		return "", 0, false
	}
	return entityType, id, true
}

// Get returns the entity's language and its translation set.
// GET /api/entities/{type}/{id}/translations
func (h *TranslationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	entityType, id, ok := entityFromRequest(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid entity reference")
		return
	}

	lang, err := h.translator.LanguageOf(r.Context(), entityType, id)
	if err != nil {
		slog.Error("failed to fetch entity language", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	links := h.buildLinks(w, r, entityType, id)
	if links == nil {
		return
	}

	data := map[string]any{"translations": links}
	if lang != nil {
		data["language"] = lang
	}
	writeJSONSuccess(w, data)
}

// buildLinks assembles TranslationLink entries for every active language.
// Writes the error response itself and returns nil on failure.
func (h *TranslationsHandler) buildLinks(w http.ResponseWriter, r *http.Request, entityType string, id int64) []model.TranslationLink {
	translations, err := h.translator.Groups().Translations(r.Context(), entityType, id, true)
	if err != nil {
		slog.Error("failed to fetch translations", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return nil
	}

	languages, err := h.translator.Registry().All(r.Context(), true)
	if err != nil {
		slog.Error("failed to list languages", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return nil
	}

	links := make([]model.TranslationLink, 0, len(languages))
	for _, lang := range languages {
		link := model.TranslationLink{
			LanguageID:   lang.ID,
			LanguageSlug: lang.Slug,
			LanguageName: lang.Name,
			NativeName:   lang.NativeName,
		}
		if entityID, ok := translations[lang.ID]; ok {
			link.EntityID = entityID
			link.Exists = true
		}
		links = append(links, link)
	}
	return links
}

// setLanguagePayload is the request body for SetLanguage.
type setLanguagePayload struct {
	LanguageID int64 `json:"language_id"`
}

// SetLanguage assigns a language to the entity.
// PUT /api/entities/{type}/{id}/language
func (h *TranslationsHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	entityType, id, ok := entityFromRequest(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid entity reference")
		return
	}

	var payload setLanguagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.translator.SetLanguage(r.Context(), entityType, id, payload.LanguageID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSONSuccess(w, nil)
}

// setTranslationsPayload maps language IDs (as JSON object keys) to entity
// IDs; zero unlinks the language's member.
type setTranslationsPayload struct {
	Links map[string]int64 `json:"links"`
}

// SetTranslations links entities into the primary entity's group.
// POST /api/entities/{type}/{id}/translations
func (h *TranslationsHandler) SetTranslations(w http.ResponseWriter, r *http.Request) {
	entityType, id, ok := entityFromRequest(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid entity reference")
		return
	}

	var payload setTranslationsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	links := make(map[int64]int64, len(payload.Links))
	for key, entityID := range payload.Links {
		langID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid language id in links")
			return
		}
		links[langID] = entityID
	}

	if err := h.translator.SetTranslations(r.Context(), entityType, id, links); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSONSuccess(w, nil)
}

// Unlink removes the entity's group membership row entirely.
// DELETE /api/entities/{type}/{id}/translations
func (h *TranslationsHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	entityType, id, ok := entityFromRequest(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid entity reference")
		return
	}

	if err := h.translator.Unlink(r.Context(), entityType, id); err != nil {
		slog.Error("failed to unlink entity", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSONSuccess(w, nil)
}

// LocalizedURL rewrites a URL for a language.
// GET /api/urls/localize?url=...&lang=fr
func (h *TranslationsHandler) LocalizedURL(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeJSONError(w, http.StatusBadRequest, "url parameter is required")
		return
	}

	slug := r.URL.Query().Get("lang")
	if slug == "" {
		writeJSONError(w, http.StatusBadRequest, "lang parameter is required")
		return
	}

	lang, err := h.translator.Registry().GetBySlug(r.Context(), slug)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	localized, err := h.translator.LocalizedURL(r.Context(), rawURL, &lang)
	if err != nil {
		slog.Error("failed to localize url", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSONSuccess(w, map[string]any{"url": localized})
}
