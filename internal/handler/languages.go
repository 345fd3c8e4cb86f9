// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler exposes the multilingual core over a JSON admin API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-multilang/internal/model"
	"github.com/olegiv/ocms-multilang/internal/registry"
	"github.com/olegiv/ocms-multilang/internal/store"
)

// LanguagesHandler handles language management endpoints.
type LanguagesHandler struct {
	registry *registry.Registry
}

// NewLanguagesHandler creates a new LanguagesHandler.
func NewLanguagesHandler(reg *registry.Registry) *LanguagesHandler {
	return &LanguagesHandler{registry: reg}
}

// languagePayload is the request body for create and update.
type languagePayload struct {
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	ShortName  string `json:"short_name"`
	LocaleName string `json:"locale_name"`
	Locales    string `json:"locales"`
	Direction  string `json:"direction"`
	Position   *int64 `json:"position"`
	IsActive   bool   `json:"is_active"`
}

// List returns all registered languages ordered by position.
// GET /api/languages?active=1 narrows to active languages.
func (h *LanguagesHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "1"

	languages, err := h.registry.All(r.Context(), activeOnly)
	if err != nil {
		slog.Error("failed to list languages", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSONSuccess(w, map[string]any{
		"languages": languages,
		"total":     len(languages),
	})
}

// Get returns one language by ID or slug.
func (h *LanguagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	lang, err := h.registry.Get(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"language": lang})
}

// Create registers a new language.
func (h *LanguagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload languagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	lang, err := h.registry.Add(r.Context(), registry.AddLanguageParams{
		Slug:       strings.ToLower(strings.TrimSpace(payload.Slug)),
		Name:       strings.TrimSpace(payload.Name),
		NativeName: strings.TrimSpace(payload.NativeName),
		ShortName:  strings.TrimSpace(payload.ShortName),
		LocaleName: strings.TrimSpace(payload.LocaleName),
		Locales:    strings.TrimSpace(payload.Locales),
		Direction:  payload.Direction,
		Position:   payload.Position,
		IsActive:   payload.IsActive,
	})
	if err != nil {
		if errors.Is(err, model.ErrDuplicateSlug) || errors.Is(err, model.ErrValidation) {
			writeDomainError(w, err)
			return
		}
		slog.Error("failed to create language", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":  true,
		"language": lang,
	})
}

// Update edits an existing language.
func (h *LanguagesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid language id")
		return
	}

	var payload languagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var position int64
	if payload.Position != nil {
		position = *payload.Position
	}

	lang, err := h.registry.Update(r.Context(), store.UpdateLanguageParams{
		ID:         id,
		Slug:       strings.ToLower(strings.TrimSpace(payload.Slug)),
		Name:       strings.TrimSpace(payload.Name),
		NativeName: strings.TrimSpace(payload.NativeName),
		ShortName:  strings.TrimSpace(payload.ShortName),
		LocaleName: strings.TrimSpace(payload.LocaleName),
		Locales:    strings.TrimSpace(payload.Locales),
		Direction:  payload.Direction,
		Position:   position,
		IsActive:   payload.IsActive,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSONSuccess(w, map[string]any{"language": lang})
}

// Reorder rewrites the language sort order from an ordered id list.
func (h *LanguagesHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.registry.Reorder(r.Context(), payload.IDs); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSONSuccess(w, nil)
}

// SetDefault flags a language as the site default.
func (h *LanguagesHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid language id")
		return
	}

	if err := h.registry.SetDefault(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSONSuccess(w, nil)
}

// Delete removes a language from the registry. Group memberships keep
// their rows and resolve to no language.
func (h *LanguagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid language id")
		return
	}

	if err := h.registry.Remove(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSONSuccess(w, nil)
}
