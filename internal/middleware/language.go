// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for language resolution and
// request context handling.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/olegiv/ocms-multilang/internal/cache"
	"github.com/olegiv/ocms-multilang/internal/resolver"
	"github.com/olegiv/ocms-multilang/internal/store"
	"github.com/olegiv/ocms-multilang/internal/translator"
)

// ContextKey is the type for middleware context keys.
type ContextKey string

// Context keys for language data.
const (
	ContextKeyLanguage     ContextKey = "language"
	ContextKeyLanguageSlug ContextKey = "language_slug"
)

// LanguageCookieName is the cookie name for language preference.
const LanguageCookieName = "mlang_lang"

// LanguageParamName is the query/form parameter for an explicit language switch.
const LanguageParamName = "lang"

// LanguageInfo holds language data for the request context.
type LanguageInfo struct {
	ID         int64
	Slug       string
	Name       string
	NativeName string
	LocaleName string
	Direction  string
	IsDefault  bool
}

// Language creates middleware that resolves and locks the request
// language. It installs the per-request lookup cache and the resolution
// slot, evaluates the precedence chain once, and stores the outcome in the
// request context. An explicit ?lang= switch also updates the preference
// cookie.
func Language(t *translator.Translator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := cache.WithRequestCache(r.Context())
			ctx = resolver.WithResolution(ctx)

			sig := SignalsFromRequest(r)

			lang, err := t.CurrentLanguage(ctx, sig)
			if err != nil || lang == nil {
				// No language configured or lookup failed; proceed
				// without language context.
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			// The choice is final for this request.
			if res := resolver.ResolutionFrom(ctx); res != nil {
				res.Lock()
			}

			if sig.Param != "" && sig.Param == lang.Slug {
				SetLanguageCookie(w, lang.Slug)
			}

			ctx = setLanguageContext(ctx, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SignalsFromRequest collects the resolver inputs from an HTTP request.
func SignalsFromRequest(r *http.Request) resolver.Signals {
	sig := resolver.Signals{
		Param:          strings.ToLower(r.URL.Query().Get(LanguageParamName)),
		URL:            requestURL(r),
		AcceptLanguage: r.Header.Get("Accept-Language"),
		IsHome:         r.URL.Path == "/" || r.URL.Path == "",
	}

	// POST parameter beats the query string, matching form submissions.
	if r.Method == http.MethodPost {
		if v := r.PostFormValue(LanguageParamName); v != "" {
			sig.Param = strings.ToLower(v)
		}
	}

	if cookie, err := r.Cookie(LanguageCookieName); err == nil {
		sig.Cookie = strings.ToLower(cookie.Value)
	}

	return sig
}

// requestURL reconstructs the full request URL including scheme and host,
// so the domain rewriting scheme can see the subdomain marker.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if r.Host == "" {
		return r.URL.String()
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// setLanguageContext adds language info to the context.
func setLanguageContext(ctx context.Context, lang *store.Language) context.Context {
	info := LanguageInfo{
		ID:         lang.ID,
		Slug:       lang.Slug,
		Name:       lang.Name,
		NativeName: lang.NativeName,
		LocaleName: lang.LocaleName,
		Direction:  lang.Direction,
		IsDefault:  lang.IsDefault,
	}
	ctx = context.WithValue(ctx, ContextKeyLanguage, info)
	ctx = context.WithValue(ctx, ContextKeyLanguageSlug, lang.Slug)
	return ctx
}

// GetLanguage retrieves the current language from the request context.
// Returns nil if no language is in context.
func GetLanguage(r *http.Request) *LanguageInfo {
	info, ok := r.Context().Value(ContextKeyLanguage).(LanguageInfo)
	if !ok {
		return nil
	}
	return &info
}

// SetLanguageCookie sets the language preference cookie.
func SetLanguageCookie(w http.ResponseWriter, langSlug string) {
	cookie := &http.Cookie{
		Name:     LanguageCookieName,
		Value:    langSlug,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60, // 1 year
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, cookie)
}
