// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n loads message catalogs keyed by locale name. Rendering
// collaborators pick the catalog through the resolved language's
// locale_name attribute.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales
var localesFS embed.FS

// Message represents a single translatable message.
type Message struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	Translation string `json:"translation"`
}

// MessageFile represents the structure of a messages JSON file.
type MessageFile struct {
	Locale   string    `json:"locale"`
	Messages []Message `json:"messages"`
}

// Catalog holds all translations for all supported locales.
type Catalog struct {
	mu            sync.RWMutex
	translations  map[string]map[string]string // locale -> key -> translation
	matcher       language.Matcher
	supported     []language.Tag
	defaultLocale string
	logger        *slog.Logger
}

// catalog is the global catalog instance.
var catalog *Catalog

// SupportedLocales lists the locale catalogs shipped with the subsystem.
var SupportedLocales = []string{"en_US", "ru_RU"}

// Init initializes the i18n system with the given logger.
func Init(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	catalog = &Catalog{
		translations:  make(map[string]map[string]string),
		defaultLocale: "en_US",
		logger:        logger,
	}

	// Build supported language tags; locale names use underscores,
	// BCP 47 tags use hyphens.
	tags := make([]language.Tag, 0, len(SupportedLocales))
	for _, locale := range SupportedLocales {
		tags = append(tags, language.MustParse(strings.ReplaceAll(locale, "_", "-")))
	}
	catalog.supported = tags
	catalog.matcher = language.NewMatcher(tags)

	for _, locale := range SupportedLocales {
		if err := catalog.loadLocale(locale); err != nil {
			return fmt.Errorf("failed to load locale %s: %w", locale, err)
		}
	}

	logger.Info("i18n initialized", "locales", SupportedLocales)
	return nil
}

// loadLocale loads one embedded catalog file.
func (c *Catalog) loadLocale(locale string) error {
	data, err := localesFS.ReadFile("locales/" + locale + ".json")
	if err != nil {
		return fmt.Errorf("reading locale file: %w", err)
	}

	var file MessageFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing locale file: %w", err)
	}

	messages := make(map[string]string, len(file.Messages))
	for _, msg := range file.Messages {
		if msg.Translation != "" {
			messages[msg.ID] = msg.Translation
		} else {
			messages[msg.ID] = msg.Message
		}
	}

	c.mu.Lock()
	c.translations[locale] = messages
	c.mu.Unlock()

	return nil
}

// T returns the translation for key in the catalog named by locale.
// Falls back to the default locale, then to the key itself.
func T(locale, key string, args ...any) string {
	if catalog == nil {
		return key
	}

	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	if messages, ok := catalog.translations[locale]; ok {
		if msg, ok := messages[key]; ok {
			return format(msg, args...)
		}
	}

	if messages, ok := catalog.translations[catalog.defaultLocale]; ok {
		if msg, ok := messages[key]; ok {
			return format(msg, args...)
		}
	}

	return key
}

// MatchLocale maps an arbitrary BCP 47 tag (e.g. from Accept-Language) to
// the closest supported locale name.
func MatchLocale(tag string) string {
	if catalog == nil {
		return "en_US"
	}

	t, err := language.Parse(tag)
	if err != nil {
		return catalog.defaultLocale
	}

	_, idx, conf := catalog.matcher.Match(t)
	if conf == language.No {
		return catalog.defaultLocale
	}
	return SupportedLocales[idx]
}

func format(msg string, args ...any) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
