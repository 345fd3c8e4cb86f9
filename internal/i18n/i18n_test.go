// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package i18n

import (
	"testing"
)

func TestT(t *testing.T) {
	if err := Init(nil); err != nil {
		t.Fatalf("Init: %v", err)
	}

	tests := []struct {
		name   string
		locale string
		key    string
		want   string
	}{
		{"english message", "en_US", "languages.title", "Languages"},
		{"russian translation", "ru_RU", "languages.title", "Языки"},
		{"unknown locale falls back to default", "de_DE", "languages.title", "Languages"},
		{"unknown key returned as-is", "en_US", "no.such.key", "no.such.key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := T(tt.locale, tt.key); got != tt.want {
				t.Errorf("T(%q, %q) = %q, want %q", tt.locale, tt.key, got, tt.want)
			}
		})
	}
}

func TestMatchLocale(t *testing.T) {
	if err := Init(nil); err != nil {
		t.Fatalf("Init: %v", err)
	}

	tests := []struct {
		tag  string
		want string
	}{
		{"en", "en_US"},
		{"en-GB", "en_US"},
		{"ru", "ru_RU"},
		{"ru-RU", "ru_RU"},
		{"garbage!!", "en_US"},
	}
	for _, tt := range tests {
		if got := MatchLocale(tt.tag); got != tt.want {
			t.Errorf("MatchLocale(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}
