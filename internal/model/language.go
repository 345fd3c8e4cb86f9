// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain constants and typed errors shared by the
// multilingual subsystem.
package model

// Language text directions
const (
	DirectionLTR = "ltr"
	DirectionRTL = "rtl"
)

// URL rewriting schemes for embedding the language marker.
const (
	SchemeDomain = "domain" // en.example.com/page
	SchemePath   = "path"   // example.com/en/page
	SchemeQuery  = "query"  // example.com/page?lang=en
)

// CommonLanguages provides a list of commonly used languages for selection UI.
var CommonLanguages = []struct {
	Slug       string
	Name       string
	NativeName string
	LocaleName string
	Direction  string
}{
	{"en", "English", "English", "en_US", "ltr"},
	{"ru", "Russian", "Русский", "ru_RU", "ltr"},
	{"de", "German", "Deutsch", "de_DE", "ltr"},
	{"fr", "French", "Français", "fr_FR", "ltr"},
	{"es", "Spanish", "Español", "es_ES", "ltr"},
	{"it", "Italian", "Italiano", "it_IT", "ltr"},
	{"pt", "Portuguese", "Português", "pt_PT", "ltr"},
	{"nl", "Dutch", "Nederlands", "nl_NL", "ltr"},
	{"pl", "Polish", "Polski", "pl_PL", "ltr"},
	{"uk", "Ukrainian", "Українська", "uk_UA", "ltr"},
	{"zh", "Chinese", "中文", "zh_CN", "ltr"},
	{"ja", "Japanese", "日本語", "ja_JP", "ltr"},
	{"ko", "Korean", "한국어", "ko_KR", "ltr"},
	{"ar", "Arabic", "العربية", "ar_SA", "rtl"},
	{"he", "Hebrew", "עברית", "he_IL", "rtl"},
	{"fa", "Persian", "فارسی", "fa_IR", "rtl"},
	{"tr", "Turkish", "Türkçe", "tr_TR", "ltr"},
	{"vi", "Vietnamese", "Tiếng Việt", "vi_VN", "ltr"},
	{"th", "Thai", "ไทย", "th_TH", "ltr"},
	{"hi", "Hindi", "हिन्दी", "hi_IN", "ltr"},
}
