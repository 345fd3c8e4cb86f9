// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package resolver

import (
	"context"
	"sync"

	"github.com/olegiv/ocms-multilang/internal/store"
)

type resolutionKeyType struct{}

var resolutionKey resolutionKeyType

// Resolution holds the language picked for one request. Once locked, the
// choice is final: later Set calls are no-ops. This prevents mixed-language
// rendering when different code paths re-resolve mid-request.
type Resolution struct {
	mu     sync.Mutex
	lang   *store.Language
	locked bool
}

// Language returns the resolved language, or nil when nothing resolved yet.
func (r *Resolution) Language() *store.Language {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lang
}

// Set stores the resolved language. Returns false when the resolution is
// already locked and the value was left unchanged.
func (r *Resolution) Set(lang *store.Language) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked {
		return false
	}
	r.lang = lang
	return true
}

// Lock makes the current choice final for the remainder of the request.
func (r *Resolution) Lock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = true
}

// Locked reports whether the resolution has been locked.
func (r *Resolution) Locked() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locked
}

// WithResolution returns a context carrying a fresh Resolution.
// The language middleware installs one per request.
func WithResolution(ctx context.Context) context.Context {
	return context.WithValue(ctx, resolutionKey, &Resolution{})
}

// ResolutionFrom extracts the Resolution from the context, or nil.
func ResolutionFrom(ctx context.Context) *Resolution {
	r, _ := ctx.Value(resolutionKey).(*Resolution)
	return r
}
