// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package hook provides a synchronous, ordered hook registry used to wire
// collaborators (menus, content sync, URL post-processing) to the
// multilingual core without import cycles.
package hook

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Predefined hook names emitted by the core.
const (
	// HookLanguageChanged fires after SetLanguage commits. Data: *LanguageChange.
	HookLanguageChanged = "language.changed"
	// HookTranslationsChanged fires after SetTranslations or Unlink commits.
	// Data: *TranslationsChange.
	HookTranslationsChanged = "translations.changed"
	// HookURLLocalized filters every URL produced by the rewriter.
	// Data: string (the URL); listeners may return a modified URL.
	HookURLLocalized = "url.localized"
)

// LanguageChange describes a committed language assignment.
type LanguageChange struct {
	EntityType string
	EntityID   int64
	LanguageID int64
	GroupID    int64
}

// TranslationsChange describes a committed change to a translation group.
type TranslationsChange struct {
	EntityType string
	EntityID   int64
	GroupID    int64
}

// Func is a function that can be registered as a hook handler.
// It receives a context and data, and returns modified data and an error.
// If the hook returns an error, subsequent handlers are not called.
type Func func(ctx context.Context, data any) (any, error)

// Handler wraps a Func with metadata.
type Handler struct {
	Name     string // Name of the handler for debugging
	Priority int    // Lower priority runs first (default: 0)
	Fn       Func   // The actual handler function
}

// Registry manages hook registration and execution.
type Registry struct {
	hooks  map[string][]Handler
	logger *slog.Logger
	mu     sync.RWMutex
}

// NewRegistry creates a new hook registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		hooks:  make(map[string][]Handler),
		logger: logger,
	}
}

// Register adds a hook handler for the given hook name.
func (r *Registry) Register(hookName string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handlers := append(r.hooks[hookName], handler)

	// Sort by priority (lower priority runs first)
	for i := len(handlers) - 1; i > 0; i-- {
		if handlers[i].Priority < handlers[i-1].Priority {
			handlers[i], handlers[i-1] = handlers[i-1], handlers[i]
		}
	}

	r.hooks[hookName] = handlers

	r.logger.Debug("hook registered",
		"hook", hookName,
		"handler", handler.Name,
		"priority", handler.Priority,
	)
}

// RegisterFunc is a convenience method to register a simple hook function.
func (r *Registry) RegisterFunc(hookName, handlerName string, fn Func) {
	r.Register(hookName, Handler{Name: handlerName, Fn: fn})
}

// Call executes all handlers for the given hook name in priority order.
// The data is passed through each handler, allowing modification.
// If any handler returns an error, execution stops and the error is returned.
func (r *Registry) Call(ctx context.Context, hookName string, data any) (any, error) {
	r.mu.RLock()
	handlers := r.hooks[hookName]
	r.mu.RUnlock()

	if len(handlers) == 0 {
		return data, nil
	}

	currentData := data
	for _, handler := range handlers {
		result, err := handler.Fn(ctx, currentData)
		if err != nil {
			return currentData, fmt.Errorf("hook %s handler %s: %w", hookName, handler.Name, err)
		}
		currentData = result
	}

	return currentData, nil
}

// Emit executes all handlers for a notification-style hook, logging and
// discarding handler errors. Used for post-commit events where a failing
// listener must not fail the already-committed write.
func (r *Registry) Emit(ctx context.Context, hookName string, data any) {
	if _, err := r.Call(ctx, hookName, data); err != nil {
		r.logger.Warn("hook handler failed", "hook", hookName, "error", err)
	}
}

// Count returns the number of handlers registered for the hook.
func (r *Registry) Count(hookName string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks[hookName])
}
