// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/ocms-multilang/internal/cache"
	"github.com/olegiv/ocms-multilang/internal/config"
	"github.com/olegiv/ocms-multilang/internal/group"
	"github.com/olegiv/ocms-multilang/internal/handler"
	"github.com/olegiv/ocms-multilang/internal/hook"
	"github.com/olegiv/ocms-multilang/internal/i18n"
	"github.com/olegiv/ocms-multilang/internal/logging"
	"github.com/olegiv/ocms-multilang/internal/middleware"
	"github.com/olegiv/ocms-multilang/internal/registry"
	"github.com/olegiv/ocms-multilang/internal/resolver"
	"github.com/olegiv/ocms-multilang/internal/store"
	"github.com/olegiv/ocms-multilang/internal/translator"
	"github.com/olegiv/ocms-multilang/internal/urlrewrite"
	"github.com/olegiv/ocms-multilang/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ocms-multilang %s\n", version.Get())
		return
	}

	// Load .env if present; real environment wins.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	// Mirror warnings and errors into the database event log.
	logger = slog.New(logging.NewEventLogHandler(logger.Handler(), db))
	slog.SetDefault(logger)

	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	var redisCache *cache.RedisCache
	if cfg.UseRedisCache() {
		opts := cache.DefaultRedisCacheOptions()
		opts.URL = cfg.RedisURL
		opts.Prefix = cfg.CachePrefix
		redisCache, err = cache.NewRedisCache(opts)
		if err != nil {
			logger.Warn("redis cache unavailable, using in-memory cache only", "error", err)
			redisCache = nil
		} else {
			defer func() { _ = redisCache.Close() }()
			logger.Info("redis cache connected")
		}
	}

	queries := store.New(db)
	langCache := cache.NewLanguageCache(queries, redisCache)
	if err := langCache.Preload(ctx); err != nil {
		return fmt.Errorf("preloading language cache: %w", err)
	}

	hooks := hook.NewRegistry(logger)
	reg := registry.New(db, langCache, logger)
	groups := group.New(db, reg, hooks, logger)

	rewriter := urlrewrite.New(reg, hooks, urlrewrite.Options{
		Scheme:      cfg.URLScheme,
		BasePath:    cfg.BasePath,
		QueryParam:  cfg.URLQueryParam,
		HideDefault: cfg.HideDefault,
	}, logger)

	res := resolver.New(reg, groups, rewriter, resolver.Options{
		PostOverride:  cfg.PostOverride,
		BrowserDetect: cfg.BrowserDetect,
	}, logger)

	trans := translator.New(reg, groups, res, rewriter, logger)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Language(trans))

	languagesHandler := handler.NewLanguagesHandler(reg)
	translationsHandler := handler.NewTranslationsHandler(trans)
	healthHandler := handler.NewHealthHandler(db)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		r.Route("/languages", func(r chi.Router) {
			r.Get("/", languagesHandler.List)
			r.Post("/", languagesHandler.Create)
			r.Put("/reorder", languagesHandler.Reorder)
			r.Get("/{idOrSlug}", languagesHandler.Get)
			r.Put("/{id}", languagesHandler.Update)
			r.Post("/{id}/default", languagesHandler.SetDefault)
			r.Delete("/{id}", languagesHandler.Delete)
		})

		r.Route("/entities/{type}/{id}", func(r chi.Router) {
			r.Get("/translations", translationsHandler.Get)
			r.Post("/translations", translationsHandler.SetTranslations)
			r.Delete("/translations", translationsHandler.Unlink)
			r.Put("/language", translationsHandler.SetLanguage)
		})

		r.Get("/urls/localize", translationsHandler.LocalizedURL)
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.ServerAddr(), "scheme", cfg.URLScheme)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
