// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/ocms-multilang/internal/model"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"MLANG_DB_PATH" envDefault:"./data/multilang.db"`
	ServerHost string `env:"MLANG_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"MLANG_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"MLANG_ENV" envDefault:"development"`
	LogLevel   string `env:"MLANG_LOG_LEVEL" envDefault:"info"`

	// URL rewriting
	URLScheme     string `env:"MLANG_URL_SCHEME" envDefault:"path"`    // domain, path, query
	URLQueryParam string `env:"MLANG_URL_QUERY_PARAM" envDefault:"lang"` // query-scheme parameter name
	BasePath      string `env:"MLANG_BASE_PATH" envDefault:""`         // site base path stripped before the path marker
	HideDefault   bool   `env:"MLANG_HIDE_DEFAULT" envDefault:"true"`  // omit the marker for the default language

	// Resolution
	PostOverride  bool `env:"MLANG_POST_OVERRIDE" envDefault:"true"` // let the served object's language override the URL marker
	BrowserDetect bool `env:"MLANG_BROWSER_DETECT" envDefault:"true"` // consult cookie/Accept-Language on the home page

	// Cache configuration
	RedisURL    string `env:"MLANG_REDIS_URL"`                       // Optional Redis URL for distributed caching
	CachePrefix string `env:"MLANG_CACHE_PREFIX" envDefault:"mlang:"` // Redis key prefix

	// Seeding configuration
	DoSeed bool `env:"MLANG_DO_SEED" envDefault:"true"` // Seed the default language on first start
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	switch cfg.URLScheme {
	case model.SchemeDomain, model.SchemePath, model.SchemeQuery:
	default:
		return nil, fmt.Errorf("MLANG_URL_SCHEME must be one of domain, path, query; got %q", cfg.URLScheme)
	}

	if cfg.URLQueryParam == "" {
		return nil, fmt.Errorf("MLANG_URL_QUERY_PARAM must not be empty")
	}

	return cfg, nil
}
