// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/storefeed/internal/feed"
	"github.com/tomtom215/storefeed/internal/logging"
)

// DefaultConfigPaths lists the config file locations in priority order.
// The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/storefeed/config.yaml",
	"/etc/storefeed/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults. They are loaded first and
// then overridden by the config file and environment.
func defaultConfig() *Config {
	logCfg := logging.DefaultConfig()
	logCfg.Output = nil

	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8089,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			DebugRoutes:     true,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   600,
			RateLimitWindow: time.Minute,
		},
		Logging: logCfg,
		Catalog: CatalogConfig{
			Driver:          "duckdb",
			DSN:             "",
			Seed:            true,
			RefreshInterval: time.Minute,
			FetchTimeout:    10 * time.Second,
			Breaker: BreakerConfig{
				Enabled:          true,
				MaxRequests:      1,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				FailureThreshold: 3,
			},
		},
		Preferences: PreferencesConfig{
			Path:              "/data/preferences",
			InMemory:          false,
			MaxRecentlyViewed: 20,
		},
		Feed: *feed.DefaultConfig(),
		Frame: FrameConfig{
			Interval: 16 * time.Millisecond,
		},
		Sessions: SessionsConfig{
			IdleTimeout:    10 * time.Minute,
			ExpireInterval: 30 * time.Second,
			MaxSessions:    10000,
		},
		Events: EventsConfig{
			Enabled:      true,
			Topic:        "feed.lifecycle",
			BufferSize:   1024,
			CloseTimeout: 5 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration from layered sources:
//  1. Defaults
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
//
// The result is validated before it is returned.
func LoadWithKoanf() (*Config, error) {
	return load(findConfigFile())
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// HTTP_PORT -> server.port, FEED_SPONSORED_CADENCE -> feed.sponsored.cadence
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated strings for known slice fields.
// Values that are already slices (from YAML) are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to config paths.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"debug_routes":          "server.debug_routes",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Catalog
	"catalog_driver":           "catalog.driver",
	"catalog_dsn":              "catalog.dsn",
	"catalog_seed":             "catalog.seed",
	"catalog_refresh_interval": "catalog.refresh_interval",
	"catalog_fetch_timeout":    "catalog.fetch_timeout",
	"catalog_breaker_enabled":  "catalog.breaker.enabled",
	"catalog_breaker_timeout":  "catalog.breaker.timeout",
	"catalog_breaker_failures": "catalog.breaker.failure_threshold",

	// Preferences
	"preferences_path":      "preferences.path",
	"preferences_in_memory": "preferences.in_memory",

	// Feed engine
	"feed_sponsored_enabled":   "feed.sponsored.enabled",
	"feed_sponsored_cadence":   "feed.sponsored.cadence",
	"feed_diversity_lambda":    "feed.diversity.lambda",
	"feed_refill_batch":        "feed.deck.refill_batch",
	"feed_buffer_cards":        "feed.deck.buffer_cards",
	"feed_cycle_short_catalog": "feed.deck.cycle_short_catalog",
	"feed_card_height":         "feed.deck.card_height",
	"feed_scroll_duration":     "feed.motion.scroll_duration",
	"feed_cooldown":            "feed.motion.cooldown",
	"feed_end_zone_height":     "feed.motion.end_zone_height",
	"feed_cache_enabled":       "feed.cache.enabled",
	"feed_cache_max_entries":   "feed.cache.max_entries",
	"feed_cache_ttl":           "feed.cache.ttl",

	// Frame clock and sessions
	"frame_interval":          "frame.interval",
	"session_idle_timeout":    "sessions.idle_timeout",
	"session_expire_interval": "sessions.expire_interval",
	"max_sessions":            "sessions.max_sessions",

	// Events
	"events_enabled":     "events.enabled",
	"events_topic":       "events.topic",
	"events_buffer_size": "events.buffer_size",
}

// envTransformFunc maps an environment variable name to a config path.
// Unmapped variables return "" and are skipped, so unrelated environment
// does not leak into the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
