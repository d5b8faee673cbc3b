// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/storefeed/internal/feed"
	"github.com/tomtom215/storefeed/internal/logging"
)

// Config holds all application configuration.
//
// Loading order (see LoadWithKoanf):
//  1. Defaults: built-in values for every setting
//  2. Config file: optional YAML (CONFIG_PATH, config.yaml, /etc/storefeed/config.yaml)
//  3. Environment variables: mapped names such as HTTP_PORT or FEED_SPONSORED_CADENCE
//
// Config is immutable after loading and safe for concurrent reads.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Logging     logging.Config    `koanf:"logging"`
	Catalog     CatalogConfig     `koanf:"catalog"`
	Preferences PreferencesConfig `koanf:"preferences"`
	Feed        feed.Config       `koanf:"feed"`
	Frame       FrameConfig       `koanf:"frame"`
	Sessions    SessionsConfig    `koanf:"sessions"`
	Events      EventsConfig      `koanf:"events"`
}

// ServerConfig holds the ops HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// DebugRoutes mounts the /api/v1/feed/sessions routes.
	DebugRoutes bool `koanf:"debug_routes"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Addr returns the listen address.
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// CatalogConfig selects and tunes the product catalog source.
type CatalogConfig struct {
	// Driver is the database/sql driver: duckdb or postgres.
	Driver string `koanf:"driver" validate:"oneof=duckdb postgres"`

	// DSN is the driver connection string. An empty DuckDB DSN opens an
	// in-memory database.
	DSN string `koanf:"dsn"`

	// Seed creates the schema and demo products when the table is empty.
	// Only honored for duckdb.
	Seed bool `koanf:"seed"`

	RefreshInterval time.Duration `koanf:"refresh_interval"`
	FetchTimeout    time.Duration `koanf:"fetch_timeout"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig tunes the circuit breaker around catalog fetches.
type BreakerConfig struct {
	Enabled bool `koanf:"enabled"`

	// MaxRequests allowed through while half-open.
	MaxRequests uint32 `koanf:"max_requests" validate:"gte=1"`

	// Interval clears the failure counts while closed. Zero never clears.
	Interval time.Duration `koanf:"interval"`

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration `koanf:"timeout"`

	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold uint32 `koanf:"failure_threshold" validate:"gte=1"`
}

// PreferencesConfig configures the viewer preference store.
type PreferencesConfig struct {
	// Path is the Badger directory. Ignored when InMemory is set.
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`

	// MaxRecentlyViewed bounds the stored recently viewed list.
	MaxRecentlyViewed int `koanf:"max_recently_viewed" validate:"gte=1"`
}

// FrameConfig sets the frame clock driving every session.
type FrameConfig struct {
	Interval time.Duration `koanf:"interval"`
}

// SessionsConfig bounds the session registry.
type SessionsConfig struct {
	// IdleTimeout removes sessions with no input. Zero disables expiry.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// ExpireInterval is how often idle sessions are swept.
	ExpireInterval time.Duration `koanf:"expire_interval"`

	// MaxSessions caps live sessions. Zero means unlimited.
	MaxSessions int `koanf:"max_sessions" validate:"gte=0"`
}

// EventsConfig configures the feed lifecycle event bus.
type EventsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Topic   string `koanf:"topic"`

	// BufferSize bounds events waiting to be published. Events beyond it
	// are dropped so the frame clock never blocks.
	BufferSize int `koanf:"buffer_size" validate:"gte=1"`

	CloseTimeout time.Duration `koanf:"close_timeout"`
}

// String summarizes the configuration for startup logs.
func (c *Config) String() string {
	return fmt.Sprintf("server=%s catalog=%s prefs_in_memory=%t frame=%v events=%t",
		c.Server.Addr(), c.Catalog.Driver, c.Preferences.InMemory, c.Frame.Interval, c.Events.Enabled)
}
