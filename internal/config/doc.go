// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

/*
Package config loads and validates storefeed configuration.

# Configuration Sources

Koanf v2 layers three sources, later ones winning:
  - Built-in defaults (structs provider)
  - An optional YAML file: $CONFIG_PATH, ./config.yaml, /etc/storefeed/config.yaml
  - Environment variables, mapped explicitly (unmapped variables are ignored)

# Sections

  - server: ops HTTP listener, CORS, rate limiting, debug session routes
  - logging: zerolog level and format
  - catalog: SQL driver (duckdb or postgres), DSN, refresh cadence, circuit breaker
  - preferences: Badger directory or in-memory mode
  - feed: the engine configuration (ranking, sponsored, diversity, deck, motion, cache, breakpoints)
  - frame: frame clock interval
  - sessions: idle expiry and session cap
  - events: lifecycle event bus topic and buffer

# Environment Variables (selection)

  - HTTP_PORT, HTTP_HOST, CORS_ORIGINS (comma-separated), RATE_LIMIT_REQUESTS
  - LOG_LEVEL, LOG_FORMAT
  - CATALOG_DRIVER, CATALOG_DSN, CATALOG_REFRESH_INTERVAL
  - PREFERENCES_PATH, PREFERENCES_IN_MEMORY
  - FEED_SPONSORED_CADENCE, FEED_REFILL_BATCH, FEED_SCROLL_DURATION, FEED_COOLDOWN
  - FRAME_INTERVAL, SESSION_IDLE_TIMEOUT, MAX_SESSIONS
  - EVENTS_ENABLED, EVENTS_BUFFER_SIZE

Breakpoints are only configurable from the YAML file:

	feed:
	  breakpoints:
	    - {min_width: 0, columns: 1}
	    - {min_width: 700, columns: 2}
	    - {min_width: 1100, columns: 4}

# Validation

Validate runs validator struct tags (see internal/validation) and then
cross-field rules, including feed.Config.Validate. Startup aborts on error.
*/
package config
