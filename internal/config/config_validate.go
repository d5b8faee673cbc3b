// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/storefeed/internal/validation"
)

const (
	minFrameInterval = time.Millisecond
	maxFrameInterval = time.Second
)

// Validate checks struct tags first, then cross-field rules.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	validators := []func() error{
		c.validateServer,
		c.validateCatalog,
		c.validatePreferences,
		c.validateFeed,
		c.validateFrame,
		c.validateEvents,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server read and write timeouts must be positive")
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive unless DISABLE_RATE_LIMIT=true")
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.Driver == "postgres" && strings.TrimSpace(c.Catalog.DSN) == "" {
		return fmt.Errorf("CATALOG_DSN is required when CATALOG_DRIVER=postgres")
	}
	if c.Catalog.RefreshInterval < time.Second {
		return fmt.Errorf("CATALOG_REFRESH_INTERVAL must be at least 1s, got %v", c.Catalog.RefreshInterval)
	}
	if c.Catalog.FetchTimeout <= 0 {
		return fmt.Errorf("CATALOG_FETCH_TIMEOUT must be positive")
	}
	if c.Catalog.Breaker.Enabled && c.Catalog.Breaker.Timeout <= 0 {
		return fmt.Errorf("CATALOG_BREAKER_TIMEOUT must be positive when the breaker is enabled")
	}
	return nil
}

func (c *Config) validatePreferences() error {
	if !c.Preferences.InMemory && strings.TrimSpace(c.Preferences.Path) == "" {
		return fmt.Errorf("PREFERENCES_PATH is required unless PREFERENCES_IN_MEMORY=true")
	}
	return nil
}

func (c *Config) validateFeed() error {
	if err := c.Feed.Validate(); err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	return nil
}

func (c *Config) validateFrame() error {
	if c.Frame.Interval < minFrameInterval || c.Frame.Interval > maxFrameInterval {
		return fmt.Errorf("FRAME_INTERVAL must be between %v and %v, got %v",
			minFrameInterval, maxFrameInterval, c.Frame.Interval)
	}
	if c.Sessions.IdleTimeout > 0 && c.Sessions.ExpireInterval <= 0 {
		return fmt.Errorf("SESSION_EXPIRE_INTERVAL must be positive when idle expiry is enabled")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if c.Events.Enabled && strings.TrimSpace(c.Events.Topic) == "" {
		return fmt.Errorf("EVENTS_TOPIC is required when events are enabled")
	}
	return nil
}
