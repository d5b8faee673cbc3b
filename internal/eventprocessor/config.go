// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package eventprocessor

import (
	"fmt"
	"time"
)

// Config holds event bus configuration.
type Config struct {
	// Topic carries lifecycle events.
	Topic string

	// BufferSize bounds events waiting to be published.
	BufferSize int

	// CloseTimeout is how long the router waits for handlers on shutdown.
	CloseTimeout time.Duration

	// Retry configuration for handlers.
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration

	// PoisonQueueTopic receives messages that still fail after retries.
	// Empty disables the poison queue.
	PoisonQueueTopic string
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Topic:                "feed.lifecycle",
		BufferSize:           1024,
		CloseTimeout:         5 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 50 * time.Millisecond,
		RetryMaxInterval:     time.Second,
		PoisonQueueTopic:     "feed.lifecycle.poison",
	}
}

// Validate checks the configuration.
//
//nolint:gocritic // hugeParam: validated once at startup
func (c Config) Validate() error {
	if c.Topic == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidConfig)
	}
	if c.BufferSize < 1 {
		return fmt.Errorf("%w: buffer size must be positive, got %d", ErrInvalidConfig, c.BufferSize)
	}
	if c.RetryMaxRetries < 0 {
		return fmt.Errorf("%w: retry count must be non-negative, got %d", ErrInvalidConfig, c.RetryMaxRetries)
	}
	if c.PoisonQueueTopic == c.Topic {
		return fmt.Errorf("%w: poison queue topic must differ from %q", ErrInvalidConfig, c.Topic)
	}
	return nil
}
