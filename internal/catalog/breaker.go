// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/storefeed/internal/feed"
	"github.com/tomtom215/storefeed/internal/metrics"
)

// ErrCircuitOpen is returned while the breaker rejects fetches.
var ErrCircuitOpen = errors.New("catalog circuit breaker open")

// BreakerConfig configures BreakerSource.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// BreakerSource guards a Source with a circuit breaker.
//
// The breaker uses real time for its interval and timeout; tests drive it
// with short timeouts rather than a fake clock.
type BreakerSource struct {
	source Source
	cb     *gobreaker.CircuitBreaker[[]feed.Product]
	name   string
}

var _ Source = (*BreakerSource)(nil)

// NewBreakerSource wraps source.
//
//nolint:gocritic // hugeParam: config copied once at construction
func NewBreakerSource(source Source, cfg BreakerConfig, logger zerolog.Logger) *BreakerSource {
	if cfg.Name == "" {
		cfg.Name = "catalog"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 1
	}
	log := logger.With().Str("component", "catalog-breaker").Str("breaker", cfg.Name).Logger()

	metrics.RecordCircuitBreakerState(cfg.Name, gobreaker.StateClosed.String())

	cb := gobreaker.NewCircuitBreaker[[]feed.Product](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= cfg.FailureThreshold
			if trip {
				log.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("Opening circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info().Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
	})

	return &BreakerSource{source: source, cb: cb, name: cfg.Name}
}

// FetchCatalog fetches through the breaker. Rejections wrap ErrCircuitOpen.
func (b *BreakerSource) FetchCatalog(ctx context.Context) ([]feed.Product, error) {
	products, err := b.cb.Execute(func() ([]feed.Product, error) {
		return b.source.FetchCatalog(ctx)
	})
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
		return products, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		return nil, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}
}

// State returns the breaker state name: closed, half-open or open.
func (b *BreakerSource) State() string {
	return b.cb.State().String()
}
