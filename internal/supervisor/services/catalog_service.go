// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storefeed/internal/feed"
)

// CatalogSource loads the current catalog. Satisfied by catalog.Source.
type CatalogSource interface {
	FetchCatalog(ctx context.Context) ([]feed.Product, error)
}

// CatalogSink receives a fresh catalog. Satisfied by *session.Manager.
type CatalogSink interface {
	SetCatalog(products []feed.Product) int
}

// CatalogRefreshConfig holds the refresh schedule.
type CatalogRefreshConfig struct {
	// Interval between refreshes. Default: 1m
	Interval time.Duration

	// FetchTimeout bounds one fetch. Default: 10s
	FetchTimeout time.Duration
}

// CatalogRefreshService keeps the session manager's catalog current.
// A failed fetch leaves the previous catalog in place.
type CatalogRefreshService struct {
	source CatalogSource
	sink   CatalogSink
	config CatalogRefreshConfig
	logger zerolog.Logger
	name   string
}

// NewCatalogRefreshService creates the refresh loop.
//
//nolint:gocritic // hugeParam: zerolog.Logger passed by value
func NewCatalogRefreshService(source CatalogSource, sink CatalogSink, cfg CatalogRefreshConfig, logger zerolog.Logger) *CatalogRefreshService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	return &CatalogRefreshService{
		source: source,
		sink:   sink,
		config: cfg,
		logger: logger.With().Str("service", "catalog-refresh").Logger(),
		name:   "catalog-refresh",
	}
}

// Serve implements suture.Service. The catalog is loaded once before the
// first tick so sessions never start on an empty list when the store is up.
func (s *CatalogRefreshService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.config.Interval).Msg("catalog refresh starting")

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("initial catalog load failed (will retry on schedule)")
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("catalog refresh shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("catalog refresh failed, keeping previous catalog")
			}
		}
	}
}

// Refresh fetches the catalog once and hands it to the sink.
func (s *CatalogRefreshService) Refresh(ctx context.Context) error {
	fetchCtx, cancel := context.WithTimeout(ctx, s.config.FetchTimeout)
	defer cancel()

	products, err := s.source.FetchCatalog(fetchCtx)
	if err != nil {
		return err
	}

	reset := s.sink.SetCatalog(products)
	s.logger.Debug().Int("products", len(products)).Int("sessions_reset", reset).Msg("catalog refreshed")
	return nil
}

// String returns the service name for logging.
func (s *CatalogRefreshService) String() string {
	return s.name
}
