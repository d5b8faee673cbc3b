// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// RunOnceService wraps a service whose Serve may be called only once, such
// as a Watermill router. Once the inner service returns for any reason other
// than cancellation, the supervisor is told not to restart it.
type RunOnceService struct {
	inner  suture.Service
	logger zerolog.Logger
	name   string
}

// NewRunOnceService wraps inner.
//
//nolint:gocritic // hugeParam: zerolog.Logger passed by value
func NewRunOnceService(inner suture.Service, logger zerolog.Logger) *RunOnceService {
	name := fmt.Sprint(inner)
	return &RunOnceService{
		inner:  inner,
		logger: logger.With().Str("service", name).Logger(),
		name:   name,
	}
}

// Serve implements suture.Service.
func (s *RunOnceService) Serve(ctx context.Context) error {
	err := s.inner.Serve(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil && !errors.Is(err, suture.ErrDoNotRestart) {
		s.logger.Error().Err(err).Msg("service stopped and cannot be restarted")
		return fmt.Errorf("%w: %w", suture.ErrDoNotRestart, err)
	}
	s.logger.Warn().Msg("service stopped and will not be restarted")
	return suture.ErrDoNotRestart
}

// String returns the wrapped service's name.
func (s *RunOnceService) String() string {
	return s.name
}
