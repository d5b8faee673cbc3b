// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// FrameEngine advances live feed sessions. Satisfied by *session.Manager.
type FrameEngine interface {
	TickAll() int
	ExpireIdle() int
	Len() int
}

// FrameClockConfig holds the frame clock intervals.
type FrameClockConfig struct {
	// Interval between frames. Default: 16ms
	Interval time.Duration

	// ExpireInterval between idle session sweeps. Zero disables sweeping.
	ExpireInterval time.Duration
}

// FrameClockService drives the per-frame update of every session.
type FrameClockService struct {
	engine FrameEngine
	config FrameClockConfig
	logger zerolog.Logger
	name   string
}

// NewFrameClockService creates the frame clock.
//
//nolint:gocritic // hugeParam: zerolog.Logger passed by value
func NewFrameClockService(engine FrameEngine, cfg FrameClockConfig, logger zerolog.Logger) *FrameClockService {
	if cfg.Interval <= 0 {
		cfg.Interval = 16 * time.Millisecond
	}
	return &FrameClockService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "frame-clock").Logger(),
		name:   "frame-clock",
	}
}

// Serve implements suture.Service.
func (s *FrameClockService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.config.Interval).
		Dur("expire_interval", s.config.ExpireInterval).
		Msg("frame clock starting")

	frames := time.NewTicker(s.config.Interval)
	defer frames.Stop()

	// a nil channel never fires
	var expire <-chan time.Time
	if s.config.ExpireInterval > 0 {
		t := time.NewTicker(s.config.ExpireInterval)
		defer t.Stop()
		expire = t.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("frame clock shutting down")
			return ctx.Err()

		case <-frames.C:
			s.engine.TickAll()

		case <-expire:
			if n := s.engine.ExpireIdle(); n > 0 {
				s.logger.Debug().Int("expired", n).Int("sessions", s.engine.Len()).Msg("idle sessions expired")
			}
		}
	}
}

// String returns the service name for logging.
func (s *FrameClockService) String() string {
	return s.name
}
