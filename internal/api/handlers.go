// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package api

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storefeed/internal/eventprocessor"
	"github.com/tomtom215/storefeed/internal/feed/session"
	"github.com/tomtom215/storefeed/internal/preferences"
)

// BreakerStater reports a circuit breaker state. Satisfied by
// *catalog.BreakerSource.
type BreakerStater interface {
	State() string
}

// RunningChecker reports whether a background component is running.
// Satisfied by *eventprocessor.Router.
type RunningChecker interface {
	IsRunning() bool
}

// PendingCounter reports queued items. Satisfied by
// *eventprocessor.Publisher.
type PendingCounter interface {
	Pending() int
}

// Deps are the handler dependencies. Only Manager is required.
type Deps struct {
	Manager     *session.Manager
	Preferences preferences.Store
	Events      *eventprocessor.EventLog
	Breaker     BreakerStater
	Router      RunningChecker
	Publisher   PendingCounter
	Version     string
}

// Handler serves the ops API.
//
// Handler methods are split across files:
//   - handlers_health.go: liveness and health
//   - handlers_feed.go: feed session routes
//   - handlers_preferences.go: viewer preference routes
type Handler struct {
	deps      Deps
	startTime time.Time
	logger    zerolog.Logger
}

// NewHandler creates a handler.
//
//nolint:gocritic // hugeParam: deps copied once at construction
func NewHandler(deps Deps, logger zerolog.Logger) *Handler {
	if deps.Version == "" {
		deps.Version = "dev"
	}
	return &Handler{
		deps:      deps,
		startTime: time.Now(),
		logger:    logger.With().Str("component", "api").Logger(),
	}
}
