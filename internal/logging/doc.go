// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

// Package logging provides centralized zerolog-based structured logging.
//
// The package owns the global logger and the adapters that route third-party
// logging through it:
//   - SlogHandler for libraries taking *slog.Logger (sutureslog)
//   - WatermillAdapter for the lifecycle event bus
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Int("sessions", n).Msg("Frame clock started")
//	logging.Ctx(r.Context()).Warn().Err(err).Msg("Bad input")
//
// Components take a zerolog.Logger and derive their own:
//
//	logger := base.With().Str("component", "catalog-refresh").Logger()
//
// # Configuration
//
// Level and format come from the logging section of the service
// configuration (LOG_LEVEL, LOG_FORMAT, LOG_CALLER in the environment).
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
