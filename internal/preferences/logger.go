// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package preferences

import (
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// badgerLogger routes Badger's printf-style logs through zerolog.
// Badger info chatter is logged at debug.
type badgerLogger struct {
	logger zerolog.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newBadgerLogger(logger zerolog.Logger) *badgerLogger {
	return &badgerLogger{logger: logger.With().Str("component", "badger").Logger()}
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msgf(strings.TrimSpace(format), args...)
}
