// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package eventprocessor

import "errors"

// ErrNilPublisher is returned when a Publisher is built without a bus publisher.
var ErrNilPublisher = errors.New("publisher cannot be nil")

// ErrInvalidConfig is returned when configuration is invalid.
var ErrInvalidConfig = errors.New("invalid configuration")
