// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

// Package catalog loads the product catalog that feeds are ranked from.
//
// SQLStore reads visible products ordered by merchandising position from
// DuckDB (embedded, the default) or PostgreSQL through sqlx. BreakerSource
// wraps any Source with a gobreaker circuit breaker so a failing database
// does not get hammered by the refresh loop; while open, fetches fail fast
// with ErrCircuitOpen and the last good catalog stays in use.
//
// Fetches run on the catalog refresh service, never on the frame clock.
package catalog
