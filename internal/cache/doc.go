// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

/*
Package cache provides a thread-safe, generic LRU cache with TTL support.

It backs the rank result cache: after a catalog refresh every live session is
re-ranked, and viewers with identical signals share one ranking pass.

# Usage Example

	c := cache.NewLRU[[]feed.RankedEntry](512, 5*time.Minute)
	c.Add(key, entries)
	if entries, ok := c.Get(key); ok {
	    // use cached ranking
	}

# Characteristics

  - O(1) Get, Add and Remove
  - O(1) least recently used eviction at capacity
  - Lazy expiration on Get, plus CleanupExpired for periodic sweeps
  - Hit/miss statistics via Stats
*/
package cache
