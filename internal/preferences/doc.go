// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

// Package preferences stores per-viewer personalization signals: the
// recently viewed list, the explicit taste profile and preferred
// categories.
//
// BadgerStore keeps one JSON value per viewer and signal kind:
//
//	recent:<user>   []string, most recent first, bounded
//	taste:<user>    feed.TasteProfile
//	prefcat:<user>  []string
//
// Signals reads all three in one transaction and is what the API uses to
// seed a feed session. Missing signals are simply empty; only TasteProfile
// reports ErrNotFound, since "no profile" and "disabled profile" differ for
// editors.
package preferences
