// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

// Package reranking implements post-ranking passes over the product list:
// sponsored placement and category diversity.
package reranking

import "github.com/tomtom215/storefeed/internal/feed"

// Sponsored places sponsored products at a fixed cadence within the organic
// ranking.
//
// With cadence C, sponsored items may only occupy 1-based positions C, 2C,
// 3C, ... so that:
//   - any C consecutive items contain at most one sponsored item
//   - the first item is never sponsored
//   - two sponsored items are never adjacent
//
// Sponsored items keep their relative ranked order. Items that cannot be
// placed because the organic list ran out are dropped. When disabled, all
// sponsored items are removed.
type Sponsored struct {
	enabled bool
	cadence int
}

// NewSponsored creates a sponsored interleaver. A cadence below 2 is raised
// to 2.
//
//nolint:gocritic // hugeParam: config copied once at construction
func NewSponsored(cfg feed.SponsoredConfig) *Sponsored {
	cadence := cfg.Cadence
	if cadence < 2 {
		cadence = 2
	}
	return &Sponsored{enabled: cfg.Enabled, cadence: cadence}
}

// Name returns the reranker identifier.
func (s *Sponsored) Name() string {
	return "sponsored"
}

// Cadence returns the effective window size.
func (s *Sponsored) Cadence() int {
	return s.cadence
}

// Rerank interleaves sponsored products into the organic order.
//
//nolint:gocritic // rangeValCopy: Product copied into output slices by design of the pass
func (s *Sponsored) Rerank(products []feed.Product) []feed.Product {
	organic := make([]feed.Product, 0, len(products))
	var sponsored []feed.Product
	for _, p := range products {
		if p.Sponsored {
			sponsored = append(sponsored, p)
		} else {
			organic = append(organic, p)
		}
	}

	if !s.enabled || len(sponsored) == 0 {
		return organic
	}

	out := make([]feed.Product, 0, len(products))
	next := 0
	for _, p := range organic {
		out = append(out, p)
		// the following position is a sponsored slot
		if next < len(sponsored) && (len(out)+1)%s.cadence == 0 {
			out = append(out, sponsored[next])
			next++
		}
	}

	return out
}

// Ensure Sponsored implements the interface.
var _ feed.Reranker = (*Sponsored)(nil)
