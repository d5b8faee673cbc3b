// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

// Package ranking orders a product catalog for a single viewer.
//
// Ranking is a pure function of (catalog, signals, options): the same inputs
// always yield the same order, and products with equal scores keep their
// catalog order.
package ranking

import (
	"sort"

	"github.com/tomtom215/storefeed/internal/feed"
)

// Ranker scores and sorts products.
type Ranker struct {
	cfg feed.RankingConfig
}

// NewRanker creates a ranker with the given weights.
//
//nolint:gocritic // hugeParam: config copied once at construction
func NewRanker(cfg feed.RankingConfig) *Ranker {
	if cfg.MaxRecentlyViewed <= 0 {
		cfg.MaxRecentlyViewed = feed.DefaultConfig().Ranking.MaxRecentlyViewed
	}
	return &Ranker{cfg: cfg}
}

// Config returns the ranking weights in use.
func (r *Ranker) Config() feed.RankingConfig {
	return r.cfg
}

// Rank returns products in ranked order.
//
//nolint:gocritic // hugeParam: signals passed by value to keep Rank pure
func (r *Ranker) Rank(products []feed.Product, signals feed.Signals, opts feed.RankOptions) []feed.Product {
	return feed.Products(r.Entries(products, signals, opts))
}

// Entries returns products in ranked order together with their scores.
//
// Explicit sorts (price, rating, newest) ignore personalization. The
// recommended sort scores by signals only when opts.Personalize is set;
// otherwise catalog order is returned unchanged.
//
//nolint:gocritic // hugeParam: signals passed by value to keep Entries pure
func (r *Ranker) Entries(products []feed.Product, signals feed.Signals, opts feed.RankOptions) []feed.RankedEntry {
	entries := make([]feed.RankedEntry, len(products))
	for i := range products {
		entries[i] = feed.RankedEntry{Product: products[i], OriginalIndex: i}
	}
	if len(entries) == 0 {
		return entries
	}

	if opts.Sort != feed.SortRecommended {
		sortExplicit(entries, opts.Sort)
		return entries
	}
	if !opts.Personalize || signals.IsZero() {
		return entries
	}

	aff := r.buildAffinity(products, signals.RecentlyViewed)
	preferred := make(map[string]struct{}, len(signals.PreferredCategories))
	for _, c := range signals.PreferredCategories {
		preferred[c] = struct{}{}
	}

	for i := range entries {
		b := r.score(&entries[i].Product, aff, preferred, signals.Taste)
		entries[i].Breakdown = b
		entries[i].Score = b.Recency + b.Preference + b.Taste
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].OriginalIndex < entries[j].OriginalIndex
	})
	return entries
}

// score computes the three score components for one product.
func (r *Ranker) score(p *feed.Product, aff affinity, preferred map[string]struct{}, taste *feed.TasteProfile) feed.ScoreBreakdown {
	var b feed.ScoreBreakdown

	tagSum := 0.0
	for _, tag := range p.Tags {
		tagSum += aff.tags[tag]
	}
	b.Recency = aff.categories[p.Category] + aff.subCategories[p.SubCategory] +
		minFloat(tagSum, r.cfg.RecencyTagCap)

	if _, ok := preferred[p.Category]; ok {
		b.Preference = r.cfg.PreferredCategoryBoost
	}

	if taste != nil && taste.Enabled {
		tasteTags := 0.0
		for _, tag := range p.Tags {
			tasteTags += taste.Tags[tag]
		}
		b.Taste = taste.Categories[p.Category]*r.cfg.TasteCategoryWeight +
			clamp(tasteTags, -r.cfg.TasteTagClamp, r.cfg.TasteTagClamp)
	}

	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
