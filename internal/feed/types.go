// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package feed

import (
	"fmt"
	"strings"
	"time"
)

// Product is a catalog item. Products are immutable for the lifetime of a
// session; a changed catalog produces a new session generation.
type Product struct {
	// ID is the unique product identifier.
	ID string `json:"id" db:"id"`

	// Title is the display title. Not used for ranking.
	Title string `json:"title,omitempty" db:"title"`

	// Category is the top-level category (e.g. "home", "apparel").
	Category string `json:"category" db:"category"`

	// SubCategory is the optional second-level category.
	SubCategory string `json:"sub_category,omitempty" db:"sub_category"`

	// Tags are free-form descriptive tags.
	Tags []string `json:"tags,omitempty" db:"-"`

	// Sponsored marks paid placements handled by the interleaver.
	Sponsored bool `json:"sponsored,omitempty" db:"sponsored"`

	// Price is the current unit price.
	Price float64 `json:"price" db:"price"`

	// Rating is the average customer rating (0-5).
	Rating float64 `json:"rating,omitempty" db:"rating"`

	// CreatedAt is when the product was listed. Used by SortNewest.
	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at"`
}

// TasteProfile is an explicit, user-editable preference profile.
// Weights may be negative to express dislikes.
type TasteProfile struct {
	// Enabled gates the whole profile. A disabled profile contributes nothing.
	Enabled bool `json:"enabled"`

	// Categories maps category name to weight.
	Categories map[string]float64 `json:"categories,omitempty"`

	// Tags maps tag name to weight.
	Tags map[string]float64 `json:"tags,omitempty"`
}

// Signals are the personalization inputs for a single viewer.
type Signals struct {
	// RecentlyViewed holds product IDs, most recent first.
	RecentlyViewed []string `json:"recently_viewed,omitempty"`

	// Taste is the optional explicit taste profile.
	Taste *TasteProfile `json:"taste,omitempty"`

	// PreferredCategories are categories the viewer opted into.
	PreferredCategories []string `json:"preferred_categories,omitempty"`
}

// IsZero reports whether the signals carry no personalization at all.
func (s *Signals) IsZero() bool {
	return len(s.RecentlyViewed) == 0 && len(s.PreferredCategories) == 0 &&
		(s.Taste == nil || !s.Taste.Enabled)
}

// SortMode selects the ordering applied by the ranking engine.
type SortMode int

const (
	// SortRecommended orders by personalization score.
	SortRecommended SortMode = iota
	// SortPriceAsc orders by price, cheapest first.
	SortPriceAsc
	// SortPriceDesc orders by price, most expensive first.
	SortPriceDesc
	// SortRating orders by rating, best first.
	SortRating
	// SortNewest orders by listing date, newest first.
	SortNewest
)

// String returns the wire name of the sort mode.
func (m SortMode) String() string {
	switch m {
	case SortRecommended:
		return "recommended"
	case SortPriceAsc:
		return "price_asc"
	case SortPriceDesc:
		return "price_desc"
	case SortRating:
		return "rating"
	case SortNewest:
		return "newest"
	default:
		return "unknown"
	}
}

// ParseSortMode parses a wire name into a SortMode.
// An empty string yields SortRecommended.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recommended":
		return SortRecommended, nil
	case "price_asc":
		return SortPriceAsc, nil
	case "price_desc":
		return SortPriceDesc, nil
	case "rating":
		return SortRating, nil
	case "newest":
		return SortNewest, nil
	default:
		return SortRecommended, fmt.Errorf("unknown sort mode %q", s)
	}
}

// RankOptions controls a single ranking pass.
type RankOptions struct {
	// Sort is the requested ordering.
	Sort SortMode `json:"sort"`

	// Personalize enables signal-based scoring for SortRecommended.
	// When false, the recommended order is the catalog order.
	Personalize bool `json:"personalize"`
}

// ScoreBreakdown explains a personalization score.
type ScoreBreakdown struct {
	Recency    float64 `json:"recency"`
	Preference float64 `json:"preference"`
	Taste      float64 `json:"taste"`
}

// RankedEntry is a product with its computed score and catalog position.
type RankedEntry struct {
	Product       Product        `json:"product"`
	Score         float64        `json:"score"`
	OriginalIndex int            `json:"original_index"`
	Breakdown     ScoreBreakdown `json:"breakdown"`
}

// Products strips the scores off a ranked list.
func Products(entries []RankedEntry) []Product {
	out := make([]Product, len(entries))
	for i := range entries {
		out[i] = entries[i].Product
	}
	return out
}

// Reranker reorders or filters an already ranked product list.
type Reranker interface {
	// Rerank returns the reordered list. It must not modify the input slice.
	Rerank(products []Product) []Product

	// Name returns the reranker identifier.
	Name() string
}
