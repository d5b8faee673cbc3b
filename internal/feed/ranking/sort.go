// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package ranking

import (
	"sort"

	"github.com/tomtom215/storefeed/internal/feed"
)

// sortExplicit applies a non-personalized ordering. Ties fall back to
// catalog order.
func sortExplicit(entries []feed.RankedEntry, mode feed.SortMode) {
	var compare func(a, b *feed.Product) int

	switch mode {
	case feed.SortPriceAsc:
		compare = func(a, b *feed.Product) int { return cmpFloat(a.Price, b.Price) }
	case feed.SortPriceDesc:
		compare = func(a, b *feed.Product) int { return cmpFloat(b.Price, a.Price) }
	case feed.SortRating:
		compare = func(a, b *feed.Product) int { return cmpFloat(b.Rating, a.Rating) }
	case feed.SortNewest:
		compare = func(a, b *feed.Product) int { return b.CreatedAt.Compare(a.CreatedAt) }
	default:
		return
	}

	sort.Slice(entries, func(i, j int) bool {
		if c := compare(&entries[i].Product, &entries[j].Product); c != 0 {
			return c < 0
		}
		return entries[i].OriginalIndex < entries[j].OriginalIndex
	})
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
