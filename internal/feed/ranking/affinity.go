// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package ranking

import "github.com/tomtom215/storefeed/internal/feed"

// affinity holds accumulated recency weight per category, sub-category and tag.
type affinity struct {
	categories    map[string]float64
	subCategories map[string]float64
	tags          map[string]float64
}

// buildAffinity folds the recently viewed list into weight buckets.
//
// For the view at index i of N, the weight is (N-i)/N, so the most recent
// view counts fully and the oldest counts 1/N. Views of products missing
// from the catalog contribute nothing but still occupy their slot.
func (r *Ranker) buildAffinity(products []feed.Product, viewed []string) affinity {
	aff := affinity{
		categories:    make(map[string]float64),
		subCategories: make(map[string]float64),
		tags:          make(map[string]float64),
	}

	n := len(viewed)
	if n > r.cfg.MaxRecentlyViewed {
		n = r.cfg.MaxRecentlyViewed
	}
	if n == 0 {
		return aff
	}

	byID := make(map[string]int, len(products))
	for i := range products {
		if _, dup := byID[products[i].ID]; !dup {
			byID[products[i].ID] = i
		}
	}

	for i := 0; i < n; i++ {
		idx, ok := byID[viewed[i]]
		if !ok {
			continue
		}
		p := &products[idx]
		w := float64(n-i) / float64(n)

		aff.categories[p.Category] += w * r.cfg.RecencyCategoryWeight
		if p.SubCategory != "" {
			aff.subCategories[p.SubCategory] += w * r.cfg.RecencySubCategoryWeight
		}
		for _, tag := range p.Tags {
			aff.tags[tag] += w * r.cfg.RecencyTagWeight
		}
	}

	return aff
}
