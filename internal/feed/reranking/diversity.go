// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package reranking

import (
	"strings"

	"github.com/tomtom215/storefeed/internal/feed"
)

// diversityWindow bounds how many upcoming candidates are compared at each
// step, keeping the pass O(n * window) on large catalogs.
const diversityWindow = 32

// Diversity implements Maximal Marginal Relevance over product attributes.
// It breaks up runs of near-identical products by trading a little rank
// order for category and tag novelty.
//
// The MMR formula is:
//
//	MMR = argmax[lambda * rel(i) - (1-lambda) * max(sim(i, s)) for s in recent]
//
// Where rel(i) = 1 - rank(i)/n and sim is the Jaccard similarity of the
// category, sub-category and tag sets. Only the last diversityWindow
// selections are compared against.
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type Diversity struct {
	// Lambda balances rank order vs. diversity (0.0 to 1.0)
	lambda float64
}

// NewDiversity creates a new diversity reranker.
func NewDiversity(lambda float64) *Diversity {
	if lambda < 0 {
		lambda = 0
	}
	if lambda > 1 {
		lambda = 1
	}
	return &Diversity{lambda: lambda}
}

// Name returns the reranker identifier.
func (d *Diversity) Name() string {
	return "diversity"
}

// Enabled reports whether the pass changes anything.
func (d *Diversity) Enabled() bool {
	return d.lambda < 1.0
}

// RecommendedOnly reports that the pass must not run over an explicit sort
// order.
func (d *Diversity) RecommendedOnly() bool {
	return true
}

// Rerank applies windowed MMR reranking.
func (d *Diversity) Rerank(products []feed.Product) []feed.Product {
	out := make([]feed.Product, 0, len(products))
	if len(products) == 0 {
		return out
	}
	if !d.Enabled() {
		return append(out, products...)
	}

	n := float64(len(products))
	features := make([]map[string]struct{}, len(products))
	for i := range products {
		features[i] = featureSet(&products[i])
	}

	taken := make([]bool, len(products))
	selected := make([]int, 0, len(products))
	cursor := 0 // first unselected index in rank order

	for len(selected) < len(products) {
		for taken[cursor] {
			cursor++
		}

		bestIdx := -1
		bestMMR := 0.0
		seen := 0
		for i := cursor; i < len(products) && seen < diversityWindow; i++ {
			if taken[i] {
				continue
			}
			seen++

			relevance := 1 - float64(i)/n
			maxSim := 0.0
			from := len(selected) - diversityWindow
			if from < 0 {
				from = 0
			}
			for _, j := range selected[from:] {
				if sim := jaccard(features[i], features[j]); sim > maxSim {
					maxSim = sim
				}
			}

			score := d.lambda*relevance - (1-d.lambda)*maxSim
			if bestIdx < 0 || score > bestMMR {
				bestMMR = score
				bestIdx = i
			}
		}

		taken[bestIdx] = true
		selected = append(selected, bestIdx)
	}

	for _, idx := range selected {
		out = append(out, products[idx])
	}
	return out
}

// featureSet returns the normalized attribute set of a product.
func featureSet(p *feed.Product) map[string]struct{} {
	set := make(map[string]struct{}, len(p.Tags)+2)
	if p.Category != "" {
		set["c:"+strings.ToLower(p.Category)] = struct{}{}
	}
	if p.SubCategory != "" {
		set["s:"+strings.ToLower(p.SubCategory)] = struct{}{}
	}
	for _, tag := range p.Tags {
		set["t:"+strings.ToLower(tag)] = struct{}{}
	}
	return set
}

// jaccard computes the Jaccard similarity of two sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Ensure Diversity implements the interface.
var _ feed.Reranker = (*Diversity)(nil)
