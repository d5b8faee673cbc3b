// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package catalog

import (
	"fmt"
	"time"

	"github.com/tomtom215/storefeed/internal/feed"
)

var demoCategories = []struct {
	category string
	subs     []string
	tags     []string
}{
	{"home", []string{"kitchen", "decor", "bedding"}, []string{"cozy", "minimal", "handmade"}},
	{"apparel", []string{"outerwear", "shoes", "basics"}, []string{"organic", "winter", "classic"}},
	{"electronics", []string{"audio", "accessories", "wearables"}, []string{"wireless", "compact", "premium"}},
	{"outdoors", []string{"camping", "cycling", "garden"}, []string{"durable", "lightweight", "summer"}},
}

// DemoProducts returns a deterministic 48-product catalog with one
// sponsored item in every eight.
func DemoProducts() []feed.Product {
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	products := make([]feed.Product, 0, 48)
	for i := 0; i < 48; i++ {
		c := demoCategories[i%len(demoCategories)]
		sub := c.subs[(i/len(demoCategories))%len(c.subs)]
		products = append(products, feed.Product{
			ID:          fmt.Sprintf("sku-%03d", i+1),
			Title:       fmt.Sprintf("%s %s #%d", c.category, sub, i+1),
			Category:    c.category,
			SubCategory: sub,
			Tags:        []string{c.tags[i%len(c.tags)], c.tags[(i+1)%len(c.tags)]},
			Sponsored:   i%8 == 7,
			Price:       float64(10 + (i*37)%190),
			Rating:      float64(30+(i*7)%21) / 10,
			CreatedAt:   base.Add(time.Duration(i) * 24 * time.Hour),
		})
	}
	return products
}
