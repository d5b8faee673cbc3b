// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package ranking

import (
	"math"
	"testing"
	"time"

	"github.com/tomtom215/storefeed/internal/feed"
)

func newTestRanker() *Ranker {
	return NewRanker(feed.DefaultConfig().Ranking)
}

func ids(products []feed.Product) []string {
	out := make([]string, len(products))
	for i := range products {
		out[i] = products[i].ID
	}
	return out
}

func equalIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func scoreOf(entries []feed.RankedEntry, id string) float64 {
	for i := range entries {
		if entries[i].Product.ID == id {
			return entries[i].Score
		}
	}
	return math.NaN()
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

var personalized = feed.RankOptions{Sort: feed.SortRecommended, Personalize: true}

func TestRank_PreferredCategory(t *testing.T) {
	r := newTestRanker()
	products := []feed.Product{
		{ID: "a", Category: "apparel"},
		{ID: "b", Category: "home"},
		{ID: "c", Category: "toys"},
		{ID: "d", Category: "home"},
	}
	signals := feed.Signals{PreferredCategories: []string{"home"}}

	entries := r.Entries(products, signals, personalized)

	got := ids(feed.Products(entries))
	want := []string{"b", "d", "a", "c"}
	if !equalIDs(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if !almostEqual(scoreOf(entries, "b"), 4) {
		t.Errorf("score(b) = %v, want 4", scoreOf(entries, "b"))
	}
	if !almostEqual(scoreOf(entries, "a"), 0) {
		t.Errorf("score(a) = %v, want 0", scoreOf(entries, "a"))
	}
}

func TestRank_RecencyBuckets(t *testing.T) {
	r := newTestRanker()
	products := []feed.Product{
		{ID: "garden", Category: "garden"},
		{ID: "pan", Category: "kitchen", SubCategory: "pans"},
		{ID: "knife", Category: "kitchen", SubCategory: "knives", Tags: []string{"steel"}},
		{ID: "viewed", Category: "kitchen", SubCategory: "knives", Tags: []string{"steel"}},
	}
	signals := feed.Signals{RecentlyViewed: []string{"viewed"}}

	entries := r.Entries(products, signals, personalized)

	tests := []struct {
		id   string
		want float64
	}{
		{"knife", 6},  // 3 category + 2 sub-category + 1 tag
		{"viewed", 6}, // the viewed product itself is scored the same way
		{"pan", 3},    // category only
		{"garden", 0},
	}
	for _, tt := range tests {
		if got := scoreOf(entries, tt.id); !almostEqual(got, tt.want) {
			t.Errorf("score(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}

	// knife precedes viewed on the tie because it comes first in the catalog
	got := ids(feed.Products(entries))
	want := []string{"knife", "viewed", "pan", "garden"}
	if !equalIDs(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestRank_RecencyWeightDecays(t *testing.T) {
	r := newTestRanker()
	products := []feed.Product{
		{ID: "old", Category: "books"},
		{ID: "new", Category: "games"},
		{ID: "book", Category: "books"},
		{ID: "game", Category: "games"},
	}
	// "new" is the most recent view (w=1), "old" the oldest (w=0.5)
	signals := feed.Signals{RecentlyViewed: []string{"new", "old"}}

	entries := r.Entries(products, signals, personalized)

	if got := scoreOf(entries, "game"); !almostEqual(got, 3) {
		t.Errorf("score(game) = %v, want 3", got)
	}
	if got := scoreOf(entries, "book"); !almostEqual(got, 1.5) {
		t.Errorf("score(book) = %v, want 1.5", got)
	}
	got := ids(feed.Products(entries))
	want := []string{"new", "game", "old", "book"}
	if !equalIDs(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestRank_TagCap(t *testing.T) {
	r := newTestRanker()
	tags := []string{"t1", "t2", "t3", "t4", "t5"}
	products := []feed.Product{
		{ID: "viewed", Category: "source", Tags: tags},
		{ID: "candidate", Category: "other", Tags: tags},
	}
	signals := feed.Signals{RecentlyViewed: []string{"viewed"}}

	entries := r.Entries(products, signals, personalized)

	if got := scoreOf(entries, "candidate"); !almostEqual(got, 3) {
		t.Errorf("score(candidate) = %v, want 3 (tag sum capped)", got)
	}
}

func TestRank_TasteProfile(t *testing.T) {
	r := newTestRanker()
	products := []feed.Product{
		{ID: "plain", Category: "garden"},
		{ID: "loud", Category: "garden", Tags: []string{"loud"}},
		{ID: "cozy", Category: "home", Tags: []string{"cozy", "wool"}},
	}

	t.Run("enabled", func(t *testing.T) {
		signals := feed.Signals{Taste: &feed.TasteProfile{
			Enabled:    true,
			Categories: map[string]float64{"home": 2},
			Tags:       map[string]float64{"cozy": 3, "wool": 3, "loud": -10},
		}}
		entries := r.Entries(products, signals, personalized)

		if got := scoreOf(entries, "cozy"); !almostEqual(got, 0.9+4) {
			t.Errorf("score(cozy) = %v, want 4.9", got)
		}
		if got := scoreOf(entries, "loud"); !almostEqual(got, -4) {
			t.Errorf("score(loud) = %v, want -4", got)
		}
		got := ids(feed.Products(entries))
		want := []string{"cozy", "plain", "loud"}
		if !equalIDs(got, want) {
			t.Errorf("order = %v, want %v", got, want)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		signals := feed.Signals{Taste: &feed.TasteProfile{
			Enabled: false,
			Tags:    map[string]float64{"cozy": 3},
		}}
		entries := r.Entries(products, signals, personalized)
		got := ids(feed.Products(entries))
		want := []string{"plain", "loud", "cozy"}
		if !equalIDs(got, want) {
			t.Errorf("order = %v, want %v", got, want)
		}
	})
}

func TestRank_Stability(t *testing.T) {
	r := newTestRanker()
	products := []feed.Product{
		{ID: "1", Category: "a"},
		{ID: "2", Category: "b"},
		{ID: "3", Category: "c"},
		{ID: "4", Category: "d"},
	}

	t.Run("equal scores keep catalog order", func(t *testing.T) {
		signals := feed.Signals{PreferredCategories: []string{"zzz"}}
		got := ids(r.Rank(products, signals, personalized))
		if !equalIDs(got, []string{"1", "2", "3", "4"}) {
			t.Errorf("order = %v, want catalog order", got)
		}
	})

	t.Run("personalize off returns input order", func(t *testing.T) {
		signals := feed.Signals{PreferredCategories: []string{"d"}}
		got := ids(r.Rank(products, signals, feed.RankOptions{Sort: feed.SortRecommended}))
		if !equalIDs(got, []string{"1", "2", "3", "4"}) {
			t.Errorf("order = %v, want catalog order", got)
		}
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		signals := feed.Signals{RecentlyViewed: []string{"3", "1"}, PreferredCategories: []string{"b"}}
		first := ids(r.Rank(products, signals, personalized))
		for i := 0; i < 10; i++ {
			if got := ids(r.Rank(products, signals, personalized)); !equalIDs(got, first) {
				t.Fatalf("call %d order = %v, want %v", i, got, first)
			}
		}
	})

	t.Run("input not modified", func(t *testing.T) {
		signals := feed.Signals{PreferredCategories: []string{"d"}}
		_ = r.Rank(products, signals, personalized)
		if products[0].ID != "1" || products[3].ID != "4" {
			t.Errorf("input reordered: %v", ids(products))
		}
	})
}

func TestRank_Monotonicity(t *testing.T) {
	r := newTestRanker()
	products := []feed.Product{
		{ID: "a", Category: "home", Tags: []string{"x"}},
		{ID: "b", Category: "toys"},
		{ID: "c", Category: "home", SubCategory: "rugs"},
		{ID: "d", Category: "garden", Tags: []string{"x"}},
	}
	before := feed.Signals{RecentlyViewed: []string{"b", "d"}}
	after := feed.Signals{RecentlyViewed: []string{"a", "b", "d"}}

	beforeEntries := r.Entries(products, before, personalized)
	afterEntries := r.Entries(products, after, personalized)

	for _, id := range []string{"a", "c"} {
		if scoreOf(afterEntries, id) < scoreOf(beforeEntries, id) {
			t.Errorf("score(%s) decreased from %v to %v after viewing a home product",
				id, scoreOf(beforeEntries, id), scoreOf(afterEntries, id))
		}
	}
}

func TestRank_UnknownViewedIDs(t *testing.T) {
	r := newTestRanker()
	products := []feed.Product{
		{ID: "a", Category: "home"},
		{ID: "b", Category: "toys"},
	}
	// "ghost" is not in the catalog; "b" sits at index 1 of N=2, weight 0.5
	signals := feed.Signals{RecentlyViewed: []string{"ghost", "b"}}

	entries := r.Entries(products, signals, personalized)
	if got := scoreOf(entries, "b"); !almostEqual(got, 1.5) {
		t.Errorf("score(b) = %v, want 1.5", got)
	}
	if got := scoreOf(entries, "a"); !almostEqual(got, 0) {
		t.Errorf("score(a) = %v, want 0", got)
	}
}

func TestRank_MaxRecentlyViewed(t *testing.T) {
	cfg := feed.DefaultConfig().Ranking
	cfg.MaxRecentlyViewed = 1
	r := NewRanker(cfg)
	products := []feed.Product{
		{ID: "a", Category: "home"},
		{ID: "b", Category: "toys"},
	}
	signals := feed.Signals{RecentlyViewed: []string{"b", "a"}}

	entries := r.Entries(products, signals, personalized)
	if got := scoreOf(entries, "a"); !almostEqual(got, 0) {
		t.Errorf("score(a) = %v, want 0 (beyond recently viewed bound)", got)
	}
	if got := scoreOf(entries, "b"); !almostEqual(got, 3) {
		t.Errorf("score(b) = %v, want 3", got)
	}
}

func TestRank_Empty(t *testing.T) {
	r := newTestRanker()
	got := r.Entries(nil, feed.Signals{PreferredCategories: []string{"home"}}, personalized)
	if got == nil || len(got) != 0 {
		t.Errorf("Entries(nil) = %v, want empty non-nil slice", got)
	}
}

func TestRank_ExplicitSorts(t *testing.T) {
	r := newTestRanker()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	products := []feed.Product{
		{ID: "a", Category: "home", Price: 20, Rating: 4.0, CreatedAt: base},
		{ID: "b", Category: "toys", Price: 10, Rating: 4.5, CreatedAt: base.Add(48 * time.Hour)},
		{ID: "c", Category: "home", Price: 20, Rating: 3.0, CreatedAt: base.Add(24 * time.Hour)},
		{ID: "d", Category: "toys", Price: 5, Rating: 4.5, CreatedAt: base.Add(24 * time.Hour)},
	}
	signals := feed.Signals{PreferredCategories: []string{"home"}}

	tests := []struct {
		sort feed.SortMode
		want []string
	}{
		{feed.SortPriceAsc, []string{"d", "b", "a", "c"}},
		{feed.SortPriceDesc, []string{"a", "c", "b", "d"}},
		{feed.SortRating, []string{"b", "d", "a", "c"}},
		{feed.SortNewest, []string{"b", "c", "d", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.sort.String(), func(t *testing.T) {
			entries := r.Entries(products, signals, feed.RankOptions{Sort: tt.sort, Personalize: true})
			if got := ids(feed.Products(entries)); !equalIDs(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
			for i := range entries {
				if entries[i].Score != 0 {
					t.Errorf("explicit sort scored %s = %v, want 0", entries[i].Product.ID, entries[i].Score)
				}
			}
		})
	}
}

func TestCached(t *testing.T) {
	cfg := feed.DefaultConfig()
	c := NewCached(newTestRanker(), cfg.Cache)
	products := []feed.Product{
		{ID: "a", Category: "toys"},
		{ID: "b", Category: "home"},
	}
	signals := feed.Signals{PreferredCategories: []string{"home"}}

	first := c.Entries(products, signals, personalized)
	second := c.Entries(products, signals, personalized)

	if !equalIDs(ids(feed.Products(first)), ids(feed.Products(second))) {
		t.Errorf("cached order %v differs from computed %v", ids(feed.Products(second)), ids(feed.Products(first)))
	}
	hits, misses, size := c.Stats()
	if hits != 1 || misses != 1 || size != 1 {
		t.Errorf("Stats() = (%d, %d, %d), want (1, 1, 1)", hits, misses, size)
	}

	// mutating a returned slice must not poison the cache
	second[0].Product.ID = "mutated"
	third := c.Entries(products, signals, personalized)
	if third[0].Product.ID != "b" {
		t.Errorf("cache returned mutated entry %q", third[0].Product.ID)
	}

	// different signals miss
	_ = c.Entries(products, feed.Signals{PreferredCategories: []string{"toys"}}, personalized)
	if _, misses, _ := c.Stats(); misses != 2 {
		t.Errorf("misses = %d, want 2", misses)
	}

	c.Purge()
	if _, _, size := c.Stats(); size != 0 {
		t.Errorf("size after Purge = %d, want 0", size)
	}
}

func TestCacheKey_TasteOrderIndependent(t *testing.T) {
	a := feed.Signals{Taste: &feed.TasteProfile{Enabled: true, Tags: map[string]float64{"x": 1, "y": 2, "z": 3}}}
	b := feed.Signals{Taste: &feed.TasteProfile{Enabled: true, Tags: map[string]float64{"z": 3, "y": 2, "x": 1}}}
	if cacheKey("cat", &a, personalized) != cacheKey("cat", &b, personalized) {
		t.Error("equal taste maps produced different keys")
	}
	c := feed.Signals{Taste: &feed.TasteProfile{Enabled: true, Tags: map[string]float64{"x": 1, "y": 2, "z": 4}}}
	if cacheKey("cat", &a, personalized) == cacheKey("cat", &c, personalized) {
		t.Error("different taste weights produced the same key")
	}
}
