// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package ranking

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/tomtom215/storefeed/internal/cache"
	"github.com/tomtom215/storefeed/internal/feed"
	"github.com/tomtom215/storefeed/internal/metrics"
)

// Cached memoizes ranking results keyed by catalog content, signals and
// options. Ranking is pure, so a hit is always equivalent to recomputing.
type Cached struct {
	ranker *Ranker
	lru    *cache.LRU[[]feed.RankedEntry]
}

// NewCached wraps a ranker with an LRU of the configured size.
//
//nolint:gocritic // hugeParam: config copied once at construction
func NewCached(ranker *Ranker, cfg feed.CacheConfig) *Cached {
	return &Cached{
		ranker: ranker,
		lru:    cache.NewLRU[[]feed.RankedEntry](cfg.MaxEntries, cfg.TTL),
	}
}

// Entries returns the ranked entries, serving repeated requests from cache.
// The returned slice is a copy and may be modified by the caller.
//
//nolint:gocritic // hugeParam: signals passed by value to mirror Ranker.Entries
func (c *Cached) Entries(products []feed.Product, signals feed.Signals, opts feed.RankOptions) []feed.RankedEntry {
	key := cacheKey(feed.Fingerprint(products), &signals, opts)
	if hit, ok := c.lru.Get(key); ok {
		metrics.RecordRankCache(true)
		return cloneEntries(hit)
	}
	metrics.RecordRankCache(false)

	entries := c.ranker.Entries(products, signals, opts)
	c.lru.Add(key, cloneEntries(entries))
	return entries
}

// Stats returns cache hit/miss statistics.
func (c *Cached) Stats() (hits, misses int64, size int) {
	return c.lru.Stats()
}

// Purge drops every cached ranking.
func (c *Cached) Purge() {
	c.lru.Clear()
}

func cloneEntries(in []feed.RankedEntry) []feed.RankedEntry {
	out := make([]feed.RankedEntry, len(in))
	copy(out, in)
	return out
}

// cacheKey hashes everything that influences a ranking pass.
func cacheKey(catalogID string, s *feed.Signals, opts feed.RankOptions) string {
	d := xxhash.New()
	write := func(v string) {
		_, _ = d.WriteString(v)
		_, _ = d.Write([]byte{0})
	}

	write("rv")
	for _, id := range s.RecentlyViewed {
		write(id)
	}
	write("pc")
	for _, c := range s.PreferredCategories {
		write(c)
	}
	if s.Taste != nil && s.Taste.Enabled {
		write("tc")
		for _, k := range sortedKeys(s.Taste.Categories) {
			write(k)
			write(strconv.FormatFloat(s.Taste.Categories[k], 'g', -1, 64))
		}
		write("tt")
		for _, k := range sortedKeys(s.Taste.Tags) {
			write(k)
			write(strconv.FormatFloat(s.Taste.Tags[k], 'g', -1, 64))
		}
	}

	return fmt.Sprintf("%s:%d:%t:%016x", catalogID, opts.Sort, opts.Personalize, d.Sum64())
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
