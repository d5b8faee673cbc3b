// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package feed

import (
	"fmt"
	"time"
)

// Config contains all configuration for the feed engine.
type Config struct {
	// Ranking contains personalization scoring weights.
	Ranking RankingConfig `json:"ranking" koanf:"ranking"`

	// Sponsored contains sponsored interleaving parameters.
	Sponsored SponsoredConfig `json:"sponsored" koanf:"sponsored"`

	// Diversity contains the optional category diversity reranker parameters.
	Diversity DiversityConfig `json:"diversity" koanf:"diversity"`

	// Deck contains allocation parameters.
	Deck DeckConfig `json:"deck" koanf:"deck"`

	// Motion contains column controller parameters.
	Motion MotionConfig `json:"motion" koanf:"motion"`

	// Cache contains rank result caching parameters.
	Cache CacheConfig `json:"cache" koanf:"cache"`

	// Breakpoints maps viewport widths to column counts.
	Breakpoints Breakpoints `json:"breakpoints" koanf:"breakpoints"`
}

// RankingConfig contains personalization scoring weights.
type RankingConfig struct {
	// RecencyCategoryWeight multiplies the recency weight into the category bucket.
	// Default: 3.
	RecencyCategoryWeight float64 `json:"recency_category_weight" koanf:"recency_category_weight"`

	// RecencySubCategoryWeight multiplies the recency weight into the sub-category bucket.
	// Default: 2.
	RecencySubCategoryWeight float64 `json:"recency_sub_category_weight" koanf:"recency_sub_category_weight"`

	// RecencyTagWeight multiplies the recency weight into each tag bucket.
	// Default: 1.
	RecencyTagWeight float64 `json:"recency_tag_weight" koanf:"recency_tag_weight"`

	// RecencyTagCap caps the total tag contribution per product.
	// Default: 3.
	RecencyTagCap float64 `json:"recency_tag_cap" koanf:"recency_tag_cap"`

	// PreferredCategoryBoost is the flat bonus for preferred categories.
	// Default: 4.
	PreferredCategoryBoost float64 `json:"preferred_category_boost" koanf:"preferred_category_boost"`

	// TasteCategoryWeight scales the taste profile category weight.
	// Default: 0.45.
	TasteCategoryWeight float64 `json:"taste_category_weight" koanf:"taste_category_weight"`

	// TasteTagClamp bounds the summed taste tag weights to [-clamp, clamp].
	// Kept separate from RecencyTagCap.
	// Default: 4.
	TasteTagClamp float64 `json:"taste_tag_clamp" koanf:"taste_tag_clamp"`

	// MaxRecentlyViewed bounds the recently viewed list considered.
	// Default: 20.
	MaxRecentlyViewed int `json:"max_recently_viewed" koanf:"max_recently_viewed"`
}

// SponsoredConfig contains sponsored interleaving parameters.
type SponsoredConfig struct {
	// Enabled keeps sponsored items in the feed. When false they are removed.
	// Default: true.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// Cadence is the window size: every Cadence-th position is a sponsored
	// slot, so any Cadence consecutive items hold at most one sponsored item.
	// Default: 6.
	Cadence int `json:"cadence" koanf:"cadence"`
}

// DiversityConfig contains parameters for category diversity reranking.
type DiversityConfig struct {
	// Lambda balances rank order vs. category/tag novelty.
	// 1.0 = keep rank order (disabled), 0.0 = pure diversity.
	// Default: 1.0.
	Lambda float64 `json:"lambda" koanf:"lambda"`
}

// DeckConfig contains allocation parameters.
type DeckConfig struct {
	// RefillBatch is the number of cards dealt per refill.
	// Default: 2.
	RefillBatch int `json:"refill_batch" koanf:"refill_batch"`

	// BufferCards is added to the visible card count for the initial deal.
	// Default: 1.
	BufferCards int `json:"buffer_cards" koanf:"buffer_cards"`

	// CycleShortCatalog repeats the catalog to fill initial decks when it is
	// shorter than the capacity target.
	// Default: true.
	CycleShortCatalog bool `json:"cycle_short_catalog" koanf:"cycle_short_catalog"`

	// CardHeight is the default card height in pixels when the client does
	// not report one.
	// Default: 320.
	CardHeight float64 `json:"card_height" koanf:"card_height"`
}

// MotionConfig contains column controller parameters.
type MotionConfig struct {
	// ScrollDuration is the time the autonomous motion takes to traverse the
	// content height measured at layout. BaseSpeed = ContentHeight / ScrollDuration.
	// Default: 45s.
	ScrollDuration time.Duration `json:"scroll_duration" koanf:"scroll_duration"`

	// Blend is the per-frame easing factor of speed toward its target.
	// Default: 0.08.
	Blend float64 `json:"blend" koanf:"blend"`

	// DecayRate is the exponential decay rate of manual velocity, per second.
	// Default: 4.
	DecayRate float64 `json:"decay_rate" koanf:"decay_rate"`

	// VelocityEpsilon snaps manual velocity to zero below this magnitude (px/s).
	// Default: 1.
	VelocityEpsilon float64 `json:"velocity_epsilon" koanf:"velocity_epsilon"`

	// Cooldown is how long autonomous motion stays paused after an interaction.
	// Default: 1s.
	Cooldown time.Duration `json:"cooldown" koanf:"cooldown"`

	// DragThreshold is the pointer travel in pixels before a drag starts.
	// Default: 6.
	DragThreshold float64 `json:"drag_threshold" koanf:"drag_threshold"`

	// WheelImpulse converts wheel delta pixels into manual velocity (px/s per px).
	// Default: 8.
	WheelImpulse float64 `json:"wheel_impulse" koanf:"wheel_impulse"`

	// ReleaseScale scales the drag release velocity into manual velocity.
	// Default: 1.
	ReleaseScale float64 `json:"release_scale" koanf:"release_scale"`

	// ReleaseCapMultiple caps manual velocity at this multiple of base speed.
	// Default: 6.
	ReleaseCapMultiple float64 `json:"release_cap_multiple" koanf:"release_cap_multiple"`

	// ReleaseCapFloor is the minimum manual velocity cap (px/s) so slow decks
	// still respond to flicks.
	// Default: 600.
	ReleaseCapFloor float64 `json:"release_cap_floor" koanf:"release_cap_floor"`

	// EndZoneHeight is the distance from the scroll limit where the end zone
	// begins, in pixels.
	// Default: 480.
	EndZoneHeight float64 `json:"end_zone_height" koanf:"end_zone_height"`

	// MaxFrameDelta caps the integration step after stalls.
	// Default: 100ms.
	MaxFrameDelta time.Duration `json:"max_frame_delta" koanf:"max_frame_delta"`
}

// CacheConfig contains rank result caching parameters.
type CacheConfig struct {
	// Enabled controls whether rank results are cached.
	// Default: true.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// MaxEntries is the maximum number of cached rankings.
	// Default: 512.
	MaxEntries int `json:"max_entries" koanf:"max_entries"`

	// TTL is the cache entry time-to-live.
	// Default: 5m.
	TTL time.Duration `json:"ttl" koanf:"ttl"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Ranking: RankingConfig{
			RecencyCategoryWeight:    3,
			RecencySubCategoryWeight: 2,
			RecencyTagWeight:         1,
			RecencyTagCap:            3,
			PreferredCategoryBoost:   4,
			TasteCategoryWeight:      0.45,
			TasteTagClamp:            4,
			MaxRecentlyViewed:        20,
		},
		Sponsored: SponsoredConfig{
			Enabled: true,
			Cadence: 6,
		},
		Diversity: DiversityConfig{
			Lambda: 1.0,
		},
		Deck: DeckConfig{
			RefillBatch:       2,
			BufferCards:       1,
			CycleShortCatalog: true,
			CardHeight:        320,
		},
		Motion: MotionConfig{
			ScrollDuration:     45 * time.Second,
			Blend:              0.08,
			DecayRate:          4,
			VelocityEpsilon:    1,
			Cooldown:           time.Second,
			DragThreshold:      6,
			WheelImpulse:       8,
			ReleaseScale:       1,
			ReleaseCapMultiple: 6,
			ReleaseCapFloor:    600,
			EndZoneHeight:      480,
			MaxFrameDelta:      100 * time.Millisecond,
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 512,
			TTL:        5 * time.Minute,
		},
		Breakpoints: DefaultBreakpoints(),
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	r := c.Ranking
	if r.RecencyCategoryWeight < 0 || r.RecencySubCategoryWeight < 0 || r.RecencyTagWeight < 0 {
		return fmt.Errorf("ranking recency weights must be non-negative, got %v/%v/%v",
			r.RecencyCategoryWeight, r.RecencySubCategoryWeight, r.RecencyTagWeight)
	}
	if r.RecencyTagCap < 0 {
		return fmt.Errorf("ranking.recency_tag_cap must be non-negative, got %v", r.RecencyTagCap)
	}
	if r.TasteTagClamp < 0 {
		return fmt.Errorf("ranking.taste_tag_clamp must be non-negative, got %v", r.TasteTagClamp)
	}
	if r.MaxRecentlyViewed < 1 {
		return fmt.Errorf("ranking.max_recently_viewed must be positive, got %d", r.MaxRecentlyViewed)
	}

	if c.Sponsored.Cadence < 2 {
		return fmt.Errorf("sponsored.cadence must be >= 2, got %d", c.Sponsored.Cadence)
	}

	if c.Diversity.Lambda < 0 || c.Diversity.Lambda > 1 {
		return fmt.Errorf("diversity.lambda must be in [0, 1], got %f", c.Diversity.Lambda)
	}

	if c.Deck.RefillBatch < 1 {
		return fmt.Errorf("deck.refill_batch must be positive, got %d", c.Deck.RefillBatch)
	}
	if c.Deck.BufferCards < 0 {
		return fmt.Errorf("deck.buffer_cards must be non-negative, got %d", c.Deck.BufferCards)
	}
	if c.Deck.CardHeight <= 0 {
		return fmt.Errorf("deck.card_height must be positive, got %v", c.Deck.CardHeight)
	}

	m := c.Motion
	if m.ScrollDuration <= 0 {
		return fmt.Errorf("motion.scroll_duration must be positive, got %v", m.ScrollDuration)
	}
	if m.Blend <= 0 || m.Blend > 1 {
		return fmt.Errorf("motion.blend must be in (0, 1], got %v", m.Blend)
	}
	if m.DecayRate < 0 {
		return fmt.Errorf("motion.decay_rate must be non-negative, got %v", m.DecayRate)
	}
	if m.Cooldown < 0 {
		return fmt.Errorf("motion.cooldown must be non-negative, got %v", m.Cooldown)
	}
	if m.DragThreshold < 0 {
		return fmt.Errorf("motion.drag_threshold must be non-negative, got %v", m.DragThreshold)
	}
	if m.ReleaseCapMultiple <= 0 {
		return fmt.Errorf("motion.release_cap_multiple must be positive, got %v", m.ReleaseCapMultiple)
	}
	if m.EndZoneHeight < 0 {
		return fmt.Errorf("motion.end_zone_height must be non-negative, got %v", m.EndZoneHeight)
	}
	if m.MaxFrameDelta <= 0 {
		return fmt.Errorf("motion.max_frame_delta must be positive, got %v", m.MaxFrameDelta)
	}

	if c.Cache.Enabled && c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache.max_entries must be positive when cache is enabled, got %d", c.Cache.MaxEntries)
	}

	if err := c.Breakpoints.Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Breakpoints = make(Breakpoints, len(c.Breakpoints))
	copy(out.Breakpoints, c.Breakpoints)
	return &out
}
