// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

// Package session composes the feed engine for one viewer.
//
// A Session owns the ranked list, the deck allocator, one motion controller
// per column and the finite-feed coordinator. The frame clock calls Tick;
// HTTP handlers deliver input. Both paths serialize on the session mutex.
//
//	catalog + signals
//	      |
//	  rank -> rerank (diversity, sponsored)
//	      |
//	  allocator (decks + pool) <--- refill on end zone / completion
//	      |
//	  controllers (Tick) --events--> coordinator --> hooks + publisher
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/storefeed/internal/feed"
	"github.com/tomtom215/storefeed/internal/feed/coordinator"
	"github.com/tomtom215/storefeed/internal/feed/deck"
	"github.com/tomtom215/storefeed/internal/feed/motion"
	"github.com/tomtom215/storefeed/internal/feed/ranking"
	"github.com/tomtom215/storefeed/internal/metrics"
)

// warnInterval throttles repeated no-op refill warnings per session.
const warnInterval = 10 * time.Second

// ErrColumnOutOfRange is returned when input targets a column that does not
// exist in the current layout.
var ErrColumnOutOfRange = errors.New("column out of range")

// Ranker produces scored entries for a catalog. Both *ranking.Ranker and
// *ranking.Cached satisfy it.
type Ranker interface {
	Entries(products []feed.Product, signals feed.Signals, opts feed.RankOptions) []feed.RankedEntry
}

// recommendedOnly is implemented by rerankers that must not reorder an
// explicit sort.
type recommendedOnly interface {
	RecommendedOnly() bool
}

// Layout is the externally measured viewport of a session.
type Layout struct {
	ViewportWidth  int     `json:"viewport_width" validate:"gte=0"`
	ViewportHeight float64 `json:"viewport_height" validate:"gte=0"`
	// CardHeight overrides the configured default when positive.
	CardHeight float64 `json:"card_height" validate:"gte=0"`
	// TouchCapable disables hover pauses. Fixed for the session lifetime.
	TouchCapable bool `json:"touch_capable"`
}

// Params configures a new session.
type Params struct {
	ID        string
	Config    *feed.Config
	Ranker    Ranker
	Rerankers []feed.Reranker
	Catalog   []feed.Product
	Signals   feed.Signals
	Options   feed.RankOptions
	Layout    Layout
	Hooks     Hooks
	Publisher Publisher
	Logger    zerolog.Logger

	// Now is the session clock reading at creation.
	Now time.Duration
	// Clock stamps published events. Defaults to time.Now.
	Clock func() time.Time
}

// Session is one viewer's feed. It is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	id        string
	cfg       *feed.Config
	ranker    Ranker
	rerankers []feed.Reranker
	hooks     Hooks
	publisher Publisher
	logger    zerolog.Logger
	warn      *rate.Sometimes
	clock     func() time.Time

	catalog []feed.Product
	signals feed.Signals
	opts    feed.RankOptions
	layout  Layout
	ranked  []feed.Product

	alloc       *deck.Allocator
	coord       *coordinator.Coordinator
	controllers []*motion.Controller

	hover       []bool
	modalOpen   bool
	auxMenuOpen bool

	lastActive time.Duration
	lastFrame  time.Duration
}

// New ranks the catalog, deals the initial decks and starts the feed.
//
//nolint:gocritic // hugeParam: params copied once at construction
func New(p Params) *Session {
	cfg := p.Config
	if cfg == nil {
		cfg = feed.DefaultConfig()
	}
	ranker := p.Ranker
	if ranker == nil {
		ranker = ranking.NewRanker(cfg.Ranking)
	}
	hooks := p.Hooks
	if hooks == nil {
		hooks = NopHooks{}
	}
	publisher := p.Publisher
	if publisher == nil {
		publisher = nopPublisher{}
	}
	clock := p.Clock
	if clock == nil {
		clock = time.Now
	}

	s := &Session{
		id:         p.ID,
		cfg:        cfg,
		ranker:     ranker,
		rerankers:  p.Rerankers,
		hooks:      hooks,
		publisher:  publisher,
		logger:     p.Logger.With().Str("component", "feed-session").Str("session_id", p.ID).Logger(),
		warn:       &rate.Sometimes{First: 1, Interval: warnInterval},
		clock:      clock,
		catalog:    p.Catalog,
		signals:    p.Signals,
		opts:       p.Options,
		layout:     p.Layout,
		lastActive: p.Now,
	}

	s.rank()
	columns, capacity := s.geometry()
	s.alloc = deck.NewAllocator(s.ranked, columns, capacity, deck.Options{
		CycleShortCatalog: cfg.Deck.CycleShortCatalog,
	})
	s.coord = coordinator.New(s.alloc.Key(), columns, len(s.ranked) == 0, s.alloc, coordinatorHooks{s: s})
	s.buildControllers()
	s.announceReset()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// rank runs the ranker and rerankers over the catalog.
func (s *Session) rank() {
	start := time.Now()
	list := feed.Products(s.ranker.Entries(s.catalog, s.signals, s.opts))
	for _, r := range s.rerankers {
		if ro, ok := r.(recommendedOnly); ok && ro.RecommendedOnly() && s.opts.Sort != feed.SortRecommended {
			continue
		}
		list = r.Rerank(list)
	}
	s.ranked = list
	metrics.RecordRank(s.opts.Sort.String(), time.Since(start))
}

// geometry derives column count and capacity from the layout.
func (s *Session) geometry() (int, deck.Capacity) {
	columns := s.cfg.Breakpoints.ColumnsFor(s.layout.ViewportWidth)
	capacity := deck.CapacityFor(s.layout.ViewportHeight, s.cardHeight(), s.cfg.Deck.BufferCards)
	return columns, capacity
}

func (s *Session) cardHeight() float64 {
	if s.layout.CardHeight > 0 {
		return s.layout.CardHeight
	}
	return s.cfg.Deck.CardHeight
}

// metricsFor measures a column from its deck length.
func (s *Session) metricsFor(column int) motion.Metrics {
	return motion.Metrics{
		ContentHeight:  float64(s.alloc.DeckLen(column)) * s.cardHeight(),
		ViewportHeight: s.layout.ViewportHeight,
	}
}

func (s *Session) buildControllers() {
	columns := s.alloc.Columns()
	s.controllers = make([]*motion.Controller, columns)
	for c := 0; c < columns; c++ {
		s.controllers[c] = motion.NewController(s.cfg.Motion, c, s.metricsFor(c), s.layout.TouchCapable)
	}
	s.hover = make([]bool, columns)
}

// applyAllocation resets decks, coordinator and controllers when the reset
// key changed. It reports whether a reset happened.
func (s *Session) applyAllocation() bool {
	columns, capacity := s.geometry()
	key := deck.KeyFor(s.ranked, columns, capacity)
	if key == s.alloc.Key() {
		return false
	}
	s.alloc.Reset(s.ranked, columns, capacity)
	s.coord.Reset(key, columns, len(s.ranked) == 0)
	s.buildControllers()
	s.announceReset()
	return true
}

func (s *Session) announceReset() {
	token := s.coord.CycleToken()
	key := s.alloc.Key()
	s.logger.Debug().
		Str("reset_key", key.String()).
		Uint64("cycle_token", token).
		Int("ranked", len(s.ranked)).
		Msg("Feed allocation reset")
	s.emit(feed.LifecycleReset, -1, token, 0)
	if s.coord.Ended() {
		// degenerate feeds start ended without a completion message
		s.emit(feed.LifecycleEnded, -1, token, 0)
		s.hooks.OnEnded(token)
	}
}

// Tick advances every column by one frame and routes the raised events.
func (s *Session) Tick(now time.Duration) []feed.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastFrame = now
	token := s.coord.CycleToken()
	ended := s.coord.Ended()
	signals := motion.PauseSignals{
		ModalOpen:   s.modalOpen,
		AuxMenuOpen: s.auxMenuOpen,
		FeedEnded:   ended,
	}

	var out []feed.Event
	for c, ctl := range s.controllers {
		sig := signals
		sig.Hover = s.hover[c]
		events := ctl.Tick(motion.Frame{Now: now, Signals: sig, CycleToken: token})
		if ended {
			// an ended feed only advances clocks until replay or reset
			continue
		}
		for _, ev := range events {
			s.route(ev)
		}
		out = append(out, events...)
	}
	return out
}

func (s *Session) route(ev feed.Event) {
	switch ev.Type {
	case feed.EventReachedEndZone:
		// the end-of-feed overlay only starts once the pool is dry
		if s.deckApproachingEnd(ev.Column) == 0 {
			s.coord.ColumnEnteredEndZone(ev.Column)
		}
	case feed.EventCompleted:
		if s.deckExhausted(ev.Column) {
			return
		}
		s.coord.ColumnCompleted(ev.Column)
	}
}

// DeckApproachingEnd deals one refill batch onto column and returns how
// many cards were dealt.
func (s *Session) DeckApproachingEnd(column int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deckApproachingEnd(column)
}

func (s *Session) deckApproachingEnd(column int) int {
	return s.refill(deck.RefillRequest{
		Generation: s.alloc.Generation(),
		Column:     column,
		Count:      s.cfg.Deck.RefillBatch,
	})
}

// DeckExhausted tries a refill for a column that reached its limit. It
// reports whether cards were dealt; false means the column is complete.
func (s *Session) DeckExhausted(column int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deckExhausted(column)
}

func (s *Session) deckExhausted(column int) bool {
	return s.deckApproachingEnd(column) > 0
}

// Refill serves an explicit refill request. Requests from an older
// allocation generation, for unknown columns or after the feed ended deal
// nothing.
//
//nolint:gocritic // hugeParam: request is a small value type
func (s *Session) Refill(req deck.RefillRequest) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refill(req)
}

//nolint:gocritic // hugeParam: request is a small value type
func (s *Session) refill(req deck.RefillRequest) int {
	switch {
	case req.Column < 0 || req.Column >= len(s.controllers):
		s.ignoreRefill(req, "out_of_range")
		return 0
	case s.coord.Ended():
		s.ignoreRefill(req, "ended")
		return 0
	case req.Generation != s.alloc.Generation():
		s.ignoreRefill(req, "stale_generation")
		return 0
	}

	n := s.alloc.Refill(req)
	if n == 0 {
		metrics.RecordRefill(0, "exhausted")
		return 0
	}
	metrics.RecordRefill(n, "")

	s.controllers[req.Column].SetMetrics(s.metricsFor(req.Column))
	s.emit(feed.LifecycleRefill, req.Column, s.coord.CycleToken(), n)
	s.hooks.OnDeckRefilled(req.Column, n)
	return n
}

//nolint:gocritic // hugeParam: request is a small value type
func (s *Session) ignoreRefill(req deck.RefillRequest, reason string) {
	metrics.RecordRefill(0, reason)
	s.warn.Do(func() {
		s.logger.Warn().
			Int("column", req.Column).
			Uint64("generation", req.Generation).
			Uint64("current_generation", s.alloc.Generation()).
			Str("reason", reason).
			Msg("Refill request ignored")
	})
}

// withController runs fn on a column's controller under the session lock.
func (s *Session) withController(column int, now time.Duration, fn func(*motion.Controller)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now
	if column < 0 || column >= len(s.controllers) {
		return fmt.Errorf("%w: %d of %d", ErrColumnOutOfRange, column, len(s.controllers))
	}
	fn(s.controllers[column])
	return nil
}

// Wheel applies a wheel nudge to column.
func (s *Session) Wheel(column int, deltaY float64, now time.Duration) error {
	return s.withController(column, now, func(c *motion.Controller) { c.Wheel(deltaY, now) })
}

// PointerDown starts a potential drag on column.
func (s *Session) PointerDown(column int, y float64, now time.Duration) error {
	return s.withController(column, now, func(c *motion.Controller) { c.PointerDown(y, now) })
}

// PointerMove follows an in-progress drag on column.
func (s *Session) PointerMove(column int, y float64, now time.Duration) error {
	return s.withController(column, now, func(c *motion.Controller) { c.PointerMove(y, now) })
}

// PointerUp ends a drag on column, converting release velocity into momentum.
func (s *Session) PointerUp(column int, now time.Duration) error {
	return s.withController(column, now, func(c *motion.Controller) { c.PointerUp(now) })
}

// PointerCancel abandons a drag on column.
func (s *Session) PointerCancel(column int, now time.Duration) error {
	return s.withController(column, now, func(c *motion.Controller) { c.PointerCancel(now) })
}

// SetHover sets the hover pause signal of column.
func (s *Session) SetHover(column int, hover bool, now time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now
	if column < 0 || column >= len(s.hover) {
		return fmt.Errorf("%w: %d of %d", ErrColumnOutOfRange, column, len(s.hover))
	}
	s.hover[column] = hover
	return nil
}

// SetModalOpen pauses every column while a product modal is open.
func (s *Session) SetModalOpen(open bool, now time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now
	s.modalOpen = open
}

// SetAuxMenuOpen pauses every column while an auxiliary menu is open.
func (s *Session) SetAuxMenuOpen(open bool, now time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now
	s.auxMenuOpen = open
}

// Resize applies a new measured layout. A changed column count or capacity
// rebuilds the allocation; otherwise controllers reflow in place. It
// reports whether the feed was reset.
//
//nolint:gocritic // hugeParam: layout is a small value type
func (s *Session) Resize(layout Layout, now time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now

	layout.TouchCapable = s.layout.TouchCapable
	s.layout = layout
	if s.applyAllocation() {
		return true
	}
	for c, ctl := range s.controllers {
		ctl.Reflow(s.metricsFor(c))
	}
	return false
}

// UpdateCatalog re-ranks a new catalog. It reports whether the feed was
// reset; an identical ranked list leaves the feed untouched.
func (s *Session) UpdateCatalog(products []feed.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = products
	s.rank()
	return s.applyAllocation()
}

// UpdateSignals re-ranks with new personalization signals or options.
//
//nolint:gocritic // hugeParam: signals passed by value to mirror Ranker.Entries
func (s *Session) UpdateSignals(signals feed.Signals, opts feed.RankOptions, now time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now
	s.signals = signals
	s.opts = opts
	s.rank()
	return s.applyAllocation()
}

// Replay restarts the feed from its initial decks and returns the new cycle
// token. Allowed while scrolling.
func (s *Session) Replay(now time.Duration) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now

	token := s.coord.Replay()
	for c, ctl := range s.controllers {
		ctl.Reset()
		ctl.SetMetrics(s.metricsFor(c))
	}
	s.logger.Debug().Uint64("cycle_token", token).Msg("Feed replayed")
	return token
}

// Ranked returns a copy of the current ranked list.
func (s *Session) Ranked() []feed.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]feed.Product, len(s.ranked))
	copy(out, s.ranked)
	return out
}

// Ended reports whether every column has completed.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coord.Ended()
}

// LastActive returns the session clock reading of the last input.
func (s *Session) LastActive() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
