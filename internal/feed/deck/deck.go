// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

// Package deck allocates a ranked product list into parallel column decks.
//
// The initial deal is round-robin: column c receives items c, c+N, c+2N, ...
// up to its per-column capacity. Everything left over forms a FIFO pool from
// which columns are refilled on demand as they approach their end. Every
// product is placed at most once, so
//
//	sum(len(deck_i)) + len(pool) == TotalCapacity()
//
// holds across every Deal, Refill and Replay.
package deck

import (
	"math"

	"github.com/tomtom215/storefeed/internal/feed"
)

// Capacity describes how many cards a column holds initially.
type Capacity struct {
	// VisibleCards is how many cards fit in one screenful.
	VisibleCards int `json:"visible_cards"`

	// BufferCards is dealt on top of the visible cards so the next card is
	// ready before it scrolls into view.
	BufferCards int `json:"buffer_cards"`
}

// PerColumn returns the initial deal size per column.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (c Capacity) PerColumn() int {
	n := c.VisibleCards + c.BufferCards
	if n < 0 {
		return 0
	}
	return n
}

// CapacityFor derives a capacity from externally measured layout: the number
// of cards of cardHeight that fit in viewportHeight, rounded up, plus the
// buffer. Unmeasured layouts (non-positive sizes) yield zero visible cards.
func CapacityFor(viewportHeight, cardHeight float64, buffer int) Capacity {
	if buffer < 0 {
		buffer = 0
	}
	if viewportHeight <= 0 || cardHeight <= 0 {
		return Capacity{BufferCards: buffer}
	}
	return Capacity{
		VisibleCards: int(math.Ceil(viewportHeight / cardHeight)),
		BufferCards:  buffer,
	}
}

// Options tunes the initial deal.
type Options struct {
	// CycleShortCatalog repeats the list to fill the initial decks when it is
	// shorter than columns * per-column capacity. This is the only way a
	// product can appear more than once.
	CycleShortCatalog bool
}

// RefillRequest asks for cards on behalf of a column. Requests stamped with
// a generation other than the allocator's current one are dropped.
type RefillRequest struct {
	Generation uint64
	Column     int
	Count      int
}

// BuildInitialDecks deals list round-robin into columns decks of perColumn
// cards each and returns the decks together with the remaining pool.
// Zero columns or an empty list yield empty decks and an empty pool.
func BuildInitialDecks(list []feed.Product, columns, perColumn int, cycle bool) (decks [][]feed.Product, pool []feed.Product) {
	if columns <= 0 {
		return [][]feed.Product{}, []feed.Product{}
	}
	decks = make([][]feed.Product, columns)
	for c := range decks {
		decks[c] = []feed.Product{}
	}
	if len(list) == 0 || perColumn < 0 {
		return decks, []feed.Product{}
	}

	target := columns * perColumn
	if cycle && len(list) < target {
		for k := 0; k < target; k++ {
			decks[k%columns] = append(decks[k%columns], list[k%len(list)])
		}
		return decks, []feed.Product{}
	}

	dealt := target
	if dealt > len(list) {
		dealt = len(list)
	}
	for k := 0; k < dealt; k++ {
		decks[k%columns] = append(decks[k%columns], list[k])
	}

	pool = make([]feed.Product, len(list)-dealt)
	copy(pool, list[dealt:])
	return decks, pool
}

// Allocator owns the column decks and the refill pool of one session.
// It is not safe for concurrent use; the session serializes access.
type Allocator struct {
	columns  int
	capacity Capacity
	opts     Options
	key      feed.ResetKey

	initial     [][]feed.Product
	initialPool []feed.Product

	decks [][]feed.Product
	pool  []feed.Product

	generation uint64
	total      int
}

// NewAllocator builds decks for a ranked list.
func NewAllocator(list []feed.Product, columns int, capacity Capacity, opts Options) *Allocator {
	a := &Allocator{opts: opts}
	a.Reset(list, columns, capacity)
	return a
}

// KeyFor returns the reset key an allocation of list would carry.
func KeyFor(list []feed.Product, columns int, capacity Capacity) feed.ResetKey {
	return feed.ResetKey{
		CatalogID: feed.Fingerprint(list),
		Columns:   columns,
		Capacity:  capacity.PerColumn(),
	}
}

// Reset discards the current allocation and deals list afresh. The
// generation advances, invalidating outstanding refill requests.
func (a *Allocator) Reset(list []feed.Product, columns int, capacity Capacity) {
	if columns < 0 {
		columns = 0
	}
	a.columns = columns
	a.capacity = capacity
	a.key = KeyFor(list, columns, capacity)
	a.initial, a.initialPool = BuildInitialDecks(list, columns, capacity.PerColumn(), a.opts.CycleShortCatalog)

	a.total = len(a.initialPool)
	for _, d := range a.initial {
		a.total += len(d)
	}
	a.restore()
}

// Replay restores the initial allocation. The generation advances.
func (a *Allocator) Replay() {
	a.restore()
}

func (a *Allocator) restore() {
	a.decks = make([][]feed.Product, len(a.initial))
	for c := range a.initial {
		a.decks[c] = cloneProducts(a.initial[c])
	}
	a.pool = cloneProducts(a.initialPool)
	a.generation++
}

// Deal moves up to count cards from the front of the pool onto column's
// deck and returns how many were dealt. Out-of-range columns, non-positive
// counts and an empty pool deal nothing.
func (a *Allocator) Deal(column, count int) int {
	if column < 0 || column >= a.columns || count <= 0 {
		return 0
	}
	n := count
	if n > len(a.pool) {
		n = len(a.pool)
	}
	if n == 0 {
		return 0
	}
	a.decks[column] = append(a.decks[column], a.pool[:n]...)
	a.pool = a.pool[n:]
	return n
}

// Refill deals for a request if it belongs to the current generation.
func (a *Allocator) Refill(req RefillRequest) int {
	if req.Generation != a.generation {
		return 0
	}
	return a.Deal(req.Column, req.Count)
}

// Generation returns the current allocation generation.
func (a *Allocator) Generation() uint64 {
	return a.generation
}

// Key returns the reset key of the current allocation.
func (a *Allocator) Key() feed.ResetKey {
	return a.key
}

// Columns returns the number of decks.
func (a *Allocator) Columns() int {
	return a.columns
}

// Capacity returns the capacity the decks were built with.
func (a *Allocator) Capacity() Capacity {
	return a.capacity
}

// DeckLen returns the number of cards in a column's deck.
func (a *Allocator) DeckLen(column int) int {
	if column < 0 || column >= len(a.decks) {
		return 0
	}
	return len(a.decks[column])
}

// Deck returns a copy of a column's deck.
func (a *Allocator) Deck(column int) []feed.Product {
	if column < 0 || column >= len(a.decks) {
		return nil
	}
	return cloneProducts(a.decks[column])
}

// Decks returns a copy of every deck.
func (a *Allocator) Decks() [][]feed.Product {
	out := make([][]feed.Product, len(a.decks))
	for c := range a.decks {
		out[c] = cloneProducts(a.decks[c])
	}
	return out
}

// Remaining returns the number of cards left in the pool.
func (a *Allocator) Remaining() int {
	return len(a.pool)
}

// RemainingPool returns a copy of the pool in deal order.
func (a *Allocator) RemainingPool() []feed.Product {
	return cloneProducts(a.pool)
}

// Exhausted reports whether the pool is empty.
func (a *Allocator) Exhausted() bool {
	return len(a.pool) == 0
}

// TotalCapacity returns the number of cards in the allocation, dealt or not.
func (a *Allocator) TotalCapacity() int {
	return a.total
}

// Dealt returns the number of cards currently in decks.
func (a *Allocator) Dealt() int {
	n := 0
	for _, d := range a.decks {
		n += len(d)
	}
	return n
}

func cloneProducts(in []feed.Product) []feed.Product {
	out := make([]feed.Product, len(in))
	copy(out, in)
	return out
}
