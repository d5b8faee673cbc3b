// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package deck

import (
	"fmt"
	"testing"

	"github.com/tomtom215/storefeed/internal/feed"
)

func catalog(n int) []feed.Product {
	out := make([]feed.Product, n)
	for i := range out {
		out[i] = feed.Product{ID: fmt.Sprintf("%d", i)}
	}
	return out
}

func ids(products []feed.Product) []string {
	out := make([]string, len(products))
	for i := range products {
		out[i] = products[i].ID
	}
	return out
}

func equalIDs(got []feed.Product, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i].ID != want[i] {
			return false
		}
	}
	return true
}

func TestBuildInitialDecks(t *testing.T) {
	t.Run("round robin with leftover pool", func(t *testing.T) {
		decks, pool := BuildInitialDecks(catalog(10), 3, 2, false)
		if len(decks) != 3 {
			t.Fatalf("len(decks) = %d, want 3", len(decks))
		}
		want := [][]string{{"0", "3"}, {"1", "4"}, {"2", "5"}}
		for c := range want {
			if !equalIDs(decks[c], want[c]...) {
				t.Errorf("deck[%d] = %v, want %v", c, ids(decks[c]), want[c])
			}
		}
		if !equalIDs(pool, "6", "7", "8", "9") {
			t.Errorf("pool = %v, want [6 7 8 9]", ids(pool))
		}
	})

	t.Run("zero columns", func(t *testing.T) {
		decks, pool := BuildInitialDecks(catalog(5), 0, 2, true)
		if len(decks) != 0 || len(pool) != 0 {
			t.Errorf("got %d decks and %d pool, want none", len(decks), len(pool))
		}
	})

	t.Run("empty list", func(t *testing.T) {
		decks, pool := BuildInitialDecks(nil, 3, 2, true)
		if len(decks) != 3 {
			t.Fatalf("len(decks) = %d, want 3", len(decks))
		}
		for c, d := range decks {
			if len(d) != 0 {
				t.Errorf("deck[%d] = %v, want empty", c, ids(d))
			}
		}
		if len(pool) != 0 {
			t.Errorf("pool = %v, want empty", ids(pool))
		}
	})

	t.Run("short catalog without cycling", func(t *testing.T) {
		decks, pool := BuildInitialDecks(catalog(2), 3, 2, false)
		if !equalIDs(decks[0], "0") || !equalIDs(decks[1], "1") || len(decks[2]) != 0 {
			t.Errorf("decks = %v %v %v", ids(decks[0]), ids(decks[1]), ids(decks[2]))
		}
		if len(pool) != 0 {
			t.Errorf("pool = %v, want empty", ids(pool))
		}
	})

	t.Run("short catalog cycles", func(t *testing.T) {
		decks, pool := BuildInitialDecks(catalog(2), 3, 2, true)
		want := [][]string{{"0", "1"}, {"1", "0"}, {"0", "1"}}
		for c := range want {
			if !equalIDs(decks[c], want[c]...) {
				t.Errorf("deck[%d] = %v, want %v", c, ids(decks[c]), want[c])
			}
		}
		if len(pool) != 0 {
			t.Errorf("pool = %v, want empty", ids(pool))
		}
	})

	t.Run("does not alias input", func(t *testing.T) {
		list := catalog(6)
		_, pool := BuildInitialDecks(list, 2, 1, false)
		pool[0].ID = "changed"
		if list[2].ID != "2" {
			t.Errorf("input modified through pool: %v", ids(list))
		}
	})
}

func TestAllocator_ScreenfulPlusBuffer(t *testing.T) {
	// 10 products, 3 columns, 2 visible cards + 1 buffer card per column
	a := NewAllocator(catalog(10), 3, Capacity{VisibleCards: 2, BufferCards: 1}, Options{})

	want := [][]string{{"0", "3", "6"}, {"1", "4", "7"}, {"2", "5", "8"}}
	for c := range want {
		if !equalIDs(a.Deck(c), want[c]...) {
			t.Errorf("deck[%d] = %v, want %v", c, ids(a.Deck(c)), want[c])
		}
	}
	if !equalIDs(a.RemainingPool(), "9") {
		t.Errorf("pool = %v, want [9]", ids(a.RemainingPool()))
	}

	if got := a.Deal(0, 2); got != 1 {
		t.Errorf("Deal(0, 2) = %d, want 1", got)
	}
	if !equalIDs(a.Deck(0), "0", "3", "6", "9") {
		t.Errorf("deck[0] = %v, want [0 3 6 9]", ids(a.Deck(0)))
	}
	if !a.Exhausted() {
		t.Error("Exhausted() = false, want true")
	}
	if got := a.Deal(1, 2); got != 0 {
		t.Errorf("Deal on empty pool = %d, want 0", got)
	}
}

func TestAllocator_Conservation(t *testing.T) {
	a := NewAllocator(catalog(37), 4, Capacity{VisibleCards: 3, BufferCards: 1}, Options{})
	total := a.TotalCapacity()
	if total != 37 {
		t.Fatalf("TotalCapacity() = %d, want 37", total)
	}

	requests := [][2]int{{0, 2}, {3, 2}, {1, 5}, {-1, 2}, {4, 2}, {2, 0}, {2, -3}, {0, 100}, {1, 2}}
	for i, r := range requests {
		a.Deal(r[0], r[1])
		if got := a.Dealt() + a.Remaining(); got != total {
			t.Fatalf("after request %d: dealt+remaining = %d, want %d", i, got, total)
		}
	}

	seen := make(map[string]bool, total)
	for _, d := range a.Decks() {
		for _, p := range d {
			if seen[p.ID] {
				t.Fatalf("product %s dealt twice", p.ID)
			}
			seen[p.ID] = true
		}
	}
}

func TestAllocator_OutOfRange(t *testing.T) {
	a := NewAllocator(catalog(10), 2, Capacity{VisibleCards: 1}, Options{})
	before := a.Remaining()

	for _, col := range []int{-1, 2, 99} {
		if got := a.Deal(col, 2); got != 0 {
			t.Errorf("Deal(%d, 2) = %d, want 0", col, got)
		}
	}
	if a.Remaining() != before {
		t.Errorf("Remaining() = %d, want %d", a.Remaining(), before)
	}
	if a.Deck(5) != nil || a.DeckLen(-1) != 0 {
		t.Error("out-of-range deck accessors returned data")
	}
}

func TestAllocator_Replay(t *testing.T) {
	a := NewAllocator(catalog(10), 3, Capacity{VisibleCards: 1}, Options{})
	initial := a.Decks()
	gen := a.Generation()

	a.Deal(0, 2)
	a.Deal(2, 2)
	a.Replay()

	if a.Generation() != gen+1 {
		t.Errorf("Generation() = %d, want %d", a.Generation(), gen+1)
	}
	got := a.Decks()
	for c := range initial {
		if !equalIDs(got[c], ids(initial[c])...) {
			t.Errorf("deck[%d] after replay = %v, want %v", c, ids(got[c]), ids(initial[c]))
		}
	}
	if a.Remaining() != 7 {
		t.Errorf("Remaining() after replay = %d, want 7", a.Remaining())
	}

	// the initial snapshot is not disturbed by deals after replay
	a.Deal(0, 3)
	a.Replay()
	if !equalIDs(a.Deck(0), ids(initial[0])...) {
		t.Errorf("deck[0] after second replay = %v, want %v", ids(a.Deck(0)), ids(initial[0]))
	}
}

func TestAllocator_Refill(t *testing.T) {
	a := NewAllocator(catalog(10), 2, Capacity{VisibleCards: 1}, Options{})
	stale := a.Generation()

	if got := a.Refill(RefillRequest{Generation: stale, Column: 0, Count: 2}); got != 2 {
		t.Errorf("current-generation Refill = %d, want 2", got)
	}

	a.Replay()
	if got := a.Refill(RefillRequest{Generation: stale, Column: 0, Count: 2}); got != 0 {
		t.Errorf("stale-generation Refill = %d, want 0", got)
	}

	a.Reset(catalog(4), 2, Capacity{VisibleCards: 1})
	if got := a.Refill(RefillRequest{Generation: stale + 1, Column: 1, Count: 2}); got != 0 {
		t.Errorf("refill from before Reset = %d, want 0", got)
	}
	if got := a.Refill(RefillRequest{Generation: a.Generation(), Column: 1, Count: 2}); got != 2 {
		t.Errorf("refill after Reset = %d, want 2", got)
	}
}

func TestAllocator_Degenerate(t *testing.T) {
	tests := []struct {
		name    string
		list    []feed.Product
		columns int
	}{
		{"empty list", nil, 3},
		{"zero columns", catalog(5), 0},
		{"negative columns", catalog(5), -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAllocator(tt.list, tt.columns, Capacity{VisibleCards: 2, BufferCards: 1}, Options{CycleShortCatalog: true})
			if a.Dealt() != 0 {
				t.Errorf("Dealt() = %d, want 0", a.Dealt())
			}
			if a.Remaining() != 0 {
				t.Errorf("Remaining() = %d, want 0", a.Remaining())
			}
			if !a.Exhausted() {
				t.Error("Exhausted() = false, want true")
			}
			if got := a.Deal(0, 2); got != 0 {
				t.Errorf("Deal(0, 2) = %d, want 0", got)
			}
		})
	}
}

func TestCapacity(t *testing.T) {
	tests := []struct {
		name     string
		viewport float64
		card     float64
		buffer   int
		want     Capacity
	}{
		{"fractional rounds up", 1000, 320, 1, Capacity{VisibleCards: 4, BufferCards: 1}},
		{"exact fit", 960, 320, 1, Capacity{VisibleCards: 3, BufferCards: 1}},
		{"unmeasured viewport", 0, 320, 1, Capacity{BufferCards: 1}},
		{"unmeasured card", 800, 0, 1, Capacity{BufferCards: 1}},
		{"negative buffer", 640, 320, -1, Capacity{VisibleCards: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CapacityFor(tt.viewport, tt.card, tt.buffer)
			if got != tt.want {
				t.Errorf("CapacityFor() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if got := (Capacity{VisibleCards: 2, BufferCards: 1}).PerColumn(); got != 3 {
		t.Errorf("PerColumn() = %d, want 3", got)
	}
	if got := (Capacity{VisibleCards: -5}).PerColumn(); got != 0 {
		t.Errorf("negative PerColumn() = %d, want 0", got)
	}
}

func TestKeyFor(t *testing.T) {
	list := catalog(6)
	base := KeyFor(list, 3, Capacity{VisibleCards: 2, BufferCards: 1})

	if KeyFor(list, 3, Capacity{VisibleCards: 3}) != base {
		t.Error("same per-column capacity produced a different key")
	}
	if KeyFor(list, 2, Capacity{VisibleCards: 2, BufferCards: 1}) == base {
		t.Error("column change kept the key")
	}
	if KeyFor(list, 3, Capacity{VisibleCards: 4}) == base {
		t.Error("capacity change kept the key")
	}
	if KeyFor(catalog(7), 3, Capacity{VisibleCards: 2, BufferCards: 1}) == base {
		t.Error("catalog change kept the key")
	}

	a := NewAllocator(list, 3, Capacity{VisibleCards: 2, BufferCards: 1}, Options{})
	if a.Key() != base {
		t.Errorf("Key() = %v, want %v", a.Key(), base)
	}
}
