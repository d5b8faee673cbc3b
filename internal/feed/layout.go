// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package feed

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Breakpoint maps a minimum viewport width to a column count.
type Breakpoint struct {
	MinWidth int `json:"min_width" koanf:"min_width"`
	Columns  int `json:"columns" koanf:"columns"`
}

// Breakpoints is the viewport width to column count policy table.
type Breakpoints []Breakpoint

// DefaultBreakpoints returns the stock responsive layout.
func DefaultBreakpoints() Breakpoints {
	return Breakpoints{
		{MinWidth: 0, Columns: 1},
		{MinWidth: 600, Columns: 2},
		{MinWidth: 900, Columns: 3},
		{MinWidth: 1200, Columns: 4},
		{MinWidth: 1600, Columns: 5},
	}
}

// ColumnsFor returns the column count for a viewport width. Widths narrower
// than every breakpoint use the narrowest one. A non-positive width or an
// empty table yields zero columns.
func (b Breakpoints) ColumnsFor(width int) int {
	if width <= 0 || len(b) == 0 {
		return 0
	}
	sorted := make(Breakpoints, len(b))
	copy(sorted, b)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinWidth < sorted[j].MinWidth })

	cols := sorted[0].Columns
	for _, bp := range sorted {
		if width >= bp.MinWidth {
			cols = bp.Columns
		}
	}
	return cols
}

// Validate checks that every breakpoint is usable.
func (b Breakpoints) Validate() error {
	if len(b) == 0 {
		return fmt.Errorf("breakpoints must not be empty")
	}
	seen := make(map[int]struct{}, len(b))
	for i, bp := range b {
		if bp.MinWidth < 0 {
			return fmt.Errorf("breakpoints[%d].min_width must be non-negative, got %d", i, bp.MinWidth)
		}
		if bp.Columns < 1 {
			return fmt.Errorf("breakpoints[%d].columns must be positive, got %d", i, bp.Columns)
		}
		if _, dup := seen[bp.MinWidth]; dup {
			return fmt.Errorf("breakpoints[%d].min_width %d is duplicated", i, bp.MinWidth)
		}
		seen[bp.MinWidth] = struct{}{}
	}
	return nil
}

// ResetKey identifies a deck allocation. Any change to the ranked catalog,
// the column count or the per-column capacity invalidates every deck,
// controller and completion derived from the previous key.
type ResetKey struct {
	CatalogID string `json:"catalog_id"`
	Columns   int    `json:"columns"`
	Capacity  int    `json:"capacity"`
}

// String renders the key for logs and metrics labels.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (k ResetKey) String() string {
	return fmt.Sprintf("%s/%d/%d", k.CatalogID, k.Columns, k.Capacity)
}

// Fingerprint returns a stable identity for an ordered product list. It
// covers every product field, so a refresh that changes a price, a tag or
// the sponsored flag yields a new fingerprint even when the IDs and their
// order are unchanged.
func Fingerprint(products []Product) string {
	d := xxhash.New()
	var num [8]byte
	writeString := func(v string) {
		_, _ = d.WriteString(v)
		_, _ = d.Write([]byte{0})
	}
	writeUint := func(v uint64) {
		binary.LittleEndian.PutUint64(num[:], v)
		_, _ = d.Write(num[:])
	}

	for i := range products {
		p := &products[i]
		writeString(p.ID)
		writeString(p.Title)
		writeString(p.Category)
		writeString(p.SubCategory)
		writeUint(uint64(len(p.Tags)))
		for _, tag := range p.Tags {
			writeString(tag)
		}
		if p.Sponsored {
			writeUint(1)
		} else {
			writeUint(0)
		}
		writeUint(math.Float64bits(p.Price))
		writeUint(math.Float64bits(p.Rating))
		writeUint(uint64(p.CreatedAt.UnixNano()))
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
