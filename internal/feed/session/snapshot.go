// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package session

import (
	"time"

	"github.com/tomtom215/storefeed/internal/feed/coordinator"
	"github.com/tomtom215/storefeed/internal/feed/motion"
)

// ColumnSnapshot is the read-only state of one column.
type ColumnSnapshot struct {
	Motion  motion.State   `json:"motion"`
	Metrics motion.Metrics `json:"metrics"`
	Hover   bool           `json:"hover"`
	// Cards are the product IDs on the column's deck, top to bottom.
	Cards []string `json:"cards"`
}

// Snapshot is the read-only state of a session.
type Snapshot struct {
	ID            string               `json:"id"`
	Feed          coordinator.Snapshot `json:"feed"`
	Generation    uint64               `json:"generation"`
	Layout        Layout               `json:"layout"`
	Sort          string               `json:"sort"`
	Personalize   bool                 `json:"personalize"`
	Ranked        int                  `json:"ranked"`
	Dealt         int                  `json:"dealt"`
	Remaining     int                  `json:"remaining"`
	TotalCapacity int                  `json:"total_capacity"`
	ModalOpen     bool                 `json:"modal_open"`
	AuxMenuOpen   bool                 `json:"aux_menu_open"`
	LastFrame     time.Duration        `json:"last_frame"`
	LastActive    time.Duration        `json:"last_active"`
	Columns       []ColumnSnapshot     `json:"columns"`
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:            s.id,
		Feed:          s.coord.Snapshot(),
		Generation:    s.alloc.Generation(),
		Layout:        s.layout,
		Sort:          s.opts.Sort.String(),
		Personalize:   s.opts.Personalize,
		Ranked:        len(s.ranked),
		Dealt:         s.alloc.Dealt(),
		Remaining:     s.alloc.Remaining(),
		TotalCapacity: s.alloc.TotalCapacity(),
		ModalOpen:     s.modalOpen,
		AuxMenuOpen:   s.auxMenuOpen,
		LastFrame:     s.lastFrame,
		LastActive:    s.lastActive,
		Columns:       make([]ColumnSnapshot, len(s.controllers)),
	}
	for c, ctl := range s.controllers {
		d := s.alloc.Deck(c)
		ids := make([]string, len(d))
		for i := range d {
			ids[i] = d[i].ID
		}
		snap.Columns[c] = ColumnSnapshot{
			Motion:  ctl.State(),
			Metrics: ctl.Metrics(),
			Hover:   s.hover[c],
			Cards:   ids,
		}
	}
	return snap
}
