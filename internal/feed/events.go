// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package feed

import "time"

// EventType classifies a column motion event.
type EventType int

const (
	// EventReachedEndZone fires the first frame a column's position enters
	// the end zone near its scroll limit.
	EventReachedEndZone EventType = iota
	// EventCompleted fires the first frame a column's position reaches its
	// scroll limit.
	EventCompleted
)

// String returns a human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EventReachedEndZone:
		return "reached_end_zone"
	case EventCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Event is emitted by a column controller during a tick.
type Event struct {
	Type   EventType `json:"type"`
	Column int       `json:"column"`
}

// LifecycleKind classifies feed lifecycle notifications published to the
// event bus.
type LifecycleKind string

const (
	LifecycleEndZone        LifecycleKind = "column_end_zone"
	LifecycleColumnComplete LifecycleKind = "column_complete"
	LifecycleRefill         LifecycleKind = "deck_refill"
	LifecycleEnded          LifecycleKind = "feed_ended"
	LifecycleReplay         LifecycleKind = "feed_replay"
	LifecycleReset          LifecycleKind = "feed_reset"
)

// LifecycleEvent describes a session-level transition.
type LifecycleEvent struct {
	SessionID  string        `json:"session_id"`
	Kind       LifecycleKind `json:"kind"`
	Column     int           `json:"column"`
	CycleToken uint64        `json:"cycle_token"`
	Dealt      int           `json:"dealt,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}
