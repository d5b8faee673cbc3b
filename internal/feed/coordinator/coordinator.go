// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

// Package coordinator implements the finite-feed state machine shared by all
// columns of a session.
//
// States:
//
//	scrolling --(every column completed)--> ended
//	ended     --(Replay)------------------> scrolling
//	any       --(Reset with new key)------> scrolling | ended
//
// Columns report completion as messages; the coordinator owns the
// completion set and the monotonically increasing cycle token. Replay and
// Reset bump the token, which every column controller observes on its next
// tick and resets itself.
package coordinator

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tomtom215/storefeed/internal/feed"
)

// State is the feed lifecycle state.
type State int

const (
	// StateScrolling means at least one column still has cards to show.
	StateScrolling State = iota
	// StateEnded means every column has completed.
	StateEnded
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateScrolling:
		return "scrolling"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "scrolling":
		*s = StateScrolling
	case "ended":
		*s = StateEnded
	default:
		return fmt.Errorf("unknown feed state %q", text)
	}
	return nil
}

// DeckReplayer rebuilds decks from their initial allocation.
type DeckReplayer interface {
	Replay()
}

// Hooks receives coordinator notifications. Calls are made after the
// coordinator lock is released.
type Hooks interface {
	OnColumnEnterEndZone(column int)
	OnColumnComplete(column int)
	OnEnded(cycleToken uint64)
	OnReplay(cycleToken uint64)
}

// NopHooks ignores every notification.
type NopHooks struct{}

func (NopHooks) OnColumnEnterEndZone(int) {}
func (NopHooks) OnColumnComplete(int)     {}
func (NopHooks) OnEnded(uint64)           {}
func (NopHooks) OnReplay(uint64)          {}

// Snapshot is a read-only view of the coordinator.
type Snapshot struct {
	State          State         `json:"state"`
	CycleToken     uint64        `json:"cycle_token"`
	Columns        int           `json:"columns"`
	Completed      []int         `json:"completed"`
	ApproachingEnd bool          `json:"approaching_end"`
	ResetKey       feed.ResetKey `json:"reset_key"`
}

// Coordinator tracks column completion for one session.
// It is safe for concurrent use.
type Coordinator struct {
	mu sync.Mutex

	state          State
	cycleToken     uint64
	columns        int
	empty          bool
	completed      map[int]struct{}
	approachingEnd bool
	key            feed.ResetKey

	replayer DeckReplayer
	hooks    Hooks
}

// New creates a coordinator for columns columns. An empty ranked list or
// zero columns start the feed already ended.
func New(key feed.ResetKey, columns int, empty bool, replayer DeckReplayer, hooks Hooks) *Coordinator {
	if hooks == nil {
		hooks = NopHooks{}
	}
	c := &Coordinator{
		cycleToken: 1,
		replayer:   replayer,
		hooks:      hooks,
	}
	c.apply(key, columns, empty)
	return c
}

// apply installs a new allocation. Must be called with c.mu held or before
// c is shared.
func (c *Coordinator) apply(key feed.ResetKey, columns int, empty bool) {
	if columns < 0 {
		columns = 0
	}
	c.key = key
	c.columns = columns
	c.empty = empty
	c.completed = make(map[int]struct{}, columns)
	c.approachingEnd = false
	c.state = StateScrolling
	if c.degenerate() {
		c.state = StateEnded
	}
}

func (c *Coordinator) degenerate() bool {
	return c.empty || c.columns == 0
}

// ColumnCompleted records that a column exhausted its deck. It returns true
// when this message moved the feed to ended. Duplicate or out-of-range
// reports and reports while ended are ignored.
func (c *Coordinator) ColumnCompleted(column int) bool {
	c.mu.Lock()
	if c.state == StateEnded || column < 0 || column >= c.columns {
		c.mu.Unlock()
		return false
	}
	if _, dup := c.completed[column]; dup {
		c.mu.Unlock()
		return false
	}
	c.completed[column] = struct{}{}
	ended := len(c.completed) == c.columns
	if ended {
		c.state = StateEnded
	}
	token := c.cycleToken
	c.mu.Unlock()

	c.hooks.OnColumnComplete(column)
	if ended {
		c.hooks.OnEnded(token)
	}
	return ended
}

// ColumnEnteredEndZone records that a column is close to its end. It only
// sets the cosmetic approaching-end flag.
func (c *Coordinator) ColumnEnteredEndZone(column int) {
	c.mu.Lock()
	if column < 0 || column >= c.columns {
		c.mu.Unlock()
		return
	}
	c.approachingEnd = true
	c.mu.Unlock()

	c.hooks.OnColumnEnterEndZone(column)
}

// Replay restarts the feed: the cycle token advances, completions clear,
// decks are rebuilt from their initial allocation and the state returns to
// scrolling. Replay while scrolling is allowed and forces a restart. It
// returns the new cycle token.
func (c *Coordinator) Replay() uint64 {
	c.mu.Lock()
	c.cycleToken++
	c.completed = make(map[int]struct{}, c.columns)
	c.approachingEnd = false
	c.state = StateScrolling
	if c.degenerate() {
		c.state = StateEnded
	}
	token := c.cycleToken
	replayer := c.replayer
	c.mu.Unlock()

	if replayer != nil {
		replayer.Replay()
	}
	c.hooks.OnReplay(token)
	return token
}

// Reset installs a new allocation after the catalog, filters or column
// count changed. The cycle token advances. It returns the new token.
func (c *Coordinator) Reset(key feed.ResetKey, columns int, empty bool) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cycleToken++
	c.apply(key, columns, empty)
	return c.cycleToken
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Ended reports whether the feed has ended.
func (c *Coordinator) Ended() bool {
	return c.State() == StateEnded
}

// CycleToken returns the current cycle token.
func (c *Coordinator) CycleToken() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cycleToken
}

// IsCompleted reports whether a column has completed in this cycle.
func (c *Coordinator) IsCompleted(column int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.completed[column]
	return ok
}

// Snapshot returns a copy of the coordinator state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	completed := make([]int, 0, len(c.completed))
	for col := range c.completed {
		completed = append(completed, col)
	}
	sort.Ints(completed)

	return Snapshot{
		State:          c.state,
		CycleToken:     c.cycleToken,
		Columns:        c.columns,
		Completed:      completed,
		ApproachingEnd: c.approachingEnd,
		ResetKey:       c.key,
	}
}
