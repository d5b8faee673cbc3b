// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package coordinator

import (
	"sync"
	"testing"

	"github.com/tomtom215/storefeed/internal/feed"
)

type recordingHooks struct {
	mu        sync.Mutex
	endZones  []int
	completes []int
	ended     []uint64
	replays   []uint64
}

func (h *recordingHooks) OnColumnEnterEndZone(col int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.endZones = append(h.endZones, col)
}

func (h *recordingHooks) OnColumnComplete(col int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completes = append(h.completes, col)
}

func (h *recordingHooks) OnEnded(token uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ended = append(h.ended, token)
}

func (h *recordingHooks) OnReplay(token uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.replays = append(h.replays, token)
}

type countingReplayer struct{ calls int }

func (r *countingReplayer) Replay() { r.calls++ }

var testKey = feed.ResetKey{CatalogID: "cat", Columns: 3, Capacity: 3}

func TestState_String(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateScrolling, "scrolling"},
		{StateEnded, "ended"},
		{State(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCoordinator_EndsWhenAllColumnsComplete(t *testing.T) {
	hooks := &recordingHooks{}
	c := New(testKey, 3, false, nil, hooks)

	if c.State() != StateScrolling {
		t.Fatalf("initial State() = %v, want scrolling", c.State())
	}

	if c.ColumnCompleted(0) {
		t.Error("ColumnCompleted(0) ended the feed early")
	}
	if c.ColumnCompleted(0) {
		t.Error("duplicate ColumnCompleted(0) ended the feed")
	}
	if c.ColumnCompleted(2) {
		t.Error("ColumnCompleted(2) ended the feed early")
	}
	if c.State() != StateScrolling {
		t.Errorf("State() = %v with one column left, want scrolling", c.State())
	}
	if !c.ColumnCompleted(1) {
		t.Error("ColumnCompleted(1) did not end the feed")
	}
	if c.State() != StateEnded {
		t.Errorf("State() = %v, want ended", c.State())
	}

	if len(hooks.completes) != 3 {
		t.Errorf("OnColumnComplete calls = %v, want 3 distinct columns", hooks.completes)
	}
	if len(hooks.ended) != 1 || hooks.ended[0] != c.CycleToken() {
		t.Errorf("OnEnded calls = %v, want one with token %d", hooks.ended, c.CycleToken())
	}
}

func TestCoordinator_IgnoresInvalidReports(t *testing.T) {
	c := New(testKey, 2, false, nil, nil)

	for _, col := range []int{-1, 2, 100} {
		if c.ColumnCompleted(col) {
			t.Errorf("ColumnCompleted(%d) ended the feed", col)
		}
	}
	if snap := c.Snapshot(); len(snap.Completed) != 0 {
		t.Errorf("Completed = %v, want empty", snap.Completed)
	}

	c.ColumnCompleted(0)
	c.ColumnCompleted(1)
	if c.ColumnCompleted(0) {
		t.Error("report while ended returned true")
	}
}

func TestCoordinator_Degenerate(t *testing.T) {
	tests := []struct {
		name    string
		columns int
		empty   bool
	}{
		{"empty list", 3, true},
		{"zero columns", 0, false},
		{"negative columns", -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(testKey, tt.columns, tt.empty, nil, nil)
			if c.State() != StateEnded {
				t.Errorf("State() = %v, want ended", c.State())
			}
			c.Replay()
			if c.State() != StateEnded {
				t.Errorf("State() after replay = %v, want ended", c.State())
			}
		})
	}
}

func TestCoordinator_Replay(t *testing.T) {
	hooks := &recordingHooks{}
	replayer := &countingReplayer{}
	c := New(testKey, 2, false, replayer, hooks)
	before := c.CycleToken()

	c.ColumnEnteredEndZone(0)
	c.ColumnCompleted(0)
	c.ColumnCompleted(1)

	token := c.Replay()

	if token != before+1 || c.CycleToken() != token {
		t.Errorf("CycleToken() = %d (returned %d), want %d", c.CycleToken(), token, before+1)
	}
	if c.State() != StateScrolling {
		t.Errorf("State() = %v, want scrolling", c.State())
	}
	snap := c.Snapshot()
	if len(snap.Completed) != 0 {
		t.Errorf("Completed = %v after replay, want empty", snap.Completed)
	}
	if snap.ApproachingEnd {
		t.Error("ApproachingEnd = true after replay")
	}
	if replayer.calls != 1 {
		t.Errorf("deck replays = %d, want 1", replayer.calls)
	}
	if len(hooks.replays) != 1 || hooks.replays[0] != token {
		t.Errorf("OnReplay calls = %v, want [%d]", hooks.replays, token)
	}

	// the next cycle ends again
	c.ColumnCompleted(1)
	if !c.ColumnCompleted(0) {
		t.Error("second cycle did not end")
	}
}

func TestCoordinator_ReplayWhileScrolling(t *testing.T) {
	replayer := &countingReplayer{}
	c := New(testKey, 3, false, replayer, nil)
	c.ColumnCompleted(1)

	c.Replay()

	if c.IsCompleted(1) {
		t.Error("completion survived a forced replay")
	}
	if replayer.calls != 1 {
		t.Errorf("deck replays = %d, want 1", replayer.calls)
	}
}

func TestCoordinator_CycleTokenMonotonic(t *testing.T) {
	c := New(testKey, 1, false, nil, nil)
	last := c.CycleToken()
	for i := 0; i < 5; i++ {
		var next uint64
		if i%2 == 0 {
			next = c.Replay()
		} else {
			next = c.Reset(testKey, 2, false)
		}
		if next <= last {
			t.Fatalf("token went from %d to %d", last, next)
		}
		last = next
	}
}

func TestCoordinator_Reset(t *testing.T) {
	c := New(testKey, 2, false, nil, nil)
	c.ColumnCompleted(0)
	c.ColumnCompleted(1)

	newKey := feed.ResetKey{CatalogID: "other", Columns: 4, Capacity: 2}
	c.Reset(newKey, 4, false)

	snap := c.Snapshot()
	if snap.State != StateScrolling {
		t.Errorf("State = %v, want scrolling", snap.State)
	}
	if snap.Columns != 4 || snap.ResetKey != newKey {
		t.Errorf("Columns = %d, ResetKey = %v; want 4, %v", snap.Columns, snap.ResetKey, newKey)
	}
	if len(snap.Completed) != 0 {
		t.Errorf("Completed = %v, want empty", snap.Completed)
	}

	c.Reset(newKey, 4, true)
	if c.State() != StateEnded {
		t.Errorf("State() after reset to empty list = %v, want ended", c.State())
	}
}

func TestCoordinator_EndZone(t *testing.T) {
	hooks := &recordingHooks{}
	c := New(testKey, 2, false, nil, hooks)

	c.ColumnEnteredEndZone(5)
	if c.Snapshot().ApproachingEnd {
		t.Error("out-of-range end zone set the flag")
	}

	c.ColumnEnteredEndZone(1)
	if !c.Snapshot().ApproachingEnd {
		t.Error("ApproachingEnd = false after end zone report")
	}
	if c.State() != StateScrolling {
		t.Errorf("end zone changed state to %v", c.State())
	}
	if len(hooks.endZones) != 1 || hooks.endZones[0] != 1 {
		t.Errorf("OnColumnEnterEndZone calls = %v, want [1]", hooks.endZones)
	}
}

func TestCoordinator_ConcurrentCompletion(t *testing.T) {
	const columns = 64
	hooks := &recordingHooks{}
	c := New(testKey, columns, false, nil, hooks)

	var wg sync.WaitGroup
	for col := 0; col < columns; col++ {
		for dup := 0; dup < 3; dup++ {
			wg.Add(1)
			go func(col int) {
				defer wg.Done()
				c.ColumnCompleted(col)
			}(col)
		}
	}
	wg.Wait()

	if c.State() != StateEnded {
		t.Errorf("State() = %v, want ended", c.State())
	}
	if len(hooks.ended) != 1 {
		t.Errorf("OnEnded calls = %d, want exactly 1", len(hooks.ended))
	}
	if len(hooks.completes) != columns {
		t.Errorf("OnColumnComplete calls = %d, want %d", len(hooks.completes), columns)
	}
}

func TestState_TextRoundTrip(t *testing.T) {
	for _, want := range []State{StateScrolling, StateEnded} {
		text, _ := want.MarshalText()
		var got State
		if err := got.UnmarshalText(text); err != nil || got != want {
			t.Errorf("UnmarshalText(%q) = %v, %v; want %v", text, got, err, want)
		}
	}
	var s State
	if err := s.UnmarshalText([]byte("paused")); err == nil {
		t.Error("UnmarshalText(paused) succeeded, want error")
	}
}
