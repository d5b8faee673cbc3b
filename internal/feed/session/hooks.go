// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package session

import (
	"time"

	"github.com/tomtom215/storefeed/internal/feed"
)

// Hooks receives session notifications. Calls are made while the session
// is locked, so implementations must not call back into the session.
type Hooks interface {
	OnDeckRefilled(column, dealt int)
	OnColumnEnterEndZone(column int)
	OnColumnComplete(column int)
	OnReplay(cycleToken uint64)
	OnEnded(cycleToken uint64)
}

// NopHooks ignores every notification.
type NopHooks struct{}

func (NopHooks) OnDeckRefilled(int, int)  {}
func (NopHooks) OnColumnEnterEndZone(int) {}
func (NopHooks) OnColumnComplete(int)     {}
func (NopHooks) OnReplay(uint64)          {}
func (NopHooks) OnEnded(uint64)           {}

// Publisher receives lifecycle events for the event bus. Publish must not
// block the frame loop.
type Publisher interface {
	Publish(event feed.LifecycleEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(feed.LifecycleEvent) {}

// coordinatorHooks forwards coordinator notifications to the session's
// hooks and publisher. It runs with the session mutex held.
type coordinatorHooks struct {
	s *Session
}

func (h coordinatorHooks) OnColumnEnterEndZone(column int) {
	h.s.emit(feed.LifecycleEndZone, column, h.s.coord.CycleToken(), 0)
	h.s.hooks.OnColumnEnterEndZone(column)
}

func (h coordinatorHooks) OnColumnComplete(column int) {
	h.s.emit(feed.LifecycleColumnComplete, column, h.s.coord.CycleToken(), 0)
	h.s.hooks.OnColumnComplete(column)
}

func (h coordinatorHooks) OnEnded(cycleToken uint64) {
	h.s.emit(feed.LifecycleEnded, -1, cycleToken, 0)
	h.s.hooks.OnEnded(cycleToken)
}

func (h coordinatorHooks) OnReplay(cycleToken uint64) {
	h.s.emit(feed.LifecycleReplay, -1, cycleToken, 0)
	h.s.hooks.OnReplay(cycleToken)
}

// emit publishes a lifecycle event. Column is -1 for feed-wide events.
func (s *Session) emit(kind feed.LifecycleKind, column int, cycleToken uint64, dealt int) {
	s.publisher.Publish(feed.LifecycleEvent{
		SessionID:  s.id,
		Kind:       kind,
		Column:     column,
		CycleToken: cycleToken,
		Dealt:      dealt,
		Timestamp:  s.clock().UTC().Truncate(time.Millisecond),
	})
}
