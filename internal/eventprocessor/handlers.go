// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package eventprocessor

import (
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/storefeed/internal/feed"
	"github.com/tomtom215/storefeed/internal/metrics"
)

// MetricsHandler counts lifecycle events by kind.
type MetricsHandler struct {
	logger watermill.LoggerAdapter
}

// NewMetricsHandler creates a metrics handler.
func NewMetricsHandler(logger watermill.LoggerAdapter) *MetricsHandler {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &MetricsHandler{logger: logger.With(watermill.LogFields{"handler": "lifecycle-metrics"})}
}

// Handle implements message.NoPublishHandlerFunc. Undecodable messages are
// logged and acknowledged; retrying them cannot succeed.
func (h *MetricsHandler) Handle(msg *message.Message) error {
	event, err := DecodeMessage(msg)
	if err != nil {
		h.logger.Error("Dropping malformed lifecycle event", err, watermill.LogFields{"message_uuid": msg.UUID})
		return nil
	}
	metrics.RecordLifecycleEvent(string(event.Kind))
	h.logger.Trace("Lifecycle event", watermill.LogFields{
		"kind":        string(event.Kind),
		"session_id":  event.SessionID,
		"column":      event.Column,
		"cycle_token": event.CycleToken,
	})
	return nil
}

// EventLog keeps the most recent lifecycle events in a ring for the debug API.
type EventLog struct {
	mu     sync.RWMutex
	events []feed.LifecycleEvent
	next   int
	full   bool
}

// NewEventLog creates a log holding up to capacity events.
func NewEventLog(capacity int) *EventLog {
	if capacity < 1 {
		capacity = 1
	}
	return &EventLog{events: make([]feed.LifecycleEvent, capacity)}
}

// Handle implements message.NoPublishHandlerFunc.
func (l *EventLog) Handle(msg *message.Message) error {
	event, err := DecodeMessage(msg)
	if err != nil {
		return nil
	}
	l.Append(event)
	return nil
}

// Append records an event, overwriting the oldest when full.
//
//nolint:gocritic // hugeParam: events are small and stored by value
func (l *EventLog) Append(event feed.LifecycleEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events[l.next] = event
	l.next = (l.next + 1) % len(l.events)
	if l.next == 0 {
		l.full = true
	}
}

// Recent returns up to limit events, newest first, optionally filtered to
// one session. A non-positive limit returns everything held.
func (l *EventLog) Recent(sessionID string, limit int) []feed.LifecycleEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := l.next
	if l.full {
		n = len(l.events)
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]feed.LifecycleEvent, 0, limit)
	for i := 0; i < n && len(out) < limit; i++ {
		idx := (l.next - 1 - i + len(l.events)) % len(l.events)
		if sessionID != "" && l.events[idx].SessionID != sessionID {
			continue
		}
		out = append(out, l.events[idx])
	}
	return out
}
