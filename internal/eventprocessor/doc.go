// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

// Package eventprocessor carries feed lifecycle events (end zone, column
// complete, refill, ended, replay, reset) off the frame clock and onto a
// Watermill event bus.
//
// # Data Flow
//
//	Session.emit ──► Publisher.Publish (non-blocking, bounded buffer)
//	                      │
//	                      ▼  Publisher.Serve drains the buffer
//	              gochannel topic "feed.lifecycle"
//	                      │
//	                      ▼  Router (recoverer, retry, poison queue)
//	        ┌─────────────┴─────────────┐
//	        ▼                           ▼
//	 MetricsHandler               EventLog
//	 (Prometheus counters)        (recent events for the debug API)
//
// Publish never blocks: when the buffer is full the event is dropped and
// storefeed_events_dropped_total is incremented. Frame timing matters more
// than a complete event history.
//
// Publisher and Router both implement suture.Service and run in the
// messaging layer of the supervisor tree.
package eventprocessor
