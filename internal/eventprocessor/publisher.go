// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package eventprocessor

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/storefeed/internal/feed"
	"github.com/tomtom215/storefeed/internal/feed/session"
	"github.com/tomtom215/storefeed/internal/metrics"
)

// Publisher buffers lifecycle events from sessions and forwards them to the
// bus from its own goroutine (Serve), so sessions never wait on the bus.
type Publisher struct {
	events chan feed.LifecycleEvent
	pub    message.Publisher
	topic  string
	logger watermill.LoggerAdapter
	ready  <-chan struct{}
}

var _ session.Publisher = (*Publisher)(nil)

// NewPublisher creates a publisher writing to pub on cfg.Topic.
//
//nolint:gocritic // hugeParam: config copied once at construction
func NewPublisher(cfg Config, pub message.Publisher, logger watermill.LoggerAdapter) (*Publisher, error) {
	if pub == nil {
		return nil, ErrNilPublisher
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Publisher{
		events: make(chan feed.LifecycleEvent, cfg.BufferSize),
		pub:    pub,
		topic:  cfg.Topic,
		logger: logger.With(watermill.LogFields{"component": "event-publisher"}),
	}, nil
}

// Publish enqueues an event. It never blocks; a full buffer drops the event.
func (p *Publisher) Publish(event feed.LifecycleEvent) {
	select {
	case p.events <- event:
	default:
		metrics.FeedEventsDropped.Inc()
	}
}

// Pending returns the number of buffered events.
func (p *Publisher) Pending() int {
	return len(p.events)
}

// WaitFor delays forwarding until ready is closed, typically
// Router.Running, so the first events are not published before any
// handler has subscribed. Call before Serve.
func (p *Publisher) WaitFor(ready <-chan struct{}) {
	p.ready = ready
}

// Serve forwards buffered events until ctx is done. Implements suture.Service.
func (p *Publisher) Serve(ctx context.Context) error {
	if p.ready != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.ready:
		}
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-p.events:
			p.forward(&event)
		}
	}
}

func (p *Publisher) forward(event *feed.LifecycleEvent) {
	msg, err := NewMessage(event)
	if err != nil {
		p.logger.Error("Failed to encode lifecycle event", err, watermill.LogFields{"kind": string(event.Kind)})
		metrics.FeedEventsDropped.Inc()
		return
	}
	if err := p.pub.Publish(p.topic, msg); err != nil {
		p.logger.Error("Failed to publish lifecycle event", err, watermill.LogFields{
			"kind":       string(event.Kind),
			"session_id": event.SessionID,
		})
		metrics.FeedEventsDropped.Inc()
		return
	}
	metrics.FeedEventsPublished.Inc()
}

// String implements fmt.Stringer for supervisor logging.
func (p *Publisher) String() string {
	return "event-publisher"
}
