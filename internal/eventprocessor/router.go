// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package eventprocessor

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// Router wraps the Watermill router with recoverer, retry and poison queue
// middleware.
type Router struct {
	router   *message.Router
	handlers map[string]*message.Handler
	logger   watermill.LoggerAdapter
}

// NewRouter creates a router. poisonPublisher may be nil to disable the
// poison queue.
//
//nolint:gocritic // hugeParam: config copied once at construction
func NewRouter(cfg Config, poisonPublisher message.Publisher, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	// outermost first: poison queue sees the error only after retries
	if poisonPublisher != nil && cfg.PoisonQueueTopic != "" {
		poisonQueue, err := middleware.PoisonQueue(poisonPublisher, cfg.PoisonQueueTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		wmRouter.AddMiddleware(poisonQueue)
	}

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      2.0,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware, middleware.Recoverer)

	return &Router{
		router:   wmRouter,
		handlers: make(map[string]*message.Handler),
		logger:   logger,
	}, nil
}

// AddConsumerHandler registers a handler that produces no output messages.
// Handlers must be added before Serve.
func (r *Router) AddConsumerHandler(
	name string,
	topic string,
	subscriber message.Subscriber,
	handler message.NoPublishHandlerFunc,
) *message.Handler {
	h := r.router.AddConsumerHandler(name, topic, subscriber, handler)
	r.handlers[name] = h
	return h
}

// Handlers returns the registered handler names.
func (r *Router) Handlers() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// Running returns a channel closed once the router is running.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// IsRunning reports whether the router is processing messages.
func (r *Router) IsRunning() bool {
	return r.router.IsRunning()
}

// Serve runs the router until ctx is done. A Watermill router cannot be
// run twice, so the supervisor must not restart it.
func (r *Router) Serve(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Close stops the router, waiting up to CloseTimeout for handlers.
func (r *Router) Close() error {
	return r.router.Close()
}

// String implements fmt.Stringer for supervisor logging.
func (r *Router) String() string {
	return "event-router"
}
