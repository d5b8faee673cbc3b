// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Feed Session Metrics
	FeedSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_sessions_active",
			Help: "Current number of live feed sessions",
		},
	)

	FeedSessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_sessions_created_total",
			Help: "Total number of feed sessions created",
		},
	)

	FeedSessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_sessions_expired_total",
			Help: "Total number of feed sessions removed after idling",
		},
	)

	FeedFrameDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_frame_duration_seconds",
			Help:    "Time spent ticking every session for one frame",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016, 0.033, 0.1}, // frame budget is ~16ms
		},
	)

	// Ranking Metrics
	FeedRankDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_rank_duration_seconds",
			Help:    "Duration of rank + rerank passes in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"sort"},
	)

	FeedRankCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_rank_cache_hits_total",
			Help: "Total number of ranking cache hits",
		},
	)

	FeedRankCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_rank_cache_misses_total",
			Help: "Total number of ranking cache misses",
		},
	)

	// Deck Metrics
	FeedCardsDealt = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_cards_dealt_total",
			Help: "Total number of cards moved from pools onto column decks",
		},
	)

	FeedRefillsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_refills_dropped_total",
			Help: "Total number of refill requests that dealt nothing",
		},
		[]string{"reason"}, // "stale_generation", "out_of_range", "exhausted"
	)

	// Lifecycle Metrics
	FeedLifecycleEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_lifecycle_events_total",
			Help: "Total number of feed lifecycle events by kind",
		},
		[]string{"kind"},
	)

	FeedEventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_events_published_total",
			Help: "Total number of lifecycle events published to the message bus",
		},
	)

	FeedEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_events_dropped_total",
			Help: "Total number of lifecycle events dropped because the publish buffer was full",
		},
	)

	// Catalog Metrics
	CatalogFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_fetch_duration_seconds",
			Help:    "Duration of catalog fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	CatalogFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_fetch_errors_total",
			Help: "Total number of failed catalog fetches",
		},
		[]string{"source"},
	)

	CatalogProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_products",
			Help: "Number of products in the most recently loaded catalog",
		},
	)

	// Preference Store Metrics
	PreferenceOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preference_operations_total",
			Help: "Total number of preference store operations",
		},
		[]string{"operation", "result"}, // result: "success", "not_found", "error"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}, // feed calls are in-memory
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordRank records a rank pass.
func RecordRank(sort string, duration time.Duration) {
	FeedRankDuration.WithLabelValues(sort).Observe(duration.Seconds())
}

// RecordRankCache records the outcome of a ranking cache lookup.
func RecordRankCache(hit bool) {
	if hit {
		FeedRankCacheHits.Inc()
	} else {
		FeedRankCacheMisses.Inc()
	}
}

// RecordRefill records a refill attempt. A zero dealt count is recorded
// under reason.
func RecordRefill(dealt int, reason string) {
	if dealt > 0 {
		FeedCardsDealt.Add(float64(dealt))
		return
	}
	FeedRefillsDropped.WithLabelValues(reason).Inc()
}

// RecordFrame records one frame of the session clock.
func RecordFrame(duration time.Duration, sessions int) {
	FeedFrameDuration.Observe(duration.Seconds())
	FeedSessionsActive.Set(float64(sessions))
}

// RecordLifecycleEvent counts a lifecycle event by kind.
func RecordLifecycleEvent(kind string) {
	FeedLifecycleEvents.WithLabelValues(kind).Inc()
}

// RecordCatalogFetch records a catalog fetch.
func RecordCatalogFetch(source string, duration time.Duration, products int, err error) {
	CatalogFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		CatalogFetchErrors.WithLabelValues(source).Inc()
		return
	}
	CatalogProducts.Set(float64(products))
}

// RecordPreferenceOperation records a preference store operation.
func RecordPreferenceOperation(operation, result string) {
	PreferenceOperations.WithLabelValues(operation, result).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCircuitBreakerState maps a breaker state name to the gauge value.
func RecordCircuitBreakerState(name, state string) {
	var v float64
	switch state {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	CircuitBreakerState.WithLabelValues(name).Set(v)
}

// RecordCircuitBreakerTransition records a state change.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	RecordCircuitBreakerState(name, to)
}
