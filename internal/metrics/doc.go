// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

/*
Package metrics provides Prometheus metrics collection and export for observability.

Metrics are registered with the default registry via promauto at package
initialization and exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Feed Metrics:
  - feed_sessions_active: Live sessions (gauge)
  - feed_sessions_created_total / feed_sessions_expired_total (counters)
  - feed_frame_duration_seconds: Time to tick all sessions (histogram)
  - feed_rank_duration_seconds: Rank + rerank latency (histogram)
    Labels: sort
  - feed_rank_cache_hits_total / feed_rank_cache_misses_total (counters)
  - feed_cards_dealt_total: Cards moved from pools to decks (counter)
  - feed_refills_dropped_total: Refills that dealt nothing (counter)
    Labels: reason
  - feed_lifecycle_events_total: Lifecycle events (counter)
    Labels: kind
  - feed_events_published_total / feed_events_dropped_total (counters)

Catalog and Preference Metrics:
  - catalog_fetch_duration_seconds, catalog_fetch_errors_total
    Labels: source
  - catalog_products: Size of the last loaded catalog (gauge)
  - preference_operations_total
    Labels: operation, result

Circuit Breaker Metrics:
  - circuit_breaker_state (0=closed, 1=half-open, 2=open)
  - circuit_breaker_requests_total
  - circuit_breaker_state_transitions_total

API Metrics:
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - api_rate_limit_hits_total

# Usage

	start := time.Now()
	manager.TickAll()
	metrics.RecordFrame(time.Since(start), manager.Len())

# Thread Safety

All metric operations are thread-safe via Prometheus client library.
*/
package metrics
