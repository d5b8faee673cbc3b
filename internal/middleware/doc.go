// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

/*
Package middleware provides HTTP middleware shared by the ops API.

  - RequestID: X-Request-ID propagation plus request and correlation IDs in
    the logging context
  - PrometheusMetrics: request counts, latency and in-flight gauge, labeled
    by the chi route pattern so session IDs never become label values

Both use the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
