// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the /healthz body.
type HealthStatus struct {
	Status          string  `json:"status"`
	Version         string  `json:"version"`
	Uptime          float64 `json:"uptime_seconds"`
	Sessions        int     `json:"sessions"`
	CatalogProducts int     `json:"catalog_products"`
	CatalogBreaker  string  `json:"catalog_breaker,omitempty"`
	EventsRunning   *bool   `json:"events_running,omitempty"`
	EventsPending   int     `json:"events_pending"`
	RankCacheHits   int64   `json:"rank_cache_hits"`
	RankCacheMisses int64   `json:"rank_cache_misses"`
}

// Health reports engine state. The service is degraded while the catalog
// is empty, the catalog breaker is open, or the event router is down; it
// still answers 200 so sessions keep being served.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	m := h.deps.Manager
	hits, misses, _ := m.RankCacheStats()

	status := HealthStatus{
		Status:          "healthy",
		Version:         h.deps.Version,
		Uptime:          time.Since(h.startTime).Seconds(),
		Sessions:        m.Len(),
		CatalogProducts: len(m.Catalog()),
		RankCacheHits:   hits,
		RankCacheMisses: misses,
	}
	if status.CatalogProducts == 0 {
		status.Status = "degraded"
	}
	if h.deps.Breaker != nil {
		status.CatalogBreaker = h.deps.Breaker.State()
		if status.CatalogBreaker == "open" {
			status.Status = "degraded"
		}
	}
	if h.deps.Router != nil {
		running := h.deps.Router.IsRunning()
		status.EventsRunning = &running
		if !running {
			status.Status = "degraded"
		}
	}
	if h.deps.Publisher != nil {
		status.EventsPending = h.deps.Publisher.Pending()
	}

	respondData(w, r, http.StatusOK, status)
}

// Live always answers 200 while the process serves HTTP.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, map[string]string{"status": "alive"})
}
