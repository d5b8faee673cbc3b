// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/storefeed/internal/feed"
	"github.com/tomtom215/storefeed/internal/preferences"
)

// RecordViewRequest records one product view.
type RecordViewRequest struct {
	ProductID string `json:"product_id" validate:"required,max=256"`
}

// CategoriesRequest replaces the preferred categories.
type CategoriesRequest struct {
	Categories []string `json:"categories" validate:"max=64,dive,max=128"`
}

// TasteRequest replaces the taste profile.
type TasteRequest struct {
	Enabled    bool               `json:"enabled"`
	Categories map[string]float64 `json:"categories" validate:"max=256"`
	Tags       map[string]float64 `json:"tags" validate:"max=256"`
}

// preferencesAvailable writes 503 when no store is configured.
func (h *Handler) preferencesAvailable(w http.ResponseWriter, r *http.Request) bool {
	if h.deps.Preferences == nil {
		respondError(w, r, http.StatusServiceUnavailable, "PREFERENCES_DISABLED", "Preference store is disabled", nil)
		return false
	}
	return true
}

func respondPreferenceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, preferences.ErrInvalidUser):
		respondError(w, r, http.StatusBadRequest, "INVALID_USER", "Invalid user id", nil)
	case errors.Is(err, preferences.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Preference not found", nil)
	default:
		respondError(w, r, http.StatusInternalServerError, "PREFERENCES_ERROR", "Preference store error", err)
	}
}

// UserSignals handles GET /api/v1/users/{user}/signals.
func (h *Handler) UserSignals(w http.ResponseWriter, r *http.Request) {
	if !h.preferencesAvailable(w, r) {
		return
	}
	signals, err := h.deps.Preferences.Signals(r.Context(), chi.URLParam(r, "user"))
	if err != nil {
		respondPreferenceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, signals)
}

// RecordView handles POST /api/v1/users/{user}/views.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	if !h.preferencesAvailable(w, r) {
		return
	}
	var req RecordViewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.deps.Preferences.RecordView(r.Context(), chi.URLParam(r, "user"), req.ProductID); err != nil {
		respondPreferenceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UserTaste handles GET /api/v1/users/{user}/taste.
func (h *Handler) UserTaste(w http.ResponseWriter, r *http.Request) {
	if !h.preferencesAvailable(w, r) {
		return
	}
	profile, err := h.deps.Preferences.TasteProfile(r.Context(), chi.URLParam(r, "user"))
	if err != nil {
		respondPreferenceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, profile)
}

// SaveTaste handles PUT /api/v1/users/{user}/taste.
func (h *Handler) SaveTaste(w http.ResponseWriter, r *http.Request) {
	if !h.preferencesAvailable(w, r) {
		return
	}
	var req TasteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	profile := &feed.TasteProfile{Enabled: req.Enabled, Categories: req.Categories, Tags: req.Tags}
	if err := h.deps.Preferences.SaveTasteProfile(r.Context(), chi.URLParam(r, "user"), profile); err != nil {
		respondPreferenceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, profile)
}

// SetCategories handles PUT /api/v1/users/{user}/categories.
func (h *Handler) SetCategories(w http.ResponseWriter, r *http.Request) {
	if !h.preferencesAvailable(w, r) {
		return
	}
	var req CategoriesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	user := chi.URLParam(r, "user")
	if err := h.deps.Preferences.SetPreferredCategories(r.Context(), user, req.Categories); err != nil {
		respondPreferenceError(w, r, err)
		return
	}
	categories, err := h.deps.Preferences.PreferredCategories(r.Context(), user)
	if err != nil {
		respondPreferenceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, categories)
}

// DeleteUser handles DELETE /api/v1/users/{user}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if !h.preferencesAvailable(w, r) {
		return
	}
	if err := h.deps.Preferences.DeleteUser(r.Context(), chi.URLParam(r, "user")); err != nil {
		respondPreferenceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
