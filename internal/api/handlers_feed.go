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
	"github.com/tomtom215/storefeed/internal/feed/deck"
	"github.com/tomtom215/storefeed/internal/feed/session"
	"github.com/tomtom215/storefeed/internal/logging"
)

// Input types accepted by SessionInput.
const (
	InputWheel         = "wheel"
	InputPointerDown   = "pointer_down"
	InputPointerMove   = "pointer_move"
	InputPointerUp     = "pointer_up"
	InputPointerCancel = "pointer_cancel"
	InputHover         = "hover"
	InputModal         = "modal"
	InputAuxMenu       = "aux_menu"
)

// CreateSessionRequest starts a feed session. When UserID is set and
// Signals is omitted, signals are loaded from the preference store.
type CreateSessionRequest struct {
	UserID      string         `json:"user_id" validate:"omitempty,max=128"`
	Signals     *feed.Signals  `json:"signals"`
	Sort        string         `json:"sort" validate:"sort_mode"`
	Personalize *bool          `json:"personalize"`
	Layout      session.Layout `json:"layout"`
}

// SignalsRequest replaces a session's signals and ranking options.
type SignalsRequest struct {
	Signals     feed.Signals `json:"signals"`
	Sort        string       `json:"sort" validate:"sort_mode"`
	Personalize *bool        `json:"personalize"`
}

// InputRequest is one user input. Column is ignored by modal and aux_menu;
// Active carries the hover, modal or aux_menu state.
type InputRequest struct {
	Type   string  `json:"type" validate:"required,oneof=wheel pointer_down pointer_move pointer_up pointer_cancel hover modal aux_menu"`
	Column int     `json:"column" validate:"gte=0"`
	DeltaY float64 `json:"delta_y"`
	Y      float64 `json:"y"`
	Active bool    `json:"active"`
}

// RefillRequest asks for more cards on one column.
type RefillRequest struct {
	Generation uint64 `json:"generation"`
	Column     int    `json:"column" validate:"gte=0"`
	Count      int    `json:"count" validate:"gte=1,lte=1000"`
}

func rankOptions(sort string, personalize *bool) feed.RankOptions {
	mode, _ := feed.ParseSortMode(sort) // validated by the sort_mode tag
	opts := feed.RankOptions{Sort: mode, Personalize: true}
	if personalize != nil {
		opts.Personalize = *personalize
	}
	return opts
}

// lookupSession resolves the {id} URL parameter. On failure the error response
// is already written.
func (h *Handler) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.deps.Manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondSessionError(w, r, err)
		return nil, false
	}
	return s, true
}

func respondSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		respondError(w, r, http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found", nil)
	case errors.Is(err, session.ErrTooManySessions):
		respondError(w, r, http.StatusServiceUnavailable, "TOO_MANY_SESSIONS", "Session limit reached", err)
	case errors.Is(err, session.ErrColumnOutOfRange):
		respondError(w, r, http.StatusBadRequest, "COLUMN_OUT_OF_RANGE", "Column out of range", nil)
	default:
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error", err)
	}
}

// CreateSession handles POST /api/v1/feed/sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var signals feed.Signals
	switch {
	case req.Signals != nil:
		signals = *req.Signals
	case req.UserID != "" && h.deps.Preferences != nil:
		stored, err := h.deps.Preferences.Signals(r.Context(), req.UserID)
		if err != nil {
			// personalization is optional; start unpersonalized
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Loading viewer signals failed")
		} else {
			signals = stored
		}
	}

	s, err := h.deps.Manager.Create(session.CreateRequest{
		Signals: signals,
		Options: rankOptions(req.Sort, req.Personalize),
		Layout:  req.Layout,
	})
	if err != nil {
		respondSessionError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Debug().Str("session_id", s.ID()).Msg("Feed session created")
	respondData(w, r, http.StatusCreated, s.Snapshot())
}

// GetSession handles GET /api/v1/feed/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	respondData(w, r, http.StatusOK, s.Snapshot())
}

// DeleteSession handles DELETE /api/v1/feed/sessions/{id}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Manager.Delete(chi.URLParam(r, "id")); err != nil {
		respondSessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SessionInput handles POST /api/v1/feed/sessions/{id}/input.
func (h *Handler) SessionInput(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	var req InputRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	now := h.deps.Manager.Now()
	var err error
	switch req.Type {
	case InputWheel:
		err = s.Wheel(req.Column, req.DeltaY, now)
	case InputPointerDown:
		err = s.PointerDown(req.Column, req.Y, now)
	case InputPointerMove:
		err = s.PointerMove(req.Column, req.Y, now)
	case InputPointerUp:
		err = s.PointerUp(req.Column, now)
	case InputPointerCancel:
		err = s.PointerCancel(req.Column, now)
	case InputHover:
		err = s.SetHover(req.Column, req.Active, now)
	case InputModal:
		s.SetModalOpen(req.Active, now)
	case InputAuxMenu:
		s.SetAuxMenuOpen(req.Active, now)
	}
	if err != nil {
		respondSessionError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, s.Snapshot())
}

// ResizeSession handles PUT /api/v1/feed/sessions/{id}/layout.
func (h *Handler) ResizeSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	var layout session.Layout
	if !decodeAndValidate(w, r, &layout) {
		return
	}
	reset := s.Resize(layout, h.deps.Manager.Now())
	respondData(w, r, http.StatusOK, map[string]interface{}{
		"reset":    reset,
		"snapshot": s.Snapshot(),
	})
}

// UpdateSignals handles PUT /api/v1/feed/sessions/{id}/signals.
func (h *Handler) UpdateSignals(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	var req SignalsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	reset := s.UpdateSignals(req.Signals, rankOptions(req.Sort, req.Personalize), h.deps.Manager.Now())
	respondData(w, r, http.StatusOK, map[string]interface{}{
		"reset":    reset,
		"snapshot": s.Snapshot(),
	})
}

// ReplaySession handles POST /api/v1/feed/sessions/{id}/replay.
func (h *Handler) ReplaySession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	token := s.Replay(h.deps.Manager.Now())
	respondData(w, r, http.StatusOK, map[string]interface{}{
		"cycle_token": token,
		"snapshot":    s.Snapshot(),
	})
}

// RefillSession handles POST /api/v1/feed/sessions/{id}/refill. Stale
// generations, out-of-range columns and ended feeds deal nothing.
func (h *Handler) RefillSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	var req RefillRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	dealt := s.Refill(deck.RefillRequest{Generation: req.Generation, Column: req.Column, Count: req.Count})
	respondData(w, r, http.StatusOK, map[string]int{"dealt": dealt})
}

// RankedProducts handles GET /api/v1/feed/sessions/{id}/products.
func (h *Handler) RankedProducts(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	respondData(w, r, http.StatusOK, s.Ranked())
}

// SessionEvents handles GET /api/v1/feed/sessions/{id}/events?limit=N.
// Events for deleted sessions stay readable until evicted from the log.
func (h *Handler) SessionEvents(w http.ResponseWriter, r *http.Request) {
	if h.deps.Events == nil {
		respondError(w, r, http.StatusServiceUnavailable, "EVENTS_DISABLED", "Event log is disabled", nil)
		return
	}
	limit := getIntParam(r, "limit", 50)
	respondData(w, r, http.StatusOK, h.deps.Events.Recent(chi.URLParam(r, "id"), limit))
}

// Catalog handles GET /api/v1/catalog.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	products := h.deps.Manager.Catalog()
	if products == nil {
		products = []feed.Product{}
	}
	respondData(w, r, http.StatusOK, products)
}
