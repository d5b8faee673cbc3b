// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"

	"github.com/tomtom215/storefeed/internal/logging"
	"github.com/tomtom215/storefeed/internal/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// APIResponse is the envelope for every JSON response.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata accompanies every response.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError is a machine-readable error body.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// sanitizeLogValue escapes control characters so request data cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// respondJSON writes the envelope. Feed state changes every frame, so
// responses are never cacheable; the ETag lets pollers skip identical bodies.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *APIResponse) {
	response.Metadata.Timestamp = time.Now()
	response.Metadata.RequestID = logging.RequestIDFromContext(r.Context())

	data, err := json.Marshal(response)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("ETag", strconv.Quote(strconv.FormatUint(xxhash.Sum64(data), 16)))
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData writes a success envelope.
func respondData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	respondJSON(w, r, status, &APIResponse{Status: "success", Data: data})
}

// respondError writes an error envelope. err is logged, never returned to
// the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		event := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.Str("code", code).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}
	respondJSON(w, r, status, &APIResponse{
		Status: "error",
		Error:  &APIError{Code: code, Message: message},
	})
}

// validateRequest runs struct tag validation.
func validateRequest(v interface{}) *APIError {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return nil
	}
	apiErr := verr.ToAPIError()
	return &APIError{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details}
}

// decodeAndValidate reads a JSON body into v and validates it. On failure
// the error response is already written and false is returned.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, r, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "Request body too large", err)
		return false
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, v); err != nil {
			respondError(w, r, http.StatusBadRequest, "INVALID_JSON", "Request body is not valid JSON", err)
			return false
		}
	}
	if apiErr := validateRequest(v); apiErr != nil {
		respondJSON(w, r, http.StatusBadRequest, &APIResponse{Status: "error", Error: apiErr})
		return false
	}
	return true
}

// getIntParam reads an integer query parameter, falling back on absence or
// parse failure.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
