// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared (it caches struct metadata and is
// safe for concurrent use). Field names in errors follow the json or koanf
// tag so messages match what clients and config files actually contain.
//
// Used by:
//   - config.Config.Validate for tag-level checks of the loaded configuration
//   - the API for session create and input request bodies
//
// Example:
//
//	type createRequest struct {
//	    Sort  string `json:"sort" validate:"sort_mode"`
//	    Width int    `json:"viewport_width" validate:"gte=0,lte=10000"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    ...
//	}
package validation
