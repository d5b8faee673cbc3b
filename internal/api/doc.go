// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

/*
Package api provides the ops and debug HTTP surface of Storefeed, routed with
chi.

# Routes

	GET    /healthz                                  engine health
	GET    /livez                                    liveness
	GET    /metrics                                  Prometheus exposition
	GET    /api/v1/catalog                           current catalog

	POST   /api/v1/feed/sessions                     create a session
	GET    /api/v1/feed/sessions/{id}                snapshot
	DELETE /api/v1/feed/sessions/{id}                delete
	POST   /api/v1/feed/sessions/{id}/input          wheel, pointer, hover, modal, aux_menu
	PUT    /api/v1/feed/sessions/{id}/layout         resize
	PUT    /api/v1/feed/sessions/{id}/signals        re-rank with new signals or sort
	POST   /api/v1/feed/sessions/{id}/replay         restart the feed
	POST   /api/v1/feed/sessions/{id}/refill         deal more cards into a column
	GET    /api/v1/feed/sessions/{id}/products       ranked list
	GET    /api/v1/feed/sessions/{id}/events         recent lifecycle events

	GET    /api/v1/users/{user}/signals              stored personalization signals
	POST   /api/v1/users/{user}/views                record a product view
	GET    /api/v1/users/{user}/taste                taste profile
	PUT    /api/v1/users/{user}/taste                replace taste profile
	PUT    /api/v1/users/{user}/categories           replace preferred categories
	DELETE /api/v1/users/{user}                      forget a viewer

Session routes are mounted only with RouterOptions.DebugRoutes. In
production the frame clock drives sessions and a host process owns input;
the routes exist to inspect and drive a feed by hand.

Every JSON response uses the APIResponse envelope:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "...", "request_id": "..."}}
	{"status": "error", "data": null, "error": {"code": "SESSION_NOT_FOUND", "message": "..."}}
*/
package api
