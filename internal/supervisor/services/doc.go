// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

/*
Package services provides suture.Service wrappers for Storefeed components.

Each wrapper implements the suture.Service interface and stops cleanly by
returning ctx.Err() once its context is canceled.

# Available Services

Frame Clock (FrameClockService):
  - Advances every live feed session once per frame interval
  - Expires idle sessions on a slower ticker

Catalog Refresh (CatalogRefreshService):
  - Loads the catalog on startup, then on every refresh interval
  - Keeps the previous catalog when a fetch fails

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown

Run Once (RunOnceService):
  - Wraps services that cannot be run twice, such as the Watermill router,
    and asks the supervisor not to restart them
*/
package services
