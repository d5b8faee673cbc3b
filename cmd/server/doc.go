// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

/*
Package main is the entry point for the Storefeed server.

Storefeed runs continuously scrolling multi-column product feeds. Each feed
session ranks the catalog for one viewer, deals the ranking into columns and
advances every column on a shared frame clock until the deck runs out.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("storefeed")
	├── DataSupervisor ("data-layer")
	│   └── Catalog refresh (duckdb or postgres, behind a circuit breaker)
	├── EngineSupervisor ("engine-layer")
	│   └── Frame clock (ticks and expires feed sessions)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Lifecycle event publisher
	│   └── Watermill event router (run once)
	└── APISupervisor ("api-layer")
	    └── HTTP server (ops and debug routes)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, YAML file and environment
 2. Logging: zerolog with JSON or console output
 3. Catalog: sqlx over DuckDB or PostgreSQL, seeded with demo products
 4. Preferences: BadgerDB viewer store
 5. Events: Watermill GoChannel bus, router and publisher
 6. Session manager
 7. Supervisor tree and HTTP server

# Configuration

Priority: Environment variables > Config file > Defaults

	HTTP_PORT=8089                 # ops HTTP port
	LOG_LEVEL=info                 # trace, debug, info, warn, error
	LOG_FORMAT=json                # json or console
	CATALOG_DRIVER=duckdb          # duckdb or postgres
	CATALOG_DSN=                   # empty DuckDB DSN is in-memory
	PREFERENCES_PATH=/data/preferences
	FEED_SPONSORED_CADENCE=6
	FRAME_INTERVAL=16ms
	DEBUG_ROUTES=true

CONFIG_PATH selects a YAML file; see internal/config for every key.

# Signal Handling

SIGINT and SIGTERM cancel the root context. Every layer stops: the HTTP
server shuts down gracefully and the publisher drains its buffer. The
catalog and preference stores close after the tree returns. Services that
miss the shutdown timeout are reported.
*/
package main
