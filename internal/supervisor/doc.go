// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

/*
Package supervisor provides process supervision for Storefeed using suture v4.

The tree organizes every long-running service into layers so that one
failing concern restarts without taking the others down:

	RootSupervisor ("storefeed")
	├── DataSupervisor ("data-layer")
	│   └── CatalogRefreshService
	├── EngineSupervisor ("engine-layer")
	│   └── FrameClockService
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Publisher ("event-publisher")
	│   └── RunOnceService(Router) ("event-router")
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events (service start, panic, backoff) are logged through the
sutureslog adapter, fed by the zerolog-backed slog logger from the logging
package.

# Usage

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewCatalogRefreshService(source, manager, ...))
	tree.AddEngineService(services.NewFrameClockService(manager, ...))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

Services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Returning ctx.Err() after cancellation is a clean stop. Any other error is a
failure and triggers a restart with backoff. Services that cannot be
restarted return suture.ErrDoNotRestart.
*/
package supervisor
