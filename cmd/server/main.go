// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storefeed/internal/api"
	"github.com/tomtom215/storefeed/internal/catalog"
	"github.com/tomtom215/storefeed/internal/config"
	"github.com/tomtom215/storefeed/internal/eventprocessor"
	"github.com/tomtom215/storefeed/internal/feed/session"
	"github.com/tomtom215/storefeed/internal/logging"
	"github.com/tomtom215/storefeed/internal/preferences"
	"github.com/tomtom215/storefeed/internal/supervisor"
	"github.com/tomtom215/storefeed/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// eventLogCapacity bounds the in-memory lifecycle event log.
const eventLogCapacity = 4096

//nolint:gocyclo // sequential startup wiring
func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging)
	logger := logging.Logger()

	logging.Info().Str("version", version).Msg("Starting Storefeed with supervisor tree")
	logging.Info().Str("config", cfg.String()).Msg("Configuration loaded")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// === DATA ===

	store, err := catalog.Open(ctx, cfg.Catalog.Driver, cfg.Catalog.DSN)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open catalog")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing catalog")
		}
	}()

	if cfg.Catalog.Seed {
		if err := store.InitSchema(ctx); err != nil {
			logging.Fatal().Err(err).Msg("Failed to create catalog schema")
		}
		seeded, err := store.SeedIfEmpty(ctx)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed catalog")
		}
		if seeded > 0 {
			logging.Info().Int("products", seeded).Msg("Catalog seeded with demo products")
		}
	}

	var source services.CatalogSource = store
	var breaker *catalog.BreakerSource
	if cfg.Catalog.Breaker.Enabled {
		breaker = catalog.NewBreakerSource(store, catalog.BreakerConfig{
			Name:             "catalog",
			MaxRequests:      cfg.Catalog.Breaker.MaxRequests,
			Interval:         cfg.Catalog.Breaker.Interval,
			Timeout:          cfg.Catalog.Breaker.Timeout,
			FailureThreshold: cfg.Catalog.Breaker.FailureThreshold,
		}, logger)
		source = breaker
	} else {
		logging.Warn().Msg("Catalog circuit breaker is disabled")
	}

	prefs, err := preferences.Open(preferences.Options{
		Path:              cfg.Preferences.Path,
		InMemory:          cfg.Preferences.InMemory,
		MaxRecentlyViewed: cfg.Preferences.MaxRecentlyViewed,
	}, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open preference store")
	}
	defer func() {
		if err := prefs.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing preference store")
		}
	}()
	if cfg.Preferences.InMemory {
		logging.Warn().Msg("Preference store is in memory; viewer signals are lost on restart")
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === EVENTS ===

	var (
		publisher *eventprocessor.Publisher
		router    *eventprocessor.Router
		eventLog  *eventprocessor.EventLog
	)
	if cfg.Events.Enabled {
		publisher, router, eventLog, err = initEvents(cfg, logger)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize event bus")
		}
		tree.AddMessagingService(publisher)
		tree.AddMessagingService(services.NewRunOnceService(router, logger))
		logging.Info().Str("topic", cfg.Events.Topic).Strs("handlers", router.Handlers()).Msg("Event bus added to supervisor tree")
	} else {
		logging.Info().Msg("Lifecycle events disabled (EVENTS_ENABLED=false)")
	}

	// === ENGINE ===

	var sessionPublisher session.Publisher
	if publisher != nil {
		sessionPublisher = publisher
	}
	manager := session.NewManager(&cfg.Feed, session.ManagerConfig{
		IdleTimeout: cfg.Sessions.IdleTimeout,
		MaxSessions: cfg.Sessions.MaxSessions,
	}, sessionPublisher, logger)

	tree.AddDataService(services.NewCatalogRefreshService(source, manager, services.CatalogRefreshConfig{
		Interval:     cfg.Catalog.RefreshInterval,
		FetchTimeout: cfg.Catalog.FetchTimeout,
	}, logger))
	tree.AddEngineService(services.NewFrameClockService(manager, services.FrameClockConfig{
		Interval:       cfg.Frame.Interval,
		ExpireInterval: cfg.Sessions.ExpireInterval,
	}, logger))

	// === API ===

	deps := api.Deps{
		Manager:     manager,
		Preferences: prefs,
		Events:      eventLog,
		Version:     version,
	}
	// typed nils would defeat the handler's nil checks
	if breaker != nil {
		deps.Breaker = breaker
	}
	if router != nil {
		deps.Router = router
	}
	if publisher != nil {
		deps.Publisher = publisher
	}
	handler := api.NewHandler(deps, logger)

	mwConfig := api.DefaultChiMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mwConfig.RateLimitRequests = cfg.Server.RateLimitReqs
	mwConfig.RateLimitWindow = cfg.Server.RateLimitWindow
	mwConfig.RateLimitDisabled = cfg.Server.RateLimitDisabled
	if cfg.Server.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	if !cfg.Server.DebugRoutes {
		logging.Info().Msg("Feed session routes disabled (DEBUG_ROUTES=false)")
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(handler, api.NewChiMiddleware(mwConfig), api.RouterOptions{DebugRoutes: cfg.Server.DebugRoutes}).Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	// === RUN ===

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal, waiting for supervisor to finish...")
		err = <-errCh
	case err = <-errCh:
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Int("sessions", manager.Len()).Msg("Application stopped gracefully")
}

// initEvents builds the lifecycle event bus: a GoChannel pub/sub shared by
// the publisher and the router, with the metrics handler and event log
// subscribed to the lifecycle topic.
//
//nolint:gocritic // hugeParam: zerolog.Logger passed by value
func initEvents(cfg *config.Config, logger zerolog.Logger) (*eventprocessor.Publisher, *eventprocessor.Router, *eventprocessor.EventLog, error) {
	epCfg := eventprocessor.DefaultConfig()
	epCfg.Topic = cfg.Events.Topic
	epCfg.BufferSize = cfg.Events.BufferSize
	epCfg.CloseTimeout = cfg.Events.CloseTimeout
	epCfg.PoisonQueueTopic = cfg.Events.Topic + ".poison"
	if err := epCfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	wmLogger := logging.NewWatermillAdapter(logger.With().Str("component", "events").Logger())
	bus := eventprocessor.NewBus(epCfg.BufferSize, wmLogger)

	router, err := eventprocessor.NewRouter(epCfg, bus, wmLogger)
	if err != nil {
		return nil, nil, nil, err
	}

	eventLog := eventprocessor.NewEventLog(eventLogCapacity)
	router.AddConsumerHandler("lifecycle-metrics", epCfg.Topic, bus, eventprocessor.NewMetricsHandler(wmLogger).Handle)
	router.AddConsumerHandler("lifecycle-log", epCfg.Topic, bus, eventLog.Handle)

	publisher, err := eventprocessor.NewPublisher(epCfg, bus, wmLogger)
	if err != nil {
		return nil, nil, nil, err
	}
	publisher.WaitFor(router.Running())

	return publisher, router, eventLog, nil
}
