// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/storefeed/internal/middleware"
)

// RouterOptions selects optional route groups.
type RouterOptions struct {
	// DebugRoutes mounts the feed session routes.
	DebugRoutes bool
}

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler *Handler
	mw      *ChiMiddleware
	opts    RouterOptions
}

// NewRouter creates a router.
func NewRouter(handler *Handler, mw *ChiMiddleware, opts RouterOptions) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, mw: mw, opts: opts}
}

// Setup builds the HTTP handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.mw.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.Get("/healthz", router.handler.Health)
	r.Get("/livez", router.handler.Live)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.mw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Get("/catalog", router.handler.Catalog)

		if router.opts.DebugRoutes {
			r.Route("/feed/sessions", func(r chi.Router) {
				r.Post("/", router.handler.CreateSession)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", router.handler.GetSession)
					r.Delete("/", router.handler.DeleteSession)
					r.Post("/input", router.handler.SessionInput)
					r.Put("/layout", router.handler.ResizeSession)
					r.Put("/signals", router.handler.UpdateSignals)
					r.Post("/replay", router.handler.ReplaySession)
					r.Post("/refill", router.handler.RefillSession)
					r.Get("/products", router.handler.RankedProducts)
					r.Get("/events", router.handler.SessionEvents)
				})
			})
		}

		r.Route("/users/{user}", func(r chi.Router) {
			r.Delete("/", router.handler.DeleteUser)
			r.Get("/signals", router.handler.UserSignals)
			r.Post("/views", router.handler.RecordView)
			r.Get("/taste", router.handler.UserTaste)
			r.Put("/taste", router.handler.SaveTaste)
			r.Put("/categories", router.handler.SetCategories)
		})
	})

	return r
}
