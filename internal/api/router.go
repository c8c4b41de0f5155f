// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/radiograph/internal/config"
	"github.com/tomtom215/radiograph/internal/metrics"
	"github.com/tomtom215/radiograph/internal/middleware"
	"github.com/tomtom215/radiograph/internal/websocket"
)

// Router assembles the HTTP surface.
type Router struct {
	handler *Handler
	hub     *websocket.Hub
	cfg     config.APIConfig
}

// NewRouter creates a router around the handler and hub.
func NewRouter(handler *Handler, hub *websocket.Hub, cfg config.APIConfig) *Router {
	return &Router{handler: handler, hub: hub, cfg: cfg}
}

// Setup builds the chi route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/hubs/packets", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWS(router.hub, w, r)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.Limit(
			router.cfg.RateLimit,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(rateLimited),
		))
		r.Use(middleware.PrometheusMetrics)

		r.Get("/packets", router.handler.Packets)
		r.Get("/packets/{id}", router.handler.PacketByID)
	})

	return r
}

func rateLimited(w http.ResponseWriter, r *http.Request) {
	metrics.APIRateLimitHits.WithLabelValues(r.URL.Path).Inc()
	NewResponseWriter(w, r).TooManyRequests("rate limit exceeded, retry later")
}
