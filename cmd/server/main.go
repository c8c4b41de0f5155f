// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

// Package main is the entry point for the Radiograph server.
//
// Radiograph connects to an APRS-IS relay, parses the TNC2 packet feed,
// deduplicates and persists packets to DuckDB, and serves them through a
// paginated query API and a websocket subscription hub.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered sources (env > config.yaml > defaults)
//  2. Database: DuckDB packet store with schema bootstrap
//  3. Dedup cache: rolling TTL fingerprint window
//  4. WebSocket hub: real-time fan-out groups
//  5. Ingest pipeline: bounded queue plus worker pool
//  6. Feed client: APRS-IS login and read loop
//  7. HTTP server: query API, health, metrics, websocket upgrade
//
// Everything runs under a suture supervision tree
// (root -> data / messaging / api) so a crashing feed connection or hub
// restarts without taking down the query API.
//
// # Configuration
//
// See config.yaml.example. The essentials via environment:
//
//	export APRS_CALLSIGN=SP3XYZ-7
//	export APRS_PASSWORD=12345
//	export APRS_FILTER="r/52/21/500"
//	export DUCKDB_PATH=data/radiograph.db
//	./radiograph
//
// Running with the default N0CALL callsign is allowed but the relay
// treats the session as receive-only.
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the feed disconnects,
// workers drain the queue (bounded by ingest.drain_timeout), the HTTP
// server finishes in-flight requests and the database checkpoints.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/radiograph/internal/api"
	"github.com/tomtom215/radiograph/internal/cache"
	"github.com/tomtom215/radiograph/internal/config"
	"github.com/tomtom215/radiograph/internal/database"
	"github.com/tomtom215/radiograph/internal/ingest"
	"github.com/tomtom215/radiograph/internal/logging"
	"github.com/tomtom215/radiograph/internal/parser"
	"github.com/tomtom215/radiograph/internal/stream"
	"github.com/tomtom215/radiograph/internal/supervisor"
	ws "github.com/tomtom215/radiograph/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("server", cfg.AprsAddr()).
		Str("filter", cfg.Aprs.Filter).
		Str("db_path", cfg.Database.Path).
		Msg("starting radiograph")

	if cfg.IsDefaultCallsign() {
		logging.Warn().
			Str("callsign", cfg.Aprs.Callsign).
			Msg("running with the placeholder callsign, feed will be receive-only")
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing database")
		}
	}()

	dedup := cache.New(cfg.Cache.TTL)
	defer dedup.Close()

	hub := ws.NewHub()

	pipeline := ingest.NewPipeline(cfg.Ingest, parser.New(clockwork.NewRealClock()), db, dedup, hub)

	manager := &feedWiring{}
	feed := stream.New(cfg.Aprs, stream.Callbacks{
		OnMessage: pipeline.Enqueue,
		OnValidated: func(verified bool) {
			logging.Info().Bool("verified", verified).Msg("APRS-IS login resolved")
		},
		OnDisconnected: func(err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("feed connection lost")
			}
			manager.NotifyDisconnected()
		},
	})
	manager.Manager = ingest.NewManager(cfg.Ingest, feed, pipeline)

	handler := api.NewHandler(db, db, dedup, hub, cfg.API)
	httpServer := api.NewServer(cfg.Server, api.NewRouter(handler, hub, cfg.API).Setup())

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddDataService(pipeline)
	tree.AddMessagingService(supervisor.NewHubService(hub))
	tree.AddMessagingService(manager.Manager)
	tree.AddAPIService(httpServer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor tree exited")
		os.Exit(1)
	}

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("service missed shutdown timeout")
		}
	}
	logging.Info().Msg("radiograph stopped")
}

// feedWiring breaks the construction cycle between the feed callbacks
// and the manager: the callbacks are handed to stream.New before the
// manager exists.
type feedWiring struct {
	*ingest.Manager
}

func (w *feedWiring) NotifyDisconnected() {
	if w.Manager != nil {
		w.Manager.NotifyDisconnected()
	}
}
