// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package ingest

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/tomtom215/radiograph/internal/config"
	"github.com/tomtom215/radiograph/internal/logging"
)

// FeedClient is the upstream feed connection managed by the Manager.
type FeedClient interface {
	Connect(ctx context.Context) error
	Disconnect()
	IsConnected() bool
}

// Manager keeps the feed connection alive: it reconnects after failures
// and disconnections, and periodically checks queue pressure. Implements
// suture.Service.
type Manager struct {
	cfg      config.IngestConfig
	client   FeedClient
	pipeline *Pipeline
	clock    clockwork.Clock
	wake     chan struct{}
	log      zerolog.Logger
}

// NewManager creates a manager for the given feed client.
func NewManager(cfg config.IngestConfig, client FeedClient, pipeline *Pipeline) *Manager {
	return NewManagerWithClock(cfg, client, pipeline, clockwork.NewRealClock())
}

// NewManagerWithClock creates a manager on an explicit clock.
func NewManagerWithClock(cfg config.IngestConfig, client FeedClient, pipeline *Pipeline, clock clockwork.Clock) *Manager {
	return &Manager{
		cfg:      cfg,
		client:   client,
		pipeline: pipeline,
		clock:    clock,
		wake:     make(chan struct{}, 1),
		log:      logging.WithComponent("ingest-manager"),
	}
}

// NotifyDisconnected nudges the manager to reconnect without waiting
// out the supervise interval. Wire it as the feed's disconnect callback.
func (m *Manager) NotifyDisconnected() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Serve supervises the feed connection until ctx is cancelled.
func (m *Manager) Serve(ctx context.Context) error {
	m.log.Info().Msg("feed supervision started")

	for {
		interval := m.cfg.SuperviseInterval
		if !m.client.IsConnected() {
			if err := m.client.Connect(ctx); err != nil {
				m.log.Warn().Err(err).Msg("feed connect failed, will retry")
				interval = m.cfg.ReconnectInterval
			}
		}

		if depth, capacity := m.pipeline.Depth(), m.pipeline.Capacity(); depth*2 > capacity {
			m.log.Warn().Int("depth", depth).Int("capacity", capacity).Msg("ingest queue under pressure")
		}

		select {
		case <-ctx.Done():
			m.client.Disconnect()
			m.log.Info().Msg("feed supervision stopped")
			return ctx.Err()
		case <-m.clock.After(interval):
		case <-m.wake:
		}
	}
}
