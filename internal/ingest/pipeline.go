// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

// Package ingest drives raw feed lines through the pipeline: a bounded
// drop-oldest queue, a worker pool that parses, deduplicates and
// persists each packet, and a connection manager that keeps the feed
// alive. Store writes go through a circuit breaker so a failing
// database sheds load instead of stalling the feed.
package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/radiograph/internal/aprs"
	"github.com/tomtom215/radiograph/internal/config"
	"github.com/tomtom215/radiograph/internal/logging"
	"github.com/tomtom215/radiograph/internal/metrics"
	"github.com/tomtom215/radiograph/internal/parser"
)

const (
	breakerName  = "duckdb-writes"
	storeTimeout = 5 * time.Second
)

// PacketStore persists packets.
type PacketStore interface {
	AddPacket(ctx context.Context, p *aprs.Packet) (*aprs.Packet, error)
}

// Broadcaster fans packets out to live subscribers.
type Broadcaster interface {
	BroadcastPacket(p *aprs.Packet)
}

// DedupCache is the rolling fingerprint window.
type DedupCache interface {
	Contains(key string) bool
	Set(key string, value interface{})
	Len() int
}

// Pipeline is the bounded ingest queue plus its worker pool.
type Pipeline struct {
	cfg     config.IngestConfig
	parser  *parser.Parser
	store   PacketStore
	dedup   DedupCache
	hub     Broadcaster
	breaker *gobreaker.CircuitBreaker[*aprs.Packet]
	queue   chan string
	log     zerolog.Logger
}

// NewPipeline wires the pipeline. Call Serve to start the workers.
func NewPipeline(cfg config.IngestConfig, pr *parser.Parser, store PacketStore, dedup DedupCache, hub Broadcaster) *Pipeline {
	breaker := gobreaker.NewCircuitBreaker[*aprs.Packet](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			logging.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return &Pipeline{
		cfg:     cfg,
		parser:  pr,
		store:   store,
		dedup:   dedup,
		hub:     hub,
		breaker: breaker,
		queue:   make(chan string, cfg.QueueCapacity),
		log:     logging.WithComponent("ingest"),
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// Enqueue admits a raw line, shedding the oldest queued line when the
// queue is full. Never blocks the feed reader.
func (p *Pipeline) Enqueue(line string) {
	metrics.PacketsReceived.Inc()
	for {
		select {
		case p.queue <- line:
			metrics.QueueDepth.Set(float64(len(p.queue)))
			return
		default:
		}
		select {
		case <-p.queue:
			metrics.QueueDropped.Inc()
		default:
			// A worker drained the queue between the two selects;
			// retry the send.
		}
	}
}

// Depth returns the current queue occupancy.
func (p *Pipeline) Depth() int {
	return len(p.queue)
}

// Capacity returns the queue bound.
func (p *Pipeline) Capacity() int {
	return p.cfg.QueueCapacity
}

// Serve runs the worker pool until ctx is cancelled, then drains the
// queue for at most the configured drain timeout. Implements
// suture.Service.
func (p *Pipeline) Serve(ctx context.Context) error {
	p.log.Info().
		Int("workers", p.cfg.Workers).
		Int("capacity", p.cfg.QueueCapacity).
		Msg("pipeline started")

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.worker(ctx, id)
		}(i)
	}
	wg.Wait()

	p.log.Info().Msg("pipeline stopped")
	return ctx.Err()
}

func (p *Pipeline) worker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			p.drain(id)
			return
		case line := <-p.queue:
			p.process(line)
			metrics.QueueDepth.Set(float64(len(p.queue)))
		}
	}
}

// drain processes what is already queued so a shutdown does not discard
// admitted packets, bounded by the drain timeout.
func (p *Pipeline) drain(id int) {
	deadline := time.Now().Add(p.cfg.DrainTimeout)
	for time.Now().Before(deadline) {
		select {
		case line := <-p.queue:
			p.process(line)
		default:
			return
		}
	}
	p.log.Warn().Int("worker", id).Int("remaining", len(p.queue)).Msg("drain timeout, queue not empty")
}

// process runs one line through parse, dedup, persist and broadcast.
// Persistence failures are logged and counted; the packet is still
// broadcast so live subscribers keep their feed.
func (p *Pipeline) process(line string) {
	start := time.Now()
	defer func() {
		metrics.ProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	result, err := p.parser.Parse(line)
	if err != nil {
		metrics.PacketsParseFailed.Inc()
		p.log.Debug().Err(err).Str("line", line).Msg("frame rejected")
		return
	}
	pkt := result.Packet
	if result.Degraded != "" {
		p.log.Debug().
			Str("sender", pkt.Sender.Value).
			Str("reason", result.Degraded).
			Msg("payload degraded to raw")
	}
	metrics.RecordParsed(string(pkt.Type))

	fingerprint := pkt.Fingerprint()
	if p.dedup.Contains(fingerprint) {
		metrics.PacketsDeduplicated.Inc()
		metrics.CacheHits.Inc()
		return
	}
	p.dedup.Set(fingerprint, struct{}{})
	metrics.CacheSize.Set(float64(p.dedup.Len()))

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	stored, err := p.breaker.Execute(func() (*aprs.Packet, error) {
		return p.store.AddPacket(ctx, pkt)
	})
	cancel()

	switch {
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordBreakerResult(breakerName, "rejected")
		p.log.Warn().Str("sender", pkt.Sender.Value).Msg("store unavailable, packet not persisted")
	case err != nil:
		metrics.RecordBreakerResult(breakerName, "failure")
		p.log.Error().Err(err).Str("sender", pkt.Sender.Value).Msg("persist failed")
	default:
		metrics.RecordBreakerResult(breakerName, "success")
		metrics.PacketsPersisted.Inc()
		pkt = stored
	}

	p.hub.BroadcastPacket(pkt)
}
