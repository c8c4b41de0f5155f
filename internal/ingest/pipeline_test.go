// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/radiograph/internal/aprs"
	"github.com/tomtom215/radiograph/internal/cache"
	"github.com/tomtom215/radiograph/internal/config"
	"github.com/tomtom215/radiograph/internal/logging"
	"github.com/tomtom215/radiograph/internal/parser"
)

//nolint:gochecknoinits // keep test output clean
func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

type fakeStore struct {
	mu      sync.Mutex
	packets []*aprs.Packet
	calls   int
	err     error
	nextID  int64
}

func (s *fakeStore) AddPacket(_ context.Context, p *aprs.Packet) (*aprs.Packet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	s.nextID++
	p.ID = s.nextID
	s.packets = append(s.packets, p)
	return p, nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.packets)
}

func (s *fakeStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *fakeStore) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

type fakeHub struct {
	mu      sync.Mutex
	packets []*aprs.Packet
}

func (h *fakeHub) BroadcastPacket(p *aprs.Packet) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.packets = append(h.packets, p)
}

func (h *fakeHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.packets)
}

func testCfg() config.IngestConfig {
	return config.IngestConfig{
		QueueCapacity:     100,
		Workers:           2,
		ReconnectInterval: 5 * time.Second,
		SuperviseInterval: 30 * time.Second,
		DrainTimeout:      time.Second,
	}
}

func newTestPipeline(t *testing.T, cfg config.IngestConfig, clock clockwork.Clock) (*Pipeline, *fakeStore, *fakeHub, *cache.Cache) {
	t.Helper()
	dedup := cache.NewWithClock(30*time.Second, clock)
	t.Cleanup(dedup.Close)
	store := &fakeStore{}
	hub := &fakeHub{}
	return NewPipeline(cfg, parser.New(clock), store, dedup, hub), store, hub, dedup
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestProcessPersistsAndBroadcasts(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC))
	p, store, hub, _ := newTestPipeline(t, testCfg(), clock)

	p.process("SP3XYZ-7>APRS,TCPIP*:!5215.00N/02100.00E>mobile")

	if store.count() != 1 {
		t.Fatalf("persisted = %d, want 1", store.count())
	}
	if hub.count() != 1 {
		t.Fatalf("broadcast = %d, want 1", hub.count())
	}
	if store.packets[0].ID == 0 {
		t.Error("broadcast packet should carry the assigned identity")
	}
}

func TestDedupWindow(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC))
	p, store, hub, _ := newTestPipeline(t, testCfg(), clock)

	line := "SP3XYZ-7>APRS,TCPIP*:>hello"

	// A duplicate inside the 30 second window is dropped before the
	// store and the hub.
	p.process(line)
	p.process(line)
	if store.count() != 1 || hub.count() != 1 {
		t.Fatalf("persisted/broadcast = %d/%d, want 1/1", store.count(), hub.count())
	}

	// After the window elapses the same line is a fresh packet.
	clock.Advance(31 * time.Second)
	p.process(line)
	if store.count() != 2 {
		t.Errorf("persisted = %d, want 2 after window expiry", store.count())
	}
}

func TestProcessRejectsBadFrame(t *testing.T) {
	clock := clockwork.NewFakeClock()
	p, store, hub, _ := newTestPipeline(t, testCfg(), clock)

	p.process("this is not a TNC2 frame")

	if store.callCount() != 0 || hub.count() != 0 {
		t.Error("rejected frames must not reach the store or the hub")
	}
}

func TestPersistFailureStillBroadcasts(t *testing.T) {
	clock := clockwork.NewFakeClock()
	p, store, hub, _ := newTestPipeline(t, testCfg(), clock)
	store.setErr(errors.New("disk full"))

	p.process("SP3XYZ-7>APRS:>status")

	if store.count() != 0 {
		t.Error("packet should not be persisted")
	}
	if hub.count() != 1 {
		t.Error("live subscribers should still receive the packet")
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	clock := clockwork.NewFakeClock()
	p, store, _, _ := newTestPipeline(t, testCfg(), clock)
	store.setErr(errors.New("database gone"))

	// Distinct lines so dedup never interferes.
	for i := 0; i < 8; i++ {
		p.process(fmt.Sprintf("SP3XYZ-7>APRS:>msg %d", i))
	}

	// Five consecutive failures trip the breaker; later packets are
	// rejected without touching the store.
	if store.callCount() != 5 {
		t.Errorf("store calls = %d, want 5 before the breaker opens", store.callCount())
	}
}

func TestEnqueueDropsOldest(t *testing.T) {
	cfg := testCfg()
	cfg.QueueCapacity = 2
	clock := clockwork.NewFakeClock()
	p, _, _, _ := newTestPipeline(t, cfg, clock)

	p.Enqueue("first")
	p.Enqueue("second")
	p.Enqueue("third")

	if p.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", p.Depth())
	}
	if got := <-p.queue; got != "second" {
		t.Errorf("head = %q, want %q (oldest shed)", got, "second")
	}
	if got := <-p.queue; got != "third" {
		t.Errorf("next = %q, want %q", got, "third")
	}
}

func TestServeProcessesQueue(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC))
	p, store, _, _ := newTestPipeline(t, testCfg(), clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = p.Serve(ctx)
		close(done)
	}()

	for i := 0; i < 10; i++ {
		p.Enqueue(fmt.Sprintf("SP3XYZ-7>APRS:>msg %d", i))
	}
	waitFor(t, func() bool { return store.count() == 10 })

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not stop")
	}
}

func TestShutdownDrainsQueue(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC))
	p, store, _, _ := newTestPipeline(t, testCfg(), clock)

	for i := 0; i < 5; i++ {
		p.Enqueue(fmt.Sprintf("SP3XYZ-7>APRS:>queued %d", i))
	}

	// Workers started under a cancelled context still drain what was
	// admitted.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve error = %v, want context.Canceled", err)
	}
	if store.count() != 5 {
		t.Errorf("persisted = %d, want 5 after drain", store.count())
	}
}
