// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestSetGet(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Errorf("Get = (%v, %v), want (v, true)", got, ok)
	}

	if _, ok := c.Get("absent"); ok {
		t.Error("absent key should miss")
	}
}

func TestExpiration(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewWithClock(30*time.Second, clock)
	defer c.Close()

	c.Set("fp", struct{}{})
	if !c.Contains("fp") {
		t.Fatal("entry should be present immediately")
	}

	clock.Advance(29 * time.Second)
	if !c.Contains("fp") {
		t.Error("entry should survive within the TTL")
	}

	clock.Advance(2 * time.Second)
	if c.Contains("fp") {
		t.Error("entry should expire after the TTL")
	}
}

func TestSetWithTTLOverridesDefault(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewWithClock(time.Hour, clock)
	defer c.Close()

	c.SetWithTTL("short", 1, time.Second)
	clock.Advance(2 * time.Second)
	if c.Contains("short") {
		t.Error("custom TTL should win over the default")
	}
}

func TestOverwriteRefreshesExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewWithClock(30*time.Second, clock)
	defer c.Close()

	c.Set("fp", struct{}{})
	clock.Advance(20 * time.Second)
	c.Set("fp", struct{}{})
	clock.Advance(20 * time.Second)
	if !c.Contains("fp") {
		t.Error("overwrite should restart the TTL window")
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted key should miss")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
}

func TestStats(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("k", "v")
	c.Get("k")
	c.Get("k")
	c.Get("missing")

	s := c.GetStats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("stats = %+v, want 2 hits 1 miss", s)
	}
	if rate := c.HitRate(); rate < 66.0 || rate > 67.0 {
		t.Errorf("HitRate = %v, want ~66.7", rate)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%10)
				c.Set(key, n)
				c.Get(key)
				c.Contains(key)
			}
		}(i)
	}
	wg.Wait()
}

func TestBackgroundSweep(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewWithClock(time.Second, clock)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)

	// The sweep fires on the cleanup ticker; entries are gone from the
	// map itself, not just masked on read.
	clock.BlockUntil(1)
	clock.Advance(cleanupInterval + time.Second)

	deadline := time.After(2 * time.Second)
	for c.Len() != 0 {
		select {
		case <-deadline:
			t.Fatalf("Len = %d after sweep, want 0", c.Len())
		case <-time.After(10 * time.Millisecond):
		}
	}
}
