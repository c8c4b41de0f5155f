// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

// Package cache provides the thread-safe in-memory TTL cache backing
// packet deduplication. Expired entries are dropped lazily on read and
// swept by a background loop.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// How often the background sweep removes expired entries.
const cleanupInterval = time.Minute

// Entry is a cached item with its expiration instant.
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Cache is a thread-safe in-memory cache with per-entry TTL.
type Cache struct {
	clock   clockwork.Clock
	ttl     time.Duration
	done    chan struct{}
	closeMu sync.Once

	mu      sync.RWMutex
	entries map[string]Entry

	statsMu sync.Mutex
	stats   Stats
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	TotalKeys int64
}

// New creates a cache with the given default TTL and starts the
// background sweep. Call Close to stop it.
func New(ttl time.Duration) *Cache {
	return NewWithClock(ttl, clockwork.NewRealClock())
}

// NewWithClock creates a cache on an explicit clock, so tests can
// advance time deterministically.
func NewWithClock(ttl time.Duration, clock clockwork.Clock) *Cache {
	c := &Cache{
		clock:   clock,
		ttl:     ttl,
		done:    make(chan struct{}),
		entries: make(map[string]Entry),
	}
	go c.cleanupLoop()
	return c
}

// Get returns the value for key if present and unexpired. An expired
// entry is removed and counted as a miss.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.bumpMisses()
		return nil, false
	}
	if c.clock.Now().After(entry.ExpiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.bumpMisses()
		c.bumpEvictions(1)
		return nil, false
	}

	c.statsMu.Lock()
	c.stats.Hits++
	c.statsMu.Unlock()
	return entry.Data, true
}

// Contains reports whether key is present and unexpired, without
// returning the value. This is the dedup-filter lookup.
func (c *Cache) Contains(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with an explicit TTL, overwriting
// any existing entry.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = Entry{Data: value, ExpiresAt: c.clock.Now().Add(ttl)}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.TotalKeys = total
	c.statsMu.Unlock()
}

// Delete removes key. Safe to call for absent keys.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.bumpEvictions(1)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	evicted := int64(len(c.entries))
	c.entries = make(map[string]Entry)
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.Evictions += evicted
	c.stats.TotalKeys = 0
	c.statsMu.Unlock()
}

// Len returns the number of entries, expired ones included until the
// next sweep.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a snapshot of the counters.
func (c *Cache) GetStats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// HitRate returns the hit percentage since startup.
func (c *Cache) HitRate() float64 {
	s := c.GetStats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total) * 100.0
}

// Close stops the background sweep. Idempotent.
func (c *Cache) Close() {
	c.closeMu.Do(func() { close(c.done) })
}

func (c *Cache) cleanupLoop() {
	ticker := c.clock.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.Chan():
			c.cleanup()
		}
	}
}

func (c *Cache) cleanup() {
	now := c.clock.Now()

	c.mu.Lock()
	evicted := int64(0)
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.Evictions += evicted
	c.stats.TotalKeys = total
	c.statsMu.Unlock()
}

func (c *Cache) bumpMisses() {
	c.statsMu.Lock()
	c.stats.Misses++
	c.statsMu.Unlock()
}

func (c *Cache) bumpEvictions(n int64) {
	c.statsMu.Lock()
	c.stats.Evictions += n
	c.statsMu.Unlock()
}
