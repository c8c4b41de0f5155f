// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package websocket

import (
	"context"
	"fmt"
	"sort"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/radiograph/internal/aprs"
	"github.com/tomtom215/radiograph/internal/logging"
	"github.com/tomtom215/radiograph/internal/metrics"
)

// broadcastBuffer bounds packets waiting for hub dispatch. The pipeline
// never blocks on the hub: overflow is shed.
const broadcastBuffer = 256

// Hub routes packets to subscribed clients by group. Registration and
// broadcast flow through the run loop; subscription changes take effect
// synchronously so a completed subscribe is observed by every later
// broadcast.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	groups  map[string]map[string]struct{} // group -> member connection ids

	register   chan *Client
	unregister chan *Client
	broadcast  chan *aprs.Packet

	log zerolog.Logger
}

// NewHub creates a hub. Call RunWithContext to start dispatching.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		groups:     make(map[string]map[string]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *aprs.Packet, broadcastBuffer),
		log:        logging.WithComponent("websocket-hub"),
	}
}

// RunWithContext processes registrations and broadcasts until ctx is
// cancelled, then closes every client.
func (h *Hub) RunWithContext(ctx context.Context) {
	h.log.Info().Msg("hub started")

	for {
		// Shutdown wins over pending work.
		select {
		case <-ctx.Done():
			h.closeAllClients()
			h.log.Info().Msg("hub stopped")
			return
		default:
		}

		select {
		case <-ctx.Done():
			h.closeAllClients()
			h.log.Info().Msg("hub stopped")
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client.id, "disconnect")

		case packet := <-h.broadcast:
			h.dispatch(packet)
		}
	}
}

// BroadcastPacket queues a packet for fan-out. Never blocks: when the
// hub is saturated the packet is shed and counted.
func (h *Hub) BroadcastPacket(p *aprs.Packet) {
	select {
	case h.broadcast <- p:
		metrics.PacketsBroadcast.Inc()
	default:
		metrics.WSErrors.WithLabelValues("broadcast_overflow").Inc()
		h.log.Warn().Str("sender", p.Sender.Value).Msg("broadcast queue full, packet shed")
	}
}

// Subscribe joins a client to a group. Effective immediately: a
// broadcast dispatched after Subscribe returns reaches the client.
func (h *Hub) Subscribe(clientID, group string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[clientID]; !ok {
		return fmt.Errorf("%w: unknown client %s", aprs.ErrNotFound, clientID)
	}
	members, ok := h.groups[group]
	if !ok {
		members = make(map[string]struct{})
		h.groups[group] = members
	}
	if _, ok := members[clientID]; !ok {
		members[clientID] = struct{}{}
		metrics.WSSubscriptions.Inc()
	}
	return nil
}

// Unsubscribe removes a client from a group. Unsubscribing from a group
// the client never joined is a no-op.
func (h *Hub) Unsubscribe(clientID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		return
	}
	if _, ok := members[clientID]; ok {
		delete(members, clientID)
		metrics.WSSubscriptions.Dec()
	}
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// ClientCount returns the number of connected clients. Used by /health.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Inc()
	h.log.Info().Str("client_id", c.id).Int("total", total).Msg("client registered")
}

func (h *Hub) removeClient(id, reason string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, id)
	for group, members := range h.groups {
		if _, ok := members[id]; ok {
			delete(members, id)
			metrics.WSSubscriptions.Dec()
		}
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	total := len(h.clients)
	h.mu.Unlock()

	close(c.send)
	metrics.WSConnections.Dec()
	h.log.Info().Str("client_id", id).Str("reason", reason).Int("total", total).Msg("client removed")
}

// dispatch serialises the packet once and delivers it once per matching
// group, so a client subscribed to several matching groups receives
// duplicates. Clients whose send buffer is full are dropped.
func (h *Hub) dispatch(p *aprs.Packet) {
	dto := p.ToDTO()
	payload, err := json.Marshal(Message{Type: MessageReceivePacket, Data: &dto})
	if err != nil {
		metrics.WSErrors.WithLabelValues("marshal").Inc()
		h.log.Error().Err(err).Msg("packet marshal failed")
		return
	}

	groups := PacketGroups(p)
	var slow []string

	h.mu.RLock()
	for _, group := range groups {
		members := h.groups[group]
		if len(members) == 0 {
			continue
		}
		ids := make([]string, 0, len(members))
		for id := range members {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			client, ok := h.clients[id]
			if !ok {
				continue
			}
			select {
			case client.send <- payload:
				metrics.WSMessagesSent.Inc()
			default:
				slow = append(slow, id)
			}
		}
	}
	h.mu.RUnlock()

	for _, id := range slow {
		metrics.WSErrors.WithLabelValues("slow_consumer").Inc()
		h.removeClient(id, "send buffer full")
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
		metrics.WSConnections.Dec()
	}
	for group, members := range h.groups {
		metrics.WSSubscriptions.Sub(float64(len(members)))
		delete(h.groups, group)
	}
}
