// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package websocket

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"

	"github.com/tomtom215/radiograph/internal/logging"
	"github.com/tomtom215/radiograph/internal/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum size of a subscription command from the peer.
	maxCommandSize = 1024

	// Per-client send buffer. A client that falls this far behind the
	// feed is dropped.
	sendBufferSize = 64
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one websocket connection. The read pump interprets
// subscription commands; the write pump drains the send buffer filled
// by the hub.
type Client struct {
	id   string
	hub  *Hub
	conn *gorilla.Conn
	send chan []byte
}

// ServeWS upgrades an HTTP request to a websocket connection and
// registers the resulting client with the hub.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		metrics.WSErrors.WithLabelValues("upgrade").Inc()
		logging.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump reads subscription commands until the connection closes,
// then unregisters the client. One reader per connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxCommandSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if gorilla.IsUnexpectedCloseError(err, gorilla.CloseGoingAway, gorilla.CloseNormalClosure) {
				metrics.WSErrors.WithLabelValues("read").Inc()
				logging.Debug().Err(err).Str("client_id", c.id).Msg("websocket read failed")
			}
			return
		}
		metrics.WSMessagesReceived.Inc()

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.sendError("malformed command")
			continue
		}
		if err := c.handleCommand(cmd); err != nil {
			c.sendError(err.Error())
		}
	}
}

// handleCommand validates and applies one subscription command. A
// validation failure is reported to the client and leaves existing
// subscriptions untouched.
func (c *Client) handleCommand(cmd Command) error {
	switch cmd.Action {
	case ActionSubscribeAll:
		return c.hub.Subscribe(c.id, GroupAll)

	case ActionUnsubscribeAll:
		c.hub.Unsubscribe(c.id, GroupAll)
		return nil

	case ActionSubscribeCallsign:
		if strings.TrimSpace(cmd.Callsign) == "" {
			return fmt.Errorf("callsign is required")
		}
		return c.hub.Subscribe(c.id, GroupCallsign(cmd.Callsign))

	case ActionUnsubscribeCallsign:
		if strings.TrimSpace(cmd.Callsign) == "" {
			return fmt.Errorf("callsign is required")
		}
		c.hub.Unsubscribe(c.id, GroupCallsign(cmd.Callsign))
		return nil

	case ActionSubscribeArea:
		if err := validateArea(cmd, true); err != nil {
			return err
		}
		return c.hub.Subscribe(c.id, GroupArea(*cmd.Latitude, *cmd.Longitude))

	case ActionUnsubscribeArea:
		if err := validateArea(cmd, false); err != nil {
			return err
		}
		c.hub.Unsubscribe(c.id, GroupArea(*cmd.Latitude, *cmd.Longitude))
		return nil

	default:
		return fmt.Errorf("unknown action %q", cmd.Action)
	}
}

// validateArea checks the coordinates of an area command. The radius is
// required only on subscribe; routing is by 1x1 degree cell, so the
// radius bounds are advisory.
func validateArea(cmd Command, radiusRequired bool) error {
	if cmd.Latitude == nil || cmd.Longitude == nil {
		return fmt.Errorf("latitude and longitude are required")
	}
	if *cmd.Latitude < -90 || *cmd.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", *cmd.Latitude)
	}
	if *cmd.Longitude < -180 || *cmd.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", *cmd.Longitude)
	}
	if radiusRequired {
		if cmd.RadiusKm == nil {
			return fmt.Errorf("radiusKm is required")
		}
		if *cmd.RadiusKm < minRadiusKm || *cmd.RadiusKm > maxRadiusKm {
			return fmt.Errorf("radiusKm %v out of range [%d, %d]", *cmd.RadiusKm, minRadiusKm, maxRadiusKm)
		}
	}
	return nil
}

// sendError delivers a protocol error message. Best effort: dropped if
// the send buffer is full.
func (c *Client) sendError(msg string) {
	payload, err := json.Marshal(Message{Type: MessageError, Message: msg})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// writePump drains the send buffer and keeps the connection alive with
// pings. One writer per connection; exits when the hub closes the send
// channel or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(gorilla.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(gorilla.TextMessage, payload); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(gorilla.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
