// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

// Package stream implements the APRS-IS TCP client: dial, the login
// handshake, and a line-oriented read loop that hands packet lines to a
// callback. Server comment lines (starting with '#') are consumed here;
// the logresp line resolves whether the login was verified.
package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/radiograph/internal/aprs"
	"github.com/tomtom215/radiograph/internal/config"
	"github.com/tomtom215/radiograph/internal/logging"
	"github.com/tomtom215/radiograph/internal/metrics"
)

// Software identification sent in the login line.
const (
	AppName    = "radiograph"
	AppVersion = "1.0.0"
)

const (
	dialTimeout  = 10 * time.Second
	loginTimeout = 10 * time.Second

	// APRS-IS lines are short; anything beyond this is a broken feed.
	maxLineSize = 4096
)

// Callbacks receive stream events. All of them are invoked from the
// client's read goroutine; nil callbacks are skipped.
type Callbacks struct {
	// OnMessage receives each non-blank packet line, CR/LF stripped.
	OnMessage func(line string)

	// OnValidated fires once per connection when the server's logresp
	// line resolves the login as verified or receive-only.
	OnValidated func(verified bool)

	// OnDisconnected fires when the connection ends for any reason.
	// err is nil for a requested disconnect.
	OnDisconnected func(err error)
}

// Client is an APRS-IS feed connection. A client reconnects by calling
// Connect again after OnDisconnected.
type Client struct {
	cfg       config.AprsConfig
	callbacks Callbacks
	log       zerolog.Logger

	mu        sync.Mutex
	conn      net.Conn
	connected bool
	manual    bool
}

// New creates a disconnected client.
func New(cfg config.AprsConfig, callbacks Callbacks) *Client {
	return &Client{
		cfg:       cfg,
		callbacks: callbacks,
		log:       logging.WithComponent("stream"),
	}
}

// Connect dials the configured server, writes the login line and starts
// the read loop. Connecting an already-connected client fails with
// aprs.ErrInvalidState.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return fmt.Errorf("%w: already connected", aprs.ErrInvalidState)
	}

	addr := fmt.Sprintf("%s:%d", c.cfg.Server, c.cfg.Port)
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	_ = conn.SetWriteDeadline(time.Now().Add(loginTimeout))
	if _, err := conn.Write([]byte(c.loginLine())); err != nil {
		_ = conn.Close()
		return fmt.Errorf("write login: %w", err)
	}
	_ = conn.SetWriteDeadline(time.Time{})

	c.conn = conn
	c.connected = true
	c.manual = false
	metrics.StreamConnects.Inc()
	c.log.Info().Str("server", addr).Str("callsign", c.cfg.Callsign).Msg("connected to APRS-IS")

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			c.closeConn()
		case <-done:
		}
	}()
	go c.readLoop(ctx, conn, done)
	return nil
}

// Disconnect closes the connection. Safe to call at any time; a
// disconnected client is a no-op.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return
	}
	c.manual = true
	c.connected = false
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// IsConnected reports whether the feed connection is up.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// loginLine renders the APRS-IS login handshake. The filter clause is
// omitted when no filter is configured.
func (c *Client) loginLine() string {
	line := fmt.Sprintf("user %s pass %s vers %s %s", c.cfg.Callsign, c.cfg.Password, AppName, AppVersion)
	if c.cfg.Filter != "" {
		line += " filter " + c.cfg.Filter
	}
	return line + "\r\n"
}

func (c *Client) closeConn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *Client) readLoop(ctx context.Context, conn net.Conn, done chan<- struct{}) {
	defer close(done)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		metrics.StreamLinesReceived.Inc()

		if strings.HasPrefix(line, "#") {
			c.handleServerLine(line)
			continue
		}
		if c.callbacks.OnMessage != nil {
			c.callbacks.OnMessage(line)
		}
	}

	err := scanner.Err()
	reason := "error"
	c.mu.Lock()
	switch {
	case c.manual:
		reason, err = "manual", nil
	case ctx.Err() != nil:
		reason, err = "cancelled", ctx.Err()
	case err == nil:
		reason, err = "eof", io.EOF
	}
	// Only clear state belonging to this connection; the client may
	// already have been reconnected.
	if c.conn == conn {
		c.connected = false
		c.conn = nil
	}
	c.mu.Unlock()

	metrics.StreamDisconnects.WithLabelValues(reason).Inc()
	metrics.StreamLoginVerified.Set(0)
	c.log.Info().Str("reason", reason).Err(err).Msg("disconnected from APRS-IS")

	if c.callbacks.OnDisconnected != nil {
		c.callbacks.OnDisconnected(err)
	}
}

// handleServerLine consumes a '#' comment line. The logresp line carries
// the login verdict; "unverified" must be checked before "verified"
// because the former contains the latter.
func (c *Client) handleServerLine(line string) {
	c.log.Debug().Str("line", line).Msg("server comment")

	lower := strings.ToLower(line)
	if !strings.Contains(lower, "logresp") {
		return
	}

	verified := false
	switch {
	case strings.Contains(lower, "unverified"):
		verified = false
	case strings.Contains(lower, "verified"):
		verified = true
	}

	if verified {
		metrics.StreamLoginVerified.Set(1)
		c.log.Info().Msg("login verified")
	} else {
		metrics.StreamLoginVerified.Set(0)
		c.log.Warn().Msg("login unverified, feed is receive-only")
	}
	if c.callbacks.OnValidated != nil {
		c.callbacks.OnValidated(verified)
	}
}
