// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package supervisor

import (
	"context"

	"github.com/tomtom215/radiograph/internal/websocket"
)

// HubService adapts the websocket hub run loop to suture.Service.
type HubService struct {
	hub *websocket.Hub
}

// NewHubService wraps the hub.
func NewHubService(hub *websocket.Hub) *HubService {
	return &HubService{hub: hub}
}

// Serve runs the hub until ctx is cancelled.
func (s *HubService) Serve(ctx context.Context) error {
	s.hub.RunWithContext(ctx)
	return ctx.Err()
}

func (s *HubService) String() string {
	return "websocket-hub"
}
