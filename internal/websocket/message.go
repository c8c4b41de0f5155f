// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package websocket

import (
	"fmt"
	"math"
	"strings"

	"github.com/tomtom215/radiograph/internal/aprs"
)

// Client command actions.
const (
	ActionSubscribeAll        = "subscribe_all"
	ActionUnsubscribeAll      = "unsubscribe_all"
	ActionSubscribeCallsign   = "subscribe_callsign"
	ActionUnsubscribeCallsign = "unsubscribe_callsign"
	ActionSubscribeArea       = "subscribe_area"
	ActionUnsubscribeArea     = "unsubscribe_area"
)

// Server message types.
const (
	MessageReceivePacket = "receive_packet"
	MessageError         = "error"
)

// The firehose group every packet is routed to.
const GroupAll = "all_packets"

// Advisory radius bounds for area subscriptions, in kilometres.
const (
	minRadiusKm = 1
	maxRadiusKm = 1000
)

// Command is one JSON subscription command from a client.
type Command struct {
	Action    string   `json:"action"`
	Callsign  string   `json:"callsign,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	RadiusKm  *float64 `json:"radiusKm,omitempty"`
}

// Message is one JSON message from the server to a client. Data is set
// for receive_packet, Message for error.
type Message struct {
	Type    string          `json:"type"`
	Data    *aprs.PacketDTO `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// GroupCallsign returns the routing group for a callsign, normalised to
// upper case so "sp3xyz" and "SP3XYZ" share a group.
func GroupCallsign(callsign string) string {
	return "callsign:" + strings.ToUpper(strings.TrimSpace(callsign))
}

// GroupArea returns the routing group for the 1x1 degree cell containing
// the given point.
func GroupArea(lat, lon float64) string {
	return fmt.Sprintf("area:%d_%d", int(math.Floor(lat)), int(math.Floor(lon)))
}

// PacketGroups computes every group a packet routes to: the firehose,
// the sender's full callsign, the sender's base when an SSID is present,
// and the area cell when the packet carries a position.
func PacketGroups(p *aprs.Packet) []string {
	groups := []string{GroupAll, GroupCallsign(p.Sender.Value)}
	if p.Sender.SSID != 0 {
		groups = append(groups, GroupCallsign(p.Sender.Base))
	}
	if p.Position != nil {
		latCell, lonCell := p.Position.AreaCell()
		groups = append(groups, fmt.Sprintf("area:%d_%d", latCell, lonCell))
	}
	return groups
}
