// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package aprs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// PacketType classifies a decoded APRS packet. Stored as the enum name
// string in the database and the JSON DTO.
type PacketType string

// Packet types produced by the parser.
const (
	TypePositionWithoutTimestamp PacketType = "PositionWithoutTimestamp"
	TypePositionWithTimestamp    PacketType = "PositionWithTimestamp"
	TypeMessage                  PacketType = "Message"
	TypeTelemetry                PacketType = "Telemetry"
	TypeStatus                   PacketType = "Status"
	TypeObject                   PacketType = "Object"
	TypeItem                     PacketType = "Item"
	TypeWeather                  PacketType = "Weather"
	TypeMicE                     PacketType = "MicE"
	TypeUnknown                  PacketType = "Unknown"
)

// ValidPacketType reports whether s is one of the enumerated type names.
func ValidPacketType(s string) bool {
	switch PacketType(s) {
	case TypePositionWithoutTimestamp, TypePositionWithTimestamp, TypeMessage,
		TypeTelemetry, TypeStatus, TypeObject, TypeItem, TypeWeather,
		TypeMicE, TypeUnknown:
		return true
	}
	return false
}

// Motion bounds for the GPS-glitch filter. Values outside these ranges
// are dropped to nil during construction rather than rejected.
const (
	maxSpeedKnots = 3500.0
	maxCourseDeg  = 360
)

// Content limits enforced on construction.
const (
	maxPathLen = 100
	maxRawLen  = 1024
)

// Packet is the aggregate root for one received APRS packet. Packets are
// created by the parser, optionally persisted and broadcast, and never
// mutated thereafter.
type Packet struct {
	// ID is the store-assigned identity; zero until persisted.
	ID int64

	Sender      Callsign
	Destination *Callsign
	Path        string
	Type        PacketType
	Position    *Coordinate
	Speed       *float64 // knots
	Course      *int     // degrees
	Weather     *WeatherData
	SentTime    *time.Time // reconstructed from packet timestamp + receipt hint
	ReceivedAt  time.Time  // wall-clock instant of construction, UTC
	RawContent  string     // original line, never mutated
	Comment     *string
	SymbolTable *string // single character
	SymbolCode  *string // single character
}

// NewPacket constructs a packet for a raw line received at the given
// instant. The sender is required; the raw content must be non-empty and
// at most 1024 characters. The type defaults to Unknown until the parser
// classifies the payload.
func NewPacket(sender Callsign, rawContent string, receivedAt time.Time) (*Packet, error) {
	if sender.IsZero() {
		return nil, fmt.Errorf("%w: packet sender is required", ErrValidation)
	}
	if rawContent == "" {
		return nil, fmt.Errorf("%w: packet raw content is required", ErrValidation)
	}
	if len(rawContent) > maxRawLen {
		return nil, fmt.Errorf("%w: packet raw content exceeds %d characters", ErrValidation, maxRawLen)
	}
	return &Packet{
		Sender:     sender,
		Type:       TypeUnknown,
		ReceivedAt: receivedAt.UTC(),
		RawContent: rawContent,
	}, nil
}

// SetPath records the digipeater path, truncated to 100 characters.
func (p *Packet) SetPath(path string) {
	if len(path) > maxPathLen {
		path = path[:maxPathLen]
	}
	p.Path = path
}

// SetMotion applies the GPS-glitch filter: speed outside [0, 3500] knots
// and course outside [0, 360] degrees are silently dropped to nil.
func (p *Packet) SetMotion(speed *float64, course *int) {
	p.Speed, p.Course = nil, nil
	if speed != nil && *speed >= 0 && *speed <= maxSpeedKnots {
		v := *speed
		p.Speed = &v
	}
	if course != nil && *course >= 0 && *course <= maxCourseDeg {
		v := *course
		p.Course = &v
	}
}

// SetSymbol records the display symbol pair.
func (p *Packet) SetSymbol(table, code byte) {
	t, c := string(table), string(code)
	p.SymbolTable = &t
	p.SymbolCode = &c
}

// SetComment records the free-text comment. Empty comments stay nil.
func (p *Packet) SetComment(comment string) {
	if comment == "" {
		p.Comment = nil
		return
	}
	p.Comment = &comment
}

// Fingerprint returns the dedup key for this packet: the first 64 bits
// of SHA-256 over "<sender>:<raw content>", rendered as 16 hex digits.
// Identical (sender, raw) pairs always collide; differing pairs do not.
func (p *Packet) Fingerprint() string {
	sum := sha256.Sum256([]byte(p.Sender.Value + ":" + p.RawContent))
	return hex.EncodeToString(sum[:8])
}
