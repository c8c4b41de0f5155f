// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/radiograph/internal/aprs"
)

// frameRe splits a TNC2 line into sender, destination-plus-path and
// payload. The destination is everything before the first comma of the
// middle group; the full middle group is the digipeater path.
var frameRe = regexp.MustCompile(`^([^>]+)>([^:]+):(.*)$`)

// Result is the outcome of parsing one line. Packet is always set on
// success; Degraded names the field-level problem that forced the type
// to Unknown, for the caller to log at debug.
type Result struct {
	Packet   *aprs.Packet
	Degraded string
}

// Parser turns raw APRS-IS lines into packets. The clock supplies the
// "now" hint used to resolve partial packet timestamps.
type Parser struct {
	clock clockwork.Clock
}

// New constructs a Parser around the given clock.
func New(clock clockwork.Clock) *Parser {
	return &Parser{clock: clock}
}

// Parse decodes one raw line. Frame-level failures (no TNC2 shape, bad
// sender callsign, oversized line) return an error wrapping
// aprs.ErrFormat or aprs.ErrValidation; everything else produces a
// packet, possibly degraded to type Unknown.
func (p *Parser) Parse(line string) (Result, error) {
	m := frameRe.FindStringSubmatch(line)
	if m == nil {
		return Result{}, fmt.Errorf("%w: line does not match SENDER>DEST:payload", aprs.ErrFormat)
	}

	sender, err := aprs.ParseCallsign(m[1])
	if err != nil {
		return Result{}, fmt.Errorf("%w: sender: %v", aprs.ErrFormat, err)
	}

	pkt, err := aprs.NewPacket(sender, line, p.clock.Now())
	if err != nil {
		return Result{}, err
	}

	destPath := m[2]
	pkt.SetPath(destPath)
	rawDest := destPath
	if i := strings.IndexByte(destPath, ','); i >= 0 {
		rawDest = destPath[:i]
	}
	if dest, err := aprs.ParseCallsign(rawDest); err == nil {
		pkt.Destination = &dest
	}

	payload := m[3]
	if payload == "" {
		return Result{Packet: pkt, Degraded: "empty payload"}, nil
	}

	res := Result{Packet: pkt}
	switch payload[0] {
	case '!', '=':
		res.Degraded = p.decodePosition(pkt, payload[1:], aprs.TypePositionWithoutTimestamp)
	case '/', '@':
		res.Degraded = p.decodeTimestampedPosition(pkt, payload[1:])
	case ':':
		pkt.Type = aprs.TypeMessage
		pkt.SetComment(payload[1:])
	case '>':
		pkt.Type = aprs.TypeStatus
		pkt.SetComment(payload[1:])
	case '[':
		res.Degraded = p.decodeGridBeacon(pkt, payload[1:])
	case '_':
		res.Degraded = p.decodePositionlessWeather(pkt, payload[1:])
	case '`', '\'', 0x1c, 0x1d:
		res.Degraded = p.decodeMicE(pkt, rawDest, payload)
	case ';':
		pkt.Type = aprs.TypeObject
		pkt.SetComment(payload[1:])
	case ')':
		pkt.Type = aprs.TypeItem
		pkt.SetComment(payload[1:])
	case 'T':
		pkt.Type = aprs.TypeTelemetry
		pkt.SetComment(payload[1:])
	default:
		pkt.SetComment(payload)
		res.Degraded = fmt.Sprintf("unrecognised data type indicator %q", payload[0])
	}

	return res, nil
}

// decodeGridBeacon handles "[GRID]comment" beacons: the grid locator
// resolves to its cell-center coordinate.
func (p *Parser) decodeGridBeacon(pkt *aprs.Packet, body string) string {
	end := strings.IndexByte(body, ']')
	if end < 0 {
		pkt.SetComment("[" + body)
		return "grid beacon missing closing bracket"
	}

	loc, err := aprs.ParseLocator(body[:end])
	if err != nil {
		pkt.SetComment("[" + body)
		return "grid beacon locator: " + err.Error()
	}
	center, err := loc.Center()
	if err != nil {
		pkt.SetComment("[" + body)
		return "grid beacon center: " + err.Error()
	}

	pkt.Type = aprs.TypePositionWithoutTimestamp
	pkt.Position = &center
	pkt.SetComment(strings.TrimSpace(body[end+1:]))
	return ""
}

// decodePositionlessWeather handles "_MMDDHHMM<fields>" reports.
func (p *Parser) decodePositionlessWeather(pkt *aprs.Packet, body string) string {
	pkt.Type = aprs.TypeWeather

	degraded := ""
	rest := body
	if len(body) >= 8 {
		if ts := parseMonthDayTimestamp(body[:8], p.clock.Now()); ts != nil {
			pkt.SentTime = ts
			rest = body[8:]
		} else {
			degraded = "weather report timestamp unparseable"
		}
	} else {
		degraded = "weather report shorter than MMDDHHMM timestamp"
	}

	pkt.Weather = decodeWeatherFields(rest)
	return degraded
}
