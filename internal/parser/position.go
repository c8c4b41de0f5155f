// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tomtom215/radiograph/internal/aprs"
)

// positionRe matches an uncompressed position body after any timestamp:
// latitude "DDMM.hhN", symbol table, longitude "DDDMM.hhW", symbol code,
// trailing comment.
var positionRe = regexp.MustCompile(`^([0-9 .NS]{8})(.)([0-9 .EW]{9})(.)(.*)$`)

// courseSpeedRe matches the "CCC/SSS" extension at the start of a
// position comment: course in degrees, speed in knots.
var courseSpeedRe = regexp.MustCompile(`^([0-9]{3})/([0-9]{3})`)

// Position packets carrying this symbol code are weather stations.
const weatherSymbolCode = '_'

// decodePosition parses an uncompressed position body and classifies the
// packet as posType, upgrading to Weather when a significant weather
// overlay is present. Returns a degradation reason on failure.
func (p *Parser) decodePosition(pkt *aprs.Packet, body string, posType aprs.PacketType) string {
	m := positionRe.FindStringSubmatch(body)
	if m == nil {
		pkt.SetComment(body)
		return "position body does not match DDMM.hhN/DDDMM.hhW layout"
	}

	lat, err := parseLatitude(m[1])
	if err != nil {
		pkt.SetComment(body)
		return "latitude: " + err.Error()
	}
	lon, err := parseLongitude(m[3])
	if err != nil {
		pkt.SetComment(body)
		return "longitude: " + err.Error()
	}
	pos, err := aprs.NewCoordinate(lat, lon)
	if err != nil {
		pkt.SetComment(body)
		return "position: " + err.Error()
	}

	pkt.Type = posType
	pkt.Position = &pos
	pkt.SetSymbol(m[2][0], m[4][0])

	comment := m[5]
	if cs := courseSpeedRe.FindStringSubmatch(comment); cs != nil {
		course, _ := strconv.Atoi(cs[1])
		speed, _ := strconv.Atoi(cs[2])
		spd := float64(speed)
		pkt.SetMotion(&spd, &course)
		comment = comment[len(cs[0]):]
	}
	pkt.SetComment(strings.TrimSpace(comment))

	if hasWeatherOverlay(m[4][0], comment) {
		if wx := decodeWeatherFields(comment); wx.IsSignificant() {
			pkt.Type = aprs.TypeWeather
			pkt.Weather = wx
		}
	}
	return ""
}

// decodeTimestampedPosition consumes a 7-char timestamp then decodes the
// rest as an uncompressed position. A missing or malformed timestamp
// degrades the packet to Unknown.
func (p *Parser) decodeTimestampedPosition(pkt *aprs.Packet, body string) string {
	if len(body) < 7 {
		pkt.SetComment(body)
		return "timestamped position shorter than DDHHMMz timestamp"
	}
	ts := parsePositionTimestamp(body[:7], p.clock.Now())
	if ts == nil {
		pkt.SetComment(body)
		return "position timestamp unparseable"
	}
	pkt.SentTime = ts
	return p.decodePosition(pkt, body[7:], aprs.TypePositionWithTimestamp)
}

// hasWeatherOverlay reports whether a position comment should be probed
// for weather fields: the station uses the weather symbol, or the
// comment carries wind-gust/temperature prefixes.
func hasWeatherOverlay(symbolCode byte, comment string) bool {
	return symbolCode == weatherSymbolCode ||
		strings.Contains(comment, "g0") || strings.Contains(comment, "t0")
}

// parseLatitude decodes "DDMM.hhN" to signed degrees, rounded to 6
// decimal places.
func parseLatitude(raw string) (float64, error) {
	if len(raw) != 8 {
		return 0, fmt.Errorf("%w: latitude %q must be 8 characters", aprs.ErrFormat, raw)
	}
	hemi := raw[7]
	if hemi != 'N' && hemi != 'S' {
		return 0, fmt.Errorf("%w: latitude hemisphere %q must be N or S", aprs.ErrFormat, hemi)
	}
	deg, err := strconv.Atoi(raw[:2])
	if err != nil {
		return 0, fmt.Errorf("%w: latitude degrees %q", aprs.ErrFormat, raw[:2])
	}
	min, err := strconv.ParseFloat(raw[2:7], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: latitude minutes %q", aprs.ErrFormat, raw[2:7])
	}
	v := float64(deg) + min/60.0
	if hemi == 'S' {
		v = -v
	}
	return round6(v), nil
}

// parseLongitude decodes "DDDMM.hhW" to signed degrees, rounded to 6
// decimal places.
func parseLongitude(raw string) (float64, error) {
	if len(raw) != 9 {
		return 0, fmt.Errorf("%w: longitude %q must be 9 characters", aprs.ErrFormat, raw)
	}
	hemi := raw[8]
	if hemi != 'E' && hemi != 'W' {
		return 0, fmt.Errorf("%w: longitude hemisphere %q must be E or W", aprs.ErrFormat, hemi)
	}
	deg, err := strconv.Atoi(raw[:3])
	if err != nil {
		return 0, fmt.Errorf("%w: longitude degrees %q", aprs.ErrFormat, raw[:3])
	}
	min, err := strconv.ParseFloat(raw[3:8], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: longitude minutes %q", aprs.ErrFormat, raw[3:8])
	}
	v := float64(deg) + min/60.0
	if hemi == 'W' {
		v = -v
	}
	return round6(v), nil
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
