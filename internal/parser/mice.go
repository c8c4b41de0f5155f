// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package parser

import (
	"strconv"

	"github.com/tomtom215/radiograph/internal/aprs"
)

// Mic-E splits the position across the frame: the 6-character
// destination address carries the latitude digits plus the N/S,
// longitude-offset and E/W flags, and the first bytes of the
// information field carry the longitude magnitude, speed, course and
// symbol, each stored with a +28 offset.

// decodeMicE decodes a Mic-E frame. The payload includes the leading
// type byte. Any decode failure leaves the packet as Unknown with the
// payload preserved as the comment.
func (p *Parser) decodeMicE(pkt *aprs.Packet, rawDest, payload string) string {
	lat, ok := micELatitude(rawDest)
	if !ok {
		pkt.SetComment(payload)
		return "mic-e destination does not decode to a latitude"
	}
	if len(payload) < 9 {
		pkt.SetComment(payload)
		return "mic-e information field shorter than 9 bytes"
	}

	lonOffset := 0
	if rawDest[4] >= 'P' && rawDest[4] <= 'Z' {
		lonOffset = 100
	}
	west := rawDest[5] >= 'P' && rawDest[5] <= 'Z'

	deg := int(payload[1]) - 28 + lonOffset
	switch {
	case deg >= 180 && deg <= 189:
		deg -= 80
	case deg >= 190 && deg <= 199:
		deg -= 190
	}
	min := int(payload[2]) - 28
	if min >= 60 {
		min %= 60
	}
	hun := int(payload[3]) - 28

	lon := float64(deg) + (float64(min)+float64(hun)/100.0)/60.0
	if west {
		lon = -lon
	}

	pos, err := aprs.NewCoordinate(round6(lat), round6(lon))
	if err != nil {
		pkt.SetComment(payload)
		return "mic-e position: " + err.Error()
	}

	spTens := int(payload[4]) - 28
	shared := int(payload[5]) - 28
	dc := int(payload[6]) - 28
	speed := float64(spTens*10 + shared/10)
	course := (shared%10)*100 + dc

	pkt.Type = aprs.TypeMicE
	pkt.Position = &pos
	pkt.SetMotion(&speed, &course)
	pkt.SetSymbol(payload[8], payload[7])
	if len(payload) > 9 {
		pkt.SetComment(payload[9:])
	}
	return ""
}

// micELatitude decodes the 6-character destination into signed degrees.
// Each character maps to a latitude digit; character 3 selects the
// hemisphere. Ambiguity characters (K, L, Z) map to a space digit,
// which fails the numeric parse and yields a decode miss.
func micELatitude(dest string) (float64, bool) {
	if len(dest) != 6 {
		return 0, false
	}

	digits := make([]byte, 6)
	for i := 0; i < 6; i++ {
		d, ok := micEDigit(dest[i])
		if !ok {
			return 0, false
		}
		digits[i] = d
	}

	deg, err1 := strconv.Atoi(string(digits[0:2]))
	min, err2 := strconv.Atoi(string(digits[2:4]))
	hun, err3 := strconv.Atoi(string(digits[4:6]))
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}

	lat := float64(deg) + (float64(min)+float64(hun)/100.0)/60.0
	south := (dest[3] >= '0' && dest[3] <= '9') || dest[3] == 'L'
	if south {
		lat = -lat
	}
	return lat, true
}

// micEDigit maps one destination character to its latitude digit.
func micEDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c, true
	case c >= 'A' && c <= 'J':
		return '0' + (c - 'A'), true
	case c >= 'P' && c <= 'Y':
		return '0' + (c - 'P'), true
	case c == 'K' || c == 'L' || c == 'Z':
		return ' ', true
	}
	return 0, false
}
