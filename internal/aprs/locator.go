// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package aprs

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// locatorRe validates a 4-, 6- or 8-character Maidenhead grid locator
// after uppercasing: field pair, square pair, optional subsquare pair,
// optional extended square pair.
var locatorRe = regexp.MustCompile(`^[A-R]{2}[0-9]{2}([A-X]{2}([0-9]{2})?)?$`)

// Grid cell sizes in degrees, longitude x latitude:
//
//	field      20 x 10
//	square      2 x 1
//	subsquare   2/24 x 1/24   (5' x 2.5')
//	extended    2/240 x 1/240
const (
	subsquareLonDeg = 2.0 / 24.0
	subsquareLatDeg = 1.0 / 24.0
	extendedLonDeg  = subsquareLonDeg / 10.0
	extendedLatDeg  = subsquareLatDeg / 10.0
)

// Locator is an immutable Maidenhead grid locator of 4, 6 or 8
// characters, stored uppercase.
type Locator struct {
	value string
}

// ParseLocator validates a grid locator string. Invalid input fails with
// ErrValidation.
func ParseLocator(raw string) (Locator, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if !locatorRe.MatchString(value) {
		return Locator{}, fmt.Errorf("%w: %q is not a valid Maidenhead locator", ErrValidation, raw)
	}
	return Locator{value: value}, nil
}

// Value returns the normalized locator string.
func (l Locator) Value() string {
	return l.value
}

// Precision returns the locator length: 4, 6 or 8.
func (l Locator) Precision() int {
	return len(l.value)
}

// Center converts the locator to the coordinate of its grid-cell center.
func (l Locator) Center() (Coordinate, error) {
	// South-west corner, accumulated per precision level.
	lon := float64(l.value[0]-'A')*20.0 - 180.0
	lat := float64(l.value[1]-'A')*10.0 - 90.0
	lon += float64(l.value[2]-'0') * 2.0
	lat += float64(l.value[3] - '0')

	halfLon, halfLat := 1.0, 0.5
	if len(l.value) >= 6 {
		lon += float64(l.value[4]-'A') * subsquareLonDeg
		lat += float64(l.value[5]-'A') * subsquareLatDeg
		halfLon, halfLat = subsquareLonDeg/2, subsquareLatDeg/2
	}
	if len(l.value) == 8 {
		lon += float64(l.value[6]-'0') * extendedLonDeg
		lat += float64(l.value[7]-'0') * extendedLatDeg
		halfLon, halfLat = extendedLonDeg/2, extendedLatDeg/2
	}

	return NewCoordinate(lat+halfLat, lon+halfLon)
}

// LocatorFromCoordinate encodes a coordinate as a grid locator of the
// given precision (4, 6 or 8 characters). It is the inverse of Center:
// encoding a cell-center coordinate at the same precision recovers the
// original locator.
func LocatorFromCoordinate(c Coordinate, precision int) (Locator, error) {
	if precision != 4 && precision != 6 && precision != 8 {
		return Locator{}, fmt.Errorf("%w: locator precision must be 4, 6 or 8, got %d", ErrValidation, precision)
	}

	lon := c.Longitude + 180.0
	lat := c.Latitude + 90.0
	// The north pole and the antimeridian belong to the last cell.
	lon = math.Min(lon, math.Nextafter(360.0, 0))
	lat = math.Min(lat, math.Nextafter(180.0, 0))

	var b strings.Builder
	b.WriteByte('A' + byte(int(lon/20.0)))
	b.WriteByte('A' + byte(int(lat/10.0)))
	lon = math.Mod(lon, 20.0)
	lat = math.Mod(lat, 10.0)
	b.WriteByte('0' + byte(int(lon/2.0)))
	b.WriteByte('0' + byte(int(lat)))

	if precision >= 6 {
		lon = math.Mod(lon, 2.0)
		lat = math.Mod(lat, 1.0)
		b.WriteByte('A' + byte(int(lon/subsquareLonDeg)))
		b.WriteByte('A' + byte(int(lat/subsquareLatDeg)))
	}
	if precision == 8 {
		lon = math.Mod(lon, subsquareLonDeg)
		lat = math.Mod(lat, subsquareLatDeg)
		b.WriteByte('0' + byte(int(lon/extendedLonDeg)))
		b.WriteByte('0' + byte(int(lat/extendedLatDeg)))
	}

	return Locator{value: b.String()}, nil
}
