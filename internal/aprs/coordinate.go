// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package aprs

import (
	"fmt"
	"math"
)

// Coordinate is an immutable WGS84 point. Latitude is bounded to
// [-90, 90] and longitude to [-180, 180]; out-of-range input fails
// construction.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// NewCoordinate validates and constructs a Coordinate.
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return Coordinate{}, fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrValidation, lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return Coordinate{}, fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrValidation, lon)
	}
	return Coordinate{Latitude: lat, Longitude: lon}, nil
}

// AreaCell returns the 1x1 degree grid cell containing the point as
// floor(lat) and floor(lon). Used for area fan-out routing.
func (c Coordinate) AreaCell() (int, int) {
	return int(math.Floor(c.Latitude)), int(math.Floor(c.Longitude))
}

// String formats the coordinate with 6 decimal places, the precision
// produced by the position parser.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}
