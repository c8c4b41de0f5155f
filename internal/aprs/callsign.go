// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package aprs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// callsignRe matches BASE or BASE-SSID after uppercasing. The base is 2-6
// alphanumerics; the SSID is 1-2 digits further range-checked to 0-15.
var callsignRe = regexp.MustCompile(`^([A-Z0-9]{2,6})(?:-([0-9]{1,2}))?$`)

// Callsign is an immutable amateur-radio station identifier in the form
// BASE or BASE-SSID. Two callsigns are equal iff their full values match.
type Callsign struct {
	// Value is the normalized full callsign, e.g. "N0CALL-9".
	Value string
	// Base is the callsign without the SSID suffix, e.g. "N0CALL".
	Base string
	// SSID is the secondary station identifier, 0 when absent.
	SSID int
}

// ParseCallsign validates and normalizes a raw callsign. Input is
// uppercased; the full value must be 3-15 characters. Invalid input fails
// with ErrValidation.
func ParseCallsign(raw string) (Callsign, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if len(value) < 3 || len(value) > 15 {
		return Callsign{}, fmt.Errorf("%w: callsign %q must be 3-15 characters", ErrValidation, raw)
	}

	m := callsignRe.FindStringSubmatch(value)
	if m == nil {
		return Callsign{}, fmt.Errorf("%w: callsign %q does not match BASE or BASE-SSID", ErrValidation, raw)
	}

	ssid := 0
	if m[2] != "" {
		n, err := strconv.Atoi(m[2])
		if err != nil || n < 0 || n > 15 {
			return Callsign{}, fmt.Errorf("%w: callsign %q SSID must be 0-15", ErrValidation, raw)
		}
		ssid = n
	}

	return Callsign{Value: value, Base: m[1], SSID: ssid}, nil
}

// Equal reports whether two callsigns refer to the same station,
// comparing full values including the SSID.
func (c Callsign) Equal(other Callsign) bool {
	return c.Value == other.Value
}

// String returns the full callsign value.
func (c Callsign) String() string {
	return c.Value
}

// IsZero reports whether the callsign is the empty value.
func (c Callsign) IsZero() bool {
	return c.Value == ""
}
