// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package aprs

// WeatherData is an immutable weather report decoded from a packet.
// Every field is optional; nil means the station did not report it.
// Units follow the APRS specification: speeds in mph, temperature in
// degrees Fahrenheit, rain in hundredths of an inch, pressure in tenths
// of a millibar.
type WeatherData struct {
	WindDirection *int // degrees, 0-360
	WindSpeed     *int // mph
	WindGust      *int // mph
	Temperature   *int // deg F
	Rain1h        *int // hundredths of inch, last hour
	Rain24h       *int // hundredths of inch, last 24 hours
	RainMidnight  *int // hundredths of inch since midnight
	Humidity      *int // percent, 0-100
	Pressure      *int // tenths of mbar
}

// HasReading reports whether any field carries a value.
func (w *WeatherData) HasReading() bool {
	if w == nil {
		return false
	}
	return w.WindDirection != nil || w.WindSpeed != nil || w.WindGust != nil ||
		w.Temperature != nil || w.Rain1h != nil || w.Rain24h != nil ||
		w.RainMidnight != nil || w.Humidity != nil || w.Pressure != nil
}

// IsSignificant reports whether the reading carries a temperature or a
// wind speed. Position packets with a weather overlay upgrade to the
// Weather type only when this holds, so stray matches in free-text
// comments do not reclassify the packet.
func (w *WeatherData) IsSignificant() bool {
	if w == nil {
		return false
	}
	return w.Temperature != nil || w.WindSpeed != nil
}
