// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package parser

import (
	"fmt"
	"testing"
)

// Formatting a full field set to the wire layout and decoding it must
// recover every value exactly.
func TestWeatherFieldsRoundTrip(t *testing.T) {
	tests := []struct {
		name                               string
		wd, ws, wg, temp, r1, r24, rm, hum int
		press                              int
	}{
		{name: "typical", wd: 90, ws: 10, wg: 15, temp: 72, r1: 1, r24: 10, rm: 20, hum: 50, press: 10135},
		{name: "zeros", wd: 0, ws: 0, wg: 0, temp: 0, r1: 0, r24: 0, rm: 0, hum: 0, press: 0},
		{name: "maxima", wd: 360, ws: 999, wg: 999, temp: 999, r1: 999, r24: 999, rm: 999, hum: 99, press: 99999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := fmt.Sprintf("c%03ds%03dg%03dt%03dr%03dp%03dP%03dh%02db%05d",
				tt.wd, tt.ws, tt.wg, tt.temp, tt.r1, tt.r24, tt.rm, tt.hum, tt.press)

			wx := decodeWeatherFields(body)
			checks := []struct {
				name string
				got  *int
				want int
			}{
				{"wind direction", wx.WindDirection, tt.wd},
				{"wind speed", wx.WindSpeed, tt.ws},
				{"wind gust", wx.WindGust, tt.wg},
				{"temperature", wx.Temperature, tt.temp},
				{"rain 1h", wx.Rain1h, tt.r1},
				{"rain 24h", wx.Rain24h, tt.r24},
				{"rain midnight", wx.RainMidnight, tt.rm},
				{"humidity", wx.Humidity, tt.hum},
				{"pressure", wx.Pressure, tt.press},
			}
			for _, c := range checks {
				if c.got == nil || *c.got != c.want {
					t.Errorf("%s = %v, want %d", c.name, c.got, c.want)
				}
			}
		})
	}
}

func TestWeatherFieldsPartial(t *testing.T) {
	wx := decodeWeatherFields("t072h50")
	if wx.Temperature == nil || *wx.Temperature != 72 {
		t.Errorf("temperature = %v, want 72", wx.Temperature)
	}
	if wx.Humidity == nil || *wx.Humidity != 50 {
		t.Errorf("humidity = %v, want 50", wx.Humidity)
	}
	if wx.WindDirection != nil || wx.WindSpeed != nil || wx.Pressure != nil {
		t.Error("absent fields must stay nil")
	}
}

func TestWeatherFieldsUnreportedDots(t *testing.T) {
	wx := decodeWeatherFields("c...s...g...t072")
	if wx.WindDirection != nil || wx.WindSpeed != nil || wx.WindGust != nil {
		t.Error("dotted runs must stay nil")
	}
	if wx.Temperature == nil || *wx.Temperature != 72 {
		t.Errorf("temperature = %v, want 72", wx.Temperature)
	}
}

func TestWeatherFieldsSlashWindFallback(t *testing.T) {
	wx := decodeWeatherFields("090/010g015t072")
	if wx.WindDirection == nil || *wx.WindDirection != 90 {
		t.Errorf("wind direction = %v, want 90", wx.WindDirection)
	}
	if wx.WindSpeed == nil || *wx.WindSpeed != 10 {
		t.Errorf("wind speed = %v, want 10", wx.WindSpeed)
	}

	// Prefixed fields win over the slash pattern.
	wx = decodeWeatherFields("c045s020 090/010")
	if wx.WindDirection == nil || *wx.WindDirection != 45 {
		t.Errorf("wind direction = %v, want 45", wx.WindDirection)
	}
	if wx.WindSpeed == nil || *wx.WindSpeed != 20 {
		t.Errorf("wind speed = %v, want 20", wx.WindSpeed)
	}
}

func TestWeatherFieldsEmpty(t *testing.T) {
	if decodeWeatherFields("no readings here").HasReading() {
		t.Error("free text must not produce readings")
	}
}
