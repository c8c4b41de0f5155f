// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package parser

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/radiograph/internal/aprs"
)

// parseHint is the pinned "now" for timestamp resolution in tests.
var parseHint = time.Date(2026, time.August, 10, 12, 0, 0, 0, time.UTC)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	return New(clockwork.NewFakeClockAt(parseHint))
}

func TestParseUncompressedPosition(t *testing.T) {
	p := newTestParser(t)
	line := "N0CALL>APRS,WIDE1-1:!4903.50N/07201.75W-Test Packet"

	res, err := p.Parse(line)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	pkt := res.Packet
	if res.Degraded != "" {
		t.Errorf("unexpected degradation: %s", res.Degraded)
	}
	if pkt.Sender.Value != "N0CALL" {
		t.Errorf("sender = %q, want N0CALL", pkt.Sender.Value)
	}
	if pkt.Destination == nil || pkt.Destination.Value != "APRS" {
		t.Errorf("destination = %v, want APRS", pkt.Destination)
	}
	if pkt.Path != "APRS,WIDE1-1" {
		t.Errorf("path = %q, want APRS,WIDE1-1", pkt.Path)
	}
	if pkt.Type != aprs.TypePositionWithoutTimestamp {
		t.Errorf("type = %s, want PositionWithoutTimestamp", pkt.Type)
	}
	if pkt.Position == nil {
		t.Fatal("position missing")
	}
	if math.Abs(pkt.Position.Latitude-49.058333) > 1e-6 {
		t.Errorf("latitude = %v, want 49.058333", pkt.Position.Latitude)
	}
	if math.Abs(pkt.Position.Longitude-(-72.029167)) > 1e-6 {
		t.Errorf("longitude = %v, want -72.029167", pkt.Position.Longitude)
	}
	if pkt.SymbolTable == nil || *pkt.SymbolTable != "/" || pkt.SymbolCode == nil || *pkt.SymbolCode != "-" {
		t.Errorf("symbol = %v %v, want / -", pkt.SymbolTable, pkt.SymbolCode)
	}
	if pkt.Comment == nil || *pkt.Comment != "Test Packet" {
		t.Errorf("comment = %v, want Test Packet", pkt.Comment)
	}
	if pkt.RawContent != line {
		t.Errorf("raw content mutated: %q", pkt.RawContent)
	}
}

func TestParseTimestampedPosition(t *testing.T) {
	p := newTestParser(t)

	res, err := p.Parse("N0CALL>APRS:/092345z4903.50N/07201.75W-Test")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	pkt := res.Packet
	if pkt.Type != aprs.TypePositionWithTimestamp {
		t.Errorf("type = %s, want PositionWithTimestamp", pkt.Type)
	}
	if pkt.SentTime == nil {
		t.Fatal("sent time missing")
	}
	st := pkt.SentTime.UTC()
	if st.Day() != 9 || st.Hour() != 23 || st.Minute() != 45 {
		t.Errorf("sent time = %v, want day 9 23:45 UTC", st)
	}
	if st.Month() != parseHint.Month() || st.Year() != parseHint.Year() {
		t.Errorf("sent time month/year = %v, want hint's %v %d", st, parseHint.Month(), parseHint.Year())
	}
	if pkt.Position == nil {
		t.Fatal("position missing")
	}
}

func TestParseMicE(t *testing.T) {
	p := newTestParser(t)
	// Destination 111111: all latitude digits 1, index 3 selects South,
	// index 4 no longitude offset, index 5 East. Information bytes
	// 28+10/28+20/28+50 encode lon 10 deg 20.50 min; speed and course
	// bytes are the zero offset.
	payload := "`" + string([]byte{28 + 10, 28 + 20, 28 + 50, 28, 28, 28}) + "-/"

	res, err := p.Parse("N0CALL>111111:" + payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	pkt := res.Packet
	if res.Degraded != "" {
		t.Errorf("unexpected degradation: %s", res.Degraded)
	}
	if pkt.Type != aprs.TypeMicE {
		t.Errorf("type = %s, want MicE", pkt.Type)
	}
	if pkt.Position == nil {
		t.Fatal("position missing")
	}
	wantLat := -(11.0 + 11.11/60.0)
	wantLon := 10.0 + 20.50/60.0
	if math.Abs(pkt.Position.Latitude-wantLat) > 1e-6 {
		t.Errorf("latitude = %v, want %v", pkt.Position.Latitude, wantLat)
	}
	if math.Abs(pkt.Position.Longitude-wantLon) > 1e-6 {
		t.Errorf("longitude = %v, want %v", pkt.Position.Longitude, wantLon)
	}
	if pkt.SymbolTable == nil || *pkt.SymbolTable != "/" || pkt.SymbolCode == nil || *pkt.SymbolCode != "-" {
		t.Errorf("symbol = %v %v, want / -", pkt.SymbolTable, pkt.SymbolCode)
	}
	if pkt.Speed == nil || *pkt.Speed != 0 {
		t.Errorf("speed = %v, want 0", pkt.Speed)
	}
	if pkt.Course == nil || *pkt.Course != 0 {
		t.Errorf("course = %v, want 0", pkt.Course)
	}
}

func TestParseMicEDecodeMiss(t *testing.T) {
	p := newTestParser(t)

	// Ambiguity digit Z in the destination: latitude digits go
	// non-numeric, so the decode misses and the type stays Unknown.
	res, err := p.Parse("N0CALL>1111Z1:`" + string([]byte{38, 48, 78, 28, 28, 28}) + "-/")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Packet.Type != aprs.TypeUnknown {
		t.Errorf("type = %s, want Unknown", res.Packet.Type)
	}
	if res.Degraded == "" {
		t.Error("expected a degradation reason")
	}

	// Truncated information field.
	res, err = p.Parse("N0CALL>111111:`ab")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Packet.Type != aprs.TypeUnknown {
		t.Errorf("type = %s, want Unknown", res.Packet.Type)
	}
}

func TestParsePositionlessWeather(t *testing.T) {
	p := newTestParser(t)

	res, err := p.Parse("N0CALL>APRS:_01151230c090s010g015t072r001p010P020h50b10135")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	pkt := res.Packet
	if pkt.Type != aprs.TypeWeather {
		t.Errorf("type = %s, want Weather", pkt.Type)
	}
	if pkt.SentTime == nil {
		t.Fatal("sent time missing")
	}
	st := pkt.SentTime.UTC()
	if st.Month() != time.January || st.Day() != 15 || st.Hour() != 12 || st.Minute() != 30 {
		t.Errorf("sent time = %v, want Jan 15 12:30", st)
	}

	wx := pkt.Weather
	if !wx.HasReading() {
		t.Fatal("weather readings missing")
	}
	checks := []struct {
		name string
		got  *int
		want int
	}{
		{"wind direction", wx.WindDirection, 90},
		{"wind speed", wx.WindSpeed, 10},
		{"wind gust", wx.WindGust, 15},
		{"temperature", wx.Temperature, 72},
		{"rain 1h", wx.Rain1h, 1},
		{"rain 24h", wx.Rain24h, 10},
		{"rain midnight", wx.RainMidnight, 20},
		{"humidity", wx.Humidity, 50},
		{"pressure", wx.Pressure, 10135},
	}
	for _, c := range checks {
		if c.got == nil || *c.got != c.want {
			t.Errorf("%s = %v, want %d", c.name, c.got, c.want)
		}
	}
}

func TestParseSimpleTypes(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name        string
		line        string
		wantType    aprs.PacketType
		wantComment string
	}{
		{name: "message", line: "N0CALL>APRS::K1ABC    :hello{1", wantType: aprs.TypeMessage, wantComment: "K1ABC    :hello{1"},
		{name: "status", line: "N0CALL>APRS:>On the air", wantType: aprs.TypeStatus, wantComment: "On the air"},
		{name: "object", line: "N0CALL>APRS:;LEADER   *092345z4903.50N/07201.75W>", wantType: aprs.TypeObject, wantComment: "LEADER   *092345z4903.50N/07201.75W>"},
		{name: "item", line: "N0CALL>APRS:)AID#!4903.50N/07201.75W!", wantType: aprs.TypeItem, wantComment: "AID#!4903.50N/07201.75W!"},
		{name: "telemetry", line: "N0CALL>APRS:T#005,199,000,255,073,123,01101001", wantType: aprs.TypeTelemetry, wantComment: "#005,199,000,255,073,123,01101001"},
		{name: "unknown indicator", line: "N0CALL>APRS:?APRS?", wantType: aprs.TypeUnknown, wantComment: "?APRS?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if res.Packet.Type != tt.wantType {
				t.Errorf("type = %s, want %s", res.Packet.Type, tt.wantType)
			}
			if res.Packet.Comment == nil || *res.Packet.Comment != tt.wantComment {
				t.Errorf("comment = %v, want %q", res.Packet.Comment, tt.wantComment)
			}
		})
	}
}

func TestParseGridBeacon(t *testing.T) {
	p := newTestParser(t)

	res, err := p.Parse("N0CALL>APRS:[JO91]op Tomek")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	pkt := res.Packet
	if pkt.Type != aprs.TypePositionWithoutTimestamp {
		t.Errorf("type = %s, want PositionWithoutTimestamp", pkt.Type)
	}
	if pkt.Position == nil {
		t.Fatal("position missing")
	}
	// JO91 cell center.
	if math.Abs(pkt.Position.Latitude-51.5) > 1e-9 || math.Abs(pkt.Position.Longitude-19.0) > 1e-9 {
		t.Errorf("position = %v, want (51.5, 19)", pkt.Position)
	}
	if pkt.Comment == nil || *pkt.Comment != "op Tomek" {
		t.Errorf("comment = %v, want op Tomek", pkt.Comment)
	}

	res, err = p.Parse("N0CALL>APRS:[ZZ91]bad")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Packet.Type != aprs.TypeUnknown {
		t.Errorf("bad locator type = %s, want Unknown", res.Packet.Type)
	}
}

func TestParseCourseSpeedExtension(t *testing.T) {
	p := newTestParser(t)

	res, err := p.Parse("N0CALL>APRS:!4903.50N/07201.75W>088/036mobile")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	pkt := res.Packet
	if pkt.Course == nil || *pkt.Course != 88 {
		t.Errorf("course = %v, want 88", pkt.Course)
	}
	if pkt.Speed == nil || *pkt.Speed != 36 {
		t.Errorf("speed = %v, want 36", pkt.Speed)
	}
	if pkt.Comment == nil || *pkt.Comment != "mobile" {
		t.Errorf("comment = %v, want mobile", pkt.Comment)
	}
}

func TestParseWeatherOverlayUpgrade(t *testing.T) {
	p := newTestParser(t)

	// Weather symbol with significant readings upgrades the type.
	res, err := p.Parse("N0CALL>APRS:!4903.50N/07201.75W_090/010g015t072")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Packet.Type != aprs.TypeWeather {
		t.Errorf("type = %s, want Weather", res.Packet.Type)
	}
	if res.Packet.Weather.Temperature == nil || *res.Packet.Weather.Temperature != 72 {
		t.Errorf("temperature = %v, want 72", res.Packet.Weather.Temperature)
	}
	if res.Packet.Position == nil {
		t.Error("weather-upgraded packet keeps its position")
	}

	// Heuristic trigger in a comment with no significant readings stays
	// a position packet.
	res, err = p.Parse("N0CALL>APRS:!4903.50N/07201.75W-at0ll camping")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Packet.Type != aprs.TypePositionWithoutTimestamp {
		t.Errorf("type = %s, want PositionWithoutTimestamp", res.Packet.Type)
	}
}

func TestParseDegradedPositions(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name string
		line string
	}{
		{name: "malformed latitude", line: "N0CALL>APRS:!49XX.50N/07201.75W-x"},
		{name: "bad hemisphere", line: "N0CALL>APRS:!4903.50N/07201.75Q-x"},
		{name: "short body", line: "N0CALL>APRS:!4903.50N"},
		{name: "bad timestamp", line: "N0CALL>APRS:/09zz45z4903.50N/07201.75W-x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse should degrade, not fail: %v", err)
			}
			if res.Packet.Type != aprs.TypeUnknown {
				t.Errorf("type = %s, want Unknown", res.Packet.Type)
			}
			if res.Degraded == "" {
				t.Error("expected a degradation reason")
			}
			if res.Packet.RawContent != tt.line {
				t.Error("raw content must survive degradation")
			}
		})
	}
}

func TestParseFrameFailures(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name string
		line string
	}{
		{name: "no frame shape", line: "this is not aprs"},
		{name: "missing payload separator", line: "N0CALL>APRS,WIDE1-1"},
		{name: "empty sender", line: ">APRS:!4903.50N/07201.75W-x"},
		{name: "invalid sender", line: "N0!CALL>APRS:>hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.line)
			if err == nil {
				t.Fatal("expected a frame-level error")
			}
			if !errors.Is(err, aprs.ErrFormat) {
				t.Errorf("error = %v, want ErrFormat", err)
			}
		})
	}
}
