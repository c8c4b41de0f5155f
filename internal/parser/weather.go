// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package parser

import (
	"regexp"
	"strconv"

	"github.com/tomtom215/radiograph/internal/aprs"
)

// Weather fields are fixed-length numeric runs keyed by a prefix
// character. The run may contain dots (unreported digits), in which
// case the field stays unset.
var (
	wxWindDirRe  = regexp.MustCompile(`c([0-9.]{3})`)
	wxWindSpdRe  = regexp.MustCompile(`s([0-9.]{3})`)
	wxGustRe     = regexp.MustCompile(`g([0-9.]{3})`)
	wxTempRe     = regexp.MustCompile(`t([0-9.]{3})`)
	wxRain1hRe   = regexp.MustCompile(`r([0-9.]{3})`)
	wxRain24hRe  = regexp.MustCompile(`p([0-9.]{3})`)
	wxRainMidRe  = regexp.MustCompile(`P([0-9.]{3})`)
	wxHumidityRe = regexp.MustCompile(`h([0-9.]{2})`)
	wxPressureRe = regexp.MustCompile(`b([0-9.]{5})`)

	// Wind as "DDD/SSS", the fallback when c/s prefixes are absent.
	wxWindSlashRe = regexp.MustCompile(`([0-9]{3})/([0-9]{3})`)
)

// decodeWeatherFields scans a weather body (or position comment) for
// prefixed fields. Always returns a record; absent fields are nil.
func decodeWeatherFields(body string) *aprs.WeatherData {
	wx := &aprs.WeatherData{
		WindDirection: wxField(wxWindDirRe, body),
		WindSpeed:     wxField(wxWindSpdRe, body),
		WindGust:      wxField(wxGustRe, body),
		Temperature:   wxField(wxTempRe, body),
		Rain1h:        wxField(wxRain1hRe, body),
		Rain24h:       wxField(wxRain24hRe, body),
		RainMidnight:  wxField(wxRainMidRe, body),
		Humidity:      wxField(wxHumidityRe, body),
		Pressure:      wxField(wxPressureRe, body),
	}

	if wx.WindDirection == nil && wx.WindSpeed == nil {
		if m := wxWindSlashRe.FindStringSubmatch(body); m != nil {
			wx.WindDirection = wxInt(m[1])
			wx.WindSpeed = wxInt(m[2])
		}
	}
	return wx
}

func wxField(re *regexp.Regexp, body string) *int {
	m := re.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	return wxInt(m[1])
}

// wxInt parses a fixed-width numeric run, integer-cast. Runs carrying
// dots fail the parse and report nil.
func wxInt(s string) *int {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	v := int(f)
	return &v
}
