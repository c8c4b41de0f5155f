// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package parser

import (
	"strconv"
	"time"
)

// parsePositionTimestamp resolves a 7-character APRS timestamp against
// the "now" hint. Two layouts exist: "DDHHMM" followed by 'z' (zulu) or
// '/' (station local, treated as UTC here), and "HHMMSS" followed by
// 'h'. Returns nil if the input matches neither.
func parsePositionTimestamp(raw string, now time.Time) *time.Time {
	if len(raw) != 7 {
		return nil
	}
	now = now.UTC()

	switch raw[6] {
	case 'z', '/':
		day, err1 := strconv.Atoi(raw[0:2])
		hour, err2 := strconv.Atoi(raw[2:4])
		min, err3 := strconv.Atoi(raw[4:6])
		if err1 != nil || err2 != nil || err3 != nil {
			return nil
		}
		if day < 1 || day > 31 || hour > 23 || min > 59 {
			return nil
		}
		month := now.Month()
		year := now.Year()
		// A day well ahead of the hint means the packet is from the
		// previous month; time.Date normalizes the year wrap.
		if day > now.Day()+1 {
			month--
		}
		t := time.Date(year, month, day, hour, min, 0, 0, time.UTC)
		return &t

	case 'h':
		hour, err1 := strconv.Atoi(raw[0:2])
		min, err2 := strconv.Atoi(raw[2:4])
		sec, err3 := strconv.Atoi(raw[4:6])
		if err1 != nil || err2 != nil || err3 != nil {
			return nil
		}
		if hour > 23 || min > 59 || sec > 59 {
			return nil
		}
		t := time.Date(now.Year(), now.Month(), now.Day(), hour, min, sec, 0, time.UTC)
		return &t
	}

	return nil
}

// parseMonthDayTimestamp resolves an 8-digit "MMDDHHMM" timestamp, used
// by positionless weather reports, against the "now" hint. A month more
// than one ahead of the hint's is from last year.
func parseMonthDayTimestamp(raw string, now time.Time) *time.Time {
	if len(raw) != 8 {
		return nil
	}
	month, err1 := strconv.Atoi(raw[0:2])
	day, err2 := strconv.Atoi(raw[2:4])
	hour, err3 := strconv.Atoi(raw[4:6])
	min, err4 := strconv.Atoi(raw[6:8])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return nil
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || min > 59 {
		return nil
	}

	now = now.UTC()
	year := now.Year()
	if month > int(now.Month())+1 {
		year--
	}
	t := time.Date(year, time.Month(month), day, hour, min, 0, 0, time.UTC)
	return &t
}
