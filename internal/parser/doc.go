// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

// Package parser decodes TNC2-framed APRS lines into domain packets.
//
// The parser is pure: no I/O, no logging, deterministic for a pinned
// clock. Malformed fields inside a well-formed frame degrade the packet
// type to Unknown instead of rejecting the line; only a frame that does
// not split into sender, destination-path and payload fails outright.
// All patterns are RE2, so matching is linear in the input regardless of
// content.
package parser
