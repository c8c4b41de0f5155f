// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

// Package websocket implements the real-time packet fan-out: a hub
// holding a flat group -> subscriber registry, and per-connection
// clients that interpret subscription commands and deliver
// receive_packet messages.
//
// Groups are all_packets, callsign:<UPPER> and
// area:<floor(lat)>_<floor(lon)>. A packet is sent once per matching
// group, so a subscriber joined to overlapping groups legitimately
// receives duplicates. Delivery never blocks the hub: a subscriber
// whose send buffer is full is dropped.
package websocket
