// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

// Package aprs defines the domain model shared by the parser, the ingestion
// pipeline, the store and the API: callsigns, geographic coordinates,
// Maidenhead grid locators, weather readings and the Packet aggregate.
//
// All value objects are immutable after construction and validate their
// input. Construction failures wrap ErrValidation so callers can classify
// them with errors.Is.
package aprs
