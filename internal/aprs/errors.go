// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

// errors.go - Domain error kinds
//
// These sentinels classify failures across package boundaries. Wrap them
// with fmt.Errorf("...: %w", ...) and test with errors.Is.
package aprs

import "errors"

var (
	// ErrValidation indicates bad input to a public contract (value object
	// construction, API query parameters, subscription arguments).
	ErrValidation = errors.New("validation failed")

	// ErrFormat indicates an unparseable TNC2 frame. Field-level problems
	// inside a well-formed frame degrade the packet type instead.
	ErrFormat = errors.New("unparseable frame")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a state conflict with an existing entity.
	ErrConflict = errors.New("conflict")

	// ErrInvalidState indicates an operation is not valid in the current
	// state, e.g. connecting an already-connected stream client.
	ErrInvalidState = errors.New("invalid state")

	// ErrInternal indicates an unexpected failure.
	ErrInternal = errors.New("internal error")
)
