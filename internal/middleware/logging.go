// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/radiograph/internal/logging"
)

// slowRequestThreshold promotes a completed-request line to a warning.
const slowRequestThreshold = time.Second

// RequestLogger logs one line per completed request with the correlated
// request ID. Normal requests log at debug; slow ones at warn.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)
		evt := logging.Ctx(r.Context()).Debug()
		if duration > slowRequestThreshold {
			evt = logging.Ctx(r.Context()).Warn()
		}
		evt.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Str("remote", r.RemoteAddr).
			Msg("request completed")
	})
}
