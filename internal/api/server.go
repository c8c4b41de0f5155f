// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tomtom215/radiograph/internal/config"
	"github.com/tomtom215/radiograph/internal/logging"
)

// Server runs the HTTP listener as a supervised service.
type Server struct {
	httpServer *http.Server
	cfg        config.ServerConfig
}

// NewServer creates the HTTP server for the given handler tree.
func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Serve listens until ctx is cancelled, then shuts down gracefully
// within the configured timeout. Implements suture.Service.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()
	logging.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("http shutdown incomplete, closing")
			_ = s.httpServer.Close()
		}
		logging.Info().Msg("http server stopped")
		return ctx.Err()
	}
}
