// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/radiograph/internal/aprs"
	"github.com/tomtom215/radiograph/internal/cache"
	"github.com/tomtom215/radiograph/internal/config"
	"github.com/tomtom215/radiograph/internal/database"
	"github.com/tomtom215/radiograph/internal/validation"
	"github.com/tomtom215/radiograph/internal/websocket"
)

// PacketStore is the read side of the packet store used by handlers.
type PacketStore interface {
	SearchPackets(ctx context.Context, f database.SearchFilter) ([]*aprs.Packet, int64, error)
	GetPacketByID(ctx context.Context, id int64) (*aprs.Packet, error)
}

// HealthPinger checks backend liveness.
type HealthPinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the query API endpoints.
type Handler struct {
	store  PacketStore
	pinger HealthPinger
	dedup  *cache.Cache
	hub    *websocket.Hub
	cfg    config.APIConfig
}

// NewHandler wires the handler dependencies.
func NewHandler(store PacketStore, pinger HealthPinger, dedup *cache.Cache, hub *websocket.Hub, cfg config.APIConfig) *Handler {
	return &Handler{store: store, pinger: pinger, dedup: dedup, hub: hub, cfg: cfg}
}

// Packets handles GET /api/v1/packets: a filtered, paginated search
// ordered newest first.
func (h *Handler) Packets(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, err := parsePacketsRequest(r.URL.Query(), h.cfg)
	if err != nil {
		var verr *validation.RequestValidationError
		if errors.As(err, &verr) {
			rw.ValidationError(verr.Error(), verr.Fields())
			return
		}
		rw.BadRequest(err.Error())
		return
	}

	packets, total, err := h.store.SearchPackets(r.Context(), req.Filter())
	if err != nil {
		if errors.Is(err, aprs.ErrValidation) {
			rw.BadRequest(err.Error())
			return
		}
		rw.DatabaseError(err)
		return
	}

	items := make([]aprs.PacketDTO, len(packets))
	for i, p := range packets {
		items[i] = p.ToDTO()
	}
	rw.Success(BuildPage(items, req.Page, req.PageSize, total))
}

// PacketByID handles GET /api/v1/packets/{id}.
func (h *Handler) PacketByID(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		rw.BadRequest("id must be a positive integer")
		return
	}

	p, err := h.store.GetPacketByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, aprs.ErrNotFound) {
			rw.NotFound("packet not found")
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.Success(p.ToDTO())
}

// healthStatus is the payload of the health endpoint.
type healthStatus struct {
	Status      string  `json:"status"`
	Database    string  `json:"database"`
	Subscribers int     `json:"subscribers"`
	CacheKeys   int64   `json:"cacheKeys"`
	CacheHitPct float64 `json:"cacheHitPct"`
}

// Health handles GET /health. Reports degraded with a 503 when the
// store is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := healthStatus{
		Status:      "ok",
		Database:    "ok",
		Subscribers: h.hub.ClientCount(),
		CacheKeys:   h.dedup.GetStats().TotalKeys,
		CacheHitPct: h.dedup.HitRate(),
	}
	if err := h.pinger.Ping(ctx); err != nil {
		status.Status = "degraded"
		status.Database = "unreachable"
		rw.writeJSON(http.StatusServiceUnavailable, APIResponse{
			Success: false,
			Data:    status,
			Error:   &APIError{Code: ErrCodeServiceUnavailable, Message: "database unreachable"},
			Meta:    rw.meta(),
		})
		return
	}
	rw.Success(status)
}
