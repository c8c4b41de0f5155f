// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/radiograph/internal/aprs"
	"github.com/tomtom215/radiograph/internal/config"
	"github.com/tomtom215/radiograph/internal/database"
	"github.com/tomtom215/radiograph/internal/validation"
)

// PacketsRequest is the validated query for the packet search endpoint.
type PacketsRequest struct {
	Sender   string `validate:"omitempty,max=15,aprs_callsign"`
	Type     string
	From     *time.Time
	To       *time.Time
	Page     int `validate:"min=1"`
	PageSize int `validate:"min=1"`
}

// parsePacketsRequest reads and validates the search query parameters,
// applying the configured paging defaults.
func parsePacketsRequest(query url.Values, cfg config.APIConfig) (PacketsRequest, error) {
	req := PacketsRequest{
		Sender: strings.TrimSpace(query.Get("sender")),
		Type:   strings.TrimSpace(query.Get("type")),
	}

	var err error
	if req.Page, err = intParam(query, "page", 1); err != nil {
		return req, err
	}
	if req.PageSize, err = intParam(query, "pageSize", cfg.DefaultPageSize); err != nil {
		return req, err
	}
	if req.PageSize > cfg.MaxPageSize {
		return req, fmt.Errorf("pageSize must be at most %d", cfg.MaxPageSize)
	}

	if req.From, err = timeParam(query, "from"); err != nil {
		return req, err
	}
	if req.To, err = timeParam(query, "to"); err != nil {
		return req, err
	}
	if req.From != nil && req.To != nil && req.From.After(*req.To) {
		return req, fmt.Errorf("from must not be after to")
	}

	if req.Type != "" && !aprs.ValidPacketType(req.Type) {
		return req, fmt.Errorf("type %q is not a known packet type", req.Type)
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		return req, verr
	}
	return req, nil
}

// Filter converts the request to the store's search filter. The sender
// is upper-cased so queries match the normalised stored callsigns.
func (req PacketsRequest) Filter() database.SearchFilter {
	return database.SearchFilter{
		Sender:   strings.ToUpper(req.Sender),
		Type:     req.Type,
		From:     req.From,
		To:       req.To,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
}

func intParam(query url.Values, name string, fallback int) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

func timeParam(query url.Values, name string) (*time.Time, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an RFC3339 timestamp", name)
	}
	t = t.UTC()
	return &t, nil
}

// PacketsPage is the payload of the packet search endpoint.
type PacketsPage struct {
	Items      []aprs.PacketDTO `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalCount int64            `json:"totalCount"`
	TotalPages int64            `json:"totalPages"`
	HasNext    bool             `json:"hasNext"`
	HasPrev    bool             `json:"hasPrev"`
}

// BuildPage assembles the paging envelope. Pure, so the paging laws are
// unit-testable: totalPages = ceil(total/pageSize), hasNext iff a later
// page exists, hasPrev iff page > 1.
func BuildPage(items []aprs.PacketDTO, page, pageSize int, total int64) PacketsPage {
	if items == nil {
		items = []aprs.PacketDTO{}
	}
	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	return PacketsPage{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
		HasNext:    int64(page) < totalPages,
		HasPrev:    page > 1,
	}
}
