// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package validation

import (
	"strings"
	"testing"
)

type searchRequest struct {
	Page     int    `validate:"min=1"`
	PageSize int    `validate:"min=1,max=1000"`
	Sender   string `validate:"omitempty,aprs_callsign"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		req       searchRequest
		wantErr   bool
		wantField string
	}{
		{name: "valid", req: searchRequest{Page: 1, PageSize: 100}},
		{name: "valid with sender", req: searchRequest{Page: 1, PageSize: 100, Sender: "SP3XYZ-7"}},
		{name: "lower case sender accepted", req: searchRequest{Page: 1, PageSize: 100, Sender: "sp3xyz"}},
		{name: "page zero", req: searchRequest{Page: 0, PageSize: 100}, wantErr: true, wantField: "Page"},
		{name: "page size too large", req: searchRequest{Page: 1, PageSize: 1001}, wantErr: true, wantField: "PageSize"},
		{name: "sender too long", req: searchRequest{Page: 1, PageSize: 10, Sender: "TOOLONGCALL"}, wantErr: true, wantField: "Sender"},
		{name: "sender bad ssid", req: searchRequest{Page: 1, PageSize: 10, Sender: "N0CALL-100"}, wantErr: true, wantField: "Sender"},
		{name: "sender with symbols", req: searchRequest{Page: 1, PageSize: 10, Sender: "N0+ALL"}, wantErr: true, wantField: "Sender"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.req)
			if (verr != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", verr, tt.wantErr)
			}
			if verr == nil {
				return
			}
			if len(verr.Fields()) == 0 || verr.Fields()[0].Field != tt.wantField {
				t.Errorf("fields = %+v, want first field %s", verr.Fields(), tt.wantField)
			}
		})
	}
}

func TestErrorMessageJoinsFields(t *testing.T) {
	verr := ValidateStruct(&searchRequest{Page: 0, PageSize: 0})
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if len(verr.Fields()) != 2 {
		t.Fatalf("fields = %d, want 2", len(verr.Fields()))
	}
	if !strings.Contains(verr.Error(), ";") {
		t.Errorf("message %q should join field messages", verr.Error())
	}
}

func TestTranslatedMessages(t *testing.T) {
	verr := ValidateStruct(&searchRequest{Page: 1, PageSize: 5000})
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if got := verr.Error(); got != "PageSize must be at most 1000" {
		t.Errorf("message = %q", got)
	}
}
