// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/ticketgate/models"
	"github.com/danielhkuo/ticketgate/testutil"
	"github.com/danielhkuo/ticketgate/tickets"
)

func scan(t *testing.T, handler *ScanHandler, eventID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.MakeRequest("POST", "/events/"+eventID+"/scan", body, nil)
	req.SetPathValue("id", eventID)
	w := httptest.NewRecorder()
	handler.Scan(w, req)
	return w
}

func TestScan(t *testing.T) {
	env := testutil.NewTestService(t)
	handler := NewScanHandler(env.Service, env.Config)
	e, _ := testutil.CreateTestEvent(t, env, "Prom")
	a := testutil.AddTestAttendee(t, env, e.ID, "Ada", "ada@example.com", 1)

	payload, err := tickets.EncodePayload(tickets.PayloadFor(a, ""))
	if err != nil {
		t.Fatalf("Failed to encode payload: %v", err)
	}

	// First scan admits
	w := scan(t, handler, e.ID, models.ScanRequest{Payload: payload, Validator: "North Door"})
	testutil.AssertStatus(t, w, http.StatusOK)
	var first models.Outcome
	testutil.AssertJSON(t, w, &first)
	if first.Status != models.StatusAdmitted {
		t.Fatalf("Expected admitted, got %+v", first)
	}

	// Second scan reports who admitted it
	w = scan(t, handler, e.ID, models.ScanRequest{Payload: payload, Validator: "South Door"})
	testutil.AssertStatus(t, w, http.StatusOK)
	var second models.Outcome
	testutil.AssertJSON(t, w, &second)
	if second.Status != models.StatusAlreadyAdmitted {
		t.Fatalf("Expected already_admitted, got %+v", second)
	}
	if second.ValidatedBy != "North Door" {
		t.Errorf("Expected validated_by 'North Door', got %q", second.ValidatedBy)
	}

	// Garbage is a rejection, not an error
	w = scan(t, handler, e.ID, models.ScanRequest{Payload: "not a ticket"})
	testutil.AssertStatus(t, w, http.StatusOK)
	var rejected models.Outcome
	testutil.AssertJSON(t, w, &rejected)
	if rejected.Status != models.StatusRejected {
		t.Errorf("Expected rejected, got %+v", rejected)
	}
}

func TestScanBadRequests(t *testing.T) {
	env := testutil.NewTestService(t)
	handler := NewScanHandler(env.Service, env.Config)
	e, _ := testutil.CreateTestEvent(t, env, "Prom")
	a := testutil.AddTestAttendee(t, env, e.ID, "Ada", "ada@example.com", 1)
	payload, _ := tickets.EncodePayload(tickets.PayloadFor(a, ""))

	tests := []struct {
		name           string
		eventID        string
		body           interface{}
		expectedStatus int
	}{
		{"invalid JSON", e.ID, "invalid json", http.StatusBadRequest},
		{"empty payload", e.ID, models.ScanRequest{Payload: "  "}, http.StatusBadRequest},
		{"unknown event", "evt_missing", models.ScanRequest{Payload: payload}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := scan(t, handler, tt.eventID, tt.body)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestOverride(t *testing.T) {
	env := testutil.NewTestService(t)
	handler := NewScanHandler(env.Service, env.Config)
	e, adminKey := testutil.CreateTestEvent(t, env, "Prom")
	a := testutil.AddTestAttendee(t, env, e.ID, "Ada", "ada@example.com", 1)

	override := models.OverrideRequest{StudentID: a.ID, Reason: "Left to get coat", Supervisor: "Ms. Rivera"}

	post := func(headers map[string]string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/events/"+e.ID+"/overrides", override, headers)
		req.SetPathValue("id", e.ID)
		w := httptest.NewRecorder()
		handler.Override(w, req)
		return w
	}

	testutil.AssertStatus(t, post(nil), http.StatusUnauthorized)

	// Nothing to override before the ticket was used
	testutil.AssertStatus(t, post(testutil.AdminHeader(adminKey)), http.StatusConflict)

	payload, _ := tickets.EncodePayload(tickets.PayloadFor(a, ""))
	testutil.AssertStatus(t, scan(t, handler, e.ID, models.ScanRequest{Payload: payload}), http.StatusOK)

	w := post(testutil.AdminHeader(adminKey))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var out models.Outcome
	testutil.AssertJSON(t, w, &out)
	if !out.Override || out.Status != models.StatusAdmitted {
		t.Errorf("Expected admitted override, got %+v", out)
	}
}
