// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/ticketgate/models"
	"github.com/danielhkuo/ticketgate/testutil"
	"github.com/danielhkuo/ticketgate/tickets"
)

func TestIssueTicket(t *testing.T) {
	env := testutil.NewTestService(t)
	handler := NewTicketHandler(env.Service)
	e, _ := testutil.CreateTestEvent(t, env, "Prom")

	a, err := env.Service.AddAttendee(context.Background(), e.ID, models.AddAttendeeRequest{
		Name: "Ada", Email: "ada@example.com", StudentID: "1001", TicketCount: 3,
	})
	if err != nil {
		t.Fatalf("Failed to add attendee: %v", err)
	}

	// No pass before a ticket exists
	req := testutil.MakeRequest("GET", "/events/"+e.ID+"/attendees/"+a.ID+"/pass", nil, nil)
	req.SetPathValue("id", e.ID)
	req.SetPathValue("aid", a.ID)
	w := httptest.NewRecorder()
	handler.GetPass(w, req)
	testutil.AssertStatus(t, w, http.StatusConflict)

	req = testutil.MakeRequest("POST", "/events/"+e.ID+"/attendees/"+a.ID+"/tickets", nil, nil)
	req.SetPathValue("id", e.ID)
	req.SetPathValue("aid", a.ID)
	w = httptest.NewRecorder()
	handler.IssueTicket(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var issued models.Attendee
	testutil.AssertJSON(t, w, &issued)
	if !issued.HasTicket || len(issued.TicketNumbers) != 3 {
		t.Fatalf("Expected 3 tickets, got %+v", issued)
	}

	req = testutil.MakeRequest("GET", "/events/"+e.ID+"/attendees/"+a.ID+"/pass", nil, nil)
	req.SetPathValue("id", e.ID)
	req.SetPathValue("aid", a.ID)
	w = httptest.NewRecorder()
	handler.GetPass(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var pass tickets.Pass
	testutil.AssertJSON(t, w, &pass)
	if pass.TicketNumber != issued.TicketNumbers[0] || pass.EventTitle != "Prom" {
		t.Errorf("Unexpected pass: %+v", pass)
	}
	if _, err := tickets.DecodePayload(pass.QRPayload); err != nil {
		t.Errorf("Pass QR payload does not decode: %v", err)
	}
}

func TestIssueTicketUnknownAttendee(t *testing.T) {
	env := testutil.NewTestService(t)
	handler := NewTicketHandler(env.Service)
	e, _ := testutil.CreateTestEvent(t, env, "Prom")

	req := testutil.MakeRequest("POST", "/events/"+e.ID+"/attendees/nobody/tickets", nil, nil)
	req.SetPathValue("id", e.ID)
	req.SetPathValue("aid", "nobody")
	w := httptest.NewRecorder()
	handler.IssueTicket(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestIssueAll(t *testing.T) {
	env := testutil.NewTestService(t)
	handler := NewTicketHandler(env.Service)
	e, _ := testutil.CreateTestEvent(t, env, "Prom")

	ctx := context.Background()
	for _, email := range []string{"ada@example.com", "grace@example.com"} {
		if _, err := env.Service.AddAttendee(ctx, e.ID, models.AddAttendeeRequest{
			Name: email, Email: email, StudentID: email,
		}); err != nil {
			t.Fatalf("Failed to add attendee: %v", err)
		}
	}

	req := testutil.MakeRequest("POST", "/events/"+e.ID+"/tickets", nil, nil)
	req.SetPathValue("id", e.ID)
	w := httptest.NewRecorder()
	handler.IssueAll(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.IssueAllResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Issued != 2 || len(resp.Attendees) != 2 {
		t.Errorf("Expected 2 issued, got %+v", resp)
	}
}
