// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/ticketgate/gate"
	"github.com/danielhkuo/ticketgate/middleware"
	"github.com/danielhkuo/ticketgate/models"
)

type TicketHandler struct {
	svc *gate.Service
}

func NewTicketHandler(svc *gate.Service) *TicketHandler {
	return &TicketHandler{svc: svc}
}

// IssueTicket handles POST /events/{id}/attendees/{aid}/tickets
// Re-issuing replaces the attendee's ticket numbers.
func (h *TicketHandler) IssueTicket(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.IssueTicket(r.Context(), r.PathValue("id"), r.PathValue("aid"))
	if err != nil {
		writeError(w, err, "issue ticket")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, a)
}

// IssueAll handles POST /events/{id}/tickets
func (h *TicketHandler) IssueAll(w http.ResponseWriter, r *http.Request) {
	issued, err := h.svc.IssueAll(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "issue tickets")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.IssueAllResponse{
		Issued:    len(issued),
		Attendees: issued,
	})
}

// GetPass handles GET /events/{id}/attendees/{aid}/pass
func (h *TicketHandler) GetPass(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Pass(r.Context(), r.PathValue("id"), r.PathValue("aid"))
	if err != nil {
		writeError(w, err, "build pass")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, p)
}
