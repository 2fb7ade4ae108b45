// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"

	"github.com/danielhkuo/ticketgate/cliparse"
	"github.com/danielhkuo/ticketgate/gate"
	"github.com/danielhkuo/ticketgate/middleware"
	"github.com/danielhkuo/ticketgate/models"
)

type AttendeeHandler struct {
	svc *gate.Service
	cfg cliparse.Config
}

func NewAttendeeHandler(svc *gate.Service, cfg cliparse.Config) *AttendeeHandler {
	return &AttendeeHandler{svc: svc, cfg: cfg}
}

// ListAttendees handles GET /events/{id}/attendees
func (h *AttendeeHandler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Roster(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "list attendees")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, list)
}

// AddAttendee handles POST /events/{id}/attendees
func (h *AttendeeHandler) AddAttendee(w http.ResponseWriter, r *http.Request) {
	var req models.AddAttendeeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	a, err := h.svc.AddAttendee(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, err, "add attendee")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, a)
}

// ResetAttendees handles DELETE /events/{id}/attendees
func (h *AttendeeHandler) ResetAttendees(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if !requireAdmin(w, r, eventID, h.cfg.AdminKeySalt) {
		return
	}

	if err := h.svc.ResetRoster(r.Context(), eventID); err != nil {
		writeError(w, err, "reset roster")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import handles POST /events/{id}/import
// Exactly one of csv or sheet_url must be set.
func (h *AttendeeHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req models.ImportRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	hasCSV := strings.TrimSpace(req.CSV) != ""
	hasSheet := strings.TrimSpace(req.SheetURL) != ""
	if hasCSV == hasSheet {
		middleware.ErrorResponse(w, http.StatusBadRequest, "provide either csv or sheet_url")
		return
	}

	eventID := r.PathValue("id")
	var (
		res models.ImportResponse
		err error
	)
	if hasCSV {
		res, err = h.svc.ImportCSV(r.Context(), eventID, req.CSV)
	} else {
		res, err = h.svc.ImportSheet(r.Context(), eventID, req.SheetURL)
	}
	if err != nil {
		writeError(w, err, "import roster")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, res)
}
