// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ticketgate/auth"
	"github.com/danielhkuo/ticketgate/cliparse"
	"github.com/danielhkuo/ticketgate/gate"
	"github.com/danielhkuo/ticketgate/middleware"
	"github.com/danielhkuo/ticketgate/models"
)

type EventHandler struct {
	svc *gate.Service
	cfg cliparse.Config
}

func NewEventHandler(svc *gate.Service, cfg cliparse.Config) *EventHandler {
	return &EventHandler{svc: svc, cfg: cfg}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	e, err := h.svc.CreateEvent(r.Context(), req)
	if err != nil {
		writeError(w, err, "create event")
		return
	}

	// Deterministic, so it is never stored
	adminKey := auth.GenerateAdminKey(e.ID, h.cfg.AdminKeySalt)

	slog.Info("event created via API", "event_id", e.ID)
	middleware.JSONResponse(w, http.StatusCreated, models.CreateEventResponse{
		Event:    e,
		AdminKey: adminKey,
	})
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.Events(r.Context())
	if err != nil {
		writeError(w, err, "list events")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, events)
}

// GetCurrent handles GET /events/current
// Responds 404 when no event is selected.
func (h *EventHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	cur, err := h.svc.CurrentEvent(r.Context())
	if err != nil {
		writeError(w, err, "get current event")
		return
	}
	if cur == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "No current event")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, cur)
}

// UpdateEvent handles PUT /events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if !requireAdmin(w, r, eventID, h.cfg.AdminKeySalt) {
		return
	}

	var req models.UpdateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	e, err := h.svc.UpdateEvent(r.Context(), eventID, req)
	if err != nil {
		writeError(w, err, "update event")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, e)
}

// SwitchEvent handles POST /events/{id}/switch
func (h *EventHandler) SwitchEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if !requireAdmin(w, r, eventID, h.cfg.AdminKeySalt) {
		return
	}

	e, err := h.svc.SwitchEvent(r.Context(), eventID)
	if err != nil {
		writeError(w, err, "switch event")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, e)
}

// DeleteEvent handles DELETE /events/{id}
// The shared ledger is kept; only this device forgets the event.
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if !requireAdmin(w, r, eventID, h.cfg.AdminKeySalt) {
		return
	}

	if err := h.svc.DeleteEvent(r.Context(), eventID); err != nil {
		writeError(w, err, "delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
