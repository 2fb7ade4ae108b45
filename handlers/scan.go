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

type ScanHandler struct {
	svc *gate.Service
	cfg cliparse.Config
}

func NewScanHandler(svc *gate.Service, cfg cliparse.Config) *ScanHandler {
	return &ScanHandler{svc: svc, cfg: cfg}
}

// Scan handles POST /events/{id}/scan
// Every decided scan is 200; the outcome status says whether to admit.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req models.ScanRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Payload) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "payload is required")
		return
	}

	out, err := h.svc.Scan(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, err, "validate ticket")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, out)
}

// Override handles POST /events/{id}/overrides
func (h *ScanHandler) Override(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if !requireAdmin(w, r, eventID, h.cfg.AdminKeySalt) {
		return
	}

	var req models.OverrideRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	out, err := h.svc.Override(r.Context(), eventID, req)
	if err != nil {
		writeError(w, err, "record override")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, out)
}
