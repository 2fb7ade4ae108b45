// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/ticketgate/gate"
	"github.com/danielhkuo/ticketgate/middleware"
)

type ShareHandler struct {
	svc *gate.Service
}

func NewShareHandler(svc *gate.Service) *ShareHandler {
	return &ShareHandler{svc: svc}
}

// Share handles POST /events/{id}/share
func (h *ShareHandler) Share(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Share(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "share event")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, res)
}

// Load handles POST /shares/{code}/load
// Codes are case-insensitive and stay valid after loading.
func (h *ShareHandler) Load(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Load(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, err, "load share code")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, res)
}

// Export handles GET /events/{id}/export
func (h *ShareHandler) Export(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Export(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "export event")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Event.ID+`.json"`)
	middleware.JSONResponse(w, http.StatusOK, res)
}
