// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/ticketgate/gate"
	"github.com/danielhkuo/ticketgate/middleware"
	"github.com/danielhkuo/ticketgate/models"
	"github.com/danielhkuo/ticketgate/syncer"
)

type DeviceHandler struct {
	svc   *gate.Service
	coord *syncer.Coordinator
}

func NewDeviceHandler(svc *gate.Service, coord *syncer.Coordinator) *DeviceHandler {
	return &DeviceHandler{svc: svc, coord: coord}
}

// GetMe handles GET /devices/me
// Returns this installation's identity and sync state
func (h *DeviceHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	d := h.svc.Device()
	middleware.JSONResponse(w, http.StatusOK, models.DeviceInfo{
		DeviceID:       d.ID,
		Label:          h.svc.Label(),
		Persisted:      d.Persisted,
		SyncingEventID: h.coord.Active(),
	})
}
