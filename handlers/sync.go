// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ticketgate/cliparse"
	"github.com/danielhkuo/ticketgate/gate"
	"github.com/danielhkuo/ticketgate/middleware"
	"github.com/danielhkuo/ticketgate/models"
	"github.com/danielhkuo/ticketgate/syncer"
)

type SyncHandler struct {
	svc   *gate.Service
	coord *syncer.Coordinator
	cfg   cliparse.Config
}

func NewSyncHandler(svc *gate.Service, coord *syncer.Coordinator, cfg cliparse.Config) *SyncHandler {
	return &SyncHandler{svc: svc, coord: coord, cfg: cfg}
}

func (h *SyncHandler) status() models.SyncStatus {
	return models.SyncStatus{
		SyncingEventID: h.coord.Active(),
		Interval:       h.cfg.SyncInterval.String(),
	}
}

// Reconcile handles POST /events/{id}/reconcile
// Runs one sync pass now, outside the polling schedule.
func (h *SyncHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Reconcile(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "reconcile")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, report)
}

// GetLedger handles GET /events/{id}/ledger
func (h *SyncHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Ledger(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "read ledger")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, data)
}

// StartSync handles POST /events/{id}/sync/start
// Replaces any running session.
func (h *SyncHandler) StartSync(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if _, err := h.svc.Event(r.Context(), eventID); err != nil {
		writeError(w, err, "start sync")
		return
	}

	h.coord.Start(eventID, func(report models.ReconcileReport) {
		for _, c := range report.Corrections {
			slog.Warn("admission corrected",
				"event_id", report.EventID,
				"attendee_id", c.StudentID,
				"ticket", c.TicketNumber,
				"local_by", c.LocalBy,
				"canonical_by", c.CanonicalBy,
			)
		}
	})
	middleware.JSONResponse(w, http.StatusOK, h.status())
}

// StopSync handles POST /events/{id}/sync/stop
// Stopping a session for another event is a no-op.
func (h *SyncHandler) StopSync(w http.ResponseWriter, r *http.Request) {
	if h.coord.Active() == r.PathValue("id") {
		h.coord.Stop()
	}
	middleware.JSONResponse(w, http.StatusOK, h.status())
}
