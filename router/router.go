// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/ticketgate/cliparse"
	"github.com/danielhkuo/ticketgate/gate"
	"github.com/danielhkuo/ticketgate/handlers"
	"github.com/danielhkuo/ticketgate/middleware"
	"github.com/danielhkuo/ticketgate/syncer"
)

func NewRouter(svc *gate.Service, coord *syncer.Coordinator, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(svc, cfg)
	attendeeHandler := handlers.NewAttendeeHandler(svc, cfg)
	ticketHandler := handlers.NewTicketHandler(svc)
	scanHandler := handlers.NewScanHandler(svc, cfg)
	syncHandler := handlers.NewSyncHandler(svc, coord, cfg)
	shareHandler := handlers.NewShareHandler(svc)
	deviceHandler := handlers.NewDeviceHandler(svc, coord)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Device identity
	mux.HandleFunc("GET /devices/me", middleware.WithLogging(deviceHandler.GetMe))

	// Events (mutations require X-Admin-Key)
	mux.HandleFunc("POST /events", middleware.WithLogging(eventHandler.CreateEvent))
	mux.HandleFunc("GET /events", middleware.WithLogging(eventHandler.ListEvents))
	mux.HandleFunc("GET /events/current", middleware.WithLogging(eventHandler.GetCurrent))
	mux.HandleFunc("PUT /events/{id}", middleware.WithLogging(eventHandler.UpdateEvent))
	mux.HandleFunc("POST /events/{id}/switch", middleware.WithLogging(eventHandler.SwitchEvent))
	mux.HandleFunc("DELETE /events/{id}", middleware.WithLogging(eventHandler.DeleteEvent))

	// Roster
	mux.HandleFunc("GET /events/{id}/attendees", middleware.WithLogging(attendeeHandler.ListAttendees))
	mux.HandleFunc("POST /events/{id}/attendees", middleware.WithLogging(attendeeHandler.AddAttendee))
	mux.HandleFunc("DELETE /events/{id}/attendees", middleware.WithLogging(attendeeHandler.ResetAttendees))
	mux.HandleFunc("POST /events/{id}/import", middleware.WithLogging(attendeeHandler.Import))

	// Tickets
	mux.HandleFunc("POST /events/{id}/attendees/{aid}/tickets", middleware.WithLogging(ticketHandler.IssueTicket))
	mux.HandleFunc("POST /events/{id}/tickets", middleware.WithLogging(ticketHandler.IssueAll))
	mux.HandleFunc("GET /events/{id}/attendees/{aid}/pass", middleware.WithLogging(ticketHandler.GetPass))

	// Door
	mux.HandleFunc("POST /events/{id}/scan", middleware.WithLogging(scanHandler.Scan))
	mux.HandleFunc("POST /events/{id}/overrides", middleware.WithLogging(scanHandler.Override))

	// Sync
	mux.HandleFunc("POST /events/{id}/reconcile", middleware.WithLogging(syncHandler.Reconcile))
	mux.HandleFunc("GET /events/{id}/ledger", middleware.WithLogging(syncHandler.GetLedger))
	mux.HandleFunc("POST /events/{id}/sync/start", middleware.WithLogging(syncHandler.StartSync))
	mux.HandleFunc("POST /events/{id}/sync/stop", middleware.WithLogging(syncHandler.StopSync))

	// Sharing
	mux.HandleFunc("POST /events/{id}/share", middleware.WithLogging(shareHandler.Share))
	mux.HandleFunc("POST /shares/{code}/load", middleware.WithLogging(shareHandler.Load))
	mux.HandleFunc("GET /events/{id}/export", middleware.WithLogging(shareHandler.Export))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ticketgate API v1"))
	})

	return mux
}
