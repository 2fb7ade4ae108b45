// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the ticketgate API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc, coord, cfg)

One process serves one device, so every route acts on that device's state.

# Endpoints

Health:

	GET /health
	GET /devices/me - Device id, label and sync session

Events (PUT, switch and DELETE require X-Admin-Key):

	POST   /events              - Create event (returns admin_key)
	GET    /events              - List events
	GET    /events/current      - Currently selected event
	PUT    /events/{id}         - Partial update
	POST   /events/{id}/switch  - Make current
	DELETE /events/{id}         - Forget the event and its roster

Roster and tickets:

	GET    /events/{id}/attendees                 - List attendees
	POST   /events/{id}/attendees                 - Add one attendee
	DELETE /events/{id}/attendees                 - Reset roster (admin)
	POST   /events/{id}/import                    - CSV text or sheet_url
	POST   /events/{id}/attendees/{aid}/tickets   - Issue tickets
	POST   /events/{id}/tickets                   - Issue for everyone
	GET    /events/{id}/attendees/{aid}/pass      - Wallet pass fields

Door:

	POST /events/{id}/scan      - Validate a QR payload
	POST /events/{id}/overrides - Supervisor override (admin)

Sync and sharing:

	POST /events/{id}/reconcile   - One sync pass now
	GET  /events/{id}/ledger      - Shared ledger snapshot
	POST /events/{id}/sync/start  - Start periodic sync
	POST /events/{id}/sync/stop   - Stop periodic sync
	POST /events/{id}/share       - Publish a share code
	POST /shares/{code}/load      - Adopt a shared event
	GET  /events/{id}/export      - JSON backup
*/
package router
