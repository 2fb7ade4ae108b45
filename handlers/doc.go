// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the ticketgate API.

# Handler Types

Each handler is a thin struct over the device's *gate.Service:

  - EventHandler: event create, update, switch, delete
  - AttendeeHandler: roster listing, manual add, import, reset
  - TicketHandler: ticket issuance and wallet passes
  - ScanHandler: door validation and supervisor overrides
  - SyncHandler: manual reconcile, ledger view, periodic sync sessions
  - ShareHandler: share codes and export
  - DeviceHandler: this device's identity

Handlers are created via constructor functions:

	eventHandler := handlers.NewEventHandler(svc, cfg)

# Admin Key

Creating an event returns admin_key once. Updating, switching and deleting
the event, resetting its roster and recording overrides require it in the
X-Admin-Key header.

# Scans

POST /events/{id}/scan always answers 200 when a decision was reached. The
body's status is admitted, already_admitted or rejected; only a storage
failure (503) means the scan should be retried.

# Errors

writeError maps service sentinels to status codes. Import failures carry a
hint the UI can show next to the message.
*/
package handlers
