// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ticketgate API server.

ticketgate admits ticket holders at the door of an event. Each running
server is one scanning device: it keeps its own roster and validation
records, and publishes every admission to a shared ledger so that other
doors scanning the same event converge on one answer per ticket.

# Starting the Server

The server reads a .env file, then environment variables, then CLI flags:

	ADMIN_KEY_SALT=secret go run .

Or with flags:

	go run . -p 3318 -d file:door1.db -shared-db "postgres://..." -label "North Door"

# Configuration

Required settings:

  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_URL (-d): Local store (default: file:ticketgate.db)
  - DATABASE_TYPE (-t): sqlite or postgres, inferred from the URL
  - SHARED_DATABASE_URL (-shared-db): Ledger store shared by all doors
  - SYNC_INTERVAL (-sync-interval): Ledger polling interval (default: 5s)
  - FETCH_TIMEOUT (-fetch-timeout): Spreadsheet download limit (default: 30s)
  - DEVICE_LABEL (-label): Validator name shown on admissions

# Architecture

  - gate: the device service (events, roster, admission, reconcile, sharing)
  - ledger: canonical-record rules over the shared validation ledger
  - roster: CSV parsing and spreadsheet download
  - tickets: ticket numbers, QR payloads and wallet passes
  - share: share codes and compressed bundles
  - syncer: periodic reconcile sessions
  - store, db, codec: durable key-value documents over SQL
  - identity, auth, clock: device ids, admin keys, time
  - handlers, router, middleware, models, cliparse: the HTTP surface

See package documentation for each component.
*/
package main
