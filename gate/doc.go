// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package gate is the device service: events, rosters, ticket issuance,
admission and ledger synchronization for one installation.

# Stores

A Service reads and writes two key/value namespaces:

  - local: device id, event settings and one roster document per event
  - shared: one validation ledger per event and share bundles

Both are passed to New in Options.

	svc := gate.New(ctx, gate.Options{Local: local, Shared: shared, Clock: clock.Real()})

# Admission

Validate moves a ticket from Issued to Validated:

	out, err := svc.Validate(ctx, eventID, attendeeID, "", "Door 1")
	switch out.Status {
	case models.StatusAdmitted:
	case models.StatusAlreadyAdmitted:
	case models.StatusRejected:
	}

The check reads the shared ledger, appends a record and writes the ledger
back whole. Two devices can both admit a ticket when their writes race;
the earliest record (ties by device id) is canonical everywhere once
Reconcile has run on each device, and the losing device gets a Correction.

Errors from Validate are ErrStorage (retry) or ErrEventNotFound. A rejected
scan is an Outcome, not an error.

# Sync

Reconcile unions the shared ledger into the local roster and writes back
local records that a concurrent overwrite dropped. package syncer calls it
on an interval.

# Sharing

Share stores an immutable bundle of the event and its ticketed attendees
under a code; Load merges one into this device.
*/
package gate
