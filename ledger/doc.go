// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger holds the merge rules for validation records.

A ledger may transiently carry several records for one ticket when two
devices admit it concurrently. Exactly one is canonical:

	rec, ok := ledger.Canonical(records, ledger.Key{StudentID: id, TicketNumber: n})

The canonical record has the earliest validatedAt; equal times are broken
by the lexically smaller deviceId. Every device applies the same rule, so
devices that have seen the same records agree.

Merging is a set union by record identity (key, deviceId, validatedAt).
Union is commutative and idempotent and never drops or rewrites a record.

Load and Save move a SyncData blob through the shared store with the
codec package. A corrupt blob reads as an empty ledger.
*/
package ledger
