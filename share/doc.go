// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package share exchanges event snapshots between devices through short codes.

# Bundles

A Bundle carries an event and its ticketed attendees. It is stored as a
small JSON envelope:

	{"schema":"ticketgate.share","version":1,"encoding":"zstd+base64",
	 "digest":"<blake3 hex>","payload":"<base64 zstd json>"}

Decode rejects a different version with ErrUnsupportedVersion and any
tampering or truncation with ErrCorrupt.

# Codes

Codes look like EVT + uppercase base-36 of a millisecond counter, e.g.
EVTLX3K9Q2A. Input is trimmed and uppercased before lookup. Put never
overwrites a code that is already in use; Get never consumes one.
*/
package share
