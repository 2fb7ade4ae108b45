// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin keys and identifier generation.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(eventID, salt)
	err := auth.ValidateAdminKey(eventID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same event ID and salt always produce the same key. The organizer gets
it once when the event is created; it guards event deletion, roster reset
and supervised overrides.

# Identifiers

	deviceID := auth.NewDeviceID(now) // device_<unix-ms>_<9 base36>
	eventID := auth.NewEventID(now)   // event_<unix-ms>_<9 base36>
	id, err := auth.GenerateID(8)     // 16 hex characters

The time prefix keeps identifiers roughly ordered; the random suffix keeps
two installations created in the same millisecond apart.
*/
package auth
