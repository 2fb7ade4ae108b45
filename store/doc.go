// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the durable key/value layer.

Every document lives under one logical key and is replaced whole:

	device_id              the installation's device id (plain text)
	event_settings         events and the current selection
	roster_<eventId>       attendees and local validations of one event
	sync_data_<eventId>    the shared validation ledger of one event
	shared_event_<CODE>    a share bundle

Memory backs tests; SQL backs the kv table from package db. A device
normally sees two namespaces, local and shared, carved out of one
physical store with WithPrefix:

	local := store.WithPrefix(base, "local:")
	shared := store.WithPrefix(sharedBase, "shared:")
*/
package store
