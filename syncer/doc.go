// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package syncer polls the shared ledger of one event on a fixed interval.
//
//	c := syncer.New(svc, clock.Real(), 5*time.Second, logger)
//	c.Start(eventID, func(r models.ReconcileReport) { ... })
//	defer c.Stop()
//
// A failed tick is logged and the next one runs as scheduled. Starting a
// new session stops the previous one first.
package syncer
