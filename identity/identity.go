// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package identity issues the stable per-installation device identifier.
package identity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danielhkuo/ticketgate/auth"
	"github.com/danielhkuo/ticketgate/clock"
	"github.com/danielhkuo/ticketgate/store"
)

// Device is the resolved identity. Persisted is false when storage failed
// and the id will not survive a restart.
type Device struct {
	ID        string
	Persisted bool
}

// GetOrCreate returns the stored device id, creating and storing one on
// first use. It never fails: if the store is unavailable a fresh id is
// returned unpersisted.
func GetOrCreate(ctx context.Context, s store.Store, clk clock.Clock, logger *slog.Logger) Device {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	stored, err := s.Get(ctx, store.DeviceIDKey)
	if err == nil && len(stored) > 0 {
		return Device{ID: string(stored), Persisted: true}
	}

	id := auth.NewDeviceID(clk.Now())

	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Error("failed to read device id, using an unpersisted id", "error", err, "device_id", id)
		return Device{ID: id}
	}

	if err := s.Set(ctx, store.DeviceIDKey, []byte(id)); err != nil {
		logger.Error("failed to persist device id", "error", err, "device_id", id)
		return Device{ID: id}
	}

	logger.Info("device id created", "device_id", id)
	return Device{ID: id, Persisted: true}
}
