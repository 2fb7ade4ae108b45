// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/ticketgate/codec"
	"github.com/danielhkuo/ticketgate/models"
	"github.com/danielhkuo/ticketgate/store"
)

// Load reads the shared ledger for an event. An absent or corrupt ledger
// reads as empty; only storage failures are returned.
func Load(ctx context.Context, s store.Store, eventID string, logger *slog.Logger) (models.SyncData, error) {
	empty := models.SyncData{EventID: eventID}

	raw, err := s.Get(ctx, store.SyncDataKey(eventID))
	if errors.Is(err, store.ErrNotFound) {
		return empty, nil
	}
	if err != nil {
		return empty, fmt.Errorf("failed to read ledger: %w", err)
	}

	var data models.SyncData
	if err := codec.Unmarshal(raw, &data); err != nil {
		if logger != nil {
			logger.Warn("corrupt ledger treated as empty", "event_id", eventID, "error", err)
		}
		return empty, nil
	}
	if data.EventID == "" {
		data.EventID = eventID
	}
	return data, nil
}

// Save replaces the shared ledger blob for data.EventID.
func Save(ctx context.Context, s store.Store, data models.SyncData) error {
	raw, err := codec.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	if err := s.Set(ctx, store.SyncDataKey(data.EventID), raw); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	return nil
}
