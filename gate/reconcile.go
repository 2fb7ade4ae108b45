// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gate

import (
	"cmp"
	"context"
	"slices"

	"github.com/danielhkuo/ticketgate/ledger"
	"github.com/danielhkuo/ticketgate/models"
)

// Reconcile merges the shared ledger of an event into the local roster and
// republishes local records the shared ledger lost to a concurrent whole-blob
// overwrite. Merging is a union: nothing is dropped or rewritten.
//
// Corrections name tickets this device believed it admitted whose canonical
// admission now belongs to another device.
func (s *Service) Reconcile(ctx context.Context, eventID string) (models.ReconcileReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := models.ReconcileReport{EventID: eventID, Corrections: []models.Correction{}}

	_, r, err := s.eventRoster(ctx, eventID)
	if err != nil {
		return report, err
	}
	data, err := ledger.Load(ctx, s.shared, eventID, s.logger)
	if err != nil {
		return report, storageErr("reconcile", err)
	}
	now := s.clock.Now()

	before := ledger.View(r.Validations)
	adopted := ledger.Missing(r.Validations, data.Validations)
	lost := ledger.Missing(data.Validations, r.Validations)
	adoptedOverrides := missingOverrides(r.Overrides, data.Overrides)
	lostOverrides := missingOverrides(data.Overrides, r.Overrides)

	r.Validations = ledger.Union(r.Validations, data.Validations)
	r.Overrides = ledger.UnionOverrides(r.Overrides, data.Overrides)
	changed := refreshAttendees(&r)

	after := ledger.View(r.Validations)
	for key, prev := range before {
		if prev.DeviceID != s.device.ID {
			continue
		}
		canon := after[key]
		if ledger.SameRecord(canon, prev) || canon.DeviceID == s.device.ID {
			continue
		}
		report.Corrections = append(report.Corrections, models.Correction{
			StudentID:      key.StudentID,
			TicketNumber:   key.TicketNumber,
			LocalBy:        prev.ValidatedBy,
			CanonicalBy:    canon.ValidatedBy,
			CanonicalAt:    canon.ValidatedAt,
			CanonicalOwner: canon.DeviceID,
		})
	}
	slices.SortFunc(report.Corrections, func(a, b models.Correction) int {
		return cmp.Or(
			cmp.Compare(a.StudentID, b.StudentID),
			cmp.Compare(a.TicketNumber, b.TicketNumber),
		)
	})

	if len(adopted) > 0 || len(adoptedOverrides) > 0 || changed {
		if err := s.saveRoster(ctx, r); err != nil {
			return report, err
		}
	}

	if len(lost) > 0 || len(lostOverrides) > 0 {
		data = ledger.Merge(data, models.SyncData{
			EventID:     eventID,
			Validations: lost,
			Overrides:   lostOverrides,
		})
		data.LastSync = now
		if err := ledger.Save(ctx, s.shared, data); err != nil {
			return report, storageErr("republish", err)
		}
	}

	report.Adopted = len(adopted) + len(adoptedOverrides)
	report.Republished = len(lost) + len(lostOverrides)
	report.LastSync = now

	if report.Adopted > 0 || report.Republished > 0 || len(report.Corrections) > 0 {
		s.logger.Info("ledger reconciled",
			"event_id", eventID,
			"adopted", report.Adopted,
			"republished", report.Republished,
			"corrections", len(report.Corrections),
		)
	}
	return report, nil
}

func missingOverrides(dst, src []models.OverrideRecord) []models.OverrideRecord {
	have := make(map[string]bool, len(dst))
	for _, o := range dst {
		have[o.ID] = true
	}
	var out []models.OverrideRecord
	for _, o := range src {
		if !have[o.ID] {
			have[o.ID] = true
			out = append(out, o)
		}
	}
	return out
}

// Ledger returns the shared ledger of an event with this device's unsynced
// records merged in.
func (s *Service) Ledger(ctx context.Context, eventID string) (models.SyncData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, r, err := s.eventRoster(ctx, eventID)
	if err != nil {
		return models.SyncData{}, err
	}
	data, err := ledger.Load(ctx, s.shared, eventID, s.logger)
	if err != nil {
		return models.SyncData{}, storageErr("read ledger", err)
	}
	merged := ledger.Merge(data, models.SyncData{Validations: r.Validations, Overrides: r.Overrides})
	if merged.Students == nil {
		merged.Students = []models.Attendee{}
	}
	return merged, nil
}
