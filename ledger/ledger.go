// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"cmp"
	"slices"

	"github.com/danielhkuo/ticketgate/models"
)

// Key is the logical identity of an admission: one ticket of one attendee.
type Key struct {
	StudentID    string
	TicketNumber string
}

func KeyOf(r models.ValidationRecord) Key {
	return Key{StudentID: r.StudentID, TicketNumber: r.TicketNumber}
}

// identity distinguishes concurrent records for the same key.
type identity struct {
	Key
	DeviceID string
	At       int64
}

func identityOf(r models.ValidationRecord) identity {
	return identity{Key: KeyOf(r), DeviceID: r.DeviceID, At: r.ValidatedAt.UnixNano()}
}

// SameRecord reports whether a and b are the same admission.
func SameRecord(a, b models.ValidationRecord) bool {
	return identityOf(a) == identityOf(b)
}

// Precedes reports whether a wins over b for canonical status: earlier
// validatedAt, ties broken by the lexically smaller deviceId.
func Precedes(a, b models.ValidationRecord) bool {
	if !a.ValidatedAt.Equal(b.ValidatedAt) {
		return a.ValidatedAt.Before(b.ValidatedAt)
	}
	return a.DeviceID < b.DeviceID
}

// Canonical returns the winning record for key, if any.
func Canonical(records []models.ValidationRecord, key Key) (models.ValidationRecord, bool) {
	var best models.ValidationRecord
	found := false
	for _, r := range records {
		if KeyOf(r) != key {
			continue
		}
		if !found || Precedes(r, best) {
			best = r
			found = true
		}
	}
	return best, found
}

// View reduces records to the canonical record per key.
func View(records []models.ValidationRecord) map[Key]models.ValidationRecord {
	view := make(map[Key]models.ValidationRecord, len(records))
	for _, r := range records {
		k := KeyOf(r)
		if cur, ok := view[k]; !ok || Precedes(r, cur) {
			view[k] = r
		}
	}
	return view
}

// Missing returns the records of src that dst lacks.
func Missing(dst, src []models.ValidationRecord) []models.ValidationRecord {
	have := make(map[identity]bool, len(dst))
	for _, r := range dst {
		have[identityOf(r)] = true
	}
	var out []models.ValidationRecord
	for _, r := range src {
		if !have[identityOf(r)] {
			out = append(out, r)
			have[identityOf(r)] = true
		}
	}
	return out
}

func compareRecords(a, b models.ValidationRecord) int {
	return cmp.Or(
		a.ValidatedAt.Compare(b.ValidatedAt),
		cmp.Compare(a.DeviceID, b.DeviceID),
		cmp.Compare(a.StudentID, b.StudentID),
		cmp.Compare(a.TicketNumber, b.TicketNumber),
		cmp.Compare(a.ValidatedBy, b.ValidatedBy),
		cmp.Compare(a.EventID, b.EventID),
	)
}

// Union merges record sets. Never drops a record, never overrides one:
// the result is the set union by record identity in a deterministic order,
// so Union(a, b) equals Union(b, a) and Union(a, a) equals Union(a).
func Union(sets ...[]models.ValidationRecord) []models.ValidationRecord {
	var all []models.ValidationRecord
	for _, s := range sets {
		all = append(all, s...)
	}
	slices.SortFunc(all, compareRecords)

	out := make([]models.ValidationRecord, 0, len(all))
	seen := make(map[identity]bool, len(all))
	for _, r := range all {
		id := identityOf(r)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, r)
	}
	return out
}

// UnionOverrides merges override records by id, ordered by time then id.
func UnionOverrides(sets ...[]models.OverrideRecord) []models.OverrideRecord {
	var all []models.OverrideRecord
	for _, s := range sets {
		all = append(all, s...)
	}
	slices.SortFunc(all, func(a, b models.OverrideRecord) int {
		return cmp.Or(
			a.OverriddenAt.Compare(b.OverriddenAt),
			cmp.Compare(a.ID, b.ID),
			cmp.Compare(a.DeviceID, b.DeviceID),
		)
	})

	out := make([]models.OverrideRecord, 0, len(all))
	seen := make(map[string]bool, len(all))
	for _, o := range all {
		if seen[o.ID] {
			continue
		}
		seen[o.ID] = true
		out = append(out, o)
	}
	return out
}

// UnionStudents keeps every attendee of a and appends those of b with an
// unseen id.
func UnionStudents(a, b []models.Attendee) []models.Attendee {
	out := make([]models.Attendee, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, s := range [][]models.Attendee{a, b} {
		for _, st := range s {
			if seen[st.ID] {
				continue
			}
			seen[st.ID] = true
			out = append(out, st)
		}
	}
	return out
}

// Merge unions two ledger snapshots of the same event.
func Merge(a, b models.SyncData) models.SyncData {
	lastSync := a.LastSync
	if b.LastSync.After(lastSync) {
		lastSync = b.LastSync
	}
	eventID := a.EventID
	if eventID == "" {
		eventID = b.EventID
	}
	return models.SyncData{
		Students:    UnionStudents(a.Students, b.Students),
		Validations: Union(a.Validations, b.Validations),
		Overrides:   UnionOverrides(a.Overrides, b.Overrides),
		LastSync:    lastSync,
		EventID:     eventID,
	}
}
