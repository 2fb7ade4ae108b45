// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/ticketgate/ledger"
	"github.com/danielhkuo/ticketgate/models"
	"github.com/danielhkuo/ticketgate/tickets"
)

// Rejection reasons.
const (
	ReasonInvalidPayload = "invalid_payload"
	ReasonNotFound       = "not_found"
	ReasonNoTicket       = "no_ticket"
	ReasonUnknownTicket  = "unknown_ticket"
)

func rejected(attendeeID, ticketNumber, reason, message string) models.Outcome {
	return models.Outcome{
		Status:       models.StatusRejected,
		AttendeeID:   attendeeID,
		TicketNumber: ticketNumber,
		Reason:       reason,
		Message:      message,
	}
}

func admittedOutcome(a models.Attendee, rec models.ValidationRecord) models.Outcome {
	at := rec.ValidatedAt
	return models.Outcome{
		Status:       models.StatusAdmitted,
		AttendeeID:   a.ID,
		TicketNumber: rec.TicketNumber,
		ValidatedBy:  rec.ValidatedBy,
		ValidatedAt:  &at,
		Message:      "Welcome, " + a.Name,
		Attendee:     &a,
	}
}

func alreadyOutcome(a models.Attendee, canon models.ValidationRecord, now time.Time) models.Outcome {
	at := canon.ValidatedAt
	return models.Outcome{
		Status:       models.StatusAlreadyAdmitted,
		AttendeeID:   a.ID,
		TicketNumber: canon.TicketNumber,
		ValidatedBy:  canon.ValidatedBy,
		ValidatedAt:  &at,
		Message: fmt.Sprintf("Already admitted by %s %s",
			canon.ValidatedBy, humanize.RelTime(canon.ValidatedAt, now, "ago", "from now")),
		Attendee: &a,
	}
}

// keyRecords returns every record of recs for key.
func keyRecords(recs []models.ValidationRecord, key ledger.Key) []models.ValidationRecord {
	var out []models.ValidationRecord
	for _, r := range recs {
		if ledger.KeyOf(r) == key {
			out = append(out, r)
		}
	}
	return out
}

// refreshAttendees sets each attendee's validation fields from the earliest
// canonical record among its tickets. Attendees without records are left
// alone. Reports whether anything changed.
func refreshAttendees(r *models.Roster) bool {
	view := ledger.View(r.Validations)
	changed := false
	for i := range r.Attendees {
		a := &r.Attendees[i]
		numbers := a.TicketNumbers
		if len(numbers) == 0 && a.TicketNumber != "" {
			numbers = []string{a.TicketNumber}
		}

		var best models.ValidationRecord
		found := false
		for _, n := range numbers {
			rec, ok := view[ledger.Key{StudentID: a.ID, TicketNumber: n}]
			if ok && (!found || ledger.Precedes(rec, best)) {
				best, found = rec, true
			}
		}
		if !found {
			continue
		}
		if a.IsValidated && a.ValidatedBy == best.ValidatedBy &&
			a.ValidatedAt != nil && a.ValidatedAt.Equal(best.ValidatedAt) {
			continue
		}
		at := best.ValidatedAt
		a.IsValidated = true
		a.ValidatedAt = &at
		a.ValidatedBy = best.ValidatedBy
		changed = true
	}
	return changed
}

// applyLocal adopts records into the local set and persists the roster.
// A failed write is logged; the shared ledger already holds the truth and
// the next reconcile repairs the local copy.
func (s *Service) applyLocal(ctx context.Context, r *models.Roster, recs ...models.ValidationRecord) {
	missing := ledger.Missing(r.Validations, recs)
	r.Validations = ledger.Union(r.Validations, recs)
	changed := refreshAttendees(r)
	if len(missing) == 0 && !changed {
		return
	}
	if err := s.saveRoster(ctx, *r); err != nil {
		s.logger.Warn("failed to apply validation locally", "event_id", r.EventID, "error", err)
	}
}

// Scan decodes a QR payload and validates it. An unreadable payload is a
// rejection, not an error.
func (s *Service) Scan(ctx context.Context, eventID string, req models.ScanRequest) (models.Outcome, error) {
	p, err := tickets.DecodePayload(req.Payload)
	if err != nil {
		s.logger.Info("unreadable ticket scanned", "event_id", eventID, "error", err)
		return rejected("", "", ReasonInvalidPayload, "This QR code is not a ticket"), nil
	}
	return s.Validate(ctx, eventID, p.ID, p.TicketNumber, req.Validator)
}

// Validate decides admission for one ticket. An empty ticketNumber selects
// the attendee's primary ticket. Errors are storage failures or an unknown
// event; every other result is an Outcome.
func (s *Service) Validate(ctx context.Context, eventID, attendeeID, ticketNumber, label string) (models.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, r, err := s.eventRoster(ctx, eventID)
	if err != nil {
		return models.Outcome{}, err
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = s.label
	}

	i, ok := findAttendee(r, attendeeID)
	if !ok {
		return rejected(attendeeID, ticketNumber, ReasonNotFound, "Ticket not found for this event"), nil
	}
	a := r.Attendees[i]
	if !a.HasTicket || a.PrimaryTicket() == "" {
		return rejected(a.ID, ticketNumber, ReasonNoTicket, a.Name+" has not been issued a ticket"), nil
	}
	if ticketNumber != "" && !a.HoldsTicket(ticketNumber) {
		return rejected(a.ID, ticketNumber, ReasonUnknownTicket, "This ticket number does not belong to "+a.Name), nil
	}
	if ticketNumber == "" {
		ticketNumber = a.PrimaryTicket()
	}
	key := ledger.Key{StudentID: a.ID, TicketNumber: ticketNumber}

	data, err := ledger.Load(ctx, s.shared, eventID, s.logger)
	if err != nil {
		return models.Outcome{}, storageErr("validate", err)
	}

	now := s.clock.Now()
	if canon, ok := ledger.Canonical(ledger.Union(data.Validations, r.Validations), key); ok {
		// Any existing record wins, including one this device wrote but
		// never applied locally (failed roster write, reset and reload).
		s.applyLocal(ctx, &r, keyRecords(data.Validations, key)...)
		a = r.Attendees[i]

		s.logger.Info("ticket already admitted",
			"event_id", eventID,
			"attendee_id", a.ID,
			"ticket", ticketNumber,
			"validated_by", canon.ValidatedBy,
			"own_record", canon.DeviceID == s.device.ID,
		)
		return alreadyOutcome(a, canon, now), nil
	}

	rec := models.ValidationRecord{
		StudentID:    a.ID,
		TicketNumber: ticketNumber,
		ValidatedAt:  now,
		ValidatedBy:  label,
		DeviceID:     s.device.ID,
		EventID:      eventID,
	}
	data.EventID = eventID
	data.Validations = ledger.Union(data.Validations, []models.ValidationRecord{rec})
	data.Students = ledger.UnionStudents(data.Students, []models.Attendee{a})
	data.LastSync = now
	if err := ledger.Save(ctx, s.shared, data); err != nil {
		return models.Outcome{}, storageErr("commit validation", err)
	}

	// Re-read: a concurrent writer may have landed an earlier admission
	final := rec
	adopt := []models.ValidationRecord{rec}
	if after, err := ledger.Load(ctx, s.shared, eventID, s.logger); err != nil {
		s.logger.Warn("failed to re-read ledger after commit", "event_id", eventID, "error", err)
	} else {
		seen := keyRecords(after.Validations, key)
		adopt = append(adopt, seen...)
		if canon, ok := ledger.Canonical(adopt, key); ok {
			final = canon
		}
	}

	s.applyLocal(ctx, &r, adopt...)
	a = r.Attendees[i]

	if !ledger.SameRecord(final, rec) {
		s.logger.Warn("concurrent admission detected",
			"event_id", eventID,
			"attendee_id", a.ID,
			"ticket", ticketNumber,
			"canonical_device", final.DeviceID,
		)
		return alreadyOutcome(a, final, now), nil
	}

	s.logger.Info("ticket admitted", "event_id", eventID, "attendee_id", a.ID, "ticket", ticketNumber, "validator", label)
	return admittedOutcome(a, rec), nil
}

// Override records a supervised re-admission of a validated ticket. The
// original record is untouched and the ticket stays validated.
func (s *Service) Override(ctx context.Context, eventID string, req models.OverrideRequest) (models.Outcome, error) {
	req.Reason = strings.TrimSpace(req.Reason)
	req.Supervisor = strings.TrimSpace(req.Supervisor)
	if err := s.validate.Struct(req); err != nil {
		return models.Outcome{}, fmt.Errorf("%w: %s", ErrInvalidOverride, validationMessage(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, r, err := s.eventRoster(ctx, eventID)
	if err != nil {
		return models.Outcome{}, err
	}
	i, ok := findAttendee(r, req.StudentID)
	if !ok {
		return models.Outcome{}, fmt.Errorf("%w: %s", ErrAttendeeNotFound, req.StudentID)
	}
	a := r.Attendees[i]

	ticketNumber := req.TicketNumber
	if ticketNumber != "" && !a.HoldsTicket(ticketNumber) {
		return models.Outcome{}, fmt.Errorf("%w: %s", ErrUnknownTicket, ticketNumber)
	}
	if ticketNumber == "" {
		ticketNumber = a.PrimaryTicket()
	}
	key := ledger.Key{StudentID: a.ID, TicketNumber: ticketNumber}

	data, err := ledger.Load(ctx, s.shared, eventID, s.logger)
	if err != nil {
		return models.Outcome{}, storageErr("override", err)
	}
	canon, ok := ledger.Canonical(ledger.Union(data.Validations, r.Validations), key)
	if !ok {
		return models.Outcome{}, fmt.Errorf("%w: %s", ErrNotValidated, ticketNumber)
	}

	now := s.clock.Now()
	o := models.OverrideRecord{
		ID:           s.newID(),
		StudentID:    a.ID,
		TicketNumber: ticketNumber,
		Reason:       req.Reason,
		Supervisor:   req.Supervisor,
		OverriddenAt: now,
		DeviceID:     s.device.ID,
		EventID:      eventID,
	}
	data.EventID = eventID
	data.Overrides = ledger.UnionOverrides(data.Overrides, []models.OverrideRecord{o})
	data.LastSync = now
	if err := ledger.Save(ctx, s.shared, data); err != nil {
		return models.Outcome{}, storageErr("commit override", err)
	}

	r.Overrides = ledger.UnionOverrides(r.Overrides, []models.OverrideRecord{o})
	if err := s.saveRoster(ctx, r); err != nil {
		s.logger.Warn("failed to record override locally", "event_id", eventID, "error", err)
	}

	s.logger.Info("ticket re-admitted by override",
		"event_id", eventID,
		"attendee_id", a.ID,
		"ticket", ticketNumber,
		"supervisor", o.Supervisor,
	)

	at := canon.ValidatedAt
	return models.Outcome{
		Status:       models.StatusAdmitted,
		AttendeeID:   a.ID,
		TicketNumber: ticketNumber,
		ValidatedBy:  canon.ValidatedBy,
		ValidatedAt:  &at,
		Reason:       o.Reason,
		Message:      "Re-admitted by " + o.Supervisor,
		Override:     true,
		Attendee:     &a,
	}, nil
}
