// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/ticketgate/codec"
	"github.com/danielhkuo/ticketgate/models"
	"github.com/danielhkuo/ticketgate/roster"
	"github.com/danielhkuo/ticketgate/store"
)

// loadRoster reads the local roster document. Absent or corrupt documents
// read as empty.
func (s *Service) loadRoster(ctx context.Context, eventID string) (models.Roster, error) {
	r := models.Roster{EventID: eventID}
	raw, err := s.local.Get(ctx, store.RosterKey(eventID))
	if errors.Is(err, store.ErrNotFound) {
		return r, nil
	}
	if err != nil {
		return r, storageErr("read roster", err)
	}
	var doc models.Roster
	if err := codec.Unmarshal(raw, &doc); err != nil {
		s.logger.Warn("corrupt roster reset", "event_id", eventID, "error", err)
		return r, nil
	}
	doc.EventID = eventID
	return doc, nil
}

func (s *Service) saveRoster(ctx context.Context, r models.Roster) error {
	r.UpdatedAt = s.clock.Now()
	raw, err := codec.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	if err := s.local.Set(ctx, store.RosterKey(r.EventID), raw); err != nil {
		return storageErr("write roster", err)
	}
	return nil
}

// eventRoster checks the event exists and loads its roster. Callers hold s.mu.
func (s *Service) eventRoster(ctx context.Context, eventID string) (models.Event, models.Roster, error) {
	e, err := s.event(ctx, eventID)
	if err != nil {
		return models.Event{}, models.Roster{}, err
	}
	r, err := s.loadRoster(ctx, eventID)
	if err != nil {
		return models.Event{}, models.Roster{}, err
	}
	return e, r, nil
}

func findAttendee(r models.Roster, id string) (int, bool) {
	for i, a := range r.Attendees {
		if a.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Roster lists an event's attendees.
func (s *Service) Roster(ctx context.Context, eventID string) ([]models.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, r, err := s.eventRoster(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if r.Attendees == nil {
		return []models.Attendee{}, nil
	}
	return r.Attendees, nil
}

// Attendee returns one attendee.
func (s *Service) Attendee(ctx context.Context, eventID, attendeeID string) (models.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, r, err := s.eventRoster(ctx, eventID)
	if err != nil {
		return models.Attendee{}, err
	}
	i, ok := findAttendee(r, attendeeID)
	if !ok {
		return models.Attendee{}, fmt.Errorf("%w: %s", ErrAttendeeNotFound, attendeeID)
	}
	return r.Attendees[i], nil
}

// AddAttendee adds one attendee by hand.
func (s *Service) AddAttendee(ctx context.Context, eventID string, req models.AddAttendeeRequest) (models.Attendee, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.StudentID = strings.TrimSpace(req.StudentID)
	if err := s.validate.Struct(req); err != nil {
		return models.Attendee{}, fmt.Errorf("%w: %s", ErrInvalidAttendee, validationMessage(err))
	}
	if !roster.ValidEmail(req.Email) {
		return models.Attendee{}, fmt.Errorf("%w: email: malformed", ErrInvalidAttendee)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, r, err := s.eventRoster(ctx, eventID)
	if err != nil {
		return models.Attendee{}, err
	}

	a := models.Attendee{
		ID:          s.newID(),
		Name:        req.Name,
		Email:       req.Email,
		StudentID:   req.StudentID,
		TicketCount: min(max(req.TicketCount, 1), models.MaxTicketsPerAttendee),
		GuestName:   strings.TrimSpace(req.GuestName),
		GuestSchool: strings.TrimSpace(req.GuestSchool),
	}
	for _, existing := range r.Attendees {
		if existing.EmailKey() == a.EmailKey() {
			return models.Attendee{}, fmt.Errorf("%w: %s", ErrDuplicateEmail, a.Email)
		}
	}

	r.Attendees = append(r.Attendees, a)
	if err := s.saveRoster(ctx, r); err != nil {
		return models.Attendee{}, err
	}

	s.logger.Info("attendee added", "event_id", eventID, "attendee_id", a.ID)
	return a, nil
}

// mergeAttendees appends incoming attendees whose lowercased email is new
// to the roster and to the batch. Callers hold s.mu.
func mergeAttendees(r *models.Roster, incoming []models.Attendee) (added []models.Attendee, duplicates int) {
	seen := make(map[string]bool, len(r.Attendees)+len(incoming))
	for _, a := range r.Attendees {
		seen[a.EmailKey()] = true
	}
	for _, a := range incoming {
		k := a.EmailKey()
		if seen[k] {
			duplicates++
			continue
		}
		seen[k] = true
		added = append(added, a)
	}
	r.Attendees = append(r.Attendees, added...)
	return added, duplicates
}

// MergeAttendees adds the attendees that are not already on the roster.
func (s *Service) MergeAttendees(ctx context.Context, eventID string, incoming []models.Attendee) (models.ImportResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mergeLocked(ctx, eventID, incoming, 0)
}

func (s *Service) mergeLocked(ctx context.Context, eventID string, incoming []models.Attendee, skipped int) (models.ImportResponse, error) {
	_, r, err := s.eventRoster(ctx, eventID)
	if err != nil {
		return models.ImportResponse{}, err
	}

	added, dups := mergeAttendees(&r, incoming)
	if len(added) > 0 {
		if err := s.saveRoster(ctx, r); err != nil {
			return models.ImportResponse{}, err
		}
	}
	if added == nil {
		added = []models.Attendee{}
	}

	s.logger.Info("attendees merged",
		"event_id", eventID,
		"added", len(added),
		"duplicates", dups,
		"skipped", skipped,
	)
	return models.ImportResponse{
		Added:      len(added),
		Duplicates: dups,
		Accepted:   len(incoming),
		Skipped:    skipped,
		Attendees:  added,
	}, nil
}

// ImportCSV parses delimited text and merges the result. Importing the same
// text twice adds nothing the second time.
func (s *Service) ImportCSV(ctx context.Context, eventID, text string) (models.ImportResponse, error) {
	res, err := roster.Parse(text, roster.Options{NewID: s.newID, Logger: s.logger})
	if err != nil {
		return models.ImportResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mergeLocked(ctx, eventID, res.Attendees, res.Skipped)
}

// ImportSheet fetches a published spreadsheet and imports it. The download
// runs outside the service lock so scans are not held up by it.
func (s *Service) ImportSheet(ctx context.Context, eventID, sheetURL string) (models.ImportResponse, error) {
	if _, err := s.Event(ctx, eventID); err != nil {
		return models.ImportResponse{}, err
	}

	text, err := s.fetcher.Fetch(ctx, sheetURL)
	if err != nil {
		return models.ImportResponse{}, err
	}
	return s.ImportCSV(ctx, eventID, text)
}

// ResetRoster clears the attendees and local records of an event. The
// shared ledger is not touched.
func (s *Service) ResetRoster(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.event(ctx, eventID); err != nil {
		return err
	}
	if err := s.saveRoster(ctx, models.Roster{EventID: eventID}); err != nil {
		return err
	}
	s.logger.Info("roster reset", "event_id", eventID)
	return nil
}
