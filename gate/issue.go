// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gate

import (
	"context"
	"fmt"

	"github.com/danielhkuo/ticketgate/models"
	"github.com/danielhkuo/ticketgate/tickets"
)

// IssueTicket stamps one attendee with fresh ticket numbers. Re-issuing
// replaces the old numbers and clears validation state.
func (s *Service) IssueTicket(ctx context.Context, eventID, attendeeID string) (models.Attendee, error) {
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

	r.Attendees[i] = s.issuer.Issue(r.Attendees[i])
	if err := s.saveRoster(ctx, r); err != nil {
		return models.Attendee{}, err
	}

	a := r.Attendees[i]
	s.logger.Info("ticket issued",
		"event_id", eventID,
		"attendee_id", a.ID,
		"tickets", len(a.TicketNumbers),
	)
	return a, nil
}

// IssueAll issues tickets to every attendee that has none.
func (s *Service) IssueAll(ctx context.Context, eventID string) ([]models.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, r, err := s.eventRoster(ctx, eventID)
	if err != nil {
		return nil, err
	}

	issued := []models.Attendee{}
	for i, a := range r.Attendees {
		if a.HasTicket {
			continue
		}
		r.Attendees[i] = s.issuer.Issue(a)
		issued = append(issued, r.Attendees[i])
	}
	if len(issued) == 0 {
		return issued, nil
	}

	if err := s.saveRoster(ctx, r); err != nil {
		return nil, err
	}
	s.logger.Info("tickets issued", "event_id", eventID, "attendees", len(issued))
	return issued, nil
}

// Pass builds the wallet pass data for a ticketed attendee.
func (s *Service) Pass(ctx context.Context, eventID, attendeeID string) (tickets.Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, r, err := s.eventRoster(ctx, eventID)
	if err != nil {
		return tickets.Pass{}, err
	}
	i, ok := findAttendee(r, attendeeID)
	if !ok {
		return tickets.Pass{}, fmt.Errorf("%w: %s", ErrAttendeeNotFound, attendeeID)
	}
	return tickets.NewPass(e, r.Attendees[i])
}
