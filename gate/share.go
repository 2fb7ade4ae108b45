// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielhkuo/ticketgate/ledger"
	"github.com/danielhkuo/ticketgate/models"
	"github.com/danielhkuo/ticketgate/share"
)

// Share snapshots an event and its ticketed attendees under a new code.
// Later changes on this device are not reflected in an issued code.
func (s *Service) Share(ctx context.Context, eventID string) (models.ShareResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, r, err := s.eventRoster(ctx, eventID)
	if err != nil {
		return models.ShareResponse{}, err
	}

	b := share.NewBundle(e, r.Attendees, s.device.ID, s.clock.Now())
	code, err := share.Put(ctx, s.shared, s.codes, b)
	if err != nil {
		return models.ShareResponse{}, storageErr("share event", err)
	}

	s.logger.Info("event shared", "event_id", eventID, "share_code", code, "students", len(b.Students))
	return models.ShareResponse{ShareCode: code, Students: len(b.Students)}, nil
}

// Load seeds this device from a share code. The event is added when
// unknown, becoming current if nothing is; attendees are merged by email.
// The code stays valid for other devices.
func (s *Service) Load(ctx context.Context, code string) (models.LoadShareResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, canonical, err := share.Get(ctx, s.shared, code)
	if err != nil {
		if errors.Is(err, share.ErrNotFound) || errors.Is(err, share.ErrInvalidCode) ||
			errors.Is(err, share.ErrCorrupt) || errors.Is(err, share.ErrUnsupportedVersion) {
			return models.LoadShareResponse{}, err
		}
		return models.LoadShareResponse{}, storageErr("load share", err)
	}
	if b.Event.ID == "" {
		return models.LoadShareResponse{}, fmt.Errorf("%w: bundle has no event", share.ErrCorrupt)
	}

	st, err := s.loadSettings(ctx)
	if err != nil {
		return models.LoadShareResponse{}, err
	}

	event := b.Event
	adopted := false
	if i, ok := findEvent(st, event.ID); ok {
		event = st.Events[i]
	} else {
		event.ImageURL = cleanImageURL(event.ImageURL)
		st.Events = append(st.Events, event)
		if st.CurrentEvent == nil {
			st.CurrentEvent = &event
		}
		if err := s.saveSettings(ctx, st); err != nil {
			return models.LoadShareResponse{}, err
		}
		adopted = true
	}

	r, err := s.loadRoster(ctx, event.ID)
	if err != nil {
		return models.LoadShareResponse{}, err
	}
	added, _ := mergeAttendees(&r, b.Students)
	if len(added) > 0 {
		if err := s.saveRoster(ctx, r); err != nil {
			return models.LoadShareResponse{}, err
		}
	}

	s.logger.Info("shared event loaded",
		"share_code", canonical,
		"event_id", event.ID,
		"event_adopted", adopted,
		"added", len(added),
		"from_device", b.DeviceID,
	)
	students := b.Students
	if students == nil {
		students = []models.Attendee{}
	}
	return models.LoadShareResponse{
		Event:        event,
		Students:     students,
		Added:        len(added),
		EventAdopted: adopted,
	}, nil
}

// Export returns the event, its ticketed attendees and the shared
// validations.
func (s *Service) Export(ctx context.Context, eventID string) (models.ExportResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, r, err := s.eventRoster(ctx, eventID)
	if err != nil {
		return models.ExportResponse{}, err
	}
	data, err := ledger.Load(ctx, s.shared, eventID, s.logger)
	if err != nil {
		return models.ExportResponse{}, storageErr("export", err)
	}

	students := []models.Attendee{}
	for _, a := range r.Attendees {
		if a.HasTicket {
			students = append(students, a)
		}
	}
	validations := data.Validations
	if validations == nil {
		validations = []models.ValidationRecord{}
	}

	return models.ExportResponse{
		Event:       e,
		Students:    students,
		Validations: validations,
		ExportedAt:  s.clock.Now(),
		ExportedBy:  s.device.ID,
	}, nil
}
