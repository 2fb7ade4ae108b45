// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gate

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/danielhkuo/ticketgate/auth"
	"github.com/danielhkuo/ticketgate/codec"
	"github.com/danielhkuo/ticketgate/models"
	"github.com/danielhkuo/ticketgate/store"
)

var dataURLPattern = regexp.MustCompile(`^data:[A-Za-z0-9.+-]+/[A-Za-z0-9.+-]+;base64,[A-Za-z0-9+/]+={0,2}$`)

// cleanImageURL drops data: URLs that are not data:<mime>;base64,<data>.
func cleanImageURL(u string) string {
	u = strings.TrimSpace(u)
	if strings.HasPrefix(u, "data:") && !dataURLPattern.MatchString(u) {
		return ""
	}
	return u
}

// normalizeSettings enforces that currentEvent is nil or the copy held in
// events. With no current event the first event is adopted.
func normalizeSettings(st *models.EventSettings) {
	if st.CurrentEvent != nil {
		id := st.CurrentEvent.ID
		st.CurrentEvent = nil
		for i := range st.Events {
			if st.Events[i].ID == id {
				cur := st.Events[i]
				st.CurrentEvent = &cur
				break
			}
		}
	}
	if st.CurrentEvent == nil && len(st.Events) > 0 {
		cur := st.Events[0]
		st.CurrentEvent = &cur
	}
}

func (s *Service) loadSettings(ctx context.Context) (models.EventSettings, error) {
	var st models.EventSettings
	raw, err := s.local.Get(ctx, store.EventSettingsKey)
	if errors.Is(err, store.ErrNotFound) {
		return st, nil
	}
	if err != nil {
		return st, storageErr("read event settings", err)
	}
	if err := codec.Unmarshal(raw, &st); err != nil {
		s.logger.Warn("corrupt event settings reset", "error", err)
		return models.EventSettings{}, nil
	}
	normalizeSettings(&st)
	return st, nil
}

func (s *Service) saveSettings(ctx context.Context, st models.EventSettings) error {
	normalizeSettings(&st)
	raw, err := codec.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode event settings: %w", err)
	}
	if err := s.local.Set(ctx, store.EventSettingsKey, raw); err != nil {
		return storageErr("write event settings", err)
	}
	return nil
}

func findEvent(st models.EventSettings, id string) (int, bool) {
	for i, e := range st.Events {
		if e.ID == id {
			return i, true
		}
	}
	return -1, false
}

// event looks up a known event. Callers hold s.mu.
func (s *Service) event(ctx context.Context, id string) (models.Event, error) {
	st, err := s.loadSettings(ctx)
	if err != nil {
		return models.Event{}, err
	}
	i, ok := findEvent(st, id)
	if !ok {
		return models.Event{}, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return st.Events[i], nil
}

// CreateEvent validates req, stores the new event and makes it current.
func (s *Service) CreateEvent(ctx context.Context, req models.CreateEventRequest) (models.Event, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return models.Event{}, fmt.Errorf("%w: %s", ErrInvalidEvent, validationMessage(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadSettings(ctx)
	if err != nil {
		return models.Event{}, err
	}

	now := s.clock.Now()
	e := models.Event{
		ID:           auth.NewEventID(now),
		Name:         req.Name,
		Date:         req.Date,
		Time:         req.Time,
		Location:     strings.TrimSpace(req.Location),
		Description:  strings.TrimSpace(req.Description),
		Instructions: strings.TrimSpace(req.Instructions),
		Directions:   strings.TrimSpace(req.Directions),
		ImageURL:     cleanImageURL(req.ImageURL),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	st.Events = append(st.Events, e)
	st.CurrentEvent = &e

	if err := s.saveSettings(ctx, st); err != nil {
		return models.Event{}, err
	}

	s.logger.Info("event created", "event_id", e.ID, "name", e.Name)
	return e, nil
}

// UpdateEvent applies a partial patch. The id and createdAt never change.
func (s *Service) UpdateEvent(ctx context.Context, id string, req models.UpdateEventRequest) (models.Event, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.Event{}, fmt.Errorf("%w: %s", ErrInvalidEvent, validationMessage(err))
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return models.Event{}, fmt.Errorf("%w: name: required", ErrInvalidEvent)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadSettings(ctx)
	if err != nil {
		return models.Event{}, err
	}
	i, ok := findEvent(st, id)
	if !ok {
		return models.Event{}, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}

	e := st.Events[i]
	patch := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	patch(&e.Name, req.Name)
	patch(&e.Date, req.Date)
	patch(&e.Time, req.Time)
	patch(&e.Location, req.Location)
	patch(&e.Description, req.Description)
	patch(&e.Instructions, req.Instructions)
	patch(&e.Directions, req.Directions)
	if req.ImageURL != nil {
		e.ImageURL = cleanImageURL(*req.ImageURL)
	}
	e.UpdatedAt = s.clock.Now()
	st.Events[i] = e

	if err := s.saveSettings(ctx, st); err != nil {
		return models.Event{}, err
	}

	s.logger.Info("event updated", "event_id", id)
	return e, nil
}

// SwitchEvent makes a known event current.
func (s *Service) SwitchEvent(ctx context.Context, id string) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadSettings(ctx)
	if err != nil {
		return models.Event{}, err
	}
	i, ok := findEvent(st, id)
	if !ok {
		return models.Event{}, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	e := st.Events[i]
	st.CurrentEvent = &e

	if err := s.saveSettings(ctx, st); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// DeleteEvent removes an event and this device's roster for it. The shared
// ledger is left alone. A deleted current event falls back to the first
// remaining one, or none.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadSettings(ctx)
	if err != nil {
		return err
	}
	i, ok := findEvent(st, id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}

	st.Events = append(st.Events[:i:i], st.Events[i+1:]...)
	if st.CurrentEvent != nil && st.CurrentEvent.ID == id {
		st.CurrentEvent = nil
	}
	if err := s.saveSettings(ctx, st); err != nil {
		return err
	}

	if err := s.local.Remove(ctx, store.RosterKey(id)); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("failed to remove roster of deleted event", "event_id", id, "error", err)
	}

	s.logger.Info("event deleted", "event_id", id)
	return nil
}

// Events lists known events in creation order.
func (s *Service) Events(ctx context.Context) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}
	if st.Events == nil {
		return []models.Event{}, nil
	}
	return st.Events, nil
}

// CurrentEvent returns the selected event, or nil when there is none.
func (s *Service) CurrentEvent(ctx context.Context) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}
	return st.CurrentEvent, nil
}

// Event returns one known event.
func (s *Service) Event(ctx context.Context, id string) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.event(ctx, id)
}
