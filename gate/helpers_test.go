// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/ticketgate/clock"
	"github.com/danielhkuo/ticketgate/models"
	"github.com/danielhkuo/ticketgate/store"
)

var t0 = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

var errOffline = errors.New("store offline")

// flakyStore fails Get or Set for keys with a given prefix while enabled.
type flakyStore struct {
	store.Store

	mu        sync.Mutex
	failGet   string
	failSet   string
	staleNext map[string][]byte
	afterSet  func(key string)
}

func newFlaky(inner store.Store) *flakyStore {
	return &flakyStore{Store: inner, staleNext: make(map[string][]byte)}
}

func (f *flakyStore) FailGet(prefix string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failGet = prefix
}

func (f *flakyStore) FailSet(prefix string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSet = prefix
}

// AfterNextSet runs fn once, right after the next successful Set.
func (f *flakyStore) AfterNextSet(fn func(key string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.afterSet = fn
}

// ServeStale makes the next Get of key return value (nil means absent),
// as a lagging replica would.
func (f *flakyStore) ServeStale(key string, value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.staleNext[key] = value
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	if f.failGet != "" && strings.HasPrefix(key, f.failGet) {
		f.mu.Unlock()
		return nil, errOffline
	}
	if v, ok := f.staleNext[key]; ok {
		delete(f.staleNext, key)
		f.mu.Unlock()
		if v == nil {
			return nil, store.ErrNotFound
		}
		return v, nil
	}
	f.mu.Unlock()
	return f.Store.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	fail := f.failSet != "" && strings.HasPrefix(key, f.failSet)
	f.mu.Unlock()
	if fail {
		return errOffline
	}
	if err := f.Store.Set(ctx, key, value); err != nil {
		return err
	}

	f.mu.Lock()
	hook := f.afterSet
	f.afterSet = nil
	f.mu.Unlock()
	if hook != nil {
		hook(key)
	}
	return nil
}

type device struct {
	svc   *Service
	local *flakyStore
}

// newDevice builds a Service with a fixed device id over shared.
func newDevice(t *testing.T, id string, shared store.Store, clk clock.Clock) device {
	t.Helper()
	local := newFlaky(store.NewMemory())
	if id != "" {
		if err := local.Set(context.Background(), store.DeviceIDKey, []byte(id)); err != nil {
			t.Fatalf("seed device id: %v", err)
		}
	}
	svc := New(context.Background(), Options{
		Local:  local,
		Shared: shared,
		Clock:  clk,
		Label:  "Door " + strings.TrimPrefix(id, "device_"),
	})
	return device{svc: svc, local: local}
}

func createEvent(t *testing.T, svc *Service, name string) models.Event {
	t.Helper()
	e, err := svc.CreateEvent(context.Background(), models.CreateEventRequest{
		Name: name,
		Date: "2025-06-01",
		Time: "19:00",
	})
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	return e
}

func addTicketed(t *testing.T, svc *Service, eventID, name, email string, count int) models.Attendee {
	t.Helper()
	ctx := context.Background()
	a, err := svc.AddAttendee(ctx, eventID, models.AddAttendeeRequest{
		Name:        name,
		Email:       email,
		StudentID:   "S-" + name,
		TicketCount: count,
	})
	if err != nil {
		t.Fatalf("AddAttendee failed: %v", err)
	}
	a, err = svc.IssueTicket(ctx, eventID, a.ID)
	if err != nil {
		t.Fatalf("IssueTicket failed: %v", err)
	}
	return a
}

func findByID(t *testing.T, svc *Service, eventID, id string) models.Attendee {
	t.Helper()
	a, err := svc.Attendee(context.Background(), eventID, id)
	if err != nil {
		t.Fatalf("Attendee(%s) failed: %v", id, err)
	}
	return a
}

func assertStatus(t *testing.T, out models.Outcome, want string) {
	t.Helper()
	if out.Status != want {
		t.Fatalf("status = %q (%s), want %q", out.Status, out.Message, want)
	}
}
