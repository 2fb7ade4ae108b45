// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/ticketgate/auth"
	"github.com/danielhkuo/ticketgate/cliparse"
	"github.com/danielhkuo/ticketgate/clock"
	"github.com/danielhkuo/ticketgate/gate"
	"github.com/danielhkuo/ticketgate/models"
	"github.com/danielhkuo/ticketgate/store"
	"github.com/danielhkuo/ticketgate/syncer"
)

// TestDeviceID is the identity seeded into every test service's local store.
const TestDeviceID = "device_test"

// Start is the fake clock's initial time.
var Start = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

// Env is one test device: its service, sync coordinator and backing stores.
type Env struct {
	Service *gate.Service
	Coord   *syncer.Coordinator
	Local   *store.Memory
	Shared  *store.Memory
	Clock   *clock.FakeClock
	Config  cliparse.Config
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "file::memory:",
		AdminKeySalt: "test-admin-salt",
		SyncInterval: 5 * time.Second,
		FetchTimeout: 2 * time.Second,
		DeviceLabel:  "Test Door",
	}
}

// NewTestService builds a device over fresh in-memory stores and a fake
// clock. The coordinator is stopped when the test ends.
func NewTestService(t *testing.T) *Env {
	t.Helper()
	return NewTestServiceShared(t, store.NewMemory(), TestDeviceID)
}

// NewTestServiceShared builds a device with its own local store over an
// existing shared store, so several devices can exchange ledgers.
func NewTestServiceShared(t *testing.T, shared *store.Memory, deviceID string) *Env {
	t.Helper()

	cfg := GetTestConfig()
	local := store.NewMemory()
	if err := local.Set(context.Background(), store.DeviceIDKey, []byte(deviceID)); err != nil {
		t.Fatalf("Failed to seed device id: %v", err)
	}

	clk := clock.Fake(Start)
	svc := gate.New(context.Background(), gate.Options{
		Local:  local,
		Shared: shared,
		Clock:  clk,
		Label:  cfg.DeviceLabel,
	})
	coord := syncer.New(svc, clk, cfg.SyncInterval, nil)
	t.Cleanup(coord.Stop)

	return &Env{
		Service: svc,
		Coord:   coord,
		Local:   local,
		Shared:  shared,
		Clock:   clk,
		Config:  cfg,
	}
}

// CreateTestEvent creates an event and returns it with its admin key
func CreateTestEvent(t *testing.T, env *Env, name string) (models.Event, string) {
	t.Helper()

	e, err := env.Service.CreateEvent(context.Background(), models.CreateEventRequest{
		Name:     name,
		Date:     "2025-06-01",
		Time:     "19:00",
		Location: "Main Hall",
	})
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}
	return e, auth.GenerateAdminKey(e.ID, env.Config.AdminKeySalt)
}

// AddTestAttendee adds an attendee with count tickets already issued
func AddTestAttendee(t *testing.T, env *Env, eventID, name, email string, count int) models.Attendee {
	t.Helper()

	ctx := context.Background()
	a, err := env.Service.AddAttendee(ctx, eventID, models.AddAttendeeRequest{
		Name:        name,
		Email:       email,
		StudentID:   "S-" + name,
		TicketCount: count,
	})
	if err != nil {
		t.Fatalf("Failed to add test attendee: %v", err)
	}
	a, err = env.Service.IssueTicket(ctx, eventID, a.ID)
	if err != nil {
		t.Fatalf("Failed to issue test ticket: %v", err)
	}
	return a
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AdminHeader returns the X-Admin-Key header map for MakeRequest
func AdminHeader(key string) map[string]string {
	return map[string]string{"X-Admin-Key": key}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
