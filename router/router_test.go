// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/ticketgate/models"
	"github.com/danielhkuo/ticketgate/testutil"
)

func newTestRouter(t *testing.T) (*http.ServeMux, *testutil.Env) {
	t.Helper()
	env := testutil.NewTestService(t)
	return NewRouter(env.Service, env.Coord, env.Config), env
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "ticketgate API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	mux, _ := newTestRouter(t)

	// Test that routes respond (handler is invoked)
	// Note: most return 400/401/404 for a missing event, which is valid handler behavior
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},
		{"GET", "/devices/me"},

		// Events
		{"POST", "/events"},
		{"GET", "/events"},
		{"GET", "/events/current"},
		{"PUT", "/events/test-id"},
		{"POST", "/events/test-id/switch"},
		{"DELETE", "/events/test-id"},

		// Roster and tickets
		{"GET", "/events/test-id/attendees"},
		{"POST", "/events/test-id/attendees"},
		{"DELETE", "/events/test-id/attendees"},
		{"POST", "/events/test-id/import"},
		{"POST", "/events/test-id/attendees/a1/tickets"},
		{"POST", "/events/test-id/tickets"},
		{"GET", "/events/test-id/attendees/a1/pass"},

		// Door
		{"POST", "/events/test-id/scan"},
		{"POST", "/events/test-id/overrides"},

		// Sync and sharing
		{"POST", "/events/test-id/reconcile"},
		{"GET", "/events/test-id/ledger"},
		{"POST", "/events/test-id/sync/start"},
		{"POST", "/events/test-id/sync/stop"},
		{"POST", "/events/test-id/share"},
		{"POST", "/shares/EVT123/load"},
		{"GET", "/events/test-id/export"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := newTestRouter(t)

	// Test that unsupported methods on defined routes return 405
	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},           // Only GET is defined
		{"DELETE", "/events/id/scan"}, // Only POST is defined
		{"PUT", "/events/id/tickets"}, // Only POST is defined
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestPathParameterExtraction(t *testing.T) {
	mux, env := newTestRouter(t)
	e, adminKey := testutil.CreateTestEvent(t, env, "Prom")
	a := testutil.AddTestAttendee(t, env, e.ID, "Ada", "ada@example.com", 1)

	t.Run("event ID extraction", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/events/"+e.ID+"/switch", nil, testutil.AdminHeader(adminKey))
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		// The admin key is bound to the id, so 200 proves the id was extracted
		testutil.AssertStatus(t, w, http.StatusOK)
	})

	t.Run("attendee ID extraction", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/events/"+e.ID+"/attendees/"+a.ID+"/pass", nil, nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)
	})

	t.Run("current is not an event id", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/events/current", nil, nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var cur models.Event
		testutil.AssertJSON(t, w, &cur)
		if cur.ID != e.ID {
			t.Errorf("Expected current event %s, got %s", e.ID, cur.ID)
		}
	})
}
