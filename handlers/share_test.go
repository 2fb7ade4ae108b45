// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/ticketgate/models"
	"github.com/danielhkuo/ticketgate/store"
	"github.com/danielhkuo/ticketgate/testutil"
)

func TestShareAndLoadAcrossDevices(t *testing.T) {
	shared := store.NewMemory()
	door1 := testutil.NewTestServiceShared(t, shared, "device_door1")
	door2 := testutil.NewTestServiceShared(t, shared, "device_door2")

	e, _ := testutil.CreateTestEvent(t, door1, "Prom")
	testutil.AddTestAttendee(t, door1, e.ID, "Ada", "ada@example.com", 1)
	testutil.AddTestAttendee(t, door1, e.ID, "Grace", "grace@example.com", 2)

	req := testutil.MakeRequest("POST", "/events/"+e.ID+"/share", nil, nil)
	req.SetPathValue("id", e.ID)
	w := httptest.NewRecorder()
	NewShareHandler(door1.Service).Share(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var shareResp models.ShareResponse
	testutil.AssertJSON(t, w, &shareResp)
	if !strings.HasPrefix(shareResp.ShareCode, "EVT") || shareResp.Students != 2 {
		t.Fatalf("Unexpected share response: %+v", shareResp)
	}

	code := strings.ToLower(shareResp.ShareCode)
	req = testutil.MakeRequest("POST", "/shares/"+code+"/load", nil, nil)
	req.SetPathValue("code", code)
	w = httptest.NewRecorder()
	NewShareHandler(door2.Service).Load(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var loadResp models.LoadShareResponse
	testutil.AssertJSON(t, w, &loadResp)
	if loadResp.Event.ID != e.ID || len(loadResp.Students) != 2 || !loadResp.EventAdopted {
		t.Errorf("Unexpected load response: %+v", loadResp)
	}
}

func TestLoadErrors(t *testing.T) {
	env := testutil.NewTestService(t)
	handler := NewShareHandler(env.Service)

	tests := []struct {
		name           string
		code           string
		expectedStatus int
	}{
		{"unknown code", "EVTNOPE", http.StatusNotFound},
		{"invalid code", "hello", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/shares/"+tt.code+"/load", nil, nil)
			req.SetPathValue("code", tt.code)
			w := httptest.NewRecorder()
			handler.Load(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestExport(t *testing.T) {
	env := testutil.NewTestService(t)
	handler := NewShareHandler(env.Service)
	e, _ := testutil.CreateTestEvent(t, env, "Prom")
	testutil.AddTestAttendee(t, env, e.ID, "Ada", "ada@example.com", 1)

	req := testutil.MakeRequest("GET", "/events/"+e.ID+"/export", nil, nil)
	req.SetPathValue("id", e.ID)
	w := httptest.NewRecorder()
	handler.Export(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, e.ID+".json") {
		t.Errorf("Expected attachment filename, got %q", cd)
	}

	var resp models.ExportResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Event.ID != e.ID || len(resp.Students) != 1 || resp.ExportedBy != testutil.TestDeviceID {
		t.Errorf("Unexpected export: %+v", resp)
	}
}
