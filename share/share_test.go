// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package share

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/ticketgate/clock"
	"github.com/danielhkuo/ticketgate/models"
	"github.com/danielhkuo/ticketgate/store"
)

var t0 = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

func testBundle() Bundle {
	event := models.Event{ID: "event_1", Name: "Spring Formal", Date: "2025-06-01", Time: "19:00", CreatedAt: t0, UpdatedAt: t0}
	attendees := []models.Attendee{
		{ID: "a", Name: "Ada", Email: "ada@x.io", HasTicket: true, TicketNumber: "TKT1", TicketNumbers: []string{"TKT1"}, TicketCount: 1},
		{ID: "b", Name: "Bob", Email: "bob@x.io"},
		{ID: "c", Name: "Cy", Email: "cy@x.io", HasTicket: true, TicketNumber: "TKT2", TicketNumbers: []string{"TKT2", "TKT3"}, TicketCount: 2},
	}
	return NewBundle(event, attendees, "device_1", t0)
}

func TestNewBundleKeepsTicketedOnly(t *testing.T) {
	b := testBundle()
	if len(b.Students) != 2 {
		t.Fatalf("len(Students) = %d, want 2", len(b.Students))
	}
	for _, s := range b.Students {
		if !s.HasTicket {
			t.Errorf("unticketed attendee %q in bundle", s.ID)
		}
	}
	if b.Schema != Schema || b.Version != Version {
		t.Errorf("schema/version = %q/%d", b.Schema, b.Version)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b := testBundle()
	raw, err := Encode(b)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Event.ID != "event_1" || len(got.Students) != 2 || got.DeviceID != "device_1" {
		t.Errorf("decoded %+v", got)
	}
	if !got.CreatedAt.Equal(t0) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, t0)
	}
	if got.Students[1].TicketNumbers[1] != "TKT3" {
		t.Errorf("ticket numbers lost: %+v", got.Students[1])
	}
}

func mutateEnvelope(t *testing.T, raw []byte, fn func(e *envelope)) []byte {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	fn(&env)
	out, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return out
}

func TestDecodeRejects(t *testing.T) {
	raw, err := Encode(testBundle())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	tests := []struct {
		name string
		raw  []byte
		want error
	}{
		{"not json", []byte("EVT garbage"), ErrCorrupt},
		{"wrong schema", mutateEnvelope(t, raw, func(e *envelope) { e.Schema = "other" }), ErrCorrupt},
		{"future version", mutateEnvelope(t, raw, func(e *envelope) { e.Version = 2 }), ErrUnsupportedVersion},
		{"bad base64", mutateEnvelope(t, raw, func(e *envelope) { e.Payload = "!!!" }), ErrCorrupt},
		{"not zstd", mutateEnvelope(t, raw, func(e *envelope) { e.Payload = "aGVsbG8=" }), ErrCorrupt},
		{"digest mismatch", mutateEnvelope(t, raw, func(e *envelope) { e.Digest = strings.Repeat("0", 64) }), ErrCorrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.raw); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"EVTLX3K9Q2A", "EVTLX3K9Q2A", false},
		{"  evtlx3k9q2a \n", "EVTLX3K9Q2A", false},
		{"EVT", "", true},
		{"ABC123", "", true},
		{"EVT-123", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidCode) {
				t.Errorf("Normalize(%q) err = %v, want ErrInvalidCode", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Normalize(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestCodesAreMonotonic(t *testing.T) {
	codes := NewCodes(clock.Fake(t0))
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		c := codes.Next()
		if _, err := Normalize(c); err != nil {
			t.Fatalf("generated code %q does not validate: %v", c, err)
		}
		if seen[c] {
			t.Fatalf("duplicate code %q", c)
		}
		seen[c] = true
	}
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	codes := NewCodes(clock.Fake(t0))

	code, err := Put(ctx, s, codes, testBundle())
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Lookup is case-insensitive and does not consume the code
	for i := 0; i < 2; i++ {
		b, canonical, err := Get(ctx, s, strings.ToLower(code))
		if err != nil {
			t.Fatalf("Get #%d failed: %v", i+1, err)
		}
		if canonical != code || len(b.Students) != 2 {
			t.Errorf("Get #%d = %q, %d students", i+1, canonical, len(b.Students))
		}
	}

	if _, _, err := Get(ctx, s, "EVT0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown code err = %v, want ErrNotFound", err)
	}
	if _, _, err := Get(ctx, s, "nope"); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("malformed code err = %v, want ErrInvalidCode", err)
	}
}

func TestPutNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	clk := clock.Fake(t0)

	// Another device already used the code this clock would produce first
	taken := NewCodes(clk).Next()
	s.Set(ctx, store.ShareKey(taken), []byte("occupied"))

	code, err := Put(ctx, s, NewCodes(clk), testBundle())
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if code == taken {
		t.Fatalf("Put reused code %q", code)
	}
	raw, _ := s.Get(ctx, store.ShareKey(taken))
	if string(raw) != "occupied" {
		t.Error("existing code was overwritten")
	}
}

func TestGetCorrupt(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	s.Set(ctx, store.ShareKey("EVTBAD"), []byte("{}"))

	if _, _, err := Get(ctx, s, "evtbad"); !errors.Is(err, ErrCorrupt) {
		t.Errorf("err = %v, want ErrCorrupt", err)
	}
}
