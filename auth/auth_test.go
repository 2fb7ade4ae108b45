// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

func TestGeneratedIDShape(t *testing.T) {
	ms := strconv.FormatInt(t0.UnixMilli(), 10)

	tests := []struct {
		name   string
		gen    func(time.Time) string
		prefix string
	}{
		{"device", NewDeviceID, "device_"},
		{"event", NewEventID, "event_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pattern := regexp.MustCompile(`^` + tt.prefix + ms + `_[0-9a-z]{9}$`)
			seen := make(map[string]bool)
			for range 200 {
				id := tt.gen(t0)
				if !pattern.MatchString(id) {
					t.Fatalf("%q does not match %s", id, pattern)
				}
				if seen[id] {
					t.Fatalf("duplicate id %q at the same instant", id)
				}
				seen[id] = true
			}
		})
	}
}

func TestRandomBase36(t *testing.T) {
	for _, n := range []int{1, 6, 9, 32} {
		s := RandomBase36(n)
		if len(s) != n {
			t.Errorf("RandomBase36(%d) length = %d", n, len(s))
		}
		if strings.Trim(s, base36Chars) != "" {
			t.Errorf("RandomBase36(%d) = %q has chars outside [0-9a-z]", n, s)
		}
	}

	// 36^9 values; a collision here means the generator is stuck
	seen := make(map[string]bool)
	for range 1000 {
		s := RandomBase36(9)
		if seen[s] {
			t.Fatalf("RandomBase36 repeated %q", s)
		}
		seen[s] = true
	}
}

func TestAdminKey(t *testing.T) {
	const salt = "test-admin-salt"
	eventID := NewEventID(t0)
	key := GenerateAdminKey(eventID, salt)

	if key != GenerateAdminKey(eventID, salt) {
		t.Fatal("admin key should be deterministic")
	}
	if strings.ContainsAny(key, "+/=") {
		t.Errorf("admin key %q is not URL-safe", key)
	}

	tests := []struct {
		name    string
		eventID string
		key     string
		salt    string
		wantErr bool
	}{
		{"valid", eventID, key, salt, false},
		{"other event", NewEventID(t0), key, salt, true},
		{"other salt", eventID, key, "rotated", true},
		{"empty key", eventID, "", salt, true},
		{"truncated key", eventID, key[:len(key)-1], salt, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdminKey(tt.eventID, tt.key, tt.salt)
			if tt.wantErr && !errors.Is(err, ErrInvalidAdminKey) {
				t.Errorf("ValidateAdminKey() = %v, want ErrInvalidAdminKey", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateAdminKey() unexpected error: %v", err)
			}
		})
	}
}

func TestGenerateIDForRequests(t *testing.T) {
	id, err := GenerateID(8)
	if err != nil {
		t.Fatalf("GenerateID() error = %v", err)
	}
	if !regexp.MustCompile(`^[0-9a-f]{16}$`).MatchString(id) {
		t.Errorf("GenerateID(8) = %q, want 16 hex chars", id)
	}
}
