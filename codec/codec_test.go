// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package codec

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

type doc struct {
	ID    string    `json:"id"`
	At    time.Time `json:"at"`
	Names []string  `json:"names,omitempty"`
}

func TestTimePrecisionSurvives(t *testing.T) {
	in := doc{ID: "a", At: time.Date(2025, 6, 1, 18, 0, 0, 123456789, time.UTC)}

	b, err := Marshal(in)
	if err != nil {
		t.Fatal(err)
	}

	var out doc
	if err := Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if !out.At.Equal(in.At) {
		t.Errorf("time = %v, want %v", out.At, in.At)
	}
}

func TestDeterministic(t *testing.T) {
	in := map[string]int{"b": 2, "a": 1, "c": 3}
	first, _ := Marshal(in)
	for i := 0; i < 10; i++ {
		again, _ := Marshal(in)
		if !bytes.Equal(first, again) {
			t.Fatal("Marshal is not deterministic for maps")
		}
	}
}

func TestCorruptInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("not cbor {{{")},
		{"truncated", []byte{0xa1, 0x62}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out doc
			err := Unmarshal(tt.data, &out)
			if !errors.Is(err, ErrCorrupt) {
				t.Errorf("Unmarshal() error = %v, want ErrCorrupt", err)
			}
		})
	}
}
