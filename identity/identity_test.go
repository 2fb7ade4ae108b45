// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/ticketgate/clock"
	"github.com/danielhkuo/ticketgate/store"
)

type brokenStore struct {
	getErr error
	setErr error
	inner  *store.Memory
}

func (b *brokenStore) Get(ctx context.Context, key string) ([]byte, error) {
	if b.getErr != nil {
		return nil, b.getErr
	}
	return b.inner.Get(ctx, key)
}

func (b *brokenStore) Set(ctx context.Context, key string, value []byte) error {
	if b.setErr != nil {
		return b.setErr
	}
	return b.inner.Set(ctx, key, value)
}

func (b *brokenStore) Remove(ctx context.Context, key string) error {
	return b.inner.Remove(ctx, key)
}

func TestGetOrCreateIsStable(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	clk := clock.Fake(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC))

	first := GetOrCreate(ctx, s, clk, nil)
	if !first.Persisted {
		t.Fatal("expected id to be persisted")
	}
	if !strings.HasPrefix(first.ID, "device_") {
		t.Errorf("ID = %q, want device_ prefix", first.ID)
	}

	// Later calls and "restarts" return the same id
	clk.Advance(time.Hour)
	second := GetOrCreate(ctx, s, clk, nil)
	if second.ID != first.ID {
		t.Errorf("second call ID = %q, want %q", second.ID, first.ID)
	}

	stored, err := s.Get(ctx, store.DeviceIDKey)
	if err != nil || string(stored) != first.ID {
		t.Errorf("stored id = %q (err %v), want %q", stored, err, first.ID)
	}
}

func TestGetOrCreateStorageFailure(t *testing.T) {
	clk := clock.Fake(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		s    *brokenStore
	}{
		{"read fails", &brokenStore{getErr: errors.New("disk gone"), inner: store.NewMemory()}},
		{"write fails", &brokenStore{setErr: errors.New("read-only"), inner: store.NewMemory()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := GetOrCreate(context.Background(), tt.s, clk, nil)
			if dev.ID == "" {
				t.Fatal("expected a fallback id")
			}
			if dev.Persisted {
				t.Error("fallback id must not be reported as persisted")
			}
		})
	}
}
