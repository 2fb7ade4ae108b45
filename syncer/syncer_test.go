// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/ticketgate/clock"
	"github.com/danielhkuo/ticketgate/models"
)

type fakeReconciler struct {
	mu     sync.Mutex
	calls  []string
	failOn map[int]bool
}

func (f *fakeReconciler) Reconcile(ctx context.Context, eventID string) (models.ReconcileReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, eventID)
	if f.failOn[len(f.calls)] {
		return models.ReconcileReport{}, errors.New("shared store offline")
	}
	return models.ReconcileReport{EventID: eventID, Adopted: len(f.calls)}, nil
}

func (f *fakeReconciler) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestCoordinatorTicks(t *testing.T) {
	clk := clock.Fake(time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC))
	rec := &fakeReconciler{failOn: map[int]bool{2: true}}
	c := New(rec, clk, 5*time.Second, nil)

	updates := make(chan models.ReconcileReport, 10)
	c.Start("event_1", func(r models.ReconcileReport) { updates <- r })
	defer c.Stop()

	if got := c.Active(); got != "event_1" {
		t.Errorf("Active = %q, want event_1", got)
	}
	clk.WaitForTickers(1)

	// No time passed, no tick
	if rec.count() != 0 {
		t.Fatalf("reconciled before the first interval")
	}

	for i := 1; i <= 3; i++ {
		clk.Advance(5 * time.Second)
		waitFor(t, func() bool { return rec.count() >= i })
	}

	// Tick 2 failed; polling carried on
	var got []int
	for len(got) < 2 {
		select {
		case r := <-updates:
			got = append(got, r.Adopted)
		case <-time.After(2 * time.Second):
			t.Fatalf("got %d updates, want 2", len(got))
		}
	}
	if got[0] != 1 || got[1] != 3 {
		t.Errorf("updates = %v, want [1 3]", got)
	}
}

func TestCoordinatorStop(t *testing.T) {
	clk := clock.Fake(time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC))
	rec := &fakeReconciler{}
	c := New(rec, clk, time.Second, nil)

	c.Start("event_1", nil)
	clk.WaitForTickers(1)
	c.Stop()

	if clk.ActiveTickers() != 0 {
		t.Errorf("ticker still active after Stop")
	}
	if c.Active() != "" {
		t.Errorf("Active = %q after Stop", c.Active())
	}

	clk.Advance(10 * time.Second)
	time.Sleep(10 * time.Millisecond)
	if rec.count() != 0 {
		t.Errorf("reconciled %d times after Stop", rec.count())
	}

	// Stopping twice is harmless
	c.Stop()
}

func TestCoordinatorStartReplacesSession(t *testing.T) {
	clk := clock.Fake(time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC))
	rec := &fakeReconciler{}
	c := New(rec, clk, time.Second, nil)

	c.Start("event_1", nil)
	c.Start("event_2", nil)
	defer c.Stop()

	if got := c.Active(); got != "event_2" {
		t.Errorf("Active = %q, want event_2", got)
	}
	if n := clk.ActiveTickers(); n != 1 {
		t.Errorf("ActiveTickers = %d, want 1", n)
	}

	clk.Advance(time.Second)
	waitFor(t, func() bool { return rec.count() >= 1 })

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, id := range rec.calls {
		if id != "event_2" {
			t.Errorf("reconciled %q after replacement", id)
		}
	}
}
