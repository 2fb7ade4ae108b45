// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/ticketgate/clock"
	"github.com/danielhkuo/ticketgate/models"
)

// DefaultInterval is the polling cadence when none is configured.
const DefaultInterval = 5 * time.Second

// Reconciler merges the shared ledger of one event into local state.
type Reconciler interface {
	Reconcile(ctx context.Context, eventID string) (models.ReconcileReport, error)
}

// Coordinator polls a Reconciler for at most one event at a time.
type Coordinator struct {
	rec      Reconciler
	clock    clock.Clock
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	session *session
}

type session struct {
	eventID string
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(rec Reconciler, clk clock.Clock, interval time.Duration, logger *slog.Logger) *Coordinator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{rec: rec, clock: clk, interval: interval, logger: logger}
}

// Start begins polling eventID, replacing any running session. onUpdate,
// if non-nil, receives each successful report on the polling goroutine
// and must not call Start or Stop.
func (c *Coordinator) Start(eventID string, onUpdate func(models.ReconcileReport)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{eventID: eventID, cancel: cancel, done: make(chan struct{})}
	ticker := c.clock.NewTicker(c.interval)
	c.session = s

	c.logger.Info("sync started", "event_id", eventID, "interval", c.interval)
	go c.run(ctx, s, ticker, onUpdate)
}

func (c *Coordinator) run(ctx context.Context, s *session, ticker *clock.Ticker, onUpdate func(models.ReconcileReport)) {
	defer close(s.done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		report, err := c.rec.Reconcile(ctx, s.eventID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.logger.Warn("sync tick failed", "event_id", s.eventID, "error", err)
			continue
		}
		if len(report.Corrections) > 0 {
			c.logger.Warn("sync found conflicting admissions",
				"event_id", s.eventID,
				"corrections", len(report.Corrections),
			)
		}
		if onUpdate != nil {
			onUpdate(report)
		}
	}
}

// Stop ends the running session, if any, and waits for its goroutine.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Coordinator) stopLocked() {
	if c.session == nil {
		return
	}
	c.session.cancel()
	<-c.session.done
	c.logger.Info("sync stopped", "event_id", c.session.eventID)
	c.session = nil
}

// Active returns the event being polled, or "" when idle.
func (c *Coordinator) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.eventID
}
