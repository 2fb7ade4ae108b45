// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/danielhkuo/ticketgate/clock"
	"github.com/danielhkuo/ticketgate/identity"
	"github.com/danielhkuo/ticketgate/roster"
	"github.com/danielhkuo/ticketgate/share"
	"github.com/danielhkuo/ticketgate/store"
	"github.com/danielhkuo/ticketgate/tickets"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrAttendeeNotFound = errors.New("attendee not found")
	ErrDuplicateEmail   = errors.New("an attendee with this email already exists")
	ErrInvalidEvent     = errors.New("invalid event")
	ErrInvalidAttendee  = errors.New("invalid attendee")
	ErrInvalidOverride  = errors.New("invalid override")
	ErrUnknownTicket    = errors.New("ticket does not belong to attendee")
	ErrNotValidated     = errors.New("ticket has not been validated")
	// ErrStorage marks a failed read or write of the durable store. The
	// operation may be retried; local state was not changed.
	ErrStorage = errors.New("storage unavailable")
)

// DefaultLabel names the validator when a scan does not.
const DefaultLabel = "Scanner"

// Fetcher downloads roster text for a spreadsheet link.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Options configure a Service. Local and Shared are required.
type Options struct {
	Local  store.Store
	Shared store.Store
	Clock  clock.Clock
	Logger *slog.Logger

	Fetcher Fetcher
	// NewID generates attendee and override ids. Defaults to uuid.NewString.
	NewID func() string
	Label string
}

// Service owns one device's state: its identity, events, rosters and its
// view of the shared ledgers. Every operation runs under one mutex, so scans
// and sync ticks interleave but never overlap.
type Service struct {
	mu sync.Mutex

	local   store.Store
	shared  store.Store
	clock   clock.Clock
	logger  *slog.Logger
	fetcher Fetcher
	newID   func() string
	label   string

	validate *validator.Validate
	issuer   *tickets.Issuer
	codes    *share.Codes
	device   identity.Device
}

// New builds a Service and resolves the device identity.
func New(ctx context.Context, opts Options) *Service {
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = roster.NewFetcher(roster.DefaultFetchTimeout, logger)
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	label := strings.TrimSpace(opts.Label)
	if label == "" {
		label = DefaultLabel
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	s := &Service{
		local:    opts.Local,
		shared:   opts.Shared,
		clock:    clk,
		logger:   logger,
		fetcher:  fetcher,
		newID:    newID,
		label:    label,
		validate: v,
		issuer:   tickets.NewIssuer(clk),
		codes:    share.NewCodes(clk),
	}
	s.device = identity.GetOrCreate(ctx, opts.Local, clk, logger)
	s.logger = logger.With("device_id", s.device.ID)
	return s
}

// DeviceID is this installation's id.
func (s *Service) DeviceID() string { return s.device.ID }

// Device reports the id and whether it survived storage.
func (s *Service) Device() identity.Device { return s.device }

// Label is the default validator label.
func (s *Service) Label() string { return s.label }

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// validationMessage flattens validator errors into "field: rule" pairs.
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fe.Field()+": "+rule)
	}
	return strings.Join(parts, ", ")
}
