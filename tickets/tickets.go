// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tickets

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/danielhkuo/ticketgate/clock"
	"github.com/danielhkuo/ticketgate/models"
)

var ErrInvalidPayload = errors.New("invalid ticket payload")

// Issuer stamps attendees with ticket numbers. Numbers come from a
// millisecond counter that never repeats within one Issuer.
type Issuer struct {
	clock clock.Clock

	mu   sync.Mutex
	last int64
}

func NewIssuer(clk clock.Clock) *Issuer {
	return &Issuer{clock: clk}
}

// next returns max(now, last+1) in unix milliseconds.
func (i *Issuer) next() int64 {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.clock.Now().UnixMilli()
	if now <= i.last {
		now = i.last + 1
	}
	i.last = now
	return now
}

// Number formats a counter value as TKT + its last 8 digits.
func Number(ms int64) string {
	s := fmt.Sprintf("%08d", ms)
	return "TKT" + s[len(s)-8:]
}

// Issue returns a copy of a with clamp(ticketCount, 1, 10) fresh ticket
// numbers. Any previous tickets and validation state are replaced.
func (i *Issuer) Issue(a models.Attendee) models.Attendee {
	count := min(max(a.TicketCount, 1), models.MaxTicketsPerAttendee)

	numbers := make([]string, count)
	for n := range numbers {
		numbers[n] = Number(i.next())
	}

	a.TicketCount = count
	a.TicketNumbers = numbers
	a.TicketNumber = numbers[0]
	a.HasTicket = true
	a.IsValidated = false
	a.ValidatedAt = nil
	a.ValidatedBy = ""
	return a
}

// Payload is the text encoded into a ticket's QR code.
type Payload struct {
	ID           string `json:"id"`
	TicketNumber string `json:"ticketNumber"`
	Name         string `json:"name"`
	StudentID    string `json:"studentId"`
}

// PayloadFor builds the payload for an attendee's ticket. An empty number
// selects the primary ticket.
func PayloadFor(a models.Attendee, ticketNumber string) Payload {
	if ticketNumber == "" {
		ticketNumber = a.PrimaryTicket()
	}
	return Payload{
		ID:           a.ID,
		TicketNumber: ticketNumber,
		Name:         a.Name,
		StudentID:    a.StudentID,
	}
}

func EncodePayload(p Payload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}
	return string(b), nil
}

// DecodePayload parses scanned QR text. The id field is required.
func DecodePayload(text string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	p.ID = strings.TrimSpace(p.ID)
	p.TicketNumber = strings.TrimSpace(p.TicketNumber)
	if p.ID == "" {
		return Payload{}, fmt.Errorf("%w: missing id", ErrInvalidPayload)
	}
	return p, nil
}
