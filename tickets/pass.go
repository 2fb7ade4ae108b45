// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tickets

import (
	"errors"

	"github.com/danielhkuo/ticketgate/models"
)

var ErrNoTicket = errors.New("attendee has no ticket")

// Pass is the data handed to a wallet provider. Building the signed pass
// file is the provider's job.
type Pass struct {
	SerialNumber  string   `json:"serialNumber"`
	AttendeeID    string   `json:"attendeeId"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	StudentID     string   `json:"studentId"`
	TicketNumber  string   `json:"ticketNumber"`
	TicketNumbers []string `json:"ticketNumbers"`
	TicketCount   int      `json:"ticketCount"`
	GuestName     string   `json:"guestName,omitempty"`
	GuestSchool   string   `json:"guestSchool,omitempty"`
	EventID       string   `json:"eventId"`
	EventTitle    string   `json:"eventTitle"`
	EventDate     string   `json:"eventDate"`
	EventTime     string   `json:"eventTime"`
	EventLocation string   `json:"eventLocation,omitempty"`
	QRPayload     string   `json:"qrPayload"`
}

func NewPass(event models.Event, a models.Attendee) (Pass, error) {
	if !a.HasTicket || a.PrimaryTicket() == "" {
		return Pass{}, ErrNoTicket
	}

	qr, err := EncodePayload(PayloadFor(a, ""))
	if err != nil {
		return Pass{}, err
	}

	numbers := a.TicketNumbers
	if len(numbers) == 0 {
		numbers = []string{a.PrimaryTicket()}
	}

	return Pass{
		SerialNumber:  a.PrimaryTicket(),
		AttendeeID:    a.ID,
		Name:          a.Name,
		Email:         a.Email,
		StudentID:     a.StudentID,
		TicketNumber:  a.PrimaryTicket(),
		TicketNumbers: numbers,
		TicketCount:   max(a.TicketCount, len(numbers)),
		GuestName:     a.GuestName,
		GuestSchool:   a.GuestSchool,
		EventID:       event.ID,
		EventTitle:    event.Name,
		EventDate:     event.Date,
		EventTime:     event.Time,
		EventLocation: event.Location,
		QRPayload:     qr,
	}, nil
}
