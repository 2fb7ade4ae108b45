package models

import (
	"strings"
	"time"
)

// Validation outcome constants
const (
	StatusAdmitted        = "admitted"
	StatusAlreadyAdmitted = "already_admitted"
	StatusRejected        = "rejected"
)

// MaxTicketsPerAttendee caps ticketCount at import and issuance.
const MaxTicketsPerAttendee = 10

// Domain types

type Attendee struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	StudentID     string     `json:"studentId"`
	HasTicket     bool       `json:"hasTicket"`
	TicketNumber  string     `json:"ticketNumber,omitempty"`
	TicketNumbers []string   `json:"ticketNumbers,omitempty"`
	TicketCount   int        `json:"ticketCount,omitempty"`
	IsValidated   bool       `json:"isValidated"`
	ValidatedAt   *time.Time `json:"validatedAt,omitempty"`
	ValidatedBy   string     `json:"validatedBy,omitempty"`
	GuestName     string     `json:"guestName,omitempty"`
	GuestSchool   string     `json:"guestSchool,omitempty"`
}

// EmailKey is the case-insensitive de-duplication key.
func (a Attendee) EmailKey() string {
	return strings.ToLower(strings.TrimSpace(a.Email))
}

// PrimaryTicket returns ticketNumber, falling back to the first of
// ticketNumbers.
func (a Attendee) PrimaryTicket() string {
	if a.TicketNumber != "" {
		return a.TicketNumber
	}
	if len(a.TicketNumbers) > 0 {
		return a.TicketNumbers[0]
	}
	return ""
}

// HoldsTicket reports whether number is one of the attendee's tickets.
func (a Attendee) HoldsTicket(number string) bool {
	if number == "" {
		return false
	}
	if number == a.TicketNumber {
		return true
	}
	for _, n := range a.TicketNumbers {
		if n == number {
			return true
		}
	}
	return false
}

// ValidationRecord is immutable once written. StudentID carries the
// attendee id encoded in the scanned QR payload.
type ValidationRecord struct {
	StudentID    string    `json:"studentId"`
	TicketNumber string    `json:"ticketNumber"`
	ValidatedAt  time.Time `json:"validatedAt"`
	ValidatedBy  string    `json:"validatedBy"`
	DeviceID     string    `json:"deviceId"`
	EventID      string    `json:"eventId"`
}

// OverrideRecord audits a supervised re-admission of a ticket that was
// already validated. The original ValidationRecord is left untouched.
type OverrideRecord struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"studentId"`
	TicketNumber string    `json:"ticketNumber"`
	Reason       string    `json:"reason"`
	Supervisor   string    `json:"supervisor"`
	OverriddenAt time.Time `json:"overriddenAt"`
	DeviceID     string    `json:"deviceId"`
	EventID      string    `json:"eventId"`
}

type Event struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Date         string    `json:"date"` // YYYY-MM-DD
	Time         string    `json:"time"` // HH:MM
	Location     string    `json:"location,omitempty"`
	Description  string    `json:"description,omitempty"`
	Instructions string    `json:"instructions,omitempty"`
	Directions   string    `json:"directions,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type EventSettings struct {
	CurrentEvent *Event  `json:"currentEvent"`
	Events       []Event `json:"events"`
}

// Roster is the device-local document for one event: the attendee list and
// the validation and override records this device knows about.
type Roster struct {
	EventID     string             `json:"eventId"`
	Attendees   []Attendee         `json:"attendees"`
	Validations []ValidationRecord `json:"validations"`
	Overrides   []OverrideRecord   `json:"overrides,omitempty"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// SyncData is the shared per-event ledger snapshot.
type SyncData struct {
	Students    []Attendee         `json:"students"`
	Validations []ValidationRecord `json:"validations"`
	Overrides   []OverrideRecord   `json:"overrides,omitempty"`
	LastSync    time.Time          `json:"lastSync"`
	EventID     string             `json:"eventId"`
}

// Outcome is the result of a scan.
type Outcome struct {
	Status       string     `json:"status"`
	AttendeeID   string     `json:"attendee_id,omitempty"`
	TicketNumber string     `json:"ticket_number,omitempty"`
	ValidatedBy  string     `json:"validated_by,omitempty"`
	ValidatedAt  *time.Time `json:"validated_at,omitempty"`
	Reason       string     `json:"reason,omitempty"`
	Message      string     `json:"message,omitempty"`
	Override     bool       `json:"override,omitempty"`
	Attendee     *Attendee  `json:"attendee,omitempty"`
}

// Correction names a ticket this device admitted whose canonical admission
// turned out to belong to another device.
type Correction struct {
	StudentID      string    `json:"student_id"`
	TicketNumber   string    `json:"ticket_number"`
	LocalBy        string    `json:"local_by"`
	CanonicalBy    string    `json:"canonical_by"`
	CanonicalAt    time.Time `json:"canonical_at"`
	CanonicalOwner string    `json:"canonical_device_id"`
}

type ReconcileReport struct {
	EventID     string       `json:"event_id"`
	Adopted     int          `json:"adopted"`
	Republished int          `json:"republished"`
	Corrections []Correction `json:"corrections"`
	LastSync    time.Time    `json:"last_sync"`
}

// Request types

type CreateEventRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string `json:"time" validate:"required,datetime=15:04"`
	Location     string `json:"location" validate:"omitempty,max=300"`
	Description  string `json:"description" validate:"omitempty,max=4000"`
	Instructions string `json:"instructions" validate:"omitempty,max=4000"`
	Directions   string `json:"directions" validate:"omitempty,max=4000"`
	ImageURL     string `json:"imageUrl"`
}

// UpdateEventRequest is a partial patch; nil fields are left alone.
type UpdateEventRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	Date         *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time         *string `json:"time" validate:"omitempty,datetime=15:04"`
	Location     *string `json:"location" validate:"omitempty,max=300"`
	Description  *string `json:"description" validate:"omitempty,max=4000"`
	Instructions *string `json:"instructions" validate:"omitempty,max=4000"`
	Directions   *string `json:"directions" validate:"omitempty,max=4000"`
	ImageURL     *string `json:"imageUrl"`
}

type AddAttendeeRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required"`
	StudentID   string `json:"studentId" validate:"required"`
	TicketCount int    `json:"ticketCount" validate:"omitempty,min=1"`
	GuestName   string `json:"guestName"`
	GuestSchool string `json:"guestSchool"`
}

// ImportRequest carries either raw CSV text or a spreadsheet URL.
type ImportRequest struct {
	CSV      string `json:"csv"`
	SheetURL string `json:"sheet_url"`
}

// ScanRequest carries the decoded QR payload text and who is scanning.
type ScanRequest struct {
	Payload   string `json:"payload" validate:"required"`
	Validator string `json:"validator"`
}

type OverrideRequest struct {
	StudentID    string `json:"studentId" validate:"required"`
	TicketNumber string `json:"ticketNumber"`
	Reason       string `json:"reason" validate:"required,max=500"`
	Supervisor   string `json:"supervisor" validate:"required,max=200"`
}

// Response types

type CreateEventResponse struct {
	Event    Event  `json:"event"`
	AdminKey string `json:"admin_key"`
}

type ImportResponse struct {
	Added      int        `json:"added"`
	Duplicates int        `json:"duplicates"`
	Accepted   int        `json:"accepted"`
	Skipped    int        `json:"skipped"`
	Attendees  []Attendee `json:"attendees"`
}

type ShareResponse struct {
	ShareCode string `json:"share_code"`
	Students  int    `json:"students"`
}

type LoadShareResponse struct {
	Event        Event      `json:"event"`
	Students     []Attendee `json:"students"`
	Added        int        `json:"added"`
	EventAdopted bool       `json:"event_adopted"`
}

type ExportResponse struct {
	Event       Event              `json:"event"`
	Students    []Attendee         `json:"students"`
	Validations []ValidationRecord `json:"validations"`
	ExportedAt  time.Time          `json:"exportedAt"`
	ExportedBy  string             `json:"exportedBy"`
}

type DeviceInfo struct {
	DeviceID       string `json:"device_id"`
	Label          string `json:"label"`
	Persisted      bool   `json:"persisted"`
	SyncingEventID string `json:"syncing_event_id,omitempty"`
}

type SyncStatus struct {
	SyncingEventID string `json:"syncing_event_id"`
	Interval       string `json:"interval"`
}

type IssueAllResponse struct {
	Issued    int        `json:"issued"`
	Attendees []Attendee `json:"attendees"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Hint    string `json:"hint,omitempty"`
}
