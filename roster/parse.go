// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package roster

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/ticketgate/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s has the minimal user@host.tld shape.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Options tune Parse. The zero value is usable.
type Options struct {
	// NewID generates attendee ids. Defaults to uuid.NewString.
	NewID  func() string
	Logger *slog.Logger
}

// Columns holds the detected column index for each field, -1 when absent.
type Columns struct {
	First       int `json:"first"`
	Last        int `json:"last"`
	FullName    int `json:"full_name"`
	Email       int `json:"email"`
	StudentID   int `json:"student_id"`
	TicketCount int `json:"ticket_count"`
	GuestName   int `json:"guest_name"`
	GuestSchool int `json:"guest_school"`
}

// Result is a successful parse. Skipped counts rejected data rows.
type Result struct {
	Attendees []models.Attendee
	Accepted  int
	Skipped   int
	Headers   []string
	Columns   Columns
}

type keywords struct {
	include []string
	exclude []string
}

// Header keyword groups, matched against normalized header names.
// The first header containing an include keyword and no exclude keyword wins.
var (
	firstNameKeys = keywords{
		include: []string{"firstname", "first", "given"},
		exclude: []string{"guest"},
	}
	lastNameKeys = keywords{
		include: []string{"lastname", "last", "surname", "family"},
		exclude: []string{"guest"},
	}
	fullNameKeys = keywords{
		include: []string{"fullname", "yourname", "name"},
		exclude: []string{"guest", "companion", "first", "last", "school", "email", "mail"},
	}
	emailKeys = keywords{
		include: []string{"email", "mail"},
	}
	studentIDKeys = keywords{
		include: []string{"studentid", "studentnumber", "studentno", "idnumber", "grade", "id", "number"},
		exclude: []string{"ticket", "guest", "phone", "email", "mail", "paid"},
	}
	ticketCountKeys = keywords{
		include: []string{
			"howmanytickets", "ticketcount", "numberoftickets", "tickets", "quantity",
			"count", "howmany", "numberof", "ticketnumber", "ticketquantity", "ticketspurchased",
		},
	}
	guestNameKeys = keywords{
		include: []string{"guestname", "guestsname", "nameofguest", "guest", "companion", "plusone", "partner", "bring"},
		exclude: []string{"school", "university", "college"},
	}
	guestSchoolKeys = keywords{
		include: []string{
			"guestschool", "guestsschool", "companionschool", "schoolofguest", "school",
			"guestuniversity", "guestcollege", "university", "college",
		},
	}
)

func (k keywords) find(headers []string) int {
	for i, h := range headers {
		if h == "" || containsAny(h, k.exclude) {
			continue
		}
		if containsAny(h, k.include) {
			return i
		}
	}
	return -1
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// NormalizeHeader lowercases h and strips everything but [a-z0-9].
func NormalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DetectColumns maps normalized headers to field columns.
func DetectColumns(headers []string) Columns {
	return Columns{
		First:       firstNameKeys.find(headers),
		Last:        lastNameKeys.find(headers),
		FullName:    fullNameKeys.find(headers),
		Email:       emailKeys.find(headers),
		StudentID:   studentIDKeys.find(headers),
		TicketCount: ticketCountKeys.find(headers),
		GuestName:   guestNameKeys.find(headers),
		GuestSchool: guestSchoolKeys.find(headers),
	}
}

func (c Columns) splitName() bool {
	return c.First != -1 && c.Last != -1
}

// required is the minimum field count a data row needs.
func (c Columns) required() int {
	idx := []int{c.Email, c.StudentID}
	if c.splitName() {
		idx = append(idx, c.First, c.Last)
	} else {
		idx = append(idx, c.FullName)
	}
	highest := 0
	for _, i := range idx {
		highest = max(highest, i)
	}
	return highest + 1
}

// SplitLines returns the non-blank lines of text.
func SplitLines(text string) []string {
	raw := strings.Split(strings.TrimSpace(text), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// DetectDelimiter picks tab for a header with tabs and no commas.
func DetectDelimiter(header string) rune {
	if strings.Contains(header, "\t") && !strings.Contains(header, ",") {
		return '\t'
	}
	return ','
}

// SplitFields tokenizes one line. Quoted fields may contain the delimiter
// and "" escapes a literal quote. Fields are trimmed.
func SplitFields(line string, delim rune) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	fields, err := r.Read()
	if err != nil {
		return nil, err
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields, nil
}

// ParseTicketCount defaults to 1 for blank, non-numeric or non-positive
// input and caps at the per-attendee maximum.
func ParseTicketCount(s string) int {
	n, err := strconv.Atoi(leadingDigits(strings.TrimSpace(s)))
	if err != nil || n <= 0 {
		return 1
	}
	return min(n, models.MaxTicketsPerAttendee)
}

// leadingDigits keeps inputs like "2 tickets" usable.
func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// Parse converts delimited text into attendees. Rows missing a required
// value or with a malformed email are skipped and counted; column and
// emptiness failures fail the whole import with an *ImportError.
func Parse(text string, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	lines := SplitLines(text)
	if len(lines) < 2 {
		return nil, &ImportError{
			Kind:    KindEmptySource,
			Message: "The sheet must have at least a header row and one data row",
			Hint:    "Check that the first row holds column names and at least one attendee row follows it.",
		}
	}

	delim := DetectDelimiter(lines[0])
	rawHeaders, err := SplitFields(lines[0], delim)
	if err != nil {
		return nil, &ImportError{
			Kind:    KindInvalidSource,
			Message: "Could not read the header row",
			Hint:    "Make sure the data is comma- or tab-separated text.",
			Err:     err,
		}
	}
	headers := make([]string, len(rawHeaders))
	for i, h := range rawHeaders {
		headers[i] = NormalizeHeader(h)
	}

	cols := DetectColumns(headers)
	if !cols.splitName() && cols.FullName == -1 {
		return nil, missingColumn("Name column(s)", headers,
			`Add either "First Name" and "Last Name" columns or a single "Name" column.`)
	}
	if cols.Email == -1 {
		return nil, missingColumn("Email column", headers,
			`Add a column with "Email" in the header.`)
	}
	if cols.StudentID == -1 {
		return nil, missingColumn("Student ID/Grade column", headers,
			`Add a column with "Grade", "Student ID" or "ID" in the header.`)
	}

	res := &Result{Headers: headers, Columns: cols}
	need := cols.required()

	for i, line := range lines[1:] {
		row := i + 2
		fields, err := SplitFields(line, delim)
		if err != nil {
			logger.Warn("skipping unreadable row", "row", row, "error", err)
			res.Skipped++
			continue
		}
		if len(fields) < need {
			logger.Warn("skipping short row", "row", row, "fields", len(fields), "need", need)
			res.Skipped++
			continue
		}

		var name string
		if cols.splitName() {
			name = strings.TrimSpace(fields[cols.First] + " " + fields[cols.Last])
		} else {
			name = fields[cols.FullName]
		}
		email := fields[cols.Email]
		studentID := fields[cols.StudentID]

		if name == "" || email == "" || studentID == "" {
			logger.Warn("skipping row with missing values", "row", row)
			res.Skipped++
			continue
		}
		if !ValidEmail(email) {
			logger.Warn("skipping row with invalid email", "row", row, "email", email)
			res.Skipped++
			continue
		}

		res.Attendees = append(res.Attendees, models.Attendee{
			ID:          newID(),
			Name:        name,
			Email:       email,
			StudentID:   studentID,
			TicketCount: ParseTicketCount(optional(fields, cols.TicketCount)),
			GuestName:   optional(fields, cols.GuestName),
			GuestSchool: optional(fields, cols.GuestSchool),
		})
		res.Accepted++
	}

	if res.Accepted == 0 {
		return nil, &ImportError{
			Kind:    KindNoValidRows,
			Message: fmt.Sprintf("No valid attendee records found. %d rows were skipped due to missing or invalid data", res.Skipped),
			Hint:    "Every row needs a name, a valid email address and a student ID.",
			Headers: headers,
		}
	}

	logger.Info("roster parsed", "accepted", res.Accepted, "skipped", res.Skipped)
	return res, nil
}

func optional(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}
