// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultFetchTimeout bounds a sheet download.
const DefaultFetchTimeout = 30 * time.Second

// maxSheetBytes caps how much of a response body is read.
const maxSheetBytes = 16 << 20

var (
	bareSheetID = regexp.MustCompile(`^[A-Za-z0-9_-]{20,}$`)
	gidPattern  = regexp.MustCompile(`[#&?]gid=([0-9]+)`)

	sheetIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/spreadsheets/d/([A-Za-z0-9_-]+)`),
		regexp.MustCompile(`/u/\d+/spreadsheets/d/([A-Za-z0-9_-]+)`),
		regexp.MustCompile(`/d/([A-Za-z0-9_-]+)`),
		regexp.MustCompile(`spreadsheets/([A-Za-z0-9_-]+)`),
	}
)

const sharingHint = `Open the sheet, click Share, choose "Anyone with the link" and set the permission to Viewer.`

// SheetCSVURL converts a spreadsheet link, or a bare document id, into its
// CSV export URL. The first sheet is used unless the link names a gid.
func SheetCSVURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	invalid := &ImportError{
		Kind:    KindInvalidSource,
		Message: "Could not extract a spreadsheet ID from the URL",
		Hint:    "Paste the full link from the browser, e.g. https://docs.google.com/spreadsheets/d/SPREADSHEET_ID/edit, or just the ID.",
	}
	if clean == "" {
		return "", invalid
	}
	if !strings.Contains(clean, "docs.google.com/spreadsheets") &&
		!strings.Contains(clean, "sheets.google.com") &&
		!bareSheetID.MatchString(clean) {
		return "", invalid
	}

	var id string
	if bareSheetID.MatchString(clean) {
		id = clean
	} else {
		for _, p := range sheetIDPatterns {
			if m := p.FindStringSubmatch(clean); m != nil {
				id = m[1]
				break
			}
		}
	}
	if id == "" {
		return "", invalid
	}

	gid := "0"
	if m := gidPattern.FindStringSubmatch(clean); m != nil {
		gid = m[1]
	}

	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s", id, gid), nil
}

// Fetcher downloads roster text from a published spreadsheet.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewFetcher returns a Fetcher with the given hard timeout. A zero timeout
// uses DefaultFetchTimeout; a nil logger discards.
func NewFetcher(timeout time.Duration, logger *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{client: &http.Client{}, timeout: timeout, logger: logger}
}

// Fetch resolves a spreadsheet link and downloads it as CSV.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	csvURL, err := SheetCSVURL(rawURL)
	if err != nil {
		return "", err
	}
	return f.FetchCSV(ctx, csvURL)
}

// FetchCSV performs an unauthenticated GET of an export URL.
func (f *Fetcher) FetchCSV(ctx context.Context, csvURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, csvURL, nil)
	if err != nil {
		return "", &ImportError{
			Kind:    KindInvalidSource,
			Message: "Invalid sheet URL",
			Hint:    "Check the link and try again.",
			Err:     err,
		}
	}
	req.Header.Set("Accept", "text/csv,text/plain,*/*")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &ImportError{
				Kind:    KindTimeout,
				Message: fmt.Sprintf("The sheet did not respond within %s", f.timeout),
				Hint:    "Check your connection and try again; very large sheets may need a CSV upload instead.",
				Err:     err,
			}
		}
		return "", &ImportError{
			Kind:    KindUnreachable,
			Message: "Unable to reach the sheet",
			Hint:    sharingHint + " Also check your internet connection.",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", statusError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSheetBytes))
	if err != nil {
		kind := KindUnreachable
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = KindTimeout
		}
		return "", &ImportError{
			Kind:    kind,
			Message: "Failed to read the sheet",
			Hint:    "Try again in a moment.",
			Err:     err,
		}
	}

	text := string(body)
	if strings.TrimSpace(text) == "" {
		return "", &ImportError{
			Kind:    KindEmptySource,
			Message: "The sheet appears to be empty or contains no data",
			Hint:    "Make sure the first sheet holds the attendee rows, or include its gid in the link.",
		}
	}

	f.logger.Info("sheet fetched",
		"size", humanize.Bytes(uint64(len(body))),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return text, nil
}

func statusError(status int) *ImportError {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ImportError{
			Kind:    KindAccessDenied,
			Message: "Access denied",
			Hint:    sharingHint,
			Status:  status,
		}
	case http.StatusNotFound:
		return &ImportError{
			Kind:    KindNotFound,
			Message: "Sheet not found",
			Hint:    "Check that the link is complete and the sheet has not been deleted.",
			Status:  status,
		}
	default:
		return &ImportError{
			Kind:    KindHTTPStatus,
			Message: fmt.Sprintf("Failed to fetch data (HTTP %d)", status),
			Hint:    "Verify the spreadsheet ID and that the sheet is shared. " + sharingHint,
			Status:  status,
		}
	}
}
