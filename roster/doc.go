// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package roster turns spreadsheet exports into attendee records.

# Parsing

	res, err := roster.Parse(csvText, roster.Options{Logger: logger})

The first non-blank line is the header row. Headers are normalized
(lowercase, alphanumerics only) and matched against keyword groups, so
"First Name", "What is your email address?" and "Grade" all resolve.
A first/last name pair is preferred over a single name column.

Rows with a missing value or a malformed email are skipped and counted in
Result.Skipped. A whole-import failure is an *ImportError:

	var ie *roster.ImportError
	if errors.As(err, &ie) {
		fmt.Println(ie.Kind, ie.Hint)
	}

De-duplication against an existing roster happens in package gate.

# Sheets

	f := roster.NewFetcher(30*time.Second, logger)
	text, err := f.Fetch(ctx, "https://docs.google.com/spreadsheets/d/<id>/edit#gid=0")

The link is rewritten to its CSV export URL and fetched without
credentials, so the sheet must be shared as "Anyone with the link".
*/
package roster
