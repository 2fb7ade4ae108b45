// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package roster

import (
	"errors"
	"strings"
)

// Kind classifies an import failure.
type Kind string

const (
	KindInvalidSource Kind = "invalid_source"
	KindTimeout       Kind = "timeout"
	KindUnreachable   Kind = "unreachable"
	KindAccessDenied  Kind = "access_denied"
	KindNotFound      Kind = "not_found"
	KindHTTPStatus    Kind = "http_status"
	KindEmptySource   Kind = "empty_source"
	KindMissingColumn Kind = "missing_column"
	KindNoValidRows   Kind = "no_valid_rows"
)

// ImportError is returned for any import that fails as a whole. Hint is a
// remediation the organizer can act on.
type ImportError struct {
	Kind    Kind
	Message string
	Hint    string
	// Headers are the normalized header names, set for column failures.
	Headers []string
	// Status is the upstream HTTP status for KindHTTPStatus and friends.
	Status int
	Err    error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ImportError) Unwrap() error { return e.Err }

// IsKind reports whether err is an ImportError of the given kind.
func IsKind(err error, kind Kind) bool {
	var ie *ImportError
	return errors.As(err, &ie) && ie.Kind == kind
}

func missingColumn(what string, headers []string, hint string) *ImportError {
	return &ImportError{
		Kind:    KindMissingColumn,
		Message: what + " not found. Available columns: " + strings.Join(headers, ", "),
		Hint:    hint,
		Headers: headers,
	}
}
