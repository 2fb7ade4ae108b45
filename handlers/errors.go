// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ticketgate/auth"
	"github.com/danielhkuo/ticketgate/gate"
	"github.com/danielhkuo/ticketgate/middleware"
	"github.com/danielhkuo/ticketgate/roster"
	"github.com/danielhkuo/ticketgate/share"
	"github.com/danielhkuo/ticketgate/tickets"
)

// importStatus maps an import failure to an HTTP status: 504 when the
// download timed out, 502 when the sheet host refused, 422 for bad content.
func importStatus(kind roster.Kind) int {
	switch kind {
	case roster.KindTimeout:
		return http.StatusGatewayTimeout
	case roster.KindUnreachable, roster.KindAccessDenied, roster.KindNotFound, roster.KindHTTPStatus:
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

// writeError maps service errors to responses. op names the failed
// operation in logs and in the 500 fallback.
func writeError(w http.ResponseWriter, err error, op string) {
	var ie *roster.ImportError
	switch {
	case errors.As(err, &ie):
		middleware.ErrorResponseWithHint(w, importStatus(ie.Kind), ie.Message, ie.Hint)

	case errors.Is(err, gate.ErrStorage):
		slog.Error(op+" failed", "error", err)
		middleware.ErrorResponseWithHint(w, http.StatusServiceUnavailable,
			"Storage unavailable", "Nothing was changed. Try again in a moment.")

	case errors.Is(err, gate.ErrEventNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Event not found")
	case errors.Is(err, gate.ErrAttendeeNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Attendee not found")
	case errors.Is(err, share.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Share code not found")

	case errors.Is(err, gate.ErrDuplicateEmail),
		errors.Is(err, gate.ErrNotValidated),
		errors.Is(err, tickets.ErrNoTicket):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())

	case errors.Is(err, gate.ErrInvalidEvent),
		errors.Is(err, gate.ErrInvalidAttendee),
		errors.Is(err, gate.ErrInvalidOverride),
		errors.Is(err, gate.ErrUnknownTicket),
		errors.Is(err, share.ErrInvalidCode):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, share.ErrUnsupportedVersion):
		middleware.ErrorResponseWithHint(w, http.StatusUnprocessableEntity,
			"Share code was created by a newer version", "Update this device and load the code again.")
	case errors.Is(err, share.ErrCorrupt):
		slog.Warn("corrupt share bundle", "error", err)
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "Share code data is damaged")

	case errors.Is(err, context.DeadlineExceeded):
		middleware.ErrorResponse(w, http.StatusGatewayTimeout, "Request timed out")

	default:
		slog.Error(op+" failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to "+op)
	}
}

// requireAdmin checks X-Admin-Key for the event and writes 401 on mismatch.
func requireAdmin(w http.ResponseWriter, r *http.Request, eventID, salt string) bool {
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(eventID, adminKey, salt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return false
	}
	return true
}
