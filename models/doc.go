// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types.

# Domain Types

  - Attendee: one roster entry with its ticket and validation fields
  - ValidationRecord: immutable admission record in a ledger
  - OverrideRecord: audit record of a supervised re-admission
  - Event / EventSettings: organizer events and the current selection
  - Roster: device-local attendees + known validations for one event
  - SyncData: the shared per-event ledger

Domain types keep camelCase JSON names so stored documents, share bundles
and QR payloads stay readable by other clients.

# Outcomes

A scan yields an Outcome whose Status is one of:

	admitted → already_admitted → rejected

# Request Types

  - CreateEventRequest / UpdateEventRequest (validator tags)
  - AddAttendeeRequest, ImportRequest
  - ScanRequest, OverrideRequest

# Response Types

  - CreateEventResponse: event + admin_key (returned once)
  - ImportResponse, ShareResponse, LoadShareResponse, ExportResponse
  - ReconcileReport with Corrections
  - IssueAllResponse, DeviceInfo, SyncStatus
  - ErrorResponse: error, message, hint
*/
package models
