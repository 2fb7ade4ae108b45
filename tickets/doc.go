// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package tickets issues ticket numbers and builds the QR payload and
// wallet pass data for a ticketed attendee.
//
// Ticket numbers are "TKT" followed by the last 8 digits of a millisecond
// counter. The counter advances to max(now, last+1), so tickets issued in
// the same instant still differ.
package tickets
