// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
)

const base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateAdminKey creates an HMAC-based admin key for an event.
// Deterministic, so it never needs to be stored.
func GenerateAdminKey(eventID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(eventID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the event
func ValidateAdminKey(eventID, adminKey, salt string) error {
	expected := GenerateAdminKey(eventID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// RandomBase36 returns n random characters from [0-9a-z].
// Falls back to a time-derived suffix if the system RNG fails.
func RandomBase36(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(base36Chars)))
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			fallback := strconv.FormatInt(time.Now().UnixNano(), 36)
			for len(fallback) < n {
				fallback = "0" + fallback
			}
			return fallback[len(fallback)-n:]
		}
		b[i] = base36Chars[v.Int64()]
	}
	return string(b)
}

// NewDeviceID builds a per-installation identifier: device_<ms>_<suffix>.
func NewDeviceID(now time.Time) string {
	return fmt.Sprintf("device_%d_%s", now.UnixMilli(), RandomBase36(9))
}

// NewEventID builds an event identifier: event_<ms>_<suffix>.
func NewEventID(now time.Time) string {
	return fmt.Sprintf("event_%d_%s", now.UnixMilli(), RandomBase36(9))
}
