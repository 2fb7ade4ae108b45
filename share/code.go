// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package share

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/danielhkuo/ticketgate/clock"
	"github.com/danielhkuo/ticketgate/store"
)

var codePattern = regexp.MustCompile(`^EVT[0-9A-Z]+$`)

// maxCodeAttempts bounds the search for an unused code.
const maxCodeAttempts = 64

// Normalize trims and uppercases a user-entered code and checks its shape.
func Normalize(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if !codePattern.MatchString(c) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	return c, nil
}

// Codes generates share codes from a monotonic millisecond counter.
type Codes struct {
	clock clock.Clock

	mu   sync.Mutex
	last int64
}

func NewCodes(clk clock.Clock) *Codes {
	return &Codes{clock: clk}
}

// Next returns EVT + uppercase base-36 of max(now, last+1).
func (c *Codes) Next() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now().UnixMilli()
	if now <= c.last {
		now = c.last + 1
	}
	c.last = now
	return "EVT" + strings.ToUpper(strconv.FormatInt(now, 36))
}

// Put stores b under a fresh code. A code already present in the store is
// skipped, never overwritten.
func Put(ctx context.Context, s store.Store, codes *Codes, b Bundle) (string, error) {
	raw, err := Encode(b)
	if err != nil {
		return "", err
	}

	for range maxCodeAttempts {
		code := codes.Next()
		_, err := s.Get(ctx, store.ShareKey(code))
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("failed to check share code: %w", err)
		}
		if err := s.Set(ctx, store.ShareKey(code), raw); err != nil {
			return "", fmt.Errorf("failed to store share bundle: %w", err)
		}
		return code, nil
	}
	return "", fmt.Errorf("no unused share code after %d attempts", maxCodeAttempts)
}

// Get loads the bundle for a user-entered code. The code stays valid.
func Get(ctx context.Context, s store.Store, code string) (Bundle, string, error) {
	c, err := Normalize(code)
	if err != nil {
		return Bundle{}, "", err
	}

	raw, err := s.Get(ctx, store.ShareKey(c))
	if errors.Is(err, store.ErrNotFound) {
		return Bundle{}, c, ErrNotFound
	}
	if err != nil {
		return Bundle{}, c, fmt.Errorf("failed to read share bundle: %w", err)
	}

	b, err := Decode(raw)
	if err != nil {
		return Bundle{}, c, err
	}
	return b, c, nil
}
