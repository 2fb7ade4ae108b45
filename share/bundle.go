// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package share

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/danielhkuo/ticketgate/models"
)

const (
	Schema  = "ticketgate.share"
	Version = 1

	encoding = "zstd+base64"
)

var (
	ErrNotFound           = errors.New("share code not found")
	ErrInvalidCode        = errors.New("invalid share code")
	ErrUnsupportedVersion = errors.New("unsupported share bundle version")
	ErrCorrupt            = errors.New("corrupt share bundle")
)

// Bundle is an immutable snapshot of an event and its ticketed attendees.
type Bundle struct {
	Schema    string            `json:"schema"`
	Version   int               `json:"version"`
	Event     models.Event      `json:"event"`
	Students  []models.Attendee `json:"students"`
	DeviceID  string            `json:"deviceId"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NewBundle keeps only the attendees that hold a ticket.
func NewBundle(event models.Event, attendees []models.Attendee, deviceID string, now time.Time) Bundle {
	students := make([]models.Attendee, 0, len(attendees))
	for _, a := range attendees {
		if a.HasTicket {
			students = append(students, a)
		}
	}
	return Bundle{
		Schema:    Schema,
		Version:   Version,
		Event:     event,
		Students:  students,
		DeviceID:  deviceID,
		CreatedAt: now,
	}
}

// envelope is the stored text form. Digest is the BLAKE3-256 of the
// uncompressed bundle JSON.
type envelope struct {
	Schema   string `json:"schema"`
	Version  int    `json:"version"`
	Encoding string `json:"encoding"`
	Digest   string `json:"digest"`
	Payload  string `json:"payload"`
}

// zstd.Encoder and zstd.Decoder are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("share: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(64<<20))
	if err != nil {
		panic("share: zstd decoder initialization failed: " + err.Error())
	}
}

func digest(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Encode serializes a bundle to its stored text form.
func Encode(b Bundle) ([]byte, error) {
	if b.Schema == "" {
		b.Schema = Schema
	}
	if b.Version == 0 {
		b.Version = Version
	}

	payload, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode share bundle: %w", err)
	}

	env := envelope{
		Schema:   b.Schema,
		Version:  b.Version,
		Encoding: encoding,
		Digest:   digest(payload),
		Payload:  base64.StdEncoding.EncodeToString(zstdEncoder.EncodeAll(payload, nil)),
	}
	out, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode share envelope: %w", err)
	}
	return out, nil
}

// Decode parses and verifies a stored bundle.
func Decode(raw []byte) (Bundle, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if env.Schema != Schema {
		return Bundle{}, fmt.Errorf("%w: schema %q", ErrCorrupt, env.Schema)
	}
	if env.Version != Version {
		return Bundle{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	if env.Encoding != encoding {
		return Bundle{}, fmt.Errorf("%w: encoding %q", ErrCorrupt, env.Encoding)
	}

	compressed, err := base64.StdEncoding.DecodeString(env.Payload)
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	payload, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
	}
	if digest(payload) != env.Digest {
		return Bundle{}, fmt.Errorf("%w: digest mismatch", ErrCorrupt)
	}

	var b Bundle
	if err := json.Unmarshal(payload, &b); err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if b.Schema != env.Schema || b.Version != env.Version {
		return Bundle{}, fmt.Errorf("%w: envelope and payload disagree", ErrCorrupt)
	}
	return b, nil
}
