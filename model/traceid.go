package model

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math/rand"
)

// TraceID lengths in bytes.
const (
	ShortTraceIDLen = 8
	LongTraceIDLen  = 16
)

// Trace identifier errors.
var (
	ErrInvalidTraceIDLength = errors.New("trace id must be 8 or 16 bytes (16 or 32 hex characters)")
	ErrInvalidTraceID       = errors.New("trace id is not valid hex")
)

// TraceID is a Zipkin trace identifier of either 8 ("short") or 16 ("long")
// bytes. TraceID is a comparable value, equality is over the raw bytes and it
// can be used as a map key.
type TraceID struct {
	id [LongTraceIDLen]byte
	n  uint8
}

// NewTraceID returns a random 128 bit trace identifier.
func NewTraceID() TraceID {
	t := TraceID{n: LongTraceIDLen}
	binary.BigEndian.PutUint64(t.id[:8], rand.Uint64())
	binary.BigEndian.PutUint64(t.id[8:], rand.Uint64())
	return t
}

// TraceIDFromBytes copies b into a TraceID. b must be 8 or 16 bytes long.
func TraceIDFromBytes(b []byte) (TraceID, error) {
	if len(b) != ShortTraceIDLen && len(b) != LongTraceIDLen {
		return TraceID{}, ErrInvalidTraceIDLength
	}
	t := TraceID{n: uint8(len(b))}
	copy(t.id[:], b)
	return t, nil
}

// TraceIDFromUint64 returns the short trace identifier holding low in network
// byte order.
func TraceIDFromUint64(low uint64) TraceID {
	t := TraceID{n: ShortTraceIDLen}
	binary.BigEndian.PutUint64(t.id[:8], low)
	return t
}

// JoinTraceID builds a long trace identifier from its big-endian halves. It is
// the inverse of Split.
func JoinTraceID(high, low uint64) TraceID {
	t := TraceID{n: LongTraceIDLen}
	binary.BigEndian.PutUint64(t.id[:8], high)
	binary.BigEndian.PutUint64(t.id[8:], low)
	return t
}

// ParseTraceID decodes a 16 or 32 character hex string. Input is case
// insensitive.
func ParseTraceID(s string) (TraceID, error) {
	if len(s) != 2*ShortTraceIDLen && len(s) != 2*LongTraceIDLen {
		return TraceID{}, ErrInvalidTraceIDLength
	}
	t := TraceID{n: uint8(len(s) / 2)}
	if _, err := hex.Decode(t.id[:t.n], []byte(s)); err != nil {
		return TraceID{}, ErrInvalidTraceID
	}
	return t, nil
}

// Split returns the high and low 64 bit halves of the identifier, reading
// each half in network byte order. Short identifiers have a zero high half.
func (t TraceID) Split() (high, low uint64) {
	if t.n == ShortTraceIDLen {
		return 0, binary.BigEndian.Uint64(t.id[:8])
	}
	return binary.BigEndian.Uint64(t.id[:8]), binary.BigEndian.Uint64(t.id[8:])
}

// Bytes returns a copy of the raw identifier.
func (t TraceID) Bytes() []byte {
	b := make([]byte, t.n)
	copy(b, t.id[:t.n])
	return b
}

// Len returns 8, 16, or 0 for the zero TraceID.
func (t TraceID) Len() int {
	return int(t.n)
}

// IsLong reports whether this is a 128 bit identifier.
func (t TraceID) IsLong() bool {
	return t.n == LongTraceIDLen
}

// Empty reports whether t is the zero TraceID.
func (t TraceID) Empty() bool {
	return t.n == 0
}

// String returns the lowercase hex form without byte reordering.
func (t TraceID) String() string {
	return hex.EncodeToString(t.id[:t.n])
}

// MarshalText implements encoding.TextMarshaler.
func (t TraceID) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TraceID) UnmarshalText(text []byte) error {
	id, err := ParseTraceID(string(text))
	if err != nil {
		return err
	}
	*t = id
	return nil
}
