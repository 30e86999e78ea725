package buffer

import (
	"errors"
	"fmt"
)

// ErrInvalidOffset is returned when an offset lies outside [0, Len] or
// splits a multi-byte character.
var ErrInvalidOffset = errors.New("invalid offset")

// OffsetError describes a rejected offset.
type OffsetError struct {
	Op     string
	Offset ByteOffset
	Len    ByteOffset
	Reason string
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("%s: offset %d %s (len %d)", e.Op, e.Offset, e.Reason, e.Len)
}

// Unwrap allows errors.Is(err, ErrInvalidOffset).
func (e *OffsetError) Unwrap() error { return ErrInvalidOffset }
