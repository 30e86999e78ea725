package buffer

import (
	"fmt"

	"github.com/dshills/hybridmd/internal/engine/rope"
)

// ByteOffset is an absolute byte position in the buffer.
type ByteOffset = rope.ByteOffset

// Point is a 0-indexed line and character column.
type Point struct {
	Line   uint32
	Column uint32
}

// String returns "(line:col)".
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1, 0 or 1.
func (p Point) Compare(other Point) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	}
	return 0
}

// Before reports whether p sorts before other.
func (p Point) Before(other Point) bool { return p.Compare(other) < 0 }

// Range is a half-open byte range [Start, End).
type Range struct {
	Start ByteOffset
	End   ByteOffset
}

// NewRange builds a range, swapping the bounds if needed.
func NewRange(a, b ByteOffset) Range {
	if b < a {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// String returns "[start:end)".
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.Start, r.End)
}

// Len returns End - Start.
func (r Range) Len() ByteOffset { return r.End - r.Start }

// IsEmpty reports whether the range has no bytes.
func (r Range) IsEmpty() bool { return r.Start == r.End }

// Contains reports whether offset lies in [Start, End).
func (r Range) Contains(offset ByteOffset) bool {
	return offset >= r.Start && offset < r.End
}

// ContainsRange reports whether other lies entirely within r.
func (r Range) ContainsRange(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Overlaps reports whether the two half-open ranges share at least one byte.
// Ranges that merely touch do not overlap.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Touches reports whether the ranges overlap or share an endpoint.
func (r Range) Touches(other Range) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// Union returns the smallest range covering both.
func (r Range) Union(other Range) Range {
	return Range{Start: min(r.Start, other.Start), End: max(r.End, other.End)}
}

// Shift moves both bounds by delta.
func (r Range) Shift(delta ByteOffset) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}
