package buffer

import "fmt"

// Change records one applied edit: OldRange was replaced by NewRange.
// Both ranges start at the same offset.
type Change struct {
	OldRange Range
	NewRange Range
	OldText  string
	NewText  string
	Revision uint64
}

// Delta returns the change in document length.
func (c Change) Delta() ByteOffset {
	return c.NewRange.Len() - c.OldRange.Len()
}

// IsNoOp reports whether the edit changed nothing.
func (c Change) IsNoOp() bool {
	return c.OldRange.IsEmpty() && c.NewRange.IsEmpty()
}

// String returns a short description.
func (c Change) String() string {
	return fmt.Sprintf("%s -> %s (%+d)", c.OldRange, c.NewRange, c.Delta())
}

// MapOffset maps an offset from before the change to after it. For an
// insertion, offsets at or after the insertion point shift. For a removal,
// offsets inside the removed range collapse to its start and later offsets
// shift by Delta.
func (c Change) MapOffset(off ByteOffset) ByteOffset {
	if c.OldRange.IsEmpty() {
		if off >= c.OldRange.Start {
			return off + c.NewRange.Len()
		}
		return off
	}
	switch {
	case off <= c.OldRange.Start:
		return off
	case off >= c.OldRange.End:
		return off + c.Delta()
	}
	return c.NewRange.Start
}
