package cursor

import (
	"fmt"

	"github.com/dshills/hybridmd/internal/engine/buffer"
)

// ByteOffset is an alias for buffer.ByteOffset.
type ByteOffset = buffer.ByteOffset

// Range is an alias for buffer.Range.
type Range = buffer.Range

// Selection is a directional selection. Anchor is where it started and
// Head is where the cursor is.
type Selection struct {
	Anchor ByteOffset
	Head   ByteOffset
}

// NewSelection creates a selection from anchor to head.
func NewSelection(anchor, head ByteOffset) Selection {
	return Selection{Anchor: anchor, Head: head}
}

// Caret creates an empty selection at offset.
func Caret(offset ByteOffset) Selection {
	return Selection{Anchor: offset, Head: offset}
}

// IsEmpty reports whether there is no selected text.
func (s Selection) IsEmpty() bool { return s.Anchor == s.Head }

// Range returns the selected bytes with Start <= End.
func (s Selection) Range() Range { return buffer.NewRange(s.Anchor, s.Head) }

// Start returns the lower bound.
func (s Selection) Start() ByteOffset { return min(s.Anchor, s.Head) }

// End returns the upper bound.
func (s Selection) End() ByteOffset { return max(s.Anchor, s.Head) }

// IsBackward reports whether the head precedes the anchor.
func (s Selection) IsBackward() bool { return s.Head < s.Anchor }

// Extend keeps the anchor and moves the head.
func (s Selection) Extend(head ByteOffset) Selection {
	return Selection{Anchor: s.Anchor, Head: head}
}

// Collapse returns an empty selection at the head.
func (s Selection) Collapse() Selection { return Caret(s.Head) }

// CollapseToStart returns an empty selection at the lower bound.
func (s Selection) CollapseToStart() Selection { return Caret(s.Start()) }

// CollapseToEnd returns an empty selection at the upper bound.
func (s Selection) CollapseToEnd() Selection { return Caret(s.End()) }

// Clamp limits both ends to [0, maxOffset].
func (s Selection) Clamp(maxOffset ByteOffset) Selection {
	return Selection{
		Anchor: min(max(s.Anchor, 0), maxOffset),
		Head:   min(max(s.Head, 0), maxOffset),
	}
}

// Transform maps both ends through an applied change.
func (s Selection) Transform(ch buffer.Change) Selection {
	return Selection{Anchor: ch.MapOffset(s.Anchor), Head: ch.MapOffset(s.Head)}
}

// String returns "|h" for a caret or "[a->h]" for a selection.
func (s Selection) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("|%d", s.Head)
	}
	return fmt.Sprintf("[%d->%d]", s.Anchor, s.Head)
}
