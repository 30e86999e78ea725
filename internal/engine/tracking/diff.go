package tracking

import (
	"unicode/utf8"

	"github.com/dshills/hybridmd/internal/engine/buffer"
)

// Edit replaces Range of the old text with Text.
type Edit struct {
	Range buffer.Range
	Text  string
}

// IsNoOp reports whether the edit changes nothing.
func (e Edit) IsNoOp() bool { return e.Range.IsEmpty() && e.Text == "" }

// Diff returns the smallest single edit turning old into new: the common
// prefix and suffix are kept and the middle replaced. Both ends fall on
// character boundaries.
func Diff(old, new string) Edit {
	n := min(len(old), len(new))
	p := 0
	for p < n && old[p] == new[p] {
		p++
	}
	for p > 0 && p < len(old) && !utf8.RuneStart(old[p]) {
		p--
	}

	s := 0
	for s < n-p && old[len(old)-1-s] == new[len(new)-1-s] {
		s++
	}
	for s > 0 && !utf8.RuneStart(old[len(old)-s]) {
		s--
	}
	return Edit{
		Range: buffer.Range{Start: buffer.ByteOffset(p), End: buffer.ByteOffset(len(old) - s)},
		Text:  new[p : len(new)-s],
	}
}
