package cursor

import (
	"strings"
	"testing"

	"github.com/dshills/hybridmd/internal/engine/buffer"
)

func TestSelectionBasics(t *testing.T) {
	s := NewSelection(10, 4)
	if s.IsEmpty() {
		t.Error("selection should not be empty")
	}
	if s.Start() != 4 || s.End() != 10 || !s.IsBackward() {
		t.Errorf("bounds wrong: %v", s)
	}
	if s.Range() != (Range{Start: 4, End: 10}) {
		t.Errorf("Range() = %v", s.Range())
	}
	if c := s.Collapse(); c != Caret(4) {
		t.Errorf("Collapse() = %v", c)
	}
	if c := s.CollapseToEnd(); c != Caret(10) {
		t.Errorf("CollapseToEnd() = %v", c)
	}
	if e := s.Extend(12); e.Anchor != 10 || e.Head != 12 {
		t.Errorf("Extend() = %v", e)
	}
	if c := NewSelection(-3, 40).Clamp(20); c != NewSelection(0, 20) {
		t.Errorf("Clamp() = %v", c)
	}
}

func TestTransformCaret(t *testing.T) {
	insert := func(at, n ByteOffset) buffer.Change {
		return buffer.Change{OldRange: Range{Start: at, End: at}, NewRange: Range{Start: at, End: at + n}}
	}
	remove := func(r Range) buffer.Change {
		return buffer.Change{OldRange: r, NewRange: Range{Start: r.Start, End: r.Start}}
	}
	tests := []struct {
		name string
		at   ByteOffset
		ch   buffer.Change
		want ByteOffset
	}{
		{"insert before offset", 10, insert(4, 3), 13},
		{"insert at offset", 4, insert(4, 3), 7},
		{"insert after offset", 2, insert(4, 3), 2},
		{"delete before offset", 10, remove(Range{Start: 2, End: 5}), 7},
		{"delete containing offset", 4, remove(Range{Start: 2, End: 5}), 2},
		{"delete at range end", 5, remove(Range{Start: 2, End: 5}), 2},
		{"delete after offset", 1, remove(Range{Start: 2, End: 5}), 1},
	}
	for _, tt := range tests {
		if got := Caret(tt.at).Transform(tt.ch); got.Head != tt.want || !got.IsEmpty() {
			t.Errorf("%s: got %v, want |%d", tt.name, got, tt.want)
		}
	}
}

func TestSelectionTransform(t *testing.T) {
	b := buffer.NewBufferFromString("abc def ghi")
	sel := NewSelection(4, 7)
	ch, err := b.Delete(2, 5)
	if err != nil {
		t.Fatal(err)
	}
	if got := sel.Transform(ch); got != NewSelection(2, 4) {
		t.Errorf("Transform() = %v", got)
	}
}

func TestMoveCharacter(t *testing.T) {
	// "e" + combining acute forms one grapheme cluster; the flag is two
	// regional indicators.
	b := buffer.NewBufferFromString("ae\u0301\U0001F1E9\U0001F1EA\nz")
	tests := []struct {
		from ByteOffset
		dir  Direction
		want ByteOffset
	}{
		{0, Forward, 1},
		{1, Forward, 4},
		{4, Forward, 12},
		{12, Forward, 13},
		{13, Forward, 14},
		{14, Forward, 14},
		{14, Backward, 13},
		{13, Backward, 12},
		{12, Backward, 4},
		{4, Backward, 1},
		{0, Backward, 0},
	}
	for _, tt := range tests {
		if got := Move(b, tt.from, Character, tt.dir); got != tt.want {
			t.Errorf("Move(%d, character, %s) = %d, want %d", tt.from, tt.dir, got, tt.want)
		}
	}
}

func TestMoveWord(t *testing.T) {
	text := "Hello **bold** world,\nnext line"
	b := buffer.NewBufferFromString(text)
	tests := []struct {
		from ByteOffset
		dir  Direction
		want ByteOffset
	}{
		{0, Forward, 5},
		{5, Forward, 12},
		{12, Forward, 20},
		{20, Forward, 26},
		{31, Forward, 31},
		{31, Backward, 27},
		{27, Backward, 22},
		{22, Backward, 15},
		{15, Backward, 8},
		{8, Backward, 0},
		{0, Backward, 0},
	}
	for _, tt := range tests {
		if got := Move(b, tt.from, Word, tt.dir); got != tt.want {
			t.Errorf("Move(%d, word, %s) = %d, want %d", tt.from, tt.dir, got, tt.want)
		}
	}
}

func TestMoveWordUnicode(t *testing.T) {
	b := buffer.NewBufferFromString("na\u00efve caf\u00e9")
	if got := Move(b, 0, Word, Forward); got != 6 {
		t.Errorf("forward over naïve = %d, want 6", got)
	}
	if got := Move(b, b.Len(), Word, Backward); got != 7 {
		t.Errorf("backward over café = %d, want 7", got)
	}
}

// readCounter records the largest slice a motion reads.
type readCounter struct {
	*buffer.Buffer
	most ByteOffset
}

func (r *readCounter) Slice(start, end ByteOffset) string {
	r.most = max(r.most, end-start)
	return r.Buffer.Slice(start, end)
}

func TestMotionOnLongLineReadsWindow(t *testing.T) {
	tests := []struct {
		name string
		line string
		from ByteOffset
		unit Unit
		dir  Direction
		want ByteOffset
	}{
		{"character forward", strings.Repeat("word ", 200000), 500000, Character, Forward, 500001},
		{"character backward", strings.Repeat("word ", 200000), 500000, Character, Backward, 499999},
		{"word forward", strings.Repeat("word ", 200000), 500000, Word, Forward, 500004},
		{"word backward", strings.Repeat("word ", 200000), 500000, Word, Backward, 499995},
		{"cjk backward", strings.Repeat("\u6f22\u5b57", 200000), 600000, Character, Backward, 599997},
		{"combining backward", strings.Repeat("e\u0301", 300000), 600000, Character, Backward, 599997},
		{"combining forward", strings.Repeat("e\u0301", 300000), 600000, Character, Forward, 600003},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &readCounter{Buffer: buffer.NewBufferFromString(tt.line)}
			if got := Move(src, tt.from, tt.unit, tt.dir); got != tt.want {
				t.Errorf("Move(%d, %s, %s) = %d, want %d", tt.from, tt.unit, tt.dir, got, tt.want)
			}
			if src.most > maxWindow {
				t.Errorf("read %d bytes of a %d byte line", src.most, len(tt.line))
			}
		})
	}
}

func TestMoveLine(t *testing.T) {
	b := buffer.NewBufferFromString("long line\nab\nthird line")
	tests := []struct {
		from ByteOffset
		dir  Direction
		want ByteOffset
	}{
		{7, Forward, 12},
		{12, Forward, 15},
		{15, Backward, 12},
		{11, Backward, 1},
		{3, Backward, 0},
		{20, Forward, b.Len()},
	}
	for _, tt := range tests {
		if got := Move(b, tt.from, Line, tt.dir); got != tt.want {
			t.Errorf("Move(%d, line, %s) = %d, want %d", tt.from, tt.dir, got, tt.want)
		}
	}
}

func TestMoveBoundaries(t *testing.T) {
	b := buffer.NewBufferFromString("one\ntwo three\n")
	if got := Move(b, 6, LineBoundary, Backward); got != 4 {
		t.Errorf("line start = %d", got)
	}
	if got := Move(b, 6, LineBoundary, Forward); got != 13 {
		t.Errorf("line end = %d", got)
	}
	if got := Move(b, 6, Document, Forward); got != b.Len() {
		t.Errorf("doc end = %d", got)
	}
	if got := Move(b, 6, Document, Backward); got != 0 {
		t.Errorf("doc start = %d", got)
	}
	if got := Move(b, 500, Character, Forward); got != b.Len() {
		t.Errorf("out of range offset should clamp, got %d", got)
	}
}

func TestParseUnitDirection(t *testing.T) {
	for _, u := range []Unit{Character, Word, Line, LineBoundary, Document} {
		got, err := ParseUnit(u.String())
		if err != nil || got != u {
			t.Errorf("ParseUnit(%q) = %v, %v", u.String(), got, err)
		}
	}
	if _, err := ParseUnit("paragraph"); err == nil {
		t.Error("expected error for unknown unit")
	}
	if d, err := ParseDirection("Left"); err != nil || d != Backward {
		t.Errorf("ParseDirection(Left) = %v, %v", d, err)
	}
}
