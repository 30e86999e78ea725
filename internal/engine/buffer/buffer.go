package buffer

import (
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/dshills/hybridmd/internal/engine/rope"
)

// Buffer is a validated, revisioned text store. Methods are safe for
// concurrent use; readers that need a stable view across several calls
// should take a Snapshot.
type Buffer struct {
	mu       sync.RWMutex
	rope     rope.Rope
	revision uint64

	normalizeNewlines bool
	form              *norm.Form
}

// NewBuffer creates an empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{rope: rope.New()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewBufferFromString creates a buffer holding s after normalization.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	b.rope = rope.FromString(b.normalize(s))
	return b
}

func (b *Buffer) normalize(s string) string {
	s = b.lineEndings(s)
	if b.form != nil {
		s = b.form.String(s)
	}
	return s
}

func (b *Buffer) lineEndings(s string) string {
	if b.normalizeNewlines && strings.IndexByte(s, '\r') >= 0 {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
	}
	return s
}

// boundaryContext bounds how far normalization looks past either side of
// an edit for a segment boundary.
const boundaryContext = 128

// spliceLocked normalizes the result of replacing [start, end) with text.
// Marks on either side of the edit may compose with their neighbours, so
// the segments touching it are normalized together. It returns the range
// that actually changes and its new content, less any prefix or suffix
// normalization left as it was.
func (b *Buffer) spliceLocked(start, end ByteOffset, text string) (ByteOffset, ByteOffset, string) {
	text = b.lineEndings(text)
	if b.form == nil {
		return start, end, text
	}

	// Without a boundary in reach, the context edges stand in for one.
	from := max(start-boundaryContext, 0)
	for !b.rope.IsCharBoundary(from) {
		from++
	}
	before := b.rope.Slice(from, start)
	i := max(b.form.LastBoundary([]byte(before)), 0)
	to := min(end+boundaryContext, b.rope.Len())
	for !b.rope.IsCharBoundary(to) {
		to--
	}
	after := b.rope.Slice(end, to)
	j := b.form.FirstBoundaryInString(after)
	if j < 0 {
		j = len(after)
	}

	lo := from + ByteOffset(i)
	hi := end + ByteOffset(j)
	old := before[i:] + b.rope.Slice(start, end) + after[:j]
	repl := b.form.String(before[i:] + text + after[:j])

	p := commonPrefix(old, repl)
	q := commonSuffix(old[p:], repl[p:])
	return lo + ByteOffset(p), hi - ByteOffset(q), repl[p : len(repl)-q]
}

// commonPrefix returns the length of the longest common prefix of a and
// b that ends on a character boundary in both.
func commonPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	for n > 0 && ((n < len(a) && !utf8.RuneStart(a[n])) || (n < len(b) && !utf8.RuneStart(b[n]))) {
		n--
	}
	return n
}

// commonSuffix is commonPrefix from the other end.
func commonSuffix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	for n > 0 && (!utf8.RuneStart(a[len(a)-n]) || !utf8.RuneStart(b[len(b)-n])) {
		n--
	}
	return n
}

// Text returns the full content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.String()
}

// Slice returns the text in [start, end), clamped to the buffer.
func (b *Buffer) Slice(start, end ByteOffset) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.Slice(start, end)
}

// Len returns the byte length.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.Len()
}

// IsEmpty reports whether the buffer holds no text.
func (b *Buffer) IsEmpty() bool {
	return b.Len() == 0
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.LineCount()
}

// LineText returns a line without its newline.
func (b *Buffer) LineText(line uint32) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.LineText(line)
}

// LineStartOffset returns the offset where line begins.
func (b *Buffer) LineStartOffset(line uint32) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.LineStartOffset(line)
}

// LineEndOffset returns the offset of the newline ending line, or Len.
func (b *Buffer) LineEndOffset(line uint32) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.LineEndOffset(line)
}

// RuneAt decodes the character starting at offset.
func (b *Buffer) RuneAt(offset ByteOffset) (rune, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if offset < 0 || offset >= b.rope.Len() {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(b.rope.Slice(offset, offset+utf8.UTFMax))
}

// OffsetToPoint converts an offset to a line and character column.
func (b *Buffer) OffsetToPoint(offset ByteOffset) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Point(b.rope.OffsetToPoint(offset))
}

// PointToOffset converts a point to an offset, clamping to the line end
// and to the end of the buffer.
func (b *Buffer) PointToOffset(p Point) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.PointToOffset(rope.Point(p))
}

// IsCharBoundary reports whether offset is a valid cursor position.
func (b *Buffer) IsCharBoundary(offset ByteOffset) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return offset >= 0 && offset <= b.rope.Len() && b.rope.IsCharBoundary(offset)
}

// ClampOffset limits offset to [0, Len] and moves it back to the
// nearest character boundary.
func (b *Buffer) ClampOffset(offset ByteOffset) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	offset = min(max(offset, 0), b.rope.Len())
	if !b.rope.IsCharBoundary(offset) {
		offset = b.rope.PrevCharBoundary(offset)
	}
	return offset
}

// CheckOffset validates offset for op.
func (b *Buffer) CheckOffset(op string, offset ByteOffset) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.checkLocked(op, offset)
}

func (b *Buffer) checkLocked(op string, offset ByteOffset) error {
	n := b.rope.Len()
	switch {
	case offset < 0 || offset > n:
		return &OffsetError{Op: op, Offset: offset, Len: n, Reason: "out of range"}
	case !b.rope.IsCharBoundary(offset):
		return &OffsetError{Op: op, Offset: offset, Len: n, Reason: "splits a character"}
	}
	return nil
}

// Insert inserts text at offset.
func (b *Buffer) Insert(offset ByteOffset, text string) (Change, error) {
	return b.replace("insert", offset, offset, text)
}

// Delete removes [start, end).
func (b *Buffer) Delete(start, end ByteOffset) (Change, error) {
	return b.replace("delete", start, end, "")
}

// Replace swaps [start, end) for text. Both bounds must be character
// boundaries and start must not exceed end.
func (b *Buffer) Replace(start, end ByteOffset, text string) (Change, error) {
	return b.replace("replace", start, end, text)
}

func (b *Buffer) replace(op string, start, end ByteOffset, text string) (Change, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkLocked(op, start); err != nil {
		return Change{}, err
	}
	if err := b.checkLocked(op, end); err != nil {
		return Change{}, err
	}
	if end < start {
		return Change{}, &OffsetError{Op: op, Offset: end, Len: b.rope.Len(), Reason: "precedes range start"}
	}

	start, end, text = b.spliceLocked(start, end, text)
	old := b.rope.Slice(start, end)
	if old == "" && text == "" {
		return Change{OldRange: Range{start, start}, NewRange: Range{start, start}, Revision: b.revision}, nil
	}
	b.rope = b.rope.Replace(start, end, text)
	b.revision++

	return Change{
		OldRange: Range{Start: start, End: end},
		NewRange: Range{Start: start, End: start + ByteOffset(len(text))},
		OldText:  old,
		NewText:  text,
		Revision: b.revision,
	}, nil
}

// Revision returns a counter bumped by every applied edit.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// Snapshot returns an immutable view of the current content.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Snapshot{rope: b.rope, revision: b.revision}
}
