// Package document implements the editable markdown document: text,
// cursor and directional selection.
//
// Every mutating method returns the buffer.Change it applied so callers
// can update derived state (tokens, layout caches) incrementally. Offsets
// that are out of range or split a character are rejected with
// buffer.ErrInvalidOffset; cursor and selection setters clamp instead.
//
// A Document is not safe for concurrent mutation. Readers on other
// goroutines should work from Snapshot.
package document

import (
	"github.com/dshills/hybridmd/internal/engine/buffer"
	"github.com/dshills/hybridmd/internal/engine/cursor"
)

// ByteOffset is an alias for buffer.ByteOffset.
type ByteOffset = buffer.ByteOffset

// Range is an alias for buffer.Range.
type Range = buffer.Range

// Document is text plus a cursor/selection.
type Document struct {
	buf *buffer.Buffer
	sel cursor.Selection
}

// New creates an empty document.
func New(opts ...buffer.Option) *Document {
	return &Document{buf: buffer.NewBuffer(opts...)}
}

// FromString creates a document holding text with the cursor at 0.
func FromString(text string, opts ...buffer.Option) *Document {
	return &Document{buf: buffer.NewBufferFromString(text, opts...)}
}

// Text returns the content. This is what gets saved.
func (d *Document) Text() string { return d.buf.Text() }

// Len returns the byte length.
func (d *Document) Len() ByteOffset { return d.buf.Len() }

// Buffer exposes the underlying buffer for read-only queries.
func (d *Document) Buffer() *buffer.Buffer { return d.buf }

// Snapshot returns an immutable view of the content.
func (d *Document) Snapshot() buffer.Snapshot { return d.buf.Snapshot() }

// Cursor returns the cursor offset (the selection head).
func (d *Document) Cursor() ByteOffset { return d.sel.Head }

// Selection returns the current selection. It is empty when only a
// cursor is placed.
func (d *Document) Selection() cursor.Selection { return d.sel }

// HasSelection reports whether any text is selected.
func (d *Document) HasSelection() bool { return !d.sel.IsEmpty() }

// SelectedText returns the selected text, or "".
func (d *Document) SelectedText() string {
	r := d.sel.Range()
	return d.buf.Slice(r.Start, r.End)
}

// SetCursor places the cursor and clears the selection. Out-of-range or
// mid-character offsets are clamped.
func (d *Document) SetCursor(offset ByteOffset) {
	d.sel = cursor.Caret(d.buf.ClampOffset(offset))
}

// SetSelection sets a directional selection, clamping both ends.
func (d *Document) SetSelection(anchor, head ByteOffset) {
	d.sel = cursor.NewSelection(d.buf.ClampOffset(anchor), d.buf.ClampOffset(head))
}

// SelectAll selects the whole document with the cursor at the end.
func (d *Document) SelectAll() {
	d.sel = cursor.NewSelection(0, d.buf.Len())
}

// CollapseSelection drops the selection, keeping the cursor where it is.
func (d *Document) CollapseSelection() {
	d.sel = d.sel.Collapse()
}

// MoveCursor moves the cursor by a motion and clears the selection. A
// character step with text selected collapses to the selection edge in
// that direction instead of moving.
func (d *Document) MoveCursor(unit cursor.Unit, dir cursor.Direction) {
	if !d.sel.IsEmpty() && unit == cursor.Character {
		if dir == cursor.Backward {
			d.sel = d.sel.CollapseToStart()
		} else {
			d.sel = d.sel.CollapseToEnd()
		}
		return
	}
	d.sel = cursor.Caret(cursor.Move(d.buf, d.sel.Head, unit, dir))
}

// ExtendSelection moves the head by a motion, keeping the anchor.
func (d *Document) ExtendSelection(unit cursor.Unit, dir cursor.Direction) {
	d.sel = d.sel.Extend(cursor.Move(d.buf, d.sel.Head, unit, dir))
}
