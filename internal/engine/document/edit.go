package document

import (
	"github.com/dshills/hybridmd/internal/engine/buffer"
	"github.com/dshills/hybridmd/internal/engine/cursor"
)

// Insert splices text in at offset. Cursor and selection offsets at or
// after the insertion point shift past the inserted text. The change may
// reach further than offset when normalization composes the text with its
// neighbours.
func (d *Document) Insert(offset ByteOffset, text string) (buffer.Change, error) {
	ch, err := d.buf.Insert(offset, text)
	if err != nil {
		return buffer.Change{}, err
	}
	d.sel = d.sel.Transform(ch)
	return ch, nil
}

// Delete removes r. Offsets inside r collapse to r.Start and later
// offsets shift left.
func (d *Document) Delete(r Range) (buffer.Change, error) {
	ch, err := d.buf.Delete(r.Start, r.End)
	if err != nil {
		return buffer.Change{}, err
	}
	d.sel = d.sel.Transform(ch)
	return ch, nil
}

// Replace swaps r for text as one change and leaves the cursor after the
// new text with no selection.
func (d *Document) Replace(r Range, text string) (buffer.Change, error) {
	ch, err := d.buf.Replace(r.Start, r.End, text)
	if err != nil {
		return buffer.Change{}, err
	}
	d.sel = cursor.Caret(ch.NewRange.End)
	return ch, nil
}

// ReplaceSelection replaces the selection with text, or inserts at the
// cursor when nothing is selected. The cursor ends after the inserted
// text and the selection is cleared.
func (d *Document) ReplaceSelection(text string) (buffer.Change, error) {
	if d.sel.IsEmpty() {
		ch, err := d.Insert(d.sel.Head, text)
		if err != nil {
			return buffer.Change{}, err
		}
		d.sel = cursor.Caret(ch.NewRange.End)
		return ch, nil
	}
	return d.Replace(d.sel.Range(), text)
}

// DeleteSelection removes the selected text. It is a no-op without a
// selection.
func (d *Document) DeleteSelection() (buffer.Change, error) {
	if d.sel.IsEmpty() {
		return d.noop(), nil
	}
	return d.Delete(d.sel.Range())
}

// DeleteBackward removes the selection, or the grapheme cluster before
// the cursor.
func (d *Document) DeleteBackward() (buffer.Change, error) {
	return d.deleteMotion(cursor.Character, cursor.Backward)
}

// DeleteForward removes the selection, or the grapheme cluster after the
// cursor.
func (d *Document) DeleteForward() (buffer.Change, error) {
	return d.deleteMotion(cursor.Character, cursor.Forward)
}

// DeleteWordBackward removes back to the start of the previous word.
func (d *Document) DeleteWordBackward() (buffer.Change, error) {
	return d.deleteMotion(cursor.Word, cursor.Backward)
}

// DeleteWordForward removes up to the end of the next word.
func (d *Document) DeleteWordForward() (buffer.Change, error) {
	return d.deleteMotion(cursor.Word, cursor.Forward)
}

// DeleteToLineStart removes from the start of the line to the cursor.
func (d *Document) DeleteToLineStart() (buffer.Change, error) {
	return d.deleteMotion(cursor.LineBoundary, cursor.Backward)
}

// DeleteToLineEnd removes from the cursor to the end of the line.
func (d *Document) DeleteToLineEnd() (buffer.Change, error) {
	return d.deleteMotion(cursor.LineBoundary, cursor.Forward)
}

func (d *Document) deleteMotion(unit cursor.Unit, dir cursor.Direction) (buffer.Change, error) {
	if !d.sel.IsEmpty() {
		return d.DeleteSelection()
	}
	to := cursor.Move(d.buf, d.sel.Head, unit, dir)
	if to == d.sel.Head {
		return d.noop(), nil
	}
	return d.Delete(buffer.NewRange(d.sel.Head, to))
}

// DeleteLine removes the cursor's line including its newline. On the last
// line the preceding newline goes instead.
func (d *Document) DeleteLine() (buffer.Change, error) {
	p := d.buf.OffsetToPoint(d.sel.Head)
	start := d.buf.LineStartOffset(p.Line)
	end := d.buf.LineEndOffset(p.Line)
	switch {
	case p.Line+1 < d.buf.LineCount():
		end++
	case p.Line > 0:
		start--
	}
	if start == end {
		return d.noop(), nil
	}
	ch, err := d.Delete(Range{Start: start, End: end})
	if err != nil {
		return buffer.Change{}, err
	}
	d.sel = cursor.Caret(start)
	return ch, nil
}

// Copy returns the selected text.
func (d *Document) Copy() string { return d.SelectedText() }

// Cut returns the selected text and removes it.
func (d *Document) Cut() (string, buffer.Change, error) {
	text := d.SelectedText()
	ch, err := d.DeleteSelection()
	return text, ch, err
}

// Paste replaces the selection with text.
func (d *Document) Paste(text string) (buffer.Change, error) {
	return d.ReplaceSelection(text)
}

func (d *Document) noop() buffer.Change {
	at := d.sel.Head
	return buffer.Change{
		OldRange: Range{Start: at, End: at},
		NewRange: Range{Start: at, End: at},
		Revision: d.buf.Revision(),
	}
}
