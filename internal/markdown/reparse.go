package markdown

import (
	"strings"

	"github.com/dshills/hybridmd/internal/engine/buffer"
)

// Span is the region a reparse re-tokenized, before and after the edit.
type Span struct {
	Old Range
	New Range
}

// Source is the text a tree is reparsed against. buffer.Snapshot
// satisfies it.
type Source interface {
	Len() ByteOffset
	Slice(start, end ByteOffset) string
}

// String adapts a string to Source.
type String string

// Len returns the byte length of s.
func (s String) Len() ByteOffset { return ByteOffset(len(s)) }

// Slice returns s[start:end].
func (s String) Slice(start, end ByteOffset) string { return string(s[start:end]) }

// Reparse returns a tree for text, the document produced by applying ch
// to the document t describes. t is left untouched.
func (t *Tree) Reparse(text string, ch buffer.Change) (*Tree, Span) {
	return t.ReparseSource(String(text), ch)
}

// ReparseSource is Reparse reading the new document from src. Only the
// top-level blocks touching the edit and one neighbour on each side are
// re-tokenized, and only their text is read from src; the region grows
// forward while its last block could still absorb the block after it.
func (t *Tree) ReparseSource(src Source, ch buffer.Change) (*Tree, Span) {
	n := src.Len()
	if t.nroots == 0 || ch.OldRange.End > t.length || n != t.length+ch.Delta() {
		return Parse(src.Slice(0, n)), Span{Old: Range{End: t.length}, New: Range{End: n}}
	}
	if ch.IsNoOp() {
		at := ch.OldRange.Start
		return t, Span{Old: Range{Start: at, End: at}, New: Range{Start: at, End: at}}
	}

	delta := ch.Delta()
	first := t.rootAt(ch.OldRange.Start)
	last := first
	if !ch.OldRange.IsEmpty() {
		last = t.rootAt(ch.OldRange.End - 1)
	}
	a := max(first-1, 0)
	b := min(last+1, t.nroots-1)

	for {
		start := t.rootToken(a).Range.Start
		tail := t.rootToken(b)
		if tail.Pending {
			return t.reparsePending(src, ch, a, start)
		}
		oldEnd := tail.Range.End
		newEnd := oldEnd + delta

		// The window reaches over the next two blocks so continuation
		// checks on the block after the region see whole lines.
		limit := newEnd
		if b+1 < t.nroots {
			limit = t.rootToken(min(b+2, t.nroots-1)).Range.End + delta
		}
		sub := &builder{src: src.Slice(start, limit)}
		unclosed := sub.blocks(0, int(newEnd-start))
		if b+1 < t.nroots && !t.settled(sub, unclosed, t.rootToken(b+1).Range.Start+delta-start) {
			if unclosed {
				b = t.nroots - 1
			} else {
				b++
			}
			continue
		}
		return t.splice(a, b, sub, start, delta, n), Span{
			Old: Range{Start: start, End: oldEnd},
			New: Range{Start: start, End: newEnd},
		}
	}
}

// settled reports whether the blocks in sub can be followed by the
// unchanged top-level token starting at next (new coordinates) without
// either changing meaning.
func (t *Tree) settled(sub *builder, unclosed bool, next ByteOffset) bool {
	if unclosed {
		return false
	}
	if len(sub.roots) == 0 {
		return true
	}
	return !sub.absorbs(sub.nodes[sub.roots[len(sub.roots)-1]], int(next))
}

// absorbs reports whether block tail would continue onto the line at pos.
// It mirrors the continuation rules of the block scanner.
func (b *builder) absorbs(tail Token, pos int) bool {
	ln := b.lineAt(pos, len(b.src))
	s := b.text(ln)
	if isBlank(s) {
		return tail.Blank
	}
	switch tail.Kind {
	case Paragraph:
		return !interrupts(s) && !listMarker(s).ok && !b.tableStarts(ln, len(b.src))
	case ListItem, TaskItem:
		return !listMarker(s).ok && (indentWidth(s) >= 4 || !interrupts(s))
	case CodeBlock:
		return !tail.Fenced && indentWidth(s) >= 4 && !listMarker(s).ok
	case Table:
		return strings.Contains(s, "|") && !interrupts(s)
	case Blockquote:
		return quoteContent(s) >= 0
	}
	return false
}

// reparsePending handles an edit region that reaches the pending tail.
// Tokenizing stops at the first block boundary past the edit and the
// remainder becomes a new pending token.
func (t *Tree) reparsePending(src Source, ch buffer.Change, a int, start ByteOffset) (*Tree, Span) {
	n := src.Len()
	p, _ := t.Pending()
	from := max(ch.NewRange.End, ch.MapOffset(p.Start))
	text := src.Slice(start, n)
	cut := boundary(text, int(from-start))

	sub := &builder{src: text}
	if unclosed := sub.blocks(0, cut); unclosed {
		sub = &builder{src: text}
		sub.blocks(0, len(text))
		cut = len(text)
	}
	if cut < len(text) {
		sub.pending(cut, len(text))
	}
	return t.splice(a, t.nroots-1, sub, start, 0, n), Span{
		Old: Range{Start: start, End: t.length},
		New: Range{Start: start, End: start + ByteOffset(cut)},
	}
}
