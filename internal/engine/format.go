package engine

import (
	"strings"

	"github.com/dshills/hybridmd/internal/engine/buffer"
	"github.com/dshills/hybridmd/internal/markdown"
)

// markers returns the delimiter ToggleFormatting inserts for kind.
func markers(kind markdown.Kind) (string, bool) {
	switch kind {
	case markdown.Strong:
		return "**", true
	case markdown.Emphasis:
		return "*", true
	case markdown.Strikethrough:
		return "~~", true
	case markdown.CodeSpan:
		return "`", true
	}
	return "", false
}

// markerLen returns the width of the delimiter opening tok, whose source
// text is src.
func markerLen(tok markdown.Token, src string) int {
	switch tok.Kind {
	case markdown.Strong:
		return 2
	case markdown.Emphasis:
		return 1
	}
	c := src[0]
	return len(src) - len(strings.TrimLeft(src, string(c)))
}

// inner returns the range of tok between its delimiters.
func inner(tok markdown.Token, src string) (buffer.Range, bool) {
	k := buffer.ByteOffset(markerLen(tok, src))
	r := tok.Range
	if r.Len() < 2*k {
		return buffer.Range{}, false
	}
	return buffer.Range{Start: r.Start + k, End: r.End - k}, true
}

// toggleLocked wraps the selection in kind's delimiters, or unwraps it
// when it already is exactly a token of that kind (delimiters included
// or not). With no selection it unwraps the innermost enclosing token of
// that kind, or inserts an empty pair with the cursor between.
func (e *Engine) toggleLocked(kind markdown.Kind) (buffer.Change, error) {
	m, ok := markers(kind)
	if !ok {
		return buffer.Change{}, unsupported(kind)
	}
	t := e.tree.Load()
	buf := e.doc.Buffer()
	sel := e.doc.Selection()
	r := sel.Range()

	if !r.IsEmpty() {
		for _, id := range t.Overlapping(r) {
			tok := t.Token(id)
			if tok.Kind != kind {
				continue
			}
			in, ok := inner(tok, buf.Slice(tok.Range.Start, tok.Range.End))
			if !ok || (tok.Range != r && in != r) {
				continue
			}
			return e.unwrapLocked(tok.Range, in, -1)
		}
		text := buf.Slice(r.Start, r.End)
		ch, err := e.doc.Replace(r, m+text+m)
		if err != nil {
			return buffer.Change{}, err
		}
		k := buffer.ByteOffset(len(m))
		e.doc.SetSelection(r.Start+k, r.End+k)
		return ch, nil
	}

	at := sel.Head
	path := t.Path(at)
	for i := len(path) - 1; i >= 0; i-- {
		tok := t.Token(path[i])
		if tok.Kind != kind {
			continue
		}
		in, ok := inner(tok, buf.Slice(tok.Range.Start, tok.Range.End))
		if !ok {
			continue
		}
		return e.unwrapLocked(tok.Range, in, at)
	}
	ch, err := e.doc.Insert(at, m+m)
	if err != nil {
		return buffer.Change{}, err
	}
	e.doc.SetCursor(at + buffer.ByteOffset(len(m)))
	return ch, nil
}

// unwrapLocked replaces outer with its inner text. A negative caret
// selects the unwrapped text; otherwise the caret keeps its place in it.
func (e *Engine) unwrapLocked(outer, in buffer.Range, caret buffer.ByteOffset) (buffer.Change, error) {
	text := e.doc.Buffer().Slice(in.Start, in.End)
	ch, err := e.doc.Replace(outer, text)
	if err != nil {
		return buffer.Change{}, err
	}
	start := outer.Start
	end := start + in.Len()
	if caret < 0 {
		e.doc.SetSelection(start, end)
		return ch, nil
	}
	pos := caret - (in.Start - outer.Start)
	e.doc.SetCursor(min(max(pos, start), end))
	return ch, nil
}
