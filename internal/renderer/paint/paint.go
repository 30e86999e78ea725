// Package paint decides how each character of a line is drawn in the
// hybrid view: which styles apply, and which syntax markers disappear
// because the token they belong to is shown as preview.
package paint

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/hybridmd/internal/engine/buffer"
	"github.com/dshills/hybridmd/internal/markdown"
	"github.com/dshills/hybridmd/internal/renderer/mode"
)

// Role is the theme color a character takes.
type Role uint8

const (
	RoleText Role = iota
	RoleMarker
	RoleHeading
	RoleCode
	RoleLink
	RoleQuote
	RoleRule
)

// Attr describes one character.
type Attr struct {
	Role   Role
	Bold   bool
	Italic bool
	Strike bool
	// Hidden characters are markers of a preview token; they take no
	// cells.
	Hidden bool
	// Raw is set inside tokens shown as source.
	Raw bool
	// Syntax classes code inside fenced blocks with a known language.
	Syntax Syntax
}

// Source is the document text a line is read from.
type Source interface {
	Slice(start, end buffer.ByteOffset) string
}

// Line returns one Attr per character of text, the line starting at
// offset start.
func Line(t *markdown.Tree, d mode.Decision, src Source, start buffer.ByteOffset, text string) []Attr {
	attrs := make([]Attr, 0, utf8.RuneCountInString(text))
	for i := range text {
		attrs = append(attrs, char(t, d, src, start+buffer.ByteOffset(i)))
	}
	highlight(attrs, t, start, text)
	return attrs
}

func char(t *markdown.Tree, d mode.Decision, src Source, off buffer.ByteOffset) Attr {
	var a Attr
	path := t.Path(off)
	for _, id := range path {
		tok := t.Token(id)
		if d.Mode(id) == mode.Raw {
			a.Raw = true
		}
		switch tok.Kind {
		case markdown.Strong:
			a.Bold = true
		case markdown.Emphasis:
			a.Italic = true
		case markdown.Strikethrough:
			a.Strike = true
		case markdown.Heading:
			a.Role, a.Bold = RoleHeading, true
		case markdown.CodeSpan, markdown.CodeBlock, markdown.HtmlInline:
			a.Role = RoleCode
		case markdown.Link, markdown.Image:
			a.Role = RoleLink
		case markdown.Blockquote:
			a.Role = RoleQuote
		case markdown.ThematicBreak:
			a.Role = RoleRule
		}
	}
	if len(path) == 0 {
		return a
	}
	last := path[len(path)-1]
	tok := t.Token(last)
	if !isMarker(t, last, tok, src, off) {
		return a
	}
	if tok.Kind.Opaque() && d.Mode(last) == mode.Preview {
		a.Hidden = true
	} else {
		a.Role = RoleMarker
	}
	return a
}

// isMarker reports whether off is syntax of tok rather than content.
// Path already descended as far as it could, so for a token with
// children any byte it still owns is syntax.
func isMarker(t *markdown.Tree, id markdown.TokenID, tok markdown.Token, src Source, off buffer.ByteOffset) bool {
	r := tok.Range
	switch tok.Kind {
	case markdown.Text, markdown.CodeBlock, markdown.HtmlInline, markdown.ThematicBreak, markdown.TableCell:
		return false
	case markdown.CodeSpan:
		open := src.Slice(r.Start, min(r.End, r.Start+16))
		k := buffer.ByteOffset(len(open) - len(strings.TrimLeft(open, "`")))
		return off < r.Start+k || off >= r.End-k
	case markdown.Image:
		alt := r.Start + 2
		return off < alt || off >= alt+buffer.ByteOffset(len(tok.Alt))
	}
	first, end := t.Descendants(id)
	if first == end && tok.Kind == markdown.Link && src.Slice(r.Start, r.Start+1) == "<" {
		return off == r.Start || off == r.End-1
	}
	if first == end && tok.Kind.Opaque() {
		// An opaque token without children is all markers, as in "****".
		return true
	}
	return first != end
}
