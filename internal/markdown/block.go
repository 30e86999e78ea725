package markdown

import (
	"context"
	"strings"
)

// builder accumulates tokens in pre-order. All offsets are absolute
// positions in src.
type builder struct {
	src      string
	ctx      context.Context
	nodes    []Token
	roots    []TokenID
	degraded int
	mark     int // degraded count when the current block opened
}

func (b *builder) push(tok Token, parent TokenID) TokenID {
	id := TokenID(len(b.nodes))
	tok.parent = parent
	tok.size = 1
	b.nodes = append(b.nodes, tok)
	if parent == NoToken {
		b.roots = append(b.roots, id)
		b.mark = b.degraded
	}
	return id
}

func (b *builder) done(id TokenID) {
	n := &b.nodes[id]
	n.size = int32(len(b.nodes) - int(id))
	if n.parent == NoToken {
		n.degraded = int32(b.degraded - b.mark)
	}
}

func span(start, end int) Range {
	return Range{Start: ByteOffset(start), End: ByteOffset(end)}
}

// line is one source line: [start, end) excludes the newline, next is
// the offset of the following line.
type line struct {
	start, end, next int
}

func (b *builder) lineAt(pos, limit int) line {
	i := strings.IndexByte(b.src[pos:limit], '\n')
	if i < 0 {
		return line{pos, limit, limit}
	}
	return line{pos, pos + i, pos + i + 1}
}

func (b *builder) text(ln line) string { return b.src[ln.start:ln.end] }

// blocks tokenizes the lines in [pos, limit) as top-level blocks. It
// reports whether the last block was a fence left open at limit.
func (b *builder) blocks(pos, limit int) (unclosed bool) {
	for pos < limit {
		if b.ctx != nil && b.ctx.Err() != nil {
			return false
		}
		ln := b.lineAt(pos, limit)
		s := b.text(ln)
		unclosed = false
		switch {
		case isBlank(s):
			pos = b.blankRun(ln, limit)
		case fenceOpens(s):
			pos, unclosed = b.fenced(ln, limit)
		case headingLevel(s) > 0:
			pos = b.heading(ln)
		case isThematicBreak(s):
			id := b.push(Token{Kind: ThematicBreak, Range: span(ln.start, ln.next)}, NoToken)
			b.done(id)
			pos = ln.next
		case quoteContent(s) >= 0:
			pos = b.blockquote(ln, limit)
		case listMarker(s).ok:
			pos = b.listItem(ln, limit)
		case indentWidth(s) >= 4:
			pos = b.indented(ln, limit)
		case b.tableStarts(ln, limit):
			pos = b.table(ln, limit)
		default:
			pos = b.paragraph(ln, limit)
		}
	}
	return unclosed
}

func (b *builder) blankRun(ln line, limit int) int {
	start := ln.start
	for ln.next < limit {
		nl := b.lineAt(ln.next, limit)
		if !isBlank(b.text(nl)) {
			break
		}
		ln = nl
	}
	id := b.push(Token{Kind: Text, Blank: true, Range: span(start, ln.next)}, NoToken)
	b.done(id)
	return ln.next
}

func (b *builder) fenced(open line, limit int) (int, bool) {
	s := b.text(open)
	indent := len(s) - len(strings.TrimLeft(s, " "))
	ch := s[indent]
	n := runLength(s[indent:], ch)
	info := strings.TrimSpace(s[indent+n:])
	if f := strings.Fields(info); len(f) > 0 {
		info = f[0]
	}

	tok := Token{Kind: CodeBlock, Fenced: true, Info: info}
	ln := open
	closed := false
	for ln.next < limit {
		ln = b.lineAt(ln.next, limit)
		if fenceCloses(b.text(ln), ch, n) {
			closed = true
			break
		}
	}
	tok.Range = span(open.start, ln.next)
	id := b.push(tok, NoToken)
	b.done(id)
	return ln.next, !closed
}

func (b *builder) heading(ln line) int {
	s := b.text(ln)
	level := headingLevel(s)
	cs, ce := headingContent(s)
	id := b.push(Token{Kind: Heading, Level: level, Range: span(ln.start, ln.next)}, NoToken)
	if ce > cs {
		b.inline(ln.start+cs, ln.start+ce, id)
	}
	b.done(id)
	return ln.next
}

func (b *builder) blockquote(first line, limit int) int {
	id := b.push(Token{Kind: Blockquote}, NoToken)
	ln := first
	for {
		s := b.text(ln)
		if c := quoteContent(s); c < len(s) {
			b.inline(ln.start+c, ln.end, id)
		}
		if ln.next >= limit {
			break
		}
		nl := b.lineAt(ln.next, limit)
		if quoteContent(b.text(nl)) < 0 {
			break
		}
		ln = nl
	}
	b.nodes[id].Range = span(first.start, ln.next)
	b.done(id)
	return ln.next
}

func (b *builder) listItem(first line, limit int) int {
	m := listMarker(b.text(first))
	tok := Token{Kind: ListItem, Ordered: m.ordered, Number: m.number}
	if m.task {
		tok.Kind = TaskItem
		tok.Checked = m.checked
	}
	ln := first
	for ln.next < limit {
		nl := b.lineAt(ln.next, limit)
		s := b.text(nl)
		if isBlank(s) || listMarker(s).ok || (indentWidth(s) < 4 && interrupts(s)) {
			break
		}
		ln = nl
	}
	tok.Range = span(first.start, ln.next)
	id := b.push(tok, NoToken)
	if cs := first.start + m.content; cs < ln.end {
		b.inline(cs, ln.end, id)
	}
	b.done(id)
	return ln.next
}

func (b *builder) indented(first line, limit int) int {
	ln := first
	for ln.next < limit {
		nl := b.lineAt(ln.next, limit)
		s := b.text(nl)
		if isBlank(s) || indentWidth(s) < 4 || listMarker(s).ok {
			break
		}
		ln = nl
	}
	id := b.push(Token{Kind: CodeBlock, Range: span(first.start, ln.next)}, NoToken)
	b.done(id)
	return ln.next
}

func (b *builder) tableStarts(ln line, limit int) bool {
	if ln.next >= limit || !strings.Contains(b.text(ln), "|") {
		return false
	}
	sep := b.lineAt(ln.next, limit)
	n, ok := delimiterRow(b.text(sep))
	return ok && len(b.cells(ln)) == n
}

func (b *builder) table(header line, limit int) int {
	id := b.push(Token{Kind: Table}, NoToken)
	b.row(header, id, true)
	sep := b.lineAt(header.next, limit)
	b.row(sep, id, false)
	ln := sep
	for ln.next < limit {
		nl := b.lineAt(ln.next, limit)
		s := b.text(nl)
		if isBlank(s) || !strings.Contains(s, "|") || interrupts(s) {
			break
		}
		b.row(nl, id, true)
		ln = nl
	}
	b.nodes[id].Range = span(header.start, ln.next)
	b.done(id)
	return ln.next
}

func (b *builder) row(ln line, parent TokenID, withCells bool) {
	id := b.push(Token{Kind: TableRow, Range: span(ln.start, ln.next)}, parent)
	if withCells {
		for _, c := range b.cells(ln) {
			if c.end <= c.start {
				continue
			}
			cid := b.push(Token{Kind: TableCell, Range: span(c.start, c.end)}, id)
			b.inline(c.start, c.end, cid)
			b.done(cid)
		}
	}
	b.done(id)
}

type cell struct{ start, end int }

// cells splits a table row on unescaped pipes outside code spans. Cell
// bounds exclude surrounding whitespace.
func (b *builder) cells(ln line) []cell {
	start, end := ln.start, ln.end
	for start < end && isSpace(b.src[start]) {
		start++
	}
	for end > start && isSpace(b.src[end-1]) {
		end--
	}
	if start < end && b.src[start] == '|' {
		start++
	}
	if end > start && b.src[end-1] == '|' && (end-2 < start || b.src[end-2] != '\\') {
		end--
	}

	var out []cell
	seg := start
	for i := start; i < end; i++ {
		switch b.src[i] {
		case '\\':
			i++
		case '`':
			n := runLength(b.src[i:end], '`')
			if j := findRun(b.src, i+n, end, '`', n); j >= 0 {
				i = j + n - 1
			} else {
				i += n - 1
			}
		case '|':
			out = append(out, b.trimCell(seg, i))
			seg = i + 1
		}
	}
	return append(out, b.trimCell(seg, end))
}

func (b *builder) trimCell(start, end int) cell {
	for start < end && isSpace(b.src[start]) {
		start++
	}
	for end > start && isSpace(b.src[end-1]) {
		end--
	}
	return cell{start, end}
}

func (b *builder) paragraph(first line, limit int) int {
	ln := first
	for ln.next < limit {
		nl := b.lineAt(ln.next, limit)
		s := b.text(nl)
		if isBlank(s) || interrupts(s) || listMarker(s).ok || b.tableStarts(nl, limit) {
			break
		}
		ln = nl
	}
	id := b.push(Token{Kind: Paragraph, Range: span(first.start, ln.next)}, NoToken)
	cs := first.start + len(b.text(first)) - len(strings.TrimLeft(b.text(first), " \t"))
	if cs < ln.end {
		b.inline(cs, ln.end, id)
	}
	b.done(id)
	return ln.next
}

// interrupts reports whether s starts a block that ends a paragraph or
// list item.
func interrupts(s string) bool {
	return fenceOpens(s) || headingLevel(s) > 0 || isThematicBreak(s) || quoteContent(s) >= 0
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' }

func isBlank(s string) bool {
	return strings.TrimLeft(s, " \t\r") == ""
}

// indentWidth returns the leading whitespace width with tabs as four
// columns.
func indentWidth(s string) int {
	w := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ':
			w++
		case '\t':
			w += 4 - w%4
		default:
			return w
		}
	}
	return w
}

// smallIndent strips up to three leading spaces. ok is false when the
// line is indented further.
func smallIndent(s string) (rest string, n int, ok bool) {
	for n < len(s) && n < 4 && s[n] == ' ' {
		n++
	}
	if n == 4 || (n < len(s) && s[n] == '\t') {
		return s, 0, false
	}
	return s[n:], n, true
}

func runLength(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	return n
}

func fenceOpens(s string) bool {
	s, _, ok := smallIndent(s)
	if !ok || len(s) < 3 || (s[0] != '`' && s[0] != '~') {
		return false
	}
	n := runLength(s, s[0])
	if n < 3 {
		return false
	}
	return s[0] == '~' || !strings.Contains(s[n:], "`")
}

func fenceCloses(s string, ch byte, n int) bool {
	s, _, ok := smallIndent(s)
	if !ok {
		return false
	}
	m := runLength(s, ch)
	return m >= n && isBlank(s[m:])
}

func headingLevel(s string) int {
	s, _, ok := smallIndent(s)
	if !ok {
		return 0
	}
	n := runLength(s, '#')
	if n == 0 || n > 6 {
		return 0
	}
	if n < len(s) && s[n] != ' ' && s[n] != '\t' && s[n] != '\r' {
		return 0
	}
	return n
}

// headingContent returns the inline content bounds within a heading line,
// excluding the opening marker and an optional closing run of #.
func headingContent(s string) (int, int) {
	_, indent, _ := smallIndent(s)
	start := indent + runLength(s[indent:], '#')
	for start < len(s) && isSpace(s[start]) {
		start++
	}
	end := len(strings.TrimRight(s, " \t\r"))
	if end <= start {
		return start, start
	}
	closing := end
	for closing > start && s[closing-1] == '#' {
		closing--
	}
	if closing < end && (closing == start || isSpace(s[closing-1])) {
		end = len(strings.TrimRight(s[:closing], " \t"))
		if end < start {
			end = start
		}
	}
	return start, end
}

func isThematicBreak(s string) bool {
	s, _, ok := smallIndent(s)
	if !ok || s == "" {
		return false
	}
	c := s[0]
	if c != '-' && c != '*' && c != '_' {
		return false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case c:
			n++
		case ' ', '\t', '\r':
		default:
			return false
		}
	}
	return n >= 3
}

// quoteContent returns the offset of a block quote line's content, or -1
// when s is not a quote line.
func quoteContent(s string) int {
	rest, n, ok := smallIndent(s)
	if !ok || rest == "" || rest[0] != '>' {
		return -1
	}
	n++
	if n < len(s) && isSpace(s[n]) {
		n++
	}
	return n
}

type marker struct {
	ok      bool
	ordered bool
	number  int
	task    bool
	checked bool
	content int // offset of the item text within the line
}

// listMarker recognizes bullet (-, *, +), ordered (1. or 1)) and task
// ([ ], [x]) item markers at any indentation.
func listMarker(s string) marker {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	var m marker
	switch {
	case i < len(s) && (s[i] == '-' || s[i] == '*' || s[i] == '+'):
		i++
	case i < len(s) && s[i] >= '0' && s[i] <= '9':
		j := i
		for j < len(s) && j-i < 9 && s[j] >= '0' && s[j] <= '9' {
			m.number = m.number*10 + int(s[j]-'0')
			j++
		}
		if j == len(s) || (s[j] != '.' && s[j] != ')') {
			return marker{}
		}
		m.ordered = true
		i = j + 1
	default:
		return marker{}
	}
	if i < len(s) && !isSpace(s[i]) && s[i] != '\r' {
		return marker{}
	}
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	if len(s)-i >= 3 && s[i] == '[' && s[i+2] == ']' && (i+3 == len(s) || isSpace(s[i+3])) {
		switch s[i+1] {
		case ' ':
			m.task = true
		case 'x', 'X':
			m.task, m.checked = true, true
		}
		if m.task {
			i += 3
			for i < len(s) && isSpace(s[i]) {
				i++
			}
		}
	}
	m.ok = true
	m.content = i
	return m
}

// delimiterRow reports whether s is a table delimiter row such as
// "|---|:--:|" and returns its column count.
func delimiterRow(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "|") {
		return 0, false
	}
	s = strings.TrimPrefix(s, "|")
	s = strings.TrimSuffix(s, "|")
	cols := strings.Split(s, "|")
	for _, c := range cols {
		c = strings.TrimSpace(c)
		c = strings.TrimPrefix(c, ":")
		c = strings.TrimSuffix(c, ":")
		if c == "" || strings.Trim(c, "-") != "" {
			return 0, false
		}
	}
	return len(cols), true
}
