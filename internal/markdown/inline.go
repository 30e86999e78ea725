package markdown

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// item is an inline element under construction. Delimiter runs (*, _, ~)
// stay as items with delim set until emphasis is resolved; any left over
// become text.
type item struct {
	kind     Kind
	start    int
	end      int
	url      string
	alt      string
	children []*item

	delim    byte
	origLen  int
	canOpen  bool
	canClose bool

	// While resolving: neighbours in the item sequence and in the list of
	// delimiter runs still eligible to pair, and the item's scan position.
	prev, next   *item
	dprev, dnext *item
	seq          int
}

// inline tokenizes [start, end) and appends the result under parent.
func (b *builder) inline(start, end int, parent TokenID) {
	b.emit(b.scan(start, end, false), parent)
}

// scan splits [start, end) into inline items. noLinks disables link
// recognition inside link labels.
func (b *builder) scan(start, end int, noLinks bool) []*item {
	var items []*item
	var br *brackets
	src := b.src
	text := start
	flush := func(at int) {
		if at > text {
			items = append(items, &item{kind: Text, start: text, end: at})
		}
	}
	add := func(it *item) {
		flush(it.start)
		items = append(items, it)
		text = it.end
	}

	for i := start; i < end; {
		switch c := src[i]; c {
		case '\\':
			i += 2
		case '`':
			n := runLength(src[i:end], '`')
			if j := findRun(src, i+n, end, '`', n); j >= 0 {
				add(&item{kind: CodeSpan, start: i, end: j + n})
				i = j + n
				continue
			}
			b.degraded++
			i += n
		case '*', '_', '~':
			n := runLength(src[i:end], c)
			if c == '~' && n > 2 {
				i += n
				continue
			}
			open, close := delimFlags(src, start, end, i, i+n, c)
			if open || close {
				add(&item{delim: c, start: i, end: i + n, origLen: n, canOpen: open, canClose: close})
			}
			i += n
		case '!':
			if !noLinks && i+1 < end && src[i+1] == '[' {
				if br == nil {
					br = pairBrackets(src, start, end)
				}
				if it := b.link(i+1, end, true, br); it != nil {
					it.start = i
					add(it)
					i = it.end
					continue
				}
			}
			i++
		case '[':
			if !noLinks {
				if br == nil {
					br = pairBrackets(src, start, end)
				}
				if it := b.link(i, end, false, br); it != nil {
					add(it)
					i = it.end
					continue
				}
			}
			i++
		case '<':
			if it := b.angle(i, end); it != nil {
				add(it)
				i = it.end
				continue
			}
			i++
		default:
			i++
		}
	}
	if text < end {
		flush(end)
	}
	return b.resolve(items)
}

// link parses [label](dest) or, for images, the part after '!'. It
// returns nil when the brackets do not form a link.
func (b *builder) link(open, end int, image bool, br *brackets) *item {
	src := b.src
	closeLabel := br.partner(open)
	if closeLabel < 0 || closeLabel+1 >= end || src[closeLabel+1] != '(' {
		return nil
	}
	closeDest := br.partner(closeLabel + 1)
	if closeDest < 0 {
		return nil
	}

	it := &item{kind: Link, start: open, end: closeDest + 1, url: destination(src[closeLabel+2 : closeDest])}
	if image {
		it.kind = Image
		it.alt = src[open+1 : closeLabel]
		return it
	}
	if open+1 < closeLabel {
		it.children = b.scan(open+1, closeLabel, true)
	}
	return it
}

// brackets pairs every [ with its ] and every ( with its ) in one span,
// skipping backslash escapes. Each link attempt then finds its closing
// bracket without rescanning the rest of the span.
type brackets struct {
	lo    int
	match []int32
}

func pairBrackets(src string, lo, hi int) *brackets {
	br := &brackets{lo: lo, match: make([]int32, hi-lo)}
	for i := range br.match {
		br.match[i] = -1
	}
	var square, round []int
	for i := lo; i < hi; i++ {
		switch src[i] {
		case '\\':
			i++
		case '[':
			square = append(square, i)
		case '(':
			round = append(round, i)
		case ']':
			if n := len(square); n > 0 {
				br.pair(square[n-1], i)
				square = square[:n-1]
			}
		case ')':
			if n := len(round); n > 0 {
				br.pair(round[n-1], i)
				round = round[:n-1]
			}
		}
	}
	return br
}

func (br *brackets) pair(a, b int) {
	br.match[a-br.lo] = int32(b)
	br.match[b-br.lo] = int32(a)
}

// partner returns the offset of the bracket closing the one at i, or -1.
func (br *brackets) partner(i int) int { return int(br.match[i-br.lo]) }

func destination(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<") {
		if i := strings.IndexByte(s, '>'); i > 0 {
			return s[1:i]
		}
	}
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

// angle recognizes autolinks (<https://...>) and inline HTML tags and
// comments starting at i.
func (b *builder) angle(i, end int) *item {
	s := b.src[i:end]
	if strings.HasPrefix(s, "<!--") {
		if j := strings.Index(s[4:], "-->"); j >= 0 {
			return &item{kind: HtmlInline, start: i, end: i + 4 + j + 3}
		}
		b.degraded++
		return nil
	}
	gt := strings.IndexByte(s, '>')
	if gt < 2 || strings.IndexByte(s[1:gt], '<') >= 0 {
		return nil
	}
	body := s[1:gt]
	if isAutolink(body) {
		return &item{kind: Link, start: i, end: i + gt + 1, url: body}
	}
	tag := strings.TrimPrefix(body, "/")
	if tag != "" && isASCIILetter(tag[0]) {
		return &item{kind: HtmlInline, start: i, end: i + gt + 1}
	}
	return nil
}

func isAutolink(s string) bool {
	colon := strings.IndexByte(s, ':')
	if colon < 2 || colon > 32 || !isASCIILetter(s[0]) {
		return false
	}
	for i := 1; i < colon; i++ {
		c := s[i]
		if !isASCIILetter(c) && !(c >= '0' && c <= '9') && c != '+' && c != '.' && c != '-' {
			return false
		}
	}
	return !strings.ContainsAny(s, " \t\n")
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// findRun returns the start of the first run of exactly n c bytes in
// src[from:end], or -1.
func findRun(src string, from, end int, c byte, n int) int {
	for i := from; i < end; {
		if src[i] != c {
			i++
			continue
		}
		m := runLength(src[i:end], c)
		if m == n {
			return i
		}
		i += m
	}
	return -1
}

// delimFlags applies the flanking rules to the delimiter run [i, j).
// The edges of the inline span count as whitespace.
func delimFlags(src string, lo, hi, i, j int, c byte) (open, close bool) {
	prev, next := ' ', ' '
	if i > lo {
		prev, _ = utf8.DecodeLastRuneInString(src[lo:i])
	}
	if j < hi {
		next, _ = utf8.DecodeRuneInString(src[j:hi])
	}
	left := !unicode.IsSpace(next) && (!isPunct(next) || unicode.IsSpace(prev) || isPunct(prev))
	right := !unicode.IsSpace(prev) && (!isPunct(prev) || unicode.IsSpace(next) || isPunct(next))
	if c == '_' {
		return left && (!right || isPunct(prev)), right && (!left || isPunct(next))
	}
	return left, right
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func (it *item) runLen() int { return it.end - it.start }

type bottomKey struct {
	delim byte
	open  bool
	mod   int
}

// resolve pairs delimiter runs into Strong, Emphasis and Strikethrough
// items, innermost first. Unpaired runs become text.
//
// Items form a linked sequence and the runs still able to pair a second,
// shorter list, so a match splices both in place. floor records, per kind
// of closer, the position at or below which no opener can pair with it.
func (b *builder) resolve(items []*item) []*item {
	if len(items) == 0 {
		return items
	}
	head := &item{}
	prev, dprev := head, (*item)(nil)
	var first *item
	for k, it := range items {
		it.seq = k
		it.prev, prev.next = prev, it
		prev = it
		if it.delim != 0 {
			it.dprev = dprev
			if dprev != nil {
				dprev.dnext = it
			} else {
				first = it
			}
			dprev = it
		}
	}

	floor := map[bottomKey]int{}
	for c := first; c != nil; {
		if !c.canClose {
			c = c.dnext
			continue
		}
		key := bottomKey{c.delim, c.canOpen, c.origLen % 3}
		low, ok := floor[key]
		if !ok {
			low = -1
		}
		var op *item
		for d := c.dprev; d != nil && d.seq > low; d = d.dprev {
			if d.delim != c.delim || !d.canOpen {
				continue
			}
			if c.delim == '~' && d.origLen != c.origLen {
				continue
			}
			if (d.canClose || c.canOpen) && (d.origLen+c.origLen)%3 == 0 && (d.origLen%3 != 0 || c.origLen%3 != 0) {
				continue
			}
			op = d
			break
		}
		if op == nil {
			floor[key] = c.seq - 1
			next := c.dnext
			if !c.canOpen {
				unpair(c)
			}
			c = next
			continue
		}

		use, kind := 1, Emphasis
		switch {
		case c.delim == '~':
			use, kind = min(c.runLen(), op.runLen()), Strikethrough
		case op.runLen() >= 2 && c.runLen() >= 2:
			use, kind = 2, Strong
		}
		node := &item{kind: kind, start: op.end - use, end: c.start + use}
		for it := op.next; it != c; it = it.next {
			node.children = append(node.children, it)
		}
		b.textify(node.children)
		op.next, node.prev = node, op
		node.next, c.prev = c, node
		op.dnext, c.dprev = c, op
		op.end -= use
		c.start += use

		if op.runLen() == 0 {
			unlink(op)
			unpair(op)
		}
		if c.runLen() == 0 {
			next := c.dnext
			unlink(c)
			unpair(c)
			c = next
		}
	}

	out := make([]*item, 0, len(items))
	for it := head.next; it != nil; it = it.next {
		out = append(out, it)
	}
	return b.textify(out)
}

// unlink removes it from the item sequence.
func unlink(it *item) {
	it.prev.next = it.next
	if it.next != nil {
		it.next.prev = it.prev
	}
}

// unpair removes it from the list of runs that can still pair.
func unpair(it *item) {
	if it.dprev != nil {
		it.dprev.dnext = it.dnext
	}
	if it.dnext != nil {
		it.dnext.dprev = it.dprev
	}
	it.dprev, it.dnext = nil, nil
}

// textify turns leftover delimiter runs into text, counting each as a
// degraded construct.
func (b *builder) textify(items []*item) []*item {
	for _, it := range items {
		if it.delim != 0 {
			it.delim = 0
			it.kind = Text
			b.degraded++
		}
	}
	return items
}

// emit appends items under parent, merging adjacent text.
func (b *builder) emit(items []*item, parent TokenID) {
	for k := 0; k < len(items); k++ {
		it := items[k]
		if it.kind == Text {
			end := it.end
			for k+1 < len(items) && items[k+1].kind == Text && items[k+1].start == end {
				k++
				end = items[k].end
			}
			if end > it.start {
				b.push(Token{Kind: Text, Range: span(it.start, end)}, parent)
			}
			continue
		}
		id := b.push(Token{Kind: it.kind, Range: span(it.start, it.end), URL: it.url, Alt: it.alt}, parent)
		b.emit(it.children, id)
		b.done(id)
	}
}
