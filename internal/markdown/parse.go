package markdown

import "strings"

// Parse tokenizes text. It never fails: malformed constructs become
// plain text. The top-level tokens exactly cover [0, len(text)).
func Parse(text string) *Tree {
	b := &builder{src: text}
	b.blocks(0, len(text))
	return b.tree(ByteOffset(len(text)))
}

// ParsePrefix tokenizes text up to the first block boundary at or after
// limit and covers the rest with a single pending Text token, to be
// filled in later with ParseFrom and Fill. Short texts, and texts with no
// safe boundary past limit, are parsed in full.
func ParsePrefix(text string, limit ByteOffset) *Tree {
	if ByteOffset(len(text)) <= limit || limit < 0 {
		return Parse(text)
	}
	cut := boundary(text, int(limit))
	if cut >= len(text) {
		return Parse(text)
	}
	b := &builder{src: text}
	if unclosed := b.blocks(0, cut); unclosed {
		return Parse(text)
	}
	b.pending(cut, len(text))
	return b.tree(ByteOffset(len(text)))
}

func (b *builder) pending(start, end int) {
	id := b.push(Token{Kind: Text, Pending: true, Range: span(start, end)}, NoToken)
	b.done(id)
}

func (b *builder) tree(length ByteOffset) *Tree {
	var p packer
	p.builder(b, 0)
	t := &Tree{chunks: p.chunks, starts: p.starts, length: length, degraded: b.degraded}
	t.index()
	return t
}

// packer cuts a run of top-level subtrees into chunks.
type packer struct {
	chunks []*chunk
	starts []ByteOffset
}

// add appends one top-level subtree. nodes holds it in pre-order with
// parents counted from off; origin is the document offset its ranges are
// relative to.
func (p *packer) add(nodes []Token, off int32, origin ByteOffset) {
	start := nodes[0].Range.Start + origin
	n := len(p.chunks)
	if n == 0 || len(p.chunks[n-1].nodes)+len(nodes) > chunkTokens && len(p.chunks[n-1].nodes) > 0 {
		p.chunks = append(p.chunks, &chunk{nodes: make([]Token, 0, max(len(nodes), chunkTokens))})
		p.starts = append(p.starts, start)
		n++
	}
	c := p.chunks[n-1]
	shift := origin - p.starts[n-1]
	base := int32(len(c.nodes))
	c.roots = append(c.roots, base)
	for _, tok := range nodes {
		tok.Range = tok.Range.Shift(shift)
		if tok.parent != NoToken {
			tok.parent = tok.parent - TokenID(off) + TokenID(base)
		}
		c.nodes = append(c.nodes, tok)
	}
}

// builder appends every block in b, whose ranges move by shift.
func (p *packer) builder(b *builder, shift ByteOffset) {
	for _, r := range b.roots {
		p.add(b.nodes[r:r+TokenID(b.nodes[r].size)], int32(r), shift)
	}
}

// roots appends the top-level subtrees c.roots[from:to] of a chunk now
// starting at origin.
func (p *packer) roots(c *chunk, from, to int, origin ByteOffset) {
	for _, r := range c.roots[from:to] {
		p.add(c.nodes[r:r+c.nodes[r].size], r, origin)
	}
}

// boundary returns the offset just past the first run of blank lines
// beginning on or after the line holding from, or len(text) if there is
// none. Tokenizing can restart there without looking back.
func boundary(text string, from int) int {
	i := from
	if i > 0 && i < len(text) && text[i-1] != '\n' {
		j := strings.IndexByte(text[i:], '\n')
		if j < 0 {
			return len(text)
		}
		i += j + 1
	}
	blank := false
	for i < len(text) {
		end, next := len(text), len(text)
		if j := strings.IndexByte(text[i:], '\n'); j >= 0 {
			end, next = i+j, i+j+1
		}
		switch {
		case isBlank(text[i:end]):
			blank = true
		case blank:
			return i
		}
		i = next
	}
	return len(text)
}

// splice returns a tree with roots a through b (inclusive) replaced by
// the blocks in sub. Offsets in sub move by shift; tokens after b move by
// delta. Only the chunks holding a and b are rebuilt; later chunks are
// shared with t and moved by adjusting their starts.
func (t *Tree) splice(a, b int, sub *builder, shift, delta, length ByteOffset) *Tree {
	ca, _ := t.root(a)
	cb, _ := t.root(b)
	first, last := t.chunks[ca], t.chunks[cb]

	var p packer
	p.roots(first, 0, a-t.rbases[ca], t.starts[ca])
	p.builder(sub, shift)
	p.roots(last, b-t.rbases[cb]+1, len(last.roots), t.starts[cb]+delta)
	// A short final chunk takes in its successor so repeated edits do not
	// fragment the tree.
	for n := len(p.chunks); n > 0 && cb+1 < len(t.chunks) && len(p.chunks[n-1].nodes) < chunkTokens/4; n = len(p.chunks) {
		cb++
		p.roots(t.chunks[cb], 0, len(t.chunks[cb].roots), t.starts[cb]+delta)
	}

	nt := &Tree{length: length, degraded: t.degraded + sub.degraded}
	for k := a; k <= b; k++ {
		c, i := t.root(k)
		nt.degraded -= int(t.chunks[c].nodes[i].degraded)
	}

	nt.chunks = make([]*chunk, 0, ca+len(p.chunks)+len(t.chunks)-cb-1)
	nt.chunks = append(nt.chunks, t.chunks[:ca]...)
	nt.chunks = append(nt.chunks, p.chunks...)
	nt.chunks = append(nt.chunks, t.chunks[cb+1:]...)

	nt.starts = make([]ByteOffset, 0, cap(nt.chunks))
	nt.starts = append(nt.starts, t.starts[:ca]...)
	nt.starts = append(nt.starts, p.starts...)
	for _, s := range t.starts[cb+1:] {
		nt.starts = append(nt.starts, s+delta)
	}
	nt.index()
	return nt
}
