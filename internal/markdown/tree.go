package markdown

import (
	"sort"

	"github.com/dshills/hybridmd/internal/engine/buffer"
)

// ByteOffset is an alias for buffer.ByteOffset.
type ByteOffset = buffer.ByteOffset

// Range is an alias for buffer.Range.
type Range = buffer.Range

// TokenID addresses a token within one Tree. IDs are not stable across
// reparses.
type TokenID int32

// NoToken is returned by lookups that find nothing.
const NoToken TokenID = -1

// Token is one syntax node. Only the fields relevant to its Kind are set.
type Token struct {
	Kind  Kind
	Range Range

	Level   int    // Heading: 1-6
	Info    string // CodeBlock: fence info string
	Fenced  bool   // CodeBlock: ``` or ~~~ rather than indented
	URL     string // Link, Image
	Alt     string // Image
	Ordered bool   // ListItem, TaskItem
	Number  int    // ordered ListItem
	Checked bool   // TaskItem
	Blank   bool   // Text: a run of blank lines between blocks
	Pending bool   // Text: placeholder for not yet tokenized content

	parent   TokenID
	size     int32 // nodes in this subtree, self included
	degraded int32 // top-level only: degraded constructs inside
}

// chunkTokens is the token count past which a chunk stops taking more
// top-level subtrees.
const chunkTokens = 512

// chunk holds the tokens of consecutive top-level subtrees in pre-order.
// Ranges are relative to the chunk's start offset and parents are
// indices into nodes. Chunks are shared between trees and never change
// once built.
type chunk struct {
	nodes []Token
	roots []int32
}

// Tree is an immutable token tree over one revision of a document.
// Tokens are stored in pre-order, so a token's descendants immediately
// follow it. Storage is split into chunks positioned by offset, so a
// reparse rebuilds only the chunks it touches and moves the rest by
// adjusting their starts.
type Tree struct {
	chunks []*chunk
	starts []ByteOffset // document offset of each chunk
	bases  []TokenID    // ID of each chunk's first token
	rbases []int        // index of each chunk's first top-level token

	ntokens  int
	nroots   int
	length   ByteOffset
	degraded int
}

// index fills in the ID and root prefix counts from chunks.
func (t *Tree) index() {
	t.bases = make([]TokenID, len(t.chunks))
	t.rbases = make([]int, len(t.chunks))
	t.ntokens, t.nroots = 0, 0
	for i, c := range t.chunks {
		t.bases[i] = TokenID(t.ntokens)
		t.rbases[i] = t.nroots
		t.ntokens += len(c.nodes)
		t.nroots += len(c.roots)
	}
}

// locate returns the chunk holding id and id's index within it.
func (t *Tree) locate(id TokenID) (int, int32) {
	c := sort.Search(len(t.bases), func(i int) bool { return t.bases[i] > id }) - 1
	return c, int32(id - t.bases[c])
}

// resolve converts a chunk-local token to document coordinates.
func (t *Tree) resolve(c int, i int32) Token {
	tok := t.chunks[c].nodes[i]
	tok.Range = tok.Range.Shift(t.starts[c])
	if tok.parent != NoToken {
		tok.parent += t.bases[c]
	}
	return tok
}

// root returns the chunk and chunk-local index of the k-th top-level
// token.
func (t *Tree) root(k int) (int, int32) {
	c := sort.Search(len(t.rbases), func(i int) bool { return t.rbases[i] > k }) - 1
	return c, t.chunks[c].roots[k-t.rbases[c]]
}

func (t *Tree) rootToken(k int) Token { return t.resolve(t.root(k)) }

// Len returns the byte length of the document the tree describes.
func (t *Tree) Len() ByteOffset { return t.length }

// NumTokens returns the number of tokens in the tree.
func (t *Tree) NumTokens() int { return t.ntokens }

// Token returns the token with the given ID.
func (t *Tree) Token(id TokenID) Token { return t.resolve(t.locate(id)) }

// Roots returns the top-level tokens in document order.
func (t *Tree) Roots() []TokenID {
	out := make([]TokenID, 0, t.nroots)
	for i, c := range t.chunks {
		for _, r := range c.roots {
			out = append(out, t.bases[i]+TokenID(r))
		}
	}
	return out
}

// Parent returns the enclosing token, or NoToken for a top-level token.
func (t *Tree) Parent(id TokenID) TokenID {
	c, i := t.locate(id)
	p := t.chunks[c].nodes[i].parent
	if p == NoToken {
		return NoToken
	}
	return p + t.bases[c]
}

// Children returns the direct children of id in order.
func (t *Tree) Children(id TokenID) []TokenID {
	c, i := t.locate(id)
	nodes := t.chunks[c].nodes
	var out []TokenID
	end := i + nodes[i].size
	for k := i + 1; k < end; k += nodes[k].size {
		out = append(out, t.bases[c]+TokenID(k))
	}
	return out
}

// Descendants returns the half-open ID range [id+1, end) holding every
// token nested under id.
func (t *Tree) Descendants(id TokenID) (TokenID, TokenID) {
	c, i := t.locate(id)
	return id + 1, id + TokenID(t.chunks[c].nodes[i].size)
}

// Degraded returns how many malformed constructs were represented as
// plain text.
func (t *Tree) Degraded() int { return t.degraded }

// Pending returns the range still awaiting tokenization, if any.
func (t *Tree) Pending() (Range, bool) {
	if t.nroots == 0 {
		return Range{}, false
	}
	last := t.rootToken(t.nroots - 1)
	if !last.Pending {
		return Range{}, false
	}
	return last.Range, true
}

// Walk visits every token in pre-order. Returning false from fn skips
// the token's descendants.
func (t *Tree) Walk(fn func(id TokenID, tok Token) bool) {
	for c, ch := range t.chunks {
		for i := int32(0); i < int32(len(ch.nodes)); {
			if fn(t.bases[c]+TokenID(i), t.resolve(c, i)) {
				i++
			} else {
				i += ch.nodes[i].size
			}
		}
	}
}

// chunkAt returns the chunk whose text holds offset.
func (t *Tree) chunkAt(offset ByteOffset) int {
	return max(sort.Search(len(t.starts), func(i int) bool { return t.starts[i] > offset })-1, 0)
}

// rootAt returns the index of the top-level token containing offset.
// The document end belongs to the last token.
func (t *Tree) rootAt(offset ByteOffset) int {
	if t.nroots == 0 || offset < 0 || offset > t.length {
		return -1
	}
	if offset == t.length {
		return t.nroots - 1
	}
	c := t.chunkAt(offset)
	ch := t.chunks[c]
	rel := offset - t.starts[c]
	i := sort.Search(len(ch.roots), func(i int) bool {
		return ch.nodes[ch.roots[i]].Range.End > rel
	})
	if i == len(ch.roots) {
		return -1
	}
	return t.rbases[c] + i
}

// Lookup returns the innermost token containing offset. Ranges are
// end-exclusive, so an offset on a boundary belongs to the token that
// starts there; the document end belongs to the last token.
func (t *Tree) Lookup(offset ByteOffset) TokenID {
	path := t.Path(offset)
	if len(path) == 0 {
		return NoToken
	}
	return path[len(path)-1]
}

// Path returns the chain of tokens containing offset, outermost first.
func (t *Tree) Path(offset ByteOffset) []TokenID {
	k := t.rootAt(offset)
	if k < 0 {
		return nil
	}
	atEnd := offset == t.length
	c, i := t.root(k)
	nodes := t.chunks[c].nodes
	rel := offset - t.starts[c]
	path := []TokenID{t.bases[c] + TokenID(i)}
	for {
		next := int32(-1)
		end := i + nodes[i].size
		for k := i + 1; k < end; k += nodes[k].size {
			r := nodes[k].Range
			if r.Contains(rel) || (atEnd && r.End == rel) {
				next = k
				break
			}
			if r.Start > rel {
				break
			}
		}
		if next < 0 {
			return path
		}
		i = next
		path = append(path, t.bases[c]+TokenID(i))
	}
}

// Overlapping returns every token whose range shares at least one byte
// with r, in pre-order. An empty r selects the tokens containing
// r.Start, as Path does.
func (t *Tree) Overlapping(r Range) []TokenID {
	if r.IsEmpty() {
		return t.Path(r.Start)
	}
	var out []TokenID
	if t.nroots == 0 || r.Start >= t.length {
		return out
	}
	for c := t.chunkAt(max(r.Start, 0)); c < len(t.chunks); c++ {
		if t.starts[c] >= r.End {
			break
		}
		ch := t.chunks[c]
		rel := r.Shift(-t.starts[c])
		i := sort.Search(len(ch.roots), func(i int) bool {
			return ch.nodes[ch.roots[i]].Range.End > rel.Start
		})
		for ; i < len(ch.roots); i++ {
			id := ch.roots[i]
			if ch.nodes[id].Range.Start >= rel.End {
				break
			}
			out = t.collect(out, c, id, rel)
		}
	}
	return out
}

func (t *Tree) collect(out []TokenID, c int, i int32, r Range) []TokenID {
	nodes := t.chunks[c].nodes
	out = append(out, t.bases[c]+TokenID(i))
	end := i + nodes[i].size
	for k := i + 1; k < end; k += nodes[k].size {
		cr := nodes[k].Range
		if cr.Start >= r.End {
			break
		}
		if cr.Overlaps(r) {
			out = t.collect(out, c, k, r)
		}
	}
	return out
}

// Nearest returns the closest ancestor of id (id included) for which
// pred holds, or NoToken.
func (t *Tree) Nearest(id TokenID, pred func(Token) bool) TokenID {
	if id == NoToken {
		return NoToken
	}
	c, i := t.locate(id)
	nodes := t.chunks[c].nodes
	for ; i >= 0; i = int32(nodes[i].parent) {
		if pred(t.resolve(c, i)) {
			return t.bases[c] + TokenID(i)
		}
	}
	return NoToken
}
