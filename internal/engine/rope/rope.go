package rope

import "strings"

// Rope is an immutable text sequence. The zero value is an empty rope.
type Rope struct {
	root *Node
}

// New returns an empty rope.
func New() Rope {
	return Rope{root: emptyLeaf()}
}

// FromString builds a balanced rope holding s.
func FromString(s string) Rope {
	chunks := chunkText(s)
	if len(chunks) == 0 {
		return New()
	}
	var leaves []*Node
	for i := 0; i < len(chunks); i += MaxChunksPerLeaf {
		leaves = append(leaves, leafOf(chunks[i:min(i+MaxChunksPerLeaf, len(chunks))]))
	}
	return Rope{root: fromChildren(leaves)}
}

// Len returns the byte length.
func (r Rope) Len() ByteOffset {
	if r.root == nil {
		return 0
	}
	return r.root.Len()
}

// IsEmpty reports whether the rope holds no text.
func (r Rope) IsEmpty() bool { return r.Len() == 0 }

// Summary returns the metrics of the whole rope.
func (r Rope) Summary() TextSummary {
	if r.root == nil {
		return TextSummary{ASCII: true}
	}
	return r.root.summary
}

// LineCount returns the number of lines, which is newlines + 1.
func (r Rope) LineCount() uint32 {
	return r.Summary().Lines + 1
}

// CharCount returns the number of characters.
func (r Rope) CharCount() int64 {
	return r.Summary().Chars
}

// String materializes the full text.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(int(r.Len()))
	r.root.writeTo(&sb)
	return sb.String()
}

// Slice returns the text in [start, end), clamped to the rope.
func (r Rope) Slice(start, end ByteOffset) string {
	start = max(start, 0)
	end = min(end, r.Len())
	if r.root == nil || start >= end {
		return ""
	}
	var sb strings.Builder
	sb.Grow(int(end - start))
	r.root.writeRange(&sb, start, end)
	return sb.String()
}

// ByteAt returns the byte at offset, or false when out of range.
func (r Rope) ByteAt(offset ByteOffset) (byte, bool) {
	if offset < 0 || offset >= r.Len() {
		return 0, false
	}
	chunk, before := r.locate(byBytes, offset+1)
	return chunk[offset-before.Bytes], true
}

// Insert returns a rope with text inserted at offset.
// The offset must be a character boundary.
func (r Rope) Insert(offset ByteOffset, text string) Rope {
	if text == "" {
		return r
	}
	left, right := r.Split(offset)
	return left.Concat(FromString(text)).Concat(right)
}

// Delete returns a rope without the bytes in [start, end).
func (r Rope) Delete(start, end ByteOffset) Rope {
	start = max(start, 0)
	end = min(end, r.Len())
	if start >= end {
		return r
	}
	left, rest := r.Split(start)
	_, right := rest.Split(end - start)
	return left.Concat(right)
}

// Replace swaps [start, end) for text.
func (r Rope) Replace(start, end ByteOffset, text string) Rope {
	return r.Delete(start, end).Insert(start, text)
}

// Split divides the rope into [0, offset) and [offset, len).
func (r Rope) Split(offset ByteOffset) (Rope, Rope) {
	if r.root == nil || offset <= 0 {
		return New(), r
	}
	if offset >= r.Len() {
		return r, New()
	}
	left, right := r.root.split(offset)
	return Rope{root: left}, Rope{root: right}
}

// Concat appends other to r.
func (r Rope) Concat(other Rope) Rope {
	if r.Len() == 0 {
		return other
	}
	if other.Len() == 0 {
		return r
	}
	return Rope{root: concat(r.root, other.root)}
}

// Height returns the tree height, counting the leaf level.
func (r Rope) Height() int {
	if r.root == nil {
		return 0
	}
	return int(r.root.height) + 1
}
