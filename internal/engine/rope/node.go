package rope

import "strings"

// Tree shape bounds.
const (
	MaxChildren      = 8
	MaxChunksPerLeaf = 4
)

// Node is a rope tree node. Leaves (height 0) own chunks; internal nodes
// own children and a copy of each child's summary for seeking.
type Node struct {
	height   uint8
	summary  TextSummary
	children []*Node
	sums     []TextSummary
	chunks   []Chunk
}

func emptyLeaf() *Node {
	return &Node{summary: TextSummary{ASCII: true}}
}

func leafOf(chunks []Chunk) *Node {
	n := &Node{chunks: chunks, summary: TextSummary{ASCII: true}}
	for _, c := range chunks {
		n.summary = n.summary.Add(c.summary)
	}
	return n
}

func parentOf(children []*Node) *Node {
	if len(children) == 0 {
		return emptyLeaf()
	}
	n := &Node{
		children: children,
		sums:     make([]TextSummary, len(children)),
		summary:  TextSummary{ASCII: true},
	}
	for i, c := range children {
		if c.height >= n.height {
			n.height = c.height + 1
		}
		n.sums[i] = c.summary
		n.summary = n.summary.Add(c.summary)
	}
	return n
}

// IsLeaf reports whether n stores chunks.
func (n *Node) IsLeaf() bool { return n.height == 0 && n.children == nil }

// Len returns the byte length of the subtree.
func (n *Node) Len() ByteOffset { return n.summary.Bytes }

func (n *Node) writeTo(sb *strings.Builder) {
	if n.IsLeaf() {
		for _, c := range n.chunks {
			sb.WriteString(c.text)
		}
		return
	}
	for _, c := range n.children {
		c.writeTo(sb)
	}
}

// writeRange appends the bytes of [start, end) relative to n.
func (n *Node) writeRange(sb *strings.Builder, start, end ByteOffset) {
	var pos ByteOffset
	if n.IsLeaf() {
		for _, c := range n.chunks {
			cEnd := pos + ByteOffset(len(c.text))
			if cEnd > start && pos < end {
				lo := max(start-pos, 0)
				hi := min(end-pos, ByteOffset(len(c.text)))
				sb.WriteString(c.text[lo:hi])
			}
			if cEnd >= end {
				return
			}
			pos = cEnd
		}
		return
	}
	for i, c := range n.children {
		cEnd := pos + n.sums[i].Bytes
		if cEnd > start && pos < end {
			c.writeRange(sb, max(start-pos, 0), min(end-pos, n.sums[i].Bytes))
		}
		if cEnd >= end {
			return
		}
		pos = cEnd
	}
}

// split cuts the subtree at a byte offset.
func (n *Node) split(at ByteOffset) (*Node, *Node) {
	if at <= 0 {
		return emptyLeaf(), n
	}
	if at >= n.Len() {
		return n, emptyLeaf()
	}
	var pos ByteOffset
	if n.IsLeaf() {
		var left, right []Chunk
		for _, c := range n.chunks {
			cEnd := pos + ByteOffset(len(c.text))
			switch {
			case cEnd <= at:
				left = append(left, c)
			case pos >= at:
				right = append(right, c)
			default:
				l, r := c.Split(int(at - pos))
				left = append(left, l)
				right = append(right, r)
			}
			pos = cEnd
		}
		return leafOf(left), leafOf(right)
	}
	var left, right []*Node
	for i, c := range n.children {
		cEnd := pos + n.sums[i].Bytes
		switch {
		case cEnd <= at:
			left = append(left, c)
		case pos >= at:
			right = append(right, c)
		default:
			l, r := c.split(at - pos)
			if l.Len() > 0 {
				left = append(left, l)
			}
			if r.Len() > 0 {
				right = append(right, r)
			}
		}
		pos = cEnd
	}
	return fromChildren(left), fromChildren(right)
}

// fromChildren groups nodes under as many parent levels as needed.
func fromChildren(nodes []*Node) *Node {
	switch len(nodes) {
	case 0:
		return emptyLeaf()
	case 1:
		return nodes[0]
	}
	for len(nodes) > MaxChildren {
		var parents []*Node
		for i := 0; i < len(nodes); i += MaxChildren {
			parents = append(parents, parentOf(nodes[i:min(i+MaxChildren, len(nodes))]))
		}
		nodes = parents
	}
	return parentOf(nodes)
}

// concat joins two subtrees, descending the taller one's edge so the
// shorter one lands at its own level.
func concat(left, right *Node) *Node {
	if left.Len() == 0 {
		return right
	}
	if right.Len() == 0 {
		return left
	}
	switch {
	case left.IsLeaf() && right.IsLeaf():
		return joinLeaves(left, right)
	case left.height > right.height:
		last := len(left.children) - 1
		joined := concat(left.children[last], right)
		kids := append([]*Node{}, left.children[:last]...)
		return regroup(append(kids, adopt(joined, left.height)...))
	case right.height > left.height:
		joined := concat(left, right.children[0])
		kids := adopt(joined, right.height)
		return regroup(append(kids, right.children[1:]...))
	}
	kids := make([]*Node, 0, len(left.children)+len(right.children))
	kids = append(kids, left.children...)
	return regroup(append(kids, right.children...))
}

// adopt returns the nodes that replace one child of a node at height h:
// the node itself, or its children when it grew to h.
func adopt(n *Node, h uint8) []*Node {
	if n.height >= h && !n.IsLeaf() {
		return n.children
	}
	return []*Node{n}
}

// regroup builds a parent for kids, splitting into two when they overflow.
func regroup(kids []*Node) *Node {
	if len(kids) <= MaxChildren {
		return parentOf(kids)
	}
	half := len(kids) / 2
	return parentOf([]*Node{parentOf(kids[:half]), parentOf(kids[half:])})
}

// joinLeaves merges two leaves, coalescing the boundary chunks when small.
func joinLeaves(left, right *Node) *Node {
	chunks := make([]Chunk, 0, len(left.chunks)+len(right.chunks))
	chunks = append(chunks, left.chunks...)
	rest := right.chunks
	if k := len(chunks); k > 0 && len(rest) > 0 && chunks[k-1].Len()+rest[0].Len() <= MaxChunkSize {
		chunks[k-1] = NewChunk(chunks[k-1].text + rest[0].text)
		rest = rest[1:]
	}
	chunks = append(chunks, rest...)
	if len(chunks) <= MaxChunksPerLeaf {
		return leafOf(chunks)
	}
	var leaves []*Node
	for i := 0; i < len(chunks); i += MaxChunksPerLeaf {
		leaves = append(leaves, leafOf(chunks[i:min(i+MaxChunksPerLeaf, len(chunks))]))
	}
	return fromChildren(leaves)
}
