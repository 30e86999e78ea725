package rope

import "strings"

// locate descends to the first chunk at which the running measure m
// reaches target, returning that chunk's text and the summary of all
// text before it. target must be positive. When the rope is shorter than
// target the returned chunk is empty and before is the full summary.
func (r Rope) locate(m metric, target int64) (chunk string, before TextSummary) {
	node := r.root
	for node != nil {
		if node.IsLeaf() {
			for _, c := range node.chunks {
				if before.measure(m)+c.summary.measure(m) >= target {
					return c.text, before
				}
				before = before.Add(c.summary)
			}
			return "", before
		}
		var next *Node
		for i, s := range node.sums {
			if before.measure(m)+s.measure(m) >= target {
				next = node.children[i]
				break
			}
			before = before.Add(s)
		}
		node = next
	}
	return "", before
}

// CharsBefore returns the number of characters in [0, offset).
func (r Rope) CharsBefore(offset ByteOffset) int64 {
	if offset <= 0 {
		return 0
	}
	if offset >= r.Len() {
		return r.CharCount()
	}
	chunk, before := r.locate(byBytes, offset)
	n := before.Chars
	for _, b := range []byte(chunk[:offset-before.Bytes]) {
		if isCharStart(b) {
			n++
		}
	}
	return n
}

// CharsIn returns the number of characters in [start, end).
func (r Rope) CharsIn(start, end ByteOffset) int64 {
	if end <= start {
		return 0
	}
	return r.CharsBefore(end) - r.CharsBefore(start)
}

// OffsetAtChar returns the byte offset of the boundary before character
// index k. Indices past the end clamp to Len.
func (r Rope) OffsetAtChar(k int64) ByteOffset {
	if k <= 0 {
		return 0
	}
	if k >= r.CharCount() {
		return r.Len()
	}
	chunk, before := r.locate(byChars, k)
	need := k - before.Chars
	var seen int64
	for i := 0; i < len(chunk); i++ {
		if !isCharStart(chunk[i]) {
			continue
		}
		if seen == need {
			return before.Bytes + ByteOffset(i)
		}
		seen++
	}
	return before.Bytes + ByteOffset(len(chunk))
}

// LineOf returns the 0-indexed line containing offset.
func (r Rope) LineOf(offset ByteOffset) uint32 {
	if offset <= 0 {
		return 0
	}
	if offset >= r.Len() {
		return r.Summary().Lines
	}
	chunk, before := r.locate(byBytes, offset)
	return before.Lines + uint32(strings.Count(chunk[:offset-before.Bytes], "\n"))
}

// LineStartOffset returns the offset of the first byte of line.
// Lines past the end return Len.
func (r Rope) LineStartOffset(line uint32) ByteOffset {
	if line == 0 {
		return 0
	}
	if line > r.Summary().Lines {
		return r.Len()
	}
	chunk, before := r.locate(byLines, int64(line))
	need := line - before.Lines
	for i := 0; i < len(chunk); i++ {
		if chunk[i] != '\n' {
			continue
		}
		need--
		if need == 0 {
			return before.Bytes + ByteOffset(i) + 1
		}
	}
	return r.Len()
}

// LineEndOffset returns the offset of the newline ending line, or Len
// for the last line.
func (r Rope) LineEndOffset(line uint32) ByteOffset {
	if line >= r.Summary().Lines {
		return r.Len()
	}
	return r.LineStartOffset(line+1) - 1
}

// LineText returns line without its newline.
func (r Rope) LineText(line uint32) string {
	return r.Slice(r.LineStartOffset(line), r.LineEndOffset(line))
}

// LineChars returns the character length of line, excluding the newline.
func (r Rope) LineChars(line uint32) int64 {
	return r.CharsIn(r.LineStartOffset(line), r.LineEndOffset(line))
}

// OffsetToPoint converts a byte offset to a line and character column.
// Offsets are clamped to [0, Len].
func (r Rope) OffsetToPoint(offset ByteOffset) Point {
	offset = min(max(offset, 0), r.Len())
	line := r.LineOf(offset)
	col := r.CharsIn(r.LineStartOffset(line), offset)
	return Point{Line: line, Column: uint32(col)}
}

// PointToOffset converts a point to a byte offset. Columns past the end
// of the line clamp to the line end; lines past the last line clamp to Len.
func (r Rope) PointToOffset(p Point) ByteOffset {
	if p.Line > r.Summary().Lines {
		return r.Len()
	}
	start := r.LineStartOffset(p.Line)
	end := r.LineEndOffset(p.Line)
	first := r.CharsBefore(start)
	if int64(p.Column) >= r.CharsBefore(end)-first {
		return end
	}
	return r.OffsetAtChar(first + int64(p.Column))
}

// IsCharBoundary reports whether offset lies between two characters
// (or at either end of the text).
func (r Rope) IsCharBoundary(offset ByteOffset) bool {
	if offset == 0 || offset == r.Len() {
		return true
	}
	b, ok := r.ByteAt(offset)
	return ok && isCharStart(b)
}

// PrevCharBoundary returns the nearest boundary strictly before offset,
// or 0.
func (r Rope) PrevCharBoundary(offset ByteOffset) ByteOffset {
	offset = min(offset, r.Len())
	for offset > 0 {
		offset--
		if r.IsCharBoundary(offset) {
			return offset
		}
	}
	return 0
}

// NextCharBoundary returns the nearest boundary strictly after offset,
// or Len.
func (r Rope) NextCharBoundary(offset ByteOffset) ByteOffset {
	end := r.Len()
	offset = max(offset, 0)
	for offset < end {
		offset++
		if r.IsCharBoundary(offset) {
			return offset
		}
	}
	return end
}
