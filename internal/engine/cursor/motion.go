package cursor

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dshills/hybridmd/internal/engine/buffer"
)

// Unit is the granularity of a cursor motion.
type Unit uint8

const (
	Character    Unit = iota // one grapheme cluster
	Word                     // to the next word end / previous word start
	Line                     // one line up or down, keeping the column
	LineBoundary             // start or end of the current line
	Document                 // start or end of the document
)

var unitNames = [...]string{"character", "word", "line", "line-boundary", "document"}

func (u Unit) String() string {
	if int(u) < len(unitNames) {
		return unitNames[u]
	}
	return fmt.Sprintf("unit(%d)", u)
}

// ParseUnit resolves a unit by name.
func ParseUnit(s string) (Unit, error) {
	for i, name := range unitNames {
		if strings.EqualFold(s, name) {
			return Unit(i), nil
		}
	}
	return 0, fmt.Errorf("unknown motion unit %q", s)
}

// Direction of a motion.
type Direction uint8

const (
	Backward Direction = iota
	Forward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// ParseDirection resolves "backward"/"forward" (or "left"/"up",
// "right"/"down").
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "backward", "left", "up", "prev":
		return Backward, nil
	case "forward", "right", "down", "next":
		return Forward, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Source is the read side of a document needed to resolve motions.
// *buffer.Buffer implements it.
type Source interface {
	Len() ByteOffset
	Slice(start, end ByteOffset) string
	LineCount() uint32
	LineStartOffset(line uint32) ByteOffset
	LineEndOffset(line uint32) ByteOffset
	OffsetToPoint(offset ByteOffset) buffer.Point
	PointToOffset(p buffer.Point) ByteOffset
}

// Move resolves a motion from offset. The result is always a character
// boundary in [0, Len]; motions past either end of the document clamp.
func Move(src Source, from ByteOffset, unit Unit, dir Direction) ByteOffset {
	from = min(max(from, 0), src.Len())
	switch unit {
	case Character:
		return moveGrapheme(src, from, dir)
	case Word:
		return moveWord(src, from, dir)
	case Line:
		return moveLine(src, from, dir)
	case LineBoundary:
		line := src.OffsetToPoint(from).Line
		if dir == Backward {
			return src.LineStartOffset(line)
		}
		return src.LineEndOffset(line)
	case Document:
		if dir == Backward {
			return 0
		}
		return src.Len()
	}
	return from
}

// Motions read a window around the cursor rather than the whole line.
// The window doubles while the answer could lie past its edge.
const (
	graphemeWindow = 256
	wordWindow     = 4096
	maxWindow      = 64 << 10
)

func moveGrapheme(src Source, from ByteOffset, dir Direction) ByteOffset {
	line := src.OffsetToPoint(from).Line
	start, end := src.LineStartOffset(line), src.LineEndOffset(line)

	if dir == Forward {
		if from >= end {
			// Newline (or end of document).
			return min(from+1, src.Len())
		}
		for w := ByteOffset(graphemeWindow); ; w *= 2 {
			hi := min(from+w, end)
			text, _ := window(src, from, hi)
			cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(text, -1)
			if len(cluster) < len(text) || hi == end {
				return from + ByteOffset(len(cluster))
			}
		}
	}

	if from <= start {
		return max(from-1, 0)
	}
	for w := ByteOffset(graphemeWindow); ; w *= 2 {
		lo := max(from-w, start)
		text, at := window(src, lo, from)
		if lo > start {
			// Segmenting must begin on a known break.
			k := safeBreak(text)
			if k < 0 && w < maxWindow {
				continue
			}
			text, at = text[max(k, 0):], at+ByteOffset(max(k, 0))
		}
		bounds := graphemeStarts(text)
		return at + ByteOffset(bounds[len(bounds)-1])
	}
}

// window returns the text in [lo, hi) less any partial rune at either
// edge, along with the offset it starts at.
func window(src Source, lo, hi ByteOffset) (string, ByteOffset) {
	s := src.Slice(lo, hi)
	i := 0
	for i < len(s) && i < utf8.UTFMax && !utf8.RuneStart(s[i]) {
		i++
	}
	s = s[i:]
	for j := len(s) - 1; j >= 0 && j >= len(s)-utf8.UTFMax; j-- {
		if utf8.RuneStart(s[j]) {
			if !utf8.FullRuneInString(s[j:]) {
				s = s[:j]
			}
			break
		}
	}
	return s, lo + ByteOffset(i)
}

// safeBreak returns the index of the last rune in s that begins a
// grapheme cluster whatever precedes s, or -1.
func safeBreak(s string) int {
	next, size := utf8.DecodeLastRuneInString(s)
	for i := len(s) - size; i > 0; {
		r, n := utf8.DecodeLastRuneInString(s[:i])
		if plain(r) && plain(next) {
			return i
		}
		next = r
		i -= n
	}
	return -1
}

// plain reports whether r never joins a grapheme cluster with a
// neighbour that is also plain.
func plain(r rune) bool {
	switch {
	case r < utf8.RuneSelf:
		return r != '\r'
	case r >= 0x1100 && r <= 0x11FF, r >= 0xA960 && r <= 0xA97F, r >= 0xAC00 && r <= 0xD7FF:
		// Hangul jamo and syllables.
		return false
	case r == 0x0E33 || r == 0x0EB3:
		return false
	}
	return !unicode.In(r, unicode.M, unicode.Cc, unicode.Cf, unicode.Lm, unicode.Sk, unicode.So)
}

// graphemeStarts returns the byte offset of each cluster in s.
func graphemeStarts(s string) []int {
	var starts []int
	state := -1
	pos := 0
	for s != "" {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		starts = append(starts, pos)
		pos += len(cluster)
	}
	return starts
}

func moveWord(src Source, from ByteOffset, dir Direction) ByteOffset {
	n := src.Len()
	if dir == Forward {
		for w := ByteOffset(wordWindow); ; w *= 2 {
			hi := min(from+w, n)
			text, _ := window(src, from, hi)
			// A word ending on the window edge may run on past it.
			if pos, ok := wordEnd(text); ok && (pos < len(text) || hi == n) {
				return from + ByteOffset(pos)
			}
			if hi == n {
				return n
			}
		}
	}

	for w := ByteOffset(wordWindow); ; w *= 2 {
		lo := max(from-w, 0)
		text, at := window(src, lo, from)
		if pos, ok := wordStart(text); ok && (pos > 0 || lo == 0) {
			return at + ByteOffset(pos)
		}
		if lo == 0 {
			return 0
		}
	}
}

// wordEnd returns the end of the first word in s.
func wordEnd(s string) (int, bool) {
	state := -1
	pos := 0
	for s != "" {
		var seg string
		seg, s, state = uniseg.FirstWordInString(s, state)
		pos += len(seg)
		if isWordSegment(seg) {
			return pos, true
		}
	}
	return 0, false
}

// wordStart returns the start of the last word in s.
func wordStart(s string) (int, bool) {
	found, ok := 0, false
	state := -1
	pos := 0
	for s != "" {
		var seg string
		seg, s, state = uniseg.FirstWordInString(s, state)
		if isWordSegment(seg) {
			found, ok = pos, true
		}
		pos += len(seg)
	}
	return found, ok
}

// isWordSegment reports whether a word-break segment holds a letter or
// digit. Whitespace, punctuation and markdown markers are skipped over.
func isWordSegment(seg string) bool {
	for _, r := range seg {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

func moveLine(src Source, from ByteOffset, dir Direction) ByteOffset {
	p := src.OffsetToPoint(from)
	switch {
	case dir == Backward && p.Line == 0:
		return 0
	case dir == Forward && p.Line+1 >= src.LineCount():
		return src.Len()
	case dir == Backward:
		p.Line--
	default:
		p.Line++
	}
	return src.PointToOffset(p)
}
