package rope

import "unicode/utf8"

// ByteOffset is an absolute byte position in a rope.
type ByteOffset = int64

// Point is a line/column position. Both fields are 0-indexed and the
// column counts Unicode scalar values (characters), not bytes.
type Point struct {
	Line   uint32
	Column uint32
}

// TextSummary aggregates the metrics of a span of text.
// Summaries form a monoid under Add with the zero value as identity.
type TextSummary struct {
	Bytes ByteOffset // UTF-8 byte count
	Chars int64      // Unicode scalar count
	Lines uint32     // newline count
	ASCII bool       // every byte < 0x80 (true for empty text)
}

// Add combines two adjacent summaries.
func (s TextSummary) Add(other TextSummary) TextSummary {
	if s.Bytes == 0 {
		return other
	}
	if other.Bytes == 0 {
		return s
	}
	return TextSummary{
		Bytes: s.Bytes + other.Bytes,
		Chars: s.Chars + other.Chars,
		Lines: s.Lines + other.Lines,
		ASCII: s.ASCII && other.ASCII,
	}
}

// ComputeSummary measures a string.
func ComputeSummary(s string) TextSummary {
	sum := TextSummary{Bytes: ByteOffset(len(s)), ASCII: true}
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b == '\n' {
			sum.Lines++
		}
		if b >= utf8.RuneSelf {
			sum.ASCII = false
		}
		if b&0xC0 != 0x80 {
			sum.Chars++
		}
	}
	return sum
}

// metric selects the summary dimension used when seeking.
type metric uint8

const (
	byBytes metric = iota
	byChars
	byLines
)

func (s TextSummary) measure(m metric) int64 {
	switch m {
	case byChars:
		return s.Chars
	case byLines:
		return int64(s.Lines)
	default:
		return s.Bytes
	}
}

// isCharStart reports whether b begins a UTF-8 sequence.
func isCharStart(b byte) bool {
	return b&0xC0 != 0x80
}
