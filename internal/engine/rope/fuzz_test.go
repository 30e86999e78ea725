package rope

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func FuzzReplace(f *testing.F) {
	f.Add("hello world", 0, 5, "hi")
	f.Add("# a\n\n**b**", 4, 5, "")
	f.Add("日本語", 3, 6, "x")

	f.Fuzz(func(t *testing.T, s string, start, end int, repl string) {
		if !utf8.ValidString(s) || !utf8.ValidString(repl) {
			return
		}
		start = min(max(start, 0), len(s))
		end = min(max(end, start), len(s))
		for start < len(s) && start > 0 && !utf8.RuneStart(s[start]) {
			start--
		}
		for end < len(s) && !utf8.RuneStart(s[end]) {
			end++
		}

		got := FromString(s).Replace(ByteOffset(start), ByteOffset(end), repl).String()
		if want := s[:start] + repl + s[end:]; got != want {
			t.Errorf("Replace(%d, %d) = %q, want %q", start, end, got, want)
		}
	})
}

func FuzzPointRoundTrip(f *testing.F) {
	f.Add("line1\nline2\nline3", 7)
	f.Add("héllo\n世界", 9)
	f.Add("", 0)

	f.Fuzz(func(t *testing.T, s string, offset int) {
		if !utf8.ValidString(s) {
			return
		}
		r := FromString(s)
		offset = min(max(offset, 0), len(s))
		if !r.IsCharBoundary(ByteOffset(offset)) {
			return
		}
		p := r.OffsetToPoint(ByteOffset(offset))
		if p.Line != uint32(strings.Count(s[:offset], "\n")) {
			t.Fatalf("line of %d = %d", offset, p.Line)
		}
		if back := r.PointToOffset(p); back != ByteOffset(offset) {
			t.Errorf("round trip %d -> %v -> %d", offset, p, back)
		}
	})
}
