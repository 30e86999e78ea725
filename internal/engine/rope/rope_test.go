package rope

import (
	"strings"
	"testing"
	"testing/quick"
	"unicode/utf8"
)

func TestNew(t *testing.T) {
	r := New()
	if r.Len() != 0 || !r.IsEmpty() {
		t.Errorf("New rope should be empty, got len %d", r.Len())
	}
	if r.LineCount() != 1 {
		t.Errorf("LineCount() = %d, want 1", r.LineCount())
	}

	var zero Rope
	if zero.String() != "" || zero.Len() != 0 {
		t.Error("zero rope should behave as empty")
	}
	if got := zero.Insert(0, "x").String(); got != "x" {
		t.Errorf("insert into zero rope = %q", got)
	}
}

func TestFromString(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"short", "hello"},
		{"newlines", "a\nb\nc\n"},
		{"unicode", "héllo 世界 🌍"},
		{"long", strings.Repeat("abcdefghij", 300)},
		{"long unicode", strings.Repeat("日本語テキスト\n", 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromString(tt.input)
			if r.String() != tt.input {
				t.Errorf("String() mismatch")
			}
			if r.Len() != ByteOffset(len(tt.input)) {
				t.Errorf("Len() = %d, want %d", r.Len(), len(tt.input))
			}
			if r.CharCount() != int64(utf8.RuneCountInString(tt.input)) {
				t.Errorf("CharCount() = %d, want %d", r.CharCount(), utf8.RuneCountInString(tt.input))
			}
			if r.LineCount() != uint32(strings.Count(tt.input, "\n"))+1 {
				t.Errorf("LineCount() = %d", r.LineCount())
			}
		})
	}
}

func TestInsertDelete(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		start  ByteOffset
		end    ByteOffset
		insert string
		want   string
	}{
		{"insert start", "world", 0, 0, "hello ", "hello world"},
		{"insert end", "hello", 5, 5, " world", "hello world"},
		{"insert middle", "helloworld", 5, 5, " ", "hello world"},
		{"insert unicode boundary", "世界", 3, 3, "!", "世!界"},
		{"delete prefix", "hello world", 0, 6, "", "world"},
		{"delete suffix", "hello world", 5, 11, "", "hello"},
		{"delete all", "hello", 0, 5, "", ""},
		{"delete clamps", "hello", 3, 99, "", "hel"},
		{"replace", "a **b** c", 2, 7, "*b*", "a *b* c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromString(tt.text).Replace(tt.start, tt.end, tt.insert)
			if got := r.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImmutability(t *testing.T) {
	r1 := FromString("hello")
	r2 := r1.Insert(5, " world")
	r3 := r2.Delete(0, 6)
	if r1.String() != "hello" || r2.String() != "hello world" || r3.String() != "world" {
		t.Errorf("ropes share mutable state: %q %q %q", r1, r2, r3)
	}
}

func TestManySmallInserts(t *testing.T) {
	r := New()
	var want strings.Builder
	for i := 0; i < 3000; i++ {
		s := string(rune('a' + i%26))
		if i%40 == 39 {
			s = "\n"
		}
		r = r.Insert(r.Len(), s)
		want.WriteString(s)
	}
	if r.String() != want.String() {
		t.Fatal("content mismatch after appends")
	}
	if r.Height() > 12 {
		t.Errorf("tree too deep: height %d", r.Height())
	}
	mid := r.Len() / 2
	r = r.Insert(mid, "XYZ")
	w := want.String()
	if r.String() != w[:mid]+"XYZ"+w[mid:] {
		t.Error("content mismatch after middle insert")
	}
}

func TestLines(t *testing.T) {
	r := FromString("# Title\n\nbody text\nlast")
	tests := []struct {
		line  uint32
		start ByteOffset
		end   ByteOffset
		text  string
	}{
		{0, 0, 7, "# Title"},
		{1, 8, 8, ""},
		{2, 9, 18, "body text"},
		{3, 19, 23, "last"},
		{9, 23, 23, ""},
	}
	for _, tt := range tests {
		if got := r.LineStartOffset(tt.line); got != tt.start {
			t.Errorf("LineStartOffset(%d) = %d, want %d", tt.line, got, tt.start)
		}
		if got := r.LineEndOffset(tt.line); got != tt.end {
			t.Errorf("LineEndOffset(%d) = %d, want %d", tt.line, got, tt.end)
		}
		if got := r.LineText(tt.line); got != tt.text {
			t.Errorf("LineText(%d) = %q, want %q", tt.line, got, tt.text)
		}
	}

	for off, want := range map[ByteOffset]uint32{0: 0, 7: 0, 8: 1, 9: 2, 18: 2, 19: 3, 23: 3} {
		if got := r.LineOf(off); got != want {
			t.Errorf("LineOf(%d) = %d, want %d", off, got, want)
		}
	}
}

func TestPointConversion(t *testing.T) {
	r := FromString("héllo\n世界!\n")
	tests := []struct {
		offset ByteOffset
		point  Point
	}{
		{0, Point{0, 0}},
		{3, Point{0, 2}},
		{6, Point{0, 5}},
		{7, Point{1, 0}},
		{10, Point{1, 1}},
		{14, Point{1, 3}},
		{15, Point{2, 0}},
	}
	for _, tt := range tests {
		if got := r.OffsetToPoint(tt.offset); got != tt.point {
			t.Errorf("OffsetToPoint(%d) = %v, want %v", tt.offset, got, tt.point)
		}
		if got := r.PointToOffset(tt.point); got != tt.offset {
			t.Errorf("PointToOffset(%v) = %d, want %d", tt.point, got, tt.offset)
		}
	}

	if got := r.PointToOffset(Point{0, 40}); got != 6 {
		t.Errorf("column past line end should clamp to 6, got %d", got)
	}
	if got := r.PointToOffset(Point{7, 1}); got != r.Len() {
		t.Errorf("line past end should clamp to len, got %d", got)
	}
}

func TestCharBoundaries(t *testing.T) {
	r := FromString("a世🌍b")
	boundaries := map[ByteOffset]bool{0: true, 1: true, 2: false, 3: false, 4: true, 5: false, 8: true, 9: true}
	for off, want := range boundaries {
		if got := r.IsCharBoundary(off); got != want {
			t.Errorf("IsCharBoundary(%d) = %v, want %v", off, got, want)
		}
	}
	if got := r.NextCharBoundary(1); got != 4 {
		t.Errorf("NextCharBoundary(1) = %d, want 4", got)
	}
	if got := r.PrevCharBoundary(8); got != 4 {
		t.Errorf("PrevCharBoundary(8) = %d, want 4", got)
	}
	if got := r.PrevCharBoundary(0); got != 0 {
		t.Errorf("PrevCharBoundary(0) = %d", got)
	}
	if got := r.NextCharBoundary(9); got != 9 {
		t.Errorf("NextCharBoundary(9) = %d", got)
	}
	if got := r.OffsetAtChar(2); got != 4 {
		t.Errorf("OffsetAtChar(2) = %d, want 4", got)
	}
	if got := r.CharsBefore(8); got != 3 {
		t.Errorf("CharsBefore(8) = %d, want 3", got)
	}
}

func TestLargeDocumentSeek(t *testing.T) {
	line := "- item with ünïcödé\n"
	text := strings.Repeat(line, 500)
	r := FromString(text)
	for _, l := range []uint32{0, 1, 137, 499, 500} {
		want := ByteOffset(len(line)) * ByteOffset(l)
		if got := r.LineStartOffset(l); got != want {
			t.Errorf("LineStartOffset(%d) = %d, want %d", l, got, want)
		}
	}
	off := ByteOffset(len(line))*250 + 15
	p := r.OffsetToPoint(off)
	if p.Line != 250 || p.Column != 14 {
		t.Errorf("OffsetToPoint = %v", p)
	}
	if back := r.PointToOffset(p); back != off {
		t.Errorf("round trip = %d, want %d", back, off)
	}
}

func TestQuickSplitConcat(t *testing.T) {
	f := func(s string, at uint16) bool {
		if !utf8.ValidString(s) {
			return true
		}
		r := FromString(s)
		off := ByteOffset(int(at) % (len(s) + 1))
		left, right := r.Split(off)
		return left.Concat(right).String() == s
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}
