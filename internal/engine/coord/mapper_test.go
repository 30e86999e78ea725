package coord

import (
	"errors"
	"testing"
	"testing/quick"

	"github.com/dshills/hybridmd/internal/engine/buffer"
	"github.com/dshills/hybridmd/internal/renderer/layout"
)

// cellFrame measures lines of src the way a terminal would, one row per
// line starting at originY.
func cellFrame(src Source, first, last uint32, originY float64) layout.Frame {
	s := layout.NewCellShaper(4)
	f := layout.Frame{OriginY: originY}
	for line := first; line <= last; line++ {
		f.Lines = append(f.Lines, s.Shape(line, src.LineText(line)))
	}
	return f
}

func TestOffsetPointRoundTrip(t *testing.T) {
	texts := []string{
		"",
		"a",
		"hello\nworld\n",
		"\n\n\n",
		"héllo 世界\n🙂x\r\nend",
		"# T\n\n- a\n- b\n",
	}
	for _, text := range texts {
		b := buffer.NewBufferFromString(text)
		m := NewMapper(b, 0)
		for off := buffer.ByteOffset(0); off <= b.Len(); off++ {
			p, err := m.OffsetToPoint(off)
			if !b.IsCharBoundary(off) {
				if !errors.Is(err, buffer.ErrInvalidOffset) {
					t.Errorf("%q: offset %d inside a character: err = %v", text, off, err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("%q: OffsetToPoint(%d): %v", text, off, err)
			}
			if got := m.PointToOffset(p); got != off {
				t.Errorf("%q: %d -> %v -> %d", text, off, p, got)
			}
		}
	}
}

func TestOffsetPointRoundTripQuick(t *testing.T) {
	f := func(text string, at uint16) bool {
		b := buffer.NewBufferFromString(text)
		m := NewMapper(b, 0)
		off := b.ClampOffset(buffer.ByteOffset(at) % (b.Len() + 1))
		p, err := m.OffsetToPoint(off)
		return err == nil && m.PointToOffset(p) == off
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestOffsetToPointRejectsOutOfRange(t *testing.T) {
	m := NewMapper(buffer.NewBufferFromString("abc"), 0)
	for _, off := range []buffer.ByteOffset{-1, 4} {
		if _, err := m.OffsetToPoint(off); !errors.Is(err, buffer.ErrInvalidOffset) {
			t.Errorf("OffsetToPoint(%d) err = %v", off, err)
		}
	}
}

func TestPointToOffsetClamps(t *testing.T) {
	b := buffer.NewBufferFromString("ab\ncde\n")
	m := NewMapper(b, 0)
	tests := []struct {
		p    buffer.Point
		want buffer.ByteOffset
	}{
		{buffer.Point{Line: 0, Column: 9}, 2},
		{buffer.Point{Line: 1, Column: 1}, 4},
		{buffer.Point{Line: 1, Column: 3}, 6},
		{buffer.Point{Line: 2, Column: 5}, 7},
		{buffer.Point{Line: 9, Column: 0}, 7},
	}
	for _, tt := range tests {
		if got := m.PointToOffset(tt.p); got != tt.want {
			t.Errorf("PointToOffset(%v) = %d, want %d", tt.p, got, tt.want)
		}
	}
}

func TestScreenToPoint(t *testing.T) {
	b := buffer.NewBufferFromString("abc\n世界\nxy")
	m := NewMapper(b, 0)
	f := cellFrame(b, 0, 2, 0)

	tests := []struct {
		name string
		x, y float64
		want buffer.Point
	}{
		{"first boundary", 0, 0, buffer.Point{Line: 0, Column: 0}},
		{"snap left", 1.4, 0.5, buffer.Point{Line: 0, Column: 1}},
		{"midpoint goes right", 1.5, 0.5, buffer.Point{Line: 0, Column: 2}},
		{"past line end", 40, 0, buffer.Point{Line: 0, Column: 3}},
		{"left of line", -3, 0, buffer.Point{Line: 0, Column: 0}},
		{"wide character left half", 0.9, 1, buffer.Point{Line: 1, Column: 0}},
		{"wide character right half", 1.1, 1, buffer.Point{Line: 1, Column: 1}},
		{"above frame", 1, -10, buffer.Point{Line: 0, Column: 1}},
		{"below last line", 0, 99, buffer.Point{Line: 2, Column: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.ScreenToPoint(tt.x, tt.y, f)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ScreenToPoint(%g, %g) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestScreenToPointBelowPartialFrame(t *testing.T) {
	b := buffer.NewBufferFromString("one\ntwo\nthree\n")
	m := NewMapper(b, 0)
	got, err := m.ScreenToPoint(0, 50, cellFrame(b, 0, 1, 0))
	if err != nil {
		t.Fatal(err)
	}
	if want := (buffer.Point{Line: 1, Column: 3}); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScreenToPointRejectsBadMetrics(t *testing.T) {
	b := buffer.NewBufferFromString("abc\n")
	m := NewMapper(b, 0)
	f := layout.Frame{Lines: []layout.LineMetrics{{Line: 0, Height: 1, Xs: []float64{0, 1}}}}
	if _, err := m.ScreenToPoint(0, 0, f); !errors.Is(err, layout.ErrMetricsMismatch) {
		t.Errorf("err = %v", err)
	}
	if _, err := m.ScreenToPoint(0, 0, layout.Frame{}); !errors.Is(err, ErrNoLayout) {
		t.Errorf("empty frame err = %v", err)
	}
}

func TestPointToScreen(t *testing.T) {
	b := buffer.NewBufferFromString("a\tb\n世x\n")
	m := NewMapper(b, 0)
	f := cellFrame(b, 0, 2, 10)
	tests := []struct {
		p    buffer.Point
		x, y float64
	}{
		{buffer.Point{Line: 0, Column: 2}, 4, 10},
		{buffer.Point{Line: 1, Column: 1}, 2, 11},
		{buffer.Point{Line: 1, Column: 40}, 3, 11},
		{buffer.Point{Line: 2, Column: 0}, 0, 12},
	}
	for _, tt := range tests {
		x, y, err := m.PointToScreen(tt.p, f)
		if err != nil {
			t.Fatalf("PointToScreen(%v): %v", tt.p, err)
		}
		if x != tt.x || y != tt.y {
			t.Errorf("PointToScreen(%v) = (%g, %g), want (%g, %g)", tt.p, x, y, tt.x, tt.y)
		}
	}
	if _, _, err := m.PointToScreen(buffer.Point{Line: 1}, cellFrame(b, 0, 0, 0)); !errors.Is(err, ErrNoLayout) {
		t.Errorf("line outside frame: err = %v", err)
	}
}

func TestScreenRoundTrip(t *testing.T) {
	b := buffer.NewBufferFromString("**bold** and `code`\n\n世界 é\n")
	m := NewMapper(b, 0)
	f := cellFrame(b, 0, b.LineCount()-1, 0)
	for off := buffer.ByteOffset(0); off <= b.Len(); off++ {
		if !b.IsCharBoundary(off) {
			continue
		}
		p, _ := m.OffsetToPoint(off)
		x, y, err := m.PointToScreen(p, f)
		if err != nil {
			t.Fatal(err)
		}
		got, err := m.ScreenToPoint(x, y, f)
		if err != nil {
			t.Fatal(err)
		}
		if got != p {
			t.Errorf("offset %d: %v -> (%g, %g) -> %v", off, p, x, y, got)
		}
	}
}

func TestCachedConversions(t *testing.T) {
	b := buffer.NewBufferFromString("zero\none\ntwo\nthree\n")
	m := NewMapper(b, 0)

	if _, err := m.ScreenToPointCached(0, 0); !errors.Is(err, ErrNoLayout) {
		t.Fatalf("no layout yet: err = %v", err)
	}
	if err := m.UpdateLayout(cellFrame(b, 1, 2, 0)); err != nil {
		t.Fatal(err)
	}
	p, err := m.ScreenToPointCached(2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if want := (buffer.Point{Line: 2, Column: 2}); p != want {
		t.Errorf("ScreenToPointCached = %v, want %v", p, want)
	}
	if _, err := m.ScreenToPointCached(0, 5); !errors.Is(err, ErrNoLayout) {
		t.Errorf("below measured lines: err = %v", err)
	}
	if _, _, err := m.PointToScreenCached(buffer.Point{Line: 0}); !errors.Is(err, ErrNoLayout) {
		t.Errorf("above top: err = %v", err)
	}
	x, y, err := m.PointToScreenCached(buffer.Point{Line: 2, Column: 3})
	if err != nil || x != 3 || y != 1 {
		t.Errorf("PointToScreenCached = (%g, %g, %v)", x, y, err)
	}
}

func TestApplyChangeShiftsLayout(t *testing.T) {
	b := buffer.NewBufferFromString("zero\none\ntwo\nthree\n")
	m := NewMapper(b, 0)
	if err := m.UpdateLayout(cellFrame(b, 2, 3, 0)); err != nil {
		t.Fatal(err)
	}

	ch, err := b.Insert(0, "new\n")
	if err != nil {
		t.Fatal(err)
	}
	m.ApplyChange(ch)
	if m.Top() != 3 {
		t.Fatalf("Top = %d, want 3", m.Top())
	}
	x, y, err := m.PointToScreenCached(buffer.Point{Line: 4, Column: 5})
	if err != nil || x != 5 || y != 1 {
		t.Errorf("shifted line: (%g, %g, %v)", x, y, err)
	}

	ch, err = b.Insert(b.LineStartOffset(3), "X")
	if err != nil {
		t.Fatal(err)
	}
	m.ApplyChange(ch)
	if _, _, err := m.PointToScreenCached(buffer.Point{Line: 3}); !errors.Is(err, ErrNoLayout) {
		t.Errorf("edited line still cached: err = %v", err)
	}
}

func TestUpdateLayoutRejectsStaleMetrics(t *testing.T) {
	b := buffer.NewBufferFromString("abc\n")
	m := NewMapper(b, 0)
	f := layout.Frame{Lines: []layout.LineMetrics{layout.NewCellShaper(4).Shape(0, "abcd")}}
	if err := m.UpdateLayout(f); !errors.Is(err, layout.ErrMetricsMismatch) {
		t.Errorf("err = %v", err)
	}
	if m.CacheStats().Size != 0 {
		t.Error("rejected metrics were stored")
	}
}
