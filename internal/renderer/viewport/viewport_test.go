package viewport

import (
	"testing"
)

func TestNewViewport(t *testing.T) {
	v := New(24, DefaultMargin)
	if v.Height() != 24 {
		t.Errorf("expected height 24, got %d", v.Height())
	}
	if v.TopLine() != 0 {
		t.Errorf("expected top line 0, got %d", v.TopLine())
	}
	if New(0, -1).Height() != 1 {
		t.Error("height not clamped to 1")
	}
}

func TestViewportVisibleLineRange(t *testing.T) {
	v := New(24, 0)
	v.SetLineCount(100)

	start, end := v.VisibleLineRange()
	if start != 0 || end != 24 {
		t.Errorf("range = [%d, %d), want [0, 24)", start, end)
	}

	v.ScrollTo(10)
	start, end = v.VisibleLineRange()
	if start != 10 || end != 34 {
		t.Errorf("range = [%d, %d), want [10, 34)", start, end)
	}

	// A short document ends the range early.
	v.SetLineCount(5)
	start, end = v.VisibleLineRange()
	if start != 0 || end != 5 {
		t.Errorf("range = [%d, %d), want [0, 5)", start, end)
	}
}

func TestViewportScrollClamps(t *testing.T) {
	tests := []struct {
		name  string
		lines uint32
		op    func(v *Viewport)
		want  uint32
	}{
		{"past end", 100, func(v *Viewport) { v.ScrollTo(500) }, 90},
		{"above start", 100, func(v *Viewport) { v.ScrollBy(-5) }, 0},
		{"short document", 4, func(v *Viewport) { v.ScrollBy(3) }, 0},
		{"page down", 100, func(v *Viewport) { v.PageDown() }, 9},
		{"page down twice then up", 100, func(v *Viewport) { v.PageDown(); v.PageDown(); v.PageUp() }, 9},
		{"unknown length", 0, func(v *Viewport) { v.ScrollTo(500) }, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(10, 0)
			v.SetLineCount(tt.lines)
			tt.op(v)
			if got := v.TopLine(); got != tt.want {
				t.Errorf("top = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestViewportScrollToReveal(t *testing.T) {
	tests := []struct {
		name     string
		top      uint32
		line     uint32
		wantTop  uint32
		scrolled bool
	}{
		{"already visible", 0, 5, 0, false},
		{"inside bottom margin", 0, 8, 1, true},
		{"far below", 0, 50, 43, true},
		{"inside top margin", 20, 21, 19, true},
		{"above", 20, 3, 1, true},
		{"first line", 20, 0, 0, true},
		{"last line", 0, 99, 90, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(10, 2)
			v.SetLineCount(100)
			v.ScrollTo(tt.top)
			if got := v.ScrollToReveal(tt.line); got != tt.scrolled {
				t.Errorf("scrolled = %v, want %v", got, tt.scrolled)
			}
			if got := v.TopLine(); got != tt.wantTop {
				t.Errorf("top = %d, want %d", got, tt.wantTop)
			}
			if _, ok := v.LineToRow(tt.line); !ok {
				t.Errorf("line %d not visible after reveal", tt.line)
			}
		})
	}
}

func TestViewportLargeMargin(t *testing.T) {
	// A margin larger than half the screen must still settle.
	v := New(4, 10)
	v.SetLineCount(100)
	v.ScrollToReveal(50)
	if v.ScrollToReveal(50) {
		t.Error("second reveal of the same line scrolled again")
	}
	if _, ok := v.LineToRow(50); !ok {
		t.Error("line not visible")
	}
}

func TestViewportResize(t *testing.T) {
	v := New(10, 0)
	v.SetLineCount(20)
	v.ScrollTo(10)
	v.Resize(15)
	if v.Height() != 15 {
		t.Errorf("height = %d", v.Height())
	}
	if v.TopLine() != 5 {
		t.Errorf("top = %d after growing, want 5", v.TopLine())
	}
}

func TestViewportLineToRow(t *testing.T) {
	v := New(5, 0)
	v.SetLineCount(50)
	v.ScrollTo(10)
	if row, ok := v.LineToRow(12); !ok || row != 2 {
		t.Errorf("LineToRow(12) = %d, %v", row, ok)
	}
	for _, l := range []uint32{9, 15} {
		if _, ok := v.LineToRow(l); ok {
			t.Errorf("line %d reported visible", l)
		}
	}
}
