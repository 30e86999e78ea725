package layout

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestColumnAt(t *testing.T) {
	m := LineMetrics{Line: 0, Height: 1, Xs: []float64{0, 10, 20, 40}}
	tests := []struct {
		x    float64
		want uint32
	}{
		{-5, 0},
		{0, 0},
		{4.9, 0},
		{5, 1},
		{10, 1},
		{29.9, 2},
		{30, 3},
		{40, 3},
		{100, 3},
	}
	for _, tt := range tests {
		if got := m.ColumnAt(tt.x); got != tt.want {
			t.Errorf("ColumnAt(%g) = %d, want %d", tt.x, got, tt.want)
		}
	}
	if m.X(1) != 10 || m.X(9) != 40 {
		t.Errorf("X clamping: %g %g", m.X(1), m.X(9))
	}
}

func TestValidate(t *testing.T) {
	good := LineMetrics{Line: 3, Height: 1, Xs: []float64{0, 1, 2}}
	if err := good.Validate(2); err != nil {
		t.Errorf("Validate = %v", err)
	}
	bad := []struct {
		m     LineMetrics
		chars int
	}{
		{good, 3},
		{LineMetrics{Height: 0, Xs: []float64{0}}, 0},
		{LineMetrics{Height: 1, Xs: []float64{0, 2, 1}}, 2},
	}
	for i, tt := range bad {
		if err := tt.m.Validate(tt.chars); !errors.Is(err, ErrMetricsMismatch) {
			t.Errorf("case %d: err = %v", i, err)
		}
	}
	f := Frame{Lines: []LineMetrics{{Line: 1}, {Line: 3}}}
	if err := f.Validate(); !errors.Is(err, ErrMetricsMismatch) {
		t.Errorf("non-consecutive frame: %v", err)
	}
}

func TestFrame(t *testing.T) {
	f := Frame{OriginY: 100, Lines: []LineMetrics{
		{Line: 5, Height: 10, Xs: []float64{0}},
		{Line: 6, Height: 20, Xs: []float64{0}},
		{Line: 7, Height: 10, Xs: []float64{0}},
	}}
	if _, y, ok := f.Find(7); !ok || y != 130 {
		t.Errorf("Find(7) y=%g ok=%v", y, ok)
	}
	if _, _, ok := f.Find(4); ok {
		t.Error("Find above frame should fail")
	}
	if _, _, ok := f.Find(8); ok {
		t.Error("Find below frame should fail")
	}
	tests := []struct {
		y     float64
		index int
		below bool
	}{
		{0, 0, false},
		{109, 0, false},
		{110, 1, false},
		{129, 1, false},
		{135, 2, false},
		{140, 2, true},
	}
	for _, tt := range tests {
		i, below := f.At(tt.y)
		if i != tt.index || below != tt.below {
			t.Errorf("At(%g) = %d,%v want %d,%v", tt.y, i, below, tt.index, tt.below)
		}
	}
}

func TestCacheValidatesText(t *testing.T) {
	c := NewCache(10)
	m := LineMetrics{Line: 2, Height: 1, Xs: []float64{0, 1}}
	c.Put(m, "a")
	if got, ok := c.Get(2, "a"); !ok || !cmp.Equal(got, m) {
		t.Errorf("Get = %v, %v", got, ok)
	}
	if _, ok := c.Get(2, "b"); ok {
		t.Error("metrics returned for different text")
	}
	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.HitRate != 0.5 {
		t.Errorf("stats = %+v", st)
	}
}

func TestCacheShiftAndInvalidate(t *testing.T) {
	c := NewCache(0)
	for i := uint32(0); i < 6; i++ {
		c.Put(LineMetrics{Line: i, Height: 1}, "x")
	}
	c.InvalidateRange(1, 2)
	c.ShiftLines(3, 2)
	var have []uint32
	for i := uint32(0); i < 10; i++ {
		if c.Has(i) {
			have = append(have, i)
		}
	}
	if diff := cmp.Diff([]uint32{0, 5, 6, 7}, have); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}
	if m, _ := c.Get(5, "x"); m.Line != 5 {
		t.Errorf("shifted metrics keep line %d", m.Line)
	}
	c.ShiftLines(5, -10)
	if c.Size() != 1 {
		t.Errorf("entries shifted below zero should drop, size %d", c.Size())
	}
	c.InvalidateAll()
	if c.Size() != 0 {
		t.Error("InvalidateAll left entries")
	}
}

func TestCacheEvictsOldest(t *testing.T) {
	c := NewCache(2)
	c.Put(LineMetrics{Line: 0}, "")
	c.Put(LineMetrics{Line: 1}, "")
	c.Get(0, "")
	c.Put(LineMetrics{Line: 2}, "")
	if c.Size() != 2 || c.Stats().Evictions != 1 {
		t.Fatalf("size %d stats %+v", c.Size(), c.Stats())
	}
	if !c.Has(2) {
		t.Error("newest entry evicted")
	}
}

func TestCellShaper(t *testing.T) {
	s := NewCellShaper(4)
	tests := []struct {
		text string
		xs   []float64
	}{
		{"", []float64{0}},
		{"ab", []float64{0, 1, 2}},
		{"a\tb", []float64{0, 1, 4, 5}},
		{"世x", []float64{0, 2, 3}},
		{"éz", []float64{0, 0, 1, 2}},
	}
	for _, tt := range tests {
		m := s.Shape(7, tt.text)
		if diff := cmp.Diff(tt.xs, m.Xs); diff != "" {
			t.Errorf("Shape(%q) (-want +got):\n%s", tt.text, diff)
		}
		if m.Line != 7 || m.Height != 1 {
			t.Errorf("Shape(%q) line %d height %g", tt.text, m.Line, m.Height)
		}
	}
}

func TestCellShaperHidden(t *testing.T) {
	s := NewCellShaper(4)
	// "**b**" with the markers hidden.
	hidden := func(c int) bool { return c != 2 }
	m, clusters := s.Layout(0, "**b**", hidden)
	if diff := cmp.Diff([]float64{0, 0, 0, 1, 1, 1}, m.Xs); diff != "" {
		t.Errorf("Xs (-want +got):\n%s", diff)
	}
	want := []Cluster{{Text: "b", Char: 2, X: 0, Width: 1}}
	if diff := cmp.Diff(want, clusters); diff != "" {
		t.Errorf("clusters (-want +got):\n%s", diff)
	}
	if err := m.Validate(5); err != nil {
		t.Error(err)
	}

	_, clusters = s.Layout(0, "a\t世", nil)
	want = []Cluster{
		{Text: "a", Char: 0, X: 0, Width: 1},
		{Text: "\t", Char: 1, X: 1, Width: 3},
		{Text: "世", Char: 2, X: 4, Width: 2},
	}
	if diff := cmp.Diff(want, clusters); diff != "" {
		t.Errorf("clusters (-want +got):\n%s", diff)
	}
}
