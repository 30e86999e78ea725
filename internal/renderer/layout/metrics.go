// Package layout holds the line geometry a renderer reports after
// shaping text: per-line heights and the x position of every character
// boundary. The editing core maps between offsets and screen positions
// using only these measurements.
package layout

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrMetricsMismatch reports metrics that do not fit the line they
	// claim to describe.
	ErrMetricsMismatch = errors.New("layout metrics do not match line")
)

// LineMetrics is the shaped geometry of one document line.
type LineMetrics struct {
	Line   uint32
	Height float64
	// Xs holds the x position of each character boundary, from the line
	// start to the line end: one more entry than the line has characters.
	Xs []float64
}

// Chars returns the number of characters the metrics describe.
func (m LineMetrics) Chars() int {
	return max(len(m.Xs)-1, 0)
}

// Width returns the x position of the line end.
func (m LineMetrics) Width() float64 {
	if len(m.Xs) == 0 {
		return 0
	}
	return m.Xs[len(m.Xs)-1]
}

// Validate checks the metrics describe a line of chars characters.
func (m LineMetrics) Validate(chars int) error {
	if len(m.Xs) != chars+1 {
		return fmt.Errorf("line %d: %d boundaries for %d characters: %w", m.Line, len(m.Xs), chars, ErrMetricsMismatch)
	}
	if m.Height <= 0 {
		return fmt.Errorf("line %d: height %g: %w", m.Line, m.Height, ErrMetricsMismatch)
	}
	for i := 1; i < len(m.Xs); i++ {
		if m.Xs[i] < m.Xs[i-1] {
			return fmt.Errorf("line %d: boundary %d moves left: %w", m.Line, i, ErrMetricsMismatch)
		}
	}
	return nil
}

// ColumnAt returns the character boundary closest to x. A position
// between two boundaries snaps to the nearer one, ties going right;
// positions past either end clamp to it.
func (m LineMetrics) ColumnAt(x float64) uint32 {
	n := len(m.Xs)
	if n == 0 || x <= m.Xs[0] {
		return 0
	}
	if x >= m.Xs[n-1] {
		return uint32(n - 1)
	}
	i := sort.SearchFloat64s(m.Xs, x)
	if m.Xs[i] == x {
		return uint32(i)
	}
	if x < (m.Xs[i-1]+m.Xs[i])/2 {
		return uint32(i - 1)
	}
	return uint32(i)
}

// X returns the x position of the boundary before column col, clamped to
// the line end.
func (m LineMetrics) X(col uint32) float64 {
	if len(m.Xs) == 0 {
		return 0
	}
	return m.Xs[min(int(col), len(m.Xs)-1)]
}

// Frame is the geometry of the visible lines: consecutive document lines
// stacked downward from OriginY.
type Frame struct {
	OriginY float64
	Lines   []LineMetrics
}

// Validate checks that the lines are consecutive.
func (f Frame) Validate() error {
	for i := 1; i < len(f.Lines); i++ {
		if f.Lines[i].Line != f.Lines[i-1].Line+1 {
			return fmt.Errorf("frame lines %d and %d are not consecutive: %w", f.Lines[i-1].Line, f.Lines[i].Line, ErrMetricsMismatch)
		}
	}
	return nil
}

// First returns the document line at the top of the frame.
func (f Frame) First() (uint32, bool) {
	if len(f.Lines) == 0 {
		return 0, false
	}
	return f.Lines[0].Line, true
}

// Find returns the metrics and top y of a document line.
func (f Frame) Find(line uint32) (LineMetrics, float64, bool) {
	first, ok := f.First()
	if !ok || line < first || int(line-first) >= len(f.Lines) {
		return LineMetrics{}, 0, false
	}
	y := f.OriginY
	for _, m := range f.Lines[:line-first] {
		y += m.Height
	}
	return f.Lines[line-first], y, true
}

// At returns the index of the line containing y, clamping to the first
// and last lines. below reports that y lies past the bottom of the frame.
func (f Frame) At(y float64) (index int, below bool) {
	if len(f.Lines) == 0 {
		return -1, false
	}
	top := f.OriginY
	for i, m := range f.Lines {
		if y < top+m.Height {
			return i, false
		}
		top += m.Height
	}
	return len(f.Lines) - 1, true
}
