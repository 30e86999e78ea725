// Package coord converts between byte offsets, logical (line, column)
// points and screen positions.
//
// Offsets and points are converted through the document's line index.
// Screen conversions use only the layout metrics supplied by the renderer:
// the mapper never guesses character widths or line heights. Metrics for
// visible lines can be passed per call as a layout.Frame, or stored with
// UpdateLayout and queried later with the Cached variants.
package coord

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dshills/hybridmd/internal/engine/buffer"
	"github.com/dshills/hybridmd/internal/renderer/layout"
)

// ErrNoLayout is returned when a screen conversion needs metrics for a
// line the renderer has not measured.
var ErrNoLayout = errors.New("no layout metrics for line")

// Source is the text a Mapper reads. *buffer.Buffer implements it.
type Source interface {
	Len() buffer.ByteOffset
	LineCount() uint32
	LineText(line uint32) string
	OffsetToPoint(offset buffer.ByteOffset) buffer.Point
	PointToOffset(p buffer.Point) buffer.ByteOffset
	CheckOffset(op string, offset buffer.ByteOffset) error
}

// Mapper converts positions for one document.
type Mapper struct {
	src     Source
	cache   *layout.Cache
	top     uint32
	originY float64
}

// NewMapper creates a mapper over src. cacheSize bounds the number of
// lines whose metrics are kept (0 = unlimited).
func NewMapper(src Source, cacheSize int) *Mapper {
	return &Mapper{src: src, cache: layout.NewCache(cacheSize)}
}

// OffsetToPoint converts a valid offset to a point.
func (m *Mapper) OffsetToPoint(offset buffer.ByteOffset) (buffer.Point, error) {
	if err := m.src.CheckOffset("offset to point", offset); err != nil {
		return buffer.Point{}, err
	}
	return m.src.OffsetToPoint(offset), nil
}

// PointToOffset converts a point to an offset. Columns past the line end
// clamp to it; lines past the last line clamp to the end of the document.
func (m *Mapper) PointToOffset(p buffer.Point) buffer.ByteOffset {
	return m.src.PointToOffset(p)
}

// ClampPoint returns the valid point nearest to p.
func (m *Mapper) ClampPoint(p buffer.Point) buffer.Point {
	return m.src.OffsetToPoint(m.src.PointToOffset(p))
}

// ScreenToPoint maps a screen position to the nearest character boundary
// using frame. A position left of a line's first boundary or right of its
// last clamps to that end; a position above the frame lands on its first
// line, one below it on the end of its last line, which is the end of the
// document when the frame reaches it.
func (m *Mapper) ScreenToPoint(x, y float64, frame layout.Frame) (buffer.Point, error) {
	if err := frame.Validate(); err != nil {
		return buffer.Point{}, err
	}
	i, below := frame.At(y)
	if i < 0 {
		return buffer.Point{}, fmt.Errorf("empty frame: %w", ErrNoLayout)
	}
	lm := frame.Lines[i]
	chars, err := m.check(lm)
	if err != nil {
		return buffer.Point{}, err
	}
	if below {
		return buffer.Point{Line: lm.Line, Column: uint32(chars)}, nil
	}
	return buffer.Point{Line: lm.Line, Column: lm.ColumnAt(x)}, nil
}

// PointToScreen returns the top-left screen position of the caret at p,
// after clamping p to the document.
func (m *Mapper) PointToScreen(p buffer.Point, frame layout.Frame) (x, y float64, err error) {
	if err := frame.Validate(); err != nil {
		return 0, 0, err
	}
	p = m.ClampPoint(p)
	lm, top, ok := frame.Find(p.Line)
	if !ok {
		return 0, 0, fmt.Errorf("line %d: %w", p.Line, ErrNoLayout)
	}
	if _, err := m.check(lm); err != nil {
		return 0, 0, err
	}
	return lm.X(p.Column), top, nil
}

// check validates metrics against the current text of their line and
// returns the line's character count.
func (m *Mapper) check(lm layout.LineMetrics) (int, error) {
	if lm.Line >= m.src.LineCount() {
		return 0, fmt.Errorf("line %d past end of document: %w", lm.Line, layout.ErrMetricsMismatch)
	}
	chars := utf8.RuneCountInString(m.src.LineText(lm.Line))
	if err := lm.Validate(chars); err != nil {
		return 0, err
	}
	return chars, nil
}

// UpdateLayout records the metrics of the visible lines. Later Cached
// conversions treat frame's first line as the top of the screen.
func (m *Mapper) UpdateLayout(frame layout.Frame) error {
	if err := frame.Validate(); err != nil {
		return err
	}
	for _, lm := range frame.Lines {
		if _, err := m.check(lm); err != nil {
			return err
		}
	}
	for _, lm := range frame.Lines {
		m.cache.Put(lm, m.src.LineText(lm.Line))
	}
	if first, ok := frame.First(); ok {
		m.top = first
	}
	m.originY = frame.OriginY
	return nil
}

// ApplyChange updates stored metrics after ch has been applied to the
// source: lines the edit touched are dropped and later lines renumbered.
func (m *Mapper) ApplyChange(ch buffer.Change) {
	if ch.IsNoOp() {
		return
	}
	start := m.src.OffsetToPoint(ch.NewRange.Start).Line
	removed := uint32(strings.Count(ch.OldText, "\n"))
	added := uint32(strings.Count(ch.NewText, "\n"))

	m.cache.InvalidateRange(start, start+removed)
	m.cache.ShiftLines(start+removed+1, int(added)-int(removed))

	switch {
	case m.top > start+removed:
		m.top = m.top + added - removed
	case m.top > start:
		m.top = min(m.top, start+added)
	}
}

// Top returns the first visible line recorded by UpdateLayout.
func (m *Mapper) Top() uint32 { return m.top }

// CacheStats reports metrics cache counters.
func (m *Mapper) CacheStats() layout.CacheStats { return m.cache.Stats() }

// cachedFrame stacks stored metrics downward from the top line until
// done reports the frame is tall enough, a line is missing or the
// document ends. complete reports that the frame reached the last line.
func (m *Mapper) cachedFrame(done func(f layout.Frame, bottom float64) bool) (f layout.Frame, complete bool) {
	f.OriginY = m.originY
	bottom := m.originY
	count := m.src.LineCount()
	for line := m.top; line < count; line++ {
		lm, ok := m.cache.Get(line, m.src.LineText(line))
		if !ok {
			return f, false
		}
		f.Lines = append(f.Lines, lm)
		bottom += lm.Height
		if done(f, bottom) {
			return f, line == count-1
		}
	}
	return f, true
}

// ScreenToPointCached is ScreenToPoint over the metrics stored by
// UpdateLayout.
func (m *Mapper) ScreenToPointCached(x, y float64) (buffer.Point, error) {
	f, complete := m.cachedFrame(func(_ layout.Frame, bottom float64) bool {
		return y < bottom
	})
	if len(f.Lines) == 0 {
		return buffer.Point{}, fmt.Errorf("line %d: %w", m.top, ErrNoLayout)
	}
	if _, below := f.At(y); below && !complete {
		last := f.Lines[len(f.Lines)-1].Line
		return buffer.Point{}, fmt.Errorf("line %d: %w", last+1, ErrNoLayout)
	}
	return m.ScreenToPoint(x, y, f)
}

// PointToScreenCached is PointToScreen over the metrics stored by
// UpdateLayout.
func (m *Mapper) PointToScreenCached(p buffer.Point) (x, y float64, err error) {
	p = m.ClampPoint(p)
	if p.Line < m.top {
		return 0, 0, fmt.Errorf("line %d above top line %d: %w", p.Line, m.top, ErrNoLayout)
	}
	f, _ := m.cachedFrame(func(f layout.Frame, _ float64) bool {
		return f.Lines[len(f.Lines)-1].Line >= p.Line
	})
	return m.PointToScreen(p, f)
}
