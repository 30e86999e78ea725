// Package viewport tracks which document lines are on screen.
package viewport

import "sync"

// DefaultMargin is the number of lines kept between the cursor and the
// top or bottom edge when scrolling to reveal it.
const DefaultMargin = 3

// Viewport represents the visible rows of the document. Lines are never
// wrapped, so each line takes one row.
type Viewport struct {
	mu sync.RWMutex

	// First visible line.
	topLine uint32

	// Size in rows.
	height int

	// Scroll margin (keep the cursor this far from the edges).
	margin int

	// Number of lines in the document. 0 means unknown.
	lineCount uint32
}

// New creates a viewport with the given height and scroll margin.
// Height is clamped to a minimum of 1 to prevent underflow.
func New(height, margin int) *Viewport {
	if height < 1 {
		height = 1
	}
	if margin < 0 {
		margin = 0
	}
	return &Viewport{height: height, margin: margin}
}

// Height returns the viewport height.
func (v *Viewport) Height() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.height
}

// TopLine returns the first visible line.
func (v *Viewport) TopLine() uint32 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.topLine
}

// Resize updates the height and re-clamps the top line.
func (v *Viewport) Resize(height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if height < 1 {
		height = 1
	}
	v.height = height
	v.topLine = v.clamp(int64(v.topLine))
}

// SetLineCount sets the number of lines in the document.
func (v *Viewport) SetLineCount(n uint32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lineCount = n
	v.topLine = v.clamp(int64(v.topLine))
}

// VisibleLineRange returns the visible lines as [start, end).
func (v *Viewport) VisibleLineRange() (start, end uint32) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	end = v.topLine + uint32(v.height)
	if v.lineCount > 0 && end > v.lineCount {
		end = v.lineCount
	}
	return v.topLine, end
}

// LineToRow returns the screen row of line, and false when it is not
// visible.
func (v *Viewport) LineToRow(line uint32) (int, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if line < v.topLine || line >= v.topLine+uint32(v.height) {
		return 0, false
	}
	return int(line - v.topLine), true
}

// ScrollTo makes line the first visible line, within bounds.
func (v *Viewport) ScrollTo(line uint32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.topLine = v.clamp(int64(line))
}

// ScrollBy scrolls by delta lines, negative to go up.
func (v *Viewport) ScrollBy(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.topLine = v.clamp(int64(v.topLine) + int64(delta))
}

// PageUp scrolls up by one screen, keeping one line of overlap.
func (v *Viewport) PageUp() {
	v.ScrollBy(-v.page())
}

// PageDown scrolls down by one screen, keeping one line of overlap.
func (v *Viewport) PageDown() {
	v.ScrollBy(v.page())
}

func (v *Viewport) page() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return max(v.height-1, 1)
}

// ScrollToReveal scrolls minimally to bring line into view with the
// margin around it. Returns true if scrolling occurred.
func (v *Viewport) ScrollToReveal(line uint32) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	// A margin over half the height would make both edges pull at once.
	margin := int64(min(v.margin, (v.height-1)/2))
	top := int64(v.topLine)
	l := int64(line)
	target := top
	switch {
	case l < top+margin:
		target = l - margin
	case l > top+int64(v.height)-1-margin:
		target = l - int64(v.height) + 1 + margin
	}
	next := v.clamp(target)
	if next == v.topLine {
		return false
	}
	v.topLine = next
	return true
}

// clamp bounds a top line so that the last line can reach the bottom
// row but no further.
func (v *Viewport) clamp(top int64) uint32 {
	if v.lineCount > 0 {
		if limit := int64(v.lineCount) - int64(v.height); top > limit {
			top = limit
		}
	}
	if top < 0 {
		return 0
	}
	return uint32(top)
}
