package layout

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// CellShaper measures lines for a character-cell terminal: one row per
// line, grapheme clusters as wide as uniseg reports, tabs expanded to the
// next tab stop.
type CellShaper struct {
	tabWidth int
}

// NewCellShaper creates a shaper with the given tab width.
func NewCellShaper(tabWidth int) *CellShaper {
	if tabWidth < 1 {
		tabWidth = 4
	}
	return &CellShaper{tabWidth: tabWidth}
}

// TabWidth returns the tab width.
func (s *CellShaper) TabWidth() int { return s.tabWidth }

// Shape measures text, a single line without its newline. Boundaries
// inside a multi-character cluster share the cluster's starting x.
func (s *CellShaper) Shape(line uint32, text string) LineMetrics {
	m, _ := s.Layout(line, text, nil)
	return m
}

// Cluster is one grapheme cluster placed on a line.
type Cluster struct {
	Text  string
	Char  int // index of the cluster's first character in the line
	X     int
	Width int
}

// Layout measures text like Shape and also returns the placed clusters.
// Clusters whose first character hidden reports true take no cells and
// are left out; the boundaries around them collapse onto one x.
func (s *CellShaper) Layout(line uint32, text string, hidden func(char int) bool) (LineMetrics, []Cluster) {
	xs := make([]float64, 0, utf8.RuneCountInString(text)+1)
	var clusters []Cluster
	col, char := 0, 0
	state := -1
	rest := text
	for len(rest) > 0 {
		var cluster string
		var width int
		cluster, rest, width, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if cluster == "\t" {
			width = s.tabWidth - col%s.tabWidth
		}
		n := utf8.RuneCountInString(cluster)
		for range n {
			xs = append(xs, float64(col))
		}
		if hidden == nil || !hidden(char) {
			clusters = append(clusters, Cluster{Text: cluster, Char: char, X: col, Width: width})
			col += width
		}
		char += n
	}
	xs = append(xs, float64(col))
	return LineMetrics{Line: line, Height: 1, Xs: xs}, clusters
}
