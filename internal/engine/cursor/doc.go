// Package cursor provides the selection value type, offset transforms
// applied when the text under a selection changes, and cursor motions.
//
// A Selection is {Anchor, Head}. Head is the cursor; when Anchor == Head
// there is no selection. Selections are values: every operation returns a
// new one.
//
// Motions resolve against a Source (normally *buffer.Buffer) and always
// clamp to [0, Len]. Character motion steps whole grapheme clusters and
// word motion follows Unicode word segmentation, both via
// github.com/rivo/uniseg.
package cursor
