// Package mode decides, per token, whether the renderer shows formatted
// preview or raw markdown source.
//
// Resolve is a pure function of the token tree, the cursor and the
// selection. It reads only the tokens on the path to the cursor or those
// overlapping the selection, so it is cheap enough to call on every
// cursor movement. Callers that want to suppress flicker during rapid
// movement should throttle how often they call it.
package mode

import (
	"slices"

	"github.com/dshills/hybridmd/internal/engine/buffer"
	"github.com/dshills/hybridmd/internal/markdown"
)

// Mode is how one token is displayed.
type Mode uint8

const (
	// Preview renders the token formatted, without its markers.
	Preview Mode = iota
	// Raw renders the token's source text.
	Raw
)

func (m Mode) String() string {
	if m == Raw {
		return "raw"
	}
	return "preview"
}

// Decision maps every token of one tree to a Mode. Tokens not listed as
// raw are in preview.
type Decision struct {
	raw []markdown.TokenID
}

// Mode returns the mode of id.
func (d Decision) Mode(id markdown.TokenID) Mode {
	if _, ok := slices.BinarySearch(d.raw, id); ok {
		return Raw
	}
	return Preview
}

// Raw returns the raw tokens in ascending ID order, which is document
// pre-order. The slice must not be modified.
func (d Decision) Raw() []markdown.TokenID { return d.raw }

// Equal reports whether two decisions assign the same modes.
func (d Decision) Equal(o Decision) bool { return slices.Equal(d.raw, o.raw) }

// Resolve computes display modes for t.
//
// With a non-empty selection every token overlapping it is raw. Otherwise
// the innermost token at cursor is raw, using the end-exclusive lookup of
// Tree.Lookup. Either way, a raw token takes its nearest opaque ancestor
// (itself included) raw with it, along with everything under that
// ancestor. Opaque tokens further out stay in preview. Containers such as block
// quotes, list items and tables never escalate, so their children resolve
// independently. Code blocks are single tokens and so change mode whole.
func Resolve(t *markdown.Tree, cursor buffer.ByteOffset, sel buffer.Range) Decision {
	var hits []markdown.TokenID
	if !sel.IsEmpty() {
		hits = t.Overlapping(sel)
	} else if id := t.Lookup(cursor); id != markdown.NoToken {
		hits = []markdown.TokenID{id}
	}
	if len(hits) == 0 {
		return Decision{}
	}

	var raw []markdown.TokenID
	escalated := make(map[markdown.TokenID]bool)
	for _, id := range hits {
		raw = append(raw, id)
		top := t.Nearest(id, opaque)
		if top == markdown.NoToken || escalated[top] {
			continue
		}
		escalated[top] = true
		first, end := t.Descendants(top)
		raw = append(raw, top)
		for d := first; d < end; d++ {
			raw = append(raw, d)
		}
	}
	slices.Sort(raw)
	return Decision{raw: slices.Compact(raw)}
}

func opaque(tok markdown.Token) bool { return tok.Kind.Opaque() }
