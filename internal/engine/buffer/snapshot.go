package buffer

import "github.com/dshills/hybridmd/internal/engine/rope"

// Snapshot is a read-only view of a buffer at one revision. It never
// changes and may be read from any goroutine.
type Snapshot struct {
	rope     rope.Rope
	revision uint64
}

// Text returns the full content.
func (s Snapshot) Text() string { return s.rope.String() }

// Slice returns the text in [start, end).
func (s Snapshot) Slice(start, end ByteOffset) string { return s.rope.Slice(start, end) }

// Len returns the byte length.
func (s Snapshot) Len() ByteOffset { return s.rope.Len() }

// Revision returns the buffer revision the snapshot was taken at.
func (s Snapshot) Revision() uint64 { return s.revision }

// Rope exposes the underlying rope for position queries.
func (s Snapshot) Rope() rope.Rope { return s.rope }
