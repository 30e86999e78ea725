// Package buffer wraps the rope with validated editing, revision tracking
// and the position types shared by the rest of the engine.
//
// Every offset handed to a mutating method must be a character boundary
// in [0, Len]. Violations return an *OffsetError that matches
// ErrInvalidOffset and leave the buffer untouched.
//
//	b := buffer.NewBufferFromString("**bold**")
//	ch, err := b.Insert(2, "very ")
//	// ch.OldRange == [2:2), ch.NewRange == [2:7)
//
// Point columns count characters, not bytes.
package buffer
