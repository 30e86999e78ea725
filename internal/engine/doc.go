// Package engine is the editing session facade for hybridmd.
//
// An Engine owns one document together with everything derived from it:
// the markdown token tree, the coordinate mapper and its layout cache, and
// at most one background tokenization task. Input arrives as Commands
// from the fixed vocabulary (InsertText, DeleteRange, MoveCursor,
// ToggleFormatting, ...). Each command runs to completion on the caller's
// goroutine: the document is edited, the token tree reparsed around the
// edit and published, the mapper told about the change, and the render
// modes resolved for the new cursor and selection.
//
// # Architecture
//
//   - rope: B+ tree rope with byte, character and line summaries
//   - buffer: revisioned text with position types and Change records
//   - cursor: directional selections and Unicode-aware motion
//   - document: text plus cursor and selection
//   - coord: offset, point and screen conversions
//   - tracking: recent change log and single-edit diffs
//
// # Concurrency
//
// Commands must come from one goroutine at a time. The token tree is
// published through an atomic pointer, so Tokens may be called from any
// goroutine and always returns a tree for exactly one document revision.
// The only work done elsewhere is the background tokenization of a large
// document's tail; its result is merged under the engine lock, and an
// edit that reaches the pending tail cancels it and starts a fresh one.
//
// # Diagnostics
//
// The engine never logs. It emits structured events to the event.Sink
// given with WithSink; without one, events are discarded.
package engine
