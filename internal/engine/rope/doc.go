// Package rope provides an immutable B+ tree rope for document text.
//
// Leaves hold bounded UTF-8 chunks; every node caches a TextSummary with
// byte, character and newline counts for its subtree. Queries that map
// between byte offsets, character indices and line numbers descend the
// tree by summary and only scan a single chunk, so they run in
// O(log n + chunk size).
//
// Ropes are values. Insert, Delete and friends return a new rope that
// shares unchanged subtrees with the original, which makes snapshots free
// and allows concurrent readers without locking.
//
//	r := rope.FromString("# Title\n\nbody")
//	r = r.Insert(2, "My ")
//	p := r.OffsetToPoint(r.Len()) // {Line: 2, Column: 4}
package rope
