// Package markdown tokenizes markdown text into an immutable token tree.
//
// Top-level tokens are blocks (paragraphs, headings, code blocks, list
// items, tables, block quotes, thematic breaks) and runs of blank lines.
// Together they cover the whole document with no gaps; each block's
// range includes its trailing newline. Inline tokens (strong, emphasis,
// code spans, links, ...) nest inside the block that holds them.
//
// Parsing never fails. Constructs that do not close, such as a lone **
// or an unmatched backtick, are kept as plain Text and counted in
// Tree.Degraded.
//
// After an edit, Reparse re-tokenizes only the affected neighbourhood
// and returns a new Tree. Large documents can be parsed with ParsePrefix,
// which leaves a pending token over the tail; Start tokenizes the tail on
// a goroutine and Fill merges the result.
package markdown
