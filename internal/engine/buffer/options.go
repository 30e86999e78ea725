package buffer

import "golang.org/x/text/unicode/norm"

// Option configures a Buffer.
type Option func(*Buffer)

// WithNewlineNormalization rewrites CRLF and lone CR to LF in loaded and
// inserted text.
func WithNewlineNormalization() Option {
	return func(b *Buffer) {
		b.normalizeNewlines = true
	}
}

// WithNFC keeps the content in Unicode NFC: loaded text is normalized,
// and each edit is normalized together with the text it touches.
func WithNFC() Option {
	return func(b *Buffer) {
		f := norm.NFC
		b.form = &f
	}
}
