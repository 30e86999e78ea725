package engine

import (
	"context"

	"github.com/dshills/hybridmd/internal/engine/buffer"
	"github.com/dshills/hybridmd/internal/event"
)

// Default configuration values.
const (
	DefaultBackgroundThreshold = 256 << 10
	DefaultVisibleBytes        = 64 << 10
	DefaultLayoutCacheLines    = 4096
	DefaultChangeLogSize       = 1024
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithContent sets the initial content.
func WithContent(content string) Option {
	return func(e *Engine) {
		e.initContent = content
	}
}

// WithSink sets where diagnostic events go.
func WithSink(s event.Sink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithBackground enables background tokenization for documents longer
// than threshold bytes, tokenizing roughly the first visible bytes up
// front. A threshold of 0 disables it.
func WithBackground(threshold, visible int64) Option {
	return func(e *Engine) {
		e.threshold = max(threshold, 0)
		e.visible = max(visible, 0)
	}
}

// WithBufferOptions passes normalization options to the document buffer.
func WithBufferOptions(opts ...buffer.Option) Option {
	return func(e *Engine) {
		e.bufOpts = append(e.bufOpts, opts...)
	}
}

// WithLayoutCacheLines bounds the number of lines whose layout metrics
// are kept (0 = unlimited).
func WithLayoutCacheLines(n int) Option {
	return func(e *Engine) {
		e.cacheLines = max(n, 0)
	}
}

// WithContext sets the parent context of background tasks.
func WithContext(ctx context.Context) Option {
	return func(e *Engine) {
		if ctx != nil {
			e.ctx = ctx
		}
	}
}
