package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dshills/hybridmd/internal/engine/buffer"
	"github.com/dshills/hybridmd/internal/engine/coord"
	"github.com/dshills/hybridmd/internal/engine/cursor"
	"github.com/dshills/hybridmd/internal/engine/document"
	"github.com/dshills/hybridmd/internal/engine/tracking"
	"github.com/dshills/hybridmd/internal/event"
	"github.com/dshills/hybridmd/internal/markdown"
	"github.com/dshills/hybridmd/internal/renderer/layout"
	"github.com/dshills/hybridmd/internal/renderer/mode"
)

const source = "engine"

// Engine is one editing session over a markdown document.
//
// Events are emitted while the engine lock is held; a Sink must not
// call back into the engine.
type Engine struct {
	mu     sync.Mutex
	doc    *document.Document
	tree   atomic.Pointer[markdown.Tree]
	mapper *coord.Mapper
	log    *tracking.Log
	modes  mode.Decision

	task   *markdown.Task
	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	sink        event.Sink
	threshold   int64
	visible     int64
	cacheLines  int
	bufOpts     []buffer.Option
	initContent string
}

// New creates an engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		sink:       event.Nop,
		threshold:  DefaultBackgroundThreshold,
		visible:    DefaultVisibleBytes,
		cacheLines: DefaultLayoutCacheLines,
		ctx:        context.Background(),
		log:        tracking.NewLog(DefaultChangeLogSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.ctx, e.cancel = context.WithCancel(e.ctx)

	e.mu.Lock()
	e.openLocked(e.initContent)
	e.mu.Unlock()
	return e
}

// Open replaces the document with text. Any background task is
// cancelled, the change log and layout cache are cleared, and the cursor
// moves to the start.
func (e *Engine) Open(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.openLocked(text)
	return nil
}

func (e *Engine) openLocked(text string) {
	e.stopTaskLocked("reopened")
	e.doc = document.FromString(text, e.bufOpts...)
	e.mapper = coord.NewMapper(e.doc.Buffer(), e.cacheLines)
	e.log.Reset()

	// Normalization may have changed the text.
	text = e.doc.Text()
	var t *markdown.Tree
	if e.threshold > 0 && int64(len(text)) > e.threshold {
		t = markdown.ParsePrefix(text, markdown.ByteOffset(e.visible))
	} else {
		t = markdown.Parse(text)
	}
	e.tree.Store(t)
	e.emit(event.TopicDocumentLoaded, event.Fields{
		"bytes":    len(text),
		"lines":    e.doc.Buffer().LineCount(),
		"tokens":   t.NumTokens(),
		"degraded": t.Degraded(),
	})
	if t.Degraded() > 0 {
		e.emit(event.TopicTokensDegraded, event.Fields{"count": t.Degraded()})
	}
	if p, ok := t.Pending(); ok {
		e.startTaskLocked(text, p.Start)
	}
	e.modes = e.resolveLocked()
}

// Close cancels background work and waits for it to stop. Commands
// issued afterwards fail with ErrClosed; reads keep working.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	task := e.task
	e.stopTaskLocked("closed")
	e.cancel()
	e.mu.Unlock()
	if task != nil {
		<-task.Done()
	}
}

// Text returns the document content.
func (e *Engine) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Text()
}

// Len returns the document length in bytes.
func (e *Engine) Len() buffer.ByteOffset {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Len()
}

// Revision returns the document revision.
func (e *Engine) Revision() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Buffer().Revision()
}

// Tokens returns the current token tree. It is safe to call from any
// goroutine and never blocks on edits.
func (e *Engine) Tokens() *markdown.Tree { return e.tree.Load() }

// Cursor returns the cursor offset.
func (e *Engine) Cursor() buffer.ByteOffset {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Cursor()
}

// Selection returns the current selection.
func (e *Engine) Selection() cursor.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Selection()
}

// Modes returns the render modes for the current cursor and selection.
func (e *Engine) Modes() mode.Decision {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.modes
}

// View is a consistent picture of the session at one revision.
type View struct {
	Snapshot  buffer.Snapshot
	Tree      *markdown.Tree
	Selection cursor.Selection
	Modes     mode.Decision
	Top       uint32
}

// View returns the document, tokens, selection and modes together.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return View{
		Snapshot:  e.doc.Snapshot(),
		Tree:      e.tree.Load(),
		Selection: e.doc.Selection(),
		Modes:     e.modes,
		Top:       e.mapper.Top(),
	}
}

// ChangesSince returns the changes applied after revision rev. ok is
// false when some of them are no longer retained.
func (e *Engine) ChangesSince(rev uint64) ([]buffer.Change, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.Since(rev)
}

// OffsetToPoint converts a byte offset to a line and column.
func (e *Engine) OffsetToPoint(offset buffer.ByteOffset) (buffer.Point, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mapper.OffsetToPoint(offset)
}

// PointToOffset converts a point to a byte offset, clamping it into the
// document.
func (e *Engine) PointToOffset(p buffer.Point) buffer.ByteOffset {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mapper.PointToOffset(p)
}

// UpdateLayout records the metrics of the lines the renderer laid out.
func (e *Engine) UpdateLayout(frame layout.Frame) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mapper.UpdateLayout(frame)
}

// ScreenToPoint maps a screen position to a document point using the
// most recent layout.
func (e *Engine) ScreenToPoint(x, y float64) (buffer.Point, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mapper.ScreenToPointCached(x, y)
}

// ScreenToOffset maps a screen position to a byte offset.
func (e *Engine) ScreenToOffset(x, y float64) (buffer.ByteOffset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := e.mapper.ScreenToPointCached(x, y)
	if err != nil {
		return 0, err
	}
	return e.mapper.PointToOffset(p), nil
}

// PointToScreen maps a document point to a screen position using the
// most recent layout.
func (e *Engine) PointToScreen(p buffer.Point) (x, y float64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mapper.PointToScreenCached(p)
}

// LayoutStats returns layout cache statistics.
func (e *Engine) LayoutStats() layout.CacheStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mapper.CacheStats()
}

func (e *Engine) resolveLocked() mode.Decision {
	sel := e.doc.Selection()
	return mode.Resolve(e.tree.Load(), sel.Head, sel.Range())
}

func (e *Engine) emit(topic event.Topic, fields event.Fields) {
	e.sink.Emit(event.New(topic, source, fields))
}
