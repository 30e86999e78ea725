package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/hybridmd/internal/engine"
	"github.com/dshills/hybridmd/internal/engine/buffer"
	"github.com/dshills/hybridmd/internal/engine/tracking"
	"github.com/dshills/hybridmd/internal/markdown"
)

// DefaultReloadDelay coalesces the bursts of events editors produce when
// they save.
const DefaultReloadDelay = 50 * time.Millisecond

// Reload describes one reload of a watched file.
type Reload struct {
	Changed  bool
	Change   buffer.Change
	Span     markdown.Span
	Revision uint64
}

// String formats the reload as printed by the watch command.
func (r Reload) String() string {
	if !r.Changed {
		return "unchanged"
	}
	return fmt.Sprintf("revision %d: %s, reparsed %s -> %s",
		r.Revision, r.Change, r.Span.Old, r.Span.New)
}

// Watcher reloads a document when its file changes on disk and reports
// the part of the token tree that was re-read.
type Watcher struct {
	doc   *Document
	out   io.Writer
	log   *Logger
	delay time.Duration
	ready chan struct{}
}

// NewWatcher creates a watcher printing one line per reload to out.
func NewWatcher(doc *Document, out io.Writer, log *Logger) *Watcher {
	if log == nil {
		log = NullLogger
	}
	return &Watcher{
		doc:   doc,
		out:   out,
		log:   log.WithComponent("watch"),
		delay: DefaultReloadDelay,
		ready: make(chan struct{}),
	}
}

// SetDelay sets how long the watcher waits for events to settle.
func (w *Watcher) SetDelay(d time.Duration) {
	if d > 0 {
		w.delay = d
	}
}

// Ready is closed once the file's directory is being watched.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Reload reads the file again and applies the difference to the engine
// as a single edit, so the tokenizer re-reads only the blocks around it.
// The selection is carried across the edit.
func (w *Watcher) Reload() (Reload, error) {
	text, err := readText(w.doc.Path)
	switch {
	case errors.Is(err, errInvalidUTF8):
		w.log.Warn("%s: invalid UTF-8 replaced", w.doc.Path)
	case err != nil:
		return Reload{}, NewOperationError("reload", w.doc.Path, err).WithContext("read")
	}
	text = buffer.NewBufferFromString(text, w.doc.bufOpts...).Text()

	eng := w.doc.Engine
	edit := tracking.Diff(eng.Text(), text)
	if edit.IsNoOp() {
		return Reload{Revision: eng.Revision()}, nil
	}

	sel := eng.Selection()
	if _, err := eng.Execute(engine.SetSelection(edit.Range.Start, edit.Range.End)); err != nil {
		return Reload{}, NewOperationError("reload", w.doc.Path, err).WithContext("select " + edit.Range.String())
	}
	res, err := eng.Execute(engine.InsertText(edit.Text))
	if err != nil {
		return Reload{}, NewOperationError("reload", w.doc.Path, err).WithContext("apply")
	}
	ch := res.Change
	if _, err := eng.Execute(engine.SetSelection(ch.MapOffset(sel.Anchor), ch.MapOffset(sel.Head))); err != nil {
		return Reload{}, NewOperationError("reload", w.doc.Path, err).WithContext("restore selection")
	}
	w.doc.MarkSaved()

	return Reload{
		Changed:  res.Changed,
		Change:   ch,
		Span:     res.Span,
		Revision: res.Revision,
	}, nil
}

// Run watches the file until ctx is done. The directory is watched rather
// than the file so that editors replacing the file by rename are seen.
func (w *Watcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.doc.Path)
	if err != nil {
		return NewOperationError("watch", w.doc.Path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return NewOperationError("watch", w.doc.Path, err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return NewOperationError("watch", w.doc.Path, err).WithContext(filepath.Dir(abs))
	}
	close(w.ready)
	w.log.Info("watching %s", abs)

	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.log.Debug("file event %s", ev.Op)
			timer.Reset(w.delay)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error: %v", err)

		case <-timer.C:
			r, err := w.Reload()
			if err != nil {
				// A rename-based save can leave the file briefly absent.
				w.log.Warn("reload failed: %v", err)
				continue
			}
			if !r.Changed {
				continue
			}
			if _, err := fmt.Fprintln(w.out, r); err != nil {
				return err
			}
		}
	}
}
