package engine

import (
	"github.com/dshills/hybridmd/internal/engine/buffer"
	"github.com/dshills/hybridmd/internal/engine/cursor"
	"github.com/dshills/hybridmd/internal/event"
	"github.com/dshills/hybridmd/internal/markdown"
)

// Execute runs one command to completion. On error the document, cursor
// and selection are unchanged.
func (e *Engine) Execute(cmd Command) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return Result{}, &CommandError{Cmd: cmd, Err: ErrClosed}
	}
	ch, copied, err := e.dispatchLocked(cmd)
	if err != nil {
		err = &CommandError{Cmd: cmd, Err: err}
		e.emit(event.TopicCommandFailed, event.Fields{
			"command": cmd.Kind.String(),
			"error":   err.Error(),
		})
		return Result{}, err
	}

	res := Result{Text: copied}
	if !ch.IsNoOp() {
		res.Change = ch
		res.Changed = true
		res.Span = e.applyLocked(ch)
	}

	modes := e.resolveLocked()
	if !modes.Equal(e.modes) || res.Changed {
		e.emit(event.TopicModesResolved, event.Fields{
			"raw":    len(modes.Raw()),
			"cursor": int64(e.doc.Cursor()),
		})
	}
	e.modes = modes

	res.Cursor = e.doc.Cursor()
	res.Selection = e.doc.Selection()
	res.Modes = modes
	res.Revision = e.doc.Buffer().Revision()
	return res, nil
}

func (e *Engine) dispatchLocked(cmd Command) (ch buffer.Change, copied string, err error) {
	d := e.doc
	switch cmd.Kind {
	case CmdInsertText:
		ch, err = d.ReplaceSelection(cmd.Text)
	case CmdPaste:
		ch, err = d.Paste(cmd.Text)
	case CmdDeleteRange:
		ch, err = d.Delete(buffer.NewRange(cmd.Anchor, cmd.Head))
	case CmdDeleteBackward:
		ch, err = d.DeleteBackward()
	case CmdDeleteForward:
		ch, err = d.DeleteForward()
	case CmdDeleteWord:
		if cmd.Direction == cursor.Backward {
			ch, err = d.DeleteWordBackward()
		} else {
			ch, err = d.DeleteWordForward()
		}
	case CmdDeleteToLineBoundary:
		if cmd.Direction == cursor.Backward {
			ch, err = d.DeleteToLineStart()
		} else {
			ch, err = d.DeleteToLineEnd()
		}
	case CmdDeleteLine:
		ch, err = d.DeleteLine()
	case CmdCut:
		copied, ch, err = d.Cut()
	case CmdCopy:
		copied = d.Copy()
	case CmdMoveCursor:
		d.MoveCursor(cmd.Unit, cmd.Direction)
	case CmdExtendSelection:
		d.ExtendSelection(cmd.Unit, cmd.Direction)
	case CmdSetSelection:
		d.SetSelection(cmd.Anchor, cmd.Head)
	case CmdSetCursor:
		d.SetCursor(cmd.Anchor)
	case CmdSelectAll:
		d.SelectAll()
	case CmdCollapseSelection:
		d.CollapseSelection()
	case CmdToggleFormatting:
		ch, err = e.toggleLocked(cmd.Format)
	default:
		err = ErrUnknownCommand
	}
	return ch, copied, err
}

// applyLocked brings everything derived from the text up to date after
// ch: the token tree, the mapper, the change log and the background task.
func (e *Engine) applyLocked(ch buffer.Change) markdown.Span {
	old := e.tree.Load()
	t, span := old.ReparseSource(e.doc.Snapshot(), ch)
	e.tree.Store(t)
	e.mapper.ApplyChange(ch)
	e.log.Record(ch)

	e.emit(event.TopicDocumentChanged, event.Fields{
		"revision": ch.Revision,
		"start":    int64(ch.OldRange.Start),
		"removed":  int64(ch.OldRange.Len()),
		"inserted": int64(ch.NewRange.Len()),
	})
	e.emit(event.TopicTokensReparsed, event.Fields{
		"old_start": int64(span.Old.Start),
		"old_end":   int64(span.Old.End),
		"new_start": int64(span.New.Start),
		"new_end":   int64(span.New.End),
		"tokens":    t.NumTokens(),
	})
	if t.Degraded() > 0 && t.Degraded() != old.Degraded() {
		e.emit(event.TopicTokensDegraded, event.Fields{"count": t.Degraded()})
	}
	e.rescheduleLocked(old, t, ch)
	return span
}
