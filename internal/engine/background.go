package engine

import (
	"github.com/dshills/hybridmd/internal/engine/buffer"
	"github.com/dshills/hybridmd/internal/event"
	"github.com/dshills/hybridmd/internal/markdown"
)

func (e *Engine) startTaskLocked(text string, from buffer.ByteOffset) {
	task := markdown.Start(e.ctx, text, from, e.deliver)
	e.task = task
	e.emit(event.TopicBackgroundStarted, event.Fields{
		"task": task.ID.String(),
		"from": int64(from),
	})
}

// deliver merges a finished fragment if its task is still current.
func (e *Engine) deliver(task *markdown.Task, f *markdown.Fragment) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.task != task || task.Cancelled() {
		e.emit(event.TopicBackgroundDiscarded, event.Fields{"task": task.ID.String()})
		return
	}
	e.task = nil
	t, ok := e.tree.Load().Fill(f)
	if !ok {
		e.emit(event.TopicBackgroundDiscarded, event.Fields{
			"task":   task.ID.String(),
			"reason": "pending region changed",
		})
		if p, ok := e.tree.Load().Pending(); ok {
			e.startTaskLocked(e.doc.Text(), p.Start)
		}
		return
	}
	e.tree.Store(t)
	e.modes = e.resolveLocked()
	e.emit(event.TopicBackgroundMerged, event.Fields{
		"task":     task.ID.String(),
		"tokens":   t.NumTokens(),
		"degraded": t.Degraded(),
	})
}

func (e *Engine) stopTaskLocked(reason string) {
	if e.task == nil {
		return
	}
	e.task.Cancel()
	e.emit(event.TopicBackgroundCancelled, event.Fields{
		"task":   e.task.ID.String(),
		"reason": reason,
	})
	e.task = nil
}

// rescheduleLocked keeps the running task when the edit left the pending
// tail untouched, and otherwise restarts it over the new tail.
func (e *Engine) rescheduleLocked(old, t *markdown.Tree, ch buffer.Change) {
	op, hadPending := old.Pending()
	np, hasPending := t.Pending()
	if e.task != nil && hadPending && hasPending &&
		ch.OldRange.End < op.Start && np.Len() == op.Len() {
		return
	}
	e.stopTaskLocked("edit reached pending text")
	if hasPending {
		e.startTaskLocked(e.doc.Text(), np.Start)
	}
}

// WaitBackground blocks until the current background task, if any, has
// finished and been merged or discarded.
func (e *Engine) WaitBackground() {
	for {
		e.mu.Lock()
		task := e.task
		e.mu.Unlock()
		if task == nil {
			return
		}
		<-task.Done()

		e.mu.Lock()
		if e.task == task {
			// Exited without delivering.
			e.task = nil
		}
		e.mu.Unlock()
	}
}

// Background reports whether a background task is running.
func (e *Engine) Background() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.task != nil
}
