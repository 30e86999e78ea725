package markdown

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// Fragment is the tokenized tail of a document, produced off the editing
// goroutine to replace a tree's pending token.
type Fragment struct {
	base ByteOffset
	end  ByteOffset
	b    *builder
}

// Range returns the text range the fragment was tokenized from.
func (f *Fragment) Range() Range { return Range{Start: f.base, End: f.end} }

// Degraded returns how many malformed constructs the fragment holds.
func (f *Fragment) Degraded() int { return f.b.degraded }

// ParseFrom tokenizes text[from:]. from must be a block boundary, such as
// the start of a pending token. It returns ctx.Err() if cancelled.
func ParseFrom(ctx context.Context, text string, from ByteOffset) (*Fragment, error) {
	b := &builder{src: text, ctx: ctx}
	b.blocks(int(from), len(text))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Fragment{base: from, end: ByteOffset(len(text)), b: b}, nil
}

// Fill returns a tree with the pending token replaced by f. It reports
// false, returning t, when t has no pending token or f covers a
// different amount of text than it does.
func (t *Tree) Fill(f *Fragment) (*Tree, bool) {
	p, ok := t.Pending()
	if !ok || p.Len() != f.end-f.base {
		return t, false
	}
	a := t.nroots - 1
	return t.splice(a, a, f.b, p.Start-f.base, 0, t.length), true
}

// Task tokenizes a pending tail on its own goroutine. It delivers its
// result exactly once, unless cancelled first.
type Task struct {
	ID   uuid.UUID
	From ByteOffset

	cancel    context.CancelFunc
	cancelled atomic.Bool
	done      chan struct{}

	frag *Fragment
	err  error
}

// Start launches a task tokenizing text[from:]. deliver, if non-nil, is
// called from the task goroutine with the result unless the task was
// cancelled. A cancel racing with delivery may still see deliver run, so
// receivers should check the task is still the one they expect.
func Start(ctx context.Context, text string, from ByteOffset, deliver func(*Task, *Fragment)) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		ID:     uuid.New(),
		From:   from,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		defer cancel()
		t.frag, t.err = ParseFrom(ctx, text, from)
		if t.err == nil && deliver != nil && !t.cancelled.Load() {
			deliver(t, t.frag)
		}
	}()
	return t
}

// Cancel stops the task.
func (t *Task) Cancel() {
	t.cancelled.Store(true)
	t.cancel()
}

// Cancelled reports whether Cancel was called.
func (t *Task) Cancelled() bool { return t.cancelled.Load() }

// Done is closed when the task goroutine exits.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task exits and returns its result.
func (t *Task) Wait() (*Fragment, error) {
	<-t.done
	return t.frag, t.err
}
