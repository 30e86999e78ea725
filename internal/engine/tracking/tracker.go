// Package tracking records applied changes so consumers that poll, such
// as a renderer redrawing at its own cadence, can ask what changed since
// the revision they last saw. It also reduces a whole-text replacement to
// the single edit that produces it.
package tracking

import (
	"sync"

	"github.com/dshills/hybridmd/internal/engine/buffer"
)

// DefaultMaxChanges is the default number of changes kept.
const DefaultMaxChanges = 1024

// Log is a bounded, thread-safe ring of recent changes.
type Log struct {
	mu      sync.RWMutex
	changes []buffer.Change
	head    int
	count   int
}

// NewLog creates a log keeping the last max changes.
func NewLog(max int) *Log {
	if max <= 0 {
		max = DefaultMaxChanges
	}
	return &Log{changes: make([]buffer.Change, max)}
}

// Record appends ch, dropping the oldest change when full.
func (l *Log) Record(ch buffer.Change) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.changes)
	l.changes[(l.head+l.count)%n] = ch
	if l.count < n {
		l.count++
	} else {
		l.head = (l.head + 1) % n
	}
}

// Since returns the changes with a revision after rev, oldest first. ok
// is false when changes after rev have already been dropped, in which
// case the caller must treat everything as changed.
func (l *Log) Since(rev uint64) (changes []buffer.Change, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := len(l.changes)
	if l.count == n && l.changes[l.head].Revision > rev+1 {
		return nil, false
	}
	for i := 0; i < l.count; i++ {
		if ch := l.changes[(l.head+i)%n]; ch.Revision > rev {
			changes = append(changes, ch)
		}
	}
	return changes, true
}

// Len returns the number of changes held.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

// Reset drops every change.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.head, l.count = 0, 0
}
