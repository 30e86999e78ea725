package event

import (
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
)

// Priority orders handlers. Lower values run first.
type Priority int

const (
	PriorityCritical Priority = 0
	PriorityHigh     Priority = 100
	PriorityNormal   Priority = 200
	PriorityLow      Priority = 300
)

// Handler processes an event.
type Handler func(e Event)

// PanicHandler is told about a handler that panicked. The bus keeps
// delivering to the remaining handlers.
type PanicHandler func(e Event, recovered any, stack []byte)

// Subscription identifies a registered handler.
type Subscription struct {
	id       uint64
	pattern  Topic
	priority Priority
	handler  Handler
}

// Pattern returns the topic pattern the subscription matches.
func (s *Subscription) Pattern() Topic { return s.pattern }

// Bus delivers each event synchronously to every handler whose pattern
// matches its topic, in priority order. It implements Sink.
type Bus struct {
	mu      sync.RWMutex
	subs    []*Subscription
	nextID  uint64
	onPanic PanicHandler

	published atomic.Uint64
	delivered atomic.Uint64
	panics    atomic.Uint64
}

// NewBus creates an empty bus. onPanic may be nil.
func NewBus(onPanic PanicHandler) *Bus {
	return &Bus{onPanic: onPanic}
}

// Subscribe registers h for topics matching pattern.
func (b *Bus) Subscribe(pattern Topic, priority Priority, h Handler) (*Subscription, error) {
	if !pattern.IsValid() {
		return nil, fmt.Errorf("subscribe %q: %w", pattern, ErrInvalidTopic)
	}
	if h == nil {
		return nil, fmt.Errorf("subscribe %q: nil handler", pattern)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	s := &Subscription{id: b.nextID, pattern: pattern, priority: priority, handler: h}
	b.subs = append(b.subs, s)
	sort.SliceStable(b.subs, func(i, j int) bool { return b.subs[i].priority < b.subs[j].priority })
	return s, nil
}

// Unsubscribe removes s. It reports whether s was registered.
func (b *Bus) Unsubscribe(s *Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, x := range b.subs {
		if x.id == s.id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Emit delivers e to the matching handlers.
func (b *Bus) Emit(e Event) {
	b.published.Add(1)
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if e.Topic.Matches(s.pattern) {
			subs = append(subs, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(e, s)
	}
}

func (b *Bus) deliver(e Event, s *Subscription) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			if b.onPanic != nil {
				b.onPanic(e, r, debug.Stack())
			}
		}
	}()
	s.handler(e)
	b.delivered.Add(1)
}

// BusStats holds delivery counters.
type BusStats struct {
	Subscriptions int
	Published     uint64
	Delivered     uint64
	Panics        uint64
}

// Stats returns the bus counters.
func (b *Bus) Stats() BusStats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()
	return BusStats{
		Subscriptions: n,
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		Panics:        b.panics.Load(),
	}
}
