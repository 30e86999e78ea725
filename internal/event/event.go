// Package event carries structured diagnostics out of the editing core.
//
// The core never logs or consults global switches. Whoever creates an
// engine passes it a Sink; diagnostics are on when that sink does
// something with them. Sinks here cover the common cases: discard (Nop),
// fan-out with topic patterns (Bus), JSON lines (JSONLSink) and capture
// for tests (Recorder).
package event

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidTopic is returned when subscribing with an empty or malformed
// pattern.
var ErrInvalidTopic = errors.New("invalid topic")

// Fields holds an event's payload. Values should be JSON-encodable.
type Fields map[string]any

// Event is one structured diagnostic.
type Event struct {
	ID     uuid.UUID
	Topic  Topic
	Time   time.Time
	Source string
	Fields Fields
}

// New creates an event stamped with a fresh ID and the current time.
func New(topic Topic, source string, fields Fields) Event {
	return Event{
		ID:     uuid.New(),
		Topic:  topic,
		Time:   time.Now(),
		Source: source,
		Fields: fields,
	}
}

// Sink receives events. Emit must not block for long: the engine calls it
// on the editing goroutine.
type Sink interface {
	Emit(e Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(e Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) { f(e) }

// Nop discards every event.
var Nop Sink = SinkFunc(func(Event) {})

// Multi emits to each sink in turn.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(e Event) {
		for _, s := range sinks {
			s.Emit(e)
		}
	})
}

// Recorder keeps every event it receives. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit records e.
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events, optionally only those
// matching pattern.
func (r *Recorder) Events(pattern Topic) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if pattern == "" || e.Topic.Matches(pattern) {
			out = append(out, e)
		}
	}
	return out
}

// Topics returns the topics of the recorded events in order.
func (r *Recorder) Topics() []Topic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Topic, len(r.events))
	for i, e := range r.events {
		out[i] = e.Topic
	}
	return out
}

// Reset drops the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
