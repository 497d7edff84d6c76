// Package trace is an append-only sink for the export core's structured
// trace events. It tolerates concurrent writers — the export coordinator
// emits from both the caller's goroutine and its video task's goroutine —
// so every mutation goes through a mutex and the event slice is only ever
// appended to.
package trace

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one structured trace record. Fields are key→string pairs per
// the export coordinator's trace contract.
type Event struct {
	ID     string
	Name   string
	At     time.Time
	Fields map[string]string
}

// Sink collects events from any number of concurrent producers.
type Sink struct {
	mu     sync.Mutex
	events []Event
	now    func() time.Time
}

// NewSink constructs an empty Sink.
func NewSink() *Sink {
	return &Sink{now: time.Now}
}

// Emit appends one event, stamping it with an ID and the current time.
func (s *Sink) Emit(name string, fields map[string]string) Event {
	e := Event{ID: uuid.NewString(), Name: name, At: s.now(), Fields: fields}
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
	return e
}

// Events returns a snapshot copy of every event emitted so far.
func (s *Sink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// F is a small helper for building a trace Event's field map inline at
// call sites, e.g. trace.F("clip_id", clipID, "frame", "42").
func F(kv ...string) map[string]string {
	fields := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}
	return fields
}
