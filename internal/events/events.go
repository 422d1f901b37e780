// Package events defines the notifications a picker emits and a few sinks
// for them. The picker decides when to emit; a Notifier decides how the
// notification is delivered.
package events

import (
	"fmt"
	"sync"

	"datepicker/internal/dateval"
)

// Kind identifies a notification.
type Kind int

const (
	Change Kind = iota + 1
	Error
	Update
	Show
	Hide
)

func (k Kind) String() string {
	switch k {
	case Change:
		return "change"
	case Error:
		return "error"
	case Update:
		return "update"
	case Show:
		return "show"
	case Hide:
		return "hide"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is a plain notification payload. Date and OldDate are nil when
// absent (the "false" date of a cleared selection).
type Event struct {
	Kind Kind
	// Picker is the ID of the emitting picker instance.
	Picker  string
	Date    *dateval.Value
	OldDate *dateval.Value
	// Change and ViewDate are set on Update events.
	Change   dateval.Unit
	ViewDate dateval.Value
}

func (e Event) String() string {
	switch e.Kind {
	case Update:
		return fmt.Sprintf("%v change=%q view=%v", e.Kind, e.Change.String(), e.ViewDate)
	case Show:
		return e.Kind.String()
	}
	return fmt.Sprintf("%v date=%v old=%v", e.Kind, str(e.Date), str(e.OldDate))
}

func str(v *dateval.Value) string {
	if v == nil {
		return "false"
	}
	return v.String()
}

// Notifier receives events.
type Notifier interface {
	Notify(Event)
}

// Func adapts a function to Notifier.
type Func func(Event)

func (f Func) Notify(e Event) { f(e) }

// Multi fans an event out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(e Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(e)
		}
	}
}

// Discard drops every event.
var Discard Notifier = Func(func(Event) {})

// Recorder keeps every event it receives. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Kinds returns the kinds of the recorded events in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

// Reset forgets the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
