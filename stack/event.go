package stack

import (
	"fmt"
	"strings"
)

// EventKind identifies a navigator event.
type EventKind uint8

const (
	EventOpenRoute EventKind = iota + 1
	EventCloseRoute
	EventTransitionStart
	EventTransitionEnd
	EventPageChangeStart
	EventPageChangeConfirm
	EventPageChangeCancel
	EventGestureStart
	EventGestureEnd
	EventGestureCancel
	EventHeaderHeightChange
)

var eventNames = map[EventKind]string{
	EventOpenRoute:          "open-route",
	EventCloseRoute:         "close-route",
	EventTransitionStart:    "transition-start",
	EventTransitionEnd:      "transition-end",
	EventPageChangeStart:    "page-change-start",
	EventPageChangeConfirm:  "page-change-confirm",
	EventPageChangeCancel:   "page-change-cancel",
	EventGestureStart:       "gesture-start",
	EventGestureEnd:         "gesture-end",
	EventGestureCancel:      "gesture-cancel",
	EventHeaderHeightChange: "header-height-change",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", k)
}

// Event is published to the navigator. Route is always set. Closing is
// meaningful for transition events, Force for page-change-confirm and Height
// for header-height-change.
type Event struct {
	Kind    EventKind
	Route   Route
	Closing bool
	Force   bool
	Height  float64
}

func (e Event) String() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteByte(' ')
	b.WriteString(e.Route.Key)
	switch e.Kind {
	case EventTransitionStart, EventTransitionEnd:
		fmt.Fprintf(&b, " closing=%t", e.Closing)
	case EventPageChangeConfirm:
		fmt.Fprintf(&b, " force=%t", e.Force)
	case EventHeaderHeightChange:
		fmt.Fprintf(&b, " height=%g", e.Height)
	}
	return b.String()
}

// Listener receives events synchronously on the UI loop. A returned error
// does not stop delivery; the container joins them and returns them from
// the operation that produced the events.
type Listener interface {
	HandleEvent(e Event) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(e Event) error

// HandleEvent implements Listener.
func (f ListenerFunc) HandleEvent(e Event) error { return f(e) }

// Recorder is a Listener that keeps every event. Fail, when set, supplies
// the error returned for an event.
type Recorder struct {
	Events []Event
	Fail   func(e Event) error
}

// HandleEvent implements Listener.
func (r *Recorder) HandleEvent(e Event) error {
	r.Events = append(r.Events, e)
	if r.Fail != nil {
		return r.Fail(e)
	}
	return nil
}

// Kinds returns the recorded event kinds in order.
func (r *Recorder) Kinds() []EventKind {
	out := make([]EventKind, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Kind
	}
	return out
}

// For returns the events of one route.
func (r *Recorder) For(key string) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Route.Key == key {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many events of kind were recorded for key. An empty key
// counts every route.
func (r *Recorder) Count(kind EventKind, key string) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == kind && (key == "" || e.Route.Key == key) {
			n++
		}
	}
	return n
}

// Reset drops the recorded events.
func (r *Recorder) Reset() {
	r.Events = r.Events[:0]
}
