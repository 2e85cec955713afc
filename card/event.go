package card

import "fmt"

// EventKind identifies a card event.
type EventKind uint8

const (
	// EventTransitionStart fires when an animation toward open or closed
	// begins. Gesture is set when a gesture release or cancel started it.
	EventTransitionStart EventKind = iota + 1
	// EventOpened fires when the card settles open.
	EventOpened
	// EventClosed fires when the card settles closed.
	EventClosed
	// EventGestureBegin fires when a swipe takes over the card.
	EventGestureBegin
	// EventGestureEnd fires when the swipe is released.
	EventGestureEnd
	// EventGestureCanceled fires when the swipe is aborted.
	EventGestureCanceled
	// EventPointerEvents fires when the hit-test mode flips.
	EventPointerEvents
)

func (k EventKind) String() string {
	switch k {
	case EventTransitionStart:
		return "transition-start"
	case EventOpened:
		return "opened"
	case EventClosed:
		return "closed"
	case EventGestureBegin:
		return "gesture-begin"
	case EventGestureEnd:
		return "gesture-end"
	case EventGestureCanceled:
		return "gesture-canceled"
	case EventPointerEvents:
		return "pointer-events"
	default:
		return fmt.Sprintf("EventKind(%d)", k)
	}
}

// Event is something that happened to a card.
type Event struct {
	Kind          EventKind
	Closing       bool
	Gesture       bool
	PointerEvents PointerEvents
}

// Listener receives card events synchronously on the UI loop.
type Listener interface {
	CardEvent(c *Card, e Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(c *Card, e Event)

// CardEvent implements Listener.
func (f ListenerFunc) CardEvent(c *Card, e Event) { f(c, e) }
