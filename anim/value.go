package anim

// Progress is the read-only view of an animated value. Cards hand this to
// their neighbours and to header rendering; only the owning Animator writes.
type Progress interface {
	// Value returns the current value.
	Value() float64

	// AddListener registers fn to be called after every change. The returned
	// subscription must be removed when the caller no longer needs updates.
	AddListener(fn func(value float64)) *Subscription
}

type listener struct {
	id uint64
	fn func(float64)
}

// Value is a continuously updating scalar. It is not safe for concurrent use;
// all access happens on the UI loop.
type Value struct {
	current   float64
	listeners []listener
	nextID    uint64
}

// NewValue creates a value starting at initial.
func NewValue(initial float64) *Value {
	return &Value{current: initial}
}

// Value returns the current value.
func (v *Value) Value() float64 {
	return v.current
}

// AddListener registers fn for change notifications.
func (v *Value) AddListener(fn func(value float64)) *Subscription {
	v.nextID++
	v.listeners = append(v.listeners, listener{id: v.nextID, fn: fn})
	return &Subscription{value: v, id: v.nextID}
}

// ListenerCount returns the number of registered listeners.
func (v *Value) ListenerCount() int {
	return len(v.listeners)
}

// set writes a new value and notifies listeners in registration order.
// Listeners may remove themselves (or others) while being notified.
func (v *Value) set(x float64) {
	if x == v.current {
		return
	}
	v.current = x
	snapshot := make([]listener, len(v.listeners))
	copy(snapshot, v.listeners)
	for _, l := range snapshot {
		if v.has(l.id) {
			l.fn(x)
		}
	}
}

func (v *Value) has(id uint64) bool {
	for _, l := range v.listeners {
		if l.id == id {
			return true
		}
	}
	return false
}

func (v *Value) remove(id uint64) {
	for i, l := range v.listeners {
		if l.id == id {
			v.listeners = append(v.listeners[:i], v.listeners[i+1:]...)
			return
		}
	}
}

// Subscription is a handle to a registered listener.
type Subscription struct {
	value *Value
	id    uint64
}

// Remove unregisters the listener. Safe to call more than once and on a nil
// subscription.
func (s *Subscription) Remove() {
	if s == nil || s.value == nil {
		return
	}
	s.value.remove(s.id)
	s.value = nil
}

// Active reports whether the listener is still registered.
func (s *Subscription) Active() bool {
	return s != nil && s.value != nil
}
