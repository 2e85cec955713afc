package anim

import (
	"sync"
	"time"
)

// stepper is anything the registry can drive frame by frame.
type stepper interface {
	ID() AnimationID
	advance(now time.Time) bool
	complete()
}

// Registry tracks running animators and steps them once per frame. The host
// loop uses HasActive (or OnActiveChange) to decide when frames are needed.
type Registry struct {
	mu     sync.RWMutex
	active []stepper

	// Callback when animation state changes (for the loop to know when to
	// switch between idle and 60 FPS)
	onActiveChange func(hasActive bool)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// OnActiveChange sets the callback for when animations become active/inactive.
func (r *Registry) OnActiveChange(fn func(hasActive bool)) {
	r.mu.Lock()
	r.onActiveChange = fn
	r.mu.Unlock()
}

// Add registers an animator. Adding one that is already registered is a no-op.
func (r *Registry) Add(s stepper) {
	r.mu.Lock()
	if r.indexOf(s.ID()) >= 0 {
		r.mu.Unlock()
		return
	}
	wasEmpty := len(r.active) == 0
	r.active = append(r.active, s)
	callback := r.onActiveChange
	r.mu.Unlock()

	// Notify if we went from no animations to having animations
	if wasEmpty && callback != nil {
		callback(true)
	}
}

// Remove unregisters an animator.
func (r *Registry) Remove(id AnimationID) {
	r.mu.Lock()
	i := r.indexOf(id)
	if i < 0 {
		r.mu.Unlock()
		return
	}
	r.active = append(r.active[:i], r.active[i+1:]...)
	isEmpty := len(r.active) == 0
	callback := r.onActiveChange
	r.mu.Unlock()

	// Notify if we went from having animations to none
	if isEmpty && callback != nil {
		callback(false)
	}
}

// HasActive returns true if there are any running animations.
func (r *Registry) HasActive() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active) > 0
}

// Count returns the number of running animations.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}

// Tick advances every running animator to now, removing the ones that
// settled. Settle callbacks run after all animators have advanced and outside
// the lock, so they may start or stop animations. Returns true if any
// animations are still active.
func (r *Registry) Tick(now time.Time) bool {
	r.mu.RLock()
	snapshot := make([]stepper, len(r.active))
	copy(snapshot, r.active)
	r.mu.RUnlock()

	var settled []stepper
	for _, s := range snapshot {
		// An earlier animator's listeners may have stopped this one.
		if !r.contains(s.ID()) {
			continue
		}
		if s.advance(now) {
			r.Remove(s.ID())
			settled = append(settled, s)
		}
	}

	for _, s := range settled {
		s.complete()
	}

	return r.HasActive()
}

func (r *Registry) contains(id AnimationID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOf(id) >= 0
}

func (r *Registry) indexOf(id AnimationID) int {
	for i, s := range r.active {
		if s.ID() == id {
			return i
		}
	}
	return -1
}
