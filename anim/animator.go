package anim

import (
	"math"
	"sync/atomic"
	"time"
)

// AnimationID uniquely identifies an animator within a process.
type AnimationID uint64

var nextAnimationID atomic.Uint64

func newAnimationID() AnimationID {
	return AnimationID(nextAnimationID.Add(1))
}

// Animator is the single writer of a Value. It runs at most one curve at a
// time; starting another retargets from the current position and velocity.
type Animator struct {
	id       AnimationID
	value    *Value
	settle   Settle
	registry *Registry

	curve   Curve
	started time.Time
	target  float64
	running bool

	velocity  float64
	trackedAt time.Time

	onSettle func(target float64)
}

// NewAnimator creates an animator owning a new value at initial. When
// registry is non-nil, running animators are stepped by Registry.Tick.
func NewAnimator(initial float64, settle Settle, registry *Registry) *Animator {
	return &Animator{
		id:       newAnimationID(),
		value:    NewValue(clamp(initial, 0, 1)),
		settle:   settle,
		registry: registry,
		target:   initial,
	}
}

// ID returns the animator's identifier.
func (a *Animator) ID() AnimationID { return a.id }

// Progress returns the read-only view of the driven value.
func (a *Animator) Progress() Progress { return a.value }

// Position returns the current value.
func (a *Animator) Position() float64 { return a.value.current }

// Velocity returns the last known velocity in units per second.
func (a *Animator) Velocity() float64 { return a.velocity }

// Target returns the target of the current or last animation.
func (a *Animator) Target() float64 { return a.target }

// Running reports whether a curve is in flight.
func (a *Animator) Running() bool { return a.running }

// OnSettle sets the callback fired once per animation that reaches its target.
// Interrupted animations never fire it.
func (a *Animator) OnSettle(fn func(target float64)) {
	a.onSettle = fn
}

// AnimateTo starts a curve toward req.Target. A running curve is replaced
// without moving the value, so the transition stays continuous.
func (a *Animator) AnimateTo(now time.Time, req Request, spec Spec) {
	velocity := a.velocity
	if req.VelocityHint != nil {
		velocity = *req.VelocityHint
	}
	a.curve = spec.Curve(a.value.current, req.Target, velocity)
	a.started = now
	a.target = req.Target
	a.velocity = velocity
	if !a.running {
		a.running = true
		if a.registry != nil {
			a.registry.Add(a)
		}
	}
}

// Track writes a position directly, as a gesture does. Any running curve is
// stopped and the velocity is estimated from consecutive tracked positions.
func (a *Animator) Track(now time.Time, position float64) {
	a.stopCurve()
	position = clamp(position, 0, 1)
	if !a.trackedAt.IsZero() {
		if dt := now.Sub(a.trackedAt).Seconds(); dt > 0 {
			a.velocity = (position - a.value.current) / dt
		}
	}
	a.trackedAt = now
	a.value.set(position)
}

// Jump moves to position with zero velocity and no animation.
func (a *Animator) Jump(position float64) {
	a.Stop()
	a.velocity = 0
	a.target = position
	a.value.set(clamp(position, 0, 1))
}

// Hold stops the running curve and restarts velocity tracking from velocity,
// as a gesture taking over a moving value does.
func (a *Animator) Hold(velocity float64) {
	a.Stop()
	a.velocity = velocity
}

// Stop halts the running curve where it is. The settle callback does not fire.
func (a *Animator) Stop() {
	a.trackedAt = time.Time{}
	a.stopCurve()
}

func (a *Animator) stopCurve() {
	if !a.running {
		return
	}
	a.running = false
	a.curve = nil
	if a.registry != nil {
		a.registry.Remove(a.id)
	}
}

// Step advances the curve to now and fires the settle callback when it
// completes. Returns true once the animation has settled.
func (a *Animator) Step(now time.Time) bool {
	if !a.advance(now) {
		return false
	}
	a.complete()
	return true
}

// advance moves the value without firing callbacks.
func (a *Animator) advance(now time.Time) bool {
	if !a.running {
		return false
	}
	position, velocity, done := a.curve.At(now.Sub(a.started))
	a.velocity = velocity

	near := math.Abs(position-a.target) < a.settle.Epsilon && math.Abs(velocity) < a.settle.RestVelocity
	if done || near {
		a.running = false
		a.curve = nil
		a.velocity = 0
		a.value.set(clamp(a.target, 0, 1))
		return true
	}
	a.value.set(clamp(position, 0, 1))
	return false
}

// complete fires the settle callback for a curve that finished in advance.
// A curve restarted in between, for example by another animator's settle
// listener in the same Tick, has not settled and is left running.
func (a *Animator) complete() {
	if a.running {
		return
	}
	if a.registry != nil {
		a.registry.Remove(a.id)
	}
	if a.onSettle != nil {
		a.onSettle(a.target)
	}
}
