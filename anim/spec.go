package anim

import (
	"fmt"
	"math"
	"time"
)

// Curve is a lazily evaluated animation. At is called with increasing
// elapsed times, once per frame.
type Curve interface {
	At(elapsed time.Duration) (position, velocity float64, done bool)
}

// Spec builds curves. Velocities are in value units per second.
type Spec interface {
	Curve(from, to, velocity float64) Curve
}

// ============================================================================
// Timing
// ============================================================================

// TimingSpec is a time based transition following an easing curve.
type TimingSpec struct {
	Duration time.Duration // default: 250ms
	Easing   EasingFunc    // default: EaseOutCubic
}

// DefaultTimingSpec returns the default time based transition.
func DefaultTimingSpec() TimingSpec {
	return TimingSpec{
		Duration: 250 * time.Millisecond,
		Easing:   EaseOutCubic,
	}
}

// Validate reports a negative duration.
func (s TimingSpec) Validate() error {
	if s.Duration < 0 {
		return fmt.Errorf("timing duration must not be negative, got %s", s.Duration)
	}
	return nil
}

// Curve implements Spec.
func (s TimingSpec) Curve(from, to, velocity float64) Curve {
	easing := s.Easing
	if easing == nil {
		easing = EaseOutCubic
	}
	return &timingCurve{
		from:     from,
		to:       to,
		velocity: velocity,
		duration: s.Duration,
		easing:   easing,
	}
}

// timingCurve blends the eased path with a Hermite term u(1-u)^2 so an
// inherited velocity decays smoothly to zero at the end of the duration.
type timingCurve struct {
	from, to float64
	velocity float64
	duration time.Duration
	easing   EasingFunc
}

func (c *timingCurve) At(elapsed time.Duration) (float64, float64, bool) {
	if c.duration <= 0 || elapsed >= c.duration {
		return c.to, 0, true
	}
	if elapsed < 0 {
		elapsed = 0
	}
	seconds := c.duration.Seconds()
	u := float64(elapsed) / float64(c.duration)
	delta := c.to - c.from

	h := u * (1 - u) * (1 - u)
	dh := (1-u)*(1-u) - 2*u*(1-u)

	position := c.from + delta*c.easing(u) + c.velocity*seconds*h
	velocity := (delta*slope(c.easing, u))/seconds + c.velocity*dh
	return position, velocity, false
}

// ============================================================================
// Spring
// ============================================================================

// SpringSpec is a physics based transition. The defaults match the iOS
// navigation spring: heavily overdamped with overshoot clamping.
type SpringSpec struct {
	Stiffness                 float64
	Damping                   float64
	Mass                      float64
	OvershootClamping         bool
	RestDisplacementThreshold float64
	RestSpeedThreshold        float64
}

// DefaultSpringSpec returns the default spring.
func DefaultSpringSpec() SpringSpec {
	return SpringSpec{
		Stiffness:                 1000,
		Damping:                   500,
		Mass:                      3,
		OvershootClamping:         true,
		RestDisplacementThreshold: 0.03,
		RestSpeedThreshold:        0.03,
	}
}

// Validate reports non-physical parameters.
func (s SpringSpec) Validate() error {
	if s.Stiffness <= 0 {
		return fmt.Errorf("spring stiffness must be positive, got %g", s.Stiffness)
	}
	if s.Damping < 0 {
		return fmt.Errorf("spring damping must not be negative, got %g", s.Damping)
	}
	if s.Mass <= 0 {
		return fmt.Errorf("spring mass must be positive, got %g", s.Mass)
	}
	if s.RestDisplacementThreshold < 0 || s.RestSpeedThreshold < 0 {
		return fmt.Errorf("spring rest thresholds must not be negative")
	}
	return nil
}

// Curve implements Spec.
func (s SpringSpec) Curve(from, to, velocity float64) Curve {
	return &springCurve{
		spec:     s,
		from:     from,
		to:       to,
		v0:       velocity,
		position: from,
		velocity: velocity,
	}
}

// springStep is the fixed integration step.
const springStep = time.Millisecond

// springCurve integrates with semi-implicit Euler, advancing only as far as
// the requested elapsed time.
type springCurve struct {
	spec     SpringSpec
	from, to float64
	v0       float64

	simulated time.Duration
	position  float64
	velocity  float64
	done      bool
}

func (c *springCurve) At(elapsed time.Duration) (float64, float64, bool) {
	if elapsed < c.simulated {
		c.simulated = 0
		c.position = c.from
		c.velocity = c.v0
		c.done = false
	}
	for !c.done && c.simulated < elapsed {
		dt := springStep
		if rest := elapsed - c.simulated; rest < dt {
			dt = rest
		}
		c.step(dt.Seconds())
		c.simulated += dt
	}
	if c.done {
		return c.to, 0, true
	}
	return c.position, c.velocity, false
}

func (c *springCurve) step(dt float64) {
	s := c.spec
	force := -s.Stiffness*(c.position-c.to) - s.Damping*c.velocity
	c.velocity += force / s.Mass * dt
	c.position += c.velocity * dt

	if s.OvershootClamping && c.from != c.to {
		if (c.from < c.to && c.position > c.to) || (c.from > c.to && c.position < c.to) {
			c.done = true
			return
		}
	}
	if math.Abs(c.velocity) <= s.RestSpeedThreshold && math.Abs(c.position-c.to) <= s.RestDisplacementThreshold {
		c.done = true
	}
}

// ============================================================================
// Requests
// ============================================================================

// Initiator records what asked for a transition.
type Initiator uint8

const (
	ByImperative Initiator = iota
	ByGesture
)

func (i Initiator) String() string {
	if i == ByGesture {
		return "gesture"
	}
	return "imperative"
}

// Request asks an animator to move to Target. A nil VelocityHint keeps the
// animator's current velocity.
type Request struct {
	Target       float64
	InitiatedBy  Initiator
	VelocityHint *float64
}

// Settle decides when an animation counts as finished short of its curve
// completing.
type Settle struct {
	Epsilon      float64 // distance to target, default 0.1
	RestVelocity float64 // speed below which a near animation settles, default 0.01
}

// DefaultSettle returns the default settling policy.
func DefaultSettle() Settle {
	return Settle{Epsilon: 0.1, RestVelocity: 0.01}
}
