package anim

import "math"

// EasingFunc defines how animation progress maps to value progress.
// Input t is 0-1 (time progress), output is 0-1 (value progress).
type EasingFunc func(t float64) float64

// Common easing functions
var (
	// EaseLinear - constant speed
	EaseLinear EasingFunc = func(t float64) float64 { return t }

	// EaseInQuad - accelerate from zero
	EaseInQuad EasingFunc = func(t float64) float64 { return t * t }

	// EaseOutQuad - decelerate to zero
	EaseOutQuad EasingFunc = func(t float64) float64 { return t * (2 - t) }

	// EaseInOutQuad - accelerate then decelerate
	EaseInOutQuad EasingFunc = func(t float64) float64 {
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t
	}

	// EaseOutCubic - smooth deceleration, the default for card transitions
	EaseOutCubic EasingFunc = func(t float64) float64 {
		t--
		return t*t*t + 1
	}

	// EaseInOutCubic - smooth acceleration and deceleration
	EaseInOutCubic EasingFunc = func(t float64) float64 {
		if t < 0.5 {
			return 4 * t * t * t
		}
		return (t-1)*(2*t-2)*(2*t-2) + 1
	}

	// EaseOutBack - slight overshoot then settle
	EaseOutBack EasingFunc = func(t float64) float64 {
		c1 := 1.70158
		c3 := c1 + 1
		return 1 + c3*(t-1)*(t-1)*(t-1) + c1*(t-1)*(t-1)
	}

	// EaseOutExpo - fast start, long tail. Close to the platform
	// navigation curve on Android.
	EaseOutExpo EasingFunc = func(t float64) float64 {
		if t >= 1 {
			return 1
		}
		return 1 - math.Pow(2, -10*t)
	}
)

// EasingByName returns the easing function for a given name.
// Returns nil if the name is unknown.
func EasingByName(name string) EasingFunc {
	switch name {
	case "linear":
		return EaseLinear
	case "ease-in":
		return EaseInQuad
	case "ease-out":
		return EaseOutQuad
	case "ease", "ease-in-out":
		return EaseInOutQuad
	case "cubic", "ease-out-cubic":
		return EaseOutCubic
	case "ease-in-out-cubic":
		return EaseInOutCubic
	case "back":
		return EaseOutBack
	case "expo":
		return EaseOutExpo
	default:
		return nil
	}
}

// slope estimates the derivative of an easing curve at t with a central
// difference clamped to [0, 1].
func slope(fn EasingFunc, t float64) float64 {
	const h = 1e-4
	lo := clamp(t-h, 0, 1)
	hi := clamp(t+h, 0, 1)
	if hi == lo {
		return 0
	}
	return (fn(hi) - fn(lo)) / (hi - lo)
}

// clamp restricts a value to a range.
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
