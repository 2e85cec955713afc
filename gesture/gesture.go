// Package gesture turns pointer movement on a screen edge into card
// progress and decides, on release, whether the card opens or closes.
//
// Displacements and velocities passed in are raw pointer deltas along the
// gesture axis in layout units (pixels). Progress and progress velocity
// coming out are normalised to the card size.
package gesture

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrOutsideEdge is returned by Begin when the touch did not start inside
	// the activation edge.
	ErrOutsideEdge = errors.New("gesture: touch outside activation edge")

	// ErrNotTracking is returned when samples arrive without a Begin.
	ErrNotTracking = errors.New("gesture: no gesture in progress")

	// ErrOutOfOrder is returned for samples whose timestamp does not advance.
	ErrOutOfOrder = errors.New("gesture: sample timestamp not increasing")

	// ErrInProgress is returned by Begin while another gesture is tracked.
	ErrInProgress = errors.New("gesture: gesture already in progress")
)

// Direction is the axis and sense of the dismiss gesture.
type Direction uint8

const (
	Horizontal Direction = iota
	HorizontalInverted
	Vertical
	VerticalInverted
)

// ParseDirection parses the option spelling of a direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "horizontal", "":
		return Horizontal, nil
	case "horizontal-inverted":
		return HorizontalInverted, nil
	case "vertical":
		return Vertical, nil
	case "vertical-inverted":
		return VerticalInverted, nil
	default:
		return Horizontal, &ConfigError{Field: "direction", Reason: fmt.Sprintf("unknown gesture direction %q", s)}
	}
}

func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "horizontal"
	case HorizontalInverted:
		return "horizontal-inverted"
	case Vertical:
		return "vertical"
	case VerticalInverted:
		return "vertical-inverted"
	default:
		return fmt.Sprintf("Direction(%d)", d)
	}
}

// IsVertical reports whether the gesture runs along the y axis.
func (d Direction) IsVertical() bool {
	return d == Vertical || d == VerticalInverted
}

// Multiplier is +1 when dismissing moves toward larger coordinates and -1
// for the inverted directions.
func (d Direction) Multiplier() float64 {
	if d == HorizontalInverted || d == VerticalInverted {
		return -1
	}
	return 1
}

func (d Direction) valid() bool {
	return d <= VerticalInverted
}

// Default edge widths, matching platform back-swipe regions.
const (
	DefaultHorizontalResponseDistance = 50
	DefaultVerticalResponseDistance   = 135
	DefaultMinDistance                = 5
	DefaultVelocityImpact             = 0.3
)

// Config tunes a Sampler.
type Config struct {
	Direction Direction

	// ResponseDistance is the width of the activation edge. Zero selects the
	// default for the direction.
	ResponseDistance float64

	// MinDistance is how far the pointer must travel before the gesture
	// takes over the card.
	MinDistance float64

	// VelocityImpact scales how much release velocity counts toward the
	// decision. The velocity that alone decides the outcome is
	// 0.5/VelocityImpact card sizes per second. Zero disables it.
	VelocityImpact float64
}

// DefaultConfig returns the default edge swipe configuration.
func DefaultConfig() Config {
	return Config{
		Direction:      Horizontal,
		MinDistance:    DefaultMinDistance,
		VelocityImpact: DefaultVelocityImpact,
	}
}

// Validate fails on values that would otherwise have to be clamped.
func (c Config) Validate() error {
	if !c.Direction.valid() {
		return &ConfigError{Field: "direction", Reason: fmt.Sprintf("unknown gesture direction %d", c.Direction)}
	}
	if c.ResponseDistance < 0 || math.IsNaN(c.ResponseDistance) {
		return &ConfigError{Field: "response_distance", Reason: fmt.Sprintf("must not be negative, got %g", c.ResponseDistance)}
	}
	if c.MinDistance < 0 || math.IsNaN(c.MinDistance) {
		return &ConfigError{Field: "min_distance", Reason: fmt.Sprintf("must not be negative, got %g", c.MinDistance)}
	}
	if c.VelocityImpact < 0 || math.IsNaN(c.VelocityImpact) {
		return &ConfigError{Field: "velocity_impact", Reason: fmt.Sprintf("must not be negative, got %g", c.VelocityImpact)}
	}
	return nil
}

// EdgeWidth returns the effective activation edge width.
func (c Config) EdgeWidth() float64 {
	if c.ResponseDistance > 0 {
		return c.ResponseDistance
	}
	if c.Direction.IsVertical() {
		return DefaultVerticalResponseDistance
	}
	return DefaultHorizontalResponseDistance
}

// VelocityThreshold returns the release speed, in progress units per second,
// at which velocity alone decides the outcome.
func (c Config) VelocityThreshold() float64 {
	if c.VelocityImpact == 0 {
		return math.Inf(1)
	}
	return 0.5 / c.VelocityImpact
}

// ConfigError describes an invalid gesture setting.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("gesture %s: %s", e.Field, e.Reason)
}
