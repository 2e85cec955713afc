package stack

import (
	"fmt"
	"math"

	"github.com/agiangrant/stacknav/anim"
	"github.com/agiangrant/stacknav/gesture"
)

// Route is one entry of the navigation state. Keys are stable and unique.
type Route struct {
	Key     string
	Name    string
	Options Options
}

// State is the externally owned navigation state: the ordered routes and
// the index of the focused one. Routes after Index are not displayed.
type State struct {
	Routes []Route
	Index  int
}

// HeaderRenderer renders a custom header. The container never calls it; it
// is handed to the host with the header props.
type HeaderRenderer func(props HeaderProps) string

// TransitionSpecs overrides the open and close transitions of a route. A nil
// field falls back to the container default.
type TransitionSpecs struct {
	Open  anim.Spec
	Close anim.Spec
}

// Options are the per-route presentation options. Pointer fields
// distinguish "unset" from the zero value; unset options take the screen
// defaults from Config and then the container defaults.
type Options struct {
	Title       string
	HeaderTitle string

	HeaderShown       *bool
	HeaderTransparent bool
	Header            HeaderRenderer

	GestureEnabled          *bool
	GestureDirection        string
	GestureResponseDistance *float64
	GestureVelocityImpact   *float64

	TransitionSpec          *TransitionSpecs
	CardStyleInterpolator   string
	HeaderStyleInterpolator string

	CardOverlayEnabled *bool
	CardShadowEnabled  *bool
}

// IsHeaderShown reports the headerShown option, which defaults to true.
func (o Options) IsHeaderShown() bool {
	return o.HeaderShown == nil || *o.HeaderShown
}

// HeaderTitleFor resolves the title shown for a route: HeaderTitle, then
// Title, then the route name.
func (o Options) HeaderTitleFor(name string) string {
	if o.HeaderTitle != "" {
		return o.HeaderTitle
	}
	if o.Title != "" {
		return o.Title
	}
	return name
}

// Merge returns o with unset fields taken from defaults.
func (o Options) Merge(defaults Options) Options {
	if o.Title == "" {
		o.Title = defaults.Title
	}
	if o.HeaderTitle == "" {
		o.HeaderTitle = defaults.HeaderTitle
	}
	if o.HeaderShown == nil {
		o.HeaderShown = defaults.HeaderShown
	}
	if !o.HeaderTransparent {
		o.HeaderTransparent = defaults.HeaderTransparent
	}
	if o.Header == nil {
		o.Header = defaults.Header
	}
	if o.GestureEnabled == nil {
		o.GestureEnabled = defaults.GestureEnabled
	}
	if o.GestureDirection == "" {
		o.GestureDirection = defaults.GestureDirection
	}
	if o.GestureResponseDistance == nil {
		o.GestureResponseDistance = defaults.GestureResponseDistance
	}
	if o.GestureVelocityImpact == nil {
		o.GestureVelocityImpact = defaults.GestureVelocityImpact
	}
	if o.TransitionSpec == nil {
		o.TransitionSpec = defaults.TransitionSpec
	}
	if o.CardStyleInterpolator == "" {
		o.CardStyleInterpolator = defaults.CardStyleInterpolator
	}
	if o.HeaderStyleInterpolator == "" {
		o.HeaderStyleInterpolator = defaults.HeaderStyleInterpolator
	}
	if o.CardOverlayEnabled == nil {
		o.CardOverlayEnabled = defaults.CardOverlayEnabled
	}
	if o.CardShadowEnabled == nil {
		o.CardShadowEnabled = defaults.CardShadowEnabled
	}
	return o
}

// Validate checks option values that cannot be clamped.
func (o Options) Validate() error {
	if o.GestureDirection != "" {
		if _, err := gesture.ParseDirection(o.GestureDirection); err != nil {
			return &ConfigError{Field: "gesture_direction", Reason: fmt.Sprintf("unknown direction %q", o.GestureDirection)}
		}
	}
	if d := o.GestureResponseDistance; d != nil && (*d < 0 || math.IsNaN(*d)) {
		return &ConfigError{Field: "gesture_response_distance", Reason: fmt.Sprintf("must not be negative, got %g", *d)}
	}
	if v := o.GestureVelocityImpact; v != nil && (*v < 0 || math.IsNaN(*v)) {
		return &ConfigError{Field: "gesture_velocity_impact", Reason: fmt.Sprintf("must not be negative, got %g", *v)}
	}
	if name := o.CardStyleInterpolator; name != "" && !IsCardInterpolator(name) {
		return &ConfigError{Field: "card_style_interpolator", Reason: fmt.Sprintf("unknown interpolator %q", name)}
	}
	if name := o.HeaderStyleInterpolator; name != "" && !IsHeaderInterpolator(name) {
		return &ConfigError{Field: "header_style_interpolator", Reason: fmt.Sprintf("unknown interpolator %q", name)}
	}
	if ts := o.TransitionSpec; ts != nil {
		if err := validateSpec("transition_spec.open", ts.Open); err != nil {
			return err
		}
		if err := validateSpec("transition_spec.close", ts.Close); err != nil {
			return err
		}
	}
	return nil
}

func validateSpec(field string, spec anim.Spec) error {
	v, ok := spec.(interface{ Validate() error })
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		return &ConfigError{Field: field, Reason: err.Error()}
	}
	return nil
}

// Descriptor is a route with its resolved options.
type Descriptor struct {
	Route   Route
	Options Options
}

// Bool returns a pointer to b, for option literals.
func Bool(b bool) *bool { return &b }

// Float returns a pointer to f, for option literals.
func Float(f float64) *float64 { return &f }
