package stack

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/agiangrant/stacknav/anim"
	"github.com/agiangrant/stacknav/card"
	"github.com/agiangrant/stacknav/gesture"
)

// HeaderMode selects how headers are laid out.
type HeaderMode string

const (
	// HeaderFloat renders one floating header layer shared by the
	// transitioning pair.
	HeaderFloat HeaderMode = "float"
	// HeaderScreen renders each header inside its card, without animation.
	HeaderScreen HeaderMode = "screen"
)

// CardMode selects the presentation of cards.
type CardMode string

const (
	ModeCard  CardMode = "card"
	ModeModal CardMode = "modal"
)

// Presentation defaults.
const (
	DefaultHeaderHeight = 44
	DefaultWindow       = 3
)

// Config configures a Container.
type Config struct {
	HeaderMode HeaderMode
	Mode       CardMode

	// DefaultHeaderHeight is used until a header reports its measured
	// height. The top inset is added to it.
	DefaultHeaderHeight float64

	// Window is how many displayed routes stay mounted.
	Window int

	Gesture        gesture.Config
	GestureEnabled bool
	Open           anim.Spec
	Close          anim.Spec
	Settle         anim.Settle
	Epsilon        float64

	CardStyleInterpolator   string
	HeaderStyleInterpolator string

	// ScreenOptions are defaults for every route. Screens holds defaults by
	// route name and takes precedence over ScreenOptions.
	ScreenOptions Options
	Screens       map[string]Options

	Logger *slog.Logger
}

// DefaultConfig returns a floating-header card stack with timing
// transitions and edge swipe enabled.
func DefaultConfig() Config {
	return Config{
		HeaderMode:              HeaderFloat,
		Mode:                    ModeCard,
		DefaultHeaderHeight:     DefaultHeaderHeight,
		Window:                  DefaultWindow,
		Gesture:                 gesture.DefaultConfig(),
		GestureEnabled:          true,
		Open:                    anim.DefaultTimingSpec(),
		Close:                   anim.DefaultTimingSpec(),
		Settle:                  anim.DefaultSettle(),
		Epsilon:                 card.DefaultEpsilon,
		CardStyleInterpolator:   CardHorizontal,
		HeaderStyleInterpolator: HeaderUIKit,
	}
}

// Validate fails fast on settings the container would otherwise clamp.
func (c Config) Validate() error {
	switch c.HeaderMode {
	case HeaderFloat, HeaderScreen:
	default:
		return &ConfigError{Field: "header_mode", Reason: fmt.Sprintf("unknown header mode %q", c.HeaderMode)}
	}
	switch c.Mode {
	case ModeCard, ModeModal:
	default:
		return &ConfigError{Field: "mode", Reason: fmt.Sprintf("unknown card mode %q", c.Mode)}
	}
	if invalidLength(c.DefaultHeaderHeight) {
		return &ConfigError{Field: "default_header_height", Reason: fmt.Sprintf("must not be negative, got %g", c.DefaultHeaderHeight)}
	}
	if c.Window < 1 {
		return &ConfigError{Field: "window", Reason: fmt.Sprintf("must be at least 1, got %d", c.Window)}
	}
	if err := c.Gesture.Validate(); err != nil {
		return fmt.Errorf("stack: %w", err)
	}
	if c.Open == nil || c.Close == nil {
		return &ConfigError{Field: "transition", Reason: "open and close specs are required"}
	}
	if err := validateSpec("transition.open", c.Open); err != nil {
		return err
	}
	if err := validateSpec("transition.close", c.Close); err != nil {
		return err
	}
	if c.Settle.Epsilon < 0 || c.Settle.RestVelocity < 0 {
		return &ConfigError{Field: "settle", Reason: "thresholds must not be negative"}
	}
	if c.Epsilon < 0 || c.Epsilon > 1 || math.IsNaN(c.Epsilon) {
		return &ConfigError{Field: "epsilon", Reason: fmt.Sprintf("must be within [0, 1], got %g", c.Epsilon)}
	}
	if !IsCardInterpolator(c.CardStyleInterpolator) {
		return &ConfigError{Field: "card_style_interpolator", Reason: fmt.Sprintf("unknown interpolator %q", c.CardStyleInterpolator)}
	}
	if !IsHeaderInterpolator(c.HeaderStyleInterpolator) {
		return &ConfigError{Field: "header_style_interpolator", Reason: fmt.Sprintf("unknown interpolator %q", c.HeaderStyleInterpolator)}
	}
	if err := c.ScreenOptions.Validate(); err != nil {
		return fmt.Errorf("screen options: %w", err)
	}
	for name, o := range c.Screens {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("screen %s: %w", name, err)
		}
	}
	return nil
}

// resolve merges route options over the screen defaults.
func (c Config) resolve(r Route) Descriptor {
	o := r.Options.Merge(c.Screens[r.Name]).Merge(c.ScreenOptions)
	return Descriptor{Route: r, Options: o}
}

// cardInterpolator returns the card style interpolator name for o.
func (c Config) cardInterpolator(o Options) string {
	if o.CardStyleInterpolator != "" {
		return o.CardStyleInterpolator
	}
	if c.Mode == ModeModal && c.CardStyleInterpolator == CardHorizontal {
		return CardModalPresentation
	}
	return c.CardStyleInterpolator
}

// headerInterpolator returns the header style interpolator name for o.
func (c Config) headerInterpolator(o Options) string {
	if o.HeaderStyleInterpolator != "" {
		return o.HeaderStyleInterpolator
	}
	return c.HeaderStyleInterpolator
}

// cardConfig builds the card state machine settings for a descriptor.
// Options were validated by SetState.
func (c Config) cardConfig(d Descriptor) card.Config {
	o := d.Options
	cfg := card.Config{
		Gesture:        c.Gesture,
		GestureEnabled: c.GestureEnabled,
		Open:           c.Open,
		Close:          c.Close,
		Settle:         c.Settle,
		Epsilon:        c.Epsilon,
	}

	switch {
	case o.GestureDirection != "":
		cfg.Gesture.Direction, _ = gesture.ParseDirection(o.GestureDirection)
		cfg.Gesture.ResponseDistance = 0
	case isVerticalInterpolator(c.cardInterpolator(o)) && !cfg.Gesture.Direction.IsVertical():
		cfg.Gesture.Direction = gesture.Vertical
		cfg.Gesture.ResponseDistance = 0
	}
	if o.GestureResponseDistance != nil {
		cfg.Gesture.ResponseDistance = *o.GestureResponseDistance
	}
	if o.GestureVelocityImpact != nil {
		cfg.Gesture.VelocityImpact = *o.GestureVelocityImpact
	}
	if o.GestureEnabled != nil {
		cfg.GestureEnabled = *o.GestureEnabled
	}
	if ts := o.TransitionSpec; ts != nil {
		if ts.Open != nil {
			cfg.Open = ts.Open
		}
		if ts.Close != nil {
			cfg.Close = ts.Close
		}
	}
	return cfg
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}
