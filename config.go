package stacknav

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/agiangrant/stacknav/anim"
	"github.com/agiangrant/stacknav/card"
	"github.com/agiangrant/stacknav/gesture"
	"github.com/agiangrant/stacknav/stack"
)

// ConfigNames are the file names FindConfig looks for, in order.
var ConfigNames = []string{"stacknav.toml", "stacknav.yaml", "stacknav.yml"}

// Config represents the stacknav.toml configuration file
type Config struct {
	Stack      StackConfig             `toml:"stack" yaml:"stack"`
	Gesture    GestureConfig           `toml:"gesture" yaml:"gesture"`
	Transition TransitionConfig        `toml:"transition" yaml:"transition"`
	Settle     SettleConfig            `toml:"settle" yaml:"settle"`
	Screens    map[string]ScreenConfig `toml:"screens,omitempty" yaml:"screens,omitempty"`
}

type StackConfig struct {
	// float or screen
	HeaderMode string `toml:"header_mode" yaml:"header_mode"`
	// card or modal
	Mode                    string  `toml:"mode" yaml:"mode"`
	DefaultHeaderHeight     float64 `toml:"default_header_height" yaml:"default_header_height"`
	Window                  int     `toml:"window" yaml:"window"`
	Epsilon                 float64 `toml:"epsilon" yaml:"epsilon"`
	CardStyleInterpolator   string  `toml:"card_style_interpolator" yaml:"card_style_interpolator"`
	HeaderStyleInterpolator string  `toml:"header_style_interpolator" yaml:"header_style_interpolator"`
}

type GestureConfig struct {
	Direction string `toml:"direction" yaml:"direction"`
	// Edge width; 0 picks the default for the direction
	ResponseDistance float64 `toml:"response_distance" yaml:"response_distance"`
	MinDistance      float64 `toml:"min_distance" yaml:"min_distance"`
	VelocityImpact   float64 `toml:"velocity_impact" yaml:"velocity_impact"`
	Enabled          bool    `toml:"enabled" yaml:"enabled"`
}

type TransitionConfig struct {
	Open  SpecConfig `toml:"open" yaml:"open"`
	Close SpecConfig `toml:"close" yaml:"close"`
}

// SpecConfig describes one transition. Type is timing or spring; only the
// fields of that type are read and zero values keep the defaults of that type.
type SpecConfig struct {
	Type string `toml:"type" yaml:"type"`

	DurationMs int    `toml:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
	Easing     string `toml:"easing,omitempty" yaml:"easing,omitempty"`

	Stiffness                 float64 `toml:"stiffness,omitempty" yaml:"stiffness,omitempty"`
	Damping                   float64 `toml:"damping,omitempty" yaml:"damping,omitempty"`
	Mass                      float64 `toml:"mass,omitempty" yaml:"mass,omitempty"`
	OvershootClamping         *bool   `toml:"overshoot_clamping,omitempty" yaml:"overshoot_clamping,omitempty"`
	RestDisplacementThreshold float64 `toml:"rest_displacement_threshold,omitempty" yaml:"rest_displacement_threshold,omitempty"`
	RestSpeedThreshold        float64 `toml:"rest_speed_threshold,omitempty" yaml:"rest_speed_threshold,omitempty"`
}

type SettleConfig struct {
	Epsilon      float64 `toml:"epsilon" yaml:"epsilon"`
	RestVelocity float64 `toml:"rest_velocity" yaml:"rest_velocity"`
}

// ScreenConfig holds option defaults for routes with a given name. Unset
// fields fall back to the stack defaults.
type ScreenConfig struct {
	Title                   string            `toml:"title,omitempty" yaml:"title,omitempty"`
	HeaderTitle             string            `toml:"header_title,omitempty" yaml:"header_title,omitempty"`
	HeaderShown             *bool             `toml:"header_shown,omitempty" yaml:"header_shown,omitempty"`
	HeaderTransparent       bool              `toml:"header_transparent,omitempty" yaml:"header_transparent,omitempty"`
	GestureEnabled          *bool             `toml:"gesture_enabled,omitempty" yaml:"gesture_enabled,omitempty"`
	GestureDirection        string            `toml:"gesture_direction,omitempty" yaml:"gesture_direction,omitempty"`
	GestureResponseDistance *float64          `toml:"gesture_response_distance,omitempty" yaml:"gesture_response_distance,omitempty"`
	GestureVelocityImpact   *float64          `toml:"gesture_velocity_impact,omitempty" yaml:"gesture_velocity_impact,omitempty"`
	CardStyleInterpolator   string            `toml:"card_style_interpolator,omitempty" yaml:"card_style_interpolator,omitempty"`
	HeaderStyleInterpolator string            `toml:"header_style_interpolator,omitempty" yaml:"header_style_interpolator,omitempty"`
	CardOverlayEnabled      *bool             `toml:"card_overlay_enabled,omitempty" yaml:"card_overlay_enabled,omitempty"`
	CardShadowEnabled       *bool             `toml:"card_shadow_enabled,omitempty" yaml:"card_shadow_enabled,omitempty"`
	Transition              *TransitionConfig `toml:"transition,omitempty" yaml:"transition,omitempty"`
}

// DefaultConfig returns the configuration matching stack.DefaultConfig
func DefaultConfig() Config {
	timing := SpecConfig{Type: "timing", DurationMs: 250, Easing: "ease-out-cubic"}
	return Config{
		Stack: StackConfig{
			HeaderMode:              string(stack.HeaderFloat),
			Mode:                    string(stack.ModeCard),
			DefaultHeaderHeight:     stack.DefaultHeaderHeight,
			Window:                  stack.DefaultWindow,
			Epsilon:                 card.DefaultEpsilon,
			CardStyleInterpolator:   stack.CardHorizontal,
			HeaderStyleInterpolator: stack.HeaderUIKit,
		},
		Gesture: GestureConfig{
			Direction:      gesture.Horizontal.String(),
			MinDistance:    gesture.DefaultMinDistance,
			VelocityImpact: gesture.DefaultVelocityImpact,
			Enabled:        true,
		},
		Transition: TransitionConfig{Open: timing, Close: timing},
		Settle: SettleConfig{
			Epsilon:      anim.DefaultSettle().Epsilon,
			RestVelocity: anim.DefaultSettle().RestVelocity,
		},
	}
}

// LoadConfig reads a TOML or YAML configuration over the defaults. The
// format follows the file extension.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return config, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return config, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return config, nil
}

// SaveConfig writes the configuration in the format of the file extension
func SaveConfig(path string, config Config) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		data, err = toml.Marshal(config)
	case ".yaml", ".yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(config); err == nil {
			err = enc.Close()
		}
		data = buf.Bytes()
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// FindConfig walks up from dir to the filesystem root and returns the
// first configuration file found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		for _, name := range ConfigNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found", strings.Join(ConfigNames, ", "))
		}
		dir = parent
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	_, err := c.StackConfig()
	return err
}

// StackConfig converts the file configuration to a validated container
// configuration.
func (c Config) StackConfig() (stack.Config, error) {
	cfg := stack.DefaultConfig()
	cfg.HeaderMode = stack.HeaderMode(c.Stack.HeaderMode)
	cfg.Mode = stack.CardMode(c.Stack.Mode)
	cfg.DefaultHeaderHeight = c.Stack.DefaultHeaderHeight
	cfg.Window = c.Stack.Window
	cfg.Epsilon = c.Stack.Epsilon
	cfg.CardStyleInterpolator = c.Stack.CardStyleInterpolator
	cfg.HeaderStyleInterpolator = c.Stack.HeaderStyleInterpolator

	direction, err := gesture.ParseDirection(c.Gesture.Direction)
	if err != nil {
		return cfg, fmt.Errorf("gesture: %w", err)
	}
	cfg.Gesture = gesture.Config{
		Direction:        direction,
		ResponseDistance: c.Gesture.ResponseDistance,
		MinDistance:      c.Gesture.MinDistance,
		VelocityImpact:   c.Gesture.VelocityImpact,
	}
	cfg.GestureEnabled = c.Gesture.Enabled

	if cfg.Open, err = c.Transition.Open.Spec(); err != nil {
		return cfg, fmt.Errorf("transition.open: %w", err)
	}
	if cfg.Close, err = c.Transition.Close.Spec(); err != nil {
		return cfg, fmt.Errorf("transition.close: %w", err)
	}
	cfg.Settle = anim.Settle{Epsilon: c.Settle.Epsilon, RestVelocity: c.Settle.RestVelocity}

	if len(c.Screens) > 0 {
		cfg.Screens = make(map[string]stack.Options, len(c.Screens))
		for name, sc := range c.Screens {
			o, err := sc.Options()
			if err != nil {
				return cfg, fmt.Errorf("screens.%s: %w", name, err)
			}
			cfg.Screens[name] = o
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Spec builds the transition spec.
func (s SpecConfig) Spec() (anim.Spec, error) {
	switch s.Type {
	case "timing", "":
		spec := anim.DefaultTimingSpec()
		if s.DurationMs < 0 {
			return nil, fmt.Errorf("duration_ms must not be negative, got %d", s.DurationMs)
		}
		if s.DurationMs != 0 {
			spec.Duration = time.Duration(s.DurationMs) * time.Millisecond
		}
		if s.Easing != "" {
			if spec.Easing = anim.EasingByName(s.Easing); spec.Easing == nil {
				return nil, fmt.Errorf("unknown easing %q", s.Easing)
			}
		}
		return spec, spec.Validate()
	case "spring":
		spec := anim.DefaultSpringSpec()
		override(&spec.Stiffness, s.Stiffness)
		override(&spec.Damping, s.Damping)
		override(&spec.Mass, s.Mass)
		override(&spec.RestDisplacementThreshold, s.RestDisplacementThreshold)
		override(&spec.RestSpeedThreshold, s.RestSpeedThreshold)
		if s.OvershootClamping != nil {
			spec.OvershootClamping = *s.OvershootClamping
		}
		return spec, spec.Validate()
	default:
		return nil, fmt.Errorf("unknown transition type %q", s.Type)
	}
}

func override(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

// Options converts the screen defaults to route options.
func (s ScreenConfig) Options() (stack.Options, error) {
	o := stack.Options{
		Title:                   s.Title,
		HeaderTitle:             s.HeaderTitle,
		HeaderShown:             s.HeaderShown,
		HeaderTransparent:       s.HeaderTransparent,
		GestureEnabled:          s.GestureEnabled,
		GestureDirection:        s.GestureDirection,
		GestureResponseDistance: s.GestureResponseDistance,
		GestureVelocityImpact:   s.GestureVelocityImpact,
		CardStyleInterpolator:   s.CardStyleInterpolator,
		HeaderStyleInterpolator: s.HeaderStyleInterpolator,
		CardOverlayEnabled:      s.CardOverlayEnabled,
		CardShadowEnabled:       s.CardShadowEnabled,
	}
	if t := s.Transition; t != nil {
		o.TransitionSpec = &stack.TransitionSpecs{}
		var err error
		if t.Open.Type != "" {
			if o.TransitionSpec.Open, err = t.Open.Spec(); err != nil {
				return o, fmt.Errorf("transition.open: %w", err)
			}
		}
		if t.Close.Type != "" {
			if o.TransitionSpec.Close, err = t.Close.Spec(); err != nil {
				return o, fmt.Errorf("transition.close: %w", err)
			}
		}
	}
	return o, nil
}
