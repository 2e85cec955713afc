package stacknav

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agiangrant/stacknav/anim"
	"github.com/agiangrant/stacknav/gesture"
	"github.com/agiangrant/stacknav/stack"
)

func TestDefaultConfigMatchesStackDefaults(t *testing.T) {
	sc, err := DefaultConfig().StackConfig()
	if err != nil {
		t.Fatalf("StackConfig() error = %v", err)
	}
	want := stack.DefaultConfig()
	if sc.HeaderMode != want.HeaderMode || sc.Mode != want.Mode || sc.Window != want.Window {
		t.Errorf("stack section = %v/%v/%d", sc.HeaderMode, sc.Mode, sc.Window)
	}
	if sc.Gesture != want.Gesture || sc.GestureEnabled != want.GestureEnabled {
		t.Errorf("gesture = %+v, want %+v", sc.Gesture, want.Gesture)
	}
	if sc.Settle != want.Settle || sc.Epsilon != want.Epsilon {
		t.Errorf("settle = %+v epsilon = %v", sc.Settle, sc.Epsilon)
	}
	open, ok := sc.Open.(anim.TimingSpec)
	if !ok || open.Duration != 250*time.Millisecond {
		t.Errorf("open spec = %#v, want 250ms timing", sc.Open)
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{
			name: "toml",
			file: "stacknav.toml",
			body: `
[stack]
header_mode = "screen"
mode = "modal"

[gesture]
direction = "vertical"
velocity_impact = 0.5

[transition.open]
type = "spring"
stiffness = 800

[screens.Settings]
header_shown = false
gesture_enabled = false

[screens.Settings.transition.open]
type = "timing"
easing = "linear"
`,
		},
		{
			name: "yaml",
			file: "stacknav.yaml",
			body: `
stack:
  header_mode: screen
  mode: modal
gesture:
  direction: vertical
  velocity_impact: 0.5
transition:
  open:
    type: spring
    stiffness: 800
screens:
  Settings:
    header_shown: false
    gesture_enabled: false
    transition:
      open:
        type: timing
        easing: linear
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}

			cfg, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			sc, err := cfg.StackConfig()
			if err != nil {
				t.Fatalf("StackConfig() error = %v", err)
			}

			if sc.HeaderMode != stack.HeaderScreen || sc.Mode != stack.ModeModal {
				t.Errorf("modes = %v/%v", sc.HeaderMode, sc.Mode)
			}
			if sc.Gesture.Direction != gesture.Vertical || sc.Gesture.VelocityImpact != 0.5 {
				t.Errorf("gesture = %+v", sc.Gesture)
			}
			if sc.Gesture.MinDistance != gesture.DefaultMinDistance {
				t.Errorf("unset min distance = %v, want default", sc.Gesture.MinDistance)
			}
			spring, ok := sc.Open.(anim.SpringSpec)
			if !ok || spring.Stiffness != 800 || spring.Damping != 500 {
				t.Errorf("open = %#v, want spring with stiffness 800 and default damping", sc.Open)
			}
			if _, ok := sc.Close.(anim.TimingSpec); !ok {
				t.Errorf("close = %#v, want default timing", sc.Close)
			}
			settings := sc.Screens["Settings"]
			if settings.IsHeaderShown() || settings.GestureEnabled == nil || *settings.GestureEnabled {
				t.Errorf("Settings options = %+v", settings)
			}
			if settings.TransitionSpec == nil {
				t.Fatal("Settings transition override not loaded")
			}
			open, ok := settings.TransitionSpec.Open.(anim.TimingSpec)
			if !ok || open.Duration != 250*time.Millisecond {
				t.Errorf("Settings open = %#v, want timing with the default duration", settings.TransitionSpec.Open)
			}
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want ErrNotExist", err)
	}

	ini := filepath.Join(dir, "stacknav.ini")
	os.WriteFile(ini, []byte("x=1"), 0644)
	if _, err := LoadConfig(ini); err == nil {
		t.Error("expected error for unsupported format")
	}

	bad := filepath.Join(dir, "bad.toml")
	os.WriteFile(bad, []byte("[stack\nmode ="), 0644)
	if _, err := LoadConfig(bad); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"header mode", func(c *Config) { c.Stack.HeaderMode = "sticky" }, "header_mode"},
		{"window", func(c *Config) { c.Stack.Window = 0 }, "window"},
		{"direction", func(c *Config) { c.Gesture.Direction = "diagonal" }, "direction"},
		{"easing", func(c *Config) { c.Transition.Open.Easing = "wobble" }, "-"},
		{"transition type", func(c *Config) { c.Transition.Close.Type = "teleport" }, "-"},
		{"spring mass", func(c *Config) { c.Transition.Open = SpecConfig{Type: "spring", Mass: -1} }, "-"},
		{"negative duration", func(c *Config) { c.Transition.Close = SpecConfig{Type: "timing", DurationMs: -5} }, "-"},
		{"screen direction", func(c *Config) {
			c.Screens = map[string]ScreenConfig{"Home": {GestureDirection: "up"}}
		}, "gesture_direction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()

			switch tt.field {
			case "":
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
			case "-":
				if err == nil {
					t.Error("expected error")
				}
			default:
				var se *stack.ConfigError
				var ge *gesture.ConfigError
				switch {
				case errors.As(err, &se):
					if se.Field != tt.field {
						t.Errorf("field = %q, want %q", se.Field, tt.field)
					}
				case errors.As(err, &ge):
					if ge.Field != tt.field {
						t.Errorf("field = %q, want %q", ge.Field, tt.field)
					}
				default:
					t.Errorf("Validate() error = %v, want config error on %s", err, tt.field)
				}
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	for _, name := range []string{"stacknav.toml", "stacknav.yml"} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Stack.Mode = "modal"
			cfg.Screens = map[string]ScreenConfig{"Home": {Title: "Start", HeaderShown: stack.Bool(false)}}

			path := filepath.Join(t.TempDir(), name)
			if err := SaveConfig(path, cfg); err != nil {
				t.Fatalf("SaveConfig() error = %v", err)
			}
			got, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if got.Stack != cfg.Stack || got.Gesture != cfg.Gesture || got.Transition != cfg.Transition {
				t.Errorf("loaded %+v, want %+v", got, cfg)
			}
			home := got.Screens["Home"]
			if home.Title != "Start" || home.HeaderShown == nil || *home.HeaderShown {
				t.Errorf("Home = %+v", home)
			}
		})
	}
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, "stacknav.yaml")
	os.WriteFile(want, []byte("stack:\n  mode: card\n"), 0644)

	got, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("FindConfig() error = %v", err)
	}
	if got != want {
		t.Errorf("FindConfig() = %q, want %q", got, want)
	}
}

func TestNew(t *testing.T) {
	rec := &stack.Recorder{}
	c, err := New(DefaultConfig(), rec, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	now := time.Unix(0, 0)
	st := stack.State{Routes: []stack.Route{{Key: "a", Name: "A"}}}
	if err := c.SetState(now, st); err != nil {
		t.Fatal(err)
	}
	if keys := c.Keys(); len(keys) != 1 || keys[0] != "a" {
		t.Errorf("Keys() = %v", keys)
	}

	bad := DefaultConfig()
	bad.Stack.Mode = "sheet"
	if _, err := New(bad, rec, nil); err == nil {
		t.Error("expected error for invalid config")
	}
}
