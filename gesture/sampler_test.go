package gesture

import (
	"errors"
	"math"
	"testing"
)

type recorder struct {
	calls  []string
	origin float64
}

func (r *recorder) Start() float64 {
	r.calls = append(r.calls, "start")
	return r.origin
}
func (r *recorder) End()    { r.calls = append(r.calls, "end") }
func (r *recorder) Cancel() { r.calls = append(r.calls, "cancel") }

func newSampler(t *testing.T, cfg Config) (*Sampler, *recorder) {
	t.Helper()
	rec := &recorder{origin: 1}
	s, err := NewSampler(cfg, rec)
	if err != nil {
		t.Fatalf("NewSampler: %v", err)
	}
	return s, rec
}

// drag moves linearly to displacement over n samples, 100ms apart.
func drag(t *testing.T, s *Sampler, displacement float64, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		d := displacement * float64(i) / float64(n)
		if _, _, err := s.Update(Sample{Displacement: d, TimestampMs: int64(i * 100)}); err != nil {
			t.Fatalf("Update(%v): %v", d, err)
		}
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"horizontal", Horizontal, false},
		{"", Horizontal, false},
		{"horizontal-inverted", HorizontalInverted, false},
		{"vertical", Vertical, false},
		{"vertical-inverted", VerticalInverted, false},
		{"diagonal", Horizontal, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDirection(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDirection(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if !tt.wantErr && tt.in != "" && got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"default", DefaultConfig(), ""},
		{"negative response distance", Config{ResponseDistance: -1}, "response_distance"},
		{"negative min distance", Config{MinDistance: -3}, "min_distance"},
		{"negative velocity impact", Config{VelocityImpact: -0.1}, "velocity_impact"},
		{"unknown direction", Config{Direction: Direction(9)}, "direction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestBeginRejectsOutsideEdge(t *testing.T) {
	tests := []struct {
		name   string
		dir    Direction
		x, y   float64
		accept bool
	}{
		{"left edge", Horizontal, 10, 300, true},
		{"middle", Horizontal, 200, 300, false},
		{"right edge inverted", HorizontalInverted, 370, 300, true},
		{"left edge inverted", HorizontalInverted, 10, 300, false},
		{"top edge vertical", Vertical, 200, 100, true},
		{"bottom vertical", Vertical, 200, 500, false},
		{"bottom edge vertical inverted", VerticalInverted, 200, 600, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Direction = tt.dir
			s, _ := newSampler(t, cfg)
			err := s.Begin(tt.x, tt.y, 375, 667)
			if tt.accept && err != nil {
				t.Errorf("Begin() = %v, want accepted", err)
			}
			if !tt.accept && !errors.Is(err, ErrOutsideEdge) {
				t.Errorf("Begin() = %v, want ErrOutsideEdge", err)
			}
		})
	}
}

func TestReleaseDecision(t *testing.T) {
	tests := []struct {
		name         string
		displacement float64 // of a 400 wide card
		velocity     float64 // raw px/s at release
		wantClosing  bool
	}{
		{"short drag stays open", 120, 0, false},
		{"long drag closes", 260, 0, true},
		{"fling closes short drag", 60, 1000, true},
		{"fling back opens long drag", 300, -1000, false},
		{"slow drift uses position", 100, 200, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec := newSampler(t, DefaultConfig())
			if err := s.Begin(5, 100, 400, 800); err != nil {
				t.Fatal(err)
			}
			drag(t, s, tt.displacement, 8)

			d, ok := s.End(tt.velocity)
			if !ok {
				t.Fatal("End reported an inactive gesture")
			}
			if d.Closing != tt.wantClosing {
				t.Errorf("Closing = %v, want %v (progress %.2f, velocity %.2f)", d.Closing, tt.wantClosing, d.Progress, d.Velocity)
			}
			if got := len(rec.calls); got != 2 || rec.calls[0] != "start" || rec.calls[1] != "end" {
				t.Errorf("handler calls = %v, want [start end]", rec.calls)
			}
		})
	}
}

func TestMinDistanceGatesActivation(t *testing.T) {
	s, rec := newSampler(t, DefaultConfig())
	if err := s.Begin(0, 0, 400, 800); err != nil {
		t.Fatal(err)
	}

	if _, active, _ := s.Update(Sample{Displacement: 3, TimestampMs: 1}); active {
		t.Error("gesture activated below MinDistance")
	}
	if _, ok := s.End(0); ok {
		t.Error("End on a pending gesture should report no lifecycle")
	}
	if len(rec.calls) != 0 {
		t.Errorf("handler calls = %v, want none", rec.calls)
	}
}

func TestTrackingIsRelativeToActivation(t *testing.T) {
	s, rec := newSampler(t, DefaultConfig())
	rec.origin = 0.7
	if err := s.Begin(0, 0, 400, 800); err != nil {
		t.Fatal(err)
	}

	p, active, err := s.Update(Sample{Displacement: 10, TimestampMs: 16})
	if err != nil || !active {
		t.Fatalf("Update: active=%v err=%v", active, err)
	}
	if p != 0.7 {
		t.Errorf("progress at activation = %v, want origin 0.7", p)
	}

	p, _, _ = s.Update(Sample{Displacement: 50, TimestampMs: 32})
	if want := 0.7 - 40.0/400; math.Abs(p-want) > 1e-9 {
		t.Errorf("progress = %v, want %v", p, want)
	}
	if v := s.Velocity(); math.Abs(v-(-40.0/400/0.016)) > 1e-6 {
		t.Errorf("Velocity() = %v", v)
	}
}

func TestOutOfOrderSamples(t *testing.T) {
	s, _ := newSampler(t, DefaultConfig())
	if _, _, err := s.Update(Sample{}); !errors.Is(err, ErrNotTracking) {
		t.Errorf("Update before Begin = %v, want ErrNotTracking", err)
	}
	_ = s.Begin(0, 0, 400, 800)
	_, _, _ = s.Update(Sample{Displacement: 20, TimestampMs: 50})
	if _, _, err := s.Update(Sample{Displacement: 30, TimestampMs: 50}); !errors.Is(err, ErrOutOfOrder) {
		t.Errorf("Update with stale timestamp = %v, want ErrOutOfOrder", err)
	}
	if err := s.Begin(0, 0, 400, 800); !errors.Is(err, ErrInProgress) {
		t.Errorf("second Begin = %v, want ErrInProgress", err)
	}
}

func TestCancelIsExclusiveWithEnd(t *testing.T) {
	s, rec := newSampler(t, DefaultConfig())
	_ = s.Begin(0, 0, 400, 800)
	drag(t, s, 100, 4)

	s.Cancel()
	if _, ok := s.End(0); ok {
		t.Error("End after Cancel must not report a gesture")
	}
	s.Cancel()

	if len(rec.calls) != 2 || rec.calls[1] != "cancel" {
		t.Errorf("handler calls = %v, want [start cancel]", rec.calls)
	}
}

func TestVelocityThreshold(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.VelocityThreshold(); math.Abs(got-0.5/0.3) > 1e-9 {
		t.Errorf("VelocityThreshold() = %v", got)
	}
	cfg.VelocityImpact = 0
	if !math.IsInf(cfg.VelocityThreshold(), 1) {
		t.Error("zero impact should disable velocity override")
	}
}
