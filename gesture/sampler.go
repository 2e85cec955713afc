package gesture

import "math"

// Sample is one pointer reading along the gesture axis. Displacement is
// measured from the touch-down point. A zero Velocity asks the sampler to
// estimate it from the previous sample.
type Sample struct {
	Displacement float64
	Velocity     float64
	TimestampMs  int64
}

// Decision is the outcome of a released gesture.
type Decision struct {
	Closing  bool
	Progress float64 // progress at release
	Velocity float64 // progress units per second, positive toward open
}

// Target returns the progress the card should animate to.
func (d Decision) Target() float64 {
	if d.Closing {
		return 0
	}
	return 1
}

// Handler receives the gesture lifecycle. Start is called once when the
// gesture activates and returns the progress it should track from. End and
// Cancel are mutually exclusive and called at most once.
type Handler interface {
	Start() (origin float64)
	End()
	Cancel()
}

// HandlerFuncs adapts plain functions to Handler. Nil fields are skipped.
type HandlerFuncs struct {
	OnStart  func() float64
	OnEnd    func()
	OnCancel func()
}

func (h HandlerFuncs) Start() float64 {
	if h.OnStart == nil {
		return 1
	}
	return h.OnStart()
}

func (h HandlerFuncs) End() {
	if h.OnEnd != nil {
		h.OnEnd()
	}
}

func (h HandlerFuncs) Cancel() {
	if h.OnCancel != nil {
		h.OnCancel()
	}
}

type phase uint8

const (
	phaseIdle phase = iota
	phasePending
	phaseActive
)

// Sampler tracks one gesture at a time for a card.
type Sampler struct {
	cfg     Config
	handler Handler
	phase   phase

	size    float64 // card extent along the axis
	origin  float64 // progress when the gesture activated
	anchor  float64 // displacement when the gesture activated
	last    Sample
	hasLast bool

	progress float64
	velocity float64 // raw axis units per second
}

// NewSampler validates cfg and returns an idle sampler.
func NewSampler(cfg Config, handler Handler) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if handler == nil {
		handler = HandlerFuncs{}
	}
	return &Sampler{cfg: cfg, handler: handler}, nil
}

// Config returns the sampler configuration.
func (s *Sampler) Config() Config { return s.cfg }

// Tracking reports whether a gesture has activated and drives progress.
func (s *Sampler) Tracking() bool { return s.phase == phaseActive }

// Pending reports whether a touch began but has not travelled MinDistance.
func (s *Sampler) Pending() bool { return s.phase == phasePending }

// Progress returns the progress computed from the latest sample.
func (s *Sampler) Progress() float64 { return s.progress }

// Begin starts a gesture at (x, y) inside a card of the given size. Touches
// outside the activation edge are rejected with ErrOutsideEdge.
func (s *Sampler) Begin(x, y, width, height float64) error {
	if s.phase != phaseIdle {
		return ErrInProgress
	}

	coord, extent := x, width
	if s.cfg.Direction.IsVertical() {
		coord, extent = y, height
	}
	edge := s.cfg.EdgeWidth()
	if s.cfg.Direction.Multiplier() > 0 {
		if coord < 0 || coord > edge {
			return ErrOutsideEdge
		}
	} else if coord < extent-edge || coord > extent {
		return ErrOutsideEdge
	}

	s.phase = phasePending
	s.size = extent
	s.hasLast = false
	s.velocity = 0
	return nil
}

// Update feeds one sample. It returns the tracked progress and whether the
// gesture is active, so the caller knows whether to apply it.
func (s *Sampler) Update(sample Sample) (float64, bool, error) {
	if s.phase == phaseIdle {
		return 0, false, ErrNotTracking
	}
	if s.hasLast && sample.TimestampMs <= s.last.TimestampMs {
		return s.progress, s.phase == phaseActive, ErrOutOfOrder
	}

	s.velocity = sample.Velocity
	if sample.Velocity == 0 && s.hasLast {
		dt := float64(sample.TimestampMs-s.last.TimestampMs) / 1000
		s.velocity = (sample.Displacement - s.last.Displacement) / dt
	}
	s.last = sample
	s.hasLast = true

	if s.phase == phasePending {
		if math.Abs(sample.Displacement) < s.cfg.MinDistance {
			return s.progress, false, nil
		}
		s.phase = phaseActive
		s.anchor = sample.Displacement
		s.origin = s.handler.Start()
		s.progress = s.origin
	}

	s.progress = s.track(sample.Displacement)
	return s.progress, true, nil
}

// track maps a displacement to progress relative to the activation point,
// so taking over a moving card does not make it jump.
func (s *Sampler) track(displacement float64) float64 {
	if s.size <= 0 {
		return s.origin
	}
	p := s.origin - (displacement-s.anchor)*s.cfg.Direction.Multiplier()/s.size
	return math.Max(0, math.Min(1, p))
}

// End releases the gesture. A zero finalVelocity uses the sampler's own
// estimate. The boolean is false when the gesture never activated, in which
// case no handler method is called.
func (s *Sampler) End(finalVelocity float64) (Decision, bool) {
	wasActive := s.phase == phaseActive
	s.phase = phaseIdle
	if !wasActive {
		return Decision{}, false
	}

	if finalVelocity == 0 {
		finalVelocity = s.velocity
	}
	d := s.decide(finalVelocity)
	s.handler.End()
	return d, true
}

// decide applies the release rule: a fast enough fling wins, otherwise the
// card stays open only past the half way point.
func (s *Sampler) decide(rawVelocity float64) Decision {
	velocity := 0.0
	if s.size > 0 {
		velocity = -rawVelocity * s.cfg.Direction.Multiplier() / s.size
	}

	closing := s.progress < 0.5
	if math.Abs(velocity) >= s.cfg.VelocityThreshold() {
		closing = velocity < 0
	}
	return Decision{Closing: closing, Progress: s.progress, Velocity: velocity}
}

// Cancel aborts the gesture, for example on a multi-touch conflict.
func (s *Sampler) Cancel() {
	wasActive := s.phase == phaseActive
	s.phase = phaseIdle
	if wasActive {
		s.handler.Cancel()
	}
}

// Reset drops any gesture without notifying the handler. Used on teardown.
func (s *Sampler) Reset() {
	s.phase = phaseIdle
	s.hasLast = false
}

// Velocity returns the last progress velocity estimate.
func (s *Sampler) Velocity() float64 {
	if s.size <= 0 {
		return 0
	}
	return -s.velocity * s.cfg.Direction.Multiplier() / s.size
}
