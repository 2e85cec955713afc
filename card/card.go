// Package card implements the presentation state machine of a single card in
// a stack: imperative open/close, gesture takeover, and pointer routing.
//
// A card is driven from the UI loop only. It owns the animator that writes its
// progress; everyone else reads it through anim.Progress.
package card

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/agiangrant/stacknav/anim"
	"github.com/agiangrant/stacknav/gesture"
)

var (
	ErrGestureDisabled = errors.New("card: gesture disabled")
	ErrNotOpen         = errors.New("card: closed card cannot be swiped")
	ErrTornDown        = errors.New("card: used after teardown")
)

// State is one of the five presentation states of a card.
type State uint8

const (
	ClosedIdle State = iota
	OpenIdle
	AnimatingOpen
	AnimatingClose
	GestureTracking
)

func (s State) String() string {
	switch s {
	case ClosedIdle:
		return "closed-idle"
	case OpenIdle:
		return "open-idle"
	case AnimatingOpen:
		return "animating-open"
	case AnimatingClose:
		return "animating-close"
	case GestureTracking:
		return "gesture-tracking"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// target is the progress the state is heading to.
func (s State) target() float64 {
	if s == OpenIdle || s == AnimatingOpen {
		return 1
	}
	return 0
}

// PointerEvents is the hit-test mode of a card.
type PointerEvents uint8

const (
	// BoxNone lets touches through to the card's children.
	BoxNone PointerEvents = iota
	// None shields the card: a card above covers it.
	None
)

func (p PointerEvents) String() string {
	if p == None {
		return "none"
	}
	return "box-none"
}

// DefaultEpsilon is the next-card progress at or below which a card becomes
// hit-testable again.
const DefaultEpsilon = 0.1

// Config configures a card.
type Config struct {
	Gesture        gesture.Config
	GestureEnabled bool
	Open           anim.Spec
	Close          anim.Spec
	Settle         anim.Settle
	Epsilon        float64
}

// DefaultConfig returns a card with gestures enabled and timing transitions.
func DefaultConfig() Config {
	return Config{
		Gesture:        gesture.DefaultConfig(),
		GestureEnabled: true,
		Open:           anim.DefaultTimingSpec(),
		Close:          anim.DefaultTimingSpec(),
		Settle:         anim.DefaultSettle(),
		Epsilon:        DefaultEpsilon,
	}
}

// Card is the state machine for one screen.
type Card struct {
	key      string
	cfg      Config
	listener Listener
	animator *anim.Animator
	sampler  *gesture.Sampler

	state  State
	resume State // state interrupted by the current gesture

	width, height float64
	active        bool
	pointer       PointerEvents

	next    anim.Progress
	nextSub *anim.Subscription

	torn bool
}

// New creates a card in OpenIdle (open) or ClosedIdle.
func New(key string, cfg Config, open bool, registry *anim.Registry, listener Listener) (*Card, error) {
	if cfg.Open == nil || cfg.Close == nil {
		return nil, fmt.Errorf("card %s: transition specs are required", key)
	}
	if listener == nil {
		listener = ListenerFunc(func(*Card, Event) {})
	}

	c := &Card{
		key:      key,
		cfg:      cfg,
		listener: listener,
		state:    ClosedIdle,
	}
	initial := 0.0
	if open {
		c.state = OpenIdle
		initial = 1
	}
	c.animator = anim.NewAnimator(initial, cfg.Settle, registry)
	c.animator.OnSettle(c.settled)

	sampler, err := gesture.NewSampler(cfg.Gesture, c.gestureHandler())
	if err != nil {
		return nil, fmt.Errorf("card %s: %w", key, err)
	}
	c.sampler = sampler
	return c, nil
}

// SetConfig replaces the configuration for the next transition and the next
// gesture. A gesture already under way keeps its settings, and the settle
// policy of the running animator is not changed.
func (c *Card) SetConfig(cfg Config) error {
	if c.torn {
		return ErrTornDown
	}
	if cfg.Open == nil || cfg.Close == nil {
		return fmt.Errorf("card %s: transition specs are required", c.key)
	}
	if c.sampler.Tracking() || c.sampler.Pending() {
		cfg.Gesture = c.cfg.Gesture
	} else if cfg.Gesture != c.cfg.Gesture {
		sampler, err := gesture.NewSampler(cfg.Gesture, c.gestureHandler())
		if err != nil {
			return fmt.Errorf("card %s: %w", c.key, err)
		}
		c.sampler = sampler
	}
	cfg.Settle = c.cfg.Settle
	c.cfg = cfg
	c.updatePointer()
	return nil
}

// Key returns the route key the card presents.
func (c *Card) Key() string { return c.key }

// State returns the current state.
func (c *Card) State() State { return c.state }

// Progress returns the card's own progress for neighbours and headers.
func (c *Card) Progress() anim.Progress { return c.animator.Progress() }

// Position returns the current progress value.
func (c *Card) Position() float64 { return c.animator.Position() }

// Velocity returns the last known progress velocity.
func (c *Card) Velocity() float64 { return c.animator.Velocity() }

// Config returns the card configuration.
func (c *Card) Config() Config { return c.cfg }

// Active reports whether the card is the topmost in its stack.
func (c *Card) Active() bool { return c.active }

// PointerEvents returns the current hit-test mode.
func (c *Card) PointerEvents() PointerEvents { return c.pointer }

// TornDown reports whether Teardown has run.
func (c *Card) TornDown() bool { return c.torn }

// SetLayout sets the card size used to normalise gestures.
func (c *Card) SetLayout(width, height float64) {
	c.width, c.height = width, height
}

// SetActive marks the card as the top of the stack. Active cards always
// receive touches.
func (c *Card) SetActive(active bool) {
	c.active = active
	c.updatePointer()
}

// SetNext links the card to the progress of the card above it, replacing any
// previous link. Pass nil for the top card.
func (c *Card) SetNext(next anim.Progress) {
	if c.torn || next == c.next && (next == nil || c.nextSub.Active()) {
		return
	}
	if c.nextSub != nil {
		c.nextSub.Remove()
		c.nextSub = nil
	}
	c.next = next
	if next != nil {
		c.nextSub = next.AddListener(func(float64) { c.updatePointer() })
	}
	c.updatePointer()
}

// Next returns the linked progress of the card above, or nil.
func (c *Card) Next() anim.Progress { return c.next }

// updatePointer recomputes the hit-test mode and reports changes only, so a
// progress moving within one side of the boundary never emits.
func (c *Card) updatePointer() {
	mode := BoxNone
	if !c.active && c.next != nil && c.next.Value() > c.cfg.Epsilon {
		mode = None
	}
	if mode == c.pointer {
		return
	}
	c.pointer = mode
	c.emit(Event{Kind: EventPointerEvents, PointerEvents: mode})
}

// Open animates the card to fully open.
func (c *Card) Open(now time.Time) error {
	return c.transition(now, anim.Request{Target: 1, InitiatedBy: anim.ByImperative})
}

// Close animates the card to fully closed.
func (c *Card) Close(now time.Time) error {
	return c.transition(now, anim.Request{Target: 0, InitiatedBy: anim.ByImperative})
}

// transition starts or retargets an animation. Imperative requests toward the
// target the card already has are ignored.
func (c *Card) transition(now time.Time, req anim.Request) error {
	if c.torn {
		return ErrTornDown
	}

	closing := req.Target == 0
	next, idle := AnimatingOpen, OpenIdle
	if closing {
		next, idle = AnimatingClose, ClosedIdle
	}

	if req.InitiatedBy == anim.ByImperative {
		if c.state == next || c.state == idle && approxEqual(c.Position(), req.Target) {
			return nil
		}
		if c.state == GestureTracking {
			// Imperative commands win over a gesture in flight.
			c.sampler.Cancel()
		}
	}

	c.state = next
	c.emit(Event{Kind: EventTransitionStart, Closing: closing, Gesture: req.InitiatedBy == anim.ByGesture})
	if c.torn || c.state != next {
		// A listener tore the card down or started another transition.
		return nil
	}

	spec := c.cfg.Open
	if closing {
		spec = c.cfg.Close
	}
	c.animator.AnimateTo(now, req, spec)
	return nil
}

// settled runs once when the animator reaches its target.
func (c *Card) settled(target float64) {
	if c.torn {
		return
	}
	if target == 1 {
		c.state = OpenIdle
		c.emit(Event{Kind: EventOpened})
		return
	}
	c.state = ClosedIdle
	c.emit(Event{Kind: EventClosed})
}

// Step advances the card's animation without a registry.
func (c *Card) Step(now time.Time) bool {
	return c.animator.Step(now)
}

// ============================================================================
// Gestures
// ============================================================================

// BeginGesture starts a touch at (x, y) in card coordinates. The gesture only
// takes over once it has travelled the minimum distance.
func (c *Card) BeginGesture(x, y float64) error {
	if c.torn {
		return ErrTornDown
	}
	if !c.cfg.GestureEnabled {
		return ErrGestureDisabled
	}
	if c.state == ClosedIdle {
		return ErrNotOpen
	}
	return c.sampler.Begin(x, y, c.width, c.height)
}

// UpdateGesture feeds a pointer sample.
func (c *Card) UpdateGesture(now time.Time, sample gesture.Sample) error {
	if c.torn {
		return ErrTornDown
	}
	progress, active, err := c.sampler.Update(sample)
	if err != nil {
		return err
	}
	if active {
		c.animator.Track(now, progress)
	}
	return nil
}

// EndGesture releases the gesture with the final pointer velocity along the
// gesture axis.
func (c *Card) EndGesture(now time.Time, velocity float64) error {
	if c.torn {
		return ErrTornDown
	}
	decision, ok := c.sampler.End(velocity)
	if !ok {
		return nil
	}
	v := decision.Velocity
	return c.transition(now, anim.Request{Target: decision.Target(), InitiatedBy: anim.ByGesture, VelocityHint: &v})
}

// CancelGesture aborts the gesture and resumes where the card was heading
// before it, keeping the last tracked velocity.
func (c *Card) CancelGesture(now time.Time) error {
	if c.torn {
		return ErrTornDown
	}
	wasTracking := c.sampler.Tracking()
	c.sampler.Cancel()
	if !wasTracking {
		return nil
	}

	target := c.resume.target()
	if (c.resume == OpenIdle || c.resume == ClosedIdle) && approxEqual(c.Position(), target) {
		c.state = c.resume
		return nil
	}
	v := c.animator.Velocity()
	return c.transition(now, anim.Request{Target: target, InitiatedBy: anim.ByGesture, VelocityHint: &v})
}

// GestureActive reports whether a gesture currently drives the card.
func (c *Card) GestureActive() bool {
	return c.state == GestureTracking
}

// Direction returns the gesture direction of the card.
func (c *Card) Direction() gesture.Direction {
	return c.cfg.Gesture.Direction
}

func (c *Card) gestureHandler() gesture.Handler {
	return gesture.HandlerFuncs{
		OnStart:  c.gestureStarted,
		OnEnd:    c.gestureEnded,
		OnCancel: c.gestureCanceled,
	}
}

func (c *Card) gestureStarted() float64 {
	c.resume = c.state
	c.animator.Hold(c.sampler.Velocity())
	c.state = GestureTracking
	c.emit(Event{Kind: EventGestureBegin})
	return c.Position()
}

func (c *Card) gestureEnded() {
	c.emit(Event{Kind: EventGestureEnd})
}

func (c *Card) gestureCanceled() {
	c.emit(Event{Kind: EventGestureCanceled})
}

// ============================================================================
// Lifecycle
// ============================================================================

// Teardown stops the animation and releases every subscription. No events
// are emitted. Safe to call more than once.
func (c *Card) Teardown() {
	if c.torn {
		return
	}
	c.torn = true
	c.sampler.Reset()
	c.animator.Stop()
	c.animator.OnSettle(nil)
	if c.nextSub != nil {
		c.nextSub.Remove()
		c.nextSub = nil
	}
	c.next = nil
}

func (c *Card) emit(e Event) {
	if c.torn {
		return
	}
	c.listener.CardEvent(c, e)
}

// approxEqual compares progress values with a float tolerance.
func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
