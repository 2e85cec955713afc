package card

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/agiangrant/stacknav/anim"
	"github.com/agiangrant/stacknav/gesture"
)

const (
	frame  = 16 * time.Millisecond
	width  = 400.0
	height = 800.0
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	t        *testing.T
	registry *anim.Registry
	now      time.Time
	events   []Event
}

func newHarness(t *testing.T) *harness {
	return &harness{t: t, registry: anim.NewRegistry(), now: epoch}
}

func (h *harness) card(key string, open bool) *Card {
	h.t.Helper()
	c, err := New(key, DefaultConfig(), open, h.registry, ListenerFunc(func(_ *Card, e Event) {
		h.events = append(h.events, e)
	}))
	if err != nil {
		h.t.Fatalf("New(%s): %v", key, err)
	}
	c.SetLayout(width, height)
	c.SetActive(true)
	return c
}

// advance runs frames for d.
func (h *harness) advance(d time.Duration) {
	end := h.now.Add(d)
	for h.now.Before(end) {
		h.now = h.now.Add(frame)
		h.registry.Tick(h.now)
	}
}

func (h *harness) kinds() []EventKind {
	var out []EventKind
	for _, e := range h.events {
		if e.Kind != EventPointerEvents {
			out = append(out, e.Kind)
		}
	}
	return out
}

func (h *harness) count(kind EventKind) int {
	n := 0
	for _, e := range h.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// swipe drags from the left edge by displacement over n frames. It does not
// release.
func (h *harness) swipe(c *Card, displacement float64, n int) {
	h.t.Helper()
	if err := c.BeginGesture(4, 300); err != nil {
		h.t.Fatalf("BeginGesture: %v", err)
	}
	for i := 1; i <= n; i++ {
		h.now = h.now.Add(frame)
		d := displacement * float64(i) / float64(n)
		if err := c.UpdateGesture(h.now, gesture.Sample{Displacement: d, Velocity: 1e-9, TimestampMs: h.now.UnixMilli()}); err != nil {
			h.t.Fatalf("UpdateGesture: %v", err)
		}
	}
}

func equalKinds(a, b []EventKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestImperativeOpen(t *testing.T) {
	h := newHarness(t)
	c := h.card("B", false)

	if err := c.Open(h.now); err != nil {
		t.Fatal(err)
	}
	if c.State() != AnimatingOpen {
		t.Fatalf("State() = %v, want animating-open", c.State())
	}
	h.advance(400 * time.Millisecond)

	want := []EventKind{EventTransitionStart, EventOpened}
	if got := h.kinds(); !equalKinds(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	if h.events[0].Closing || h.events[0].Gesture {
		t.Errorf("transition start = %+v, want imperative opening", h.events[0])
	}
	if c.State() != OpenIdle || c.Position() != 1 {
		t.Errorf("State() = %v at %v, want open-idle at 1", c.State(), c.Position())
	}

	// Opening an open card is a no-op.
	_ = c.Open(h.now)
	if h.count(EventTransitionStart) != 1 {
		t.Error("Open on an open card started a transition")
	}
}

func TestGestureReleaseAboveHalfStaysOpen(t *testing.T) {
	for _, displacement := range []float64{20, 80, 150, 190} {
		h := newHarness(t)
		c := h.card("B", true)

		h.swipe(c, displacement, 20)
		if c.State() != GestureTracking {
			t.Fatalf("displacement %v: State() = %v, want gesture-tracking", displacement, c.State())
		}
		if err := c.EndGesture(h.now, 0); err != nil {
			t.Fatal(err)
		}
		h.advance(time.Second)

		if c.State() != OpenIdle {
			t.Errorf("displacement %v: State() = %v, want open-idle", displacement, c.State())
		}
		if n := h.count(EventOpened); n != 1 {
			t.Errorf("displacement %v: opened fired %d times, want 1", displacement, n)
		}
		if h.count(EventClosed) != 0 {
			t.Errorf("displacement %v: card closed", displacement)
		}
	}
}

func TestFlingClosesRegardlessOfDisplacement(t *testing.T) {
	for _, displacement := range []float64{10, 60, 120, 180} {
		h := newHarness(t)
		c := h.card("B", true)

		h.swipe(c, displacement, 10)
		// 1000px/s on a 400 wide card is 2.5 cards/s, over the 1.67 threshold.
		if err := c.EndGesture(h.now, 1000); err != nil {
			t.Fatal(err)
		}
		h.advance(time.Second)

		if c.State() != ClosedIdle {
			t.Errorf("displacement %v: State() = %v, want closed-idle", displacement, c.State())
		}
		want := []EventKind{EventGestureBegin, EventGestureEnd, EventTransitionStart, EventClosed}
		if got := h.kinds(); !equalKinds(got, want) {
			t.Errorf("displacement %v: events = %v, want %v", displacement, got, want)
		}
	}
}

func TestGesturePreemptsImperativeAnimation(t *testing.T) {
	h := newHarness(t)
	c := h.card("B", true)

	_ = c.Close(h.now)
	h.advance(80 * time.Millisecond)
	before := c.Position()
	if before <= 0 || before >= 1 {
		t.Fatalf("expected mid-flight position, got %v", before)
	}

	if err := c.BeginGesture(4, 300); err != nil {
		t.Fatal(err)
	}
	h.now = h.now.Add(frame)
	if err := c.UpdateGesture(h.now, gesture.Sample{Displacement: 6, Velocity: 1e-9, TimestampMs: h.now.UnixMilli()}); err != nil {
		t.Fatal(err)
	}

	if c.State() != GestureTracking {
		t.Fatalf("State() = %v, want gesture-tracking", c.State())
	}
	if c.Position() != before {
		t.Errorf("takeover jumped from %v to %v", before, c.Position())
	}
	h.advance(time.Second)
	if h.count(EventClosed) != 0 {
		t.Error("preempted animation still settled")
	}
}

func TestCancelResumesPreviousDirection(t *testing.T) {
	h := newHarness(t)
	c := h.card("B", true)

	_ = c.Close(h.now)
	h.advance(48 * time.Millisecond)
	h.swipe(c, -40, 4)

	if err := c.CancelGesture(h.now); err != nil {
		t.Fatal(err)
	}
	if c.State() != AnimatingClose {
		t.Fatalf("State() = %v, want animating-close", c.State())
	}
	h.advance(time.Second)

	want := []EventKind{EventTransitionStart, EventGestureBegin, EventGestureCanceled, EventTransitionStart, EventClosed}
	if got := h.kinds(); !equalKinds(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if resumed := h.events[3]; !resumed.Gesture || !resumed.Closing {
		t.Errorf("resumed transition = %+v, want gesture driven close", resumed)
	}
	if c.State() != ClosedIdle {
		t.Errorf("State() = %v, want closed-idle", c.State())
	}
}

func TestCancelWithoutMovementRestoresIdle(t *testing.T) {
	h := newHarness(t)
	c := h.card("B", true)

	if err := c.BeginGesture(4, 300); err != nil {
		t.Fatal(err)
	}
	h.now = h.now.Add(frame)
	// Activates exactly at the minimum distance; progress does not move.
	_ = c.UpdateGesture(h.now, gesture.Sample{Displacement: 5, Velocity: 1e-9, TimestampMs: h.now.UnixMilli()})
	_ = c.CancelGesture(h.now)

	if c.State() != OpenIdle {
		t.Errorf("State() = %v, want open-idle", c.State())
	}
	if h.count(EventTransitionStart) != 0 {
		t.Error("cancel at rest should not animate")
	}
}

func TestCancelRightAfterTakeoverUsesGestureVelocity(t *testing.T) {
	h := newHarness(t)
	c := h.card("B", false)

	_ = c.Open(h.now)
	h.advance(48 * time.Millisecond)
	if c.Velocity() <= 0 {
		t.Fatalf("opening velocity = %v, want positive", c.Velocity())
	}

	if err := c.BeginGesture(4, 300); err != nil {
		t.Fatal(err)
	}
	h.now = h.now.Add(frame)
	// 200px/s toward closing on a 400px card is -0.5 progress per second.
	if err := c.UpdateGesture(h.now, gesture.Sample{Displacement: 20, Velocity: 200, TimestampMs: h.now.UnixMilli()}); err != nil {
		t.Fatal(err)
	}
	if err := c.CancelGesture(h.now); err != nil {
		t.Fatal(err)
	}

	if c.State() != AnimatingOpen {
		t.Fatalf("State() = %v, want animating-open", c.State())
	}
	if got := c.Velocity(); math.Abs(got+0.5) > 1e-9 {
		t.Errorf("resumed velocity = %v, want the gesture's -0.5", got)
	}
}

func TestImperativeCloseCancelsGesture(t *testing.T) {
	h := newHarness(t)
	c := h.card("B", true)

	h.swipe(c, 100, 5)
	_ = c.Close(h.now)
	h.advance(time.Second)

	want := []EventKind{EventGestureBegin, EventGestureCanceled, EventTransitionStart, EventClosed}
	if got := h.kinds(); !equalKinds(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if err := c.EndGesture(h.now, 0); err != nil {
		t.Errorf("EndGesture after cancel = %v", err)
	}
	if h.count(EventGestureEnd) != 0 {
		t.Error("gesture end fired after cancel")
	}
}

func TestRetargetFromGestureReleaseIsContinuous(t *testing.T) {
	h := newHarness(t)
	c := h.card("B", false)
	_ = c.Open(h.now)
	h.advance(300 * time.Millisecond)

	h.swipe(c, 60, 6)
	_ = c.EndGesture(h.now, -200) // opening flick
	h.advance(2 * frame)

	prev := c.Position()
	_ = c.Close(h.now)
	if c.Position() != prev {
		t.Fatalf("Close moved progress from %v to %v", prev, c.Position())
	}

	// Peak speed of either curve stays below 3/duration plus the carried velocity.
	limit := (3/0.25 + 4) * frame.Seconds()
	for i := 0; i < 30; i++ {
		h.advance(frame)
		if d := math.Abs(c.Position() - prev); d > limit {
			t.Fatalf("frame %d: progress jumped %v (limit %v)", i, d, limit)
		}
		prev = c.Position()
	}
	if c.State() != ClosedIdle {
		t.Errorf("State() = %v, want closed-idle", c.State())
	}
}

func TestPointerRoutingFlipsOncePerCrossing(t *testing.T) {
	h := newHarness(t)
	below := h.card("A", true)
	above := h.card("B", false)
	below.SetActive(false)
	below.SetNext(above.Progress())

	if below.PointerEvents() != BoxNone {
		t.Fatalf("PointerEvents() = %v with closed card above, want box-none", below.PointerEvents())
	}

	var flips []PointerEvents
	h.events = nil
	_ = above.Open(h.now)
	h.advance(400 * time.Millisecond)
	for _, e := range h.events {
		if e.Kind == EventPointerEvents {
			flips = append(flips, e.PointerEvents)
		}
	}
	if len(flips) != 1 || flips[0] != None {
		t.Fatalf("flips while opening = %v, want [none]", flips)
	}

	flips = nil
	h.events = nil
	_ = above.Close(h.now)
	h.advance(400 * time.Millisecond)
	for _, e := range h.events {
		if e.Kind == EventPointerEvents {
			flips = append(flips, e.PointerEvents)
		}
	}
	if len(flips) != 1 || flips[0] != BoxNone {
		t.Fatalf("flips while closing = %v, want [box-none]", flips)
	}

	below.SetActive(true)
	_ = above.Open(h.now)
	h.advance(400 * time.Millisecond)
	if below.PointerEvents() != BoxNone {
		t.Error("active card must stay hit-testable")
	}
}

func TestTeardownReleasesSubscriptions(t *testing.T) {
	h := newHarness(t)
	below := h.card("A", true)
	above := h.card("B", false)
	below.SetNext(above.Progress())

	value := above.Progress().(*anim.Value)
	if value.ListenerCount() != 1 {
		t.Fatalf("ListenerCount() = %d, want 1", value.ListenerCount())
	}

	// Relinking replaces the subscription rather than adding one.
	below.SetNext(above.Progress())
	if value.ListenerCount() != 1 {
		t.Fatalf("ListenerCount() after relink = %d, want 1", value.ListenerCount())
	}

	_ = below.Close(h.now)
	_ = above.Open(h.now)
	below.Teardown()
	below.Teardown()

	if value.ListenerCount() != 0 {
		t.Errorf("ListenerCount() after teardown = %d, want 0", value.ListenerCount())
	}
	if h.registry.Count() != 1 {
		t.Errorf("registry.Count() = %d, want only the card above", h.registry.Count())
	}
	if err := below.Open(h.now); !errors.Is(err, ErrTornDown) {
		t.Errorf("Open after teardown = %v, want ErrTornDown", err)
	}

	above.Teardown()
	if h.registry.Count() != 0 {
		t.Errorf("registry.Count() = %d after teardown, want 0", h.registry.Count())
	}
}

func TestGestureErrors(t *testing.T) {
	h := newHarness(t)

	closed := h.card("A", false)
	if err := closed.BeginGesture(4, 300); !errors.Is(err, ErrNotOpen) {
		t.Errorf("BeginGesture on closed card = %v, want ErrNotOpen", err)
	}

	cfg := DefaultConfig()
	cfg.GestureEnabled = false
	disabled, err := New("B", cfg, true, h.registry, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := disabled.BeginGesture(4, 300); !errors.Is(err, ErrGestureDisabled) {
		t.Errorf("BeginGesture with gestures disabled = %v, want ErrGestureDisabled", err)
	}

	open := h.card("C", true)
	if err := open.BeginGesture(200, 300); !errors.Is(err, gesture.ErrOutsideEdge) {
		t.Errorf("BeginGesture mid-screen = %v, want ErrOutsideEdge", err)
	}

	cfg = DefaultConfig()
	cfg.Gesture.ResponseDistance = -1
	if _, err := New("D", cfg, true, h.registry, nil); err == nil {
		t.Error("New accepted a negative response distance")
	}
}
