// Package stack orchestrates a stack of cards: which routes are mounted, how
// pushes, pops and replaces animate, which card takes a back swipe, and how
// headers follow the cards' progress.
//
// A Container is driven from one UI loop. The host feeds it navigation
// state, layout and pointer input, calls Tick once per frame and reads
// Scenes, CardProps and Headers to render.
package stack

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/agiangrant/stacknav/anim"
	"github.com/agiangrant/stacknav/card"
	"github.com/agiangrant/stacknav/gesture"
)

// slot is one mounted card. The slot slice of the container is the
// progress arena: scene i reads its next progress from slot i+1.
type slot struct {
	c    *Container
	desc Descriptor
	card *card.Card

	closing   bool // popped, animating out
	replacing bool // replaced, kept under the new top until it opens
	first     bool // first displayed route, never swiped back

	height   float64
	measured bool
}

func (s *slot) key() string { return s.desc.Route.Key }

// CardEvent implements card.Listener.
func (s *slot) CardEvent(_ *card.Card, e card.Event) { s.c.cardEvent(s, e) }

// Container is the card stack orchestrator.
type Container struct {
	cfg      Config
	listener Listener
	log      *slog.Logger
	registry *anim.Registry

	layout Layout
	insets Insets

	slots     []*slot
	displayed []Descriptor
	focused   string
	dismissed map[string]bool // closed by gesture, still listed by the navigator
	started   bool

	gesture *slot
	errs    []error
	closed  bool
}

// New validates cfg and returns an empty container. A nil listener drops
// events.
func New(cfg Config, listener Listener) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if listener == nil {
		listener = ListenerFunc(func(Event) error { return nil })
	}
	return &Container{
		cfg:       cfg,
		listener:  listener,
		log:       cfg.logger(),
		registry:  anim.NewRegistry(),
		dismissed: make(map[string]bool),
	}, nil
}

// Config returns the container configuration.
func (c *Container) Config() Config { return c.cfg }

// Registry returns the frame registry stepping the cards.
func (c *Container) Registry() *anim.Registry { return c.registry }

// Animating reports whether any card is animating.
func (c *Container) Animating() bool { return c.registry.HasActive() }

// Layout returns the current viewport size.
func (c *Container) Layout() Layout { return c.layout }

// Insets returns the current safe-area insets.
func (c *Container) Insets() Insets { return c.insets }

// Keys returns the route keys mounted, bottom to top.
func (c *Container) Keys() []string {
	keys := make([]string, len(c.slots))
	for i, s := range c.slots {
		keys[i] = s.key()
	}
	return keys
}

// Focused returns the key of the focused route.
func (c *Container) Focused() string { return c.focused }

// Card returns the state machine of a mounted route.
func (c *Container) Card(key string) (*card.Card, error) {
	s, _ := c.find(key)
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRoute, key)
	}
	return s.card, nil
}

// ============================================================================
// Navigation state
// ============================================================================

// SetState applies new navigation state. The first call mounts the window
// open without animation. Afterwards a new top route animates in, a removed
// top animates out before it is unmounted, and a replaced top stays under
// the new one until it has opened. Routes removed below the top and routes
// falling out of the window are unmounted at once.
func (c *Container) SetState(now time.Time, st State) error {
	if c.closed {
		return ErrClosed
	}
	if err := c.validateState(st); err != nil {
		return err
	}

	present := make(map[string]bool, len(st.Routes))
	for _, r := range st.Routes {
		present[r.Key] = true
	}
	for key := range c.dismissed {
		if !present[key] {
			delete(c.dismissed, key)
		}
	}

	var displayed []Descriptor
	for _, r := range st.Routes[:st.Index+1] {
		if !c.dismissed[r.Key] {
			displayed = append(displayed, c.cfg.resolve(r))
		}
	}
	wasDisplayed := make(map[string]bool, len(c.displayed))
	for _, d := range c.displayed {
		wasDisplayed[d.Route.Key] = true
	}
	isDisplayed := make(map[string]bool, len(displayed))
	for _, d := range displayed {
		isDisplayed[d.Route.Key] = true
	}

	prevTop := c.top()
	initial := !c.started || prevTop == nil
	window := displayed[max(0, len(displayed)-c.cfg.Window):]
	var newTop, firstKey string
	if len(window) > 0 {
		newTop = window[len(window)-1].Route.Key
		firstKey = displayed[0].Route.Key
	}

	changed := !initial && prevTop.key() != newTop
	var leaving *slot
	pop := false
	if changed && !isDisplayed[prevTop.key()] {
		leaving = prevTop
		pop = wasDisplayed[newTop]
	}

	existing := make(map[string]*slot, len(c.slots))
	for _, s := range c.slots {
		existing[s.key()] = s
	}

	mounted := make([]*slot, 0, len(window)+2)
	var created, reopen []*slot
	var opening *slot
	for _, d := range window {
		key := d.Route.Key
		animate := changed && key == newTop
		s := existing[key]
		if s != nil {
			delete(existing, key)
			if s.closing {
				reopen = append(reopen, s)
			}
			c.update(s, d)
		} else {
			var err error
			s, err = c.newSlot(d, !animate)
			if err != nil {
				for _, s := range created {
					s.card.Teardown()
				}
				return err
			}
			created = append(created, s)
		}
		s.first = key == firstKey
		if animate {
			opening = s
		}
		mounted = append(mounted, s)
	}

	// Transient slots keep their relative order and sit above their
	// replacement (closing) or just below it (replacing).
	if leaving != nil {
		leaving.closing, leaving.replacing = pop, !pop
	}
	var closing, replacing []*slot
	for _, s := range c.slots {
		if existing[s.key()] != s || !(s.closing || s.replacing) {
			continue
		}
		delete(existing, s.key())
		if s.closing {
			closing = append(closing, s)
		} else {
			replacing = append(replacing, s)
		}
	}
	evicted := make([]*slot, 0, len(existing))
	for _, s := range c.slots {
		if existing[s.key()] == s {
			evicted = append(evicted, s)
		}
	}

	if n := len(mounted); n > 0 && len(replacing) > 0 {
		top := mounted[n-1]
		mounted = append(mounted[:n-1:n-1], replacing...)
		mounted = append(mounted, top)
	}
	mounted = append(mounted, closing...)

	c.started = true
	c.displayed = displayed
	c.focused = st.Routes[st.Index].Key
	c.slots = mounted
	c.relink()
	c.log.Debug("stack state applied", "routes", len(st.Routes), "index", st.Index, "mounted", c.Keys())
	for _, s := range evicted {
		c.unmount(s)
	}

	if leaving != nil && pop {
		c.collect(leaving.card.Close(now))
	}
	if opening != nil {
		c.collect(opening.card.Open(now))
	}
	for _, s := range reopen {
		if s != opening {
			c.collect(s.card.Open(now))
		}
	}
	// Only the top card follows the pointer. A swipe on a card that was
	// covered or popped meanwhile is abandoned and the card resumes.
	if g := c.gesture; g != nil && g != c.top() {
		c.gesture = nil
		if !g.card.TornDown() {
			c.collect(g.card.CancelGesture(now))
		}
	}
	if top := c.top(); top != nil && top.card.State() == card.OpenIdle {
		c.dropReplacing()
	}
	return c.flush()
}

func (c *Container) validateState(st State) error {
	if len(st.Routes) == 0 || st.Index < 0 || st.Index >= len(st.Routes) {
		return fmt.Errorf("%w: %d of %d routes", ErrInvalidIndex, st.Index, len(st.Routes))
	}
	seen := make(map[string]bool, len(st.Routes))
	for i, r := range st.Routes {
		if r.Key == "" {
			return fmt.Errorf("%w: route %d (%s)", ErrEmptyKey, i, r.Name)
		}
		if seen[r.Key] {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, r.Key)
		}
		seen[r.Key] = true
		if err := r.Options.Validate(); err != nil {
			return fmt.Errorf("route %s: %w", r.Key, err)
		}
	}
	return nil
}

func (c *Container) newSlot(d Descriptor, open bool) (*slot, error) {
	s := &slot{c: c, desc: d}
	cd, err := card.New(d.Route.Key, c.cfg.cardConfig(d), open, c.registry, s)
	if err != nil {
		return nil, fmt.Errorf("stack: %w", err)
	}
	cd.SetLayout(c.layout.Width, c.layout.Height)
	s.card = cd
	return s, nil
}

// update refreshes a reused slot with new options.
func (c *Container) update(s *slot, d Descriptor) {
	s.desc = d
	s.closing, s.replacing = false, false
	c.collect(s.card.SetConfig(c.cfg.cardConfig(d)))
}

// unmount tears a slot down. A swipe still tracking on it is reported as
// cancelled first, so every gesture-start gets an end or a cancel.
func (c *Container) unmount(s *slot) {
	if c.gesture == s {
		c.gesture = nil
		if s.card.GestureActive() && !c.closed {
			c.emit(Event{Kind: EventPageChangeCancel, Route: s.desc.Route})
			c.emit(Event{Kind: EventGestureCancel, Route: s.desc.Route})
		}
	}
	s.card.Teardown()
	c.log.Debug("card unmounted", "route", s.key())
}

// remove unmounts a slot that is still in the arena and relinks the rest.
func (c *Container) remove(s *slot) {
	_, i := c.find(s.key())
	if i < 0 {
		return
	}
	c.slots = append(c.slots[:i], c.slots[i+1:]...)
	c.unmount(s)
	c.relink()
}

// dropReplacing unmounts replaced slots once the new top has opened.
func (c *Container) dropReplacing() {
	for _, s := range append([]*slot(nil), c.slots...) {
		if s.replacing {
			c.remove(s)
		}
	}
}

// relink points every card at the progress of the card above it. The last
// slot is the active one.
func (c *Container) relink() {
	for i, s := range c.slots {
		var next anim.Progress
		if i+1 < len(c.slots) {
			next = c.slots[i+1].card.Progress()
		}
		s.card.SetNext(next)
		s.card.SetActive(i == len(c.slots)-1)
	}
}

// top returns the top slot that is not being removed.
func (c *Container) top() *slot {
	for i := len(c.slots) - 1; i >= 0; i-- {
		if s := c.slots[i]; !s.closing && !s.replacing {
			return s
		}
	}
	return nil
}

func (c *Container) find(key string) (*slot, int) {
	for i, s := range c.slots {
		if s.key() == key {
			return s, i
		}
	}
	return nil, -1
}

func (c *Container) isActive(s *slot) bool {
	return len(c.slots) > 0 && c.slots[len(c.slots)-1] == s
}

// ============================================================================
// Frames
// ============================================================================

// Tick advances every running animation to now. Settled cards publish their
// events from within Tick.
func (c *Container) Tick(now time.Time) error {
	if c.closed {
		return ErrClosed
	}
	c.registry.Tick(now)
	return c.flush()
}

// ============================================================================
// Card events
// ============================================================================

func (c *Container) cardEvent(s *slot, e card.Event) {
	r := s.desc.Route
	switch e.Kind {
	case card.EventTransitionStart:
		switch {
		case !e.Gesture:
			c.emit(Event{Kind: EventPageChangeConfirm, Route: r, Force: true})
		case c.isActive(s) && e.Closing:
			c.emit(Event{Kind: EventPageChangeConfirm, Route: r})
		default:
			c.emit(Event{Kind: EventPageChangeCancel, Route: r})
		}
		if s.card.TornDown() || s.card.State() != transitionState(e.Closing) {
			// The listener already started another transition on this card.
			return
		}
		c.emit(Event{Kind: EventTransitionStart, Route: r, Closing: e.Closing})

	case card.EventOpened:
		c.emit(Event{Kind: EventTransitionEnd, Route: r})
		c.emit(Event{Kind: EventOpenRoute, Route: r})
		if s == c.top() {
			c.dropReplacing()
		}

	case card.EventClosed:
		c.emit(Event{Kind: EventTransitionEnd, Route: r, Closing: true})
		c.emit(Event{Kind: EventCloseRoute, Route: r})
		c.settledClosed(s)

	case card.EventGestureBegin:
		c.emit(Event{Kind: EventPageChangeStart, Route: r})
		c.emit(Event{Kind: EventGestureStart, Route: r})

	case card.EventGestureCanceled:
		c.emit(Event{Kind: EventPageChangeCancel, Route: r})
		c.emit(Event{Kind: EventGestureCancel, Route: r})

	case card.EventGestureEnd:
		c.emit(Event{Kind: EventGestureEnd, Route: r})

	case card.EventPointerEvents:
		c.log.Debug("pointer events changed", "route", r.Key, "mode", e.PointerEvents)
	}
}

func transitionState(closing bool) card.State {
	if closing {
		return card.AnimatingClose
	}
	return card.AnimatingOpen
}

// settledClosed unmounts a card that settled closed. A card closed by a gesture
// is still listed by the navigator until it reacts to close-route, so it is
// hidden until SetState drops it.
func (c *Container) settledClosed(s *slot) {
	if !s.closing {
		c.dismissed[s.key()] = true
		for i, d := range c.displayed {
			if d.Route.Key == s.key() {
				c.displayed = append(c.displayed[:i:i], c.displayed[i+1:]...)
				break
			}
		}
	}
	c.remove(s)
}

func (c *Container) emit(e Event) {
	if err := c.listener.HandleEvent(e); err != nil {
		c.errs = append(c.errs, fmt.Errorf("%s %s: %w", e.Kind, e.Route.Key, err))
	}
}

func (c *Container) collect(err error) {
	if err != nil {
		c.errs = append(c.errs, err)
	}
}

// flush returns and clears the errors gathered by the current operation.
func (c *Container) flush() error {
	err := errors.Join(c.errs...)
	c.errs = nil
	return err
}

// ============================================================================
// Pointer input
// ============================================================================

// PointerDown starts a back swipe at (x, y) on the top card. The first route
// and a card that is already leaving never take a gesture.
func (c *Container) PointerDown(x, y float64) error {
	if c.closed {
		return ErrClosed
	}
	if c.gesture != nil && !c.gesture.card.TornDown() {
		return gesture.ErrInProgress
	}
	c.gesture = nil
	if len(c.slots) == 0 {
		return ErrNoGestureTarget
	}
	s := c.slots[len(c.slots)-1]
	if s.first || s.closing || s.replacing {
		return ErrNoGestureTarget
	}
	if err := s.card.BeginGesture(x, y); err != nil {
		return err
	}
	c.gesture = s
	return nil
}

// PointerMove feeds a sample to the swiped card.
func (c *Container) PointerMove(now time.Time, sample gesture.Sample) error {
	s, err := c.gestureSlot()
	if err != nil {
		return err
	}
	if err := s.card.UpdateGesture(now, sample); err != nil {
		return err
	}
	return c.flush()
}

// PointerUp releases the swipe with the pointer velocity along the gesture
// axis. Zero uses the estimate from the samples.
func (c *Container) PointerUp(now time.Time, velocity float64) error {
	s, err := c.gestureSlot()
	if err != nil {
		return err
	}
	c.gesture = nil
	c.collect(s.card.EndGesture(now, velocity))
	return c.flush()
}

// PointerCancel aborts the swipe; the card resumes where it was heading.
func (c *Container) PointerCancel(now time.Time) error {
	s, err := c.gestureSlot()
	if err != nil {
		return err
	}
	c.gesture = nil
	c.collect(s.card.CancelGesture(now))
	return c.flush()
}

func (c *Container) gestureSlot() (*slot, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if c.gesture == nil || c.gesture.card.TornDown() {
		c.gesture = nil
		return nil, gesture.ErrNotTracking
	}
	return c.gesture, nil
}

// ============================================================================
// Layout
// ============================================================================

// SetLayout sets the viewport size for every card and header.
func (c *Container) SetLayout(l Layout) error {
	if err := l.Validate(); err != nil {
		return err
	}
	c.layout = l
	for _, s := range c.slots {
		s.card.SetLayout(l.Width, l.Height)
	}
	return nil
}

// SetInsets sets the safe-area insets. Headers that have not been measured
// follow the new top inset.
func (c *Container) SetInsets(i Insets) error {
	if err := i.Validate(); err != nil {
		return err
	}
	c.insets = i
	return nil
}

// ReportHeaderHeight records the measured header height of a route.
// header-height-change is published only when the height changes, so a
// host that re-measures after applying the offset does not loop.
func (c *Container) ReportHeaderHeight(key string, height float64) error {
	if c.closed {
		return ErrClosed
	}
	if invalidLength(height) {
		return &ConfigError{Field: "header_height", Reason: fmt.Sprintf("must not be negative, got %g", height)}
	}
	s, _ := c.find(key)
	if s == nil {
		return fmt.Errorf("%w: %s", ErrUnknownRoute, key)
	}

	prev := c.headerHeight(s)
	s.height, s.measured = height, true
	if cur := c.headerHeight(s); cur != prev {
		c.emit(Event{Kind: EventHeaderHeightChange, Route: s.desc.Route, Height: cur})
	}
	return c.flush()
}

// headerHeight is 0 for a hidden header, the measured height once
// reported, and the default plus the top inset before that.
func (c *Container) headerHeight(s *slot) float64 {
	switch {
	case !s.desc.Options.IsHeaderShown():
		return 0
	case s.measured:
		return s.height
	default:
		return c.cfg.DefaultHeaderHeight + c.insets.Top
	}
}

// ============================================================================
// Lifecycle
// ============================================================================

// Close tears down every card and releases all subscriptions. The container
// cannot be used afterwards.
func (c *Container) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	for _, s := range c.slots {
		c.unmount(s)
	}
	c.slots = nil
	c.gesture = nil
	return nil
}
