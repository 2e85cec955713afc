package stack

import (
	"fmt"

	"github.com/agiangrant/stacknav/card"
	"github.com/agiangrant/stacknav/gesture"
)

// HeaderProps is everything a host needs to render one header.
type HeaderProps struct {
	Route   Route
	Options Options

	BackTitle string
	HasBack   bool

	Progress     SceneProgress
	Interpolator string
	Static       bool

	Focused       bool
	PointerEvents card.PointerEvents
	Absolute      bool
	Height        float64

	Layout Layout
	Insets Insets
	Style  HeaderStyle

	// Render is the custom header of the route, if any.
	Render HeaderRenderer
}

// Headers returns the headers to render, bottom to top. In float mode every
// scene of the last three with a shown header gets one; in screen mode only
// the top scene does, without animation.
func (c *Container) Headers() []HeaderProps {
	n := len(c.slots)
	if n == 0 {
		return nil
	}
	if c.cfg.HeaderMode == HeaderScreen {
		if h, ok := c.header(HeaderScreen, n-1, nil, nil); ok {
			return []HeaderProps{h}
		}
		return nil
	}

	window := c.slots[max(0, n-DefaultWindow):]
	offset := n - len(window)
	var out []HeaderProps
	for i := range window {
		var prev, next *slot
		if i > 0 {
			prev = window[i-1]
		}
		if i+1 < len(window) {
			next = window[i+1]
		}
		if h, ok := c.header(HeaderFloat, offset+i, prev, next); ok {
			out = append(out, h)
		}
	}
	return out
}

// Header returns the rendered header of a mounted route. ok is false when
// the route hides its header.
func (c *Container) Header(key string) (HeaderProps, bool, error) {
	for _, h := range c.Headers() {
		if h.Route.Key == key {
			return h, true, nil
		}
	}
	if s, _ := c.find(key); s == nil {
		return HeaderProps{}, false, fmt.Errorf("%w: %s", ErrUnknownRoute, key)
	}
	return HeaderProps{}, false, nil
}

// header builds the props of slot i. prev and next are its neighbours in the
// rendered window, nil at the window edges.
func (c *Container) header(mode HeaderMode, i int, prev, next *slot) (HeaderProps, bool) {
	s := c.slots[i]
	o := s.desc.Options
	if !o.IsHeaderShown() {
		return HeaderProps{}, false
	}

	focused := s.key() == c.focused
	h := HeaderProps{
		Route:         s.desc.Route,
		Options:       o,
		Progress:      c.progress(i),
		Interpolator:  HeaderNone,
		Focused:       focused,
		PointerEvents: card.None,
		Absolute:      mode == HeaderFloat && !focused || o.HeaderTransparent,
		Height:        c.headerHeight(s),
		Layout:        c.layout,
		Insets:        c.insets,
		Render:        o.Header,
	}
	if focused {
		h.PointerEvents = card.BoxNone
	}
	if back, ok := c.previous(i); ok {
		h.BackTitle, h.HasBack = back.Options.HeaderTitleFor(back.Route.Name), true
	}
	if mode == HeaderFloat {
		h.Static = isHeaderStatic(prev, next)
		if h.Static {
			h.Interpolator = staticInterpolator(c.focusedDirection())
		} else {
			h.Interpolator = c.cfg.headerInterpolator(o)
		}
	}

	h.Style = HeaderInterpolatorByName(h.Interpolator)(HeaderInterpolation{
		Current:      h.Progress.Current.Value(),
		Next:         nextValue(h.Progress),
		Layout:       c.layout,
		HeaderHeight: h.Height,
	})
	return h, true
}

// isHeaderStatic reports whether a header must stay anchored rather than
// slide with its screen. A header next to a headerless screen would
// otherwise appear to jump. When the previous screen is headerless the
// header still animates while a next screen exists, so a screen coming back
// from it stays visible.
func isHeaderStatic(prev, next *slot) bool {
	prevShown := prev == nil || prev.desc.Options.IsHeaderShown()
	nextShown := next == nil || next.desc.Options.IsHeaderShown()
	return !prevShown && next == nil || !nextShown
}

// staticInterpolator slides the whole header with the screen.
func staticInterpolator(d gesture.Direction) string {
	switch {
	case d.IsVertical():
		return HeaderSlideUp
	case d == gesture.HorizontalInverted:
		return HeaderSlideRight
	default:
		return HeaderSlideLeft
	}
}

// focusedDirection is the gesture direction of the focused route.
func (c *Container) focusedDirection() gesture.Direction {
	if s, _ := c.find(c.focused); s != nil {
		return s.card.Direction()
	}
	if top := c.top(); top != nil {
		return top.card.Direction()
	}
	return c.cfg.Gesture.Direction
}

// FloatHeaderAbsolute reports whether the floating header layer overlaps the
// cards: one of the two top scenes is headerless or has a transparent
// header. Cards with an opaque header are then offset by the header height.
func (c *Container) FloatHeaderAbsolute() bool {
	if c.cfg.HeaderMode != HeaderFloat {
		return false
	}
	for _, s := range c.slots[max(0, len(c.slots)-2):] {
		if o := s.desc.Options; o.HeaderTransparent || !o.IsHeaderShown() {
			return true
		}
	}
	return false
}
