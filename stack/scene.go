package stack

import (
	"fmt"

	"github.com/agiangrant/stacknav/anim"
	"github.com/agiangrant/stacknav/card"
	"github.com/agiangrant/stacknav/gesture"
)

// SceneProgress links a scene to its own card and to the card above it.
// Next is nil for the top scene.
type SceneProgress struct {
	Current anim.Progress
	Next    anim.Progress
}

// Scene is one mounted route with its progress handles.
type Scene struct {
	Descriptor
	Progress SceneProgress
	Index    int
	Focused  bool
	Closing  bool
	State    card.State
}

// Scenes returns the mounted scenes, bottom to top. Adjacent scenes share a
// handle: Scenes()[i].Progress.Next is Scenes()[i+1].Progress.Current.
func (c *Container) Scenes() []Scene {
	scenes := make([]Scene, len(c.slots))
	for i := range c.slots {
		scenes[i] = c.scene(i)
	}
	return scenes
}

func (c *Container) scene(i int) Scene {
	s := c.slots[i]
	return Scene{
		Descriptor: s.desc,
		Progress:   c.progress(i),
		Index:      i,
		Focused:    s.key() == c.focused,
		Closing:    s.closing,
		State:      s.card.State(),
	}
}

// progress reads both handles from the arena.
func (c *Container) progress(i int) SceneProgress {
	p := SceneProgress{Current: c.slots[i].card.Progress()}
	if i+1 < len(c.slots) {
		p.Next = c.slots[i+1].card.Progress()
	}
	return p
}

func nextValue(p SceneProgress) float64 {
	if p.Next == nil {
		return 0
	}
	return p.Next.Value()
}

// CardProps is everything a host needs to render one card.
type CardProps struct {
	Scene

	Active         bool
	PointerEvents  card.PointerEvents
	GestureEnabled bool
	Direction      gesture.Direction

	BackTitle string
	HasBack   bool

	ModalPresentation   bool
	OverlayEnabled      bool
	ShadowEnabled       bool
	PageOverflowEnabled bool

	HeaderShown       bool
	HasAbsoluteHeader bool
	HeaderHeight      float64
	MarginTop         float64

	Layout Layout
	Insets Insets
	Style  CardStyle

	// Header is the header rendered inside the card in screen header mode.
	Header *HeaderProps
}

// CardProps returns the render props of a mounted route.
func (c *Container) CardProps(key string) (CardProps, error) {
	_, i := c.find(key)
	if i < 0 {
		return CardProps{}, fmt.Errorf("%w: %s", ErrUnknownRoute, key)
	}
	return c.cardProps(i), nil
}

func (c *Container) cardProps(i int) CardProps {
	s := c.slots[i]
	o := s.desc.Options
	interp := c.cfg.cardInterpolator(o)
	modal := interp == CardModalPresentation

	p := CardProps{
		Scene:               c.scene(i),
		Active:              c.isActive(s),
		PointerEvents:       s.card.PointerEvents(),
		GestureEnabled:      s.card.Config().GestureEnabled && !s.first,
		Direction:           s.card.Direction(),
		ModalPresentation:   modal,
		OverlayEnabled:      modal,
		ShadowEnabled:       true,
		PageOverflowEnabled: c.cfg.HeaderMode != HeaderFloat && c.cfg.Mode == ModeCard,
		HeaderShown:         o.IsHeaderShown(),
		HeaderHeight:        c.headerHeight(s),
		Layout:              c.layout,
		Insets:              c.insets,
	}
	if o.CardOverlayEnabled != nil {
		p.OverlayEnabled = *o.CardOverlayEnabled
	}
	if o.CardShadowEnabled != nil {
		p.ShadowEnabled = *o.CardShadowEnabled
	}
	if prev, ok := c.previous(i); ok {
		p.BackTitle, p.HasBack = prev.Options.HeaderTitleFor(prev.Route.Name), true
	}
	if c.FloatHeaderAbsolute() && !o.HeaderTransparent {
		p.HasAbsoluteHeader = true
		p.MarginTop = p.HeaderHeight
	}

	p.Style = CardInterpolatorByName(interp)(CardInterpolation{
		Current:  p.Progress.Current.Value(),
		Next:     nextValue(p.Progress),
		Index:    i,
		Closing:  s.closing,
		Layout:   c.layout,
		Insets:   c.insets,
		Inverted: s.card.Direction().Multiplier(),
	})

	if c.cfg.HeaderMode == HeaderScreen {
		if h, ok := c.header(HeaderScreen, i, nil, nil); ok {
			p.Header = &h
		}
	}
	return p
}

// previous returns the descriptor of the route below slot i: the previous
// displayed route, or the slot below for a route that is leaving.
func (c *Container) previous(i int) (Descriptor, bool) {
	key := c.slots[i].key()
	for j, d := range c.displayed {
		if d.Route.Key == key {
			if j == 0 {
				return Descriptor{}, false
			}
			return c.displayed[j-1], true
		}
	}
	if i > 0 {
		return c.slots[i-1].desc, true
	}
	return Descriptor{}, false
}
