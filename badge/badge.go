// Package badge animates the visibility of a tab badge.
package badge

import (
	"math"
	"time"

	"github.com/agiangrant/stacknav/anim"
)

// DefaultSize is the badge diameter when none is given.
const DefaultSize = 18

// FadeDuration is the length of the show and hide animation.
const FadeDuration = 150 * time.Millisecond

// Style is the geometry of a rendered badge.
type Style struct {
	Size         float64
	BorderRadius float64
	FontSize     float64
	LineHeight   float64
}

// StyleFor derives the badge geometry from its size. A non-positive size
// falls back to DefaultSize.
func StyleFor(size float64) Style {
	if size <= 0 {
		size = DefaultSize
	}
	return Style{
		Size:         size,
		BorderRadius: size / 2,
		FontSize:     math.Floor(size * 3 / 4),
		LineHeight:   size - 1,
	}
}

// Badge fades and scales in when shown and stays rendered until its hide
// animation finishes.
type Badge struct {
	anim     *anim.Animator
	spec     anim.TimingSpec
	visible  bool
	rendered bool
	Size     float64
}

// New creates a badge already in its visible state, without animation.
func New(visible bool, registry *anim.Registry) *Badge {
	initial := 0.0
	if visible {
		initial = 1
	}
	b := &Badge{
		// A zero settle policy only finishes when the curve does.
		anim:     anim.NewAnimator(initial, anim.Settle{}, registry),
		spec:     anim.TimingSpec{Duration: FadeDuration, Easing: anim.EaseLinear},
		visible:  visible,
		rendered: visible,
		Size:     DefaultSize,
	}
	b.anim.OnSettle(func(target float64) {
		if target == 0 && !b.visible {
			b.rendered = false
		}
	})
	return b
}

// SetVisible animates toward shown or hidden. Repeating the current
// visibility does nothing.
func (b *Badge) SetVisible(now time.Time, visible bool) {
	if visible == b.visible {
		return
	}
	b.visible = visible
	target := 0.0
	if visible {
		target = 1
		b.rendered = true
	}
	var still float64
	b.anim.AnimateTo(now, anim.Request{Target: target, VelocityHint: &still}, b.spec)
}

// SetFadeDuration changes the length of later show and hide animations.
func (b *Badge) SetFadeDuration(d time.Duration) {
	if d >= 0 {
		b.spec.Duration = d
	}
}

// Visible reports the requested visibility.
func (b *Badge) Visible() bool { return b.visible }

// Animating reports whether a show or hide is in flight.
func (b *Badge) Animating() bool { return b.anim.Running() }

// Rendered reports whether the badge must still be drawn.
func (b *Badge) Rendered() bool { return b.rendered }

// Opacity is the current animated opacity.
func (b *Badge) Opacity() float64 { return b.anim.Position() }

// Scale grows from half size as the badge fades in.
func (b *Badge) Scale() float64 { return 0.5 + 0.5*b.Opacity() }

// Style returns the geometry for the badge's size.
func (b *Badge) Style() Style { return StyleFor(b.Size) }

// Progress exposes the opacity for hosts that bind to it.
func (b *Badge) Progress() anim.Progress { return b.anim.Progress() }

// Step advances the animation when no registry drives it.
func (b *Badge) Step(now time.Time) bool { return b.anim.Step(now) }

// Teardown stops any running animation.
func (b *Badge) Teardown() { b.anim.Stop() }
