package stack

// Card style interpolator names.
const (
	CardHorizontal        = "horizontal"
	CardVertical          = "vertical"
	CardModalPresentation = "modal-presentation"
	CardFade              = "fade"
	CardNone              = "none"
)

// Header style interpolator names.
const (
	HeaderUIKit      = "uikit"
	HeaderFade       = "fade"
	HeaderSlideLeft  = "slide-left"
	HeaderSlideRight = "slide-right"
	HeaderSlideUp    = "slide-up"
	HeaderNone       = "none"
)

// CardInterpolation is the input of a card style interpolator.
type CardInterpolation struct {
	Current  float64
	Next     float64 // 0 for the top card
	Index    int
	Closing  bool
	Layout   Layout
	Insets   Insets
	Inverted float64 // -1 for inverted gesture directions, else 1
}

// CardStyle is the visual state of a card for one frame.
type CardStyle struct {
	TranslateX     float64
	TranslateY     float64
	Scale          float64
	Opacity        float64
	OverlayOpacity float64
	ShadowOpacity  float64
	BorderRadius   float64
}

// CardStyleInterpolator maps progress to a card style.
type CardStyleInterpolator func(CardInterpolation) CardStyle

var cardInterpolators = map[string]CardStyleInterpolator{
	CardHorizontal:        forHorizontal,
	CardVertical:          forVertical,
	CardModalPresentation: forModalPresentation,
	CardFade:              forFadeFromBottom,
	CardNone:              forCardNoAnimation,
}

// IsCardInterpolator reports whether name is a known card interpolator.
func IsCardInterpolator(name string) bool {
	_, ok := cardInterpolators[name]
	return ok
}

// CardInterpolatorByName returns the named card interpolator or nil.
func CardInterpolatorByName(name string) CardStyleInterpolator {
	return cardInterpolators[name]
}

func isVerticalInterpolator(name string) bool {
	return name == CardVertical || name == CardModalPresentation
}

func identityCard() CardStyle {
	return CardStyle{Scale: 1, Opacity: 1}
}

func forHorizontal(p CardInterpolation) CardStyle {
	s := identityCard()
	w := p.Layout.Width
	s.TranslateX = (interpolate(p.Current, []float64{0, 1}, []float64{w, 0}) +
		interpolate(p.Next, []float64{0, 1}, []float64{0, -0.3 * w})) * p.Inverted
	s.OverlayOpacity = interpolate(p.Current, []float64{0, 1}, []float64{0, 0.07})
	s.ShadowOpacity = interpolate(p.Current, []float64{0, 1}, []float64{0, 0.3})
	return s
}

func forVertical(p CardInterpolation) CardStyle {
	s := identityCard()
	s.TranslateY = interpolate(p.Current, []float64{0, 1}, []float64{p.Layout.Height, 0}) * p.Inverted
	return s
}

// forModalPresentation stacks sheets: the covered card shrinks and moves up
// while the new one slides in with a top offset.
func forModalPresentation(p CardInterpolation) CardStyle {
	const topOffset = 10
	s := identityCard()
	progress := p.Current + p.Next
	first := p.Index == 0
	w, h := p.Layout.Width, p.Layout.Height

	aspect := 1.0
	if w > 0 {
		aspect = h / w
	}
	settled, covered := float64(topOffset), -topOffset*aspect
	if first {
		settled, covered = 0, p.Insets.Top-topOffset*aspect
	}
	s.TranslateY = interpolate(progress, []float64{0, 1, 2}, []float64{h, settled, covered})
	s.OverlayOpacity = interpolate(progress, []float64{0, 1, 1.0001, 2}, []float64{0, 0.3, 1, 1})
	if w > 0 {
		s.Scale = interpolate(progress, []float64{0, 1, 2}, []float64{1, 1, 1 - topOffset*2/w})
	}
	s.BorderRadius = 10
	if first {
		s.BorderRadius = interpolate(progress, []float64{0, 1, 2}, []float64{0, 0, 10})
	}
	return s
}

func forFadeFromBottom(p CardInterpolation) CardStyle {
	s := identityCard()
	s.TranslateY = interpolate(p.Current, []float64{0, 1}, []float64{p.Layout.Height * 0.08, 0})
	s.Opacity = interpolate(p.Current, []float64{0, 0.5, 0.9, 1}, []float64{0, 0.25, 0.7, 1})
	return s
}

func forCardNoAnimation(CardInterpolation) CardStyle {
	return identityCard()
}

// HeaderInterpolation is the input of a header style interpolator.
type HeaderInterpolation struct {
	Current      float64
	Next         float64
	Layout       Layout
	HeaderHeight float64
}

// HeaderStyle is the visual state of a header for one frame.
type HeaderStyle struct {
	TitleOpacity      float64
	LeftOpacity       float64
	RightOpacity      float64
	BackgroundOpacity float64
	TitleTranslateX   float64
	TranslateX        float64
	TranslateY        float64
}

// HeaderStyleInterpolator maps progress to a header style.
type HeaderStyleInterpolator func(HeaderInterpolation) HeaderStyle

var headerInterpolators = map[string]HeaderStyleInterpolator{
	HeaderUIKit:      forUIKit,
	HeaderFade:       forHeaderFade,
	HeaderSlideLeft:  forSlideLeft,
	HeaderSlideRight: forSlideRight,
	HeaderSlideUp:    forSlideUp,
	HeaderNone:       forHeaderNoAnimation,
}

// IsHeaderInterpolator reports whether name is a known header interpolator.
func IsHeaderInterpolator(name string) bool {
	_, ok := headerInterpolators[name]
	return ok
}

// HeaderInterpolatorByName returns the named header interpolator or nil.
func HeaderInterpolatorByName(name string) HeaderStyleInterpolator {
	return headerInterpolators[name]
}

func identityHeader() HeaderStyle {
	return HeaderStyle{TitleOpacity: 1, LeftOpacity: 1, RightOpacity: 1, BackgroundOpacity: 1}
}

// Header progress runs 0..2: entering up to 1, then covered by the next
// screen up to 2.
func headerProgress(p HeaderInterpolation) float64 {
	return p.Current + p.Next
}

func forUIKit(p HeaderInterpolation) HeaderStyle {
	progress := headerProgress(p)
	half := p.Layout.Width / 2
	s := identityHeader()
	s.LeftOpacity = interpolate(progress, []float64{0.3, 1, 1.5}, []float64{0, 1, 0})
	s.RightOpacity = interpolate(progress, []float64{0.5, 1, 1.5}, []float64{0, 1, 0})
	s.TitleOpacity = interpolate(progress, []float64{0, 0.4, 1, 1.5}, []float64{0, 0.1, 1, 0})
	s.TitleTranslateX = interpolate(progress, []float64{0, 1, 2}, []float64{half, 0, -half})
	return s
}

func forHeaderFade(p HeaderInterpolation) HeaderStyle {
	opacity := interpolate(headerProgress(p), []float64{0, 1, 2}, []float64{0, 1, 0})
	return HeaderStyle{TitleOpacity: opacity, LeftOpacity: opacity, RightOpacity: opacity, BackgroundOpacity: opacity}
}

func forSlideLeft(p HeaderInterpolation) HeaderStyle {
	s := identityHeader()
	w := p.Layout.Width
	s.TranslateX = interpolate(headerProgress(p), []float64{0, 1, 2}, []float64{w, 0, -w})
	return s
}

func forSlideRight(p HeaderInterpolation) HeaderStyle {
	s := identityHeader()
	w := p.Layout.Width
	s.TranslateX = interpolate(headerProgress(p), []float64{0, 1, 2}, []float64{-w, 0, w})
	return s
}

func forSlideUp(p HeaderInterpolation) HeaderStyle {
	s := identityHeader()
	h := p.HeaderHeight
	s.TranslateY = interpolate(headerProgress(p), []float64{0, 1, 2}, []float64{-h, 0, -h})
	return s
}

func forHeaderNoAnimation(HeaderInterpolation) HeaderStyle {
	return identityHeader()
}

// interpolate maps x through the piecewise linear curve given by in and out,
// clamping outside the input range. in must be increasing.
func interpolate(x float64, in, out []float64) float64 {
	if x <= in[0] {
		return out[0]
	}
	last := len(in) - 1
	if x >= in[last] {
		return out[last]
	}
	for i := 1; i <= last; i++ {
		if x <= in[i] {
			t := (x - in[i-1]) / (in[i] - in[i-1])
			return out[i-1] + t*(out[i]-out[i-1])
		}
	}
	return out[last]
}
