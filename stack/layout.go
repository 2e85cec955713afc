package stack

import (
	"fmt"
	"math"
)

// Layout is the size of the navigator viewport.
type Layout struct {
	Width  float64
	Height float64
}

// Validate rejects negative or NaN sizes.
func (l Layout) Validate() error {
	if invalidLength(l.Width) || invalidLength(l.Height) {
		return &ConfigError{Field: "layout", Reason: fmt.Sprintf("size must not be negative, got %gx%g", l.Width, l.Height)}
	}
	return nil
}

// Insets are the safe-area insets supplied by the host.
type Insets struct {
	Top, Right, Bottom, Left float64
}

// Validate rejects negative or NaN insets.
func (i Insets) Validate() error {
	for _, v := range [...]float64{i.Top, i.Right, i.Bottom, i.Left} {
		if invalidLength(v) {
			return &ConfigError{Field: "insets", Reason: fmt.Sprintf("insets must not be negative, got %+v", i)}
		}
	}
	return nil
}

func invalidLength(v float64) bool {
	return v < 0 || math.IsNaN(v) || math.IsInf(v, 0)
}
