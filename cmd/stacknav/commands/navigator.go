package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/agiangrant/stacknav"
	"github.com/agiangrant/stacknav/gesture"
	"github.com/agiangrant/stacknav/stack"
)

// navigator owns the navigation state a host app would keep and reacts to
// the container the way a router does: a route closed by a swipe is
// removed from the state.
type navigator struct {
	c     *stack.Container
	rec   *stack.Recorder
	state stack.State
	log   *slog.Logger
}

func newNavigator(cfg stacknav.Config, logger *slog.Logger, layout stack.Layout, insets stack.Insets) (*navigator, error) {
	rec := &stack.Recorder{}
	c, err := stacknav.New(cfg, rec, logger)
	if err != nil {
		return nil, err
	}
	if err := c.SetLayout(layout); err != nil {
		return nil, err
	}
	if err := c.SetInsets(insets); err != nil {
		return nil, err
	}
	return &navigator{c: c, rec: rec, log: logger}, nil
}

// newRoute keys a route by its name and a random suffix when no key is
// given.
func newRoute(key, name string, opts stack.Options) stack.Route {
	if key == "" {
		key = name + "-" + uuid.NewString()[:8]
	}
	return stack.Route{Key: key, Name: name, Options: opts}
}

func (n *navigator) set(now time.Time, st stack.State) error {
	if err := n.c.SetState(now, st); err != nil {
		return err
	}
	n.state = st
	return nil
}

func (n *navigator) top() (stack.Route, bool) {
	if len(n.state.Routes) == 0 {
		return stack.Route{}, false
	}
	return n.state.Routes[n.state.Index], true
}

func (n *navigator) push(now time.Time, r stack.Route) error {
	routes := append(slices.Clone(n.state.Routes[:n.depth()]), r)
	return n.set(now, stack.State{Routes: routes, Index: len(routes) - 1})
}

func (n *navigator) pop(now time.Time) error {
	if n.depth() < 2 {
		return errors.New("nothing to pop")
	}
	routes := slices.Clone(n.state.Routes[:n.state.Index])
	return n.set(now, stack.State{Routes: routes, Index: len(routes) - 1})
}

func (n *navigator) replace(now time.Time, r stack.Route) error {
	if n.depth() == 0 {
		return n.push(now, r)
	}
	routes := slices.Clone(n.state.Routes[:n.depth()])
	routes[len(routes)-1] = r
	return n.set(now, stack.State{Routes: routes, Index: len(routes) - 1})
}

func (n *navigator) depth() int {
	if len(n.state.Routes) == 0 {
		return 0
	}
	return n.state.Index + 1
}

// tick advances one frame. Listener errors are logged and do not stop the
// frame loop.
func (n *navigator) tick(now time.Time) {
	if err := n.c.Tick(now); err != nil {
		n.log.Warn("listener failed", "error", err)
	}
}

// drain returns the events recorded since the last call and applies
// swipe dismissals to the state.
func (n *navigator) drain(now time.Time) ([]stack.Event, error) {
	var out []stack.Event
	for len(n.rec.Events) > 0 {
		events := slices.Clone(n.rec.Events)
		n.rec.Reset()
		out = append(out, events...)
		for _, e := range events {
			if e.Kind != stack.EventCloseRoute {
				continue
			}
			if err := n.dismiss(now, e.Route.Key); err != nil {
				return out, err
			}
		}
	}
	return out, nil
}

func (n *navigator) dismiss(now time.Time, key string) error {
	i := slices.IndexFunc(n.state.Routes[:n.depth()], func(r stack.Route) bool { return r.Key == key })
	if i < 0 {
		return nil
	}
	n.log.Debug("route dismissed", "key", key)
	routes := slices.Delete(slices.Clone(n.state.Routes), i, i+1)
	index := n.state.Index - 1
	if len(routes) == 0 {
		index = 0
	}
	return n.set(now, stack.State{Routes: routes, Index: index})
}

// edgePoint returns a touch point inside the activation edge of the top
// card and the card extent along the gesture axis.
func (n *navigator) edgePoint() (x, y, extent float64, dir gesture.Direction, err error) {
	r, ok := n.top()
	if !ok {
		return 0, 0, 0, dir, stack.ErrNoGestureTarget
	}
	props, err := n.c.CardProps(r.Key)
	if err != nil {
		return 0, 0, 0, dir, err
	}
	l := n.c.Layout()
	dir = props.Direction
	if dir.IsVertical() {
		x, y, extent = l.Width/2, 1, l.Height
		if dir.Multiplier() < 0 {
			y = l.Height - 1
		}
	} else {
		x, y, extent = 1, l.Height/2, l.Width
		if dir.Multiplier() < 0 {
			x = l.Width - 1
		}
	}
	return x, y, extent, dir, nil
}

// SwipeSpec describes a scripted edge swipe toward closing the top card.
type SwipeSpec struct {
	// Distance is the travel as a fraction of the card extent.
	Distance float64 `yaml:"distance"`
	// Velocity is the release speed in points per second, 0 to estimate.
	Velocity   float64 `yaml:"velocity"`
	DurationMs int     `yaml:"duration_ms"`
	Cancel     bool    `yaml:"cancel"`
}

// runSwipe plays s one frame at a time and returns the clock after release.
func (n *navigator) runSwipe(now time.Time, frame time.Duration, s SwipeSpec) (time.Time, error) {
	x, y, extent, dir, err := n.edgePoint()
	if err != nil {
		return now, err
	}
	if err := n.c.PointerDown(x, y); err != nil {
		return now, fmt.Errorf("swipe: %w", err)
	}

	steps := max(1, int(time.Duration(s.DurationMs)*time.Millisecond/frame))
	for i := 1; i <= steps; i++ {
		now = now.Add(frame)
		sample := gesture.Sample{
			Displacement: s.Distance * extent * dir.Multiplier() * float64(i) / float64(steps),
			TimestampMs:  now.UnixMilli(),
		}
		if err := n.c.PointerMove(now, sample); err != nil {
			return now, fmt.Errorf("swipe: %w", err)
		}
		n.tick(now)
	}

	if s.Cancel {
		if err := n.c.PointerCancel(now); err != nil && !errors.Is(err, gesture.ErrNotTracking) {
			return now, err
		}
		return now, nil
	}
	err = n.c.PointerUp(now, s.Velocity*dir.Multiplier())
	if errors.Is(err, gesture.ErrNotTracking) {
		return now, nil
	}
	return now, err
}
