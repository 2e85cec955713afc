package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/agiangrant/stacknav"
	"github.com/agiangrant/stacknav/stack"
)

// maxSettle bounds the wait for animations at the end of a scenario.
const maxSettle = 10 * time.Second

// Scenario is a scripted navigation session.
type Scenario struct {
	Layout  LayoutSpec  `yaml:"layout"`
	Insets  InsetsSpec  `yaml:"insets"`
	FrameMs int         `yaml:"frame_ms"`
	Routes  []RouteSpec `yaml:"routes"`
	Steps   []Step      `yaml:"steps"`
}

type LayoutSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type InsetsSpec struct {
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
}

// RouteSpec is a route in a scenario. Options use the same keys as the
// screens section of the configuration file.
type RouteSpec struct {
	Key     string                `yaml:"key"`
	Name    string                `yaml:"name"`
	Options stacknav.ScreenConfig `yaml:",inline"`
}

func (r RouteSpec) route() (stack.Route, error) {
	if r.Name == "" {
		return stack.Route{}, errors.New("route needs a name")
	}
	opts, err := r.Options.Options()
	if err != nil {
		return stack.Route{}, fmt.Errorf("route %s: %w", r.Name, err)
	}
	return newRoute(r.Key, r.Name, opts), nil
}

// Step is one action. Exactly one field is set.
type Step struct {
	Push         *RouteSpec  `yaml:"push"`
	Pop          bool        `yaml:"pop"`
	Replace      *RouteSpec  `yaml:"replace"`
	Reset        []RouteSpec `yaml:"reset"`
	AdvanceMs    int         `yaml:"advance_ms"`
	Swipe        *SwipeSpec  `yaml:"swipe"`
	HeaderHeight *HeaderStep `yaml:"header_height"`
	Layout       *LayoutSpec `yaml:"layout"`
}

type HeaderStep struct {
	Key    string  `yaml:"key"`
	Height float64 `yaml:"height"`
}

func (s Step) actions() int {
	n := 0
	for _, set := range []bool{
		s.Push != nil, s.Pop, s.Replace != nil, s.Reset != nil,
		s.AdvanceMs > 0, s.Swipe != nil, s.HeaderHeight != nil, s.Layout != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// applyDefaults fills unset scenario fields.
func (s *Scenario) applyDefaults() {
	if s.Layout.Width == 0 {
		s.Layout.Width = 390
	}
	if s.Layout.Height == 0 {
		s.Layout.Height = 844
	}
	if s.FrameMs <= 0 {
		s.FrameMs = 16
	}
	if len(s.Routes) == 0 {
		s.Routes = []RouteSpec{{Key: "home", Name: "Home"}}
	}
}

// LoadScenario reads a YAML scenario file
func LoadScenario(path string) (Scenario, error) {
	var s Scenario
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return s, nil
}

// Simulate implements the 'stacknav simulate' command
func Simulate(args []string) error {
	fs := pflag.NewFlagSet("simulate", pflag.ContinueOnError)
	var flags commonFlags
	flags.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: stacknav simulate [flags] SCENARIO.yaml")
	}

	logger, err := newLogger(flags.logLevel)
	if err != nil {
		return err
	}
	cfg, err := flags.load(logger)
	if err != nil {
		return err
	}
	scenario, err := LoadScenario(fs.Arg(0))
	if err != nil {
		return err
	}
	return RunScenario(os.Stdout, cfg, scenario, logger)
}

// RunScenario plays the scenario against a fixed frame clock and writes one
// line per navigator event.
func RunScenario(w io.Writer, cfg stacknav.Config, s Scenario, logger *slog.Logger) error {
	s.applyDefaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	n, err := newNavigator(cfg, logger,
		stack.Layout{Width: s.Layout.Width, Height: s.Layout.Height},
		stack.Insets{Top: s.Insets.Top, Right: s.Insets.Right, Bottom: s.Insets.Bottom, Left: s.Insets.Left})
	if err != nil {
		return err
	}
	defer n.c.Close()

	r := &runner{n: n, w: w, frame: time.Duration(s.FrameMs) * time.Millisecond, start: time.Unix(0, 0)}
	r.now = r.start

	routes, err := routesOf(s.Routes)
	if err != nil {
		return err
	}
	if err := n.set(r.now, stack.State{Routes: routes, Index: len(routes) - 1}); err != nil {
		return err
	}
	if err := r.print(); err != nil {
		return err
	}

	for i, step := range s.Steps {
		if step.actions() != 1 {
			return fmt.Errorf("step %d: exactly one action required", i+1)
		}
		logger.Debug("step", "index", i+1, "at", r.now.Sub(r.start))
		if err := r.run(step); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		if err := r.print(); err != nil {
			return err
		}
	}

	if err := r.advance(maxSettle, true); err != nil {
		return err
	}
	return r.print()
}

func routesOf(specs []RouteSpec) ([]stack.Route, error) {
	routes := make([]stack.Route, 0, len(specs))
	for _, spec := range specs {
		route, err := spec.route()
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, nil
}

type runner struct {
	n     *navigator
	w     io.Writer
	frame time.Duration
	start time.Time
	now   time.Time
}

func (r *runner) run(step Step) error {
	n := r.n
	switch {
	case step.Push != nil:
		route, err := step.Push.route()
		if err != nil {
			return err
		}
		return n.push(r.now, route)
	case step.Pop:
		return n.pop(r.now)
	case step.Replace != nil:
		route, err := step.Replace.route()
		if err != nil {
			return err
		}
		return n.replace(r.now, route)
	case step.Reset != nil:
		routes, err := routesOf(step.Reset)
		if err != nil {
			return err
		}
		return n.set(r.now, stack.State{Routes: routes, Index: max(0, len(routes)-1)})
	case step.AdvanceMs > 0:
		return r.advance(time.Duration(step.AdvanceMs)*time.Millisecond, false)
	case step.Swipe != nil:
		now, err := n.runSwipe(r.now, r.frame, *step.Swipe)
		r.now = now
		return err
	case step.HeaderHeight != nil:
		return n.c.ReportHeaderHeight(step.HeaderHeight.Key, step.HeaderHeight.Height)
	case step.Layout != nil:
		return n.c.SetLayout(stack.Layout{Width: step.Layout.Width, Height: step.Layout.Height})
	}
	return nil
}

// advance steps frames for d, or until the stack is idle when untilIdle.
func (r *runner) advance(d time.Duration, untilIdle bool) error {
	end := r.now.Add(d)
	for r.now.Before(end) {
		if untilIdle && !r.n.c.Animating() {
			return nil
		}
		r.now = r.now.Add(r.frame)
		r.n.tick(r.now)
		if err := r.print(); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) print() error {
	events, err := r.n.drain(r.now)
	for _, e := range events {
		if _, werr := fmt.Fprintf(r.w, "%6dms  %s\n", r.now.Sub(r.start).Milliseconds(), e); werr != nil {
			return werr
		}
	}
	return err
}
