package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"

	"github.com/agiangrant/stacknav/badge"
	"github.com/agiangrant/stacknav/gesture"
	"github.com/agiangrant/stacknav/stack"
)

// Terminal cells are mapped to layout points at a fixed scale.
const (
	cellWidth  = 8
	cellHeight = 16

	frameInterval = time.Second / 60
	headerRows    = 1
	footerRows    = 3
	eventLogSize  = 4
)

type previewKeys struct {
	Push    key.Binding
	Pop     key.Binding
	Replace key.Binding
	Badge   key.Binding
	Quit    key.Binding
}

var defaultPreviewKeys = previewKeys{
	Push: key.NewBinding(
		key.WithKeys("p", "enter"),
		key.WithHelp("p", "push"),
	),
	Pop: key.NewBinding(
		key.WithKeys("b", "backspace"),
		key.WithHelp("b", "pop"),
	),
	Replace: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "replace"),
	),
	Badge: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "badge"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	badgeStyle  = lipgloss.NewStyle().Background(lipgloss.Color("9")).Foreground(lipgloss.Color("15"))
	badgeFaint  = badgeStyle.Faint(true)
)

type frameMsg time.Time

func scheduleFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

type previewModel struct {
	nav   *navigator
	keys  previewKeys
	badge *badge.Badge
	clock func() time.Time

	cols, rows int
	ticking    bool
	pushed     int

	dragging bool
	dragFrom float64
	dragAxis gesture.Direction

	status string
	events []string
}

func newPreviewModel(nav *navigator, clock func() time.Time) *previewModel {
	return &previewModel{
		nav:   nav,
		keys:  defaultPreviewKeys,
		badge: badge.New(false, nav.c.Registry()),
		clock: clock,
	}
}

func (m *previewModel) Init() tea.Cmd { return nil }

func (m *previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	now := m.clock()
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.report(m.nav.c.SetLayout(m.layout()))

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Push):
			m.pushed++
			name := fmt.Sprintf("Screen %d", m.pushed)
			m.report(m.nav.push(now, newRoute("", name, stack.Options{})))
		case key.Matches(msg, m.keys.Pop):
			m.report(m.nav.pop(now))
		case key.Matches(msg, m.keys.Replace):
			m.pushed++
			m.report(m.nav.replace(now, newRoute("", fmt.Sprintf("Screen %d", m.pushed), stack.Options{})))
		case key.Matches(msg, m.keys.Badge):
			m.badge.SetVisible(now, !m.badge.Visible())
		}

	case tea.MouseMsg:
		m.mouse(now, msg)

	case frameMsg:
		m.nav.tick(time.Time(msg))
		m.ticking = false
	}

	m.collect(now)
	if !m.ticking && m.nav.c.Animating() {
		m.ticking = true
		return m, scheduleFrame()
	}
	return m, nil
}

// mouse turns a left button drag into an edge swipe.
func (m *previewModel) mouse(now time.Time, msg tea.MouseMsg) {
	x := float64(msg.X * cellWidth)
	y := float64((msg.Y - headerRows) * cellHeight)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		_, _, _, dir, err := m.nav.edgePoint()
		if err != nil {
			return
		}
		if err := m.nav.c.PointerDown(x, y); err != nil {
			return
		}
		m.dragging, m.dragAxis = true, dir
		m.dragFrom = x
		if dir.IsVertical() {
			m.dragFrom = y
		}
	case tea.MouseActionMotion:
		if !m.dragging {
			return
		}
		pos := x
		if m.dragAxis.IsVertical() {
			pos = y
		}
		m.report(m.nav.c.PointerMove(now, gesture.Sample{Displacement: pos - m.dragFrom, TimestampMs: now.UnixMilli()}))
	case tea.MouseActionRelease:
		if m.dragging {
			m.dragging = false
			m.report(m.nav.c.PointerUp(now, 0))
		}
	}
}

func (m *previewModel) report(err error) {
	if err != nil {
		m.status = err.Error()
	}
}

func (m *previewModel) collect(now time.Time) {
	events, err := m.nav.drain(now)
	m.report(err)
	for _, e := range events {
		m.events = append(m.events, e.String())
	}
	if len(m.events) > eventLogSize {
		m.events = m.events[len(m.events)-eventLogSize:]
	}
}

func (m *previewModel) layout() stack.Layout {
	return stack.Layout{
		Width:  float64(max(1, m.cols) * cellWidth),
		Height: float64(max(1, m.rows-headerRows-footerRows) * cellHeight),
	}
}

func (m *previewModel) View() string {
	if m.cols == 0 {
		return "loading..."
	}
	bodyRows := max(1, m.rows-headerRows-footerRows)

	var b strings.Builder
	b.WriteString(headerStyle.Render(m.renderHeaders()))
	b.WriteByte('\n')
	b.WriteString(m.renderCards(bodyRows))
	b.WriteByte('\n')
	b.WriteString(m.renderStatus())
	return b.String()
}

// renderHeaders draws the title and back label of every header at its
// interpolated offset.
func (m *previewModel) renderHeaders() string {
	line := newCanvas(m.cols, 1)
	for _, h := range m.nav.c.Headers() {
		shift := int(h.Style.TranslateX / cellWidth)
		if h.HasBack && h.Style.LeftOpacity >= 0.5 {
			line.text(shift, 0, "< "+h.BackTitle)
		}
		if h.Style.TitleOpacity >= 0.5 {
			title := h.Options.HeaderTitleFor(h.Route.Name)
			x := (m.cols-len(title))/2 + shift + int(h.Style.TitleTranslateX/cellWidth)
			line.text(x, 0, title)
		}
	}
	return line.String()
}

func (m *previewModel) renderCards(rows int) string {
	c := newCanvas(m.cols, rows)
	for _, s := range m.nav.c.Scenes() {
		props, err := m.nav.c.CardProps(s.Route.Key)
		if err != nil {
			continue
		}
		x := int(props.Style.TranslateX / cellWidth)
		y := int((props.Style.TranslateY + props.MarginTop) / cellHeight)
		c.box(x, y, m.cols, rows-y)
		c.text(x+2, y+1, s.Route.Name)
		c.text(x+2, y+2, fmt.Sprintf("%s  progress %.2f", s.State, s.Progress.Current.Value()))
		if props.GestureEnabled {
			c.text(x+2, y+3, "drag from the edge to go back")
		}
	}
	return c.String()
}

func (m *previewModel) renderStatus() string {
	parts := []string{fmt.Sprintf("focused %s", m.nav.c.Focused())}
	if m.badge.Rendered() {
		style := badgeStyle
		if m.badge.Opacity() < 0.5 {
			style = badgeFaint
		}
		parts = append(parts, style.Render(fmt.Sprintf(" %d ", m.pushed)))
	}
	var help []string
	for _, b := range []key.Binding{m.keys.Push, m.keys.Pop, m.keys.Replace, m.keys.Badge, m.keys.Quit} {
		help = append(help, b.Help().Key+" "+b.Help().Desc)
	}

	status := m.status
	if status != "" {
		status = errorStyle.Render(status)
	}
	return strings.Join([]string{
		strings.Join(parts, "  ") + "  " + status,
		statusStyle.Render(strings.Join(m.events, " | ")),
		statusStyle.Render(strings.Join(help, " · ")),
	}, "\n")
}

// Preview implements the 'stacknav preview' command
func Preview(args []string) error {
	fs := pflag.NewFlagSet("preview", pflag.ContinueOnError)
	var flags commonFlags
	flags.register(fs)
	mode := fs.String("mode", "", "override the presentation: card or modal")
	headerMode := fs.String("header-mode", "", "override the header mode: float or screen")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger, err := newLogger(flags.logLevel)
	if err != nil {
		return err
	}
	cfg, err := flags.load(logger)
	if err != nil {
		return err
	}
	if *mode != "" {
		cfg.Stack.Mode = *mode
	}
	if *headerMode != "" {
		cfg.Stack.HeaderMode = *headerMode
	}

	nav, err := newNavigator(cfg, logger, stack.Layout{Width: 640, Height: 320}, stack.Insets{})
	if err != nil {
		return err
	}
	defer nav.c.Close()
	if err := nav.push(time.Now(), newRoute("home", "Home", stack.Options{})); err != nil {
		return err
	}

	program := tea.NewProgram(newPreviewModel(nav, time.Now), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = program.Run()
	return err
}
