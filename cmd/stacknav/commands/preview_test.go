package commands

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agiangrant/stacknav"
	"github.com/agiangrant/stacknav/stack"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestPreview(t *testing.T) (*previewModel, *fakeClock) {
	t.Helper()
	nav, err := newNavigator(stacknav.DefaultConfig(), slog.New(slog.DiscardHandler), stack.Layout{Width: 640, Height: 320}, stack.Insets{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { nav.c.Close() })
	clock := &fakeClock{now: time.Unix(100, 0)}
	if err := nav.push(clock.now, newRoute("home", "Home", stack.Options{})); err != nil {
		t.Fatal(err)
	}
	m := newPreviewModel(nav, clock.Now)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, clock
}

func press(m *previewModel, r rune) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	return cmd
}

func TestPreviewPushSchedulesFrames(t *testing.T) {
	m, clock := newTestPreview(t)

	if cmd := press(m, 'p'); cmd == nil {
		t.Fatal("push should schedule a frame")
	}
	if !m.ticking {
		t.Error("model should be ticking while the push animates")
	}

	clock.now = clock.now.Add(400 * time.Millisecond)
	if _, cmd := m.Update(frameMsg(clock.now)); cmd != nil {
		t.Error("no frame should be scheduled once the stack is idle")
	}
	if got := m.nav.c.Focused(); !strings.HasPrefix(got, "Screen 1-") {
		t.Errorf("focused = %q, want the pushed screen", got)
	}
	view := m.View()
	if !strings.Contains(view, "Screen 1") || !strings.Contains(view, "< Home") {
		t.Errorf("view missing title or back label:\n%s", view)
	}
	if !strings.Contains(view, "open-route") {
		t.Errorf("view missing event log:\n%s", view)
	}
}

func TestPreviewPopAtRootReportsError(t *testing.T) {
	m, _ := newTestPreview(t)
	press(m, 'b')
	if !strings.Contains(m.status, "nothing to pop") {
		t.Errorf("status = %q", m.status)
	}
}

func TestPreviewBadgeFades(t *testing.T) {
	m, clock := newTestPreview(t)
	if m.badge.Rendered() {
		t.Fatal("badge should start hidden")
	}
	if cmd := press(m, 'n'); cmd == nil {
		t.Fatal("showing the badge should schedule a frame")
	}
	clock.now = clock.now.Add(200 * time.Millisecond)
	m.Update(frameMsg(clock.now))
	if !m.badge.Rendered() || m.badge.Opacity() != 1 {
		t.Errorf("badge rendered=%v opacity=%v", m.badge.Rendered(), m.badge.Opacity())
	}
}

func TestPreviewMouseSwipe(t *testing.T) {
	m, clock := newTestPreview(t)
	press(m, 'p')
	clock.now = clock.now.Add(400 * time.Millisecond)
	m.Update(frameMsg(clock.now))

	m.Update(tea.MouseMsg{X: 0, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	for x := 5; x <= 60; x += 5 {
		clock.now = clock.now.Add(16 * time.Millisecond)
		m.Update(tea.MouseMsg{X: x, Y: 5, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	}
	m.Update(tea.MouseMsg{X: 60, Y: 5, Action: tea.MouseActionRelease})
	for i := 0; i < 30; i++ {
		clock.now = clock.now.Add(16 * time.Millisecond)
		m.Update(frameMsg(clock.now))
	}

	if got := m.nav.c.Focused(); got != "home" {
		t.Errorf("focused = %q after swipe back, want home", got)
	}
	if m.nav.depth() != 1 {
		t.Errorf("navigator depth = %d, want 1", m.nav.depth())
	}
}

func TestCanvas(t *testing.T) {
	c := newCanvas(6, 3)
	c.box(1, 0, 4, 3)
	c.text(2, 1, "hello")
	c.set(-1, 0, 'x')
	// text overwrites the border it crosses and is clipped at the edge
	want := " +--+ \n |hell\n +--+ "
	if got := c.String(); got != want {
		t.Errorf("canvas =\n%q\nwant\n%q", got, want)
	}
}
