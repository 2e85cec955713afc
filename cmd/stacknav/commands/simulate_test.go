package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/agiangrant/stacknav"
)

// eventLines strips the timestamps from simulate output.
func eventLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if _, event, ok := strings.Cut(strings.TrimSpace(line), "ms  "); ok {
			lines = append(lines, event)
		}
	}
	return lines
}

func runYAML(t *testing.T, script string) ([]string, error) {
	t.Helper()
	var s Scenario
	if err := yaml.Unmarshal([]byte(script), &s); err != nil {
		t.Fatalf("bad scenario: %v", err)
	}
	var out bytes.Buffer
	err := RunScenario(&out, stacknav.DefaultConfig(), s, nil)
	return eventLines(out.String()), err
}

func equalLines(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d events:\n%s\nwant:\n%s", len(got), strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRunScenarioPushPop(t *testing.T) {
	got, err := runYAML(t, `
routes:
  - {key: home, name: Home}
steps:
  - push: {key: details, name: Details}
  - advance_ms: 400
  - pop: true
`)
	if err != nil {
		t.Fatalf("RunScenario() error = %v", err)
	}
	equalLines(t, got, []string{
		"page-change-confirm details force=true",
		"transition-start details closing=false",
		"transition-end details closing=false",
		"open-route details",
		"page-change-confirm details force=true",
		"transition-start details closing=true",
		"transition-end details closing=true",
		"close-route details",
	})
}

func TestRunScenarioSwipeDismissUpdatesState(t *testing.T) {
	got, err := runYAML(t, `
routes:
  - {key: home, name: Home}
  - {key: details, name: Details}
steps:
  - swipe: {distance: 0.8, duration_ms: 160}
  - advance_ms: 400
  - push: {key: again, name: Details}
`)
	if err != nil {
		t.Fatalf("RunScenario() error = %v", err)
	}
	equalLines(t, got, []string{
		"page-change-start details",
		"gesture-start details",
		"gesture-end details",
		"page-change-confirm details force=false",
		"transition-start details closing=true",
		"transition-end details closing=true",
		"close-route details",
		"page-change-confirm again force=true",
		"transition-start again closing=false",
		"transition-end again closing=false",
		"open-route again",
	})
}

func TestRunScenarioCancelledSwipe(t *testing.T) {
	got, err := runYAML(t, `
routes:
  - {key: home, name: Home}
  - {key: details, name: Details}
steps:
  - swipe: {distance: 0.2, duration_ms: 160, cancel: true}
`)
	if err != nil {
		t.Fatalf("RunScenario() error = %v", err)
	}
	if len(got) < 2 || got[0] != "page-change-start details" || got[1] != "gesture-start details" {
		t.Fatalf("events = %v", got)
	}
	for _, line := range got {
		if strings.HasPrefix(line, "close-route") || strings.HasPrefix(line, "gesture-end") {
			t.Errorf("cancelled swipe produced %q", line)
		}
	}
	if !contains(got, "gesture-cancel details") {
		t.Errorf("events = %v, want gesture-cancel", got)
	}
}

func contains(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}

func TestRunScenarioHeaderHeight(t *testing.T) {
	got, err := runYAML(t, `
routes:
  - {key: home, name: Home}
steps:
  - header_height: {key: home, height: 80}
  - header_height: {key: home, height: 80}
`)
	if err != nil {
		t.Fatalf("RunScenario() error = %v", err)
	}
	equalLines(t, got, []string{"header-height-change home height=80"})
}

func TestRunScenarioErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"two actions", "steps:\n  - {pop: true, advance_ms: 10}\n", "step 1: exactly one action"},
		{"empty step", "steps:\n  - {}\n", "step 1: exactly one action"},
		{"pop root", "steps:\n  - pop: true\n", "nothing to pop"},
		{"unnamed route", "steps:\n  - push: {key: x}\n", "route needs a name"},
		{"bad option", "steps:\n  - push: {name: X, gesture_direction: up}\n", "gesture_direction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runYAML(t, tt.script)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	script := `
layout: {width: 320, height: 640}
frame_ms: 8
routes:
  - name: Home
    header_shown: false
steps:
  - push: {name: Details, title: Info}
`
	if err := os.WriteFile(path, []byte(script), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario() error = %v", err)
	}
	if s.Layout.Width != 320 || s.FrameMs != 8 {
		t.Errorf("scenario = %+v", s)
	}
	home := s.Routes[0]
	if home.Options.HeaderShown == nil || *home.Options.HeaderShown {
		t.Errorf("inline options not decoded: %+v", home.Options)
	}
	if s.Steps[0].Push.Options.Title != "Info" {
		t.Errorf("push title = %q", s.Steps[0].Push.Options.Title)
	}

	r, err := home.route()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(r.Key, "Home-") || len(r.Key) != len("Home-")+8 {
		t.Errorf("generated key = %q", r.Key)
	}
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
		if _, err := newLogger(level); err != nil {
			t.Errorf("newLogger(%q) error = %v", level, err)
		}
	}
	if _, err := newLogger("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
