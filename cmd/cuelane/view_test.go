package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/daviddao/cuelane/internal/snapshot"
)

func TestViewLoading(t *testing.T) {
	m := uiModel{}
	if got := m.View(); got != "Loading..." {
		t.Errorf("View() = %q, want Loading...", got)
	}
}

func TestViewFullRender(t *testing.T) {
	m := testModel(t, testConfig())
	out := ansi.Strip(m.View())

	for _, want := range []string{"cuelane", "Intervals", "Intro", "Verse", "0:01.0-0:02.0", "stepped x10", "2 intervals"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if lines := strings.Count(out, "\n") + 1; lines != m.height-1 {
		t.Errorf("View() has %d lines, want %d", lines, m.height-1)
	}
}

func TestViewRendersTimeline(t *testing.T) {
	m := testModel(t, testConfig())
	lines := strings.Split(ansi.Strip(m.View()), "\n")
	// Title, blank, ruler, lane.
	lane := []rune(lines[3])
	if len(lane) < 21 {
		t.Fatalf("lane too short: %q", lines[3])
	}
	if lane[9] != '[' || lane[10] != '━' || lane[20] != ']' {
		t.Errorf("lane = %q, want a's span at cells 9..20", lines[3])
	}
}

func TestViewSelectedShowsLabelAndDrag(t *testing.T) {
	m := testModel(t, testConfig())
	m = press(t, m, "tab", "[")
	out := ansi.Strip(m.View())
	if !strings.Contains(out, "[dragging start]") {
		t.Error("View() should mark the dragged marker")
	}
	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(strings.TrimLeft(lines[4], " "), "Intro") {
		t.Errorf("label row = %q, want the hovered label", lines[4])
	}
	if !strings.Contains(out, "move marker") {
		t.Error("status bar should show drag help")
	}
}

func TestViewHelp(t *testing.T) {
	m := testModel(t, testConfig())
	m = press(t, m, "?")
	out := ansi.Strip(m.View())
	if !strings.Contains(out, "zoom in") || !strings.Contains(out, "drag start marker") {
		t.Error("full help should list the key bindings")
	}
}

func TestViewEmpty(t *testing.T) {
	cfg := testConfig()
	cfg.Intervals = nil
	m := testModel(t, cfg)
	if !strings.Contains(ansi.Strip(m.View()), "no intervals") {
		t.Error("View() should say there are no intervals")
	}
}

func TestRenderStatusBar(t *testing.T) {
	m := testModel(t, testConfig())

	m.err = errors.New("boom")
	if !strings.Contains(ansi.Strip(m.renderStatusBar()), "boom") {
		t.Error("status bar should show the error")
	}

	m.err = nil
	m.status = "editing off"
	if !strings.Contains(ansi.Strip(m.renderStatusBar()), "editing off") {
		t.Error("status bar should show the status")
	}

	m.status = ""
	if !strings.Contains(ansi.Strip(m.renderStatusBar()), "intervals.add") {
		t.Error("status bar should fall back to the last interval event")
	}
	if w := lipgloss.Width(m.renderStatusBar()); w > m.width {
		t.Errorf("status bar width = %d, want <= %d", w, m.width)
	}
}

func TestFormatInterval(t *testing.T) {
	tests := []struct {
		iv   snapshot.Interval
		want []string
		not  string
	}{
		{snapshot.Interval{ID: "a", Start: 1, End: 2, Label: "Intro", Editable: true}, []string{"✎ a ", "0:01.0-0:02.0", "Intro"}, ""},
		{snapshot.Interval{ID: "cue", Start: 65.5, End: 65.5}, []string{"cue", "1:05.5"}, "-"},
		{snapshot.Interval{ID: strings.Repeat("x", 40), Start: 0, End: 1}, []string{"…"}, ""},
	}
	for _, tt := range tests {
		got := formatInterval(tt.iv, 8)
		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Errorf("formatInterval(%q) = %q, missing %q", tt.iv.ID, got, w)
			}
		}
		if tt.not != "" && strings.Contains(got, tt.not) {
			t.Errorf("formatInterval(%q) = %q, should not contain %q", tt.iv.ID, got, tt.not)
		}
	}
}

func TestContextHelp(t *testing.T) {
	if !strings.Contains(contextHelp(false), "tab: select") {
		t.Errorf("contextHelp(false) = %q", contextHelp(false))
	}
	if !strings.Contains(contextHelp(true), "move marker") {
		t.Errorf("contextHelp(true) = %q", contextHelp(true))
	}
}

func TestTruncateLines(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"hello world", 5, "hello"},
		{"short\nlonger line", 6, "short\nlonger"},
		{"unchanged", 0, "unchanged"},
		{"日本語", 4, "日本"},
	}
	for _, tt := range tests {
		if got := truncateLines(tt.in, tt.width); got != tt.want {
			t.Errorf("truncateLines(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
