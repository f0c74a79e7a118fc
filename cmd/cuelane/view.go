package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/daviddao/cuelane/internal/snapshot"
	"github.com/daviddao/cuelane/internal/timeline"
)

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1E1E2E")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#89B4FA"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#7C3AED"))

	editableStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#1E1E2E"))
)

// --- View rendering ---

func (m uiModel) View() string {
	if m.width == 0 || m.snap == nil {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.renderTitleBar())
	b.WriteString("\n\n")

	b.WriteString(m.app.tl.Render(m.app.layer, m.snap.Playhead, m.selected))
	b.WriteString("\n\n")

	contentHeight := m.height - 8 // title + timeline + status + padding
	if m.showHelp {
		contentHeight -= 4
	}
	lines := strings.Split(m.renderIntervals(), "\n")
	if contentHeight > 0 && len(lines) > contentHeight {
		lines = lines[:contentHeight]
	}
	b.WriteString(truncateLines(strings.Join(lines, "\n"), m.width))

	rendered := strings.Count(b.String(), "\n")
	for rendered < m.height-2 {
		b.WriteRune('\n')
		rendered++
	}

	if m.showHelp {
		b.WriteString(m.help.View(keys))
	} else {
		b.WriteString(m.renderStatusBar())
	}
	return b.String()
}

func (m uiModel) renderTitleBar() string {
	title := titleStyle.Render("cuelane")
	z := m.snap.Zoom
	zoomText := fmt.Sprintf("%s x%d", z.Mode, z.Scale)
	if z.Mode == "continuous" {
		zoomText = fmt.Sprintf("%s %.2f x%d", z.Mode, z.Value, z.Scale)
	}
	play := "paused"
	if m.app.clock.Playing() {
		play = "playing"
	}
	stats := dimStyle.Render(fmt.Sprintf(
		"%s / %s %s | %s | %d intervals",
		timeline.FormatTime(m.snap.Playhead),
		timeline.FormatTime(m.snap.Duration),
		play,
		zoomText,
		m.snap.TotalIntervals,
	))
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(title)-lipgloss.Width(stats)-2))
	return title + gap + stats
}

// renderIntervals lists every interval in store order with its span and
// label. Intervals outside the frame are dimmed.
func (m uiModel) renderIntervals() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Intervals"))
	b.WriteRune('\n')
	if len(m.snap.Intervals) == 0 {
		b.WriteString(dimStyle.Render("  no intervals; press a to add one at the playhead"))
		return b.String()
	}

	idWidth := 2
	for _, iv := range m.snap.Intervals {
		idWidth = max(idWidth, runewidth.StringWidth(iv.ID))
	}
	idWidth = min(idWidth, 32)

	for _, iv := range m.snap.Intervals {
		line := formatInterval(iv, idWidth)
		switch {
		case iv.ID == m.selected:
			line = selectedStyle.Render(line + m.dragSuffix())
		case !iv.OnScreen:
			line = dimStyle.Render(line)
		case iv.Editable:
			line = editableStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteRune('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func formatInterval(iv snapshot.Interval, idWidth int) string {
	id := runewidth.FillRight(runewidth.Truncate(iv.ID, idWidth, "…"), idWidth)
	span := timeline.FormatTime(iv.Start) + "-" + timeline.FormatTime(iv.End)
	if iv.Start == iv.End {
		span = timeline.FormatTime(iv.Start)
	}
	edit := " "
	if iv.Editable {
		edit = "✎"
	}
	return fmt.Sprintf("  %s %s %-17s %s", edit, id, span, iv.Label)
}

func (m uiModel) dragSuffix() string {
	active, start := m.app.dragging(m.selected)
	if !active {
		return ""
	}
	if start {
		return "  [dragging start]"
	}
	return "  [dragging end]"
}

func (m uiModel) renderStatusBar() string {
	left := " " + contextHelp(m.isDragging())
	var right string
	switch {
	case m.err != nil:
		right = errorStyle.Render(m.err.Error()) + " "
	case m.status != "":
		right = m.status + " "
	case m.app.lastEvent != "":
		right = m.app.lastEvent + " "
	default:
		right = fmt.Sprintf("loaded %s ago ", time.Since(m.lastReload).Truncate(time.Second))
	}
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right)))
	return statusBarStyle.Render(truncateLines(left+gap+right, m.width))
}

// truncateLines truncates each line in content to at most width visible
// characters, preserving ANSI escape codes.
func truncateLines(content string, width int) string {
	if width <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if lipgloss.Width(line) > width {
			lines[i] = ansi.Truncate(line, width, "")
		}
	}
	return strings.Join(lines, "\n")
}
