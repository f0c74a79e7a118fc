package timeline

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/daviddao/cuelane/internal/interval"
	"github.com/daviddao/cuelane/internal/viewport"
)

// tickEvery is the ruler spacing in cells.
const tickEvery = 10

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	markerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#CDD6F4"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F9E2AF"))

	playheadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F38BA8"))
)

// cell is one terminal column. A zero rune continues the wide rune to its
// left; style -1 is unstyled.
type cell struct {
	r     rune
	style int
}

type row []cell

func newRow(width int) row {
	r := make(row, width)
	for i := range r {
		r[i] = cell{r: ' ', style: -1}
	}
	return r
}

func (r row) put(x int, ch rune, style int) {
	if x >= 0 && x < len(r) {
		r[x] = cell{r: ch, style: style}
	}
}

// text writes s from x on, measuring each rune in cells.
func (r row) text(x int, s string, style int) {
	for _, ch := range s {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		if x+w > len(r) {
			return
		}
		if x >= 0 {
			r[x] = cell{r: ch, style: style}
			if w == 2 {
				r[x+1] = cell{style: style}
			}
		}
		x += w
	}
}

// canvas collects the styles used by one Render.
type canvas struct {
	styles []lipgloss.Style
}

func (c *canvas) add(s lipgloss.Style) int {
	c.styles = append(c.styles, s)
	return len(c.styles) - 1
}

func (c *canvas) render(r row) string {
	var b strings.Builder
	for i := 0; i < len(r); {
		var run strings.Builder
		j := i
		for ; j < len(r) && r[j].style == r[i].style; j++ {
			if r[j].r != 0 {
				run.WriteRune(r[j].r)
			}
		}
		if r[i].style < 0 {
			b.WriteString(run.String())
		} else {
			b.WriteString(c.styles[r[i].style].Render(run.String()))
		}
		i = j
	}
	return b.String()
}

func colorStyle(c interval.Color) lipgloss.Style {
	token := c.Solid
	if c.IsGradient() {
		token = c.Gradient.ColorStops[0]
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(token))
}

// Render paints the frame as three lines: a time ruler, the lane with
// interval spans, markers and the playhead, and the hover labels. The
// interval with id selected is highlighted. Render clears the dirty flag.
func (t *Timeline) Render(layer *viewport.Layer, playhead float64, selected string) string {
	t.dirty = false
	c := &canvas{}
	dim := c.add(dimStyle)

	ruler := newRow(t.width)
	first := (t.offset+tickEvery-1)/tickEvery*tickEvery - t.offset
	for x := first; x < t.width; x += tickEvery {
		ruler.put(x, '|', dim)
		ruler.text(x+1, FormatTime(t.PixelsToTime(t.offset+x)), dim)
	}

	lane := newRow(t.width)
	for x := range min(t.ContentWidth()-t.offset, t.width) {
		lane.put(x, '·', dim)
	}
	labels := newRow(t.width)

	if layer.Visible() {
		for _, sh := range layer.Shapes() {
			iv := sh.Interval()
			st := colorStyle(iv.Color())
			if iv.ID() == selected {
				st = st.Bold(true).Reverse(true)
			}
			idx := c.add(st)
			start, end := sh.Span()
			if start == end {
				lane.put(start, '│', idx)
				continue
			}
			for x := max(start, 0); x < min(end, t.width); x++ {
				lane.put(x, '━', idx)
			}
		}
	}

	marker := c.add(markerStyle)
	label := c.add(labelStyle)
	for _, n := range t.nodes {
		if !n.shown {
			continue
		}
		if n.kind == labelNode {
			labels.text(n.x, n.text, label)
			continue
		}
		style := marker
		if n.color != "" {
			style = c.add(markerStyle.Foreground(lipgloss.Color(n.color)))
		}
		for x := n.x; x < n.x+n.width; x++ {
			lane.put(x, n.glyph(), style)
		}
	}

	if ph := t.TimeToPixels(playhead) - t.offset; ph >= 0 && ph < t.width {
		lane.put(ph, '┃', c.add(playheadStyle))
	}

	lines := []string{c.render(ruler), c.render(lane), c.render(labels)}
	for i, line := range lines {
		if lipgloss.Width(line) > t.width {
			lines[i] = ansi.Truncate(line, t.width, "")
		}
	}
	return strings.Join(lines, "\n")
}
