package timeline

import (
	"slices"

	"github.com/mattn/go-runewidth"

	"github.com/daviddao/cuelane/internal/interval"
	"github.com/daviddao/cuelane/internal/viewport"
)

type nodeKind int

const (
	labelNode nodeKind = iota
	startMarkerNode
	endMarkerNode
)

// node is a label or marker drawn by Render once attached.
type node struct {
	tl        *Timeline
	kind      nodeKind
	iv        *interval.Interval
	text      string
	color     string
	x, width  int
	shown     bool
	destroyed bool
}

func (n *node) SetX(x int) { n.x = x }
func (n *node) X() int     { return n.x }
func (n *node) Width() int { return n.width }
func (n *node) Show()      { n.shown = true }
func (n *node) Hide()      { n.shown = false }

func (n *node) glyph() rune {
	if n.kind == startMarkerNode {
		return '['
	}
	return ']'
}

// AddToLayer attaches the node to the timeline that created it.
func (n *node) AddToLayer(s viewport.Surface) {
	if t, ok := s.(*Timeline); ok && t == n.tl && !n.destroyed && !slices.Contains(t.nodes, n) {
		t.nodes = append(t.nodes, n)
	}
}

func (n *node) Destroy() {
	n.destroyed = true
	n.tl.nodes = slices.DeleteFunc(n.tl.nodes, func(x *node) bool { return x == n })
}

// NewLabel returns nil for intervals without a label.
func (t *Timeline) NewLabel(o viewport.LabelOptions) viewport.Node {
	if o.Text == "" {
		return nil
	}
	return &node{
		tl:    t,
		kind:  labelNode,
		iv:    o.Interval,
		text:  o.Text,
		width: runewidth.StringWidth(o.Text),
		shown: true,
	}
}

func (t *Timeline) NewMarker(o viewport.MarkerOptions) viewport.Node {
	kind := endMarkerNode
	if o.StartMarker {
		kind = startMarkerNode
	}
	return &node{
		tl:    t,
		kind:  kind,
		iv:    o.Interval,
		color: o.Color,
		width: t.markerWidth,
		shown: true,
	}
}

// Nodes reports how many nodes are attached.
func (t *Timeline) Nodes() int { return len(t.nodes) }
