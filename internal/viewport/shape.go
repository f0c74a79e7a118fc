package viewport

import (
	"github.com/daviddao/cuelane/internal/events"
	"github.com/daviddao/cuelane/internal/interval"
)

// Shape is the on-screen handle of one visible interval: an optional label
// shown on hover and, when editable, a start and an end marker.
//
// The start marker sits left of the start-time pixel (its right edge on the
// pixel) and the end marker right of the end-time pixel (its left edge on the
// pixel), so markers never cover the span itself.
type Shape struct {
	layer *Layer
	iv    *interval.Interval

	label       Node
	startMarker Node
	endMarker   Node

	startPx, endPx int
	placed         bool
	hovered        bool

	drag *interval.Drag
}

func newShape(l *Layer, iv *interval.Interval) *Shape {
	sh := &Shape{layer: l, iv: iv}

	sh.label = l.factory.NewLabel(LabelOptions{Interval: iv, Text: iv.LabelText()})
	if sh.label != nil {
		sh.label.Hide()
	}

	if l.editing && iv.Editable() {
		sh.startMarker = l.factory.NewMarker(MarkerOptions{
			Interval:    iv,
			StartMarker: true,
			Draggable:   true,
			Color:       l.startMarkerColor,
		})
		sh.endMarker = l.factory.NewMarker(MarkerOptions{
			Interval:  iv,
			Draggable: true,
			Color:     l.endMarkerColor,
		})
	}

	for _, n := range sh.nodes() {
		n.AddToLayer(l.surface)
		if !l.visible && n != sh.label {
			n.Hide()
		}
	}
	return sh
}

// nodes returns the non-nil nodes of the shape.
func (sh *Shape) nodes() []Node {
	var out []Node
	for _, n := range []Node{sh.label, sh.startMarker, sh.endMarker} {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Interval returns the interval the shape draws.
func (sh *Shape) Interval() *interval.Interval { return sh.iv }

// Label, StartMarker and EndMarker return the shape's nodes. Any of them may
// be nil: labels depend on the factory, markers on editing.
func (sh *Shape) Label() Node       { return sh.label }
func (sh *Shape) StartMarker() Node { return sh.startMarker }
func (sh *Shape) EndMarker() Node   { return sh.endMarker }

// Hovered reports whether the pointer is over the shape.
func (sh *Shape) Hovered() bool { return sh.hovered }

// Span returns the frame-relative pixels of the interval's start and end as
// of the last placement.
func (sh *Shape) Span() (start, end int) { return sh.startPx, sh.endPx }

// place recomputes every node position from the interval's times and the
// surface frame offset. It reports whether anything moved.
func (sh *Shape) place() bool {
	s := sh.layer.surface
	offset := s.FrameOffset()
	startPx := s.TimeToPixels(sh.iv.StartTime()) - offset
	endPx := s.TimeToPixels(sh.iv.EndTime()) - offset

	moved := !sh.placed || startPx != sh.startPx || endPx != sh.endPx
	sh.startPx, sh.endPx, sh.placed = startPx, endPx, true

	if sh.label != nil && sh.label.X() != startPx {
		sh.label.SetX(startPx)
		moved = true
	}
	if m := sh.startMarker; m != nil {
		if x := startPx - m.Width(); m.X() != x {
			m.SetX(x)
			moved = true
		}
	}
	if m := sh.endMarker; m != nil && m.X() != endPx {
		m.SetX(endPx)
		moved = true
	}
	return moved
}

// FitToView repositions the shape against the current frame.
func (sh *Shape) FitToView() bool { return sh.place() }

func (sh *Shape) publish(kind events.Kind) {
	sh.layer.store.Bus().Publish(kind, interval.Event{Kind: kind, Interval: sh.iv})
}

// MouseEnter shows the label and publishes intervals.mouseenter.
func (sh *Shape) MouseEnter() {
	sh.hovered = true
	if sh.label != nil {
		sh.label.Show()
		sh.layer.surface.Draw()
	}
	sh.publish(events.IntervalsMouseEnter)
}

// MouseLeave hides the label and publishes intervals.mouseleave.
func (sh *Shape) MouseLeave() {
	sh.hovered = false
	if sh.label != nil {
		sh.label.Hide()
		sh.layer.surface.Draw()
	}
	sh.publish(events.IntervalsMouseLeave)
}

// Click publishes intervals.click.
func (sh *Shape) Click() { sh.publish(events.IntervalsClick) }

func (sh *Shape) marker(start bool) Node {
	if start {
		return sh.startMarker
	}
	return sh.endMarker
}

// Dragging reports whether a marker of this shape is being dragged, and
// which one.
func (sh *Shape) Dragging() (active, startMarker bool) {
	if sh.drag == nil || !sh.drag.Active() {
		return false, false
	}
	return true, sh.drag.StartMarker()
}

// DragStart begins dragging the start or end marker. It fails when the shape
// has no such marker.
func (sh *Shape) DragStart(startMarker bool) bool {
	if sh.marker(startMarker) == nil {
		return false
	}
	if sh.drag != nil {
		sh.drag.End()
	}
	sh.drag = sh.layer.store.BeginDrag(sh.iv, startMarker)
	return true
}

// DragTo moves the dragged marker to frame-relative x and commits the new
// boundary time. The marker is first clamped so the start marker's right
// edge never passes the end marker's left edge; the committed time is
// clamped again by the drag itself.
func (sh *Shape) DragTo(x int) bool {
	active, start := sh.Dragging()
	if !active {
		return false
	}
	m := sh.marker(start)
	if start {
		if sh.endMarker != nil {
			x = min(x, sh.endMarker.X()-m.Width())
		}
	} else if sh.startMarker != nil {
		x = max(x, sh.startMarker.X()+sh.startMarker.Width())
	}
	m.SetX(x)
	return sh.drag.Move(sh.layer.surface, x, m.Width())
}

// DragBy moves the dragged marker by dx pixels.
func (sh *Shape) DragBy(dx int) bool {
	active, start := sh.Dragging()
	if !active {
		return false
	}
	return sh.DragTo(sh.marker(start).X() + dx)
}

// DragEnd finishes an active drag, publishing intervals.dragend. It does
// nothing when no marker is being dragged.
func (sh *Shape) DragEnd() {
	if sh.drag != nil {
		sh.drag.End()
		sh.drag = nil
	}
}

// Destroy ends any active drag and destroys the shape's nodes. It does not
// remove the shape from its layer.
func (sh *Shape) Destroy() {
	sh.DragEnd()
	for _, n := range sh.nodes() {
		n.Destroy()
	}
}
