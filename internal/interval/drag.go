package interval

import "github.com/daviddao/cuelane/internal/events"

// Projector is the slice of the rendering surface the drag protocol needs:
// the inverse projection and the visible frame.
type Projector interface {
	PixelsToTime(px int) float64
	FrameOffset() int
	Width() int
}

type dragState int

const (
	dragIdle dragState = iota
	dragActive
)

// Drag is one boundary-marker drag: idle -> dragging -> idle.
//
// While dragging, Move writes the boundary straight onto the interval without
// whole-entity validation. It clamps the committed time against the opposite
// boundary, so StartTime <= EndTime holds whatever marker position the caller
// passes; pixel rounding would otherwise let a marker clamped to the other
// marker's pixel land just past its time.
type Drag struct {
	store       *Store
	iv          *Interval
	startMarker bool
	state       dragState
}

// BeginDrag starts dragging the start (or end) marker of iv and publishes
// intervals.dragstart.
func (s *Store) BeginDrag(iv *Interval, startMarker bool) *Drag {
	d := &Drag{store: s, iv: iv, startMarker: startMarker, state: dragActive}
	s.logger.Debug("drag start", "id", iv.id, "start_marker", startMarker)
	s.bus.Publish(events.IntervalsDragStart, Event{Kind: events.IntervalsDragStart, Interval: iv, StartMarker: startMarker})
	return d
}

// Interval returns the interval being dragged.
func (d *Drag) Interval() *Interval { return d.iv }

// StartMarker reports whether the start boundary is being dragged.
func (d *Drag) StartMarker() bool { return d.startMarker }

// Active reports whether the drag has not ended yet.
func (d *Drag) Active() bool { return d.state == dragActive }

// Move commits the boundary for a marker drawn at markerX, relative to the
// frame's left edge. The start marker sits left of the start time, so its
// right edge (markerX + markerWidth) maps to the time; the end marker's left
// edge does. A start marker left of the frame or an end marker at or beyond
// the frame width is ignored. Accepted moves publish intervals.dragged.
func (d *Drag) Move(p Projector, markerX, markerWidth int) bool {
	if d.state != dragActive {
		return false
	}

	frameOffset := p.FrameOffset()
	switch {
	case d.startMarker && markerX >= 0:
		t := p.PixelsToTime(frameOffset + markerX + markerWidth)
		d.iv.setStartTime(min(t, d.iv.endTime))
	case !d.startMarker && markerX < p.Width():
		t := p.PixelsToTime(frameOffset + markerX)
		d.iv.setEndTime(max(t, d.iv.startTime))
	default:
		return false
	}

	d.store.bus.Publish(events.IntervalsDragged, Event{Kind: events.IntervalsDragged, Interval: d.iv, StartMarker: d.startMarker})
	return true
}

// End finishes the drag and publishes intervals.dragend. Ending an idle drag
// does nothing.
func (d *Drag) End() {
	if d.state != dragActive {
		return
	}
	d.state = dragIdle
	d.store.logger.Debug("drag end", "id", d.iv.id, "start", d.iv.startTime, "end", d.iv.endTime)
	d.store.bus.Publish(events.IntervalsDragEnd, Event{Kind: events.IntervalsDragEnd, Interval: d.iv, StartMarker: d.startMarker})
}
