// Package viewport keeps one shape per interval that overlaps the visible
// time window of a rendering surface, and keeps those shapes positioned as
// the window scrolls and the intervals change.
package viewport

import "github.com/daviddao/cuelane/internal/interval"

// Surface is the rendering collaborator. Pixels are relative to the start of
// the whole timeline; FrameOffset is the pixel at the left edge of the
// visible window. Draw schedules a repaint.
type Surface interface {
	TimeToPixels(t float64) int
	PixelsToTime(px int) float64
	FrameOffset() int
	Width() int
	Draw()
}

// Node is a drawable handle owned by a Shape. X is relative to the frame.
type Node interface {
	SetX(x int)
	X() int
	Width() int
	Show()
	Hide()
	Destroy()
	AddToLayer(s Surface)
}

// LabelOptions describes the hover label of an interval.
type LabelOptions struct {
	Interval *interval.Interval
	Text     string
}

// MarkerOptions describes a draggable boundary marker.
type MarkerOptions struct {
	Interval    *interval.Interval
	StartMarker bool
	Draggable   bool
	Color       string
}

// Factory creates nodes for shapes. Either method may return nil, in which
// case the shape goes without that node.
type Factory interface {
	NewLabel(LabelOptions) Node
	NewMarker(MarkerOptions) Node
}
