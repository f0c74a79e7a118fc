// Package timeline is a terminal rendering surface for the viewport layer.
// One terminal cell is one pixel; the horizontal axis is time, measured in
// samples and divided by the current scale (samples per cell).
package timeline

import (
	"fmt"
	"math"
)

// Config sizes a Timeline.
type Config struct {
	SampleRate  int
	Duration    float64
	Width       int
	Scale       int
	MarkerWidth int
}

// Timeline implements viewport.Surface and viewport.Factory.
type Timeline struct {
	sampleRate  int
	duration    float64
	width       int
	scale       int
	offset      int
	markerWidth int

	dirty bool
	draws int
	nodes []*node
}

// New returns a timeline scrolled to the start.
func New(cfg Config) *Timeline {
	return &Timeline{
		sampleRate:  max(1, cfg.SampleRate),
		duration:    max(0, cfg.Duration),
		width:       max(1, cfg.Width),
		scale:       max(1, cfg.Scale),
		markerWidth: max(1, cfg.MarkerWidth),
	}
}

func (t *Timeline) TimeToPixels(sec float64) int {
	return int(math.Floor(sec * float64(t.sampleRate) / float64(t.scale)))
}

func (t *Timeline) PixelsToTime(px int) float64 {
	return float64(px) * float64(t.scale) / float64(t.sampleRate)
}

func (t *Timeline) FrameOffset() int { return t.offset }
func (t *Timeline) Width() int       { return t.width }

// Draw schedules a repaint: the next Render is due.
func (t *Timeline) Draw() {
	t.dirty = true
	t.draws++
}

// Dirty reports whether a Draw happened since the last Render.
func (t *Timeline) Dirty() bool { return t.dirty }

// Draws counts Draw calls over the timeline's life.
func (t *Timeline) Draws() int { return t.draws }

func (t *Timeline) Scale() int        { return t.scale }
func (t *Timeline) SampleRate() int   { return t.sampleRate }
func (t *Timeline) Duration() float64 { return t.duration }
func (t *Timeline) MarkerWidth() int  { return t.markerWidth }

// ContentWidth is the width of the whole duration in cells.
func (t *Timeline) ContentWidth() int { return t.TimeToPixels(t.duration) }

func (t *Timeline) maxOffset() int { return max(0, t.ContentWidth()-t.width) }

// FrameTimes returns the times at the left and right edges of the frame.
func (t *Timeline) FrameTimes() (start, end float64) {
	return t.PixelsToTime(t.offset), t.PixelsToTime(t.offset + t.width)
}

// SetDuration changes the length of the timeline and re-clamps the scroll.
func (t *Timeline) SetDuration(d float64) {
	t.duration = max(0, d)
	t.ScrollTo(t.offset)
}

// SetWidth resizes the frame.
func (t *Timeline) SetWidth(w int) {
	t.width = max(1, w)
	t.ScrollTo(t.offset)
}

// ScrollTo moves the frame's left edge to px, clamped so the frame stays
// within the content. It reports whether the offset changed.
func (t *Timeline) ScrollTo(px int) bool {
	px = min(max(px, 0), t.maxOffset())
	if px == t.offset {
		return false
	}
	t.offset = px
	return true
}

// ScrollBy moves the frame by dx cells.
func (t *Timeline) ScrollBy(dx int) bool { return t.ScrollTo(t.offset + dx) }

// SetScale changes samples per cell, keeping the time at the frame centre in
// place.
func (t *Timeline) SetScale(scale int) {
	scale = max(1, scale)
	if scale == t.scale {
		return
	}
	centre := t.PixelsToTime(t.offset + t.width/2)
	t.scale = scale
	t.offset = min(max(t.TimeToPixels(centre)-t.width/2, 0), t.maxOffset())
}

// OverviewScale is the smallest scale at which the whole duration fits in
// the frame.
func (t *Timeline) OverviewScale() int {
	samples := t.duration * float64(t.sampleRate)
	return max(1, int(math.Ceil(samples/float64(t.width))))
}

// Follow scrolls the minimum distance that brings sec into the frame.
func (t *Timeline) Follow(sec float64) bool {
	px := t.TimeToPixels(sec)
	switch {
	case px < t.offset:
		return t.ScrollTo(px)
	case px >= t.offset+t.width:
		return t.ScrollTo(px - t.width + 1)
	}
	return false
}

// FormatTime renders seconds as m:ss.t.
func FormatTime(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	tenths := int(math.Round(sec * 10))
	return fmt.Sprintf("%d:%02d.%d", tenths/600, tenths/10%60, tenths%10)
}
