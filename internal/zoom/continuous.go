package zoom

import (
	"log/slog"

	"github.com/daviddao/cuelane/internal/events"
)

// ContinuousStep is how far ZoomIn and ZoomOut move the value.
const ContinuousStep = 0.1

// ContinuousZoom holds a value in [0, 1], 1 being the most detailed. The
// committed value is the target; while an animation runs the displayed value
// trails it and every step is published as zoom.change.
type ContinuousZoom struct {
	value    float64
	shown    float64
	maxScale int
	anim     *Animation
	bus      *Bus
	logger   *slog.Logger
}

func (c *ContinuousZoom) Mode() Mode { return Continuous }

func (c *ContinuousZoom) ZoomIn()  { c.ZoomTo(c.value+ContinuousStep, true) }
func (c *ContinuousZoom) ZoomOut() { c.ZoomTo(c.value-ContinuousStep, true) }

// ZoomTo clamps v to [0, 1] and commits it. Without animate the change is
// published at once. With animate it eases there from the value currently
// displayed, replacing any animation in flight. The interrupted animation's
// target is never used as the origin.
func (c *ContinuousZoom) ZoomTo(v float64, animate bool) {
	v = clampUnit(v)
	c.value = v
	if !animate {
		c.anim.Cancel()
		c.emitChange(v)
		return
	}
	c.logger.Debug("zoom animate", "from", c.shown, "to", v)
	c.anim.Start(c.shown, v)
}

// GetZoom returns the committed value, which is the animation target while
// one runs.
func (c *ContinuousZoom) GetZoom() float64 { return c.value }

// Current returns the displayed value.
func (c *ContinuousZoom) Current() float64 { return c.shown }

func (c *ContinuousZoom) Animating() bool { return c.anim.Running() }

// Cancel stops any running animation, leaving the displayed value where it is.
func (c *ContinuousZoom) Cancel() { c.anim.Cancel() }

// MaximumScaleFactor is the scale reached at value 1.
func (c *ContinuousZoom) MaximumScaleFactor() int { return c.maxScale }

// Scale maps the displayed value onto a scale factor given the overview scale.
func (c *ContinuousZoom) Scale(overview int) int {
	return ScaleAt(c.shown, overview, c.maxScale)
}

func (c *ContinuousZoom) emitChange(v float64) {
	c.shown = v
	c.bus.Publish(events.ZoomChange, Event{Kind: events.ZoomChange, Value: v})
}
