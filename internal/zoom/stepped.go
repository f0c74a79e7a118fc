package zoom

import (
	"log/slog"
	"slices"

	"github.com/daviddao/cuelane/internal/events"
)

// SteppedZoom moves through a fixed array of scale factors. Zooming in lowers
// the index, toward smaller scale factors and more detail.
type SteppedZoom struct {
	levels []int
	index  int
	bus    *Bus
	logger *slog.Logger
}

func (s *SteppedZoom) Mode() Mode { return Stepped }

func (s *SteppedZoom) ZoomIn()  { s.SetZoom(s.index - 1) }
func (s *SteppedZoom) ZoomOut() { s.SetZoom(s.index + 1) }

// SetZoom jumps to index, clamped to the level array, and publishes
// zoom.update with the new and previous scale factors. It publishes even
// when the index does not change.
func (s *SteppedZoom) SetZoom(index int) {
	index = clampIndex(index, len(s.levels))
	prev := s.index
	s.index = index
	s.logger.Debug("zoom level", "index", index, "scale", s.levels[index])
	s.bus.Publish(events.ZoomUpdate, Event{
		Kind:          events.ZoomUpdate,
		Scale:         s.levels[index],
		PreviousScale: s.levels[prev],
	})
}

// GetZoom returns the current index.
func (s *SteppedZoom) GetZoom() int { return s.index }

// Scale returns the current scale factor.
func (s *SteppedZoom) Scale() int { return s.levels[s.index] }

// Levels returns a copy of the scale factors.
func (s *SteppedZoom) Levels() []int { return slices.Clone(s.levels) }

// Overview announces a switch to overviewScale (the whole timeline) without
// moving the index.
func (s *SteppedZoom) Overview(overviewScale int) {
	s.bus.Publish(events.ZoomUpdate, Event{
		Kind:          events.ZoomUpdate,
		Scale:         overviewScale,
		PreviousScale: s.levels[s.index],
	})
}

// Reset returns from Overview to the current level.
func (s *SteppedZoom) Reset(overviewScale int) {
	s.bus.Publish(events.ZoomUpdate, Event{
		Kind:          events.ZoomUpdate,
		Scale:         s.levels[s.index],
		PreviousScale: overviewScale,
	})
}
