package main

import (
	"fmt"
	"log/slog"

	"github.com/daviddao/cuelane/internal/config"
	"github.com/daviddao/cuelane/internal/events"
	"github.com/daviddao/cuelane/internal/interval"
	"github.com/daviddao/cuelane/internal/media"
	"github.com/daviddao/cuelane/internal/snapshot"
	"github.com/daviddao/cuelane/internal/timeline"
	"github.com/daviddao/cuelane/internal/viewport"
	"github.com/daviddao/cuelane/internal/zoom"
)

// newIntervalLength is the length in seconds of intervals added from the
// keyboard.
const newIntervalLength = 10

// app wires one project: the store, the zoom machine driving the timeline's
// scale, the layer projecting intervals onto the timeline, and the clock.
// Everything runs on the bubbletea update goroutine.
type app struct {
	cfg    *config.Config
	path   string
	logger *slog.Logger

	store  *interval.Store
	zoom   *zoom.Machine
	frames *zoom.FrameQueue
	tl     *timeline.Timeline
	layer  *viewport.Layer
	clock  *media.Clock

	overview    bool
	beforeValue float64 // continuous value to restore when leaving overview
	lastEvent   string
	added       int
	cancels     []func()
}

func newApp(cfg *config.Config, path string, width int, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, path: path, logger: logger}

	a.store = interval.NewStore(append(cfg.StoreOptions(), interval.WithLogger(logger))...)
	a.frames = zoom.NewFrameQueue()
	a.zoom = zoom.New(cfg.ZoomConfig(), zoom.WithScheduler(a.frames), zoom.WithLogger(logger))
	if _, err := a.zoom.Strategy(); err != nil {
		return nil, err
	}

	a.tl = timeline.New(timeline.Config{
		SampleRate:  cfg.SampleRate,
		Duration:    cfg.Duration,
		Width:       width,
		Scale:       1,
		MarkerWidth: cfg.MarkerWidth,
	})
	a.tl.SetScale(a.currentScale())

	a.layer = viewport.NewLayer(a.tl, a.store, a.tl,
		viewport.WithEditing(cfg.Editing),
		viewport.WithLayerLogger(logger),
	)

	zbus := a.zoom.Bus()
	a.cancels = append(a.cancels,
		zbus.Subscribe(events.ZoomUpdate, a.onZoomUpdate),
		zbus.Subscribe(events.ZoomChange, a.onZoomChange),
		a.store.Bus().SubscribeAll(a.recordEvent),
	)

	opts, err := cfg.IntervalOptions()
	if err != nil {
		a.close()
		return nil, err
	}
	if _, err := a.store.Add(opts...); err != nil {
		a.close()
		return nil, fmt.Errorf("intervals: %w", err)
	}
	a.layer.Refresh()

	a.clock = media.NewClock(cfg.Duration, media.WithLogger(logger))
	logger.Info("project loaded", "path", displayPath(path), "intervals", a.store.Len(), "zoom", a.zoom.Mode().String())
	return a, nil
}

func (a *app) close() {
	for _, cancel := range a.cancels {
		cancel()
	}
	a.cancels = nil
	a.layer.Close()
}

// currentScale is the scale factor the zoom strategy asks for right now.
func (a *app) currentScale() int {
	if s, err := a.zoom.Stepped(); err == nil {
		return s.Scale()
	}
	if c, err := a.zoom.Continuous(); err == nil {
		return c.Scale(a.tl.OverviewScale())
	}
	return a.tl.Scale()
}

func (a *app) onZoomUpdate(e zoom.Event) {
	a.logger.Debug("zoom update", "scale", e.Scale, "previous", e.PreviousScale)
	a.tl.SetScale(e.Scale)
	a.layer.Refresh()
}

func (a *app) onZoomChange(e zoom.Event) {
	c, err := a.zoom.Continuous()
	if err != nil {
		return
	}
	a.tl.SetScale(zoom.ScaleAt(e.Value, a.tl.OverviewScale(), c.MaximumScaleFactor()))
	a.layer.Refresh()
}

func (a *app) recordEvent(e interval.Event) {
	switch {
	case e.Interval != nil:
		a.lastEvent = e.Kind.String() + " " + e.Interval.ID()
	case len(e.Intervals) == 1:
		a.lastEvent = e.Kind.String() + " " + e.Intervals[0].ID()
	default:
		a.lastEvent = fmt.Sprintf("%s (%d)", e.Kind, len(e.Intervals))
	}
}

func (a *app) zoomIn() error  { return a.zoomBy(true) }
func (a *app) zoomOut() error { return a.zoomBy(false) }

func (a *app) zoomBy(in bool) error {
	s, err := a.zoom.Strategy()
	if err != nil {
		return err
	}
	a.overview = false
	if in {
		s.ZoomIn()
	} else {
		s.ZoomOut()
	}
	return nil
}

// toggleOverview fits the whole duration in the frame, or goes back to the
// zoom in effect before.
func (a *app) toggleOverview() error {
	if s, err := a.zoom.Stepped(); err == nil {
		if a.overview {
			s.Reset(a.tl.OverviewScale())
		} else {
			s.Overview(a.tl.OverviewScale())
		}
		a.overview = !a.overview
		return nil
	}
	c, err := a.zoom.Continuous()
	if err != nil {
		return err
	}
	if a.overview {
		c.ZoomTo(a.beforeValue, true)
	} else {
		a.beforeValue = c.GetZoom()
		c.ZoomTo(0, true)
	}
	a.overview = !a.overview
	return nil
}

func (a *app) resize(width int) {
	a.tl.SetWidth(width)
	if a.overview {
		a.tl.SetScale(a.tl.OverviewScale())
	} else {
		a.tl.SetScale(a.currentScale())
	}
	a.layer.Refresh()
}

func (a *app) scroll(dx int) {
	if a.tl.ScrollBy(dx) {
		a.layer.Refresh()
	}
}

// frame runs one animation frame and keeps a playing playhead in view.
func (a *app) frame() {
	a.frames.RunFrame()
	if a.clock.Playing() && a.tl.Follow(a.clock.CurrentTime()) {
		a.layer.Refresh()
	}
}

// seekTo moves the playhead and scrolls it into view.
func (a *app) seekTo(t float64) {
	a.clock.Seek(t)
	if a.tl.Follow(a.clock.CurrentTime()) {
		a.layer.Refresh()
	}
}

// addAtPlayhead adds an editable interval starting at the playhead.
func (a *app) addAtPlayhead() (*interval.Interval, error) {
	start := a.clock.CurrentTime()
	end := min(start+newIntervalLength, a.cfg.Duration)
	a.added++
	ivs, err := a.store.Add(interval.Options{
		StartTime: start,
		EndTime:   max(start, end),
		LabelText: interval.Ptr(fmt.Sprintf("interval %d", a.added)),
		Editable:  interval.Ptr(true),
	})
	if err != nil {
		return nil, err
	}
	return ivs[0], nil
}

func (a *app) remove(id string) bool {
	return len(a.store.RemoveByID(id)) > 0
}

// toggleEditing flips marker editing for the whole layer.
func (a *app) toggleEditing() bool {
	on := !a.layer.IsEditingEnabled()
	a.layer.EnableEditing(on)
	return on
}

// hover scrolls id into view and hovers its shape, leaving prev. It reports
// whether id has a shape on screen.
func (a *app) hover(prev, id string) bool {
	if prev != id {
		if sh, ok := a.layer.Shape(prev); ok && sh.Hovered() {
			sh.MouseLeave()
		}
	}
	iv, ok := a.store.Get(id)
	if !ok {
		return false
	}
	if a.tl.Follow(iv.StartTime()) {
		a.layer.Refresh()
	}
	sh, ok := a.layer.Shape(id)
	if !ok {
		return false
	}
	if !sh.Hovered() {
		sh.MouseEnter()
	}
	return true
}

// click publishes a click on id and moves the playhead to its start.
func (a *app) click(id string) {
	sh, ok := a.layer.Shape(id)
	if !ok {
		return
	}
	sh.Click()
	a.seekTo(sh.Interval().StartTime())
}

func (a *app) startDrag(id string, startMarker bool) error {
	sh, ok := a.layer.Shape(id)
	if !ok {
		return fmt.Errorf("interval %s is not on screen", id)
	}
	if !sh.DragStart(startMarker) {
		return fmt.Errorf("interval %s has no markers", id)
	}
	return nil
}

// dragBy nudges the dragged marker of id. It reports whether the interval
// accepted the move.
func (a *app) dragBy(id string, dx int) bool {
	sh, ok := a.layer.Shape(id)
	if !ok {
		return false
	}
	return sh.DragBy(dx)
}

func (a *app) dragging(id string) (active, startMarker bool) {
	sh, ok := a.layer.Shape(id)
	if !ok {
		return false, false
	}
	return sh.Dragging()
}

func (a *app) endDrag(id string) {
	if sh, ok := a.layer.Shape(id); ok {
		sh.DragEnd()
	}
}

func (a *app) toggleMarkers() bool {
	on := !a.layer.Visible()
	a.layer.SetVisible(on)
	return on
}

func (a *app) snapshot() (*snapshot.DataSnapshot, error) {
	return snapshot.Build(snapshot.Sources{
		Store:      a.store,
		Zoom:       a.zoom,
		Timeline:   a.tl,
		Layer:      a.layer,
		Player:     a.clock,
		ConfigPath: a.path,
	})
}

func displayPath(path string) string {
	if path == "" {
		return "defaults"
	}
	return path
}
