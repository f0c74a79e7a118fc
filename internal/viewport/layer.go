package viewport

import (
	"log/slog"

	"github.com/daviddao/cuelane/internal/events"
	"github.com/daviddao/cuelane/internal/interval"
)

// Layer owns the shapes of one surface. It follows the store through its
// bus: added intervals get shapes when visible, removed ones lose them, and
// updated or dragged ones are repositioned. Every reaction repaints at most
// once.
type Layer struct {
	surface Surface
	store   *interval.Store
	factory Factory

	shapes  map[string]*Shape
	editing bool
	visible bool

	startMarkerColor string
	endMarkerColor   string

	logger  *slog.Logger
	cancels []func()
}

// LayerOption configures a Layer.
type LayerOption func(*Layer)

// WithEditing sets whether editable intervals get drag markers.
func WithEditing(enabled bool) LayerOption {
	return func(l *Layer) { l.editing = enabled }
}

// WithMarkerColors sets the colors passed to the factory for markers.
func WithMarkerColors(start, end string) LayerOption {
	return func(l *Layer) { l.startMarkerColor, l.endMarkerColor = start, end }
}

// WithLayerLogger sets the layer's logger.
func WithLayerLogger(logger *slog.Logger) LayerOption {
	return func(l *Layer) { l.logger = logger }
}

// NewLayer subscribes to store events. Call Refresh to build the initial
// shapes and Close to unsubscribe.
func NewLayer(surface Surface, store *interval.Store, factory Factory, opts ...LayerOption) *Layer {
	l := &Layer{
		surface: surface,
		store:   store,
		factory: factory,
		shapes:  make(map[string]*Shape),
		visible: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}

	bus := store.Bus()
	l.cancels = []func(){
		bus.Subscribe(events.IntervalsAdd, l.onAdd),
		bus.Subscribe(events.IntervalsRemove, l.onRemove),
		bus.Subscribe(events.IntervalsRemoveAll, l.onRemoveAll),
		bus.Subscribe(events.IntervalsUpdate, l.onUpdate),
		bus.Subscribe(events.IntervalsDragged, l.onDragged),
	}
	return l
}

// Close unsubscribes from the store. Existing shapes are left as they are.
func (l *Layer) Close() {
	for _, cancel := range l.cancels {
		cancel()
	}
	l.cancels = nil
}

func (l *Layer) window() (start, end float64) {
	offset := l.surface.FrameOffset()
	return l.surface.PixelsToTime(offset), l.surface.PixelsToTime(offset + l.surface.Width())
}

// UpdateIntervals makes the shapes match the intervals overlapping
// [start, end): missing shapes are created, all are repositioned, and shapes
// of intervals outside the window are destroyed. It draws once if anything
// changed.
func (l *Layer) UpdateIntervals(start, end float64) {
	if l.sync(start, end) > 0 {
		l.surface.Draw()
	}
}

// Refresh runs UpdateIntervals over the surface's current frame.
func (l *Layer) Refresh() {
	l.UpdateIntervals(l.window())
}

// sync reconciles shapes with the window and returns how many shapes were
// created, moved or destroyed.
func (l *Layer) sync(start, end float64) int {
	changed := 0
	for _, iv := range l.store.Find(start, end) {
		sh, created := l.findOrAdd(iv)
		if sh.place() || created {
			changed++
		}
	}
	for id, sh := range l.shapes {
		if !sh.iv.IsVisible(start, end) {
			l.removeShape(id)
			changed++
		}
	}
	return changed
}

func (l *Layer) findOrAdd(iv *interval.Interval) (*Shape, bool) {
	if sh, ok := l.shapes[iv.ID()]; ok {
		return sh, false
	}
	sh := newShape(l, iv)
	l.shapes[iv.ID()] = sh
	return sh, true
}

func (l *Layer) removeShape(id string) bool {
	sh, ok := l.shapes[id]
	if !ok {
		return false
	}
	sh.Destroy()
	delete(l.shapes, id)
	return true
}

func (l *Layer) onAdd(e interval.Event) {
	start, end := l.window()
	changed := 0
	for _, iv := range e.Intervals {
		if !iv.IsVisible(start, end) {
			continue
		}
		if sh, created := l.findOrAdd(iv); created {
			sh.place()
			changed++
		}
	}
	if changed+l.sync(start, end) > 0 {
		l.surface.Draw()
	}
}

func (l *Layer) onRemove(e interval.Event) {
	removed := 0
	for _, iv := range e.Intervals {
		if l.removeShape(iv.ID()) {
			removed++
		}
	}
	if removed > 0 {
		l.surface.Draw()
	}
}

func (l *Layer) onRemoveAll(interval.Event) {
	for id := range l.shapes {
		l.removeShape(id)
	}
	l.surface.Draw()
}

// onUpdate treats an update as remove then re-add, since new times may move
// the interval into or out of the window.
func (l *Layer) onUpdate(e interval.Event) {
	iv := e.Interval
	start, end := l.window()
	redraw := l.removeShape(iv.ID())
	if iv.IsVisible(start, end) {
		sh, _ := l.findOrAdd(iv)
		sh.place()
		redraw = true
	}
	if redraw {
		l.sync(start, end)
		l.surface.Draw()
	}
}

func (l *Layer) onDragged(e interval.Event) {
	sh, _ := l.findOrAdd(e.Interval)
	sh.place()
	l.surface.Draw()
}

// EnableEditing toggles drag markers. Existing shapes are rebuilt so their
// markers appear or disappear at once.
func (l *Layer) EnableEditing(enabled bool) {
	if l.editing == enabled {
		return
	}
	l.editing = enabled
	l.logger.Debug("layer editing", "enabled", enabled)
	for id := range l.shapes {
		l.removeShape(id)
	}
	l.sync(l.window())
	l.surface.Draw()
}

func (l *Layer) IsEditingEnabled() bool { return l.editing }

// SetVisible shows or hides every marker of the layer. Labels stay under
// hover control.
func (l *Layer) SetVisible(visible bool) {
	if l.visible == visible {
		return
	}
	l.visible = visible
	for _, sh := range l.shapes {
		for _, m := range []Node{sh.startMarker, sh.endMarker} {
			if m == nil {
				continue
			}
			if visible {
				m.Show()
			} else {
				m.Hide()
			}
		}
	}
	l.surface.Draw()
}

func (l *Layer) Visible() bool { return l.visible }

// Shape returns the shape of the interval with the given id, if it is on
// screen.
func (l *Layer) Shape(id string) (*Shape, bool) {
	sh, ok := l.shapes[id]
	return sh, ok
}

// Shapes returns the live shapes in store order.
func (l *Layer) Shapes() []*Shape {
	out := make([]*Shape, 0, len(l.shapes))
	for _, iv := range l.store.Intervals() {
		if sh, ok := l.shapes[iv.ID()]; ok {
			out = append(out, sh)
		}
	}
	return out
}

// FitToView repositions every shape and draws once if any moved.
func (l *Layer) FitToView() {
	moved := false
	for _, sh := range l.shapes {
		if sh.place() {
			moved = true
		}
	}
	if moved {
		l.surface.Draw()
	}
}
