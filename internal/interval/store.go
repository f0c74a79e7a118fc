package interval

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/google/uuid"

	"github.com/daviddao/cuelane/internal/events"
)

// Event is the payload of every intervals.* topic. Add and remove events
// carry Intervals; update, drag and pointer events carry Interval (and
// StartMarker for drag events).
type Event struct {
	Kind        events.Kind
	Intervals   []*Interval
	Interval    *Interval
	StartMarker bool
}

// Bus dispatches interval events.
type Bus = events.Dispatcher[Event]

// NewBus creates an interval event bus.
func NewBus(logger *slog.Logger) *Bus {
	return events.NewDispatcher[Event](logger)
}

// IDGenerator produces ids for intervals added without one.
type IDGenerator func() string

// CounterIDs returns a generator yielding prefix0, prefix1, ...
func CounterIDs(prefix string) IDGenerator {
	n := 0
	return func() string {
		id := prefix + strconv.Itoa(n)
		n++
		return id
	}
}

// UUIDIDs returns a generator yielding prefix + random UUID.
func UUIDIDs(prefix string) IDGenerator {
	return func() string {
		return prefix + uuid.NewString()
	}
}

// DefaultIDPrefix prefixes generated ids.
const DefaultIDPrefix = "cuelane.interval."

// Store owns the live intervals: an insertion-ordered slice plus an id index.
// Both structures always hold the same set of intervals.
type Store struct {
	intervals []*Interval
	byID      map[string]*Interval

	nextID       IDGenerator
	defaultColor string
	palette      []string
	randomize    bool
	colorIndex   int

	bus    *Bus
	logger *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIDGenerator replaces the default counter id generator.
func WithIDGenerator(gen IDGenerator) StoreOption {
	return func(s *Store) { s.nextID = gen }
}

// WithDefaultColor sets the color used when colors are not randomized.
func WithDefaultColor(token string) StoreOption {
	return func(s *Store) { s.defaultColor = token }
}

// WithPalette sets the color rotation and whether new intervals cycle
// through it.
func WithPalette(palette []string, randomize bool) StoreOption {
	return func(s *Store) {
		if len(palette) > 0 {
			s.palette = slices.Clone(palette)
		}
		s.randomize = randomize
	}
}

// WithBus makes the store publish on an existing bus.
func WithBus(bus *Bus) StoreOption {
	return func(s *Store) { s.bus = bus }
}

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		byID:         make(map[string]*Interval),
		nextID:       CounterIDs(DefaultIDPrefix),
		defaultColor: DefaultColor,
		palette:      slices.Clone(DefaultPalette),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.bus == nil {
		s.bus = NewBus(s.logger)
	}
	return s
}

// Bus returns the bus the store publishes on.
func (s *Store) Bus() *Bus {
	return s.bus
}

// Len returns the number of live intervals.
func (s *Store) Len() int {
	return len(s.intervals)
}

// Intervals returns the live intervals in insertion order. The slice is a
// copy; the intervals are shared.
func (s *Store) Intervals() []*Interval {
	return slices.Clone(s.intervals)
}

// Get returns the interval with the given id.
func (s *Store) Get(id string) (*Interval, bool) {
	iv, ok := s.byID[id]
	return iv, ok
}

func (s *Store) nextColor() string {
	if !s.randomize || len(s.palette) == 0 {
		return s.defaultColor
	}
	s.colorIndex++
	if s.colorIndex >= len(s.palette) {
		s.colorIndex = 0
	}
	return s.palette[s.colorIndex]
}

// fieldsFor builds the validated scalar state for o. It may advance the
// color rotation; Add rewinds it when the batch is rejected.
func (s *Store) fieldsFor(o Options) (fields, error) {
	f := fields{
		startTime: o.StartTime,
		endTime:   o.EndTime,
	}
	if o.LabelText != nil {
		f.labelText = *o.LabelText
	}
	if o.Editable != nil {
		f.editable = *o.Editable
	}
	if o.Color != nil {
		f.color = *o.Color
	} else {
		f.color = Color{Solid: s.nextColor()}
	}
	if err := validate("add", f); err != nil {
		return fields{}, err
	}
	return f, nil
}

// Add validates and appends one or more intervals, then publishes a single
// intervals.add event with them. The call is atomic: if any candidate fails
// validation or reuses a live id, nothing is added, no event fires, and
// neither the color rotation nor the id generator advances.
func (s *Store) Add(opts ...Options) ([]*Interval, error) {
	batch := make(map[string]bool, len(opts))
	taken := func(id string) bool {
		_, live := s.byID[id]
		return live || batch[id]
	}

	colorIndex := s.colorIndex
	valid := make([]fields, 0, len(opts))
	for i, o := range opts {
		f, err := s.fieldsFor(o)
		if err == nil && o.ID != "" && taken(o.ID) {
			err = &DuplicateIDError{ID: o.ID}
		}
		if err != nil {
			s.colorIndex = colorIndex
			s.logger.Debug("rejected interval", "index", i, "options", o.String(), "error", err)
			return nil, err
		}
		if o.ID != "" {
			batch[o.ID] = true
		}
		valid = append(valid, f)
	}

	created := make([]*Interval, 0, len(opts))
	for i, o := range opts {
		iv := &Interval{id: o.ID}
		for iv.id == "" {
			if id := s.nextID(); !taken(id) {
				iv.id = id
			}
		}
		batch[iv.id] = true
		iv.commit(valid[i])
		iv.mergeExtensions(o.Extensions)
		created = append(created, iv)
	}

	for _, iv := range created {
		s.intervals = append(s.intervals, iv)
		s.byID[iv.id] = iv
	}
	s.logger.Debug("added intervals", "count", len(created), "total", len(s.intervals))
	s.bus.Publish(events.IntervalsAdd, Event{Kind: events.IntervalsAdd, Intervals: created})
	return created, nil
}

// removeWhere removes every interval matching pred, keeping the survivors in
// order, and publishes one intervals.remove event with exactly the removed
// intervals (possibly none).
func (s *Store) removeWhere(pred func(*Interval) bool) []*Interval {
	var removed []*Interval
	kept := s.intervals[:0]
	for _, iv := range s.intervals {
		if pred(iv) {
			removed = append(removed, iv)
			delete(s.byID, iv.id)
			continue
		}
		kept = append(kept, iv)
	}
	clear(s.intervals[len(kept):])
	s.intervals = kept

	if removed == nil {
		removed = []*Interval{}
	}
	s.logger.Debug("removed intervals", "count", len(removed), "total", len(s.intervals))
	s.bus.Publish(events.IntervalsRemove, Event{Kind: events.IntervalsRemove, Intervals: removed})
	return removed
}

// Remove removes the given interval.
func (s *Store) Remove(iv *Interval) []*Interval {
	return s.removeWhere(func(x *Interval) bool { return x == iv })
}

// RemoveByID removes the interval with the given id.
func (s *Store) RemoveByID(id string) []*Interval {
	return s.removeWhere(func(x *Interval) bool { return x.id == id })
}

// RemoveByTime removes intervals starting exactly at start. When end > 0,
// only intervals that also end exactly at end are removed.
func (s *Store) RemoveByTime(start, end float64) []*Interval {
	if end > 0 {
		return s.removeWhere(func(x *Interval) bool {
			return x.startTime == start && x.endTime == end
		})
	}
	return s.removeWhere(func(x *Interval) bool { return x.startTime == start })
}

// RemoveAll clears the store and publishes intervals.remove_all.
func (s *Store) RemoveAll() {
	clear(s.intervals)
	s.intervals = nil
	s.byID = make(map[string]*Interval)
	s.logger.Debug("removed all intervals")
	s.bus.Publish(events.IntervalsRemoveAll, Event{Kind: events.IntervalsRemoveAll})
}

// Find returns the intervals overlapping [start, end], in insertion order.
func (s *Store) Find(start, end float64) []*Interval {
	var out []*Interval
	for _, iv := range s.intervals {
		if iv.IsVisible(start, end) {
			out = append(out, iv)
		}
	}
	return out
}

// AtTime returns the intervals containing t, with a right-open end.
func (s *Store) AtTime(t float64) []*Interval {
	var out []*Interval
	for _, iv := range s.intervals {
		if iv.Contains(t) {
			out = append(out, iv)
		}
	}
	return out
}

// Update merges changes over the interval's current state, validates the
// result as a whole and only then commits it. On error the interval is left
// untouched. A successful update publishes intervals.update with iv itself.
func (s *Store) Update(iv *Interval, c Changes) error {
	if iv == nil {
		return &ValidationError{Op: "update", Field: "interval", Constraint: "must not be nil"}
	}

	f := iv.snapshot()
	if c.StartTime != nil {
		f.startTime = *c.StartTime
	}
	if c.EndTime != nil {
		f.endTime = *c.EndTime
	}
	if c.LabelText != nil {
		f.labelText = *c.LabelText
	}
	if c.Color != nil {
		f.color = *c.Color
	}
	if c.Editable != nil {
		f.editable = *c.Editable
	}
	if err := validate("update", f); err != nil {
		return fmt.Errorf("interval %s: %w", iv.id, err)
	}

	iv.commit(f)
	iv.mergeExtensions(c.Extensions)
	s.bus.Publish(events.IntervalsUpdate, Event{Kind: events.IntervalsUpdate, Interval: iv})
	return nil
}
