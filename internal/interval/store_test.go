package interval

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/daviddao/cuelane/internal/events"
)

// recorder captures every event published on a bus.
type recorder struct {
	events []Event
}

func record(s *Store) *recorder {
	r := &recorder{}
	s.Bus().SubscribeAll(func(e Event) { r.events = append(r.events, e) })
	return r
}

func (r *recorder) kinds() []events.Kind {
	out := make([]events.Kind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func (r *recorder) count(k events.Kind) int {
	n := 0
	for _, e := range r.events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

func span(start, end float64) Options {
	return Options{StartTime: start, EndTime: end}
}

func TestAddAssignsDefaults(t *testing.T) {
	s := NewStore()
	got, err := s.Add(span(1, 2))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Add returned %d intervals, want 1", len(got))
	}
	iv := got[0]
	if iv.ID() != DefaultIDPrefix+"0" {
		t.Errorf("ID() = %q, want %q", iv.ID(), DefaultIDPrefix+"0")
	}
	if iv.LabelText() != "" {
		t.Errorf("LabelText() = %q, want empty", iv.LabelText())
	}
	if iv.Editable() {
		t.Error("Editable() = true, want false by default")
	}
	if iv.Color().Solid != DefaultColor {
		t.Errorf("Color() = %v, want %s", iv.Color(), DefaultColor)
	}
}

func TestAddThenFindContainsInterval(t *testing.T) {
	tests := []struct {
		start, end float64
	}{
		{0, 0},
		{0, 1},
		{5, 5},
		{10.25, 99.5},
	}
	const eps = 1e-6

	for _, tt := range tests {
		s := NewStore()
		added, err := s.Add(span(tt.start, tt.end))
		if err != nil {
			t.Fatalf("Add(%g, %g): %v", tt.start, tt.end, err)
		}
		found := s.Find(tt.start, tt.end+eps)
		if len(found) != 1 || found[0] != added[0] {
			t.Errorf("Find(%g, %g) = %v, want the added interval", tt.start, tt.end+eps, found)
		}
	}
}

func TestAddEmitsOneEventWithAllCreated(t *testing.T) {
	s := NewStore()
	r := record(s)

	got, err := s.Add(span(0, 1), span(2, 3), span(4, 5))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(r.events) != 1 || r.events[0].Kind != events.IntervalsAdd {
		t.Fatalf("events = %v, want one intervals.add", r.kinds())
	}
	if len(r.events[0].Intervals) != 3 {
		t.Errorf("add event carries %d intervals, want 3", len(r.events[0].Intervals))
	}
	for i := range got {
		if r.events[0].Intervals[i] != got[i] {
			t.Errorf("event interval %d is not the created entity", i)
		}
	}
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		field string
	}{
		{"end before start", span(5, 4), "endTime"},
		{"negative start", span(-1, 4), "startTime"},
		{"negative end", Options{StartTime: 0, EndTime: -2}, "endTime"},
		{"NaN start", span(math.NaN(), 1), "startTime"},
		{"infinite end", span(0, math.Inf(1)), "endTime"},
		{"empty gradient", Options{StartTime: 0, EndTime: 1, Color: &Color{Gradient: &LinearGradient{}}}, "color"},
		{"gradient and solid", Options{StartTime: 0, EndTime: 1, Color: &Color{Solid: "red", Gradient: &LinearGradient{ColorStops: []string{"a", "b"}}}}, "color"},
		{"empty color token", Options{StartTime: 0, EndTime: 1, Color: &Color{}}, "color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			r := record(s)
			_, err := s.Add(tt.opts)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Add error = %v, want ErrValidation", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error %T is not *ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %q, want %q", ve.Field, tt.field)
			}
			if s.Len() != 0 {
				t.Errorf("Len() = %d after failed add, want 0", s.Len())
			}
			if len(r.events) != 0 {
				t.Errorf("failed add emitted %v", r.kinds())
			}
		})
	}
}

func TestAddIsAtomic(t *testing.T) {
	s := NewStore()
	_, err := s.Add(span(0, 1), span(3, 2), span(4, 5))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Add error = %v, want ErrValidation", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0 (no partial batch)", s.Len())
	}
}

func TestRejectedAddKeepsRotation(t *testing.T) {
	s := NewStore(WithPalette([]string{"a", "b", "c"}, true))
	if _, err := s.Add(span(0, 1), span(0, 1), span(3, 2)); err == nil {
		t.Fatal("Add with an inverted interval should fail")
	}
	if _, err := s.Add(span(0, 1), Options{ID: "x", StartTime: 0, EndTime: 1}, Options{ID: "x", StartTime: 1, EndTime: 2}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Add error = %v, want ErrDuplicateID", err)
	}

	got, err := s.Add(span(0, 1))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got[0].Color().Solid != "b" {
		t.Errorf("color after rejected batches = %q, want b", got[0].Color().Solid)
	}
	if got[0].ID() != DefaultIDPrefix+"0" {
		t.Errorf("ID after rejected batches = %q, want %q", got[0].ID(), DefaultIDPrefix+"0")
	}
}

func TestAddDuplicateID(t *testing.T) {
	s := NewStore()
	if _, err := s.Add(Options{ID: "a", StartTime: 0, EndTime: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	_, err := s.Add(Options{ID: "b", StartTime: 0, EndTime: 1}, Options{ID: "a", StartTime: 2, EndTime: 3})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Add error = %v, want ErrDuplicateID", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if _, ok := s.Get("b"); ok {
		t.Error("b was added despite the batch failing")
	}

	_, err = s.Add(Options{ID: "c", StartTime: 0, EndTime: 1}, Options{ID: "c", StartTime: 0, EndTime: 1})
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate within batch: error = %v, want ErrDuplicateID", err)
	}
}

func TestGeneratedIDsSkipLiveIDs(t *testing.T) {
	s := NewStore()
	if _, err := s.Add(Options{ID: DefaultIDPrefix + "0", StartTime: 0, EndTime: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, err := s.Add(span(1, 2))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got[0].ID() != DefaultIDPrefix+"1" {
		t.Errorf("generated ID = %q, want %q", got[0].ID(), DefaultIDPrefix+"1")
	}
}

func TestUUIDIDs(t *testing.T) {
	s := NewStore(WithIDGenerator(UUIDIDs("iv-")))
	got, err := s.Add(span(0, 1), span(1, 2))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !strings.HasPrefix(got[0].ID(), "iv-") || len(got[0].ID()) != len("iv-")+36 {
		t.Errorf("ID() = %q, want iv-<uuid>", got[0].ID())
	}
	if got[0].ID() == got[1].ID() {
		t.Error("UUID ids collided")
	}
}

func TestPaletteRotation(t *testing.T) {
	palette := []string{"a", "b", "c"}
	s := NewStore(WithPalette(palette, true))
	got, err := s.Add(span(0, 1), span(0, 1), span(0, 1), span(0, 1))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	want := []string{"b", "c", "a", "b"}
	for i, iv := range got {
		if iv.Color().Solid != want[i] {
			t.Errorf("interval %d color = %q, want %q", i, iv.Color().Solid, want[i])
		}
	}

	s = NewStore(WithPalette(palette, false), WithDefaultColor("z"))
	got, _ = s.Add(span(0, 1))
	if got[0].Color().Solid != "z" {
		t.Errorf("color without randomize = %q, want z", got[0].Color().Solid)
	}
}

func TestExtensionsCopied(t *testing.T) {
	ext := map[string]any{"speaker": "alice", "id": "ignored"}
	s := NewStore()
	got, err := s.Add(Options{StartTime: 0, EndTime: 1, Extensions: ext})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	iv := got[0]
	if v, ok := iv.Extension("speaker"); !ok || v != "alice" {
		t.Errorf("Extension(speaker) = %v, %v", v, ok)
	}
	if _, ok := iv.Extension("id"); ok {
		t.Error("reserved key id became an extension field")
	}

	ext["speaker"] = "bob"
	if v, _ := iv.Extension("speaker"); v != "alice" {
		t.Errorf("extension aliased caller map: got %v", v)
	}
}

func TestOverlapExcludesTouchingEndpoints(t *testing.T) {
	s := NewStore()
	if _, err := s.Add(span(10, 20)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	tests := []struct {
		start, end float64
		want       int
	}{
		{20, 30, 0},
		{19, 30, 1},
		{0, 10, 0},
		{0, 10.001, 1},
		{12, 13, 1},
	}
	for _, tt := range tests {
		if got := len(s.Find(tt.start, tt.end)); got != tt.want {
			t.Errorf("Find(%g, %g) returned %d, want %d", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestAtTimeIsRightOpen(t *testing.T) {
	s := NewStore()
	if _, err := s.Add(span(10, 20)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	tests := []struct {
		t    float64
		want int
	}{
		{20, 0},
		{19.999, 1},
		{10, 1},
		{9.999, 0},
	}
	for _, tt := range tests {
		if got := len(s.AtTime(tt.t)); got != tt.want {
			t.Errorf("AtTime(%g) returned %d, want %d", tt.t, got, tt.want)
		}
	}
}

func TestRemoveByTime(t *testing.T) {
	s := NewStore()
	_, err := s.Add(span(1, 2), span(1, 3), span(5, 6), span(1, 2), span(7, 8))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	r := record(s)

	removed := s.RemoveByTime(1, 2)
	if len(removed) != 2 {
		t.Fatalf("RemoveByTime(1, 2) removed %d, want 2", len(removed))
	}
	if r.count(events.IntervalsRemove) != 1 {
		t.Fatalf("remove events = %d, want 1", r.count(events.IntervalsRemove))
	}
	if got := r.events[0].Intervals; len(got) != 2 || got[0] != removed[0] || got[1] != removed[1] {
		t.Errorf("remove event carries %v, want the removed intervals", got)
	}
	if got := len(s.Find(0, math.MaxFloat64)); got != 3 {
		t.Errorf("Find over full range = %d, want 3", got)
	}

	removed = s.RemoveByTime(1, 0)
	if len(removed) != 1 || removed[0].EndTime() != 3 {
		t.Errorf("RemoveByTime(1, 0) removed %v, want the [1,3] interval", removed)
	}

	var starts []float64
	for _, iv := range s.Intervals() {
		starts = append(starts, iv.StartTime())
	}
	if len(starts) != 2 || starts[0] != 5 || starts[1] != 7 {
		t.Errorf("survivor order = %v, want [5 7]", starts)
	}
}

func TestRemoveNoMatchEmitsEmpty(t *testing.T) {
	s := NewStore()
	r := record(s)
	removed := s.RemoveByID("missing")
	if len(removed) != 0 {
		t.Errorf("RemoveByID(missing) = %v, want empty", removed)
	}
	if len(r.events) != 1 || r.events[0].Intervals == nil || len(r.events[0].Intervals) != 0 {
		t.Errorf("want one remove event with an empty slice, got %+v", r.events)
	}
}

func TestRemoveKeepsIndexInSync(t *testing.T) {
	s := NewStore()
	got, _ := s.Add(Options{ID: "a", StartTime: 0, EndTime: 1}, Options{ID: "b", StartTime: 1, EndTime: 2})

	s.Remove(got[0])
	if _, ok := s.Get("a"); ok {
		t.Error("Get(a) still finds a removed interval")
	}
	if iv, ok := s.Get("b"); !ok || iv != got[1] {
		t.Error("Get(b) lost the surviving interval")
	}

	// A removed id may be used again.
	if _, err := s.Add(Options{ID: "a", StartTime: 3, EndTime: 4}); err != nil {
		t.Errorf("re-adding a removed id: %v", err)
	}
}

func TestRemoveAll(t *testing.T) {
	s := NewStore()
	s.Add(span(0, 1), span(1, 2))
	r := record(s)

	s.RemoveAll()
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if _, ok := s.Get(DefaultIDPrefix + "0"); ok {
		t.Error("id index not cleared")
	}
	if len(r.events) != 1 || r.events[0].Kind != events.IntervalsRemoveAll {
		t.Errorf("events = %v, want one remove_all", r.kinds())
	}
}

func TestUpdateValidatesWholeState(t *testing.T) {
	s := NewStore()
	got, _ := s.Add(span(10, 20))
	iv := got[0]
	r := record(s)

	// Moving start past the current end fails even though start alone is fine.
	err := s.Update(iv, Changes{StartTime: Ptr(25.0)})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Update error = %v, want ErrValidation", err)
	}
	if iv.StartTime() != 10 || iv.EndTime() != 20 {
		t.Errorf("failed update mutated interval to [%g, %g]", iv.StartTime(), iv.EndTime())
	}
	if len(r.events) != 0 {
		t.Errorf("failed update emitted %v", r.kinds())
	}

	// Both boundaries together are valid.
	if err := s.Update(iv, Changes{StartTime: Ptr(25.0), EndTime: Ptr(30.0), LabelText: Ptr("moved")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if iv.StartTime() != 25 || iv.EndTime() != 30 || iv.LabelText() != "moved" {
		t.Errorf("interval = [%g, %g] %q after update", iv.StartTime(), iv.EndTime(), iv.LabelText())
	}
	if len(r.events) != 1 || r.events[0].Kind != events.IntervalsUpdate || r.events[0].Interval != iv {
		t.Errorf("want one update event carrying the interval itself, got %+v", r.events)
	}
}

func TestUpdateSubscriberCanQueryStore(t *testing.T) {
	s := NewStore()
	got, _ := s.Add(span(0, 1))
	var seen int
	s.Bus().Subscribe(events.IntervalsUpdate, func(e Event) {
		seen = len(s.Find(e.Interval.StartTime(), e.Interval.EndTime()+1))
	})

	if err := s.Update(got[0], Changes{EndTime: Ptr(5.0)}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if seen != 1 {
		t.Errorf("subscriber saw %d intervals, want 1", seen)
	}
}
