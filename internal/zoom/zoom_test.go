package zoom

import (
	"errors"
	"math"
	"testing"

	"github.com/daviddao/cuelane/internal/events"
)

func collect(b *Bus) *[]Event {
	var got []Event
	b.SubscribeAll(func(e Event) { got = append(got, e) })
	return &got
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"stepped", Stepped, true},
		{"Continuous", Continuous, true},
		{" stepped ", Stepped, true},
		{"smooth", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if got != tt.want || (err == nil) != tt.ok {
			t.Errorf("ParseMode(%q) = %v, %v, want %v ok=%v", tt.in, got, err, tt.want, tt.ok)
		}
	}
}

func TestInvalidModeReportedOnAccess(t *testing.T) {
	m := New(Config{Mode: "smooth"})
	if _, err := m.Strategy(); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("Strategy() error = %v, want ErrInvalidMode", err)
	}
	if _, err := m.Stepped(); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("Stepped() error = %v, want ErrInvalidMode", err)
	}
	var ime *InvalidModeError
	if _, err := m.Continuous(); !errors.As(err, &ime) || ime.Mode != "smooth" {
		t.Errorf("Continuous() error = %v, want InvalidModeError for smooth", err)
	}
}

func TestWrongTypedAccessor(t *testing.T) {
	m := New(Config{Mode: "stepped"})
	if _, err := m.Continuous(); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("Continuous() on stepped machine = %v, want ErrInvalidMode", err)
	}
	s, err := m.Strategy()
	if err != nil || s.Mode() != Stepped {
		t.Errorf("Strategy() = %v, %v, want stepped", s, err)
	}
}

func TestSteppedClamping(t *testing.T) {
	m := New(Config{Mode: "stepped", Levels: []int{256, 512, 1024}})
	s, err := m.Stepped()
	if err != nil {
		t.Fatal(err)
	}
	got := collect(m.Bus())

	tests := []struct {
		in, want int
	}{
		{-1, 0},
		{1, 1},
		{3 + 5, 2},
		{2, 2},
	}
	for _, tt := range tests {
		s.SetZoom(tt.in)
		if s.GetZoom() != tt.want {
			t.Errorf("SetZoom(%d): GetZoom() = %d, want %d", tt.in, s.GetZoom(), tt.want)
		}
	}
	if len(*got) != len(tests) {
		t.Fatalf("published %d events, want one per SetZoom (%d)", len(*got), len(tests))
	}
	last := (*got)[len(*got)-1]
	if last.Kind != events.ZoomUpdate || last.Scale != 1024 || last.PreviousScale != 1024 {
		t.Errorf("last event = %+v, want update 1024 <- 1024", last)
	}
	second := (*got)[1]
	if second.Scale != 512 || second.PreviousScale != 256 {
		t.Errorf("second event = %+v, want update 512 <- 256", second)
	}
}

func TestSteppedZoomInLowersIndex(t *testing.T) {
	m := New(Config{Mode: "stepped", InitialLevel: 2})
	s, _ := m.Stepped()
	s.ZoomIn()
	if s.GetZoom() != 1 || s.Scale() != DefaultLevels[1] {
		t.Errorf("after ZoomIn index = %d scale = %d, want 1 / %d", s.GetZoom(), s.Scale(), DefaultLevels[1])
	}
	s.ZoomOut()
	s.ZoomOut()
	s.ZoomOut()
	if s.GetZoom() != len(DefaultLevels)-1 {
		t.Errorf("after ZoomOut x3 index = %d, want %d", s.GetZoom(), len(DefaultLevels)-1)
	}
}

func TestSteppedOverviewReset(t *testing.T) {
	m := New(Config{Mode: "stepped"})
	s, _ := m.Stepped()
	got := collect(m.Bus())

	s.Overview(9000)
	s.Reset(9000)
	if len(*got) != 2 {
		t.Fatalf("events = %d, want 2", len(*got))
	}
	if e := (*got)[0]; e.Scale != 9000 || e.PreviousScale != 512 {
		t.Errorf("overview event = %+v", e)
	}
	if e := (*got)[1]; e.Scale != 512 || e.PreviousScale != 9000 {
		t.Errorf("reset event = %+v", e)
	}
	if s.GetZoom() != 0 {
		t.Errorf("GetZoom() = %d after overview/reset, want 0", s.GetZoom())
	}
}

func TestContinuousImmediate(t *testing.T) {
	q := NewFrameQueue()
	m := New(Config{Mode: "continuous"}, WithScheduler(q))
	c, err := m.Continuous()
	if err != nil {
		t.Fatal(err)
	}
	got := collect(m.Bus())

	c.ZoomTo(1.5, false)
	if c.GetZoom() != 1 || c.Current() != 1 {
		t.Errorf("ZoomTo(1.5): GetZoom() = %g Current() = %g, want 1", c.GetZoom(), c.Current())
	}
	if len(*got) != 1 || (*got)[0].Value != 1 || (*got)[0].Kind != events.ZoomChange {
		t.Errorf("events = %+v, want one change to 1", *got)
	}
	if q.Pending() {
		t.Error("immediate zoom scheduled a frame")
	}
}

func TestContinuousAnimationConverges(t *testing.T) {
	q := NewFrameQueue()
	m := New(Config{Mode: "continuous"}, WithScheduler(q))
	c, _ := m.Continuous()
	got := collect(m.Bus())

	c.ZoomTo(0.5, true)
	if c.GetZoom() != 0.5 {
		t.Errorf("GetZoom() = %g during animation, want target 0.5", c.GetZoom())
	}
	q.RunFrame()
	q.RunFrame()
	c.ZoomTo(0.8, true)
	for i := 0; q.Pending() && i < 100; i++ {
		q.RunFrame()
	}
	if q.Pending() || c.Animating() {
		t.Fatal("animation did not terminate")
	}
	if math.Abs(c.Current()-0.8) > Epsilon {
		t.Errorf("Current() = %g, want within %g of 0.8", c.Current(), Epsilon)
	}

	// Once retargeted, no value may head back toward 0.5.
	retarget := 3
	for i := retarget; i < len(*got)-1; i++ {
		if (*got)[i+1].Value < (*got)[i].Value {
			t.Errorf("value moved backwards: %g -> %g", (*got)[i].Value, (*got)[i+1].Value)
		}
	}
}

func TestContinuousStepsFollowEaseFactor(t *testing.T) {
	q := NewFrameQueue()
	m := New(Config{Mode: "continuous"}, WithScheduler(q))
	c, _ := m.Continuous()
	got := collect(m.Bus())

	c.ZoomTo(0.9, true)
	q.RunFrame()
	want := []float64{0.3, 0.5}
	for i, w := range want {
		if math.Abs((*got)[i].Value-w) > 1e-9 {
			t.Errorf("step %d = %g, want %g", i, (*got)[i].Value, w)
		}
	}
}

func TestContinuousCancel(t *testing.T) {
	q := NewFrameQueue()
	m := New(Config{Mode: "continuous"}, WithScheduler(q))
	c, _ := m.Continuous()

	c.Cancel()
	c.ZoomTo(1, true)
	shown := c.Current()
	c.Cancel()
	c.Cancel()
	if q.Pending() || c.Animating() {
		t.Error("Cancel left a frame pending")
	}
	q.RunFrame()
	if c.Current() != shown {
		t.Errorf("Current() moved to %g after Cancel, want %g", c.Current(), shown)
	}
}

func TestContinuousZoomInOut(t *testing.T) {
	q := NewFrameQueue()
	m := New(Config{Mode: "continuous"}, WithScheduler(q))
	c, _ := m.Continuous()

	c.ZoomIn()
	c.ZoomIn()
	if math.Abs(c.GetZoom()-0.2) > 1e-9 {
		t.Errorf("GetZoom() = %g after two ZoomIn, want 0.2", c.GetZoom())
	}
	c.ZoomOut()
	c.ZoomOut()
	c.ZoomOut()
	if c.GetZoom() != 0 {
		t.Errorf("GetZoom() = %g, want clamped 0", c.GetZoom())
	}
}

func TestRestartFromSubscriber(t *testing.T) {
	q := NewFrameQueue()
	m := New(Config{Mode: "continuous"}, WithScheduler(q))
	c, _ := m.Continuous()

	restarted := false
	m.Bus().Subscribe(events.ZoomChange, func(e Event) {
		if !restarted {
			restarted = true
			c.ZoomTo(0.2, true)
		}
	})
	c.ZoomTo(1, true)
	if q.RunFrame() > 1 {
		t.Error("restart inside a step left two frames scheduled")
	}
}

func TestScaleAt(t *testing.T) {
	tests := []struct {
		v        float64
		overview int
		want     int
	}{
		{0, 8192, 8192},
		{1, 8192, 512},
		{0.5, 8192, 2048},
		{0.5, 256, 512},
		{-3, 8192, 8192},
	}
	for _, tt := range tests {
		if got := ScaleAt(tt.v, tt.overview, 512); got != tt.want {
			t.Errorf("ScaleAt(%g, %d, 512) = %d, want %d", tt.v, tt.overview, got, tt.want)
		}
	}
}

func TestFrameQueueCancel(t *testing.T) {
	q := NewFrameQueue()
	ran := 0
	cancel := q.Schedule(func() { ran++ })
	q.Schedule(func() { ran += 10 })
	cancel()
	cancel()
	if n := q.RunFrame(); n != 1 || ran != 10 {
		t.Errorf("RunFrame() = %d, ran = %d, want 1, 10", n, ran)
	}
}
