// Package zoom owns the timeline magnification.
//
// Two modes exist and one is fixed when the Machine is built: stepped mode
// walks an array of scale factors (samples per pixel), continuous mode holds
// a value in [0, 1] and can ease toward a target over several frames.
package zoom

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/daviddao/cuelane/internal/events"
)

// Mode selects the zoom strategy.
type Mode int

const (
	Stepped Mode = iota + 1
	Continuous
)

func (m Mode) String() string {
	switch m {
	case Stepped:
		return "stepped"
	case Continuous:
		return "continuous"
	}
	return "?"
}

// ParseMode maps a configured mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stepped":
		return Stepped, nil
	case "continuous":
		return Continuous, nil
	}
	return 0, &InvalidModeError{Mode: s}
}

// ErrInvalidMode matches every *InvalidModeError via errors.Is.
var ErrInvalidMode = errors.New("invalid zoom mode")

// InvalidModeError reports a configured mode with no implementation, or a
// typed accessor used against the other mode (Want is then set).
type InvalidModeError struct {
	Mode string
	Want string
}

func (e *InvalidModeError) Error() string {
	if e.Want != "" {
		return fmt.Sprintf("zoom mode is %q, not %q", e.Mode, e.Want)
	}
	return fmt.Sprintf("invalid zoom mode %q", e.Mode)
}

func (e *InvalidModeError) Is(target error) bool {
	return target == ErrInvalidMode
}

// Event is the payload of zoom.update (Scale, PreviousScale) and zoom.change
// (Value).
type Event struct {
	Kind          events.Kind
	Scale         int
	PreviousScale int
	Value         float64
}

// Bus dispatches zoom events.
type Bus = events.Dispatcher[Event]

// Strategy is the surface shared by both modes.
type Strategy interface {
	Mode() Mode
	ZoomIn()
	ZoomOut()
}

// DefaultLevels are the stepped scale factors, most detailed first.
var DefaultLevels = []int{512, 1024, 2048, 4096}

// DefaultMaxScaleFactor is the continuous-mode scale at value 1.
const DefaultMaxScaleFactor = 512

// Config fixes the mode and its parameters.
type Config struct {
	Mode           string
	Levels         []int
	InitialLevel   int
	MaxScaleFactor int
}

// Machine holds the strategy chosen at construction. A configuration error
// is reported on first access, not by New.
type Machine struct {
	name       string
	mode       Mode
	err        error
	stepped    *SteppedZoom
	continuous *ContinuousZoom
	bus        *Bus
	logger     *slog.Logger
	scheduler  Scheduler
}

// Option configures a Machine.
type Option func(*Machine)

// WithScheduler sets the frame scheduler used by continuous easing.
func WithScheduler(s Scheduler) Option {
	return func(m *Machine) { m.scheduler = s }
}

// WithLogger sets the machine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// WithBus makes the machine publish on an existing bus.
func WithBus(b *Bus) Option {
	return func(m *Machine) { m.bus = b }
}

// New builds the strategy for cfg.Mode.
func New(cfg Config, opts ...Option) *Machine {
	m := &Machine{name: cfg.Mode}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.bus == nil {
		m.bus = events.NewDispatcher[Event](m.logger)
	}
	if m.scheduler == nil {
		m.scheduler = NewFrameQueue()
	}

	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		m.err = err
		return m
	}
	m.mode = mode

	switch mode {
	case Stepped:
		levels := cfg.Levels
		if len(levels) == 0 {
			levels = DefaultLevels
		}
		m.stepped = &SteppedZoom{
			levels: slices.Clone(levels),
			index:  clampIndex(cfg.InitialLevel, len(levels)),
			bus:    m.bus,
			logger: m.logger,
		}
	case Continuous:
		maxScale := cfg.MaxScaleFactor
		if maxScale <= 0 {
			maxScale = DefaultMaxScaleFactor
		}
		c := &ContinuousZoom{maxScale: maxScale, bus: m.bus, logger: m.logger}
		c.anim = NewAnimation(m.scheduler, c.emitChange)
		m.continuous = c
	}
	return m
}

// Mode returns the configured mode, or 0 when it is invalid.
func (m *Machine) Mode() Mode { return m.mode }

// Bus returns the bus zoom events are published on.
func (m *Machine) Bus() *Bus { return m.bus }

// Strategy returns the active strategy.
func (m *Machine) Strategy() (Strategy, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.stepped != nil {
		return m.stepped, nil
	}
	return m.continuous, nil
}

// Stepped returns the stepped strategy, or an error when the machine runs in
// another mode.
func (m *Machine) Stepped() (*SteppedZoom, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.stepped == nil {
		return nil, &InvalidModeError{Mode: m.name, Want: Stepped.String()}
	}
	return m.stepped, nil
}

// Continuous returns the continuous strategy, or an error when the machine
// runs in another mode.
func (m *Machine) Continuous() (*ContinuousZoom, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.continuous == nil {
		return nil, &InvalidModeError{Mode: m.name, Want: Continuous.String()}
	}
	return m.continuous, nil
}

// ScaleAt maps a continuous value onto a scale factor: 0 gives overview (the
// whole timeline in view), 1 gives maximum, geometrically in between.
func ScaleAt(value float64, overview, maximum int) int {
	if overview <= maximum {
		return maximum
	}
	value = clampUnit(value)
	scale := float64(overview) * math.Pow(float64(maximum)/float64(overview), value)
	return max(1, int(math.Round(scale)))
}

func clampIndex(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
