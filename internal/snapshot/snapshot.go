// Package snapshot builds immutable data snapshots of a cuelane session.
//
// A DataSnapshot captures the intervals, zoom state, visible frame and
// playhead at a point in time. The TUI rebuilds one after every change and
// --json mode prints one and exits.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/daviddao/cuelane/internal/interval"
	"github.com/daviddao/cuelane/internal/media"
	"github.com/daviddao/cuelane/internal/timeline"
	"github.com/daviddao/cuelane/internal/viewport"
	"github.com/daviddao/cuelane/internal/zoom"
)

// Interval is the exported view of one stored interval.
type Interval struct {
	ID         string         `json:"id" yaml:"id"`
	Start      float64        `json:"start" yaml:"start"`
	End        float64        `json:"end" yaml:"end"`
	Label      string         `json:"label,omitempty" yaml:"label,omitempty"`
	Color      string         `json:"color" yaml:"color"`
	Editable   bool           `json:"editable" yaml:"editable"`
	OnScreen   bool           `json:"on_screen" yaml:"on_screen"`
	Extensions map[string]any `json:"extensions,omitempty" yaml:"extensions,omitempty"`
}

// Zoom describes the active zoom strategy.
type Zoom struct {
	Mode  string `json:"mode" yaml:"mode"`
	Scale int    `json:"scale" yaml:"scale"`

	// Stepped only.
	Level  int   `json:"level,omitempty" yaml:"level,omitempty"`
	Levels []int `json:"levels,omitempty" yaml:"levels,omitempty"`

	// Continuous only.
	Value     float64 `json:"value,omitempty" yaml:"value,omitempty"`
	Animating bool    `json:"animating,omitempty" yaml:"animating,omitempty"`
}

// Frame is the visible time window.
type Frame struct {
	Offset int     `json:"offset" yaml:"offset"`
	Width  int     `json:"width" yaml:"width"`
	Start  float64 `json:"start" yaml:"start"`
	End    float64 `json:"end" yaml:"end"`
}

// DataSnapshot is an immutable, self-contained view of the session state.
type DataSnapshot struct {
	Intervals []Interval `json:"intervals" yaml:"intervals"`
	Zoom      Zoom       `json:"zoom" yaml:"zoom"`
	Frame     Frame      `json:"frame" yaml:"frame"`

	Playhead   float64  `json:"playhead" yaml:"playhead"`
	Duration   float64  `json:"duration" yaml:"duration"`
	AtPlayhead []string `json:"at_playhead" yaml:"at_playhead"`
	Editing    bool     `json:"editing" yaml:"editing"`
	ConfigPath string   `json:"config_path,omitempty" yaml:"config_path,omitempty"`

	// Counts.
	TotalIntervals    int `json:"total_intervals" yaml:"total_intervals"`
	OnScreenIntervals int `json:"on_screen_intervals" yaml:"on_screen_intervals"`
	EditableIntervals int `json:"editable_intervals" yaml:"editable_intervals"`

	// Timestamp of snapshot creation.
	BuiltAt time.Time `json:"built_at" yaml:"built_at"`
}

// Sources are the live objects a snapshot is read from. Layer and Player
// may be nil.
type Sources struct {
	Store      *interval.Store
	Zoom       *zoom.Machine
	Timeline   *timeline.Timeline
	Layer      *viewport.Layer
	Player     media.Player
	ConfigPath string
}

// ErrNoStore is returned by Build when Sources has no store or timeline.
var ErrNoStore = errors.New("snapshot: store and timeline are required")

// Build reads src and returns a complete snapshot. A zoom machine with an
// invalid mode fails the build.
func Build(src Sources) (*DataSnapshot, error) {
	if src.Store == nil || src.Timeline == nil {
		return nil, ErrNoStore
	}
	snap := &DataSnapshot{
		Duration:   src.Timeline.Duration(),
		ConfigPath: src.ConfigPath,
		AtPlayhead: []string{},
		BuiltAt:    time.Now(),
	}

	if src.Zoom != nil {
		z, err := buildZoom(src.Zoom, src.Timeline)
		if err != nil {
			return nil, err
		}
		snap.Zoom = z
	}

	start, end := src.Timeline.FrameTimes()
	snap.Frame = Frame{
		Offset: src.Timeline.FrameOffset(),
		Width:  src.Timeline.Width(),
		Start:  start,
		End:    end,
	}

	if src.Player != nil {
		snap.Playhead = src.Player.CurrentTime()
		for _, iv := range src.Store.AtTime(snap.Playhead) {
			snap.AtPlayhead = append(snap.AtPlayhead, iv.ID())
		}
	}
	if src.Layer != nil {
		snap.Editing = src.Layer.IsEditingEnabled()
	}

	all := src.Store.Intervals()
	snap.Intervals = make([]Interval, len(all))
	for i, iv := range all {
		onScreen := false
		if src.Layer != nil {
			_, onScreen = src.Layer.Shape(iv.ID())
		}
		snap.Intervals[i] = Interval{
			ID:         iv.ID(),
			Start:      iv.StartTime(),
			End:        iv.EndTime(),
			Label:      iv.LabelText(),
			Color:      iv.Color().String(),
			Editable:   iv.Editable(),
			OnScreen:   onScreen,
			Extensions: iv.Extensions(),
		}
		if onScreen {
			snap.OnScreenIntervals++
		}
		if iv.Editable() {
			snap.EditableIntervals++
		}
	}
	snap.TotalIntervals = len(all)
	return snap, nil
}

func buildZoom(m *zoom.Machine, tl *timeline.Timeline) (Zoom, error) {
	strategy, err := m.Strategy()
	if err != nil {
		return Zoom{}, err
	}
	z := Zoom{Mode: strategy.Mode().String(), Scale: tl.Scale()}
	switch s := strategy.(type) {
	case *zoom.SteppedZoom:
		z.Level = s.GetZoom()
		z.Levels = s.Levels()
	case *zoom.ContinuousZoom:
		z.Value = s.GetZoom()
		z.Animating = s.Animating()
	}
	return z, nil
}

// JSON encodes the snapshot as indented JSON with a trailing newline.
func (s *DataSnapshot) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// YAML encodes the snapshot as YAML.
func (s *DataSnapshot) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
