// Package interval holds the annotation data model: the Interval entity, the
// Store that owns every live interval, and the marker drag protocol that
// edits interval boundaries interactively.
//
// Everything here runs on the host's single event loop. Nothing is safe for
// concurrent use.
package interval

import (
	"maps"
	"math"
)

// reservedKeys are the core attribute names. They never become extension
// fields.
var reservedKeys = map[string]bool{
	"id":        true,
	"startTime": true,
	"endTime":   true,
	"labelText": true,
	"color":     true,
	"editable":  true,
}

// Interval is a validated time range with a label, a color and an editable
// flag. Times are seconds.
//
// 0 <= StartTime <= EndTime holds for every interval, including while a
// marker is dragged.
type Interval struct {
	id        string
	startTime float64
	endTime   float64
	labelText string
	color     Color
	editable  bool
	ext       map[string]any
}

// fields is the mutable scalar state, validated as a whole.
type fields struct {
	startTime float64
	endTime   float64
	labelText string
	color     Color
	editable  bool
}

// ID returns the interval's id, unique within its store.
func (iv *Interval) ID() string { return iv.id }

func (iv *Interval) StartTime() float64 { return iv.startTime }
func (iv *Interval) EndTime() float64   { return iv.endTime }
func (iv *Interval) LabelText() string  { return iv.labelText }

// Color returns a copy of the color; gradient stops are not shared.
func (iv *Interval) Color() Color { return iv.color.clone() }

func (iv *Interval) Editable() bool { return iv.editable }

// Duration returns EndTime - StartTime in seconds.
func (iv *Interval) Duration() float64 { return iv.endTime - iv.startTime }

// IsInstant reports whether the interval is a single point in time.
func (iv *Interval) IsInstant() bool { return iv.startTime == iv.endTime }

// Extension returns a single extension field.
func (iv *Interval) Extension(key string) (any, bool) {
	v, ok := iv.ext[key]
	return v, ok
}

// Extensions returns a copy of the caller-supplied extension fields.
func (iv *Interval) Extensions() map[string]any {
	return maps.Clone(iv.ext)
}

// IsVisible reports whether the interval overlaps [start, end]. Touching
// endpoints do not overlap.
func (iv *Interval) IsVisible(start, end float64) bool {
	return iv.startTime < end && start < iv.endTime
}

// Contains reports whether t falls in [StartTime, EndTime).
func (iv *Interval) Contains(t float64) bool {
	return t >= iv.startTime && t < iv.endTime
}

func (iv *Interval) snapshot() fields {
	return fields{
		startTime: iv.startTime,
		endTime:   iv.endTime,
		labelText: iv.labelText,
		color:     iv.color,
		editable:  iv.editable,
	}
}

func (iv *Interval) commit(f fields) {
	iv.startTime = f.startTime
	iv.endTime = f.endTime
	iv.labelText = f.labelText
	iv.color = f.color.clone()
	iv.editable = f.editable
}

func (iv *Interval) mergeExtensions(ext map[string]any) {
	for k, v := range ext {
		if reservedKeys[k] {
			continue
		}
		if iv.ext == nil {
			iv.ext = make(map[string]any, len(ext))
		}
		iv.ext[k] = v
	}
}

// setStartTime and setEndTime skip validation. Only the drag protocol calls
// them; it clamps the time against the opposite boundary first.
func (iv *Interval) setStartTime(t float64) { iv.startTime = t }
func (iv *Interval) setEndTime(t float64)   { iv.endTime = t }

func validTime(t float64) bool {
	return !math.IsNaN(t) && !math.IsInf(t, 0)
}

func validate(op string, f fields) error {
	switch {
	case !validTime(f.startTime):
		return &ValidationError{Op: op, Field: "startTime", Constraint: "should be a valid number"}
	case !validTime(f.endTime):
		return &ValidationError{Op: op, Field: "endTime", Constraint: "should be a valid number"}
	case f.startTime < 0:
		return &ValidationError{Op: op, Field: "startTime", Constraint: "should not be negative"}
	case f.endTime < 0:
		return &ValidationError{Op: op, Field: "endTime", Constraint: "should not be negative"}
	case f.endTime < f.startTime:
		return &ValidationError{Op: op, Field: "endTime", Constraint: "should not be less than startTime"}
	case !f.color.valid():
		return &ValidationError{Op: op, Field: "color", Constraint: "must be a color token or a linear gradient with at least two stops"}
	}
	return nil
}
