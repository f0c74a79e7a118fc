package interval

import (
	"fmt"
	"maps"
	"math"
	"slices"
)

// Options describes an interval to add. Nil pointers and an empty ID take the
// store defaults.
type Options struct {
	ID         string
	StartTime  float64
	EndTime    float64
	LabelText  *string
	Color      *Color
	Editable   *bool
	Extensions map[string]any
}

// Changes is a partial update. Only non-nil fields are applied. Extension
// fields are merged over the existing ones.
type Changes struct {
	StartTime  *float64
	EndTime    *float64
	LabelText  *string
	Color      *Color
	Editable   *bool
	Extensions map[string]any
}

// Ptr returns a pointer to v, for filling Options and Changes.
func Ptr[T any](v T) *T {
	return &v
}

// optionAliases maps accepted spellings onto the canonical attribute names.
var optionAliases = map[string]string{
	"id":         "id",
	"startTime":  "startTime",
	"start_time": "startTime",
	"start":      "startTime",
	"endTime":    "endTime",
	"end_time":   "endTime",
	"end":        "endTime",
	"labelText":  "labelText",
	"label_text": "labelText",
	"label":      "labelText",
	"color":      "color",
	"editable":   "editable",
}

// ParseOptions builds Options from a loosely typed map, such as an entry of
// the intervals list in a TOML or YAML project file. A value of the wrong
// type fails with a *ValidationError naming the field. Keys that are not
// interval attributes are kept as extension fields.
func ParseOptions(m map[string]any) (Options, error) {
	var opts Options
	var sawStart, sawEnd bool

	for _, key := range slices.Sorted(maps.Keys(m)) {
		raw := m[key]
		name, ok := optionAliases[key]
		if !ok {
			if opts.Extensions == nil {
				opts.Extensions = make(map[string]any)
			}
			opts.Extensions[key] = raw
			continue
		}

		switch name {
		case "id":
			s, ok := raw.(string)
			if !ok {
				return Options{}, typeError("id", "must be a string")
			}
			opts.ID = s
		case "startTime":
			f, ok := toFloat(raw)
			if !ok {
				return Options{}, typeError("startTime", "should be a valid number")
			}
			opts.StartTime = f
			sawStart = true
		case "endTime":
			f, ok := toFloat(raw)
			if !ok {
				return Options{}, typeError("endTime", "should be a valid number")
			}
			opts.EndTime = f
			sawEnd = true
		case "labelText":
			if raw == nil {
				continue
			}
			s, ok := raw.(string)
			if !ok {
				return Options{}, typeError("labelText", "must be a string")
			}
			opts.LabelText = &s
		case "color":
			if raw == nil {
				continue
			}
			c, err := parseColor(raw)
			if err != nil {
				return Options{}, err
			}
			opts.Color = &c
		case "editable":
			if raw == nil {
				continue
			}
			b, ok := raw.(bool)
			if !ok {
				return Options{}, typeError("editable", "must be true or false")
			}
			opts.Editable = &b
		}
	}

	if !sawStart {
		return Options{}, typeError("startTime", "should be a valid number")
	}
	if !sawEnd {
		return Options{}, typeError("endTime", "should be a valid number")
	}
	return opts, nil
}

func typeError(field, constraint string) error {
	return &ValidationError{Op: "add", Field: field, Constraint: constraint}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint:
		return float64(n), true
	}
	return math.NaN(), false
}

// parseColor accepts a color token, or a gradient map with "start", "end"
// and "color_stops" (the camelCase linearGradient* keys are also accepted).
func parseColor(v any) (Color, error) {
	bad := typeError("color", "must be a string or a valid linear gradient object")

	switch c := v.(type) {
	case string:
		return Color{Solid: c}, nil
	case Color:
		return c, nil
	case map[string]any:
		var g LinearGradient
		var ok bool
		if g.Start, ok = toFloat(first(c, "start", "linearGradientStart")); !ok {
			return Color{}, bad
		}
		if g.End, ok = toFloat(first(c, "end", "linearGradientEnd")); !ok {
			return Color{}, bad
		}
		stops, ok := first(c, "color_stops", "linearGradientColorStops").([]any)
		if !ok {
			return Color{}, bad
		}
		for _, s := range stops {
			str, ok := s.(string)
			if !ok {
				return Color{}, bad
			}
			g.ColorStops = append(g.ColorStops, str)
		}
		return Color{Gradient: &g}, nil
	}
	return Color{}, bad
}

func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

// String renders Options for log lines.
func (o Options) String() string {
	label := ""
	if o.LabelText != nil {
		label = *o.LabelText
	}
	return fmt.Sprintf("{id=%q start=%g end=%g label=%q ext=%d}", o.ID, o.StartTime, o.EndTime, label, len(o.Extensions))
}
