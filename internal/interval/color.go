package interval

import "strings"

// LinearGradient describes a gradient fill across an interval. Start and End
// are offsets in the shape's coordinate space.
type LinearGradient struct {
	Start      float64  `json:"start" yaml:"start"`
	End        float64  `json:"end" yaml:"end"`
	ColorStops []string `json:"color_stops" yaml:"color_stops"`
}

// Color is either a solid color token or a gradient, never both.
type Color struct {
	Solid    string          `json:"solid,omitempty" yaml:"solid,omitempty"`
	Gradient *LinearGradient `json:"gradient,omitempty" yaml:"gradient,omitempty"`
}

// SolidColor is shorthand for a solid Color.
func SolidColor(token string) Color {
	return Color{Solid: token}
}

// IsGradient reports whether c carries a gradient.
func (c Color) IsGradient() bool {
	return c.Gradient != nil
}

// String returns the solid token, or a compact gradient description.
func (c Color) String() string {
	if c.Gradient != nil {
		return "gradient(" + strings.Join(c.Gradient.ColorStops, ",") + ")"
	}
	return c.Solid
}

// valid reports whether c is well formed: exactly one of Solid or Gradient,
// and a gradient has at least two non-empty stops.
func (c Color) valid() bool {
	if c.Gradient == nil {
		return c.Solid != ""
	}
	if c.Solid != "" || len(c.Gradient.ColorStops) < 2 {
		return false
	}
	for _, stop := range c.Gradient.ColorStops {
		if stop == "" {
			return false
		}
	}
	return true
}

func (c Color) clone() Color {
	if c.Gradient == nil {
		return c
	}
	g := *c.Gradient
	g.ColorStops = append([]string(nil), c.Gradient.ColorStops...)
	return Color{Gradient: &g}
}

// DefaultPalette is the rotation used when colors are randomized.
var DefaultPalette = []string{
	"#001F3F", // navy
	"#0074D9", // blue
	"#7FDBFF", // aqua
	"#39CCCC", // teal
	"#FFDC00", // yellow
	"#FF851B", // orange
	"#FF4136", // red
	"#85144B", // maroon
	"#F012BE", // fuchsia
	"#B10DC9", // purple
}

// DefaultColor is used when colors are not randomized and none was supplied.
const DefaultColor = "#FFA127"
