package scoring

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an sRGB color with channels in [0,1].
type Color = colorful.Color

// Black clears an emissive channel.
var Black = Color{R: 0, G: 0, B: 0}

// GradientStop is one control point of the heat gradient.
type GradientStop struct {
	T     float64
	Color Color
}

// HeatGradient runs cold to hot. Breakpoints and colors are fixed so every
// viewer renders the same encoding.
var HeatGradient = []GradientStop{
	{T: 0.0, Color: mustHex("#1e3cff")}, // blue
	{T: 0.3, Color: mustHex("#00722f")}, // green
	{T: 0.6, Color: mustHex("#f1c40f")}, // yellow
	{T: 0.8, Color: mustHex("#e67e22")}, // orange
	{T: 1.0, Color: mustHex("#e74c3c")}, // red
}

// Categorical ABC palette.
var (
	ColorClassA     = mustHex("#e74c3c")
	ColorClassB     = mustHex("#2ecc71")
	ColorClassOther = mustHex("#1e3cff")
)

// HeatToColor interpolates the heat gradient in RGB. On a breakpoint the
// stop color is returned as is.
func HeatToColor(t float64) Color {
	first := HeatGradient[0]
	if t <= first.T {
		return first.Color
	}
	for i := 0; i < len(HeatGradient)-1; i++ {
		a, b := HeatGradient[i], HeatGradient[i+1]
		if t == a.T {
			return a.Color
		}
		if t == b.T {
			return b.Color
		}
		if t > a.T && t < b.T {
			local := (t - a.T) / (b.T - a.T)
			return a.Color.BlendRgb(b.Color, local)
		}
	}
	return HeatGradient[len(HeatGradient)-1].Color
}

// PickfaceToColor sweeps hue from red (0) to green (1).
func PickfaceToColor(score float64) Color {
	if !(score > 0) {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return colorful.Hsl(0.33*score*360, 1.0, 0.5)
}

// AbcDirectColor is the categorical color of a class. Anything other than
// A or B, including an unconfirmed "D", shares the C color.
func AbcDirectColor(class string) Color {
	switch class {
	case "A":
		return ColorClassA
	case "B":
		return ColorClassB
	default:
		return ColorClassOther
	}
}

// mustHex parses a color literal known at compile time.
func mustHex(hex string) Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic("scoring: bad color literal " + hex)
	}
	return c
}

// HexColor parses a "#rrggbb" literal, falling back to black.
func HexColor(hex string) Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Black
	}
	return c
}
