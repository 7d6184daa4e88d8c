package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const goldenAngle = 137.50776405003785

// Unassigned is the colour of items outside every region.
var Unassigned = colorful.Color{R: 0.62, G: 0.62, B: 0.62}

// Color returns the colour of region id.
func Color(id int) colorful.Color {
	if id < 0 {
		return Unassigned
	}
	h := math.Mod(float64(id)*goldenAngle, 360)
	s := 0.55 + 0.15*float64(id%3)
	v := 0.95 - 0.1*float64(id%2)
	return colorful.Hsv(h, s, v).Clamped()
}

// Palette returns the colours of regions 0 to n-1.
func Palette(n int) []colorful.Color {
	out := make([]colorful.Color, max(n, 0))
	for i := range out {
		out[i] = Color(i)
	}
	return out
}
