package planefit

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Plane is an oriented plane through Point with unit Normal.
type Plane struct {
	Point  r3.Vec `json:"point"`
	Normal r3.Vec `json:"normal"`
}

// Valid reports whether the plane has a finite, non-zero normal.
func (p Plane) Valid() bool {
	n := r3.Norm(p.Normal)
	return n > 0 && !math.IsInf(n, 0) && !math.IsNaN(n)
}

// Distance returns the unsigned distance from q to the plane.
func (p Plane) Distance(q r3.Vec) float64 {
	return math.Abs(r3.Dot(r3.Sub(q, p.Point), p.Normal))
}

// Offset returns d in the plane equation n·x + d = 0.
func (p Plane) Offset() float64 {
	return -r3.Dot(p.Normal, p.Point)
}

// Angle returns the angle in degrees between n and the plane normal,
// ignoring orientation, so the result lies in [0, 90]. It is NaN when either
// vector is zero.
func (p Plane) Angle(n r3.Vec) float64 {
	ln, lp := r3.Norm(n), r3.Norm(p.Normal)
	if ln == 0 || lp == 0 {
		return math.NaN()
	}
	c := math.Abs(r3.Dot(n, p.Normal)) / (ln * lp)
	return math.Acos(math.Min(c, 1)) * 180 / math.Pi
}

// OrientTowards returns the plane with its normal flipped, if needed, so it
// points into the half-space of dir.
func (p Plane) OrientTowards(dir r3.Vec) Plane {
	if r3.Dot(p.Normal, dir) < 0 {
		p.Normal = r3.Scale(-1, p.Normal)
	}
	return p
}
