// Package planefit fits planes to point sets and decides planar region
// membership for the region growing engine.
//
// An [Accumulator] keeps the sufficient statistics of a point set so that a
// least-squares plane can be refitted after every insertion without touching
// the points again. A [Criterion] wraps an accumulator and a [Geometry] to
// implement [regiongrow.RegionType]: a candidate joins a region when it lies
// close to the region's plane and its normal is nearly parallel to the plane
// normal.
package planefit

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrUnderdetermined is returned by Fit for fewer than three points.
	ErrUnderdetermined = errors.New("plane fit needs at least 3 points")

	// ErrDegenerate is returned by Fit when the points are collinear or coincident.
	ErrDegenerate = errors.New("degenerate point set")

	// ErrEigenFailed is returned by Fit when the eigen decomposition does not converge.
	ErrEigenFailed = errors.New("eigen decomposition failed")
)

// degenerateRatio bounds the middle eigenvalue relative to the total
// variance. Below it the points are treated as lying on a line.
const degenerateRatio = 1e-12

// Accumulator holds the count, first and second moments of a point set.
//
// Moments are taken relative to the first point added. The zero value is an
// empty accumulator. Accumulator is a value type: copying it gives an
// independent accumulator, which is how hypothetical fits are computed.
type Accumulator struct {
	n                      int
	origin                 r3.Vec
	sum                    r3.Vec
	xx, xy, xz, yy, yz, zz float64
}

// Add inserts one point.
func (a *Accumulator) Add(p r3.Vec) {
	if a.n == 0 {
		*a = Accumulator{origin: p}
	}
	d := r3.Sub(p, a.origin)
	a.n++
	a.sum = r3.Add(a.sum, d)
	a.xx += d.X * d.X
	a.xy += d.X * d.Y
	a.xz += d.X * d.Z
	a.yy += d.Y * d.Y
	a.yz += d.Y * d.Z
	a.zz += d.Z * d.Z
}

// AddAll inserts every point of ps.
func (a *Accumulator) AddAll(ps []r3.Vec) {
	for _, p := range ps {
		a.Add(p)
	}
}

// Remove takes out a point that was previously added. Removing from an empty
// accumulator is a no-op.
func (a *Accumulator) Remove(p r3.Vec) {
	if a.n == 0 {
		return
	}
	if a.n == 1 {
		a.Reset()
		return
	}
	d := r3.Sub(p, a.origin)
	a.n--
	a.sum = r3.Sub(a.sum, d)
	a.xx -= d.X * d.X
	a.xy -= d.X * d.Y
	a.xz -= d.X * d.Z
	a.yy -= d.Y * d.Y
	a.yz -= d.Y * d.Z
	a.zz -= d.Z * d.Z
}

// Merge adds all points summarised by b.
func (a *Accumulator) Merge(b Accumulator) {
	if b.n == 0 {
		return
	}
	if a.n == 0 {
		*a = b
		return
	}
	// Re-express b's moments around a's origin.
	s := r3.Sub(b.origin, a.origin)
	n := float64(b.n)
	a.xx += b.xx + 2*b.sum.X*s.X + n*s.X*s.X
	a.yy += b.yy + 2*b.sum.Y*s.Y + n*s.Y*s.Y
	a.zz += b.zz + 2*b.sum.Z*s.Z + n*s.Z*s.Z
	a.xy += b.xy + b.sum.X*s.Y + s.X*b.sum.Y + n*s.X*s.Y
	a.xz += b.xz + b.sum.X*s.Z + s.X*b.sum.Z + n*s.X*s.Z
	a.yz += b.yz + b.sum.Y*s.Z + s.Y*b.sum.Z + n*s.Y*s.Z
	a.sum = r3.Add(a.sum, r3.Add(b.sum, r3.Scale(n, s)))
	a.n += b.n
}

// Reset empties the accumulator.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}

// Len returns the number of points.
func (a Accumulator) Len() int {
	return a.n
}

// Centroid returns the mean point. It is the zero vector for an empty accumulator.
func (a Accumulator) Centroid() r3.Vec {
	if a.n == 0 {
		return r3.Vec{}
	}
	return r3.Add(a.origin, r3.Scale(1/float64(a.n), a.sum))
}

// Covariance returns the population covariance matrix of the points.
func (a Accumulator) Covariance() *mat.SymDense {
	if a.n == 0 {
		return mat.NewSymDense(3, nil)
	}
	inv := 1 / float64(a.n)
	m := r3.Scale(inv, a.sum)
	return mat.NewSymDense(3, []float64{
		a.xx*inv - m.X*m.X, a.xy*inv - m.X*m.Y, a.xz*inv - m.X*m.Z,
		a.xy*inv - m.X*m.Y, a.yy*inv - m.Y*m.Y, a.yz*inv - m.Y*m.Z,
		a.xz*inv - m.X*m.Z, a.yz*inv - m.Y*m.Z, a.zz*inv - m.Z*m.Z,
	})
}

// Fit is the result of a least-squares plane fit.
type Fit struct {
	Plane  Plane
	Values [3]float64 // covariance eigenvalues, ascending
	Count  int
}

// Residual returns the share of the variance orthogonal to the plane, in
// [0, 1/3]. Zero means the points are exactly coplanar.
func (f Fit) Residual() float64 {
	total := f.Values[0] + f.Values[1] + f.Values[2]
	if total <= 0 {
		return 0
	}
	return math.Max(f.Values[0], 0) / total
}

// Fit computes the least-squares plane through the points. The plane passes
// through the centroid; its normal is the eigenvector of the smallest
// covariance eigenvalue, returned with unit length.
func (a Accumulator) Fit() (Fit, error) {
	if a.n < 3 {
		return Fit{}, ErrUnderdetermined
	}

	var es mat.EigenSym
	if ok := es.Factorize(a.Covariance(), true); !ok {
		return Fit{}, ErrEigenFailed
	}
	values := es.Values(nil)
	total := values[0] + values[1] + values[2]
	if !(total > 0) || values[1] <= degenerateRatio*total {
		return Fit{}, ErrDegenerate
	}

	var vectors mat.Dense
	es.VectorsTo(&vectors)
	normal := r3.Unit(r3.Vec{X: vectors.At(0, 0), Y: vectors.At(1, 0), Z: vectors.At(2, 0)})

	return Fit{
		Plane:  Plane{Point: a.Centroid(), Normal: normal},
		Values: [3]float64{values[0], values[1], values[2]},
		Count:  a.n,
	}, nil
}
