// Package pointset provides oriented point sets and a fixed-radius neighbour
// query, so planar regions can be grown over scanned points as well as mesh
// faces.
package pointset

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrEmpty is returned by Validate for a point set without points.
	ErrEmpty = errors.New("point set is empty")

	// ErrNormalCount is returned by Validate when points and normals differ in length.
	ErrNormalCount = errors.New("normal count does not match point count")

	// ErrInvalidRadius is returned by NewSphereQuery for non-positive radii.
	ErrInvalidRadius = errors.New("radius must be positive")
)

// PointSet is a list of points with one normal per point.
type PointSet struct {
	Points  []r3.Vec
	Normals []r3.Vec
}

// Len returns the number of points.
func (ps *PointSet) Len() int { return len(ps.Points) }

// Items returns the point indices in ascending order.
func (ps *PointSet) Items() []int {
	out := make([]int, len(ps.Points))
	for i := range out {
		out[i] = i
	}
	return out
}

// Validate checks that the set is non-empty and every point has a normal.
func (ps *PointSet) Validate() error {
	if len(ps.Points) == 0 {
		return ErrEmpty
	}
	if len(ps.Normals) != len(ps.Points) {
		return fmt.Errorf("%w: %d points, %d normals", ErrNormalCount, len(ps.Points), len(ps.Normals))
	}
	return nil
}

// Geometry adapts a PointSet for plane fitting: every item contributes its
// single point and its normal.
type Geometry struct {
	ps *PointSet
}

// NewGeometry returns the plane-fit view of ps.
func NewGeometry(ps *PointSet) Geometry { return Geometry{ps: ps} }

func (g Geometry) Points(i int) []r3.Vec { return []r3.Vec{g.ps.Points[i]} }
func (g Geometry) Point(i int) r3.Vec    { return g.ps.Points[i] }
func (g Geometry) Normal(i int) r3.Vec   { return g.ps.Normals[i] }

// SphereQuery lists the points within a fixed radius of a point, using a
// k-d tree over the point set.
type SphereQuery struct {
	ps     *PointSet
	radius float64
	tree   *kdtree.Tree
}

// NewSphereQuery indexes ps for radius searches.
func NewSphereQuery(ps *PointSet, radius float64) (*SphereQuery, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, radius)
	}
	pts := make(indexedPoints, len(ps.Points))
	for i, p := range ps.Points {
		pts[i] = indexedPoint{Vec: p, index: i}
	}
	return &SphereQuery{ps: ps, radius: radius, tree: kdtree.New(pts, false)}, nil
}

// Neighbors returns the indices of all other points within the radius of
// point i, ascending. Unknown indices have no neighbours.
func (q *SphereQuery) Neighbors(i int) []int {
	if i < 0 || i >= len(q.ps.Points) {
		return nil
	}
	keep := kdtree.NewDistKeeper(q.radius * q.radius)
	q.tree.NearestSet(keep, indexedPoint{Vec: q.ps.Points[i], index: i})

	out := make([]int, 0, len(keep.Heap))
	for _, c := range keep.Heap {
		if j := c.Comparable.(indexedPoint).index; j != i {
			out = append(out, j)
		}
	}
	slices.Sort(out)
	return out
}

// indexedPoint is a point that remembers its position in the set.
type indexedPoint struct {
	r3.Vec
	index int
}

func (p indexedPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(indexedPoint)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	default:
		return p.Z - q.Z
	}
}

func (indexedPoint) Dims() int { return 3 }

// Distance returns the squared euclidean distance, as kdtree expects.
func (p indexedPoint) Distance(c kdtree.Comparable) float64 {
	d := r3.Sub(p.Vec, c.(indexedPoint).Vec)
	return r3.Dot(d, d)
}

type indexedPoints []indexedPoint

func (p indexedPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p indexedPoints) Len() int                      { return len(p) }
func (p indexedPoints) Pivot(d kdtree.Dim) int        { return axis{points: p, dim: d}.Pivot() }
func (p indexedPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}

// axis orders points along one dimension for median partitioning.
type axis struct {
	points indexedPoints
	dim    kdtree.Dim
}

func (a axis) Len() int           { return len(a.points) }
func (a axis) Less(i, j int) bool { return a.points[i].Compare(a.points[j], a.dim) < 0 }
func (a axis) Swap(i, j int)      { a.points[i], a.points[j] = a.points[j], a.points[i] }
func (a axis) Pivot() int         { return kdtree.Partition(a, kdtree.MedianOfMedians(a)) }
func (a axis) Slice(start, end int) kdtree.SortSlicer {
	a.points = a.points[start:end]
	return a
}
