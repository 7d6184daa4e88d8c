package planefit

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/planeseg/pkg/regiongrow"
)

// ErrNilGeometry is returned by NewCriterion without a geometry.
var ErrNilGeometry = errors.New("nil geometry")

// Geometry exposes the per-item data a Criterion needs.
type Geometry interface {
	// Points returns the points an item contributes to the plane fit.
	Points(item int) []r3.Vec

	// Point returns the representative point of an item.
	Point(item int) r3.Vec

	// Normal returns the local normal estimate of an item. A zero vector
	// marks an item without a usable normal.
	Normal(item int) r3.Vec
}

// Option configures a Criterion.
type Option func(*Criterion)

// WithVertexDistance measures a candidate's distance to the plane as the
// largest distance of any of its points instead of the distance of its
// representative point.
func WithVertexDistance() Option {
	return func(c *Criterion) { c.vertexDistance = true }
}

// Criterion is a least-squares plane region type.
//
// While fewer than three points have been accumulated, or when the fit is
// degenerate, candidates are compared against the seed's own plane (its
// representative point and normal). Otherwise they are compared against the
// plane fitted to the region plus the candidate.
type Criterion struct {
	geom           Geometry
	th             Thresholds
	vertexDistance bool

	acc  Accumulator
	seed Plane
}

var _ regiongrow.RegionType = (*Criterion)(nil)

// NewCriterion returns a Criterion over g. The thresholds are validated.
func NewCriterion(g Geometry, t Thresholds, opts ...Option) (*Criterion, error) {
	if g == nil {
		return nil, ErrNilGeometry
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	c := &Criterion{geom: g, th: t}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Thresholds returns the thresholds the criterion was built with.
func (c *Criterion) Thresholds() Thresholds {
	return c.th
}

// Reset starts a new region from seed.
func (c *Criterion) Reset(seed int) {
	c.acc.Reset()
	c.acc.AddAll(c.geom.Points(seed))

	c.seed = Plane{Point: c.geom.Point(seed)}
	if n := c.geom.Normal(seed); r3.Norm(n) > 0 {
		c.seed.Normal = r3.Unit(n)
	}
}

// IsPartOfRegion reports whether candidate is within both thresholds of the
// reference plane. It does not modify the criterion.
func (c *Criterion) IsPartOfRegion(_ regiongrow.Region, candidate int) bool {
	ref := c.reference(candidate)
	if !ref.Valid() {
		return false
	}
	if !(ref.Angle(c.geom.Normal(candidate)) <= c.th.Angle) {
		return false
	}
	return c.distance(ref, candidate) <= c.th.Distance
}

// Update adds the candidate's points to the region statistics.
func (c *Criterion) Update(_ regiongrow.Region, candidate int) {
	c.acc.AddAll(c.geom.Points(candidate))
}

// IsValidRegion keeps regions with at least MinRegionSize items.
func (c *Criterion) IsValidRegion(region regiongrow.Region) bool {
	return len(region) >= c.th.MinRegionSize
}

// Plane returns the plane of the region grown so far, oriented like the
// seed's normal.
func (c *Criterion) Plane() Plane {
	fit, err := c.acc.Fit()
	if err != nil {
		return c.seed
	}
	return fit.Plane.OrientTowards(c.seed.Normal)
}

func (c *Criterion) reference(candidate int) Plane {
	if c.acc.Len() < 3 {
		return c.seed
	}
	trial := c.acc
	trial.AddAll(c.geom.Points(candidate))
	fit, err := trial.Fit()
	if err != nil {
		return c.seed
	}
	return fit.Plane
}

func (c *Criterion) distance(p Plane, candidate int) float64 {
	if !c.vertexDistance {
		return p.Distance(c.geom.Point(candidate))
	}
	var d float64
	for _, q := range c.geom.Points(candidate) {
		d = max(d, p.Distance(q))
	}
	return d
}
