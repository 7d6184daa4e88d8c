package segmentation

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/planeseg/pkg/planefit"
	"github.com/matzehuels/planeseg/pkg/regiongrow"
)

// Dataset kinds.
const (
	KindMesh   = "mesh"
	KindPoints = "points"
)

// Unlabeled is the label of items outside every region.
const Unlabeled = -1

var (
	// ErrItemOutOfRange is returned by Validate for items outside [0, ItemCount).
	ErrItemOutOfRange = errors.New("item out of range")

	// ErrDuplicateItem is returned by Validate when an item is listed twice.
	ErrDuplicateItem = errors.New("item listed twice")

	// ErrMissingItem is returned by Validate when an item is not listed at all.
	ErrMissingItem = errors.New("item missing")

	// ErrEmptyRegion is returned by Validate for a region without items.
	ErrEmptyRegion = errors.New("empty region")
)

// =============================================================================
// Segmentation - Detection Result Serialization
// =============================================================================

// Segmentation is the canonical serialization format for detection results.
// Used for CLI output, API responses and caching.
//
// Items are indices into the source dataset (face indices of a mesh, point
// indices of a point set). Regions are listed in detection order; a region's
// ID is its position in Regions.
type Segmentation struct {
	ID         string              `json:"id,omitempty" bson:"id,omitempty"`
	Source     string              `json:"source,omitempty" bson:"source,omitempty"`
	Kind       string              `json:"kind" bson:"kind"`
	ItemCount  int                 `json:"item_count" bson:"item_count"`
	Thresholds planefit.Thresholds `json:"thresholds" bson:"thresholds"`
	Regions    []Region            `json:"regions" bson:"regions"`
	Unassigned []int               `json:"unassigned" bson:"unassigned"`
	Adjacency  []Edge              `json:"adjacency,omitempty" bson:"adjacency,omitempty"`
}

// Region is one planar region.
type Region struct {
	ID    int     `json:"id" bson:"id"`
	Items []int   `json:"items" bson:"items"`
	Plane *Plane  `json:"plane,omitempty" bson:"plane,omitempty"` // nil when no plane could be fitted
	Area  float64 `json:"area,omitempty" bson:"area,omitempty"`   // mesh only
}

// Plane is the serialized form of a fitted plane.
type Plane struct {
	Point    [3]float64 `json:"point" bson:"point"`
	Normal   [3]float64 `json:"normal" bson:"normal"`
	Residual float64    `json:"residual" bson:"residual"`
}

// Edge connects two adjacent regions. Weight counts the neighbouring item
// pairs across the boundary.
type Edge struct {
	A      int `json:"a" bson:"a"`
	B      int `json:"b" bson:"b"`
	Weight int `json:"weight" bson:"weight"`
}

// New builds a segmentation from detected regions.
func New(kind string, itemCount int, th planefit.Thresholds, regions []regiongrow.Region, unassigned []int) Segmentation {
	s := Segmentation{
		Kind:       kind,
		ItemCount:  itemCount,
		Thresholds: th,
		Regions:    make([]Region, len(regions)),
		Unassigned: slices.Clone(unassigned),
	}
	if s.Unassigned == nil {
		s.Unassigned = []int{}
	}
	for i, r := range regions {
		s.Regions[i] = Region{ID: i, Items: slices.Clone(r)}
	}
	return s
}

// FitPlanes fits a plane to every region. Regions whose items cannot be
// fitted keep a nil plane.
func (s *Segmentation) FitPlanes(g planefit.Geometry) {
	for i := range s.Regions {
		fit, err := planefit.FitItems(g, s.Regions[i].Items)
		if err != nil {
			s.Regions[i].Plane = nil
			continue
		}
		s.Regions[i].Plane = &Plane{
			Point:    vec(fit.Plane.Point),
			Normal:   vec(fit.Plane.Normal),
			Residual: fit.Residual(),
		}
	}
}

// SetAreas sums the item areas of every region.
func (s *Segmentation) SetAreas(area func(item int) float64) {
	for i := range s.Regions {
		var a float64
		for _, it := range s.Regions[i].Items {
			a += area(it)
		}
		s.Regions[i].Area = a
	}
}

// ComputeAdjacency derives region adjacency from the neighbour query.
// Edges are sorted by (A, B) with A < B.
func (s *Segmentation) ComputeAdjacency(q regiongrow.NeighborQuery) {
	labels := s.Labels()
	weights := map[[2]int]int{}
	for _, r := range s.Regions {
		for _, it := range r.Items {
			for _, n := range q.Neighbors(it) {
				if n < 0 || n >= len(labels) {
					continue
				}
				if other := labels[n]; other != Unlabeled && r.ID < other {
					weights[[2]int{r.ID, other}]++
				}
			}
		}
	}

	s.Adjacency = make([]Edge, 0, len(weights))
	for k, w := range weights {
		s.Adjacency = append(s.Adjacency, Edge{A: k[0], B: k[1], Weight: w})
	}
	slices.SortFunc(s.Adjacency, func(x, y Edge) int {
		return cmp.Or(cmp.Compare(x.A, y.A), cmp.Compare(x.B, y.B))
	})
}

// Labels returns the region ID of every item, Unlabeled for unassigned
// items. Items outside [0, ItemCount) are ignored.
func (s Segmentation) Labels() []int {
	labels := make([]int, s.ItemCount)
	for i := range labels {
		labels[i] = Unlabeled
	}
	for _, r := range s.Regions {
		for _, it := range r.Items {
			if it >= 0 && it < len(labels) {
				labels[it] = r.ID
			}
		}
	}
	return labels
}

// Coverage returns the share of items that belong to a region.
func (s Segmentation) Coverage() float64 {
	if s.ItemCount == 0 {
		return 0
	}
	return float64(s.ItemCount-len(s.Unassigned)) / float64(s.ItemCount)
}

// Largest returns the size of the largest region, 0 without regions.
func (s Segmentation) Largest() int {
	n := 0
	for _, r := range s.Regions {
		n = max(n, len(r.Items))
	}
	return n
}

// Validate checks that regions and unassigned items partition
// [0, ItemCount) and that region IDs match their positions.
func (s Segmentation) Validate() error {
	seen := make([]bool, s.ItemCount)
	mark := func(it int) error {
		if it < 0 || it >= s.ItemCount {
			return fmt.Errorf("%w: %d", ErrItemOutOfRange, it)
		}
		if seen[it] {
			return fmt.Errorf("%w: %d", ErrDuplicateItem, it)
		}
		seen[it] = true
		return nil
	}

	for i, r := range s.Regions {
		if r.ID != i {
			return fmt.Errorf("region at position %d has id %d", i, r.ID)
		}
		if len(r.Items) == 0 {
			return fmt.Errorf("%w: %d", ErrEmptyRegion, r.ID)
		}
		for _, it := range r.Items {
			if err := mark(it); err != nil {
				return fmt.Errorf("region %d: %w", r.ID, err)
			}
		}
	}
	for _, it := range s.Unassigned {
		if err := mark(it); err != nil {
			return fmt.Errorf("unassigned: %w", err)
		}
	}
	if i := slices.Index(seen, false); i >= 0 {
		return fmt.Errorf("%w: %d", ErrMissingItem, i)
	}
	return nil
}

func vec(v r3.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// Vec converts a serialized vector back to r3.
func Vec(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }
