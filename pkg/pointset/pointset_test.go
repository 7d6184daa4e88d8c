package pointset

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/planeseg/pkg/planefit"
	"github.com/matzehuels/planeseg/pkg/regiongrow"
)

// corner returns a 5x5 floor at z=0 and a 5x4 wall at x=2 above it,
// sampled every 0.5 units. Floor points come first.
func corner() *PointSet {
	ps := &PointSet{}
	for j := 0; j < 5; j++ {
		for i := 0; i < 5; i++ {
			ps.Points = append(ps.Points, r3.Vec{X: 0.5 * float64(i), Y: 0.5 * float64(j)})
			ps.Normals = append(ps.Normals, r3.Vec{Z: 1})
		}
	}
	for k := 1; k <= 4; k++ {
		for j := 0; j < 5; j++ {
			ps.Points = append(ps.Points, r3.Vec{X: 2, Y: 0.5 * float64(j), Z: 0.5 * float64(k)})
			ps.Normals = append(ps.Normals, r3.Vec{X: -1})
		}
	}
	return ps
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		ps   *PointSet
		want error
	}{
		{"empty", &PointSet{}, ErrEmpty},
		{"missing normal", &PointSet{Points: []r3.Vec{{}}}, ErrNormalCount},
		{"valid", corner(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.ps.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSphereQuery(t *testing.T) {
	ps := &PointSet{Points: []r3.Vec{
		{X: 0}, {X: 1}, {X: 1.5}, {X: -0.4, Y: 0.3}, {X: 3},
	}}
	q, err := NewSphereQuery(ps, 1)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		item int
		want []int
	}{
		{0, []int{1, 3}}, // boundary distance is inclusive
		{1, []int{0, 2}},
		{4, []int{}},
		{17, nil},
		{-1, nil},
	}
	for _, tt := range tests {
		got := q.Neighbors(tt.item)
		if !slices.Equal(got, tt.want) || (tt.want == nil) != (got == nil) {
			t.Errorf("Neighbors(%d) = %v, want %v", tt.item, got, tt.want)
		}
	}

	for _, r := range []float64{0, -1} {
		if _, err := NewSphereQuery(ps, r); !errors.Is(err, ErrInvalidRadius) {
			t.Errorf("NewSphereQuery(radius %v) = %v, want %v", r, err, ErrInvalidRadius)
		}
	}
}

func TestSphereQueryMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	ps := &PointSet{}
	for range 300 {
		ps.Points = append(ps.Points, r3.Vec{X: rng.Float64() * 4, Y: rng.Float64() * 4, Z: rng.Float64()})
	}
	// Coincident points are neighbours of each other.
	ps.Points = append(ps.Points, ps.Points[0])

	const radius = 0.45
	q, err := NewSphereQuery(ps, radius)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range ps.Points {
		want := []int{}
		for j, o := range ps.Points {
			if d := r3.Sub(o, p); j != i && r3.Dot(d, d) <= radius*radius {
				want = append(want, j)
			}
		}
		if got := q.Neighbors(i); !slices.Equal(got, want) {
			t.Fatalf("Neighbors(%d) = %v, want %v", i, got, want)
		}
	}
	if got := q.Neighbors(len(ps.Points) - 1); !slices.Contains(got, 0) {
		t.Errorf("coincident point missing: %v", got)
	}
}

func TestSphereQuerySymmetric(t *testing.T) {
	ps := corner()
	q, err := NewSphereQuery(ps, 0.6)
	if err != nil {
		t.Fatal(err)
	}
	for i := range ps.Points {
		for _, j := range q.Neighbors(i) {
			if !slices.Contains(q.Neighbors(j), i) {
				t.Errorf("%d lists %d but not the reverse", i, j)
			}
		}
	}
}

func TestFloorAndWall(t *testing.T) {
	ps := corner()
	q, err := NewSphereQuery(ps, 0.6)
	if err != nil {
		t.Fatal(err)
	}
	c, err := planefit.NewCriterion(NewGeometry(ps), planefit.Thresholds{Distance: 0.1, Angle: 25, MinRegionSize: 3})
	if err != nil {
		t.Fatal(err)
	}

	rg, err := regiongrow.New(ps.Items(), q, c)
	if err != nil {
		t.Fatal(err)
	}
	regions, err := rg.Detect()
	if err != nil {
		t.Fatal(err)
	}

	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}
	if len(regions[0]) != 25 || len(regions[1]) != 20 {
		t.Errorf("region sizes = %d, %d, want 25, 20", len(regions[0]), len(regions[1]))
	}
	for _, it := range regions[1] {
		if it < 25 {
			t.Errorf("floor point %d in the wall region", it)
		}
	}
	if u := rg.Unassigned(); len(u) != 0 {
		t.Errorf("Unassigned() = %v, want none", u)
	}
}
