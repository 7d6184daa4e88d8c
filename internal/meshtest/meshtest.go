// Package meshtest builds small meshes used across package tests.
package meshtest

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/planeseg/pkg/mesh"
)

// Cube returns the unit cube as six outward-facing quads:
// bottom, top, front (y=0), back (y=1), left (x=0), right (x=1).
func Cube() *mesh.Mesh {
	m := mesh.New()
	for _, p := range []r3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	} {
		m.AddVertex(p)
	}
	for _, f := range [][]int{
		{0, 3, 2, 1},
		{4, 5, 6, 7},
		{0, 1, 5, 4},
		{2, 3, 7, 6},
		{0, 4, 7, 3},
		{1, 2, 6, 5},
	} {
		mustFace(m, f...)
	}
	return m
}

// Grid returns an nx by ny grid of unit quads in the z=0 plane. Face (i, j)
// has index j*nx+i.
func Grid(nx, ny int) *mesh.Mesh {
	m := mesh.New()
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			m.AddVertex(r3.Vec{X: float64(i), Y: float64(j)})
		}
	}
	v := func(i, j int) int { return j*(nx+1) + i }
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			mustFace(m, v(i, j), v(i+1, j), v(i+1, j+1), v(i, j+1))
		}
	}
	return m
}

// GridWithFin returns Grid(nx, ny) plus one vertical unit quad standing on the
// grid edge x=nx, 0<=y<=1. The fin is the last face, index nx*ny.
func GridWithFin(nx, ny int) *mesh.Mesh {
	m := Grid(nx, ny)
	a := nx            // (nx, 0, 0)
	b := (nx + 1) + nx // (nx, 1, 0)
	c := m.AddVertex(r3.Vec{X: float64(nx), Y: 1, Z: 1})
	d := m.AddVertex(r3.Vec{X: float64(nx), Y: 0, Z: 1})
	mustFace(m, a, b, c, d)
	return m
}

func mustFace(m *mesh.Mesh, vs ...int) {
	if _, err := m.AddFace(vs...); err != nil {
		panic(err)
	}
}
