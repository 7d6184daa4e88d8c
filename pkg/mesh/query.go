package mesh

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// OneRingQuery lists the faces sharing an edge with a face.
//
// The adjacency is computed once by NewOneRingQuery; faces added to the mesh
// afterwards are not seen.
type OneRingQuery struct {
	neighbors [][]int
}

// NewOneRingQuery precomputes edge adjacency for every face of m.
func NewOneRingQuery(m *Mesh) *OneRingQuery {
	q := &OneRingQuery{neighbors: make([][]int, len(m.faces))}
	for f, face := range m.faces {
		var out []int
		for i := range face {
			for _, g := range m.edges[NewEdge(face[i], face[(i+1)%len(face)])] {
				if g != f && !slices.Contains(out, g) {
					out = append(out, g)
				}
			}
		}
		q.neighbors[f] = out
	}
	return q
}

// Neighbors returns the faces adjacent to face f. Unknown faces have no
// neighbours. The returned slice must not be modified.
func (q *OneRingQuery) Neighbors(f int) []int {
	if f < 0 || f >= len(q.neighbors) {
		return nil
	}
	return q.neighbors[f]
}

// FaceGeometry exposes per-face points, centroids and normals of a mesh.
// Centroids and normals are computed once at construction.
type FaceGeometry struct {
	m         *Mesh
	centroids []r3.Vec
	normals   []r3.Vec
}

// NewFaceGeometry precomputes face centroids and normals of m.
func NewFaceGeometry(m *Mesh) *FaceGeometry {
	g := &FaceGeometry{
		m:         m,
		centroids: make([]r3.Vec, len(m.faces)),
		normals:   make([]r3.Vec, len(m.faces)),
	}
	for f := range m.faces {
		g.centroids[f] = m.FaceCentroid(f)
		g.normals[f] = m.FaceNormal(f)
	}
	return g
}

// Points returns the vertex positions of face f.
func (g *FaceGeometry) Points(f int) []r3.Vec { return g.m.FacePoints(f) }

// Point returns the centroid of face f.
func (g *FaceGeometry) Point(f int) r3.Vec { return g.centroids[f] }

// Normal returns the unit normal of face f, zero for degenerate faces.
func (g *FaceGeometry) Normal(f int) r3.Vec { return g.normals[f] }
