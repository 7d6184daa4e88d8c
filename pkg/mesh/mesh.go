package mesh

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrFaceTooSmall is returned by [Mesh.AddFace] for faces with fewer than
	// three vertices.
	ErrFaceTooSmall = errors.New("face needs at least 3 vertices")

	// ErrUnknownVertex is returned by [Mesh.AddFace] when a vertex index is
	// out of range.
	ErrUnknownVertex = errors.New("unknown vertex")

	// ErrRepeatedVertex is returned by [Mesh.AddFace] when a vertex appears
	// twice in the same face loop.
	ErrRepeatedVertex = errors.New("repeated vertex in face")

	// ErrEmptyMesh is returned by [Mesh.Validate] for a mesh without faces.
	ErrEmptyMesh = errors.New("mesh has no faces")

	// ErrNonManifoldEdge is returned by [Mesh.Validate] when an edge is shared
	// by more than two faces.
	ErrNonManifoldEdge = errors.New("non-manifold edge")
)

// Edge is an undirected edge between two vertices, stored with A < B.
type Edge struct {
	A, B int
}

// NewEdge returns the canonical edge between u and v.
func NewEdge(u, v int) Edge {
	if u > v {
		u, v = v, u
	}
	return Edge{A: u, B: v}
}

// Mesh is an indexed polygon mesh.
//
// The zero value is not usable; use New. Mesh is not safe for concurrent
// modification, but concurrent reads are fine once construction is done.
type Mesh struct {
	vertices []r3.Vec
	faces    [][]int
	edges    map[Edge][]int // edge -> faces using it, ascending
	order    []Edge         // edges in first-seen order
}

// New creates an empty mesh.
func New() *Mesh {
	return &Mesh{edges: make(map[Edge][]int)}
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(p r3.Vec) int {
	m.vertices = append(m.vertices, p)
	return len(m.vertices) - 1
}

// AddFace appends a face given as a loop of vertex indices and returns its
// index. The slice is copied.
func (m *Mesh) AddFace(vs ...int) (int, error) {
	if len(vs) < 3 {
		return -1, fmt.Errorf("%w: got %d", ErrFaceTooSmall, len(vs))
	}
	for i, v := range vs {
		if v < 0 || v >= len(m.vertices) {
			return -1, fmt.Errorf("%w: %d", ErrUnknownVertex, v)
		}
		if slices.Contains(vs[:i], v) {
			return -1, fmt.Errorf("%w: %d", ErrRepeatedVertex, v)
		}
	}

	f := len(m.faces)
	m.faces = append(m.faces, slices.Clone(vs))
	for i := range vs {
		e := NewEdge(vs[i], vs[(i+1)%len(vs)])
		if _, ok := m.edges[e]; !ok {
			m.order = append(m.order, e)
		}
		m.edges[e] = append(m.edges[e], f)
	}
	return f, nil
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.vertices) }

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int { return len(m.faces) }

// EdgeCount returns the number of distinct undirected edges.
func (m *Mesh) EdgeCount() int { return len(m.order) }

// Vertex returns the position of vertex v.
func (m *Mesh) Vertex(v int) r3.Vec { return m.vertices[v] }

// Vertices returns a copy of all vertex positions.
func (m *Mesh) Vertices() []r3.Vec { return slices.Clone(m.vertices) }

// Face returns the vertex loop of face f. The returned slice must not be modified.
func (m *Mesh) Face(f int) []int { return m.faces[f] }

// Faces returns all face indices in ascending order.
func (m *Mesh) Faces() []int {
	out := make([]int, len(m.faces))
	for i := range out {
		out[i] = i
	}
	return out
}

// Edges returns all edges in the order they were first used.
func (m *Mesh) Edges() []Edge { return slices.Clone(m.order) }

// EdgeFaces returns the faces using edge e, ascending.
func (m *Mesh) EdgeFaces(e Edge) []int { return slices.Clone(m.edges[e]) }

// FacePoints returns the vertex positions of face f in loop order.
func (m *Mesh) FacePoints(f int) []r3.Vec {
	face := m.faces[f]
	out := make([]r3.Vec, len(face))
	for i, v := range face {
		out[i] = m.vertices[v]
	}
	return out
}

// FaceCentroid returns the mean of the vertices of face f.
func (m *Mesh) FaceCentroid(f int) r3.Vec {
	var c r3.Vec
	for _, v := range m.faces[f] {
		c = r3.Add(c, m.vertices[v])
	}
	return r3.Scale(1/float64(len(m.faces[f])), c)
}

// newell returns the area vector of face f: its direction is the face normal
// and its length twice the polygon area.
func (m *Mesh) newell(f int) r3.Vec {
	face := m.faces[f]
	var n r3.Vec
	for i := range face {
		p, q := m.vertices[face[i]], m.vertices[face[(i+1)%len(face)]]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return n
}

// FaceNormal returns the unit normal of face f, oriented by the vertex loop
// (counter-clockwise seen from the front). Degenerate faces yield the zero
// vector.
func (m *Mesh) FaceNormal(f int) r3.Vec {
	n := m.newell(f)
	l := r3.Norm(n)
	if l == 0 || math.IsNaN(l) {
		return r3.Vec{}
	}
	return r3.Scale(1/l, n)
}

// FaceArea returns the area of face f.
func (m *Mesh) FaceArea(f int) float64 {
	return r3.Norm(m.newell(f)) / 2
}

// BoundingBox returns the component-wise minimum and maximum vertex.
// Both are zero for a mesh without vertices.
func (m *Mesh) BoundingBox() (lo, hi r3.Vec) {
	if len(m.vertices) == 0 {
		return lo, hi
	}
	lo, hi = m.vertices[0], m.vertices[0]
	for _, p := range m.vertices[1:] {
		lo = r3.Vec{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = r3.Vec{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	return lo, hi
}

// Diagonal returns the length of the bounding box diagonal.
func (m *Mesh) Diagonal() float64 {
	lo, hi := m.BoundingBox()
	return r3.Norm(r3.Sub(hi, lo))
}

// Validate reports structural problems. It returns ErrEmptyMesh for a mesh
// without faces and ErrNonManifoldEdge, naming the first offending edge in
// insertion order, when an edge is shared by more than two faces.
func (m *Mesh) Validate() error {
	if len(m.faces) == 0 {
		return ErrEmptyMesh
	}
	for _, e := range m.order {
		if fs := m.edges[e]; len(fs) > 2 {
			return fmt.Errorf("%w: %d-%d shared by %d faces", ErrNonManifoldEdge, e.A, e.B, len(fs))
		}
	}
	return nil
}
