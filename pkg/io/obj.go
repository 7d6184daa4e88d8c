package io

import (
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/planeseg/pkg/mesh"
	"github.com/matzehuels/planeseg/pkg/pointset"
)

// ReadOBJ parses the vertices and faces of a Wavefront OBJ file.
func ReadOBJ(r io.Reader) (*mesh.Mesh, error) {
	l := newLines(r)
	m := mesh.New()
	for {
		fields, err := l.next()
		if err != nil {
			return nil, err
		}
		if fields == nil {
			return m, nil
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, l.errorf("want vertex, got %d values", len(fields)-1)
			}
			xyz, err := parseFloats(fields[1:4])
			if err != nil {
				return nil, l.errorf("vertex: %v", err)
			}
			m.AddVertex(r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})

		case "f":
			vs := make([]int, 0, len(fields)-1)
			for _, corner := range fields[1:] {
				ref, _, _ := strings.Cut(corner, "/")
				idx, err := strconv.Atoi(ref)
				if err != nil || idx == 0 {
					return nil, l.errorf("face index %q", corner)
				}
				if idx < 0 {
					idx += m.VertexCount()
				} else {
					idx--
				}
				vs = append(vs, idx)
			}
			if _, err := m.AddFace(vs...); err != nil {
				return nil, l.errorf("face: %v", err)
			}
		}
	}
}

// ReadXYZ parses an oriented point set with one "x y z nx ny nz" record per
// line.
func ReadXYZ(r io.Reader) (*pointset.PointSet, error) {
	l := newLines(r)
	ps := &pointset.PointSet{}
	for {
		fields, err := l.next()
		if err != nil {
			return nil, err
		}
		if fields == nil {
			break
		}
		if len(fields) < 6 {
			return nil, l.errorf("want point and normal, got %d values", len(fields))
		}
		v, err := parseFloats(fields[:6])
		if err != nil {
			return nil, l.errorf("point: %v", err)
		}
		ps.Points = append(ps.Points, r3.Vec{X: v[0], Y: v[1], Z: v[2]})
		ps.Normals = append(ps.Normals, r3.Vec{X: v[3], Y: v[4], Z: v[5]})
	}
	if ps.Len() == 0 {
		return nil, l.errorf("no points")
	}
	return ps, nil
}
