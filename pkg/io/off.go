package io

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/planeseg/pkg/mesh"
)

var offHeaders = map[string]bool{"OFF": true, "COFF": true, "NOFF": true, "CNOFF": true}

// ReadOFF parses an OFF mesh.
func ReadOFF(r io.Reader) (*mesh.Mesh, error) {
	l := newLines(r)

	fields, err := l.next()
	if err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, l.errorf("empty file")
	}
	if offHeaders[strings.ToUpper(fields[0])] {
		fields = fields[1:]
		if len(fields) == 0 {
			if fields, err = l.next(); err != nil {
				return nil, err
			}
			if fields == nil {
				return nil, l.errorf("missing counts")
			}
		}
	}

	if len(fields) < 2 {
		return nil, l.errorf("want vertex and face counts, got %q", strings.Join(fields, " "))
	}
	nv, err1 := strconv.Atoi(fields[0])
	nf, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || nv < 0 || nf < 0 {
		return nil, l.errorf("invalid counts %q", strings.Join(fields, " "))
	}

	m := mesh.New()
	for range nv {
		fields, err := l.next()
		if err != nil {
			return nil, err
		}
		if len(fields) < 3 {
			return nil, l.errorf("want vertex, got %d values", len(fields))
		}
		xyz, err := parseFloats(fields[:3])
		if err != nil {
			return nil, l.errorf("vertex: %v", err)
		}
		m.AddVertex(r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})
	}

	for range nf {
		fields, err := l.next()
		if err != nil {
			return nil, err
		}
		if fields == nil {
			return nil, l.errorf("want %d faces, file ended after %d", nf, m.FaceCount())
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil || n < 0 || len(fields) < n+1 {
			return nil, l.errorf("invalid face record %q", strings.Join(fields, " "))
		}
		vs := make([]int, n)
		for i := range n {
			if vs[i], err = strconv.Atoi(fields[i+1]); err != nil {
				return nil, l.errorf("face index %q", fields[i+1])
			}
		}
		if _, err := m.AddFace(vs...); err != nil {
			return nil, l.errorf("face: %v", err)
		}
	}
	return m, nil
}

// WriteOption configures WriteOFF.
type WriteOption func(*writeConfig)

type writeConfig struct {
	faceColors []color.Color
}

// WithFaceColors appends one RGB colour per face. Faces beyond the end of
// colors are written without a colour.
func WithFaceColors(colors []color.Color) WriteOption {
	return func(c *writeConfig) { c.faceColors = colors }
}

// WriteOFF writes m as an OFF file.
func WriteOFF(m *mesh.Mesh, w io.Writer, opts ...WriteOption) error {
	var cfg writeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "OFF")
	fmt.Fprintf(bw, "%d %d %d\n", m.VertexCount(), m.FaceCount(), m.EdgeCount())
	for v := range m.VertexCount() {
		p := m.Vertex(v)
		fmt.Fprintf(bw, "%s %s %s\n", formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z))
	}
	for _, f := range m.Faces() {
		face := m.Face(f)
		bw.WriteString(strconv.Itoa(len(face)))
		for _, v := range face {
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(v))
		}
		if f < len(cfg.faceColors) && cfg.faceColors[f] != nil {
			r, g, b, _ := cfg.faceColors[f].RGBA()
			fmt.Fprintf(bw, " %d %d %d", r>>8, g>>8, b>>8)
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportOFF writes m to an OFF file at path.
func ExportOFF(m *mesh.Mesh, path string, opts ...WriteOption) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteOFF(m, f, opts...)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
