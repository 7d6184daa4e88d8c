package io

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/planeseg/pkg/mesh"
	"github.com/matzehuels/planeseg/pkg/pointset"
)

var (
	// ErrInvalidFormat is wrapped by every parse error.
	ErrInvalidFormat = errors.New("invalid file format")

	// ErrUnsupportedExtension is returned by Import for unknown file extensions.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
)

// Kind tells which geometry a Dataset holds.
type Kind string

const (
	KindMesh   Kind = "mesh"
	KindPoints Kind = "points"
)

// Dataset is a loaded geometry file: either a mesh or a point set.
type Dataset struct {
	Kind   Kind
	Mesh   *mesh.Mesh
	Points *pointset.PointSet
}

// Len returns the number of segmentable items: faces or points.
func (d Dataset) Len() int {
	switch d.Kind {
	case KindMesh:
		return d.Mesh.FaceCount()
	case KindPoints:
		return d.Points.Len()
	}
	return 0
}

// KindOf returns the dataset kind for a file name, judged by extension.
func KindOf(name string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".off", ".obj":
		return KindMesh, nil
	case ".xyz":
		return KindPoints, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedExtension, filepath.Ext(name))
}

// Read parses r as the format implied by name's extension.
func Read(name string, r io.Reader) (Dataset, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".off":
		m, err := ReadOFF(r)
		return Dataset{Kind: KindMesh, Mesh: m}, err
	case ".obj":
		m, err := ReadOBJ(r)
		return Dataset{Kind: KindMesh, Mesh: m}, err
	case ".xyz":
		ps, err := ReadXYZ(r)
		return Dataset{Kind: KindPoints, Points: ps}, err
	}
	return Dataset{}, fmt.Errorf("%w: %q", ErrUnsupportedExtension, filepath.Ext(name))
}

// Import opens path and parses it according to its extension.
func Import(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := Read(path, f)
	if err != nil {
		return Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// ImportOFF reads an OFF mesh from path.
func ImportOFF(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadOFF(f)
}

// lines yields the non-empty, comment-stripped lines of r as fields, with
// their 1-based line numbers.
type lines struct {
	sc   *bufio.Scanner
	line int
}

func newLines(r io.Reader) *lines {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &lines{sc: sc}
}

// next returns the fields of the next meaningful line, or nil at EOF.
func (l *lines) next() ([]string, error) {
	for l.sc.Scan() {
		l.line++
		text := l.sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		if fields := strings.Fields(text); len(fields) > 0 {
			return fields, nil
		}
	}
	if err := l.sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, nil
}

func (l *lines) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidFormat, l.line, fmt.Sprintf(format, args...))
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
