package io

import (
	"bytes"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/planeseg/internal/meshtest"
	"github.com/matzehuels/planeseg/pkg/mesh"
)

func TestImportCube(t *testing.T) {
	ds, err := Import(filepath.Join("testdata", "cube.off"))
	if err != nil {
		t.Fatal(err)
	}
	if ds.Kind != KindMesh || ds.Len() != 6 {
		t.Fatalf("Import() = %v with %d items, want mesh with 6", ds.Kind, ds.Len())
	}

	want := meshtest.Cube()
	got := ds.Mesh
	if got.VertexCount() != want.VertexCount() || got.EdgeCount() != want.EdgeCount() {
		t.Errorf("counts = %d/%d, want %d/%d", got.VertexCount(), got.EdgeCount(), want.VertexCount(), want.EdgeCount())
	}
	for _, f := range want.Faces() {
		if !slices.Equal(got.Face(f), want.Face(f)) {
			t.Errorf("face %d = %v, want %v", f, got.Face(f), want.Face(f))
		}
	}
}

func TestReadOFFHeaders(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain", "OFF\n3 1 0\n0 0 0\n1 0 0\n0 1 0\n3 0 1 2\n"},
		{"counts on header", "OFF 3 1 0\n0 0 0\n1 0 0\n0 1 0\n3 0 1 2\n"},
		{"no header", "3 1 0\n0 0 0\n1 0 0\n0 1 0\n3 0 1 2\n"},
		{"colored", "COFF\n3 1 0\n0 0 0 255 0 0 255\n1 0 0 0 255 0 255\n0 1 0 0 0 255 255\n3 0 1 2 10 20 30\n"},
		{"comments and blanks", "# header\nOFF\n\n3 1\n0 0 0 # origin\n1 0 0\n\n0 1 0\n3 0 1 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ReadOFF(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadOFF() error = %v", err)
			}
			if m.VertexCount() != 3 || m.FaceCount() != 1 {
				t.Errorf("counts = %d/%d, want 3/1", m.VertexCount(), m.FaceCount())
			}
			if n := m.FaceNormal(0); n != (r3.Vec{Z: 1}) {
				t.Errorf("FaceNormal(0) = %v", n)
			}
		})
	}
}

func TestReadOFFErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  string
	}{
		{"empty", "", "line 0"},
		{"bad counts", "OFF\nx 1 0\n", "line 2"},
		{"short vertex", "OFF\n1 0 0\n0 0\n", "line 3"},
		{"bad coordinate", "OFF\n1 0 0\n0 zero 0\n", "line 3"},
		{"missing face", "OFF\n3 1 0\n0 0 0\n1 0 0\n0 1 0\n", "line 5"},
		{"short face", "OFF\n3 1 0\n0 0 0\n1 0 0\n0 1 0\n3 0 1\n", "line 6"},
		{"unknown vertex", "OFF\n3 1 0\n0 0 0\n1 0 0\n0 1 0\n3 0 1 9\n", "line 6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadOFF(strings.NewReader(tt.input))
			if !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("ReadOFF() error = %v, want %v", err, ErrInvalidFormat)
			}
			if !strings.Contains(err.Error(), tt.line) {
				t.Errorf("error %q does not mention %q", err, tt.line)
			}
		})
	}
}

func TestReadOBJ(t *testing.T) {
	input := `# two triangles
o square
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1
f -4/1 -2/2/1 -1
`
	m, err := ReadOBJ(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if m.FaceCount() != 2 {
		t.Fatalf("FaceCount() = %d, want 2", m.FaceCount())
	}
	if got := m.Face(1); !slices.Equal(got, []int{0, 2, 3}) {
		t.Errorf("Face(1) = %v, want [0 2 3]", got)
	}
	if q := mesh.NewOneRingQuery(m); !slices.Equal(q.Neighbors(0), []int{1}) {
		t.Errorf("Neighbors(0) = %v, want [1]", q.Neighbors(0))
	}

	if _, err := ReadOBJ(strings.NewReader("v 0 0 0\nf 0 1 2\n")); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("zero index: error = %v, want %v", err, ErrInvalidFormat)
	}
}

func TestReadXYZ(t *testing.T) {
	ds, err := Import(filepath.Join("testdata", "corner.xyz"))
	if err != nil {
		t.Fatal(err)
	}
	if ds.Kind != KindPoints || ds.Len() != 4 {
		t.Fatalf("Import() = %v with %d items", ds.Kind, ds.Len())
	}
	if got := ds.Points.Normals[3]; got != (r3.Vec{X: -1}) {
		t.Errorf("Normals[3] = %v", got)
	}

	if _, err := ReadXYZ(strings.NewReader("0 0 0\n")); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("missing normal: error = %v, want %v", err, ErrInvalidFormat)
	}
	if _, err := ReadXYZ(strings.NewReader("# nothing\n")); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("no points: error = %v, want %v", err, ErrInvalidFormat)
	}
}

func TestWriteOFF(t *testing.T) {
	m := mesh.New()
	m.AddVertex(r3.Vec{})
	m.AddVertex(r3.Vec{X: 1.5})
	m.AddVertex(r3.Vec{Y: 1})
	m.AddVertex(r3.Vec{X: 1.5, Y: 1})
	if _, err := m.AddFace(0, 1, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddFace(1, 3, 2); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	red := color.RGBA{R: 255, A: 255}
	if err := WriteOFF(m, &buf, WithFaceColors([]color.Color{red})); err != nil {
		t.Fatal(err)
	}
	want := "OFF\n4 2 5\n0 0 0\n1.5 0 0\n0 1 0\n1.5 1 0\n3 0 1 2 255 0 0\n3 1 3 2\n"
	if buf.String() != want {
		t.Errorf("WriteOFF() =\n%s\nwant\n%s", buf.String(), want)
	}

	back, err := ReadOFF(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if back.FaceCount() != 2 || back.Vertex(3) != m.Vertex(3) {
		t.Errorf("re-read mesh differs")
	}
}

func TestImportErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mesh.stl")
	if err := os.WriteFile(path, []byte("solid"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Import(path); !errors.Is(err, ErrUnsupportedExtension) {
		t.Errorf("Import(.stl) error = %v, want %v", err, ErrUnsupportedExtension)
	}
	if _, err := Import(filepath.Join(dir, "missing.off")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Import(missing) error = %v, want not exist", err)
	}

	if k, err := KindOf("SCAN.XYZ"); err != nil || k != KindPoints {
		t.Errorf("KindOf(SCAN.XYZ) = %v, %v", k, err)
	}
}

func TestExportOFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.off")
	if err := ExportOFF(meshtest.Grid(2, 1), path); err != nil {
		t.Fatal(err)
	}
	m, err := ImportOFF(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.FaceCount() != 2 || m.VertexCount() != 6 {
		t.Errorf("ImportOFF() counts = %d/%d", m.FaceCount(), m.VertexCount())
	}
}
