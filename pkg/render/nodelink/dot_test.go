package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/planeseg/internal/meshtest"
	"github.com/matzehuels/planeseg/pkg/mesh"
	"github.com/matzehuels/planeseg/pkg/planefit"
	"github.com/matzehuels/planeseg/pkg/regiongrow"
	"github.com/matzehuels/planeseg/pkg/segmentation"
)

func cube() segmentation.Segmentation {
	m := meshtest.Cube()
	s := segmentation.New(segmentation.KindMesh, 6, planefit.Thresholds{Distance: 0.1, Angle: 25, MinRegionSize: 1},
		[]regiongrow.Region{{0}, {1}, {2}, {3}, {4}, {5}}, nil)
	s.FitPlanes(mesh.NewFaceGeometry(m))
	s.SetAreas(m.FaceArea)
	s.ComputeAdjacency(mesh.NewOneRingQuery(m))
	return s
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(cube(), Options{})

	if !strings.HasPrefix(dot, "graph G {") {
		t.Errorf("DOT does not start with an undirected graph:\n%s", dot)
	}
	if got := strings.Count(dot, " -- "); got != 12 {
		t.Errorf("edge count = %d, want 12", got)
	}
	if !strings.Contains(dot, `r1 [label="R1\n1 faces"`) {
		t.Errorf("missing region label:\n%s", dot)
	}
	if strings.Contains(dot, "area:") {
		t.Error("plain diagram contains details")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(cube(), Options{Detailed: true})
	for _, want := range []string{"area: 1", "n: (", `label="1"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("detailed DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(cube(), Options{}))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("R5")) {
		t.Errorf("unexpected SVG output: %.200s", svg)
	}
}
