package sink

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yofu/dxf"
	dxfcolor "github.com/yofu/dxf/color"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/planeseg/pkg/mesh"
	"github.com/matzehuels/planeseg/pkg/segmentation"
)

const unassignedLayer = "UNASSIGNED"

// RenderDXF writes every face as 3DFACE entities, one layer per region.
// Polygons with more than four corners are split into a triangle fan.
func RenderDXF(m *mesh.Mesh, s segmentation.Segmentation) ([]byte, error) {
	if err := checkMesh(m, s); err != nil {
		return nil, err
	}

	d := dxf.NewDrawing()
	if _, err := d.AddLayer(unassignedLayer, dxfcolor.ColorNumber(8), dxf.DefaultLineType, false); err != nil {
		return nil, fmt.Errorf("add layer: %w", err)
	}
	for _, r := range s.Regions {
		// ACI colours 1-7 are the primaries; cycle through the range above them.
		aci := dxfcolor.ColorNumber(10 + (r.ID*10)%240)
		if _, err := d.AddLayer(layerName(r.ID), aci, dxf.DefaultLineType, false); err != nil {
			return nil, fmt.Errorf("add layer: %w", err)
		}
	}

	for f, id := range s.Labels() {
		layer := unassignedLayer
		if id != segmentation.Unlabeled {
			layer = layerName(id)
		}
		if err := d.ChangeLayer(layer); err != nil {
			return nil, fmt.Errorf("layer %s: %w", layer, err)
		}
		for _, quad := range faceQuads(m.FacePoints(f)) {
			if _, err := d.ThreeDFace(quad); err != nil {
				return nil, fmt.Errorf("face %d: %w", f, err)
			}
		}
	}

	// The drawing only saves to files.
	dir, err := os.MkdirTemp("", "planeseg-dxf-")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "out.dxf")
	if err := d.SaveAs(path); err != nil {
		return nil, fmt.Errorf("save dxf: %w", err)
	}
	return os.ReadFile(path)
}

func layerName(id int) string {
	return fmt.Sprintf("REGION_%03d", id)
}

// faceQuads converts a polygon to 3DFACE corner lists of four points.
// Triangles repeat their last corner.
func faceQuads(pts []r3.Vec) [][][]float64 {
	corner := func(p r3.Vec) []float64 { return []float64{p.X, p.Y, p.Z} }

	switch len(pts) {
	case 3:
		return [][][]float64{{corner(pts[0]), corner(pts[1]), corner(pts[2]), corner(pts[2])}}
	case 4:
		return [][][]float64{{corner(pts[0]), corner(pts[1]), corner(pts[2]), corner(pts[3])}}
	}
	out := make([][][]float64, 0, len(pts)-2)
	for i := 1; i+1 < len(pts); i++ {
		out = append(out, [][]float64{corner(pts[0]), corner(pts[i]), corner(pts[i+1]), corner(pts[i+1])})
	}
	return out
}
