package sink

import (
	"bytes"
	"image/color"

	planeio "github.com/matzehuels/planeseg/pkg/io"
	"github.com/matzehuels/planeseg/pkg/mesh"
	"github.com/matzehuels/planeseg/pkg/render"
	"github.com/matzehuels/planeseg/pkg/segmentation"
)

// RenderOFF writes the mesh as OFF with every face coloured by its region.
// Unassigned faces are grey.
func RenderOFF(m *mesh.Mesh, s segmentation.Segmentation) ([]byte, error) {
	if err := checkMesh(m, s); err != nil {
		return nil, err
	}
	labels := s.Labels()
	colors := make([]color.Color, len(labels))
	for f, id := range labels {
		colors[f] = render.Color(id)
	}

	var buf bytes.Buffer
	if err := planeio.WriteOFF(m, &buf, planeio.WithFaceColors(colors)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
