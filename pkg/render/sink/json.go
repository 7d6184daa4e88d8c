package sink

import (
	"errors"
	"fmt"

	"github.com/matzehuels/planeseg/pkg/mesh"
	"github.com/matzehuels/planeseg/pkg/segmentation"
)

// ErrNeedsMesh is returned by mesh formats without a matching mesh.
var ErrNeedsMesh = errors.New("format needs the source mesh")

// RenderJSON encodes the segmentation as indented JSON.
func RenderJSON(s segmentation.Segmentation) ([]byte, error) {
	return segmentation.Marshal(s)
}

func checkMesh(m *mesh.Mesh, s segmentation.Segmentation) error {
	if m == nil {
		return ErrNeedsMesh
	}
	if m.FaceCount() != s.ItemCount {
		return fmt.Errorf("%w: mesh has %d faces, segmentation %d items", ErrNeedsMesh, m.FaceCount(), s.ItemCount)
	}
	return nil
}
