package pipeline

import (
	"context"
	"errors"

	perrors "github.com/matzehuels/planeseg/pkg/errors"
	planeio "github.com/matzehuels/planeseg/pkg/io"
	"github.com/matzehuels/planeseg/pkg/mesh"
	"github.com/matzehuels/planeseg/pkg/render/nodelink"
	"github.com/matzehuels/planeseg/pkg/render/sink"
	"github.com/matzehuels/planeseg/pkg/segmentation"
)

// maxDiagramRegions bounds the adjacency graph embedded in PDF reports.
const maxDiagramRegions = 60

// Render generates output artifacts in the requested formats.
//
// The dataset is only needed for the mesh formats (OFF, DXF); pass a zero
// Dataset to re-render a saved segmentation without its source.
func Render(ctx context.Context, ds planeio.Dataset, s segmentation.Segmentation, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	var m *mesh.Mesh
	if ds.Kind == planeio.KindMesh {
		m = ds.Mesh
	}
	nl := nodelink.Options{Detailed: opts.Detailed}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if _, done := artifacts[format]; done {
			continue
		}

		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = sink.RenderJSON(s)
		case FormatOFF:
			data, err = sink.RenderOFF(m, s)
		case FormatDXF:
			data, err = sink.RenderDXF(m, s)
		case FormatPDF:
			var pdfOpts []sink.PDFOption
			if n := len(s.Regions); n > 0 && n <= maxDiagramRegions {
				png, perr := nodelink.RenderPNG(ctx, nodelink.ToDOT(s, nl))
				if perr != nil {
					opts.Logger.Warn("skipping pdf diagram", "error", perr)
				} else {
					pdfOpts = append(pdfOpts, sink.WithPDFDiagram(png))
				}
			}
			data, err = sink.RenderPDF(s, pdfOpts...)
		case FormatXLSX:
			data, err = sink.RenderXLSX(s)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(s, nl))
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, nodelink.ToDOT(s, nl))
		case FormatDOT:
			data = []byte(nodelink.ToDOT(s, nl))
		default:
			return nil, perrors.New(perrors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if errors.Is(err, sink.ErrNeedsMesh) {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "render %s", format)
		}
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
