// Package sink provides output format renderers for segmentations.
//
// # Overview
//
// A "sink" transforms a [segmentation.Segmentation], and for mesh-based
// formats the source mesh, into a final output format:
//
//   - JSON: the canonical segmentation document ([RenderJSON])
//   - OFF: the input mesh with one colour per face ([RenderOFF])
//   - DXF: 3DFACE entities on one layer per region ([RenderDXF])
//   - PDF: a printable summary report ([RenderPDF])
//   - XLSX: region and unassigned-item sheets ([RenderXLSX])
//
// Region colours come from [render.Palette], so every sink colours a region
// the same way.
//
// # Mesh Formats
//
// OFF and DXF need the mesh the segmentation was computed on. Passing a nil
// mesh, or a mesh whose face count differs from the segmentation's item
// count, returns [ErrNeedsMesh].
//
//	data, err := sink.RenderOFF(m, seg)
//
// # Reports
//
// [RenderPDF] accepts [WithPDFTitle] and [WithPDFDiagram]; the latter embeds
// a PNG of the region adjacency graph produced by the nodelink package.
package sink
