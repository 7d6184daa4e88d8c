// Package render turns segmentations into visual and tabular outputs.
//
// # Overview
//
// This package holds what every renderer shares, the region colour palette.
// Output formats live in subpackages:
//
//   - [nodelink]: region adjacency graphs as DOT, SVG and PNG via Graphviz
//   - [sink]: JSON, colour-coded OFF meshes, DXF drawings, PDF reports and
//     XLSX workbooks
//
// # Colours
//
// [Palette] assigns every region a colour by walking the hue circle in
// golden-angle steps, so neighbouring region IDs get clearly different hues
// and the same ID always gets the same colour. Unassigned items use
// [Unassigned].
//
//	colors := render.Palette(len(seg.Regions))
//	fmt.Println(colors[0].Hex())
package render
