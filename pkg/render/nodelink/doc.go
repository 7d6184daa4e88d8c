// Package nodelink renders region adjacency graphs as node-link diagrams.
//
// # Overview
//
// Every region becomes a box filled with its palette colour; regions that
// share at least one pair of neighbouring items are joined by an undirected
// edge. The diagram gives a quick overview of how a part decomposes into
// planar patches.
//
// # Usage
//
// Convert a segmentation to DOT, then render with the embedded Graphviz:
//
//	dot := nodelink.ToDOT(seg, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Options
//
//   - Detailed: labels include item count, area and plane normal, and edges
//     are labelled with their weight.
//
// Segmentations without adjacency (see
// [segmentation.Segmentation.ComputeAdjacency]) render as isolated nodes.
package nodelink
