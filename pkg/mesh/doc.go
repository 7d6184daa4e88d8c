// Package mesh provides an indexed polygon mesh and the face adjacency used
// by planar region detection.
//
// # Overview
//
// A [Mesh] stores vertex positions and faces as loops of vertex indices.
// Faces may be triangles or arbitrary simple polygons. Undirected edges are
// indexed as faces are added, so faces sharing an edge can be found without
// a half-edge structure.
//
// # Adjacency
//
// [OneRingQuery] implements the region growing neighbour query: two faces are
// neighbours when they share an edge. Faces touching only at a vertex are not
// neighbours. Neighbour lists are precomputed and deterministic: a face's
// edges are walked in loop order and, for every edge, the other faces are
// listed by ascending index.
//
// # Geometry
//
// [FaceGeometry] exposes per-face vertex positions, centroids and unit
// normals (Newell's method) for the plane-fit criterion.
//
// # Validation
//
// [Mesh.Validate] reports empty meshes and non-manifold edges (shared by
// more than two faces). Non-manifold meshes are still usable; callers decide
// whether to reject them.
package mesh
