// Package io reads and writes the geometry files segmented by planeseg.
//
// # Formats
//
// Three text formats are supported:
//
//   - OFF (.off): polygon meshes. The header may be OFF, COFF, NOFF or CNOFF,
//     with the counts either on the header line or on the next line. Extra
//     vertex columns (colours, normals) and per-face colour columns are
//     ignored on read.
//   - OBJ (.obj): polygon meshes. Only "v" and "f" records are used; face
//     corners may be written as v, v/vt, v//vn or v/vt/vn, and negative
//     indices count back from the last vertex.
//   - XYZ (.xyz): oriented point sets, one "x y z nx ny nz" record per line.
//
// Blank lines and "#" comments are skipped in all formats.
//
// # Import
//
// Use [Import] to load a file by extension, or the Read functions to parse
// from any io.Reader:
//
//	ds, err := io.Import("part.off")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(ds.Kind, ds.Len())
//
// Parse errors wrap [ErrInvalidFormat] and name the offending line.
//
// # Export
//
// [WriteOFF] and [ExportOFF] write meshes back to OFF, optionally with one
// colour per face, which is how segmentations are visualised in mesh
// viewers.
package io
