// Package pkg provides the core libraries for planeseg planar shape detection.
//
// # Overview
//
// planeseg partitions the faces of a polygon mesh (or the points of an
// oriented point set) into connected regions that each lie on a plane. Regions
// grow from seed items across neighbour links; a candidate joins when it is
// close to the region's least-squares plane and its normal deviates from the
// plane normal by no more than a threshold.
//
// The pkg directory is organized into four areas:
//
//  1. Algorithms: [regiongrow] and [planefit]
//  2. Geometry and data: [mesh], [pointset], [io] and [segmentation]
//  3. Output: [render], [render/nodelink] and [render/sink]
//  4. Infrastructure: [pipeline], [cache], [httputil], [errors],
//     [observability] and [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	OFF / OBJ / XYZ file or URL
//	         ↓
//	    [io] package (parse into a mesh or point set)
//	         ↓
//	    [regiongrow] + [planefit] (grow planar regions)
//	         ↓
//	    [segmentation] package (regions, planes, adjacency)
//	         ↓
//	    JSON / OFF / DOT / SVG / PNG / PDF / XLSX / DXF output
//
// # Quick Start
//
// Segment a mesh with explicit thresholds:
//
//	m, _ := planeio.ImportOFF("cube.off")
//	crit, _ := planefit.NewCriterion(mesh.NewFaceGeometry(m), planefit.Thresholds{
//	    Distance:      0.01,
//	    Angle:         15,
//	    MinRegionSize: 1,
//	})
//	rg, _ := regiongrow.New(m.Faces(), mesh.NewOneRingQuery(m), crit)
//	regions, _ := rg.Detect()
//
// Or run the whole pipeline, which also fits planes, computes adjacency and
// renders artifacts:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	res, _ := runner.Execute(ctx, pipeline.Options{
//	    Input:   "cube.off",
//	    Formats: []string{"json", "svg"},
//	})
//
// # Main Packages
//
// [regiongrow] - Generic seeded region growing over integer items. The
// neighbour query and the membership predicate are supplied by the caller,
// so the same loop serves meshes, point sets and tests.
//
// [planefit] - Incremental least-squares plane fitting. An [planefit.Accumulator]
// keeps shifted first and second moments so points can be added, removed and
// merged in constant time; [planefit.Criterion] is the region type that
// tests candidates against the current fit.
//
// [mesh] - Polygon meshes with a face adjacency index, face geometry
// (centroid, normal, area) and the one-ring neighbour query.
//
// [pointset] - Oriented point sets with a fixed-radius sphere query.
//
// [io] - OFF, OBJ and XYZ readers plus an OFF writer with per-face colours.
//
// [segmentation] - The serializable result: regions with fitted planes,
// unassigned items and the region adjacency list.
//
// [render] - The region palette shared by every output format.
// [render/nodelink] draws the region adjacency graph with Graphviz;
// [render/sink] writes JSON, coloured OFF, PDF reports, XLSX workbooks and
// DXF drawings.
//
// ## Infrastructure
//
// [pipeline] - Load, segment and render with validation, defaults and
// caching. Used by both the CLI and the HTTP API.
//
// [cache] - Content-addressed result cache with file, Redis, MongoDB and null
// backends.
//
// # Testing
//
//	go test ./pkg/...                 # All tests
//	go test ./pkg/planefit/...        # Specific package
//	go test -run Example ./pkg/...    # Examples only
//
// Redis and MongoDB backend tests run when PLANESEG_TEST_REDIS_URL and
// PLANESEG_TEST_MONGO_URI are set.
//
// [regiongrow]: https://pkg.go.dev/github.com/matzehuels/planeseg/pkg/regiongrow
// [planefit]: https://pkg.go.dev/github.com/matzehuels/planeseg/pkg/planefit
// [planefit.Accumulator]: https://pkg.go.dev/github.com/matzehuels/planeseg/pkg/planefit#Accumulator
// [planefit.Criterion]: https://pkg.go.dev/github.com/matzehuels/planeseg/pkg/planefit#Criterion
// [mesh]: https://pkg.go.dev/github.com/matzehuels/planeseg/pkg/mesh
// [pointset]: https://pkg.go.dev/github.com/matzehuels/planeseg/pkg/pointset
// [io]: https://pkg.go.dev/github.com/matzehuels/planeseg/pkg/io
// [segmentation]: https://pkg.go.dev/github.com/matzehuels/planeseg/pkg/segmentation
// [render]: https://pkg.go.dev/github.com/matzehuels/planeseg/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/planeseg/pkg/render/nodelink
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/planeseg/pkg/render/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/planeseg/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/planeseg/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/planeseg/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/planeseg/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/planeseg/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/planeseg/pkg/buildinfo
package pkg
