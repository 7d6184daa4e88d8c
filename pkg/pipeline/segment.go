package pipeline

import (
	"context"
	"errors"

	perrors "github.com/matzehuels/planeseg/pkg/errors"
	planeio "github.com/matzehuels/planeseg/pkg/io"
	"github.com/matzehuels/planeseg/pkg/mesh"
	"github.com/matzehuels/planeseg/pkg/planefit"
	"github.com/matzehuels/planeseg/pkg/pointset"
	"github.com/matzehuels/planeseg/pkg/regiongrow"
	"github.com/matzehuels/planeseg/pkg/segmentation"
)

// Segment partitions the dataset into planar regions.
//
// The item range is every face (or point) in file order, or ordered by
// [planefit.SortByFitQuality] when opts.SortSeeds is set. The context is
// checked between regions. The returned segmentation has fitted planes,
// areas (meshes only) and region adjacency but no ID.
func Segment(ctx context.Context, ds planeio.Dataset, opts Options) (segmentation.Segmentation, regiongrow.Stats, error) {
	if err := opts.ValidateForSegment(); err != nil {
		return segmentation.Segmentation{}, regiongrow.Stats{}, err
	}

	var (
		geom  planefit.Geometry
		query regiongrow.NeighborQuery
		items []int
		kind  string
	)
	switch ds.Kind {
	case planeio.KindMesh:
		geom = mesh.NewFaceGeometry(ds.Mesh)
		query = mesh.NewOneRingQuery(ds.Mesh)
		items = ds.Mesh.Faces()
		kind = segmentation.KindMesh
	case planeio.KindPoints:
		q, err := pointset.NewSphereQuery(ds.Points, opts.Radius)
		if err != nil {
			return segmentation.Segmentation{}, regiongrow.Stats{}, perrors.Wrap(perrors.ErrCodeInvalidThreshold, err, "neighbour query")
		}
		geom = pointset.NewGeometry(ds.Points)
		query = q
		items = ds.Points.Items()
		kind = segmentation.KindPoints
	default:
		return segmentation.Segmentation{}, regiongrow.Stats{}, perrors.New(perrors.ErrCodeInvalidInput, "unknown dataset kind %q", ds.Kind)
	}

	if opts.SortSeeds {
		sorted, err := planefit.SortByFitQuality(items, geom, query)
		if err != nil {
			return segmentation.Segmentation{}, regiongrow.Stats{}, perrors.Wrap(perrors.ErrCodeInternal, err, "sort seeds")
		}
		items = sorted
	}

	var copts []planefit.Option
	if opts.VertexDistance {
		copts = append(copts, planefit.WithVertexDistance())
	}
	crit, err := planefit.NewCriterion(geom, opts.Thresholds(), copts...)
	if err != nil {
		return segmentation.Segmentation{}, regiongrow.Stats{}, perrors.Wrap(perrors.ErrCodeInvalidThreshold, err, "region criterion")
	}

	rg, err := regiongrow.New(items, query, crit)
	if errors.Is(err, regiongrow.ErrEmptyRange) {
		return segmentation.Segmentation{}, regiongrow.Stats{}, perrors.Wrap(perrors.ErrCodeInvalidMesh, err, "nothing to segment")
	}
	if err != nil {
		return segmentation.Segmentation{}, regiongrow.Stats{}, perrors.Wrap(perrors.ErrCodeInternal, err, "region growing")
	}

	var regions []regiongrow.Region
	for r := range rg.Regions() {
		regions = append(regions, r)
		if ctx.Err() != nil {
			break
		}
	}
	if err := ctx.Err(); err != nil {
		return segmentation.Segmentation{}, rg.Stats(), contextErr(err)
	}
	if err := rg.Err(); err != nil {
		return segmentation.Segmentation{}, rg.Stats(), perrors.Wrap(perrors.ErrCodeInternal, err, "region growing")
	}

	seg := segmentation.New(kind, ds.Len(), opts.Thresholds(), regions, rg.Unassigned())
	seg.Source = opts.SourceName()
	seg.FitPlanes(geom)
	if ds.Kind == planeio.KindMesh {
		seg.SetAreas(ds.Mesh.FaceArea)
	}
	seg.ComputeAdjacency(query)

	if err := seg.Validate(); err != nil {
		return segmentation.Segmentation{}, rg.Stats(), perrors.Wrap(perrors.ErrCodeInternal, err, "inconsistent segmentation")
	}
	return seg, rg.Stats(), nil
}

func contextErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return perrors.Wrap(perrors.ErrCodeTimeout, err, "segmentation timed out")
	}
	return perrors.Wrap(perrors.ErrCodeCanceled, err, "segmentation canceled")
}
