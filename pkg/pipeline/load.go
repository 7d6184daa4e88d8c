package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	perrors "github.com/matzehuels/planeseg/pkg/errors"
	"github.com/matzehuels/planeseg/pkg/httputil"
	planeio "github.com/matzehuels/planeseg/pkg/io"
	"github.com/matzehuels/planeseg/pkg/mesh"
)

// ReadInput returns the raw input bytes named by opts: the inline content,
// a downloaded URL or a local file.
func ReadInput(ctx context.Context, opts Options) ([]byte, error) {
	if len(opts.Content) > 0 {
		return opts.Content, nil
	}
	if httputil.IsURL(opts.Input) {
		return fetchInput(ctx, opts.Input)
	}
	data, err := os.ReadFile(opts.Input)
	if errors.Is(err, os.ErrNotExist) {
		return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "input %s not found", opts.Input)
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "read %s", opts.Input)
	}
	return data, nil
}

func fetchInput(ctx context.Context, url string) ([]byte, error) {
	data, err := httputil.Fetch(ctx, nil, url, MaxInputSize)
	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, httputil.ErrNotFound):
		return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "input not found")
	case errors.Is(err, httputil.ErrTooLarge):
		return nil, perrors.Wrap(perrors.ErrCodeTooLarge, err, "input exceeds %d bytes", MaxInputSize)
	case errors.Is(err, context.DeadlineExceeded):
		return nil, perrors.Wrap(perrors.ErrCodeTimeout, err, "download input")
	case errors.Is(err, context.Canceled):
		return nil, perrors.Wrap(perrors.ErrCodeCanceled, err, "download input")
	}
	return nil, perrors.Wrap(perrors.ErrCodeNetwork, err, "download input")
}

// Parse decodes input bytes into a dataset and checks that it can be
// segmented. Non-manifold edges are logged, not rejected: the one-ring
// query handles them and mesh repair is left to the caller.
func Parse(data []byte, opts Options) (planeio.Dataset, error) {
	opts.setLogger()
	name := opts.SourceName()

	ds, err := planeio.Read(name, bytes.NewReader(data))
	if errors.Is(err, planeio.ErrUnsupportedExtension) {
		return planeio.Dataset{}, perrors.Wrap(perrors.ErrCodeUnsupported, err, "cannot load %s", name)
	}
	if err != nil {
		return planeio.Dataset{}, perrors.Wrap(perrors.ErrCodeInvalidMesh, err, "parse %s", name)
	}

	switch ds.Kind {
	case planeio.KindMesh:
		err = ds.Mesh.Validate()
		if errors.Is(err, mesh.ErrNonManifoldEdge) {
			opts.Logger.Warn("mesh is not manifold", "source", name, "detail", err)
			err = nil
		}
	case planeio.KindPoints:
		err = ds.Points.Validate()
	default:
		err = fmt.Errorf("unknown dataset kind %q", ds.Kind)
	}
	if err != nil {
		return planeio.Dataset{}, perrors.Wrap(perrors.ErrCodeInvalidMesh, err, "invalid %s", name)
	}
	return ds, nil
}
