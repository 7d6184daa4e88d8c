package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/planeseg/pkg/cache"
	perrors "github.com/matzehuels/planeseg/pkg/errors"
	planeio "github.com/matzehuels/planeseg/pkg/io"
	"github.com/matzehuels/planeseg/pkg/observability"
	"github.com/matzehuels/planeseg/pkg/regiongrow"
	"github.com/matzehuels/planeseg/pkg/segmentation"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → segment → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", result.RunID)

	// Stage 1: Load
	loadStart := time.Now()
	ds, inputHash, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Dataset = ds
	result.InputHash = inputHash
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Items = ds.Len()

	logger.Info("loaded input",
		"source", opts.SourceName(),
		"kind", ds.Kind,
		"items", ds.Len(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Segment
	segStart := time.Now()
	seg, engine, segHit, err := r.segment(ctx, ds, inputHash, opts)
	if err != nil {
		return nil, err
	}
	result.Segmentation = seg
	result.Stats.SegmentTime = time.Since(segStart)
	result.Stats.Engine = engine
	result.Stats.Regions = len(seg.Regions)
	result.Stats.Unassigned = len(seg.Unassigned)
	result.Stats.Largest = seg.Largest()
	result.Stats.Coverage = seg.Coverage()
	result.CacheInfo.SegmentHit = segHit

	logger.Info("detected regions",
		"regions", len(seg.Regions),
		"unassigned", len(seg.Unassigned),
		"largest", seg.Largest(),
		"cached", segHit,
		"duration", result.Stats.SegmentTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, segHash, renderHit, err := r.render(ctx, ds, seg, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.SegmentationHash = segHash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads and parses the input and returns it with its content hash.
func (r *Runner) Load(ctx context.Context, opts Options) (planeio.Dataset, string, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return planeio.Dataset{}, "", err
	}

	source := opts.SourceName()
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, source)

	var ds planeio.Dataset
	data, err := ReadInput(ctx, opts)
	if err == nil {
		ds, err = Parse(data, opts)
	}
	observability.Pipeline().OnLoadComplete(ctx, source, ds.Len(), time.Since(start), err)
	if err != nil {
		return planeio.Dataset{}, "", err
	}
	return ds, cache.Hash(data), nil
}

// SegmentWithCacheInfo segments a dataset with caching and returns cache hit info.
// The input hash keys the cache; an empty hash disables caching.
func (r *Runner) SegmentWithCacheInfo(ctx context.Context, ds planeio.Dataset, inputHash string, opts Options) (segmentation.Segmentation, bool, error) {
	seg, _, hit, err := r.segment(ctx, ds, inputHash, opts)
	return seg, hit, err
}

// Segment is a convenience wrapper that calls SegmentWithCacheInfo and discards the cache hit info.
func (r *Runner) Segment(ctx context.Context, ds planeio.Dataset, inputHash string, opts Options) (segmentation.Segmentation, error) {
	seg, _, err := r.SegmentWithCacheInfo(ctx, ds, inputHash, opts)
	return seg, err
}

func (r *Runner) segment(ctx context.Context, ds planeio.Dataset, inputHash string, opts Options) (segmentation.Segmentation, regiongrow.Stats, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForSegment(); err != nil {
		return segmentation.Segmentation{}, regiongrow.Stats{}, false, err
	}

	cacheKey := ""
	if inputHash != "" {
		cacheKey = r.Keyer.SegmentationKey(inputHash, opts.SegmentationKeyOpts())
	}

	// Try cache first (unless refresh requested)
	if cacheKey != "" && !opts.Refresh {
		if data, hit := r.cacheGet(ctx, cache.KeyTypeSegmentation, cacheKey); hit {
			seg, err := segmentation.Unmarshal(data)
			if err == nil && seg.ItemCount == ds.Len() {
				// The same content may arrive under another name.
				seg.Source = opts.SourceName()
				return seg, regiongrow.Stats{}, true, nil
			}
			opts.Logger.Debug("discarding cached segmentation", "key", cacheKey, "error", err)
		}
	}

	start := time.Now()
	observability.Pipeline().OnSegmentStart(ctx, ds.Len())
	seg, stats, err := Segment(ctx, ds, opts)
	observability.Pipeline().OnSegmentComplete(ctx, len(seg.Regions), len(seg.Unassigned), time.Since(start), err)
	if err != nil {
		return segmentation.Segmentation{}, stats, false, err
	}
	seg.ID = uuid.NewString()

	opts.Logger.Debug("region growing",
		"seeds", stats.Seeds,
		"evaluated", stats.Evaluated,
		"accepted", stats.Accepted,
		"rejected", stats.Rejected,
		"dissolved", stats.Dissolved)

	if cacheKey != "" {
		if data, err := segmentation.Marshal(seg); err == nil {
			r.cacheSet(ctx, cache.KeyTypeSegmentation, cacheKey, data, cache.TTLSegmentation)
		}
	}
	return seg, stats, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, ds planeio.Dataset, seg segmentation.Segmentation, opts Options) (map[string][]byte, bool, error) {
	artifacts, _, hit, err := r.render(ctx, ds, seg, opts)
	return artifacts, hit, err
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, ds planeio.Dataset, seg segmentation.Segmentation, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, ds, seg, opts)
	return artifacts, err
}

func (r *Runner) render(ctx context.Context, ds planeio.Dataset, seg segmentation.Segmentation, opts Options) (map[string][]byte, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, "", false, err
	}

	segData, err := segmentation.Marshal(seg)
	if err != nil {
		return nil, "", false, perrors.Wrap(perrors.ErrCodeInternal, err, "serialize segmentation for cache key")
	}
	segHash := cache.Hash(segData)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		data, hit := r.cacheGet(ctx, cache.KeyTypeArtifact, r.Keyer.ArtifactKey(segHash, opts.ArtifactKeyOpts(format)))
		if !hit {
			allCached = false
			break
		}
		artifacts[format] = data
	}
	if allCached {
		return artifacts, segHash, true, nil
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	rendered, err := Render(ctx, ds, seg, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, segHash, false, err
	}

	for format, data := range rendered {
		r.cacheSet(ctx, cache.KeyTypeArtifact, r.Keyer.ArtifactKey(segHash, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact)
	}
	return rendered, segHash, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// cacheGet reads an entry. Backend failures are logged and count as misses.
func (r *Runner) cacheGet(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "error", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType)
	}
	return data, hit
}

// cacheSet writes an entry. Backend failures are logged, never returned.
func (r *Runner) cacheSet(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
