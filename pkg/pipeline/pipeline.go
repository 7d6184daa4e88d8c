// Package pipeline provides the core segmentation pipeline for planeseg.
//
// This package implements the complete load → segment → render pipeline that
// is shared by the CLI and the HTTP API. By centralizing this logic, both
// entry points apply the same defaults, cache keys and error codes.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a mesh (OFF, OBJ) or an oriented point set (XYZ)
//  2. Segment: Grow planar regions with [regiongrow] and [planefit]
//  3. Render: Generate output in various formats (JSON, OFF, DXF, PDF, XLSX, SVG, PNG, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "bunny.off",
//	    Formats: []string{"json", "svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	ds, hash, err := runner.Load(ctx, opts)
//	seg, err := runner.Segment(ctx, ds, hash, opts)
//	artifacts, err := runner.Render(ctx, ds, seg, opts)
package pipeline

import (
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/planeseg/pkg/cache"
	"github.com/matzehuels/planeseg/pkg/errors"
	"github.com/matzehuels/planeseg/pkg/httputil"
	planeio "github.com/matzehuels/planeseg/pkg/io"
	"github.com/matzehuels/planeseg/pkg/planefit"
	"github.com/matzehuels/planeseg/pkg/regiongrow"
	"github.com/matzehuels/planeseg/pkg/segmentation"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultDistance is the default plane distance threshold in model units.
	DefaultDistance = 0.1

	// DefaultAngle is the default normal deviation threshold in degrees.
	DefaultAngle = 25.0

	// DefaultMinRegionSize keeps every region, including single items.
	DefaultMinRegionSize = 1

	// DefaultRadius is the neighbourhood radius for point sets.
	DefaultRadius = 1.0

	// MaxInputSize bounds inline input content.
	MaxInputSize = 64 << 20
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatOFF  = "off"
	FormatDXF  = "dxf"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = FormatJSON

// Formats lists the supported output formats in display order.
var Formats = []string{FormatJSON, FormatOFF, FormatDXF, FormatPDF, FormatXLSX, FormatSVG, FormatPNG, FormatDOT}

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatJSON: "application/json",
	FormatOFF:  "model/off",
	FormatDXF:  "image/vnd.dxf",
	FormatPDF:  "application/pdf",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatDOT:  "text/vnd.graphviz",
}

// NeedsMesh reports whether format draws the source mesh and therefore
// cannot be rendered for point sets or without the input file.
func NeedsMesh(format string) bool {
	return format == FormatOFF || format == FormatDXF
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the segmentation pipeline.
// This struct supports JSON serialization for API requests.
//
// Zero thresholds and radius mean "use the default".
type Options struct {
	// Load options
	Input    string `json:"input,omitempty"`    // path or http(s) URL of the geometry file
	Content  []byte `json:"content,omitempty"`  // inline file content, replaces Input
	Filename string `json:"filename,omitempty"` // name of the inline content, selects the parser

	// Segment options
	Distance       float64 `json:"distance,omitempty"`
	Angle          float64 `json:"angle,omitempty"`
	MinRegionSize  int     `json:"min_region_size,omitempty"`
	SortSeeds      bool    `json:"sort_seeds,omitempty"`      // seed from the flattest neighbourhoods first
	VertexDistance bool    `json:"vertex_distance,omitempty"` // measure every vertex, not the centroid
	Radius         float64 `json:"radius,omitempty"`          // point set neighbourhood radius
	Refresh        bool    `json:"refresh,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string

	// Dataset is the loaded geometry.
	Dataset planeio.Dataset

	// InputHash is the content hash of the input file.
	InputHash string

	// Segmentation is the detected partition.
	Segmentation segmentation.Segmentation

	// SegmentationHash is the content hash of the serialized segmentation.
	SegmentationHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Items       int
	Regions     int
	Unassigned  int
	Largest     int
	Coverage    float64
	Engine      regiongrow.Stats // zero when the segmentation came from cache
	LoadTime    time.Duration
	SegmentTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SegmentHit bool // Whether the segmentation came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return errors.ValidateFormatName(format, Formats)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForSegment(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that an input is named and has a known file type.
func (o *Options) ValidateForLoad() error {
	o.setLogger()
	if len(o.Content) > 0 {
		if len(o.Content) > MaxInputSize {
			return errors.New(errors.ErrCodeTooLarge, "input exceeds %d bytes", MaxInputSize)
		}
		return errors.ValidateMeshFilename(o.Filename)
	}
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input file is required")
	}
	if _, err := planeio.KindOf(o.SourceName()); err != nil {
		return errors.Wrap(errors.ErrCodeUnsupported, err, "cannot load %s", o.Input)
	}
	return nil
}

// SetSegmentDefaults fills zero thresholds and radius with the defaults.
func (o *Options) SetSegmentDefaults() {
	if o.Distance == 0 {
		o.Distance = DefaultDistance
	}
	if o.Angle == 0 {
		o.Angle = DefaultAngle
	}
	if o.MinRegionSize == 0 {
		o.MinRegionSize = DefaultMinRegionSize
	}
	if o.Radius == 0 {
		o.Radius = DefaultRadius
	}
	o.setLogger()
}

// ValidateForSegment applies segment defaults and checks the thresholds.
func (o *Options) ValidateForSegment() error {
	o.SetSegmentDefaults()
	if err := o.Thresholds().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidThreshold, err, "invalid thresholds")
	}
	if !(o.Radius > 0) {
		return errors.New(errors.ErrCodeInvalidThreshold, "radius must be positive, got %v", o.Radius)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// Thresholds returns the region criterion thresholds.
func (o *Options) Thresholds() planefit.Thresholds {
	return planefit.Thresholds{
		Distance:      o.Distance,
		Angle:         o.Angle,
		MinRegionSize: o.MinRegionSize,
	}
}

// SourceName returns the file name recorded in the segmentation. For
// URLs it is the last path element.
func (o *Options) SourceName() string {
	if len(o.Content) > 0 {
		return o.Filename
	}
	if httputil.IsURL(o.Input) {
		return httputil.FileName(o.Input)
	}
	return filepath.Base(o.Input)
}

// SegmentationKeyOpts returns cache key options for segmentation.
func (o *Options) SegmentationKeyOpts() cache.SegmentationKeyOpts {
	return cache.SegmentationKeyOpts{
		Distance:       o.Distance,
		Angle:          o.Angle,
		MinRegionSize:  o.MinRegionSize,
		SortSeeds:      o.SortSeeds,
		VertexDistance: o.VertexDistance,
		Radius:         o.Radius,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
	}
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
