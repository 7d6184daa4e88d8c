// Package cache stores segmentation results and rendered artifacts.
//
// All backends implement [Cache], a byte-oriented key/value store with
// per-entry expiry:
//
//   - [NullCache] never stores anything (caching disabled)
//   - [FileCache] keeps JSON envelopes on disk for the CLI
//   - [RedisCache] shares entries between API replicas
//   - [MongoCache] keeps entries in a collection with a TTL index
//
// Keys are produced by a [Keyer] so that the CLI and the API agree on them.
// A segmentation key depends on the input content hash and every option that
// changes the regions; an artifact key depends on the segmentation hash and
// the output format.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store for serialized results.
//
// Get reports a miss with (nil, false, nil); an error means the backend
// itself failed.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default expiry per entry type.
const (
	TTLSegmentation = 7 * 24 * time.Hour
	TTLArtifact     = 24 * time.Hour
)

// Key types reported to cache hooks.
const (
	KeyTypeSegmentation = "segmentation"
	KeyTypeArtifact     = "artifact"
)

// SegmentationKeyOpts lists every option that changes a segmentation.
type SegmentationKeyOpts struct {
	Distance       float64 `json:"distance"`
	Angle          float64 `json:"angle"`
	MinRegionSize  int     `json:"min_region_size"`
	SortSeeds      bool    `json:"sort_seeds"`
	VertexDistance bool    `json:"vertex_distance"`
	Radius         float64 `json:"radius"`
}

// ArtifactKeyOpts lists every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// Keyer generates cache keys.
type Keyer interface {
	// SegmentationKey returns the key of the segmentation of the input with
	// the given content hash.
	SegmentationKey(inputHash string, opts SegmentationKeyOpts) string

	// ArtifactKey returns the key of an artifact rendered from the
	// segmentation with the given content hash.
	ArtifactKey(segmentationHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unprefixed keys of the form "type:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SegmentationKey implements [Keyer].
func (DefaultKeyer) SegmentationKey(inputHash string, opts SegmentationKeyOpts) string {
	return hashKey(KeyTypeSegmentation, inputHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(segmentationHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, segmentationHash, opts)
}

var _ Keyer = DefaultKeyer{}
