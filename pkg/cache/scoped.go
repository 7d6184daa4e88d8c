package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis or MongoDB backend without seeing each other's entries.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "planeseg:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SegmentationKey generates a prefixed segmentation key.
func (k *ScopedKeyer) SegmentationKey(inputHash string, opts SegmentationKeyOpts) string {
	return k.prefix + k.inner.SegmentationKey(inputHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(segmentationHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(segmentationHash, opts)
}
