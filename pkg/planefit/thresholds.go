package planefit

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidThreshold is returned when a threshold is not strictly positive.
var ErrInvalidThreshold = errors.New("invalid threshold")

// Thresholds bound region membership.
type Thresholds struct {
	// Distance is the largest accepted distance to the region plane, in model units.
	Distance float64 `json:"distance" toml:"distance"`

	// Angle is the largest accepted deviation between normals, in degrees.
	Angle float64 `json:"angle" toml:"angle"`

	// MinRegionSize is the smallest number of items of a kept region.
	MinRegionSize int `json:"min_region_size" toml:"min_region_size"`
}

// Validate checks that every threshold is finite and strictly positive.
func (t Thresholds) Validate() error {
	if !(t.Distance > 0) || math.IsInf(t.Distance, 0) {
		return fmt.Errorf("%w: distance %v", ErrInvalidThreshold, t.Distance)
	}
	if !(t.Angle > 0) || math.IsInf(t.Angle, 0) {
		return fmt.Errorf("%w: angle %v", ErrInvalidThreshold, t.Angle)
	}
	if t.MinRegionSize < 1 {
		return fmt.Errorf("%w: min region size %d", ErrInvalidThreshold, t.MinRegionSize)
	}
	return nil
}
