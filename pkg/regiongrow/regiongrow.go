// Package regiongrow partitions an ordered collection of items into connected
// regions by breadth-first region growing.
//
// The engine is generic: it knows nothing about geometry. Adjacency comes from
// a [NeighborQuery] and the acceptance test from a [RegionType]. Items are
// plain integers (face indices of a mesh, point indices of a point set).
//
// # Algorithm
//
// Items of the range are visited in order. Every item that is not yet part of
// an emitted region becomes a seed. From the seed a region grows through a
// FIFO frontier: each candidate is evaluated at most once per region, accepted
// candidates update the region type and push their own neighbours. When the
// frontier is empty the region is closed. Regions that fail
// [RegionType.IsValidRegion] are dissolved: their items return to the
// unassigned pool and may seed or join later regions.
//
// The result depends on the order of the range and on the order returned by
// the neighbour query, and is fully deterministic for a given input.
//
// # Usage
//
//	rg, err := regiongrow.New(items, query, criterion)
//	if err != nil {
//	    return err
//	}
//	for region := range rg.Regions() {
//	    fmt.Println(region)
//	}
//	if err := rg.Err(); err != nil {
//	    return err
//	}
//	fmt.Println(rg.Unassigned())
package regiongrow

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

var (
	// ErrEmptyRange is returned by New when the item range has no items.
	ErrEmptyRange = errors.New("empty item range")

	// ErrDuplicateItem is returned by New when an item appears twice in the range.
	ErrDuplicateItem = errors.New("duplicate item in range")

	// ErrNilQuery is returned by New when no neighbour query is given.
	ErrNilQuery = errors.New("nil neighbor query")

	// ErrNilRegionType is returned by New when no region type is given.
	ErrNilRegionType = errors.New("nil region type")

	// ErrUnknownItem is reported by Err when the neighbour query returned an
	// item that is not part of the range.
	ErrUnknownItem = errors.New("neighbor outside item range")
)

// NeighborQuery returns the items adjacent to an item.
//
// Implementations must be deterministic and must not be affected by the
// growth. An item must never be listed as its own neighbour; if it is, the
// engine ignores it.
type NeighborQuery interface {
	Neighbors(item int) []int
}

// RegionType decides which items belong to a region.
//
// The engine calls Reset once per seed, then alternates IsPartOfRegion and
// Update while growing, and finally IsValidRegion once the frontier is empty.
// IsPartOfRegion must not change the state that later calls observe.
type RegionType interface {
	// Reset prepares the region type for a new region grown from seed.
	Reset(seed int)

	// IsPartOfRegion reports whether candidate may join region.
	IsPartOfRegion(region Region, candidate int) bool

	// Update records that candidate has been appended to region. The region
	// passed in does not yet contain candidate.
	Update(region Region, candidate int)

	// IsValidRegion reports whether a closed region is kept.
	IsValidRegion(region Region) bool
}

// Region is the ordered list of items of one region, seed first, followed by
// accepted candidates in acceptance order.
type Region []int

// Stats counts what happened during detection.
type Stats struct {
	Seeds     int // regions opened
	Evaluated int // calls to IsPartOfRegion
	Accepted  int // candidates that joined a region
	Rejected  int // candidates that were turned down
	Dissolved int // regions that failed validation
	Regions   int // regions emitted
}

// RegionGrowing runs region growing over a fixed item range.
//
// A RegionGrowing is single use: its Regions sequence is consumed once. It is
// not safe for concurrent use.
type RegionGrowing struct {
	items  []int
	index  map[int]int // item -> position in items
	query  NeighborQuery
	region RegionType

	assigned []bool // by position; set once a valid region is emitted
	seen     []int  // by position; epoch of the last region that queued it
	epoch    int

	next  int // next seed position
	err   error
	stats Stats
}

// New validates the input and returns an engine ready to detect regions.
//
// The items slice is copied.
func New(items []int, q NeighborQuery, r RegionType) (*RegionGrowing, error) {
	if len(items) == 0 {
		return nil, ErrEmptyRange
	}
	if q == nil {
		return nil, ErrNilQuery
	}
	if r == nil {
		return nil, ErrNilRegionType
	}

	index := make(map[int]int, len(items))
	for pos, item := range items {
		if _, dup := index[item]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateItem, item)
		}
		index[item] = pos
	}

	return &RegionGrowing{
		items:    slices.Clone(items),
		index:    index,
		query:    q,
		region:   r,
		assigned: make([]bool, len(items)),
		seen:     make([]int, len(items)),
	}, nil
}

// Regions returns the detected regions as a lazy sequence.
//
// Each step scans forward for the next unassigned seed and grows one region.
// Dissolved regions are skipped silently. If the consumer stops early, the
// next call resumes after the last seed; once exhausted the sequence is empty.
// Growth stops at the first contract violation, reported by Err.
func (g *RegionGrowing) Regions() iter.Seq[Region] {
	return func(yield func(Region) bool) {
		for g.err == nil && g.next < len(g.items) {
			pos := g.next
			g.next++
			if g.assigned[pos] {
				continue
			}

			region, err := g.grow(pos)
			if err != nil {
				g.err = err
				return
			}
			if !g.region.IsValidRegion(region) {
				g.stats.Dissolved++
				continue
			}

			for _, item := range region {
				g.assigned[g.index[item]] = true
			}
			g.stats.Regions++
			if !yield(region) {
				return
			}
		}
	}
}

// Detect consumes the remaining regions and returns them.
func (g *RegionGrowing) Detect() ([]Region, error) {
	var regions []Region
	for r := range g.Regions() {
		regions = append(regions, r)
	}
	return regions, g.err
}

// Err returns the first contract violation met while growing, if any.
func (g *RegionGrowing) Err() error {
	return g.err
}

// Unassigned returns the items that are not part of any emitted region, in
// range order. The list is final once Regions has been exhausted.
func (g *RegionGrowing) Unassigned() []int {
	var out []int
	for pos, item := range g.items {
		if !g.assigned[pos] {
			out = append(out, item)
		}
	}
	return out
}

// Stats returns the counters accumulated so far.
func (g *RegionGrowing) Stats() Stats {
	return g.stats
}

// grow builds one region from the seed at position pos.
func (g *RegionGrowing) grow(pos int) (Region, error) {
	g.epoch++
	g.seen[pos] = g.epoch
	g.stats.Seeds++

	seed := g.items[pos]
	g.region.Reset(seed)
	region := Region{seed}

	var queue []int
	var err error
	if queue, err = g.enqueue(queue, seed); err != nil {
		return nil, err
	}

	for head := 0; head < len(queue); head++ {
		candidate := queue[head]
		g.stats.Evaluated++
		if !g.region.IsPartOfRegion(region, candidate) {
			g.stats.Rejected++
			continue
		}
		g.region.Update(region, candidate)
		region = append(region, candidate)
		g.stats.Accepted++

		if queue, err = g.enqueue(queue, candidate); err != nil {
			return nil, err
		}
	}
	return region, nil
}

// enqueue appends the neighbours of item that are neither assigned nor
// already queued for the current region.
func (g *RegionGrowing) enqueue(queue []int, item int) ([]int, error) {
	for _, n := range g.query.Neighbors(item) {
		pos, ok := g.index[n]
		if !ok {
			return nil, fmt.Errorf("%w: %d (neighbor of %d)", ErrUnknownItem, n, item)
		}
		if g.assigned[pos] || g.seen[pos] == g.epoch {
			continue
		}
		g.seen[pos] = g.epoch
		queue = append(queue, n)
	}
	return queue, nil
}
