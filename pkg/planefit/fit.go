package planefit

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/planeseg/pkg/regiongrow"
)

// FitItems fits one plane to the points of all items. The normal is oriented
// along the sum of the item normals.
func FitItems(g Geometry, items []int) (Fit, error) {
	var acc Accumulator
	var up r3.Vec
	for _, it := range items {
		acc.AddAll(g.Points(it))
		up = r3.Add(up, g.Normal(it))
	}
	fit, err := acc.Fit()
	if err != nil {
		return Fit{}, err
	}
	fit.Plane = fit.Plane.OrientTowards(up)
	return fit, nil
}

// SortByFitQuality orders items so that those lying in the flattest
// neighbourhoods come first.
//
// Each item is scored by the residual of a plane fitted to its own points and
// those of its neighbours. Items whose neighbourhood cannot be fitted sort
// last. The sort is stable, so ties keep the input order. Neighbours outside
// items are reported with regiongrow.ErrUnknownItem.
func SortByFitQuality(items []int, g Geometry, q regiongrow.NeighborQuery) ([]int, error) {
	in := make(map[int]bool, len(items))
	for _, it := range items {
		in[it] = true
	}

	score := make(map[int]float64, len(items))
	for _, it := range items {
		var acc Accumulator
		acc.AddAll(g.Points(it))
		for _, n := range q.Neighbors(it) {
			if !in[n] {
				return nil, fmt.Errorf("%w: %d (neighbor of %d)", regiongrow.ErrUnknownItem, n, it)
			}
			acc.AddAll(g.Points(n))
		}
		fit, err := acc.Fit()
		if err != nil {
			score[it] = math.Inf(1)
			continue
		}
		score[it] = fit.Residual()
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b int) int {
		return cmp.Compare(score[a], score[b])
	})
	return sorted, nil
}
