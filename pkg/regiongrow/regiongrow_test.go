package regiongrow

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// adjacency is a NeighborQuery backed by a map.
type adjacency map[int][]int

func (a adjacency) Neighbors(item int) []int { return a[item] }

// undirected builds an adjacency list from edges, keeping insertion order.
func undirected(edges ...[2]int) adjacency {
	a := adjacency{}
	for _, e := range edges {
		a[e[0]] = append(a[e[0]], e[1])
		a[e[1]] = append(a[e[1]], e[0])
	}
	return a
}

// labels accepts candidates carrying the same label as the seed.
type labels struct {
	label   map[int]string
	minSize int
	seed    int

	resets  []int
	checked map[[2]int]int // (seed, candidate) -> evaluations
	t       *testing.T
}

func newLabels(t *testing.T, minSize int, label map[int]string) *labels {
	return &labels{label: label, minSize: minSize, checked: map[[2]int]int{}, t: t}
}

func (l *labels) Reset(seed int) {
	l.seed = seed
	l.resets = append(l.resets, seed)
}

func (l *labels) IsPartOfRegion(_ Region, c int) bool {
	l.checked[[2]int{l.seed, c}]++
	return l.label[c] == l.label[l.seed]
}

func (l *labels) Update(region Region, c int) {
	if slices.Contains(region, c) {
		l.t.Errorf("Update(%v, %d): candidate already in region", region, c)
	}
}

func (l *labels) IsValidRegion(region Region) bool { return len(region) >= l.minSize }

func collect(t *testing.T, g *RegionGrowing) []Region {
	t.Helper()
	regions, err := g.Detect()
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	return regions
}

func mustNew(t *testing.T, items []int, q NeighborQuery, r RegionType) *RegionGrowing {
	t.Helper()
	g, err := New(items, q, r)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return g
}

// equal reports a diff between want and got; nil and empty compare equal.
func equal(t *testing.T, what string, want, got any) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("%s mismatch (-want +got):\n%s", what, diff)
	}
}

func TestNewValidation(t *testing.T) {
	q := adjacency{}
	r := newLabels(t, 1, nil)

	tests := []struct {
		name  string
		items []int
		q     NeighborQuery
		r     RegionType
		want  error
	}{
		{"empty range", nil, q, r, ErrEmptyRange},
		{"duplicate", []int{1, 2, 1}, q, r, ErrDuplicateItem},
		{"nil query", []int{1}, nil, r, ErrNilQuery},
		{"nil region type", []int{1}, q, nil, ErrNilRegionType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.items, tt.q, tt.r); !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestChainByLabel(t *testing.T) {
	q := undirected([2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 4})
	label := map[int]string{0: "a", 1: "a", 2: "b", 3: "b", 4: "a"}

	g := mustNew(t, []int{0, 1, 2, 3, 4}, q, newLabels(t, 1, label))

	equal(t, "regions", []Region{{0, 1}, {2, 3}, {4}}, collect(t, g))
	equal(t, "unassigned", []int{}, g.Unassigned())

	st := g.Stats()
	if st.Seeds != 3 || st.Regions != 3 || st.Dissolved != 0 {
		t.Errorf("Stats() = %+v, want 3 seeds, 3 regions, 0 dissolved", st)
	}
	if st.Evaluated != st.Accepted+st.Rejected {
		t.Errorf("evaluated %d != accepted %d + rejected %d", st.Evaluated, st.Accepted, st.Rejected)
	}
}

func TestMinimumSizeLeavesItemsUnassigned(t *testing.T) {
	q := undirected([2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 4})
	label := map[int]string{0: "a", 1: "a", 2: "b", 3: "b", 4: "a"}

	g := mustNew(t, []int{0, 1, 2, 3, 4}, q, newLabels(t, 2, label))

	equal(t, "regions", []Region{{0, 1}, {2, 3}}, collect(t, g))
	equal(t, "unassigned", []int{4}, g.Unassigned())
	if d := g.Stats().Dissolved; d != 1 {
		t.Errorf("Dissolved = %d, want 1", d)
	}
}

// stubborn rejects every candidate while growing from one particular seed.
type stubborn struct {
	dead    int
	minSize int
	seed    int
}

func (s *stubborn) Reset(seed int)                      { s.seed = seed }
func (s *stubborn) IsPartOfRegion(_ Region, _ int) bool { return s.seed != s.dead }
func (s *stubborn) Update(Region, int)                  {}
func (s *stubborn) IsValidRegion(r Region) bool         { return len(r) >= s.minSize }

func TestDissolvedItemsJoinLaterRegions(t *testing.T) {
	q := undirected([2]int{0, 1}, [2]int{1, 2})

	g := mustNew(t, []int{0, 1, 2}, q, &stubborn{dead: 0, minSize: 2})

	equal(t, "regions", []Region{{1, 0, 2}}, collect(t, g))
	equal(t, "unassigned", []int{}, g.Unassigned())
	if d := g.Stats().Dissolved; d != 1 {
		t.Errorf("Dissolved = %d, want 1", d)
	}
}

func TestRangeOrderDrivesSeeds(t *testing.T) {
	q := undirected([2]int{0, 1}, [2]int{1, 2})
	label := map[int]string{0: "a", 1: "a", 2: "a"}

	g := mustNew(t, []int{2, 1, 0}, q, newLabels(t, 1, label))
	equal(t, "regions", []Region{{2, 1, 0}}, collect(t, g))
}

func TestCandidateEvaluatedOncePerRegion(t *testing.T) {
	// 3 is reachable from 0, 1 and 2.
	q := undirected(
		[2]int{0, 1}, [2]int{0, 2}, [2]int{1, 2},
		[2]int{0, 3}, [2]int{1, 3}, [2]int{2, 3},
	)
	label := map[int]string{0: "a", 1: "a", 2: "a", 3: "b"}
	l := newLabels(t, 1, label)

	g := mustNew(t, []int{0, 1, 2, 3}, q, l)
	equal(t, "regions", []Region{{0, 1, 2}, {3}}, collect(t, g))

	for key, n := range l.checked {
		if n != 1 {
			t.Errorf("seed %d evaluated candidate %d %d times", key[0], key[1], n)
		}
	}
	equal(t, "resets", []int{0, 3}, l.resets)
}

func TestSelfNeighborIgnored(t *testing.T) {
	q := adjacency{0: {0, 1}, 1: {1, 0}}
	label := map[int]string{0: "a", 1: "a"}

	g := mustNew(t, []int{0, 1}, q, newLabels(t, 1, label))
	equal(t, "regions", []Region{{0, 1}}, collect(t, g))
}

func TestUnknownNeighbor(t *testing.T) {
	q := adjacency{0: {1}, 1: {0, 7}}
	label := map[int]string{0: "a", 1: "a"}

	g := mustNew(t, []int{0, 1}, q, newLabels(t, 1, label))

	regions, err := g.Detect()
	if !errors.Is(err, ErrUnknownItem) {
		t.Errorf("Detect() error = %v, want %v", err, ErrUnknownItem)
	}
	if len(regions) != 0 {
		t.Errorf("Detect() = %v, want no regions", regions)
	}
	if err := g.Err(); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("Err() = %v, want %v", err, ErrUnknownItem)
	}
}

func TestEarlyBreakResumes(t *testing.T) {
	q := adjacency{}
	label := map[int]string{0: "a", 1: "b", 2: "c"}

	g := mustNew(t, []int{0, 1, 2}, q, newLabels(t, 1, label))

	for r := range g.Regions() {
		equal(t, "first region", Region{0}, r)
		break
	}
	equal(t, "unassigned after break", []int{1, 2}, g.Unassigned())

	equal(t, "remaining regions", []Region{{1}, {2}}, collect(t, g))

	// Exhausted sequences stay empty.
	if again := collect(t, g); len(again) != 0 {
		t.Errorf("second pass = %v, want nothing", again)
	}
}

// grid returns a 4-connected w*h grid and a two-label checkerboard of blocks.
func grid(w, h int) (adjacency, map[int]string) {
	q := adjacency{}
	label := map[int]string{}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if x+1 < w {
				q[i] = append(q[i], i+1)
				q[i+1] = append(q[i+1], i)
			}
			if y+1 < h {
				q[i] = append(q[i], i+w)
				q[i+w] = append(q[i+w], i)
			}
			if (x/2+y/3)%2 == 0 {
				label[i] = "even"
			} else {
				label[i] = "odd"
			}
		}
	}
	return q, label
}

func TestPartitionAndConnectivity(t *testing.T) {
	const w, h = 7, 9
	q, label := grid(w, h)
	items := make([]int, w*h)
	for i := range items {
		items[i] = i
	}

	g := mustNew(t, items, q, newLabels(t, 3, label))
	regions := collect(t, g)
	unassigned := g.Unassigned()

	owner := map[int]int{}
	for ri, r := range regions {
		if len(r) < 3 {
			t.Fatalf("region %d has %d items, want at least 3", ri, len(r))
		}
		for _, it := range r {
			if prev, dup := owner[it]; dup {
				t.Fatalf("item %d in regions %d and %d", it, prev, ri)
			}
			owner[it] = ri
		}
	}
	for _, it := range unassigned {
		if _, dup := owner[it]; dup {
			t.Fatalf("unassigned item %d also in a region", it)
		}
		owner[it] = -1
	}
	if len(owner) != len(items) {
		t.Errorf("%d items covered, want %d", len(owner), len(items))
	}

	// Every region is connected through the query restricted to its items.
	for _, r := range regions {
		members := map[int]bool{}
		for _, it := range r {
			members[it] = true
		}
		reached := map[int]bool{r[0]: true}
		queue := []int{r[0]}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, n := range q.Neighbors(cur) {
				if members[n] && !reached[n] {
					reached[n] = true
					queue = append(queue, n)
				}
			}
		}
		if len(reached) != len(r) {
			t.Errorf("region %v is not connected", r)
		}
	}
}

func TestDeterministic(t *testing.T) {
	q, label := grid(5, 6)
	items := make([]int, 30)
	for i := range items {
		items[i] = i
	}

	run := func() ([]Region, []int) {
		g := mustNew(t, items, q, newLabels(t, 2, label))
		return collect(t, g), g.Unassigned()
	}

	r1, u1 := run()
	r2, u2 := run()
	if diff := cmp.Diff(r1, r2); diff != "" {
		t.Errorf("regions differ between runs:\n%s", diff)
	}
	if diff := cmp.Diff(u1, u2); diff != "" {
		t.Errorf("unassigned differ between runs:\n%s", diff)
	}
}

func TestRangeNotMutated(t *testing.T) {
	items := []int{3, 1, 2}
	g := mustNew(t, items, adjacency{}, newLabels(t, 1, map[int]string{}))
	items[0] = 99
	equal(t, "regions", []Region{{3}, {1}, {2}}, collect(t, g))
}
