package algo

import (
	"math"
	"sort"

	"github.com/elektrokombinacija/mssvtde/internal/core"
)

// crowdingDegenerateSpread is the objective-range floor below which a
// crowding-distance term is skipped rather than divided by a near-zero span.
const crowdingDegenerateSpread = 1e-6

// NonDominatedSort partitions sols into fronts (Deb's O(M*N^2) schema) and
// stamps each Solution's ParetoRank (1-indexed). The returned fronts are
// indices into sols, first front first.
func NonDominatedSort(sols []*core.Solution) [][]int {
	n := len(sols)
	dominationCount := make([]int, n)
	dominatedBy := make([][]int, n)

	var firstFront []int
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			switch {
			case sols[i].Dominates(sols[j]):
				dominatedBy[i] = append(dominatedBy[i], j)
			case sols[j].Dominates(sols[i]):
				dominationCount[i]++
			}
		}
		if dominationCount[i] == 0 {
			firstFront = append(firstFront, i)
		}
	}

	fronts := [][]int{firstFront}
	rank := 1
	for _, i := range firstFront {
		sols[i].ParetoRank = rank
	}

	current := firstFront
	for len(current) > 0 {
		var next []int
		for _, i := range current {
			for _, j := range dominatedBy[i] {
				dominationCount[j]--
				if dominationCount[j] == 0 {
					next = append(next, j)
				}
			}
		}
		rank++
		if len(next) == 0 {
			break
		}
		for _, j := range next {
			sols[j].ParetoRank = rank
		}
		fronts = append(fronts, next)
		current = next
	}
	return fronts
}

// AssignCrowdingDistance computes crowding distance over one front (a slice
// of indices into sols), per objective: the two extremes get +Inf, interior
// points accumulate (next-prev)/(max-min), and a term is skipped whenever
// the objective's spread across the front is below crowdingDegenerateSpread.
func AssignCrowdingDistance(sols []*core.Solution, front []int) {
	n := len(front)
	if n == 0 {
		return
	}
	for _, i := range front {
		sols[i].CrowdingDistance = 0
	}
	if n <= 2 {
		for _, i := range front {
			sols[i].CrowdingDistance = math.Inf(1)
		}
		return
	}

	accumulate := func(objective func(*core.Solution) float64) {
		ordered := append([]int(nil), front...)
		sort.Slice(ordered, func(a, b int) bool {
			return objective(sols[ordered[a]]) < objective(sols[ordered[b]])
		})
		objMin := objective(sols[ordered[0]])
		objMax := objective(sols[ordered[n-1]])
		sols[ordered[0]].CrowdingDistance = math.Inf(1)
		sols[ordered[n-1]].CrowdingDistance = math.Inf(1)
		if objMax-objMin < crowdingDegenerateSpread {
			return
		}
		for k := 1; k < n-1; k++ {
			prev := objective(sols[ordered[k-1]])
			next := objective(sols[ordered[k+1]])
			cur := sols[ordered[k]]
			if math.IsInf(cur.CrowdingDistance, 1) {
				continue
			}
			cur.CrowdingDistance += (next - prev) / (objMax - objMin)
		}
	}

	accumulate(func(s *core.Solution) float64 { return s.CompletionTime })
	accumulate(func(s *core.Solution) float64 { return s.WaitingTime })
}

// Archive is a pairwise non-dominated set of feasible Solutions.
type Archive struct {
	members []*core.Solution
}

// NewArchive returns an empty archive.
func NewArchive() *Archive {
	return &Archive{}
}

// Members returns the archive's current contents. Callers must not mutate
// the returned slice's backing elements' identity, only read them.
func (a *Archive) Members() []*core.Solution {
	return a.members
}

// Submit offers s to the archive. Infeasible solutions are rejected. If any
// current member dominates s, s is rejected. Otherwise every member
// dominated by s is evicted and s is inserted. Returns whether s was kept.
func (a *Archive) Submit(s *core.Solution) bool {
	if !s.Feasible() {
		return false
	}
	for _, m := range a.members {
		if m.Dominates(s) {
			return false
		}
	}
	kept := a.members[:0]
	for _, m := range a.members {
		if !s.Dominates(m) {
			kept = append(kept, m)
		}
	}
	a.members = append(kept, s)
	return true
}
