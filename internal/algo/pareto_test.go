package algo

import (
	"math"
	"testing"

	"github.com/elektrokombinacija/mssvtde/internal/core"
)

func sol(completion, waiting float64) *core.Solution {
	return &core.Solution{CompletionTime: completion, WaitingTime: waiting}
}

func TestNonDominatedSortRanksFronts(t *testing.T) {
	sols := []*core.Solution{
		sol(1, 5), // front 1
		sol(5, 1), // front 1
		sol(3, 3), // front 1
		sol(2, 6), // dominated by (1,5)
		sol(6, 2), // dominated by (5,1)
	}
	fronts := NonDominatedSort(sols)
	if len(fronts[0]) != 3 {
		t.Fatalf("front 1 size = %d, want 3", len(fronts[0]))
	}
	for _, i := range fronts[0] {
		if sols[i].ParetoRank != 1 {
			t.Fatalf("solution %d rank = %d, want 1", i, sols[i].ParetoRank)
		}
	}
	if len(fronts) < 2 {
		t.Fatalf("expected at least 2 fronts")
	}
	for _, i := range fronts[1] {
		if sols[i].ParetoRank != 2 {
			t.Fatalf("solution %d rank = %d, want 2", i, sols[i].ParetoRank)
		}
	}
}

func TestCrowdingDistanceExtremesAreInfinite(t *testing.T) {
	sols := []*core.Solution{sol(1, 10), sol(5, 5), sol(10, 1)}
	front := []int{0, 1, 2}
	AssignCrowdingDistance(sols, front)

	if !math.IsInf(sols[0].CrowdingDistance, 1) {
		t.Fatalf("extreme solution must get +Inf crowding distance")
	}
	if !math.IsInf(sols[2].CrowdingDistance, 1) {
		t.Fatalf("extreme solution must get +Inf crowding distance")
	}
	if math.IsInf(sols[1].CrowdingDistance, 1) || sols[1].CrowdingDistance <= 0 {
		t.Fatalf("interior solution crowding distance = %v, want finite positive", sols[1].CrowdingDistance)
	}
}

func TestCrowdingDistanceSkipsDegenerateSpread(t *testing.T) {
	sols := []*core.Solution{sol(1, 10), sol(1, 5), sol(1, 1)}
	front := []int{0, 1, 2}
	AssignCrowdingDistance(sols, front)
	if math.IsInf(sols[1].CrowdingDistance, 1) {
		t.Fatalf("interior crowding distance should not be infinite when completion-time spread is degenerate")
	}
}

func TestArchiveMaintainsNonDominance(t *testing.T) {
	a := NewArchive()
	if !a.Submit(sol(5, 5)) {
		t.Fatalf("first submission must be accepted")
	}
	if !a.Submit(sol(3, 3)) {
		t.Fatalf("dominating submission must be accepted")
	}
	if len(a.Members()) != 1 {
		t.Fatalf("archive size = %d, want 1 after (3,3) dominates (5,5)", len(a.Members()))
	}
	if a.Submit(sol(4, 4)) {
		t.Fatalf("submission dominated by an existing member must be rejected")
	}
	if !a.Submit(sol(1, 9)) {
		t.Fatalf("non-dominated submission must be accepted")
	}
	if len(a.Members()) != 2 {
		t.Fatalf("archive size = %d, want 2", len(a.Members()))
	}
	members := a.Members()
	for i := range members {
		for j := range members {
			if i == j {
				continue
			}
			if members[i].Dominates(members[j]) {
				t.Fatalf("archive member %d dominates member %d: violates non-dominance", i, j)
			}
		}
	}
}

func TestArchiveRejectsInfeasible(t *testing.T) {
	a := NewArchive()
	infeasible := sol(math.Inf(1), math.Inf(1))
	if a.Submit(infeasible) {
		t.Fatalf("infeasible solution must be rejected")
	}
	if len(a.Members()) != 0 {
		t.Fatalf("archive must remain empty")
	}
}
