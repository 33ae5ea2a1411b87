package algo

import (
	"io"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/elektrokombinacija/mssvtde/internal/core"
)

func idSlice(values ...int) []core.CustomerID {
	out := make([]core.CustomerID, len(values))
	for i, v := range values {
		out[i] = core.CustomerID(v)
	}
	return out
}

func isPermutationOf(child, reference []core.CustomerID) bool {
	if len(child) != len(reference) {
		return false
	}
	seen := make(map[core.CustomerID]int)
	for _, v := range reference {
		seen[v]++
	}
	for _, v := range child {
		seen[v]--
		if seen[v] < 0 {
			return false
		}
	}
	return true
}

func TestOrderCrossoverSegmentAndPermutation(t *testing.T) {
	p1 := idSlice(1, 2, 3, 4, 5, 6, 7)
	p2 := idSlice(3, 5, 7, 2, 1, 6, 4)

	child := orderCrossoverAt(p1, p2, 2, 4)

	if child[2] != 3 || child[3] != 4 || child[4] != 5 {
		t.Fatalf("segment [2:5) = %v, want parent1's (3,4,5)", child[2:5])
	}
	if !isPermutationOf(child, p1) {
		t.Fatalf("child %v is not a permutation of 1..7", child)
	}
}

func TestOrderCrossoverAlwaysProducesPermutation(t *testing.T) {
	p1 := idSlice(1, 2, 3, 4, 5, 6, 7)
	p2 := idSlice(3, 5, 7, 2, 1, 6, 4)
	rng := rand.New(rand.NewSource(123))

	for i := 0; i < 50; i++ {
		child := orderCrossover(p1, p2, rng)
		if !isPermutationOf(child, p1) {
			t.Fatalf("child %v is not a permutation of 1..7", child)
		}
	}
}

func TestSwapMutationPreservesPermutation(t *testing.T) {
	perm := idSlice(1, 2, 3, 4, 5)
	rng := rand.New(rand.NewSource(9))
	mutated := swapMutation(perm, 0.5, rng)
	if !isPermutationOf(mutated, perm) {
		t.Fatalf("mutated %v is not a permutation of input", mutated)
	}
}

func TestEnginePowerFormula(t *testing.T) {
	e := &Engine{}
	emp := &core.Empire{
		Imperialist: core.Individual{Solution: &core.Solution{ParetoRank: 1}},
		Colonies: []core.Individual{
			{Solution: &core.Solution{ParetoRank: 1}},
			{Solution: &core.Solution{ParetoRank: 3}},
		},
	}
	e.recomputePower(emp)

	want := 1.0/2.0 + 0.1*((1.0/2.0+1.0/4.0)/2.0)
	if !almostEqual(emp.Power, want) {
		t.Fatalf("power = %v, want %v", emp.Power, want)
	}
}

func TestEnginePowerWithNoColonies(t *testing.T) {
	e := &Engine{}
	emp := &core.Empire{Imperialist: core.Individual{Solution: &core.Solution{ParetoRank: 2}}}
	e.recomputePower(emp)
	if !almostEqual(emp.Power, 1.0/3.0) {
		t.Fatalf("power = %v, want 1/3 with no colonies", emp.Power)
	}
}

func TestEngineRunProducesNonDominatedArchive(t *testing.T) {
	inst := smallInstance()
	logger := zerolog.New(io.Discard)
	rng := rand.New(rand.NewSource(77))

	engine := NewEngine(inst, 8, 2, 5, rng, logger)
	archive := engine.Run()

	members := archive.Members()
	if len(members) == 0 {
		t.Fatalf("expected a non-empty archive")
	}
	for i := range members {
		for j := range members {
			if i == j {
				continue
			}
			if members[i].Dominates(members[j]) {
				t.Fatalf("archive member %d dominates member %d", i, j)
			}
		}
	}
}

func TestEngineConvergesOrExhaustsIterations(t *testing.T) {
	inst := smallInstance()
	logger := zerolog.New(io.Discard)
	rng := rand.New(rand.NewSource(3))

	engine := NewEngine(inst, 6, 4, 3, rng, logger)
	engine.Run()

	if len(engine.empires) == 0 {
		t.Fatalf("engine must retain at least one empire")
	}
}
