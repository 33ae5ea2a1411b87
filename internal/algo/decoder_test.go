package algo

import (
	"math/rand"
	"testing"

	"github.com/elektrokombinacija/mssvtde/internal/core"
)

func smallInstance() *core.Instance {
	return &core.Instance{
		NumTrucks: 2,
		NumDrones: 2,
		Customers: []core.Customer{
			{ID: 1, X: 10, Y: 0, Demand: 1},
			{ID: 2, X: 0, Y: 10, Demand: 1, StaffOnly: true},
			{ID: 3, X: -10, Y: 0, Demand: 1},
			{ID: 4, X: 0, Y: -10, Demand: 1},
		},
		DroneParams: core.DroneParams{
			MaxCapacity: 5,
			MaxEnergy:   1e9,
			CruiseSpeed: 15,
			Beta:        0.1,
			Gamma:       1,
		},
		TruckParams: defaultTruckParams(),
	}
}

func TestDecodePermutationPreservation(t *testing.T) {
	inst := smallInstance()
	perm := []core.CustomerID{3, 1, 4, 2}
	rng := rand.New(rand.NewSource(1))

	sol := DecodeExact(inst, perm, rng)

	seen := map[core.CustomerID]int{}
	for _, r := range sol.TruckRoutes {
		for _, cid := range r.Customers {
			seen[cid]++
			if cid == core.DepotID {
				t.Fatalf("depot id must never appear in a route")
			}
		}
	}
	for _, trips := range sol.DroneRoutes {
		for _, trip := range trips {
			for _, cid := range trip.Customers {
				seen[cid]++
			}
		}
	}
	for _, cid := range perm {
		if seen[cid] != 1 {
			t.Fatalf("customer %d served %d times, want exactly 1", cid, seen[cid])
		}
	}
	if len(seen) != len(perm) {
		t.Fatalf("solution serves %d distinct customers, want %d", len(seen), len(perm))
	}
}

func TestDecodeTruckOnlyRespect(t *testing.T) {
	inst := smallInstance()
	perm := []core.CustomerID{1, 2, 3, 4}
	rng := rand.New(rand.NewSource(7))

	sol := DecodeExact(inst, perm, rng)

	for _, trips := range sol.DroneRoutes {
		for _, trip := range trips {
			for _, cid := range trip.Customers {
				if cid == 2 {
					t.Fatalf("truck-only customer 2 must never appear in a drone trip")
				}
			}
		}
	}
	found := false
	for _, r := range sol.TruckRoutes {
		for _, cid := range r.Customers {
			if cid == 2 {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("truck-only customer 2 must appear in some truck route")
	}
}

func TestDecodeDroneCapacityVetoFallsBackToTruck(t *testing.T) {
	inst := &core.Instance{
		NumTrucks: 1,
		NumDrones: 1,
		Customers: []core.Customer{
			{ID: 1, X: 5, Y: 0, Demand: 10},
		},
		DroneParams: core.DroneParams{MaxCapacity: 5, MaxEnergy: 1e9, CruiseSpeed: 15, Beta: 0.1, Gamma: 1},
		TruckParams: defaultTruckParams(),
	}
	rng := rand.New(rand.NewSource(3))
	sol := DecodeExact(inst, []core.CustomerID{1}, rng)

	if !sol.Feasible() {
		t.Fatalf("decoder must produce a feasible solution when a truck fallback exists")
	}
	for _, trips := range sol.DroneRoutes {
		if len(trips) != 0 {
			t.Fatalf("capacity-violating customer must not be routed via drone")
		}
	}
	if sol.TruckRoutes[0].IsEmpty() {
		t.Fatalf("customer must be routed via the truck")
	}
}

func TestDecodeExactAndIncrementalAgree(t *testing.T) {
	inst := smallInstance()
	perm := []core.CustomerID{2, 4, 1, 3}

	exact := DecodeExact(inst, perm, rand.New(rand.NewSource(42)))
	incremental := DecodeIncremental(inst, perm, rand.New(rand.NewSource(42)))

	if !almostEqual(exact.CompletionTime, incremental.CompletionTime) {
		t.Fatalf("completion time mismatch: exact=%v incremental=%v", exact.CompletionTime, incremental.CompletionTime)
	}
	if !almostEqual(exact.WaitingTime, incremental.WaitingTime) {
		t.Fatalf("waiting time mismatch: exact=%v incremental=%v", exact.WaitingTime, incremental.WaitingTime)
	}
	for i := range exact.TruckRoutes {
		if len(exact.TruckRoutes[i].Customers) != len(incremental.TruckRoutes[i].Customers) {
			t.Fatalf("truck route %d length mismatch", i)
		}
	}
}

func TestDecodeIdempotentWithSameSeed(t *testing.T) {
	inst := smallInstance()
	perm := []core.CustomerID{1, 2, 3, 4}

	s1 := DecodeExact(inst, perm, rand.New(rand.NewSource(99)))
	s2 := DecodeExact(inst, perm, rand.New(rand.NewSource(99)))

	if !almostEqual(s1.CompletionTime, s2.CompletionTime) || !almostEqual(s1.WaitingTime, s2.WaitingTime) {
		t.Fatalf("decoding the same permutation with the same seed must be deterministic")
	}
}
