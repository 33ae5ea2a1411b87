package algo

import (
	"math/rand"

	"github.com/elektrokombinacija/mssvtde/internal/core"
)

const (
	tabuTenure           = 7
	noImprovementLimit   = 20
)

// moveKind tags a local-search move for tabu bookkeeping.
type moveKind int

const (
	moveKindRelocate moveKind = iota
	moveKindSwap
)

// tabuEntry blocks further moves of the same kind on the same customer.
type tabuEntry struct {
	customer core.CustomerID
	kind     moveKind
}

// tabuList is a tenure-bounded, insertion-order-evicted set of tabuEntry.
type tabuList struct {
	entries []tabuEntry
	tenure  int
}

func newTabuList(tenure int) *tabuList {
	return &tabuList{tenure: tenure}
}

func (tl *tabuList) contains(customer core.CustomerID, kind moveKind) bool {
	for _, e := range tl.entries {
		if e.customer == customer && e.kind == kind {
			return true
		}
	}
	return false
}

func (tl *tabuList) add(customer core.CustomerID, kind moveKind) {
	tl.entries = append(tl.entries, tabuEntry{customer: customer, kind: kind})
	if len(tl.entries) > tl.tenure {
		tl.entries = tl.entries[len(tl.entries)-tl.tenure:]
	}
}

// localMove is a tagged variant over the two local-search neighborhoods.
type localMove interface {
	isLocalMove()
}

// relocateLocalMove moves Customer to Target, a location described by the
// same insertionMove variant the Decoder uses.
type relocateLocalMove struct {
	Customer core.CustomerID
	Target   insertionMove
}

func (relocateLocalMove) isLocalMove() {}

// swapLocalMove exchanges the positions of A and B wherever they currently
// sit.
type swapLocalMove struct {
	A, B core.CustomerID
}

func (swapLocalMove) isLocalMove() {}

type localCandidate struct {
	customer core.CustomerID
	kind     moveKind
	move     localMove
}

// LocalSearch improves start for up to budget iterations using a
// tabu-guarded relocate/swap neighborhood. It always returns a Solution at
// least as good, by dominance, as start.
func LocalSearch(inst *core.Instance, start *core.Solution, budget int, rng *rand.Rand) *core.Solution {
	best := start.Clone()
	current := start.Clone()
	tabu := newTabuList(tabuTenure)
	noImprove := 0

	for iter := 0; iter < budget; iter++ {
		candidates := generateLocalMoves(inst, current)
		if len(candidates) == 0 {
			break
		}

		var (
			bestClone *core.Solution
			bestCost  float64
			bestCid   core.CustomerID
			bestKind  moveKind
			found     bool
		)
		for _, c := range candidates {
			if tabu.contains(c.customer, c.kind) {
				continue
			}
			clone := current.Clone()
			applyLocalMove(clone, c.move)
			Evaluate(inst, clone)
			if !clone.Feasible() {
				continue
			}
			cost := 0.5*(clone.CompletionTime-current.CompletionTime) + 0.5*(clone.WaitingTime-current.WaitingTime)
			if !found || cost < bestCost {
				bestClone, bestCost, bestCid, bestKind, found = clone, cost, c.customer, c.kind, true
			}
		}
		if !found {
			break
		}

		current = bestClone
		tabu.add(bestCid, bestKind)

		if current.Dominates(best) {
			best = current.Clone()
			noImprove = 0
		} else {
			noImprove++
			if noImprove >= noImprovementLimit {
				break
			}
		}
	}
	return best
}

// generateLocalMoves enumerates every relocate and swap candidate for sol.
func generateLocalMoves(inst *core.Instance, sol *core.Solution) []localCandidate {
	served := collectServed(sol)
	var moves []localCandidate

	for _, cid := range served {
		cust, ok := inst.CustomerByID(cid)
		if !ok {
			continue
		}
		without := sol.Clone()
		removeCustomerFrom(without, cid)
		for _, target := range candidateMoves(inst, without, cust) {
			moves = append(moves, localCandidate{
				customer: cid,
				kind:     moveKindRelocate,
				move:     relocateLocalMove{Customer: cid, Target: target},
			})
		}
	}

	for i := 0; i < len(served); i++ {
		for j := i + 1; j < len(served); j++ {
			a, b := served[i], served[j]
			custA, _ := inst.CustomerByID(a)
			custB, _ := inst.CustomerByID(b)
			locA := locateCustomer(sol, a)
			locB := locateCustomer(sol, b)
			if locA == nil || locB == nil {
				continue
			}
			if custA.StaffOnly && !locB.truck {
				continue
			}
			if custB.StaffOnly && !locA.truck {
				continue
			}
			moves = append(moves, localCandidate{
				customer: a,
				kind:     moveKindSwap,
				move:     swapLocalMove{A: a, B: b},
			})
		}
	}
	return moves
}

func applyLocalMove(sol *core.Solution, move localMove) {
	switch m := move.(type) {
	case relocateLocalMove:
		removeCustomerFrom(sol, m.Customer)
		applyInsertionTarget(sol, m.Customer, m.Target)
	case swapLocalMove:
		locA := locateCustomer(sol, m.A)
		locB := locateCustomer(sol, m.B)
		if locA == nil || locB == nil {
			return
		}
		setCustomerAt(sol, locA, m.B)
		setCustomerAt(sol, locB, m.A)
	}
}

func applyInsertionTarget(sol *core.Solution, cid core.CustomerID, move insertionMove) {
	switch m := move.(type) {
	case truckMove:
		r := &sol.TruckRoutes[m.TruckIdx]
		r.Customers = insertAt(r.Customers, m.Pos, cid)
	case droneAppendMove:
		trip := &sol.DroneRoutes[m.DroneIdx][m.TripIdx]
		trip.Customers = append(trip.Customers, cid)
	case droneNewTripMove:
		sol.DroneRoutes[m.DroneIdx] = append(sol.DroneRoutes[m.DroneIdx], core.Route{Customers: []core.CustomerID{cid}})
	}
}

// location pinpoints where a customer currently sits in a Solution.
type location struct {
	truck    bool
	truckIdx int
	droneIdx int
	tripIdx  int
	pos      int
}

func locateCustomer(sol *core.Solution, cid core.CustomerID) *location {
	for t, route := range sol.TruckRoutes {
		for p, c := range route.Customers {
			if c == cid {
				return &location{truck: true, truckIdx: t, pos: p}
			}
		}
	}
	for d, trips := range sol.DroneRoutes {
		for ti, trip := range trips {
			for p, c := range trip.Customers {
				if c == cid {
					return &location{truck: false, droneIdx: d, tripIdx: ti, pos: p}
				}
			}
		}
	}
	return nil
}

func removeCustomerFrom(sol *core.Solution, cid core.CustomerID) {
	loc := locateCustomer(sol, cid)
	if loc == nil {
		return
	}
	if loc.truck {
		r := &sol.TruckRoutes[loc.truckIdx]
		r.Customers = append(r.Customers[:loc.pos], r.Customers[loc.pos+1:]...)
		return
	}
	trip := &sol.DroneRoutes[loc.droneIdx][loc.tripIdx]
	trip.Customers = append(trip.Customers[:loc.pos], trip.Customers[loc.pos+1:]...)
}

func setCustomerAt(sol *core.Solution, loc *location, cid core.CustomerID) {
	if loc.truck {
		sol.TruckRoutes[loc.truckIdx].Customers[loc.pos] = cid
		return
	}
	sol.DroneRoutes[loc.droneIdx][loc.tripIdx].Customers[loc.pos] = cid
}

func collectServed(sol *core.Solution) []core.CustomerID {
	var out []core.CustomerID
	for _, r := range sol.TruckRoutes {
		out = append(out, r.Customers...)
	}
	for _, trips := range sol.DroneRoutes {
		for _, trip := range trips {
			out = append(out, trip.Customers...)
		}
	}
	return out
}
