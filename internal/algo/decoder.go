package algo

import (
	"math"
	"math/rand"
	"sort"

	"github.com/elektrokombinacija/mssvtde/internal/core"
)

// insertionTopK is the width of the random tie-break window over ascending-
// cost feasible moves.
const insertionTopK = 3

// insertionMove is a tagged variant over the three ways a customer can be
// inserted into a Solution.
type insertionMove interface {
	isInsertionMove()
}

// truckMove inserts the customer at Pos within truck TruckIdx's route.
type truckMove struct {
	TruckIdx int
	Pos      int
}

func (truckMove) isInsertionMove() {}

// droneAppendMove appends the customer to drone DroneIdx's existing trip
// TripIdx.
type droneAppendMove struct {
	DroneIdx int
	TripIdx  int
}

func (droneAppendMove) isInsertionMove() {}

// droneNewTripMove starts a fresh trip on drone DroneIdx containing only the
// customer being inserted.
type droneNewTripMove struct {
	DroneIdx int
}

func (droneNewTripMove) isInsertionMove() {}

// scorer evaluates the hypothetical system completion and waiting time that
// would result from applying move to sol, without mutating sol.
type scorer func(inst *core.Instance, sol *core.Solution, cid core.CustomerID, move insertionMove) (completion, waiting float64, feasible bool)

// DecodeExact builds a Solution from perm by, for each candidate insertion,
// cloning the whole Solution, applying the move, and fully re-evaluating it.
func DecodeExact(inst *core.Instance, perm []core.CustomerID, rng *rand.Rand) *core.Solution {
	return decode(inst, perm, rng, evalMoveExact)
}

// DecodeIncremental builds a Solution from perm using closed-form per-route
// re-evaluation: only the route or drone-trip-chain touched by a candidate
// move is recomputed, and the system aggregates are derived from the
// Solution's cached per-route times. Produces the same final Solution as
// DecodeExact for the same permutation and generator state.
func DecodeIncremental(inst *core.Instance, perm []core.CustomerID, rng *rand.Rand) *core.Solution {
	return decode(inst, perm, rng, evalMoveIncremental)
}

func decode(inst *core.Instance, perm []core.CustomerID, rng *rand.Rand, score scorer) *core.Solution {
	sol := core.NewSolution(inst)
	Evaluate(inst, sol)

	served := make(map[core.CustomerID]bool, len(perm))
	for _, cid := range perm {
		if cid == core.DepotID || served[cid] {
			continue
		}
		cust, ok := inst.CustomerByID(cid)
		if !ok {
			continue
		}
		served[cid] = true

		best := bestMove(inst, sol, cust, cid, score, rng)
		if best == nil {
			continue
		}
		applyMove(inst, sol, cid, best)
	}
	return sol
}

type candidateScore struct {
	move insertionMove
	cost float64
}

// bestMove collects every feasible candidate, sorts by cost ascending, and
// returns a uniformly random pick among the top insertionTopK (or fewer).
func bestMove(inst *core.Instance, sol *core.Solution, cust core.Customer, cid core.CustomerID, score scorer, rng *rand.Rand) insertionMove {
	var candidates []candidateScore
	for _, mv := range candidateMoves(inst, sol, cust) {
		completion, waiting, feasible := score(inst, sol, cid, mv)
		if !feasible {
			continue
		}
		cost := 0.5*(completion-sol.CompletionTime) + 0.5*(waiting-sol.WaitingTime)
		candidates = append(candidates, candidateScore{move: mv, cost: cost})
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].cost < candidates[j].cost })

	k := insertionTopK
	if len(candidates) < k {
		k = len(candidates)
	}
	return candidates[rng.Intn(k)].move
}

// candidateMoves enumerates every legal insertion move for cust. Truck-only
// customers receive only truck moves.
func candidateMoves(inst *core.Instance, sol *core.Solution, cust core.Customer) []insertionMove {
	var moves []insertionMove
	for t := range sol.TruckRoutes {
		n := len(sol.TruckRoutes[t].Customers)
		for pos := 0; pos <= n; pos++ {
			moves = append(moves, truckMove{TruckIdx: t, Pos: pos})
		}
	}
	if cust.StaffOnly {
		return moves
	}
	for d := range sol.DroneRoutes {
		for ti, trip := range sol.DroneRoutes[d] {
			if trip.TotalDemand(inst)+cust.Demand > inst.DroneParams.MaxCapacity+feasibilityTolerance {
				continue
			}
			moves = append(moves, droneAppendMove{DroneIdx: d, TripIdx: ti})
		}
		moves = append(moves, droneNewTripMove{DroneIdx: d})
	}
	return moves
}

// applyMove structurally mutates sol to realize move, then fully
// re-evaluates it so stored per-route/trip times and aggregates are always
// consistent, regardless of which scorer chose the move.
func applyMove(inst *core.Instance, sol *core.Solution, cid core.CustomerID, move insertionMove) {
	switch m := move.(type) {
	case truckMove:
		route := &sol.TruckRoutes[m.TruckIdx]
		route.Customers = insertAt(route.Customers, m.Pos, cid)
	case droneAppendMove:
		trip := &sol.DroneRoutes[m.DroneIdx][m.TripIdx]
		trip.Customers = append(trip.Customers, cid)
	case droneNewTripMove:
		sol.DroneRoutes[m.DroneIdx] = append(sol.DroneRoutes[m.DroneIdx], core.Route{Customers: []core.CustomerID{cid}})
	}
	Evaluate(inst, sol)
}

func insertAt(customers []core.CustomerID, pos int, cid core.CustomerID) []core.CustomerID {
	out := make([]core.CustomerID, 0, len(customers)+1)
	out = append(out, customers[:pos]...)
	out = append(out, cid)
	out = append(out, customers[pos:]...)
	return out
}

// evalMoveExact scores a move by cloning the whole Solution, applying the
// move, and running the full Route Evaluator over it.
func evalMoveExact(inst *core.Instance, sol *core.Solution, cid core.CustomerID, move insertionMove) (completion, waiting float64, feasible bool) {
	clone := sol.Clone()
	switch m := move.(type) {
	case truckMove:
		route := &clone.TruckRoutes[m.TruckIdx]
		route.Customers = insertAt(route.Customers, m.Pos, cid)
	case droneAppendMove:
		trip := &clone.DroneRoutes[m.DroneIdx][m.TripIdx]
		trip.Customers = append(trip.Customers, cid)
	case droneNewTripMove:
		clone.DroneRoutes[m.DroneIdx] = append(clone.DroneRoutes[m.DroneIdx], core.Route{Customers: []core.CustomerID{cid}})
	}
	Evaluate(inst, clone)
	if !clone.Feasible() {
		return 0, 0, false
	}
	return clone.CompletionTime, clone.WaitingTime, true
}

// evalMoveIncremental scores a move from cached per-route/trip times,
// recomputing only the route or drone trip-chain the move touches.
func evalMoveIncremental(inst *core.Instance, sol *core.Solution, cid core.CustomerID, move insertionMove) (completion, waiting float64, feasible bool) {
	switch m := move.(type) {
	case truckMove:
		route := sol.TruckRoutes[m.TruckIdx].Clone()
		route.Customers = insertAt(route.Customers, m.Pos, cid)
		evaluateTruckRoute(inst, &route)

		otherMax := math.Max(maxTruckCompletionExcluding(sol, m.TruckIdx), maxDroneCompletionExcluding(sol, -1))
		newCompletion := math.Max(otherMax, route.CompletionTime)
		newWaiting := sol.WaitingTime - sol.TruckRoutes[m.TruckIdx].WaitingTime + route.WaitingTime
		return newCompletion, newWaiting, true

	case droneAppendMove:
		trips := cloneTrips(sol.DroneRoutes[m.DroneIdx])
		trips[m.TripIdx].Customers = append(append([]core.CustomerID(nil), trips[m.TripIdx].Customers...), cid)
		tripsCompletion, tripsWaiting, ok := evaluateDroneTrips(inst, trips)
		if !ok {
			return 0, 0, false
		}
		otherMax := math.Max(maxTruckCompletionExcluding(sol, -1), maxDroneCompletionExcluding(sol, m.DroneIdx))
		newCompletion := math.Max(otherMax, tripsCompletion)
		newWaiting := sol.WaitingTime - droneWaiting(sol.DroneRoutes[m.DroneIdx]) + tripsWaiting
		return newCompletion, newWaiting, true

	case droneNewTripMove:
		trips := cloneTrips(sol.DroneRoutes[m.DroneIdx])
		trips = append(trips, core.Route{Customers: []core.CustomerID{cid}})
		tripsCompletion, tripsWaiting, ok := evaluateDroneTrips(inst, trips)
		if !ok {
			return 0, 0, false
		}
		otherMax := math.Max(maxTruckCompletionExcluding(sol, -1), maxDroneCompletionExcluding(sol, m.DroneIdx))
		newCompletion := math.Max(otherMax, tripsCompletion)
		newWaiting := sol.WaitingTime - droneWaiting(sol.DroneRoutes[m.DroneIdx]) + tripsWaiting
		return newCompletion, newWaiting, true
	}
	return 0, 0, false
}

// maxTruckCompletionExcluding returns the largest non-empty truck route
// completion time, ignoring truck excludeIdx (pass -1 to exclude none).
func maxTruckCompletionExcluding(sol *core.Solution, excludeIdx int) float64 {
	var m float64
	for i, r := range sol.TruckRoutes {
		if i == excludeIdx || r.IsEmpty() {
			continue
		}
		if r.CompletionTime > m {
			m = r.CompletionTime
		}
	}
	return m
}

// maxDroneCompletionExcluding returns the largest non-empty drone trip
// completion time, ignoring drone excludeIdx (pass -1 to exclude none).
func maxDroneCompletionExcluding(sol *core.Solution, excludeIdx int) float64 {
	var m float64
	for d, trips := range sol.DroneRoutes {
		if d == excludeIdx {
			continue
		}
		for _, trip := range trips {
			if !trip.IsEmpty() && trip.CompletionTime > m {
				m = trip.CompletionTime
			}
		}
	}
	return m
}

func droneWaiting(trips []core.Route) float64 {
	var total float64
	for _, trip := range trips {
		total += trip.WaitingTime
	}
	return total
}

func cloneTrips(trips []core.Route) []core.Route {
	out := make([]core.Route, len(trips))
	for i := range trips {
		out[i] = trips[i].Clone()
	}
	return out
}
