// Package algo implements the MSSVTDE optimization engine: route
// evaluation, the permutation decoder, Pareto bookkeeping, the solution
// hasher, tabu local search, and the imperialist-competitive metaheuristic
// that coordinates them.
package algo

import (
	"math"

	"github.com/elektrokombinacija/mssvtde/internal/core"
)

// feasibilityTolerance absorbs floating-point slack at capacity/energy
// boundaries.
const feasibilityTolerance = 1e-9

// Evaluate computes completion and waiting times for every route and trip
// in sol, and sets the solution's aggregates. Any infeasible drone trip
// (capacity or energy violation) forces both aggregates to
// +Inf, per spec.
func Evaluate(inst *core.Instance, sol *core.Solution) {
	var systemCompletion float64
	var totalWaiting float64
	infeasible := false

	for i := range sol.TruckRoutes {
		evaluateTruckRoute(inst, &sol.TruckRoutes[i])
		route := &sol.TruckRoutes[i]
		if !route.IsEmpty() && route.CompletionTime > systemCompletion {
			systemCompletion = route.CompletionTime
		}
		totalWaiting += route.WaitingTime
	}

	for d := range sol.DroneRoutes {
		completion, waiting, ok := evaluateDroneTrips(inst, sol.DroneRoutes[d])
		if !ok {
			infeasible = true
			continue
		}
		if completion > systemCompletion {
			systemCompletion = completion
		}
		totalWaiting += waiting
	}

	if infeasible {
		sol.CompletionTime = math.Inf(1)
		sol.WaitingTime = math.Inf(1)
		return
	}
	sol.CompletionTime = systemCompletion
	sol.WaitingTime = totalWaiting
}

// evaluateTruckRoute sets route.CompletionTime and route.WaitingTime for a
// single truck route, honoring time-dependent travel.
func evaluateTruckRoute(inst *core.Instance, route *core.Route) {
	if route.IsEmpty() {
		route.CompletionTime = 0
		route.WaitingTime = 0
		return
	}

	tp := &inst.TruckParams
	clock := 0.0
	pos := core.DepotID
	arrivals := make([]float64, len(route.Customers))

	for i, cid := range route.Customers {
		dist := inst.GetDistance(pos, cid)
		clock += truckTravelTime(tp, clock, dist)
		arrivals[i] = clock
		if cust, ok := inst.CustomerByID(cid); ok {
			clock += cust.ServiceTimeTruck
		}
		pos = cid
	}
	clock += truckTravelTime(tp, clock, inst.GetDistance(pos, core.DepotID))

	route.CompletionTime = clock
	route.WaitingTime = sumWaiting(arrivals, clock)
}

// truckTravelTime returns the time to cover distance d starting the clock at
// t, honoring the piecewise-constant congestion schedule. Each iteration
// either finishes the traversal or advances to the next interval, so the
// loop always terminates.
func truckTravelTime(tp *core.TruckParams, t, d float64) float64 {
	var elapsed float64
	for d > 0 {
		sigma, intervalEnd := tp.SpeedFactorAt(t)
		speed := sigma * tp.MaxSpeed
		if speed <= 0 {
			break
		}
		if math.IsInf(intervalEnd, 1) {
			elapsed += d / speed
			return elapsed
		}
		remaining := intervalEnd - t
		coverable := speed * remaining
		if coverable >= d {
			elapsed += d / speed
			return elapsed
		}
		elapsed += remaining
		d -= coverable
		t = intervalEnd
	}
	return elapsed
}

// evaluateDroneTrips evaluates a drone's ordered trips, serializing them (a
// trip starts when the previous one returned to the depot), and reports the
// drone's overall completion time and total waiting time. ok is false if any
// trip violates capacity or energy.
func evaluateDroneTrips(inst *core.Instance, trips []core.Route) (completion, waiting float64, ok bool) {
	dp := &inst.DroneParams
	var cumulative float64
	for i := range trips {
		trip := &trips[i]
		duration, tripWaiting, feasible := evaluateDroneTrip(dp, inst, trip)
		if !feasible {
			return 0, 0, false
		}
		cumulative += duration
		trip.CompletionTime = cumulative
		trip.WaitingTime = tripWaiting
		waiting += tripWaiting
		if cumulative > completion {
			completion = cumulative
		}
	}
	return completion, waiting, true
}

// evaluateDroneTrip checks capacity/energy feasibility and returns the
// trip's own duration (relative to its own start) and waiting time;
// trip.CompletionTime/WaitingTime are left for the caller to stamp with
// the drone-level cumulative offset.
//
// MaxFlightTime is intentionally not checked here: the original
// implementation parses it but never references it in any feasibility
// computation, and the only testable drone-feasibility invariant ties
// feasibility to capacity and energy alone.
func evaluateDroneTrip(dp *core.DroneParams, inst *core.Instance, trip *core.Route) (duration, waiting float64, ok bool) {
	if trip.IsEmpty() {
		return 0, 0, true
	}

	if trip.TotalDemand(inst) > dp.MaxCapacity+feasibilityTolerance {
		return 0, 0, false
	}
	if droneEnergy(dp, inst, trip) > dp.MaxEnergy+feasibilityTolerance {
		return 0, 0, false
	}

	clock := 0.0
	pos := core.DepotID
	arrivals := make([]float64, len(trip.Customers))
	for i, cid := range trip.Customers {
		clock += inst.GetDistance(pos, cid) / dp.CruiseSpeed
		arrivals[i] = clock
		if cust, found := inst.CustomerByID(cid); found {
			clock += cust.ServiceTimeDrone
		}
		pos = cid
	}
	clock += inst.GetDistance(pos, core.DepotID) / dp.CruiseSpeed

	return clock, sumWaiting(arrivals, clock), true
}

// droneEnergy computes the total energy consumed by a trip under the
// load-varying power rule: while carrying load L, power = Beta*L + Gamma;
// a leg's energy is that power times the leg's travel time. Load drops
// after each customer is served, including for the final, empty-load leg
// back to the depot.
func droneEnergy(dp *core.DroneParams, inst *core.Instance, trip *core.Route) float64 {
	load := trip.TotalDemand(inst)
	pos := core.DepotID
	var energy float64

	for _, cid := range trip.Customers {
		dist := inst.GetDistance(pos, cid)
		power := dp.Beta*load + dp.Gamma
		energy += power * (dist / dp.CruiseSpeed)
		if cust, ok := inst.CustomerByID(cid); ok {
			load -= cust.Demand
		}
		pos = cid
	}
	dist := inst.GetDistance(pos, core.DepotID)
	power := dp.Beta*load + dp.Gamma
	energy += power * (dist / dp.CruiseSpeed)
	return energy
}

// sumWaiting returns Σ(returnTime - pickupTime) over every arrival.
func sumWaiting(arrivals []float64, returnTime float64) float64 {
	var total float64
	for _, arr := range arrivals {
		total += returnTime - arr
	}
	return total
}
