// Package core defines the immutable domain model for MSSVTDE: customers,
// the depot, time-dependent truck speed, drone energy parameters, and the
// problem Instance built from them.
package core

import "math"

// CustomerID identifies a customer; the depot is always 0.
type CustomerID int

// DepotID is the reserved identifier for the depot node.
const DepotID CustomerID = 0

// Customer is a sample-collection site. Immutable after load.
type Customer struct {
	ID               CustomerID
	X, Y             float64
	Demand           float64 // sample weight
	StaffOnly        bool    // truck-only (requires a technician)
	ServiceTimeTruck float64
	ServiceTimeDrone float64
}

// TimeInterval is a half-open [Start, End) window with a truck speed factor.
// Intervals partition the operational day contiguously and in order.
type TimeInterval struct {
	Start, End float64
	Sigma      float64 // speed factor, multiplies TruckParams.MaxSpeed
}

// DroneParams bounds a drone's capacity and energy envelope.
//
// TakeoffSpeed and LandingSpeed are declared (per the instance format's
// fixed defaults) but unused in any evaluation formula: both the original
// ICAHGS implementation and this port only ever use CruiseSpeed for drone
// legs (see Open Question 3 in DESIGN.md). MaxFlightTime is likewise parsed
// but not enforced as a feasibility bound: the original never checks it
// against a trip's duration, and the ported feasibility invariant is
// capacity and energy alone (see Open Question 4 in DESIGN.md).
type DroneParams struct {
	MaxCapacity   float64 // kg
	MaxEnergy     float64 // same units as (Beta*L + Gamma) * seconds; no conversion is applied
	TakeoffSpeed  float64 // m/s, unused (see doc above)
	CruiseSpeed   float64 // m/s
	LandingSpeed  float64 // m/s, unused (see doc above)
	Beta          float64 // energy/time per unit mass; at load L, power = Beta*L + Gamma
	Gamma         float64 // baseline energy/time
	MaxFlightTime float64 // seconds, per trip; parsed but not enforced (see doc above)
}

// TruckParams bounds truck speed; the schedule must cover the whole planning
// horizon as contiguous, ordered intervals.
type TruckParams struct {
	MaxSpeed  float64
	Intervals []TimeInterval
}

// Instance is the immutable problem definition: fleet sizes, customers, and
// vehicle parameter tables. Built once at startup and read-only thereafter.
type Instance struct {
	NumTrucks   int
	NumDrones   int
	Customers   []Customer // index i holds CustomerID i+1
	DroneParams DroneParams
	TruckParams TruckParams
}

// NumCustomers returns the number of customers in the instance.
func (inst *Instance) NumCustomers() int {
	return len(inst.Customers)
}

// CustomerByID returns the customer with the given id, or false if id is the
// depot or out of range.
func (inst *Instance) CustomerByID(id CustomerID) (Customer, bool) {
	if id <= 0 || int(id) > len(inst.Customers) {
		return Customer{}, false
	}
	return inst.Customers[id-1], true
}

// position returns the (x, y) of a node, depot included.
func (inst *Instance) position(id CustomerID) (float64, float64) {
	if id == DepotID {
		return 0, 0
	}
	c, ok := inst.CustomerByID(id)
	if !ok {
		return 0, 0
	}
	return c.X, c.Y
}

// GetDistance returns the Euclidean distance between two nodes (0 = depot).
func (inst *Instance) GetDistance(a, b CustomerID) float64 {
	ax, ay := inst.position(a)
	bx, by := inst.position(b)
	dx, dy := bx-ax, by-ay
	return math.Sqrt(dx*dx + dy*dy)
}

// SpeedFactorAt returns the congestion factor sigma for clock t and the end
// time of the interval containing it. If t lies beyond all intervals, the
// last interval's sigma is used and intervalEnd is +Inf so callers never
// loop on it again.
func (tp *TruckParams) SpeedFactorAt(t float64) (sigma, intervalEnd float64) {
	if len(tp.Intervals) == 0 {
		return 1.0, math.Inf(1)
	}
	for _, iv := range tp.Intervals {
		if t >= iv.Start && t < iv.End {
			return iv.Sigma, iv.End
		}
	}
	last := tp.Intervals[len(tp.Intervals)-1]
	return last.Sigma, math.Inf(1)
}
