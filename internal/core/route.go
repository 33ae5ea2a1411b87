package core

// Route is an ordered sequence of customer identifiers served by one
// vehicle leg (a truck's whole route, or a single drone trip). Depot
// endpoints are implicit and never stored. An empty route is legal and
// costs nothing.
type Route struct {
	Customers      []CustomerID
	CompletionTime float64
	WaitingTime    float64
}

// IsEmpty reports whether the route serves no customers.
func (r *Route) IsEmpty() bool {
	return len(r.Customers) == 0
}

// Clone returns a deep copy of the route.
func (r *Route) Clone() Route {
	out := Route{
		Customers:      append([]CustomerID(nil), r.Customers...),
		CompletionTime: r.CompletionTime,
		WaitingTime:    r.WaitingTime,
	}
	return out
}

// TotalDemand sums the demand of every customer on the route.
func (r *Route) TotalDemand(inst *Instance) float64 {
	var total float64
	for _, id := range r.Customers {
		if c, ok := inst.CustomerByID(id); ok {
			total += c.Demand
		}
	}
	return total
}
