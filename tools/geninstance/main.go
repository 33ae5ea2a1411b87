// Command geninstance generates deterministic synthetic MSSVTDE instance
// files in the plain-text format internal/instio reads.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

// genParams controls synthetic instance generation.
type genParams struct {
	seed             int64
	numCustomers     int
	numTrucks        int
	numDrones        int
	maxFlightTime    float64
	beta             float64
	areaSize         float64
	staffOnlyRatio   float64
	minDemand        float64
	maxDemand        float64
	truckServiceMin  float64
	truckServiceMax  float64
	droneServiceMin  float64
	droneServiceMax  float64
}

func main() {
	seed := flag.Int64("seed", 42, "random seed for deterministic generation")
	numCustomers := flag.Int("customers", 20, "number of customers")
	numTrucks := flag.Int("trucks", 2, "number of trucks")
	numDrones := flag.Int("drones", 2, "number of drones")
	maxFlightTime := flag.Float64("max-flight-time", 1200, "drone max flight time (seconds)")
	beta := flag.Float64("beta", 0.5, "drone energy coefficient beta")
	areaSize := flag.Float64("area", 100, "customers are placed within [-area, area] on each axis")
	staffOnlyRatio := flag.Float64("staff-only", 0.2, "fraction of customers requiring a truck")
	output := flag.String("output", "data/generated.txt", "output instance file path")
	flag.Parse()

	params := genParams{
		seed:            *seed,
		numCustomers:    *numCustomers,
		numTrucks:       *numTrucks,
		numDrones:       *numDrones,
		maxFlightTime:   *maxFlightTime,
		beta:            *beta,
		areaSize:        *areaSize,
		staffOnlyRatio:  *staffOnlyRatio,
		minDemand:       0.5,
		maxDemand:       3.0,
		truckServiceMin: 20,
		truckServiceMax: 60,
		droneServiceMin: 5,
		droneServiceMax: 20,
	}

	content := generateInstance(params)

	if dir := filepath.Dir(*output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output directory %s: %v\n", dir, err)
			os.Exit(1)
		}
	}
	if err := os.WriteFile(*output, []byte(content), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing instance %s: %v\n", *output, err)
		os.Exit(1)
	}

	fmt.Printf("Generated: %s (%d customers, %d trucks, %d drones)\n",
		*output, params.numCustomers, params.numTrucks, params.numDrones)
}

// generateInstance renders a random instance matching the §6.1 text format.
func generateInstance(p genParams) string {
	rng := rand.New(rand.NewSource(p.seed))

	var b strings.Builder
	fmt.Fprintf(&b, "trucks %d\n", p.numTrucks)
	fmt.Fprintf(&b, "drones %d\n", p.numDrones)
	fmt.Fprintf(&b, "maxFlightTime %g\n", p.maxFlightTime)
	fmt.Fprintf(&b, "customers %d\n", p.numCustomers)
	b.WriteString("x y demand staffOnly serviceTimeTruck serviceTimeDrone\n")

	for i := 0; i < p.numCustomers; i++ {
		x := uniform(rng, -p.areaSize, p.areaSize)
		y := uniform(rng, -p.areaSize, p.areaSize)
		demand := uniform(rng, p.minDemand, p.maxDemand)
		staffOnly := 0
		if rng.Float64() < p.staffOnlyRatio {
			staffOnly = 1
		}
		serviceTruck := uniform(rng, p.truckServiceMin, p.truckServiceMax)
		serviceDrone := uniform(rng, p.droneServiceMin, p.droneServiceMax)
		fmt.Fprintf(&b, "%g %g %g %d %g %g\n", x, y, demand, staffOnly, serviceTruck, serviceDrone)
	}

	b.WriteString("beta\n")
	fmt.Fprintf(&b, "%g\n", p.beta)
	return b.String()
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
