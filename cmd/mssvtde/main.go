// Command mssvtde runs the imperialist-competitive solver for the
// mixed-fleet sample-collection routing problem against an instance file
// and reports its Pareto-approximating set of routings.
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/elektrokombinacija/mssvtde/internal/algo"
	"github.com/elektrokombinacija/mssvtde/internal/core"
	"github.com/elektrokombinacija/mssvtde/internal/instio"
)

const (
	defaultInstanceFile   = "data/6.5.1.txt"
	defaultPopulationSize = 50
	defaultNumEmpires     = 5
	defaultMaxIterations  = 100
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	fmt.Println("=== ICAHGS for MSSVTDE ===")

	filename := defaultInstanceFile
	if len(os.Args) > 1 {
		filename = os.Args[1]
	}

	inst, err := instio.ReadInstance(filename)
	if err != nil {
		logger.Error().Err(err).Str("file", filename).Msg("failed to read instance file")
		os.Exit(1)
	}

	fmt.Println("\nInstance loaded successfully!")
	fmt.Printf("  Customers: %d\n", inst.NumCustomers())
	fmt.Printf("  Trucks: %d\n", inst.NumTrucks)
	fmt.Printf("  Drones: %d\n", inst.NumDrones)

	populationSize := defaultPopulationSize
	numEmpires := defaultNumEmpires
	maxIterations := defaultMaxIterations
	if len(os.Args) > 2 {
		populationSize = mustAtoi(os.Args[2], "populationSize", logger)
	}
	if len(os.Args) > 3 {
		numEmpires = mustAtoi(os.Args[3], "numEmpires", logger)
	}
	if len(os.Args) > 4 {
		maxIterations = mustAtoi(os.Args[4], "maxIterations", logger)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	engine := algo.NewEngine(inst, populationSize, numEmpires, maxIterations, rng, logger)

	start := time.Now()
	archive := engine.Run()
	elapsed := time.Since(start)

	solutions := append([]*core.Solution(nil), archive.Members()...)
	sort.Slice(solutions, func(i, j int) bool {
		if solutions[i].CompletionTime != solutions[j].CompletionTime {
			return solutions[i].CompletionTime < solutions[j].CompletionTime
		}
		return solutions[i].WaitingTime < solutions[j].WaitingTime
	})

	fmt.Println("\n=== Results ===")
	fmt.Printf("Computation time: %v\n", elapsed)
	fmt.Printf("Pareto front size: %d\n", len(solutions))

	numToPrint := 5
	if len(solutions) < numToPrint {
		numToPrint = len(solutions)
	}
	for i := 0; i < numToPrint; i++ {
		printSolution(solutions[i], i+1)
	}

	if err := exportResults(solutions, "results.csv"); err != nil {
		logger.Error().Err(err).Msg("failed to export results")
		os.Exit(1)
	}
}

func mustAtoi(s, name string, logger zerolog.Logger) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		logger.Error().Err(err).Str("arg", name).Msg("invalid integer argument")
		os.Exit(1)
	}
	return v
}

func printSolution(sol *core.Solution, index int) {
	fmt.Printf("\n--- Solution %d ---\n", index)
	fmt.Printf("System Completion Time: %.2f seconds\n", sol.CompletionTime)
	fmt.Printf("Total Sample Waiting Time: %.2f seconds\n", sol.WaitingTime)

	fmt.Println("\nTruck Routes:")
	for i, route := range sol.TruckRoutes {
		if route.IsEmpty() {
			continue
		}
		fmt.Printf("  Truck %d: Depot -> ", i)
		for _, cid := range route.Customers {
			fmt.Printf("%d -> ", cid)
		}
		fmt.Printf("Depot (Completion: %.2fs)\n", route.CompletionTime)
	}

	fmt.Println("\nDrone Routes:")
	for d, trips := range sol.DroneRoutes {
		if len(trips) == 0 {
			continue
		}
		fmt.Printf("  Drone %d:\n", d)
		for t, trip := range trips {
			fmt.Printf("    Trip %d: Depot -> ", t)
			for _, cid := range trip.Customers {
				fmt.Printf("%d -> ", cid)
			}
			fmt.Printf("Depot (Completion: %.2fs)\n", trip.CompletionTime)
		}
	}
}

func exportResults(solutions []*core.Solution, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filename, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"SolutionID", "CompletionTime", "TotalWaitingTime"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, sol := range solutions {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(sol.CompletionTime, 'f', -1, 64),
			strconv.FormatFloat(sol.WaitingTime, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	fmt.Printf("\nResults exported to: %s\n", filename)
	return nil
}
