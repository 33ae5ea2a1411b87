// Package instio reads MSSVTDE instance files from disk. It is an external
// collaborator of the optimization engine in internal/algo, not part of it.
package instio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/elektrokombinacija/mssvtde/internal/core"
)

// Fixed parameter defaults the instance file format does not carry.
const (
	defaultDroneMaxCapacity  = 5
	defaultDroneMaxEnergy    = 500
	defaultDroneTakeoffSpeed = 5
	defaultDroneCruiseSpeed  = 15
	defaultDroneLandingSpeed = 5
	defaultDroneGamma        = 100
	defaultTruckMaxSpeed     = 20
)

func defaultTruckIntervals() []core.TimeInterval {
	return []core.TimeInterval{
		{Start: 0, End: 3600, Sigma: 0.8},
		{Start: 3600, End: 7200, Sigma: 1.0},
		{Start: 7200, End: 14400, Sigma: 0.8},
	}
}

// ReadInstance parses the plain-text instance file at path.
func ReadInstance(path string) (*core.Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening instance file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	numTrucks, err := readLabeledInt(scanner, "truck count")
	if err != nil {
		return nil, err
	}
	numDrones, err := readLabeledInt(scanner, "drone count")
	if err != nil {
		return nil, err
	}
	maxFlightTime, err := readLabeledFloat(scanner, "drone max flight time")
	if err != nil {
		return nil, err
	}
	numCustomers, err := readLabeledInt(scanner, "customer count")
	if err != nil {
		return nil, err
	}
	if !scanner.Scan() { // header row, ignored
		return nil, fmt.Errorf("reading header row: %w", scanErr(scanner))
	}

	customers := make([]core.Customer, 0, numCustomers)
	for i := 0; i < numCustomers; i++ {
		cust, err := readCustomer(scanner, i+1)
		if err != nil {
			return nil, err
		}
		customers = append(customers, cust)
	}

	if !scanner.Scan() { // label line before beta, ignored
		return nil, fmt.Errorf("reading beta label: %w", scanErr(scanner))
	}
	beta, err := readLabeledFloat(scanner, "drone beta coefficient")
	if err != nil {
		return nil, err
	}

	return &core.Instance{
		NumTrucks: numTrucks,
		NumDrones: numDrones,
		Customers: customers,
		DroneParams: core.DroneParams{
			MaxCapacity:   defaultDroneMaxCapacity,
			MaxEnergy:     defaultDroneMaxEnergy,
			TakeoffSpeed:  defaultDroneTakeoffSpeed,
			CruiseSpeed:   defaultDroneCruiseSpeed,
			LandingSpeed:  defaultDroneLandingSpeed,
			Beta:          beta,
			Gamma:         defaultDroneGamma,
			MaxFlightTime: maxFlightTime,
		},
		TruckParams: core.TruckParams{
			MaxSpeed:  defaultTruckMaxSpeed,
			Intervals: defaultTruckIntervals(),
		},
	}, nil
}

func readCustomer(scanner *bufio.Scanner, id int) (core.Customer, error) {
	if !scanner.Scan() {
		return core.Customer{}, fmt.Errorf("reading customer %d: %w", id, scanErr(scanner))
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) < 6 {
		return core.Customer{}, fmt.Errorf("customer %d: expected 6 fields, got %d", id, len(fields))
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return core.Customer{}, fmt.Errorf("customer %d x: %w", id, err)
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return core.Customer{}, fmt.Errorf("customer %d y: %w", id, err)
	}
	demand, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return core.Customer{}, fmt.Errorf("customer %d demand: %w", id, err)
	}
	staffOnly, err := strconv.Atoi(fields[3])
	if err != nil {
		return core.Customer{}, fmt.Errorf("customer %d staff-only flag: %w", id, err)
	}
	serviceTruck, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return core.Customer{}, fmt.Errorf("customer %d truck service time: %w", id, err)
	}
	serviceDrone, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return core.Customer{}, fmt.Errorf("customer %d drone service time: %w", id, err)
	}
	return core.Customer{
		ID:               core.CustomerID(id),
		X:                x,
		Y:                y,
		Demand:           demand,
		StaffOnly:        staffOnly != 0,
		ServiceTimeTruck: serviceTruck,
		ServiceTimeDrone: serviceDrone,
	}, nil
}

func readLabeledInt(scanner *bufio.Scanner, what string) (int, error) {
	fields, err := readLabeledFields(scanner, what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", what, err)
	}
	return v, nil
}

func readLabeledFloat(scanner *bufio.Scanner, what string) (float64, error) {
	fields, err := readLabeledFields(scanner, what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", what, err)
	}
	return v, nil
}

func readLabeledFields(scanner *bufio.Scanner, what string) ([]string, error) {
	if !scanner.Scan() {
		return nil, fmt.Errorf("reading %s: %w", what, scanErr(scanner))
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s line is empty", what)
	}
	return fields, nil
}

func scanErr(scanner *bufio.Scanner) error {
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("unexpected end of file")
}
