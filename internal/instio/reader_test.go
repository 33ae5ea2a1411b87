package instio

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleInstance = `trucks 2
drones 1
maxFlightTime 900
customers 2
x y demand staffOnly serviceTimeTruck serviceTimeDrone
10 0 1 0 30 10
0 20 2 1 45 0
beta
0.5
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "instance.txt")
	if err := os.WriteFile(path, []byte(sampleInstance), 0o644); err != nil {
		t.Fatalf("writing sample instance: %v", err)
	}
	return path
}

func TestReadInstanceParsesHeaderFields(t *testing.T) {
	inst, err := ReadInstance(writeSample(t))
	if err != nil {
		t.Fatalf("ReadInstance returned error: %v", err)
	}
	if inst.NumTrucks != 2 {
		t.Fatalf("NumTrucks = %d, want 2", inst.NumTrucks)
	}
	if inst.NumDrones != 1 {
		t.Fatalf("NumDrones = %d, want 1", inst.NumDrones)
	}
	if inst.DroneParams.MaxFlightTime != 900 {
		t.Fatalf("MaxFlightTime = %v, want 900", inst.DroneParams.MaxFlightTime)
	}
	if inst.NumCustomers() != 2 {
		t.Fatalf("NumCustomers = %d, want 2", inst.NumCustomers())
	}
}

func TestReadInstanceParsesCustomerRows(t *testing.T) {
	inst, err := ReadInstance(writeSample(t))
	if err != nil {
		t.Fatalf("ReadInstance returned error: %v", err)
	}
	c1 := inst.Customers[0]
	if c1.X != 10 || c1.Y != 0 || c1.Demand != 1 || c1.StaffOnly {
		t.Fatalf("customer 1 = %+v, unexpected field values", c1)
	}
	c2 := inst.Customers[1]
	if !c2.StaffOnly {
		t.Fatalf("customer 2 staff-only flag not parsed")
	}
}

func TestReadInstanceAppliesFixedDefaults(t *testing.T) {
	inst, err := ReadInstance(writeSample(t))
	if err != nil {
		t.Fatalf("ReadInstance returned error: %v", err)
	}
	if inst.DroneParams.MaxCapacity != 5 || inst.DroneParams.MaxEnergy != 500 {
		t.Fatalf("drone capacity/energy defaults not applied: %+v", inst.DroneParams)
	}
	if inst.DroneParams.Beta != 0.5 {
		t.Fatalf("Beta = %v, want 0.5", inst.DroneParams.Beta)
	}
	if inst.TruckParams.MaxSpeed != 20 || len(inst.TruckParams.Intervals) != 3 {
		t.Fatalf("truck param defaults not applied: %+v", inst.TruckParams)
	}
}

func TestReadInstanceMissingFileReturnsError(t *testing.T) {
	if _, err := ReadInstance(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected an error for a missing instance file")
	}
}

func TestReadInstanceTruncatedFileReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.txt")
	if err := os.WriteFile(path, []byte("trucks 2\n"), 0o644); err != nil {
		t.Fatalf("writing truncated instance: %v", err)
	}
	if _, err := ReadInstance(path); err == nil {
		t.Fatalf("expected an error for a truncated instance file")
	}
}
