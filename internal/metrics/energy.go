package metrics

import "github.com/san-kum/liftsim/internal/elevator"

// Energy reports the system's cumulative energy in kJ at the last observed
// tick.
type Energy struct {
	name  string
	total float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(snap elevator.Snapshot) {
	e.total = snap.TotalEnergy
}

func (e *Energy) Value() float64 { return e.total }

func (e *Energy) Reset() { e.total = 0 }

// EnergyPerCall divides energy by the number of assigned calls. With no
// calls it reports the raw energy.
type EnergyPerCall struct {
	name     string
	total    float64
	assigned int
}

func NewEnergyPerCall() *EnergyPerCall {
	return &EnergyPerCall{name: "energy_per_call"}
}

func (e *EnergyPerCall) Name() string { return e.name }

func (e *EnergyPerCall) Observe(snap elevator.Snapshot) {
	e.total = snap.TotalEnergy
	e.assigned = snap.AssignedCalls
}

func (e *EnergyPerCall) Value() float64 {
	if e.assigned == 0 {
		return e.total
	}
	return e.total / float64(e.assigned)
}

func (e *EnergyPerCall) Reset() {
	e.total = 0
	e.assigned = 0
}
