package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/liftsim/internal/elevator"
)

func snap(t float64, cars ...elevator.CarState) elevator.Snapshot {
	return elevator.Snapshot{Time: t, Cars: cars}
}

func TestEnergy(t *testing.T) {
	m := NewEnergy()
	m.Observe(elevator.Snapshot{TotalEnergy: 3})
	m.Observe(elevator.Snapshot{TotalEnergy: 5})
	if m.Value() != 5 {
		t.Errorf("expected the latest total, got %v", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyPerCall(t *testing.T) {
	m := NewEnergyPerCall()
	m.Observe(elevator.Snapshot{TotalEnergy: 12})
	if m.Value() != 12 {
		t.Errorf("no calls should report raw energy, got %v", m.Value())
	}
	m.Observe(elevator.Snapshot{TotalEnergy: 12, AssignedCalls: 4})
	if m.Value() != 3 {
		t.Errorf("expected 3 kJ per call, got %v", m.Value())
	}
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	m.Observe(snap(0, elevator.CarState{Current: -4}, elevator.CarState{Current: 2}))
	if m.Value() != 3 {
		t.Errorf("expected mean |current| 3, got %v", m.Value())
	}
}

func TestOvershoot(t *testing.T) {
	m := NewOvershoot()
	m.Observe(snap(0, elevator.CarState{Height: 0, Target: 10}))
	m.Observe(snap(1, elevator.CarState{Height: 10.3, Target: 10}))
	m.Observe(snap(2, elevator.CarState{Height: 9.8, Target: 10}))
	if math.Abs(m.Value()-0.3) > 1e-12 {
		t.Errorf("expected overshoot 0.3, got %v", m.Value())
	}
}

func TestOvershoot_NewTargetResetsHeading(t *testing.T) {
	m := NewOvershoot()
	m.Observe(snap(0, elevator.CarState{Height: 10, Target: 10}))
	m.Observe(snap(1, elevator.CarState{Height: 10, Target: 0}))
	m.Observe(snap(2, elevator.CarState{Height: 5, Target: 0}))
	if m.Value() != 0 {
		t.Errorf("a car short of its target has not overshot, got %v", m.Value())
	}
	m.Observe(snap(3, elevator.CarState{Height: -0.04, Target: 0}))
	if math.Abs(m.Value()-0.04) > 1e-12 {
		t.Errorf("expected overshoot 0.04, got %v", m.Value())
	}
}

func TestTrackingError(t *testing.T) {
	m := NewTrackingError()
	m.Observe(snap(0, elevator.CarState{Height: 0, Target: 10}))
	m.Observe(snap(0.5, elevator.CarState{Height: 4, Target: 10}))
	m.Observe(snap(1.0, elevator.CarState{Height: 10, Target: 10}))
	if math.Abs(m.Value()-3) > 1e-12 {
		t.Errorf("expected 6 m × 0.5 s = 3, got %v", m.Value())
	}
}

func TestIdleRatio(t *testing.T) {
	m := NewIdleRatio()
	if m.Value() != 1 {
		t.Error("no samples should count as idle")
	}
	m.Observe(snap(0, elevator.CarState{Idle: true}, elevator.CarState{}))
	m.Observe(snap(1, elevator.CarState{Idle: true}, elevator.CarState{Idle: true}))
	if m.Value() != 0.75 {
		t.Errorf("expected 0.75, got %v", m.Value())
	}
}

func TestDroppedRatio(t *testing.T) {
	m := NewDroppedRatio()
	if m.Value() != 0 {
		t.Error("no calls should report zero")
	}
	m.Observe(elevator.Snapshot{AssignedCalls: 3, DroppedCalls: 1})
	if m.Value() != 0.25 {
		t.Errorf("expected 0.25, got %v", m.Value())
	}
}

func TestWaitTime(t *testing.T) {
	m := NewWaitTime()
	m.Observe(elevator.Snapshot{AssignedCalls: 2})
	if m.Value() != 0 {
		t.Errorf("no arrivals should report zero, got %v", m.Value())
	}
	m.Observe(elevator.Snapshot{AssignedCalls: 2, ServedCalls: 2, TotalWait: 15})
	if m.Value() != 7.5 {
		t.Errorf("expected 7.5 s, got %v", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("reset should clear the mean")
	}
}

func TestTravel(t *testing.T) {
	m := NewTravel()
	m.Observe(snap(0, elevator.CarState{Height: 2}, elevator.CarState{Height: 8}))
	m.Observe(snap(1, elevator.CarState{Height: 5}, elevator.CarState{Height: 6}))
	m.Observe(snap(2, elevator.CarState{Height: 4}, elevator.CarState{Height: 6}))
	if m.Value() != 6 {
		t.Errorf("expected 6 m, got %v", m.Value())
	}
	m.Reset()
	m.Observe(snap(3, elevator.CarState{Height: 100}))
	if m.Value() != 0 {
		t.Error("first observation after reset should only set the baseline")
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		m, err := ByName(name)
		if err != nil {
			t.Fatal(err)
		}
		if m.Name() != name {
			t.Errorf("metric %s reports name %s", name, m.Name())
		}
	}
	if _, err := ByName("nonexistent"); err == nil {
		t.Error("expected an error for an unknown metric")
	}
	if len(All()) != len(Names()) {
		t.Error("All should build every metric")
	}
}
