package sim

import "github.com/san-kum/liftsim/internal/elevator"

// Metric folds every post-tick snapshot into a single score.
type Metric interface {
	Name() string
	Observe(snap elevator.Snapshot)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(snap elevator.Snapshot)
}

type ObserverFunc func(snap elevator.Snapshot)

func (f ObserverFunc) OnStep(snap elevator.Snapshot) { f(snap) }

type Config struct {
	Dt       float64
	Duration float64
	Seed     int64
}

// Result is the trace of one run. Energy and Heights are sampled at Times;
// Heights is indexed by car first.
type Result struct {
	Times      []float64
	Energy     []float64
	Heights    [][]float64
	Final      elevator.Snapshot
	Metrics    map[string]float64
	StepsTaken int
}

func (r *Result) record(snap elevator.Snapshot) {
	r.Times = append(r.Times, snap.Time)
	r.Energy = append(r.Energy, snap.TotalEnergy)
	if r.Heights == nil {
		r.Heights = make([][]float64, len(snap.Cars))
	}
	for i, c := range snap.Cars {
		r.Heights[i] = append(r.Heights[i], c.Height)
	}
}
