package metrics

import (
	"math"

	"github.com/san-kum/liftsim/internal/elevator"
)

// Overshoot is the largest distance, in metres, that a car travelled past
// its target in the direction it set off in.
type Overshoot struct {
	name    string
	max     float64
	targets []float64
	heads   []float64
}

func NewOvershoot() *Overshoot {
	return &Overshoot{name: "overshoot"}
}

func (o *Overshoot) Name() string {
	return o.name
}

func (o *Overshoot) Observe(snap elevator.Snapshot) {
	if len(o.heads) != len(snap.Cars) {
		o.targets = make([]float64, len(snap.Cars))
		o.heads = make([]float64, len(snap.Cars))
		for i, car := range snap.Cars {
			o.targets[i] = car.Target
			o.heads[i] = sign(car.Target - car.Height)
		}
	}
	for i, car := range snap.Cars {
		if car.Target != o.targets[i] {
			o.targets[i] = car.Target
			o.heads[i] = sign(car.Target - car.Height)
		}
		if past := (car.Height - car.Target) * o.heads[i]; past > 0 {
			o.max = math.Max(o.max, past)
		}
	}
}

func (o *Overshoot) Value() float64 {
	return o.max
}

func (o *Overshoot) Reset() {
	o.max = 0
	o.targets = nil
	o.heads = nil
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// TrackingError integrates |target-height| over time for every car, in m·s.
type TrackingError struct {
	name string
	sum  float64
	last float64
	seen bool
}

func NewTrackingError() *TrackingError {
	return &TrackingError{name: "tracking_error"}
}

func (t *TrackingError) Name() string { return t.name }

func (t *TrackingError) Observe(snap elevator.Snapshot) {
	dt := 0.0
	if t.seen {
		dt = snap.Time - t.last
	}
	t.last, t.seen = snap.Time, true
	for _, car := range snap.Cars {
		t.sum += math.Abs(car.Target-car.Height) * dt
	}
}

func (t *TrackingError) Value() float64 { return t.sum }

func (t *TrackingError) Reset() {
	t.sum = 0
	t.last = 0
	t.seen = false
}
