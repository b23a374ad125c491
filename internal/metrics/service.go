package metrics

import "github.com/san-kum/liftsim/internal/elevator"

// IdleRatio is the fraction of car-ticks spent idle.
type IdleRatio struct {
	name    string
	idle    int
	samples int
}

func NewIdleRatio() *IdleRatio {
	return &IdleRatio{name: "idle_ratio"}
}

func (r *IdleRatio) Name() string { return r.name }

func (r *IdleRatio) Observe(snap elevator.Snapshot) {
	for _, car := range snap.Cars {
		if car.Idle {
			r.idle++
		}
		r.samples++
	}
}

func (r *IdleRatio) Value() float64 {
	if r.samples == 0 {
		return 1
	}
	return float64(r.idle) / float64(r.samples)
}

func (r *IdleRatio) Reset() {
	r.idle = 0
	r.samples = 0
}

// DroppedRatio is the share of calls that found no idle car.
type DroppedRatio struct {
	name     string
	assigned int
	dropped  int
}

func NewDroppedRatio() *DroppedRatio {
	return &DroppedRatio{name: "dropped_ratio"}
}

func (d *DroppedRatio) Name() string { return d.name }

func (d *DroppedRatio) Observe(snap elevator.Snapshot) {
	d.assigned = snap.AssignedCalls
	d.dropped = snap.DroppedCalls
}

func (d *DroppedRatio) Value() float64 {
	total := d.assigned + d.dropped
	if total == 0 {
		return 0
	}
	return float64(d.dropped) / float64(total)
}

func (d *DroppedRatio) Reset() {
	d.assigned = 0
	d.dropped = 0
}

// WaitTime is the mean time in seconds from a call's assignment to its car
// arriving, over the calls served so far.
type WaitTime struct {
	name   string
	served int
	total  float64
}

func NewWaitTime() *WaitTime {
	return &WaitTime{name: "wait_time"}
}

func (w *WaitTime) Name() string { return w.name }

func (w *WaitTime) Observe(snap elevator.Snapshot) {
	w.served = snap.ServedCalls
	w.total = snap.TotalWait
}

func (w *WaitTime) Value() float64 {
	if w.served == 0 {
		return 0
	}
	return w.total / float64(w.served)
}

func (w *WaitTime) Reset() {
	w.served = 0
	w.total = 0
}

// Travel is the total distance covered by all cars, in metres.
type Travel struct {
	name string
	sum  float64
	prev []float64
}

func NewTravel() *Travel {
	return &Travel{name: "travel"}
}

func (t *Travel) Name() string { return t.name }

func (t *Travel) Observe(snap elevator.Snapshot) {
	if len(t.prev) != len(snap.Cars) {
		t.prev = make([]float64, len(snap.Cars))
		for i, car := range snap.Cars {
			t.prev[i] = car.Height
		}
		return
	}
	for i, car := range snap.Cars {
		d := car.Height - t.prev[i]
		if d < 0 {
			d = -d
		}
		t.sum += d
		t.prev[i] = car.Height
	}
}

func (t *Travel) Value() float64 { return t.sum }

func (t *Travel) Reset() {
	t.sum = 0
	t.prev = nil
}
