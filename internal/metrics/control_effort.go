package metrics

import (
	"math"

	"github.com/san-kum/liftsim/internal/elevator"
)

// ControlEffort is the mean absolute motor current across cars and ticks.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(snap elevator.Snapshot) {
	for _, car := range snap.Cars {
		c.sum += math.Abs(car.Current)
		c.samples++
	}
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
