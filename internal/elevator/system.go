package elevator

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
)

const DefaultPassengerWeight = 70.0

// Clock supplies wall time to System.Update.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// Factory builds one car over the given floors. Each call must return an
// independent car with its own motor and controllers.
type Factory func(floors []float64) (*Elevator, error)

type SystemConfig struct {
	Cars            int
	Floors          []float64
	PassengerWeight float64
	TimeMultiplier  float64
	Clock           Clock
}

// System dispatches calls to a bank of cars and steps them together.
type System struct {
	floors []float64
	cars   []*Elevator

	passengerWeight float64
	timeMultiplier  float64
	clock           Clock
	last            time.Time

	elapsed     float64
	totalEnergy float64
	assigned    int
	dropped     int

	// callAt holds each car's assignment time, or -1 while it has no call.
	callAt    []float64
	served    int
	totalWait float64

	log zerolog.Logger
}

func NewSystem(cfg SystemConfig, build Factory, log zerolog.Logger) (*System, error) {
	if cfg.Cars < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNoCars, cfg.Cars)
	}
	if len(cfg.Floors) == 0 {
		return nil, ErrNoFloors
	}
	if cfg.TimeMultiplier < 0 || math.IsNaN(cfg.TimeMultiplier) {
		return nil, fmt.Errorf("%w: got %v", ErrTimeMultiplier, cfg.TimeMultiplier)
	}

	s := &System{
		floors:          append([]float64(nil), cfg.Floors...),
		passengerWeight: cfg.PassengerWeight,
		timeMultiplier:  cfg.TimeMultiplier,
		clock:           cfg.Clock,
		log:             log.With().Str("component", "dispatch").Logger(),
	}
	if s.passengerWeight == 0 {
		s.passengerWeight = DefaultPassengerWeight
	}
	if s.timeMultiplier == 0 {
		s.timeMultiplier = 1
	}
	if s.clock == nil {
		s.clock = wallClock{}
	}

	for i := 0; i < cfg.Cars; i++ {
		car, err := build(append([]float64(nil), s.floors...))
		if err != nil {
			return nil, &CarError{Car: i, Wrapped: err}
		}
		s.cars = append(s.cars, car)
		s.callAt = append(s.callAt, -1)
	}
	s.last = s.clock.Now()

	s.log.Info().Int("cars", len(s.cars)).Int("floors", len(s.floors)).Msg("system ready")
	return s, nil
}

// NewCall assigns a call to the idle car with the smallest signed offset
// height-floors[origin], so cars below the origin win. The chosen car heads
// straight for the destination. With no idle car the call is dropped and
// -1 is returned.
func (s *System) NewCall(origin, destination int) (int, error) {
	if err := s.checkFloor(origin); err != nil {
		return -1, err
	}
	if err := s.checkFloor(destination); err != nil {
		return -1, err
	}

	best := -1
	bestOffset := math.Inf(1)
	for i, car := range s.cars {
		if !car.Idle() {
			continue
		}
		if offset := car.Height() - s.floors[origin]; offset < bestOffset {
			best, bestOffset = i, offset
		}
	}

	if best < 0 {
		s.dropped++
		s.log.Debug().Int("origin", origin).Int("destination", destination).Msg("no idle car, call dropped")
		return -1, nil
	}

	car := s.cars[best]
	if err := car.SetTarget(destination); err != nil {
		return -1, err
	}
	car.Load(s.passengerWeight)
	s.callAt[best] = s.elapsed
	s.assigned++

	s.log.Debug().
		Int("car", best).
		Int("origin", origin).
		Int("destination", destination).
		Float64("height", car.Height()).
		Msg("call assigned")
	return best, nil
}

func (s *System) checkFloor(i int) error {
	if i < 0 || i >= len(s.floors) {
		return fmt.Errorf("%w: %d of %d", ErrFloorOutOfRange, i, len(s.floors))
	}
	return nil
}

// WallDelta samples the clock and returns the wall time since the previous
// sample scaled by the time multiplier.
func (s *System) WallDelta() float64 {
	now := s.clock.Now()
	dt := now.Sub(s.last).Seconds() * s.timeMultiplier
	s.last = now
	return dt
}

// Update samples the clock once and steps every car by the elapsed wall time
// scaled by the time multiplier. It returns the simulated dt it stepped.
func (s *System) Update() (float64, error) {
	dt := s.WallDelta()
	return dt, s.Step(dt)
}

// Step advances every car by dt simulated seconds. A car that arrives sheds
// the passenger it was dispatched with and its wait since assignment is
// counted. Energy used by cars that stepped before a failure is still
// counted.
func (s *System) Step(dt float64) error {
	now := s.elapsed + dt
	for i, car := range s.cars {
		wasIdle := car.Idle()
		used, err := car.Update(dt)
		s.totalEnergy += used
		if err != nil {
			return &CarError{Car: i, Wrapped: err}
		}
		if wasIdle || !car.Idle() {
			continue
		}
		if car.CurrentLoad() >= s.passengerWeight {
			car.Unload(s.passengerWeight)
		}
		if s.callAt[i] >= 0 {
			s.served++
			s.totalWait += now - s.callAt[i]
			s.callAt[i] = -1
		}
	}
	s.elapsed = now
	return nil
}

func (s *System) Cars() []*Elevator { return s.cars }

func (s *System) Floors() []float64 {
	return append([]float64(nil), s.floors...)
}

// TotalEnergy is the sum of every car's per-tick energy, in kJ.
func (s *System) TotalEnergy() float64 { return s.totalEnergy }

func (s *System) DroppedCalls() int  { return s.dropped }
func (s *System) AssignedCalls() int { return s.assigned }
func (s *System) ServedCalls() int   { return s.served }

// MeanWait is the mean time in seconds from assignment to arrival over
// served calls, or 0 before the first arrival.
func (s *System) MeanWait() float64 {
	if s.served == 0 {
		return 0
	}
	return s.totalWait / float64(s.served)
}

// Elapsed is the simulated time stepped so far, in seconds.
func (s *System) Elapsed() float64 { return s.elapsed }

func (s *System) TimeMultiplier() float64 { return s.timeMultiplier }

func (s *System) IdleCars() int {
	n := 0
	for _, car := range s.cars {
		if car.Idle() {
			n++
		}
	}
	return n
}
