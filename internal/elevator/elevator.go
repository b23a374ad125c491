package elevator

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/san-kum/liftsim/internal/control"
	"github.com/san-kum/liftsim/internal/motor"
)

const DefaultGravity = 9.81

// Config describes one car. Masses are in kg; they only feed the force
// telemetry, never the motor model.
type Config struct {
	Floors      []float64      `yaml:"floors"`
	HeightPID   control.Params `yaml:"height_pid"`
	Mass        float64        `yaml:"mass"`
	CounterMass float64        `yaml:"counter_mass"`
	MaxLoad     float64        `yaml:"max_load"`
	Gravity     float64        `yaml:"gravity"`
}

type Direction int

const (
	Stop Direction = iota
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Stop:
		return "stop"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Elevator is one car: a height loop feeding the speed loop of its motor.
type Elevator struct {
	floors    []float64
	heightPID *control.PID
	motor     *motor.Motor

	height float64
	speed  float64
	accel  float64
	idle   bool
	load   float64

	mass        float64
	counterMass float64
	maxLoad     float64
	gravity     float64

	log zerolog.Logger
}

func New(cfg Config, m *motor.Motor, log zerolog.Logger) (*Elevator, error) {
	if len(cfg.Floors) == 0 {
		return nil, ErrNoFloors
	}
	if m == nil {
		return nil, ErrNoMotor
	}
	pid, err := control.New(cfg.HeightPID)
	if err != nil {
		return nil, fmt.Errorf("elevator: height loop: %w", err)
	}

	floors := make([]float64, len(cfg.Floors))
	copy(floors, cfg.Floors)

	g := cfg.Gravity
	if g == 0 {
		g = DefaultGravity
	}

	return &Elevator{
		floors:      floors,
		heightPID:   pid,
		motor:       m,
		idle:        true,
		mass:        cfg.Mass,
		counterMass: cfg.CounterMass,
		maxLoad:     cfg.MaxLoad,
		gravity:     g,
		log:         log,
	}, nil
}

// SetTarget sends the car to a floor. A new target replaces the old one.
func (e *Elevator) SetTarget(floor int) error {
	if floor < 0 || floor >= len(e.floors) {
		return fmt.Errorf("%w: %d of %d", ErrFloorOutOfRange, floor, len(e.floors))
	}
	e.heightPID.SetTarget(e.floors[floor])
	e.idle = false
	return nil
}

// Update advances the car by dt seconds and returns the energy used in
// that interval.
//
// Height integrates the speed achieved on the previous tick before the
// motor is stepped, so a new target speed only moves the car one tick later.
func (e *Elevator) Update(dt float64) (float64, error) {
	before := e.motor.Energy()

	e.height += e.motor.Speed() * dt

	if err := e.motor.Update(dt); err != nil {
		return e.motor.Energy() - before, fmt.Errorf("elevator at %.3f m: %w", e.height, err)
	}

	speed := e.motor.Speed()
	if dt > 0 {
		e.accel = (speed - e.speed) / dt
	}
	e.speed = speed

	target := e.heightPID.Update(e.height, dt)
	e.motor.SetTargetSpeed(target)

	wasIdle := e.idle
	e.idle = e.heightPID.HasReachedTarget(e.height)
	if e.idle && !wasIdle {
		e.log.Debug().Float64("height", e.height).Float64("energy", e.motor.Energy()).Msg("arrived")
	}

	return e.motor.Energy() - before, nil
}

// Load adds weight to the car. It is bookkeeping only.
func (e *Elevator) Load(weight float64) {
	e.load += weight
}

func (e *Elevator) Unload(weight float64) {
	e.load -= weight
}

func (e *Elevator) CurrentLoad() float64 { return e.load }

// Overloaded reports whether the load exceeds MaxLoad. A zero MaxLoad never
// overloads.
func (e *Elevator) Overloaded() bool {
	return e.maxLoad > 0 && e.load > e.maxLoad
}

func (e *Elevator) Idle() bool { return e.idle }

func (e *Elevator) Height() float64 { return e.height }

// Speed returns the speed achieved on the last tick, in m/s.
func (e *Elevator) Speed() float64 { return e.motor.Speed() }

// Acceleration is the finite difference of speed over the last tick.
func (e *Elevator) Acceleration() float64 { return e.accel }

// Target returns the height setpoint.
func (e *Elevator) Target() float64 { return e.heightPID.Target() }

func (e *Elevator) Direction() Direction {
	switch {
	case e.idle:
		return Stop
	case e.heightPID.Target() > e.height:
		return Up
	case e.heightPID.Target() < e.height:
		return Down
	}
	return Stop
}

// Floors returns a copy of the floor heights.
func (e *Elevator) Floors() []float64 {
	cp := make([]float64, len(e.floors))
	copy(cp, e.floors)
	return cp
}

// NearestFloor returns the index of the floor closest to the car.
func (e *Elevator) NearestFloor() int {
	best := 0
	for i, h := range e.floors {
		if abs(h-e.height) < abs(e.floors[best]-e.height) {
			best = i
		}
	}
	return best
}

func (e *Elevator) TotalMass() float64 {
	return e.mass + e.load + e.counterMass
}

// RequiredForce is the rope force needed to hold the current acceleration
// against the unbalanced weight, in N. Positive lifts the car.
func (e *Elevator) RequiredForce() float64 {
	unbalanced := (e.mass + e.load - e.counterMass) * e.gravity
	return unbalanced + e.TotalMass()*e.accel
}

// Energy returns the motor's cumulative energy in kJ.
func (e *Elevator) Energy() float64 { return e.motor.Energy() }

func (e *Elevator) Motor() *motor.Motor { return e.motor }

// HeightPID exposes the outer loop for live tuning.
func (e *Elevator) HeightPID() *control.PID { return e.heightPID }

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
