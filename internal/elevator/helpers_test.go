package elevator_test

import (
	"github.com/rs/zerolog"
	"github.com/san-kum/liftsim/internal/control"
	"github.com/san-kum/liftsim/internal/elevator"
	"github.com/san-kum/liftsim/internal/motor"
)

const tick = 0.05

var heightPID = control.Params{Kp: 1, UpdateFreq: 10, Tolerance: 0.05}

func newMotor() (*motor.Motor, error) {
	return motor.Load("../motor/testdata/motor_parameters.yaml", zerolog.Nop())
}

func newCar(floors []float64) (*elevator.Elevator, error) {
	m, err := newMotor()
	if err != nil {
		return nil, err
	}
	return elevator.New(elevator.Config{
		Floors:      floors,
		HeightPID:   heightPID,
		Mass:        1000,
		CounterMass: 1200,
	}, m, zerolog.Nop())
}

func newSystem(cars int, floors []float64) (*elevator.System, error) {
	return elevator.NewSystem(elevator.SystemConfig{Cars: cars, Floors: floors}, newCar, zerolog.Nop())
}

// stepUntilIdle steps until every car is idle or the budget runs out and
// returns the number of ticks taken.
func stepUntilIdle(sys *elevator.System, budget int) (int, error) {
	for i := 1; i <= budget; i++ {
		if err := sys.Step(tick); err != nil {
			return i, err
		}
		if sys.IdleCars() == len(sys.Cars()) {
			return i, nil
		}
	}
	return budget, nil
}
