package elevator

import (
	"errors"
	"fmt"
)

var (
	ErrNoFloors = errors.New("elevator: at least one floor is required")
	ErrNoCars   = errors.New("elevator: at least one car is required")
	ErrNoMotor  = errors.New("elevator: car has no motor")

	// ErrFloorOutOfRange indicates a floor index outside the building.
	ErrFloorOutOfRange = errors.New("elevator: floor index out of range")

	ErrTimeMultiplier = errors.New("elevator: time multiplier must be positive")
)

// CarError wraps a failure of one car during a system step.
type CarError struct {
	Car     int
	Wrapped error
}

func (e *CarError) Error() string {
	return fmt.Sprintf("car %d: %v", e.Car, e.Wrapped)
}

func (e *CarError) Unwrap() error {
	return e.Wrapped
}
