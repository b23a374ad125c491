package motor

import (
	"errors"
	"fmt"
)

// Table validation errors.
var (
	ErrEmptyTable          = errors.New("motor: sample table has no rows")
	ErrUnsorted            = errors.New("motor: samples must be sorted by current")
	ErrInconsistentVoltage = errors.New("motor: voltage must be the same for every sample")
	ErrInconsistentTorque  = errors.New("motor: torque must be the same for every sample")
)

var (
	// ErrCurrentOutOfRange indicates a commanded current outside the
	// characterized range of the sample table.
	ErrCurrentOutOfRange = errors.New("motor: current limit exceeded")

	ErrGearboxRatio  = errors.New("motor: gearbox ratio must be positive")
	ErrMissingColumn = errors.New("motor: sample file is missing a column")
)

// OverCurrentError reports the commanded current that could not be simulated.
type OverCurrentError struct {
	Current float64
	Limit   float64
}

func (e *OverCurrentError) Error() string {
	return fmt.Sprintf("%v: commanded %.3f A, table covers ±%.3f A", ErrCurrentOutOfRange, e.Current, e.Limit)
}

func (e *OverCurrentError) Unwrap() error {
	return ErrCurrentOutOfRange
}
