package sim

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("sim: invalid run configuration")

// TickError reports the tick at which a run stopped.
type TickError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d (t=%.3fs): %v", e.Step, e.Time, e.Wrapped)
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
