package control

import "errors"

var (
	// ErrUpdateFrequency indicates a non-positive controller update rate.
	ErrUpdateFrequency = errors.New("control: update frequency must be positive")

	ErrTolerance = errors.New("control: tolerance must not be negative")

	// ErrLimits indicates a clamp whose minimum exceeds its maximum.
	ErrLimits = errors.New("control: limit minimum exceeds maximum")

	ErrUnknownParam = errors.New("control: unknown parameter")
)
