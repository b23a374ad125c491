// Package control provides the discrete PID controller used by the
// elevator cascade.
//
// A [PID] runs at a fixed internal rate (Params.UpdateFreq): calls to
// [PID.Update] accumulate the caller's dt and only recompute once a full
// control period has elapsed, returning the cached output otherwise. This
// keeps the control rate independent of how fast the simulation ticks.
//
// # Usage
//
//	pid, err := control.New(control.Params{Kp: 1, UpdateFreq: 10, Tolerance: 0.05})
//	pid.SetTarget(30)              // metres
//	speed := pid.Update(height, dt) // m/s setpoint for the inner loop
//
// Two instances are composed in cascade: the height loop's output becomes
// the speed loop's target.
package control
