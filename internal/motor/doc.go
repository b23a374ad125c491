// Package motor models an elevator hoist motor from empirical samples.
//
// A [Table] holds steady-state operating points (current, rpm, torque,
// input power, efficiency, voltage) measured on a test bench. [Table.Simulate]
// interpolates between neighbouring rows for any commanded current inside the
// characterized range and refuses anything outside it; the model has no
// physics of its own beyond that surrogate.
//
// A [Motor] closes a speed loop around the table: its PID turns the speed
// error into a current, the table turns the current into the achieved rpm,
// and the input power of each operating point is integrated into energy.
//
// Units: current in A, speed in rpm on the motor shaft and m/s at the car,
// torque in N·m, input power in kW, energy in kJ.
package motor
