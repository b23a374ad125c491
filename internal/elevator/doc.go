// Package elevator models elevator cars and the dispatcher that drives them.
//
// Each car runs a cascade: a height PID turns the floor setpoint into a
// target speed, and the car's motor turns that speed into current and an
// achieved speed. Height integrates the achieved speed with a one-tick lag.
//
// A System owns a bank of cars built by a Factory and assigns each call to
// the nearest idle car:
//
//	sys, err := elevator.NewSystem(elevator.SystemConfig{
//		Cars:   2,
//		Floors: []float64{0, 4, 8, 12},
//	}, factory, log)
//	if err != nil {
//		return err
//	}
//	sys.NewCall(0, 3)
//	for i := 0; i < 600; i++ {
//		if err := sys.Step(0.05); err != nil {
//			return err
//		}
//	}
//
// Calls that find no idle car are dropped, not queued.
package elevator
