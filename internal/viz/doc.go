// Package viz provides a terminal view of a running elevator simulation.
//
// The live view is a Bubble Tea program: the left pane draws one shaft per
// car with the floors top down, the right pane shows totals, an energy chart
// and a speed sparkline per car.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	C     - Inject a random call
//	+/-   - Double or halve ticks per frame
//	Tab   - Cycle height-loop gains, Up/Down to tune
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
