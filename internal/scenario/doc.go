// Package scenario supplies elevator calls to a simulation, either replayed
// from a YAML script or drawn as random traffic.
//
// Script format:
//
//	name: morning
//	calls:
//	  - {at: 2, origin: 0, destination: 3}
//	  - {at: 5.5, origin: 2, destination: 0}
package scenario
