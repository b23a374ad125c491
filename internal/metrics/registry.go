package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/liftsim/internal/sim"
)

var constructors = map[string]func() sim.Metric{
	"energy":          func() sim.Metric { return NewEnergy() },
	"energy_per_call": func() sim.Metric { return NewEnergyPerCall() },
	"control_effort":  func() sim.Metric { return NewControlEffort() },
	"overshoot":       func() sim.Metric { return NewOvershoot() },
	"tracking_error":  func() sim.Metric { return NewTrackingError() },
	"idle_ratio":      func() sim.Metric { return NewIdleRatio() },
	"dropped_ratio":   func() sim.Metric { return NewDroppedRatio() },
	"travel":          func() sim.Metric { return NewTravel() },
	"wait_time":       func() sim.Metric { return NewWaitTime() },
}

// ByName builds a fresh metric.
func ByName(name string) (sim.Metric, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return ctor(), nil
}

// All builds one of every metric, ordered by name.
func All() []sim.Metric {
	out := make([]sim.Metric, 0, len(constructors))
	for _, name := range Names() {
		out = append(out, constructors[name]())
	}
	return out
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
