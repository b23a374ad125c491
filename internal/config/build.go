package config

import (
	"github.com/rs/zerolog"
	"github.com/san-kum/liftsim/internal/elevator"
	"github.com/san-kum/liftsim/internal/motor"
	"github.com/san-kum/liftsim/internal/scenario"
	"github.com/san-kum/liftsim/internal/sim"
)

// Factory reads the motor parameters and sample table once and returns a
// factory that gives every car its own motor over the shared table.
func (c *Config) Factory(log zerolog.Logger) (elevator.Factory, error) {
	params, err := motor.LoadParameters(c.Motor)
	if err != nil {
		return nil, err
	}
	table, err := motor.LoadTable(params.SamplePath)
	if err != nil {
		return nil, err
	}

	base := c.ElevatorConfig()
	return func(floors []float64) (*elevator.Elevator, error) {
		m, err := motor.New(*params, table, log)
		if err != nil {
			return nil, err
		}
		cfg := base
		cfg.Floors = floors
		return elevator.New(cfg, m, log)
	}, nil
}

// CallSource merges the inline calls, the scenario file and random traffic
// at CallRate. It returns nil when the run has no calls at all.
func (c *Config) CallSource(seed int64) (scenario.Source, error) {
	var sources []scenario.Source
	if len(c.Calls) > 0 {
		sources = append(sources, scenario.NewScript(c.Calls))
	}
	if c.Scenario != "" {
		sc, err := scenario.LoadScenario(c.Scenario)
		if err != nil {
			return nil, err
		}
		if err := sc.Validate(len(c.Floors)); err != nil {
			return nil, err
		}
		sources = append(sources, scenario.NewScript(sc.Calls))
	}
	if c.CallRate > 0 && len(c.Floors) > 1 {
		traffic, err := scenario.NewTraffic(len(c.Floors), c.CallRate, seed)
		if err != nil {
			return nil, err
		}
		sources = append(sources, traffic)
	}

	if len(sources) == 0 {
		return nil, nil
	}
	return scenario.Merge(sources...), nil
}

// Build validates the config and assembles a simulator seeded with seed.
func (c *Config) Build(seed int64, log zerolog.Logger) (*sim.Simulator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	build, err := c.Factory(log)
	if err != nil {
		return nil, err
	}
	sys, err := elevator.NewSystem(c.SystemConfig(), build, log)
	if err != nil {
		return nil, err
	}
	calls, err := c.CallSource(seed)
	if err != nil {
		return nil, err
	}
	return sim.New(sys, calls, log), nil
}

// SimConfig is the run length and step for the simulator.
func (c *Config) SimConfig(seed int64) sim.Config {
	return sim.Config{Dt: c.Dt, Duration: c.Duration, Seed: seed}
}
