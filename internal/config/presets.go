package config

import (
	"sort"

	"github.com/san-kum/liftsim/internal/control"
	"github.com/san-kum/liftsim/internal/scenario"
	"github.com/tiendc/go-deepcopy"
)

var heightLoop = control.Params{Kp: DefaultHeightKp, UpdateFreq: DefaultHeightFreq, Tolerance: DefaultHeightTolerance}

var standardCar = CarConfig{Mass: DefaultCarMass, CounterMass: DefaultCounterMass, MaxLoad: DefaultMaxLoad}

var Presets = map[string]*Config{
	"demo": {
		Floors: []float64{0, 100, 200, 300}, Cars: 1, Dt: 0.05, Duration: 180, TimeMultiplier: 1,
		Motor: DefaultMotor, HeightPID: heightLoop, Car: standardCar, PassengerWeight: 70,
		Calls: []scenario.Call{{At: 2, Origin: 0, Destination: 3}},
	},
	"lowrise": {
		Floors: EvenFloors(5, 3.5), Cars: 1, Dt: 0.05, Duration: 300, TimeMultiplier: 1,
		Motor: DefaultMotor, HeightPID: heightLoop, Car: standardCar, PassengerWeight: 70,
		CallRate: 0.02,
	},
	"office": {
		Floors: EvenFloors(12, 4), Cars: 3, Dt: 0.05, Duration: 600, TimeMultiplier: 1,
		Motor: DefaultMotor, HeightPID: heightLoop, Car: standardCar, PassengerWeight: 70,
		CallRate: 0.1,
	},
	"tower": {
		Floors: EvenFloors(40, 3.5), Cars: 6, Dt: 0.05, Duration: 1200, TimeMultiplier: 10,
		Motor: DefaultMotor, HeightPID: heightLoop, Car: standardCar, PassengerWeight: 70,
		CallRate: 0.3,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := new(Config)
	if err := deepcopy.Copy(cfg, p); err != nil {
		return nil
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
