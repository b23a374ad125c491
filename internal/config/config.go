package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/liftsim/internal/control"
	"github.com/san-kum/liftsim/internal/elevator"
	"github.com/san-kum/liftsim/internal/scenario"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt              = 0.05
	DefaultDuration        = 120.0
	DefaultCars            = 2
	DefaultFloorHeight     = 4.0
	DefaultFloors          = 10
	DefaultTimeMultiplier  = 1.0
	DefaultCallRate        = 0.05
	DefaultMotor           = "configs/motor.yaml"
	DefaultLogLevel        = "info"
	DefaultCarMass         = 1000.0
	DefaultCounterMass     = 1400.0
	DefaultMaxLoad         = 800.0
	DefaultHeightKp        = 1.0
	DefaultHeightFreq      = 10.0
	DefaultHeightTolerance = 0.05
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Floors          []float64       `yaml:"floors"`
	Cars            int             `yaml:"cars"`
	Dt              float64         `yaml:"dt"`
	Duration        float64         `yaml:"duration"`
	TimeMultiplier  float64         `yaml:"time_multiplier"`
	Seed            int64           `yaml:"seed"`
	Motor           string          `yaml:"motor"`
	HeightPID       control.Params  `yaml:"height_pid"`
	Car             CarConfig       `yaml:"car"`
	PassengerWeight float64         `yaml:"passenger_weight"`
	CallRate        float64         `yaml:"call_rate"`
	Scenario        string          `yaml:"scenario,omitempty"`
	Calls           []scenario.Call `yaml:"calls,omitempty"`
	LogLevel        string          `yaml:"log_level"`
}

type CarConfig struct {
	Mass        float64 `yaml:"mass"`
	CounterMass float64 `yaml:"counter_mass"`
	MaxLoad     float64 `yaml:"max_load"`
}

// EvenFloors returns n floors spaced height metres apart starting at 0.
func EvenFloors(n int, height float64) []float64 {
	floors := make([]float64, n)
	for i := range floors {
		floors[i] = float64(i) * height
	}
	return floors
}

func DefaultConfig() *Config {
	return &Config{
		Floors:         EvenFloors(DefaultFloors, DefaultFloorHeight),
		Cars:           DefaultCars,
		Dt:             DefaultDt,
		Duration:       DefaultDuration,
		TimeMultiplier: DefaultTimeMultiplier,
		Motor:          DefaultMotor,
		HeightPID: control.Params{
			Kp:         DefaultHeightKp,
			UpdateFreq: DefaultHeightFreq,
			Tolerance:  DefaultHeightTolerance,
		},
		Car: CarConfig{
			Mass:        DefaultCarMass,
			CounterMass: DefaultCounterMass,
			MaxLoad:     DefaultMaxLoad,
		},
		PassengerWeight: elevator.DefaultPassengerWeight,
		CallRate:        DefaultCallRate,
		LogLevel:        DefaultLogLevel,
	}
}

// Load reads a YAML config over the defaults. Relative motor and scenario
// paths are resolved against the config file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	cfg.Motor = resolve(dir, cfg.Motor)
	cfg.Scenario = resolve(dir, cfg.Scenario)
	return cfg, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if _, err := os.Stat(filepath.Join(dir, p)); err == nil {
		return filepath.Join(dir, p)
	}
	return p
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case len(c.Floors) == 0:
		return fmt.Errorf("%w: no floors", ErrInvalid)
	case c.Cars < 1:
		return fmt.Errorf("%w: cars must be at least 1, got %d", ErrInvalid, c.Cars)
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalid, c.Dt)
	case c.Duration < 0:
		return fmt.Errorf("%w: duration must not be negative, got %v", ErrInvalid, c.Duration)
	case c.TimeMultiplier <= 0:
		return fmt.Errorf("%w: time multiplier must be positive, got %v", ErrInvalid, c.TimeMultiplier)
	case c.CallRate < 0:
		return fmt.Errorf("%w: call rate must not be negative, got %v", ErrInvalid, c.CallRate)
	case c.Motor == "":
		return fmt.Errorf("%w: no motor parameter file", ErrInvalid)
	}
	sc := scenario.Scenario{Calls: c.Calls}
	return sc.Validate(len(c.Floors))
}

// Ticks is the number of dt steps that cover Duration.
func (c *Config) Ticks() int {
	return int(c.Duration/c.Dt + 0.5)
}

// ElevatorConfig is the per-car configuration shared by every car.
func (c *Config) ElevatorConfig() elevator.Config {
	return elevator.Config{
		Floors:      c.Floors,
		HeightPID:   c.HeightPID,
		Mass:        c.Car.Mass,
		CounterMass: c.Car.CounterMass,
		MaxLoad:     c.Car.MaxLoad,
	}
}

func (c *Config) SystemConfig() elevator.SystemConfig {
	return elevator.SystemConfig{
		Cars:            c.Cars,
		Floors:          c.Floors,
		PassengerWeight: c.PassengerWeight,
		TimeMultiplier:  c.TimeMultiplier,
	}
}
