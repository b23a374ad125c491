package config

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/san-kum/liftsim/internal/scenario"
)

const testMotor = "../motor/testdata/motor_parameters.yaml"

func smallConfig() *Config {
	cfg := DefaultConfig()
	cfg.Floors = []float64{0, 10, 20}
	cfg.Motor = testMotor
	cfg.CallRate = 0
	cfg.Duration = 1
	return cfg
}

func TestBuild(t *testing.T) {
	cfg := smallConfig()
	cfg.Calls = []scenario.Call{{At: 0, Origin: 0, Destination: 1}}

	s, err := cfg.Build(1, zerolog.Nop())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	cars := s.System().Cars()
	if len(cars) != cfg.Cars {
		t.Fatalf("expected %d cars, got %d", cfg.Cars, len(cars))
	}
	if cars[0].Motor() == cars[1].Motor() {
		t.Error("cars must not share a motor")
	}

	result, err := s.Run(context.Background(), cfg.SimConfig(1))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Final.AssignedCalls != 1 {
		t.Errorf("expected the inline call to be dispatched, got %d", result.Final.AssignedCalls)
	}
}

func TestBuild_Invalid(t *testing.T) {
	cfg := smallConfig()
	cfg.Cars = 0
	if _, err := cfg.Build(1, zerolog.Nop()); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestBuild_MissingMotor(t *testing.T) {
	cfg := smallConfig()
	cfg.Motor = "does/not/exist.yaml"
	if _, err := cfg.Build(1, zerolog.Nop()); err == nil {
		t.Error("expected error for missing motor file")
	}
}

func TestCallSource(t *testing.T) {
	cfg := smallConfig()
	src, err := cfg.CallSource(1)
	if err != nil || src != nil {
		t.Errorf("expected no source without calls, got %v, %v", src, err)
	}

	cfg.Floors = EvenFloors(4, 4)
	cfg.Calls = []scenario.Call{{At: 1, Origin: 3, Destination: 0}}
	cfg.Scenario = "../scenario/testdata/morning.yaml"
	src, err = cfg.CallSource(1)
	if err != nil {
		t.Fatal(err)
	}
	if due := src.Due(2, 0.05); len(due) != 3 {
		t.Errorf("expected inline call then two scripted calls, got %v", due)
	}
	if due := src.Due(6, 0.05); len(due) != 1 || due[0].Origin != 2 {
		t.Errorf("expected the late descent, got %v", due)
	}
}

func TestCallSource_ScenarioOutOfRange(t *testing.T) {
	cfg := smallConfig()
	cfg.Scenario = "../scenario/testdata/morning.yaml"
	if _, err := cfg.CallSource(1); !errors.Is(err, scenario.ErrInvalidCall) {
		t.Errorf("expected ErrInvalidCall, got %v", err)
	}
}
