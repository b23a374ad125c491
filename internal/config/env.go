package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment keys read by ApplyEnv.
const (
	EnvCars           = "LIFTSIM_CARS"
	EnvTimeMultiplier = "LIFTSIM_TIME_MULTIPLIER"
	EnvLogLevel       = "LIFTSIM_LOG_LEVEL"
	EnvMotor          = "LIFTSIM_MOTOR"
)

// ApplyEnv overrides cfg from the given .env files and the process
// environment, which wins over the files. Missing files are ignored.
func ApplyEnv(cfg *Config, files ...string) error {
	vars := map[string]string{}
	for _, f := range files {
		fileVars, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}

	if v, ok := lookup(EnvCars); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvCars, v, err)
		}
		cfg.Cars = n
	}
	if v, ok := lookup(EnvTimeMultiplier); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvTimeMultiplier, v, err)
		}
		cfg.TimeMultiplier = f
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvMotor); ok {
		cfg.Motor = v
	}
	return nil
}
