package motor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/liftsim/internal/control"
	"gopkg.in/yaml.v3"
)

// Parameters describes a motor and its speed loop. SamplePath is resolved
// relative to the parameter file when it is not absolute.
type Parameters struct {
	PID               control.Params `yaml:"pid_parameters"`
	GearboxRatio      float64        `yaml:"gearbox_ratio"`
	OutputShaftRadius float64        `yaml:"output_shaft_radius"`
	SamplePath        string         `yaml:"sample_path"`
	SoftRPMLimit      float64        `yaml:"soft_rpm_limit"`
	SoftCurrentLimit  float64        `yaml:"soft_current_limit"`
}

func LoadParameters(path string) (*Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Parameters
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.SamplePath != "" && !filepath.IsAbs(p.SamplePath) {
		p.SamplePath = filepath.Join(filepath.Dir(path), p.SamplePath)
	}
	return &p, nil
}

func (p *Parameters) Validate() error {
	if p.GearboxRatio <= 0 {
		return fmt.Errorf("%w: got %v", ErrGearboxRatio, p.GearboxRatio)
	}
	return nil
}
