package control

import (
	"fmt"
	"math"
)

// Params configures a PID. Limits are only applied when their Enable flag is set;
// a zero IntegralLimit or SlewLimit disables that clamp.
type Params struct {
	Kp            float64 `yaml:"kp"`
	Ki            float64 `yaml:"ki"`
	Kd            float64 `yaml:"kd"`
	IntegralLimit float64 `yaml:"integral_limit"`
	UpdateFreq    float64 `yaml:"update_freq"`
	Tolerance     float64 `yaml:"tolerance"`

	EnableTargetLimits bool    `yaml:"enable_target_limits"`
	MinTarget          float64 `yaml:"min_target"`
	MaxTarget          float64 `yaml:"max_target"`

	EnableOutputLimits bool    `yaml:"enable_output_limits"`
	MinOutput          float64 `yaml:"min_output"`
	MaxOutput          float64 `yaml:"max_output"`

	SlewLimit float64 `yaml:"slew_limit"`
}

// PID is a discrete PID controller that steps at a fixed internal rate
// regardless of how often Update is called.
type PID struct {
	Params

	target      float64
	integral    float64
	prevErr     float64
	prevOutput  float64
	accumulated float64
}

func New(p Params) (*PID, error) {
	if p.UpdateFreq <= 0 || math.IsNaN(p.UpdateFreq) || math.IsInf(p.UpdateFreq, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrUpdateFrequency, p.UpdateFreq)
	}
	if p.Tolerance < 0 {
		return nil, fmt.Errorf("%w: got %v", ErrTolerance, p.Tolerance)
	}
	if p.EnableTargetLimits && p.MinTarget > p.MaxTarget {
		return nil, fmt.Errorf("%w: target [%v, %v]", ErrLimits, p.MinTarget, p.MaxTarget)
	}
	if p.EnableOutputLimits && p.MinOutput > p.MaxOutput {
		return nil, fmt.Errorf("%w: output [%v, %v]", ErrLimits, p.MinOutput, p.MaxOutput)
	}
	return &PID{Params: p}, nil
}

// SetTarget stores a new setpoint. With target limits enabled an out of range
// value is clamped to the nearer bound and false is returned.
func (p *PID) SetTarget(v float64) bool {
	if p.EnableTargetLimits {
		if v < p.MinTarget {
			p.target = p.MinTarget
			return false
		}
		if v > p.MaxTarget {
			p.target = p.MaxTarget
			return false
		}
	}
	p.target = v
	return true
}

func (p *PID) Target() float64 { return p.target }

// Output returns the last computed output.
func (p *PID) Output() float64 { return p.prevOutput }

// SetTargetLimits enables target clamping. The current target is not re-clamped.
func (p *PID) SetTargetLimits(min, max float64) {
	p.EnableTargetLimits = true
	p.MinTarget = min
	p.MaxTarget = max
}

// SetOutputLimits enables output clamping.
func (p *PID) SetOutputLimits(min, max float64) {
	p.EnableOutputLimits = true
	p.MinOutput = min
	p.MaxOutput = max
}

// HasReachedTarget reports whether v lies strictly within tolerance of the target.
func (p *PID) HasReachedTarget(v float64) bool {
	return math.Abs(p.target-v) < p.Tolerance
}

// Update advances the controller. Until 1/UpdateFreq seconds have accumulated
// the previous output is returned unchanged.
func (p *PID) Update(current, dt float64) float64 {
	p.accumulated += dt
	if p.accumulated < 1/p.UpdateFreq {
		return p.prevOutput
	}
	p.accumulated = 0

	err := p.target - current

	p.integral += err * dt
	if p.IntegralLimit != 0 {
		limit := math.Abs(p.IntegralLimit)
		p.integral = clamp(p.integral, -limit, limit)
	}

	derivative := 0.0
	if dt > 0 {
		derivative = (err - p.prevErr) / dt
	}
	p.prevErr = err

	out := p.Kp*err + p.Ki*p.integral + p.Kd*derivative

	if p.EnableOutputLimits {
		out = clamp(out, p.MinOutput, p.MaxOutput)
	}

	// slew is measured against the process value, not the previous output
	if p.SlewLimit != 0 && dt > 0 {
		step := math.Abs(p.SlewLimit) * dt
		out = clamp(out, current-step, current+step)
	}

	p.prevOutput = out
	return out
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.prevOutput = 0
	p.accumulated = 0
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":     p.Kp,
		"Ki":     p.Ki,
		"Kd":     p.Kd,
		"Target": p.target,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "Target":
		p.SetTarget(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
