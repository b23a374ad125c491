package motor

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/san-kum/liftsim/internal/control"
)

// Motor tracks a speed setpoint by commanding current through a speed PID
// and reading the resulting operating point from a sample table.
//
// GearboxRatio is motor rpm per m/s of car travel, so Speed is in m/s while
// the speed loop itself runs in rpm.
type Motor struct {
	table        *Table
	sample       Sample
	speedPID     *control.PID
	gearboxRatio float64
	rpm          float64
	energy       float64
	rpmLimit     float64
	currentLimit float64
	log          zerolog.Logger
}

// New builds a motor over a validated table. The speed loop's target and
// output clamps are the smaller of the table's bounds and the soft limits.
func New(p Parameters, t *Table, log zerolog.Logger) (*Motor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrEmptyTable
	}

	pid, err := control.New(p.PID)
	if err != nil {
		return nil, fmt.Errorf("motor: speed loop: %w", err)
	}

	rpmLimit := softMin(t.MaxRPM(), p.SoftRPMLimit)
	currentLimit := softMin(t.MaxCurrent(), p.SoftCurrentLimit)
	pid.SetTargetLimits(-rpmLimit, rpmLimit)
	lowCurrent := -currentLimit
	if first := t.At(0).Current; first < 0 {
		lowCurrent = math.Max(lowCurrent, first)
	}
	pid.SetOutputLimits(lowCurrent, currentLimit)

	idle, ok := t.Simulate(0)
	if !ok {
		return nil, &OverCurrentError{Current: 0, Limit: t.MaxCurrent()}
	}

	m := &Motor{
		table:        t,
		sample:       idle,
		speedPID:     pid,
		gearboxRatio: p.GearboxRatio,
		rpm:          idle.RPM,
		rpmLimit:     rpmLimit,
		currentLimit: currentLimit,
		log:          log.With().Str("component", "motor").Logger(),
	}
	m.log.Debug().
		Float64("rpm_limit", rpmLimit).
		Float64("current_limit", currentLimit).
		Int("samples", t.Len()).
		Msg("motor ready")
	return m, nil
}

// Load reads motor parameters and the sample table they reference.
func Load(paramPath string, log zerolog.Logger) (*Motor, error) {
	p, err := LoadParameters(paramPath)
	if err != nil {
		return nil, err
	}
	t, err := LoadTable(p.SamplePath)
	if err != nil {
		return nil, err
	}
	return New(*p, t, log)
}

func softMin(hard, soft float64) float64 {
	if soft <= 0 {
		return hard
	}
	return math.Min(hard, soft)
}

// Speed returns the car speed in m/s.
func (m *Motor) Speed() float64 {
	return m.rpm / m.gearboxRatio
}

// RPM returns the motor shaft speed.
func (m *Motor) RPM() float64 { return m.rpm }

// SetTargetSpeed sets the car speed setpoint in m/s. It returns false when
// the setpoint was clamped to the rpm ceiling.
func (m *Motor) SetTargetSpeed(v float64) bool {
	ok := m.speedPID.SetTarget(v * m.gearboxRatio)
	if !ok {
		m.log.Trace().Float64("requested", v).Float64("rpm", m.speedPID.Target()).Msg("speed target saturated")
	}
	return ok
}

// TargetSpeed returns the stored setpoint in m/s.
func (m *Motor) TargetSpeed() float64 {
	return m.speedPID.Target() / m.gearboxRatio
}

func (m *Motor) HasReachedTarget() bool {
	return m.speedPID.HasReachedTarget(m.rpm)
}

// Update accrues energy for the elapsed interval at the previous operating
// point, then commands a new current. A current outside the table is
// returned as an *OverCurrentError and keeps the previous operating point.
func (m *Motor) Update(dt float64) error {
	m.energy += m.sample.InputPower * dt

	current := m.speedPID.Update(m.rpm, dt)
	s, ok := m.table.Simulate(current)
	if !ok {
		err := &OverCurrentError{Current: current, Limit: m.table.MaxCurrent()}
		m.log.Error().Err(err).Float64("rpm", m.rpm).Msg("operating point lost")
		return err
	}

	m.sample = s
	m.rpm = s.RPM
	return nil
}

// Energy returns cumulative input energy in kJ.
func (m *Motor) Energy() float64 { return m.energy }

// Sample returns the current operating point.
func (m *Motor) Sample() Sample { return m.sample }

func (m *Motor) Table() *Table { return m.table }

func (m *Motor) RPMLimit() float64     { return m.rpmLimit }
func (m *Motor) CurrentLimit() float64 { return m.currentLimit }

// MaxSpeed is the car speed at the rpm ceiling, in m/s.
func (m *Motor) MaxSpeed() float64 {
	return m.rpmLimit / m.gearboxRatio
}

// MaxForce is the rope force at the table's torque, in N, from the power
// balance T·ω = F·v.
func (m *Motor) MaxForce() float64 {
	return m.table.MaxTorque() * m.gearboxRatio * 2 * math.Pi / 60
}

// SpeedPID exposes the inner loop for live tuning.
func (m *Motor) SpeedPID() *control.PID { return m.speedPID }
