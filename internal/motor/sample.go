package motor

import (
	"fmt"
	"math"
	"sort"
)

// Sample is one steady-state operating point of the motor.
// InputPower is in kW so energy accrues in kJ when integrated over seconds.
type Sample struct {
	Index      int     `json:"i"`
	InputPower float64 `json:"kwp_in"`
	Efficiency float64 `json:"efficiency"`
	Voltage    float64 `json:"voltage"`
	Current    float64 `json:"current"`
	RPM        float64 `json:"rpm"`
	Torque     float64 `json:"tnm"`
	IH         float64 `json:"ih"`
	MO         float64 `json:"mo"`
}

// Table is an immutable, validated sequence of samples ordered by current.
type Table struct {
	samples []Sample
}

// NewTable validates and copies samples. Rows must be non-decreasing in
// current and share one voltage and one torque.
func NewTable(samples []Sample) (*Table, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyTable
	}
	for i, s := range samples {
		if math.IsNaN(s.Current) {
			return nil, fmt.Errorf("%w: row %d has NaN current", ErrUnsorted, i)
		}
		if i == 0 {
			continue
		}
		prev := samples[i-1]
		if s.Current < prev.Current {
			return nil, fmt.Errorf("%w: row %d current %v after %v", ErrUnsorted, i, s.Current, prev.Current)
		}
		if s.Voltage != samples[0].Voltage {
			return nil, fmt.Errorf("%w: row %d has %v, row 0 has %v", ErrInconsistentVoltage, i, s.Voltage, samples[0].Voltage)
		}
		if s.Torque != samples[0].Torque {
			return nil, fmt.Errorf("%w: row %d has %v, row 0 has %v", ErrInconsistentTorque, i, s.Torque, samples[0].Torque)
		}
	}

	cp := make([]Sample, len(samples))
	copy(cp, samples)
	return &Table{samples: cp}, nil
}

func (t *Table) Len() int { return len(t.samples) }

// At returns the i-th sample.
func (t *Table) At(i int) Sample { return t.samples[i] }

// Samples returns a copy of the rows.
func (t *Table) Samples() []Sample {
	cp := make([]Sample, len(t.samples))
	copy(cp, t.samples)
	return cp
}

func (t *Table) MaxRPM() float64 {
	return t.max(func(s Sample) float64 { return s.RPM })
}

func (t *Table) MaxCurrent() float64 {
	return t.max(func(s Sample) float64 { return s.Current })
}

func (t *Table) MaxTorque() float64 {
	return t.max(func(s Sample) float64 { return s.Torque })
}

func (t *Table) max(field func(Sample) float64) float64 {
	m := field(t.samples[0])
	for _, s := range t.samples[1:] {
		if v := field(s); v > m {
			m = v
		}
	}
	return m
}

// FindSmallerClosest returns the largest i, capped at Len()-2, with
// samples[i].Current <= c. Values below the table map to 0.
func (t *Table) FindSmallerClosest(c float64) int {
	n := len(t.samples)
	if n < 2 {
		return 0
	}
	i := sort.Search(n, func(j int) bool { return t.samples[j].Current > c }) - 1
	if i < 0 {
		return 0
	}
	if i > n-2 {
		return n - 2
	}
	return i
}

// Simulate interpolates the operating point for current c. It reports false
// when c falls outside the characterized range; it never clamps.
//
// A table that starts at or above zero documents one direction only, so a
// negative current mirrors it: the point for -c is the point for c with
// Current and RPM negated. A table with rows below zero is used as is.
func (t *Table) Simulate(c float64) (Sample, bool) {
	first := t.samples[0].Current
	switch {
	case math.IsNaN(c), c > t.MaxCurrent():
		return Sample{}, false
	case c < 0 && first >= 0:
		s, ok := t.Simulate(-c)
		if !ok {
			return Sample{}, false
		}
		s.Current = c
		s.RPM = -s.RPM
		return s, true
	case c < first:
		return Sample{}, false
	}

	if len(t.samples) == 1 {
		s := t.samples[0]
		s.Index = 0
		s.Current = c
		return s, true
	}

	i := t.FindSmallerClosest(c)
	lo, hi := t.samples[i], t.samples[i+1]

	frac := 0.0
	if span := hi.Current - lo.Current; span != 0 {
		frac = (c - lo.Current) / span
	}

	return Sample{
		InputPower: lerp(lo.InputPower, hi.InputPower, frac),
		Efficiency: lerp(lo.Efficiency, hi.Efficiency, frac),
		Voltage:    lerp(lo.Voltage, hi.Voltage, frac),
		Current:    c,
		RPM:        lerp(lo.RPM, hi.RPM, frac),
		Torque:     lerp(lo.Torque, hi.Torque, frac),
		IH:         lerp(lo.IH, hi.IH, frac),
		MO:         lerp(lo.MO, hi.MO, frac),
	}, true
}

func lerp(a, b, f float64) float64 {
	return a + (b-a)*f
}
