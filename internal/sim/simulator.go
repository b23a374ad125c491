package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/liftsim/internal/elevator"
	"github.com/san-kum/liftsim/internal/scenario"
)

// Simulator drives an elevator system tick by tick, feeding it calls from
// a scenario source.
type Simulator struct {
	sys       *elevator.System
	calls     scenario.Source
	metrics   []Metric
	observers []Observer
	step      int
	log       zerolog.Logger
}

// New wraps sys. calls may be nil for a run without traffic.
func New(sys *elevator.System, calls scenario.Source, log zerolog.Logger) *Simulator {
	return &Simulator{
		sys:       sys,
		calls:     calls,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       log.With().Str("component", "sim").Logger(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) System() *elevator.System { return s.sys }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration/cfg.Dt + 0.5)
	result := &Result{
		Times:   make([]float64, 0, steps+1),
		Energy:  make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}
	result.record(s.sys.Snapshot())

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		snap, err := s.Tick(cfg.Dt)
		if err != nil {
			s.finish(result)
			return result, err
		}
		result.record(snap)
		result.StepsTaken++
	}

	s.finish(result)
	s.log.Info().
		Int("ticks", result.StepsTaken).
		Float64("energy_kj", result.Final.TotalEnergy).
		Int("assigned", result.Final.AssignedCalls).
		Int("dropped", result.Final.DroppedCalls).
		Msg("run complete")
	return result, nil
}

func (s *Simulator) finish(result *Result) {
	result.Final = s.sys.Snapshot()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// Tick dispatches the calls due now and advances the system by dt.
func (s *Simulator) Tick(dt float64) (elevator.Snapshot, error) {
	return s.advance(dt, func() error { return s.sys.Step(dt) })
}

// Realtime steps the system on a wall-clock ticker, letting the system
// scale elapsed time by its multiplier. Each tick samples the clock once, so
// the calls offered for the tick and the step cover the same dt. It stops
// when ctx is done or the callback returns false.
func (s *Simulator) Realtime(ctx context.Context, interval time.Duration, callback func(elevator.Snapshot) bool) error {
	if interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %v", ErrInvalidConfig, interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		dt := s.sys.WallDelta()
		snap, err := s.advance(dt, func() error { return s.sys.Step(dt) })
		if err != nil {
			return err
		}
		if !callback(snap) {
			return nil
		}
	}
}

func (s *Simulator) advance(dt float64, step func() error) (elevator.Snapshot, error) {
	now := s.sys.Elapsed()
	if s.calls != nil {
		for _, c := range s.calls.Due(now, dt) {
			if _, err := s.sys.NewCall(c.Origin, c.Destination); err != nil {
				return elevator.Snapshot{}, &TickError{Step: s.step, Time: now, Wrapped: err}
			}
		}
	}

	if err := step(); err != nil {
		s.log.Error().Err(err).Int("tick", s.step).Float64("t", now).Msg("tick failed")
		return elevator.Snapshot{}, &TickError{Step: s.step, Time: now, Wrapped: err}
	}
	s.step++

	snap := s.sys.Snapshot()
	for _, m := range s.metrics {
		m.Observe(snap)
	}
	for _, obs := range s.observers {
		obs.OnStep(snap)
	}
	return snap, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	return nil
}
