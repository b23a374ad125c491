package sim

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/liftsim/internal/control"
	"github.com/san-kum/liftsim/internal/elevator"
	"github.com/san-kum/liftsim/internal/motor"
	"github.com/san-kum/liftsim/internal/scenario"
)

func newCar(fl []float64) (*elevator.Elevator, error) {
	m, err := motor.Load("../motor/testdata/motor_parameters.yaml", zerolog.Nop())
	if err != nil {
		return nil, err
	}
	return elevator.New(elevator.Config{
		Floors:    fl,
		HeightPID: control.Params{Kp: 1, UpdateFreq: 10, Tolerance: 0.05},
	}, m, zerolog.Nop())
}

func buildSystem(cars int, floors []float64) (*elevator.System, error) {
	return elevator.NewSystem(elevator.SystemConfig{Cars: cars, Floors: floors}, newCar, zerolog.Nop())
}

// steppingClock moves forward by step on every read.
type steppingClock struct {
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

type recordingSource struct {
	dts []float64
}

func (r *recordingSource) Due(_, dt float64) []scenario.Call {
	r.dts = append(r.dts, dt)
	return nil
}

func newTestSystem(t *testing.T, cars int, floors []float64) *elevator.System {
	t.Helper()
	sys, err := buildSystem(cars, floors)
	if err != nil {
		t.Fatal(err)
	}
	return sys
}

type countingMetric struct {
	count int
}

func (c *countingMetric) Name() string              { return "count" }
func (c *countingMetric) Observe(elevator.Snapshot) { c.count++ }
func (c *countingMetric) Value() float64            { return float64(c.count) }
func (c *countingMetric) Reset()                    { c.count = 0 }

func TestSimulatorRun(t *testing.T) {
	sys := newTestSystem(t, 1, []float64{0, 10})
	sim := New(sys, scenario.NewScript([]scenario.Call{{At: 0, Origin: 0, Destination: 1}}), zerolog.Nop())

	result, err := sim.Run(context.Background(), Config{Dt: 0.05, Duration: 20})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 400 {
		t.Errorf("expected 400 steps, got %d", result.StepsTaken)
	}
	if len(result.Times) != 401 || len(result.Heights[0]) != 401 {
		t.Errorf("expected 401 samples, got %d times %d heights", len(result.Times), len(result.Heights[0]))
	}
	if result.Final.AssignedCalls != 1 {
		t.Errorf("expected the scripted call to be assigned, got %d", result.Final.AssignedCalls)
	}
	if !result.Final.Cars[0].Idle {
		t.Error("car should have arrived within 20 s")
	}
	if h := result.Final.Cars[0].Height; h < 9.95 || h > 10.05 {
		t.Errorf("final height %v not at floor 1", h)
	}
	for i := 1; i < len(result.Energy); i++ {
		if result.Energy[i] < result.Energy[i-1] {
			t.Fatalf("total energy decreased at sample %d", i)
		}
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(newTestSystem(t, 1, []float64{0, 10}), nil, zerolog.Nop())

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(newTestSystem(t, 2, []float64{0, 10}), nil, zerolog.Nop())

	metric := &countingMetric{}
	sim.AddMetric(metric)
	observed := 0
	sim.AddObserver(ObserverFunc(func(elevator.Snapshot) { observed++ }))

	result, err := sim.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Metrics["count"] != 10 {
		t.Errorf("expected 10 observations in the result, got %v", result.Metrics["count"])
	}
	if observed != 10 {
		t.Errorf("expected 10 observer calls, got %d", observed)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	sim := New(newTestSystem(t, 1, []float64{0, 10}), nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Run(ctx, Config{Dt: 0.05, Duration: 10})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Errorf("expected an empty partial result, got %+v", result)
	}
}

func TestSimulatorBadCallStopsRun(t *testing.T) {
	calls := scenario.NewScript([]scenario.Call{{At: 0.5, Origin: 0, Destination: 7}})
	sim := New(newTestSystem(t, 1, []float64{0, 10}), calls, zerolog.Nop())

	result, err := sim.Run(context.Background(), Config{Dt: 0.1, Duration: 2})

	var tickErr *TickError
	if !errors.As(err, &tickErr) {
		t.Fatalf("expected *TickError, got %v", err)
	}
	if !errors.Is(err, elevator.ErrFloorOutOfRange) {
		t.Errorf("tick error should wrap the dispatch failure, got %v", err)
	}
	if result.StepsTaken >= 20 {
		t.Error("run should stop early")
	}
}

func TestSimulatorRealtime(t *testing.T) {
	sim := New(newTestSystem(t, 1, []float64{0, 10}), nil, zerolog.Nop())

	ticks := 0
	err := sim.Realtime(context.Background(), time.Millisecond, func(elevator.Snapshot) bool {
		ticks++
		return ticks < 3
	})
	if err != nil {
		t.Fatal(err)
	}
	if ticks != 3 {
		t.Errorf("expected 3 callbacks, got %d", ticks)
	}
	if sim.System().Elapsed() <= 0 {
		t.Error("wall time should have advanced the system")
	}

	if err := sim.Realtime(context.Background(), 0, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSimulatorRealtime_OffersSteppedDt(t *testing.T) {
	sys, err := elevator.NewSystem(elevator.SystemConfig{
		Cars:           1,
		Floors:         []float64{0, 10},
		TimeMultiplier: 2,
		Clock:          &steppingClock{now: time.Unix(0, 0), step: 30 * time.Millisecond},
	}, newCar, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	src := &recordingSource{}
	sim := New(sys, src, zerolog.Nop())

	ticks := 0
	err = sim.Realtime(context.Background(), time.Millisecond, func(elevator.Snapshot) bool {
		ticks++
		return ticks < 4
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(src.dts) != 4 {
		t.Fatalf("expected 4 offers, got %d", len(src.dts))
	}
	sum := 0.0
	for i, dt := range src.dts {
		if math.Abs(dt-0.06) > 1e-9 {
			t.Errorf("offer %d: dt %v, want the clock's 0.06 rather than the ticker's", i, dt)
		}
		sum += dt
	}
	if math.Abs(sum-sys.Elapsed()) > 1e-9 {
		t.Errorf("offered %v but stepped %v", sum, sys.Elapsed())
	}
}

func TestEnsemble(t *testing.T) {
	build := func(seed int64) (*Simulator, error) {
		traffic, err := scenario.NewTraffic(3, 0.5, seed)
		if err != nil {
			return nil, err
		}
		sys, err := buildSystem(2, []float64{0, 4, 8})
		if err != nil {
			return nil, err
		}
		return New(sys, traffic, zerolog.Nop()), nil
	}

	results, err := NewEnsemble(build, 4, 100).Run(context.Background(), Config{Dt: 0.05, Duration: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, r := range results {
		if r == nil || r.StepsTaken != 100 {
			t.Errorf("run %d incomplete: %+v", i, r)
		}
	}
}

func TestEnsembleBuildError(t *testing.T) {
	boom := errors.New("boom")
	build := func(int64) (*Simulator, error) { return nil, boom }

	if _, err := NewEnsemble(build, 2, 0).Run(context.Background(), Config{Dt: 0.1, Duration: 1}); !errors.Is(err, boom) {
		t.Errorf("expected build error, got %v", err)
	}
}
