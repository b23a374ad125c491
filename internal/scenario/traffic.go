package scenario

import (
	"fmt"
	"math/rand"
	"time"
)

// Traffic generates random visitors. In each tick a call appears with
// probability rate·dt between two distinct floors.
type Traffic struct {
	floors int
	rate   float64
	rng    *rand.Rand
}

// NewTraffic builds a generator over floors floors. A zero seed seeds from
// the clock.
func NewTraffic(floors int, rate float64, seed int64) (*Traffic, error) {
	if floors < 2 {
		return nil, fmt.Errorf("%w: random traffic needs two floors, got %d", ErrInvalidCall, floors)
	}
	if rate < 0 {
		return nil, fmt.Errorf("%w: got %v", ErrCallRate, rate)
	}

	rng := rand.New(rand.NewSource(seed))
	if seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Traffic{floors: floors, rate: rate, rng: rng}, nil
}

func (t *Traffic) Due(now, dt float64) []Call {
	if t.rng.Float64() >= t.rate*dt {
		return nil
	}
	return []Call{t.Next(now)}
}

// Next draws one call unconditionally.
func (t *Traffic) Next(now float64) Call {
	origin := t.rng.Intn(t.floors)
	dest := t.rng.Intn(t.floors - 1)
	if dest >= origin {
		dest++
	}
	return Call{At: now, Origin: origin, Destination: dest}
}

// Generate draws a fixed script of calls over duration seconds, sampling
// every dt.
func (t *Traffic) Generate(duration, dt float64) []Call {
	var calls []Call
	for now := dt; now <= duration; now += dt {
		calls = append(calls, t.Due(now, dt)...)
	}
	return calls
}
