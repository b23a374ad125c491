package scenario

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidCall = errors.New("scenario: invalid call")
	ErrCallRate    = errors.New("scenario: call rate must not be negative")
)

// Call is a request at simulated time At to ride from Origin to Destination.
type Call struct {
	At          float64 `yaml:"at"`
	Origin      int     `yaml:"origin"`
	Destination int     `yaml:"destination"`
}

// Scenario is a scripted sequence of calls.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Calls       []Call `yaml:"calls"`
}

// LoadScenario loads a scenario from a YAML file. Calls are ordered by time.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sort.SliceStable(sc.Calls, func(i, j int) bool { return sc.Calls[i].At < sc.Calls[j].At })

	return &sc, nil
}

// Validate checks every call against a building with the given number of
// floors.
func (s *Scenario) Validate(floors int) error {
	for i, c := range s.Calls {
		if c.At < 0 {
			return fmt.Errorf("%w: call %d at negative time %v", ErrInvalidCall, i, c.At)
		}
		if c.Origin < 0 || c.Origin >= floors || c.Destination < 0 || c.Destination >= floors {
			return fmt.Errorf("%w: call %d %d->%d outside %d floors", ErrInvalidCall, i, c.Origin, c.Destination, floors)
		}
	}
	return nil
}

// Source yields the calls due in the tick (now-dt, now].
type Source interface {
	Due(now, dt float64) []Call
}

// Script replays a scenario's calls in time order.
type Script struct {
	calls []Call
	next  int
}

func NewScript(calls []Call) *Script {
	sorted := append([]Call(nil), calls...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })
	return &Script{calls: sorted}
}

func (s *Script) Due(now, _ float64) []Call {
	var due []Call
	for s.next < len(s.calls) && s.calls[s.next].At <= now {
		due = append(due, s.calls[s.next])
		s.next++
	}
	return due
}

// Remaining reports how many calls have not been replayed yet.
func (s *Script) Remaining() int { return len(s.calls) - s.next }

type merged []Source

func (m merged) Due(now, dt float64) []Call {
	var due []Call
	for _, src := range m {
		due = append(due, src.Due(now, dt)...)
	}
	return due
}

// Merge combines sources; calls come out in argument order.
func Merge(sources ...Source) Source {
	var m merged
	for _, s := range sources {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}
