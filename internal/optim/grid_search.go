package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/liftsim/internal/sim"
)

var ErrNoCandidate = errors.New("optim: every candidate failed")

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

// Builder returns a fresh simulator for one parameter set.
type Builder func(params map[string]float64) (*sim.Simulator, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameter names for %d ranges", len(params), len(ranges))
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search runs every grid point for cfg and returns the parameters with the
// lowest value of the named metric. Candidates whose run fails are kept in
// the trial list and never win.
func (g *GridSearch) Search(ctx context.Context, build Builder, cfg sim.Config, metricName string) (map[string]float64, float64, []Trial, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	var trials []Trial

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) {
		score, err := evaluate(ctx, build, params, cfg, metricName)
		trials = append(trials, Trial{Params: params, Score: score, Err: err})
		if err == nil && score < best {
			best = score
			bestParams = params
		}
	})
	if err != nil {
		return bestParams, best, trials, err
	}
	if bestParams == nil {
		return nil, best, trials, ErrNoCandidate
	}
	return bestParams, best, trials, nil
}

func evaluate(ctx context.Context, build Builder, params map[string]float64, cfg sim.Config, metricName string) (float64, error) {
	s, err := build(params)
	if err != nil {
		return math.Inf(1), err
	}
	result, err := s.Run(ctx, cfg)
	if err != nil {
		return math.Inf(1), err
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		return math.Inf(1), fmt.Errorf("optim: metric %s not recorded", metricName)
	}
	return val, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		visit(current)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
