// Package optim searches configuration parameters for the batch that
// minimises a summary metric.
package optim

import (
	"context"
	"fmt"
	"maps"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/rdwsim/internal/automation"
	"github.com/san-kum/rdwsim/internal/config"
	"github.com/san-kum/rdwsim/internal/experiment"
	"github.com/san-kum/rdwsim/internal/stats"
)

// Evaluation is one grid point and the averaged metric of its batch.
type Evaluation struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	// Maximize flips the search to the largest metric value.
	Maximize bool
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("grid search: %d parameters for %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("grid search: no values for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs one batch per grid point and returns the best point together
// with every evaluation in grid order. Points whose metric is missing are
// recorded as NaN and never win.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	reg *experiment.Registry,
	metricName string,
	logger *zap.Logger,
) (Evaluation, []Evaluation, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	best := Evaluation{Value: math.Inf(1)}
	if g.Maximize {
		best.Value = math.Inf(-1)
	}
	var all []Evaluation

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		cfg := base.Clone()
		for name, v := range params {
			if err := cfg.SetParam(name, v); err != nil {
				return err
			}
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%v: %w", params, err)
		}

		report, err := experiment.NewRunner(cfg, reg, logger).Run(ctx)
		if err != nil {
			return err
		}

		val := math.NaN()
		if v, ok := automation.Average(report.Results).Get(metricName); ok && v.Kind == stats.Scalar {
			val = v.Scalar
		}
		eval := Evaluation{Params: maps.Clone(params), Value: val}
		all = append(all, eval)
		logger.Debug("grid point evaluated", zap.Any("params", params), zap.Float64(metricName, val))

		if g.better(val, best.Value) {
			best = eval
		}
		return nil
	})
	if err != nil {
		return Evaluation{}, all, err
	}
	if best.Params == nil {
		return Evaluation{}, all, fmt.Errorf("grid search: metric %q missing at every point", metricName)
	}
	return best, all, nil
}

func (g *GridSearch) better(val, best float64) bool {
	if math.IsNaN(val) {
		return false
	}
	if g.Maximize {
		return val > best
	}
	return val < best
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	evaluate func(map[string]float64) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		return evaluate(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := maps.Clone(current)
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, evaluate); err != nil {
			return err
		}
	}
	return nil
}
