package experiment

import (
	"context"
	"sync/atomic"

	"github.com/san-kum/rdwsim/internal/config"
	"github.com/san-kum/rdwsim/internal/stats"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ctxCheckInterval is how many ticks pass between cancellation checks.
const ctxCheckInterval = 1024

// Runner executes a batch. With Workers above one, setups run concurrently;
// each experiment still owns its manager, aggregator and walker.
type Runner struct {
	cfg    *config.Config
	reg    *Registry
	logger *zap.Logger

	// OnComplete is called after every experiment. With several workers it
	// is called from several goroutines.
	OnComplete func(done, total int, setup Setup, o Outcome)
}

func NewRunner(cfg *config.Config, reg *Registry, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, reg: reg, logger: logger}
}

func (r *Runner) Plan() (*Plan, error) {
	return NewPlan(r.cfg, r.reg, r.logger)
}

// Run plans and executes the whole batch.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	plan, err := r.Plan()
	if err != nil {
		return nil, err
	}
	return r.RunPlan(ctx, plan)
}

func (r *Runner) RunPlan(ctx context.Context, plan *Plan) (*Report, error) {
	if len(plan.Setups) == 0 {
		return nil, ErrEmptyPlan
	}
	outcomes := make([]Outcome, len(plan.Setups))
	total := len(plan.Setups)

	r.logger.Info("batch started",
		zap.String("experiment", r.cfg.Experiment),
		zap.String("redirector", r.cfg.Redirector),
		zap.String("resetter", r.cfg.Resetter),
		zap.Int("experiments", total),
		zap.Int64("seed", plan.Seed))

	workers := max(1, r.cfg.Run.Workers)
	if workers == 1 {
		for i, setup := range plan.Setups {
			o, err := r.runSetup(ctx, setup, total)
			if err != nil {
				return nil, err
			}
			outcomes[i] = o
			r.complete(i+1, total, setup, o)
		}
	} else {
		var finished atomic.Int64
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, setup := range plan.Setups {
			g.Go(func() error {
				o, err := r.runSetup(gctx, setup, total)
				if err != nil {
					return err
				}
				outcomes[i] = o
				r.complete(int(finished.Add(1)), total, setup, o)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	report := newReport(plan, outcomes, r.cfg.Run.AverageTrials)
	r.logger.Info("batch finished", zap.Int("experiments", total))
	return report, nil
}

func (r *Runner) complete(done, total int, setup Setup, o Outcome) {
	if r.OnComplete != nil {
		r.OnComplete(done, total, setup, o)
	}
}

func (r *Runner) runSetup(ctx context.Context, setup Setup, total int) (Outcome, error) {
	wrap := func(err error) error {
		return &ExperimentError{Index: setup.Index, Descriptor: setup.Descriptor(false), Wrapped: err}
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, wrap(err)
	}

	logger := r.logger.With(zap.Int("index", setup.Index))
	logger.Info("experiment started",
		zap.Int("total", total),
		zap.String("path", setup.Path.Name),
		zap.Int("trial", setup.Trial),
		zap.Float64("tracking_size_x", setup.Size.X),
		zap.Float64("tracking_size_z", setup.Size.Z))

	s, err := NewSession(r.cfg, r.reg, setup, logger)
	if err != nil {
		return Outcome{}, wrap(err)
	}
	for !s.Step() {
		if s.Ticks()%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Outcome{}, wrap(err)
			}
		}
	}

	o := s.Finish()
	resets, _ := o.Result.Get(stats.KeyResetCount)
	logger.Info("experiment finished",
		zap.Int("ticks", o.Ticks),
		zap.Bool("timed_out", s.TimedOut()),
		zap.Float64("resets", resets.Scalar))
	if s.TimedOut() {
		logger.Warn("experiment hit the tick cap", zap.Int("max_ticks", r.cfg.Run.MaxTicks))
	}
	return o, nil
}
