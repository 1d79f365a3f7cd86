package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/rdwsim/internal/experiment"
	"github.com/san-kum/rdwsim/internal/stats"
	"github.com/san-kum/rdwsim/internal/storage"
	"github.com/san-kum/rdwsim/internal/trail"
	"github.com/san-kum/rdwsim/internal/viz"
)

// summaryColumns are the metrics printed after a batch; the full set is in
// summary.csv.
var summaryColumns = []string{
	stats.KeyResetCount,
	stats.KeySumVirtualDistance,
	stats.KeyVirtualDistanceResetsMedian,
	stats.KeyExperimentDuration,
}

func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run an experiment batch and save the results",
		Args:  cobra.NoArgs,
		RunE:  a.runBatch,
	}
	experimentFlags(cmd)
	d := cmd.Flags()
	d.Int("workers", 1, "experiments run in parallel")
	d.Bool("average", true, "merge trials into one row per configuration")
	d.Bool("samples", false, "save sampled time series")
	d.Bool("trails", false, "save real and virtual trail plots")
	d.String("db", "", "also insert results into this SQLite database")
	return cmd
}

func (a *app) runBatch(cmd *cobra.Command, args []string) error {
	cfg := a.cfg
	st := storage.New(cfg.Storage.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runner := experiment.NewRunner(cfg, experiment.NewRegistry(), a.logger)
	plan, err := runner.Plan()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "running %d experiments in %d configurations (seed %d)\n",
		len(plan.Setups), plan.Groups(), plan.Seed)

	var mu sync.Mutex
	runner.OnComplete = func(done, total int, setup experiment.Setup, o experiment.Outcome) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(a.out, "\r%s %d/%d", viz.ProgressBar(done, total, 30), done, total)
	}

	start := time.Now()
	report, err := runner.RunPlan(ctx, plan)
	fmt.Fprintln(a.out)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, report)
	if err != nil {
		return err
	}
	if cfg.Storage.Database != "" {
		if err := a.insertResults(ctx, cfg.Storage.Database, runID, report.Summary()); err != nil {
			return err
		}
	}

	fmt.Fprintf(a.out, "completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(a.out, "run id: %s\n\n", runID)
	return printResults(a.out, report.Summary())
}

func (a *app) insertResults(ctx context.Context, path, runID string, results []stats.Result) error {
	db, err := storage.OpenResultsDB(path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Insert(ctx, runID, results); err != nil {
		return err
	}
	a.logger.Info("results inserted", zap.String("database", path), zap.Int("rows", len(results)))
	return nil
}

func printResults(out io.Writer, results []stats.Result) error {
	if len(results) == 0 {
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	var header []string
	for _, f := range results[0].Descriptor {
		header = append(header, strings.ToUpper(f.Key))
	}
	for _, k := range summaryColumns {
		header = append(header, strings.ToUpper(k))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, r := range results {
		var row []string
		for _, f := range r.Descriptor {
			row = append(row, f.Value)
		}
		for _, k := range summaryColumns {
			v, _ := r.Lookup(k)
			row = append(row, v)
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

// pickSetup plans the configured batch and returns one experiment of it.
func (a *app) pickSetup(index int) (*experiment.Registry, experiment.Setup, error) {
	reg := experiment.NewRegistry()
	plan, err := experiment.NewPlan(a.cfg, reg, a.logger)
	if err != nil {
		return nil, experiment.Setup{}, err
	}
	if index < 0 || index >= len(plan.Setups) {
		return nil, experiment.Setup{}, fmt.Errorf("experiment index %d out of range [0, %d)", index, len(plan.Setups))
	}
	return reg, plan.Setups[index], nil
}

func (a *app) trailCmd() *cobra.Command {
	var (
		index  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "trail",
		Short: "run one experiment and plot its real and virtual trails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.Run.RecordTrails = true
			reg, setup, err := a.pickSetup(index)
			if err != nil {
				return err
			}
			s, err := experiment.NewSession(a.cfg, reg, setup, a.logger)
			if err != nil {
				return err
			}
			for !s.Step() {
			}
			out := s.Finish()
			if err := trail.SavePNG(*out.Trail, output); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s after %d ticks\n", storage.ExperimentKey(out.Result.Descriptor), out.Ticks)
			fmt.Fprintf(a.out, "trail written to %s\n", output)
			return nil
		},
	}
	experimentFlags(cmd)
	cmd.Flags().IntVar(&index, "index", 0, "experiment index within the batch")
	cmd.Flags().StringVarP(&output, "output", "o", "trail.png", "output PNG")
	return cmd
}
