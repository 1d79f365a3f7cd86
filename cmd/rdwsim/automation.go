package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/rdwsim/internal/automation"
	"github.com/san-kum/rdwsim/internal/config"
	"github.com/san-kum/rdwsim/internal/experiment"
	"github.com/san-kum/rdwsim/internal/optim"
	"github.com/san-kum/rdwsim/internal/stats"
	"github.com/san-kum/rdwsim/internal/storage"
)

func (a *app) scenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario of batches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			st := storage.New(a.cfg.Storage.DataDir)
			if err := st.Init(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			fmt.Fprintf(a.out, "scenario %s: %d steps\n", sc.Name, len(sc.Steps))
			results, err := automation.RunScenario(ctx, sc, a.cfg, experiment.NewRegistry(), st, a.logger)
			for _, r := range results {
				runID := r.RunID
				if runID == "" {
					runID = "(not saved)"
				}
				fmt.Fprintf(a.out, "\n%s  %s\n", r.Name, runID)
				if perr := printResults(a.out, r.Report.Summary()); perr != nil {
					return perr
				}
			}
			return err
		},
	}
	return cmd
}

func (a *app) sweepCmd() *cobra.Command {
	var sweep automation.ParameterSweep
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one batch per value of a parameter",
		Long:  "run one batch per value of a parameter; parameters: " + strings.Join(config.Tunables(), ", "),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			results, err := automation.RunSweep(ctx, sweep, a.cfg, experiment.NewRegistry(), a.logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			header := []string{strings.ToUpper(sweep.Param), "EXPERIMENTS"}
			for _, k := range summaryColumns {
				header = append(header, strings.ToUpper(k))
			}
			fmt.Fprintln(w, strings.Join(header, "\t"))
			for _, r := range results {
				row := []string{strconv.FormatFloat(r.ParamValue, 'g', -1, 64), strconv.Itoa(r.Experiments)}
				for _, k := range summaryColumns {
					v, _ := r.Summary.Lookup(k)
					row = append(row, v)
				}
				fmt.Fprintln(w, strings.Join(row, "\t"))
			}
			return w.Flush()
		},
	}
	experimentFlags(cmd)
	f := cmd.Flags()
	f.StringVar(&sweep.Param, "param", "curvature_radius", "parameter to vary")
	f.Float64Var(&sweep.Min, "min", 5, "first value")
	f.Float64Var(&sweep.Max, "max", 15, "last value")
	f.IntVar(&sweep.Steps, "steps", 5, "number of values")
	return cmd
}

func (a *app) tuneCmd() *cobra.Command {
	var (
		grid     []string
		metric   string
		maximize bool
	)
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search parameters for the best batch metric",
		Long: "grid search parameters for the best batch metric, e.g.\n" +
			"  rdwsim tune --grid max_rot=0.3,0.49 --grid curvature_radius=5,7.5,10",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, ranges, err := parseGrid(grid)
			if err != nil {
				return err
			}
			g, err := optim.NewGridSearch(names, ranges)
			if err != nil {
				return err
			}
			g.Maximize = maximize

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			fmt.Fprintf(a.out, "searching %d grid points for %s\n", g.Size(), metric)
			best, all, err := g.Search(ctx, a.cfg, experiment.NewRegistry(), metric, a.logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, strings.ToUpper(strings.Join(append(append([]string(nil), names...), metric), "\t")))
			for _, e := range all {
				row := make([]string, 0, len(names)+1)
				for _, n := range names {
					row = append(row, strconv.FormatFloat(e.Params[n], 'g', -1, 64))
				}
				row = append(row, strconv.FormatFloat(e.Value, 'g', 6, 64))
				fmt.Fprintln(w, strings.Join(row, "\t"))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			keys := make([]string, 0, len(best.Params))
			for k := range best.Params {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			parts := make([]string, len(keys))
			for i, k := range keys {
				parts[i] = fmt.Sprintf("%s=%g", k, best.Params[k])
			}
			fmt.Fprintf(a.out, "\nbest: %s (%s %g)\n", strings.Join(parts, " "), metric, best.Value)
			return nil
		},
	}
	experimentFlags(cmd)
	f := cmd.Flags()
	f.StringArrayVar(&grid, "grid", nil, "parameter=v1,v2,... (repeatable)")
	f.StringVar(&metric, "metric", stats.KeyResetCount, "summary metric to optimise")
	f.BoolVar(&maximize, "maximize", false, "look for the largest value instead of the smallest")
	return cmd
}

// parseGrid turns name=v1,v2 flags into parallel name and value lists.
func parseGrid(entries []string) ([]string, [][]float64, error) {
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("at least one --grid is required")
	}
	names := make([]string, 0, len(entries))
	ranges := make([][]float64, 0, len(entries))
	for _, entry := range entries {
		name, list, ok := strings.Cut(entry, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("invalid grid %q, want name=v1,v2", entry)
		}
		var values []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %s: %w", name, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}
