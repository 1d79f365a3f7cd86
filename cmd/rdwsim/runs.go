package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/rdwsim/internal/stats"
	"github.com/san-kum/rdwsim/internal/storage"
)

func (a *app) store() *storage.Store {
	return storage.New(a.cfg.Storage.DataDir)
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := a.store().List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(a.out, "no runs found")
				return nil
			}

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tEXPERIMENT\tREDIRECTOR\tRESETTER\tPATHS\tEXPERIMENTS")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
					run.ID,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Experiment,
					run.Redirector,
					run.Resetter,
					strings.Join(run.Paths, ","),
					run.Experiments,
				)
			}
			return w.Flush()
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run_id]",
		Short: "print the summary of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.store()
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			header, rows, err := st.LoadSummary(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "run: %s\n", meta.ID)
			fmt.Fprintf(a.out, "experiment: %s  redirector: %s  resetter: %s  seed: %d\n",
				meta.Experiment, meta.Redirector, meta.Resetter, meta.Seed)
			for i, row := range rows {
				fmt.Fprintf(a.out, "\n[%d]\n", i)
				w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
				for j, col := range header {
					if j < len(row) {
						fmt.Fprintf(w, "  %s\t%s\n", col, row[j])
					}
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (a *app) plotCmd() *cobra.Command {
	var experimentKey string
	cmd := &cobra.Command{
		Use:   "plot [run_id] [series]",
		Short: "plot a sampled series of a run",
		Long:  "plot a sampled series of a run; the run must have been saved with --samples",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.store()
			series := stats.SeriesDistancesToBoundary
			if len(args) > 1 {
				series = args[1]
			}
			if experimentKey == "" {
				keys, err := st.Experiments(args[0])
				if err != nil {
					return err
				}
				if len(keys) == 0 {
					return fmt.Errorf("run %s has no sampled series", args[0])
				}
				experimentKey = keys[0]
			}

			s, err := st.LoadSeries(args[0], experimentKey, series)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "experiment: %s\n\n", experimentKey)

			if len(s.Points) > 0 {
				xs := make([]float64, len(s.Points))
				zs := make([]float64, len(s.Points))
				for i, p := range s.Points {
					xs[i], zs[i] = p.X(), p.Y()
				}
				fmt.Fprintln(a.out, asciigraph.PlotMany([][]float64{xs, zs},
					asciigraph.Height(10),
					asciigraph.Width(80),
					asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
					asciigraph.Caption(series+" (x red, z blue)"),
				))
				return nil
			}
			if len(s.Values) == 0 {
				return fmt.Errorf("series %s is empty", series)
			}
			fmt.Fprintln(a.out, asciigraph.Plot(s.Values,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(series),
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&experimentKey, "experiment-key", "", "experiment within the run (default: first)")
	return cmd
}

func (a *app) exportJSONCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run summary to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.store().Export(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				return storage.ExportJSON(a.out, data)
			}
			if err := storage.ExportJSONFile(output, data); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "exported to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (a *app) queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [run_id]",
		Short: "read results back from the SQLite database",
		Long:  "without a run id, list the runs in the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Storage.Database
			if path == "" {
				return fmt.Errorf("no database configured (use --db or storage.database)")
			}
			db, err := storage.OpenResultsDB(path)
			if err != nil {
				return err
			}
			defer db.Close()

			if len(args) == 0 {
				runs, err := db.Runs(cmd.Context())
				if err != nil {
					return err
				}
				for _, r := range runs {
					fmt.Fprintln(a.out, r)
				}
				return nil
			}

			rows, err := db.Query(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "IDX\tEXPERIMENT\tKEY\tVALUE")
			for _, r := range rows {
				value := "N/A"
				if r.Value.Valid {
					value = fmt.Sprintf("%g", r.Value.Float64)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Index, r.Experiment, r.Key, value)
			}
			return w.Flush()
		},
	}
	cmd.Flags().String("db", "", "SQLite database")
	return cmd
}
