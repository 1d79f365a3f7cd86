package main

import (
	"fmt"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/rdwsim/internal/config"
	"github.com/san-kum/rdwsim/internal/experiment"
	"github.com/san-kum/rdwsim/internal/pathgen"
	"github.com/san-kum/rdwsim/internal/stats"
	"github.com/san-kum/rdwsim/internal/viz"
)

func (a *app) watchCmd() *cobra.Command {
	var (
		index         int
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "step one experiment with a live top-down view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, setup, err := a.pickSetup(index)
			if err != nil {
				return err
			}
			s, err := experiment.NewSession(a.cfg, reg, setup, a.logger)
			if err != nil {
				return err
			}

			m := viz.NewWatch(s, width, height)
			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				return err
			}
			if out, ok := m.Outcome(); ok {
				return printResults(a.out, []stats.Result{out.Result})
			}
			return nil
		},
	}
	experimentFlags(cmd)
	cmd.Flags().IntVar(&index, "index", 0, "experiment index within the batch")
	cmd.Flags().IntVar(&width, "width", 60, "canvas width in cells")
	cmd.Flags().IntVar(&height, "height", 24, "canvas height in cells")
	return cmd
}

func (a *app) presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [redirector]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := config.PresetGroups()
			if len(args) == 1 {
				groups = args
			}
			for _, g := range groups {
				names := config.ListPresets(g)
				if len(names) == 0 {
					fmt.Fprintf(a.out, "no presets for redirector: %s\n", g)
					continue
				}
				fmt.Fprintf(a.out, "%s:\n", g)
				for _, n := range names {
					p := config.GetPreset(g, n)
					fmt.Fprintf(a.out, "  %s/%-12s %s %v %gx%g\n", g, n, p.Experiment, p.Paths, p.TrackingSize.X, p.TrackingSize.Z)
				}
			}
			return nil
		},
	}
}

func (a *app) seedsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seeds",
		Short: "list path seeds and algorithms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(a.out, "path seeds:")
			for _, name := range pathgen.Names() {
				seed, err := pathgen.Lookup(name)
				if err != nil {
					return err
				}
				trials := seed.Trials
				if trials == 0 {
					trials = pathgen.DefaultTrials
				}
				fmt.Fprintf(a.out, "  %-18s %3d waypoints  %2d trials\n", name, seed.WaypointCount, trials)
			}

			reg := experiment.NewRegistry()
			fmt.Fprintf(a.out, "redirectors: %v\n", reg.ListRedirectors())
			fmt.Fprintf(a.out, "resetters: %v\n", reg.ListResetters())
			return nil
		},
	}
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the resolved configuration to a YAML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "rdwsim.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.Save(path, a.cfg); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %s\n", path)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := a.v.AllKeys()
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(a.out, "%s = %v\n", k, a.v.Get(k))
			}
			return nil
		},
	})
	return cmd
}
