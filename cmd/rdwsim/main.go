package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/san-kum/rdwsim/internal/config"
	"github.com/san-kum/rdwsim/internal/observability"
)

// flagKeys maps command line flags onto configuration keys. Each command
// binds only the flags it defines.
var flagKeys = map[string]string{
	"data":       "storage.data_dir",
	"db":         "storage.database",
	"log-level":  "logger.level",
	"log-file":   "logger.log_file",
	"experiment": "experiment",
	"redirector": "redirector",
	"resetter":   "resetter",
	"paths":      "paths",
	"trials":     "trials",
	"seed":       "seed",
	"size-x":     "tracking_size.x",
	"size-z":     "tracking_size.z",
	"random":     "pose.random",
	"workers":    "run.workers",
	"max-ticks":  "run.max_ticks",
	"average":    "run.average_trials",
	"samples":    "run.sampled_series",
	"trails":     "run.record_trails",
}

type app struct {
	v       *viper.Viper
	cfgFile string
	preset  string

	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out}

	root := &cobra.Command{
		Use:               "rdwsim",
		Short:             "redirected walking simulation lab",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			observability.Sync()
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./rdwsim.yaml)")
	pf.StringVar(&a.preset, "preset", "", "start from a preset, e.g. s2c/office")
	pf.String("data", config.DefaultDataDir, "data directory")
	pf.String("log-level", "info", "log level")
	pf.String("log-file", "", "also write JSON logs to this file")

	root.AddCommand(
		a.runCmd(),
		a.watchCmd(),
		a.trailCmd(),
		a.scenarioCmd(),
		a.sweepCmd(),
		a.tuneCmd(),
		a.listCmd(),
		a.showCmd(),
		a.plotCmd(),
		a.exportJSONCmd(),
		a.queryCmd(),
		a.presetsCmd(),
		a.seedsCmd(),
		a.configCmd(),
	)
	return root
}

// setup resolves the configuration for cmd. Precedence from low to high:
// defaults or preset, config file, RDWSIM_* environment, flags.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	base := config.DefaultConfig()
	if a.preset != "" {
		group, name, _ := strings.Cut(a.preset, "/")
		p := config.GetPreset(group, name)
		if p == nil {
			return fmt.Errorf("unknown preset: %s (available for %s: %v)", a.preset, group, config.ListPresets(group))
		}
		base = p
	}
	config.SetDefaultsFrom(a.v, base)

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigName("rdwsim")
		a.v.SetConfigType("yaml")
	}
	a.v.SetEnvPrefix("RDWSIM")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	cfg, err := config.FromViper(a.v)
	if err != nil {
		observability.InitializeLogger(config.DefaultLoggerConfig())
		return err
	}
	a.cfg = cfg

	observability.InitializeLogger(cfg.Logger)
	a.logger = observability.GetLogger()
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("config loaded", zap.String("file", used))
	}
	return nil
}

// experimentFlags adds the flags that shape a batch.
func experimentFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.String("experiment", d.Experiment, "experiment type: fixed, varying_sizes, varying_shapes, gain_scales")
	f.String("redirector", d.Redirector, "redirection algorithm")
	f.String("resetter", d.Resetter, "reset algorithm")
	f.StringSlice("paths", d.Paths, "path seeds")
	f.Int("trials", d.Trials, "trials per path (0 uses the seed's count)")
	f.Int64("seed", d.Seed, "batch seed")
	f.Float64("size-x", d.TrackingSize.X, "tracking area width (m)")
	f.Float64("size-z", d.TrackingSize.Z, "tracking area length (m)")
	f.Bool("random", d.Pose.Random, "random start pose")
	f.Int("max-ticks", d.Run.MaxTicks, "tick limit per experiment (0 for none)")
}
