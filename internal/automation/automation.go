// Package automation runs scripted sequences of experiment batches and
// one-parameter sweeps.
package automation

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rdwsim/internal/config"
	"github.com/san-kum/rdwsim/internal/experiment"
	"github.com/san-kum/rdwsim/internal/stats"
)

// Scenario is a named list of batches run one after another.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides the base configuration for one batch. Zero values
// keep the base setting.
type ScenarioStep struct {
	Name         string             `yaml:"name"`
	Preset       string             `yaml:"preset"`
	Experiment   string             `yaml:"experiment"`
	Redirector   string             `yaml:"redirector"`
	Resetter     string             `yaml:"resetter"`
	Paths        []string           `yaml:"paths"`
	Trials       int                `yaml:"trials"`
	Seed         int64              `yaml:"seed"`
	TrackingSize *config.SizeConfig `yaml:"tracking_size"`
	Params       map[string]float64 `yaml:"params"`
	// Skip saving this batch's run.
	NoSave bool `yaml:"no_save"`
}

// Saver persists a finished batch and returns its run ID.
type Saver interface {
	Save(cfg *config.Config, report *experiment.Report) (string, error)
}

// StepResult is one finished scenario step.
type StepResult struct {
	Name   string
	Config *config.Config
	Report *experiment.Report
	RunID  string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Apply returns base with the step's overrides applied. A preset replaces
// base before the other fields are applied.
func (s ScenarioStep) Apply(base *config.Config) (*config.Config, error) {
	cfg := base.Clone()
	if s.Preset != "" {
		p, err := presetByName(s.Preset)
		if err != nil {
			return nil, err
		}
		p.Storage, p.Logger = base.Storage, base.Logger
		cfg = p
	}

	if s.Experiment != "" {
		cfg.Experiment = s.Experiment
	}
	if s.Redirector != "" {
		cfg.Redirector = s.Redirector
	}
	if s.Resetter != "" {
		cfg.Resetter = s.Resetter
	}
	if len(s.Paths) > 0 {
		cfg.Paths = append([]string(nil), s.Paths...)
	}
	if s.Trials > 0 {
		cfg.Trials = s.Trials
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.TrackingSize != nil {
		cfg.TrackingSize = *s.TrackingSize
	}
	for name, v := range s.Params {
		if err := cfg.SetParam(name, v); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func presetByName(name string) (*config.Config, error) {
	for _, group := range config.PresetGroups() {
		for _, n := range config.ListPresets(group) {
			if group+"/"+n == name {
				return config.GetPreset(group, n), nil
			}
		}
	}
	return nil, fmt.Errorf("unknown preset: %s", name)
}

// RunScenario executes all steps in order. saver may be nil. Steps that
// finished before an error are returned with it.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, reg *experiment.Registry, saver Saver, logger *zap.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		cfg, err := step.Apply(base)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}

		logger.Info("scenario step started",
			zap.String("scenario", scenario.Name),
			zap.String("step", name),
			zap.Int("index", i+1),
			zap.Int("steps", len(scenario.Steps)))

		report, err := experiment.NewRunner(cfg, reg, logger).Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d (%s) run: %w", i+1, name, err)
		}

		res := StepResult{Name: name, Config: cfg, Report: report}
		if saver != nil && !step.NoSave {
			if res.RunID, err = saver.Save(cfg, report); err != nil {
				return results, fmt.Errorf("step %d (%s) save: %w", i+1, name, err)
			}
		}
		results = append(results, res)
	}
	return results, nil
}

// ParameterSweep runs one batch per value of a tunable parameter.
type ParameterSweep struct {
	Param    string
	Min, Max float64
	Steps    int
}

// Values are the evenly spaced parameter values, endpoints included.
func (s ParameterSweep) Values() []float64 {
	if s.Steps <= 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.Steps-1)
	values := make([]float64, s.Steps)
	for i := range values {
		values[i] = s.Min + float64(i)*step
	}
	return values
}

// SweepResult is the whole batch at one parameter value, averaged into a
// single row.
type SweepResult struct {
	ParamValue  float64
	Summary     stats.Result
	Experiments int
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep ParameterSweep, base *config.Config, reg *experiment.Registry, logger *zap.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	values := sweep.Values()
	results := make([]SweepResult, 0, len(values))

	for i, v := range values {
		cfg := base.Clone()
		if err := cfg.SetParam(sweep.Param, v); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}

		report, err := experiment.NewRunner(cfg, reg, logger).Run(ctx)
		if err != nil {
			return nil, err
		}
		results = append(results, SweepResult{
			ParamValue:  v,
			Summary:     Average(report.Results),
			Experiments: len(report.Results),
		})

		logger.Info("sweep step finished",
			zap.String("param", sweep.Param),
			zap.Float64("value", v),
			zap.Int("step", i+1),
			zap.Int("steps", len(values)))
	}
	return results, nil
}

// Average merges every result of a batch into one row.
func Average(results []stats.Result) stats.Result {
	if len(results) == 0 {
		return stats.Result{}
	}
	return stats.Merge(results, len(results))[0]
}
