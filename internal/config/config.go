package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/rdwsim/internal/boundary"
	"github.com/san-kum/rdwsim/internal/pathgen"
	"github.com/san-kum/rdwsim/internal/rdw"
	"github.com/san-kum/rdwsim/internal/stats"
	"github.com/san-kum/rdwsim/internal/walker"
	"gopkg.in/yaml.v3"
)

const (
	DefaultExperiment   = "fixed"
	DefaultRedirector   = "s2c"
	DefaultResetter     = "two_one_turn"
	DefaultTrackingSize = 10.0
	DefaultSizeStep     = 1.0
	DefaultTargetFPS    = 60.0
	DefaultDataDir      = "data"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Experiment string   `yaml:"experiment" mapstructure:"experiment"`
	Redirector string   `yaml:"redirector" mapstructure:"redirector"`
	Resetter   string   `yaml:"resetter" mapstructure:"resetter"`
	Paths      []string `yaml:"paths" mapstructure:"paths"`
	// Trials overrides every path seed's own trial count when positive.
	Trials int   `yaml:"trials" mapstructure:"trials"`
	Seed   int64 `yaml:"seed" mapstructure:"seed"`

	TrackingSize SizeConfig `yaml:"tracking_size" mapstructure:"tracking_size"`
	SizeStep     float64    `yaml:"size_step" mapstructure:"size_step"`
	Pose         PoseConfig `yaml:"pose" mapstructure:"pose"`

	Run     RunConfig     `yaml:"run" mapstructure:"run"`
	Manager ManagerConfig `yaml:"manager" mapstructure:"manager"`
	Walker  walker.Config `yaml:"walker" mapstructure:"walker"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Logger  LoggerConfig  `yaml:"logger" mapstructure:"logger"`
}

type SizeConfig struct {
	X float64 `yaml:"x" mapstructure:"x"`
	Z float64 `yaml:"z" mapstructure:"z"`
}

// PointConfig is a ground-plane point or direction.
type PointConfig struct {
	X float64 `yaml:"x" mapstructure:"x"`
	Z float64 `yaml:"z" mapstructure:"z"`
}

// PoseConfig is the initial user pose of fixed and varying_sizes batches.
type PoseConfig struct {
	Position PointConfig `yaml:"position" mapstructure:"position"`
	Forward  PointConfig `yaml:"forward" mapstructure:"forward"`
	Random   bool        `yaml:"random" mapstructure:"random"`
	// ForwardOnly randomises the direction but keeps the configured
	// position.
	ForwardOnly bool `yaml:"forward_only" mapstructure:"forward_only"`
}

type RunConfig struct {
	// Workers above one run experiments concurrently.
	Workers       int  `yaml:"workers" mapstructure:"workers"`
	MaxTicks      int  `yaml:"max_ticks" mapstructure:"max_ticks"`
	AverageTrials bool `yaml:"average_trials" mapstructure:"average_trials"`
	SampledSeries bool `yaml:"sampled_series" mapstructure:"sampled_series"`
	RecordTrails  bool `yaml:"record_trails" mapstructure:"record_trails"`
}

type ManagerConfig struct {
	Gains             rdw.Gains `yaml:"gains" mapstructure:"gains"`
	ManualTime        bool      `yaml:"manual_time" mapstructure:"manual_time"`
	TargetFPS         float64   `yaml:"target_fps" mapstructure:"target_fps"`
	Autopilot         bool      `yaml:"autopilot" mapstructure:"autopilot"`
	ResetBuffer       float64   `yaml:"reset_buffer" mapstructure:"reset_buffer"`
	BodyDiameter      float64   `yaml:"body_diameter" mapstructure:"body_diameter"`
	SamplingFrequency float64   `yaml:"sampling_frequency" mapstructure:"sampling_frequency"`
}

// RDW converts the manager section into the control loop's own config.
func (m ManagerConfig) RDW() rdw.Config {
	return rdw.Config{
		Gains:             m.Gains,
		ManualTime:        m.ManualTime,
		TargetFPS:         m.TargetFPS,
		Autopilot:         m.Autopilot,
		ResetBuffer:       m.ResetBuffer,
		BodyDiameter:      m.BodyDiameter,
		SamplingFrequency: m.SamplingFrequency,
	}
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
	// Database is an optional SQLite file that also receives every run's
	// summary rows.
	Database string `yaml:"database" mapstructure:"database"`
}

// LoggerConfig configures the process-wide zap logger.
type LoggerConfig struct {
	Level       string      `yaml:"level" mapstructure:"level"`
	Format      string      `yaml:"format" mapstructure:"format"`
	AddSource   bool        `yaml:"add_source" mapstructure:"add_source"`
	ServiceName string      `yaml:"service_name" mapstructure:"service_name"`
	LogFile     string      `yaml:"log_file" mapstructure:"log_file"`
	MaxSize     int         `yaml:"max_size" mapstructure:"max_size"`
	MaxBackups  int         `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge      int         `yaml:"max_age" mapstructure:"max_age"`
	Compress    bool        `yaml:"compress" mapstructure:"compress"`
	Colors      ColorConfig `yaml:"colors" mapstructure:"colors"`
}

// ColorConfig names the console colour of each level.
type ColorConfig struct {
	Debug string `yaml:"debug" mapstructure:"debug"`
	Info  string `yaml:"info" mapstructure:"info"`
	Warn  string `yaml:"warn" mapstructure:"warn"`
	Error string `yaml:"error" mapstructure:"error"`
}

func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:       "info",
		Format:      "console",
		ServiceName: "rdwsim",
		MaxSize:     100,
		MaxBackups:  5,
		MaxAge:      30,
		Colors: ColorConfig{
			Debug: "cyan",
			Info:  "green",
			Warn:  "yellow",
			Error: "red",
		},
	}
}

func DefaultConfig() *Config {
	return &Config{
		Experiment:   DefaultExperiment,
		Redirector:   DefaultRedirector,
		Resetter:     DefaultResetter,
		Paths:        []string{pathgen.Office().Name},
		Seed:         pathgen.DefaultSeed,
		TrackingSize: SizeConfig{X: DefaultTrackingSize, Z: DefaultTrackingSize},
		SizeStep:     DefaultSizeStep,
		Pose:         PoseConfig{Forward: PointConfig{Z: 1}},
		Run: RunConfig{
			Workers:       1,
			AverageTrials: true,
		},
		Manager: ManagerConfig{
			Gains:             rdw.DefaultGains(),
			ManualTime:        true,
			TargetFPS:         DefaultTargetFPS,
			Autopilot:         true,
			ResetBuffer:       boundary.DefaultBuffer,
			BodyDiameter:      boundary.DefaultBodyDiameter,
			SamplingFrequency: stats.DefaultSamplingFrequency,
		},
		Walker:  walker.DefaultConfig(),
		Storage: StorageConfig{DataDir: DefaultDataDir},
		Logger:  DefaultLoggerConfig(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the numeric knobs. Names of experiments, algorithms and
// path seeds are resolved by the experiment registry.
func (c *Config) Validate() error {
	if len(c.Paths) == 0 {
		return fmt.Errorf("%w: at least one path seed is required", ErrInvalid)
	}
	if c.TrackingSize.X <= 0 || c.TrackingSize.Z <= 0 {
		return fmt.Errorf("%w: tracking_size must be positive", ErrInvalid)
	}
	if c.SizeStep <= 0 {
		return fmt.Errorf("%w: size_step must be positive", ErrInvalid)
	}
	if c.Pose.Forward.X == 0 && c.Pose.Forward.Z == 0 {
		return fmt.Errorf("%w: pose.forward must not be zero", ErrInvalid)
	}
	if c.Trials < 0 {
		return fmt.Errorf("%w: trials must not be negative", ErrInvalid)
	}
	if c.Run.Workers < 0 || c.Run.MaxTicks < 0 {
		return fmt.Errorf("%w: run.workers and run.max_ticks must not be negative", ErrInvalid)
	}
	if err := c.Manager.RDW().Validate(); err != nil {
		return fmt.Errorf("%w: manager: %v", ErrInvalid, err)
	}
	if c.Walker.TranslationSpeed <= 0 || c.Walker.RotationSpeed <= 0 {
		return fmt.Errorf("%w: walker speeds must be positive", ErrInvalid)
	}
	return nil
}
