package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// SetDefaults registers every default from DefaultConfig with v so that
// environment variables and flags can override single keys.
func SetDefaults(v *viper.Viper) {
	SetDefaultsFrom(v, DefaultConfig())
}

// SetDefaultsFrom registers the values of d as defaults, e.g. a preset that
// a config file and flags may then override.
func SetDefaultsFrom(v *viper.Viper, d *Config) {

	v.SetDefault("experiment", d.Experiment)
	v.SetDefault("redirector", d.Redirector)
	v.SetDefault("resetter", d.Resetter)
	v.SetDefault("paths", d.Paths)
	v.SetDefault("trials", d.Trials)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("tracking_size.x", d.TrackingSize.X)
	v.SetDefault("tracking_size.z", d.TrackingSize.Z)
	v.SetDefault("size_step", d.SizeStep)
	v.SetDefault("pose.position.x", d.Pose.Position.X)
	v.SetDefault("pose.position.z", d.Pose.Position.Z)
	v.SetDefault("pose.forward.x", d.Pose.Forward.X)
	v.SetDefault("pose.forward.z", d.Pose.Forward.Z)
	v.SetDefault("pose.random", d.Pose.Random)
	v.SetDefault("pose.forward_only", d.Pose.ForwardOnly)

	// -- Run --
	v.SetDefault("run.workers", d.Run.Workers)
	v.SetDefault("run.max_ticks", d.Run.MaxTicks)
	v.SetDefault("run.average_trials", d.Run.AverageTrials)
	v.SetDefault("run.sampled_series", d.Run.SampledSeries)
	v.SetDefault("run.record_trails", d.Run.RecordTrails)

	// -- Manager --
	v.SetDefault("manager.gains.max_trans", d.Manager.Gains.MaxTrans)
	v.SetDefault("manager.gains.min_trans", d.Manager.Gains.MinTrans)
	v.SetDefault("manager.gains.max_rot", d.Manager.Gains.MaxRot)
	v.SetDefault("manager.gains.min_rot", d.Manager.Gains.MinRot)
	v.SetDefault("manager.gains.curvature_radius", d.Manager.Gains.CurvatureRadius)
	v.SetDefault("manager.manual_time", d.Manager.ManualTime)
	v.SetDefault("manager.target_fps", d.Manager.TargetFPS)
	v.SetDefault("manager.autopilot", d.Manager.Autopilot)
	v.SetDefault("manager.reset_buffer", d.Manager.ResetBuffer)
	v.SetDefault("manager.body_diameter", d.Manager.BodyDiameter)
	v.SetDefault("manager.sampling_frequency", d.Manager.SamplingFrequency)

	// -- Walker --
	v.SetDefault("walker.translation_speed", d.Walker.TranslationSpeed)
	v.SetDefault("walker.rotation_speed", d.Walker.RotationSpeed)
	v.SetDefault("walker.waypoint_threshold", d.Walker.WaypointThreshold)
	v.SetDefault("walker.autopilot_threshold", d.Walker.AutopilotThreshold)

	// -- Storage --
	v.SetDefault("storage.data_dir", d.Storage.DataDir)
	v.SetDefault("storage.database", d.Storage.Database)

	// -- Logger --
	v.SetDefault("logger.level", d.Logger.Level)
	v.SetDefault("logger.format", d.Logger.Format)
	v.SetDefault("logger.add_source", d.Logger.AddSource)
	v.SetDefault("logger.service_name", d.Logger.ServiceName)
	v.SetDefault("logger.log_file", d.Logger.LogFile)
	v.SetDefault("logger.max_size", d.Logger.MaxSize)
	v.SetDefault("logger.max_backups", d.Logger.MaxBackups)
	v.SetDefault("logger.max_age", d.Logger.MaxAge)
	v.SetDefault("logger.compress", d.Logger.Compress)
	v.SetDefault("logger.colors.debug", d.Logger.Colors.Debug)
	v.SetDefault("logger.colors.info", d.Logger.Colors.Info)
	v.SetDefault("logger.colors.warn", d.Logger.Colors.Warn)
	v.SetDefault("logger.colors.error", d.Logger.Colors.Error)
}

// FromViper decodes and validates a configuration from v. Call SetDefaults
// first for any key v may lack.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
