package config

import (
	"fmt"
	"sort"
)

// tunables are the numeric parameters sweeps and searches may vary.
var tunables = map[string]func(c *Config, v float64){
	"max_trans":          func(c *Config, v float64) { c.Manager.Gains.MaxTrans = v },
	"min_trans":          func(c *Config, v float64) { c.Manager.Gains.MinTrans = v },
	"max_rot":            func(c *Config, v float64) { c.Manager.Gains.MaxRot = v },
	"min_rot":            func(c *Config, v float64) { c.Manager.Gains.MinRot = v },
	"curvature_radius":   func(c *Config, v float64) { c.Manager.Gains.CurvatureRadius = v },
	"reset_buffer":       func(c *Config, v float64) { c.Manager.ResetBuffer = v },
	"tracking_size":      func(c *Config, v float64) { c.TrackingSize = SizeConfig{X: v, Z: v} },
	"tracking_size_x":    func(c *Config, v float64) { c.TrackingSize.X = v },
	"tracking_size_z":    func(c *Config, v float64) { c.TrackingSize.Z = v },
	"translation_speed":  func(c *Config, v float64) { c.Walker.TranslationSpeed = v },
	"rotation_speed":     func(c *Config, v float64) { c.Walker.RotationSpeed = v },
	"waypoint_threshold": func(c *Config, v float64) { c.Walker.WaypointThreshold = v },
}

// SetParam sets the named tunable parameter.
func (c *Config) SetParam(name string, v float64) error {
	set, ok := tunables[name]
	if !ok {
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalid, name)
	}
	set(c, v)
	return nil
}

// Tunables lists the parameter names SetParam accepts.
func Tunables() []string {
	names := make([]string, 0, len(tunables))
	for name := range tunables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Paths = append([]string(nil), c.Paths...)
	return &out
}
