package config

import "sort"

// Presets holds ready-made batches keyed by redirector, then preset name.
var Presets = map[string]map[string]*Config{
	"s2c": {
		"office": preset(func(c *Config) {
			c.Redirector, c.Paths = "s2c", []string{"office"}
		}),
		"sizes": preset(func(c *Config) {
			c.Redirector, c.Experiment = "s2c", "varying_sizes"
			c.Paths, c.Trials = []string{"exploration_small"}, 3
		}),
		"shapes": preset(func(c *Config) {
			c.Redirector, c.Experiment = "s2c", "varying_shapes"
			c.Paths, c.Trials = []string{"office"}, 3
		}),
		"gains": preset(func(c *Config) {
			c.Redirector, c.Experiment = "s2c", "gain_scales"
			c.Paths, c.Trials = []string{"office"}, 1
		}),
	},
	"s2o": {
		"office": preset(func(c *Config) {
			c.Redirector, c.Paths = "s2o", []string{"office"}
		}),
		"exploration": preset(func(c *Config) {
			c.Redirector, c.Paths = "s2o", []string{"exploration_small", "exploration_large"}
		}),
	},
	"zigzag": {
		"classic": preset(func(c *Config) {
			c.Redirector, c.Resetter = "zigzag", "no_reset"
			c.Paths = []string{"zigzag"}
			c.TrackingSize = SizeConfig{X: 6, Z: 6}
		}),
	},
	"none": {
		"baseline": preset(func(c *Config) {
			c.Redirector = "none"
			c.Paths = []string{"office", "exploration_small"}
		}),
		"long_walk": preset(func(c *Config) {
			c.Redirector, c.Paths = "none", []string{"long_walk"}
			c.Run.MaxTicks = 200000
		}),
	},
}

func preset(apply func(*Config)) *Config {
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

// GetPreset returns a copy of the named preset, or nil when either name is
// unknown.
func GetPreset(redirector, name string) *Config {
	group, ok := Presets[redirector]
	if !ok {
		return nil
	}
	cfg, ok := group[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(redirector string) []string {
	group, ok := Presets[redirector]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetGroups lists the redirectors that have presets.
func PresetGroups() []string {
	groups := make([]string, 0, len(Presets))
	for g := range Presets {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}
