package config

import (
	"sort"
	"time"
)

// Presets tweak DefaultConfig for common viewing setups.
var Presets = map[string]func(*Config){
	"calm": func(c *Config) {
		c.Camera.Speed = 0.1
		c.Cells.HueStep = 0.0005
		c.Demo.Period = time.Second
	},
	"wide": func(c *Config) {
		c.Camera.Radius = 25
		c.Camera.BaseHeight = 30
		c.Demo.Width, c.Demo.Height = 48, 48
	},
	"tiny": func(c *Config) {
		c.Camera.Radius = 6
		c.Camera.BaseHeight = 8
		c.Demo.Width, c.Demo.Height = 8, 8
	},
	"disco": func(c *Config) {
		c.Camera.Speed = 1
		c.Cells.HueStep = 0.01
		c.Demo.Density = 0.5
		c.Demo.Period = 100 * time.Millisecond
		c.Theme = "sunset"
	},
	"terminal": func(c *Config) {
		c.TargetFPS = 30
		c.Camera.Radius = 14
		c.Camera.BaseHeight = 12
		c.Demo.Width, c.Demo.Height = 16, 16
	},
}

// GetPreset returns a fresh config with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
