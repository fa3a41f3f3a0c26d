package config

// RuntimeConfig defines the subset of the configuration that can be
// safely modified at runtime through the web API. It excludes panel
// hardware, logging, and where the keyed request goes: the API key, the
// feed and the base URL.
type RuntimeConfig struct {
	Tracker TrackerConfig `yaml:"Tracker" json:"Tracker"`
	Layout  LayoutConfig  `yaml:"Layout" json:"Layout"`
	Night   NightConfig   `yaml:"Night" json:"Night"`
}

// Runtime extracts the runtime-safe part of c.
func (c Config) Runtime() RuntimeConfig {
	return RuntimeConfig{
		Tracker: c.Tracker,
		Layout:  c.Layout,
		Night:   c.Night,
	}
}

// Merge returns a copy of c with the runtime settings of r applied. The
// API key, feed and base URL are never taken from r.
func (c Config) Merge(r RuntimeConfig) Config {
	kept := c.Tracker
	c.Tracker = r.Tracker
	c.Tracker.APIKey = kept.APIKey
	c.Tracker.Feed = kept.Feed
	c.Tracker.BaseURL = kept.BaseURL
	c.Layout = r.Layout
	c.Night = r.Night
	return c
}
