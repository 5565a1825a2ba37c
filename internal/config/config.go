// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Node seeds one field unit.
type Node struct {
	Callsign string  `yaml:"callsign"`
	Unit     string  `yaml:"unit"`
	Role     string  `yaml:"role"`
	Rank     string  `yaml:"rank"`
	Lat      float64 `yaml:"lat"`
	Lon      float64 `yaml:"lon"`
}

// Vertex is one geofence ring coordinate.
type Vertex struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// Geofence defines a static named zone polygon.
type Geofence struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"` // FRIENDLY or RESTRICTED
	Color    string   `yaml:"color"`
	Vertices []Vertex `yaml:"vertices"`
}

// SeedMessage pre-populates the message log; ids are assigned in order.
type SeedMessage struct {
	Sender    string `yaml:"sender"`
	Recipient string `yaml:"recipient"`
	Type      string `yaml:"type"`
	Priority  int    `yaml:"priority"`
	Content   string `yaml:"content"`
}

// Config is the root simulation configuration.
type Config struct {
	Mission     string `yaml:"mission"`
	CommandNode string `yaml:"command_node"`

	TickSeconds   int `yaml:"tick_seconds"`
	StatusSeconds int `yaml:"status_seconds"`

	MoveDistanceDeg float64 `yaml:"move_distance_deg"`
	LatMin          float64 `yaml:"lat_min"`
	LatMax          float64 `yaml:"lat_max"`
	LonMin          float64 `yaml:"lon_min"`
	LonMax          float64 `yaml:"lon_max"`

	HistoryCap      int `yaml:"history_cap"`
	ReplyDelayMinMS int `yaml:"reply_delay_min_ms"`
	ReplyDelayMaxMS int `yaml:"reply_delay_max_ms"`

	ClockAnchor string  `yaml:"clock_anchor"` // HH:MM:SS local time of day
	MapScale    float64 `yaml:"map_scale"`    // pixels per degree at start

	Nodes         []Node        `yaml:"nodes"`
	SeedMessages  []SeedMessage `yaml:"seed_messages"`
	Geofences     []Geofence    `yaml:"geofences"`
	StatusPhrases []string      `yaml:"status_phrases"`

	// TickOverride carries a CLI-level cadence override at duration
	// granularity, so sub-second values survive. Zero or negative means
	// use tick_seconds.
	TickOverride time.Duration `yaml:"-"`
}

// Reference defaults for the San Francisco exercise box.
var defaultNodes = []Node{
	{Callsign: "ALPHA-1", Unit: "1ST PLT", Role: "TEAM_LEADER", Rank: "SGT", Lat: 37.7749, Lon: -122.4194},
	{Callsign: "BRAVO-2", Unit: "1ST PLT", Role: "RIFLEMAN", Rank: "CPL", Lat: 37.7729, Lon: -122.4174},
	{Callsign: "CHARLIE-3", Unit: "2ND PLT", Role: "MEDIC", Rank: "SPC", Lat: 37.7769, Lon: -122.4214},
	{Callsign: "DELTA-4", Unit: "2ND PLT", Role: "RTO", Rank: "PFC", Lat: 37.7709, Lon: -122.4154},
}

// Load loads YAML config and validates it against a CUE schema.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a config without reading any file.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills omitted fields with the reference values.
func (c *Config) ApplyDefaults() {
	if c.Mission == "" {
		c.Mission = "exercise-01"
	}
	if c.CommandNode == "" {
		c.CommandNode = "ALPHA-1"
	}
	if c.TickSeconds <= 0 {
		c.TickSeconds = 15
	}
	if c.StatusSeconds <= 0 {
		c.StatusSeconds = 30
	}
	if c.MoveDistanceDeg == 0 {
		c.MoveDistanceDeg = 0.0005
	}
	if c.LatMin == 0 && c.LatMax == 0 {
		c.LatMin, c.LatMax = 37.765, 37.785
	}
	if c.LonMin == 0 && c.LonMax == 0 {
		c.LonMin, c.LonMax = -122.430, -122.405
	}
	if c.HistoryCap <= 0 {
		c.HistoryCap = 50
	}
	if c.ReplyDelayMinMS <= 0 {
		c.ReplyDelayMinMS = 2000
	}
	if c.ReplyDelayMaxMS <= 0 {
		c.ReplyDelayMaxMS = 5000
	}
	if c.ClockAnchor == "" {
		c.ClockAnchor = "19:00:00"
	}
	if c.MapScale <= 0 {
		c.MapScale = 20000
	}
	if len(c.Nodes) == 0 {
		c.Nodes = append([]Node(nil), defaultNodes...)
	}
}

// Validate checks cross-field constraints the CUE schema cannot express.
func (c *Config) Validate() error {
	if len(c.Nodes) == 0 {
		return fmt.Errorf("no nodes defined")
	}
	seen := make(map[string]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		if n.Callsign == "" {
			return fmt.Errorf("node with empty callsign")
		}
		if seen[n.Callsign] {
			return fmt.Errorf("duplicate callsign %q", n.Callsign)
		}
		seen[n.Callsign] = true
	}
	if !seen[c.CommandNode] {
		return fmt.Errorf("command node %q is not a configured node", c.CommandNode)
	}
	if c.LatMin >= c.LatMax || c.LonMin >= c.LonMax {
		return fmt.Errorf("operational box is empty")
	}
	if c.ReplyDelayMaxMS < c.ReplyDelayMinMS {
		return fmt.Errorf("reply delay bounds inverted")
	}
	for _, g := range c.Geofences {
		if g.Type != "FRIENDLY" && g.Type != "RESTRICTED" {
			return fmt.Errorf("geofence %q has unknown type %q", g.Name, g.Type)
		}
		if len(g.Vertices) < 3 {
			return fmt.Errorf("geofence %q needs at least 3 vertices", g.Name)
		}
	}
	return nil
}

// TickInterval returns the position tick cadence, preferring a positive
// override over the configured seconds.
func (c *Config) TickInterval() time.Duration {
	if c.TickOverride > 0 {
		return c.TickOverride
	}
	return time.Duration(c.TickSeconds) * time.Second
}

// StatusInterval returns the status generator cadence.
func (c *Config) StatusInterval() time.Duration {
	return time.Duration(c.StatusSeconds) * time.Second
}

// ReplyDelayMin returns the lower simulated-response delay bound.
func (c *Config) ReplyDelayMin() time.Duration {
	return time.Duration(c.ReplyDelayMinMS) * time.Millisecond
}

// ReplyDelayMax returns the upper simulated-response delay bound.
func (c *Config) ReplyDelayMax() time.Duration {
	return time.Duration(c.ReplyDelayMaxMS) * time.Millisecond
}
