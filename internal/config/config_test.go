package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const schemaPath = "../../schemas/mission.cue"

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mission.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTemp(t, `
mission: "exercise-test"
command_node: "ALPHA-1"
tick_seconds: 5
status_seconds: 10
move_distance_deg: 0.0005
lat_min: 37.765
lat_max: 37.785
lon_min: -122.430
lon_max: -122.405
history_cap: 50
reply_delay_min_ms: 2000
reply_delay_max_ms: 5000
clock_anchor: "19:00:00"
map_scale: 20000
nodes:
  - callsign: "ALPHA-1"
    unit: "1ST PLT"
    role: "TEAM_LEADER"
    rank: "SGT"
    lat: 37.7749
    lon: -122.4194
  - callsign: "BRAVO-2"
    unit: "1ST PLT"
    role: "RIFLEMAN"
    rank: "CPL"
    lat: 37.7729
    lon: -122.4174
`)
	cfg, err := Load(path, schemaPath)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Mission != "exercise-test" {
		t.Errorf("mission name lost: %q", cfg.Mission)
	}
	if len(cfg.Nodes) != 2 {
		t.Errorf("expected 2 nodes, got %d", len(cfg.Nodes))
	}
	if cfg.TickInterval() != 5*time.Second {
		t.Errorf("tick interval wrong: %v", cfg.TickInterval())
	}
	if cfg.ReplyDelayMax() != 5*time.Second {
		t.Errorf("reply delay max wrong: %v", cfg.ReplyDelayMax())
	}
}

func TestLoadRejectsSchemaViolation(t *testing.T) {
	// priority outside 1..3 violates the CUE schema
	path := writeTemp(t, `
mission: "bad"
command_node: "ALPHA-1"
nodes:
  - callsign: "ALPHA-1"
    unit: "1ST PLT"
    role: "TEAM_LEADER"
    rank: "SGT"
    lat: 37.7749
    lon: -122.4194
seed_messages:
  - sender: "ALPHA-1"
    recipient: "ALL"
    type: "COMMAND"
    priority: 9
    content: "bad priority"
`)
	if _, err := Load(path, schemaPath); err == nil {
		t.Fatal("expected schema validation failure")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.CommandNode != "ALPHA-1" {
		t.Errorf("default command node wrong: %q", cfg.CommandNode)
	}
	if cfg.HistoryCap != 50 {
		t.Errorf("default history cap wrong: %d", cfg.HistoryCap)
	}
	if len(cfg.Nodes) != 4 {
		t.Errorf("expected 4 default nodes, got %d", len(cfg.Nodes))
	}
}

func TestTickOverrideKeepsSubSecondGranularity(t *testing.T) {
	cfg := Default()
	if cfg.TickInterval() != 15*time.Second {
		t.Fatalf("default tick interval wrong: %v", cfg.TickInterval())
	}

	cfg.TickOverride = 500 * time.Millisecond
	if cfg.TickInterval() != 500*time.Millisecond {
		t.Errorf("sub-second override lost: %v", cfg.TickInterval())
	}
	if cfg.TickInterval() <= 0 {
		t.Error("tick interval must stay positive for the run loop ticker")
	}

	cfg.TickOverride = -time.Second
	if cfg.TickInterval() != 15*time.Second {
		t.Errorf("negative override must fall back to configured seconds, got %v", cfg.TickInterval())
	}
}

func TestValidateDuplicateCallsign(t *testing.T) {
	cfg := Default()
	cfg.Nodes = append(cfg.Nodes, cfg.Nodes[0])
	if err := cfg.Validate(); err == nil {
		t.Error("duplicate callsign must fail validation")
	}
}

func TestValidateCommandNodeMustExist(t *testing.T) {
	cfg := Default()
	cfg.CommandNode = "ZULU-9"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown command node must fail validation")
	}
}

func TestValidateEmptyBox(t *testing.T) {
	cfg := Default()
	cfg.LatMin, cfg.LatMax = 38, 37
	if err := cfg.Validate(); err == nil {
		t.Error("inverted box must fail validation")
	}
}

func TestValidateGeofence(t *testing.T) {
	cfg := Default()
	cfg.Geofences = []Geofence{{Name: "bad", Type: "NEUTRAL", Vertices: []Vertex{{}, {}, {}}}}
	if err := cfg.Validate(); err == nil {
		t.Error("unknown geofence type must fail validation")
	}

	cfg = Default()
	cfg.Geofences = []Geofence{{Name: "thin", Type: "RESTRICTED", Vertices: []Vertex{{}, {}}}}
	if err := cfg.Validate(); err == nil {
		t.Error("geofence with fewer than 3 vertices must fail validation")
	}
}
