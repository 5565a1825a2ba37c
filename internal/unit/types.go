// Node entities and per-tick track records.
package unit

import (
	"os"
	"time"

	"tactimesh/internal/geo"
)

// Status classifies a node's operational state.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Node holds runtime state for one field unit. The registry owns all Node
// instances; no other component mutates them directly.
type Node struct {
	Callsign string    `json:"callsign"`
	Unit     string    `json:"unit"`
	Role     string    `json:"role"`
	Rank     string    `json:"rank"`
	Position geo.Point `json:"position"`
	Status   Status    `json:"status"`
	Battery  int       `json:"battery"`
	Signal   int       `json:"signal"`
	LastSeen time.Time `json:"last_seen"`
}

// TrackRow represents one per-tick track record for GreptimeDB.
type TrackRow struct {
	MissionID string    `json:"mission_id"` // TAG
	Callsign  string    `json:"callsign"`   // TAG
	Unit      string    `json:"unit"`       // FIELD
	Role      string    `json:"role"`       // FIELD
	Lat       float64   `json:"lat"`        // FIELD
	Lon       float64   `json:"lon"`        // FIELD
	Grid      string    `json:"grid"`       // FIELD
	Battery   int       `json:"battery"`    // FIELD
	Signal    int       `json:"signal"`     // FIELD
	Status    Status    `json:"status"`     // FIELD
	Timestamp time.Time `json:"ts"`         // TIME INDEX
}

// TrackTableName holds the table name used when writing tracks to
// GreptimeDB. It defaults to "node_tracks" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var TrackTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "node_tracks"
}()

func (TrackRow) TableName() string {
	return TrackTableName
}
