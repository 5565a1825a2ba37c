// Tactical message traffic: types, priorities, and the shared log.
package comms

import (
	"os"
	"time"
)

// Type classifies tactical traffic.
type Type string

const (
	TypeCommand   Type = "COMMAND"
	TypeIntel     Type = "INTEL"
	TypeMedical   Type = "MEDICAL"
	TypeLogistics Type = "LOGISTICS"
	TypeSitrep    Type = "SITREP"
	TypeAlert     Type = "ALERT"
)

// Broadcast is the sentinel recipient addressing every node.
const Broadcast = "ALL"

// Message priorities, 1 highest through 3 lowest.
const (
	PriorityImmediate = 1
	PriorityPriority  = 2
	PriorityRoutine   = 3
)

// Message is one unit of tactical traffic. Entries are immutable once
// created except for Acknowledged.
type Message struct {
	ID           int       `json:"id"`
	Sender       string    `json:"sender"`
	Recipient    string    `json:"recipient"`
	Type         Type      `json:"type"`
	Priority     int       `json:"priority"`
	Content      string    `json:"content"`
	Timestamp    time.Time `json:"ts"`
	Acknowledged bool      `json:"acknowledged"`
}

// MessageTableName holds the table name used when writing messages to
// GreptimeDB. Overridable via the GREPTIMEDB_MESSAGE_TABLE environment
// variable.
var MessageTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_MESSAGE_TABLE"); env != "" {
		return env
	}
	return "tactical_messages"
}()

func (Message) TableName() string {
	return MessageTableName
}
