package sim

import (
	"tactimesh/internal/comms"
	"tactimesh/internal/unit"
)

// TrackWriter is an interface to support different track output writers.
type TrackWriter interface {
	WriteTrack(unit.TrackRow) error
}

// Optional: track writers can also support batch mode
type batchTrackWriter interface {
	WriteTracks([]unit.TrackRow) error
}

// MessageWriter handles inserted tactical messages.
type MessageWriter interface {
	WriteMessage(comms.Message) error
}
