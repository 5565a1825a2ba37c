// Writer implementation printing tracks and messages to STDOUT
package sim

import (
	"encoding/json"
	"fmt"

	"tactimesh/internal/comms"
	"tactimesh/internal/unit"
)

// StdoutWriter prints track rows and messages to STDOUT as JSON lines.
type StdoutWriter struct{}

// WriteTrack outputs a single track row.
func (w *StdoutWriter) WriteTrack(row unit.TrackRow) error {
	data, _ := json.Marshal(row)
	fmt.Println(string(data))
	return nil
}

// WriteTracks outputs multiple track rows.
func (w *StdoutWriter) WriteTracks(rows []unit.TrackRow) error {
	for _, r := range rows {
		_ = w.WriteTrack(r)
	}
	return nil
}

// WriteMessage prints a tactical message to STDOUT.
func (w *StdoutWriter) WriteMessage(m comms.Message) error {
	data, _ := json.Marshal(m)
	fmt.Println(string(data))
	return nil
}
