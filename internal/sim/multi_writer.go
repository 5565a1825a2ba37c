package sim

import (
	"tactimesh/internal/comms"
	"tactimesh/internal/unit"
)

// MultiWriter fans tracks and messages out to multiple writers.
type MultiWriter struct {
	trackWriters []TrackWriter
	msgWriters   []MessageWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(tws []TrackWriter, mws []MessageWriter) *MultiWriter {
	return &MultiWriter{trackWriters: tws, msgWriters: mws}
}

// WriteTrack sends a track row to all writers.
func (mw *MultiWriter) WriteTrack(row unit.TrackRow) error {
	for _, w := range mw.trackWriters {
		if err := w.WriteTrack(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteTracks sends multiple track rows to all writers, using batch mode
// where supported.
func (mw *MultiWriter) WriteTracks(rows []unit.TrackRow) error {
	for _, w := range mw.trackWriters {
		if bw, ok := w.(batchTrackWriter); ok {
			if err := bw.WriteTracks(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteTrack(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteMessage sends a message to all message writers.
func (mw *MultiWriter) WriteMessage(m comms.Message) error {
	for _, w := range mw.msgWriters {
		if err := w.WriteMessage(m); err != nil {
			return err
		}
	}
	return nil
}
