package main

import (
	"os"

	"tactimesh/internal/sim"
)

// newWriters sets up track and message writers based on flags and env vars.
// It returns the writers and a cleanup function to close any resources.
func newWriters(printOnly bool, logFile string) (sim.TrackWriter, sim.MessageWriter, func(), error) {
	cleanup := func() {}

	trackWriter, msgWriter, err := baseWriters(printOnly)
	if err != nil {
		return nil, nil, nil, err
	}
	if logFile == "" {
		return trackWriter, msgWriter, cleanup, nil
	}

	fw, err := sim.NewFileWriter(logFile, logFile+".messages")
	if err != nil {
		return nil, nil, nil, err
	}
	mw := sim.NewMultiWriter(
		[]sim.TrackWriter{trackWriter, fw},
		[]sim.MessageWriter{msgWriter, fw},
	)
	cleanup = func() { fw.Close() }
	return mw, mw, cleanup, nil
}

// baseWriters chooses the underlying writers based on printOnly flag and env vars.
func baseWriters(printOnly bool) (sim.TrackWriter, sim.MessageWriter, error) {
	if printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "" {
		w := &sim.StdoutWriter{}
		return w, w, nil
	}

	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	w, err := sim.NewGreptimeDBWriter(endpoint, "public")
	if err != nil {
		return nil, nil, err
	}
	return w, w, nil
}

// newTrackWriter creates a track writer without file export, for replay.
func newTrackWriter(printOnly bool) (sim.TrackWriter, error) {
	w, _, _, err := newWriters(printOnly, "")
	return w, err
}
