package sim

import (
	"encoding/json"
	"os"

	"tactimesh/internal/comms"
	"tactimesh/internal/unit"
)

// FileWriter writes tracks and messages to JSONL files.
type FileWriter struct {
	trackFile *os.File
	msgFile   *os.File
	trackEnc  *json.Encoder
	msgEnc    *json.Encoder
}

// NewFileWriter creates a FileWriter. messagePath may be empty to skip the
// message log.
func NewFileWriter(trackPath, messagePath string) (*FileWriter, error) {
	tf, err := os.Create(trackPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{trackFile: tf, trackEnc: json.NewEncoder(tf)}
	if messagePath != "" {
		mf, err := os.Create(messagePath)
		if err != nil {
			tf.Close()
			return nil, err
		}
		fw.msgFile = mf
		fw.msgEnc = json.NewEncoder(mf)
	}
	return fw, nil
}

// WriteTrack logs a single track row.
func (f *FileWriter) WriteTrack(row unit.TrackRow) error {
	return f.trackEnc.Encode(row)
}

// WriteTracks logs multiple track rows.
func (f *FileWriter) WriteTracks(rows []unit.TrackRow) error {
	for _, r := range rows {
		if err := f.WriteTrack(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteMessage logs a tactical message, if enabled.
func (f *FileWriter) WriteMessage(m comms.Message) error {
	if f.msgEnc == nil {
		return nil
	}
	return f.msgEnc.Encode(m)
}

// Close closes the underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.trackFile != nil {
		if e := f.trackFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.msgFile != nil {
		if e := f.msgFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
