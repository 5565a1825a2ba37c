package main

import (
	"os"
	"path/filepath"
	"testing"

	"tactimesh/internal/sim"
)

func TestNewWritersPrintOnly(t *testing.T) {
	tw, mw, cleanup, err := newWriters(true, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := tw.(*sim.StdoutWriter); !ok {
		t.Fatalf("expected *sim.StdoutWriter, got %T", tw)
	}
	if _, ok := mw.(*sim.StdoutWriter); !ok {
		t.Fatalf("expected *sim.StdoutWriter, got %T", mw)
	}
}

func TestNewWritersGreptimeFallback(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	tw, _, cleanup, err := newWriters(false, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := tw.(*sim.StdoutWriter); !ok {
		t.Fatalf("expected *sim.StdoutWriter without endpoint, got %T", tw)
	}
}

func TestNewWritersWithLogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "tracks.jsonl")
	tw, _, cleanup, err := newWriters(true, logFile)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	if _, ok := tw.(*sim.MultiWriter); !ok {
		t.Fatalf("expected *sim.MultiWriter with log file, got %T", tw)
	}
	cleanup()
	if _, err := os.Stat(logFile); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}
