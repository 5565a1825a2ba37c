package sim

import (
	"context"
	"sync"
	"testing"
	"time"

	"tactimesh/internal/comms"
	"tactimesh/internal/config"
	"tactimesh/internal/unit"
)

// MockWriter collects track rows and messages for validation.
type MockWriter struct {
	mu       sync.Mutex
	Rows     []unit.TrackRow
	Messages []comms.Message
}

func (w *MockWriter) WriteTrack(row unit.TrackRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Rows = append(w.Rows, row)
	return nil
}

func (w *MockWriter) WriteMessage(m comms.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Messages = append(w.Messages, m)
	return nil
}

func (w *MockWriter) trackCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.Rows)
}

func (w *MockWriter) messagesOfType(t comms.Type) []comms.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []comms.Message
	for _, m := range w.Messages {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.ReplyDelayMinMS = 20
	cfg.ReplyDelayMaxMS = 40
	return cfg
}

func TestEngineTickWritesTracks(t *testing.T) {
	writer := &MockWriter{}
	e := New(testConfig(), writer, writer)
	defer e.Close()

	e.tick(context.Background())

	if writer.trackCount() != 4 {
		t.Fatalf("expected tracks for 4 nodes, got %d", writer.trackCount())
	}
	for _, row := range writer.Rows {
		if row.MissionID == "" || row.Callsign == "" {
			t.Errorf("track row missing identity: %+v", row)
		}
		if row.MissionID != e.MissionID() {
			t.Errorf("track row carries wrong mission id %q", row.MissionID)
		}
		if row.Grid != "10Q" {
			t.Errorf("expected grid 10Q inside the exercise box, got %q", row.Grid)
		}
		if row.Battery < 20 || row.Battery > 100 {
			t.Errorf("battery %d out of range", row.Battery)
		}
	}
}

func TestEngineSendDefaultsToCommandNode(t *testing.T) {
	writer := &MockWriter{}
	e := New(testConfig(), writer, writer)
	defer e.Close()

	msg, err := e.Send("", "BRAVO-2", comms.TypeCommand, comms.PriorityImmediate, "report position")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if msg.Sender != "ALPHA-1" {
		t.Errorf("empty sender must default to the command node, got %q", msg.Sender)
	}
	if len(writer.messagesOfType(comms.TypeCommand)) != 1 {
		t.Error("sent message was not forwarded to the writer")
	}
}

func TestEngineSendRejectsEmptyContent(t *testing.T) {
	e := New(testConfig(), nil, nil)
	defer e.Close()

	if _, err := e.Send("ALPHA-1", "BRAVO-2", comms.TypeCommand, comms.PriorityImmediate, "   "); err == nil {
		t.Fatal("expected validation error for blank content")
	}
	if len(e.Messages(0)) != 0 {
		t.Error("rejected send must not reach the log")
	}
}

func TestEngineSimulatedReplyRoundTrip(t *testing.T) {
	writer := &MockWriter{}
	e := New(testConfig(), writer, writer)
	defer e.Close()

	if _, err := e.Send("ALPHA-1", "BRAVO-2", comms.TypeCommand, comms.PriorityImmediate, "sitrep now"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if e.PendingReplies() != 1 {
		t.Fatalf("expected a pending reply, got %d", e.PendingReplies())
	}

	deadline := time.After(time.Second)
	for e.PendingReplies() > 0 {
		select {
		case <-deadline:
			t.Fatal("reply never fired")
		case <-time.After(10 * time.Millisecond):
		}
	}

	head := e.Messages(1)[0]
	if head.Sender != "BRAVO-2" || head.Recipient != "ALPHA-1" {
		t.Errorf("reply must swap addresses, got %s -> %s", head.Sender, head.Recipient)
	}
	if head.Type != comms.TypeSitrep {
		t.Errorf("reply must be a SITREP, got %s", head.Type)
	}
}

func TestEngineCloseCancelsReplies(t *testing.T) {
	cfg := testConfig()
	cfg.ReplyDelayMinMS = 500
	cfg.ReplyDelayMaxMS = 1000
	e := New(cfg, nil, nil)

	if _, err := e.Send("ALPHA-1", "BRAVO-2", comms.TypeCommand, comms.PriorityImmediate, "report"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	e.Close()
	if e.PendingReplies() != 0 {
		t.Errorf("close must cancel pending replies, got %d", e.PendingReplies())
	}
}

func TestEngineConnectivity(t *testing.T) {
	e := New(testConfig(), nil, nil)
	defer e.Close()

	edges := e.Connectivity()
	if len(edges) == 0 {
		t.Fatal("default nodes are within 2km, expected mesh links")
	}
	n := e.Neighbors("ALPHA-1")
	for _, edge := range n {
		if edge.A != "ALPHA-1" && edge.B != "ALPHA-1" {
			t.Errorf("edge does not touch ALPHA-1: %+v", edge)
		}
	}
}

func TestEngineViewCommands(t *testing.T) {
	e := New(testConfig(), nil, nil)
	defer e.Close()

	_, scale := e.View()
	if got := e.Zoom(true); got != scale*1.5 {
		t.Errorf("zoom in should multiply scale by 1.5, got %f from %f", got, scale)
	}
	if got := e.Zoom(false); got != scale {
		t.Errorf("zoom out should undo zoom in, got %f", got)
	}

	p, ok := e.Recenter("BRAVO-2")
	if !ok {
		t.Fatal("recenter on known node failed")
	}
	center, _ := e.View()
	if center != p {
		t.Errorf("view center not moved: %+v vs %+v", center, p)
	}
	if _, ok := e.Recenter("ZULU-9"); ok {
		t.Error("recenter on unknown node must fail")
	}

	// Command node position maps to the viewport middle after recentering.
	e.Recenter("")
	cmdPos, _ := e.Recenter("ALPHA-1")
	x, y := e.Project(cmdPos, 800, 600)
	if x != 400 || y != 300 {
		t.Errorf("centered node should project to middle, got (%f, %f)", x, y)
	}
}

func TestEngineStatusGeneration(t *testing.T) {
	e := New(testConfig(), nil, nil)
	defer e.Close()

	e.generateStatus(context.Background())
	msgs := e.Messages(0)
	if len(msgs) != 1 {
		t.Fatalf("expected one generated status, got %d", len(msgs))
	}
	if msgs[0].Recipient != "ALPHA-1" {
		t.Errorf("status must target the command node, got %q", msgs[0].Recipient)
	}
}

func TestEngineGeofenceAlertEdgeTriggered(t *testing.T) {
	cfg := testConfig()
	// Restricted zone covering the whole exercise box, so every node is inside
	// after the first tick.
	cfg.Geofences = []config.Geofence{{
		Name: "NO-GO ALL",
		Type: "RESTRICTED",
		Vertices: []config.Vertex{
			{Lat: cfg.LatMin - 0.01, Lon: cfg.LonMin - 0.01},
			{Lat: cfg.LatMax + 0.01, Lon: cfg.LonMin - 0.01},
			{Lat: cfg.LatMax + 0.01, Lon: cfg.LonMax + 0.01},
			{Lat: cfg.LatMin - 0.01, Lon: cfg.LonMax + 0.01},
		},
	}}
	writer := &MockWriter{}
	e := New(cfg, writer, writer)
	defer e.Close()

	e.tick(context.Background())
	alerts := writer.messagesOfType(comms.TypeAlert)
	if len(alerts) != 4 {
		t.Fatalf("expected one alert per node on entry, got %d", len(alerts))
	}
	for _, a := range alerts {
		if a.Recipient != comms.Broadcast || a.Priority != comms.PriorityImmediate {
			t.Errorf("alert must be an immediate broadcast: %+v", a)
		}
	}

	// Loitering inside must not re-alert.
	e.tick(context.Background())
	if got := len(writer.messagesOfType(comms.TypeAlert)); got != 4 {
		t.Errorf("alerts must be edge-triggered, got %d after second tick", got)
	}
}

func TestEngineRunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.TickSeconds = 1
	cfg.StatusSeconds = 1
	e := New(cfg, &MockWriter{}, &MockWriter{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("engine did not stop on context cancel")
	}
	if e.PendingReplies() != 0 {
		t.Errorf("shutdown must leave no pending replies, got %d", e.PendingReplies())
	}
}
