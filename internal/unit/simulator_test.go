package unit

import (
	"math/rand"
	"testing"
	"time"

	"tactimesh/internal/geo"
)

var testBox = Box{LatMin: 37.765, LatMax: 37.785, LonMin: -122.430, LonMax: -122.405}

func seedNodes() []Node {
	return []Node{
		{Callsign: "ALPHA-1", Unit: "1ST PLT", Role: "TEAM_LEADER", Position: geo.Point{Lat: 37.7749, Lon: -122.4194}, Status: StatusActive, Battery: 100, Signal: 95},
		{Callsign: "BRAVO-2", Unit: "1ST PLT", Role: "RIFLEMAN", Position: geo.Point{Lat: 37.7729, Lon: -122.4174}, Status: StatusActive, Battery: 100, Signal: 95},
		{Callsign: "CHARLIE-3", Unit: "2ND PLT", Role: "MEDIC", Position: geo.Point{Lat: 37.7769, Lon: -122.4214}, Status: StatusActive, Battery: 100, Signal: 95},
	}
}

func TestRegistrySnapshotOrderAndIsolation(t *testing.T) {
	r := NewRegistry(seedNodes())

	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(snap))
	}
	if snap[0].Callsign != "ALPHA-1" || snap[2].Callsign != "CHARLIE-3" {
		t.Errorf("snapshot does not preserve seed order: %v", r.Callsigns())
	}

	// Mutating a snapshot must not leak into the registry.
	snap[0].Battery = 1
	if n, _ := r.Get("ALPHA-1"); n.Battery != 100 {
		t.Errorf("snapshot mutation leaked into registry: battery=%d", n.Battery)
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry(seedNodes())
	if _, ok := r.Get("ZULU-9"); ok {
		t.Error("unknown callsign should not resolve")
	}
}

func TestSimulatorTickInvariants(t *testing.T) {
	r := NewRegistry(seedNodes())
	s := NewSimulator(r, SharedAngleWalk{MoveDistance: 0.0005}, testBox, rand.New(rand.NewSource(42)))

	now := time.Now()
	var prev []Node
	for i := 0; i < 500; i++ {
		prev = r.Snapshot()
		now = now.Add(15 * time.Second)
		s.Tick(now)

		for j, n := range r.Snapshot() {
			if n.Position.Lat < testBox.LatMin || n.Position.Lat > testBox.LatMax {
				t.Fatalf("tick %d: %s latitude %.6f out of box", i, n.Callsign, n.Position.Lat)
			}
			if n.Position.Lon < testBox.LonMin || n.Position.Lon > testBox.LonMax {
				t.Fatalf("tick %d: %s longitude %.6f out of box", i, n.Callsign, n.Position.Lon)
			}
			if n.Battery < 20 || n.Battery > 100 {
				t.Fatalf("tick %d: %s battery %d out of range", i, n.Callsign, n.Battery)
			}
			if n.Battery > prev[j].Battery {
				t.Fatalf("tick %d: %s battery increased %d -> %d", i, n.Callsign, prev[j].Battery, n.Battery)
			}
			if n.Signal < 70 || n.Signal > 100 {
				t.Fatalf("tick %d: %s signal %d out of range", i, n.Callsign, n.Signal)
			}
			if !n.LastSeen.Equal(now) {
				t.Fatalf("tick %d: %s LastSeen not updated", i, n.Callsign)
			}
		}
	}
}

func TestSimulatorBatteryReachesFloorNotBelow(t *testing.T) {
	r := NewRegistry(seedNodes()[:1])
	s := NewSimulator(r, SharedAngleWalk{MoveDistance: 0.0005}, testBox, rand.New(rand.NewSource(7)))

	// Enough ticks for the 10% drain to exhaust 80 points.
	now := time.Now()
	for i := 0; i < 10000; i++ {
		now = now.Add(time.Second)
		s.Tick(now)
	}
	n, _ := r.Get("ALPHA-1")
	if n.Battery != 20 {
		t.Errorf("expected battery at floor 20 after long run, got %d", n.Battery)
	}
}

func TestBoxClamp(t *testing.T) {
	p := testBox.Clamp(geo.Point{Lat: 90, Lon: -180})
	if p.Lat != testBox.LatMax || p.Lon != testBox.LonMin {
		t.Errorf("clamp failed: %+v", p)
	}
	inside := geo.Point{Lat: 37.77, Lon: -122.42}
	if got := testBox.Clamp(inside); got != inside {
		t.Errorf("interior point must pass through unchanged, got %+v", got)
	}
}

func TestSharedAngleWalkBounded(t *testing.T) {
	w := SharedAngleWalk{MoveDistance: 0.0005}
	rng := rand.New(rand.NewSource(1))
	start := geo.Point{Lat: 37.7749, Lon: -122.4194}
	for i := 0; i < 1000; i++ {
		p := w.Step(start, rng)
		// One step moves at most MoveDistance/2 per axis.
		if d := p.Lat - start.Lat; d > 0.00025 || d < -0.00025 {
			t.Fatalf("lat step %f exceeds bound", d)
		}
		if d := p.Lon - start.Lon; d > 0.00025 || d < -0.00025 {
			t.Fatalf("lon step %f exceeds bound", d)
		}
	}
}
