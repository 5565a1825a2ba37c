package unit

import (
	"math"
	"math/rand"
	"time"

	"tactimesh/internal/geo"
)

// Box bounds the operational area; positions are clamped to it every tick.
type Box struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

// Clamp pins a point into the box.
func (b Box) Clamp(p geo.Point) geo.Point {
	p.Lat = math.Min(math.Max(p.Lat, b.LatMin), b.LatMax)
	p.Lon = math.Min(math.Max(p.Lon, b.LonMin), b.LonMax)
	return p
}

// MotionModel computes one movement step for a node position. Implementations
// must not retain state between calls.
type MotionModel interface {
	Step(p geo.Point, rng *rand.Rand) geo.Point
}

// SharedAngleWalk is the reference motion model: a single bearing and a
// single signed magnitude draw are applied to both axes. The step is not a
// physically accurate random walk; callers that need one substitute another
// MotionModel.
type SharedAngleWalk struct {
	MoveDistance float64 // degrees per full-magnitude step
}

func (w SharedAngleWalk) Step(p geo.Point, rng *rand.Rand) geo.Point {
	theta := rng.Float64() * 2 * math.Pi
	m := rng.Float64() - 0.5
	p.Lat += math.Cos(theta) * w.MoveDistance * m
	p.Lon += math.Sin(theta) * w.MoveDistance * m
	return p
}

// Drain and jitter constants for the telemetry walk.
const (
	batteryFloor      = 20
	batteryDrainProb  = 0.1
	signalMin         = 70
	signalMax         = 100
	signalJitterRange = 10
)

// Simulator advances the registry one tick at a time: movement, battery
// drain, and signal jitter. Ticking never fails.
type Simulator struct {
	registry *Registry
	motion   MotionModel
	box      Box
	rng      *rand.Rand
}

// NewSimulator wires a position simulator over a registry.
func NewSimulator(registry *Registry, motion MotionModel, box Box, rng *rand.Rand) *Simulator {
	return &Simulator{registry: registry, motion: motion, box: box, rng: rng}
}

// Tick updates every node as one atomic batch.
func (s *Simulator) Tick(now time.Time) {
	s.registry.update(func(n *Node) {
		n.Position = s.box.Clamp(s.motion.Step(n.Position, s.rng))
		n.LastSeen = now

		if s.rng.Float64() < batteryDrainProb {
			n.Battery -= s.rng.Intn(3)
			if n.Battery < batteryFloor {
				n.Battery = batteryFloor
			}
		}

		n.Signal += int(math.Round((s.rng.Float64() - 0.5) * signalJitterRange))
		if n.Signal < signalMin {
			n.Signal = signalMin
		} else if n.Signal > signalMax {
			n.Signal = signalMax
		}
	})
}
