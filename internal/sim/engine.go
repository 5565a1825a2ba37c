// Engine composing the registry, message bus, and connectivity graph
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"tactimesh/internal/clock"
	"tactimesh/internal/comms"
	"tactimesh/internal/config"
	"tactimesh/internal/geo"
	"tactimesh/internal/metrics"
	"tactimesh/internal/unit"
)

// Engine owns the simulation state and timers. The presentation layer pulls
// snapshots and pushes commands; nothing else touches the stores directly.
type Engine struct {
	missionID   string
	missionName string
	cfg         *config.Config

	registry  *unit.Registry
	posSim    *unit.Simulator
	bus       *comms.Bus
	geofences []geo.Geofence
	clock     clock.Mission

	trackWriter TrackWriter
	msgWriter   MessageWriter

	now func() time.Time

	mu           sync.Mutex
	viewCenter   geo.Point
	viewScale    float64
	inRestricted map[string]map[string]bool // callsign -> zone -> inside
}

// New initializes the engine from config. Writers may be nil.
func New(cfg *config.Config, trackWriter TrackWriter, msgWriter MessageWriter) *Engine {
	now := time.Now

	anchor, err := clock.ParseAnchor(cfg.ClockAnchor)
	if err != nil {
		anchor = clock.NewMission(19, 0, 0)
	}

	seeds := make([]unit.Node, len(cfg.Nodes))
	for i, n := range cfg.Nodes {
		seeds[i] = unit.Node{
			Callsign: n.Callsign,
			Unit:     n.Unit,
			Role:     n.Role,
			Rank:     n.Rank,
			Position: geo.Point{Lat: n.Lat, Lon: n.Lon},
			Status:   unit.StatusActive,
			Battery:  100,
			Signal:   95,
			LastSeen: now(),
		}
	}
	registry := unit.NewRegistry(seeds)

	box := unit.Box{LatMin: cfg.LatMin, LatMax: cfg.LatMax, LonMin: cfg.LonMin, LonMax: cfg.LonMax}
	motion := unit.SharedAngleWalk{MoveDistance: cfg.MoveDistanceDeg}
	posSim := unit.NewSimulator(registry, motion, box, rand.New(rand.NewSource(now().UnixNano())))

	seedMsgs := make([]comms.Message, len(cfg.SeedMessages))
	for i, m := range cfg.SeedMessages {
		seedMsgs[i] = comms.Message{
			Sender:    m.Sender,
			Recipient: m.Recipient,
			Type:      comms.Type(m.Type),
			Priority:  m.Priority,
			Content:   m.Content,
		}
	}
	bus := comms.NewBus(comms.BusConfig{
		CommandNode:   cfg.CommandNode,
		HistoryCap:    cfg.HistoryCap,
		ReplyDelayMin: cfg.ReplyDelayMin(),
		ReplyDelayMax: cfg.ReplyDelayMax(),
		SeedMessages:  seedMsgs,
		StatusPhrases: cfg.StatusPhrases,
	}, rand.New(rand.NewSource(now().UnixNano()+1)), now)

	fences := make([]geo.Geofence, len(cfg.Geofences))
	for i, g := range cfg.Geofences {
		ring := make([]geo.Point, len(g.Vertices))
		for j, v := range g.Vertices {
			ring[j] = geo.Point{Lat: v.Lat, Lon: v.Lon}
		}
		fences[i] = geo.Geofence{Name: g.Name, Kind: geo.GeofenceKind(g.Type), Ring: ring, Color: g.Color}
	}

	center := geo.Point{Lat: (cfg.LatMin + cfg.LatMax) / 2, Lon: (cfg.LonMin + cfg.LonMax) / 2}
	if cmd, ok := registry.Get(cfg.CommandNode); ok {
		center = cmd.Position
	}

	e := &Engine{
		missionID:    uuid.New().String(),
		missionName:  cfg.Mission,
		cfg:          cfg,
		registry:     registry,
		posSim:       posSim,
		bus:          bus,
		geofences:    fences,
		clock:        anchor,
		trackWriter:  trackWriter,
		msgWriter:    msgWriter,
		now:          now,
		viewCenter:   center,
		viewScale:    cfg.MapScale,
		inRestricted: make(map[string]map[string]bool),
	}
	bus.SetNotify(e.handleMessage)
	metrics.NodesTracked.Set(float64(registry.Len()))
	return e
}

// MissionID returns the per-run session identifier tagged on every track row.
func (e *Engine) MissionID() string { return e.missionID }

// MissionName returns the configured mission name.
func (e *Engine) MissionName() string { return e.missionName }

// CommandNode returns the configured command callsign.
func (e *Engine) CommandNode() string { return e.cfg.CommandNode }

// Nodes returns copies of all nodes in seed order.
func (e *Engine) Nodes() []unit.Node {
	return e.registry.Snapshot()
}

// Messages returns up to limit messages, newest first.
func (e *Engine) Messages(limit int) []comms.Message {
	return e.bus.Messages(limit)
}

// Connectivity recomputes the mesh graph from the current position snapshot.
func (e *Engine) Connectivity() []geo.Edge {
	edges := geo.BuildGraph(e.registry.Sites())
	metrics.ConnectivityEdges.Set(float64(len(edges)))
	return edges
}

// Neighbors lists the mesh links touching one node.
func (e *Engine) Neighbors(callsign string) []geo.Edge {
	return geo.Neighbors(e.Connectivity(), callsign)
}

// Geofences returns the static zone set.
func (e *Engine) Geofences() []geo.Geofence {
	out := make([]geo.Geofence, len(e.geofences))
	copy(out, e.geofences)
	return out
}

// ClockDisplay renders the mission clock for the current instant.
func (e *Engine) ClockDisplay() string {
	return e.clock.Display(e.now())
}

// Send validates and inserts a direct message. An empty sender defaults to
// the command node.
func (e *Engine) Send(sender, recipient string, t comms.Type, priority int, content string) (comms.Message, error) {
	if sender == "" {
		sender = e.cfg.CommandNode
	}
	return e.bus.Send(sender, recipient, t, priority, content)
}

// Acknowledge marks a logged message as acknowledged.
func (e *Engine) Acknowledge(id int) bool {
	return e.bus.Acknowledge(id)
}

// Zoom steps the viewport scale and returns the new value.
func (e *Engine) Zoom(in bool) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if in {
		e.viewScale = geo.ZoomIn(e.viewScale)
	} else {
		e.viewScale = geo.ZoomOut(e.viewScale)
	}
	return e.viewScale
}

// Recenter moves the viewport onto a node's current position. An empty
// callsign targets the command node.
func (e *Engine) Recenter(callsign string) (geo.Point, bool) {
	if callsign == "" {
		callsign = e.cfg.CommandNode
	}
	n, ok := e.registry.Get(callsign)
	if !ok {
		return geo.Point{}, false
	}
	e.mu.Lock()
	e.viewCenter = n.Position
	e.mu.Unlock()
	return n.Position, true
}

// View returns the current viewport center and scale.
func (e *Engine) View() (geo.Point, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewCenter, e.viewScale
}

// Project maps a point into a viewport of the given size using the current
// view state.
func (e *Engine) Project(p geo.Point, w, h float64) (x, y float64) {
	center, scale := e.View()
	return geo.ToScreen(p, center, scale, w, h)
}

// AddWriters fans subsequent output out to an additional writer pair. Used to
// attach the console once the engine exists. Must be called before Run.
func (e *Engine) AddWriters(tw TrackWriter, mw MessageWriter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if tw != nil {
		if e.trackWriter == nil {
			e.trackWriter = tw
		} else {
			e.trackWriter = NewMultiWriter([]TrackWriter{e.trackWriter, tw}, nil)
		}
	}
	if mw != nil {
		if e.msgWriter == nil {
			e.msgWriter = mw
		} else {
			e.msgWriter = NewMultiWriter(nil, []MessageWriter{e.msgWriter, mw})
		}
	}
}

// PendingReplies reports how many simulated replies are still in flight.
func (e *Engine) PendingReplies() int {
	return e.bus.PendingReplies()
}

// Close tears down the bus and cancels all pending reply timers.
func (e *Engine) Close() {
	e.bus.Close()
}

// handleMessage forwards every inserted message to the writer and metrics.
func (e *Engine) handleMessage(m comms.Message) {
	metrics.MessagesTotal.WithLabelValues(string(m.Type)).Inc()
	if e.msgWriter != nil {
		if err := e.msgWriter.WriteMessage(m); err != nil {
			slog.Default().Error("message write failed", "id", m.ID, "err", err)
		}
	}
}

// checkGeofences emits an ALERT the moment a node enters a restricted zone.
// The check is edge-triggered so a node loitering inside does not flood the
// log.
func (e *Engine) checkGeofences(nodes []unit.Node) {
	for _, n := range nodes {
		for _, g := range e.geofences {
			if g.Kind != geo.GeofenceRestricted {
				continue
			}
			inside := g.Contains(n.Position)

			e.mu.Lock()
			zones := e.inRestricted[n.Callsign]
			if zones == nil {
				zones = make(map[string]bool)
				e.inRestricted[n.Callsign] = zones
			}
			entered := inside && !zones[g.Name]
			zones[g.Name] = inside
			e.mu.Unlock()

			if entered {
				content := fmt.Sprintf("%s entered restricted zone %s", n.Callsign, g.Name)
				if _, err := e.bus.Send(n.Callsign, comms.Broadcast, comms.TypeAlert, comms.PriorityImmediate, content); err != nil {
					slog.Default().Error("geofence alert failed", "callsign", n.Callsign, "err", err)
				}
			}
		}
	}
}
