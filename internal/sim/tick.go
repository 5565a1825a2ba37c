package sim

import (
	"context"
	"time"

	"tactimesh/internal/geo"
	"tactimesh/internal/logging"
	"tactimesh/internal/metrics"
	"tactimesh/internal/unit"
)

// Run starts the engine timers and stops when the context is done. Position
// ticks and status generation run on independent cadences; both funnel into
// the serialized stores.
func (e *Engine) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting engine",
		"mission", e.missionName,
		"tick_interval", e.cfg.TickInterval(),
		"status_interval", e.cfg.StatusInterval())

	posTicker := time.NewTicker(e.cfg.TickInterval())
	defer posTicker.Stop()
	statusTicker := time.NewTicker(e.cfg.StatusInterval())
	defer statusTicker.Stop()

	for {
		select {
		case <-posTicker.C:
			e.tick(ctx)
		case <-statusTicker.C:
			e.generateStatus(ctx)
		case <-ctx.Done():
			log.Info("stopping engine")
			e.Close()
			return
		}
	}
}

// tick advances every node and writes the resulting track batch.
func (e *Engine) tick(ctx context.Context) {
	log := logging.FromContext(ctx)
	now := e.now()

	e.posSim.Tick(now)
	metrics.TicksTotal.Inc()

	nodes := e.registry.Snapshot()
	e.checkGeofences(nodes)
	metrics.ConnectivityEdges.Set(float64(geo.EdgeCount(e.registry.Sites())))
	metrics.PendingReplies.Set(float64(e.bus.PendingReplies()))

	if e.trackWriter == nil {
		return
	}
	batch := make([]unit.TrackRow, len(nodes))
	for i, n := range nodes {
		batch[i] = unit.TrackRow{
			MissionID: e.missionID,
			Callsign:  n.Callsign,
			Unit:      n.Unit,
			Role:      n.Role,
			Lat:       n.Position.Lat,
			Lon:       n.Position.Lon,
			Grid:      geo.GridLabel(n.Position),
			Battery:   n.Battery,
			Signal:    n.Signal,
			Status:    n.Status,
			Timestamp: now.UTC(),
		}
	}

	// Batch support if writer implements WriteTracks
	if bw, ok := e.trackWriter.(batchTrackWriter); ok {
		if err := bw.WriteTracks(batch); err != nil {
			log.Error("track batch write failed", "err", err)
		}
		return
	}
	for _, row := range batch {
		if err := e.trackWriter.WriteTrack(row); err != nil {
			log.Error("track write failed", "callsign", row.Callsign, "err", err)
		}
	}
}

// generateStatus emits one periodic SITREP into the capped log.
func (e *Engine) generateStatus(ctx context.Context) {
	log := logging.FromContext(ctx)
	if msg, ok := e.bus.GenerateStatusMessage(e.registry.Callsigns()); ok {
		log.Debug("status message generated", "id", msg.ID, "sender", msg.Sender)
	}
}
