// Prometheus instrumentation for the simulation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tactimesh_ticks_total",
		Help: "Completed position simulation ticks.",
	})

	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tactimesh_messages_total",
		Help: "Messages inserted into the log, by type.",
	}, []string{"type"})

	ConnectivityEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tactimesh_connectivity_edges",
		Help: "Mesh links derived from the latest connectivity query.",
	})

	NodesTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tactimesh_nodes_tracked",
		Help: "Nodes currently held by the registry.",
	})

	PendingReplies = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tactimesh_pending_replies",
		Help: "Simulated responses scheduled but not yet fired.",
	})
)
