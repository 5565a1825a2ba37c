package unit

import (
	"sync"

	"tactimesh/internal/geo"
)

// Registry owns the set of nodes and serializes every mutation. Readers get
// point-in-time copies; no caller ever holds a pointer into the registry.
type Registry struct {
	mu    sync.Mutex
	nodes []*Node
	index map[string]*Node
}

// NewRegistry seeds a registry. Node order is preserved for snapshots.
func NewRegistry(seed []Node) *Registry {
	r := &Registry{index: make(map[string]*Node, len(seed))}
	for i := range seed {
		n := seed[i]
		r.nodes = append(r.nodes, &n)
		r.index[n.Callsign] = &n
	}
	return r
}

// Snapshot returns copies of all nodes in seed order.
func (r *Registry) Snapshot() []Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Node, len(r.nodes))
	for i, n := range r.nodes {
		out[i] = *n
	}
	return out
}

// Get returns a copy of the node with the given callsign.
func (r *Registry) Get(callsign string) (Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.index[callsign]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Callsigns lists node identifiers in seed order.
func (r *Registry) Callsigns() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.nodes))
	for i, n := range r.nodes {
		out[i] = n.Callsign
	}
	return out
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.nodes)
}

// Sites projects the registry into connectivity-graph input.
func (r *Registry) Sites() []geo.Site {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]geo.Site, len(r.nodes))
	for i, n := range r.nodes {
		out[i] = geo.Site{ID: n.Callsign, Position: n.Position}
	}
	return out
}

// update runs fn over every node as one atomic batch. Readers never observe
// a partially updated registry.
func (r *Registry) update(fn func(*Node)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.nodes {
		fn(n)
	}
}
