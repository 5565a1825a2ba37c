package geo

// Tier classifies a mesh link by range.
type Tier string

const (
	TierStrong Tier = "STRONG"
	TierNormal Tier = "NORMAL"
)

// Link range thresholds in kilometers.
const (
	edgeRangeKm   = 2.0
	strongRangeKm = 1.0
)

// Site is a positioned participant in the connectivity graph.
type Site struct {
	ID       string
	Position Point
}

// Edge is one derived mesh link between two sites. Edges are recomputed from
// a position snapshot on every query and carry no state of their own.
type Edge struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	DistanceKm float64 `json:"distance_km"`
	Tier       Tier    `json:"tier"`
}

// BuildGraph computes the mesh links over a snapshot of sites. A link exists
// for every unordered pair closer than 2 km; pairs under 1 km are STRONG.
func BuildGraph(sites []Site) []Edge {
	var edges []Edge
	for i := 0; i < len(sites); i++ {
		for j := i + 1; j < len(sites); j++ {
			d := Distance(sites[i].Position, sites[j].Position)
			if d >= edgeRangeKm {
				continue
			}
			tier := TierNormal
			if d < strongRangeKm {
				tier = TierStrong
			}
			edges = append(edges, Edge{A: sites[i].ID, B: sites[j].ID, DistanceKm: d, Tier: tier})
		}
	}
	return edges
}

// EdgeCount returns the number of mesh links over a snapshot of sites.
func EdgeCount(sites []Site) int {
	return len(BuildGraph(sites))
}

// Neighbors filters the edge list down to links touching the given site.
func Neighbors(edges []Edge, id string) []Edge {
	var out []Edge
	for _, e := range edges {
		if e.A == id || e.B == id {
			out = append(out, e)
		}
	}
	return out
}
