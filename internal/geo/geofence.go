package geo

// GeofenceKind classifies a tactical zone.
type GeofenceKind string

const (
	GeofenceFriendly   GeofenceKind = "FRIENDLY"
	GeofenceRestricted GeofenceKind = "RESTRICTED"
)

// Geofence is a static named polygon loaded from configuration. The core
// never mutates geofences at runtime.
type Geofence struct {
	Name  string       `json:"name"`
	Kind  GeofenceKind `json:"kind"`
	Ring  []Point      `json:"ring"`
	Color string       `json:"color,omitempty"`
}

// Contains reports whether p lies inside the fence polygon, using a
// ray-casting test over the closed ring.
func (g Geofence) Contains(p Point) bool {
	n := len(g.Ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := g.Ring[i], g.Ring[j]
		if (a.Lat > p.Lat) == (b.Lat > p.Lat) {
			continue
		}
		cross := (b.Lon-a.Lon)*(p.Lat-a.Lat)/(b.Lat-a.Lat) + a.Lon
		if p.Lon < cross {
			inside = !inside
		}
	}
	return inside
}
