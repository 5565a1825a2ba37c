package geo

// zoomFactor is applied multiplicatively per zoom step.
const zoomFactor = 1.5

// ToScreen projects a geographic point onto a viewport of the given size.
// The center maps to the middle of the viewport; scale is pixels per degree.
func ToScreen(p, center Point, scale, viewportW, viewportH float64) (x, y float64) {
	x = (p.Lon-center.Lon)*scale + viewportW/2
	y = (center.Lat-p.Lat)*scale + viewportH/2
	return x, y
}

// ZoomIn returns the scale one step closer.
func ZoomIn(scale float64) float64 { return scale * zoomFactor }

// ZoomOut returns the scale one step further away.
func ZoomOut(scale float64) float64 { return scale / zoomFactor }
