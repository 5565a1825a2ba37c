package geo

import "fmt"

// GridLabel derives a simplified MGRS-style zone label from a coordinate.
// It is a display aid only, not a standards-conforming MGRS conversion.
func GridLabel(p Point) string {
	zone := int((p.Lon+180)/6) + 1
	letter := rune('C' + int((p.Lat+80)/8))
	return fmt.Sprintf("%d%c", zone, letter)
}
