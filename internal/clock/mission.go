// Mission clock derived from a fixed daily anchor time.
package clock

import (
	"fmt"
	"time"
)

// Mission measures elapsed time against a fixed time-of-day anchor. The
// anchor repeats every calendar day; before the anchor the elapsed value
// is negative and formatted with a minus marker rather than clamped.
type Mission struct {
	hour, min, sec int
}

// NewMission builds a clock anchored at the given local time of day.
func NewMission(hour, min, sec int) Mission {
	return Mission{hour: hour, min: min, sec: sec}
}

// ParseAnchor builds a clock from an "HH:MM:SS" string.
func ParseAnchor(s string) (Mission, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		return Mission{}, fmt.Errorf("parse clock anchor %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return Mission{}, fmt.Errorf("clock anchor %q out of range", s)
	}
	return NewMission(h, m, sec), nil
}

// Elapsed returns now minus the anchor on now's calendar day. The anchor is
// placed with time.Date so it stays at the configured wall time even on DST
// transition days.
func (c Mission) Elapsed(now time.Time) time.Duration {
	anchor := time.Date(now.Year(), now.Month(), now.Day(), c.hour, c.min, c.sec, 0, now.Location())
	return now.Sub(anchor)
}

// Format renders an elapsed duration as T+HH:MM:SS (or T-HH:MM:SS when the
// current time precedes the anchor).
func Format(d time.Duration) string {
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	total := int(d / time.Second)
	return fmt.Sprintf("T%s%02d:%02d:%02d", sign, total/3600, (total/60)%60, total%60)
}

// Display renders the mission clock for the given instant.
func (c Mission) Display(now time.Time) string {
	return Format(c.Elapsed(now))
}
