// Package schedule implements slot allocation for a single doctor's linear
// daily calendar: interval overlap detection, next-free-slot suggestion and
// the legacy fixed-grid hourly finder.
package schedule

import (
	"fmt"
	"sort"
)

const (
	// SlotMinutes is the default appointment granularity used when walking
	// forward to suggest an alternative slot.
	SlotMinutes = 30

	// MaxDailyBookings caps active (pending/accepted) appointments per
	// doctor per calendar day.
	MaxDailyBookings = 10

	// DayStartHour and DayEndHour bound the fixed hourly grid, inclusive.
	DayStartHour = 9
	DayEndHour   = 18

	minutesPerDay = 24 * 60
)

// Interval is a half-open [Start, End) range in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// ParseClock converts an "HH:MM" wall-clock string to minutes since midnight.
func ParseClock(clock string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(clock, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", clock, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NewInterval builds an interval from wall-clock strings. End must be
// strictly after start; overnight spans are not allowed.
func NewInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	if e <= s {
		return Interval{}, fmt.Errorf("end time %s must be after start time %s", end, start)
	}
	return Interval{Start: s, End: e}, nil
}

// SortIntervals orders intervals ascending by start time, in place.
func SortIntervals(ivs []Interval) {
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].Start < ivs[j].Start })
}

// HasConflict reports whether the requested interval overlaps any busy one.
func HasConflict(busy []Interval, requested Interval) bool {
	for _, iv := range busy {
		if iv.Overlaps(requested) {
			return true
		}
	}
	return false
}
