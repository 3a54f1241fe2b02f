package schedule

// SuggestNext walks forward from the requested start in slotMinutes
// increments until the candidate slot no longer overlaps a busy interval.
// It returns the candidate start in minutes since midnight and false when
// the first free candidate would begin at or past midnight, meaning there
// is no slot left on this day.
//
// Termination is bounded: every conflicting candidate lies before the end
// of some busy interval, so the candidate passes the last busy end within
// (lastEnd-start)/slotMinutes+1 steps.
func SuggestNext(busy []Interval, start, slotMinutes int) (int, bool) {
	if slotMinutes <= 0 {
		slotMinutes = SlotMinutes
	}

	sorted := make([]Interval, len(busy))
	copy(sorted, busy)
	SortIntervals(sorted)

	candidate := start
	for HasConflict(sorted, Interval{Start: candidate, End: candidate + slotMinutes}) {
		candidate += slotMinutes
	}

	if candidate+slotMinutes > minutesPerDay {
		return 0, false
	}
	return candidate, true
}

// SuggestNextClock is SuggestNext over "HH:MM" strings.
func SuggestNextClock(busy []Interval, start string, slotMinutes int) (string, bool, error) {
	s, err := ParseClock(start)
	if err != nil {
		return "", false, err
	}
	candidate, ok := SuggestNext(busy, s, slotMinutes)
	if !ok {
		return "", false, nil
	}
	return FormatClock(candidate), true, nil
}
