package schedule

import (
	"context"
	"errors"
	"time"
)

// DefaultHorizonDays bounds the forward scan of the fixed-grid finder. The
// scan would otherwise never terminate against a pathologically full
// calendar.
const DefaultHorizonDays = 365

// ErrNoSlotWithinHorizon is returned when every scanned day is booked out.
var ErrNoSlotWithinHorizon = errors.New("no free slot within the scheduling horizon")

// DaySource returns the "HH:MM" start times of a doctor's active
// appointments on the given calendar day.
type DaySource func(ctx context.Context, day time.Time) ([]string, error)

// NextHourlySlot finds the earliest free hourly slot on the fixed
// 09:00-18:00 grid, scanning forward day by day from the given date. A day
// is skipped entirely once it holds MaxDailyBookings active appointments.
func NextHourlySlot(ctx context.Context, src DaySource, from time.Time, horizonDays int) (time.Time, error) {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}

	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())

	for i := 0; i < horizonDays; i++ {
		starts, err := src(ctx, day)
		if err != nil {
			return time.Time{}, err
		}

		if len(starts) < MaxDailyBookings {
			taken := make(map[int]bool, len(starts))
			for _, s := range starts {
				m, err := ParseClock(s)
				if err != nil {
					continue
				}
				taken[m] = true
			}

			for hour := DayStartHour; hour <= DayEndHour; hour++ {
				if !taken[hour*60] {
					return day.Add(time.Duration(hour) * time.Hour), nil
				}
			}
		}

		day = day.AddDate(0, 0, 1)
	}

	return time.Time{}, ErrNoSlotWithinHorizon
}
