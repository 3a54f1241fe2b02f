package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	base := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func sourceFor(days map[string][]string) DaySource {
	return func(_ context.Context, d time.Time) ([]string, error) {
		return days[d.Format("2006-01-02")], nil
	}
}

func TestNextHourlySlotEmptyDay(t *testing.T) {
	got, err := NextHourlySlot(context.Background(), sourceFor(nil), day(0), 30)
	require.NoError(t, err)
	assert.Equal(t, day(0).Add(9*time.Hour), got, "first slot of an empty day is 09:00")
}

func TestNextHourlySlotSkipsTakenHours(t *testing.T) {
	src := sourceFor(map[string][]string{
		"2025-10-01": {"09:00", "10:00"},
	})

	got, err := NextHourlySlot(context.Background(), src, day(0), 30)
	require.NoError(t, err)
	assert.Equal(t, day(0).Add(11*time.Hour), got)
}

func TestNextHourlySlotIgnoresOffGridTimes(t *testing.T) {
	// A 09:30 booking does not occupy the 09:00 grid slot; the legacy finder
	// matches start times exactly.
	src := sourceFor(map[string][]string{
		"2025-10-01": {"09:30"},
	})

	got, err := NextHourlySlot(context.Background(), src, day(0), 30)
	require.NoError(t, err)
	assert.Equal(t, day(0).Add(9*time.Hour), got)
}

func TestNextHourlySlotSkipsFullDay(t *testing.T) {
	full := []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00", "18:00"}
	src := sourceFor(map[string][]string{
		"2025-10-01": full,
	})

	got, err := NextHourlySlot(context.Background(), src, day(0), 30)
	require.NoError(t, err)
	assert.Equal(t, day(1).Add(9*time.Hour), got, "a day at the cap is skipped entirely")
}

func TestNextHourlySlotAdvancesPastGridExhaustion(t *testing.T) {
	// Nine bookings leave the day under the cap, but if they cover hours
	// 9..17 the first free grid hour is 18:00.
	taken := []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00"}
	src := sourceFor(map[string][]string{
		"2025-10-01": taken,
	})

	got, err := NextHourlySlot(context.Background(), src, day(0), 30)
	require.NoError(t, err)
	assert.Equal(t, day(0).Add(18*time.Hour), got)
}

func TestNextHourlySlotHorizonCap(t *testing.T) {
	full := []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00", "18:00"}
	src := func(_ context.Context, _ time.Time) ([]string, error) {
		return full, nil
	}

	_, err := NextHourlySlot(context.Background(), src, day(0), 14)
	assert.ErrorIs(t, err, ErrNoSlotWithinHorizon)
}
