package program

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_AddDaysIsImmutable(t *testing.T) {
	d := NewDate(2026, time.January, 30)
	next := d.AddDays(3)

	assert.Equal(t, "2026-01-30", d.String())
	assert.Equal(t, "2026-02-02", next.String())
	assert.Equal(t, 3, next.DaysSince(d))
	assert.Equal(t, -3, d.DaysSince(next))
}

func TestDateOf_UsesInjectedOffset(t *testing.T) {
	cal := NewCalendar(8)
	// 2026-03-01 17:30 UTC 是 UTC+8 的 3 月 2 日 01:30
	instant := time.Date(2026, time.March, 1, 17, 30, 0, 0, time.UTC)

	assert.Equal(t, "2026-03-02", cal.Today(instant).String())
	assert.Equal(t, "2026-03-01", DateOf(instant, time.UTC).String())
}

func TestCalendar_Deadline(t *testing.T) {
	cal := NewCalendar(8)
	d := NewDate(2026, time.March, 2)

	deadline := cal.Deadline(d)
	assert.True(t, deadline.Equal(time.Date(2026, time.March, 2, 16, 0, 0, 0, time.UTC)))
}

func TestParseDate_RoundTrip(t *testing.T) {
	d, err := ParseDate("2026-12-31")
	require.NoError(t, err)
	assert.Equal(t, "2027-01-01", d.AddDays(1).String())

	_, err = ParseDate("31/12/2026")
	assert.Error(t, err)
}

func TestFromStored_IgnoresLocation(t *testing.T) {
	stored := time.Date(2026, time.May, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, NewDate(2026, time.May, 4), FromStored(stored))
	assert.True(t, FromStored(stored).Stored().Equal(stored))
}
