package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadrangle.org/core/models"
)

func localTime(y int, m time.Month, d, hh, mm, ss, ns int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, ns, time.Local)
}

func TestNormalizeDateWithTime(t *testing.T) {
	e := models.Event{
		ID:   "e1",
		Date: models.StringDate("2025-10-26"),
		Time: "14:30",
	}

	in := Normalize(e)
	require.True(t, in.Present())
	assert.Equal(t, localTime(2025, time.October, 26, 14, 30, 0, 0), in.Time())
}

func TestNormalizeDateOnlyEndOfDay(t *testing.T) {
	e := models.Event{
		ID:   "e1",
		Date: models.StringDate("2025-10-26"),
	}

	in := Normalize(e)
	require.True(t, in.Present())
	assert.Equal(t, localTime(2025, time.October, 26, 23, 59, 59, 999_000_000), in.Time())
}

func TestNormalizeMalformedTime(t *testing.T) {
	tests := []struct {
		name  string
		clock string
	}{
		{"out of range", "99:99"},
		{"hour too large", "25:01"},
		{"minute too large", "12:75"},
		{"missing zero pad", "9:30"},
		{"garbage", "noon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := models.Event{
				Date: models.StringDate("2025-10-26"),
				Time: tt.clock,
			}

			in := Normalize(e)
			require.True(t, in.Present())
			assert.Equal(t, localTime(2025, time.October, 26, 23, 59, 59, 999_000_000), in.Time())
		})
	}
}

func TestNormalizeEmptyDateIsAbsent(t *testing.T) {
	e := models.Event{ID: "e1", Date: models.StringDate("")}
	assert.False(t, Normalize(e).Present())
}

func TestNormalizeTimestampObject(t *testing.T) {
	now := time.Unix(1_761_480_000, 0)
	e := models.Event{
		Date: models.TimestampDate(now),
		// Time must be ignored when the date is already an instant.
		Time: "14:30",
	}

	in := Normalize(e)
	require.True(t, in.Present())
	assert.True(t, in.Time().Equal(now))
}

func TestNormalizeGenericISOString(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339 utc", "2025-10-26T14:30:00Z", time.Date(2025, time.October, 26, 14, 30, 0, 0, time.UTC)},
		{"rfc3339 offset", "2025-10-26T14:30:00+02:00", time.Date(2025, time.October, 26, 12, 30, 0, 0, time.UTC)},
		{"no zone", "2025-10-26T14:30:00", localTime(2025, time.October, 26, 14, 30, 0, 0)},
		{"space separated", "2025-10-26 14:30:00", localTime(2025, time.October, 26, 14, 30, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Normalize(models.Event{Date: models.StringDate(tt.raw)})
			require.True(t, in.Present())
			assert.True(t, in.Time().Equal(tt.want), "got %v want %v", in.Time(), tt.want)
		})
	}
}

func TestNormalizeFallbackOrder(t *testing.T) {
	createdAt := time.Unix(1_700_000_000, 0)
	dateCreated := time.Unix(1_600_000_000, 0)

	t.Run("unparsable date falls back to createdAt", func(t *testing.T) {
		e := models.Event{
			Date:        models.StringDate("next tuesday"),
			CreatedAt:   models.TimestampDate(createdAt),
			DateCreated: models.TimestampDate(dateCreated),
		}
		in := Normalize(e)
		require.True(t, in.Present())
		assert.True(t, in.Time().Equal(createdAt))
	})

	t.Run("dateCreated consulted last", func(t *testing.T) {
		e := models.Event{
			DateCreated: models.TimestampDate(dateCreated),
		}
		in := Normalize(e)
		require.True(t, in.Present())
		assert.True(t, in.Time().Equal(dateCreated))
	})

	t.Run("explicit date wins over fallbacks", func(t *testing.T) {
		e := models.Event{
			Date:      models.StringDate("2025-10-26"),
			Time:      "14:30",
			CreatedAt: models.TimestampDate(createdAt),
		}
		in := Normalize(e)
		require.True(t, in.Present())
		assert.Equal(t, localTime(2025, time.October, 26, 14, 30, 0, 0), in.Time())
	})
}

func TestNormalizeFallbackHasNoEndOfDayRule(t *testing.T) {
	// A date-only creation stamp resolves to midnight, not 23:59:59.999.
	// The end-of-day policy applies to the primary date field only.
	e := models.Event{CreatedAt: models.StringDate("2025-10-26")}

	in := Normalize(e)
	require.True(t, in.Present())
	assert.Equal(t, localTime(2025, time.October, 26, 0, 0, 0, 0), in.Time())
}

func TestNormalizeNothingResolves(t *testing.T) {
	tests := []struct {
		name string
		e    models.Event
	}{
		{"all missing", models.Event{}},
		{"garbage everywhere", models.Event{
			Date:        models.StringDate("soon"),
			CreatedAt:   models.StringDate("whenever"),
			DateCreated: models.StringDate("???"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, Normalize(tt.e).Present())
		})
	}
}

func TestInstantComparisons(t *testing.T) {
	a := At(time.Unix(100, 0))
	b := At(time.Unix(200, 0))

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, Absent().Before(b))
	assert.False(t, b.Before(Absent()))
	assert.False(t, Absent().AfterTime(time.Unix(0, 0)))
}
