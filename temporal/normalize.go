package temporal

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"quadrangle.org/core/models"
)

var (
	dateOnlyRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockRe    = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// genericLayouts is the ladder tried for free-form date strings, most
// common first. The backend mostly emits RFC3339 but older client
// versions wrote a few variations.
var genericLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Normalize resolves a record's heterogeneous date fields into a
// single comparable instant. Resolution order is strict: the explicit
// date field in all its shapes wins, and the creation-date fallbacks
// are consulted only when it is absent or unparsable. Unparsable input
// never errors; it degrades to Absent.
func Normalize(d models.Dated) Instant {
	if in := fromDateField(d.DateField(), d.TimeField()); in.Present() {
		return in
	}
	if in := fromFallback(d.CreatedAtField()); in.Present() {
		return in
	}
	return fromFallback(d.DateCreatedField())
}

// fromDateField applies the full primary-field rules, including the
// "YYYY-MM-DD" + "HH:MM" pairing and the end-of-day policy for
// date-only values. An all-day event stays upcoming until its calendar
// day ends, hence 23:59:59.999 rather than midnight.
func fromDateField(date models.RawDate, clock string) Instant {
	switch date.Kind() {
	case models.DateTimestamp:
		return At(date.Timestamp())
	case models.DateString:
		s := strings.TrimSpace(date.String())
		if s == "" {
			return Absent()
		}
		if dateOnlyRe.MatchString(s) {
			return dayInstant(s, clock)
		}
		return parseGeneric(s)
	default:
		return Absent()
	}
}

// fromFallback applies the reduced rules used for createdAt and
// dateCreated: a timestamp or a parseable string yields a single
// instant, with no time pairing and no end-of-day expansion.
func fromFallback(date models.RawDate) Instant {
	switch date.Kind() {
	case models.DateTimestamp:
		return At(date.Timestamp())
	case models.DateString:
		s := strings.TrimSpace(date.String())
		if s == "" {
			return Absent()
		}
		if dateOnlyRe.MatchString(s) {
			// Date-only creation stamps resolve to local midnight.
			if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
				return At(t)
			}
			return Absent()
		}
		return parseGeneric(s)
	default:
		return Absent()
	}
}

func dayInstant(day, clock string) Instant {
	t, err := time.ParseInLocation(time.DateOnly, day, time.Local)
	if err != nil {
		return Absent()
	}

	if hour, min, ok := parseClock(clock); ok {
		return At(time.Date(t.Year(), t.Month(), t.Day(), hour, min, 0, 0, time.Local))
	}

	// No usable time: last instant of the calendar day.
	return At(time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, time.Local))
}

// parseClock accepts only well-formed "HH:MM" wall-clock values.
// Anything else ("25:99", "9:30", empty) reports !ok so the caller
// falls back to end-of-day instead of failing the record.
func parseClock(s string) (hour, min int, ok bool) {
	if !clockRe.MatchString(s) {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(s[:2])
	min, _ = strconv.Atoi(s[3:])
	if hour > 23 || min > 59 {
		return 0, 0, false
	}
	return hour, min, true
}

func parseGeneric(s string) Instant {
	for _, layout := range genericLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return At(t)
		}
	}
	return Absent()
}
