package temporal

import "time"

// Instant is a resolved point in time, or nothing. The distinction
// matters: a record whose dates could not be parsed must drop out of
// ordering entirely rather than collapse into the zero time or "now".
type Instant struct {
	t       time.Time
	present bool
}

func At(t time.Time) Instant {
	return Instant{t: t, present: true}
}

func Absent() Instant {
	return Instant{}
}

func (i Instant) Present() bool { return i.present }

// Time returns the underlying time. Callers must check Present first;
// an absent instant returns the zero time.
func (i Instant) Time() time.Time { return i.t }

// Before orders two instants. An absent instant is never before or
// after anything; callers are expected to have filtered those out.
func (i Instant) Before(other Instant) bool {
	return i.present && other.present && i.t.Before(other.t)
}

func (i Instant) After(other Instant) bool {
	return i.present && other.present && i.t.After(other.t)
}

// AfterTime reports whether the instant is strictly later than t.
// Absent instants are never after anything.
func (i Instant) AfterTime(t time.Time) bool {
	return i.present && i.t.After(t)
}
