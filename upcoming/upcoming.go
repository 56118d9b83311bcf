package upcoming

import (
	"sort"
	"time"

	"quadrangle.org/core/models"
	"quadrangle.org/core/temporal"
)

// Memberships are the per-user group sets visibility derives from.
type Memberships struct {
	Joined map[string]struct{}
	Owned  map[string]struct{}
}

// DeriveMemberships scans the current groups collection for the
// groups a user has joined or owns.
func DeriveMemberships(userID string, groups []models.Group) Memberships {
	m := Memberships{
		Joined: make(map[string]struct{}),
		Owned:  make(map[string]struct{}),
	}
	if userID == "" {
		return m
	}

	for _, g := range groups {
		if g.OwnedBy(userID) {
			m.Owned[g.ID] = struct{}{}
		}
		if g.JoinedByUser(userID) {
			m.Joined[g.ID] = struct{}{}
		}
	}
	return m
}

// Visible reports whether the user is entitled to see the event:
// campus-wide events, events of groups they joined or own, and their
// own events.
func (m Memberships) Visible(e models.Event, userID string) bool {
	if e.Global() {
		return true
	}
	if _, ok := m.Joined[e.GroupID]; ok {
		return true
	}
	if _, ok := m.Owned[e.GroupID]; ok {
		return true
	}
	return userID != "" && e.CreatedBy == userID
}

// Resolve computes the user's upcoming events: visible, datable, and
// strictly in the future relative to now, sorted soonest-first. The
// evaluation time is a parameter so callers (and tests) control the
// clock.
func Resolve(userID string, groups []models.Group, events []models.Event, now time.Time) []models.Event {
	m := DeriveMemberships(userID, groups)

	type dated struct {
		ev models.Event
		in temporal.Instant
	}

	var out []dated
	for _, e := range events {
		if !m.Visible(e, userID) {
			continue
		}
		in := temporal.Normalize(e)
		if !in.AfterTime(now) {
			continue
		}
		out = append(out, dated{ev: e, in: in})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].in.Before(out[j].in)
	})

	events = make([]models.Event, len(out))
	for i, d := range out {
		events[i] = d.ev
	}
	return events
}
